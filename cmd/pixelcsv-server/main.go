package main

import (
	"log"
	"net/http"
	"time"

	"github.com/inhies/go-bytesize"
	"github.com/samber/lo"
	flag "github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"pixelcsv/pkg/convert"
	"pixelcsv/pkg/server"
)

var listen = flag.String("listen", ":9123", "listen addr")
var maxUpload = flag.String("max-upload", "10MB", "upload size limit")
var maxSource = flag.Int("max-source", 4096, "largest side accepted in original size mode")
var debug = flag.Bool("debug", false, "set debug")

func main() {
	flag.Parse()

	limit, err := bytesize.Parse(*maxUpload)
	if err != nil {
		log.Fatal(err)
	}

	fx.New(
		fx.Provide(
			func() (*zap.Logger, error) {
				return lo.Ternary(*debug, zap.NewDevelopment, zap.NewProduction)()
			},
			func() *http.Server {
				return &http.Server{Addr: *listen, ReadHeaderTimeout: 10 * time.Second}
			},
			func(logger *zap.Logger) *convert.Converter {
				return convert.NewConverter(logger, convert.WithMaxSource(*maxSource))
			},
			func(conv *convert.Converter, logger *zap.Logger) *server.Server {
				return server.New(conv, logger, server.WithMaxUpload(limit))
			},
		),
		fx.Invoke(
			server.Serve,
		),
	).Run()
}
