package main

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"pixelcsv/pkg/convert"
	"pixelcsv/pkg/loader"
	"pixelcsv/pkg/pixel"
)

var in = flag.String("in", "", "image path or http(s) url")
var original = flag.Bool("original", false, "keep the original size")
var width = flag.Int("width", convert.DefaultSide, "canvas width")
var height = flag.Int("height", convert.DefaultSide, "canvas height")
var format = flag.String("format", "HEX", "color format: HEX, RGB or Excel_Color")
var out = flag.String("out", ".", "output dir")
var preview = flag.String("preview", "", "write a png preview to this name inside the output dir")
var debug = flag.Bool("debug", false, "set debug")

func main() {
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger, _ := lo.Ternary(*debug, zap.NewDevelopment, zap.NewProduction)()
	defer func() {
		_ = logger.Sync()
	}()

	f, err := pixel.ParseFormat(*format)
	if err != nil {
		log.Fatal(err)
	}

	opts := []convert.ParamOption{convert.WithFormat(f)}
	if *original {
		opts = append(opts, convert.WithOriginalSize())
	} else {
		opts = append(opts, convert.WithSize(*width, *height))
	}
	if *preview != "" {
		opts = append(opts, convert.WithPreview())
	}
	params := convert.NewParams(opts...)
	if err := params.Validate(); err != nil {
		log.Fatal(err)
	}

	store, err := convert.NewStore(*out, logger)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	img, err := load(ctx, *in, logger)
	if err != nil {
		logger.With(zap.String("in", *in), zap.Error(err)).Fatal("load failed")
	}

	r, err := convert.NewConverter(logger).Convert(ctx, img, params)
	if err != nil {
		logger.With(zap.Error(err)).Fatal("convert failed")
	}

	name, err := store.Save(r)
	if err != nil {
		logger.With(zap.Error(err)).Fatal("save failed")
	}

	if *preview != "" {
		if err := store.SavePreview(*preview, r); err != nil {
			logger.With(zap.Error(err)).Fatal("save failed")
		}
	}

	fmt.Println(store.RealPath(name))
}

func load(ctx context.Context, src string, logger *zap.Logger) (image.Image, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		bs, err := loader.NewFetcher(logger).Get(ctx, src)
		if err != nil {
			return nil, err
		}
		img, _, err := loader.DecodeBytes(bs)
		return img, err
	}

	return loader.Open(afero.NewOsFs(), src)
}
