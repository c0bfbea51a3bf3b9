package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inhies/go-bytesize"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"pixelcsv/pkg/convert"
)

func New(conv *convert.Converter, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		conv:      conv,
		log:       logger,
		maxUpload: 10 * bytesize.MB,
	}

	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(gin.ReleaseMode)
	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.requestLog())
	s.routes()

	return s
}

type Server struct {
	conv      *convert.Converter
	log       *zap.Logger
	maxUpload bytesize.ByteSize
	engine    *gin.Engine
}

func (s *Server) routes() {
	s.engine.GET("/formats", s.handleFormats)
	s.engine.POST("/convert", s.limitUpload(), s.handleConvert)
	s.engine.POST("/preview", s.limitUpload(), s.handlePreview)
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Serve binds the handler to srv and ties the listener to the fx lifecycle.
func Serve(s *Server, srv *http.Server, lifecycle fx.Lifecycle) {
	srv.Handler = s.Handler()

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != http.ErrServerClosed {
					s.log.With(zap.Error(err)).Fatal("listen failed")
				}
			}()
			s.log.With(zap.String("addr", srv.Addr)).Info("listening")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
