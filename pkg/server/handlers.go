package server

import (
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inhies/go-bytesize"
	"github.com/rs/xid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"pixelcsv/pkg/convert"
	"pixelcsv/pkg/loader"
	"pixelcsv/pkg/pixel"
)

const (
	headerRequestID = "X-Request-Id"
	ctxLogger       = "logger"
	ctxBody         = "upload-body"
)

var errTooLarge = errors.New("upload too large")

type httpError struct {
	code int
	err  error
}

func (e *httpError) Error() string {
	return e.err.Error()
}

func (e *httpError) Unwrap() error {
	return e.err
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := xid.New().String()
		log := s.log.With(zap.String("id", id))

		c.Header(headerRequestID, id)
		c.Set(ctxLogger, log)

		start := time.Now()
		c.Next()

		log.With(
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("cost", time.Since(start)),
		).Debug("request")
	}
}

func logger(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(ctxLogger); ok {
		return v.(*zap.Logger)
	}
	return zap.NewNop()
}

func (s *Server) handleFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats": lo.Map(pixel.Formats(), func(f pixel.ColorFormat, _ int) string {
			return f.String()
		}),
		"modes":      []convert.SizeMode{convert.SizeOriginal, convert.SizeCustom},
		"max_side":   convert.MaxSide,
		"default":    convert.DefaultSide,
		"extensions": loader.Extensions,
		"max_upload": s.maxUpload.String(),
	})
}

func (s *Server) handleConvert(c *gin.Context) {
	r, err := s.convert(c, false)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", r.Filename))
	c.Data(http.StatusOK, r.MIME, r.CSV)
}

func (s *Server) handlePreview(c *gin.Context) {
	r, err := s.convert(c, true)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.Header("X-Pixelart-Size", fmt.Sprintf("%dx%d", r.Width, r.Height))
	c.Data(http.StatusOK, "image/png", r.Preview)
}

func (s *Server) convert(c *gin.Context, preview bool) (*convert.Result, error) {
	img, err := s.upload(c)
	if err != nil {
		return nil, err
	}

	params, err := parseParams(c)
	if err != nil {
		return nil, &httpError{http.StatusBadRequest, err}
	}
	params.Preview = preview

	r, err := s.conv.Convert(c.Request.Context(), img, params)
	if err != nil {
		if errors.Is(err, convert.ErrInvalidParams) {
			return nil, &httpError{http.StatusBadRequest, err}
		}
		return nil, err
	}

	return r, nil
}

// limitUpload caps the request body before anything parses the form, so
// chunked uploads without a Content-Length are bounded too.
func (s *Server) limitUpload() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := int64(s.maxUpload)
		if c.Request.ContentLength > limit {
			s.fail(c, &httpError{http.StatusRequestEntityTooLarge, errTooLarge})
			return
		}

		body := &uploadBody{ReadCloser: http.MaxBytesReader(c.Writer, c.Request.Body, limit)}
		c.Request.Body = body
		c.Set(ctxBody, body)
		c.Next()
	}
}

// uploadBody records whether the size cap was hit while the form was read.
type uploadBody struct {
	io.ReadCloser
	exceeded bool
}

func (b *uploadBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		b.exceeded = true
	}
	return n, err
}

func bodyExceeded(c *gin.Context) bool {
	if v, ok := c.Get(ctxBody); ok {
		return v.(*uploadBody).exceeded
	}
	return false
}

func (s *Server) upload(c *gin.Context) (image.Image, error) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if bodyExceeded(c) || errors.As(err, &maxErr) {
			return nil, &httpError{http.StatusRequestEntityTooLarge, errTooLarge}
		}
		return nil, &httpError{http.StatusBadRequest, fmt.Errorf("no image uploaded: %w", err)}
	}
	defer func() {
		_ = file.Close()
	}()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !lo.Contains(loader.Extensions, ext) {
		return nil, &httpError{http.StatusBadRequest, fmt.Errorf("unsupported file type %q", ext)}
	}

	img, format, err := s.conv.Decode(file)
	if err != nil {
		if errors.Is(err, loader.ErrTooLarge) {
			return nil, &httpError{http.StatusRequestEntityTooLarge, err}
		}
		return nil, &httpError{http.StatusBadRequest, err}
	}

	logger(c).With(
		zap.String("name", header.Filename),
		zap.String("format", format),
		zap.String("size", bytesize.New(float64(header.Size)).String()),
		zap.Int("w", img.Bounds().Dx()),
		zap.Int("h", img.Bounds().Dy()),
	).Debug("uploaded")

	return img, nil
}

func parseParams(c *gin.Context) (*convert.Params, error) {
	mode, err := convert.ParseMode(c.PostForm("mode"))
	if err != nil {
		return nil, err
	}

	format, err := pixel.ParseFormat(c.DefaultPostForm("format", pixel.FormatHEX.String()))
	if err != nil {
		return nil, err
	}

	p := convert.NewParams(convert.WithFormat(format))
	if mode == convert.SizeOriginal {
		convert.WithOriginalSize()(p)
		return p, nil
	}

	w, err := formInt(c, "width", convert.DefaultSide)
	if err != nil {
		return nil, err
	}
	h, err := formInt(c, "height", convert.DefaultSide)
	if err != nil {
		return nil, err
	}
	convert.WithSize(w, h)(p)

	return p, nil
}

func formInt(c *gin.Context, key string, def int) (int, error) {
	v := strings.TrimSpace(c.PostForm(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", convert.ErrInvalidParams, key)
	}
	return n, nil
}

func (s *Server) fail(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	var he *httpError
	if errors.As(err, &he) {
		code = he.code
	}

	log := logger(c).With(zap.Int("status", code), zap.Error(err))
	if code >= http.StatusInternalServerError {
		log.Error("convert failed")
	} else {
		log.Info("rejected")
	}

	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}
