package convert

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"strings"
	"time"

	"github.com/inhies/go-bytesize"
	"go.uber.org/zap"

	"pixelcsv/pkg/loader"
	"pixelcsv/pkg/pixel"
)

const MIMEType = "text/csv"

// Filename is the suggested download name, e.g. pixelart_32x32_hex.csv.
func Filename(width, height int, f pixel.ColorFormat) string {
	return fmt.Sprintf("pixelart_%dx%d_%s.csv", width, height, strings.ToLower(f.String()))
}

type Result struct {
	CSV      []byte
	Filename string
	MIME     string
	Width    int
	Height   int
	Format   pixel.ColorFormat
	// Preview is a PNG, set only when requested.
	Preview []byte
}

func NewConverter(logger *zap.Logger, opts ...Option) *Converter {
	c := &Converter{
		log: logger,
		// options
		maxSource: -1,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type Converter struct {
	log *zap.Logger
	// options
	maxSource int
}

// Decode loads a source image, rejecting one larger than the max source
// side from its header alone.
func (c *Converter) Decode(r io.Reader) (image.Image, string, error) {
	return loader.DecodeLimited(r, c.maxSource)
}

// Convert runs resize, encode and serialize for one request.
func (c *Converter) Convert(ctx context.Context, img image.Image, p *Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	w, h := p.Target(img)

	if c.maxSource > 0 && (w > c.maxSource || h > c.maxSource) {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d per side", ErrInvalidParams, w, h, c.maxSource)
	}

	raster := loader.Resize(img, w, h)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	grid, err := pixel.Encode(raster, p.Format)
	if err != nil {
		return nil, err
	}

	bs, err := pixel.SerializeCSV(grid)
	if err != nil {
		return nil, err
	}

	r := &Result{
		CSV:      bs,
		Filename: Filename(w, h, p.Format),
		MIME:     MIMEType,
		Width:    w,
		Height:   h,
		Format:   p.Format,
	}

	if p.Preview {
		var buf bytes.Buffer
		if err := loader.EncodePNG(&buf, loader.Preview(raster)); err != nil {
			return nil, fmt.Errorf("render preview failed: %w", err)
		}
		r.Preview = buf.Bytes()
	}

	c.log.With(
		zap.String("file", r.Filename),
		zap.String("mode", string(p.Mode)),
		zap.String("csv", bytesize.New(float64(len(r.CSV))).String()),
		zap.Duration("cost", time.Since(start)),
	).Debug("converted")

	return r, nil
}
