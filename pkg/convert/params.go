package convert

import (
	"fmt"
	"image"
	"strings"

	"github.com/pkg/errors"

	"pixelcsv/pkg/pixel"
)

var ErrInvalidParams = errors.New("invalid params")

const (
	MaxSide     = 500
	DefaultSide = 32
)

type SizeMode string

const (
	SizeOriginal SizeMode = "original"
	SizeCustom   SizeMode = "custom"
)

func ParseMode(s string) (SizeMode, error) {
	switch SizeMode(strings.ToLower(strings.TrimSpace(s))) {
	case SizeOriginal:
		return SizeOriginal, nil
	case SizeCustom, "":
		return SizeCustom, nil
	}
	return "", fmt.Errorf("%w: unknown size mode %q", ErrInvalidParams, s)
}

func NewParams(opts ...ParamOption) *Params {
	p := &Params{
		Mode:   SizeCustom,
		Width:  DefaultSide,
		Height: DefaultSide,
		Format: pixel.FormatHEX,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Params are the choices a user makes for one conversion.
type Params struct {
	Mode    SizeMode
	Width   int
	Height  int
	Format  pixel.ColorFormat
	Preview bool
}

func (p *Params) Validate() error {
	if !p.Format.Valid() {
		return fmt.Errorf("%w: %w", ErrInvalidParams, pixel.ErrUnknownFormat)
	}

	switch p.Mode {
	case SizeOriginal:
		return nil
	case SizeCustom:
	default:
		return fmt.Errorf("%w: unknown size mode %q", ErrInvalidParams, p.Mode)
	}

	if p.Width < 1 || p.Width > MaxSide {
		return fmt.Errorf("%w: width %d not in [1, %d]", ErrInvalidParams, p.Width, MaxSide)
	}
	if p.Height < 1 || p.Height > MaxSide {
		return fmt.Errorf("%w: height %d not in [1, %d]", ErrInvalidParams, p.Height, MaxSide)
	}

	return nil
}

// Target resolves the output grid size for img.
func (p *Params) Target(img image.Image) (int, int) {
	if p.Mode == SizeOriginal {
		return img.Bounds().Dx(), img.Bounds().Dy()
	}
	return p.Width, p.Height
}

type ParamOption func(p *Params)

func WithOriginalSize() ParamOption {
	return func(p *Params) {
		p.Mode = SizeOriginal
	}
}

func WithSize(width, height int) ParamOption {
	return func(p *Params) {
		p.Mode = SizeCustom
		p.Width = width
		p.Height = height
	}
}

func WithFormat(f pixel.ColorFormat) ParamOption {
	return func(p *Params) {
		p.Format = f
	}
}

func WithPreview() ParamOption {
	return func(p *Params) {
		p.Preview = true
	}
}
