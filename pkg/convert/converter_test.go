package convert

import (
	"bytes"
	"context"
	"encoding/csv"
	"image"
	"image/color"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pixelcsv/pkg/loader"
	"pixelcsv/pkg/pixel"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "pixelart_32x16_excel_color.csv", Filename(32, 16, pixel.FormatExcelColor))
	assert.Equal(t, "pixelart_1x1_hex.csv", Filename(1, 1, pixel.FormatHEX))
	assert.Equal(t, "pixelart_8x9_rgb.csv", Filename(8, 9, pixel.FormatRGB))
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  *Params
		wantErr bool
	}{
		{"defaults", NewParams(), false},
		{"original ignores size", NewParams(WithSize(0, 0), WithOriginalSize()), false},
		{"min", NewParams(WithSize(1, 1)), false},
		{"max", NewParams(WithSize(500, 500)), false},
		{"zero width", NewParams(WithSize(0, 10)), true},
		{"negative height", NewParams(WithSize(10, -1)), true},
		{"too wide", NewParams(WithSize(501, 10)), true},
		{"bad format", NewParams(WithFormat(pixel.ColorFormat(9))), true},
		{"bad mode", &Params{Mode: "stretched", Width: 1, Height: 1, Format: pixel.FormatHEX}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidParams)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParamsValidateKeepsFormatCause(t *testing.T) {
	err := NewParams(WithFormat(pixel.ColorFormat(9))).Validate()
	assert.ErrorIs(t, err, ErrInvalidParams)
	assert.ErrorIs(t, err, pixel.ErrUnknownFormat)
}

func TestConverterDecodeBoundsSource(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, loader.EncodePNG(&buf, solid(20, 4, color.NRGBA{A: 255})))

	_, _, err := NewConverter(zap.NewNop(), WithMaxSource(16)).Decode(bytes.NewReader(buf.Bytes()))
	assert.ErrorIs(t, err, loader.ErrTooLarge)

	img, _, err := NewConverter(zap.NewNop()).Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 20, img.Bounds().Dx())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Original")
	require.NoError(t, err)
	assert.Equal(t, SizeOriginal, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, SizeCustom, m)

	_, err = ParseMode("fit")
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestConvertCustom(t *testing.T) {
	c := NewConverter(zap.NewNop())
	img := solid(40, 20, color.NRGBA{R: 255, A: 255})

	r, err := c.Convert(context.Background(), img, NewParams(WithSize(4, 3), WithFormat(pixel.FormatExcelColor)))
	require.NoError(t, err)

	assert.Equal(t, "pixelart_4x3_excel_color.csv", r.Filename)
	assert.Equal(t, "text/csv", r.MIME)
	assert.Equal(t, 4, r.Width)
	assert.Equal(t, 3, r.Height)
	assert.Nil(t, r.Preview)
	assert.Equal(t, "255,255,255,255\n255,255,255,255\n255,255,255,255\n", string(r.CSV))
}

func TestConvertOriginal(t *testing.T) {
	c := NewConverter(zap.NewNop())
	img := solid(3, 2, color.NRGBA{G: 255, A: 255})
	img.SetNRGBA(2, 1, color.NRGBA{B: 255, A: 255})

	r, err := c.Convert(context.Background(), img, NewParams(WithOriginalSize(), WithFormat(pixel.FormatRGB), WithPreview()))
	require.NoError(t, err)

	assert.Equal(t, "pixelart_3x2_rgb.csv", r.Filename)

	records, err := csv.NewReader(bytes.NewReader(r.CSV)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"0,255,0", "0,255,0", "0,255,0"},
		{"0,255,0", "0,255,0", "0,0,255"},
	}, records)

	require.NotEmpty(t, r.Preview)
	prev, format, err := loader.DecodeBytes(r.Preview)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, image.Rect(0, 0, 3*12, 2*12), prev.Bounds())
}

func TestConvertRejects(t *testing.T) {
	c := NewConverter(zap.NewNop(), WithMaxSource(8))
	img := solid(10, 10, color.NRGBA{A: 255})

	_, err := c.Convert(context.Background(), img, NewParams(WithSize(0, 5)))
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = c.Convert(context.Background(), img, NewParams(WithOriginalSize()))
	assert.ErrorIs(t, err, ErrInvalidParams)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Convert(ctx, img, NewParams(WithSize(2, 2)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStoreFs(fs, zap.NewNop())

	c := NewConverter(zap.NewNop())
	r, err := c.Convert(context.Background(), solid(2, 2, color.NRGBA{A: 255}), NewParams(WithSize(2, 2), WithPreview()))
	require.NoError(t, err)

	name, err := s.Save(r)
	require.NoError(t, err)
	assert.Equal(t, "pixelart_2x2_hex.csv", name)

	bs, err := afero.ReadFile(fs, name)
	require.NoError(t, err)
	assert.Equal(t, "#000000,#000000\n#000000,#000000\n", string(bs))

	require.NoError(t, s.SavePreview("previews/p.png", r))
	exists, err := afero.Exists(fs, "previews/p.png")
	require.NoError(t, err)
	assert.True(t, exists)

	r.Preview = nil
	assert.Error(t, s.SavePreview("x.png", r))
	assert.Equal(t, "x.png", s.RealPath("x.png"))
}

func TestNewStoreMissingDir(t *testing.T) {
	_, err := NewStore("/definitely/not/here", zap.NewNop())
	assert.Error(t, err)

	s, err := NewStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	assert.NotEqual(t, "a.csv", s.RealPath("a.csv"))
}
