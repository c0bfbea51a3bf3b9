package pixel

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTokens(t *testing.T) {
	for _, f := range Formats() {
		parsed, err := ParseFormat(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, parsed)
		assert.True(t, f.Valid())
	}

	f, err := ParseFormat(" excel_color ")
	require.NoError(t, err)
	assert.Equal(t, FormatExcelColor, f)

	_, err = ParseFormat("CMYK")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.False(t, ColorFormat(0).Valid())
	assert.Equal(t, []string{"HEX", "RGB", "Excel_Color"}, []string{
		Formats()[0].String(), Formats()[1].String(), Formats()[2].String(),
	})
}

func TestFormatCell(t *testing.T) {
	s, err := FormatHEX.Cell(RGB{R: 1, G: 0xAB, B: 0x0F})
	require.NoError(t, err)
	assert.Equal(t, "#01AB0F", s)

	_, err = ColorFormat(42).Cell(RGB{})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestRasterSetAt(t *testing.T) {
	r := NewRaster(3, 2)
	assert.Equal(t, image.Rect(0, 0, 3, 2), r.Bounds())

	r.Set(2, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	r.Set(5, 5, RGB{R: 1})

	assert.Equal(t, RGB{R: 10, G: 20, B: 30}, r.RGBAt(2, 1))
	assert.Equal(t, RGB{}, r.RGBAt(-1, 0))
	assert.Equal(t, RGB{R: 10, G: 20, B: 30}, r.ColorModel().Convert(color.NRGBA{R: 10, G: 20, B: 30, A: 255}))
}

func TestFromImageDropsAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(2, 3, 4, 4))
	src.SetNRGBA(2, 3, color.NRGBA{R: 255, A: 0})
	src.SetNRGBA(3, 3, color.NRGBA{R: 1, G: 2, B: 3, A: 128})

	r := FromImage(src)
	require.Equal(t, 2, r.Width())
	require.Equal(t, 1, r.Height())

	assert.Equal(t, RGB{R: 255}, r.RGBAt(0, 0))
	assert.Equal(t, RGB{R: 1, G: 2, B: 3}, r.RGBAt(1, 0))
}

func TestFromImageGeneric(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 2, 2))
	src.SetGray(1, 1, color.Gray{Y: 77})

	r := FromImage(src)
	assert.Equal(t, RGB{R: 77, G: 77, B: 77}, r.RGBAt(1, 1))
	assert.Equal(t, RGB{}, r.RGBAt(0, 0))
}
