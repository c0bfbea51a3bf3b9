package pixel

import (
	"image"
	"image/color"
)

func NewRaster(width, height int) *Raster {
	return &Raster{
		pixels: make([]byte, 3*width*height),
		stride: 3 * width,
		bounds: image.Rect(0, 0, width, height),
	}
}

// FromImage copies src into a new raster. Alpha is dropped without
// compositing: a fully transparent red pixel stays (255,0,0).
func FromImage(src image.Image) *Raster {
	b := src.Bounds()
	d := NewRaster(b.Dx(), b.Dy())

	if n, ok := src.(*image.NRGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			off := n.PixOffset(b.Min.X, b.Min.Y+y)
			for x := 0; x < b.Dx(); x++ {
				i := y*d.stride + 3*x
				copy(d.pixels[i:i+3], n.Pix[off+4*x:off+4*x+3])
			}
		}
		return d
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			d.Set(x-b.Min.X, y-b.Min.Y, src.At(x, y))
		}
	}

	return d
}

// Raster is a packed RGB888 pixel grid anchored at (0,0). It implements
// image.Image.
type Raster struct {
	pixels []byte
	stride int
	bounds image.Rectangle
}

func (d *Raster) Width() int {
	return d.bounds.Dx()
}

func (d *Raster) Height() int {
	return d.bounds.Dy()
}

// Bounds implements the image.Image interface.
func (d *Raster) Bounds() image.Rectangle {
	return d.bounds
}

// ColorModel implements the image.Image interface.
func (d *Raster) ColorModel() color.Model {
	return rgbModel
}

// At implements the image.Image interface.
func (d *Raster) At(x, y int) color.Color {
	return d.RGBAt(x, y)
}

// RGBAt returns the pixel at (x,y), or black outside the bounds.
func (d *Raster) RGBAt(x, y int) RGB {
	if !(image.Point{X: x, Y: y}).In(d.bounds) {
		return RGB{}
	}
	i := y*d.stride + 3*x
	return RGB{R: d.pixels[i], G: d.pixels[i+1], B: d.pixels[i+2]}
}

// Set stores c at (x,y). Points outside the bounds are ignored.
func (d *Raster) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(d.bounds) {
		return
	}
	p := toRGB(c)
	i := y*d.stride + 3*x
	d.pixels[i] = p.R
	d.pixels[i+1] = p.G
	d.pixels[i+2] = p.B
}

// RGB is a single opaque pixel. It implements color.Color.
type RGB struct {
	R, G, B uint8
}

// RGBA implements the color.Color interface. Alpha is always opaque.
func (c RGB) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	a = 0xFFFF
	return
}

var rgbModel = color.ModelFunc(func(c color.Color) color.Color {
	return toRGB(c)
})

// toRGB takes the straight (non-premultiplied) channels of c and drops alpha.
func toRGB(c color.Color) RGB {
	switch v := c.(type) {
	case RGB:
		return v
	case color.NRGBA:
		return RGB{R: v.R, G: v.G, B: v.B}
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{R: n.R, G: n.G, B: n.B}
}
