package loader

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"pixelcsv/pkg/pixel"
)

var (
	ErrDecode   = errors.New("image decode failed")
	ErrTooLarge = errors.New("image too large")
)

// Extensions are the upload types accepted by the form.
var Extensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".tif", ".gif"}

// Decode reads a single frame (the first one for animated GIFs).
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return img, format, nil
}

// DecodeLimited reads only the image header first and refuses sources wider
// or taller than maxSide before any pixel buffer is allocated. A maxSide of
// zero or less disables the check.
func DecodeLimited(r io.Reader, maxSide int) (image.Image, string, error) {
	if maxSide <= 0 {
		return Decode(r)
	}

	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if cfg.Width > maxSide || cfg.Height > maxSide {
		return nil, "", fmt.Errorf("%w: %dx%d exceeds %d per side", ErrTooLarge, cfg.Width, cfg.Height, maxSide)
	}

	return Decode(io.MultiReader(&head, r))
}

func DecodeBytes(bs []byte) (image.Image, string, error) {
	return Decode(bytes.NewReader(bs))
}

func Open(fs afero.Fs, path string) (image.Image, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image failed: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	img, _, err := Decode(f)
	return img, err
}

// Resize samples img onto a width x height grid with nearest-neighbor
// interpolation and drops alpha. It always resamples, also when the size
// does not change.
func Resize(img image.Image, width, height int) *pixel.Raster {
	return pixel.FromImage(imaging.Resize(img, width, height, imaging.NearestNeighbor))
}

const (
	previewTarget = 350
	previewMax    = 12
)

// PreviewScale is the integer zoom used to show small rasters at a
// readable size.
func PreviewScale(width, height int) int {
	side := width
	if height > side {
		side = height
	}
	if side <= 0 {
		return 1
	}

	s := previewTarget / side
	if s < 1 {
		s = 1
	}
	if s > previewMax {
		s = previewMax
	}
	return s
}

// Preview enlarges r by PreviewScale so every pixel becomes a solid block.
func Preview(r *pixel.Raster) image.Image {
	s := PreviewScale(r.Width(), r.Height())
	return imaging.Resize(r, r.Width()*s, r.Height()*s, imaging.NearestNeighbor)
}

func EncodePNG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG)
}
