package pixel

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Grid holds one encoded string per pixel, row-major.
type Grid [][]string

func (g Grid) Height() int {
	return len(g)
}

func (g Grid) Width() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Encode converts every pixel of src into its textual form. Row 0 comes
// first and columns keep their left-to-right order.
func Encode(src *Raster, f ColorFormat) (Grid, error) {
	enc, ok := encoders[f]
	if !ok {
		return nil, fmt.Errorf("encode failed: %w", ErrUnknownFormat)
	}

	w, h := src.Width(), src.Height()
	grid := make(Grid, h)

	for y := 0; y < h; y++ {
		row := make([]string, w)
		for x := 0; x < w; x++ {
			row[x] = enc(src.RGBAt(x, y))
		}
		grid[y] = row
	}

	return grid, nil
}

// SerializeCSV writes the grid without a header, one line per row. Cells
// containing commas (the RGB format) are quoted so every row still parses
// back to Width() fields.
func SerializeCSV(g Grid) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.WriteAll(g); err != nil {
		return nil, fmt.Errorf("write csv failed: %w", err)
	}

	return buf.Bytes(), nil
}
