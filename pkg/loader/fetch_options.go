package loader

import (
	"io"

	"github.com/inhies/go-bytesize"
)

type FetchOption func(f *Fetcher)

func WithLimit(limit bytesize.ByteSize) FetchOption {
	return func(f *Fetcher) {
		f.limit = limit
	}
}

// WithProgress redirects the download bar, io.Discard silences it.
func WithProgress(w io.Writer) FetchOption {
	return func(f *Fetcher) {
		f.progress = w
	}
}
