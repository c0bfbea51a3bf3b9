package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/inhies/go-bytesize"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

var ErrFetch = errors.New("image fetch failed")

func NewFetcher(logger *zap.Logger, opts ...FetchOption) *Fetcher {
	f := &Fetcher{
		cli:      resty.New().SetDoNotParseResponse(true).SetTimeout(30 * time.Second),
		log:      logger,
		limit:    10 * bytesize.MB,
		progress: os.Stderr,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

type Fetcher struct {
	cli      *resty.Client
	log      *zap.Logger
	limit    bytesize.ByteSize
	progress io.Writer
}

// Get downloads url into memory, refusing bodies larger than the limit.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.cli.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	defer func() {
		_ = resp.RawBody().Close()
	}()

	if resp.IsError() {
		return nil, fmt.Errorf("%w: %s returned %s", ErrFetch, url, resp.Status())
	}

	size := resp.RawResponse.ContentLength
	if size > int64(f.limit) {
		return nil, fmt.Errorf("%w: %s exceeds %s", ErrFetch, bytesize.New(float64(size)), f.limit)
	}

	bar := progressbar.NewOptions64(
		lo.Ternary(size > 0, size, -1),
		progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", url)),
		progressbar.OptionSetWriter(f.progress),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
	)

	var buf bytes.Buffer
	n, err := io.Copy(io.MultiWriter(&buf, bar), io.LimitReader(resp.RawBody(), int64(f.limit)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if n > int64(f.limit) {
		return nil, fmt.Errorf("%w: body exceeds %s", ErrFetch, f.limit)
	}

	f.log.With(zap.String("url", url), zap.String("size", bytesize.New(float64(n)).String())).Debug("fetched")
	return buf.Bytes(), nil
}
