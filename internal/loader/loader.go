package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/integrixs/fieldtree/pkg/schema"
)

// Loader implements schema.Loader for files, an fs.FS and, when enabled,
// HTTP. Every source is read through the same size limit, and the document
// declares the encoding its location or Content-Type implies.
type Loader struct {
	fs      fs.FS
	http    *http.Client
	timeout time.Duration
	limit   int64
}

var _ schema.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options schema.LoaderOptions) *Loader {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := options.MaxDocumentSize
	if limit <= 0 {
		limit = schema.DefaultMaxDocumentSize
	}

	return &Loader{
		fs:      options.FileSystem,
		http:    httpClient,
		timeout: timeout,
		limit:   limit,
	}
}

// Load fetches a document from the provided source.
func (l *Loader) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if src == nil {
		return schema.Document{}, errors.New("loader: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return schema.Document{}, err
	}
	location := src.Location()
	if location == "" {
		return schema.Document{}, fmt.Errorf("loader: %s location is required", src.Kind())
	}

	var (
		data     []byte
		declared schema.Encoding
		err      error
	)
	switch src.Kind() {
	case schema.SourceKindFile:
		data, err = l.readFile(location)
	case schema.SourceKindFS:
		data, err = l.readFS(location)
	case schema.SourceKindURL:
		if l.http == nil {
			return schema.Document{}, errors.New("loader: http support disabled")
		}
		data, declared, err = l.fetch(ctx, location)
	default:
		err = fmt.Errorf("loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return schema.Document{}, err
	}

	doc, err := schema.NewDocument(src, data)
	if err != nil {
		return schema.Document{}, err
	}
	return doc.WithEncoding(declared), nil
}

func (l *Loader) readFile(path string) ([]byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return l.read(f, path)
}

func (l *Loader) readFS(name string) ([]byte, error) {
	if l.fs == nil {
		return nil, errors.New("loader: filesystem is not configured")
	}
	f, err := l.fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return l.read(f, name)
}

// read consumes r up to the size limit. One byte past the limit is read so an
// oversized document fails instead of being truncated.
func (l *Loader) read(r io.Reader, location string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.limit+1))
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", location, err)
	}
	if int64(len(data)) > l.limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", schema.ErrDocumentTooLarge, location, l.limit)
	}
	return data, nil
}
