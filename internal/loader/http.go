package loader

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/integrixs/fieldtree/pkg/schema"
)

const acceptHeader = "application/json, application/yaml;q=0.9, application/x-yaml;q=0.9, */*;q=0.5"

// fetch GETs url and returns the body with the encoding its Content-Type
// declares, if any.
func (l *Loader) fetch(ctx context.Context, url string) ([]byte, schema.Encoding, error) {
	reqCtx := ctx
	if l.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", acceptHeader)

	resp, err := l.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("loader: unexpected status %s", resp.Status)
	}
	if resp.ContentLength > l.limit {
		return nil, "", fmt.Errorf("%w: %s declares %d bytes, limit is %d", schema.ErrDocumentTooLarge, url, resp.ContentLength, l.limit)
	}

	data, err := l.read(resp.Body, url)
	if err != nil {
		return nil, "", err
	}
	return data, encodingFromContentType(resp.Header.Get("Content-Type")), nil
}

// encodingFromContentType maps JSON and YAML media types, including +json
// and +yaml suffixes. Anything else, text/plain included, declares nothing.
func encodingFromContentType(value string) schema.Encoding {
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return ""
	}
	switch {
	case mediaType == "application/json", strings.HasSuffix(mediaType, "+json"):
		return schema.EncodingJSON
	case strings.Contains(mediaType, "yaml"):
		return schema.EncodingYAML
	default:
		return ""
	}
}
