package schema

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Source identifies where a schema document originated so loaders can operate
// on files, fs.FS entries, or URLs without leaking implementation details.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

// ParseSource picks a URL source for http(s) locations, a file source for
// file:// URIs and plain paths. It returns nil for blank or malformed input.
func ParseSource(raw string) Source {
	location := strings.TrimSpace(raw)
	if location == "" {
		return nil
	}
	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		if _, err := url.ParseRequestURI(location); err != nil {
			return nil
		}
		return urlSource{raw: location}
	case strings.HasPrefix(location, "file://"):
		parsed, err := url.Parse(location)
		if err != nil || parsed.Path == "" || (parsed.Host != "" && parsed.Host != "localhost") {
			return nil
		}
		return SourceFromFile(filepath.FromSlash(parsed.Path))
	}
	return SourceFromFile(location)
}

// EncodingHint maps the extension of a location to an encoding: .json is
// JSON, .yaml and .yml are YAML. URL queries and fragments are ignored. Other
// extensions return "" so callers fall back to sniffing the payload.
func EncodingHint(location string) Encoding {
	location = strings.TrimSpace(location)
	if parsed, err := url.Parse(location); err == nil && parsed.Scheme != "" && parsed.Host != "" {
		location = parsed.Path
	}
	switch strings.ToLower(filepath.Ext(location)) {
	case ".json":
		return EncodingJSON
	case ".yaml", ".yml":
		return EncodingYAML
	default:
		return ""
	}
}

// fileSource identifies on-disk schema documents.
type fileSource struct {
	path string
}

func (s fileSource) Location() string {
	return s.path
}

func (s fileSource) Kind() SourceKind {
	return SourceKindFile
}

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

// fsSource references a path within an fs.FS.
type fsSource struct {
	name string
}

func (s fsSource) Location() string {
	return s.name
}

func (s fsSource) Kind() SourceKind {
	return SourceKindFS
}

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

// urlSource references an HTTP/HTTPS endpoint.
type urlSource struct {
	raw string
}

func (s urlSource) Location() string {
	return s.raw
}

func (s urlSource) Kind() SourceKind {
	return SourceKindURL
}

// SourceFromURL parses the supplied URL string and returns a Source. It panics
// if the URL is invalid to surface configuration mistakes early.
func SourceFromURL(raw string) Source {
	if raw == "" {
		panic("schema: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		panic(fmt.Sprintf("schema: invalid URL %q: %v", raw, err))
	}
	return urlSource{raw: raw}
}
