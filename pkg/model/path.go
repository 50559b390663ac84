package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Path locates a field by child indices starting at the root sequence. A path
// is only stable until the next structural mutation; removing or inserting a
// sibling before the target shifts the indices that follow it.
type Path []int

// ParsePath parses the dotted form produced by Path.String ("0.2.1").
// Slashes are accepted as separators too.
func ParsePath(raw string) (Path, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	segments := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == '.' || r == '/'
	})
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, raw)
	}
	path := make(Path, 0, len(segments))
	for _, segment := range segments {
		idx, err := strconv.Atoi(segment)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("%w: segment %q in %q", ErrInvalidPath, segment, raw)
		}
		path = append(path, idx)
	}
	return path, nil
}

// MustParsePath panics when raw is not a valid path. Useful for fixtures.
func MustParsePath(raw string) Path {
	path, err := ParsePath(raw)
	if err != nil {
		panic(err)
	}
	return path
}

func (p Path) String() string {
	if len(p) == 0 {
		return "<root>"
	}
	parts := make([]string, len(p))
	for i, idx := range p {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ".")
}

// Validate checks the syntactic rules: at least one index, none negative.
func (p Path) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	for _, idx := range p {
		if idx < 0 {
			return fmt.Errorf("%w: negative index %d", ErrInvalidPath, idx)
		}
	}
	return nil
}

// Parent returns the path of the enclosing field, or nil for root-level paths.
func (p Path) Parent() Path {
	if len(p) <= 1 {
		return nil
	}
	return p[:len(p)-1:len(p)-1]
}

// Last returns the index within the parent's children.
func (p Path) Last() int {
	if len(p) == 0 {
		return -1
	}
	return p[len(p)-1]
}

// Child returns a new path addressing the idx-th child of p.
func (p Path) Child(idx int) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = idx
	return out
}

// Depth is the number of levels below the root sequence (root fields are 0).
func (p Path) Depth() int {
	return len(p) - 1
}

// Equal reports whether both paths address the same slot.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone copies the path so callers can keep it across appends.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	return append(Path(nil), p...)
}

// Resolve walks path from the root sequence and returns the addressed field.
func Resolve(fields []Field, path Path) (Field, error) {
	if err := path.Validate(); err != nil {
		return Field{}, pathError("resolve", path, err)
	}
	current := fields
	for depth, idx := range path {
		if idx >= len(current) {
			return Field{}, pathError("resolve", path, ErrPathNotFound)
		}
		if depth == len(path)-1 {
			return current[idx], nil
		}
		current = current[idx].Children
	}
	return Field{}, pathError("resolve", path, ErrPathNotFound)
}

// Exists reports whether path resolves against fields.
func Exists(fields []Field, path Path) bool {
	_, err := Resolve(fields, path)
	return err == nil
}
