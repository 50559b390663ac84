package model

import (
	"errors"
	"strings"
)

// SkipChildren can be returned by a WalkFunc to skip the subtree of the
// current field.
var SkipChildren = errors.New("model: skip children")

// WalkFunc is called for every field visited by Walk.
type WalkFunc func(path Path, field Field) error

// Walk visits fields depth-first in insertion order, parents before children.
// Returning SkipChildren skips the subtree; any other error stops the walk
// and is returned.
func Walk(fields []Field, fn WalkFunc) error {
	return walk(fields, nil, fn)
}

func walk(fields []Field, prefix Path, fn WalkFunc) error {
	for i, field := range fields {
		path := prefix.Child(i)
		err := fn(path, field)
		if errors.Is(err, SkipChildren) {
			continue
		}
		if err != nil {
			return err
		}
		if err := walk(field.Children, path, fn); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of fields in the tree, all levels included.
func Count(fields []Field) int {
	total := 0
	_ = Walk(fields, func(Path, Field) error {
		total++
		return nil
	})
	return total
}

// FindByName returns the path of the first field whose qualified name
// matches name. A qualified name joins the names from the root down with "."
// (e.g. "customer.address.street"); a "." or "\" inside a single field name
// is escaped with a backslash, so a field named "a.b" is `a\.b` while the
// child b of a is "a.b". QualifiedName builds the escaped form.
func FindByName(fields []Field, name string) (Path, bool) {
	var (
		found Path
		names = map[string]string{}
	)
	err := Walk(fields, func(path Path, field Field) error {
		key := nameEscaper.Replace(field.Name)
		if parent := path.Parent(); parent != nil {
			key = names[parent.String()] + "." + key
		}
		names[path.String()] = key
		if key == name {
			found = path
			return errStopWalk
		}
		return nil
	})
	return found, errors.Is(err, errStopWalk)
}

// QualifiedName joins field names into the escaped dotted form FindByName
// accepts.
func QualifiedName(names ...string) string {
	escaped := make([]string, len(names))
	for i, name := range names {
		escaped[i] = nameEscaper.Replace(name)
	}
	return strings.Join(escaped, ".")
}

var nameEscaper = strings.NewReplacer(`\`, `\\`, ".", `\.`)

var errStopWalk = errors.New("model: stop walk")
