package model

import "errors"

// AddRootField appends a default field to the root sequence. The result is a
// fresh slice; fields itself is never written to.
func AddRootField(fields []Field) []Field {
	return insertAt(fields, len(fields), NewField())
}

// AddChildField appends a default field to the children of the field at path,
// creating the children slice when absent.
func AddChildField(fields []Field, path Path) ([]Field, error) {
	return rewrite("add-child", fields, path, func(parent Field) (Field, error) {
		parent.Children = insertAt(parent.Children, len(parent.Children), NewField())
		return parent, nil
	})
}

// AddChildFieldPromoting adds a child like AddChildField and, when the parent
// is neither flagged complex nor typed object/array, flags it complex as part
// of the same edit. The flag is set through the regular update path before the
// child is inserted.
func AddChildFieldPromoting(fields []Field, path Path) ([]Field, error) {
	parent, err := Resolve(fields, path)
	if err != nil {
		return fields, pathError("add-child", path, unwrapPathErr(err))
	}
	promoted := fields
	if needsPromotion(parent) {
		promoted, err = UpdateFieldAtPath(fields, path, FieldUpdate{}.SetIsComplexType(true))
		if err != nil {
			return fields, err
		}
	}
	out, err := AddChildField(promoted, path)
	if err != nil {
		return fields, err
	}
	return out, nil
}

// UpdateFieldAtPath merges update into the field at path after running
// InferType against the field's current state.
func UpdateFieldAtPath(fields []Field, path Path, update FieldUpdate) ([]Field, error) {
	return rewrite("update", fields, path, func(current Field) (Field, error) {
		return InferType(current, update).Merge(current), nil
	})
}

// RemoveFieldAtPath removes the field at path from its parent (or from the
// root sequence for single-index paths). Later siblings shift down by one, so
// any path pointing past the removed index is stale afterwards.
func RemoveFieldAtPath(fields []Field, path Path) ([]Field, error) {
	return rewriteSiblings("remove", fields, path, func(siblings []Field, idx int) ([]Field, error) {
		return removeAt(siblings, idx), nil
	})
}

// MoveFieldAtPath moves the field at path to index to among its siblings.
// Other siblings keep their relative order.
func MoveFieldAtPath(fields []Field, path Path, to int) ([]Field, error) {
	return rewriteSiblings("move", fields, path, func(siblings []Field, idx int) ([]Field, error) {
		if to < 0 || to >= len(siblings) {
			return nil, ErrIndexOutOfRange
		}
		if to == idx {
			return siblings, nil
		}
		moved := siblings[idx]
		return insertAt(removeAt(siblings, idx), to, moved), nil
	})
}

// DuplicateFieldAtPath inserts a deep copy of the field at path directly after
// it.
func DuplicateFieldAtPath(fields []Field, path Path) ([]Field, error) {
	return rewriteSiblings("duplicate", fields, path, func(siblings []Field, idx int) ([]Field, error) {
		return insertAt(siblings, idx+1, siblings[idx].Clone()), nil
	})
}

// rewrite copies the spine from the root down to path and replaces the
// addressed field with fn's result. Siblings off the spine are shared with the
// input. On any failure the input is returned untouched.
func rewrite(op string, fields []Field, path Path, fn func(Field) (Field, error)) ([]Field, error) {
	if err := path.Validate(); err != nil {
		return fields, pathError(op, path, err)
	}
	out, err := rewriteLevel(fields, path, fn)
	if err != nil {
		return fields, pathError(op, path, err)
	}
	return out, nil
}

func rewriteLevel(fields []Field, path Path, fn func(Field) (Field, error)) ([]Field, error) {
	idx := path[0]
	if idx >= len(fields) {
		return nil, ErrPathNotFound
	}
	var (
		node = fields[idx]
		err  error
	)
	if len(path) == 1 {
		node, err = fn(node)
	} else {
		node.Children, err = rewriteLevel(node.Children, path[1:], fn)
	}
	if err != nil {
		return nil, err
	}
	out := make([]Field, len(fields))
	copy(out, fields)
	out[idx] = node
	return out, nil
}

// rewriteSiblings hands the sibling slice containing path's target to fn and
// splices the result back into a copied spine.
func rewriteSiblings(op string, fields []Field, path Path, fn func([]Field, int) ([]Field, error)) ([]Field, error) {
	if err := path.Validate(); err != nil {
		return fields, pathError(op, path, err)
	}
	last := path.Last()
	if len(path) == 1 {
		if last >= len(fields) {
			return fields, pathError(op, path, ErrPathNotFound)
		}
		out, err := fn(fields, last)
		if err != nil {
			return fields, pathError(op, path, err)
		}
		return out, nil
	}
	out, err := rewriteLevel(fields, path.Parent(), func(parent Field) (Field, error) {
		if last >= len(parent.Children) {
			return parent, ErrPathNotFound
		}
		children, err := fn(parent.Children, last)
		if err != nil {
			return parent, err
		}
		parent.Children = children
		return parent, nil
	})
	if err != nil {
		return fields, pathError(op, path, err)
	}
	return out, nil
}

// insertAt never appends into the input's backing array: two edits derived
// from the same tree must not observe each other.
func insertAt(fields []Field, idx int, field Field) []Field {
	out := make([]Field, 0, len(fields)+1)
	out = append(out, fields[:idx]...)
	out = append(out, field)
	out = append(out, fields[idx:]...)
	return out
}

func removeAt(fields []Field, idx int) []Field {
	out := make([]Field, 0, len(fields)-1)
	out = append(out, fields[:idx]...)
	out = append(out, fields[idx+1:]...)
	return out
}

func unwrapPathErr(err error) error {
	var pe *PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}
