// Package model defines the field tree edited for a data structure: the
// recursive Field node, index paths that address nodes inside a root
// sequence, and the pure mutation operations applied on every user edit.
//
// Every mutation takes the current root sequence and returns a new one. The
// spine from the root to the edited node is copied while untouched sibling
// subtrees are shared with the input, so callers may keep previous root
// sequences around (for undo, diffing, snapshots) without them being
// disturbed. When a path does not resolve the input slice is returned as-is
// together with an error wrapping ErrPathNotFound; hosts that prefer silent
// no-op semantics can ignore the error and compare the result.
//
// Editing maxOccurs triggers the type-inference policy implemented by
// InferType: widening cardinality forces the array type and narrowing an
// array back to a single occurrence resets it to string.
package model
