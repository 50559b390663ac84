package editor

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/integrixs/fieldtree/pkg/model"
)

// Session owns the latest root sequence of one editing session. Every edit
// delegates to the pure operations in package model, swaps in the returned
// tree, pushes the previous tree onto the undo stack and notifies the change
// callback. Failed edits change nothing and return the error.
//
// Every tree the session holds carries a revision number. Dirty compares the
// current revision with the one recorded by MarkSaved, so undoing back to the
// saved tree is clean while an edit that history no longer reaches is not.
//
// A Session expects a single writer. The mutex only keeps readers such as
// Fields from observing a half-applied swap.
type Session struct {
	mu       sync.RWMutex
	fields   []model.Field
	revision uint64
	saved    uint64
	latest   uint64
	undo     []snapshot
	redo     []snapshot
	limit    int
	onChange ChangeFunc
	logger   logrus.FieldLogger
}

type snapshot struct {
	fields   []model.Field
	revision uint64
}

// New constructs a Session.
func New(options ...Option) *Session {
	s := &Session{
		limit:  DefaultHistoryLimit,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.fields == nil {
		s.fields = []model.Field{}
	}
	return s
}

// Fields returns the current root sequence. Treat it as read-only; edits go
// through the Session methods.
func (s *Session) Fields() []model.Field {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fields
}

// Resolve returns the field at path in the current tree.
func (s *Session) Resolve(path model.Path) (model.Field, error) {
	return model.Resolve(s.Fields(), path)
}

// Lint runs model.Lint against the current tree.
func (s *Session) Lint() []model.Issue {
	return model.Lint(s.Fields())
}

// AddRootField appends a default field and returns its path.
func (s *Session) AddRootField() model.Path {
	var path model.Path
	_ = s.apply("add-root", nil, func(fields []model.Field) ([]model.Field, error) {
		out := model.AddRootField(fields)
		path = model.Path{len(out) - 1}
		return out, nil
	})
	return path
}

// AddChildField appends a default child to the field at path.
func (s *Session) AddChildField(path model.Path) error {
	return s.apply("add-child", path, func(fields []model.Field) ([]model.Field, error) {
		return model.AddChildField(fields, path)
	})
}

// AddChildFieldPromoting appends a default child and flags a scalar parent as
// a complex type in the same edit.
func (s *Session) AddChildFieldPromoting(path model.Path) error {
	return s.apply("add-child", path, func(fields []model.Field) ([]model.Field, error) {
		return model.AddChildFieldPromoting(fields, path)
	})
}

// UpdateFieldAtPath merges update into the field at path.
func (s *Session) UpdateFieldAtPath(path model.Path, update model.FieldUpdate) error {
	if update.Empty() {
		return nil
	}
	return s.apply("update", path, func(fields []model.Field) ([]model.Field, error) {
		return model.UpdateFieldAtPath(fields, path, update)
	})
}

// RemoveFieldAtPath removes the field at path. Paths to later siblings are
// stale afterwards.
func (s *Session) RemoveFieldAtPath(path model.Path) error {
	return s.apply("remove", path, func(fields []model.Field) ([]model.Field, error) {
		return model.RemoveFieldAtPath(fields, path)
	})
}

// MoveFieldAtPath reorders the field at path among its siblings.
func (s *Session) MoveFieldAtPath(path model.Path, to int) error {
	return s.apply("move", path, func(fields []model.Field) ([]model.Field, error) {
		return model.MoveFieldAtPath(fields, path, to)
	})
}

// DuplicateFieldAtPath inserts a copy of the field at path after it.
func (s *Session) DuplicateFieldAtPath(path model.Path) error {
	return s.apply("duplicate", path, func(fields []model.Field) ([]model.Field, error) {
		return model.DuplicateFieldAtPath(fields, path)
	})
}

// Replace swaps the whole tree, e.g. after reloading the stored schema. The
// replacement is undoable like any other edit.
func (s *Session) Replace(fields []model.Field) {
	if fields == nil {
		fields = []model.Field{}
	}
	_ = s.apply("replace", nil, func([]model.Field) ([]model.Field, error) {
		return fields, nil
	})
}

// Dirty reports whether the current tree differs from the one loaded or last
// marked saved. It does not depend on the undo history, which may be disabled.
func (s *Session) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision != s.saved
}

// MarkSaved records the current tree as persisted.
func (s *Session) MarkSaved() {
	s.mu.Lock()
	s.saved = s.revision
	s.mu.Unlock()
}

// CanUndo reports whether Undo has anything to restore.
func (s *Session) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.undo) > 0
}

// CanRedo reports whether Redo has anything to restore.
func (s *Session) CanRedo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.redo) > 0
}

// Undo restores the tree that preceded the last edit.
func (s *Session) Undo() bool {
	s.mu.Lock()
	if len(s.undo) == 0 {
		s.mu.Unlock()
		return false
	}
	previous := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, s.current())
	s.restore(previous)
	s.mu.Unlock()

	s.logger.WithField("op", "undo").Debug("editor: restored previous tree")
	s.notify(previous.fields)
	return true
}

// Redo re-applies the last undone edit.
func (s *Session) Redo() bool {
	s.mu.Lock()
	if len(s.redo) == 0 {
		s.mu.Unlock()
		return false
	}
	next := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.pushUndo(s.current())
	s.restore(next)
	s.mu.Unlock()

	s.logger.WithField("op", "redo").Debug("editor: re-applied tree")
	s.notify(next.fields)
	return true
}

func (s *Session) apply(op string, path model.Path, fn func([]model.Field) ([]model.Field, error)) error {
	s.mu.Lock()
	next, err := fn(s.fields)
	if err != nil {
		s.mu.Unlock()
		s.logger.WithFields(logrus.Fields{"op": op, "path": path.String()}).WithError(err).Warn("editor: edit rejected")
		return err
	}
	s.pushUndo(s.current())
	s.redo = nil
	s.latest++
	s.restore(snapshot{fields: next, revision: s.latest})
	s.mu.Unlock()

	entry := s.logger.WithFields(logrus.Fields{"op": op, "fields": model.Count(next)})
	if path != nil {
		entry = entry.WithField("path", path.String())
	}
	entry.Debug("editor: edit applied")
	s.notify(next)
	return nil
}

// current, restore and pushUndo must be called with s.mu held.
func (s *Session) current() snapshot {
	return snapshot{fields: s.fields, revision: s.revision}
}

func (s *Session) restore(snap snapshot) {
	s.fields = snap.fields
	s.revision = snap.revision
}

func (s *Session) pushUndo(snap snapshot) {
	if s.limit == 0 {
		return
	}
	s.undo = append(s.undo, snap)
	if over := len(s.undo) - s.limit; over > 0 {
		s.undo = append([]snapshot(nil), s.undo[over:]...)
	}
}

func (s *Session) notify(fields []model.Field) {
	if s.onChange != nil {
		s.onChange(fields)
	}
}
