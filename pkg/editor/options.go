package editor

import (
	"github.com/sirupsen/logrus"

	"github.com/integrixs/fieldtree/pkg/model"
)

// DefaultHistoryLimit caps the undo stack when no limit is configured.
const DefaultHistoryLimit = 100

// ChangeFunc receives the new root sequence after every successful edit. It
// replaces the setter a UI host would otherwise wire to its own state.
type ChangeFunc func(fields []model.Field)

// Option configures a Session.
type Option func(*Session)

// WithFields seeds the session with an initial root sequence, typically one
// loaded from a stored schema. The initial tree is not recorded in history.
func WithFields(fields []model.Field) Option {
	return func(s *Session) {
		s.fields = fields
	}
}

// WithOnChange registers the change callback.
func WithOnChange(fn ChangeFunc) Option {
	return func(s *Session) {
		s.onChange = fn
	}
}

// WithHistoryLimit bounds the undo stack. Zero disables history; negative
// values fall back to DefaultHistoryLimit.
func WithHistoryLimit(limit int) Option {
	return func(s *Session) {
		if limit < 0 {
			limit = DefaultHistoryLimit
		}
		s.limit = limit
	}
}

// WithLogger overrides the logger; defaults to the logrus standard logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}
