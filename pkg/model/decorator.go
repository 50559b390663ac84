package model

// Decorator adjusts a freshly built root sequence before it is handed to an
// editing session, e.g. to apply house naming rules.
type Decorator interface {
	Decorate(fields []Field) ([]Field, error)
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func([]Field) ([]Field, error)

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(fields []Field) ([]Field, error) {
	return fn(fields)
}
