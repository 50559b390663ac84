package model

// DefaultMaxDepth bounds recursion when converting nested schemas.
const DefaultMaxDepth = 64

// Options configures the Builder and Serializer. Options are constructed by
// the root package helpers and passed into New / NewSerializer.
type Options struct {
	// Sanitize cleans descriptions read from source documents.
	Sanitize func(string) string
	// MaxDepth caps nesting; deeper schemas fail with ErrMaxDepth.
	MaxDepth int
}

func defaultOptions() Options {
	return Options{
		Sanitize: SanitizeDescription,
		MaxDepth: DefaultMaxDepth,
	}
}

func (o Options) withDefaults() Options {
	opts := defaultOptions()
	if o.Sanitize != nil {
		opts.Sanitize = o.Sanitize
	}
	if o.MaxDepth > 0 {
		opts.MaxDepth = o.MaxDepth
	}
	return opts
}
