package merge

// DefaultNoteDelimiter separates distinct notes from different sources.
const DefaultNoteDelimiter = "\n"

// options holds merge configuration.
type options struct {
	noteDelimiter string
}

func defaultOptions() *options {
	return &options{
		noteDelimiter: DefaultNoteDelimiter,
	}
}

// Option is a function that configures a merge.
type Option func(*options)

// newOptions returns merge options with default values.
func newOptions(opts ...Option) *options {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithNoteDelimiter overrides the delimiter placed between distinct notes.
func WithNoteDelimiter(delimiter string) Option {
	return func(o *options) {
		o.noteDelimiter = delimiter
	}
}
