package formula

import (
	"io"

	"github.com/rs/zerolog"
)

// Option configures a Registry or a one-shot Compile/Eval call.
type Option func(*Registry)

// WithLogger sets the logger used for lifecycle and parse events. The
// default logger discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithOutput sets the writer that receives syntax diagnostics when verbose
// mode is on. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Registry) {
		r.out = w
	}
}

// WithVerbose enables printing of the caret diagnostic block on parse and
// check failures.
func WithVerbose(verbose bool) Option {
	return func(r *Registry) {
		r.verbose = verbose
	}
}

// WithMu0 sets the initial value of the registry's mu0 scalar, compiled for
// the named constant "mu". Defaults to 1.
func WithMu0(v float64) Option {
	return func(r *Registry) {
		r.mu0 = v
	}
}
