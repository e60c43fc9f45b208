package simulation

import "github.com/algobio/dnacore/internal/domain/model"

// Option applies a configuration option to the Orchestrator.
type Option func(*Orchestrator)

// WithExecutor sets how variants are dispatched. Defaults to model.Sequential.
func WithExecutor(exec model.Executor) Option {
	return func(o *Orchestrator) {
		if exec != nil {
			o.exec = exec
		}
	}
}

// WithMaxVariants lowers the per-request variant limit. Values outside
// [1, MaxVariants] are ignored.
func WithMaxVariants(n int) Option {
	return func(o *Orchestrator) {
		if n >= 1 && n <= MaxVariants {
			o.maxVariants = n
		}
	}
}

// WithMaxLength rejects source sequences longer than n bases. Zero disables
// the check.
func WithMaxLength(n int) Option {
	return func(o *Orchestrator) {
		if n >= 0 {
			o.maxLength = n
		}
	}
}

// WithSeedSource sets the master seed used when a request carries none.
func WithSeedSource(fn func() int64) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.seed = fn
		}
	}
}
