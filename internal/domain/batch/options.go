package batch

import "github.com/algobio/dnacore/internal/domain/model"

// Option applies a configuration option to the Comparator.
type Option func(*Comparator)

// WithExecutor sets how pairs are dispatched. Defaults to model.Sequential.
func WithExecutor(exec model.Executor) Option {
	return func(c *Comparator) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithDefaultMaxSequences sets the cap applied when a request does not name one.
func WithDefaultMaxSequences(n int) Option {
	return func(c *Comparator) {
		if n >= 2 {
			c.defaultMax = n
		}
	}
}

// WithMaxSequences sets the hard cap a request's max_sequences may not exceed.
func WithMaxSequences(n int) Option {
	return func(c *Comparator) {
		if n >= 2 {
			c.hardMax = n
		}
	}
}

// WithMaxResults caps the number of search hits a request may ask for.
func WithMaxResults(n int) Option {
	return func(c *Comparator) {
		if n > 0 {
			c.maxResults = n
		}
	}
}

// WithMaxLength rejects sequences longer than n bases. Zero disables the check.
func WithMaxLength(n int) Option {
	return func(c *Comparator) {
		if n >= 0 {
			c.maxLength = n
		}
	}
}
