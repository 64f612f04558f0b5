package service

import "time"

type options struct {
	now func() time.Time
}

// Option configures the services of this package.
type Option func(*options)

// WithClock overrides the source of "now".
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func newOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
