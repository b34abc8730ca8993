package badger

import "log/slog"

type cacheOptions struct {
	logger *slog.Logger
}

// Option configures a cache opened by this package.
type Option func(*cacheOptions)

// WithLogger sets the logger badger diagnostics are bridged to.
func WithLogger(logger *slog.Logger) Option {
	return func(o *cacheOptions) {
		o.logger = logger
	}
}

func applyOptions(opts []Option) cacheOptions {
	var o cacheOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
