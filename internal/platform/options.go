package platform

import (
	"log/slog"

	"github.com/aretw0/otcheck/pkg/codec"
	"github.com/aretw0/otcheck/pkg/core"
)

// options holds the internal configuration for the otcheck service.
type options struct {
	logger       *slog.Logger
	format       string
	codec        codec.Options
	skipBound    core.SkipBound
	pattern      string
	systemDir    string
	errorHandler func(error)
	cache        bool
}

// Option defines a functional option for configuring otcheck.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		format:    "json",
		skipBound: core.SkipBoundLegacy,
		cache:     true,
	}
}

func apply(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithFormat selects the wire format of operation logs ("json", "yaml", "toml").
// Defaults to "json".
func WithFormat(name string) Option {
	return func(o *options) {
		o.format = name
	}
}

// WithStrictKinds makes records of an unknown kind a decode failure instead
// of a no-op.
func WithStrictKinds(strict bool) Option {
	return func(o *options) {
		o.codec.StrictKinds = strict
	}
}

// WithStrictNumbers decodes JSON numbers as json.Number so large integers
// keep their precision.
func WithStrictNumbers(strict bool) Option {
	return func(o *options) {
		o.codec.StrictNumbers = strict
	}
}

// WithSkipBound selects how far a skip may move the cursor.
func WithSkipBound(b core.SkipBound) Option {
	return func(o *options) {
		o.skipBound = b
	}
}

// WithPattern sets the doublestar pattern selecting case files.
func WithPattern(pattern string) Option {
	return func(o *options) {
		o.pattern = pattern
	}
}

// WithSystemDir sets the hidden directory holding the verdict index.
// Defaults to ".otcheck".
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.systemDir = name
	}
}

// WithErrorHandler registers a callback for runtime failures of the watcher,
// which are otherwise only logged.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}

// WithCache enables or disables the persistent verdict index.
// Enabled by default.
func WithCache(enabled bool) Option {
	return func(o *options) {
		o.cache = enabled
	}
}
