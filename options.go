package reactivemodel

import "time"

// modelOptions holds resolved configuration for [New].
type modelOptions struct {
	asyncValidationTimeout time.Duration
	debounceReactions      time.Duration
	errorFormatter         func(ErrorRecord) string
	errorHandler           *Classifier
	failFast               bool
	logger                 Logger
}

// Option configures a [Model] at construction.
type Option interface {
	apply(*modelOptions)
}

type optionFunc func(*modelOptions)

func (f optionFunc) apply(o *modelOptions) { f(o) }

// WithAsyncValidationTimeout sets the per-validator async timeout.
// Defaults to 5000ms.
func WithAsyncValidationTimeout(d time.Duration) Option {
	return optionFunc(func(o *modelOptions) { o.asyncValidationTimeout = d })
}

// WithDebounce sets the reaction debounce interval. Zero (the default)
// dispatches reactions synchronously.
func WithDebounce(d time.Duration) Option {
	return optionFunc(func(o *modelOptions) { o.debounceReactions = d })
}

// WithErrorFormatter overrides how [Model.ValidationSummary] renders each
// error entry. Default is "<field>: <message>".
func WithErrorFormatter(f func(ErrorRecord) string) Option {
	return optionFunc(func(o *modelOptions) { o.errorFormatter = f })
}

// WithErrorHandler injects an externally-owned [Classifier] instead of
// letting the model construct its own.
func WithErrorHandler(c *Classifier) Option {
	return optionFunc(func(o *modelOptions) { o.errorHandler = c })
}

// WithFailFast enables fail-fast per-field validation: validators run
// sequentially and the first failure stops the remainder. Default is
// aggregate mode (all validators run, every failure recorded).
func WithFailFast(failFast bool) Option {
	return optionFunc(func(o *modelOptions) { o.failFast = failFast })
}

// WithLogger sets the [Logger] this model's components write diagnostics
// through. Defaults to the process-wide logger set via [SetLogger].
func WithLogger(logger Logger) Option {
	return optionFunc(func(o *modelOptions) { o.logger = logger })
}

func resolveOptions(opts []Option) *modelOptions {
	cfg := &modelOptions{
		asyncValidationTimeout: 5000 * time.Millisecond,
		debounceReactions:      0,
		errorFormatter:         defaultErrorFormatter,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(cfg)
	}
	return cfg
}

func defaultErrorFormatter(e ErrorRecord) string {
	return e.Field + ": " + e.Message
}
