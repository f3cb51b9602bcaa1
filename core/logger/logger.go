package logger

import (
	"io"
	"log/slog"
	"os"
)

type options struct {
	level   slog.Leveler
	output  io.Writer
	json    bool
	attrs   []slog.Attr
	source  bool
	handler slog.Handler
}

// Option configures logger construction.
type Option func(*options)

// WithLevel sets the minimum log level.
func WithLevel(level slog.Leveler) Option {
	return func(o *options) { o.level = level }
}

// WithOutput sets the output destination. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.output = w
		}
	}
}

// WithJSONFormatter switches output to JSON format.
func WithJSONFormatter() Option {
	return func(o *options) { o.json = true }
}

// WithAttr adds attributes attached to every record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(o *options) { o.attrs = append(o.attrs, attrs...) }
}

// WithSource includes source file and line in records.
func WithSource() Option {
	return func(o *options) { o.source = true }
}

// WithHandler sets a fully custom handler, overriding format options.
func WithHandler(h slog.Handler) Option {
	return func(o *options) { o.handler = h }
}

// WithDevelopment configures a text logger at debug level tagged with the app name.
func WithDevelopment(appName string) Option {
	return func(o *options) {
		o.level = slog.LevelDebug
		o.json = false
		if appName != "" {
			o.attrs = append(o.attrs, slog.String("app", appName))
		}
	}
}

// WithProduction configures a JSON logger at info level tagged with the app name.
func WithProduction(appName string) Option {
	return func(o *options) {
		o.level = slog.LevelInfo
		o.json = true
		if appName != "" {
			o.attrs = append(o.attrs, slog.String("app", appName))
		}
	}
}

// New creates a slog.Logger from the given options.
// With no options it returns a text logger at info level writing to stdout.
func New(opts ...Option) *slog.Logger {
	o := &options{
		level:  slog.LevelInfo,
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(o)
	}

	h := o.handler
	if h == nil {
		hopts := &slog.HandlerOptions{Level: o.level, AddSource: o.source}
		if o.json {
			h = slog.NewJSONHandler(o.output, hopts)
		} else {
			h = slog.NewTextHandler(o.output, hopts)
		}
	}

	if len(o.attrs) > 0 {
		h = h.WithAttrs(o.attrs)
	}

	return slog.New(h)
}

// SetAsDefault installs the logger as the process-wide slog default.
func SetAsDefault(log *slog.Logger) {
	if log != nil {
		slog.SetDefault(log)
	}
}
