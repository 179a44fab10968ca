package event

import "log/slog"

// BusOption configures an event Bus.
type BusOption func(*busConfig)

type busConfig struct {
	logger       *slog.Logger
	errorHandler func(error)
}

func defaultBusConfig() busConfig {
	return busConfig{logger: slog.Default()}
}

// WithLogger sets the logger used for handler failures.
func WithLogger(l *slog.Logger) BusOption {
	return func(c *busConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithErrorHandler receives every *HandlerError and *PanicError.
func WithErrorHandler(fn func(error)) BusOption {
	return func(c *busConfig) {
		c.errorHandler = fn
	}
}
