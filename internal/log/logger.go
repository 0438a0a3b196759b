// Package log wraps slog with a component attribute and the HTTP logging
// middleware used by the server.
package log

import (
	"log/slog"
	"os"
)

// Logger is a slog.Logger that stamps every record with its component.
// The bare logger without the component attribute is kept so a component
// switch replaces the attribute instead of stacking a second one.
type Logger struct {
	*slog.Logger
	base      *slog.Logger
	component string
}

// Config holds logger configuration.
type Config struct {
	Level     slog.Level
	Component string
	Handler   slog.Handler
}

// New creates a logger with the given configuration. A nil Handler falls
// back to a text handler on stdout.
func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: config.Level})
	}
	component := config.Component
	if component == "" {
		component = "app"
	}
	base := slog.New(handler)
	return &Logger{
		Logger:    base.With("component", component),
		base:      base,
		component: component,
	}
}

// With returns a logger with extra attributes attached.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), base: l.base, component: l.component}
}

// WithComponent returns a logger for a different component. Attributes
// added with With do not carry over; the new logger starts from the bare
// handler with only the component attribute.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:    l.base.With("component", component),
		base:      l.base,
		component: component,
	}
}

// Component returns the logger's component name.
func (l *Logger) Component() string {
	return l.component
}

// SetDefault installs the logger as the process-wide slog default.
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}
