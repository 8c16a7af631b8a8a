// Package logging defines the logging contract used throughout connekted.
// It maps directly onto Watermill's logging needs so applications can adapt
// their existing loggers without depending on slog.
package logging

import (
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
)

// LogFields represents structured logging key/value pairs.
type LogFields map[string]any

// ServiceLogger is the minimal logging contract required by connekted
// applications and components.
type ServiceLogger interface {
	With(fields LogFields) ServiceLogger
	Debug(msg string, fields LogFields)
	Info(msg string, fields LogFields)
	Error(msg string, err error, fields LogFields)
	Trace(msg string, fields LogFields)
}

var logLevelMapping = map[slog.Level]slog.Level{
	slog.LevelDebug: slog.LevelDebug,
	slog.LevelInfo:  slog.LevelInfo,
	slog.LevelWarn:  slog.LevelWarn,
	slog.LevelError: slog.LevelError,
}

// NewSlogServiceLogger wraps a slog.Logger so it satisfies the ServiceLogger
// interface.
func NewSlogServiceLogger(log *slog.Logger) ServiceLogger {
	if log == nil {
		panic("connekted: slog logger cannot be nil")
	}
	return NewWatermillServiceLogger(watermill.NewSlogLoggerWithLevelMapping(log, logLevelMapping))
}

// NewWatermillServiceLogger wraps an existing Watermill LoggerAdapter so it
// can be supplied to the application builder.
func NewWatermillServiceLogger(logger watermill.LoggerAdapter) ServiceLogger {
	if logger == nil {
		panic("connekted: watermill logger cannot be nil")
	}
	return &watermillServiceLogger{inner: logger}
}

// NopLogger returns a ServiceLogger that discards everything.
func NopLogger() ServiceLogger {
	return &watermillServiceLogger{inner: watermill.NopLogger{}}
}

type watermillServiceLogger struct {
	inner watermill.LoggerAdapter
}

func (w *watermillServiceLogger) With(fields LogFields) ServiceLogger {
	return &watermillServiceLogger{inner: w.inner.With(toWatermillFields(fields))}
}

func (w *watermillServiceLogger) Debug(msg string, fields LogFields) {
	w.inner.Debug(msg, toWatermillFields(fields))
}

func (w *watermillServiceLogger) Info(msg string, fields LogFields) {
	w.inner.Info(msg, toWatermillFields(fields))
}

func (w *watermillServiceLogger) Error(msg string, err error, fields LogFields) {
	w.inner.Error(msg, err, toWatermillFields(fields))
}

func (w *watermillServiceLogger) Trace(msg string, fields LogFields) {
	w.inner.Trace(msg, toWatermillFields(fields))
}

// Adapter exposes the underlying Watermill logger for code that talks to
// Watermill directly, such as transport builders.
func Adapter(logger ServiceLogger) watermill.LoggerAdapter {
	if w, ok := logger.(*watermillServiceLogger); ok {
		return w.inner
	}
	return &serviceLoggerAdapter{inner: logger}
}

func toWatermillFields(fields LogFields) watermill.LogFields {
	if len(fields) == 0 {
		return nil
	}
	converted := make(watermill.LogFields, len(fields))
	for key, value := range fields {
		converted[key] = value
	}
	return converted
}

func fromWatermillFields(fields watermill.LogFields) LogFields {
	if len(fields) == 0 {
		return nil
	}
	converted := make(LogFields, len(fields))
	for key, value := range fields {
		converted[key] = value
	}
	return converted
}

// serviceLoggerAdapter turns a ServiceLogger back into a Watermill
// LoggerAdapter for third-party ServiceLogger implementations.
type serviceLoggerAdapter struct {
	inner ServiceLogger
}

func (a *serviceLoggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.inner.Error(msg, err, fromWatermillFields(fields))
}

func (a *serviceLoggerAdapter) Info(msg string, fields watermill.LogFields) {
	a.inner.Info(msg, fromWatermillFields(fields))
}

func (a *serviceLoggerAdapter) Debug(msg string, fields watermill.LogFields) {
	a.inner.Debug(msg, fromWatermillFields(fields))
}

func (a *serviceLoggerAdapter) Trace(msg string, fields watermill.LogFields) {
	a.inner.Trace(msg, fromWatermillFields(fields))
}

func (a *serviceLoggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &serviceLoggerAdapter{inner: a.inner.With(fromWatermillFields(fields))}
}
