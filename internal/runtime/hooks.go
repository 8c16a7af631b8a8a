package runtime

import (
	"time"

	"github.com/c-fraser/connekted/internal/runtime/logging"
)

// HookContext provides information about a component event to hooks.
type HookContext struct {
	// Component is the name of the component the event belongs to.
	Component string
	// Kind identifies the component variant.
	Kind Kind
	// Queue is the queue involved in the event, if any.
	Queue string
	// MessageID is the identifier of the message involved, if any.
	MessageID string
	// StartedAt is when the observed operation started.
	StartedAt time.Time
	// Duration is how long the operation took (only set on done/error events).
	Duration time.Duration
}

// ComponentHooks defines callbacks for component lifecycle and message events.
// All hooks are optional - nil hooks are simply not called. Hooks run on the
// component's own task, so they must be fast and must not block.
type ComponentHooks struct {
	// OnStart is called when a component enters the running state.
	OnStart func(ctx HookContext)

	// OnStop is called after a component has stopped.
	OnStop func(ctx HookContext)

	// OnMessageDone is called after a message is successfully sent or handled.
	OnMessageDone func(ctx HookContext)

	// OnError is called when message generation, sending, or handling fails.
	// The failure stays inside the component; the hook only observes it.
	OnError func(ctx HookContext, err error)
}

// Merge combines two ComponentHooks, creating a new ComponentHooks that calls
// both. The hooks from 'other' are called after the hooks from 'h'.
func (h ComponentHooks) Merge(other ComponentHooks) ComponentHooks {
	return ComponentHooks{
		OnStart:       chainHooks(h.OnStart, other.OnStart),
		OnStop:        chainHooks(h.OnStop, other.OnStop),
		OnMessageDone: chainHooks(h.OnMessageDone, other.OnMessageDone),
		OnError:       chainErrorHooks(h.OnError, other.OnError),
	}
}

func chainHooks(a, b func(HookContext)) func(HookContext) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx HookContext) {
		a(ctx)
		b(ctx)
	}
}

func chainErrorHooks(a, b func(HookContext, error)) func(HookContext, error) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx HookContext, err error) {
		a(ctx, err)
		b(ctx, err)
	}
}

// LoggingHooks returns pre-built hooks that log component events.
func LoggingHooks(logger logging.ServiceLogger) ComponentHooks {
	return ComponentHooks{
		OnStart: func(ctx HookContext) {
			logger.Info("Component started", logging.LogFields{
				"component": ctx.Component,
				"kind":      string(ctx.Kind),
			})
		},
		OnStop: func(ctx HookContext) {
			logger.Info("Component stopped", logging.LogFields{
				"component": ctx.Component,
				"kind":      string(ctx.Kind),
			})
		},
		OnMessageDone: func(ctx HookContext) {
			logger.Debug("Message processed", logging.LogFields{
				"component":   ctx.Component,
				"queue":       ctx.Queue,
				"message_id":  ctx.MessageID,
				"duration_ms": ctx.Duration.Milliseconds(),
			})
		},
		OnError: func(ctx HookContext, err error) {
			logger.Error("Component operation failed", err, logging.LogFields{
				"component":   ctx.Component,
				"queue":       ctx.Queue,
				"message_id":  ctx.MessageID,
				"duration_ms": ctx.Duration.Milliseconds(),
			})
		},
	}
}

// MetricsHooks returns pre-built hooks that record component events through
// the provided callbacks.
func MetricsHooks(onDone, onError func(component string, kind Kind)) ComponentHooks {
	return ComponentHooks{
		OnMessageDone: func(ctx HookContext) {
			if onDone != nil {
				onDone(ctx.Component, ctx.Kind)
			}
		},
		OnError: func(ctx HookContext, err error) {
			if onError != nil {
				onError(ctx.Component, ctx.Kind)
			}
		},
	}
}

// AlertingHooks returns pre-built hooks that trigger alerts on component
// errors.
func AlertingHooks(alertFunc func(ctx HookContext, err error)) ComponentHooks {
	return ComponentHooks{
		OnError: alertFunc,
	}
}
