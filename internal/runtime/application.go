package runtime

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	configpkg "github.com/c-fraser/connekted/internal/runtime/config"
	"github.com/c-fraser/connekted/internal/runtime/errors"
	"github.com/c-fraser/connekted/internal/runtime/logging"
	transportpkg "github.com/c-fraser/connekted/transport"
)

// ApplicationData is the on-demand snapshot served by the control plane:
// every component's counters plus the transport-level totals.
type ApplicationData struct {
	Name       string          `json:"name"`
	State      string          `json:"state"`
	Components []ComponentData `json:"components"`
	Transport  QueueMetrics    `json:"transport"`
}

// Application owns a named set of components, the shared transport, and the
// control-plane server. Start and Shutdown are idempotent; concurrent calls
// race safely to exactly one winner.
type Application struct {
	name      string
	conf      *configpkg.Config
	logger    logging.ServiceLogger
	queues    *Queues
	metrics   *ComponentMetrics
	registry  *prometheus.Registry
	closeHook func()
	hooks     ComponentHooks

	// Insertion order is preserved: components start and stop in the order
	// they were registered.
	components []Component

	admin *adminServer

	mu    sync.Mutex
	state atomic.Int32
}

// Builder assembles an Application. Component registrations are deferred
// until Build so they can share the transport created there; registration
// order becomes component order.
type Builder struct {
	conf      *configpkg.Config
	logger    logging.ServiceLogger
	hooks     ComponentHooks
	closeHook func()
	transport *transportpkg.Transport

	registrations []componentRegistration
}

type componentRegistration struct {
	name  string
	build func(q *Queues, logger logging.ServiceLogger, m *ComponentMetrics, stopTimeout time.Duration) (Component, error)
}

// NewBuilder creates a builder for the given configuration. A nil logger
// disables logging.
func NewBuilder(conf *configpkg.Config, logger logging.ServiceLogger) *Builder {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Builder{conf: conf, logger: logger}
}

// WithCloseHook sets a function invoked once during application shutdown,
// after all components have stopped.
func (b *Builder) WithCloseHook(hook func()) *Builder {
	b.closeHook = hook
	return b
}

// WithHooks attaches hooks to every component built by this builder. They are
// merged with (and run before) any per-component hooks.
func (b *Builder) WithHooks(hooks ComponentHooks) *Builder {
	b.hooks = hooks
	return b
}

// WithTransport bypasses the registry and uses the given transport directly.
// Intended for tests and embedded setups.
func (b *Builder) WithTransport(t transportpkg.Transport) *Builder {
	b.transport = &t
	return b
}

// AddSender registers a sender component.
func AddSender[T any](b *Builder, cfg SenderConfig[T]) *Builder {
	cfg.Hooks = b.hooks.Merge(cfg.Hooks)
	b.registrations = append(b.registrations, componentRegistration{
		name: cfg.Name,
		build: func(q *Queues, logger logging.ServiceLogger, m *ComponentMetrics, stopTimeout time.Duration) (Component, error) {
			if cfg.StopTimeout <= 0 {
				cfg.StopTimeout = stopTimeout
			}
			return newSender(cfg, q, logger, m)
		},
	})
	return b
}

// AddReceiver registers a receiver component.
func AddReceiver[T any](b *Builder, cfg ReceiverConfig[T]) *Builder {
	cfg.Hooks = b.hooks.Merge(cfg.Hooks)
	b.registrations = append(b.registrations, componentRegistration{
		name: cfg.Name,
		build: func(q *Queues, logger logging.ServiceLogger, m *ComponentMetrics, stopTimeout time.Duration) (Component, error) {
			if cfg.StopTimeout <= 0 {
				cfg.StopTimeout = stopTimeout
			}
			return newReceiver(cfg, KindReceiver, q, logger, m)
		},
	})
	return b
}

// AddSendingReceiver registers a component that consumes from one queue and
// publishes to another.
func AddSendingReceiver[T, O any](b *Builder, cfg SendingReceiverConfig[T, O]) *Builder {
	cfg.Hooks = b.hooks.Merge(cfg.Hooks)
	b.registrations = append(b.registrations, componentRegistration{
		name: cfg.Name,
		build: func(q *Queues, logger logging.ServiceLogger, m *ComponentMetrics, stopTimeout time.Duration) (Component, error) {
			if cfg.StopTimeout <= 0 {
				cfg.StopTimeout = stopTimeout
			}
			return newSendingReceiver(cfg, q, logger, m)
		},
	})
	return b
}

// Build validates the configuration and component set, creates the transport,
// and assembles the application. All configuration errors surface here, never
// at runtime.
func (b *Builder) Build(ctx context.Context) (*Application, error) {
	if b.conf == nil {
		b.conf = &configpkg.Config{}
	}
	if b.transport == nil {
		if err := b.conf.Validate(); err != nil {
			return nil, err
		}
	}

	seen := make(map[string]struct{}, len(b.registrations))
	for _, reg := range b.registrations {
		if reg.name == "" {
			continue // surfaced by the component's own validation below
		}
		if _, dup := seen[reg.name]; dup {
			return nil, &errors.ConfigValidationError{Component: reg.name, Err: errors.ErrDuplicateName}
		}
		seen[reg.name] = struct{}{}
	}

	var tr transportpkg.Transport
	if b.transport != nil {
		tr = *b.transport
	} else {
		var err error
		tr, err = transportpkg.Build(ctx, b.conf, logging.Adapter(b.logger))
		if err != nil {
			return nil, fmt.Errorf("build transport: %w", err)
		}
	}

	registry := prometheus.NewRegistry()
	metrics := NewComponentMetrics(registry)
	if err := metrics.Register(); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	appLogger := b.logger.With(logging.LogFields{"app": b.conf.AppName})
	queues := NewQueues(tr, appLogger)
	if err := RegisterQueueMetrics(registry, queues); err != nil {
		return nil, fmt.Errorf("register queue metrics: %w", err)
	}

	app := &Application{
		name:      b.conf.AppName,
		conf:      b.conf,
		logger:    appLogger,
		queues:    queues,
		metrics:   metrics,
		registry:  registry,
		closeHook: b.closeHook,
		hooks:     b.hooks,
	}

	stopTimeout := b.conf.EffectiveComponentStopTimeout()
	for _, reg := range b.registrations {
		component, err := reg.build(queues, appLogger, metrics, stopTimeout)
		if err != nil {
			return nil, err
		}
		app.components = append(app.components, component)
	}

	app.admin = newAdminServer(app, appLogger)
	return app, nil
}

// Name returns the application name.
func (a *Application) Name() string { return a.name }

// State returns the application lifecycle state.
func (a *Application) State() State { return State(a.state.Load()) }

// Components returns the components in registration order.
func (a *Application) Components() []Component {
	out := make([]Component, len(a.components))
	copy(out, a.components)
	return out
}

// Start starts every component in registration order, then serves the
// control plane until the enclosing context is cancelled or a shutdown is
// requested; the full shutdown sequence runs before Start returns. Starting
// an already started application is a no-op that returns immediately.
func (a *Application) Start(ctx context.Context) error {
	a.mu.Lock()
	if State(a.state.Load()) != StateNotStarted {
		a.mu.Unlock()
		a.logger.Debug("Start ignored, application already started", nil)
		return nil
	}
	a.state.Store(int32(StateRunning))
	a.mu.Unlock()

	a.logger.Info("Application starting", logging.LogFields{
		"components": len(a.components),
	})

	for _, component := range a.components {
		if err := component.Start(ctx); err != nil {
			// A component that cannot start is logged and skipped; its
			// siblings keep running.
			a.logger.Error("Component failed to start", err, logging.LogFields{
				"component": component.Name(),
			})
		}
	}

	// Blocks until the admin server stops, which happens during Shutdown or
	// when ctx is cancelled.
	err := a.admin.serve(ctx)

	// serve returns on scope cancellation, a control-plane shutdown request,
	// or a listen failure; the application tears down before Start returns.
	// Shutdown is a no-op when the sequence already ran.
	a.Shutdown()
	return err
}

// Shutdown stops every component in registration order under the overall
// shutdown budget, runs the close hook, stops the control plane, and closes
// the transport. Each step is isolated so one failure never skips the rest.
// Concurrent calls execute the sequence exactly once.
func (a *Application) Shutdown() {
	a.mu.Lock()
	if State(a.state.Load()) != StateRunning {
		a.mu.Unlock()
		a.logger.Debug("Shutdown ignored, application not running", nil)
		return
	}
	a.state.Store(int32(StateShuttingDown))
	a.mu.Unlock()

	a.logger.Info("Application shutting down", nil)
	deadline := time.Now().Add(a.conf.EffectiveShutdownTimeout())

	for _, component := range a.components {
		if time.Now().After(deadline) {
			a.logger.Error("Shutdown budget exceeded, continuing regardless", nil, logging.LogFields{
				"component": component.Name(),
			})
		}
		a.stopComponent(component)
	}

	a.runCloseHook()
	a.admin.stop()

	if err := a.queues.Close(); err != nil {
		a.logger.Error("Failed to close transport", err, nil)
	}

	a.state.Store(int32(StateStopped))
	a.logger.Info("Application stopped", nil)
}

func (a *Application) stopComponent(component Component) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("Component shutdown panicked", nil, logging.LogFields{
				"component": component.Name(),
				"panic":     r,
			})
		}
	}()
	component.Shutdown()
}

func (a *Application) runCloseHook() {
	if a.closeHook == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("Application close hook panicked", nil, logging.LogFields{"panic": r})
		}
	}()
	a.closeHook()
}

// Data recomputes the aggregate snapshot from every component's counters.
func (a *Application) Data() ApplicationData {
	components := make([]ComponentData, 0, len(a.components))
	for _, component := range a.components {
		components = append(components, component.Data())
	}
	return ApplicationData{
		Name:       a.name,
		State:      a.State().String(),
		Components: components,
		Transport:  a.queues.Metrics(),
	}
}
