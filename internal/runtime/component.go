package runtime

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c-fraser/connekted/internal/runtime/logging"
)

// Kind identifies a component variant by its capabilities.
type Kind string

const (
	// KindSender produces messages on a schedule.
	KindSender Kind = "sender"
	// KindReceiver consumes messages from a queue.
	KindReceiver Kind = "receiver"
	// KindSendingReceiver consumes messages and produces responses.
	KindSendingReceiver Kind = "sending-receiver"
)

// State is a lifecycle state of a component or application.
type State int32

const (
	// StateNotStarted means Start has not been called yet.
	StateNotStarted State = iota
	// StateRunning means the work loop is active.
	StateRunning
	// StateShuttingDown means shutdown has begun but the work loop may still
	// be unwinding.
	StateShuttingDown
	// StateStopped is terminal.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting-down"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Component is a named unit of work owned by an application. Start launches
// the component's task and returns once the task is running; Shutdown stops
// it and blocks (bounded) until the task has unwound. Both are idempotent.
type Component interface {
	Name() string
	Kind() Kind
	Start(ctx context.Context) error
	Shutdown()
	State() State
	Data() ComponentData
}

// ComponentData is a point-in-time snapshot of a component's counters. Error
// counts are derived, not stored: sends and receipts that never completed.
type ComponentData struct {
	Name          string `json:"name"`
	Kind          Kind   `json:"kind"`
	State         string `json:"state"`
	Generated     uint64 `json:"generated"`
	Sent          uint64 `json:"sent"`
	Received      uint64 `json:"received"`
	Handled       uint64 `json:"handled"`
	SendErrors    uint64 `json:"send_errors"`
	ReceiveErrors uint64 `json:"receive_errors"`
}

// defaultStopTimeout bounds how long Shutdown waits for a work loop to
// observe cancellation and exit.
const defaultStopTimeout = 5 * time.Second

// component carries the state machine and counters shared by every variant.
// The work loop signals completion by closing done; Shutdown cancels the
// loop's context and waits for that signal.
type component struct {
	name        string
	kind        Kind
	logger      logging.ServiceLogger
	hooks       ComponentHooks
	metrics     *ComponentMetrics
	closeHook   func()
	stopTimeout time.Duration

	mu     sync.Mutex
	state  atomic.Int32
	cancel context.CancelFunc
	done   chan struct{}

	generated atomic.Uint64
	sent      atomic.Uint64
	received  atomic.Uint64
	handled   atomic.Uint64
}

func newComponent(name string, kind Kind, logger logging.ServiceLogger, hooks ComponentHooks, metrics *ComponentMetrics, closeHook func(), stopTimeout time.Duration) component {
	if logger == nil {
		logger = logging.NopLogger()
	}
	if stopTimeout <= 0 {
		stopTimeout = defaultStopTimeout
	}
	return component{
		name:        name,
		kind:        kind,
		logger:      logger.With(logging.LogFields{"component": name, "kind": string(kind)}),
		hooks:       hooks,
		metrics:     metrics,
		closeHook:   closeHook,
		stopTimeout: stopTimeout,
		done:        make(chan struct{}),
	}
}

func (c *component) Name() string { return c.name }

func (c *component) Kind() Kind { return c.kind }

func (c *component) State() State { return State(c.state.Load()) }

// begin transitions the component into the running state and derives the
// cancellable context its work loop runs under. It reports false when the
// component was already started, making Start idempotent.
func (c *component) begin(ctx context.Context) (context.Context, bool) {
	c.mu.Lock()
	if State(c.state.Load()) != StateNotStarted {
		c.mu.Unlock()
		c.logger.Debug("Start ignored, component already started", nil)
		return nil, false
	}
	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.state.Store(int32(StateRunning))
	c.mu.Unlock()

	if c.hooks.OnStart != nil {
		c.hooks.OnStart(HookContext{Component: c.name, Kind: c.kind, StartedAt: time.Now()})
	}
	c.logger.Info("Component started", nil)
	return loopCtx, true
}

// finish marks the work loop as exited. Called exactly once, from the loop's
// own goroutine.
func (c *component) finish() {
	close(c.done)
}

// Shutdown cancels the work loop, waits (bounded) for it to exit, and runs
// the close hook. Only the caller that wins the running -> shutting-down
// transition performs the teardown; every other caller returns immediately.
func (c *component) Shutdown() {
	c.mu.Lock()
	if State(c.state.Load()) != StateRunning {
		// Shutting down a component that never ran, or that is already
		// stopping, is a no-op.
		c.mu.Unlock()
		return
	}
	c.state.Store(int32(StateShuttingDown))
	cancel := c.cancel
	c.mu.Unlock()
	c.logger.Info("Component shutting down", nil)

	cancel()
	select {
	case <-c.done:
	case <-time.After(c.stopTimeout):
		c.logger.Error("Component did not stop within timeout", nil, logging.LogFields{
			"timeout": c.stopTimeout.String(),
		})
	}

	c.runCloseHook()
	c.state.Store(int32(StateStopped))
	if c.hooks.OnStop != nil {
		c.hooks.OnStop(HookContext{Component: c.name, Kind: c.kind})
	}
	c.logger.Info("Component stopped", nil)
}

func (c *component) runCloseHook() {
	if c.closeHook == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Close hook panicked", nil, logging.LogFields{"panic": r})
		}
	}()
	c.closeHook()
}

// Data recomputes the snapshot on demand. Counters are sampled independently,
// so a snapshot taken while the loop is mid-message may briefly show an error
// that resolves itself; derived counts clamp at zero to absorb that skew.
func (c *component) Data() ComponentData {
	generated := c.generated.Load()
	sent := c.sent.Load()
	received := c.received.Load()
	handled := c.handled.Load()
	return ComponentData{
		Name:          c.name,
		Kind:          c.kind,
		State:         c.State().String(),
		Generated:     generated,
		Sent:          sent,
		Received:      received,
		Handled:       handled,
		SendErrors:    clampedDelta(generated, sent),
		ReceiveErrors: clampedDelta(received, handled),
	}
}

func clampedDelta(total, completed uint64) uint64 {
	if completed >= total {
		return 0
	}
	return total - completed
}

func (c *component) countGenerated() {
	c.generated.Add(1)
	c.metrics.incGenerated(c.name)
}

func (c *component) countSent() {
	c.sent.Add(1)
	c.metrics.incSent(c.name)
}

func (c *component) countReceived() {
	c.received.Add(1)
	c.metrics.incReceived(c.name)
}

func (c *component) countHandled() {
	c.handled.Add(1)
	c.metrics.incHandled(c.name)
}
