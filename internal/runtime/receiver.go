package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/c-fraser/connekted/internal/runtime/codec"
	"github.com/c-fraser/connekted/internal/runtime/errors"
	"github.com/c-fraser/connekted/internal/runtime/logging"
)

// Deserializer converts a wire payload back into a message value.
type Deserializer[T any] func([]byte) (T, error)

// ReceiverConfig configures a receiver component.
type ReceiverConfig[T any] struct {
	// Name uniquely identifies the component within its application.
	Name string
	// ReceiveFrom is the queue the component consumes.
	ReceiveFrom string
	// OnMessage handles each inbound message. Errors and panics are logged
	// and counted; the loop continues with the next message.
	OnMessage func(ctx context.Context, value T) error
	// Deserialize converts payloads to values. Nil defaults to JSON.
	Deserialize Deserializer[T]
	// CloseHook runs once during shutdown, after the work loop exits.
	CloseHook func()
	// Hooks observe component events.
	Hooks ComponentHooks
	// StopTimeout bounds how long Shutdown waits for the loop to exit.
	StopTimeout time.Duration
}

// Receiver consumes messages from a queue and dispatches them to a handler,
// one at a time. A handler failure never stops the loop; the message is
// acknowledged either way so the queue keeps moving.
type Receiver[T any] struct {
	component
	queue       string
	queues      *Queues
	handle      func(ctx context.Context, value T) error
	deserialize Deserializer[T]
}

func newReceiver[T any](cfg ReceiverConfig[T], kind Kind, queues *Queues, logger logging.ServiceLogger, metrics *ComponentMetrics) (*Receiver[T], error) {
	if cfg.Name == "" {
		return nil, &errors.ConfigValidationError{Err: errors.ErrNameRequired}
	}
	if cfg.ReceiveFrom == "" {
		return nil, &errors.ConfigValidationError{Component: cfg.Name, Err: errors.ErrReceiveQueueRequired}
	}
	if cfg.OnMessage == nil {
		return nil, &errors.ConfigValidationError{Component: cfg.Name, Err: errors.ErrHandlerRequired}
	}
	deserialize := cfg.Deserialize
	if deserialize == nil {
		deserialize = codec.UnmarshalJSON[T]
	}
	return &Receiver[T]{
		component:   newComponent(cfg.Name, kind, logger, cfg.Hooks, metrics, cfg.CloseHook, cfg.StopTimeout),
		queue:       cfg.ReceiveFrom,
		queues:      queues,
		handle:      cfg.OnMessage,
		deserialize: deserialize,
	}, nil
}

// Start subscribes to the queue and launches the consume loop. A subscription
// failure is returned and leaves the component stopped.
func (r *Receiver[T]) Start(ctx context.Context) error {
	loopCtx, ok := r.begin(ctx)
	if !ok {
		return nil
	}
	messages, err := r.queues.Subscribe(loopCtx, r.queue)
	if err != nil {
		r.cancel()
		r.finish()
		r.state.Store(int32(StateStopped))
		return fmt.Errorf("subscribe to %q: %w", r.queue, err)
	}
	go r.run(loopCtx, messages)
	return nil
}

func (r *Receiver[T]) run(ctx context.Context, messages <-chan *message.Message) {
	defer r.finish()

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("Consume loop cancelled", nil)
			return
		case msg, ok := <-messages:
			if !ok {
				r.logger.Debug("Message stream closed, consume loop exiting", nil)
				return
			}
			r.countReceived()
			r.process(ctx, msg)
		}
	}
}

// process handles one inbound message. The message is always acknowledged:
// a failed handler invocation is counted and logged, not redelivered.
func (r *Receiver[T]) process(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	tracer := otel.Tracer("connekted")
	ctx, span := tracer.Start(ctx, "HandleMessage")
	defer span.End()
	span.SetAttributes(
		attribute.String("component.name", r.name),
		attribute.String("queue", r.queue),
		attribute.String("message.uuid", msg.UUID),
	)

	startedAt := time.Now()
	hookCtx := func() HookContext {
		return HookContext{
			Component: r.name,
			Kind:      r.kind,
			Queue:     r.queue,
			MessageID: msg.UUID,
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
		}
	}

	value, err := r.deserialize(msg.Payload)
	if err != nil {
		r.logger.Error("Message deserialization failed", err, logging.LogFields{"message_id": msg.UUID})
		if r.hooks.OnError != nil {
			r.hooks.OnError(hookCtx(), err)
		}
		return
	}

	if err := r.handleSafely(ctx, value); err != nil {
		r.logger.Error("Message handler failed", err, logging.LogFields{"message_id": msg.UUID})
		if r.hooks.OnError != nil {
			r.hooks.OnError(hookCtx(), err)
		}
		return
	}

	r.countHandled()
	if r.hooks.OnMessageDone != nil {
		r.hooks.OnMessageDone(hookCtx())
	}
	r.logger.Debug("Message handled", logging.LogFields{"queue": r.queue, "message_id": msg.UUID})
}

func (r *Receiver[T]) handleSafely(ctx context.Context, value T) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("message handler panicked: %v", rec)
		}
	}()
	return r.handle(ctx, value)
}
