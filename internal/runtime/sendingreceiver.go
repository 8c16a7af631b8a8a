package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/c-fraser/connekted/internal/runtime/codec"
	"github.com/c-fraser/connekted/internal/runtime/errors"
	"github.com/c-fraser/connekted/internal/runtime/logging"
)

// SendingReceiverConfig configures a component that consumes messages from
// one queue and publishes transformed messages to another.
type SendingReceiverConfig[T, O any] struct {
	// Name uniquely identifies the component within its application.
	Name string
	// ReceiveFrom is the queue the component consumes.
	ReceiveFrom string
	// SendTo is the queue transformed messages are published to.
	SendTo string
	// Transform maps one inbound message to zero or more outbound ones.
	Transform func(ctx context.Context, value T) ([]O, error)
	// Deserialize converts inbound payloads to values. Nil defaults to JSON.
	Deserialize Deserializer[T]
	// Serialize converts outbound values to payloads. Nil defaults to JSON.
	Serialize Serializer[O]
	// CloseHook runs once during shutdown, after the work loop exits.
	CloseHook func()
	// Hooks observe component events.
	Hooks ComponentHooks
	// StopTimeout bounds how long Shutdown waits for the loop to exit.
	StopTimeout time.Duration
}

// SendingReceiver is a receiver whose handler emits outbound messages. The
// consume loop, cancellation, and receive counters all come from the embedded
// Receiver; only the transform-and-send step is added here.
type SendingReceiver[T, O any] struct {
	*Receiver[T]
	sendTo    string
	transform func(ctx context.Context, value T) ([]O, error)
	serialize Serializer[O]
}

func newSendingReceiver[T, O any](cfg SendingReceiverConfig[T, O], queues *Queues, logger logging.ServiceLogger, metrics *ComponentMetrics) (*SendingReceiver[T, O], error) {
	if cfg.Name == "" {
		return nil, &errors.ConfigValidationError{Err: errors.ErrNameRequired}
	}
	if cfg.SendTo == "" {
		return nil, &errors.ConfigValidationError{Component: cfg.Name, Err: errors.ErrSendQueueRequired}
	}
	if cfg.Transform == nil {
		return nil, &errors.ConfigValidationError{Component: cfg.Name, Err: errors.ErrTransformRequired}
	}
	serialize := cfg.Serialize
	if serialize == nil {
		serialize = codec.MarshalJSON[O]
	}

	sr := &SendingReceiver[T, O]{
		sendTo:    cfg.SendTo,
		transform: cfg.Transform,
		serialize: serialize,
	}
	receiver, err := newReceiver(ReceiverConfig[T]{
		Name:        cfg.Name,
		ReceiveFrom: cfg.ReceiveFrom,
		OnMessage:   sr.transformAndSend,
		Deserialize: cfg.Deserialize,
		CloseHook:   cfg.CloseHook,
		Hooks:       cfg.Hooks,
		StopTimeout: cfg.StopTimeout,
	}, KindSendingReceiver, queues, logger, metrics)
	if err != nil {
		return nil, err
	}
	sr.Receiver = receiver
	return sr, nil
}

// transformAndSend is the generating handler. A transform failure fails the
// handler invocation; a send failure for an individual output is logged and
// the remaining outputs are still attempted.
func (sr *SendingReceiver[T, O]) transformAndSend(ctx context.Context, value T) error {
	outputs, err := sr.transformSafely(ctx, value)
	if err != nil {
		return err
	}

	for _, output := range outputs {
		if ctx.Err() != nil {
			return nil
		}
		sr.countGenerated()
		payload, err := sr.serialize(output)
		if err != nil {
			sr.logger.Error("Outbound serialization failed", err, logging.LogFields{"queue": sr.sendTo})
			if sr.hooks.OnError != nil {
				sr.hooks.OnError(HookContext{Component: sr.name, Kind: sr.kind, Queue: sr.sendTo, StartedAt: time.Now()}, err)
			}
			continue
		}
		id, err := sr.queues.Publish(sr.sendTo, payload)
		if err != nil {
			if sr.hooks.OnError != nil {
				sr.hooks.OnError(HookContext{Component: sr.name, Kind: sr.kind, Queue: sr.sendTo, StartedAt: time.Now()}, err)
			}
			continue
		}
		sr.countSent()
		sr.logger.Debug("Message sent", logging.LogFields{"queue": sr.sendTo, "message_id": id})
	}
	return nil
}

func (sr *SendingReceiver[T, O]) transformSafely(ctx context.Context, value T) (outputs []O, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			outputs = nil
			err = fmt.Errorf("message transform panicked: %v", rec)
		}
	}()
	return sr.transform(ctx, value)
}
