package runtime

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/c-fraser/connekted/internal/runtime/codec"
	"github.com/c-fraser/connekted/internal/runtime/errors"
	"github.com/c-fraser/connekted/internal/runtime/logging"
)

// Serializer converts a message value into its wire payload.
type Serializer[T any] func(T) ([]byte, error)

// SenderConfig configures a sender component.
type SenderConfig[T any] struct {
	// Name uniquely identifies the component within its application.
	Name string
	// SendTo is the queue generated messages are published to.
	SendTo string
	// Schedule drives when Generate runs.
	Schedule Schedule
	// Generate produces the next batch of messages. It may return an empty
	// slice. Errors and panics are logged and the loop continues with the
	// next tick.
	Generate func(ctx context.Context) ([]T, error)
	// Serialize converts values to payloads. Nil defaults to JSON.
	Serialize Serializer[T]
	// CloseHook runs once during shutdown, after the work loop exits.
	CloseHook func()
	// Hooks observe component events.
	Hooks ComponentHooks
	// StopTimeout bounds how long Shutdown waits for the loop to exit.
	StopTimeout time.Duration
}

// Sender periodically generates messages and publishes them to a queue.
type Sender[T any] struct {
	component
	schedule  Schedule
	queue     string
	queues    *Queues
	generate  func(ctx context.Context) ([]T, error)
	serialize Serializer[T]
}

func newSender[T any](cfg SenderConfig[T], queues *Queues, logger logging.ServiceLogger, metrics *ComponentMetrics) (*Sender[T], error) {
	if cfg.Name == "" {
		return nil, &errors.ConfigValidationError{Err: errors.ErrNameRequired}
	}
	if cfg.SendTo == "" {
		return nil, &errors.ConfigValidationError{Component: cfg.Name, Err: errors.ErrSendQueueRequired}
	}
	if cfg.Schedule == nil {
		return nil, &errors.ConfigValidationError{Component: cfg.Name, Err: errors.ErrScheduleRequired}
	}
	if cfg.Generate == nil {
		return nil, &errors.ConfigValidationError{Component: cfg.Name, Err: errors.ErrGenerateRequired}
	}
	serialize := cfg.Serialize
	if serialize == nil {
		serialize = codec.MarshalJSON[T]
	}
	return &Sender[T]{
		component: newComponent(cfg.Name, KindSender, logger, cfg.Hooks, metrics, cfg.CloseHook, cfg.StopTimeout),
		schedule:  cfg.Schedule,
		queue:     cfg.SendTo,
		queues:    queues,
		generate:  cfg.Generate,
		serialize: serialize,
	}, nil
}

// Start launches the scheduled send loop. It returns immediately; the loop
// runs until the context is cancelled or Shutdown is called.
func (s *Sender[T]) Start(ctx context.Context) error {
	loopCtx, ok := s.begin(ctx)
	if !ok {
		return nil
	}
	go s.run(loopCtx)
	return nil
}

func (s *Sender[T]) run(ctx context.Context) {
	defer s.finish()

	var previous time.Time
	for {
		now := time.Now()
		next, err := s.schedule.NextExecutionTime(now, previous)
		if err != nil {
			// No computable next instant terminates this task, not the
			// application.
			s.logger.Error("Schedule computation failed, stopping send loop", err, nil)
			if s.hooks.OnError != nil {
				s.hooks.OnError(HookContext{Component: s.name, Kind: s.kind, Queue: s.queue}, err)
			}
			return
		}
		if wait := next.Sub(now); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				s.logger.Debug("Send loop cancelled", nil)
				return
			case <-timer.C:
			}
		}
		if ctx.Err() != nil {
			s.logger.Debug("Send loop cancelled", nil)
			return
		}
		// The execution time is recorded only once the wait has elapsed, so
		// the next iteration anchors on this tick rather than re-firing on
		// the same boundary.
		previous = next

		s.tick(ctx)
	}
}

// tick runs one scheduled generation. Failures are contained here so the
// loop always reaches the next tick.
func (s *Sender[T]) tick(ctx context.Context) {
	tracer := otel.Tracer("connekted")
	ctx, span := tracer.Start(ctx, "SendMessages")
	defer span.End()
	span.SetAttributes(
		attribute.String("component.name", s.name),
		attribute.String("queue", s.queue),
	)

	startedAt := time.Now()
	values, err := s.generateSafely(ctx)
	if err != nil {
		s.logger.Error("Message generation failed", err, nil)
		if s.hooks.OnError != nil {
			s.hooks.OnError(HookContext{Component: s.name, Kind: s.kind, Queue: s.queue, StartedAt: startedAt, Duration: time.Since(startedAt)}, err)
		}
		return
	}

	for _, value := range values {
		if ctx.Err() != nil {
			return
		}
		s.countGenerated()
		payload, err := s.serialize(value)
		if err != nil {
			s.logger.Error("Message serialization failed", err, nil)
			if s.hooks.OnError != nil {
				s.hooks.OnError(HookContext{Component: s.name, Kind: s.kind, Queue: s.queue, StartedAt: startedAt, Duration: time.Since(startedAt)}, err)
			}
			continue
		}
		id, err := s.queues.Publish(s.queue, payload)
		if err != nil {
			if s.hooks.OnError != nil {
				s.hooks.OnError(HookContext{Component: s.name, Kind: s.kind, Queue: s.queue, StartedAt: startedAt, Duration: time.Since(startedAt)}, err)
			}
			continue
		}
		s.countSent()
		if s.hooks.OnMessageDone != nil {
			s.hooks.OnMessageDone(HookContext{Component: s.name, Kind: s.kind, Queue: s.queue, MessageID: id, StartedAt: startedAt, Duration: time.Since(startedAt)})
		}
		s.logger.Debug("Message sent", logging.LogFields{"queue": s.queue, "message_id": id})
	}
}

func (s *Sender[T]) generateSafely(ctx context.Context) (values []T, err error) {
	defer func() {
		if r := recover(); r != nil {
			values = nil
			err = fmt.Errorf("message generation panicked: %v", r)
		}
	}()
	return s.generate(ctx)
}
