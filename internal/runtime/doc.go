/*
Package runtime provides the core component runtime for connekted.

# Architecture Overview

The runtime package implements a messaging application as a named set of
independently scheduled components exchanging messages over named queues on a
Watermill transport. Each component owns its own goroutine with a uniform
lifecycle; failures inside one component's work loop never reach its siblings
or the application.

# Package Structure

The runtime package is organized into the following components:

## Application (application.go)

The Application struct is the aggregate that owns:
  - The component set (insertion order preserved)
  - The shared transport, via the Queues adapter
  - The control-plane HTTP server
  - The Prometheus registry and close hook

Applications are assembled with a Builder; all configuration errors (missing
fields, duplicate names) surface at Build, never at runtime.

## Components (component.go, sender.go, receiver.go, sendingreceiver.go)

Three component variants share one base state machine and counter set:
  - Sender: generates messages on a Schedule and publishes them
  - Receiver: consumes messages and dispatches them to a typed handler
  - SendingReceiver: a Receiver whose handler emits transformed messages

## Scheduling (schedule.go)

Schedules are pure next-execution-time functions: fixed interval, initial
delay composition, and cron expressions evaluated in a time zone.

## Queues (queues.go)

A narrow adapter over the transport: publish to a named queue with a fresh
ULID message id, subscribe to a named queue, and track transport-level
counters separately from the per-component ones.

## Control plane (admin.go)

HTTP API exposing liveness, readiness, a Prometheus scrape endpoint, and
token-protected data and shutdown endpoints.

## Stats & Monitoring (metrics.go, hooks.go)

Per-component Prometheus counters and optional lifecycle hooks for custom
logging, metrics, and alerting.

# Sub-packages

  - config/: Application configuration with validation
  - errors/: Sentinel errors and error types
  - ids/: ULID generation for message IDs
  - codec/: JSON and protobuf marshaling utilities
  - logging/: Logger interface and adapters

# Usage Example

	cfg := &connekted.Config{
		PubSubSystem:   "kafka",
		KafkaBrokers:   []string{"localhost:9092"},
		MetricsEnabled: true,
	}

	builder := connekted.NewBuilder(cfg, logger)

	connekted.AddSender(builder, connekted.SenderConfig[Order]{
		Name:     "order-source",
		SendTo:   "orders.created",
		Schedule: connekted.EveryInterval(time.Minute),
		Generate: pollOrders,
	})

	app, err := builder.Build(ctx)
	if err != nil {
		return err
	}
	app.Start(ctx)
*/
package runtime
