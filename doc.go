// Package connekted runs long-lived messaging applications: named collections
// of independently scheduled producers, consumers, and producer-consumers that
// exchange messages through named queues on a pluggable transport. The target
// transport (Kafka, RabbitMQ, AWS SNS/SQS, NATS, NATS JetStream, HTTP, or Go
// channels) is read from Config, and the transport registry resolves it when
// the application is built.
//
// An application is assembled with a Builder: AddSender registers a producer
// driven by a Schedule, AddReceiver registers a consumer with a typed message
// handler, and AddSendingReceiver registers a consumer that transforms each
// inbound message into zero or more outbound ones. Component names must be
// unique; duplicates and missing required fields fail at Build, never at
// runtime. Serialization defaults to JSON and can be replaced per component.
//
// Every component owns its own task with a uniform lifecycle (not-started,
// running, shutting-down, stopped). Failures inside one component's work loop
// are recovered, logged, and counted; they never reach sibling components or
// the application. Start and Shutdown are idempotent, and shutdown delivers
// cooperative cancellation under bounded per-component and overall budgets.
//
// # Transports
//
// Connekted supports 7 message transports out of the box:
//   - channel: In-memory Go channels for testing
//   - kafka: High-throughput streaming with consumer groups
//   - rabbitmq: AMQP-based durable queues
//   - nats: High-performance messaging
//   - nats-jetstream: NATS with durable streams
//   - http: Request/response messaging
//   - aws: AWS SNS/SQS with LocalStack support
//
// # Control plane
//
// A running application serves liveness and readiness checks, an optional
// Prometheus scrape endpoint, and token-protected endpoints returning the
// live counter snapshot and triggering a remote shutdown.
//
// # Component Hooks
//
// ComponentHooks provides OnStart, OnStop, OnMessageDone, and OnError
// callbacks for custom logging, metrics collection, and alerting around
// component execution.
package connekted
