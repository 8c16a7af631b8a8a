package connekted

import (
	"time"

	runtimepkg "github.com/c-fraser/connekted/internal/runtime"
	codecpkg "github.com/c-fraser/connekted/internal/runtime/codec"
	configpkg "github.com/c-fraser/connekted/internal/runtime/config"
	errspkg "github.com/c-fraser/connekted/internal/runtime/errors"
	idspkg "github.com/c-fraser/connekted/internal/runtime/ids"
	loggingpkg "github.com/c-fraser/connekted/internal/runtime/logging"
	transportpkg "github.com/c-fraser/connekted/transport"
)

type (
	Config      = configpkg.Config
	Application = runtimepkg.Application
	Builder     = runtimepkg.Builder

	Schedule  = runtimepkg.Schedule
	Component = runtimepkg.Component
	Kind      = runtimepkg.Kind
	State     = runtimepkg.State

	SenderConfig[T any]                     = runtimepkg.SenderConfig[T]
	ReceiverConfig[T any]                   = runtimepkg.ReceiverConfig[T]
	SendingReceiverConfig[T any, O any]     = runtimepkg.SendingReceiverConfig[T, O]
	Serializer[T any]                       = runtimepkg.Serializer[T]
	Deserializer[T any]                     = runtimepkg.Deserializer[T]

	ComponentData   = runtimepkg.ComponentData
	ApplicationData = runtimepkg.ApplicationData
	QueueMetrics    = runtimepkg.QueueMetrics

	// Component lifecycle hooks
	HookContext    = runtimepkg.HookContext
	ComponentHooks = runtimepkg.ComponentHooks

	LogFields     = loggingpkg.LogFields
	ServiceLogger = loggingpkg.ServiceLogger

	ConfigValidationError = errspkg.ConfigValidationError

	// Transport types
	Transport             = transportpkg.Transport
	TransportBuilder      = transportpkg.Builder
	TransportConfig       = transportpkg.Config
	TransportRegistry     = transportpkg.Registry
	TransportCapabilities = transportpkg.Capabilities
)

// Component kinds.
const (
	KindSender          = runtimepkg.KindSender
	KindReceiver        = runtimepkg.KindReceiver
	KindSendingReceiver = runtimepkg.KindSendingReceiver
)

// Lifecycle states.
const (
	StateNotStarted   = runtimepkg.StateNotStarted
	StateRunning      = runtimepkg.StateRunning
	StateShuttingDown = runtimepkg.StateShuttingDown
	StateStopped      = runtimepkg.StateStopped
)

var (
	NewBuilder     = runtimepkg.NewBuilder
	ValidateConfig = configpkg.ValidateConfig

	// Schedules
	NewFixedIntervalSchedule = runtimepkg.NewFixedIntervalSchedule
	NewInitialDelaySchedule  = runtimepkg.NewInitialDelaySchedule
	NewCronSchedule          = runtimepkg.NewCronSchedule

	// Component lifecycle hooks
	LoggingHooks  = runtimepkg.LoggingHooks
	MetricsHooks  = runtimepkg.MetricsHooks
	AlertingHooks = runtimepkg.AlertingHooks

	// Transport registry
	// Import individual transports via: _ "github.com/c-fraser/connekted/transport/channel"
	// or all of them via: _ "github.com/c-fraser/connekted/transport/transports"
	DefaultTransportRegistry = transportpkg.DefaultRegistry
	RegisterTransport        = transportpkg.Register
	BuildTransport           = transportpkg.Build
	GetCapabilities          = transportpkg.GetCapabilities

	Marshal   = codecpkg.Marshal
	Unmarshal = codecpkg.Unmarshal
	Encode    = codecpkg.Encode
	Decode    = codecpkg.Decode

	ErrNameRequired         = errspkg.ErrNameRequired
	ErrDuplicateName        = errspkg.ErrDuplicateName
	ErrScheduleRequired     = errspkg.ErrScheduleRequired
	ErrGenerateRequired     = errspkg.ErrGenerateRequired
	ErrHandlerRequired      = errspkg.ErrHandlerRequired
	ErrTransformRequired    = errspkg.ErrTransformRequired
	ErrSendQueueRequired    = errspkg.ErrSendQueueRequired
	ErrReceiveQueueRequired = errspkg.ErrReceiveQueueRequired
	ErrNonPositiveInterval  = errspkg.ErrNonPositiveInterval
	ErrNoNextExecution      = errspkg.ErrNoNextExecution
	ErrTransportRequired    = errspkg.ErrTransportRequired

	NewSlogServiceLogger = loggingpkg.NewSlogServiceLogger
	NopLogger            = loggingpkg.NopLogger

	NewMessageID = idspkg.NewMessageID
)

// AddSender registers a scheduled message producer with the builder.
func AddSender[T any](b *Builder, cfg SenderConfig[T]) *Builder {
	return runtimepkg.AddSender(b, cfg)
}

// AddReceiver registers a message consumer with the builder.
func AddReceiver[T any](b *Builder, cfg ReceiverConfig[T]) *Builder {
	return runtimepkg.AddReceiver(b, cfg)
}

// AddSendingReceiver registers a consumer that publishes transformed messages
// with the builder.
func AddSendingReceiver[T any, O any](b *Builder, cfg SendingReceiverConfig[T, O]) *Builder {
	return runtimepkg.AddSendingReceiver(b, cfg)
}

// MarshalJSON serializes a value with the default JSON codec. Useful as an
// explicit Serializer.
func MarshalJSON[T any](v T) ([]byte, error) {
	return codecpkg.MarshalJSON(v)
}

// UnmarshalJSON deserializes a value with the default JSON codec. Useful as
// an explicit Deserializer.
func UnmarshalJSON[T any](data []byte) (T, error) {
	return codecpkg.UnmarshalJSON[T](data)
}

// EveryInterval is a convenience constructor for the common fixed-interval
// schedule; it panics on a non-positive interval. Prefer
// NewFixedIntervalSchedule when the interval is not a compile-time constant.
func EveryInterval(interval time.Duration) Schedule {
	schedule, err := runtimepkg.NewFixedIntervalSchedule(interval)
	if err != nil {
		panic(err)
	}
	return schedule
}
