package runtime

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// ComponentMetrics exposes per-component message counters to Prometheus.
// All methods are nil-safe so components can run without a collector.
type ComponentMetrics struct {
	mu sync.Mutex

	generatedTotal *prometheus.CounterVec
	sentTotal      *prometheus.CounterVec
	receivedTotal  *prometheus.CounterVec
	handledTotal   *prometheus.CounterVec

	registerer prometheus.Registerer
	registered bool
}

// newComponentCounterVec creates a counter vec with the standard
// connekted/component namespace.
func newComponentCounterVec(name, help string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "connekted",
			Subsystem: "component",
			Name:      name,
			Help:      help,
		},
		[]string{"component"},
	)
}

// NewComponentMetrics creates a component metrics collector. A nil registerer
// falls back to the Prometheus default.
func NewComponentMetrics(registerer prometheus.Registerer) *ComponentMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &ComponentMetrics{
		registerer:     registerer,
		generatedTotal: newComponentCounterVec("messages_generated_total", "Total number of messages generated by sender components"),
		sentTotal:      newComponentCounterVec("messages_sent_total", "Total number of messages successfully sent to a queue"),
		receivedTotal:  newComponentCounterVec("messages_received_total", "Total number of messages received from a queue"),
		handledTotal:   newComponentCounterVec("messages_handled_total", "Total number of messages successfully handled"),
	}
}

// Register registers the Prometheus collectors. Safe to call multiple times.
func (m *ComponentMetrics) Register() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	collectors := []prometheus.Collector{
		m.generatedTotal,
		m.sentTotal,
		m.receivedTotal,
		m.handledTotal,
	}

	for _, c := range collectors {
		if err := m.registerer.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}

	m.registered = true
	return nil
}

// RegisterQueueMetrics exposes the transport-level counters of q on the
// registerer as CounterFuncs. Safe to call with an already-populated registry;
// duplicate registration is tolerated.
func RegisterQueueMetrics(registerer prometheus.Registerer, q *Queues) error {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	newQueueCounterFunc := func(name, help string, value func() uint64) prometheus.CounterFunc {
		return prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Namespace: "connekted",
				Subsystem: "queues",
				Name:      name,
				Help:      help,
			},
			func() float64 { return float64(value()) },
		)
	}

	collectors := []prometheus.Collector{
		newQueueCounterFunc("messages_published_total", "Total number of messages published to the transport", q.published.Load),
		newQueueCounterFunc("publish_errors_total", "Total number of failed publishes to the transport", q.publishErrors.Load),
		newQueueCounterFunc("messages_consumed_total", "Total number of messages consumed from the transport", q.consumed.Load),
	}

	for _, c := range collectors {
		if err := registerer.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

func (m *ComponentMetrics) incGenerated(component string) {
	if m == nil {
		return
	}
	m.generatedTotal.WithLabelValues(component).Inc()
}

func (m *ComponentMetrics) incSent(component string) {
	if m == nil {
		return
	}
	m.sentTotal.WithLabelValues(component).Inc()
}

func (m *ComponentMetrics) incReceived(component string) {
	if m == nil {
		return
	}
	m.receivedTotal.WithLabelValues(component).Inc()
}

func (m *ComponentMetrics) incHandled(component string) {
	if m == nil {
		return
	}
	m.handledTotal.WithLabelValues(component).Inc()
}
