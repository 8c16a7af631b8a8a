package runtime

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, registry *prometheus.Registry, name, component string) float64 {
	t.Helper()
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather returned error: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "component" && label.GetValue() == component {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return -1
}

func TestComponentMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewComponentMetrics(registry)
	if err := metrics.Register(); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if err := metrics.Register(); err != nil {
		t.Fatalf("second Register returned error: %v", err)
	}

	metrics.incGenerated("sender-1")
	metrics.incGenerated("sender-1")
	metrics.incSent("sender-1")
	metrics.incReceived("receiver-1")
	metrics.incHandled("receiver-1")

	cases := []struct {
		metric    string
		component string
		want      float64
	}{
		{"connekted_component_messages_generated_total", "sender-1", 2},
		{"connekted_component_messages_sent_total", "sender-1", 1},
		{"connekted_component_messages_received_total", "receiver-1", 1},
		{"connekted_component_messages_handled_total", "receiver-1", 1},
	}
	for _, tc := range cases {
		if got := counterValue(t, registry, tc.metric, tc.component); got != tc.want {
			t.Errorf("%s{component=%q} = %v, want %v", tc.metric, tc.component, got, tc.want)
		}
	}
}

func TestComponentMetricsNilSafe(t *testing.T) {
	var metrics *ComponentMetrics
	if err := metrics.Register(); err != nil {
		t.Fatalf("nil Register returned error: %v", err)
	}
	metrics.incGenerated("x")
	metrics.incSent("x")
	metrics.incReceived("x")
	metrics.incHandled("x")
}

func unlabeledCounterValue(t *testing.T, registry *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather returned error: %v", err)
	}
	for _, family := range families {
		if family.GetName() == name {
			return family.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return -1
}

func TestRegisterQueueMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	q := &Queues{}
	q.published.Add(3)
	q.publishErrors.Add(1)
	q.consumed.Add(2)

	if err := RegisterQueueMetrics(registry, q); err != nil {
		t.Fatalf("RegisterQueueMetrics returned error: %v", err)
	}

	cases := []struct {
		metric string
		want   float64
	}{
		{"connekted_queues_messages_published_total", 3},
		{"connekted_queues_publish_errors_total", 1},
		{"connekted_queues_messages_consumed_total", 2},
	}
	for _, tc := range cases {
		if got := unlabeledCounterValue(t, registry, tc.metric); got != tc.want {
			t.Errorf("%s = %v, want %v", tc.metric, got, tc.want)
		}
	}

	q.published.Add(1)
	if got := unlabeledCounterValue(t, registry, "connekted_queues_messages_published_total"); got != 4 {
		t.Errorf("published counter after increment = %v, want 4", got)
	}
}

func TestComponentCountersFeedMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewComponentMetrics(registry)
	if err := metrics.Register(); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	c := newComponent("wired", KindSender, nil, ComponentHooks{}, metrics, nil, 0)
	c.countGenerated()
	c.countSent()

	if got := counterValue(t, registry, "connekted_component_messages_generated_total", "wired"); got != 1 {
		t.Errorf("generated counter = %v, want 1", got)
	}
	if got := counterValue(t, registry, "connekted_component_messages_sent_total", "wired"); got != 1 {
		t.Errorf("sent counter = %v, want 1", got)
	}
}
