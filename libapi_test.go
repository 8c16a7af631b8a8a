package connekted

import (
	"context"
	"errors"
	"testing"
	"time"

	_ "github.com/c-fraser/connekted/transport/channel"
)

func TestScheduleExports(t *testing.T) {
	schedule, err := NewFixedIntervalSchedule(time.Second)
	if err != nil {
		t.Fatalf("unexpected error creating schedule: %v", err)
	}
	now := time.Now()
	next, err := schedule.NextExecutionTime(now, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error computing next execution: %v", err)
	}
	if !next.Equal(now.Add(time.Second)) {
		t.Fatalf("next = %v, want %v", next, now.Add(time.Second))
	}

	if _, err := NewFixedIntervalSchedule(0); !errors.Is(err, ErrNonPositiveInterval) {
		t.Fatalf("expected non-positive interval error, got %v", err)
	}

	delayed, err := NewInitialDelaySchedule(time.Minute, schedule)
	if err != nil {
		t.Fatalf("unexpected error creating delayed schedule: %v", err)
	}
	next, err = delayed.NextExecutionTime(now, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error computing delayed next execution: %v", err)
	}
	if !next.Equal(now.Add(time.Minute)) {
		t.Fatalf("delayed next = %v, want %v", next, now.Add(time.Minute))
	}

	if _, err := NewCronSchedule("*/5 * * * *", time.UTC); err != nil {
		t.Fatalf("unexpected error creating cron schedule: %v", err)
	}
}

func TestEveryIntervalPanicsOnInvalidInterval(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected EveryInterval(0) to panic")
		}
	}()
	EveryInterval(0)
}

func TestBuilderExportsPropagateErrors(t *testing.T) {
	builder := NewBuilder(&Config{PubSubSystem: "channel"}, nil)
	AddSender(builder, SenderConfig[string]{
		Name:   "incomplete",
		SendTo: "queue",
		Generate: func(ctx context.Context) ([]string, error) {
			return nil, nil
		},
	})

	_, err := builder.Build(context.Background())
	if !errors.Is(err, ErrScheduleRequired) {
		t.Fatalf("expected schedule required error, got %v", err)
	}
	var cfgErr *ConfigValidationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected a ConfigValidationError, got %v", err)
	}
}

func TestEncodingExportAliases(t *testing.T) {
	payload := map[string]string{"hello": "world"}
	if _, err := Marshal(payload); err != nil {
		t.Fatalf("marshal alias failed: %v", err)
	}
	if err := Unmarshal([]byte(`{"hello":"world"}`), &payload); err != nil {
		t.Fatalf("unmarshal alias failed: %v", err)
	}

	data, err := MarshalJSON("value")
	if err != nil {
		t.Fatalf("typed marshal failed: %v", err)
	}
	value, err := UnmarshalJSON[string](data)
	if err != nil {
		t.Fatalf("typed unmarshal failed: %v", err)
	}
	if value != "value" {
		t.Fatalf("round trip = %q, want %q", value, "value")
	}
}

func TestIDExport(t *testing.T) {
	first := NewMessageID()
	second := NewMessageID()
	if first == "" || first == second {
		t.Fatalf("expected distinct non-empty ids, got %q and %q", first, second)
	}
}

func TestLoggerExports(t *testing.T) {
	logger := NopLogger()
	logger.Info("boot", LogFields{"component": "test"})
}
