package runtime

import (
	stderrors "errors"
	"testing"
)

func TestComponentHooksMerge(t *testing.T) {
	var order []string
	first := ComponentHooks{
		OnStart:       func(ctx HookContext) { order = append(order, "first-start") },
		OnMessageDone: func(ctx HookContext) { order = append(order, "first-done") },
		OnError:       func(ctx HookContext, err error) { order = append(order, "first-error") },
	}
	second := ComponentHooks{
		OnStart: func(ctx HookContext) { order = append(order, "second-start") },
		OnStop:  func(ctx HookContext) { order = append(order, "second-stop") },
		OnError: func(ctx HookContext, err error) { order = append(order, "second-error") },
	}

	merged := first.Merge(second)
	merged.OnStart(HookContext{})
	merged.OnStop(HookContext{})
	merged.OnMessageDone(HookContext{})
	merged.OnError(HookContext{}, stderrors.New("x"))

	want := []string{"first-start", "second-start", "second-stop", "first-done", "first-error", "second-error"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestComponentHooksMergeWithEmpty(t *testing.T) {
	var calls int
	hooks := ComponentHooks{OnStart: func(ctx HookContext) { calls++ }}

	merged := hooks.Merge(ComponentHooks{})
	merged.OnStart(HookContext{})
	if merged.OnStop != nil {
		t.Error("merging two nil OnStop hooks produced a non-nil hook")
	}
	if calls != 1 {
		t.Errorf("OnStart ran %d times, want 1", calls)
	}
}

func TestMetricsHooks(t *testing.T) {
	var done, failed []string
	hooks := MetricsHooks(
		func(component string, kind Kind) { done = append(done, component) },
		func(component string, kind Kind) { failed = append(failed, component) },
	)

	hooks.OnMessageDone(HookContext{Component: "a", Kind: KindSender})
	hooks.OnError(HookContext{Component: "b", Kind: KindReceiver}, stderrors.New("x"))

	if len(done) != 1 || done[0] != "a" {
		t.Errorf("done = %v, want [a]", done)
	}
	if len(failed) != 1 || failed[0] != "b" {
		t.Errorf("failed = %v, want [b]", failed)
	}
}

func TestAlertingHooks(t *testing.T) {
	var alerts int
	hooks := AlertingHooks(func(ctx HookContext, err error) { alerts++ })
	hooks.OnError(HookContext{}, stderrors.New("x"))
	if alerts != 1 {
		t.Errorf("alerts = %d, want 1", alerts)
	}
	if hooks.OnStart != nil || hooks.OnStop != nil || hooks.OnMessageDone != nil {
		t.Error("alerting hooks should only define OnError")
	}
}
