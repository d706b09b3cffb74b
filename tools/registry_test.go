package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/krishidhan/sahayak/components"
	"github.com/krishidhan/sahayak/config"
)

// fakeTool is a scriptable Tool for registry and invoke tests.
type fakeTool struct {
	Config
	relevant func(string, components.SessionSnapshot) bool
	execute  func(context.Context, string, components.SessionSnapshot) *Result
	calls    int
}

func newFakeTool(name string, priority int, opts ...Option) *fakeTool {
	t := new(fakeTool)
	t.SetName(name)
	t.SetPriority(priority)
	for _, opt := range opts {
		opt(&t.Config)
	}
	return t
}

func (f *fakeTool) IsRelevant(query string, snap components.SessionSnapshot) bool {
	if f.relevant == nil {
		return true
	}
	return f.relevant(query, snap)
}

func (f *fakeTool) Execute(ctx context.Context, query string, snap components.SessionSnapshot) *Result {
	f.calls++
	if f.execute == nil {
		return &Result{Tool: f.Name(), Success: true}
	}
	return f.execute(ctx, query, snap)
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(newFakeTool("weather_advisory", 0)); err != nil {
		t.Fatal(err)
	}
	err := reg.Register(newFakeTool("weather_advisory", 1))
	if err == nil {
		t.Fatal("duplicate registration accepted")
	}
	var cfgErr *config.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error type = %T, want *config.ConfigurationError", err)
	}
	if reg.Len() != 1 {
		t.Errorf("registry len = %d after rejected duplicate, want 1", reg.Len())
	}
}

func TestRegistryRejectsEmptyName(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(newFakeTool("", 0)); err == nil {
		t.Fatal("empty tool name accepted")
	}
}

func TestSelectOrdersByPriorityThenRegistration(t *testing.T) {
	reg := NewRegistry()
	low := newFakeTool("places_search", 1)
	first := newFakeTool("weather_advisory", 5)
	second := newFakeTool("advisory_search", 5)
	if err := reg.Register(low, first, second); err != nil {
		t.Fatal(err)
	}

	selected := reg.Select("anything", components.SessionSnapshot{})
	want := []string{"weather_advisory", "advisory_search", "places_search"}
	if len(selected) != len(want) {
		t.Fatalf("selected %d tools, want %d", len(selected), len(want))
	}
	for i, name := range want {
		if selected[i].Name() != name {
			t.Errorf("selected[%d] = %s, want %s", i, selected[i].Name(), name)
		}
	}
}

func TestSelectIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	a := newFakeTool("a", 2)
	b := newFakeTool("b", 2)
	c := newFakeTool("c", 7)
	c.relevant = func(q string, _ components.SessionSnapshot) bool { return q == "match" }
	if err := reg.Register(a, b, c); err != nil {
		t.Fatal(err)
	}

	snap := components.SessionSnapshot{LastIntent: "weather_query"}
	firstPass := reg.Select("match", snap)
	for i := 0; i < 10; i++ {
		again := reg.Select("match", snap)
		if len(again) != len(firstPass) {
			t.Fatalf("pass %d selected %d tools, want %d", i, len(again), len(firstPass))
		}
		for j := range again {
			if again[j].Name() != firstPass[j].Name() {
				t.Fatalf("pass %d order differs at %d: %s vs %s", i, j, again[j].Name(), firstPass[j].Name())
			}
		}
	}
}

func TestSelectConsultsSnapshot(t *testing.T) {
	reg := NewRegistry()
	tool := newFakeTool("fpo_search", 0)
	tool.relevant = func(_ string, snap components.SessionSnapshot) bool { return snap.HasLocation() }
	if err := reg.Register(tool); err != nil {
		t.Fatal(err)
	}

	if got := reg.Select("nearest fpo", components.SessionSnapshot{}); len(got) != 0 {
		t.Errorf("selected %d tools without location, want 0", len(got))
	}
	withLoc := components.SessionSnapshot{Location: &components.Location{Name: "Batala"}}
	if got := reg.Select("nearest fpo", withLoc); len(got) != 1 {
		t.Errorf("selected %d tools with location, want 1", len(got))
	}
}

func TestInvokeRecoversPanics(t *testing.T) {
	var hookErr error
	tool := newFakeTool("schemes_search", 0, WithErrorHook(func(_ context.Context, _ string, err error) {
		hookErr = err
	}))
	tool.execute = func(context.Context, string, components.SessionSnapshot) *Result {
		panic("index out of range")
	}

	res := Invoke(context.Background(), tool, "pm kisan", components.SessionSnapshot{})
	if res == nil {
		t.Fatal("Invoke returned nil after panic")
	}
	if res.Success {
		t.Error("panicking tool reported success")
	}
	if res.Tool != "schemes_search" {
		t.Errorf("result tool = %q", res.Tool)
	}
	if res.Message == "" {
		t.Error("panic produced no user-safe message")
	}
	var execErr *ExecutionError
	if !errors.As(hookErr, &execErr) {
		t.Fatalf("error hook got %T, want *ExecutionError", hookErr)
	}
	if execErr.Tool != "schemes_search" {
		t.Errorf("ExecutionError.Tool = %q", execErr.Tool)
	}
}

func TestInvokeStampsResultAndFiresHooks(t *testing.T) {
	var started, ended bool
	tool := newFakeTool("weather_advisory", 0,
		WithStartHook(func(_ context.Context, q string) { started = q == "rain tomorrow" }),
		WithEndHook(func(_ context.Context, _ string, res *Result) { ended = res.Success }),
	)
	tool.execute = func(context.Context, string, components.SessionSnapshot) *Result {
		return &Result{Success: true, Message: "clear skies"}
	}

	res := Invoke(context.Background(), tool, "rain tomorrow", components.SessionSnapshot{})
	if !started {
		t.Error("start hook did not fire with the query")
	}
	if !ended {
		t.Error("end hook did not see the result")
	}
	if res.Tool != "weather_advisory" {
		t.Errorf("tool name not stamped, got %q", res.Tool)
	}
	if _, ok := res.Metadata[MetaElapsedMS]; !ok {
		t.Error("elapsed_ms metadata missing")
	}
}

func TestInvokeGuardsNilResult(t *testing.T) {
	tool := newFakeTool("advisory_search", 0)
	tool.execute = func(context.Context, string, components.SessionSnapshot) *Result { return nil }

	res := Invoke(context.Background(), tool, "q", components.SessionSnapshot{})
	if res == nil {
		t.Fatal("Invoke returned nil")
	}
	if res.Success {
		t.Error("nil execution reported success")
	}
}
