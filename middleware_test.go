package brainstorm

import (
	"strings"
	"testing"
	"time"
)

func TestPipelineOnionOrder(t *testing.T) {
	p := NewEventPipeline()
	var trace []string

	p.Use(func(ctx *EventContext, next NextFunc) {
		trace = append(trace, "a-before")
		next()
		trace = append(trace, "a-after")
	})
	p.Use(func(ctx *EventContext, next NextFunc) {
		trace = append(trace, "b-before")
		next()
		trace = append(trace, "b-after")
	})

	p.Execute(&EventContext{}, func() {
		trace = append(trace, "core")
	})

	want := []string{"a-before", "b-before", "core", "b-after", "a-after"}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Errorf("trace[%d] = %q, want %q", i, trace[i], want[i])
		}
	}
}

func TestPipelineShortCircuit(t *testing.T) {
	p := NewEventPipeline()
	p.Use(func(ctx *EventContext, next NextFunc) {
		// Intercept: never call next().
	})

	reached := false
	ctx := &EventContext{}
	p.Execute(ctx, func() {
		reached = true
	})

	if reached {
		t.Error("core handler ran despite interception")
	}
	if ctx.Handled {
		t.Error("Handled should stay false when intercepted")
	}
}

func TestPipelineEmptyRunsCore(t *testing.T) {
	p := NewEventPipeline()
	ran := false
	p.Execute(&EventContext{}, func() { ran = true })
	if !ran {
		t.Fatal("empty pipeline must run the core handler")
	}
	if p.Len() != 0 {
		t.Errorf("Len = %d, want 0", p.Len())
	}
}

func TestControllerMiddlewareSeesEvents(t *testing.T) {
	c, rec := newTestController(t)

	var seen []string
	c.Use(func(ctx *EventContext, next NextFunc) {
		seen = append(seen, ctx.Event.Text)
		next()
	})
	// A filter layered inside it that blocks one user entirely.
	c.Use(func(ctx *EventContext, next NextFunc) {
		if ctx.Event.UserID == "banned" {
			return
		}
		next()
	})

	c.Dispatch(InboundEvent{UserID: "u1", Text: "an idea", Timestamp: time.Now()})
	c.Dispatch(InboundEvent{UserID: "banned", Text: "blocked idea", Timestamp: time.Now()})

	if len(seen) != 2 {
		t.Fatalf("middleware saw %d events, want 2", len(seen))
	}
	if len(rec.Sent("banned")) != 0 {
		t.Error("blocked user should get no replies")
	}
	if got := rec.LastSent("u1"); !strings.Contains(got, "audience") {
		t.Errorf("u1 got %q, pipeline should pass events through", got)
	}
}
