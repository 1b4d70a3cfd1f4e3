// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pdiddy/mosaic/pkg/types"
)

// step is one scripted status response.
type step struct {
	raw types.RawStatus
	err error
}

// scriptedClient replays a fixed status sequence and counts queries.
type scriptedClient struct {
	mu    sync.Mutex
	steps []step
	calls int
}

func (c *scriptedClient) TaskStatus(_ context.Context, _ string) (types.RawStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.calls
	c.calls++
	if i >= len(c.steps) {
		return types.RawStatus{}, errors.New("status queried past the scripted sequence")
	}
	return c.steps[i].raw, c.steps[i].err
}

func (c *scriptedClient) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// immediateAfter removes inter-tick waits so tests never sleep.
func immediateAfter(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

func waitTerminal(t *testing.T, done <-chan Terminal) Terminal {
	t.Helper()
	select {
	case term := <-done:
		return term
	case <-time.After(2 * time.Second):
		t.Fatal("no terminal event delivered")
		return Terminal{}
	}
}

func TestPollerHappyPath(t *testing.T) {
	client := &scriptedClient{steps: []step{
		{raw: types.RawStatus{Status: types.JobPending, Progress: 0}},
		{raw: types.RawStatus{Status: types.JobProcessing, Progress: 25}},
		{raw: types.RawStatus{Status: types.JobProcessing, Progress: 55}},
		{raw: types.RawStatus{Status: types.JobCompleted, Progress: 100, Result: map[string]any{
			"final_result": map[string]any{"analysis_id": "a1"},
		}}},
	}}

	var stages []string
	done := make(chan Terminal, 1)
	p := New(client, Config{
		OnProgress: func(prog types.JobProgress) { stages = append(stages, prog.StageLabel) },
		OnDone:     func(term Terminal) { done <- term },
	})
	p.after = immediateAfter

	if err := p.Start(context.Background(), "j1"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	term := waitTerminal(t, done)
	if term.Status != types.JobCompleted {
		t.Errorf("Status = %v, want completed", term.Status)
	}
	if term.AnalysisID != "a1" {
		t.Errorf("AnalysisID = %q, want a1", term.AnalysisID)
	}
	if term.Ticks != 4 {
		t.Errorf("Ticks = %d, want 4", term.Ticks)
	}

	want := []string{"prepare", "deep-decode", "contextual-expand", "done"}
	if len(stages) != len(want) {
		t.Fatalf("stages = %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Errorf("stage[%d] = %q, want %q", i, stages[i], want[i])
		}
	}

	// The loop must freeze after the terminal event even without Stop.
	time.Sleep(20 * time.Millisecond)
	if got := client.count(); got != 4 {
		t.Errorf("queries after terminal: %d, want 4", got)
	}
	if p.State() != StateCompleted {
		t.Errorf("State = %v, want completed", p.State())
	}
}

func TestPollerBackendFailure(t *testing.T) {
	client := &scriptedClient{steps: []step{
		{raw: types.RawStatus{Status: types.JobPending, Progress: 0}},
		{raw: types.RawStatus{Status: types.JobFailed, Error: "timeout"}},
	}}

	done := make(chan Terminal, 1)
	p := New(client, Config{OnDone: func(term Terminal) { done <- term }})
	p.after = immediateAfter

	if err := p.Start(context.Background(), "j1"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	term := waitTerminal(t, done)
	if term.Status != types.JobFailed {
		t.Errorf("Status = %v, want failed", term.Status)
	}
	if term.Reason != "timeout" {
		t.Errorf("Reason = %q, want timeout", term.Reason)
	}
	if term.Ticks != 2 {
		t.Errorf("Ticks = %d, want 2", term.Ticks)
	}

	time.Sleep(20 * time.Millisecond)
	if got := client.count(); got != 2 {
		t.Errorf("queries after terminal: %d, want 2", got)
	}
}

func TestPollerTransportFailure(t *testing.T) {
	transportErr := errors.New("connection reset")
	client := &scriptedClient{steps: []step{{err: transportErr}}}

	done := make(chan Terminal, 1)
	p := New(client, Config{OnDone: func(term Terminal) { done <- term }})
	p.after = immediateAfter

	if err := p.Start(context.Background(), "j1"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	term := waitTerminal(t, done)
	if term.Status != types.JobFailed {
		t.Errorf("Status = %v, want failed", term.Status)
	}
	if !errors.Is(term.Err, transportErr) {
		t.Errorf("Err = %v, want %v", term.Err, transportErr)
	}
	if p.State() != StateFailed {
		t.Errorf("State = %v, want failed", p.State())
	}
}

func TestPollerCompletedWithoutResultID(t *testing.T) {
	client := &scriptedClient{steps: []step{
		{raw: types.RawStatus{Status: types.JobCompleted, Progress: 100, Result: map[string]any{
			"step_message": "done",
		}}},
	}}

	done := make(chan Terminal, 1)
	p := New(client, Config{OnDone: func(term Terminal) { done <- term }})
	p.after = immediateAfter

	if err := p.Start(context.Background(), "j1"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	term := waitTerminal(t, done)
	if term.Status != types.JobCompleted {
		t.Errorf("Status = %v, want completed", term.Status)
	}
	if term.AnalysisID != "" {
		t.Errorf("AnalysisID = %q, want empty", term.AnalysisID)
	}
}

func TestPollerStopMidPoll(t *testing.T) {
	client := &scriptedClient{steps: []step{
		{raw: types.RawStatus{Status: types.JobPending, Progress: 0}},
		{raw: types.RawStatus{Status: types.JobProcessing, Progress: 25}},
	}}

	progressed := make(chan struct{}, 8)
	done := make(chan Terminal, 1)
	gate := make(chan time.Time)

	p := New(client, Config{
		OnProgress: func(types.JobProgress) { progressed <- struct{}{} },
		OnDone:     func(term Terminal) { done <- term },
	})
	p.after = func(time.Duration) <-chan time.Time { return gate }

	if err := p.Start(context.Background(), "j1"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// First tick processed; the loop is now parked between ticks.
	select {
	case <-progressed:
	case <-time.After(2 * time.Second):
		t.Fatal("first tick never processed")
	}

	p.Stop()

	time.Sleep(20 * time.Millisecond)
	if got := client.count(); got != 1 {
		t.Errorf("queries after Stop: %d, want 1", got)
	}
	select {
	case term := <-done:
		t.Errorf("terminal event after Stop: %+v", term)
	default:
	}
	if p.State() != StateStopped {
		t.Errorf("State = %v, want stopped", p.State())
	}

	// Stopping again is a no-op.
	p.Stop()
}

func TestPollerRestartRejected(t *testing.T) {
	client := &scriptedClient{steps: []step{
		{raw: types.RawStatus{Status: types.JobPending, Progress: 0}},
	}}

	progressed := make(chan struct{}, 1)
	gate := make(chan time.Time)
	p := New(client, Config{
		OnProgress: func(types.JobProgress) { progressed <- struct{}{} },
	})
	p.after = func(time.Duration) <-chan time.Time { return gate }

	if err := p.Start(context.Background(), "j1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-progressed

	if err := p.Start(context.Background(), "j2"); err == nil {
		t.Error("second Start on an active poller succeeded")
	}

	p.Stop()

	// A stopped poller stays inert.
	if err := p.Start(context.Background(), "j3"); err == nil {
		t.Error("Start on a stopped poller succeeded")
	}
}

func TestPollerStopFromIdle(t *testing.T) {
	p := New(&scriptedClient{}, Config{})
	p.Stop()
	if p.State() != StateStopped {
		t.Errorf("State = %v, want stopped", p.State())
	}
}
