// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package poller drives one asynchronous analysis job to completion.
// A Poller issues an immediate status query on Start, then re-queries on
// a fixed interval until the backend reports a terminal status. Ticks
// are strictly sequential: the next query is never issued before the
// previous response has been processed.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/mosaic/internal/progress"
	"github.com/pdiddy/mosaic/pkg/types"
)

// DefaultInterval is the delay between consecutive status queries.
const DefaultInterval = 2 * time.Second

// State is the poller lifecycle state.
type State int

const (
	StateIdle State = iota
	StatePolling
	StateCompleted
	StateFailed
	StateStopped
)

// Client is the single backend operation the poller needs. *api.Client
// satisfies it.
type Client interface {
	TaskStatus(ctx context.Context, jobID string) (types.RawStatus, error)
}

// Terminal is the single end-of-job event. Exactly one Terminal is
// delivered per started poller, unless the poller is stopped first.
type Terminal struct {
	Status types.JobStatus

	// AnalysisID is the nested result identifier for a completed job.
	// Empty when the backend completed without publishing one; callers
	// treat that as success without a result to navigate to.
	AnalysisID string

	// Progress is the snapshot decoded from the terminal payload.
	Progress types.JobProgress

	// Reason is the human-readable failure message for failed jobs.
	Reason string

	// Err is the underlying transport error when the poll itself failed,
	// nil when the backend reported the failure.
	Err error

	// Ticks is the number of status queries issued, terminal included.
	Ticks int
}

// Config tunes a Poller. Zero values get defaults.
type Config struct {
	// Interval between status queries. Defaults to DefaultInterval.
	Interval time.Duration

	// OnProgress receives one snapshot per tick, in tick order, on the
	// polling goroutine. Optional.
	OnProgress func(types.JobProgress)

	// OnDone receives the terminal event, after the final OnProgress.
	OnDone func(Terminal)

	// Logger receives per-tick debug output. Optional.
	Logger *logrus.Logger
}

// Poller tracks a single job. Each instance runs at most one polling
// loop over its lifetime; Stop makes it inert.
type Poller struct {
	client Client
	cfg    Config

	// after is the wait primitive between ticks; tests substitute an
	// immediate channel to avoid real sleeps.
	after func(time.Duration) <-chan time.Time

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	ticks  int
	job    types.Job
}

// New builds an idle Poller.
func New(client Client, cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Poller{client: client, cfg: cfg, after: time.After}
}

// Start transitions idle → polling and launches the loop. It is
// rejected if the poller has ever been started: one loop per instance.
func (p *Poller) Start(ctx context.Context, jobID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StatePolling {
		return errAlreadyPolling
	}
	if p.state != StateIdle {
		return errInert
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.state = StatePolling
	p.job = types.Job{ID: jobID, Status: types.JobPending}

	go p.loop(ctx, jobID)
	return nil
}

// Stop halts polling. Safe to call from any state and more than once:
// stopping an idle or terminal poller is a no-op. An in-flight status
// query is not interrupted mid-request, but its result is discarded and
// no further queries are issued.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}
	if p.state == StatePolling || p.state == StateIdle {
		p.state = StateStopped
	}
}

// State returns the current lifecycle state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Ticks returns the number of status queries issued so far.
func (p *Poller) Ticks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ticks
}

// Job returns a snapshot of the tracked job.
func (p *Poller) Job() types.Job {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.job
}

func (p *Poller) loop(ctx context.Context, jobID string) {
	for {
		raw, err := p.client.TaskStatus(ctx, jobID)

		p.mu.Lock()
		if p.state != StatePolling {
			// Stopped while the query was in flight; discard the result.
			p.mu.Unlock()
			return
		}
		p.ticks++
		ticks := p.ticks
		p.mu.Unlock()

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// A lost connection during polling is reported, not retried.
			p.finish(Terminal{
				Status: types.JobFailed,
				Reason: err.Error(),
				Err:    err,
				Ticks:  ticks,
			})
			return
		}

		prog := progress.Decode(raw)

		p.mu.Lock()
		p.job.Status = raw.Status
		p.job.Progress = prog.Percent
		p.job.StageResult = prog.PartialFields
		p.job.Error = raw.Error
		p.mu.Unlock()

		if p.cfg.Logger != nil {
			p.cfg.Logger.WithFields(logrus.Fields{
				"job_id":   jobID,
				"tick":     ticks,
				"status":   raw.Status,
				"progress": prog.Percent,
				"stage":    prog.StageLabel,
			}).Debug("poll tick")
		}
		if p.cfg.OnProgress != nil {
			p.cfg.OnProgress(prog)
		}

		switch raw.Status {
		case types.JobCompleted:
			p.finish(Terminal{
				Status:     types.JobCompleted,
				AnalysisID: resultAnalysisID(raw.Result),
				Progress:   prog,
				Ticks:      ticks,
			})
			return
		case types.JobFailed:
			reason := raw.Error
			if reason == "" {
				reason = "analysis failed"
			}
			p.finish(Terminal{
				Status:   types.JobFailed,
				Progress: prog,
				Reason:   reason,
				Ticks:    ticks,
			})
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-p.after(p.cfg.Interval):
		}
	}
}

// finish records the terminal state and delivers the terminal event
// exactly once. A poller stopped between the last tick and finish emits
// nothing.
func (p *Poller) finish(t Terminal) {
	p.mu.Lock()
	if p.state != StatePolling {
		p.mu.Unlock()
		return
	}
	if t.Status == types.JobCompleted {
		p.state = StateCompleted
	} else {
		p.state = StateFailed
	}
	p.job.Status = t.Status
	p.job.Error = t.Reason
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()

	if p.cfg.OnDone != nil {
		p.cfg.OnDone(t)
	}
}

// resultAnalysisID digs the analysis identifier out of a completed
// payload: result.final_result.analysis_id. Any missing link in that
// chain yields "".
func resultAnalysisID(result map[string]any) string {
	final, ok := result["final_result"].(map[string]any)
	if !ok {
		return ""
	}
	id, _ := final["analysis_id"].(string)
	return id
}
