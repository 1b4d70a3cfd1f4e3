// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared domain model for the mosaic client:
// analysis jobs and their progress snapshots, history records,
// recommendation tiles, and the canonical analysis view.
package types

// JobStatus is the lifecycle state reported by the backend for an
// asynchronous analysis task.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Terminal reports whether the status is final. A job in a terminal
// state is never polled or mutated again.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// RawStatus is the wire payload returned by the task-status endpoint.
// Result is an opaque bag whose shape varies across backend versions;
// it is carried through decoding unchanged.
type RawStatus struct {
	TaskID   string         `json:"task_id"`
	Status   JobStatus      `json:"status"`
	Progress int            `json:"progress"`
	Result   map[string]any `json:"result,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Job is a client-side record of one analysis task. It is owned by the
// poller driving it; nothing mutates a Job after it reaches a terminal
// status.
type Job struct {
	ID       string
	Status   JobStatus
	Progress int
	// StageResult holds the partially decoded backend payload from the
	// most recent poll.
	StageResult map[string]any
	Error       string
}

// JobProgress is an immutable snapshot derived from one RawStatus. It is
// recomputed on every poll tick and never persisted.
type JobProgress struct {
	// Percent is the reported completion in [0,100].
	Percent int

	// StageIndex is the pipeline stage in [1,5] derived from Percent.
	StageIndex int

	// StageLabel names the stage: prepare, deep-decode,
	// contextual-expand, assemble, or done.
	StageLabel string

	// PartialFields carries any decoded sub-results the backend has
	// published so far (keywords, intent classification, search hits),
	// passed through unchanged for progressive disclosure.
	PartialFields map[string]any
}
