// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package progress normalizes raw task-status payloads into stable
// progress snapshots. Decoding is total: malformed or missing fields
// degrade to defaults, never to an error.
package progress

import "github.com/pdiddy/mosaic/pkg/types"

// Stage is one step of the backend analysis pipeline, derived from the
// reported percent.
type Stage int

const (
	StagePrepare Stage = iota + 1
	StageDeepDecode
	StageContextualExpand
	StageAssemble
	StageDone
)

var stageLabels = map[Stage]string{
	StagePrepare:          "prepare",
	StageDeepDecode:       "deep-decode",
	StageContextualExpand: "contextual-expand",
	StageAssemble:         "assemble",
	StageDone:             "done",
}

// Label returns the stage's wire name.
func (s Stage) Label() string { return stageLabels[s] }

// StageFor maps a percent value onto the pipeline stage. Banding is a
// fixed threshold table; a boundary value belongs to the higher stage,
// so StageFor(20) is deep-decode and StageFor(100) is done.
func StageFor(percent int) Stage {
	switch {
	case percent < 20:
		return StagePrepare
	case percent < 40:
		return StageDeepDecode
	case percent < 60:
		return StageContextualExpand
	case percent < 100:
		return StageAssemble
	default:
		return StageDone
	}
}

// Decode maps a raw status payload into a JobProgress snapshot. Percent
// is clamped to [0,100]; a payload with no usable progress reads as 0%
// in stage 1. Sub-results published by the backend are passed through
// unchanged in PartialFields, and their absence is not an error.
func Decode(raw types.RawStatus) types.JobProgress {
	percent := raw.Progress
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	stage := StageFor(percent)

	var partial map[string]any
	if len(raw.Result) > 0 {
		partial = make(map[string]any, len(raw.Result))
		for k, v := range raw.Result {
			partial[k] = v
		}
	}

	return types.JobProgress{
		Percent:       percent,
		StageIndex:    int(stage),
		StageLabel:    stage.Label(),
		PartialFields: partial,
	}
}

// StepMessage returns the backend's human-readable step note from a
// snapshot, or "".
func StepMessage(p types.JobProgress) string {
	s, _ := p.PartialFields["step_message"].(string)
	return s
}

// Keywords returns the keyword list published so far, preferring the
// contextual-expand result over the final result. Nil when neither
// stage has produced keywords yet.
func Keywords(p types.JobProgress) []string {
	for _, key := range []string{"contextual_expand", "final_result"} {
		section, ok := p.PartialFields[key].(map[string]any)
		if !ok {
			continue
		}
		items, ok := section["keywords"].([]any)
		if !ok {
			continue
		}
		var out []string
		for _, it := range items {
			if s, ok := it.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}
