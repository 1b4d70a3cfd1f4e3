// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package progress

import (
	"testing"

	"github.com/pdiddy/mosaic/pkg/types"
)

func TestStageForBanding(t *testing.T) {
	tests := []struct {
		percent int
		want    Stage
	}{
		{0, StagePrepare},
		{10, StagePrepare},
		{19, StagePrepare},
		{20, StageDeepDecode}, // boundary belongs to the higher stage
		{39, StageDeepDecode},
		{40, StageContextualExpand},
		{59, StageContextualExpand},
		{60, StageAssemble},
		{80, StageAssemble},
		{99, StageAssemble},
		{100, StageDone},
	}
	for _, tt := range tests {
		if got := StageFor(tt.percent); got != tt.want {
			t.Errorf("StageFor(%d) = %v, want %v", tt.percent, got, tt.want)
		}
	}
}

func TestStageForMonotonic(t *testing.T) {
	prev := StagePrepare
	for p := 0; p <= 100; p++ {
		s := StageFor(p)
		if s < prev {
			t.Fatalf("StageFor(%d) = %v, below StageFor(%d) = %v", p, s, p-1, prev)
		}
		prev = s
	}
}

func TestDecodeDefaults(t *testing.T) {
	got := Decode(types.RawStatus{})
	if got.Percent != 0 {
		t.Errorf("Percent = %d, want 0", got.Percent)
	}
	if got.StageIndex != 1 || got.StageLabel != "prepare" {
		t.Errorf("stage = %d/%q, want 1/prepare", got.StageIndex, got.StageLabel)
	}
	if got.PartialFields != nil {
		t.Errorf("PartialFields = %v, want nil", got.PartialFields)
	}
}

func TestDecodeClampsPercent(t *testing.T) {
	if got := Decode(types.RawStatus{Progress: -7}); got.Percent != 0 {
		t.Errorf("Percent = %d, want 0", got.Percent)
	}
	got := Decode(types.RawStatus{Progress: 250})
	if got.Percent != 100 {
		t.Errorf("Percent = %d, want 100", got.Percent)
	}
	if got.StageLabel != "done" {
		t.Errorf("StageLabel = %q, want done", got.StageLabel)
	}
}

func TestDecodePassesSubResultsThrough(t *testing.T) {
	raw := types.RawStatus{
		Progress: 55,
		Status:   types.JobProcessing,
		Result: map[string]any{
			"step_message": "expanding context",
			"contextual_expand": map[string]any{
				"primary_intent": "research",
				"keywords":       []any{"climbing", "gear"},
			},
		},
	}

	got := Decode(raw)
	if got.StageLabel != "contextual-expand" || got.StageIndex != 3 {
		t.Errorf("stage = %d/%q, want 3/contextual-expand", got.StageIndex, got.StageLabel)
	}
	if StepMessage(got) != "expanding context" {
		t.Errorf("StepMessage = %q", StepMessage(got))
	}
	kw := Keywords(got)
	if len(kw) != 2 || kw[0] != "climbing" || kw[1] != "gear" {
		t.Errorf("Keywords = %v", kw)
	}

	// The snapshot owns its own map; mutating the raw payload after
	// decoding must not leak into it.
	raw.Result["step_message"] = "changed"
	if StepMessage(got) != "expanding context" {
		t.Error("snapshot shares storage with the raw payload")
	}
}

func TestKeywordsFallsBackToFinalResult(t *testing.T) {
	got := Decode(types.RawStatus{
		Progress: 100,
		Result: map[string]any{
			"final_result": map[string]any{
				"analysis_id": "a1",
				"keywords":    []any{"tents"},
			},
		},
	})
	kw := Keywords(got)
	if len(kw) != 1 || kw[0] != "tents" {
		t.Errorf("Keywords = %v, want [tents]", kw)
	}
}

func TestKeywordsAbsent(t *testing.T) {
	if kw := Keywords(Decode(types.RawStatus{Progress: 10})); kw != nil {
		t.Errorf("Keywords = %v, want nil", kw)
	}
}
