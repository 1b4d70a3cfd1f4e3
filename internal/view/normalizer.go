// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package view reshapes raw analysis payloads into the one canonical
// form presentation code consumes. The backend has shipped two shapes
// over time: a combined full-context object, and older records with
// separately named fields. Normalization is total; whatever is missing
// is simply absent from the view.
package view

import "github.com/pdiddy/mosaic/pkg/types"

// Normalize builds the canonical analysis view from raw. When a combined
// context is present it is used as-is; otherwise one is synthesized from
// the legacy split fields. Original-content metadata is merged in either
// case.
func Normalize(raw types.RawAnalysis) types.AnalysisView {
	v := types.AnalysisView{
		AnalysisID: raw.ID,
		UploadID:   raw.UploadID,
		CreatedAt:  raw.CreatedAt,
		Original:   raw.OriginalContent,
	}

	if len(raw.FullContext) > 0 {
		v.DeepDecode = asMap(raw.FullContext["deep_decode"])
		v.ContextualExpand = asMap(raw.FullContext["contextual_expand"])
		v.SearchResults = asSlice(raw.FullContext["search_results"])
		fillLegacy(&v, raw)
		return v
	}

	fillLegacy(&v, raw)
	return v
}

// fillLegacy synthesizes missing sections from the split legacy fields.
// It only fills gaps, so a combined context always wins.
func fillLegacy(v *types.AnalysisView, raw types.RawAnalysis) {
	if v.DeepDecode == nil && (raw.VisualDescription != "" || raw.ExtractedText != "") {
		dd := make(map[string]any, 2)
		if raw.VisualDescription != "" {
			dd["visual_description"] = raw.VisualDescription
		}
		if raw.ExtractedText != "" {
			dd["extracted_text"] = raw.ExtractedText
		}
		v.DeepDecode = dd
	}
	if v.ContextualExpand == nil && len(raw.IntentAnalysis) > 0 {
		v.ContextualExpand = raw.IntentAnalysis
	}
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}
