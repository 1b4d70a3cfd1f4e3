// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// OriginalContent describes what the user originally submitted, echoed
// back by the backend alongside analysis results.
type OriginalContent struct {
	Kind    ContentKind `json:"type"`
	Content string      `json:"content"`
}

// RawAnalysis is the wire payload for one analysis record. Older backend
// versions populate the split fields (VisualDescription, ExtractedText,
// IntentAnalysis); newer ones ship everything inside FullContext. The
// normalizer in internal/view collapses both shapes.
type RawAnalysis struct {
	ID       string `json:"id"`
	UploadID string `json:"upload_id"`

	VisualDescription string         `json:"visual_description,omitempty"`
	ExtractedText     string         `json:"extracted_text,omitempty"`
	IntentAnalysis    map[string]any `json:"intent_analysis,omitempty"`
	FullContext       map[string]any `json:"full_context,omitempty"`

	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`

	OriginalContent *OriginalContent `json:"original_content,omitempty"`
}

// AnalysisView is the canonical shape presentation code consumes. It is
// rebuilt on each fetch and never stored, so downstream code never
// branches on which backend version produced the payload.
type AnalysisView struct {
	AnalysisID string
	UploadID   string
	CreatedAt  string

	Original *OriginalContent

	// DeepDecode holds the stage-one decoding output: visual_description,
	// extracted_text and friends, keyed as the backend names them.
	DeepDecode map[string]any

	// ContextualExpand holds the intent classification: primary_intent,
	// interest_level, interest_tags, keywords.
	ContextualExpand map[string]any

	// SearchResults is the raw result list from the search stage.
	SearchResults []any
}

// Keywords returns the keyword list from the contextual expansion, or
// nil when none was produced.
func (v AnalysisView) Keywords() []string {
	return stringList(v.ContextualExpand["keywords"])
}

// InterestTags returns the interest tags from the contextual expansion.
func (v AnalysisView) InterestTags() []string {
	return stringList(v.ContextualExpand["interest_tags"])
}

// PrimaryIntent returns the classified primary intent, or "".
func (v AnalysisView) PrimaryIntent() string {
	s, _ := v.ContextualExpand["primary_intent"].(string)
	return s
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
