// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ContentKind classifies what the user submitted.
type ContentKind string

const (
	KindImage ContentKind = "image"
	KindURL   ContentKind = "url"
	KindText  ContentKind = "text"
)

// Record is one history item in the client's record store. The server is
// the source of truth; the local copy is refreshed wholesale and mutated
// optimistically.
type Record struct {
	ID      string      `json:"id"`
	Kind    ContentKind `json:"type"`
	Preview string      `json:"content_preview"`

	// LinkedResultID is the analysis this record resolved to, empty while
	// the analysis is still running or when it failed.
	LinkedResultID string `json:"analysis_id,omitempty"`

	Summary             string `json:"analysis_summary,omitempty"`
	RecommendationCount int    `json:"recommendation_count"`
	CreatedAt           string `json:"created_at"`

	// FullContext mirrors the server's stored analysis context when the
	// listing endpoint includes it. Opaque; rendered as-is.
	FullContext map[string]any `json:"full_context,omitempty"`
}

// TileAction is a user's verdict on one recommendation tile.
type TileAction string

const (
	ActionNone    TileAction = ""
	ActionKeep    TileAction = "keep"
	ActionDiscard TileAction = "discard"
)

// Valid reports whether the action is one a caller may submit.
func (a TileAction) Valid() bool {
	return a == ActionKeep || a == ActionDiscard
}

// Tile is one recommendation produced by a completed analysis.
type Tile struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	URL            string  `json:"url,omitempty"`
	ImageURL       string  `json:"image_url,omitempty"`
	Source         string  `json:"source"`
	RelevanceScore float64 `json:"relevance_score"`
	TileType       string  `json:"tile_type"`

	// UserAction transitions from none to keep or discard; resubmitting
	// the same action is a no-op, a different action overwrites.
	UserAction TileAction `json:"user_action,omitempty"`

	DisplayOrder int `json:"display_order"`

	// ArticleHTML, when present, is the lazily generated long-form
	// article for this tile. Treated as immutable once cached.
	ArticleHTML string `json:"article_html,omitempty"`
}
