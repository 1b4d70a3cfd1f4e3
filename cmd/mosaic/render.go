// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/mosaic/internal/progress"
	"github.com/pdiddy/mosaic/pkg/types"
)

// renderProgress writes one stage line per poll tick, with whatever
// sub-results the backend has published so far.
func renderProgress(w io.Writer, p types.JobProgress, seenKeywords *bool) {
	line := fmt.Sprintf("[%d/5] %-18s %3d%%", p.StageIndex, p.StageLabel, p.Percent)
	if msg := progress.StepMessage(p); msg != "" {
		line += "  " + msg
	}
	fmt.Fprintln(w, line)

	if !*seenKeywords {
		if kw := progress.Keywords(p); len(kw) > 0 {
			*seenKeywords = true
			fmt.Fprintf(w, "      keywords: %s\n", strings.Join(kw, ", "))
		}
	}
}

// renderView writes the canonical analysis view.
func renderView(w io.Writer, v types.AnalysisView) {
	fmt.Fprintf(w, "Analysis %s\n", v.AnalysisID)
	fmt.Fprintln(w, strings.Repeat("-", 72))

	if v.Original != nil {
		fmt.Fprintf(w, "Original (%s): %s\n", v.Original.Kind, truncate(v.Original.Content, 200))
	}
	if desc, ok := v.DeepDecode["visual_description"].(string); ok && desc != "" {
		fmt.Fprintf(w, "Decoded:       %s\n", truncate(desc, 400))
	}
	if text, ok := v.DeepDecode["extracted_text"].(string); ok && text != "" {
		fmt.Fprintf(w, "Extracted:     %s\n", truncate(text, 200))
	}
	if intent := v.PrimaryIntent(); intent != "" {
		fmt.Fprintf(w, "Intent:        %s\n", intent)
	}
	if tags := v.InterestTags(); len(tags) > 0 {
		fmt.Fprintf(w, "Interests:     %s\n", strings.Join(tags, ", "))
	}
	if kw := v.Keywords(); len(kw) > 0 {
		fmt.Fprintf(w, "Keywords:      %s\n", strings.Join(kw, ", "))
	}
	if n := len(v.SearchResults); n > 0 {
		fmt.Fprintf(w, "Search hits:   %d\n", n)
	}
}

// renderTiles writes recommendations as a human-readable table.
func renderTiles(w io.Writer, tiles []types.Tile) {
	if len(tiles) == 0 {
		fmt.Fprintln(w, "No recommendations.")
		return
	}

	fmt.Fprintf(w, "%-38s  %-9s  %-5s  %-7s  %s\n",
		"ID", "Type", "Score", "Action", "Title")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, t := range tiles {
		action := string(t.UserAction)
		if action == "" {
			action = "-"
		}
		fmt.Fprintf(w, "%-38s  %-9s  %5.2f  %-7s  %s\n",
			t.ID, truncate(t.TileType, 9), t.RelevanceScore, action,
			truncate(t.Title, 40))
	}
	fmt.Fprintf(w, "\n%d recommendation(s)\n", len(tiles))
}

// renderRecords writes history records as a table.
func renderRecords(w io.Writer, records []types.Record, total int) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No history records.")
		return
	}

	fmt.Fprintf(w, "%-38s  %-5s  %-4s  %-20s  %s\n",
		"ID", "Kind", "Recs", "Created", "Preview")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for _, r := range records {
		fmt.Fprintf(w, "%-38s  %-5s  %4d  %-20s  %s\n",
			r.ID, r.Kind, r.RecommendationCount,
			truncate(r.CreatedAt, 20), truncate(r.Preview, 36))
	}
	fmt.Fprintf(w, "\n%d of %d record(s)\n", len(records), total)
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
