// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive persists completed analyses to a local SQLite database
// for later offline viewing. Rows are write-once snapshots of what the
// server returned; the archive never reconciles with the backend and is
// not a sync mechanism.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/mosaic/pkg/types"
)

const dbFile = "mosaic.db"

// Store manages the archive SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the archive database under cfg.Dir, creating the
// schema if needed.
func Open(cfg types.ArchiveConfig) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("archive directory not configured")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening archive database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating archive schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id TEXT PRIMARY KEY,
			upload_id TEXT,
			original_kind TEXT,
			original_content TEXT,
			view_json TEXT NOT NULL,
			archived_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tiles (
			id TEXT PRIMARY KEY,
			analysis_id TEXT NOT NULL REFERENCES analyses(id),
			title TEXT,
			description TEXT,
			url TEXT,
			image_url TEXT,
			source TEXT,
			tile_type TEXT,
			relevance_score REAL,
			user_action TEXT,
			display_order INTEGER,
			article_html TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tiles_analysis_id ON tiles(analysis_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save stores one completed analysis view with its tiles. Saving the
// same analysis again replaces the earlier snapshot.
func (s *Store) Save(ctx context.Context, v types.AnalysisView, tiles []types.Tile) error {
	if v.AnalysisID == "" {
		return fmt.Errorf("analysis view has no id")
	}

	viewJSON, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding analysis view: %w", err)
	}

	var kind, content string
	if v.Original != nil {
		kind = string(v.Original.Kind)
		content = v.Original.Content
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO analyses
		 (id, upload_id, original_kind, original_content, view_json, archived_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		v.AnalysisID, v.UploadID, kind, content, string(viewJSON),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving analysis %s: %w", v.AnalysisID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM tiles WHERE analysis_id = ?`, v.AnalysisID); err != nil {
		return fmt.Errorf("clearing old tiles: %w", err)
	}
	for _, t := range tiles {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tiles
			 (id, analysis_id, title, description, url, image_url, source,
			  tile_type, relevance_score, user_action, display_order, article_html)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, v.AnalysisID, t.Title, t.Description, t.URL, t.ImageURL,
			t.Source, t.TileType, t.RelevanceScore, string(t.UserAction),
			t.DisplayOrder, t.ArticleHTML)
		if err != nil {
			return fmt.Errorf("saving tile %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// Entry is one archived analysis in a listing.
type Entry struct {
	AnalysisID      string
	OriginalKind    string
	OriginalContent string
	TileCount       int
	ArchivedAt      string
}

// List returns archived analyses, most recently archived first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.original_kind, a.original_content, a.archived_at,
		        (SELECT COUNT(*) FROM tiles t WHERE t.analysis_id = a.id)
		 FROM analyses a
		 ORDER BY a.archived_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing archive: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.AnalysisID, &e.OriginalKind, &e.OriginalContent,
			&e.ArchivedAt, &e.TileCount); err != nil {
			return nil, fmt.Errorf("scanning archive row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Show loads one archived analysis and its tiles.
func (s *Store) Show(ctx context.Context, analysisID string) (types.AnalysisView, []types.Tile, error) {
	var viewJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT view_json FROM analyses WHERE id = ?`, analysisID).Scan(&viewJSON)
	if err == sql.ErrNoRows {
		return types.AnalysisView{}, nil, fmt.Errorf("analysis %s not in archive", analysisID)
	}
	if err != nil {
		return types.AnalysisView{}, nil, fmt.Errorf("loading analysis %s: %w", analysisID, err)
	}

	var v types.AnalysisView
	if err := json.Unmarshal([]byte(viewJSON), &v); err != nil {
		return types.AnalysisView{}, nil, fmt.Errorf("decoding archived view: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, url, image_url, source, tile_type,
		        relevance_score, user_action, display_order, article_html
		 FROM tiles WHERE analysis_id = ? ORDER BY display_order`, analysisID)
	if err != nil {
		return types.AnalysisView{}, nil, fmt.Errorf("loading tiles: %w", err)
	}
	defer rows.Close()

	var tiles []types.Tile
	for rows.Next() {
		var t types.Tile
		var action string
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.URL, &t.ImageURL,
			&t.Source, &t.TileType, &t.RelevanceScore, &action,
			&t.DisplayOrder, &t.ArticleHTML); err != nil {
			return types.AnalysisView{}, nil, fmt.Errorf("scanning tile row: %w", err)
		}
		t.UserAction = types.TileAction(action)
		tiles = append(tiles, t)
	}
	return v, tiles, rows.Err()
}

// exportDoc is the YAML layout written by Export.
type exportDoc struct {
	Analysis types.AnalysisView `yaml:"analysis"`
	Tiles    []types.Tile       `yaml:"tiles"`
}

// Export writes one archived analysis as YAML to w.
func (s *Store) Export(ctx context.Context, analysisID string, w io.Writer) error {
	v, tiles, err := s.Show(ctx, analysisID)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(exportDoc{Analysis: v, Tiles: tiles})
}
