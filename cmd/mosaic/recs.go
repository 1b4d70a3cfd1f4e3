// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/mosaic/internal/article"
	"github.com/pdiddy/mosaic/internal/store"
	"github.com/pdiddy/mosaic/pkg/types"
)

var recsCmd = &cobra.Command{
	Use:   "recs",
	Short: "Browse and curate recommendations",
}

var recsListCmd = &cobra.Command{
	Use:   "list [analysis-id]",
	Short: "List the recommendations for one analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecsList,
}

var recsFeedbackCmd = &cobra.Command{
	Use:   "feedback [analysis-id] [tile-id] [keep|discard]",
	Short: "Record a keep/discard verdict for one recommendation",
	Long: `Feedback marks a recommendation as kept or discarded. Repeating a
verdict the tile already carries is a no-op; a different verdict
replaces it. When the backend rescores the set, the updated list is
shown.`,
	Args: cobra.ExactArgs(3),
	RunE: runRecsFeedback,
}

var recsArticleCmd = &cobra.Command{
	Use:   "article [tile-id]",
	Short: "Read the generated article for one recommendation",
	Long: `Article fetches the lazily generated long-form article for a tile and
renders it as text. Use --regenerate to force the backend to write a
fresh one; a failed regeneration keeps the previous article.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecsArticle,
}

func init() {
	recsListCmd.Flags().Bool("json", false, "output tiles as JSON")
	recsArticleCmd.Flags().Bool("regenerate", false, "discard the stored article and generate a new one")
	recsArticleCmd.Flags().Bool("raw", false, "print the raw article HTML")

	recsCmd.AddCommand(recsListCmd)
	recsCmd.AddCommand(recsFeedbackCmd)
	recsCmd.AddCommand(recsArticleCmd)
	rootCmd.AddCommand(recsCmd)
}

func runRecsList(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	st := store.New(client, storeConfig(), newLogger())

	tiles, err := st.LoadTiles(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		return printJSON(os.Stdout, tiles)
	}
	renderTiles(os.Stdout, tiles)
	return nil
}

func runRecsFeedback(cmd *cobra.Command, args []string) error {
	analysisID, tileID := args[0], args[1]
	action := types.TileAction(args[2])
	if !action.Valid() {
		return fmt.Errorf("action must be keep or discard, got %q", args[2])
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	st := store.New(client, storeConfig(), newLogger())

	ctx := cmd.Context()
	if _, err := st.LoadTiles(ctx, analysisID); err != nil {
		return err
	}
	if err := st.Feedback(ctx, tileID, action); err != nil {
		return fmt.Errorf("feedback failed, verdict not recorded: %w", err)
	}

	fmt.Printf("Recorded %s for %s\n", action, tileID)
	renderTiles(os.Stdout, st.Tiles())
	return nil
}

func runRecsArticle(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	regenerate, _ := cmd.Flags().GetBool("regenerate")
	cache := article.NewCache(client)
	html, err := cache.Get(cmd.Context(), args[0], regenerate)
	if err != nil {
		return err
	}

	raw, _ := cmd.Flags().GetBool("raw")
	if raw {
		fmt.Println(html)
		return nil
	}
	fmt.Println(article.RenderOrRaw(html))
	return nil
}
