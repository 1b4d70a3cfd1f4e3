// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/mosaic/internal/archive"
	"github.com/pdiddy/mosaic/internal/store"
	"github.com/pdiddy/mosaic/internal/view"
	"github.com/pdiddy/mosaic/pkg/types"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Keep completed analyses in a local archive",
	Long: `Archive stores completed analyses, their recommendations, and any
generated articles in a local SQLite database for offline viewing.
Archived snapshots are never synchronized back to the backend.`,
}

var archiveSaveCmd = &cobra.Command{
	Use:   "save [analysis-id]",
	Short: "Archive one completed analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveSave,
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived analyses",
	RunE:  runArchiveList,
}

var archiveShowCmd = &cobra.Command{
	Use:   "show [analysis-id]",
	Short: "Show one archived analysis",
	RunE:  runArchiveShow,
	Args:  cobra.ExactArgs(1),
}

func init() {
	archiveShowCmd.Flags().Bool("yaml", false, "export the archived analysis as YAML")

	archiveCmd.AddCommand(archiveSaveCmd)
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveShowCmd)
	rootCmd.AddCommand(archiveCmd)
}

func openArchive() (*archive.Store, error) {
	return archive.Open(types.ArchiveConfig{Dir: viper.GetString("archive_dir")})
}

func runArchiveSave(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	raw, err := client.AnalysisDetail(ctx, args[0])
	if err != nil {
		return err
	}
	v := view.Normalize(raw)

	st := store.New(client, storeConfig(), newLogger())
	tiles, err := st.LoadTiles(ctx, v.AnalysisID)
	if err != nil {
		return err
	}

	arch, err := openArchive()
	if err != nil {
		return err
	}
	defer arch.Close()

	if err := arch.Save(ctx, v, tiles); err != nil {
		return err
	}
	fmt.Printf("Archived analysis %s with %d tile(s)\n", v.AnalysisID, len(tiles))
	return nil
}

func runArchiveList(cmd *cobra.Command, args []string) error {
	arch, err := openArchive()
	if err != nil {
		return err
	}
	defer arch.Close()

	entries, err := arch.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("Archive is empty.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-38s  %-5s  %-5s  %-20s  %s\n",
		"Analysis", "Kind", "Tiles", "Archived", "Content")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
	for _, e := range entries {
		fmt.Fprintf(os.Stdout, "%-38s  %-5s  %5d  %-20s  %s\n",
			e.AnalysisID, e.OriginalKind, e.TileCount,
			truncate(e.ArchivedAt, 20), truncate(e.OriginalContent, 36))
	}
	return nil
}

func runArchiveShow(cmd *cobra.Command, args []string) error {
	arch, err := openArchive()
	if err != nil {
		return err
	}
	defer arch.Close()

	asYAML, _ := cmd.Flags().GetBool("yaml")
	if asYAML {
		return arch.Export(cmd.Context(), args[0], os.Stdout)
	}

	v, tiles, err := arch.Show(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	renderView(os.Stdout, v)
	fmt.Println()
	renderTiles(os.Stdout, tiles)
	return nil
}
