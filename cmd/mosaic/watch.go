// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/mosaic/internal/api"
	"github.com/pdiddy/mosaic/internal/archive"
	"github.com/pdiddy/mosaic/internal/poller"
	"github.com/pdiddy/mosaic/internal/store"
	"github.com/pdiddy/mosaic/internal/view"
	"github.com/pdiddy/mosaic/pkg/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch [job-id]",
	Short: "Follow a running analysis job to completion",
	Long: `Watch polls an existing analysis job until it reaches a terminal state,
printing stage progress as it goes. On success the analysis view and its
recommendations are rendered.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		doArchive, _ := cmd.Flags().GetBool("archive")
		return followJob(cmd.Context(), client, args[0], doArchive)
	},
}

func init() {
	watchCmd.Flags().Bool("archive", false, "archive the completed analysis locally")
	rootCmd.AddCommand(watchCmd)
}

// followJob polls jobID to completion, rendering progress per tick. A
// completed job with a result id leads into the analysis view and its
// recommendations; a completed job without one is still a success, just
// with nothing to navigate to.
func followJob(ctx context.Context, client *api.Client, jobID string, doArchive bool) error {
	done := make(chan poller.Terminal, 1)
	seenKeywords := false

	p := poller.New(client, poller.Config{
		Interval: viper.GetDuration("poll_interval"),
		Logger:   newLogger(),
		OnProgress: func(prog types.JobProgress) {
			renderProgress(os.Stdout, prog, &seenKeywords)
		},
		OnDone: func(t poller.Terminal) {
			done <- t
		},
	})
	if err := p.Start(ctx, jobID); err != nil {
		return err
	}
	defer p.Stop()

	var terminal poller.Terminal
	select {
	case terminal = <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if terminal.Status == types.JobFailed {
		return fmt.Errorf("analysis failed: %s", terminal.Reason)
	}
	if terminal.AnalysisID == "" {
		fmt.Println("Analysis completed; the backend published no result to open.")
		return nil
	}

	return showAnalysis(ctx, client, terminal.AnalysisID, doArchive)
}

// showAnalysis renders the canonical view and recommendations for one
// completed analysis, optionally archiving both.
func showAnalysis(ctx context.Context, client *api.Client, analysisID string, doArchive bool) error {
	raw, err := client.AnalysisDetail(ctx, analysisID)
	if err != nil {
		return err
	}
	v := view.Normalize(raw)

	fmt.Println()
	renderView(os.Stdout, v)

	st := store.New(client, storeConfig(), newLogger())
	tiles, err := st.LoadTiles(ctx, analysisID)
	if err != nil {
		return err
	}
	fmt.Println()
	renderTiles(os.Stdout, tiles)

	if doArchive {
		arch, err := archive.Open(types.ArchiveConfig{Dir: viper.GetString("archive_dir")})
		if err != nil {
			return err
		}
		defer arch.Close()
		if err := arch.Save(ctx, v, tiles); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Archived analysis %s\n", analysisID)
	}
	return nil
}
