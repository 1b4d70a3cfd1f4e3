// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/mosaic/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Review and prune past submissions",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past submissions",
	Long: `List fetches the most recent history records. With --watch the listing
is refreshed on the configured interval until interrupted; refresh
failures are logged and retried on the next tick.`,
	RunE: runHistoryList,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete [record-id]",
	Short: "Delete one history record",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func init() {
	historyListCmd.Flags().Bool("json", false, "output records as JSON")
	historyListCmd.Flags().Bool("watch", false, "keep refreshing until interrupted")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	st := store.New(client, storeConfig(), newLogger())

	ctx := cmd.Context()
	if err := st.Refresh(ctx); err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		return printJSON(os.Stdout, st.Records())
	}
	renderRecords(os.Stdout, st.Records(), st.Total())

	follow, _ := cmd.Flags().GetBool("watch")
	if !follow {
		return nil
	}

	interval := viper.GetDuration("refresh_interval")
	if interval <= 0 {
		interval = 30 * time.Second
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st.StartBackgroundRefresh(ctx, interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fmt.Println()
			renderRecords(os.Stdout, st.Records(), st.Total())
		}
	}
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	st := store.New(client, storeConfig(), newLogger())

	ctx := cmd.Context()
	if err := st.Refresh(ctx); err != nil {
		return err
	}
	if err := st.Delete(ctx, args[0]); err != nil {
		return fmt.Errorf("delete failed, record kept: %w", err)
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}
