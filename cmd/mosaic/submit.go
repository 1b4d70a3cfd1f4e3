// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit content for analysis and follow the job to completion",
	Long: `Submit sends an image, a URL, or free text to the backend, starts the
analysis job, and polls it until it finishes, printing stage progress
and any sub-results published along the way. On success the analysis
view and its recommendations are rendered.`,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().String("text", "", "free text to analyze")
	submitCmd.Flags().String("url", "", "URL to analyze")
	submitCmd.Flags().String("image", "", "path to an image file to analyze")
	submitCmd.Flags().Bool("archive", false, "archive the completed analysis locally")

	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	text, _ := cmd.Flags().GetString("text")
	target, _ := cmd.Flags().GetString("url")
	image, _ := cmd.Flags().GetString("image")

	set := 0
	for _, v := range []string{text, target, image} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("provide exactly one of --text, --url, or --image")
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var uploadID string
	switch {
	case text != "":
		uploadID, err = client.SubmitText(ctx, text)
	case target != "":
		uploadID, err = client.SubmitURL(ctx, target)
	default:
		uploadID, err = client.SubmitImage(ctx, image)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Uploaded as %s\n", uploadID)

	jobID, err := client.Analyze(ctx, uploadID)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Analysis job %s started\n", jobID)

	doArchive, _ := cmd.Flags().GetBool("archive")
	return followJob(ctx, client, jobID, doArchive)
}
