// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the mosaic CLI, an interactive
// client for the content-analysis backend: submit an image, URL, or
// text, follow the analysis job to completion, then browse and curate
// the recommendations it produced.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/mosaic/internal/api"
	"github.com/pdiddy/mosaic/internal/secrets"
	"github.com/pdiddy/mosaic/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from the secrets directory at
// startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the mosaic CLI.
var rootCmd = &cobra.Command{
	Use:   "mosaic",
	Short: "Interactive client for the mosaic analysis backend",
	Long: `mosaic submits content (an image, a URL, or free text) to the analysis
backend, tracks the multi-stage analysis job as it runs, and renders the
resulting recommendations.

Use submit to analyze new content, history to review and prune past
submissions, recs to curate recommendations and read generated articles,
and archive to keep completed analyses locally.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir := viper.GetString("secrets_dir")
		s, err := secrets.Load(dir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./mosaic.yaml or ~/.config/mosaic/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("mosaic")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "mosaic"))
		}
	}

	viper.SetDefault("base_url", "http://localhost:8000")
	viper.SetDefault("timeout", 30*time.Second)
	viper.SetDefault("user_agent", "mosaic/"+version)
	viper.SetDefault("requests_per_second", 10.0)
	viper.SetDefault("burst", 5)
	viper.SetDefault("max_retries", 3)
	viper.SetDefault("poll_interval", 2*time.Second)
	viper.SetDefault("page_size", 20)
	viper.SetDefault("refresh_interval", 30*time.Second)
	viper.SetDefault("secrets_dir", ".secrets/")
	viper.SetDefault("log_level", "warning")
	if home, err := os.UserHomeDir(); err == nil {
		viper.SetDefault("archive_dir", filepath.Join(home, ".local", "share", "mosaic"))
	} else {
		viper.SetDefault("archive_dir", ".mosaic-archive")
	}

	viper.SetEnvPrefix("MOSAIC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// clientConfig assembles the API client settings from config.
func clientConfig() types.ClientConfig {
	return types.ClientConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("timeout"),
			UserAgent: viper.GetString("user_agent"),
		},
		BaseURL:           viper.GetString("base_url"),
		RequestsPerSecond: viper.GetFloat64("requests_per_second"),
		Burst:             viper.GetInt("burst"),
		MaxRetries:        viper.GetInt("max_retries"),
	}
}

// newClient builds the backend client with the loaded bearer credential.
func newClient() (*api.Client, error) {
	return api.NewClient(clientConfig(), func() string {
		return loadedSecrets[secrets.TokenKey]
	})
}

// newLogger builds the structured logger used by background activity.
func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(viper.GetString("log_level"))
	if err != nil {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)
	return logger
}

func storeConfig() types.StoreConfig {
	return types.StoreConfig{
		PageSize:        viper.GetInt("page_size"),
		RefreshInterval: viper.GetDuration("refresh_interval"),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
