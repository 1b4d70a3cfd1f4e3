// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for outgoing backend calls.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with every request
	// (e.g. "mosaic/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ClientConfig holds settings for the backend API client.
type ClientConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the backend root, e.g. "http://localhost:8000".
	BaseURL string `json:"base_url" yaml:"base_url"`

	// RequestsPerSecond caps the outgoing request rate. Zero disables
	// client-side rate limiting.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// Burst is the rate limiter burst size (default 5).
	Burst int `json:"burst" yaml:"burst"`

	// MaxRetries is the maximum number of retries for rate-limited
	// (HTTP 429) requests (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// PollConfig holds settings for job polling.
type PollConfig struct {
	// Interval is the delay between consecutive status queries
	// (default 2s).
	Interval time.Duration `json:"interval" yaml:"interval"`
}

// StoreConfig holds settings for the client-side record store.
type StoreConfig struct {
	// PageSize is the history page size requested on refresh (default 20).
	PageSize int `json:"page_size" yaml:"page_size"`

	// RefreshInterval is the background refresh period. Zero disables
	// background refresh.
	RefreshInterval time.Duration `json:"refresh_interval" yaml:"refresh_interval"`
}

// ArchiveConfig holds settings for the local analysis archive.
type ArchiveConfig struct {
	// Dir is the directory holding the archive database
	// (default "~/.local/share/mosaic").
	Dir string `json:"dir" yaml:"dir"`
}
