// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// retryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses. Tests override this to avoid real sleeps.
var retryBaseDelay = 500 * time.Millisecond

const (
	defaultMaxRetries = 3

	requestIDHeader = "X-Request-ID"
)

// TokenSource returns the current bearer credential, or "" when the
// session is anonymous. The client consumes it per call; credential
// lifecycle lives with the caller.
type TokenSource func() string

// transport decorates every outgoing request with the shared request
// policy: rate limiting, a client-generated request id, the bearer
// credential, and retry with exponential backoff on HTTP 429.
type transport struct {
	client     *http.Client
	limiter    *rate.Limiter
	token      TokenSource
	userAgent  string
	maxRetries int
}

// do executes req and retries on 429. The delay doubles each attempt
// starting at retryBaseDelay. If the context is cancelled during a
// backoff wait, ctx.Err() is returned. After exhausting retries the last
// 429 response is returned so the caller can translate it.
func (t *transport) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set(requestIDHeader, uuid.NewString())
	if t.token != nil {
		if tok := t.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	maxRetries := t.maxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := t.client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests || attempt >= maxRetries {
			return resp, nil
		}

		// Drain and close the body before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * retryBaseDelay
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
