// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api is the typed HTTP boundary to the analysis backend. It owns
// request policy (auth header, request ids, rate limiting, 429 retry) and
// error translation: every call returns typed data or an *Error with a
// human-readable message, never a raw transport failure.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/mosaic/pkg/types"
)

// Client talks to one analysis backend instance.
type Client struct {
	base      *url.URL
	transport *transport
}

// NewClient builds a Client from cfg. token may be nil for anonymous
// sessions.
func NewClient(cfg types.ClientConfig, token TokenSource) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL %q: %w", cfg.BaseURL, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "mosaic/0.1"
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 5
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		base: base,
		transport: &transport{
			client:     &http.Client{Timeout: timeout},
			limiter:    limiter,
			token:      token,
			userAgent:  userAgent,
			maxRetries: cfg.MaxRetries,
		},
	}, nil
}

// --- submission ---

type uploadResponse struct {
	UploadID string `json:"upload_id"`
	Type     string `json:"type"`
	Status   string `json:"status"`
}

// SubmitText registers free text for analysis and returns its upload id.
func (c *Client) SubmitText(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", validationErr("submission text is empty")
	}
	var resp uploadResponse
	err := c.postJSON(ctx, "/api/upload/text",
		map[string]string{"type": "text", "content": text}, &resp)
	return resp.UploadID, err
}

// SubmitURL registers a URL for analysis and returns its upload id.
func (c *Client) SubmitURL(ctx context.Context, target string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(target))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", validationErr("submission URL is not a valid absolute URL")
	}
	var resp uploadResponse
	err = c.postJSON(ctx, "/api/upload/url",
		map[string]string{"type": "url", "content": u.String()}, &resp)
	return resp.UploadID, err
}

// SubmitImage uploads the image at path as multipart form data and
// returns its upload id.
func (c *Client) SubmitImage(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", validationErr("cannot read image file: " + err.Error())
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", transportErr(err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", validationErr("cannot read image file: " + err.Error())
	}
	if err := mw.Close(); err != nil {
		return "", transportErr(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint("/api/upload/image"), bytes.NewReader(body.Bytes()))
	if err != nil {
		return "", transportErr(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp uploadResponse
	if err := c.roundTrip(req, &resp); err != nil {
		return "", err
	}
	return resp.UploadID, nil
}

// --- analysis jobs ---

type analyzeResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// Analyze starts an asynchronous analysis of an uploaded item and
// returns the job id to poll.
func (c *Client) Analyze(ctx context.Context, uploadID string) (string, error) {
	if uploadID == "" {
		return "", validationErr("upload id is empty")
	}
	var resp analyzeResponse
	err := c.postJSON(ctx, "/api/analysis/analyze",
		map[string]string{"upload_id": uploadID}, &resp)
	return resp.TaskID, err
}

// TaskStatus fetches the current status of one analysis job.
func (c *Client) TaskStatus(ctx context.Context, jobID string) (types.RawStatus, error) {
	var status types.RawStatus
	err := c.getJSON(ctx, "/api/analysis/task/"+url.PathEscape(jobID), nil, &status)
	return status, err
}

// AnalysisDetail fetches the stored analysis record.
func (c *Client) AnalysisDetail(ctx context.Context, analysisID string) (types.RawAnalysis, error) {
	var raw types.RawAnalysis
	err := c.getJSON(ctx, "/api/analysis/"+url.PathEscape(analysisID), nil, &raw)
	return raw, err
}

// --- history records ---

type historyResponse struct {
	Items []types.Record `json:"items"`
	Total int            `json:"total"`
}

// Records fetches one page of the user's history, newest first, and the
// total record count.
func (c *Client) Records(ctx context.Context, page, pageSize int) ([]types.Record, int, error) {
	q := url.Values{
		"page":      {strconv.Itoa(page)},
		"page_size": {strconv.Itoa(pageSize)},
	}
	var resp historyResponse
	if err := c.getJSON(ctx, "/api/history/", q, &resp); err != nil {
		return nil, 0, err
	}
	return resp.Items, resp.Total, nil
}

// DeleteRecord removes one history record on the server.
func (c *Client) DeleteRecord(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.endpoint("/api/history/"+url.PathEscape(id)), nil)
	if err != nil {
		return transportErr(err)
	}
	return c.roundTrip(req, nil)
}

// --- recommendations ---

type recommendationsResponse struct {
	AnalysisID      string       `json:"analysis_id"`
	Recommendations []types.Tile `json:"recommendations"`
	Total           int          `json:"total"`
}

// Recommendations fetches the tiles generated for one analysis.
func (c *Client) Recommendations(ctx context.Context, analysisID string) ([]types.Tile, error) {
	var resp recommendationsResponse
	err := c.getJSON(ctx, "/api/recommendations/analysis/"+url.PathEscape(analysisID), nil, &resp)
	return resp.Recommendations, err
}

type feedbackResponse struct {
	Success                bool         `json:"success"`
	Message                string       `json:"message"`
	UpdatedRecommendations []types.Tile `json:"updated_recommendations,omitempty"`
}

// Feedback records a keep/discard verdict for one tile. When the backend
// replies with a rescored tile list, that list is returned and the
// server copy is authoritative; otherwise the returned slice is nil and
// only the single tile's action changed.
func (c *Client) Feedback(ctx context.Context, tileID string, action types.TileAction) ([]types.Tile, error) {
	if !action.Valid() {
		return nil, validationErr(fmt.Sprintf("feedback action %q is not keep or discard", action))
	}
	var resp feedbackResponse
	err := c.postJSON(ctx, "/api/recommendations/feedback",
		map[string]string{"recommendation_id": tileID, "action": string(action)}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.UpdatedRecommendations, nil
}

type articleResponse struct {
	ID          string `json:"id"`
	ArticleHTML string `json:"article_html"`
}

// Article fetches the generated long-form article for a tile. With
// regenerate set the backend discards its stored copy and writes a new
// one.
func (c *Client) Article(ctx context.Context, tileID string, regenerate bool) (string, error) {
	q := url.Values{"regenerate": {strconv.FormatBool(regenerate)}}
	var resp articleResponse
	err := c.getJSON(ctx, "/api/recommendations/"+url.PathEscape(tileID)+"/article", q, &resp)
	return resp.ArticleHTML, err
}

// --- plumbing ---

func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	return u.String()
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	target := c.endpoint(path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return transportErr(err)
	}
	return c.roundTrip(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return transportErr(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint(path), bytes.NewReader(body))
	if err != nil {
		return transportErr(err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.roundTrip(req, out)
}

// roundTrip executes the request and translates the outcome into the
// error taxonomy. out may be nil when the body is irrelevant.
func (c *Client) roundTrip(req *http.Request, out any) error {
	resp, err := c.transport.do(req.Context(), req)
	if err != nil {
		return transportErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return remoteErr(resp.StatusCode, readDetail(resp.Body))
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return decodeErr(err)
	}
	return nil
}

// readDetail extracts the backend's error message from a failure body.
// The backend wraps messages as {"detail": "..."}; anything else falls
// back to the raw text, truncated.
func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var wrapped struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(data, &wrapped) == nil && wrapped.Detail != "" {
		return wrapped.Detail
	}
	detail := strings.TrimSpace(string(data))
	if len(detail) > 200 {
		detail = detail[:200]
	}
	return detail
}
