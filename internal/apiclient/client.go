// Package apiclient is the typed client for the ShipCheck analysis backend.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/logging"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/model"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/webclient"
)

// DefaultBaseURL matches the backend's local development address.
const DefaultBaseURL = "http://localhost:8000"

// Health is the body of GET /health.
type Health struct {
	Status string `json:"status"`
}

// Client talks to the backend over a webclient.WebClient.
type Client struct {
	base   string
	wc     webclient.WebClient
	logger logging.Logger
}

// New returns a client for baseURL. An empty baseURL means DefaultBaseURL.
func New(baseURL string, wc webclient.WebClient, logger logging.Logger) (*Client, error) {
	if wc == nil {
		return nil, fmt.Errorf("apiclient: nil webclient")
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("apiclient: invalid base url %q", baseURL)
	}
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		wc:     wc,
		logger: logger.With(logging.Field{Key: "component", Value: "apiclient"}),
	}, nil
}

// BaseURL returns the normalised backend base URL.
func (c *Client) BaseURL() string { return c.base }

// Analyze creates an analysis job for repoURL and returns its report id.
func (c *Client) Analyze(ctx context.Context, repoURL string) (string, error) {
	body, err := json.Marshal(model.AnalyzeRequest{RepoURL: repoURL})
	if err != nil {
		return "", fmt.Errorf("analyze: encode: %w", err)
	}
	hdrs := http.Header{}
	hdrs.Set("Content-Type", "application/json")

	resp, err := c.wc.Do(ctx, &webclient.Request{
		Method:  http.MethodPost,
		URL:     c.base + "/api/analyze",
		Headers: hdrs,
		Body:    body,
	})
	if err != nil {
		return "", fmt.Errorf("analyze: %w", err)
	}
	if !resp.OK() {
		return "", responseError("analyze", resp)
	}

	var out model.AnalyzeResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return "", fmt.Errorf("analyze: decode: %w", err)
	}
	if out.ReportID == "" {
		return "", fmt.Errorf("analyze: response missing report_id")
	}
	c.logger.Info("analysis submitted",
		logging.Field{Key: "repo_url", Value: repoURL},
		logging.Field{Key: "report_id", Value: out.ReportID})
	return out.ReportID, nil
}

// GetReport fetches one report. A 404 yields an APIError matching
// ErrNotFound with the fixed NotFoundMessage.
func (c *Client) GetReport(ctx context.Context, id string) (*model.Report, error) {
	resp, err := c.wc.Get(ctx, c.base+"/api/reports/"+url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, &APIError{Op: "get report", StatusCode: resp.StatusCode, Message: NotFoundMessage, RequestID: resp.RequestID}
	}
	if !resp.OK() {
		return nil, responseError("get report", resp)
	}

	var r model.Report
	if err := json.Unmarshal(resp.Body, &r); err != nil {
		return nil, fmt.Errorf("get report: decode: %w", err)
	}
	return &r, nil
}

// ListReports returns the most recent reports. limit <= 0 leaves the
// backend default in place.
func (c *Client) ListReports(ctx context.Context, limit int) ([]model.ReportListItem, error) {
	u := c.base + "/api/reports"
	if limit > 0 {
		u += "?limit=" + strconv.Itoa(limit)
	}
	resp, err := c.wc.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	if !resp.OK() {
		return nil, responseError("list reports", resp)
	}

	var items []model.ReportListItem
	if err := json.Unmarshal(resp.Body, &items); err != nil {
		return nil, fmt.Errorf("list reports: decode: %w", err)
	}
	if items == nil {
		items = []model.ReportListItem{}
	}
	return items, nil
}

// Health pings the backend.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	resp, err := c.wc.Get(ctx, c.base+"/health")
	if err != nil {
		return nil, fmt.Errorf("health: %w", err)
	}
	if !resp.OK() {
		return nil, responseError("health", resp)
	}
	var h Health
	if err := json.Unmarshal(resp.Body, &h); err != nil {
		return nil, fmt.Errorf("health: decode: %w", err)
	}
	return &h, nil
}

// responseError builds an APIError, preferring a string detail field.
func responseError(op string, resp *webclient.Response) error {
	msg := resp.Status
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(resp.Body, &body); err == nil && len(body.Detail) > 0 {
		var detail string
		if json.Unmarshal(body.Detail, &detail) == nil {
			msg = detail
		}
	}
	return &APIError{Op: op, StatusCode: resp.StatusCode, Message: msg, RequestID: resp.RequestID}
}
