// Package clinicaltrials provides a TrialsAPI adapter for the
// ClinicalTrials.gov REST API (v2).
package clinicaltrials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/trials-mcp/internal/core/domain"
	"github.com/custodia-labs/trials-mcp/internal/core/ports/driven"
	"github.com/custodia-labs/trials-mcp/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.TrialsAPI = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://clinicaltrials.gov/api/v2"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 1
	DefaultBackoff    = 500 * time.Millisecond
	userAgent         = "trials-mcp/1.0"

	// maxErrorBody caps how much of an error response is quoted in a FetchError.
	maxErrorBody = 512
)

// Config holds configuration for the registry client.
type Config struct {
	// BaseURL is the API root (default: https://clinicaltrials.gov/api/v2).
	BaseURL string

	// Timeout bounds each HTTP attempt (default: 30s).
	Timeout time.Duration

	// MaxRetries is the number of extra attempts after a retryable failure
	// (default: 1). Negative disables retries.
	MaxRetries int

	// Backoff is the wait before the first retry; it doubles per attempt
	// (default: 500ms).
	Backoff time.Duration

	// HTTPClient overrides the transport, mainly for tests. Timeout is
	// ignored when it is set.
	HTTPClient *http.Client
}

// Client talks to the ClinicalTrials.gov studies endpoints.
type Client struct {
	client     *http.Client
	baseURL    string
	maxRetries int
	backoff    time.Duration
}

// NewClient creates a registry client, filling in defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Backoff == 0 {
		cfg.Backoff = DefaultBackoff
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		client:     httpClient,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.Backoff,
	}
}

// Search returns one page of studies matching the query.
func (c *Client) Search(ctx context.Context, query domain.TrialQuery) (domain.TrialPage, error) {
	if err := query.Validate(); err != nil {
		return domain.TrialPage{}, err
	}

	params := searchParams(query)
	params.Set("pageSize", strconv.Itoa(query.PageSize))
	if query.PageToken != "" {
		params.Set("pageToken", query.PageToken)
	}

	var resp studiesResponse
	if err := c.getJSON(ctx, "/studies", params, &resp); err != nil {
		return domain.TrialPage{}, err
	}

	page := domain.TrialPage{
		Trials:        make([]domain.TrialRecord, 0, len(resp.Studies)),
		TotalCount:    resp.TotalCount,
		NextPageToken: resp.NextPageToken,
	}
	for i := range resp.Studies {
		rec := resp.Studies[i].record()
		if rec.NCTID == "" {
			logger.Warn("clinicaltrials: skipping study without NCT identifier")
			continue
		}
		page.Trials = append(page.Trials, rec)
	}

	logger.Debug("clinicaltrials: %q returned %d of %d studies", query.Condition, len(page.Trials), page.TotalCount)
	return page, nil
}

// Get returns a single study by NCT identifier.
func (c *Client) Get(ctx context.Context, nctID string) (domain.TrialRecord, error) {
	id, err := domain.ParseNCTID(nctID)
	if err != nil {
		return domain.TrialRecord{}, err
	}

	var st study
	if err := c.getJSON(ctx, "/studies/"+url.PathEscape(id), url.Values{"format": {"json"}}, &st); err != nil {
		return domain.TrialRecord{}, err
	}

	rec := st.record()
	if rec.NCTID == "" {
		return domain.TrialRecord{}, &domain.FetchError{
			StatusCode: http.StatusOK,
			Err:        errors.New("response has no NCT identifier"),
		}
	}
	return rec, nil
}

// Count returns the number of studies matching the query.
func (c *Client) Count(ctx context.Context, query domain.TrialQuery) (int, error) {
	if err := query.Validate(); err != nil {
		return 0, err
	}

	params := searchParams(query)
	params.Set("pageSize", "1")

	var resp studiesResponse
	if err := c.getJSON(ctx, "/studies", params, &resp); err != nil {
		return 0, err
	}
	return resp.TotalCount, nil
}

func searchParams(query domain.TrialQuery) url.Values {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("countTotal", "true")
	params.Set("query.cond", query.Condition)
	if query.Location != "" {
		params.Set("query.locn", query.Location)
	}
	if query.Status != "" {
		params.Set("filter.overallStatus", string(query.Status))
	}
	if query.Phase != "" {
		params.Set("filter.advanced", "AREA[Phase]"+string(query.Phase))
	}
	return params
}

// getJSON performs a GET with bounded retries and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff << (attempt - 1)
			logger.Debug("clinicaltrials: retry %d after %s: %v", attempt, wait, lastErr)
			select {
			case <-ctx.Done():
				return &domain.FetchError{Err: ctx.Err()}
			case <-time.After(wait):
			}
		}

		retry, err := c.do(ctx, endpoint, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}
	return lastErr
}

// do runs one attempt. The bool reports whether the failure is worth retrying.
func (c *Client) do(ctx context.Context, endpoint string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return false, &domain.FetchError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return true, &domain.FetchError{Err: fmt.Errorf("send request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return retry, &domain.FetchError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", strings.TrimSpace(string(body))),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, &domain.FetchError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return false, nil
}
