// Package logclient talks to the remote logging microservice that stores
// audit records. All calls are bounded by the client timeout; callers decide
// whether a failure matters.
package logclient

import (
	"bytes"
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

	"github.com/GoNotify/notigate/internal/model"
)

var (
	ErrUnavailable = errors.New("logging service unavailable")
	ErrNotFound    = errors.New("log entry not found")
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: timeout,
		},
	}
}

// Filter narrows List and Count queries. Zero values are omitted.
type Filter struct {
	Skip        int
	Limit       int
	ServiceName string
	Method      string
	StatusCode  int
	ClientIP    string
	StartDate   time.Time
	EndDate     time.Time
}

func (f Filter) query(paged bool) url.Values {
	q := url.Values{}
	if paged {
		q.Set("skip", strconv.Itoa(f.Skip))
		limit := f.Limit
		if limit <= 0 {
			limit = 100
		}
		q.Set("limit", strconv.Itoa(limit))
	}
	if f.ServiceName != "" {
		q.Set("service_name", f.ServiceName)
	}
	if f.Method != "" {
		q.Set("method", f.Method)
	}
	if f.StatusCode != 0 {
		q.Set("status_code", strconv.Itoa(f.StatusCode))
	}
	if f.ClientIP != "" {
		q.Set("client_ip", f.ClientIP)
	}
	if !f.StartDate.IsZero() {
		q.Set("start_date", f.StartDate.Format(time.RFC3339))
	}
	if !f.EndDate.IsZero() {
		q.Set("end_date", f.EndDate.Format(time.RFC3339))
	}
	return q
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", ErrNotFound, snippet)
		}
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, snippet)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// CreateEntry stores one audit record and returns it with id and timestamp.
func (c *Client) CreateEntry(ctx context.Context, rec *model.AuditRecord) (*model.StoredAuditRecord, error) {
	var out model.StoredAuditRecord
	if err := c.do(ctx, http.MethodPost, "/api/v1/logs/", nil, rec, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateBulk stores several records in one round trip.
func (c *Client) CreateBulk(ctx context.Context, recs []*model.AuditRecord) ([]*model.StoredAuditRecord, error) {
	var out []*model.StoredAuditRecord
	if err := c.do(ctx, http.MethodPost, "/api/v1/logs/bulk", nil, recs, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) List(ctx context.Context, f Filter) ([]*model.StoredAuditRecord, error) {
	var out []*model.StoredAuditRecord
	if err := c.do(ctx, http.MethodGet, "/api/v1/logs/", f.query(true), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*model.StoredAuditRecord, error) {
	var out model.StoredAuditRecord
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/logs/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Count(ctx context.Context, f Filter) (int64, error) {
	var out struct {
		TotalCount int64 `json:"total_count"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/logs/count/total", f.query(false), nil, &out); err != nil {
		return 0, err
	}
	return out.TotalCount, nil
}

// ServiceStats returns per-service aggregates as reported by the sink.
func (c *Client) ServiceStats(ctx context.Context) (map[string]any, error) {
	out := map[string]any{}
	if err := c.do(ctx, http.MethodGet, "/api/v1/logs/stats/services", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Cleanup deletes records older than daysOld days (default 30).
func (c *Client) Cleanup(ctx context.Context, daysOld int) (map[string]any, error) {
	if daysOld <= 0 {
		daysOld = 30
	}
	q := url.Values{}
	q.Set("days_old", strconv.Itoa(daysOld))

	out := map[string]any{}
	if err := c.do(ctx, http.MethodDelete, "/api/v1/logs/cleanup", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
