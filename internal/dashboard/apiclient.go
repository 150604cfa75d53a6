package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// apiError is the body the server sends with every non-2xx status.
type apiError struct {
	Error string `json:"error"`
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

type MergeResult struct {
	NewSessionID        uint `json:"new_session_id"`
	MergedSessions      int  `json:"merged_sessions_count"`
	ConsolidatedEntries int  `json:"consolidated_barcodes"`
}

type DeleteResult struct {
	Sessions int64 `json:"deleted_sessions"`
	Entries  int64 `json:"deleted_barcodes"`
}

// APIClient talks to the capture server's JSON API.
type APIClient struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewAPIClient builds a client for baseURL. token, when set, is sent as a
// bearer token on every request.
func NewAPIClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *APIClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if token != "" {
		client.SetAuthToken(token)
	}
	return &APIClient{http: client, logger: logger}
}

func (c *APIClient) ListSessions(ctx context.Context, limit int) ([]Session, error) {
	var out struct {
		Sessions []Session `json:"sessions"`
	}
	req := c.http.R().SetContext(ctx).SetResult(&out).SetError(&apiError{})
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}
	resp, err := req.Get("/api/sessions")
	if err := c.check(resp, err, "list sessions"); err != nil {
		return nil, err
	}
	return out.Sessions, nil
}

func (c *APIClient) GetSession(ctx context.Context, id uint) (SessionDetail, error) {
	var out SessionDetail
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiError{}).
		SetPathParam("id", strconv.FormatUint(uint64(id), 10)).
		Get("/api/sessions/{id}")
	if err := c.check(resp, err, "get session"); err != nil {
		return SessionDetail{}, err
	}
	return out, nil
}

func (c *APIClient) Merge(ctx context.Context, ids []uint) (MergeResult, error) {
	var out MergeResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"session_ids": ids}).
		SetResult(&out).
		SetError(&apiError{}).
		Post("/api/sessions/merge")
	if err := c.check(resp, err, "merge sessions"); err != nil {
		return MergeResult{}, err
	}
	return out, nil
}

func (c *APIClient) BulkDelete(ctx context.Context, ids []uint) (DeleteResult, error) {
	var out DeleteResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"session_ids": ids}).
		SetResult(&out).
		SetError(&apiError{}).
		Post("/api/sessions/bulk-delete")
	if err := c.check(resp, err, "bulk delete"); err != nil {
		return DeleteResult{}, err
	}
	return out, nil
}

func (c *APIClient) Reset(ctx context.Context) (DeleteResult, error) {
	var out DeleteResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiError{}).
		Delete("/api/sessions")
	if err := c.check(resp, err, "reset"); err != nil {
		return DeleteResult{}, err
	}
	return out, nil
}

type EntryStatus struct {
	ID        uint   `json:"id"`
	Processed bool   `json:"processed"`
	Notes     string `json:"notes"`
}

func (c *APIClient) UpdateStatus(ctx context.Context, entryID uint, processed bool, notes string) (EntryStatus, error) {
	var out EntryStatus
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatUint(uint64(entryID), 10)).
		SetBody(map[string]any{"processed": processed, "notes": notes}).
		SetResult(&out).
		SetError(&apiError{}).
		Put("/api/entries/{id}/status")
	if err := c.check(resp, err, "update status"); err != nil {
		return EntryStatus{}, err
	}
	return out, nil
}

func (c *APIClient) check(resp *resty.Response, err error, op string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.IsError() {
		msg := resp.Status()
		if e, ok := resp.Error().(*apiError); ok && e.Error != "" {
			msg = e.Error
		}
		c.logger.Warn("capture API error",
			zap.String("operation", op),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("error", msg),
		)
		return fmt.Errorf("%s: %w", op, &StatusError{Status: resp.StatusCode(), Message: msg})
	}
	return nil
}
