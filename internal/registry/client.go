// Package registry wraps the third-party patient-registry HTTP API. The
// remote service is opaque: list responses are reshaped into a local page
// type, and upstream validation errors are passed through untouched.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/finance-tracker/internal/config"
)

// ErrUpstream signals a registry failure that should surface as a generic
// message, never as a fault.
var ErrUpstream = errors.New("patient registry unavailable")

// ValidationError carries an upstream 422 payload through to the caller.
type ValidationError struct {
	Body json.RawMessage
}

func (e *ValidationError) Error() string {
	return "patient registry rejected the payload"
}

// ListParams are the supported passthrough query parameters.
type ListParams struct {
	Page          string
	PerPage       string
	Search        string
	Gender        string
	Ethnic        string
	Education     string
	MarriedStatus string
	Job           string
	BloodType     string
}

func (p ListParams) values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("page", p.Page)
	set("per_page", p.PerPage)
	set("search", p.Search)
	set("gender", p.Gender)
	set("ethnic", p.Ethnic)
	set("education", p.Education)
	set("married_status", p.MarriedStatus)
	set("job", p.Job)
	set("blood_type", p.BloodType)
	return v
}

// Pagination mirrors the remote paging envelope.
type Pagination struct {
	CurrentPage int             `json:"current_page"`
	LastPage    int             `json:"last_page"`
	PerPage     int             `json:"per_page"`
	Total       int             `json:"total"`
	From        int             `json:"from"`
	To          int             `json:"to"`
	Links       json.RawMessage `json:"links,omitempty"`
	NextPageURL *string         `json:"next_page_url"`
	PrevPageURL *string         `json:"prev_page_url"`
}

// PatientPage is one page of patient records.
type PatientPage struct {
	Patients   []json.RawMessage `json:"patients"`
	Pagination *Pagination       `json:"pagination"`
}

type listEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		Pagination
		Data []json.RawMessage `json:"data"`
	} `json:"data"`
}

// Client calls the patient-registry API.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	logger   *zap.Logger
}

// NewClient builds a client from config.
func NewClient(cfg config.RegistryConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		http:     &http.Client{Timeout: cfg.Timeout()},
		logger:   logger,
	}
}

// ListPatients fetches a page of patient records.
func (c *Client) ListPatients(ctx context.Context, params ListParams) (*PatientPage, error) {
	endpoint := c.baseURL + "/patient"
	if query := params.values().Encode(); query != "" {
		endpoint += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("patient registry request failed", zap.Error(err))
		return nil, ErrUpstream
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("patient registry read failed", zap.Error(err))
		return nil, ErrUpstream
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("patient registry returned error status", zap.Int("status", resp.StatusCode))
		return nil, ErrUpstream
	}

	var envelope listEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		c.logger.Error("patient registry returned malformed body", zap.Error(err))
		return nil, ErrUpstream
	}
	if !envelope.Success {
		return &PatientPage{Patients: []json.RawMessage{}}, nil
	}

	pagination := envelope.Data.Pagination
	return &PatientPage{
		Patients:   envelope.Data.Data,
		Pagination: &pagination,
	}, nil
}

// CreatePatient proxies a create call. Upstream 422 responses come back as
// *ValidationError so the caller's form sees the remote field errors.
func (c *Client) CreatePatient(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/patient", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("patient registry create failed", zap.Error(err))
		return nil, ErrUpstream
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("patient registry read failed", zap.Error(err))
		return nil, ErrUpstream
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		return body, nil
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, &ValidationError{Body: body}
	default:
		c.logger.Error("patient registry create returned error status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(body), 512)))
		return nil, ErrUpstream
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-username", c.username)
	req.Header.Set("X-password", c.password)
	req.Header.Set("Accept", "application/json")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...", s[:n])
}
