package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bryanwahyu/tenant-scan/internal/domain/clinics"
	"github.com/bryanwahyu/tenant-scan/internal/domain/report"
)

const (
	DefaultBaseURL  = "http://localhost:5001"
	EmptyResponse   = "The AI service returned an empty response."
	analyzeFallback = "The AI service could not analyze the image"
)

// Error is a non-2xx gateway answer.
type Error struct {
	Status  int
	Message string
	Details string
}

// Error renders "message: details" the way the web client shows it.
func (e *Error) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Client calls the analysis gateway.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string, hc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: hc}
}

// Welcome calls GET /api.
func (c *Client) Welcome(ctx context.Context) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodGet, "/api", nil, &out, "Request failed"); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Analyze posts a submission. A success without a report yields a fallback
// report built from the summary.
func (c *Client) Analyze(ctx context.Context, sub report.Submission) (report.Analysis, error) {
	var out struct {
		Summary string         `json:"summary"`
		Report  *report.Report `json:"report"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/analyze", sub, &out, analyzeFallback); err != nil {
		return report.Analysis{}, err
	}

	summary := out.Summary
	if summary == "" {
		summary = EmptyResponse
	}
	var rep report.Report
	if out.Report != nil {
		rep = *out.Report
		report.FillDefaults(&rep)
	} else {
		rep = report.Empty()
		rep.Summary = summary
	}
	return report.Analysis{Summary: summary, Report: rep}, nil
}

// Clinics posts coordinates to /clinics.
func (c *Client) Clinics(ctx context.Context, lat, lng float64) ([]clinics.Clinic, error) {
	var out struct {
		OK      bool             `json:"ok"`
		Clinics []clinics.Clinic `json:"clinics"`
	}
	in := map[string]float64{"lat": lat, "lng": lng}
	if err := c.do(ctx, http.MethodPost, "/clinics", in, &out, "Places lookup failed"); err != nil {
		return nil, err
	}
	if out.Clinics == nil {
		out.Clinics = []clinics.Clinic{}
	}
	return out.Clinics, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, fallback string) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, raw, fallback)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(status int, raw []byte, fallback string) *Error {
	var body struct {
		Error   string          `json:"error"`
		Details json.RawMessage `json:"details"`
	}
	e := &Error{Status: status, Message: fallback}
	if json.Unmarshal(raw, &body) != nil {
		return e
	}
	if body.Error != "" {
		e.Message = body.Error
	}
	e.Details = detailsText(body.Details)
	return e
}

// detailsText accepts details as a string or any JSON value.
func detailsText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}
