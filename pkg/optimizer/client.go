// Package optimizer talks to the schedule optimizer: Client calls the
// termwise service boundary, Upstream calls the edge functions behind it.
package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"tableflip.dev/termwise/pkg/course"
)

const (
	// TermHeader carries the term discriminator on every request.
	TermHeader = "X-Term"

	ValidatePath = "/api/validate-courses"
	GeneratePath = "/api/generate-schedule"

	userAgent = "termwise/1.0"
)

// APIError is a non-2xx response. Message is the service's "error" field.
type APIError struct {
	Status  int
	Message string
	Body    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("optimizer returned status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("optimizer returned status %d", e.Status)
}

// ValidateRequest is the body of a validation call.
type ValidateRequest struct {
	Courses []course.CoursePreference `json:"courses"`
}

// ValidateResponse lists the course codes the catalogue does not know.
type ValidateResponse struct {
	InvalidCourses []string `json:"invalidCourses"`
	Message        string   `json:"message,omitempty"`
}

// GenerateResponse is a generated schedule with optional alternatives.
type GenerateResponse struct {
	Courses      []course.ScheduledCourse
	Alternatives [][]course.ScheduledCourse
	Demo         bool
	Message      string
}

// UnmarshalJSON accepts both the flat and the nested required-session
// layouts.
func (g *GenerateResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Courses      json.RawMessage `json:"courses"`
		Alternatives json.RawMessage `json:"alternativeSchedules"`
		Demo         bool            `json:"demo"`
		Message      string          `json:"message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	courses, err := course.DecodeSchedule(raw.Courses)
	if err != nil {
		return fmt.Errorf("courses: %w", err)
	}
	alts, err := course.DecodeAlternatives(raw.Alternatives)
	if err != nil {
		return fmt.Errorf("alternativeSchedules: %w", err)
	}
	*g = GenerateResponse{Courses: courses, Alternatives: alts, Demo: raw.Demo, Message: raw.Message}
	return nil
}

// MarshalJSON writes the flat layout.
func (g GenerateResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Courses      []course.ScheduledCourse   `json:"courses"`
		Alternatives [][]course.ScheduledCourse `json:"alternativeSchedules,omitempty"`
		Demo         bool                       `json:"demo,omitempty"`
		Message      string                     `json:"message,omitempty"`
	}{g.Courses, g.Alternatives, g.Demo, g.Message})
}

// Client calls the termwise service boundary.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewClient creates a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     logger,
	}
}

// Validate checks the course codes for term.
func (c *Client) Validate(ctx context.Context, term course.Term, courses []course.CoursePreference) (*ValidateResponse, error) {
	var out ValidateResponse
	if err := c.post(ctx, ValidatePath, term, ValidateRequest{Courses: courses}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Generate asks for a schedule satisfying prefs.
func (c *Client) Generate(ctx context.Context, term course.Term, prefs course.TermPreferences) (*GenerateResponse, error) {
	var out GenerateResponse
	if err := c.post(ctx, GeneratePath, term, prefs, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, term course.Term, body, result interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(TermHeader, string(term))

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	logger := c.logger().With(zap.String("path", path), zap.String("term", string(term)))

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		logger.Warn("optimizer request failed", zap.Error(err))
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	logger.Debug("optimizer response",
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Body: string(data)}
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil {
			apiErr.Message = e.Error
		}
		logger.Warn("optimizer returned an error", zap.Int("status", resp.StatusCode), zap.String("body", apiErr.Body))
		return apiErr
	}

	if err := json.Unmarshal(data, result); err != nil {
		logger.Warn("optimizer response not understood", zap.String("body", string(data)))
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
