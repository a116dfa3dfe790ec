package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tableflip.dev/termwise/pkg/course"
)

// ErrUpstreamNotConfigured means the edge function URL or keys are missing.
var ErrUpstreamNotConfigured = errors.New("optimizer: upstream not configured")

const (
	upstreamValidatePath = "/validate-courses"
	upstreamFilterPath   = "/filter-courses"
)

// Upstream calls the catalogue edge functions. Responses are relayed
// untouched so the boundary stays transparent to clients.
type Upstream struct {
	BaseURL    string
	AnonKey    string
	APIKey     string
	HTTPClient *http.Client
}

// NewUpstream builds an Upstream client.
func NewUpstream(baseURL, anonKey, apiKey string, timeout time.Duration) *Upstream {
	return &Upstream{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		AnonKey:    anonKey,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether the URL and both keys are set.
func (u *Upstream) Configured() bool {
	return u != nil && u.BaseURL != "" && u.AnonKey != "" && u.APIKey != ""
}

// ValidateCourses asks the catalogue which codes exist for term.
func (u *Upstream) ValidateCourses(ctx context.Context, term course.Term, codes []string) ([]byte, error) {
	payload := map[string]interface{}{
		"courses":  codes,
		"semester": term,
		"keyword":  term,
	}
	return u.post(ctx, upstreamValidatePath, term, payload)
}

// FilterCourses forwards a preference document, tagged with the term, to the
// schedule generator.
func (u *Upstream) FilterCourses(ctx context.Context, term course.Term, prefs map[string]interface{}) ([]byte, error) {
	payload := make(map[string]interface{}, len(prefs)+2)
	for k, v := range prefs {
		payload[k] = v
	}
	payload["semester"] = term
	payload["keyword"] = term
	return u.post(ctx, upstreamFilterPath, term, payload)
}

func (u *Upstream) post(ctx context.Context, path string, term course.Term, payload interface{}) ([]byte, error) {
	if !u.Configured() {
		return nil, ErrUpstreamNotConfigured
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+u.AnonKey)
	req.Header.Set("x-api-key", u.APIKey)
	req.Header.Set(TermHeader, string(term))

	hc := u.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(data)}
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("upstream %s returned invalid JSON", path)
	}
	return data, nil
}
