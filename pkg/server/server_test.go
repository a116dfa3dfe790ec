package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"tableflip.dev/termwise/pkg/optimizer"
	"tableflip.dev/termwise/pkg/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type upstreamStub struct {
	status int
	body   string
	calls  atomic.Int32
	last   map[string]interface{}
	header http.Header
}

func (u *upstreamStub) start(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.calls.Add(1)
		u.header = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&u.last)
		if u.status != 0 {
			w.WriteHeader(u.status)
		}
		_, _ = io.WriteString(w, u.body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newServer(t *testing.T, upstreamURL string) *Server {
	t.Helper()
	cache, err := store.NewValidationCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	return &Server{
		Upstream:     optimizer.NewUpstream(upstreamURL, "anon", "secret", time.Second),
		Cache:        cache,
		Limiter:      NewRateLimiter(30, time.Minute),
		AllowOrigins: []string{"http://localhost:3000"},
	}
}

func do(h http.Handler, method, path, term, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if term != "" {
		req.Header.Set("X-Term", term)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// doFrom posts to the generate route from remoteAddr.
func doFrom(h http.Handler, remoteAddr, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/generate-schedule", strings.NewReader(body))
	req.RemoteAddr = remoteAddr
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Term", "fall")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var out struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out.Error
}

func TestHealth(t *testing.T) {
	s := newServer(t, "")
	w := do(s.Router(), http.MethodGet, "/health", "", "")
	if w.Code != http.StatusOK || w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("unexpected response %d %v", w.Code, w.Header())
	}
}

func TestValidateCourses(t *testing.T) {
	up := &upstreamStub{body: `{"invalidCourses":["PHYS9999"]}`}
	srv := up.start(t)
	s := newServer(t, srv.URL)
	h := s.Router()

	tests := map[string]struct {
		term    string
		body    string
		status  int
		message string
	}{
		"missing term": {
			body:    `{"courses":[{"courseCode":"COMP1405"}]}`,
			status:  http.StatusBadRequest,
			message: msgInvalidTerm,
		},
		"bad term": {
			term:    "summer",
			body:    `{"courses":[{"courseCode":"COMP1405"}]}`,
			status:  http.StatusBadRequest,
			message: msgInvalidTerm,
		},
		"courses not array": {
			term:    "fall",
			body:    `{"courses":"COMP1405"}`,
			status:  http.StatusBadRequest,
			message: msgCoursesNotArray,
		},
		"blank codes": {
			term:    "fall",
			body:    `{"courses":[{"courseCode":"  "}]}`,
			status:  http.StatusBadRequest,
			message: msgNoValidCodes,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			w := do(h, http.MethodPost, "/api/validate-courses", tt.term, tt.body)
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, w.Code)
			}
			if got := errorOf(t, w); got != tt.message {
				t.Fatalf("expected %q, got %q", tt.message, got)
			}
		})
	}
	if up.calls.Load() != 0 {
		t.Fatalf("invalid requests must not reach upstream")
	}

	body := `{"courses":[{"courseCode":" PHYS9999 "},{"courseCode":""}]}`
	w := do(h, http.MethodPost, "/api/validate-courses", "winter", body)
	if w.Code != http.StatusOK || w.Body.String() != up.body {
		t.Fatalf("unexpected relay %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("first call should miss the cache")
	}
	codes, _ := up.last["courses"].([]interface{})
	if len(codes) != 1 || codes[0] != "PHYS9999" || up.last["keyword"] != "winter" {
		t.Fatalf("unexpected upstream payload %v", up.last)
	}
	if up.header.Get("Authorization") != "Bearer anon" || up.header.Get("X-Term") != "winter" {
		t.Fatalf("unexpected upstream headers %v", up.header)
	}

	w = do(h, http.MethodPost, "/api/validate-courses", "winter", body)
	if w.Header().Get("X-Cache") != "HIT" || up.calls.Load() != 1 {
		t.Fatalf("second call should be served from cache")
	}
}

func TestValidateUpstreamFailure(t *testing.T) {
	up := &upstreamStub{status: http.StatusBadGateway, body: "edge function crashed"}
	srv := up.start(t)
	s := newServer(t, srv.URL)

	w := do(s.Router(), http.MethodPost, "/api/validate-courses", "fall", `{"courses":[{"courseCode":"COMP1405"}]}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected upstream status relayed, got %d", w.Code)
	}
	if got := errorOf(t, w); got != msgValidateFailed {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestUpstreamNotConfigured(t *testing.T) {
	s := newServer(t, "")
	w := do(s.Router(), http.MethodPost, "/api/generate-schedule", "fall", `{"courses":[{"courseCode":"COMP1405"}]}`)
	if w.Code != http.StatusInternalServerError || errorOf(t, w) != msgServerConfig {
		t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
	}
}

func TestGenerateScheduleValidation(t *testing.T) {
	up := &upstreamStub{body: `{"courses":[]}`}
	srv := up.start(t)
	h := newServer(t, srv.URL).Router()

	tests := map[string]struct {
		body    string
		message string
	}{
		"not an object":   {`[1,2]`, "Invalid request format"},
		"no courses":      {`{"courses":[]}`, "At least one course is required"},
		"blank code":      {`{"courses":[{"courseCode":" "}]}`, "Invalid course format"},
		"bad section":     {`{"courses":[{"courseCode":"A1","sectionTypes":["Lecture"]}]}`, "Invalid section types"},
		"bad buffer":      {`{"courses":[{"courseCode":"A1"}],"bufferTime":"2 Hours"}`, "Invalid buffer time: 2 Hours"},
		"availability":    {`{"courses":[{"courseCode":"A1"}],"dailyAvailability":{}}`, "Invalid availability format"},
		"weekend":         {`{"courses":[{"courseCode":"A1"}],"dailyAvailability":[{"day":"Saturday","availableTimes":[],"maxClassesPerDay":0}]}`, "Invalid day in availability"},
		"times":           {`{"courses":[{"courseCode":"A1"}],"dailyAvailability":[{"day":"Monday","availableTimes":"all","maxClassesPerDay":1}]}`, "Invalid available times format"},
		"negative max":    {`{"courses":[{"courseCode":"A1"}],"dailyAvailability":[{"day":"Monday","availableTimes":[],"maxClassesPerDay":-1}]}`, "Invalid max classes per day"},
		"missing max":     {`{"courses":[{"courseCode":"A1"}],"dailyAvailability":[{"day":"Monday","availableTimes":[]}]}`, "Invalid max classes per day"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			w := do(h, http.MethodPost, "/api/generate-schedule", "fall", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			if got := errorOf(t, w); got != tt.message {
				t.Fatalf("expected %q, got %q", tt.message, got)
			}
		})
	}
	if up.calls.Load() != 0 {
		t.Fatalf("invalid requests must not reach upstream")
	}
}

func TestGenerateScheduleForwards(t *testing.T) {
	up := &upstreamStub{body: `{"courses":[{"courseCode":"COMP1405A"}]}`}
	srv := up.start(t)
	h := newServer(t, srv.URL).Router()

	body := `{"courses":[{"courseCode":"COMP1405","sectionTypes":["In-Person"]}],"bufferTime":"1h",
		"dailyAvailability":[{"day":"Monday","availableTimes":["Morning"],"maxClassesPerDay":2}]}`
	w := do(h, http.MethodPost, "/api/generate-schedule", "fall", body)
	if w.Code != http.StatusOK || w.Body.String() != up.body {
		t.Fatalf("unexpected relay %d %s", w.Code, w.Body.String())
	}
	if up.last["semester"] != "fall" || up.last["bufferTime"] != "1h" {
		t.Fatalf("unexpected upstream payload %v", up.last)
	}
	if w.Header().Get("X-RateLimit-Limit") != "30" || w.Header().Get("X-RateLimit-Remaining") != "29" {
		t.Fatalf("unexpected rate headers %v", w.Header())
	}
}

func TestGenerateRateLimited(t *testing.T) {
	up := &upstreamStub{body: `{"courses":[]}`}
	srv := up.start(t)
	s := newServer(t, srv.URL)
	s.Limiter = NewRateLimiter(2, time.Minute)
	h := s.Router()

	body := `{"courses":[{"courseCode":"A1"}]}`
	for i := 0; i < 2; i++ {
		if w := doFrom(h, "192.0.2.1:5000", body); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
	w := doFrom(h, "192.0.2.1:5001", body)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("X-RateLimit-Remaining") != "0" || w.Header().Get("Retry-After") != "30" {
		t.Fatalf("unexpected headers %v", w.Header())
	}
	if got := errorOf(t, w); got != "Too many requests. Please try again later." {
		t.Fatalf("unexpected message %q", got)
	}

	// Other hosts keep their own bucket.
	if w := doFrom(h, "192.0.2.2:5000", body); w.Code != http.StatusOK {
		t.Fatalf("expected 200 for another client, got %d", w.Code)
	}
}

func TestRateLimitIgnoresUntrustedForwarding(t *testing.T) {
	up := &upstreamStub{body: `{"courses":[]}`}
	srv := up.start(t)
	s := newServer(t, srv.URL)
	s.Limiter = NewRateLimiter(1, time.Minute)
	h := s.Router()

	body := `{"courses":[{"courseCode":"A1"}]}`
	if w := doFrom(h, "192.0.2.1:5000", body); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	for _, fwd := range []string{"203.0.113.7", "203.0.113.8"} {
		if w := doFrom(h, "192.0.2.1:5000", body, "X-Forwarded-For", fwd); w.Code != http.StatusTooManyRequests {
			t.Fatalf("X-Forwarded-For %s: expected 429, got %d", fwd, w.Code)
		}
	}
}

func TestRateLimitTrustedProxy(t *testing.T) {
	up := &upstreamStub{body: `{"courses":[]}`}
	srv := up.start(t)
	s := newServer(t, srv.URL)
	s.Limiter = NewRateLimiter(1, time.Minute)
	s.TrustedProxies = []string{"10.0.0.1"}
	h := s.Router()

	body := `{"courses":[{"courseCode":"A1"}]}`
	for _, fwd := range []string{"203.0.113.7", "203.0.113.8"} {
		if w := doFrom(h, "10.0.0.1:443", body, "X-Forwarded-For", fwd); w.Code != http.StatusOK {
			t.Fatalf("X-Forwarded-For %s: expected 200, got %d", fwd, w.Code)
		}
	}
	if w := doFrom(h, "10.0.0.1:443", body, "X-Forwarded-For", "203.0.113.7"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for a repeat client, got %d", w.Code)
	}
}

func TestRateLimiterRefill(t *testing.T) {
	l := NewRateLimiter(1, time.Minute)
	now := time.Date(2025, 9, 3, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if ok, _, _ := l.Allow("a"); !ok {
		t.Fatalf("first request should pass")
	}
	ok, _, next := l.Allow("a")
	if ok {
		t.Fatalf("second request should be limited")
	}
	if got := next.Sub(now); got < time.Minute-time.Millisecond || got > time.Minute+time.Millisecond {
		t.Fatalf("next admission in %v, want 1m", got)
	}
	now = now.Add(61 * time.Second)
	if l.Cleanup() != 1 {
		t.Fatalf("expected refilled client removed")
	}
	if ok, _, _ := l.Allow("a"); !ok {
		t.Fatalf("refilled bucket should pass")
	}

	l.SetLimit(3)
	now = now.Add(2 * time.Minute)
	for i := 0; i < 3; i++ {
		if ok, _, _ := l.Allow("a"); !ok {
			t.Fatalf("request %d under the raised limit should pass", i)
		}
	}

	l.SetLimit(0)
	for i := 0; i < 5; i++ {
		if ok, _, _ := l.Allow("a"); !ok {
			t.Fatalf("zero limit disables limiting")
		}
	}
}

func TestCORS(t *testing.T) {
	h := newServer(t, "").Router()

	w := do(h, http.MethodOptions, "/api/generate-schedule", "", "", "Origin", "http://localhost:3000")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" ||
		!strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "X-Term") {
		t.Fatalf("unexpected CORS headers %v", w.Header())
	}

	w = do(h, http.MethodGet, "/health", "", "", "Origin", "https://evil.example.com")
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("unknown origin must not be allowed")
	}
}

func TestRequestIDEcho(t *testing.T) {
	h := newServer(t, "").Router()
	w := do(h, http.MethodGet, "/health", "", "", "X-Request-ID", "abc-123")
	if w.Header().Get("X-Request-ID") != "abc-123" {
		t.Fatalf("expected request id echoed, got %q", w.Header().Get("X-Request-ID"))
	}
	w = do(h, http.MethodGet, "/health", "", "", "X-Request-ID", strings.Repeat("x", 65))
	if len(w.Header().Get("X-Request-ID")) != 36 {
		t.Fatalf("expected oversized id replaced by a uuid")
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	s := newServer(t, "")
	addr := make(chan string, 1)
	s.OnListening = func(a string) { addr <- a }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()

	select {
	case a := <-addr:
		resp, err := http.Get("http://" + a + "/health")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("unexpected status %d", resp.StatusCode)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server never started")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("server did not shut down")
	}
}
