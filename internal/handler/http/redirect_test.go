package http

import (
	"ShortLinks-Backend/internal/config"
	"ShortLinks-Backend/internal/domain"
	"ShortLinks-Backend/internal/recorder"
	"ShortLinks-Backend/internal/repository/memory"
	"ShortLinks-Backend/internal/resolver"
	"ShortLinks-Backend/internal/service"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// captureSink records submitted clicks and can simulate recording failure.
type captureSink struct {
	mu     sync.Mutex
	clicks []recorder.Click
	err    error
}

func (s *captureSink) Submit(click recorder.Click) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.clicks = append(s.clicks, click)
	return nil
}

func (s *captureSink) captured() []recorder.Click {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recorder.Click(nil), s.clicks...)
}

func newTestServer(t *testing.T, storage *memory.MemStorage, sink ClickSink) http.Handler {
	t.Helper()
	cfg := &config.Redirect{SiteRoot: "/", BaseURL: "http://localhost:8080", CodeLength: 6}
	registry := service.NewRegistry(storage, cfg)
	res := resolver.New(storage, cfg.SiteRoot, zap.NewNop())
	return NewServer(storage, registry, res, sink, nil, zap.NewNop()).SetupRoutes()
}

func seedRedirectLinks(t *testing.T, storage *memory.MemStorage) {
	t.Helper()
	links := []*domain.ShortLink{
		{Code: "johnatlanta", URL: "https://taxgeniuspro.tax/start-filing/form?ref=TGP-123456", IsActive: true},
		{Code: "paused", URL: "https://taxgeniuspro.tax/courses", IsActive: false},
	}
	for _, link := range links {
		require.NoError(t, storage.SaveShortLink(context.Background(), link))
	}
}

func TestRedirect_ActiveLink(t *testing.T) {
	storage := memory.New()
	seedRedirectLinks(t, storage)
	sink := &captureSink{}
	srv := newTestServer(t, storage, sink)

	req := httptest.NewRequest(http.MethodGet, "/go/johnatlanta?utm_source=instagram", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req.Header.Set("User-Agent", "Mozilla/5.0 (iPhone) Mobile")
	req.Header.Set("Referer", "https://instagram.com")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "https://taxgeniuspro.tax/start-filing/form?ref=TGP-123456&utm_source=instagram", rr.Header().Get("Location"))

	clicks := sink.captured()
	require.Len(t, clicks, 1)
	assert.Equal(t, "johnatlanta", clicks[0].Code)
	require.NotNil(t, clicks[0].IPAddress)
	assert.Equal(t, "203.0.113.7", *clicks[0].IPAddress)
	require.NotNil(t, clicks[0].UserAgent)
	require.NotNil(t, clicks[0].Referrer)
	assert.Equal(t, "https://instagram.com", *clicks[0].Referrer)
	assert.False(t, clicks[0].ClickedAt.IsZero())
}

func TestRedirect_PostMatchesGet(t *testing.T) {
	storage := memory.New()
	seedRedirectLinks(t, storage)
	srv := newTestServer(t, storage, &captureSink{})

	var locations []string
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		req := httptest.NewRequest(method, "/go/johnatlanta?utm_source=instagram", nil)
		rr := httptest.NewRecorder()
		srv.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusFound, rr.Code, method)
		locations = append(locations, rr.Header().Get("Location"))
	}
	assert.Equal(t, locations[0], locations[1])
}

func TestRedirect_Fallbacks(t *testing.T) {
	storage := memory.New()
	seedRedirectLinks(t, storage)
	sink := &captureSink{}
	srv := newTestServer(t, storage, sink)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"unknown code", "/go/deadlink", "/?error=link-not-found"},
		{"inactive link", "/go/paused", "/?error=link-inactive"},
		{"empty code", "/go/", "/?error=link-not-found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rr := httptest.NewRecorder()
			srv.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusFound, rr.Code)
			assert.Equal(t, tt.want, rr.Header().Get("Location"))
		})
	}

	assert.Empty(t, sink.captured(), "fallback redirects must not record clicks")
}

func TestRedirect_CodeIsCaseInsensitive(t *testing.T) {
	storage := memory.New()
	seedRedirectLinks(t, storage)
	srv := newTestServer(t, storage, &captureSink{})

	req := httptest.NewRequest(http.MethodGet, "/go/JohnAtlanta", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "https://taxgeniuspro.tax/start-filing/form?ref=TGP-123456", rr.Header().Get("Location"))
}

func TestRedirect_MethodNotAllowed(t *testing.T) {
	storage := memory.New()
	seedRedirectLinks(t, storage)
	srv := newTestServer(t, storage, &captureSink{})

	req := httptest.NewRequest(http.MethodPut, "/go/johnatlanta", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRedirect_RecordingFailureDoesNotChangeResponse(t *testing.T) {
	storage := memory.New()
	seedRedirectLinks(t, storage)
	sink := &captureSink{err: errors.New("click queue is full")}
	srv := newTestServer(t, storage, sink)

	req := httptest.NewRequest(http.MethodGet, "/go/johnatlanta?utm_source=instagram", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "https://taxgeniuspro.tax/start-filing/form?ref=TGP-123456&utm_source=instagram", rr.Header().Get("Location"))
}

func TestRedirect_ConcurrentClicks(t *testing.T) {
	const requests = 100

	storage := memory.New()
	seedRedirectLinks(t, storage)

	rec := recorder.New(storage, nil, zap.NewNop(), recorder.Config{
		Workers:         3,
		BufferSize:      requests,
		OpTimeout:       5 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	})
	require.NoError(t, rec.Start())

	srv := newTestServer(t, storage, rec)

	var wg sync.WaitGroup
	statuses := make([]int, requests)
	locations := make([]string, requests)
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/go/johnatlanta", nil)
			rr := httptest.NewRecorder()
			srv.ServeHTTP(rr, req)
			statuses[i] = rr.Code
			locations[i] = rr.Header().Get("Location")
		}(i)
	}
	wg.Wait()

	for i := 0; i < requests; i++ {
		assert.Equal(t, http.StatusFound, statuses[i])
		assert.Equal(t, "https://taxgeniuspro.tax/start-filing/form?ref=TGP-123456", locations[i])
	}

	// Drain the queue before checking the counter.
	require.NoError(t, rec.Stop())

	link, err := storage.FindShortLink(context.Background(), "johnatlanta")
	require.NoError(t, err)
	assert.Greater(t, link.ClickCount, int64(0))
	assert.LessOrEqual(t, link.ClickCount, int64(requests))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{"first forwarded-for value", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "127.0.0.1:1234", "203.0.113.7"},
		{"real-ip fallback", map[string]string{"X-Real-IP": "198.51.100.2"}, "127.0.0.1:1234", "198.51.100.2"},
		{"remote addr fallback", nil, "192.0.2.9:5678", "192.0.2.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/go/x", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}

func TestRedirect_IncomingErrorParamIsMerged(t *testing.T) {
	// The merge policy has no special cases: even an incoming "error" key
	// passes through when the destination does not define it.
	storage := memory.New()
	require.NoError(t, storage.SaveShortLink(context.Background(), &domain.ShortLink{
		Code: "promo", URL: "https://taxgeniuspro.tax/refund-advance", IsActive: true,
	}))
	srv := newTestServer(t, storage, &captureSink{})

	req := httptest.NewRequest(http.MethodGet, "/go/promo?error=ignored", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	loc, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "ignored", loc.Query().Get("error"))
}
