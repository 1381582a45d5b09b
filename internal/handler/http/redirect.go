package http

import (
	"ShortLinks-Backend/internal/recorder"
	"ShortLinks-Backend/internal/resolver"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ClickSink receives resolved clicks for fire-and-forget recording.
type ClickSink interface {
	Submit(click recorder.Click) error
}

// RedirectHandler is the externally reachable /go/{code} entry point.
type RedirectHandler struct {
	resolver *resolver.Resolver
	clicks   ClickSink
	log      *zap.Logger
}

// NewRedirectHandler creates the redirect entry point handler
func NewRedirectHandler(res *resolver.Resolver, clicks ClickSink, log *zap.Logger) *RedirectHandler {
	return &RedirectHandler{
		resolver: res,
		clicks:   clicks,
		log:      log,
	}
}

// HandleRedirect resolves the code and issues a 302. GET and POST are
// treated identically; the response never waits on click recording and is
// never a 5xx.
func (h *RedirectHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	code := strings.Trim(strings.TrimPrefix(r.URL.Path, "/go/"), "/")

	res := h.resolver.Resolve(r.Context(), code, r.URL.Query())

	if res.Outcome == resolver.OutcomeResolved {
		click := recorder.Click{
			Code:      res.Link.Code,
			LinkID:    res.Link.ID,
			ClickedAt: time.Now(),
		}
		if ip := clientIP(r); ip != "" {
			click.IPAddress = &ip
		}
		if ua := r.UserAgent(); ua != "" {
			click.UserAgent = &ua
		}
		if ref := r.Referer(); ref != "" {
			click.Referrer = &ref
		}

		// Best-effort: a dropped click never changes the response.
		if err := h.clicks.Submit(click); err != nil {
			h.log.Warn("click not recorded", zap.String("code", res.Link.Code), zap.Error(err))
		}

		h.log.Info("redirect resolved",
			zap.String("code", res.Link.Code),
			zap.String("destination", res.Destination))
	}

	http.Redirect(w, r, res.Destination, http.StatusFound)
}

// clientIP extracts the client IP, preferring proxy headers: the first
// X-Forwarded-For value, then X-Real-IP, then RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
