package http

import (
	"ShortLinks-Backend/internal/repository"
	"ShortLinks-Backend/internal/service"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// LinksHandler is the administrative link-management JSON API. The
// platform's auth proxy fronts it; the service itself does not
// authenticate.
type LinksHandler struct {
	storage  repository.Storage
	registry *service.RegistryService
	log      *zap.Logger
}

// NewLinksHandler creates the admin links handler
func NewLinksHandler(storage repository.Storage, registry *service.RegistryService, log *zap.Logger) *LinksHandler {
	return &LinksHandler{
		storage:  storage,
		registry: registry,
		log:      log,
	}
}

// CreateLinkRequest is the link creation request body
type CreateLinkRequest struct {
	URL  string `json:"url"`
	Code string `json:"code,omitempty"`
}

// CreateLinkResponse is the link creation response body
type CreateLinkResponse struct {
	Code     string `json:"code"`
	ShortURL string `json:"short_url"`
	URL      string `json:"url"`
}

// LinkInfo describes one link in list responses
type LinkInfo struct {
	Code       string `json:"code"`
	URL        string `json:"url"`
	IsActive   bool   `json:"is_active"`
	ClickCount int64  `json:"click_count"`
	ShortURL   string `json:"short_url"`
	CreatedAt  string `json:"created_at"`
}

// ListLinksResponse is the list response body
type ListLinksResponse struct {
	Links []LinkInfo `json:"links"`
}

// StatsResponse is the per-link stats response body
type StatsResponse struct {
	Code           string           `json:"code"`
	URL            string           `json:"url"`
	IsActive       bool             `json:"is_active"`
	ClickCount     int64            `json:"click_count"`
	ClicksRecorded int64            `json:"clicks_recorded"`
	ClicksByDevice map[string]int64 `json:"clicks_by_device"`
	CreatedAt      string           `json:"created_at"`
}

// HandleLinks routes /api/links by method
func (h *LinksHandler) HandleLinks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.CreateLink(w, r)
	case http.MethodGet:
		h.ListLinks(w, r)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleLinkByCode routes /api/links/{code} and /api/links/{code}/activate
func (h *LinksHandler) HandleLinkByCode(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/links/"), "/")
	code, action, _ := strings.Cut(rest, "/")
	if code == "" {
		h.writeError(w, "Code is required", http.StatusBadRequest)
		return
	}
	code = strings.ToLower(code)

	switch {
	case action == "activate" && r.Method == http.MethodPost:
		h.setActive(w, r, code, true)
	case action == "" && r.Method == http.MethodDelete:
		h.setActive(w, r, code, false)
	case action == "" && r.Method == http.MethodGet:
		h.GetStats(w, r, code)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// CreateLink registers a new short link
func (h *LinksHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid create link request", zap.Error(err))
		h.writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if req.URL == "" {
		h.writeError(w, "URL is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	link, err := h.registry.Register(ctx, req.URL, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidURL), errors.Is(err, service.ErrInvalidCode):
			h.writeError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, repository.ErrCodeExists):
			h.writeError(w, "Code already exists", http.StatusConflict)
		default:
			h.log.Error("failed to create link", zap.Error(err))
			h.writeError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, CreateLinkResponse{
		Code:     link.Code,
		ShortURL: h.registry.ShortURL(link.Code),
		URL:      link.URL,
	})
}

// ListLinks returns all registered links
func (h *LinksHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	links, err := h.storage.ListShortLinks(ctx)
	if err != nil {
		h.log.Error("failed to list links", zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := ListLinksResponse{Links: make([]LinkInfo, 0, len(links))}
	for _, link := range links {
		resp.Links = append(resp.Links, LinkInfo{
			Code:       link.Code,
			URL:        link.URL,
			IsActive:   link.IsActive,
			ClickCount: link.ClickCount,
			ShortURL:   h.registry.ShortURL(link.Code),
			CreatedAt:  link.CreatedAt.Format(time.RFC3339),
		})
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// GetStats returns counters and device breakdown for one link
func (h *LinksHandler) GetStats(w http.ResponseWriter, r *http.Request, code string) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	link, err := h.storage.FindShortLink(ctx, code)
	if errors.Is(err, repository.ErrCodeNotFound) {
		h.writeError(w, "Link not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("failed to get link", zap.String("code", code), zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	clicksRecorded, err := h.storage.CountClicks(ctx, link.ID)
	if err != nil {
		h.log.Error("failed to count clicks", zap.String("code", code), zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	clicksByDevice, err := h.storage.GetClicksByDevice(ctx, link.ID)
	if err != nil {
		h.log.Error("failed to get clicks by device", zap.String("code", code), zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, StatsResponse{
		Code:           link.Code,
		URL:            link.URL,
		IsActive:       link.IsActive,
		ClickCount:     link.ClickCount,
		ClicksRecorded: clicksRecorded,
		ClicksByDevice: clicksByDevice,
		CreatedAt:      link.CreatedAt.Format(time.RFC3339),
	})
}

// setActive deactivates or reactivates a link; the row is retained
func (h *LinksHandler) setActive(w http.ResponseWriter, r *http.Request, code string, active bool) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	err := h.storage.SetLinkActive(ctx, code, active)
	if errors.Is(err, repository.ErrCodeNotFound) {
		h.writeError(w, "Link not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("failed to update link", zap.String("code", code), zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"code":      code,
		"is_active": active,
	})
}

func (h *LinksHandler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("failed to encode response", zap.Error(err))
	}
}

func (h *LinksHandler) writeError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
