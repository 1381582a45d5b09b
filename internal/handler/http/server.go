package http

import (
	"ShortLinks-Backend/internal/repository"
	"ShortLinks-Backend/internal/resolver"
	"ShortLinks-Backend/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// Server bundles the HTTP handlers
type Server struct {
	redirectHandler *RedirectHandler
	linksHandler    *LinksHandler
	healthHandler   *HealthHandler
	log             *zap.Logger
}

// NewServer creates the HTTP server. clicks must implement both the click
// sink and the stats source (internal/recorder does).
func NewServer(
	storage repository.Storage,
	registry *service.RegistryService,
	res *resolver.Resolver,
	clicks ClickSink,
	stats StatsSource,
	log *zap.Logger,
) *Server {
	return &Server{
		redirectHandler: NewRedirectHandler(res, clicks, log),
		linksHandler:    NewLinksHandler(storage, registry, log),
		healthHandler:   NewHealthHandler(storage, stats, log),
		log:             log,
	}
}

// SetupRoutes wires up the route table
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Health checks
	mux.HandleFunc("/health", s.healthHandler.Health)
	mux.HandleFunc("/ready", s.healthHandler.Ready)
	mux.HandleFunc("/metrics", s.healthHandler.Metrics)

	// Admin links API (fronted by the platform's auth proxy)
	mux.HandleFunc("/api/links", s.linksHandler.HandleLinks)
	mux.HandleFunc("/api/links/", s.linksHandler.HandleLinkByCode)

	// Redirect entry point, GET and POST alike
	mux.HandleFunc("/go/", s.redirectHandler.HandleRedirect)

	return mux
}
