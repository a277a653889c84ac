// Package server provides the HTTP server setup and wiring.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gatewei/gatewei/internal/auth"
	"github.com/gatewei/gatewei/internal/config"
	"github.com/gatewei/gatewei/internal/content"
	"github.com/gatewei/gatewei/internal/ethrpc"
	"github.com/gatewei/gatewei/internal/middleware/logging"
	"github.com/gatewei/gatewei/internal/middleware/ratelimit"
	"github.com/gatewei/gatewei/internal/middleware/realip"
	"github.com/gatewei/gatewei/internal/middleware/security"
	"github.com/gatewei/gatewei/internal/observability/metrics"
	"github.com/gatewei/gatewei/internal/records"
	resourcesDomain "github.com/gatewei/gatewei/internal/resources/domain"
	resourcesTransport "github.com/gatewei/gatewei/internal/resources/transport"
	"github.com/gatewei/gatewei/internal/vault"
	verifyDomain "github.com/gatewei/gatewei/internal/verify/domain"
	verifyTransport "github.com/gatewei/gatewei/internal/verify/transport"
	"github.com/gatewei/gatewei/internal/wei"
)

// Server is the HTTP server
type Server struct {
	cfg    *config.Config
	store  records.Store
	logger *slog.Logger
	router *chi.Mux

	verifySvc    verifyDomain.Service
	resourcesSvc resourcesDomain.Service
}

// New creates a new server wired to the configured chain and record store.
func New(cfg *config.Config, store records.Store, logger *slog.Logger) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		store:  store,
		logger: logger,
		router: chi.NewRouter(),
	}

	chainClient := ethrpc.New(cfg.Chain.RPCURL,
		ethrpc.WithTimeout(time.Duration(cfg.Chain.RequestTimeout)*time.Second))
	caller := vault.NewCaller(chainClient, cfg.Payment.ContractAddress)
	resolver := content.NewResolver(cfg.Content.IPFSGateway)

	verifyImpl := verifyDomain.NewService(chainClient, store, verifyDomain.Config{
		ContractAddress: cfg.Payment.ContractAddress,
		Beneficiary:     cfg.Payment.Beneficiary,
		Price:           cfg.Payment.PriceWei,
		ResourceID:      cfg.Payment.ResourceID,
	})
	s.verifySvc = verifyDomain.LoggingMiddleware(logger)(verifyImpl)

	resourcesImpl, err := resourcesDomain.NewService(caller, resolver, cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("creating resource service: %w", err)
	}
	s.resourcesSvc = resourcesImpl

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// MetricsHandler returns the metrics HTTP handler for separate metrics server
func (s *Server) MetricsHandler() http.Handler {
	return metrics.Handler()
}

func (s *Server) setupMiddleware() {
	// Order matters! Security middleware runs first to block malicious requests early.

	// 1. Real IP extraction (must be first to set client IP for other middleware)
	s.router.Use(realip.Middleware(realip.Config{
		TrustProxy:     s.cfg.Proxy.TrustProxy,
		TrustedProxies: s.cfg.Proxy.TrustedProxies,
	}))

	// 2. Security filter (blocks malicious patterns, bypasses health checks)
	s.router.Use(security.FilterMiddleware(s.cfg.Security.FilterEnabled))

	// 3. Body size limit
	s.router.Use(security.MaxBodySizeMiddleware(s.cfg.Security.MaxBodySizeMB))

	// 4. Rate limiting (bypasses health checks and the widget config poll)
	s.router.Use(ratelimit.Middleware(ratelimit.Config{
		Enabled:        s.cfg.RateLimit.Enabled,
		RequestsPerMin: s.cfg.RateLimit.RequestsPerMin,
		BurstSize:      s.cfg.RateLimit.BurstSize,
		CleanupMinutes: s.cfg.RateLimit.CleanupMinutes,
	}))

	// 5. Standard middleware
	s.router.Use(middleware.RequestID)
	s.router.Use(logging.Middleware(s.logger))
	s.router.Use(metrics.Middleware)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	// 6. CORS. The payment widget is embedded on arbitrary creator sites.
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-API-Key")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})
}

func (s *Server) setupRoutes() {
	// Health checks
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/readyz", s.handleHealth)

	verifyHandler := verifyTransport.NewHandler(s.verifySvc)
	resourcesHandler := resourcesTransport.NewHandler(s.resourcesSvc)

	// Auth middleware for admin operations
	requireAuth := func(r chi.Router) {
		if s.cfg.Auth.Type == "api-key" {
			r.Use(auth.Middleware(s.store, writeError))
		}
	}

	// API v1 routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Public widget configuration
		r.Get("/config", s.handleConfig)

		// Payment verification - no auth
		verifyHandler.RegisterRoutes(r)

		// Resource metadata and gated content - no auth, gated on chain state
		resourcesHandler.RegisterRoutes(r)

		// Record administration - auth required
		r.Group(func(r chi.Router) {
			requireAuth(r)
			verifyHandler.RegisterAdminRoutes(r)
		})
	})
}

// Version is stamped by the server binary at startup.
var Version = "dev"

// Health check handler
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": Version})
}

// handleConfig serves the public parameters the payment widget needs to
// build a payForResource transaction.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"chainId":         s.cfg.Chain.ChainID,
		"contractAddress": s.cfg.Payment.ContractAddress,
		"beneficiary":     s.cfg.Payment.Beneficiary,
		"priceWei":        s.cfg.Payment.PriceWei.String(),
		"priceEther":      wei.FormatEther(s.cfg.Payment.PriceWei),
	})
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
