package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/huson-app/huson/internal/config"
	"github.com/huson-app/huson/internal/core/ports"
	"github.com/huson-app/huson/internal/observability/metrics"
)

const serviceName = "api"

// Services are the inbound ports the router exposes over HTTP.
type Services struct {
	Auth       ports.Authenticator
	Sessions   ports.SessionEvents
	Classifier ports.DonationClassifier
	Submitter  ports.DonationSubmitter
	History    ports.DonationHistory
	Points     ports.CollectionPointViews
	Objects    ports.ObjectReader
}

type Router struct {
	services Services
	metrics  *metrics.HTTPServerMetrics

	maxUploadBytes  int64
	cookieSecure    bool
	limiter         *rate.Limiter
	maxInFlight     int
	backpressureFor time.Duration
}

func NewRouter(cfg config.Config, services Services, httpMetrics *metrics.HTTPServerMetrics) *Router {
	maxUploadMB := cfg.MaxUploadMB
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &Router{
		services:        services,
		metrics:         httpMetrics,
		maxUploadBytes:  int64(maxUploadMB) << 20,
		cookieSecure:    cfg.SessionCookieSecure,
		limiter:         newRateLimiter(cfg.APIRateLimitRPS, cfg.APIRateLimitBurst),
		maxInFlight:     cfg.APIMaxInFlight,
		backpressureFor: time.Duration(cfg.APIBackpressureWaitMS) * time.Millisecond,
	}
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(accessLogMiddleware)
	if rt.metrics != nil {
		r.Use(func(next http.Handler) http.Handler {
			return rt.metrics.Middleware(serviceName, next)
		})
	}
	r.Use(rt.rateLimit)

	r.Get("/healthz", rt.healthz)
	if rt.metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	// Long-lived streams must not hold a backpressure slot.
	r.Group(func(r chi.Router) {
		r.Use(rt.requireSession)
		r.Get("/v1/auth/events", rt.sessionEvents)
	})

	r.Group(func(r chi.Router) {
		r.Use(rt.backpressure)

		r.Post("/v1/auth/sign-up", rt.signUp)
		r.Post("/v1/auth/sign-in", rt.signIn)
		r.Get("/v1/auth/session", rt.currentSession)
		r.Get("/v1/collection-points", rt.listCollectionPoints)
		r.Get("/storage/donations/*", rt.serveDonationImage)

		r.Group(func(r chi.Router) {
			r.Use(rt.requireSession)
			r.Post("/v1/auth/sign-out", rt.signOut)
			r.Post("/v1/donations/classify", rt.classifyDonation)
			r.Post("/v1/donations", rt.submitDonation)
			r.Get("/v1/donations", rt.listDonations)
			r.Get("/v1/donations/export.xlsx", rt.exportDonations)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	})
	return r
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
