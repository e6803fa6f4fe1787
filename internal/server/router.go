package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/contestapp/gateway/internal/httputil"
	"github.com/contestapp/gateway/internal/middleware"
)

// RouterConfig holds dependencies needed to configure routes.
type RouterConfig struct {
	Gateway        *Gateway
	CORSOrigins    []string
	MetricsEnabled bool
}

// NewRouter constructs the gateway's HTTP handler: health and metrics
// endpoints served locally, everything else through the proxy pipeline.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "gateway",
		})
	})

	if cfg.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	// Everything else goes through route matching, auth and forwarding.
	mux.Handle("/", cfg.Gateway)

	corsConfig := middleware.CORSConfig{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	var handler http.Handler = mux
	handler = middleware.CORS(corsConfig)(handler)
	handler = middleware.Recovery(handler)
	return middleware.RequestID(handler)
}
