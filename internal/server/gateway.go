package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/contestapp/gateway/internal/audit"
	"github.com/contestapp/gateway/internal/auth"
	"github.com/contestapp/gateway/internal/config"
	"github.com/contestapp/gateway/internal/httputil"
	"github.com/contestapp/gateway/internal/logging"
	"github.com/contestapp/gateway/internal/metrics"
	"github.com/contestapp/gateway/internal/middleware"
	"github.com/contestapp/gateway/internal/proxy"
)

// Client-facing bodies for gateway-generated failures. Short on purpose: no
// internal detail crosses the trust boundary.
const (
	msgInvalidToken  = "Invalid JWT token"
	msgNotFound      = "Not found"
	msgInternalError = "An unexpected error occurred"
)

// Gateway is the request router: it resolves the downstream route, runs the
// exemption check and authentication pipeline, and hands matched requests to
// the forwarder. All tables are immutable after construction.
type Gateway struct {
	routes        *routeMatcher
	exemptions    *ExemptionMatcher
	authenticator *auth.Authenticator
	forwarder     *proxy.Forwarder
	publisher     audit.Publisher
	log           *logging.Logger
}

// NewGateway wires the routing tables and pipeline into a handler.
func NewGateway(table *config.RouteTable, authenticator *auth.Authenticator, forwarder *proxy.Forwarder, publisher audit.Publisher, log *logging.Logger) *Gateway {
	if publisher == nil {
		publisher = audit.NopPublisher{}
	}
	return &Gateway{
		routes:        newRouteMatcher(table.Routes),
		exemptions:    NewExemptionMatcher(table.Exemptions),
		authenticator: authenticator,
		forwarder:     forwarder,
		publisher:     publisher,
		log:           log,
	}
}

// ServeHTTP implements the per-request state machine: route match, exemption
// check, authentication (with refresh-once on expiry), then forward. Terminal
// failures are written directly and never reach a downstream service.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	route, ok := g.routes.Match(r.URL.Path)
	if !ok {
		metrics.RoutesUnmatched.Inc()
		g.log.WarnContext(r.Context(), "no route for request",
			logging.Method(r.Method), logging.Path(r.URL.Path))
		httputil.WriteText(w, http.StatusNotFound, msgNotFound)
		return
	}

	if g.exemptions.IsExempt(r.Method, r.URL.Path) {
		sw := newStatusWriter(w)
		g.forwarder.Forward(sw, r, route.Target, nil)
		g.observe(route, sw.status, start)
		return
	}

	result := g.authenticator.Authenticate(w, r)
	metrics.AuthOutcomes.WithLabelValues(result.Outcome.String()).Inc()

	if result.Outcome != auth.OutcomeSuccess {
		g.record(r, result, http.StatusUnauthorized)
		g.observe(route, http.StatusUnauthorized, start)
		httputil.WriteText(w, http.StatusUnauthorized, msgInvalidToken)
		return
	}

	sw := newStatusWriter(w)
	g.forwarder.Forward(sw, r, route.Target, result.Claims)
	g.record(r, result, sw.status)
	g.observe(route, sw.status, start)
}

// record logs one authentication decision and publishes it to the audit bus.
func (g *Gateway) record(r *http.Request, result auth.Result, status int) {
	ctx := r.Context()

	userID := ""
	if result.Claims != nil {
		userID = result.Claims.UserID
	}

	if result.Outcome == auth.OutcomeSuccess {
		g.log.InfoContext(ctx, "request authenticated",
			logging.Method(r.Method), logging.Path(r.URL.Path),
			logging.UserID(userID), logging.Outcome(result.Outcome.String()))
	} else {
		g.log.WarnContext(ctx, "request rejected",
			logging.Method(r.Method), logging.Path(r.URL.Path),
			logging.Outcome(result.Outcome.String()), logging.Status(status))
	}

	event := audit.Event{
		RequestID: middleware.GetRequestID(ctx),
		Timestamp: time.Now().UTC(),
		Method:    r.Method,
		Path:      r.URL.Path,
		UserID:    userID,
		Outcome:   result.Outcome.String(),
		Status:    status,
	}
	if err := g.publisher.Publish(ctx, event); err != nil {
		g.log.WarnContext(ctx, "audit publish failed", logging.Error(err))
	}
}

func (g *Gateway) observe(route config.Route, status int, start time.Time) {
	metrics.RequestsTotal.WithLabelValues(route.Prefix, strconv.Itoa(status)).Inc()
	metrics.RequestDuration.WithLabelValues(route.Prefix).Observe(time.Since(start).Seconds())
	if status == http.StatusBadGateway {
		metrics.ProxyErrors.WithLabelValues(route.Prefix).Inc()
	}
}

// statusWriter captures the status code written by the forwarder while
// passing Flush through so streamed responses keep streaming.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	return &statusWriter{ResponseWriter: w, status: http.StatusOK}
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
