// Package proxy forwards requests to downstream platform services, streaming
// bodies in both directions.
package proxy

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/contestapp/gateway/internal/logging"
	"github.com/contestapp/gateway/internal/token"
)

// Identity headers injected on authenticated requests. Client-supplied values
// of these names are always stripped so identity cannot be spoofed.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUsername = "X-User-Username"
	HeaderUserRole = "X-User-Role"
)

// Forwarder builds and sends downstream requests and streams the responses
// back to the client.
type Forwarder struct {
	httpClient *http.Client
	log        *logging.Logger
}

// NewForwarder creates a Forwarder with a bounded downstream timeout.
func NewForwarder(timeout time.Duration, log *logging.Logger) *Forwarder {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Forwarder{
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Forward sends the request to targetBase preserving method, path, query and
// body, and streams the downstream response back to the client.
//
// The outbound request reuses the inbound request context, so a client
// disconnect aborts the downstream call. The body is handed to the transport
// as a stream, never buffered. identity, when non-nil, is injected as the
// X-User-* headers; client-sent values of those headers are dropped either way.
func (f *Forwarder) Forward(w http.ResponseWriter, r *http.Request, targetBase string, identity *token.Claims) {
	ctx := r.Context()

	targetURL := targetBase + r.URL.Path
	if r.URL.RawQuery != "" {
		targetURL += "?" + r.URL.RawQuery
	}

	proxyReq, err := http.NewRequestWithContext(ctx, r.Method, targetURL, r.Body)
	if err != nil {
		f.log.ErrorContext(ctx, "proxy request creation failed",
			logging.Method(r.Method), logging.Path(r.URL.Path), logging.Error(err))
		http.Error(w, "An unexpected error occurred", http.StatusInternalServerError)
		return
	}
	// Let the transport recompute Content-Length from the stream; r.Body gives
	// no length for chunked uploads.
	proxyReq.ContentLength = r.ContentLength

	for key, values := range r.Header {
		for _, value := range values {
			proxyReq.Header.Add(key, value)
		}
	}

	setIdentityHeaders(proxyReq.Header, identity)

	resp, err := f.httpClient.Do(proxyReq)
	if err != nil {
		if ctx.Err() != nil {
			// Client went away; nobody is listening for a response.
			f.log.DebugContext(ctx, "proxy request cancelled by client",
				logging.Method(r.Method), logging.Path(r.URL.Path))
			return
		}
		f.log.ErrorContext(ctx, "downstream request failed",
			logging.Method(r.Method), logging.Path(r.URL.Path), logging.Error(err))
		http.Error(w, "Bad gateway", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	copyResponseHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil && !errors.Is(err, context.Canceled) {
		// Headers are already written; all we can do is log.
		f.log.WarnContext(ctx, "response stream interrupted",
			logging.Method(r.Method), logging.Path(r.URL.Path), logging.Error(err))
	}
}

// setIdentityHeaders strips any client-supplied identity headers and, when
// claims are present, sets them from the authenticated token. Set is
// idempotent, so repeated injection cannot produce duplicate headers.
func setIdentityHeaders(h http.Header, identity *token.Claims) {
	h.Del(HeaderUserID)
	h.Del(HeaderUsername)
	h.Del(HeaderUserRole)

	if identity == nil {
		return
	}

	h.Set(HeaderUserID, identity.UserID)
	h.Set(HeaderUsername, identity.Username)
	if identity.Role != "" {
		h.Set(HeaderUserRole, identity.Role)
	}
}

// copyResponseHeaders copies downstream response headers to the client,
// skipping Transfer-Encoding: the transport recomputes it for the client
// connection and copying it verbatim corrupts chunked responses.
func copyResponseHeaders(dst, src http.Header) {
	for key, values := range src {
		if http.CanonicalHeaderKey(key) == "Transfer-Encoding" {
			continue
		}
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}
