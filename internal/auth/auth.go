// Package auth implements the gateway's authentication pipeline: token
// extraction, signature/expiry validation, revocation-store lookup, and the
// transparent refresh-and-retry flow for expired tokens.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/contestapp/gateway/internal/logging"
	"github.com/contestapp/gateway/internal/metrics"
	"github.com/contestapp/gateway/internal/refresh"
	"github.com/contestapp/gateway/internal/revocation"
	"github.com/contestapp/gateway/internal/token"
)

const bearerPrefix = "Bearer "

// Outcome is the terminal state of an authentication attempt.
type Outcome int

const (
	// OutcomeSuccess means the token verified and the session is live.
	OutcomeSuccess Outcome = iota
	// OutcomeNoToken means the request carried no token at all.
	OutcomeNoToken
	// OutcomeInvalid means the token was malformed or signed with the wrong key.
	OutcomeInvalid
	// OutcomeExpired means the token's signature verified but its exp passed
	// and refresh did not produce a usable replacement.
	OutcomeExpired
	// OutcomeRevoked means the token verified but is absent from the session
	// store (logged out or invalidated server-side).
	OutcomeRevoked
)

// String returns the outcome name used in logs, metrics and audit events.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNoToken:
		return "no_token"
	case OutcomeInvalid:
		return "invalid_token"
	case OutcomeExpired:
		return "expired"
	case OutcomeRevoked:
		return "revoked"
	default:
		return "unknown"
	}
}

// Result is the outcome of the full pipeline. Claims is set only on success.
// Refreshed reports whether the accepted token came from a transparent
// refresh rather than the original request.
type Result struct {
	Outcome   Outcome
	Claims    *token.Claims
	Refreshed bool
}

// Refresher mints a new token pair from the caller's cookies.
// Satisfied by *refresh.Client.
type Refresher interface {
	Refresh(ctx context.Context, cookieHeader string) (*refresh.Result, error)
}

// Authenticator runs the token validation pipeline for one request at a time.
// It holds no per-request state and is safe for concurrent use.
type Authenticator struct {
	validator  *token.Validator
	store      revocation.Store
	refresher  Refresher
	cookieName string
	log        *logging.Logger
}

// NewAuthenticator wires the pipeline. cookieName is the session cookie
// carrying the access token (normally auth_token).
func NewAuthenticator(validator *token.Validator, store revocation.Store, refresher Refresher, cookieName string, log *logging.Logger) *Authenticator {
	return &Authenticator{
		validator:  validator,
		store:      store,
		refresher:  refresher,
		cookieName: cookieName,
		log:        log,
	}
}

// ExtractToken pulls the access token from the request: the session cookie is
// preferred, a bearer Authorization header is the accepted fallback.
func (a *Authenticator) ExtractToken(r *http.Request) (string, bool) {
	if c, err := r.Cookie(a.cookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, bearerPrefix) {
		if raw := h[len(bearerPrefix):]; raw != "" {
			return raw, true
		}
	}
	return "", false
}

// Authenticate runs the full pipeline for the request.
//
// An expired-but-otherwise-valid token triggers exactly one refresh against
// the upstream auth service: on success the upstream Set-Cookie headers are
// replayed onto w and the pipeline re-runs once against the new token. Every
// other failure, including a second expiry, rejects the request.
func (a *Authenticator) Authenticate(w http.ResponseWriter, r *http.Request) Result {
	ctx := r.Context()

	raw, ok := a.ExtractToken(r)
	if !ok {
		return Result{Outcome: OutcomeNoToken}
	}

	result := a.check(ctx, raw)
	if result.Outcome != OutcomeExpired {
		return result
	}

	refreshed, err := a.refresher.Refresh(ctx, r.Header.Get("Cookie"))
	if err != nil {
		metrics.RefreshAttempts.WithLabelValues("failure").Inc()
		a.log.WarnContext(ctx, "token refresh failed",
			logging.Method(r.Method), logging.Path(r.URL.Path), logging.Error(err))
		return Result{Outcome: OutcomeExpired}
	}
	metrics.RefreshAttempts.WithLabelValues("success").Inc()

	for _, cookie := range refreshed.SetCookies {
		w.Header().Add("Set-Cookie", cookie)
	}

	result = a.check(ctx, refreshed.Token)
	result.Refreshed = true
	if result.Outcome != OutcomeSuccess {
		result.Claims = nil
	}
	return result
}

// check validates a single token and consults the revocation store.
// It never refreshes; Authenticate owns the retry-once policy.
func (a *Authenticator) check(ctx context.Context, raw string) Result {
	claims, err := a.validator.Validate(raw)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrExpired):
			return Result{Outcome: OutcomeExpired}
		default:
			return Result{Outcome: OutcomeInvalid}
		}
	}

	if !a.store.Exists(ctx, raw) {
		return Result{Outcome: OutcomeRevoked}
	}

	return Result{Outcome: OutcomeSuccess, Claims: claims}
}
