// Package refresh calls the upstream auth service to mint a new token pair
// when a client presents an expired access token.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrRefreshFailed is returned when the upstream auth service rejects the
// refresh attempt or cannot be reached.
var ErrRefreshFailed = errors.New("token refresh failed")

// Result carries the outcome of a successful refresh: the verbatim Set-Cookie
// headers to replay onto the client response, and the new access token parsed
// out of those cookies.
//
// The new token is read from the upstream Set-Cookie headers explicitly rather
// than from mutated request cookies, so the flow does not depend on the HTTP
// layer exposing rewritten inbound state.
type Result struct {
	SetCookies []string
	Token      string
}

// Client calls the auth service's refresh endpoint.
type Client struct {
	baseURL     string
	refreshPath string
	cookieName  string
	httpClient  *http.Client
}

// NewClient creates a refresh client for the auth service at baseURL.
// cookieName is the cookie carrying the access token (normally auth_token).
func NewClient(baseURL, refreshPath, cookieName string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:     baseURL,
		refreshPath: refreshPath,
		cookieName:  cookieName,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// Refresh posts the inbound Cookie header verbatim to the auth service's
// refresh endpoint. A 2xx response yields the new Set-Cookie headers and the
// refreshed access token; anything else is ErrRefreshFailed.
func (c *Client) Refresh(ctx context.Context, cookieHeader string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.refreshPath, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	if cookieHeader != "" {
		req.Header.Set("Cookie", cookieHeader)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: upstream returned %d", ErrRefreshFailed, resp.StatusCode)
	}

	result := &Result{
		SetCookies: resp.Header.Values("Set-Cookie"),
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == c.cookieName {
			result.Token = cookie.Value
		}
	}
	if result.Token == "" {
		return nil, fmt.Errorf("%w: no %s cookie in upstream response", ErrRefreshFailed, c.cookieName)
	}

	return result, nil
}
