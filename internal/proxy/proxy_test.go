package proxy

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contestapp/gateway/internal/logging"
	"github.com/contestapp/gateway/internal/token"
)

func newTestForwarder() *Forwarder {
	return NewForwarder(5*time.Second, logging.Default())
}

func TestForward_BasicProxying(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message": "success"}`))
	}))
	defer backend.Close()

	f := newTestForwarder()
	req := httptest.NewRequest("GET", "/api/contests/1", nil)
	rr := httptest.NewRecorder()

	f.Forward(rr, req, backend.URL, nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `{"message": "success"}`, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestForward_PreservesMethodPathAndQuery(t *testing.T) {
	var gotMethod, gotPath, gotQuery string

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	f := newTestForwarder()

	for _, method := range []string{"GET", "POST", "PUT", "PATCH", "DELETE"} {
		t.Run(method, func(t *testing.T) {
			req := httptest.NewRequest(method, "/api/teams/42/members?page=2&size=10", nil)
			f.Forward(httptest.NewRecorder(), req, backend.URL, nil)

			assert.Equal(t, method, gotMethod)
			assert.Equal(t, "/api/teams/42/members", gotPath)
			assert.Equal(t, "page=2&size=10", gotQuery)
		})
	}
}

func TestForward_StreamsRequestBody(t *testing.T) {
	var gotBody string

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer backend.Close()

	f := newTestForwarder()
	req := httptest.NewRequest("POST", "/api/applications", strings.NewReader(`{"team_id":7}`))
	rr := httptest.NewRecorder()

	f.Forward(rr, req, backend.URL, nil)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, `{"team_id":7}`, gotBody)
}

func TestForward_CopiesRequestHeaders(t *testing.T) {
	var gotAccept, gotCustom string

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotCustom = r.Header.Get("X-Trace-Hint")
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	f := newTestForwarder()
	req := httptest.NewRequest("GET", "/api/contests", nil)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Trace-Hint", "check")

	f.Forward(httptest.NewRecorder(), req, backend.URL, nil)

	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "check", gotCustom)
}

func TestForward_InjectsIdentityHeaders(t *testing.T) {
	var gotUserID, gotUsername, gotRole []string

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = r.Header.Values(HeaderUserID)
		gotUsername = r.Header.Values(HeaderUsername)
		gotRole = r.Header.Values(HeaderUserRole)
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	f := newTestForwarder()
	req := httptest.NewRequest("GET", "/api/teams", nil)
	// Spoofing attempt: client-sent identity must be replaced, not merged.
	req.Header.Set(HeaderUserID, "intruder")
	req.Header.Set(HeaderUsername, "intruder")
	req.Header.Set(HeaderUserRole, "admin")

	f.Forward(httptest.NewRecorder(), req, backend.URL, &token.Claims{
		UserID:   "u1",
		Username: "alice",
		Role:     "member",
	})

	assert.Equal(t, []string{"u1"}, gotUserID)
	assert.Equal(t, []string{"alice"}, gotUsername)
	assert.Equal(t, []string{"member"}, gotRole)
}

func TestForward_OmitsRoleHeaderWhenClaimAbsent(t *testing.T) {
	var hasRole bool

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasRole = r.Header[HeaderUserRole]
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	f := newTestForwarder()
	req := httptest.NewRequest("GET", "/api/teams", nil)
	req.Header.Set(HeaderUserRole, "admin")

	f.Forward(httptest.NewRecorder(), req, backend.URL, &token.Claims{UserID: "u1"})

	assert.False(t, hasRole, "client-sent role must be stripped, not forwarded")
}

func TestForward_StripsIdentityHeadersOnAnonymousRequests(t *testing.T) {
	var gotUserID string

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = r.Header.Get(HeaderUserID)
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	f := newTestForwarder()
	req := httptest.NewRequest("GET", "/member/42", nil)
	req.Header.Set(HeaderUserID, "intruder")

	f.Forward(httptest.NewRecorder(), req, backend.URL, nil)

	assert.Empty(t, gotUserID)
}

func TestForward_CopiesResponseHeadersAndStatus(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Total-Count", "37")
		w.Header().Add("Set-Cookie", "a=1")
		w.Header().Add("Set-Cookie", "b=2")
		w.WriteHeader(http.StatusTeapot)
	}))
	defer backend.Close()

	f := newTestForwarder()
	rr := httptest.NewRecorder()

	f.Forward(rr, httptest.NewRequest("GET", "/api/contests", nil), backend.URL, nil)

	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Equal(t, "37", rr.Header().Get("X-Total-Count"))
	assert.Equal(t, []string{"a=1", "b=2"}, rr.Header().Values("Set-Cookie"))
}

func TestForward_DoesNotCopyTransferEncoding(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Force a chunked response so the backend emits Transfer-Encoding.
		w.(http.Flusher).Flush()
		w.Write([]byte("part1"))
		w.(http.Flusher).Flush()
		w.Write([]byte("part2"))
	}))
	defer backend.Close()

	f := newTestForwarder()
	rr := httptest.NewRecorder()

	f.Forward(rr, httptest.NewRequest("GET", "/api/contests", nil), backend.URL, nil)

	assert.Equal(t, "part1part2", rr.Body.String())
	assert.Empty(t, rr.Header().Values("Transfer-Encoding"))
}

func TestForward_DownstreamUnreachable(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	backend.Close()

	f := newTestForwarder()
	rr := httptest.NewRecorder()

	f.Forward(rr, httptest.NewRequest("GET", "/api/contests", nil), backend.URL, nil)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestForward_ClientCancellationPropagates(t *testing.T) {
	downstreamCancelled := make(chan struct{})

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		close(downstreamCancelled)
	}))
	defer backend.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/api/contests/export", nil).WithContext(ctx)
	rr := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		newTestForwarder().Forward(rr, req, backend.URL, nil)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Forward did not return after client cancellation")
	}

	select {
	case <-downstreamCancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("downstream call was not cancelled")
	}

	// No error response is written for a cancelled request.
	require.Empty(t, rr.Body.String())
}
