package server

import (
	"strings"

	"github.com/contestapp/gateway/internal/config"
)

// routeMatcher resolves request paths to downstream targets. The table is
// fixed at construction and consulted read-only per request.
type routeMatcher struct {
	routes []config.Route
}

func newRouteMatcher(routes []config.Route) *routeMatcher {
	owned := make([]config.Route, len(routes))
	copy(owned, routes)
	return &routeMatcher{routes: owned}
}

// Match returns the first route whose prefix matches the path, in declaration
// order. Specific and public prefixes are expected to be declared before
// generic fallbacks; declaration order is the tiebreak.
func (m *routeMatcher) Match(path string) (config.Route, bool) {
	for _, route := range m.routes {
		if strings.HasPrefix(path, route.Prefix) {
			return route, true
		}
	}
	return config.Route{}, false
}
