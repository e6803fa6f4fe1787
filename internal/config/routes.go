package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Route maps a path prefix to a downstream service base URL. Routes are
// checked in declaration order; declare specific/public prefixes before
// generic fallbacks.
type Route struct {
	Prefix string `yaml:"prefix"`
	Target string `yaml:"target"`
}

// Exemption is a (method, path prefix) pair that bypasses authentication.
// Method "ANY" matches every method.
type Exemption struct {
	Method string `yaml:"method"`
	Path   string `yaml:"path"`
}

// RouteTable is the immutable routing configuration loaded at startup.
type RouteTable struct {
	Routes     []Route     `yaml:"routes"`
	Exemptions []Exemption `yaml:"exemptions"`
}

// LoadRouteTable reads the route table from path, or returns the built-in
// defaults when path is empty.
func LoadRouteTable(path string) (*RouteTable, error) {
	if path == "" {
		return DefaultRouteTable(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read route table: %w", err)
	}

	var table RouteTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse route table: %w", err)
	}

	if len(table.Routes) == 0 {
		return nil, fmt.Errorf("route table %s declares no routes", path)
	}
	for i, r := range table.Routes {
		if r.Prefix == "" || r.Target == "" {
			return nil, fmt.Errorf("route table %s: route %d missing prefix or target", path, i)
		}
	}
	for i, e := range table.Exemptions {
		if e.Path == "" {
			return nil, fmt.Errorf("route table %s: exemption %d missing path", path, i)
		}
	}

	return &table, nil
}

// DefaultRouteTable mirrors the platform's standard deployment: public member
// and auth traffic, the contest/team domain services, and auxiliary chat, AI
// and notification services.
func DefaultRouteTable() *RouteTable {
	return &RouteTable{
		Routes: []Route{
			{Prefix: "/dashboard", Target: "http://member-service:8081"},
			{Prefix: "/member", Target: "http://member-service:8081"},
			{Prefix: "/auth", Target: "http://member-service:8081"},
			{Prefix: "/stomp", Target: "http://chat-service:8085"},
			{Prefix: "/api/review", Target: "http://contest-service:8082"},
			{Prefix: "/api/post", Target: "http://contest-service:8082"},
			{Prefix: "/api/comments", Target: "http://contest-service:8082"},
			{Prefix: "/api/store", Target: "http://contest-service:8082"},
			{Prefix: "/api/contests", Target: "http://contest-service:8082"},
			{Prefix: "/api/favorites", Target: "http://contest-service:8082"},
			{Prefix: "/api/projectteams", Target: "http://team-service:8083"},
			{Prefix: "/api/team-applications", Target: "http://team-service:8083"},
			{Prefix: "/api/teammembers", Target: "http://team-service:8083"},
			{Prefix: "/api/teams", Target: "http://team-service:8083"},
			{Prefix: "/api/ai", Target: "http://ai-service:8084"},
			{Prefix: "/api/chat", Target: "http://chat-service:8085"},
			{Prefix: "/api/notifications", Target: "http://notification-service:8086"},
		},
		Exemptions: []Exemption{
			{Method: "ANY", Path: "/dashboard"},
			{Method: "ANY", Path: "/member"},
			{Method: "ANY", Path: "/auth"},
			{Method: "ANY", Path: "/stomp"},
			{Method: "ANY", Path: "/api/review"},
			{Method: "ANY", Path: "/api/post"},
			{Method: "ANY", Path: "/api/comments"},
			{Method: "ANY", Path: "/api/store"},
			{Method: "ANY", Path: "/api/projectteams"},
			{Method: "ANY", Path: "/api/team-applications"},
			{Method: "ANY", Path: "/api/teammembers"},
		},
	}
}
