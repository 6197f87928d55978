package server

import "testing"

func TestIsAuthRequired(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/api/healthz", false},
		{"/api/auth/login", false},
		{"/api/auth/logout", true},
		{"/api/auth/me", true},
		{"/api/events", true},
		{"/api/events/abc", true},
		{"/api/events/abc/quotes", true},
		{"/api/tasks", true},
		{"/api/expenses/summary", true},
		{"/api/push/dispatch", true},
		{"/api/sync/queue", true},
		// Unknown paths default to requiring auth
		{"/metrics", true},
		{"/", true},
	}

	for _, tt := range tests {
		if got := IsAuthRequired(tt.path); got != tt.want {
			t.Errorf("IsAuthRequired(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestPathMatchesPrefix(t *testing.T) {
	tests := []struct {
		path, prefix string
		want         bool
	}{
		{"/api", "/api", true},
		{"/api/events", "/api", true},
		{"/apifoo", "/api", false},
		{"/ap", "/api", false},
	}

	for _, tt := range tests {
		if got := pathMatchesPrefix(tt.path, tt.prefix); got != tt.want {
			t.Errorf("pathMatchesPrefix(%q, %q) = %v, want %v", tt.path, tt.prefix, got, tt.want)
		}
	}
}
