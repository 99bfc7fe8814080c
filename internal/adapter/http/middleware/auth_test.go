package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/auth"
	"github.com/iho/coopledger/internal/infrastructure/metrics"
)

func captureActor(got *domain.Actor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := domain.ActorFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		*got = actor
	})
}

func TestAuthenticate_Disabled(t *testing.T) {
	testCases := []struct {
		name     string
		headers  map[string]string
		expected domain.Actor
	}{
		{
			name:     "defaults to system actor",
			expected: domain.SystemActor,
		},
		{
			name:     "actor header with role",
			headers:  map[string]string{ActorHeader: "alice", ActorRoleHeader: "viewer"},
			expected: domain.Actor{ID: "alice", Role: domain.RoleViewer},
		},
		{
			name:     "unknown role falls back to admin",
			headers:  map[string]string{ActorHeader: "bob", ActorRoleHeader: "root"},
			expected: domain.Actor{ID: "bob", Role: domain.RoleAdmin},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := NewAuthenticator(nil, false, nil)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/periods", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			var got domain.Actor
			rr := httptest.NewRecorder()
			a.Authenticate(captureActor(&got)).ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rr.Code)
			}
			if got != tc.expected {
				t.Fatalf("expected actor %+v, got %+v", tc.expected, got)
			}
		})
	}
}

func TestAuthenticate_Enabled(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	token, err := jwtManager.Generate(domain.Actor{ID: "acct-1", Email: "a@coop.test", Role: domain.RoleAccountant})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	testCases := []struct {
		name       string
		header     string
		wantStatus int
		wantReason string
	}{
		{name: "valid token", header: "Bearer " + token, wantStatus: http.StatusOK},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized, wantReason: "missing_header"},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantReason: "bad_format"},
		{name: "garbage token", header: "Bearer not-a-jwt", wantStatus: http.StatusUnauthorized, wantReason: "invalid_token"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := metrics.NewWithRegisterer(prometheus.NewRegistry())
			a := NewAuthenticator(jwtManager, true, m)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/periods", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			// Ignored while auth is enabled.
			req.Header.Set(ActorHeader, "spoofed")

			var got domain.Actor
			rr := httptest.NewRecorder()
			a.Authenticate(captureActor(&got)).ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rr.Code)
			}
			if tc.wantReason != "" {
				if v := testutil.ToFloat64(m.AuthFailures.WithLabelValues(tc.wantReason)); v != 1 {
					t.Fatalf("expected auth failure %q counted once, got %v", tc.wantReason, v)
				}
				return
			}
			if got.ID != "acct-1" || got.Role != domain.RoleAccountant {
				t.Fatalf("unexpected actor %+v", got)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	guard := RequireRole(domain.Role.CanManageAccounts)(next)

	testCases := []struct {
		name       string
		actor      *domain.Actor
		wantStatus int
	}{
		{name: "no actor", wantStatus: http.StatusUnauthorized},
		{name: "viewer", actor: &domain.Actor{ID: "v", Role: domain.RoleViewer}, wantStatus: http.StatusForbidden},
		{name: "admin", actor: &domain.Actor{ID: "a", Role: domain.RoleAdmin}, wantStatus: http.StatusNoContent},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/audit-logs", nil)
			if tc.actor != nil {
				req = req.WithContext(domain.ContextWithActor(req.Context(), *tc.actor))
			}

			rr := httptest.NewRecorder()
			guard.ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rr.Code)
			}
		})
	}
}
