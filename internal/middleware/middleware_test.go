package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/saurab2057/Filetool/internal/ctxkeys"
	"github.com/saurab2057/Filetool/internal/metrics"
	"github.com/saurab2057/Filetool/internal/model"
	"github.com/saurab2057/Filetool/internal/repository"
	"github.com/saurab2057/Filetool/internal/service"
	"github.com/saurab2057/Filetool/mocks"
	"github.com/stretchr/testify/require"
)

func newSessions(t *testing.T) (*service.SessionService, *mocks.MockAccountRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountRepository(ctrl)
	return service.NewSessionService(accounts, service.SessionConfig{
		AccessSecret:  "access",
		RefreshSecret: "refresh",
		ResetSecret:   "reset",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		ResetTTL:      time.Minute,
	}, nil), accounts
}

func issueAccess(t *testing.T, sessions *service.SessionService, accounts *mocks.MockAccountRepository, account *model.Account) string {
	t.Helper()
	accounts.EXPECT().SetRefreshToken(gomock.Any(), account.ID, gomock.Any()).Return(nil)
	session, err := sessions.IssueSession(context.Background(), account)
	require.NoError(t, err)
	return session.AccessToken
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body["message"]
}

func TestAuthenticate(t *testing.T) {
	sessions, accounts := newSessions(t)
	account := &model.Account{ID: "u1", Email: "ada@example.com", Role: model.RoleUser, Status: model.StatusActive}
	token := issueAccess(t, sessions, accounts, account)

	var seen *model.Identity
	h := Authenticate(sessions)(func(w http.ResponseWriter, r *http.Request) {
		seen = ctxkeys.Identity(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/history", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Access token is missing.", decodeMessage(t, rec))
	})

	t.Run("invalid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/history", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		h(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("account gone", func(t *testing.T) {
		accounts.EXPECT().ByID(gomock.Any(), "u1").Return(nil, repository.ErrAccountNotFound)
		req := httptest.NewRequest(http.MethodGet, "/history", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("ok", func(t *testing.T) {
		accounts.EXPECT().ByID(gomock.Any(), "u1").Return(account, nil)
		req := httptest.NewRequest(http.MethodGet, "/history", nil)
		req.Header.Set("Authorization", "bearer "+token)
		rec := httptest.NewRecorder()
		h(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "u1", seen.ID)
	})
}

func TestRequireRole(t *testing.T) {
	sessions, _ := newSessions(t)
	h := RequireRole(sessions, model.RoleAdmin)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req = req.WithContext(ctxkeys.WithIdentity(req.Context(), &model.Identity{ID: "u1", Role: model.RoleUser}))
	rec := httptest.NewRecorder()
	h(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Forbidden: Requires admin privileges.", decodeMessage(t, rec))

	req = req.WithContext(ctxkeys.WithIdentity(req.Context(), &model.Identity{ID: "u2", Role: model.RoleAdmin}))
	rec = httptest.NewRecorder()
	h(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCORS(t *testing.T) {
	h := CORS("http://localhost:5173/")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	req = httptest.NewRequest(http.MethodGet, "/history", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDAndRecover(t *testing.T) {
	var seen string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ctxkeys.RequestID(r.Context())
		panic("boom")
	}), RequestID, Recover, RequestLogging)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotEmpty(t, seen)
	require.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	require.Equal(t, "Internal server error", decodeMessage(t, rec))

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "abc-123", seen)
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	m := metrics.New()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := Chain(mux, RequestLogging, Metrics(m))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/42", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	var found bool
	for _, f := range families {
		if f.GetName() != "filetool_http_requests_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			for _, l := range metric.GetLabel() {
				if l.GetName() == "route" && l.GetValue() == "GET /users/{id}" {
					found = true
				}
			}
		}
	}
	require.True(t, found)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[2001:db8::1]:4321"
	require.Equal(t, "2001:db8::1", ClientIP(req, false))
	require.Equal(t, "2001:db8::1", ClientIP(req, true))

	req.Header.Set("X-Real-IP", "198.51.100.2")
	require.Equal(t, "2001:db8::1", ClientIP(req, false))
	require.Equal(t, "198.51.100.2", ClientIP(req, true))

	// A client-supplied first entry is ignored; the proxy appends the real peer.
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	require.Equal(t, "2001:db8::1", ClientIP(req, false))
	require.Equal(t, "10.0.0.1", ClientIP(req, true))
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(2, time.Minute, false)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "203.0.113.5:1000"
		rec := httptest.NewRecorder()
		h(rec, req)
		codes = append(codes, rec.Code)
	}
	require.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "203.0.113.6:1000"
	rec := httptest.NewRecorder()
	h(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_IgnoresSpoofedHeaders(t *testing.T) {
	h := RateLimit(1, time.Minute, false)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	codes := make([]int, 0, 2)
	for _, spoofed := range []string{"198.51.100.1", "198.51.100.2"} {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "203.0.113.5:1000"
		req.Header.Set("X-Forwarded-For", spoofed)
		req.Header.Set("X-Real-IP", spoofed)
		rec := httptest.NewRecorder()
		h(rec, req)
		codes = append(codes, rec.Code)
	}
	require.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}
