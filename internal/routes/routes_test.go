package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/saurab2057/Filetool/internal/app"
	"github.com/saurab2057/Filetool/internal/cloudconvert"
	"github.com/saurab2057/Filetool/internal/config"
	"github.com/saurab2057/Filetool/internal/db"
	"github.com/saurab2057/Filetool/internal/model"
	"github.com/saurab2057/Filetool/internal/service"
	"github.com/saurab2057/Filetool/internal/storage"
	"github.com/stretchr/testify/require"
)

const accessSecret = "test-access-secret"

// fakeConverter answers every conversion with a download URL, except for files
// named in fail.
type fakeConverter struct {
	fail map[string]bool
}

func (f fakeConverter) Convert(_ context.Context, conv cloudconvert.Conversion) (*cloudconvert.File, error) {
	if f.fail[conv.Filename] {
		return nil, &cloudconvert.JobError{Message: "Input file is corrupt."}
	}
	name := strings.TrimSuffix(conv.Filename, filepath.Ext(conv.Filename)) + "." + conv.To
	return &cloudconvert.File{
		Filename: name,
		Size:     int64(len(conv.Content)),
		URL:      "https://storage.example.com/" + name,
	}, nil
}

type testServer struct {
	handler http.Handler
	app     *app.App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	database, err := db.Init(ctx, "sqlite", filepath.Join(t.TempDir(), "routes.db")+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, db.RunMigrations(ctx, database.DB, "sqlite"))

	cfg := &config.Config{
		AppName:             "Filetool",
		AppEnv:              "development",
		FrontendURL:         "http://localhost:5173",
		DBDriver:            "sqlite",
		AccessTokenSecret:   accessSecret,
		RefreshTokenSecret:  "test-refresh-secret",
		ResetTokenSecret:    "test-reset-secret",
		AccessTokenTTL:      time.Minute,
		RefreshTokenTTL:     time.Hour,
		ResetTokenTTL:       time.Minute,
		GoogleUserInfoURL:   "http://127.0.0.1:0/userinfo",
		CloudConvertTimeout: 5 * time.Second,
		UploadMaxFiles:      5,
		UploadMaxFileSize:   1 << 20,
		EmailFrom:           "noreply@example.com",
		RateLimitAuth:       100,
		RateLimitWindow:     time.Minute,
	}

	a := app.Assemble(cfg, app.Deps{
		Repos:     app.SQLRepositories(database),
		Storage:   storage.Disabled{},
		Converter: fakeConverter{fail: map[string]bool{"broken.mov": true}},
	})
	return &testServer{handler: SetupRoutes(a), app: a}
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == service.RefreshCookieName {
			return c
		}
	}
	t.Fatalf("response has no %s cookie", service.RefreshCookieName)
	return nil
}

type loginResponse struct {
	AccessToken string         `json:"accessToken"`
	User        model.Identity `json:"user"`
}

// signupAndLogin registers email and returns the login response and refresh cookie.
func (s *testServer) signupAndLogin(t *testing.T, email string) (loginResponse, *http.Cookie) {
	t.Helper()
	rec := s.do(t, jsonRequest(t, http.MethodPost, "/auth/signup", map[string]string{
		"email":           email,
		"password":        "Passw0rd!",
		"confirmPassword": "Passw0rd!",
		"name":            "Ada",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, jsonRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": "Passw0rd!",
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp loginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp, refreshCookie(t, rec)
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Message
}

func batchRequest(t *testing.T, token, target string, names ...string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range names {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("content of " + name))
		require.NoError(t, err)
	}
	require.NoError(t, mw.WriteField("toFormat", target))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/convert/batch", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return withBearer(req, token)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t)
	login, cookie := s.signupAndLogin(t, "Ada@Example.com")
	require.Equal(t, "ada@example.com", login.User.Email)
	require.Equal(t, model.RoleUser, login.User.Role)
	require.True(t, cookie.HttpOnly)

	rec := s.do(t, withBearer(httptest.NewRequest(http.MethodGet, "/user", nil), login.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)

	// Refresh returns a new access token without rotating the cookie.
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh-token", nil)
	req.AddCookie(cookie)
	rec = s.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Logout twice: both succeed.
	for range 2 {
		req = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req.AddCookie(cookie)
		rec = s.do(t, req)
		require.Equal(t, http.StatusNoContent, rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/auth/refresh-token", nil)
	req.AddCookie(cookie)
	rec = s.do(t, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Invalid refresh token.", decodeMessage(t, rec))

	req = httptest.NewRequest(http.MethodPost, "/auth/refresh-token", nil)
	rec = s.do(t, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_Rejects(t *testing.T) {
	s := newTestServer(t)
	s.signupAndLogin(t, "ada@example.com")

	rec := s.do(t, jsonRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong",
	}))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, jsonRequest(t, http.MethodPost, "/auth/signup", map[string]string{
		"email":           "ada@example.com",
		"password":        "Passw0rd!",
		"confirmPassword": "Passw0rd!",
		"name":            "Ada",
	}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProtectedRoutes_TokenErrors(t *testing.T) {
	s := newTestServer(t)
	login, _ := s.signupAndLogin(t, "ada@example.com")

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/history", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Access token is missing.", decodeMessage(t, rec))

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   login.User.ID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}).SignedString([]byte(accessSecret))
	require.NoError(t, err)

	rec = s.do(t, withBearer(httptest.NewRequest(http.MethodGet, "/history", nil), expired))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Access token is invalid or expired.", decodeMessage(t, rec))
}

func TestConvertBatch(t *testing.T) {
	s := newTestServer(t)
	ada, _ := s.signupAndLogin(t, "ada@example.com")
	bob, _ := s.signupAndLogin(t, "bob@example.com")

	rec := s.do(t, batchRequest(t, ada.AccessToken, "MP4", "a.mov", "broken.mov", "c.avi"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var outcomes []model.ConversionOutcome
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&outcomes))
	require.Len(t, outcomes, 3)
	require.Equal(t, "a.mov", outcomes[0].OriginalName)
	require.True(t, outcomes[0].Success)
	require.Equal(t, "https://storage.example.com/a.mp4", outcomes[0].DownloadURL)
	require.False(t, outcomes[1].Success)
	require.Equal(t, "Input file is corrupt.", outcomes[1].Message)
	require.True(t, outcomes[2].Success)

	rec = s.do(t, withBearer(httptest.NewRequest(http.MethodGet, "/history", nil), ada.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)
	var history []model.ConversionJob
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&history))
	require.Len(t, history, 2)
	for _, job := range history {
		require.Equal(t, ada.User.ID, job.UserID)
		require.Equal(t, "mp4", job.Format)
	}

	// Bob sees none of Ada's jobs.
	rec = s.do(t, withBearer(httptest.NewRequest(http.MethodGet, "/history", nil), bob.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)
	history = nil
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&history))
	require.Empty(t, history)
}

func TestConvertBatch_Rejects(t *testing.T) {
	s := newTestServer(t)
	login, _ := s.signupAndLogin(t, "ada@example.com")

	rec := s.do(t, batchRequest(t, login.AccessToken, "", "a.mov"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Target output format was not specified.", decodeMessage(t, rec))

	rec = s.do(t, batchRequest(t, login.AccessToken, "mp4"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "No files were uploaded.", decodeMessage(t, rec))

	rec = s.do(t, batchRequest(t, login.AccessToken, "mp4", "1.mov", "2.mov", "3.mov", "4.mov", "5.mov", "6.mov"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminGate(t *testing.T) {
	s := newTestServer(t)
	login, _ := s.signupAndLogin(t, "ada@example.com")

	rec := s.do(t, withBearer(httptest.NewRequest(http.MethodGet, "/admin/users", nil), login.AccessToken))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Forbidden: Requires admin privileges.", decodeMessage(t, rec))

	// The role is read from the account on every request, so promotion applies
	// to the token already held.
	_, err := s.app.Repos.Accounts.UpdateAccess(context.Background(), login.User.ID, model.StatusActive, model.RoleAdmin)
	require.NoError(t, err)

	rec = s.do(t, withBearer(httptest.NewRequest(http.MethodGet, "/admin/users", nil), login.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, withBearer(httptest.NewRequest(http.MethodGet, "/admin/config", nil), login.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, withBearer(jsonRequest(t, http.MethodPut, "/admin/config", map[string]any{"maxJobsPerHour": 42}), login.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var saved struct {
		Config model.SystemSettings `json:"config"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&saved))
	require.Equal(t, 42, saved.Config.MaxJobsPerHour)
}

func TestBannedAccount(t *testing.T) {
	s := newTestServer(t)
	login, cookie := s.signupAndLogin(t, "ada@example.com")

	_, err := s.app.Repos.Accounts.UpdateAccess(context.Background(), login.User.ID, model.StatusBanned, model.RoleUser)
	require.NoError(t, err)

	rec := s.do(t, withBearer(httptest.NewRequest(http.MethodGet, "/user", nil), login.AccessToken))
	require.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh-token", nil)
	req.AddCookie(cookie)
	rec = s.do(t, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestForgotPassword_DoesNotRevealAccounts(t *testing.T) {
	s := newTestServer(t)
	s.signupAndLogin(t, "ada@example.com")

	var messages []string
	for _, email := range []string{"ada@example.com", "nobody@example.com"} {
		rec := s.do(t, jsonRequest(t, http.MethodPost, "/auth/forgot-password", map[string]string{"email": email}))
		require.Equal(t, http.StatusOK, rec.Code)
		messages = append(messages, decodeMessage(t, rec))
	}
	require.Equal(t, messages[0], messages[1])
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
