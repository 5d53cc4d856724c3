package routes

import (
	"net/http"

	"github.com/saurab2057/Filetool/internal/app"
	"github.com/saurab2057/Filetool/internal/handler"
	"github.com/saurab2057/Filetool/internal/middleware"
	"github.com/saurab2057/Filetool/internal/model"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService, app.SessionService, app.Cfg.TrustProxyHeaders)
	convert := handler.NewConvertHandler(app.ConversionService, app.Cfg.UploadMaxFiles, app.Cfg.UploadMaxFileSize)
	user := handler.NewUserHandler(app.UserService)
	admin := handler.NewAdminHandler(app.AdminService)

	// Middleware
	rateLimiter := middleware.RateLimit(app.Cfg.RateLimitAuth, app.Cfg.RateLimitWindow, app.Cfg.TrustProxyHeaders)
	requireAuth := middleware.Authenticate(app.SessionService)
	requireAdmin := func(next http.HandlerFunc) http.HandlerFunc {
		return requireAuth(middleware.RequireRole(app.SessionService, model.RoleAdmin)(next))
	}

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /health", handler.Health)
	if app.Metrics != nil {
		mux.Handle("GET /metrics", app.Metrics.Handler())
	}

	// Auth (rate limited)
	mux.HandleFunc("POST /auth/signup", rateLimiter(auth.Signup))
	mux.HandleFunc("POST /auth/login", rateLimiter(auth.Login))
	mux.HandleFunc("POST /auth/google", rateLimiter(auth.Google))
	mux.HandleFunc("POST /auth/forgot-password", rateLimiter(auth.ForgotPassword))
	mux.HandleFunc("POST /auth/reset-password", rateLimiter(auth.ResetPassword))

	// Session (cookie based)
	mux.HandleFunc("POST /auth/refresh-token", auth.RefreshToken)
	mux.HandleFunc("POST /auth/logout", auth.Logout)

	// ============================================================================
	// PROTECTED ROUTES (bearer access token)
	// ============================================================================

	mux.HandleFunc("POST /convert/batch", requireAuth(convert.Batch))
	mux.HandleFunc("GET /history", requireAuth(convert.History))
	mux.HandleFunc("GET /user", requireAuth(user.Me))
	mux.HandleFunc("PUT /user/profile", requireAuth(user.UpdateProfile))

	// ============================================================================
	// ADMIN ROUTES
	// ============================================================================

	mux.HandleFunc("GET /admin/config", requireAdmin(admin.Config))
	mux.HandleFunc("PUT /admin/config", requireAdmin(admin.UpdateConfig))
	mux.HandleFunc("GET /admin/users", requireAdmin(admin.Users))
	mux.HandleFunc("PUT /admin/users/{id}", requireAdmin(admin.UpdateUser))
	mux.HandleFunc("GET /admin/jobs", requireAdmin(admin.Jobs))

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.Recover,
		middleware.RequestLogging,
		middleware.Metrics(app.Metrics),
		middleware.CORS(app.Cfg.FrontendURL),
	)
}
