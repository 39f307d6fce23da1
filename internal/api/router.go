package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/najdeno/internal/lifecycle"
	"github.com/erazemk/najdeno/internal/matching"
)

// Config holds the dependencies and limits of the API.
type Config struct {
	DB        *sql.DB
	JWTSecret string
	TokenTTL  time.Duration

	Matcher   *matching.Matcher
	Lifecycle *lifecycle.Manager

	// LoginEvery and LoginBurst rate limit login and registration per client.
	LoginEvery time.Duration
	LoginBurst int

	// RequestTimeout bounds each request; zero disables the bound.
	RequestTimeout time.Duration

	Logger *slog.Logger
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(cfg Config) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.LoginEvery <= 0 {
		cfg.LoginEvery = 12 * time.Second
	}
	if cfg.LoginBurst <= 0 {
		cfg.LoginBurst = 5
	}

	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: cfg.DB, JWTSecret: cfg.JWTSecret, TokenTTL: cfg.TokenTTL}
	usersHandler := &UsersHandler{DB: cfg.DB}
	categoriesHandler := &CategoriesHandler{DB: cfg.DB}
	itemsHandler := &ItemsHandler{DB: cfg.DB, Matcher: cfg.Matcher, Lifecycle: cfg.Lifecycle}
	claimsHandler := &ClaimsHandler{DB: cfg.DB, Lifecycle: cfg.Lifecycle}
	imagesHandler := &ImagesHandler{DB: cfg.DB}
	notificationsHandler := &NotificationsHandler{DB: cfg.DB}

	authMW := AuthMiddleware(cfg.JWTSecret, cfg.DB)
	limited := RateLimitMiddleware(cfg.LoginEvery, cfg.LoginBurst)
	user := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	admin := func(h http.HandlerFunc) http.Handler { return authMW(RequireAdmin(h)) }

	// Public.
	mux.Handle("POST /api/auth/login", limited(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /api/auth/register", limited(http.HandlerFunc(authHandler.Register)))

	// Account.
	mux.Handle("PUT /api/auth/password", user(authHandler.ChangePassword))
	mux.Handle("POST /api/auth/logout", user(authHandler.Logout))
	mux.Handle("GET /api/users/me", user(usersHandler.Me))
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("PUT /api/users/{id}/role", admin(usersHandler.UpdateRole))
	mux.Handle("DELETE /api/users/{id}", admin(usersHandler.Delete))

	// Categories.
	mux.Handle("GET /api/categories", user(categoriesHandler.List))
	mux.Handle("POST /api/categories", admin(categoriesHandler.Create))

	// Items.
	mux.Handle("GET /api/items", user(itemsHandler.List))
	mux.Handle("POST /api/items", user(itemsHandler.Create))
	mux.Handle("GET /api/items/{id}", user(itemsHandler.Get))
	mux.Handle("GET /api/items/{id}/matches", user(itemsHandler.Matches))
	mux.Handle("GET /api/items/{id}/history", user(itemsHandler.History))
	mux.Handle("PUT /api/items/{id}/resolve", admin(itemsHandler.Resolve))
	mux.Handle("PUT /api/items/{id}/archive", admin(itemsHandler.Archive))

	// Claims.
	mux.Handle("POST /api/items/{id}/claims", user(claimsHandler.Submit))
	mux.Handle("GET /api/items/{id}/claims", admin(claimsHandler.ListForItem))
	mux.Handle("GET /api/claims", admin(claimsHandler.List))
	mux.Handle("GET /api/claims/mine", user(claimsHandler.Mine))
	mux.Handle("GET /api/claims/{id}", user(claimsHandler.Get))
	mux.Handle("PUT /api/claims/{id}/decision", admin(claimsHandler.Decide))

	// Images.
	mux.Handle("POST /api/images", user(imagesHandler.Upload))
	mux.Handle("GET /api/images/{ref}", user(imagesHandler.Get))

	// Notifications.
	mux.Handle("GET /api/notifications", user(notificationsHandler.List))
	mux.Handle("PUT /api/notifications/{id}/read", user(notificationsHandler.MarkRead))

	var h http.Handler = mux
	if cfg.RequestTimeout > 0 {
		h = TimeoutMiddleware(cfg.RequestTimeout)(h)
	}
	return LoggingMiddleware(cfg.Logger)(h)
}
