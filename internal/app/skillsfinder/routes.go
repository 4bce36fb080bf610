// Package skillsfinder предоставляет маршруты для основного приложения.
package skillsfinder

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/skillsfinder/skillsfinder/internal/http/handlers/auth/forgotpassword"
	"github.com/skillsfinder/skillsfinder/internal/http/handlers/auth/login"
	"github.com/skillsfinder/skillsfinder/internal/http/handlers/auth/logout"
	"github.com/skillsfinder/skillsfinder/internal/http/handlers/auth/provider"
	"github.com/skillsfinder/skillsfinder/internal/http/handlers/auth/register"
	"github.com/skillsfinder/skillsfinder/internal/http/handlers/auth/resetpassword"
	"github.com/skillsfinder/skillsfinder/internal/http/handlers/auth/verifytoken"
	"github.com/skillsfinder/skillsfinder/internal/http/handlers/health"
	"github.com/skillsfinder/skillsfinder/internal/http/handlers/loan/active"
	"github.com/skillsfinder/skillsfinder/internal/http/handlers/loan/borrow"
	"github.com/skillsfinder/skillsfinder/internal/http/handlers/loan/resetall"
	"github.com/skillsfinder/skillsfinder/internal/http/handlers/loan/returnloan"
	"github.com/skillsfinder/skillsfinder/internal/http/handlers/match/teammates"
	"github.com/skillsfinder/skillsfinder/internal/http/handlers/member/list"
	"github.com/skillsfinder/skillsfinder/internal/http/handlers/member/read"
	"github.com/skillsfinder/skillsfinder/internal/http/handlers/member/remove"
	"github.com/skillsfinder/skillsfinder/internal/http/handlers/member/search"
	"github.com/skillsfinder/skillsfinder/internal/http/handlers/member/setrole"
	"github.com/skillsfinder/skillsfinder/internal/http/handlers/member/skills"
	"github.com/skillsfinder/skillsfinder/internal/http/handlers/member/toggleactive"
	"github.com/skillsfinder/skillsfinder/internal/http/handlers/member/tools"
	"github.com/skillsfinder/skillsfinder/internal/http/handlers/profile/current"
	"github.com/skillsfinder/skillsfinder/internal/http/handlers/profile/update"
	"github.com/skillsfinder/skillsfinder/internal/http/middlewarectx"
	directoryservice "github.com/skillsfinder/skillsfinder/internal/services/directory"
	sessionservice "github.com/skillsfinder/skillsfinder/internal/services/session"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, sessions *sessionservice.SessionService, members *directoryservice.DirectoryService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, sessions).ServeHTTP)
		r.Post("/login", login.New(logger, sessions).ServeHTTP)
		r.Post("/login/provider", provider.New(logger, sessions).ServeHTTP)
		r.Post("/auth/forgot-password", forgotpassword.New(logger, sessions).ServeHTTP)
		r.Post("/auth/reset-password", resetpassword.New(logger, sessions).ServeHTTP)
		r.Get("/auth/reset-password/verify", verifytoken.New(logger, sessions).ServeHTTP)
		r.Get("/health", health.New(logger).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(sessions, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/logout", logout.New(logger, sessions).ServeHTTP)
			r.Get("/session", current.New(logger, sessions).ServeHTTP)
			r.Put("/profile", update.New(logger, sessions).ServeHTTP)
			r.Get("/members", list.New(logger, members).ServeHTTP)
			r.Get("/members/search", search.New(logger, members).ServeHTTP)
			r.Get("/members/{id}", read.New(logger, members).ServeHTTP)
			r.Get("/skills", skills.New(logger, members).ServeHTTP)
			r.Get("/tools", tools.New(logger, members).ServeHTTP)
			r.Post("/teammates/match", teammates.New(logger, sessions).ServeHTTP)
			r.Post("/loans/borrow", borrow.New(logger, members).ServeHTTP)
			r.Post("/loans/return", returnloan.New(logger, members).ServeHTTP)
			r.Get("/loans/active", active.New(logger, members).ServeHTTP)

			// Административные конечные точки
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Delete("/members/{id}", remove.New(logger, members).ServeHTTP)
				r.Post("/members/{id}/toggle-active", toggleactive.New(logger, members).ServeHTTP)
				r.Put("/members/{id}/role", setrole.New(logger, members).ServeHTTP)
				r.Post("/loans/reset", resetall.New(logger, members).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
