// Package httpapi exposes the account and catalog operations over a
// JSON HTTP API.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/AelaNieve/appsalon/internal/account"
	"github.com/AelaNieve/appsalon/internal/catalog"
)

// NewRouter assembles the API. RealIP runs first so the registration
// throttle keys on the client address, not the proxy's.
func NewRouter(engine *account.Engine, services *catalog.Usecase, log zerolog.Logger) http.Handler {
	validate := validator.New(validator.WithRequiredStructEnabled())

	auth := &authHandler{engine: engine, validate: validate, log: log}
	svc := &servicesHandler{catalog: services, validate: validate, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", auth.register)
		r.Get("/verify/{token}", auth.verify)
		r.Post("/login", auth.login)
		r.Post("/request-delete-account", auth.requestDeletion)
		r.Delete("/confirm-delete-account/{token}", auth.confirmDeletion)
		r.Post("/forgot-password", auth.forgotPassword)
		r.Post("/reset-password/{token}", auth.resetPassword)
	})

	r.Route("/api/services", func(r chi.Router) {
		r.Post("/", svc.create)
		r.Get("/", svc.list)
		r.Get("/{id}", svc.get)
		r.Put("/{id}", svc.update)
		r.Delete("/{id}", svc.delete)
	})

	return r
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("elapsed", time.Since(start)).
				Str("remote", r.RemoteAddr).
				Msg("request")
		})
	}
}
