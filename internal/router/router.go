package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/itchan-dev/askanon/internal/setup"
	mw "github.com/itchan-dev/askanon/shared/middleware"
	"github.com/itchan-dev/askanon/shared/middleware/metrics"
)

// New creates the router with the JSON API under /v1, the HTML pages at the
// root and the operational endpoints.
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)

	secure := deps.Config.Public.SecureCookies
	h := deps.Handler
	f := deps.Frontend

	// write endpoints are limited per client ip when configured
	limitWrites := func(next http.Handler) http.Handler { return next }
	if deps.WriteLimiter != nil {
		limitWrites = mw.RateLimit(deps.WriteLimiter, mw.GetIP)
	}

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins(deps.Config.Public.AllowedOrigins),
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
		v1.Use(mw.SecurityHeadersWithCSP(secure, mw.APICSP))

		v1.Get("/public_config", h.GetPublicConfig)
		v1.Get("/questions", h.GetQuestions)
		v1.Get("/questions/stream", h.StreamQuestions)

		v1.With(limitWrites).Post("/questions", h.CreateQuestion)
		v1.With(limitWrites).Post("/questions/{questionId}/replies", h.CreateReply)
	})

	r.Group(func(pages chi.Router) {
		pages.Use(chimw.Compress(5, "text/html"))
		pages.Use(mw.SecurityHeadersWithCSP(secure, mw.PageCSP))
		pages.Use(mw.GenerateCSRFToken(secure))

		pages.Get("/", f.IndexGetHandler)

		pages.Group(func(forms chi.Router) {
			forms.Use(mw.ValidateCSRFToken())
			forms.Use(limitWrites)
			forms.Post("/questions", f.QuestionPostHandler)
			forms.Post("/questions/{questionId}/replies", f.ReplyPostHandler)
		})
	})

	return r
}

// allowedOrigins keeps the permissive default of a local dev server.
func allowedOrigins(configured []string) []string {
	if len(configured) == 0 {
		return []string{"*"}
	}
	return configured
}
