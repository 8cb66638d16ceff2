package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/itchan-dev/agora/backend/internal/setup"
	mw "github.com/itchan-dev/agora/shared/middleware"
	"github.com/itchan-dev/agora/shared/middleware/metrics"
)

// New creates the chi router with all API routes.
// Limiters passed to Use apply to all routes of that group combined.
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(middleware.Compress(5, "application/json"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.Config.Public.CorsAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", mw.UserIdHeader},
		MaxAge:         300,
	}))
	r.Use(mw.SecurityHeaders(deps.Config.Public.SecureHeadersHTTPS))

	h := deps.Handler

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.GlobalRateLimit(deps.GlobalLimiter))

		r.Group(func(r chi.Router) {
			r.Use(mw.OptionalIdentity)
			r.Get("/threads", h.ListThreads)
			r.Get("/threads/{thread}", h.GetThread)
			r.Get("/threads/{thread}/posts", h.ListPosts)
			r.Get("/threads/{thread}/posts/{post}", h.GetPost)
			r.Get("/threads/{thread}/votes", h.GetThreadVotes)
			r.Get("/posts/{post}", h.FindPost)
			r.Get("/posts/{post}/children", h.GetChildren)
			r.Get("/posts/{post}/votes", h.GetPostVotes)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.NeedIdentity)
			r.Use(mw.RateLimit(deps.WriteLimiter, mw.GetUserIdentity))
			r.Post("/threads", h.CreateThread)
			r.Delete("/threads/{thread}", h.DeleteThread)
			r.Post("/threads/{thread}/posts", h.CreatePost)
			r.Delete("/threads/{thread}/posts/{post}", h.DeletePost)
			r.Post("/threads/{thread}/votes", h.CastThreadVote)
			r.Post("/posts/{post}/votes", h.CastPostVote)
		})
	})

	return r
}
