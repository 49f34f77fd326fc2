// Package httpapi exposes the platform operations as a JSON API over HTTP.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"jobmatrimony/access"
	"jobmatrimony/platform"
)

type Options struct {
	RateLimitPerMin int
	CORSOrigins     []string
	RequestTimeout  time.Duration
}

// NewRouter builds the HTTP handler with middlewares and routes.
func NewRouter(opts Options, svc *platform.Service, tokens *access.Tokens, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	h := &handlers{svc: svc}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger.Named("http")))
	r.Use(Metrics)
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(Authenticate(tokens))
		if opts.RateLimitPerMin > 0 {
			v1.Use(httprate.LimitByIP(opts.RateLimitPerMin, time.Minute))
		}

		v1.Post("/access/initialize", h.initialize)

		v1.Route("/me", func(me chi.Router) {
			me.Get("/role", h.callerRole)
			me.Get("/admin", h.isAdmin)
			me.Get("/profile", h.callerProfile)
			me.Put("/profile", h.saveCallerProfile)
			me.Put("/profile/job", h.saveJobProfile)
			me.Put("/profile/matrimonial", h.saveMatrimonialProfile)
			me.Get("/applications", h.callerApplications)
			me.Get("/interests/sent", h.sentInterests)
			me.Get("/interests/received", h.receivedInterests)
			me.Get("/matches", h.callerMatches)
			me.Get("/messages/{other}", h.callerMessages)
			me.Get("/recommendations", h.recommendations)
			me.Get("/recommendations/jobs", h.recommendedJobs)
			me.Get("/recommendations/matches", h.recommendedMatches)
		})

		v1.Route("/users", func(u chi.Router) {
			u.Get("/", h.listUsers)
			u.Delete("/{id}", h.deleteUser)
			u.Put("/{id}/role", h.assignRole)
			u.Get("/{id}/profile", h.userProfile)
			u.Get("/{id}/profile/job", h.userJobProfile)
			u.Get("/{id}/profile/matrimonial", h.userMatrimonialProfile)
			u.Get("/{id}/applications", h.applicantApplications)
		})

		v1.Route("/jobs", func(j chi.Router) {
			j.Get("/", h.listJobs)
			j.Post("/", h.createJob)
			j.Get("/{id}", h.getJob)
			j.Put("/{id}", h.updateJob)
			j.Delete("/{id}", h.deleteJob)
			j.Post("/{id}/applications", h.applyForJob)
			j.Get("/{id}/applications", h.jobApplications)
		})

		v1.Patch("/applications/{id}", h.updateApplicationStatus)

		v1.Post("/interests", h.sendInterest)
		v1.Post("/interests/{id}/accept", h.acceptInterest)
		v1.Post("/interests/{id}/reject", h.rejectInterest)

		v1.Post("/matches", h.saveMatch)

		v1.Post("/messages", h.sendMessage)
		v1.Get("/messages", h.conversation)
	})

	return r
}
