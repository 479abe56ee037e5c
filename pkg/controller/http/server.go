package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stagehand-hq/stagehand/pkg/usecase"
	"github.com/stagehand-hq/stagehand/pkg/utils/logging"
)

// Server exposes the confirmation ledger over REST plus the Slack
// interaction webhook.
type Server struct {
	router             *chi.Mux
	uc                 *usecase.UseCases
	slackSigningSecret string
}

type Options func(*Server)

// WithSlackInteraction enables the Slack interaction webhook. Requests are
// authenticated by signature verification with the given signing secret.
func WithSlackInteraction(signingSecret string) Options {
	return func(s *Server) {
		s.slackSigningSecret = signingSecret
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK")) //nolint:errcheck
	})

	r.Route("/api/actions", func(r chi.Router) {
		r.Use(principalMiddleware)

		r.Post("/", s.handlePrepare)
		r.Get("/", s.handleListPending)
		r.Get("/{actionID}", s.handleGet)
		r.Post("/{actionID}/confirm", s.handleConfirm)
		r.Post("/{actionID}/cancel", s.handleCancel)
	})

	// Slack interaction webhook - no principal header, uses signature
	// verification instead
	if s.slackSigningSecret != "" {
		r.Route("/hooks/slack", func(r chi.Router) {
			r.Use(SlackSignatureMiddleware(s.slackSigningSecret))
			r.Post("/interaction", s.handleSlackInteraction)
		})
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
