package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/welcomebot/pkg/usecase"
	"github.com/secmon-lab/welcomebot/pkg/utils/logging"
)

type Server struct {
	router             *chi.Mux
	slackEventHandler  *SlackEventHandler
	slackSigningSecret string
	installUC          *usecase.InstallUseCase
}

type Options func(*Server)

// WithSlackEvents mounts the Events API endpoint. When signingSecret is
// set, request signatures are verified as well.
func WithSlackEvents(handler *SlackEventHandler, signingSecret string) Options {
	return func(s *Server) {
		s.slackEventHandler = handler
		s.slackSigningSecret = signingSecret
	}
}

// WithInstall mounts the install pages and the workspace list
func WithInstall(installUC *usecase.InstallUseCase) Options {
	return func(s *Server) {
		s.installUC = installUC
	}
}

func New(opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	if s.slackEventHandler != nil {
		r.Group(func(r chi.Router) {
			if s.slackSigningSecret != "" {
				r.Use(SlackSignatureMiddleware(s.slackSigningSecret))
			}
			r.Post("/events", s.slackEventHandler.ServeHTTP)
		})
	}

	if s.installUC != nil {
		r.Get("/api/workspaces", workspacesHandler(s.installUC))

		if s.installUC.Enabled() {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/begin_auth", http.StatusFound)
			})
			r.Get("/begin_auth", beginAuthHandler(s.installUC))
			r.Get("/finish_auth", finishAuthHandler(s.installUC))
		}
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

		logger := logging.From(r.Context()).With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}
