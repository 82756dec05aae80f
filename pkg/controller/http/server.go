package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modsec-lab/aegis/pkg/utils/logging"
	"github.com/modsec-lab/aegis/pkg/utils/safe"
)

type Server struct {
	router *chi.Mux
}

// New builds the HTTP surface: a health endpoint and the Slack events
// webhook. The webhook route is protected by signature verification.
func New(handler *SlackEventHandler, signingSecret string) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		safe.Write(r.Context(), w, []byte("OK"))
	})

	r.Route("/hooks/slack", func(r chi.Router) {
		r.Use(SlackSignatureMiddleware(signingSecret))
		r.Post("/event", handler.ServeHTTP)
	})

	return &Server{router: r}
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
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
