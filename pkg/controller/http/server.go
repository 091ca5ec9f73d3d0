package http

import (
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/usecase"
	"github.com/secmon-lab/riskpilot/pkg/utils/errutil"
	"github.com/secmon-lab/riskpilot/pkg/utils/logging"
	"github.com/secmon-lab/riskpilot/pkg/utils/safe"
)

type Server struct {
	router   *chi.Mux
	uc       *usecase.UseCases
	staticFS fs.FS
}

type Options func(*Server)

// WithStaticFS serves a single page application from fsys for every path
// not handled by the API
func WithStaticFS(fsys fs.FS) Options {
	return func(s *Server) {
		s.staticFS = fsys
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
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		// Session endpoints work without a session
		if uc.Auth != nil {
			r.Post("/auth/session", authSessionHandler(uc.Auth))
			r.Post("/auth/logout", authLogoutHandler(uc.Auth))
		}

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(uc.Auth))

			r.Get("/auth/me", authMeHandler())

			r.Get("/me/profile", s.getProfile)
			r.Put("/me/profile", s.updateProfile)
			r.Put("/me/ai-config", s.setAIConfig)
			r.Delete("/me/ai-config", s.clearAIConfig)
			r.Get("/ai/providers", s.listProviders)

			r.Get("/projects", s.listProjects)
			r.Post("/projects", s.createProject)

			r.Route("/projects/{projectID}", func(r chi.Router) {
				r.Get("/", s.getProject)
				r.Put("/", s.updateProject)
				r.Delete("/", s.deleteProject)
				r.Put("/team", s.updateTeam)

				r.Get("/matrix", s.getMatrix)
				r.Get("/export.csv", s.exportCSV)
				r.Get("/export.pdf", s.exportPDF)

				r.Get("/risks", s.listRisks)
				r.Post("/risks", s.createRisk)
				r.Post("/risks/generate", s.generateRisks)

				r.Route("/risks/{riskID}", func(r chi.Router) {
					r.Get("/", s.getRisk)
					r.Put("/", s.updateRisk)
					r.Delete("/", s.deleteRisk)
					r.Put("/status", s.updateRiskStatus)
					r.Post("/mitigation", s.regenerateMitigation)
					r.Post("/solutions", s.regenerateSolutions)
				})
			})
		})
	})

	// Static file serving for SPA (catch-all, must be last)
	if s.staticFS != nil {
		r.Get("/*", spaHandler(s.staticFS))
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger carries the request ID on the context logger
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id := middleware.GetReqID(ctx); id != "" {
			ctx = logging.With(ctx, logging.From(ctx).With("request_id", id))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
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

// spaHandler handles SPA routing by serving static files and falling back to index.html
func spaHandler(staticFS fs.FS) http.HandlerFunc {
	fileServer := http.FileServer(http.FS(staticFS))

	return func(w http.ResponseWriter, r *http.Request) {
		urlPath := strings.TrimPrefix(r.URL.Path, "/")

		if urlPath == "" {
			urlPath = "index.html"
		}

		file, err := staticFS.Open(urlPath)
		if err != nil {
			// Unknown paths are client side routes
			indexFile, err := staticFS.Open("index.html")
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					http.NotFound(w, r)
					return
				}
				errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to open index.html"), http.StatusInternalServerError)
				return
			}
			defer safe.Close(r.Context(), indexFile)
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			safe.Copy(r.Context(), w, indexFile)
			return
		}
		safe.Close(r.Context(), file)

		fileServer.ServeHTTP(w, r)
	}
}
