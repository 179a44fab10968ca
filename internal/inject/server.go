// Package inject exposes the running deck over HTTP. An external content
// generator posts markup to it, and UI clients read the rendered deck,
// status and thumbnails and drive navigation and saving.
package inject

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dshills/deckstorm/internal/app"
	"github.com/dshills/deckstorm/internal/navigation"
	"github.com/dshills/deckstorm/internal/render"
)

// DefaultMaxBodyBytes limits the inject request body.
const DefaultMaxBodyBytes = 4 << 20

// Backend is the application surface the server drives.
type Backend interface {
	Inject(content string) error
	Save(ctx context.Context) error
	RetryRender()
	Navigate(action string) (navigation.State, error)
	Status() app.Status
	Deck() *render.Result
	Thumbnails() []navigation.Thumbnail
}

// Server serves the inject API.
type Server struct {
	backend   Backend
	converter *Converter
	logger    *slog.Logger
	maxBody   int64
	router    chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxBodyBytes limits request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// NewServer creates a server for backend.
func NewServer(backend Backend, opts ...Option) *Server {
	s := &Server{
		backend:   backend,
		converter: NewConverter(),
		logger:    slog.Default(),
		maxBody:   DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "inject")
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/inject", s.handleInject)
		r.Get("/deck", s.handleDeck)
		r.Get("/status", s.handleStatus)
		r.Get("/thumbnails", s.handleThumbnails)
		r.Post("/save", s.handleSave)
		r.Post("/navigate/{action}", s.handleNavigate)
		r.Post("/render/retry", s.handleRetry)
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	s.logger.Info("inject API listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type injectRequest struct {
	Content string `json:"content"`
	Format  string `json:"format"`
}

type injectResponse struct {
	RequestID string `json:"request_id"`
	Length    int    `json:"length"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInject(w http.ResponseWriter, r *http.Request) {
	var req injectRequest
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			s.writeError(w, r, http.StatusRequestEntityTooLarge, err)
			return
		}
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	markup, err := s.converter.ToMarkup(req.Content, req.Format)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, ErrUnsupportedFormat) {
			status = http.StatusBadRequest
		}
		s.writeError(w, r, status, err)
		return
	}

	if err := s.backend.Inject(markup); err != nil {
		s.writeError(w, r, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusAccepted, injectResponse{
		RequestID: RequestID(r.Context()),
		Length:    len(markup),
	})
}

func (s *Server) handleDeck(w http.ResponseWriter, r *http.Request) {
	res := s.backend.Deck()
	if res == nil {
		s.writeError(w, r, http.StatusNotFound, errors.New("no rendered deck"))
		return
	}
	writeJSON(w, http.StatusOK, newDeckView(res))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newStatusView(s.backend.Status()))
}

func (s *Server) handleThumbnails(w http.ResponseWriter, _ *http.Request) {
	thumbs := s.backend.Thumbnails()
	views := make([]thumbnailView, len(thumbs))
	for i, t := range thumbs {
		views[i] = newThumbnailView(t)
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.Save(r.Context()); err != nil {
		s.writeError(w, r, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"saved": true})
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	st, err := s.backend.Navigate(chi.URLParam(r, "action"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, app.ErrUnknownAction) {
			status = http.StatusNotFound
		}
		s.writeError(w, r, status, err)
		return
	}
	writeJSON(w, http.StatusOK, newNavigationView(st))
}

func (s *Server) handleRetry(w http.ResponseWriter, _ *http.Request) {
	s.backend.RetryRender()
	writeJSON(w, http.StatusAccepted, map[string]bool{"retried": true})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, code int, err error) {
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, code, map[string]string{
		"error":      err.Error(),
		"request_id": RequestID(r.Context()),
	})
}
