// Package api exposes the cached headline data and the pipeline trigger over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"HeadlineTrends/internal/config"
	"HeadlineTrends/internal/domain"
	"HeadlineTrends/internal/metrics"
	"HeadlineTrends/internal/usecase"
)

const shutdownTimeout = 15 * time.Second

// Server is the HTTP API server.
type Server struct {
	router    chi.Router
	pipeline  *usecase.Pipeline
	session   *usecase.Session
	countries []string
	origins   []string
	logger    *slog.Logger
}

// NewServer builds the router. The session is shared by every request.
func NewServer(pipeline *usecase.Pipeline, session *usecase.Session, cfg config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if session == nil {
		session = usecase.NewSession()
	}
	s := &Server{
		pipeline:  pipeline,
		session:   session,
		countries: cfg.Countries,
		origins:   cfg.API.CORSOrigins,
		logger:    logger,
	}
	s.router = s.buildRouter()
	return s
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down api")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return httpSrv.Shutdown(shutdownCtx)
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	origins := []string{"*"}
	if len(s.origins) > 0 {
		origins = s.origins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/countries", s.handleCountries)

		r.Get("/headlines/{country}", s.handleGetHeadlines)
		r.Post("/headlines/{country}", s.handleEnsureHeadlines)
		r.Get("/headlines/{country}/status", s.handleStatus)
		r.Get("/headlines/{country}/summary", s.handleSummary)

		r.Delete("/cache", s.handleClearCache)
	})

	return r
}

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CountriesResponse lists what the dashboard can offer.
type CountriesResponse struct {
	Available     []string `json:"available"`
	Cached        []string `json:"cached"`
	LimitExceeded bool     `json:"limit_exceeded"`
}

// StatusResponse reports whether a country is served from cache.
type StatusResponse struct {
	Country string `json:"country"`
	Cached  bool   `json:"cached"`
}

// Headline is the JSON form of a cleaned article.
type Headline struct {
	SourceID    string   `json:"source_id"`
	SourceName  string   `json:"source_name"`
	Author      string   `json:"author,omitempty"`
	Title       string   `json:"title"`
	ShortTitle  string   `json:"short_title"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url,omitempty"`
	URLToImage  string   `json:"url_to_image,omitempty"`
	Content     string   `json:"content"`
	PublishedAt string   `json:"published_at,omitempty"`
	Sentiment   *string  `json:"sentiment"`
	Entities    []string `json:"entities"`
	Topic       string   `json:"topic"`
	DayOfWeek   string   `json:"day_of_week_published,omitempty"`
	Month       string   `json:"month_published,omitempty"`
	TimeOfDay   string   `json:"time_of_day_published,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]any{"status": "ok", "limit_exceeded": s.session.LimitExceeded()},
	})
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	cached, err := s.pipeline.CachedCountries(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: CountriesResponse{
			Available:     s.session.AvailableCountries(s.countries, cached),
			Cached:        cached,
			LimitExceeded: s.session.LimitExceeded(),
		},
	})
}

func (s *Server) handleGetHeadlines(w http.ResponseWriter, r *http.Request) {
	rows, err := s.pipeline.Cleaned(r.Context(), chi.URLParam(r, "country"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: toHeadlines(rows)})
}

func (s *Server) handleEnsureHeadlines(w http.ResponseWriter, r *http.Request) {
	country, err := domain.NormalizeCountry(chi.URLParam(r, "country"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(s.countries) > 0 && !slices.Contains(s.countries, country) {
		writeError(w, http.StatusBadRequest, "unsupported country "+country)
		return
	}

	rows, err := s.pipeline.Headlines(r.Context(), s.session, country)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: toHeadlines(rows)})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	country, err := domain.NormalizeCountry(chi.URLParam(r, "country"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cached, err := s.pipeline.HasCleaned(r.Context(), country)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: StatusResponse{Country: country, Cached: cached}})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	country, err := domain.NormalizeCountry(chi.URLParam(r, "country"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rows, err := s.pipeline.Cleaned(r.Context(), country)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: usecase.Summarize(country, rows)})
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if err := s.pipeline.ClearAll(r.Context()); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: map[string]bool{"cleared": true}})
}

func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidCountry):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrNoArticles), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func toHeadlines(rows []domain.CleanedArticle) []Headline {
	out := make([]Headline, 0, len(rows))
	for _, c := range rows {
		h := Headline{
			SourceID:    c.SourceID,
			SourceName:  c.SourceName,
			Author:      c.Author,
			Title:       c.Title,
			ShortTitle:  c.ShortTitle,
			Description: c.Description,
			URL:         c.URL,
			URLToImage:  c.URLToImage,
			Content:     c.Content,
			PublishedAt: c.PublishedAt,
			Entities:    c.Entities,
			Topic:       c.Topic,
			DayOfWeek:   c.DayOfWeek,
			Month:       c.Month,
			TimeOfDay:   c.TimeOfDay,
		}
		if c.Sentiment != "" {
			sentiment := string(c.Sentiment)
			h.Sentiment = &sentiment
		}
		if h.Entities == nil {
			h.Entities = []string{}
		}
		out = append(out, h)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{Success: false, Error: msg})
}
