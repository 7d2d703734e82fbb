// Package server exposes the rendering engine over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/benjaminschreck/go-slides/internal/dataverse"
	"github.com/benjaminschreck/go-slides/pkg/slides"
	"github.com/benjaminschreck/go-slides/pkg/slides/content"
)

// contentDisposition names the attachment after the job. An id that cannot be
// carried in a header parameter leaves the attachment unnamed.
func contentDisposition(jobID string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": jobID + ".pptx"}); v != "" {
		return v
	}
	return "attachment"
}

// ContentType is the media type of a rendered deck.
const ContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// Response headers describing a render.
const (
	HeaderJobID    = "X-Slides-Job-Id"
	HeaderRendered = "X-Slides-Rendered"
	HeaderSkipped  = "X-Slides-Skipped"
)

// Config holds server settings
type Config struct {
	// Template is the deck rendered by every request.
	Template     string
	MaxBodyBytes int64
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server serves render requests
type Server struct {
	engine *slides.Engine
	config Config
	logger *zap.Logger
	router *chi.Mux
	newID  func() string
}

// New creates a server rendering cfg.Template with engine.
func New(engine *slides.Engine, cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine: engine,
		config: cfg,
		logger: logger,
		router: chi.NewRouter(),
		newID:  func() string { return uuid.NewString() },
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/v1/render", s.handleRender)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)))
		}()
		next.ServeHTTP(ww, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok")
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody()))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		s.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	jobID, rows, err := parseRenderRequest(body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if jobID == "" {
		jobID = s.newID()
	}

	tmpl, err := s.engine.PrepareFile(s.config.Template)
	if err != nil {
		s.logger.Error("template unavailable", zap.String("template", s.config.Template), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "template unavailable")
		return
	}

	var buf bytes.Buffer
	report, err := s.engine.Render(r.Context(), tmpl, s.engine.NewJob(jobID), rows, &buf)
	if err != nil {
		s.logger.Error("render failed", zap.String("job_id", jobID), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h := w.Header()
	h.Set("Content-Type", ContentType)
	h.Set("Content-Disposition", contentDisposition(jobID))
	h.Set("Content-Length", strconv.Itoa(buf.Len()))
	h.Set(HeaderJobID, jobID)
	h.Set(HeaderRendered, strconv.Itoa(report.Rendered))
	h.Set(HeaderSkipped, strconv.Itoa(len(report.Skipped)))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Warn("response write failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

// parseRenderRequest reads {"job_id": "...", "records": [...]}.
func parseRenderRequest(body []byte) (string, []content.Row, error) {
	if !gjson.ValidBytes(body) {
		return "", nil, errors.New("invalid JSON body")
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return "", nil, errors.New("request body must be a JSON object")
	}

	jobID := doc.Get("job_id")
	if jobID.Exists() && jobID.Type != gjson.String && jobID.Type != gjson.Null {
		return "", nil, errors.New(`"job_id" must be a string`)
	}

	records := doc.Get("records")
	if !records.IsArray() {
		return "", nil, errors.New(`"records" must be an array`)
	}
	rows, err := dataverse.RowsFromJSON(records)
	if err != nil {
		return "", nil, err
	}
	return jobID.String(), rows, nil
}

func (s *Server) maxBody() int64 {
	if s.config.MaxBodyBytes > 0 {
		return s.config.MaxBodyBytes
	}
	return 32 << 20
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
