// Package server exposes the shade-matching pipeline as a small local
// web application: an upload form, the analysis endpoint, and history
// search with downloadable reports.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/affodent/shadematch/pkg/history"
	"github.com/affodent/shadematch/pkg/sampler"
	"github.com/affodent/shadematch/pkg/util"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server hosts the clinic-facing web application.
type Server struct {
	store       history.Store
	dataDir     string
	defaultMode sampler.Mode
	log         *zerolog.Logger

	echo *echo.Echo

	// submissions run one at a time: the pipeline writes the image, the
	// PDF, and the history file, and nothing downstream expects overlap
	analyzeMutex sync.Mutex
}

// New prepares a Server storing artifacts under dataDir.
func New(store history.Store, dataDir string, defaultMode sampler.Mode, log *zerolog.Logger) (*Server, error) {
	for _, dir := range []string{imagesDir(dataDir), reportsDir(dataDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	tmpl, err := template.New("").
		Funcs(template.FuncMap{"base": filepath.Base}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		store:       store,
		dataDir:     dataDir,
		defaultMode: defaultMode,
		log:         log,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = &renderer{templates: tmpl}
	e.Use(middleware.Recover())
	e.Use(s.requestLogger)

	e.GET("/", s.handleIndex)
	e.POST("/analyze", s.handleAnalyze)
	e.GET("/history", s.handleHistory)
	e.GET("/guides", s.handleGuides)
	e.GET("/reports/:file", s.handleReportDownload)
	e.GET("/images/:file", s.handleImageDownload)

	s.echo = e
	return s, nil
}

// Start serves on addr until ctx is canceled.
func (s *Server) Start(ctx context.Context, addr string) error {
	go func() {
		defer util.LogRecover()
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.log.Err(err).Msg("shutdown")
		}
	}()

	s.log.Info().Str("addr", addr).Msg("listening")

	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

//--------------------------------------------------------------------------------
// private

type renderer struct {
	templates *template.Template
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		s.log.Debug().
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Int("status", c.Response().Status).
			Dur("elapsed", time.Since(start)).
			Err(err).
			Msg("request")
		return err
	}
}

func imagesDir(dataDir string) string {
	return filepath.Join(dataDir, "images")
}

func reportsDir(dataDir string) string {
	return filepath.Join(dataDir, "reports")
}
