// Package server exposes the screening pipeline over HTTP: a subject list is
// uploaded, a run executes, and the packaged artifacts are served back. The
// pipeline itself knows nothing about HTTP; this layer only adapts it.
package server

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"namescreen/internal/archive"
	"namescreen/internal/config"
	"namescreen/internal/pipeline"
	"namescreen/internal/progress"
)

// Runner executes one screening run. Satisfied by *pipeline.Pipeline. Run
// terminates the reporter on every return path, success or fatal error, so
// the drain goroutine below always exits.
type Runner interface {
	Run(ctx context.Context, subjectsPath string, reporter *progress.Reporter) (*pipeline.Summary, error)
}

// Server adapts the pipeline to HTTP.
type Server struct {
	cfg    config.Config
	logger *zap.Logger
	runner Runner
}

// New creates the HTTP server around a pipeline runner.
func New(cfg config.Config, logger *zap.Logger, runner Runner) *Server {
	return &Server{cfg: cfg, logger: logger, runner: runner}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.handleHealth)
	r.POST("/api/screen", s.handleScreen)
	// Completed run directories and their archives are plain static files.
	r.Static("/runs", s.cfg.OutputRoot)

	return r
}

// ListenAndServe runs the server on the configured address.
func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.cfg.Server.Addr))
	return s.Router().Run(s.cfg.Server.Addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleScreen accepts a subject workbook upload, runs the pipeline to
// completion and returns the run locations. Runs are sequential per request;
// concurrent requests each get their own run directory and session.
func (s *Server) handleScreen(c *gin.Context) {
	upload, err := c.FormFile("subjects")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing subjects file upload"})
		return
	}

	tmpDir, err := os.MkdirTemp("", "namescreen-upload-")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to stage upload"})
		return
	}
	defer os.RemoveAll(tmpDir)

	subjectsPath := filepath.Join(tmpDir, filepath.Base(upload.Filename))
	if err := c.SaveUploadedFile(upload, subjectsPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save upload"})
		return
	}

	reporter := progress.NewReporter(64)
	go drain(reporter) // no streaming consumer over plain HTTP; keep the channel moving

	summary, err := s.runner.Run(c.Request.Context(), subjectsPath, reporter)
	if err != nil {
		s.logger.Error("Screening run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	zipPath, err := archive.Pack(summary.RunDir)
	if err != nil {
		s.logger.Error("Failed to pack run archive", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":           summary.RunID,
		"subjects":         summary.Subjects,
		"matched":          summary.Matched,
		"capture_failures": summary.CaptureFailures,
		"run":              "/runs/" + filepath.Base(summary.RunDir),
		"archive":          "/runs/" + filepath.Base(zipPath),
	})
}

func drain(r *progress.Reporter) {
	for range r.Events() {
	}
}
