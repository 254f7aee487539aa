// Package pipeline wires the screening run together: load corpus and
// subjects, drive the single evidence session sequentially across subjects,
// accumulate report rows, and emit progress. Subjects are processed strictly
// one at a time because the evidence session is a single shared mutable
// resource; only the progress consumer runs concurrently with the loop.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"namescreen/internal/config"
	"namescreen/internal/corpus"
	"namescreen/internal/evidence"
	"namescreen/internal/match"
	"namescreen/internal/progress"
	"namescreen/internal/report"
	"namescreen/internal/subject"
)

const (
	screenshotsDir = "screenshots"
	responsesDir   = "responses"
	reportFile     = "report.xlsx"
)

// CaptureSession is the evidence session lifecycle the pipeline drives.
// Satisfied by *evidence.Session; substituted in tests.
type CaptureSession interface {
	Start(ctx context.Context) error
	Capture(ctx context.Context, displayName, screenshotPath, rawJSONPath string) (evidence.Record, error)
	Close() error
}

// Summary is the outcome of one completed run.
type Summary struct {
	RunID           string
	RunDir          string
	ReportPath      string
	Subjects        int
	Matched         int
	CaptureFailures int
	Rows            []report.Row
}

// Pipeline executes screening runs. One Pipeline may serve multiple runs,
// but each run is sequential and owns its own session and run directory.
type Pipeline struct {
	cfg    config.Config
	logger *zap.Logger

	// newSession is swapped out in tests; defaults to the rod-backed session.
	newSession func() CaptureSession
}

// New creates a pipeline for the given configuration.
func New(cfg config.Config, logger *zap.Logger) *Pipeline {
	p := &Pipeline{cfg: cfg, logger: logger}
	p.newSession = func() CaptureSession {
		return evidence.NewSession(cfg.Evidence, logger)
	}
	return p
}

// Run screens every subject in the workbook at subjectsPath and returns the
// run summary. The run directory is created fresh per invocation and never
// reused. Fatal errors (missing corpus, session startup failure) abort the
// run before or at the first subject; per-subject capture failures do not.
func (p *Pipeline) Run(ctx context.Context, subjectsPath string, reporter *progress.Reporter) (*Summary, error) {
	runID := uuid.NewString()
	logger := p.logger.With(zap.String("run_id", runID))

	// The reporter must terminate on every exit path or its consumer ranges
	// forever. Finish marks completion; any fatal return aborts instead.
	finished := false
	defer func() {
		if !finished {
			reporter.Abort()
		}
	}()

	subjects, err := subject.Load(subjectsPath)
	if err != nil {
		return nil, fmt.Errorf("load subjects: %w", err)
	}

	ref, err := corpus.Load(p.cfg.ReferenceDir, logger)
	if err != nil {
		return nil, fmt.Errorf("load reference corpus: %w", err)
	}
	engine := match.NewEngine(ref)

	runDir, err := p.createRunDir()
	if err != nil {
		return nil, err
	}
	logger.Info("Run started",
		zap.String("run_dir", runDir),
		zap.Int("subjects", len(subjects)))

	session := p.newSession()
	if err := session.Start(ctx); err != nil {
		return nil, fmt.Errorf("start evidence session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("Failed to close evidence session", zap.Error(err))
		}
	}()

	builder := report.NewBuilder(p.cfg.Report.MaxMatchesLen)
	summary := &Summary{RunID: runID, RunDir: runDir, Subjects: len(subjects)}

	for i, s := range subjects {
		results := engine.Match(s)
		if len(results) > 0 {
			summary.Matched++
		}

		shotRel := filepath.Join(screenshotsDir, fmt.Sprintf("%s_%d.png", sanitizeName(s.DisplayName), i+1))
		rawRel := ""
		if p.cfg.Evidence.SaveResponses {
			rawRel = filepath.Join(responsesDir, fmt.Sprintf("%s_%d.json", sanitizeName(s.DisplayName), i+1))
		}

		status := progress.StatusDone
		rec, err := session.Capture(ctx, s.DisplayName,
			filepath.Join(runDir, shotRel), rawPath(runDir, rawRel))
		switch {
		case err != nil && rec.ScreenshotPath == "":
			// Per-subject failures are final for that subject only. The step
			// and subject identity are logged so it can be re-run by hand.
			status = progress.StatusFailed
			summary.CaptureFailures++
			shotRel = ""
			logger.Warn("Evidence capture failed",
				zap.Int("subject_index", i+1),
				zap.String("subject", s.DisplayName),
				zap.String("step", failingStep(err)),
				zap.Error(err))
		case err != nil:
			// The screenshot landed before a later step (the optional raw
			// document) failed; the evidence link stays in the report.
			logger.Warn("Raw match document failed, screenshot kept",
				zap.Int("subject_index", i+1),
				zap.String("subject", s.DisplayName),
				zap.String("step", failingStep(err)),
				zap.Error(err))
		case !rec.ResultsFound:
			logger.Debug("Results panel did not render",
				zap.Int("subject_index", i+1),
				zap.String("subject", s.DisplayName))
		}

		builder.Append(s.DisplayName, results, shotRel)
		reporter.Publish(progress.Event{
			Current: i + 1,
			Total:   len(subjects),
			Subject: s.DisplayName,
			Status:  status,
		})
	}

	reportPath := filepath.Join(runDir, reportFile)
	if err := builder.Write(reportPath); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	summary.ReportPath = reportPath
	summary.Rows = builder.Rows()

	reporter.Finish(runDir, len(subjects))
	finished = true
	logger.Info("Run complete",
		zap.Int("matched", summary.Matched),
		zap.Int("capture_failures", summary.CaptureFailures),
		zap.String("report", reportPath))
	return summary, nil
}

// createRunDir makes the timestamp-named run directory with its artifact
// subdirectories. Directories are never reused across runs; a second run
// started within the same second gets a numbered suffix.
func (p *Pipeline) createRunDir() (string, error) {
	if err := os.MkdirAll(p.cfg.OutputRoot, 0o755); err != nil {
		return "", fmt.Errorf("create output root: %w", err)
	}

	base := filepath.Join(p.cfg.OutputRoot, "run-"+time.Now().Format("20060102-150405"))
	runDir := base
	for n := 2; ; n++ {
		err := os.Mkdir(runDir, 0o755)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("create run dir: %w", err)
		}
		runDir = fmt.Sprintf("%s_%d", base, n)
	}

	if err := os.MkdirAll(filepath.Join(runDir, screenshotsDir), 0o755); err != nil {
		return "", fmt.Errorf("create screenshots dir: %w", err)
	}
	if p.cfg.Evidence.SaveResponses {
		if err := os.MkdirAll(filepath.Join(runDir, responsesDir), 0o755); err != nil {
			return "", fmt.Errorf("create responses dir: %w", err)
		}
	}
	return runDir, nil
}

// failingStep extracts the protocol step name from a capture error.
func failingStep(err error) string {
	var stepErr *evidence.StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step
	}
	return "unknown"
}

func rawPath(runDir, rel string) string {
	if rel == "" {
		return ""
	}
	return filepath.Join(runDir, rel)
}

// sanitizeName maps a display name to a filesystem-safe artifact stem.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "subject"
	}
	return out
}
