// Package evidence drives a single reusable browser session against the
// public search interface and captures a full-page screenshot per subject.
// One session serves the whole run; its startup cost is paid once and the
// page is cleaned between subjects instead of being recreated.
package evidence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"namescreen/internal/config"
)

// Protocol step names, used in capture errors so a failed subject can be
// re-run manually against the right step.
const (
	StepNavigate    = "navigate"
	StepClearInput  = "clear_input"
	StepSubmit      = "submit"
	StepWaitResults = "wait_results"
	StepScreenshot  = "screenshot"
	StepSaveRaw     = "save_raw"
)

// ErrNotStarted is returned when Capture is called before Start.
var ErrNotStarted = errors.New("evidence session not started")

// StepError identifies which protocol step failed for a subject.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Record describes the evidence captured for one subject. ResultsFound is
// false when the results panel never appeared within the bounded wait; that
// is a valid terminal outcome, the screenshot still shows what rendered.
type Record struct {
	ScreenshotPath   string `json:"screenshot_path"`
	RawMatchJSONPath string `json:"raw_match_json_path,omitempty"`
	ResultsFound     bool   `json:"results_found"`
}

// rawCapture is the optional per-subject JSON artifact.
type rawCapture struct {
	Subject      string    `json:"subject"`
	CapturedAt   time.Time `json:"captured_at"`
	ResultsFound bool      `json:"results_found"`
	ResultsText  string    `json:"results_text,omitempty"`
}

// Capturer is the evidence interface consumed by the pipeline.
type Capturer interface {
	Capture(ctx context.Context, displayName, screenshotPath, rawJSONPath string) (Record, error)
}

// Session owns the browser and the single reused page for a run. It is not
// safe for concurrent use: the page carries mutable state between protocol
// steps, which is why the pipeline processes subjects strictly sequentially.
type Session struct {
	cfg     config.EvidenceConfig
	logger  *zap.Logger
	browser *rod.Browser
	page    *rod.Page
}

// NewSession creates an unstarted evidence session.
func NewSession(cfg config.EvidenceConfig, logger *zap.Logger) *Session {
	return &Session{cfg: cfg, logger: logger}
}

// Start launches the browser and opens the page reused for every subject.
// A failure here is fatal for the run: no subject can be screened without
// the session.
func (s *Session) Start(ctx context.Context) error {
	controlURL, err := launcher.New().Headless(s.cfg.Headless).Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		return fmt.Errorf("create page: %w", err)
	}

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             s.cfg.GetViewportWidth(),
		Height:            s.cfg.GetViewportHeight(),
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		s.logger.Warn("Failed to set viewport", zap.Error(err))
	}

	s.browser = browser
	s.page = page
	s.logger.Info("Evidence session started", zap.String("target", s.cfg.TargetURL))
	return nil
}

// Capture runs the fixed per-subject protocol and writes the screenshot to
// screenshotPath. When rawJSONPath is non-empty the raw match document is
// written there too. Any step failure is returned as a *StepError; the
// session itself stays usable for the next subject.
func (s *Session) Capture(ctx context.Context, displayName, screenshotPath, rawJSONPath string) (Record, error) {
	if s.page == nil {
		return Record{}, ErrNotStarted
	}
	page := s.page.Context(ctx)

	if err := page.Navigate(s.cfg.TargetURL); err != nil {
		return Record{}, &StepError{Step: StepNavigate, Err: err}
	}
	if err := page.WaitLoad(); err != nil {
		return Record{}, &StepError{Step: StepNavigate, Err: err}
	}

	// The page is reused across subjects; residual input from the previous
	// search must be cleared before typing.
	field, err := page.Element(s.cfg.SearchInputSelector)
	if err != nil {
		return Record{}, &StepError{Step: StepClearInput, Err: err}
	}
	if err := field.SelectAllText(); err != nil {
		return Record{}, &StepError{Step: StepClearInput, Err: err}
	}
	if err := field.Type(input.Backspace); err != nil {
		return Record{}, &StepError{Step: StepClearInput, Err: err}
	}

	if err := field.Input(displayName); err != nil {
		return Record{}, &StepError{Step: StepSubmit, Err: err}
	}
	submit, err := page.Element(s.cfg.SubmitButtonSelector)
	if err != nil {
		return Record{}, &StepError{Step: StepSubmit, Err: err}
	}
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return Record{}, &StepError{Step: StepSubmit, Err: err}
	}

	// Bounded wait for the results panel. Absence is not a failure: a search
	// with no hits may never render the panel, and the screenshot of the
	// empty result page is still evidence.
	resultsFound := false
	resultsText := ""
	panel, err := page.Timeout(s.cfg.ResultsTimeout()).Element(s.cfg.ResultsPanelSelector)
	if err == nil {
		resultsFound = true
		if text, textErr := panel.Text(); textErr == nil {
			resultsText = text
		}
	}

	shot, err := page.Screenshot(true, nil)
	if err != nil {
		return Record{}, &StepError{Step: StepScreenshot, Err: err}
	}
	if err := os.WriteFile(screenshotPath, shot, 0o644); err != nil {
		return Record{}, &StepError{Step: StepScreenshot, Err: err}
	}

	rec := Record{ScreenshotPath: screenshotPath, ResultsFound: resultsFound}

	if rawJSONPath != "" {
		raw := rawCapture{
			Subject:      displayName,
			CapturedAt:   time.Now().UTC(),
			ResultsFound: resultsFound,
			ResultsText:  resultsText,
		}
		data, err := json.MarshalIndent(raw, "", "  ")
		if err != nil {
			return rec, &StepError{Step: StepSaveRaw, Err: err}
		}
		if err := os.WriteFile(rawJSONPath, data, 0o644); err != nil {
			return rec, &StepError{Step: StepSaveRaw, Err: err}
		}
		rec.RawMatchJSONPath = rawJSONPath
	}

	return rec, nil
}

// Close releases the browser. Safe to call after a failed Start.
func (s *Session) Close() error {
	s.page = nil
	if s.browser == nil {
		return nil
	}
	err := s.browser.Close()
	s.browser = nil
	return err
}
