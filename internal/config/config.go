// Package config holds all namescreen configuration. Settings are loaded
// from a YAML file and overridden by CLI flags; zero values fall back to
// defaults through the getter methods so a partial file stays valid.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full pipeline configuration.
type Config struct {
	// Reference corpus directory (CSV files).
	ReferenceDir string `yaml:"reference_dir"`

	// Root under which timestamped run directories are created.
	OutputRoot string `yaml:"output_root"`

	// Evidence capture settings.
	Evidence EvidenceConfig `yaml:"evidence"`

	// Report settings.
	Report ReportConfig `yaml:"report"`

	// HTTP server settings.
	Server ServerConfig `yaml:"server"`
}

// EvidenceConfig configures the browser evidence session.
type EvidenceConfig struct {
	// TargetURL is the public search interface queried per subject.
	TargetURL string `yaml:"target_url"`

	// Element selectors on the target page. Owned by a third party: when
	// they change, capture degrades to screenshots of whatever renders.
	SearchInputSelector  string `yaml:"search_input_selector"`
	SubmitButtonSelector string `yaml:"submit_button_selector"`
	ResultsPanelSelector string `yaml:"results_panel_selector"`

	Headless         bool `yaml:"headless"`
	ViewportWidth    int  `yaml:"viewport_width"`
	ViewportHeight   int  `yaml:"viewport_height"`
	ResultsTimeoutMs int  `yaml:"results_timeout_ms"`

	// SaveResponses enables the optional responses/ directory with one
	// raw-match JSON document per subject.
	SaveResponses bool `yaml:"save_responses"`
}

// ReportConfig configures the output workbook.
type ReportConfig struct {
	// MaxMatchesLen bounds the Matches cell before truncation.
	MaxMatchesLen int `yaml:"max_matches_len"`
}

// ServerConfig configures the optional HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		ReferenceDir: "reference",
		OutputRoot:   "runs",
		Evidence: EvidenceConfig{
			TargetURL:            "https://sanctionssearch.ofac.treas.gov/",
			SearchInputSelector:  "#ctl00_MainContent_txtLastName",
			SubmitButtonSelector: "#ctl00_MainContent_btnSearch",
			ResultsPanelSelector: "#gvSearchResults",
			Headless:             true,
			ResultsTimeoutMs:     10000,
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load reads the configuration file at path over the defaults. A missing
// file is not an error; everything then runs on defaults and flags.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// GetViewportWidth returns viewport width.
func (c EvidenceConfig) GetViewportWidth() int {
	if c.ViewportWidth == 0 {
		return 1920
	}
	return c.ViewportWidth
}

// GetViewportHeight returns viewport height.
func (c EvidenceConfig) GetViewportHeight() int {
	if c.ViewportHeight == 0 {
		return 1080
	}
	return c.ViewportHeight
}

// ResultsTimeout returns the bounded wait for the results panel.
func (c EvidenceConfig) ResultsTimeout() time.Duration {
	if c.ResultsTimeoutMs == 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ResultsTimeoutMs) * time.Millisecond
}
