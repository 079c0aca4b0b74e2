// Package config loads ganttline settings from ~/.ganttline/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/fentz26/ganttline/internal/calendar"
	"github.com/fentz26/ganttline/internal/loader"
)

// Config holds ganttline configuration.
type Config struct {
	Paths    PathsConfig       `yaml:"paths"`
	Renderer RendererConfig    `yaml:"renderer"`
	Levels   loader.LevelRules `yaml:"levels"`
	Calendar CalendarConfig    `yaml:"calendar"`
	Sheet    SheetConfig       `yaml:"sheet"`
	Server   ServerConfig      `yaml:"server"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// PathsConfig locates files ganttline writes.
type PathsConfig struct {
	// Snapshot is where filter writes the renderer handoff.
	Snapshot string `yaml:"snapshot"`
	// History is the SQLite database of past runs; empty disables history.
	History string `yaml:"history"`
	// StageDir holds materialized pipeline stages; empty means the OS temp dir.
	StageDir string `yaml:"stage_dir,omitempty"`
}

// RendererConfig describes the external renderer.
type RendererConfig struct {
	Command   string   `yaml:"command"`
	SceneFile string   `yaml:"scene_file"`
	Scene     string   `yaml:"scene"`
	Quality   string   `yaml:"quality"`
	Preview   bool     `yaml:"preview"`
	WorkDir   string   `yaml:"work_dir,omitempty"`
	Allowed   []string `yaml:"allowed"`
}

// CalendarConfig lists non-working days.
type CalendarConfig struct {
	// Holidays are YYYY-MM-DD dates.
	Holidays []string `yaml:"holidays"`
}

// SheetConfig identifies a Google Sheets tab to fetch.
type SheetConfig struct {
	ID  string `yaml:"id,omitempty"`
	GID string `yaml:"gid,omitempty"`
	URL string `yaml:"url,omitempty"`
}

// ExportURL returns URL, or the export address built from ID and GID.
func (s SheetConfig) ExportURL() string {
	if s.URL != "" {
		return s.URL
	}
	if s.ID == "" {
		return ""
	}
	return loader.ExportURL(s.ID, s.GID)
}

// ServerConfig configures the HTTP query API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Dir returns ~/.ganttline, or .ganttline when the home directory is unknown.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ganttline"
	}
	return filepath.Join(home, ".ganttline")
}

// DefaultPath returns ~/.ganttline/config.yaml.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() *Config {
	dir := Dir()
	return &Config{
		Paths: PathsConfig{
			Snapshot: "tasks_filtered.json",
			History:  filepath.Join(dir, "history.db"),
		},
		Renderer: RendererConfig{
			Command:   "manim",
			SceneFile: "gantt_timeline.py",
			Scene:     "GanttTimeline",
			Quality:   "ql",
			Allowed:   []string{"manim"},
		},
		Calendar: CalendarConfig{
			Holidays: []string{
				"2026-01-01", "2026-04-03", "2026-04-04", "2026-05-01",
				"2026-05-21", "2026-06-21", "2026-06-29", "2026-07-16",
				"2026-08-15", "2026-09-18", "2026-09-19", "2026-10-12",
				"2026-10-31", "2026-11-01", "2026-12-08", "2026-12-25",
			},
		},
		Server:   ServerConfig{Addr: "127.0.0.1:7477"},
		LogLevel: "info",
	}
}

// LoadConfig loads configuration from a YAML file. A missing file yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadConfigFromHome loads configuration from ~/.ganttline/config.yaml.
func LoadConfigFromHome() (*Config, error) {
	return LoadConfig(DefaultPath())
}

// SaveConfig saves configuration to a YAML file, creating parent directories if needed.
func SaveConfig(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be: debug, info, warn, or error", c.LogLevel)
	}
	if c.Paths.Snapshot == "" {
		return fmt.Errorf("paths.snapshot must be set")
	}
	if c.Renderer.Command == "" {
		return fmt.Errorf("renderer.command must be set")
	}
	if !c.IsAllowed(c.Renderer.Command) {
		return fmt.Errorf("renderer.command %q is not in renderer.allowed", c.Renderer.Command)
	}
	if err := c.Levels.Validate(); err != nil {
		return err
	}
	if _, err := calendar.New(c.Calendar.Holidays); err != nil {
		return fmt.Errorf("calendar: %w", err)
	}
	return nil
}

// IsAllowed checks if a command is in the renderer allowlist.
func (c *Config) IsAllowed(cmd string) bool {
	for _, n := range c.Renderer.Allowed {
		if n == cmd {
			return true
		}
	}
	return false
}

// BusinessCalendar builds the business calendar from the configured holidays.
func (c *Config) BusinessCalendar() (*calendar.Calendar, error) {
	return calendar.New(c.Calendar.Holidays)
}
