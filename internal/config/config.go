package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// RankDisplay selects which leaderboard rank the status line shows.
type RankDisplay string

const (
	RankAgentLines     RankDisplay = "agentLines"
	RankAcceptedDiffs  RankDisplay = "acceptedDiffs"
	RankTabCompletions RankDisplay = "tabCompletions"
)

func (r RankDisplay) Valid() bool {
	switch r {
	case RankAgentLines, RankAcceptedDiffs, RankTabCompletions:
		return true
	}
	return false
}

const (
	DefaultWindowDays = 30
	MaxWindowDays     = 365
	DefaultAPIBaseURL = "https://cursor.com"
)

type LeaderboardConfig struct {
	Enabled    bool `json:"enabled"`
	WindowDays int  `json:"window_days"`
}

type Config struct {
	DatabasePath  string            `json:"database_path"`
	EnableLogging bool              `json:"enable_logging"`
	Leaderboard   LeaderboardConfig `json:"leaderboard"`
	RankDisplay   RankDisplay       `json:"rank_display"`
	APIBaseURL    string            `json:"api_base_url,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		EnableLogging: true,
		Leaderboard: LeaderboardConfig{
			Enabled:    false,
			WindowDays: DefaultWindowDays,
		},
		RankDisplay: RankAgentLines,
		APIBaseURL:  DefaultAPIBaseURL,
	}
}

func ConfigDir() string {
	if dir := os.Getenv("CURSORBAR_CONFIG_DIR"); dir != "" {
		return dir
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "cursorbar")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cursorbar")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "settings.json")
}

// StateDir holds the log file.
func StateDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "cursorbar")
	}
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "cursorbar")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "cursorbar")
}

func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg.normalize(), nil
}

func (c Config) normalize() Config {
	c.DatabasePath = strings.TrimSpace(c.DatabasePath)
	if c.Leaderboard.WindowDays <= 0 {
		c.Leaderboard.WindowDays = DefaultWindowDays
	}
	if c.Leaderboard.WindowDays > MaxWindowDays {
		c.Leaderboard.WindowDays = MaxWindowDays
	}
	if !c.RankDisplay.Valid() {
		c.RankDisplay = RankAgentLines
	}
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	return c
}

// saveMu guards read-modify-write cycles on the config file.
var saveMu sync.Mutex

func SaveTo(path string, cfg Config) error {
	saveMu.Lock()
	defer saveMu.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
