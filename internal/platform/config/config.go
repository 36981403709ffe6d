package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const fileName = "config.yaml"

type Config struct {
	DataDir       string
	DBPath        string
	ExportDir     string
	TickInterval  time.Duration
	HasslerRepeat time.Duration
	HTTPAddr      string
	LogLevel      string
	LogJSON       bool
	Cues          Cues
	Schedule      []Block
}

type Cues struct {
	Enabled       bool   `yaml:"enabled"`
	SpeechCommand string `yaml:"speech_command"`
	SoundCommand  string `yaml:"sound_command"`
	ApplauseSound string `yaml:"applause_sound"`
	DingSound     string `yaml:"ding_sound"`
}

// Block is the on-disk shape of a schedule block; lengths are minutes.
type Block struct {
	Task     string  `yaml:"task" json:"task"`
	Length   float64 `yaml:"length" json:"length"`
	Focus    string  `yaml:"focus,omitempty" json:"focus,omitempty"`
	Notes    string  `yaml:"notes,omitempty" json:"notes,omitempty"`
	Hassler  bool    `yaml:"hassler,omitempty" json:"hassler,omitempty"`
	Applause bool    `yaml:"applause,omitempty" json:"applause,omitempty"`
	Dinger   any     `yaml:"dinger,omitempty" json:"dinger,omitempty"`
}

type fileConfig struct {
	DBPath               string    `yaml:"db_path"`
	ExportDir            string    `yaml:"export_dir"`
	TickIntervalMS       int       `yaml:"tick_interval_ms"`
	HasslerRepeatSeconds *int      `yaml:"hassler_repeat_seconds"`
	HTTPAddr             string    `yaml:"http_addr"`
	LogLevel             string    `yaml:"log_level"`
	LogJSON              *bool     `yaml:"log_json"`
	Cues                 *fileCues `yaml:"cues"`
	Schedule             []Block   `yaml:"schedule"`
}

// fileCues overlays the cue defaults; absent keys keep them.
type fileCues struct {
	Enabled       *bool   `yaml:"enabled"`
	SpeechCommand *string `yaml:"speech_command"`
	SoundCommand  *string `yaml:"sound_command"`
	ApplauseSound *string `yaml:"applause_sound"`
	DingSound     *string `yaml:"ding_sound"`
}

func (f fileCues) apply(c *Cues) {
	if f.Enabled != nil {
		c.Enabled = *f.Enabled
	}
	if f.SpeechCommand != nil {
		c.SpeechCommand = *f.SpeechCommand
	}
	if f.SoundCommand != nil {
		c.SoundCommand = *f.SoundCommand
	}
	if f.ApplauseSound != nil {
		c.ApplauseSound = *f.ApplauseSound
	}
	if f.DingSound != nil {
		c.DingSound = *f.DingSound
	}
}

// DefaultSchedule is the working day the tracker deploys when nothing else is given.
func DefaultSchedule() []Block {
	return []Block{
		{Task: "work", Length: 25, Applause: true, Dinger: 0.1},
		{Task: "meditation", Length: 5, Applause: true},
		{Task: "work", Length: 25, Hassler: true, Applause: true},
		{Task: "movement", Length: 5, Applause: true},
		{Task: "work", Length: 25, Hassler: true, Applause: true},
		{Task: "meditation", Length: 5, Applause: true},
		{Task: "work", Length: 25, Hassler: true, Applause: true},
		{Task: "break", Length: 15, Applause: true},
	}
}

func defaults(dataDir string) Config {
	return Config{
		DataDir:       dataDir,
		DBPath:        filepath.Join(dataDir, "prodman.db"),
		ExportDir:     filepath.Join(dataDir, "sessions"),
		TickInterval:  time.Second,
		HasslerRepeat: 30 * time.Second,
		HTTPAddr:      "127.0.0.1:8080",
		LogLevel:      "info",
		Cues: Cues{
			Enabled:       true,
			SpeechCommand: "say",
			SoundCommand:  "afplay",
		},
		Schedule: DefaultSchedule(),
	}
}

// New resolves configuration in order: defaults, config.yaml in the data
// directory, then PRODMAN_* environment variables.
func New(dataDir string) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		dataDir = os.Getenv("PRODMAN_DATA_DIR")
	}
	if strings.TrimSpace(dataDir) == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve user config dir: %w", err)
		}
		dataDir = filepath.Join(dir, "prodman")
	}

	cfg := defaults(dataDir)
	if err := cfg.applyFile(filepath.Join(dataDir, fileName)); err != nil {
		return Config{}, err
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	var file fileConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}

	if file.DBPath != "" {
		c.DBPath = c.resolve(file.DBPath)
	}
	if file.ExportDir != "" {
		c.ExportDir = c.resolve(file.ExportDir)
	}
	if file.TickIntervalMS > 0 {
		c.TickInterval = time.Duration(file.TickIntervalMS) * time.Millisecond
	}
	if file.HasslerRepeatSeconds != nil {
		c.HasslerRepeat = time.Duration(*file.HasslerRepeatSeconds) * time.Second
	}
	if file.HTTPAddr != "" {
		c.HTTPAddr = file.HTTPAddr
	}
	if file.LogLevel != "" {
		c.LogLevel = file.LogLevel
	}
	if file.LogJSON != nil {
		c.LogJSON = *file.LogJSON
	}
	if file.Cues != nil {
		file.Cues.apply(&c.Cues)
	}
	if len(file.Schedule) > 0 {
		c.Schedule = file.Schedule
	}
	return nil
}

func (c *Config) applyEnv() {
	c.DBPath = envStr("PRODMAN_DB_PATH", c.DBPath)
	c.ExportDir = envStr("PRODMAN_EXPORT_DIR", c.ExportDir)
	c.HTTPAddr = envStr("PRODMAN_HTTP_ADDR", c.HTTPAddr)
	c.LogLevel = envStr("PRODMAN_LOG_LEVEL", c.LogLevel)
	c.LogJSON = envBool("PRODMAN_LOG_JSON", c.LogJSON)
	c.Cues.Enabled = envBool("PRODMAN_CUES", c.Cues.Enabled)
	if ms := envInt("PRODMAN_TICK_MS", 0); ms > 0 {
		c.TickInterval = time.Duration(ms) * time.Millisecond
	}
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.DataDir, path)
}

func (c *Config) validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path must not be empty")
	}
	if c.TickInterval < 10*time.Millisecond {
		return fmt.Errorf("tick interval must be at least 10ms, got %s", c.TickInterval)
	}
	if c.HasslerRepeat < 0 {
		return fmt.Errorf("hassler repeat must not be negative")
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
