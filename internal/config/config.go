// Package config resolves run settings from defaults, a YAML file, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"currentscape/internal/dataset"
)

var ErrInvalid = errors.New("config: invalid")

// DefaultPath is read when CURRENTSCAPE_CONFIG is unset. It may be absent.
const DefaultPath = "currentscape.yaml"

type Config struct {
	InputDir     string `yaml:"input_dir"`
	TimeFile     string `yaml:"time_file"`
	VoltageFile  string `yaml:"voltage_file"`
	PositiveFile string `yaml:"positive_file"`
	NegativeFile string `yaml:"negative_file"`

	// Samples is the analysis window, Channel the voltage row (1471 is soma(0.5)).
	Samples int `yaml:"samples"`
	Channel int `yaml:"channel"`

	Output        string `yaml:"output"`
	SummaryOutput string `yaml:"summary_output"`

	CurrentUnit string            `yaml:"current_unit"`
	VoltageMin  float64           `yaml:"voltage_min"`
	VoltageMax  float64           `yaml:"voltage_max"`
	Colors      map[string]string `yaml:"colors"`
	Preview     bool              `yaml:"preview"`

	DBPath string `yaml:"db_path"`

	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`
}

// Source resolves the input paths against InputDir.
func (c *Config) Source() dataset.Source {
	return dataset.Source{
		TimePath:     c.resolve(c.TimeFile),
		VoltagePath:  c.resolve(c.VoltageFile),
		PositivePath: c.resolve(c.PositiveFile),
		NegativePath: c.resolve(c.NegativeFile),
		Samples:      c.Samples,
		Channel:      c.Channel,
	}
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) || c.InputDir == "" {
		return p
	}
	return filepath.Join(c.InputDir, p)
}

// Load layers defaults, the YAML file named by CURRENTSCAPE_CONFIG (or
// DefaultPath when it exists) and environment overrides, then validates.
// A .env file in the working directory is loaded into the environment first.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Printf("config: ignoring .env: %v", err)
		}
	}

	path := os.Getenv("CURRENTSCAPE_CONFIG")
	required := path != ""
	if !required {
		path = DefaultPath
	}

	cfg := Default()
	if _, err := os.Stat(path); err == nil || required {
		loaded, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadFile parses a YAML config file after expanding ${VAR} references.
// Keys missing from the file keep their Default value.
func ReadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("CURRENTSCAPE_INPUT_DIR"); v != "" {
		c.InputDir = v
	}
	if v := os.Getenv("CURRENTSCAPE_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("CURRENTSCAPE_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.TelegramToken = v
	}
	if v := os.Getenv("CURRENTSCAPE_SAMPLES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: CURRENTSCAPE_SAMPLES=%q: %v", ErrInvalid, v, err)
		}
		c.Samples = n
	}
	if v := os.Getenv("CURRENTSCAPE_CHANNEL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: CURRENTSCAPE_CHANNEL=%q: %v", ErrInvalid, v, err)
		}
		c.Channel = n
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: TELEGRAM_CHAT_ID=%q: %v", ErrInvalid, v, err)
		}
		c.TelegramChatID = id
	}
	return nil
}

// Default returns the settings of the reference simulation layout. Values
// read from a file or the environment are layered on top of these.
func Default() *Config {
	return &Config{
		TimeFile:      "raw_data/taxis.npy",
		VoltageFile:   "raw_data/membrane_potential_data/v.npy",
		PositiveFile:  "partitioned_data/total_currents/itotal_pos_0.csv",
		NegativeFile:  "partitioned_data/total_currents/itotal_neg_0.csv",
		Samples:       20000,
		Channel:       1471,
		Output:        "currentscape.png",
		SummaryOutput: "currentscape_summary.png",
		CurrentUnit:   "nA",
		VoltageMin:    -70,
		VoltageMax:    -50,
	}
}

// Validate reports the first setting that cannot drive a run.
func (c *Config) Validate() error {
	if c.Samples <= 0 {
		return fmt.Errorf("%w: samples must be positive, got %d", ErrInvalid, c.Samples)
	}
	if c.Channel < 0 {
		return fmt.Errorf("%w: channel must not be negative, got %d", ErrInvalid, c.Channel)
	}
	if c.VoltageMin >= c.VoltageMax {
		return fmt.Errorf("%w: voltage range [%g,%g] is empty", ErrInvalid, c.VoltageMin, c.VoltageMax)
	}
	if c.Output == "" {
		return fmt.Errorf("%w: output path is required", ErrInvalid)
	}
	if (c.TelegramToken == "") != (c.TelegramChatID == 0) {
		return fmt.Errorf("%w: telegram_token and telegram_chat_id must be set together", ErrInvalid)
	}
	return nil
}

// PublishEnabled reports whether the figure should be sent to Telegram.
func (c *Config) PublishEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}
