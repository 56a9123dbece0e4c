package config

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CURRENTSCAPE_CONFIG", "CURRENTSCAPE_INPUT_DIR", "CURRENTSCAPE_OUTPUT",
		"CURRENTSCAPE_SAMPLES", "CURRENTSCAPE_CHANNEL", "CURRENTSCAPE_DB_PATH",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "currentscape.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Samples != 20000 || cfg.Channel != 1471 {
		t.Errorf("window = %d/%d, want 20000/1471", cfg.Samples, cfg.Channel)
	}
	if cfg.VoltageMin != -70 || cfg.VoltageMax != -50 {
		t.Errorf("voltage range = [%v,%v]", cfg.VoltageMin, cfg.VoltageMax)
	}
	if cfg.Output != "currentscape.png" {
		t.Errorf("output = %q", cfg.Output)
	}
	if cfg.PublishEnabled() {
		t.Error("publish should be off by default")
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("SIM_ROOT", "/data/cluster_seed30")
	path := writeConfig(t, `
input_dir: ${SIM_ROOT}
samples: 500
channel: 0
current_unit: pA
colors:
  na: "#ff0000"
`)
	t.Setenv("CURRENTSCAPE_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.InputDir != "/data/cluster_seed30" {
		t.Errorf("input_dir = %q, want expanded env var", cfg.InputDir)
	}
	if cfg.Samples != 500 || cfg.Channel != 0 {
		t.Errorf("window = %d/%d, want 500/0", cfg.Samples, cfg.Channel)
	}
	if cfg.CurrentUnit != "pA" || cfg.Colors["na"] != "#ff0000" {
		t.Errorf("unit/colors = %q/%v", cfg.CurrentUnit, cfg.Colors)
	}
	// keys absent from the file keep their defaults
	if cfg.TimeFile != "raw_data/taxis.npy" {
		t.Errorf("time_file = %q", cfg.TimeFile)
	}
	src := cfg.Source()
	if src.TimePath != filepath.Join("/data/cluster_seed30", "raw_data/taxis.npy") {
		t.Errorf("time path = %q", src.TimePath)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "samples: 500\n")
	t.Setenv("CURRENTSCAPE_CONFIG", path)
	t.Setenv("CURRENTSCAPE_SAMPLES", "42")
	t.Setenv("CURRENTSCAPE_OUTPUT", "out/cs.png")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Samples != 42 {
		t.Errorf("samples = %d, want 42", cfg.Samples)
	}
	if cfg.Output != "out/cs.png" {
		t.Errorf("output = %q", cfg.Output)
	}
	if !cfg.PublishEnabled() || cfg.TelegramChatID != -100123 {
		t.Errorf("publish = %v, chat = %d", cfg.PublishEnabled(), cfg.TelegramChatID)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		invalid bool
	}{
		{name: "bad samples env", env: map[string]string{"CURRENTSCAPE_SAMPLES": "many"}, invalid: true},
		{name: "negative samples", yaml: "samples: -1\n", invalid: true},
		{name: "empty voltage range", yaml: "voltage_min: -50\nvoltage_max: -70\n", invalid: true},
		{name: "token without chat", env: map[string]string{"TELEGRAM_BOT_TOKEN": "x"}, invalid: true},
		{name: "malformed yaml", yaml: "samples: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("CURRENTSCAPE_CONFIG", writeConfig(t, tt.yaml))
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.invalid && !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestMissingExplicitConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("CURRENTSCAPE_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Load(); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestMalformedDotEnvIsLogged(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("CURRENTSCAPE_OUTPUT=\"unterminated\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Output != "currentscape.png" {
		t.Errorf("output = %q, want default", cfg.Output)
	}
	if !strings.Contains(buf.String(), "config: ignoring .env") {
		t.Errorf("log = %q, want .env parse error", buf.String())
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
