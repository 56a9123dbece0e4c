package pipeline

import (
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sbinet/npyio"

	"currentscape/internal/config"
	"currentscape/internal/currents"
	"currentscape/internal/storage"
)

func writeNpy(t *testing.T, path string, data []float64) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := npyio.Write(f, data); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// testConfig lays out a six-sample simulation with one repeated timestamp.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	in := t.TempDir()
	out := t.TempDir()

	writeNpy(t, filepath.Join(in, "taxis.npy"), []float64{0, 0.1, 0.2, 0.2, 0.3, 0.4})
	writeNpy(t, filepath.Join(in, "v.npy"), []float64{-65, -64, -60, -60, -52, -71})
	writeFile(t, filepath.Join(in, "pos.csv"),
		"itype,0,1,2,3,4,5\nik,1,2,3,3,2,1\nih,1,0,1,1,0,1\n")
	writeFile(t, filepath.Join(in, "neg.csv"),
		"itype,0,1,2,3,4,5\nina,-2,-3,-1,-1,0,-1\nica,0,-1,-1,-1,-2,0\n")

	cfg := config.Default()
	cfg.InputDir = in
	cfg.TimeFile = "taxis.npy"
	cfg.VoltageFile = "v.npy"
	cfg.PositiveFile = "pos.csv"
	cfg.NegativeFile = "neg.csv"
	cfg.Channel = 0
	cfg.Output = filepath.Join(out, "figures", "currentscape.png")
	cfg.SummaryOutput = filepath.Join(out, "figures", "summary.png")
	cfg.DBPath = filepath.Join(out, "runs.db")
	return cfg
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)
	res, err := Run(cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.RawSamples != 6 || res.Dataset.Len() != 5 {
		t.Errorf("samples = %d raw, %d deduped, want 6/5", res.RawSamples, res.Dataset.Len())
	}
	if res.RunID == "" {
		t.Error("missing run id")
	}
	for j, v := range res.Aggregate.TotalPos {
		if v <= 0 {
			t.Errorf("TotalPos[%d] = %v", j, v)
		}
	}

	f, err := os.Open(cfg.Output)
	if err != nil {
		t.Fatalf("open figure: %v", err)
	}
	defer f.Close()
	img, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode figure: %v", err)
	}
	if img.Height != 740 {
		t.Errorf("figure height = %d, want 740", img.Height)
	}

	if err := WriteSummary(cfg, res); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	if _, err := os.Stat(cfg.SummaryOutput); err != nil {
		t.Errorf("summary not written: %v", err)
	}
	if Preview(cfg, res) == "" {
		t.Error("empty preview")
	}
}

func TestRecord(t *testing.T) {
	cfg := testConfig(t)
	res, err := Run(cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := Record(cfg, res); err != nil {
		t.Fatalf("Record: %v", err)
	}

	db, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	runs, err := storage.NewStore(db).FetchRuns(time.Time{})
	if err != nil {
		t.Fatalf("FetchRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != res.RunID {
		t.Fatalf("runs = %+v", runs)
	}
	if runs[0].RawSamples != 6 || runs[0].Samples != 5 || runs[0].Positive != 2 || runs[0].Negative != 2 {
		t.Errorf("run = %+v", runs[0])
	}
}

func TestOptionalStagesDisabled(t *testing.T) {
	cfg := testConfig(t)
	res, err := Run(cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	cfg.DBPath = ""
	cfg.SummaryOutput = ""
	if err := Record(cfg, res); err != nil {
		t.Errorf("Record: %v", err)
	}
	if err := WriteSummary(cfg, res); err != nil {
		t.Errorf("WriteSummary: %v", err)
	}
	if err := Publish(cfg, res); err != nil {
		t.Errorf("Publish: %v", err)
	}
}

func TestRunRejectsSignViolation(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, filepath.Join(cfg.InputDir, "pos.csv"), "itype,0,1,2,3,4,5\nik,1,-2,3,3,2,1\n")

	_, err := Run(cfg)
	if !errors.Is(err, currents.ErrSignViolation) {
		t.Fatalf("expected sign violation, got %v", err)
	}
	if _, err := os.Stat(cfg.Output); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("figure written despite failure: %v", err)
	}
}

func TestRunMissingInput(t *testing.T) {
	cfg := testConfig(t)
	cfg.TimeFile = "missing.npy"
	if _, err := Run(cfg); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
