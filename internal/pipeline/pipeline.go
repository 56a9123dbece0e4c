// Package pipeline runs one currentscape: load, dedup, aggregate, render and
// write, plus the optional manifest and publish steps.
package pipeline

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"currentscape/internal/config"
	"currentscape/internal/currents"
	"currentscape/internal/dataset"
	"currentscape/internal/render"
	"currentscape/internal/storage"
	"currentscape/internal/telegram"
)

// Result describes a completed run.
type Result struct {
	RunID      string
	StartedAt  time.Time
	RawSamples int
	Dataset    *dataset.Dataset
	Aggregate  *currents.Aggregate
	Figure     []byte
}

// Run executes the required stages. Any error leaves no figure behind.
func Run(cfg *config.Config) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), StartedAt: time.Now()}
	log.Printf("pipeline: run %s started", res.RunID)

	raw, err := dataset.Load(cfg.Source())
	if err != nil {
		return nil, err
	}
	res.RawSamples = raw.Len()
	ds := raw.Dedup()
	res.Dataset = ds
	log.Printf("dataset: %s samples, %s after dedup, %d outward / %d inward current types",
		humanize.Comma(int64(raw.Len())), humanize.Comma(int64(ds.Len())), len(ds.Positive.Labels), len(ds.Negative.Labels))

	agg, err := currents.AggregateTables(ds.Positive, ds.Negative)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	res.Aggregate = agg

	opt, err := options(cfg)
	if err != nil {
		return nil, err
	}
	fig, err := render.Currentscape(ds.Time, ds.Voltage, agg, opt)
	if err != nil {
		return nil, fmt.Errorf("build figure: %w", err)
	}
	img, err := fig.Draw()
	if err != nil {
		return nil, fmt.Errorf("draw figure: %w", err)
	}
	res.Figure, err = render.Encode(img)
	if err != nil {
		return nil, err
	}
	if err := render.WriteFile(cfg.Output, res.Figure); err != nil {
		return nil, fmt.Errorf("write %s: %w", cfg.Output, err)
	}
	log.Printf("render: wrote %s (%dx%d, %s)", cfg.Output, img.Bounds().Dx(), img.Bounds().Dy(),
		humanize.Bytes(uint64(len(res.Figure))))
	return res, nil
}

func options(cfg *config.Config) (render.Options, error) {
	pal, err := render.NewPalette(cfg.Colors)
	if err != nil {
		return render.Options{}, fmt.Errorf("palette: %w", err)
	}
	return render.Options{
		CurrentUnit: cfg.CurrentUnit,
		Voltage:     render.Range{Min: cfg.VoltageMin, Max: cfg.VoltageMax},
		Palette:     pal,
	}, nil
}

// WriteSummary renders the mean-share pies to cfg.SummaryOutput. It is a
// no-op when no summary path is configured.
func WriteSummary(cfg *config.Config, res *Result) error {
	if cfg.SummaryOutput == "" {
		return nil
	}
	img, err := render.Summary(res.Aggregate)
	if err != nil {
		return err
	}
	if err := render.Save(cfg.SummaryOutput, img); err != nil {
		return err
	}
	log.Printf("render: wrote %s", cfg.SummaryOutput)
	return nil
}

// Preview returns the terminal rendering of the run.
func Preview(cfg *config.Config, res *Result) string {
	return render.Preview(res.Dataset.Voltage, res.Aggregate, cfg.CurrentUnit)
}

// Record appends the run to the SQLite manifest at cfg.DBPath.
func Record(cfg *config.Config, res *Result) error {
	if cfg.DBPath == "" {
		return nil
	}
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	db, err := storage.OpenSQLite("file:" + cfg.DBPath + "?_fk=1")
	if err != nil {
		return err
	}
	defer db.Close()
	if err := storage.InitSchema(db); err != nil {
		return err
	}
	err = storage.NewStore(db).SaveRun(storage.Run{
		ID:         res.RunID,
		StartedAt:  res.StartedAt,
		InputDir:   cfg.InputDir,
		RawSamples: res.RawSamples,
		Samples:    res.Dataset.Len(),
		Positive:   len(res.Dataset.Positive.Labels),
		Negative:   len(res.Dataset.Negative.Labels),
		Output:     cfg.Output,
	})
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	log.Printf("db: recorded run %s in %s", res.RunID, cfg.DBPath)
	return nil
}

// Publish sends the figure to the configured Telegram chat.
func Publish(cfg *config.Config, res *Result) error {
	if !cfg.PublishEnabled() {
		return nil
	}
	p, err := telegram.NewPublisher(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		return err
	}
	caption := telegram.Caption(res.RunID, res.Dataset.Len(), res.RawSamples,
		len(res.Dataset.Positive.Labels), len(res.Dataset.Negative.Labels))
	return p.SendFigure(filepath.Base(cfg.Output), res.Figure, caption)
}
