package main

import (
	"log"

	"currentscape/internal/config"
	"currentscape/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("config: input %q, window %d samples, channel %d", cfg.InputDir, cfg.Samples, cfg.Channel)

	res, err := pipeline.Run(cfg)
	if err != nil {
		log.Fatal(err)
	}

	// the figure is on disk; the remaining stages only warn
	if err := pipeline.WriteSummary(cfg, res); err != nil {
		log.Printf("summary: skipped: %v", err)
	}
	if cfg.Preview {
		log.Printf("preview:\n%s", pipeline.Preview(cfg, res))
	}
	if err := pipeline.Record(cfg, res); err != nil {
		log.Printf("db: failed to record run: %v", err)
	}
	if err := pipeline.Publish(cfg, res); err != nil {
		log.Printf("telegram: publish failed: %v", err)
	}
	log.Printf("pipeline: run %s done", res.RunID)
}
