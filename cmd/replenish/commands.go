package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/andresuchdata/replenish/backend-go/internal/config"
	"github.com/andresuchdata/replenish/backend-go/internal/replenishment"
	"github.com/andresuchdata/replenish/backend-go/internal/snapshot"
	"github.com/andresuchdata/replenish/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func newEngine(cfg *config.Config) *replenishment.Engine {
	return replenishment.NewEngine(cfg.Replenishment.Policy())
}

func evaluationTime(c *cli.Context) time.Time {
	if ts := c.Timestamp("now"); ts != nil {
		return *ts
	}
	return time.Now()
}

func runAlerts(c *cli.Context) error {
	cfg := config.Load()
	records, _, err := loadSnapshot(c, cfg)
	if err != nil {
		return err
	}

	alerts := newEngine(cfg).GenerateAlerts(records)
	return snapshot.WriteAlertsTable(c.App.Writer, alerts)
}

func runSummary(c *cli.Context) error {
	cfg := config.Load()
	records, leadTimes, err := loadSnapshot(c, cfg)
	if err != nil {
		return err
	}

	return snapshot.WriteSummary(c.App.Writer, newEngine(cfg).Summarize(records, leadTimes))
}

func runDrafts(c *cli.Context) error {
	cfg := config.Load()
	records, leadTimes, err := loadSnapshot(c, cfg)
	if err != nil {
		return err
	}

	now := evaluationTime(c)
	drafts := newEngine(cfg).Consolidate(records, leadTimes, now)
	return exportDrafts(c, cfg, drafts, now)
}

// exportDrafts writes drafts as CSV to --output, stdout or the export dir and
// optionally uploads the file.
func exportDrafts(c *cli.Context, cfg *config.Config, drafts []replenishment.DraftPurchaseOrder, now time.Time) error {
	var buf bytes.Buffer
	if err := snapshot.WriteDraftsCSV(&buf, drafts); err != nil {
		return fmt.Errorf("failed to encode drafts: %w", err)
	}

	output := c.String("output")
	if output == "-" {
		if c.Bool("upload") {
			return fmt.Errorf("--upload needs a file output")
		}
		_, err := io.Copy(c.App.Writer, &buf)
		return err
	}
	if output == "" {
		output = filepath.Join(cfg.Replenishment.ExportDir, fmt.Sprintf("drafts_%s.csv", now.UTC().Format("20060102_150405")))
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("failed to ensure export dir: %w", err)
	}
	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	log.Info().Str("path", output).Int("drafts", len(drafts)).Msg("drafts exported")

	if !c.Bool("upload") {
		return nil
	}

	client, err := storage.NewMinioClient(cfg.Storage)
	if err != nil {
		return err
	}
	key := cfg.Replenishment.ExportPrefix + filepath.Base(output)
	if err := client.UploadObject(c.Context, key, buf.Bytes()); err != nil {
		return err
	}
	log.Info().Str("bucket", cfg.Storage.Bucket).Str("key", key).Msg("drafts uploaded")
	return nil
}
