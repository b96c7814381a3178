package main

import (
	"os"

	"github.com/andresuchdata/replenish/backend-go/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		logger.Log.Warn().Err(err).Msg("could not load .env file")
	}

	app := &cli.App{
		Name:  "replenish",
		Usage: "Evaluate inventory snapshots and draft purchase orders",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "alerts",
				Usage:  "Print stock alerts for a snapshot, most severe first",
				Flags:  snapshotFlags(),
				Action: runAlerts,
			},
			{
				Name:   "summary",
				Usage:  "Print status and reorder counters for a snapshot",
				Flags:  snapshotFlags(),
				Action: runSummary,
			},
			{
				Name:   "drafts",
				Usage:  "Consolidate reorders into draft purchase orders and export them as CSV",
				Flags:  append(snapshotFlags(), exportFlags()...),
				Action: runDrafts,
			},
			{
				Name:   "import",
				Usage:  "Load an inventory snapshot and its suppliers into the database",
				Flags:  append(snapshotFlags(), newDBURLFlag()),
				Before: initDB,
				After:  closeDB,
				Action: runImport,
			},
			{
				Name:  "db-drafts",
				Usage: "Build draft purchase orders from the inventory database",
				Flags: append([]cli.Flag{
					newDBURLFlag(),
					&cli.Int64SliceFlag{
						Name:  "store-id",
						Usage: "Restrict to these stores (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Persist the drafts in purchase_order_drafts",
					},
					nowFlag(),
				}, exportFlags()...),
				Before: initDB,
				After:  closeDB,
				Action: runDBDrafts,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("replenish failed")
	}
}

func snapshotFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "inventory",
			Aliases: []string{"i"},
			Usage:   "Inventory snapshot file (.csv or .xlsx)",
		},
		&cli.StringFlag{
			Name:  "inventory-object",
			Usage: "Object key of an inventory snapshot in the configured S3 bucket",
		},
		&cli.StringFlag{
			Name:  "suppliers",
			Usage: "Supplier CSV with id, name and lead_time_days columns",
		},
		&cli.StringFlag{
			Name:  "download-dir",
			Usage: "Directory for snapshots fetched from object storage",
			Value: "./data/tmp/snapshots",
		},
		nowFlag(),
	}
}

func exportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "CSV file to write; defaults to a timestamped file in REPLENISH_EXPORT_DIR, use - for stdout",
		},
		&cli.BoolFlag{
			Name:  "upload",
			Usage: "Upload the exported CSV to the configured S3 bucket",
		},
	}
}

func nowFlag() cli.Flag {
	return &cli.TimestampFlag{
		Name:   "now",
		Usage:  "Evaluation time for delivery dates (RFC3339); defaults to the current time",
		Layout: "2006-01-02T15:04:05Z07:00",
	}
}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}
