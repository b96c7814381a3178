package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/andresuchdata/replenish/backend-go/internal/config"
	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/replenishment"
	"github.com/andresuchdata/replenish/backend-go/internal/snapshot"
	"github.com/andresuchdata/replenish/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

// loadSnapshot reads the inventory snapshot named by the command flags and
// resolves supplier lead times for it.
func loadSnapshot(c *cli.Context, cfg *config.Config) ([]domain.InventoryRecord, replenishment.LeadTimes, error) {
	records, suppliers, err := readSnapshot(c, cfg)
	if err != nil {
		return nil, nil, err
	}
	return records, replenishment.LeadTimesFromSuppliers(suppliers), nil
}

func readSnapshot(c *cli.Context, cfg *config.Config) ([]domain.InventoryRecord, []domain.Supplier, error) {
	path := c.String("inventory")
	if key := c.String("inventory-object"); key != "" {
		downloaded, err := downloadSnapshot(c, cfg.Storage, key)
		if err != nil {
			return nil, nil, err
		}
		path = downloaded
	}
	if path == "" {
		return nil, nil, fmt.Errorf("either --inventory or --inventory-object is required")
	}

	records, err := snapshot.ReadInventoryFile(path)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("path", path).Int("records", len(records)).Msg("snapshot loaded")

	suppliers := suppliersFromRecords(records)
	if supplierPath := c.String("suppliers"); supplierPath != "" {
		f, err := os.Open(supplierPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open suppliers %s: %w", supplierPath, err)
		}
		defer f.Close()

		suppliers, err = snapshot.ReadSuppliersCSV(f)
		if err != nil {
			return nil, nil, err
		}
	}

	return records, suppliers, nil
}

// downloadSnapshot fetches key into the download dir. A key ending in "/" is
// treated as a prefix and the lexically last snapshot under it is used, which
// picks the newest file for date-stamped names.
func downloadSnapshot(c *cli.Context, cfg config.StorageConfig, key string) (string, error) {
	client, err := storage.NewMinioClient(cfg)
	if err != nil {
		return "", err
	}

	if strings.HasSuffix(key, "/") {
		objects, err := client.ListObjects(c.Context, key)
		if err != nil {
			return "", err
		}
		key, err = latestSnapshotKey(objects)
		if err != nil {
			return "", fmt.Errorf("prefix %s: %w", c.String("inventory-object"), err)
		}
	}

	dest := filepath.Join(c.String("download-dir"), filepath.Base(key))
	if err := client.DownloadObject(c.Context, key, dest); err != nil {
		return "", err
	}
	log.Info().Str("key", key).Str("path", dest).Msg("snapshot downloaded")
	return dest, nil
}

func latestSnapshotKey(objects []storage.ObjectInfo) (string, error) {
	var keys []string
	for _, obj := range objects {
		switch strings.ToLower(filepath.Ext(obj.Key)) {
		case ".csv", ".xlsx":
			keys = append(keys, obj.Key)
		}
	}
	if len(keys) == 0 {
		return "", fmt.Errorf("no csv or xlsx snapshots found")
	}
	sort.Strings(keys)
	return keys[len(keys)-1], nil
}

// suppliersFromRecords treats every supplier referenced by the snapshot as
// known, using the lead time of its first record. It is used when no supplier
// file is given.
func suppliersFromRecords(records []domain.InventoryRecord) []domain.Supplier {
	seen := make(map[string]struct{})
	suppliers := make([]domain.Supplier, 0)
	for _, r := range records {
		if r.SupplierID == "" {
			continue
		}
		if _, ok := seen[r.SupplierID]; ok {
			continue
		}
		seen[r.SupplierID] = struct{}{}
		suppliers = append(suppliers, domain.Supplier{ID: r.SupplierID, LeadTimeDays: r.LeadTimeDays})
	}
	return suppliers
}
