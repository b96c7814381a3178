package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/replenish/backend-go/internal/config"
	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/replenishment"
	"github.com/redis/go-redis/v9"
)

const (
	replenishKeyPrefix     = "replenish:"
	alertsKeyPrefix        = replenishKeyPrefix + "alerts"
	summaryKeyPrefix       = replenishKeyPrefix + "summary"
	replenishScanBatchSize = 100
)

// ReplenishmentCache stores evaluated alert feeds and summaries per inventory filter.
type ReplenishmentCache interface {
	GetAlerts(ctx context.Context, filter domain.InventoryFilter) ([]replenishment.StockAlert, bool, error)
	SetAlerts(ctx context.Context, filter domain.InventoryFilter, alerts []replenishment.StockAlert) error
	GetSummary(ctx context.Context, filter domain.InventoryFilter) (*replenishment.Summary, bool, error)
	SetSummary(ctx context.Context, filter domain.InventoryFilter, summary *replenishment.Summary) error
	InvalidateAll(ctx context.Context) error
}

type redisReplenishmentCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReplenishmentCache struct{}

func NewReplenishmentCache(cfg config.CacheConfig) (ReplenishmentCache, error) {
	if !cfg.Enabled {
		return &noopReplenishmentCache{}, nil
	}

	client, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisReplenishmentCache{
		client: client,
		ttl:    cacheTTL(cfg),
	}, nil
}

func NewNoopReplenishmentCache() ReplenishmentCache {
	return &noopReplenishmentCache{}
}

func (c *redisReplenishmentCache) GetAlerts(ctx context.Context, filter domain.InventoryFilter) ([]replenishment.StockAlert, bool, error) {
	var alerts []replenishment.StockAlert
	ok, err := getJSON(ctx, c.client, buildKey(alertsKeyPrefix, filter), &alerts)
	if err != nil || !ok {
		return nil, false, err
	}
	return alerts, true, nil
}

func (c *redisReplenishmentCache) SetAlerts(ctx context.Context, filter domain.InventoryFilter, alerts []replenishment.StockAlert) error {
	return setJSON(ctx, c.client, buildKey(alertsKeyPrefix, filter), alerts, c.ttl)
}

func (c *redisReplenishmentCache) GetSummary(ctx context.Context, filter domain.InventoryFilter) (*replenishment.Summary, bool, error) {
	var summary replenishment.Summary
	ok, err := getJSON(ctx, c.client, buildKey(summaryKeyPrefix, filter), &summary)
	if err != nil || !ok {
		return nil, false, err
	}
	return &summary, true, nil
}

func (c *redisReplenishmentCache) SetSummary(ctx context.Context, filter domain.InventoryFilter, summary *replenishment.Summary) error {
	return setJSON(ctx, c.client, buildKey(summaryKeyPrefix, filter), summary, c.ttl)
}

func (c *redisReplenishmentCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, replenishKeyPrefix, replenishScanBatchSize)
}

func (n *noopReplenishmentCache) GetAlerts(ctx context.Context, filter domain.InventoryFilter) ([]replenishment.StockAlert, bool, error) {
	return nil, false, nil
}

func (n *noopReplenishmentCache) SetAlerts(ctx context.Context, filter domain.InventoryFilter, alerts []replenishment.StockAlert) error {
	return nil
}

func (n *noopReplenishmentCache) GetSummary(ctx context.Context, filter domain.InventoryFilter) (*replenishment.Summary, bool, error) {
	return nil, false, nil
}

func (n *noopReplenishmentCache) SetSummary(ctx context.Context, filter domain.InventoryFilter, summary *replenishment.Summary) error {
	return nil
}

func (n *noopReplenishmentCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildKey(prefix string, filter domain.InventoryFilter) string {
	return fmt.Sprintf("%s:%s", prefix, filterHash(filter))
}

func filterHash(filter domain.InventoryFilter) string {
	parts := []string{}

	if len(filter.StoreIDs) > 0 {
		parts = append(parts, "store_ids="+joinInt64s(filter.StoreIDs))
	}
	if len(filter.SupplierIDs) > 0 {
		parts = append(parts, "supplier_ids="+joinStrings(filter.SupplierIDs))
	}
	if len(filter.SKUs) > 0 {
		parts = append(parts, "skus="+joinStrings(filter.SKUs))
	}

	if len(parts) == 0 {
		return "default"
	}

	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func joinInt64s(values []int64) string {
	c := append([]int64(nil), values...)
	sort.Slice(c, func(i, j int) bool { return c[i] < c[j] })
	strs := make([]string, len(c))
	for i, v := range c {
		strs[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(strs, ",")
}

func joinStrings(values []string) string {
	c := append([]string(nil), values...)
	for i := range c {
		c[i] = strings.TrimSpace(c[i])
	}
	sort.Strings(c)
	return strings.Join(c, ",")
}
