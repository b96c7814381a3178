package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/replenish/backend-go/internal/cache"
	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/replenishment"
	"github.com/andresuchdata/replenish/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const defaultWorkerCount = 4

// StoreReport is the evaluation of a single store's snapshot.
type StoreReport struct {
	StoreID int64                              `json:"store_id"`
	Summary replenishment.Summary              `json:"summary"`
	Alerts  []replenishment.StockAlert         `json:"alerts"`
	Drafts  []replenishment.DraftPurchaseOrder `json:"drafts"`
}

// Option customizes a ReplenishmentService.
type Option func(*ReplenishmentService)

// WithClock replaces the wall clock used to date draft orders.
func WithClock(now func() time.Time) Option {
	return func(s *ReplenishmentService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithWorkerCount bounds how many store snapshots are evaluated in parallel.
func WithWorkerCount(n int) Option {
	return func(s *ReplenishmentService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithCache enables caching of alert feeds and summaries.
func WithCache(c cache.ReplenishmentCache) Option {
	return func(s *ReplenishmentService) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithSnapshots enables importing inventory snapshots through the service.
func WithSnapshots(repo repository.SnapshotRepository) Option {
	return func(s *ReplenishmentService) {
		s.snapshots = repo
	}
}

// ReplenishmentService loads snapshots from the inventory store and runs the
// replenishment engine over them.
type ReplenishmentService struct {
	inventory repository.InventoryRepository
	orders    repository.PurchaseOrderRepository
	snapshots repository.SnapshotRepository
	engine    *replenishment.Engine
	cache     cache.ReplenishmentCache
	now       func() time.Time
	workers   int
}

func NewReplenishmentService(
	inventory repository.InventoryRepository,
	orders repository.PurchaseOrderRepository,
	engine *replenishment.Engine,
	opts ...Option,
) *ReplenishmentService {
	if engine == nil {
		engine = replenishment.NewEngine(replenishment.DefaultPolicy())
	}

	s := &ReplenishmentService{
		inventory: inventory,
		orders:    orders,
		engine:    engine,
		cache:     cache.NewNoopReplenishmentCache(),
		now:       time.Now,
		workers:   defaultWorkerCount,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine exposes the engine for callers evaluating snapshots they already hold.
func (s *ReplenishmentService) Engine() *replenishment.Engine {
	return s.engine
}

// Now returns the service clock's current time.
func (s *ReplenishmentService) Now() time.Time {
	return s.now()
}

func (s *ReplenishmentService) GetAlerts(ctx context.Context, filter domain.InventoryFilter) ([]replenishment.StockAlert, error) {
	if alerts, ok, err := s.cache.GetAlerts(ctx, filter); err == nil && ok {
		return alerts, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("replenishment: cache get alerts failed")
	}

	records, err := s.inventory.ListInventory(ctx, filter)
	if err != nil {
		return nil, err
	}

	alerts := s.engine.GenerateAlerts(records)

	if err := s.cache.SetAlerts(ctx, filter, alerts); err != nil {
		log.Warn().Err(err).Msg("replenishment: cache set alerts failed")
	}

	return alerts, nil
}

func (s *ReplenishmentService) GetSummary(ctx context.Context, filter domain.InventoryFilter) (*replenishment.Summary, error) {
	if summary, ok, err := s.cache.GetSummary(ctx, filter); err == nil && ok {
		return summary, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("replenishment: cache get summary failed")
	}

	records, leadTimes, err := s.loadSnapshot(ctx, filter)
	if err != nil {
		return nil, err
	}

	summary := s.engine.Summarize(records, leadTimes)

	if err := s.cache.SetSummary(ctx, filter, &summary); err != nil {
		log.Warn().Err(err).Msg("replenishment: cache set summary failed")
	}

	return &summary, nil
}

// GetSuggestions returns the per-item evaluation for every item that needs a
// reorder, in snapshot order.
func (s *ReplenishmentService) GetSuggestions(ctx context.Context, filter domain.InventoryFilter) ([]replenishment.Evaluation, error) {
	records, leadTimes, err := s.loadSnapshot(ctx, filter)
	if err != nil {
		return nil, err
	}

	suggestions := make([]replenishment.Evaluation, 0)
	for _, ev := range s.engine.Evaluate(records, leadTimes) {
		if ev.Suggestion.ShouldReorder {
			suggestions = append(suggestions, ev)
		}
	}
	return suggestions, nil
}

func (s *ReplenishmentService) GetDraftPurchaseOrders(ctx context.Context, filter domain.InventoryFilter) ([]replenishment.DraftPurchaseOrder, error) {
	records, leadTimes, err := s.loadSnapshot(ctx, filter)
	if err != nil {
		return nil, err
	}

	return s.engine.Consolidate(records, leadTimes, s.now()), nil
}

// ConfirmDrafts consolidates the current snapshot and persists the drafts for
// the requested suppliers. An empty supplier list confirms every draft.
func (s *ReplenishmentService) ConfirmDrafts(ctx context.Context, filter domain.InventoryFilter, supplierIDs []string) ([]replenishment.DraftPurchaseOrder, error) {
	if s.orders == nil {
		return nil, fmt.Errorf("draft persistence is not configured")
	}

	drafts, err := s.GetDraftPurchaseOrders(ctx, filter)
	if err != nil {
		return nil, err
	}

	selected := selectDrafts(drafts, supplierIDs)
	if err := s.orders.SaveDrafts(ctx, selected); err != nil {
		return nil, fmt.Errorf("failed to save drafts: %w", err)
	}

	log.Info().Int("drafts", len(selected)).Msg("replenishment: drafts confirmed")
	return selected, nil
}

// EvaluateStores evaluates each store's snapshot independently and in
// parallel. An empty storeIDs list evaluates every store.
func (s *ReplenishmentService) EvaluateStores(ctx context.Context, storeIDs []int64) ([]StoreReport, error) {
	if len(storeIDs) == 0 {
		ids, err := s.inventory.ListStoreIDs(ctx)
		if err != nil {
			return nil, err
		}
		storeIDs = ids
	}

	suppliers, err := s.inventory.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	leadTimes := replenishment.LeadTimesFromSuppliers(suppliers)
	now := s.now()

	reports := make([]StoreReport, len(storeIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, storeID := range storeIDs {
		g.Go(func() error {
			records, err := s.inventory.ListInventory(gctx, domain.InventoryFilter{StoreIDs: []int64{storeID}})
			if err != nil {
				return fmt.Errorf("store %d: %w", storeID, err)
			}

			// Each goroutine writes only its own slot.
			reports[i] = StoreReport{
				StoreID: storeID,
				Summary: s.engine.Summarize(records, leadTimes),
				Alerts:  s.engine.GenerateAlerts(records),
				Drafts:  s.engine.Consolidate(records, leadTimes, now),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Debug().Int("stores", len(reports)).Msg("replenishment: stores evaluated")
	return reports, nil
}

// ImportSnapshot replaces stored suppliers and items with the given snapshot
// and drops cached alert feeds and summaries computed from the old data.
func (s *ReplenishmentService) ImportSnapshot(ctx context.Context, suppliers []domain.Supplier, records []domain.InventoryRecord) (repository.ImportStats, error) {
	if s.snapshots == nil {
		return repository.ImportStats{}, fmt.Errorf("snapshot import is not configured")
	}

	stats, err := s.snapshots.ImportSnapshot(ctx, suppliers, records)
	if err != nil {
		return stats, err
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("replenishment: cache invalidation after import failed")
	}
	return stats, nil
}

// InvalidateCache drops every cached alert feed and summary.
func (s *ReplenishmentService) InvalidateCache(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}

func (s *ReplenishmentService) loadSnapshot(ctx context.Context, filter domain.InventoryFilter) ([]domain.InventoryRecord, replenishment.LeadTimes, error) {
	records, err := s.inventory.ListInventory(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	suppliers, err := s.inventory.ListSuppliers(ctx)
	if err != nil {
		return nil, nil, err
	}

	return records, replenishment.LeadTimesFromSuppliers(suppliers), nil
}

func selectDrafts(drafts []replenishment.DraftPurchaseOrder, supplierIDs []string) []replenishment.DraftPurchaseOrder {
	if len(supplierIDs) == 0 {
		return drafts
	}

	wanted := make(map[string]struct{}, len(supplierIDs))
	for _, id := range supplierIDs {
		wanted[id] = struct{}{}
	}

	selected := make([]replenishment.DraftPurchaseOrder, 0, len(drafts))
	for _, d := range drafts {
		if _, ok := wanted[d.SupplierID]; ok {
			selected = append(selected, d)
		}
	}
	return selected
}
