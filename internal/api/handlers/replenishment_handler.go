package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/replenishment"
	"github.com/andresuchdata/replenish/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ReplenishmentHandler struct {
	service *service.ReplenishmentService
}

func NewReplenishmentHandler(service *service.ReplenishmentService) *ReplenishmentHandler {
	return &ReplenishmentHandler{service: service}
}

// EvaluateRequest carries a snapshot supplied by the caller instead of the
// inventory store.
type EvaluateRequest struct {
	Records   []domain.InventoryRecord `json:"records"`
	Suppliers []domain.Supplier        `json:"suppliers"`
	Now       *time.Time               `json:"now,omitempty"`
}

type EvaluateResponse struct {
	Evaluations []replenishment.Evaluation         `json:"evaluations"`
	Alerts      []replenishment.StockAlert         `json:"alerts"`
	Drafts      []replenishment.DraftPurchaseOrder `json:"drafts"`
	Summary     replenishment.Summary              `json:"summary"`
}

type confirmDraftsRequest struct {
	SupplierIDs []string `json:"supplier_ids"`
}

func (h *ReplenishmentHandler) parseFilter(c *gin.Context) domain.InventoryFilter {
	var filter domain.InventoryFilter

	for _, part := range splitQueryList(c, "store_ids") {
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			filter.StoreIDs = append(filter.StoreIDs, id)
		}
	}

	filter.SupplierIDs = splitQueryList(c, "supplier_ids")

	seen := make(map[string]struct{})
	for _, sku := range splitQueryList(c, "skus") {
		if _, ok := seen[sku]; ok {
			continue
		}
		seen[sku] = struct{}{}
		filter.SKUs = append(filter.SKUs, sku)
	}

	return filter
}

// splitQueryList supports both repeated params and comma-separated values:
//
//	?store_ids=1&store_ids=2
//	?store_ids=1,2
func splitQueryList(c *gin.Context, param string) []string {
	var values []string
	for _, raw := range c.QueryArray(param) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				values = append(values, part)
			}
		}
	}
	return values
}

func (h *ReplenishmentHandler) GetAlerts(c *gin.Context) {
	alerts, err := h.service.GetAlerts(c.Request.Context(), h.parseFilter(c))
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch alerts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch alerts", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  alerts,
		"total": len(alerts),
	})
}

func (h *ReplenishmentHandler) GetSuggestions(c *gin.Context) {
	suggestions, err := h.service.GetSuggestions(c.Request.Context(), h.parseFilter(c))
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch suggestions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch suggestions", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  suggestions,
		"total": len(suggestions),
	})
}

func (h *ReplenishmentHandler) GetSummary(c *gin.Context) {
	summary, err := h.service.GetSummary(c.Request.Context(), h.parseFilter(c))
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch summary")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch summary", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *ReplenishmentHandler) GetDraftPurchaseOrders(c *gin.Context) {
	drafts, err := h.service.GetDraftPurchaseOrders(c.Request.Context(), h.parseFilter(c))
	if err != nil {
		log.Error().Err(err).Msg("failed to build draft purchase orders")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build draft purchase orders", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  drafts,
		"total": len(drafts),
	})
}

func (h *ReplenishmentHandler) ConfirmDrafts(c *gin.Context) {
	var req confirmDraftsRequest
	// An empty body confirms every draft.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}
	}

	drafts, err := h.service.ConfirmDrafts(c.Request.Context(), h.parseFilter(c), req.SupplierIDs)
	if err != nil {
		log.Error().Err(err).Msg("failed to confirm drafts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to confirm drafts", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":  drafts,
		"total": len(drafts),
	})
}

func (h *ReplenishmentHandler) GetStoreReports(c *gin.Context) {
	filter := h.parseFilter(c)
	reports, err := h.service.EvaluateStores(c.Request.Context(), filter.StoreIDs)
	if err != nil {
		log.Error().Err(err).Msg("failed to evaluate stores")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to evaluate stores", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  reports,
		"total": len(reports),
	})
}

// Evaluate runs the engine over the snapshot in the request body. Nothing is
// read from or written to the inventory store.
func (h *ReplenishmentHandler) Evaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	now := h.service.Now()
	if req.Now != nil {
		now = *req.Now
	}

	engine := h.service.Engine()
	leadTimes := replenishment.LeadTimesFromSuppliers(req.Suppliers)

	c.JSON(http.StatusOK, EvaluateResponse{
		Evaluations: engine.Evaluate(req.Records, leadTimes),
		Alerts:      engine.GenerateAlerts(req.Records),
		Drafts:      engine.Consolidate(req.Records, leadTimes, now),
		Summary:     engine.Summarize(req.Records, leadTimes),
	})
}

func (h *ReplenishmentHandler) InvalidateCache(c *gin.Context) {
	if err := h.service.InvalidateCache(c.Request.Context()); err != nil {
		log.Error().Err(err).Msg("failed to invalidate cache")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to invalidate cache", "details": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
