package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/replenish/backend-go/internal/api/handlers"
	"github.com/andresuchdata/replenish/backend-go/internal/api/middleware"
	"github.com/andresuchdata/replenish/backend-go/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	ReplenishmentService *service.ReplenishmentService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(cors.New(corsConfig(allowedOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil && services.ReplenishmentService != nil {
		h := handlers.NewReplenishmentHandler(services.ReplenishmentService)
		group := apiGroup.Group("/replenishment")
		{
			group.GET("/alerts", h.GetAlerts)
			group.GET("/suggestions", h.GetSuggestions)
			group.GET("/summary", h.GetSummary)
			group.GET("/stores/report", h.GetStoreReports)
			group.POST("/evaluate", h.Evaluate)
			group.DELETE("/cache", h.InvalidateCache)

			draftGroup := group.Group("/purchase_orders/drafts")
			{
				draftGroup.GET("", h.GetDraftPurchaseOrders)
				draftGroup.POST("/confirm", h.ConfirmDrafts)
			}
		}
	}

	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	config := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			config.AllowOrigins = nil
			config.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			config.AllowOrigins = normalizedOrigins
		}
	}
	return config
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
