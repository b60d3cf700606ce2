package handlers

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"vetclinic-server/internal/models"
	"vetclinic-server/internal/utils"
)

const (
	statsCacheKey = "vetclinic:admin:stats"
	statsCacheTTL = 30 * time.Second
)

// StatsHandler serves the admin dashboard counters. Redis is optional; with
// a nil client every request hits the database.
type StatsHandler struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(db *gorm.DB, rdb *redis.Client) *StatsHandler {
	return &StatsHandler{DB: db, Redis: rdb}
}

// DashboardStats holds the dashboard counters.
type DashboardStats struct {
	Usuarios        int64 `json:"usuarios"`
	CitasTotales    int64 `json:"citasTotales"`
	CitasPendientes int64 `json:"citasPendientes"`
}

// GetStats returns user and appointment counters for the admin dashboard,
// cached briefly since the dashboard polls.
func (h *StatsHandler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	if h.Redis != nil {
		if cached, err := h.Redis.Get(ctx, statsCacheKey).Bytes(); err == nil {
			var stats DashboardStats
			if err := json.Unmarshal(cached, &stats); err == nil {
				utils.Success(c, "Stats fetched successfully", stats)
				return
			}
		}
	}

	var stats DashboardStats
	if err := h.DB.Model(&models.Usuario{}).Count(&stats.Usuarios).Error; err != nil {
		utils.InternalServerError(c, "Failed to count users: "+err.Error())
		return
	}
	if err := h.DB.Model(&models.Cita{}).Count(&stats.CitasTotales).Error; err != nil {
		utils.InternalServerError(c, "Failed to count appointments: "+err.Error())
		return
	}
	if err := h.DB.Model(&models.Cita{}).
		Where("estado = ?", models.EstadoPendiente).
		Count(&stats.CitasPendientes).Error; err != nil {
		utils.InternalServerError(c, "Failed to count pending appointments: "+err.Error())
		return
	}

	if h.Redis != nil {
		if payload, err := json.Marshal(stats); err == nil {
			// Cache failures are not worth failing the request over.
			h.Redis.Set(ctx, statsCacheKey, payload, statsCacheTTL)
		}
	}

	utils.Success(c, "Stats fetched successfully", stats)
}
