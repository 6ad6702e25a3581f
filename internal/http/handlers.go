package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"employee-review/internal/llm"
	"employee-review/internal/service"
	"employee-review/internal/weight"
)

const (
	detailEmployeeNotFound = "Сотрудник не найден."
	detailNoFeedback       = "Нет отзывов для данного сотрудника."
)

// Pinger es lo mínimo que necesita /healthz (pgxpool.Pool lo cumple).
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responde el estado de la base.
type HealthHandler struct {
	logger *zap.Logger
	db     Pinger
}

func NewHealthHandler(logger *zap.Logger, db Pinger) *HealthHandler {
	return &HealthHandler{logger: logger, db: db}
}

// Health maneja GET /healthz.
func (h *HealthHandler) Health(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// employeeIDParam lee :employee_id; responde 400 si no es entero.
func employeeIDParam(c *gin.Context) (int64, bool) {
	return int64Param(c, "employee_id")
}

func int64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// respondError traduce errores de servicio a códigos HTTP.
func respondError(c *gin.Context, logger *zap.Logger, err error, notFoundDetail string) {
	switch {
	case errors.Is(err, service.ErrInvalidFeedback), errors.Is(err, weight.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, pgx.ErrNoRows):
		c.JSON(http.StatusNotFound, gin.H{"detail": notFoundDetail})
	case errors.Is(err, service.ErrNoFeedback):
		c.JSON(http.StatusNotFound, gin.H{"detail": detailNoFeedback})
	case errors.Is(err, service.ErrRunInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "summary run already in progress"})
	case errors.Is(err, llm.ErrRequestFailed), errors.Is(err, service.ErrConsolidationParse):
		logger.Error("summary pipeline failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	default:
		logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
