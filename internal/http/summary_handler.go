package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"employee-review/internal/repository"
	"employee-review/internal/service"
)

// SummaryHandler dispara el pipeline y expone los resúmenes guardados.
type SummaryHandler struct {
	logger    *zap.Logger
	svc       *service.SummaryService
	employees repository.EmployeeRepository
	summaries repository.SummaryRepository
}

func NewSummaryHandler(
	logger *zap.Logger,
	svc *service.SummaryService,
	employees repository.EmployeeRepository,
	summaries repository.SummaryRepository,
) *SummaryHandler {
	return &SummaryHandler{
		logger:    logger,
		svc:       svc,
		employees: employees,
		summaries: summaries,
	}
}

// GenerateSummary maneja POST /api/feedback/generate-summary/:employee_id.
func (h *SummaryHandler) GenerateSummary(c *gin.Context) {
	employeeID, ok := employeeIDParam(c)
	if !ok {
		return
	}
	if claims, ok := GetAuthClaims(c); ok {
		h.logger.Info("summary requested", zap.String("operator", claims.Operator), zap.Int64("employee_id", employeeID))
	}
	res, err := h.svc.RunSummary(c.Request.Context(), employeeID)
	if err != nil {
		respondError(c, h.logger, err, detailEmployeeNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Анализ завершен успешно.",
		"run_id":     res.RunID,
		"summary":    res.Consolidated,
		"psychotype": res.Psychotype,
	})
}

// AspectSummaries maneja GET /api/aspect-summaries/:employee_id.
func (h *SummaryHandler) AspectSummaries(c *gin.Context) {
	employeeID, ok := employeeIDParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.employees.GetByID(ctx, employeeID); err != nil {
		respondError(c, h.logger, err, detailEmployeeNotFound)
		return
	}
	items, err := h.summaries.ListAspectSummaries(ctx, employeeID)
	if err != nil {
		respondError(c, h.logger, err, detailEmployeeNotFound)
		return
	}
	c.JSON(http.StatusOK, nonNil(items))
}

// GeneralSummaries maneja GET /api/general-summaries/:employee_id.
func (h *SummaryHandler) GeneralSummaries(c *gin.Context) {
	employeeID, ok := employeeIDParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.employees.GetByID(ctx, employeeID); err != nil {
		respondError(c, h.logger, err, detailEmployeeNotFound)
		return
	}
	items, err := h.summaries.ListGeneralSummaries(ctx, employeeID)
	if err != nil {
		respondError(c, h.logger, err, detailEmployeeNotFound)
		return
	}
	c.JSON(http.StatusOK, nonNil(items))
}
