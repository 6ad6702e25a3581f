package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"employee-review/internal/domain"
	"employee-review/internal/repository"
)

// EmployeeHandler expone psicotipo y conteo de reseñas por empleado.
type EmployeeHandler struct {
	logger    *zap.Logger
	employees repository.EmployeeRepository
}

func NewEmployeeHandler(logger *zap.Logger, employees repository.EmployeeRepository) *EmployeeHandler {
	return &EmployeeHandler{logger: logger, employees: employees}
}

// GetPsychotype maneja GET /api/employee/:employee_id/psychotype.
func (h *EmployeeHandler) GetPsychotype(c *gin.Context) {
	employeeID, ok := employeeIDParam(c)
	if !ok {
		return
	}
	emp, err := h.employees.GetByID(c.Request.Context(), employeeID)
	if err != nil {
		respondError(c, h.logger, err, detailEmployeeNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"psychotype":             emp.Psychotype,
		"psychotype_description": emp.PsychotypeDescription,
	})
}

// UpdatePsychotype maneja PUT /api/employee/:employee_id/psychotype.
func (h *EmployeeHandler) UpdatePsychotype(c *gin.Context) {
	employeeID, ok := employeeIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Psychotype            string `json:"psychotype" binding:"required"`
		PsychotypeDescription string `json:"psychotype_description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Psychotype) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "psychotype is required"})
		return
	}
	p := domain.Psychotype{
		EmployeeID:  employeeID,
		Label:       strings.TrimSpace(req.Psychotype),
		Description: strings.TrimSpace(req.PsychotypeDescription),
	}
	if err := h.employees.UpdatePsychotype(c.Request.Context(), p); err != nil {
		respondError(c, h.logger, err, detailEmployeeNotFound)
		return
	}
	c.JSON(http.StatusOK, p)
}

// FeedbackCount maneja GET /api/employees/feedback-count.
func (h *EmployeeHandler) FeedbackCount(c *gin.Context) {
	items, err := h.employees.ListWithFeedbackCount(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, detailEmployeeNotFound)
		return
	}
	c.JSON(http.StatusOK, nonNil(items))
}
