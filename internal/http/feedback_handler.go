package http

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"employee-review/internal/service"
)

// FeedbackHandler expone la carga y consulta de reseñas.
type FeedbackHandler struct {
	logger *zap.Logger
	svc    *service.FeedbackService
}

func NewFeedbackHandler(logger *zap.Logger, svc *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{logger: logger, svc: svc}
}

// CreateFeedback maneja POST /api/feedback. Acepta un arreglo o un objeto suelto.
func (h *FeedbackHandler) CreateFeedback(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '{' {
		body = append(append([]byte{'['}, body...), ']')
	}

	var inputs []service.FeedbackInput
	if err := json.Unmarshal(body, &inputs); err != nil {
		h.logger.Warn("invalid feedback payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	created, err := h.svc.CreateBatch(c.Request.Context(), inputs)
	if err != nil {
		respondError(c, h.logger, err, detailEmployeeNotFound)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "created": len(created)})
}

// ListFeedback maneja GET /api/feedback.
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	items, err := h.svc.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, detailEmployeeNotFound)
		return
	}
	c.JSON(http.StatusOK, nonNil(items))
}

// ListByEmployee maneja GET /api/feedback/:employee_id.
func (h *FeedbackHandler) ListByEmployee(c *gin.Context) {
	employeeID, ok := employeeIDParam(c)
	if !ok {
		return
	}
	items, err := h.svc.ListByEmployee(c.Request.Context(), employeeID)
	if err != nil {
		respondError(c, h.logger, err, detailEmployeeNotFound)
		return
	}
	c.JSON(http.StatusOK, nonNil(items))
}

// nonNil evita responder null en listas vacías.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
