package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"employee-review/internal/domain"
	"employee-review/internal/repository"
)

const detailAspectNotFound = "Аспект не найден."

// AspectHandler es el CRUD de aspectos de evaluación.
type AspectHandler struct {
	logger  *zap.Logger
	aspects repository.AspectRepository
}

func NewAspectHandler(logger *zap.Logger, aspects repository.AspectRepository) *AspectHandler {
	return &AspectHandler{logger: logger, aspects: aspects}
}

type aspectRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *AspectHandler) List(c *gin.Context) {
	items, err := h.aspects.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, detailAspectNotFound)
		return
	}
	c.JSON(http.StatusOK, nonNil(items))
}

func (h *AspectHandler) Create(c *gin.Context) {
	var req aspectRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	aspect, err := h.aspects.Create(c.Request.Context(), strings.TrimSpace(req.Text))
	if err != nil {
		respondError(c, h.logger, err, detailAspectNotFound)
		return
	}
	c.JSON(http.StatusCreated, aspect)
}

func (h *AspectHandler) Get(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	aspect, err := h.aspects.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, detailAspectNotFound)
		return
	}
	c.JSON(http.StatusOK, aspect)
}

// Update sirve PUT y PATCH: el aspecto solo tiene un campo editable.
func (h *AspectHandler) Update(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var req aspectRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	aspect := domain.Aspect{ID: id, Text: strings.TrimSpace(req.Text)}
	if err := h.aspects.Update(c.Request.Context(), aspect); err != nil {
		respondError(c, h.logger, err, detailAspectNotFound)
		return
	}
	c.JSON(http.StatusOK, aspect)
}

func (h *AspectHandler) Delete(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	if err := h.aspects.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, detailAspectNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}
