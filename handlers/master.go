// File: handlers/master.go
package handlers

import (
	"errors"
	"net/http"

	"concierge/config"
	"concierge/services/master"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MasterHandler exposes practitioner profile management over HTTP.
type MasterHandler struct {
	Service master.MasterService
	Logger  *zap.Logger
}

func NewMasterHandler(svc master.MasterService, logger *zap.Logger) *MasterHandler {
	return &MasterHandler{Service: svc, Logger: logger}
}

func respondMasterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, master.ErrAlreadyRegistered):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, master.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, master.ErrNoSlots):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func tooLong(text string) bool {
	limit := config.AppConfig.MaxUserInputLength
	return limit > 0 && len(text) > limit
}

// Register handles POST /api/masters/register.
func (h *MasterHandler) Register(c *gin.Context) {
	var input struct {
		TelegramID string `json:"telegram_id" binding:"required"`
		Intake     string `json:"intake" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if tooLong(input.Intake) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "intake text too long"})
		return
	}

	m, err := h.Service.Register(c.Request.Context(), input.TelegramID, input.Intake)
	if err != nil {
		respondMasterError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"master": m})
}

// GetProfile handles GET /api/masters/:id.
func (h *MasterHandler) GetProfile(c *gin.Context) {
	m, err := h.Service.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondMasterError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"master": m})
}

// ListActive handles GET /api/masters.
func (h *MasterHandler) ListActive(c *gin.Context) {
	masters, err := h.Service.ListActive(c.Request.Context())
	if err != nil {
		respondMasterError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"masters": masters})
}

// UpdateDescription handles PATCH /api/masters/:id/description.
func (h *MasterHandler) UpdateDescription(c *gin.Context) {
	var input struct {
		Description string `json:"description" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if tooLong(input.Description) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "description too long"})
		return
	}

	m, err := h.Service.UpdateDescription(c.Request.Context(), c.Param("id"), input.Description)
	if err != nil {
		respondMasterError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"master": m})
}

// AddSlots handles POST /api/masters/:id/slots.
func (h *MasterHandler) AddSlots(c *gin.Context) {
	var input struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if tooLong(input.Text) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slot text too long"})
		return
	}

	slots, err := h.Service.AddSlots(c.Request.Context(), c.Param("id"), input.Text)
	if err != nil {
		respondMasterError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"slots": slots})
}

// Deactivate handles DELETE /api/masters/:id.
func (h *MasterHandler) Deactivate(c *gin.Context) {
	if err := h.Service.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		respondMasterError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}
