// File: handlers/device.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"concierge/config"
	"concierge/database/repository"
	"concierge/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenRegistrar stores push tokens for later delivery. Nil when push is
// disabled; the endpoint then reports the capability as unavailable.
type TokenRegistrar interface {
	RegisterToken(ctx context.Context, principalID, token string) error
}

// DeviceHandler exposes bookable equipment and the retreat's locations.
type DeviceHandler struct {
	Devices   repository.DeviceRepository
	Locations repository.LocationRepository
	Tokens    TokenRegistrar
	Logger    *zap.Logger
}

func NewDeviceHandler(devices repository.DeviceRepository, locations repository.LocationRepository, tokens TokenRegistrar, logger *zap.Logger) *DeviceHandler {
	return &DeviceHandler{Devices: devices, Locations: locations, Tokens: tokens, Logger: logger}
}

// RegisterDevice handles POST /api/devices.
func (h *DeviceHandler) RegisterDevice(c *gin.Context) {
	var device models.Device
	if err := c.ShouldBindJSON(&device); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if device.Name == "" || device.Location == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and location are required"})
		return
	}
	if device.ID == "" {
		device.ID = uuid.NewString()
	}
	if device.SessionDuration <= 0 {
		device.SessionDuration = config.AppConfig.DefaultSlotDuration
	}
	device.IsActive = true
	device.CreatedAt = time.Now()

	if err := h.Devices.Create(c.Request.Context(), &device); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntity) {
			c.JSON(http.StatusConflict, gin.H{"error": "device already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"device": device})
}

// ListDevices handles GET /api/devices.
func (h *DeviceHandler) ListDevices(c *gin.Context) {
	devices, err := h.Devices.GetAllActive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"devices": devices})
}

// GetDevice handles GET /api/devices/:id.
func (h *DeviceHandler) GetDevice(c *gin.Context) {
	device, err := h.Devices.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"device": device})
}

// ListLocations handles GET /api/locations.
func (h *DeviceHandler) ListLocations(c *gin.Context) {
	locations, err := h.Locations.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": locations})
}

// RegisterPushToken handles POST /api/push-tokens.
func (h *DeviceHandler) RegisterPushToken(c *gin.Context) {
	if h.Tokens == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "push delivery is not enabled"})
		return
	}

	var input struct {
		PrincipalID string `json:"principal_id" binding:"required"`
		Token       string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if err := h.Tokens.RegisterToken(c.Request.Context(), input.PrincipalID, input.Token); err != nil {
		h.Logger.Error("Failed to register push token",
			zap.String("principal_id", input.PrincipalID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "registered"})
}
