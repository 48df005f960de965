package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"controlnest-backend/internal/model"
	"controlnest-backend/internal/store"
)

type putSubscriptionRequest struct {
	Endpoint  *string  `json:"endpoint" binding:"required,url"`
	P256DH    *string  `json:"p256dh" binding:"required"`
	Auth      *string  `json:"auth" binding:"required"`
	Locations []string `json:"locations" binding:"omitempty,dive,objectid"`
}

type deleteSubscriptionRequest struct {
	Endpoint *string `json:"endpoint" binding:"required"`
}

// PutSubscription creates or replaces the caller's subscription to device
// status changes at the given locations.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}

	subscription := &model.PushSubscription{
		Endpoint: *req.Endpoint,
		P256DH:   *req.P256DH,
		Auth:     *req.Auth,
		UserID:   caller(c).ID,
	}
	if err := h.store.PutSubscription(c.Request.Context(), subscription, req.Locations); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": "Subscription saved"})
}

// DeleteSubscription removes the caller's subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}

	if err := h.store.DeleteSubscription(c.Request.Context(), *req.Endpoint, caller(c).ID); err != nil {
		fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSubscription returns the locations the caller's subscription watches.
func (h *Handler) GetSubscription(c *gin.Context) {
	endpoint := c.Query("endpoint")
	if endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}

	subscription, err := h.store.GetSubscription(c.Request.Context(), endpoint)
	if errors.Is(err, store.ErrNotFound) || (err == nil && subscription.UserID != caller(c).ID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "subscription not found"})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	locationIDs := make([]string, len(subscription.Locations))
	for i, location := range subscription.Locations {
		locationIDs[i] = location.ID
	}

	c.JSON(http.StatusOK, gin.H{"locations": locationIDs})
}
