package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"controlnest-backend/internal/service"
)

type createLocationRequest struct {
	Name    *string `json:"name" binding:"required"`
	Address *string `json:"address" binding:"required"`
	Phone   *string `json:"phone" binding:"required"`
}

type updateLocationRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

func (h *Handler) ListLocations(c *gin.Context) {
	locations, err := h.locations.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, locations)
}

func (h *Handler) GetLocation(c *gin.Context) {
	location, err := h.locations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, location)
}

// CreateLocation handles POST /api/location. The caller becomes the owner.
func (h *Handler) CreateLocation(c *gin.Context) {
	var req createLocationRequest
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}

	location, err := h.locations.Create(c.Request.Context(), caller(c).ID, service.CreateLocationInput{
		Name:    *req.Name,
		Address: *req.Address,
		Phone:   *req.Phone,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": "Location creation was successful", "location": location})
}

func (h *Handler) UpdateLocation(c *gin.Context) {
	var req updateLocationRequest
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}

	location, err := h.locations.Update(c.Request.Context(), c.Param("id"), service.UpdateLocationInput{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "Location update was successful", "location": location})
}

func (h *Handler) DeleteLocation(c *gin.Context) {
	if _, err := h.locations.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "Location deleted successfully"})
}
