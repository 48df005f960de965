package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"controlnest-backend/internal/objectid"
	"controlnest-backend/internal/service"
)

type listDevicesRequest struct {
	LocationID *string `json:"locationId" form:"locationId"`
}

type createDeviceRequest struct {
	LocationID *string `json:"locationId" form:"locationId" binding:"required,objectid"`
	Type       *string `json:"type" form:"type" binding:"required"`
	Status     *string `json:"status" form:"status" binding:"required"`
}

type updateDeviceRequest struct {
	Type   *string `json:"type" form:"type"`
	Status *string `json:"status" form:"status"`
}

// ListDevices handles GET /api/device. locationId may come from a JSON body
// or the query string; without it every device is listed.
func (h *Handler) ListDevices(c *gin.Context) {
	var req listDevicesRequest
	var err error
	if c.Request.ContentLength > 0 {
		err = c.ShouldBindJSON(&req)
	} else {
		err = c.ShouldBindQuery(&req)
	}
	if err != nil {
		fail(c, toValidationErrors(err))
		return
	}

	locationID := ""
	if req.LocationID != nil {
		locationID = *req.LocationID
	}
	if locationID != "" && !objectid.IsValid(locationID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgBadID})
		return
	}

	devices, err := h.devices.List(c.Request.Context(), locationID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, devices)
}

func (h *Handler) GetDevice(c *gin.Context) {
	device, err := h.devices.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, device)
}

// CreateDevice handles POST /api/device as JSON or multipart form with an
// optional image file.
func (h *Handler) CreateDevice(c *gin.Context) {
	var req createDeviceRequest
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}
	image, err := h.imageUpload(c)
	if err != nil {
		fail(c, err)
		return
	}

	device, err := h.devices.Create(c.Request.Context(), service.CreateDeviceInput{
		LocationID: *req.LocationID,
		Type:       *req.Type,
		Status:     *req.Status,
		Image:      image,
	})
	if errors.Is(err, service.ErrUnknownLocation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": "Device creation was successful", "device": device})
}

// UpdateDevice handles PUT /api/device/:id. A missing device is a 404.
func (h *Handler) UpdateDevice(c *gin.Context) {
	var req updateDeviceRequest
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}
	image, err := h.imageUpload(c)
	if err != nil {
		fail(c, err)
		return
	}

	device, err := h.devices.Update(c.Request.Context(), c.Param("id"), service.UpdateDeviceInput{
		Type:   req.Type,
		Status: req.Status,
		Image:  image,
	})
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "Device update was successful", "device": device})
}

func (h *Handler) DeleteDevice(c *gin.Context) {
	if _, err := h.devices.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "Device deleted successfully"})
}

// imageUpload reads the optional "image" file of a multipart request into
// memory.
func (h *Handler) imageUpload(c *gin.Context) (*service.Upload, error) {
	if c.ContentType() != binding.MIMEMultipartPOSTForm {
		return nil, nil
	}

	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, ValidationErrors{{Field: "image", Message: err.Error()}}
	}
	if h.maxUpload > 0 && fh.Size > h.maxUpload {
		return nil, ValidationErrors{{Field: "image", Message: fmt.Sprintf("exceeds the %d byte limit", h.maxUpload)}}
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" || strings.HasPrefix(mimeType, "application/octet-stream") {
		mimeType = http.DetectContentType(data)
	}
	return &service.Upload{Data: data, MimeType: mimeType, Name: fh.Filename}, nil
}
