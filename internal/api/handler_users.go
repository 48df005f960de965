package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"controlnest-backend/internal/auth"
	"controlnest-backend/internal/service"
)

type registerRequest struct {
	Name     *string `json:"name" binding:"required"`
	Email    *string `json:"email" binding:"required,email"`
	Password *string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    *string `json:"email" binding:"required,email"`
	Password *string `json:"password" binding:"required"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password"`
}

// ListUsers handles GET /api/user.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser handles GET /api/user/:id. An unknown id yields null.
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Register handles POST /api/user.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}

	if _, err := h.users.Create(c.Request.Context(), service.CreateUserInput{
		Name:     *req.Name,
		Email:    *req.Email,
		Password: *req.Password,
	}); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": "User registration successful"})
}

// Login handles POST /api/user/login. The token is returned in the body and
// as an HTTP-only cookie.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}

	user, token, err := h.users.Login(c.Request.Context(), *req.Email, *req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("token", token, int(h.tokenTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    auth.Identity{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

// UpdateUser handles PUT /api/user/:id.
func (h *Handler) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}

	user, err := h.users.Update(c.Request.Context(), c.Param("id"), service.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "User update successful", "user": user})
}

// DeleteUser handles DELETE /api/user/:id.
func (h *Handler) DeleteUser(c *gin.Context) {
	if _, err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "User deleted successfully"})
}
