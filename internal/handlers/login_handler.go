package handlers

import (
	"net/http"

	"go-pos-retail/internal/services"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthHandler struct {
	Auth *services.AuthService
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input LoginRequest
	// 1. Validate Input JSON
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	// 2. Verify credentials and sign a token
	token, user, err := h.Auth.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		respondError(c, err, "Invalid credentials")
		return
	}

	// 3. Success! Return Token and Role
	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"role":     user.Role,
		"username": user.Username,
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input services.RegisterRequest

	// 1. Parse JSON
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	// 2. Hash and save
	user, err := h.Auth.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, "Failed to register user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully!", "id": user.ID, "role": user.Role})
}
