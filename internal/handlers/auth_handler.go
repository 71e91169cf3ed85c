package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gorillago3318/portal/internal/config"
	"github.com/gorillago3318/portal/internal/jobs"
	"github.com/gorillago3318/portal/internal/models"
	"github.com/gorillago3318/portal/internal/queue"
	"github.com/gorillago3318/portal/internal/utils"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	db    *gorm.DB
	cfg   *config.Config
	queue queue.QueueInterface
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, cfg *config.Config, q queue.QueueInterface) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, queue: q}
}

// LoginRequest is the login payload
type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates an agent by phone and password and issues a JWT.
// Pending and deactivated accounts cannot log in.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var agent models.Agent
	if err := h.db.Where("phone = ?", req.Phone).First(&agent).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid phone or password"})
		return
	}

	if !utils.CheckPasswordHash(req.Password, agent.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid phone or password"})
		return
	}

	if !agent.IsActive() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is not active"})
		return
	}

	expiration := time.Duration(h.cfg.JWT.Expiration) * time.Hour
	token, err := utils.GenerateToken(agent.ID, agent.Role, agent.Phone, expiration)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"agent": agent,
	})
}

// ForgotPasswordRequest is the forgot password payload
type ForgotPasswordRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// ForgotPassword issues a reset token and sends the reset link over WhatsApp.
// The response is the same whether or not the phone exists.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response := gin.H{"message": "If the account exists, a reset link has been sent"}

	var agent models.Agent
	if err := h.db.Where("phone = ?", req.Phone).First(&agent).Error; err != nil {
		c.JSON(http.StatusOK, response)
		return
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate reset token"})
		return
	}
	token := hex.EncodeToString(tokenBytes)
	expires := time.Now().Add(1 * time.Hour)

	agent.ResetPasswordToken = &token
	agent.ResetPasswordExpires = &expires
	if err := h.db.Save(&agent).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save reset token"})
		return
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", h.cfg.FrontendURL, token)
	if err := jobs.EnqueuePasswordReset(h.queue, agent.Phone, agent.Name, resetURL); err != nil {
		log.Printf("Failed to enqueue password reset for %s: %v", agent.Phone, err)
	}

	c.JSON(http.StatusOK, response)
}

// ResetPasswordRequest is the reset password payload
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// ResetPassword sets a new password given a valid, unexpired reset token
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var agent models.Agent
	err := h.db.Where("reset_password_token = ?", req.Token).First(&agent).Error
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
		return
	}

	if agent.ResetPasswordExpires == nil || time.Now().After(*agent.ResetPasswordExpires) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	agent.PasswordHash = hash
	agent.ResetPasswordToken = nil
	agent.ResetPasswordExpires = nil
	if err := h.db.Save(&agent).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}
