package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gorillago3318/portal/internal/models"
)

// CommissionHandler handles commission endpoints
type CommissionHandler struct {
	db *gorm.DB
}

// NewCommissionHandler creates a new commission handler
func NewCommissionHandler(db *gorm.DB) *CommissionHandler {
	return &CommissionHandler{db: db}
}

// List returns commissions visible to the requester. Admins see all and may
// narrow to one agent; everyone else sees records where they are the agent
// or the referrer.
func (h *CommissionHandler) List(c *gin.Context) {
	role := c.MustGet("role").(models.AgentRole)
	requesterID := c.MustGet("agent_id").(uuid.UUID)

	var agentFilter *uuid.UUID
	if role == models.RoleAdmin {
		if agentParam := c.Query("agent_id"); agentParam != "" {
			agentID, err := uuid.Parse(agentParam)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid agent_id filter"})
				return
			}
			agentFilter = &agentID
		}
	}

	query := h.db.Model(&models.Commission{})
	if role == models.RoleAdmin {
		if agentFilter != nil {
			query = query.Where("agent_id = ?", *agentFilter)
		}
	} else {
		query = query.Where("agent_id = ? OR referrer_id = ?", requesterID, requesterID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var commissions []models.Commission
	if err := query.Preload("Lead").Order("created_at DESC").Find(&commissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list commissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"commissions": commissions})
}

// Get returns a single commission
func (h *CommissionHandler) Get(c *gin.Context) {
	role := c.MustGet("role").(models.AgentRole)
	requesterID := c.MustGet("agent_id").(uuid.UUID)

	commissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid commission ID"})
		return
	}

	var commission models.Commission
	if err := h.db.Preload("Lead").First(&commission, "id = ?", commissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Commission not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get commission"})
		return
	}

	if role != models.RoleAdmin &&
		commission.AgentID != requesterID &&
		(commission.ReferrerID == nil || *commission.ReferrerID != requesterID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to view this commission"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"commission": commission})
}

// UpdateCommissionRequest is the payout status payload
type UpdateCommissionRequest struct {
	Status models.CommissionStatus `json:"status" binding:"required"`
}

// UpdateStatus marks a commission Pending or Paid. Admin only.
func (h *CommissionHandler) UpdateStatus(c *gin.Context) {
	commissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid commission ID"})
		return
	}

	var req UpdateCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Status != models.CommissionStatusPending && req.Status != models.CommissionStatusPaid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be Pending or Paid"})
		return
	}

	var commission models.Commission
	if err := h.db.First(&commission, "id = ?", commissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Commission not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get commission"})
		return
	}

	commission.Status = req.Status
	if err := h.db.Save(&commission).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update commission"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"commission": commission})
}
