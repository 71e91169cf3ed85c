package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gorillago3318/portal/internal/commission"
	"github.com/gorillago3318/portal/internal/models"
	"github.com/gorillago3318/portal/internal/referral"
	leadsvc "github.com/gorillago3318/portal/internal/services/lead"
	"github.com/gorillago3318/portal/internal/workflow"
)

// LeadHandler handles lead endpoints
type LeadHandler struct {
	service *leadsvc.Service
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(service *leadsvc.Service) *LeadHandler {
	return &LeadHandler{service: service}
}

// Create handles lead intake from the public form. The route is protected by
// the API key middleware, not JWT auth.
func (h *LeadHandler) Create(c *gin.Context) {
	var input leadsvc.CreateLeadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lead, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, leadsvc.ErrMissingContact):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, referral.ErrDirectoryUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable, please retry"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create lead"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"lead": lead})
}

// List returns leads visible to the requester with optional filters
func (h *LeadHandler) List(c *gin.Context) {
	role := c.MustGet("role").(models.AgentRole)
	requesterID := c.MustGet("agent_id").(uuid.UUID)

	opts := leadsvc.ListOptions{
		Status: models.LeadStatus(c.Query("status")),
	}
	if opts.Status != "" && !models.ValidLeadStatus(opts.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status filter"})
		return
	}

	if agentParam := c.Query("agent_id"); agentParam != "" {
		agentID, err := uuid.Parse(agentParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid agent_id filter"})
			return
		}
		opts.AgentID = &agentID
	}

	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date, expected RFC3339"})
			return
		}
		opts.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date, expected RFC3339"})
			return
		}
		opts.To = &t
	}

	opts.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	opts.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	leads, total, err := h.service.List(c.Request.Context(), role, requesterID, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list leads"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leads": leads,
		"total": total,
		"page":  opts.Page,
	})
}

// Get returns a single lead
func (h *LeadHandler) Get(c *gin.Context) {
	role := c.MustGet("role").(models.AgentRole)
	requesterID := c.MustGet("agent_id").(uuid.UUID)

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lead ID"})
		return
	}

	lead, err := h.service.Get(c.Request.Context(), role, requesterID, leadID)
	if err != nil {
		switch {
		case errors.Is(err, leadsvc.ErrLeadNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		case errors.Is(err, workflow.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to view this lead"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get lead"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"lead": lead})
}

// UpdateStatusRequest is the status change payload
type UpdateStatusRequest struct {
	Status     models.LeadStatus `json:"status" binding:"required"`
	LoanAmount *decimal.Decimal  `json:"loan_amount"`
}

// UpdateStatus applies a workflow transition to a lead
func (h *LeadHandler) UpdateStatus(c *gin.Context) {
	role := c.MustGet("role").(models.AgentRole)
	requesterID := c.MustGet("agent_id").(uuid.UUID)

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lead ID"})
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lead, err := h.service.UpdateStatus(c.Request.Context(), leadID, leadsvc.UpdateStatusInput{
		NewStatus:   req.Status,
		LoanAmount:  req.LoanAmount,
		Role:        role,
		RequesterID: requesterID,
	})
	if err != nil {
		h.transitionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lead": lead})
}

func (h *LeadHandler) transitionError(c *gin.Context, err error) {
	var invalid *workflow.InvalidTransitionError
	switch {
	case errors.Is(err, leadsvc.ErrLeadNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
	case errors.Is(err, workflow.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to modify this lead"})
	case errors.Is(err, workflow.ErrUnknownStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &invalid),
		errors.Is(err, workflow.ErrMissingLoanAmount),
		errors.Is(err, workflow.ErrUnassignedLead),
		errors.Is(err, commission.ErrInvalidLoanAmount):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update lead"})
	}
}

// ReassignRequest is the reassignment payload
type ReassignRequest struct {
	AgentID string `json:"agent_id" binding:"required"`
}

// Reassign moves a lead to another agent. Admin only, enforced by routing.
func (h *LeadHandler) Reassign(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lead ID"})
		return
	}

	var req ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	agentID, err := uuid.Parse(req.AgentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid agent ID"})
		return
	}

	lead, err := h.service.Reassign(c.Request.Context(), leadID, agentID)
	if err != nil {
		switch {
		case errors.Is(err, leadsvc.ErrLeadNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		case errors.Is(err, leadsvc.ErrAgentNotFound):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Agent not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reassign lead"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"lead": lead})
}
