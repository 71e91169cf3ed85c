package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gorillago3318/portal/internal/models"
	agentsvc "github.com/gorillago3318/portal/internal/services/agent"
)

// AgentHandler handles agent directory endpoints
type AgentHandler struct {
	service *agentsvc.Service
}

// NewAgentHandler creates a new agent handler
func NewAgentHandler(service *agentsvc.Service) *AgentHandler {
	return &AgentHandler{service: service}
}

// Register handles self-registration. New accounts wait for admin approval.
func (h *AgentHandler) Register(c *gin.Context) {
	var input agentsvc.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	agent, err := h.service.Register(c.Request.Context(), input, false)
	if err != nil {
		h.registerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration submitted, pending approval",
		"agent":   agent,
	})
}

// Create handles admin creation of agents. The account is Active immediately.
func (h *AgentHandler) Create(c *gin.Context) {
	var input agentsvc.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	agent, err := h.service.Register(c.Request.Context(), input, true)
	if err != nil {
		h.registerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"agent": agent})
}

func (h *AgentHandler) registerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, agentsvc.ErrPhoneTaken),
		errors.Is(err, agentsvc.ErrReferralCodeTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, agentsvc.ErrParentNotFound):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create agent"})
	}
}

// List returns agents, optionally filtered by role and status
func (h *AgentHandler) List(c *gin.Context) {
	opts := agentsvc.ListOptions{
		Role:   models.AgentRole(c.Query("role")),
		Status: models.AgentStatus(c.Query("status")),
	}

	agents, err := h.service.List(c.Request.Context(), opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list agents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"agents": agents})
}

// Get returns a single agent
func (h *AgentHandler) Get(c *gin.Context) {
	agentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid agent ID"})
		return
	}

	agent, err := h.service.Get(c.Request.Context(), agentID)
	if err != nil {
		if errors.Is(err, agentsvc.ErrAgentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get agent"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"agent": agent})
}

// Update modifies an agent's profile. Referral codes cannot be changed.
func (h *AgentHandler) Update(c *gin.Context) {
	agentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid agent ID"})
		return
	}

	// Agents may only edit themselves; admins may edit anyone.
	role := c.MustGet("role").(models.AgentRole)
	requesterID := c.MustGet("agent_id").(uuid.UUID)
	if role != models.RoleAdmin && requesterID != agentID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to modify this agent"})
		return
	}

	var input agentsvc.UpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if role != models.RoleAdmin {
		input.Status = nil
	}

	agent, err := h.service.Update(c.Request.Context(), agentID, input)
	if err != nil {
		if errors.Is(err, agentsvc.ErrAgentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"agent": agent})
}

// ApproveRequest is the approval payload
type ApproveRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}

// Approve resolves a pending registration
func (h *AgentHandler) Approve(c *gin.Context) {
	agentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid agent ID"})
		return
	}

	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	agent, err := h.service.Approve(c.Request.Context(), agentID, *req.Approve)
	if err != nil {
		switch {
		case errors.Is(err, agentsvc.ErrAgentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
		case errors.Is(err, agentsvc.ErrNotPending):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update agent"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"agent": agent})
}

// Delete soft-deletes an agent
func (h *AgentHandler) Delete(c *gin.Context) {
	agentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid agent ID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), agentID); err != nil {
		if errors.Is(err, agentsvc.ErrAgentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete agent"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Agent deleted"})
}
