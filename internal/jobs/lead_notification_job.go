package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/gorillago3318/portal/internal/models"
	"github.com/gorillago3318/portal/internal/queue"
	"github.com/gorillago3318/portal/internal/services/whatsapp"
	"github.com/gorillago3318/portal/internal/utils"
	"gorm.io/gorm"
)

// LeadNotificationPayload is the payload for a lead-assigned notification job
type LeadNotificationPayload struct {
	LeadID uuid.UUID `json:"lead_id"`
}

// LeadNotificationJob delivers the new-lead WhatsApp message to the agent a
// lead was assigned to. Delivery is decoupled from lead creation so a slow or
// failing WhatsApp API never blocks the intake endpoint.
type LeadNotificationJob struct {
	db *gorm.DB
	wa *whatsapp.Client
}

// NewLeadNotificationJob creates a new lead notification job handler
func NewLeadNotificationJob(db *gorm.DB, wa *whatsapp.Client) *LeadNotificationJob {
	return &LeadNotificationJob{db: db, wa: wa}
}

// RegisterLeadNotificationJobHandlers registers the lead notification handler
func RegisterLeadNotificationJobHandlers(q queue.QueueInterface, db *gorm.DB, wa *whatsapp.Client) {
	handler := NewLeadNotificationJob(db, wa)
	q.RegisterHandler(queue.JobTypeNotifyLeadAssigned, func(ctx context.Context, job queue.Job) (interface{}, error) {
		return nil, handler.ProcessLeadNotification(ctx, &job)
	})
}

// EnqueueLeadNotification enqueues a notification for the given lead
func EnqueueLeadNotification(q queue.QueueInterface, leadID uuid.UUID) error {
	_, err := q.EnqueueJob(queue.JobTypeNotifyLeadAssigned, LeadNotificationPayload{LeadID: leadID})
	return err
}

// ProcessLeadNotification loads the lead and its agent and sends the message
func (j *LeadNotificationJob) ProcessLeadNotification(ctx context.Context, job *queue.Job) error {
	var payload LeadNotificationPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal lead notification payload: %w", err)
	}

	var lead models.Lead
	if err := j.db.First(&lead, "id = ?", payload.LeadID).Error; err != nil {
		return fmt.Errorf("failed to get lead: %w", err)
	}

	if lead.AssignedAgentID == nil {
		log.Printf("Lead %s has no assigned agent, skipping notification", lead.UniqueID)
		return nil
	}

	var agent models.Agent
	if err := j.db.First(&agent, "id = ?", *lead.AssignedAgentID).Error; err != nil {
		return fmt.Errorf("failed to get assigned agent: %w", err)
	}

	return j.wa.SendText(ctx, agent.Phone, composeLeadMessage(&lead))
}

func composeLeadMessage(lead *models.Lead) string {
	var b strings.Builder
	b.WriteString("🚨 New Lead Assigned 🚨\n\n")
	fmt.Fprintf(&b, "Lead ID: %s\n", lead.UniqueID)
	fmt.Fprintf(&b, "Name: %s\n", lead.Name)
	fmt.Fprintf(&b, "Phone: %s\n", lead.Phone)
	if !lead.LoanAmount.IsZero() {
		fmt.Fprintf(&b, "Loan Amount: %s\n", utils.FormatMYR(lead.LoanAmount))
	}
	if !lead.EstimatedSavings.IsZero() {
		fmt.Fprintf(&b, "Estimated Savings: %s\n", utils.FormatMYR(lead.EstimatedSavings))
	}
	if !lead.MonthlySavings.IsZero() {
		fmt.Fprintf(&b, "Monthly Savings: %s\n", utils.FormatMYR(lead.MonthlySavings))
	}
	if !lead.NewMonthlyRepayment.IsZero() {
		fmt.Fprintf(&b, "New Monthly Repayment: %s\n", utils.FormatMYR(lead.NewMonthlyRepayment))
	}
	if lead.BankName != "" {
		fmt.Fprintf(&b, "Bank: %s\n", lead.BankName)
	}
	b.WriteString("\nPlease follow up with the customer as soon as possible.")
	return b.String()
}
