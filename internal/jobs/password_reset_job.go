package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorillago3318/portal/internal/queue"
	"github.com/gorillago3318/portal/internal/services/whatsapp"
	"gorm.io/gorm"
)

// PasswordResetPayload is the payload for a password reset message job
type PasswordResetPayload struct {
	Phone    string `json:"phone"`
	Name     string `json:"name"`
	ResetURL string `json:"reset_url"`
}

// PasswordResetJob sends password reset links over WhatsApp
type PasswordResetJob struct {
	db *gorm.DB
	wa *whatsapp.Client
}

// RegisterPasswordResetJobHandlers registers the password reset handler
func RegisterPasswordResetJobHandlers(q queue.QueueInterface, db *gorm.DB, wa *whatsapp.Client) {
	handler := &PasswordResetJob{db: db, wa: wa}
	q.RegisterHandler(queue.JobTypeSendPasswordReset, func(ctx context.Context, job queue.Job) (interface{}, error) {
		return nil, handler.ProcessPasswordReset(ctx, &job)
	})
}

// EnqueuePasswordReset enqueues a password reset message
func EnqueuePasswordReset(q queue.QueueInterface, phone, name, resetURL string) error {
	_, err := q.EnqueueJob(queue.JobTypeSendPasswordReset, PasswordResetPayload{
		Phone:    phone,
		Name:     name,
		ResetURL: resetURL,
	})
	return err
}

// ProcessPasswordReset sends the reset link to the agent's phone
func (j *PasswordResetJob) ProcessPasswordReset(ctx context.Context, job *queue.Job) error {
	var payload PasswordResetPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal password reset payload: %w", err)
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nA password reset was requested for your account. Use the link below to set a new password. The link expires in 1 hour.\n\n%s\n\nIf you did not request this, you can ignore this message.",
		payload.Name, payload.ResetURL)

	return j.wa.SendText(ctx, payload.Phone, body)
}
