package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeNotifyLeadAssigned JobType = "notify_lead_assigned"
	JobTypeSendPasswordReset  JobType = "send_password_reset"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending        JobStatus = "pending"
	JobStatusProcessing     JobStatus = "processing"
	JobStatusCompleted      JobStatus = "completed"
	JobStatusFailed         JobStatus = "failed"
	JobStatusRetryScheduled JobStatus = "retry_scheduled"
)

// Job represents a background job
type Job struct {
	ID         uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Type       JobType         `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Status     JobStatus       `json:"status"`
	RetryCount int             `json:"retry_count" gorm:"default:0"`
	MaxRetries int             `json:"max_retries" gorm:"default:3"`
	RetryAt    *time.Time      `json:"retry_at,omitempty"`
	Error      string          `json:"error,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// JobHandler is a function that processes a job
type JobHandler func(ctx context.Context, job Job) (interface{}, error)

// QueueInterface defines the operations the rest of the portal uses to
// dispatch background work. Both the database-polling queue and the Redis
// variant implement it.
type QueueInterface interface {
	RegisterHandler(jobType JobType, handler JobHandler)
	EnqueueJob(jobType JobType, payload interface{}) (string, error)
	StartProcessing()
	StopProcessing()
}

// Queue is a database-backed job queue processed by a polling loop.
type Queue struct {
	db           *gorm.DB
	handlers     map[JobType]JobHandler
	retryHandler *RetryHandler
	processing   atomic.Bool
}

// NewQueue creates a new queue
func NewQueue(db *gorm.DB) *Queue {
	q := &Queue{
		db:       db,
		handlers: make(map[JobType]JobHandler),
	}
	q.retryHandler = NewRetryHandler(db, q)
	return q
}

// RegisterHandler registers a handler for a job type
func (q *Queue) RegisterHandler(jobType JobType, handler JobHandler) {
	q.handlers[jobType] = handler
}

// EnqueueJob adds a job to the queue
func (q *Queue) EnqueueJob(jobType JobType, payload interface{}) (string, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal job payload: %w", err)
	}

	job := Job{
		ID:         uuid.New(),
		Type:       jobType,
		Payload:    payloadBytes,
		Status:     JobStatusPending,
		MaxRetries: 3,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if result := q.db.Create(&job); result.Error != nil {
		return "", result.Error
	}

	return job.ID.String(), nil
}

// GetJob retrieves a job by ID
func (q *Queue) GetJob(jobID string) (*Job, error) {
	var job Job
	err := q.db.Model(&Job{}).Where("id = ?", jobID).First(&job).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("job not found")
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

// UpdateJobStatus updates the status of a job
func (q *Queue) UpdateJobStatus(jobID string, status JobStatus, result interface{}, jobErr error) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if jobErr != nil {
		updates["error"] = jobErr.Error()
	}
	if result != nil {
		resultBytes, marshalErr := json.Marshal(result)
		if marshalErr != nil {
			return fmt.Errorf("failed to marshal result: %w", marshalErr)
		}
		updates["result"] = resultBytes
	}

	return q.db.Model(&Job{}).Where("id = ?", jobID).Updates(updates).Error
}

// StartProcessing starts processing jobs from the queue
func (q *Queue) StartProcessing() {
	if !q.processing.CompareAndSwap(false, true) {
		return
	}

	go func() {
		for q.processing.Load() {
			var job Job
			err := q.db.Where("status = ?", JobStatusPending).
				Order("created_at asc").First(&job).Error
			if err != nil {
				if err != gorm.ErrRecordNotFound {
					log.Printf("Error getting job from queue: %v", err)
				}
				time.Sleep(1 * time.Second)
				continue
			}

			q.processJob(job)
		}
	}()
}

func (q *Queue) processJob(job Job) {
	handler, ok := q.handlers[job.Type]
	if !ok {
		log.Printf("No handler registered for job type: %s", job.Type)
		q.UpdateJobStatus(job.ID.String(), JobStatusFailed, nil, fmt.Errorf("no handler for job type %s", job.Type))
		return
	}

	if err := q.db.Model(&job).Updates(map[string]interface{}{
		"status":     JobStatusProcessing,
		"updated_at": time.Now(),
	}).Error; err != nil {
		log.Printf("Failed to update job status: %v", err)
		return
	}

	result, err := handler(context.Background(), job)
	if err != nil {
		q.retryHandler.HandleFailedJob(job, err)
		log.Printf("Job %s failed: %v", job.ID, err)
		return
	}

	if err := q.UpdateJobStatus(job.ID.String(), JobStatusCompleted, result, nil); err != nil {
		log.Printf("Failed to update job result: %v", err)
	}
}

// StopProcessing stops processing jobs
func (q *Queue) StopProcessing() {
	q.processing.Store(false)
}
