package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const jobListKey = "portal:jobs"

// RedisQueue fronts the database queue with a Redis list so workers pick up
// jobs immediately instead of waiting for the next poll. Job rows still live
// in Postgres; Redis only carries the job IDs.
type RedisQueue struct {
	client       *redis.Client
	db           *gorm.DB
	ctx          context.Context
	cancel       context.CancelFunc
	handlers     map[JobType]JobHandler
	retryHandler *RetryHandler
}

// NewRedisQueue creates a Redis-fronted queue
func NewRedisQueue(client *redis.Client, db *gorm.DB) *RedisQueue {
	ctx, cancel := context.WithCancel(context.Background())
	r := &RedisQueue{
		client:   client,
		db:       db,
		ctx:      ctx,
		cancel:   cancel,
		handlers: make(map[JobType]JobHandler),
	}
	r.retryHandler = NewRetryHandler(db, &Queue{db: db, handlers: r.handlers})
	return r
}

// RegisterHandler registers a handler for a job type
func (r *RedisQueue) RegisterHandler(jobType JobType, handler JobHandler) {
	r.handlers[jobType] = handler
}

// EnqueueJob saves the job row and pushes its ID onto the Redis list
func (r *RedisQueue) EnqueueJob(jobType JobType, payload interface{}) (string, error) {
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

	if result := r.db.Create(&job); result.Error != nil {
		return "", result.Error
	}

	if err := r.client.LPush(r.ctx, jobListKey, job.ID.String()).Err(); err != nil {
		// The job row is already pending; the retry sweep will pick it up
		// even if the push fails.
		log.Printf("Failed to push job %s to redis: %v", job.ID, err)
	}

	return job.ID.String(), nil
}

// StartProcessing blocks on the Redis list and dispatches jobs as they arrive
func (r *RedisQueue) StartProcessing() {
	go r.consumeLoop()
	go r.sweepLoop()
}

// StopProcessing cancels the consume and sweep loops
func (r *RedisQueue) StopProcessing() {
	r.cancel()
}

func (r *RedisQueue) consumeLoop() {
	for {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		result, err := r.client.BRPop(r.ctx, 5*time.Second, jobListKey).Result()
		if err != nil {
			if err == redis.Nil || r.ctx.Err() != nil {
				continue
			}
			log.Printf("Error popping job from redis: %v", err)
			time.Sleep(1 * time.Second)
			continue
		}
		if len(result) < 2 {
			continue
		}

		jobID, err := uuid.Parse(result[1])
		if err != nil {
			log.Printf("Invalid job ID on queue: %v", err)
			continue
		}

		var job Job
		if err := r.db.First(&job, "id = ?", jobID).Error; err != nil {
			log.Printf("Failed to load job %s: %v", jobID, err)
			continue
		}
		if job.Status != JobStatusPending {
			continue
		}

		r.processJob(job)
	}
}

func (r *RedisQueue) processJob(job Job) {
	handler, ok := r.handlers[job.Type]
	if !ok {
		log.Printf("No handler registered for job type: %s", job.Type)
		r.updateJob(job.ID, map[string]interface{}{
			"status":     JobStatusFailed,
			"error":      fmt.Sprintf("no handler for job type %s", job.Type),
			"updated_at": time.Now(),
		})
		return
	}

	if err := r.updateJob(job.ID, map[string]interface{}{
		"status":     JobStatusProcessing,
		"updated_at": time.Now(),
	}); err != nil {
		log.Printf("Failed to update job status: %v", err)
		return
	}

	result, err := handler(context.Background(), job)
	if err != nil {
		r.retryHandler.HandleFailedJob(job, err)
		log.Printf("Job %s failed: %v", job.ID, err)
		return
	}

	updates := map[string]interface{}{
		"status":     JobStatusCompleted,
		"updated_at": time.Now(),
	}
	if result != nil {
		resultBytes, marshalErr := json.Marshal(result)
		if marshalErr == nil {
			updates["result"] = resultBytes
		}
	}
	if err := r.updateJob(job.ID, updates); err != nil {
		log.Printf("Failed to update job result: %v", err)
	}
}

// sweepLoop re-pushes jobs that became pending without a matching list entry,
// which covers due retries and jobs whose LPush failed
func (r *RedisQueue) sweepLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
		}

		r.retryHandler.ProcessRetryQueue()

		var pending []Job
		cutoff := time.Now().Add(-30 * time.Second)
		if err := r.db.Where("status = ? AND updated_at < ?", JobStatusPending, cutoff).
			Find(&pending).Error; err != nil {
			log.Printf("Failed to query pending jobs: %v", err)
			continue
		}

		for _, job := range pending {
			if err := r.client.LPush(r.ctx, jobListKey, job.ID.String()).Err(); err != nil {
				log.Printf("Failed to re-push job %s: %v", job.ID, err)
				continue
			}
			r.updateJob(job.ID, map[string]interface{}{"updated_at": time.Now()})
		}
	}
}

func (r *RedisQueue) updateJob(jobID uuid.UUID, updates map[string]interface{}) error {
	return r.db.Model(&Job{}).Where("id = ?", jobID).Updates(updates).Error
}
