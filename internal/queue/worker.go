package queue

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
	"gorm.io/gorm"
)

// completedJobRetention is how long finished jobs stay in the table before
// the pruning sweep removes them.
const completedJobRetention = 7 * 24 * time.Hour

// Worker runs the queue's periodic maintenance: sweeping due retries back
// into the pending state and pruning old finished jobs.
type Worker struct {
	db           *gorm.DB
	retryHandler *RetryHandler
	scheduler    *gocron.Scheduler
}

// NewWorker creates a worker for the given queue
func NewWorker(db *gorm.DB, q *Queue) *Worker {
	return &Worker{
		db:           db,
		retryHandler: q.retryHandler,
		scheduler:    gocron.NewScheduler(time.UTC),
	}
}

// Start schedules the maintenance jobs and begins processing
func (w *Worker) Start() {
	w.scheduler.Every(1).Minute().Do(func() {
		w.retryHandler.ProcessRetryQueue()
	})

	w.scheduler.Every(1).Day().At("03:00").Do(func() {
		w.pruneFinishedJobs()
	})

	w.scheduler.StartAsync()
	log.Printf("Queue worker started")
}

// Stop stops the scheduler
func (w *Worker) Stop() {
	w.scheduler.Stop()
}

// pruneFinishedJobs deletes completed and permanently failed jobs past the
// retention window
func (w *Worker) pruneFinishedJobs() {
	cutoff := time.Now().Add(-completedJobRetention)
	result := w.db.Where("status IN ? AND updated_at < ?",
		[]JobStatus{JobStatusCompleted, JobStatusFailed}, cutoff).
		Delete(&Job{})
	if result.Error != nil {
		log.Printf("Failed to prune finished jobs: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("Pruned %d finished jobs older than %v", result.RowsAffected, completedJobRetention)
	}
}
