package jobs

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorillago3318/portal/internal/queue"
)

// fakeQueue records registrations and enqueued payloads
type fakeQueue struct {
	handlers map[queue.JobType]queue.JobHandler
	enqueued []queue.Job
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{handlers: make(map[queue.JobType]queue.JobHandler)}
}

func (f *fakeQueue) RegisterHandler(jobType queue.JobType, handler queue.JobHandler) {
	f.handlers[jobType] = handler
}

func (f *fakeQueue) EnqueueJob(jobType queue.JobType, payload interface{}) (string, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	job := queue.Job{ID: uuid.New(), Type: jobType, Payload: payloadBytes}
	f.enqueued = append(f.enqueued, job)
	return job.ID.String(), nil
}

func (f *fakeQueue) StartProcessing() {}
func (f *fakeQueue) StopProcessing() {}

func TestRegisterJobHandlers(t *testing.T) {
	q := newFakeQueue()

	RegisterLeadNotificationJobHandlers(q, nil, nil)
	RegisterPasswordResetJobHandlers(q, nil, nil)

	assert.Contains(t, q.handlers, queue.JobTypeNotifyLeadAssigned)
	assert.Contains(t, q.handlers, queue.JobTypeSendPasswordReset)
}

func TestEnqueueLeadNotificationPayload(t *testing.T) {
	q := newFakeQueue()
	leadID := uuid.New()

	require.NoError(t, EnqueueLeadNotification(q, leadID))
	require.Len(t, q.enqueued, 1)

	job := q.enqueued[0]
	assert.Equal(t, queue.JobTypeNotifyLeadAssigned, job.Type)

	var payload LeadNotificationPayload
	require.NoError(t, json.Unmarshal(job.Payload, &payload))
	assert.Equal(t, leadID, payload.LeadID)
}

func TestEnqueuePasswordResetPayload(t *testing.T) {
	q := newFakeQueue()

	require.NoError(t, EnqueuePasswordReset(q, "60123456789", "Siti", "https://portal.example/reset?token=abc"))
	require.Len(t, q.enqueued, 1)

	var payload PasswordResetPayload
	require.NoError(t, json.Unmarshal(q.enqueued[0].Payload, &payload))
	assert.Equal(t, "60123456789", payload.Phone)
	assert.Equal(t, "Siti", payload.Name)
	assert.Contains(t, payload.ResetURL, "token=abc")
}
