package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartProcessingIsIdempotent(t *testing.T) {
	q := NewQueue(nil)

	// Mark the queue as already running; a second start must not spawn
	// another polling loop.
	require.True(t, q.processing.CompareAndSwap(false, true))
	q.StartProcessing()
	assert.True(t, q.processing.Load())

	q.StopProcessing()
	assert.False(t, q.processing.Load())
}

func TestRegisterHandlerReplacesExisting(t *testing.T) {
	q := NewQueue(nil)

	q.RegisterHandler(JobTypeNotifyLeadAssigned, nil)
	assert.Contains(t, q.handlers, JobTypeNotifyLeadAssigned)
	assert.Len(t, q.handlers, 1)

	q.RegisterHandler(JobTypeNotifyLeadAssigned, nil)
	assert.Len(t, q.handlers, 1)
}
