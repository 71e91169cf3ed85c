package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateBackoffDoubles(t *testing.T) {
	h := &RetryHandler{retryConf: RetryConfig{
		MaxRetries:      5,
		InitialInterval: 30 * time.Second,
		MaxInterval:     1 * time.Hour,
		Multiplier:      2.0,
	}}

	assert.Equal(t, 30*time.Second, h.calculateBackoff(1))
	assert.Equal(t, 1*time.Minute, h.calculateBackoff(2))
	assert.Equal(t, 2*time.Minute, h.calculateBackoff(3))
	assert.Equal(t, 4*time.Minute, h.calculateBackoff(4))
	assert.Equal(t, 8*time.Minute, h.calculateBackoff(5))
}

func TestCalculateBackoffCapsAtMaxInterval(t *testing.T) {
	h := &RetryHandler{retryConf: RetryConfig{
		MaxRetries:      20,
		InitialInterval: 30 * time.Second,
		MaxInterval:     1 * time.Hour,
		Multiplier:      2.0,
	}}

	assert.Equal(t, 1*time.Hour, h.calculateBackoff(10))
	assert.Equal(t, 1*time.Hour, h.calculateBackoff(15))
}
