package mailqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestNewQueue tests the queue constructor
func TestNewQueue(t *testing.T) {
	tests := []struct {
		name            string
		workers         int
		expectedWorkers int
	}{
		{"Valid worker count", 4, 4},
		{"Zero workers", 0, 2},
		{"Negative workers", -1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := NewQueue(tt.workers)

			assert.NotNil(t, queue)
			assert.Equal(t, tt.expectedWorkers, queue.workers)
			assert.NotNil(t, queue.stopCh)
			assert.False(t, queue.running)
		})
	}
}

func TestConstants(t *testing.T) {
	assert.Equal(t, "mail:", JobKeyPrefix)
	assert.Equal(t, "mail_queue", MailQueueKey)
	assert.Equal(t, "mail_processing", MailProcessingKey)
	assert.Equal(t, "mail_stats", MailStatsKey)

	assert.Equal(t, 3, DefaultMaxRetries)
	assert.Equal(t, 24*time.Hour, JobTTL)
}

// Restarting after Stop must hand the new workers an open stop channel;
// otherwise they exit immediately.
func TestQueueRestart(t *testing.T) {
	queue := NewQueue(1)

	queue.Start()
	assert.True(t, queue.running)
	queue.Stop()
	assert.False(t, queue.running)

	queue.Start()
	assert.True(t, queue.running)
	select {
	case <-queue.stopCh:
		t.Fatal("stop channel is closed right after restart")
	default:
	}
	queue.Stop()
}
