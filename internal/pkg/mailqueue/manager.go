package mailqueue

import (
	"strconv"
	"sync"

	"github.com/matiuskuma2/SMG-sub004/internal/pkg/env"
)

var (
	defaultQueue *Queue
	once         sync.Once
)

// GetQueue returns the process-wide mail queue, creating it on first use.
func GetQueue() *Queue {
	once.Do(func() {
		workers, err := strconv.Atoi(env.GetEnv("MAIL_WORKERS", "2"))
		if err != nil {
			workers = 2
		}
		defaultQueue = NewQueue(workers)
	})
	return defaultQueue
}

// Start launches the default queue's workers.
func Start() {
	GetQueue().Start()
}

// Stop drains the default queue's workers.
func Stop() {
	GetQueue().Stop()
}
