package mailqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/matiuskuma2/SMG-sub004/internal/pkg/cache"
	"github.com/matiuskuma2/SMG-sub004/internal/pkg/mail"
)

const (
	// Redis key prefixes
	JobKeyPrefix      = "mail:"
	MailQueueKey      = "mail_queue"
	MailProcessingKey = "mail_processing"
	MailStatsKey      = "mail_stats"

	// Job settings
	DefaultMaxRetries = 3
	JobTTL            = 24 * time.Hour // Jobs expire after 24 hours
)

// SendFunc performs one delivery. Overridable in tests.
type SendFunc func(to, subject, textBody, htmlBody string) error

// Queue dispatches outbound email through Redis so webhook handlers never
// block on (or fail because of) SMTP.
type Queue struct {
	client  *redis.Client
	send    SendFunc
	workers int
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewQueue creates a new mail queue
func NewQueue(workers int) *Queue {
	if workers <= 0 {
		workers = 2 // Default number of workers
	}

	return &Queue{
		client:  cache.GetClient(),
		send:    mail.SendMail,
		workers: workers,
		stopCh:  make(chan struct{}),
	}
}

// Start starts the mail queue workers
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return
	}

	// A previous Stop closed the channel; workers need a fresh one or they
	// would exit immediately.
	q.stopCh = make(chan struct{})
	q.running = true
	log.Infof("[MailQueue] Starting %d workers", q.workers)

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Stop stops the mail queue workers
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.running {
		return
	}

	log.Info("[MailQueue] Stopping workers...")
	close(q.stopCh)
	q.running = false
	q.wg.Wait()
	log.Info("[MailQueue] All workers stopped")
}

// EnqueueMail adds a new mail job to the queue.
func (q *Queue) EnqueueMail(to, subject, textBody, htmlBody string) error {
	_, err := q.Enqueue(to, subject, textBody, htmlBody)
	return err
}

// Enqueue adds a new mail job to the queue and returns it.
func (q *Queue) Enqueue(to, subject, textBody, htmlBody string) (*MailJob, error) {
	ctx := context.Background()

	job := &MailJob{
		ID:         uuid.New().String(),
		To:         to,
		Subject:    subject,
		TextBody:   textBody,
		HTMLBody:   htmlBody,
		Status:     JobStatusPending,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: DefaultMaxRetries,
	}

	jobData, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mail job: %w", err)
	}

	jobKey := JobKeyPrefix + job.ID

	// Use a pipeline for atomic operations
	pipe := q.client.Pipeline()
	pipe.Set(ctx, jobKey, jobData, JobTTL)
	pipe.LPush(ctx, MailQueueKey, job.ID)
	pipe.HIncrBy(ctx, MailStatsKey, string(JobStatusPending), 1)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to enqueue mail job: %w", err)
	}

	log.Infof("[MailQueue] Enqueued mail %s (To: %s)", job.ID, job.To)
	return job, nil
}

// worker processes mail jobs from the queue
func (q *Queue) worker(id int) {
	defer q.wg.Done()
	log.Infof("[MailQueue] Worker %d started", id)

	ctx := context.Background()

	for {
		select {
		case <-q.stopCh:
			log.Infof("[MailQueue] Worker %d stopping", id)
			return
		default:
			job, err := q.dequeueJob(ctx)
			if err != nil {
				if err != redis.Nil {
					log.Errorf("[MailQueue] Worker %d: Error dequeuing job: %v", id, err)
				}
				time.Sleep(time.Second)
				continue
			}

			if job != nil {
				q.processJob(ctx, job)
			}
		}
	}
}

// dequeueJob gets the next mail job from the queue
func (q *Queue) dequeueJob(ctx context.Context) (*MailJob, error) {
	// Move job from pending queue to processing queue atomically
	result, err := q.client.BRPopLPush(ctx, MailQueueKey, MailProcessingKey, time.Second).Result()
	if err != nil {
		return nil, err
	}

	jobID := result
	jobKey := JobKeyPrefix + jobID

	jobData, err := q.client.Get(ctx, jobKey).Result()
	if err != nil {
		// Job data not found, remove from processing queue
		q.client.LRem(ctx, MailProcessingKey, 1, jobID)
		return nil, fmt.Errorf("mail job data not found for ID %s", jobID)
	}

	var job MailJob
	if err := json.Unmarshal([]byte(jobData), &job); err != nil {
		q.client.LRem(ctx, MailProcessingKey, 1, jobID)
		return nil, fmt.Errorf("failed to unmarshal mail job %s: %w", jobID, err)
	}

	return &job, nil
}

// processJob delivers a single mail job
func (q *Queue) processJob(ctx context.Context, job *MailJob) {
	job.MarkAsProcessing()
	q.updateJob(ctx, job)

	err := q.send(job.To, job.Subject, job.TextBody, job.HTMLBody)
	if err != nil {
		log.Errorf("[MailQueue] Mail %s to %s failed: %v", job.ID, job.To, err)
		job.MarkAsFailed(err.Error())

		if job.IsRetryable() {
			log.Infof("[MailQueue] Retrying mail %s (Attempt %d/%d)", job.ID, job.RetryCount, job.MaxRetries)
			job.MarkAsRetrying()
			q.updateJob(ctx, job)

			// Re-enqueue for retry after a delay
			time.AfterFunc(time.Minute*time.Duration(job.RetryCount), func() {
				q.client.LPush(ctx, MailQueueKey, job.ID)
			})
		} else {
			log.Errorf("[MailQueue] Mail %s permanently failed after %d retries", job.ID, job.RetryCount)
			q.updateJob(ctx, job)
			q.client.HIncrBy(ctx, MailStatsKey, string(JobStatusFailed), 1)
		}
	} else {
		job.MarkAsCompleted()
		q.client.HIncrBy(ctx, MailStatsKey, string(JobStatusCompleted), 1)
		// Remove completed job from Redis entirely
		q.client.Del(ctx, JobKeyPrefix+job.ID)
	}

	q.client.LRem(ctx, MailProcessingKey, 1, job.ID)
}

// updateJob persists job state back to Redis
func (q *Queue) updateJob(ctx context.Context, job *MailJob) {
	jobData, err := json.Marshal(job)
	if err != nil {
		log.Errorf("[MailQueue] Failed to marshal mail job %s: %v", job.ID, err)
		return
	}
	if err := q.client.Set(ctx, JobKeyPrefix+job.ID, jobData, JobTTL).Err(); err != nil {
		log.Errorf("[MailQueue] Failed to update mail job %s: %v", job.ID, err)
	}
}
