package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
)

type JobType string

const (
	JobTypeNotificationDelivery JobType = "notification_delivery"
	JobTypeTaskReminder         JobType = "task_reminder"
	JobTypeDashboardWarmup      JobType = "dashboard_warmup"
	JobTypeTokenCleanup         JobType = "token_cleanup"
)

const (
	RetryQueue = "retry_queue"
	DeadQueue  = "dead_queue"
)

type Job struct {
	ID        string                 `json:"id"`
	Type      JobType                `json:"type"`
	Payload   map[string]interface{} `json:"payload"`
	Attempts  int                    `json:"attempts"`
	MaxTries  int                    `json:"max_tries"`
	CreatedAt time.Time              `json:"created_at"`
	ProcessAt time.Time              `json:"process_at"`
}

type HandlerFunc func(ctx context.Context, job *Job) error

type WorkerConfig struct {
	RedisClient  *redis.Client
	Concurrency  int
	PollInterval time.Duration
	Queues       []string
}

// Worker drains redis list queues and dispatches jobs to registered
// handlers. Failed jobs go to the retry queue until MaxTries, then to
// the dead queue.
type Worker struct {
	client       *redis.Client
	handlers     map[JobType]HandlerFunc
	queues       []string
	pollInterval time.Duration
	concurrency  int
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	mu           sync.RWMutex
}

func NewWorker(config WorkerConfig) *Worker {
	concurrency := config.Concurrency
	if concurrency <= 0 {
		concurrency = 2
	}
	pollInterval := config.PollInterval
	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		client:       config.RedisClient,
		handlers:     make(map[JobType]HandlerFunc),
		queues:       config.Queues,
		pollInterval: pollInterval,
		concurrency:  concurrency,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (w *Worker) RegisterHandler(jobType JobType, handler HandlerFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[jobType] = handler
}

func (w *Worker) Start(workers int) {
	if workers <= 0 {
		workers = w.concurrency
	}

	for i := 0; i < workers; i++ {
		w.wg.Add(1)
		go w.loop()
	}

	log.Printf("worker started: %d goroutines, queues %v", workers, w.queues)
}

func (w *Worker) Stop() {
	w.cancel()
	w.wg.Wait()
	log.Printf("worker stopped")
}

func (w *Worker) loop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			if err := w.processNextJob(); err != nil {
				log.Printf("job processing error: %v", err)
			}
		}
	}
}

// processNextJob pops at most one job across the configured queues.
// An empty queue is not an error.
func (w *Worker) processNextJob() error {
	for _, queue := range w.queues {
		data, err := w.client.LPop(w.ctx, queue).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to pop from %s: %w", queue, err)
		}

		var job Job
		if err := json.Unmarshal([]byte(data), &job); err != nil {
			return fmt.Errorf("failed to decode job from %s: %w", queue, err)
		}

		// Not due yet: put it back and move on.
		if job.ProcessAt.After(time.Now()) {
			raw, _ := json.Marshal(&job)
			return w.client.RPush(w.ctx, queue, raw).Err()
		}

		w.mu.RLock()
		handler, ok := w.handlers[job.Type]
		w.mu.RUnlock()
		if !ok {
			return fmt.Errorf("no handler registered for job type %s", job.Type)
		}

		if err := handler(w.ctx, &job); err != nil {
			return w.requeue(&job, err)
		}
		return nil
	}
	return nil
}

func (w *Worker) requeue(job *Job, cause error) error {
	job.Attempts++

	target := RetryQueue
	if job.Attempts >= job.MaxTries {
		target = DeadQueue
		log.Printf("job %s exhausted %d attempts, moving to dead queue: %v", job.ID, job.Attempts, cause)
	} else {
		log.Printf("job %s failed (attempt %d/%d), retrying: %v", job.ID, job.Attempts, job.MaxTries, cause)
	}

	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return w.client.RPush(w.ctx, target, raw).Err()
}

// JobQueue is the producer side.
type JobQueue struct {
	client *redis.Client
}

func NewJobQueue(client *redis.Client) *JobQueue {
	return &JobQueue{client: client}
}

func (q *JobQueue) Enqueue(queue string, jobType JobType, payload map[string]interface{}) error {
	return q.EnqueueAt(queue, jobType, payload, time.Now())
}

func (q *JobQueue) EnqueueAt(queue string, jobType JobType, payload map[string]interface{}, processAt time.Time) error {
	job := Job{
		ID:        uuid.Must(uuid.NewV4()).String(),
		Type:      jobType,
		Payload:   payload,
		MaxTries:  3,
		CreatedAt: time.Now(),
		ProcessAt: processAt,
	}

	raw, err := json.Marshal(&job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	return q.client.RPush(context.Background(), queue, raw).Err()
}

func (q *JobQueue) GetQueueSize(queue string) (int64, error) {
	return q.client.LLen(context.Background(), queue).Result()
}
