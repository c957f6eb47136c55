package cache

import (
	"context"
	"log"
	"sync"
	"time"
)

// WarmupJob recomputes one dashboard summary and stores it under Key.
type WarmupJob struct {
	Key    string
	TTL    time.Duration
	Loader func() (interface{}, error)
}

type JobResult struct {
	Job      WarmupJob
	Error    error
	Duration time.Duration
}

// WarmPool keeps hot dashboard keys populated in the background so list
// views rarely pay for the aggregate queries.
type WarmPool struct {
	workers  int
	jobCh    chan WarmupJob
	resultCh chan JobResult
	cache    Cache
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	running  bool
	mu       sync.RWMutex

	jobsProcessed int64
	totalDuration time.Duration
	errors        int64
}

func NewWarmPool(workers int, cache Cache) *WarmPool {
	if workers <= 0 {
		workers = 3
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WarmPool{
		workers:  workers,
		jobCh:    make(chan WarmupJob, workers*2),
		resultCh: make(chan JobResult, workers),
		cache:    cache,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (wp *WarmPool) Start() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.running {
		return
	}
	wp.running = true

	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
	go wp.resultCollector()

	log.Printf("cache warm pool started with %d workers", wp.workers)
}

func (wp *WarmPool) Stop() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if !wp.running {
		return
	}
	wp.running = false

	close(wp.jobCh)
	wp.wg.Wait()
	wp.cancel()
	close(wp.resultCh)

	log.Printf("cache warm pool stopped")
}

func (wp *WarmPool) Submit(job WarmupJob) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if !wp.running {
		return false
	}

	select {
	case wp.jobCh <- job:
		return true
	case <-wp.ctx.Done():
		return false
	default:
		log.Printf("warm pool queue full, dropping job: %s", job.Key)
		return false
	}
}

func (wp *WarmPool) SubmitAll(jobs []WarmupJob) int {
	submitted := 0
	for _, job := range jobs {
		if wp.Submit(job) {
			submitted++
		}
	}
	return submitted
}

func (wp *WarmPool) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case job, ok := <-wp.jobCh:
			if !ok {
				return
			}

			result := wp.processJob(job)

			select {
			case wp.resultCh <- result:
			case <-wp.ctx.Done():
				return
			default:
			}

		case <-wp.ctx.Done():
			return
		}
	}
}

func (wp *WarmPool) processJob(job WarmupJob) JobResult {
	start := time.Now()

	value, err := job.Loader()
	if err == nil {
		err = wp.cache.Set(job.Key, value, job.TTL)
	}
	duration := time.Since(start)

	if err != nil {
		log.Printf("failed to warm cache key %s: %v", job.Key, err)
	}

	return JobResult{Job: job, Error: err, Duration: duration}
}

func (wp *WarmPool) resultCollector() {
	for {
		select {
		case result, ok := <-wp.resultCh:
			if !ok {
				return
			}

			wp.mu.Lock()
			wp.jobsProcessed++
			wp.totalDuration += result.Duration
			if result.Error != nil {
				wp.errors++
			}
			wp.mu.Unlock()

		case <-wp.ctx.Done():
			return
		}
	}
}

func (wp *WarmPool) IsRunning() bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	return wp.running
}

func (wp *WarmPool) GetStats() map[string]interface{} {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	avgDuration := time.Duration(0)
	if wp.jobsProcessed > 0 {
		avgDuration = wp.totalDuration / time.Duration(wp.jobsProcessed)
	}

	return map[string]interface{}{
		"workers":        wp.workers,
		"running":        wp.running,
		"jobs_processed": wp.jobsProcessed,
		"total_errors":   wp.errors,
		"avg_duration":   avgDuration.String(),
		"queue_length":   len(wp.jobCh),
		"queue_capacity": cap(wp.jobCh),
	}
}
