package cache

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupWarmPool(t *testing.T, workers int) (*WarmPool, *MultiLevelCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	c := NewMultiLevelCache(NewRedisCacheFromClient(client))
	return NewWarmPool(workers, c), c, mr
}

func waitForKey(t *testing.T, c *MultiLevelCache, key string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if found, _ := c.Exists(key); found {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("key %s was never warmed", key)
}

func TestWarmPoolPopulatesKeys(t *testing.T) {
	pool, c, mr := setupWarmPool(t, 2)
	defer mr.Close()

	pool.Start()
	defer pool.Stop()

	jobs := make([]WarmupJob, 0, 3)
	for i := 0; i < 3; i++ {
		count := int64(i)
		jobs = append(jobs, WarmupJob{
			Key: fmt.Sprintf("dashboard:project:p%d", i),
			TTL: time.Minute,
			Loader: func() (interface{}, error) {
				return testSummary{ProjectID: "p", TaskCount: count}, nil
			},
		})
	}

	if submitted := pool.SubmitAll(jobs); submitted != 3 {
		t.Errorf("Expected 3 jobs submitted, got %d", submitted)
	}

	for i := 0; i < 3; i++ {
		waitForKey(t, c, fmt.Sprintf("dashboard:project:p%d", i))
	}
}

func TestWarmPoolRejectsWhenStopped(t *testing.T) {
	pool, _, mr := setupWarmPool(t, 2)
	defer mr.Close()

	job := WarmupJob{
		Key: "dashboard:project:p1",
		TTL: time.Minute,
		Loader: func() (interface{}, error) {
			return testSummary{}, nil
		},
	}

	if pool.Submit(job) {
		t.Error("Expected Submit to fail before Start")
	}

	pool.Start()
	if !pool.IsRunning() {
		t.Error("Expected pool to be running after Start")
	}

	pool.Stop()
	if pool.IsRunning() {
		t.Error("Expected pool to stop")
	}
	if pool.Submit(job) {
		t.Error("Expected Submit to fail after Stop")
	}
}

func TestWarmPoolCountsLoaderErrors(t *testing.T) {
	pool, _, mr := setupWarmPool(t, 1)
	defer mr.Close()

	pool.Start()

	ok := pool.Submit(WarmupJob{
		Key: "dashboard:project:broken",
		TTL: time.Minute,
		Loader: func() (interface{}, error) {
			return nil, errors.New("query failed")
		},
	})
	if !ok {
		t.Fatal("Submit failed")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		stats := pool.GetStats()
		if stats["total_errors"].(int64) == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	pool.Stop()

	stats := pool.GetStats()
	if stats["total_errors"].(int64) != 1 {
		t.Errorf("Expected 1 error counted, got %v", stats["total_errors"])
	}
	if stats["jobs_processed"].(int64) != 1 {
		t.Errorf("Expected 1 job processed, got %v", stats["jobs_processed"])
	}
}
