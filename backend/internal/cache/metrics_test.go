package cache

import (
	"sync"
	"testing"
)

func TestCacheMetricsCounters(t *testing.T) {
	metrics := NewCacheMetrics()

	metrics.RecordHit()
	metrics.RecordHit()
	metrics.RecordHit()
	metrics.RecordMiss()
	metrics.RecordSet()
	metrics.RecordSet()
	metrics.RecordDelete()
	metrics.RecordError()

	stats := metrics.GetStats()
	if stats.Hits != 3 {
		t.Errorf("Expected 3 hits, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", stats.Misses)
	}
	if stats.Sets != 2 {
		t.Errorf("Expected 2 sets, got %d", stats.Sets)
	}
	if stats.Deletes != 1 {
		t.Errorf("Expected 1 delete, got %d", stats.Deletes)
	}
	if stats.Errors != 1 {
		t.Errorf("Expected 1 error, got %d", stats.Errors)
	}

	metrics.Reset()
	if got := metrics.GetStats(); got != (CacheStats{}) {
		t.Errorf("Expected zeroed stats after reset, got %+v", got)
	}
}

func TestCacheMetricsHitRate(t *testing.T) {
	metrics := NewCacheMetrics()

	// No lookups yet.
	if rate := metrics.HitRate(); rate != 0.0 {
		t.Errorf("Expected 0%% hit rate when idle, got %.2f%%", rate)
	}

	metrics.RecordHit()
	if rate := metrics.HitRate(); rate != 100.0 {
		t.Errorf("Expected 100%% hit rate, got %.2f%%", rate)
	}

	metrics.RecordMiss()
	metrics.RecordMiss()
	metrics.RecordMiss()
	if rate := metrics.HitRate(); rate < 24.9 || rate > 25.1 {
		t.Errorf("Expected hit rate near 25%%, got %.2f%%", rate)
	}

	// Sets and deletes do not count as lookups.
	metrics.RecordSet()
	metrics.RecordDelete()
	if rate := metrics.HitRate(); rate < 24.9 || rate > 25.1 {
		t.Errorf("Expected hit rate unchanged, got %.2f%%", rate)
	}
}

func TestCacheMetricsConcurrentRecording(t *testing.T) {
	metrics := NewCacheMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 250; j++ {
				metrics.RecordHit()
				metrics.RecordMiss()
			}
		}()
	}
	wg.Wait()

	stats := metrics.GetStats()
	if stats.Hits != 2000 {
		t.Errorf("Expected 2000 hits, got %d", stats.Hits)
	}
	if stats.Misses != 2000 {
		t.Errorf("Expected 2000 misses, got %d", stats.Misses)
	}
	if rate := metrics.HitRate(); rate != 50.0 {
		t.Errorf("Expected 50%% hit rate, got %.2f%%", rate)
	}
}
