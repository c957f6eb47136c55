package cache

import "sync"

type CacheStats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Sets    int64 `json:"sets"`
	Deletes int64 `json:"deletes"`
	Errors  int64 `json:"errors"`
}

type CacheMetrics struct {
	mu    sync.RWMutex
	stats CacheStats
}

func NewCacheMetrics() *CacheMetrics {
	return &CacheMetrics{}
}

func (m *CacheMetrics) RecordHit() {
	m.mu.Lock()
	m.stats.Hits++
	m.mu.Unlock()
}

func (m *CacheMetrics) RecordMiss() {
	m.mu.Lock()
	m.stats.Misses++
	m.mu.Unlock()
}

func (m *CacheMetrics) RecordSet() {
	m.mu.Lock()
	m.stats.Sets++
	m.mu.Unlock()
}

func (m *CacheMetrics) RecordDelete() {
	m.mu.Lock()
	m.stats.Deletes++
	m.mu.Unlock()
}

func (m *CacheMetrics) RecordError() {
	m.mu.Lock()
	m.stats.Errors++
	m.mu.Unlock()
}

func (m *CacheMetrics) GetStats() CacheStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// HitRate returns the hit percentage over all lookups, 0 when idle.
func (m *CacheMetrics) HitRate() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := m.stats.Hits + m.stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(m.stats.Hits) / float64(total) * 100.0
}

func (m *CacheMetrics) Reset() {
	m.mu.Lock()
	m.stats = CacheStats{}
	m.mu.Unlock()
}
