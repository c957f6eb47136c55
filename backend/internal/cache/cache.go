package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
)

var ErrCacheMiss = errors.New("cache miss")

type Cache interface {
	Set(key string, value interface{}, ttl time.Duration) error
	Get(key string, dest interface{}) error
	Delete(key string) error
	DeletePattern(pattern string) error
	Exists(key string) (bool, error)
	Stats() map[string]interface{}
	Health() error
	Close() error
}

type CacheConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Addr:         "localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Dashboard summary keys. DeletePattern("dashboard:project:*") clears
// every project summary at once.
func ProjectSummaryKey(projectID uuid.UUID) string {
	return fmt.Sprintf("dashboard:project:%s", projectID)
}

func UserSummaryKey(userID uuid.UUID) string {
	return fmt.Sprintf("dashboard:user:%s", userID)
}
