package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yourusername/loanlink/models"
)

const featuredKey = "loans:featured"

// Open connects to redis and verifies the connection.
func Open(addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return r, nil
}

// LoanCache keeps the public featured-loans list out of the database.
// The zero-value pointer (nil) disables caching entirely.
type LoanCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewLoanCache(rdb *redis.Client, ttl time.Duration) *LoanCache {
	return &LoanCache{rdb: rdb, ttl: ttl}
}

// GetFeatured returns the cached featured loans, or ok=false on miss or
// any redis/decode error.
func (c *LoanCache) GetFeatured(ctx context.Context) ([]models.Loan, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, featuredKey).Bytes()
	if err != nil {
		return nil, false
	}
	var loans []models.Loan
	if err := json.Unmarshal(data, &loans); err != nil {
		return nil, false
	}
	return loans, true
}

// SetFeatured caches the featured loans list. Best effort.
func (c *LoanCache) SetFeatured(ctx context.Context, loans []models.Loan) {
	if c == nil {
		return
	}
	data, err := json.Marshal(loans)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, featuredKey, data, c.ttl)
}

// InvalidateFeatured drops the cached list after any loan write.
func (c *LoanCache) InvalidateFeatured(ctx context.Context) {
	if c == nil {
		return
	}
	c.rdb.Del(ctx, featuredKey)
}
