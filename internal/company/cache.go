package company

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"relay/internal/constants"
	"relay/internal/logger"
	"relay/pkg/metrics"
	"relay/pkg/models"
)

// CachedLookup keeps found company details in Redis for a short TTL. Redis
// failures are logged and the request falls through to the next lookup.
type CachedLookup struct {
	lookup Lookup
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedLookup(lookup Lookup, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedLookup {
	if ttl <= 0 {
		ttl = constants.DefaultTTLSeconds * time.Second
	}
	return &CachedLookup{
		lookup: lookup,
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

func (c *CachedLookup) GetCompanyDetails(ctx context.Context, companyNumber string) (models.CompanyDetails, bool, error) {
	key := constants.CacheKeyPrefixCompany + companyNumber

	val, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		var details models.CompanyDetails
		if jsonErr := json.Unmarshal([]byte(val), &details); jsonErr == nil {
			metrics.IncCacheRequest("hit")
			return details, true, nil
		}
		c.logger.WarnwCtx(ctx, "Discarding unreadable cached company details", "key", key)
		metrics.IncCacheRequest("error")
	case err == redis.Nil:
		metrics.IncCacheRequest("miss")
	default:
		c.logger.WarnwCtx(ctx, "Redis get failed", "key", key, "error", err)
		metrics.IncCacheRequest("error")
	}

	details, found, err := c.lookup.GetCompanyDetails(ctx, companyNumber)
	if err != nil || !found {
		return details, found, err
	}

	if payload, jsonErr := json.Marshal(details); jsonErr == nil {
		if setErr := c.client.Set(ctx, key, payload, c.ttl).Err(); setErr != nil {
			c.logger.WarnwCtx(ctx, "Redis set failed", "key", key, "error", setErr)
		}
	}

	return details, true, nil
}
