package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/price-scraper/pkg/utils"
)

const courtesyKeyPrefix = "courtesy:"

// maxPollInterval caps how long Wait sleeps between PTTL checks, so a
// hold shortened by another instance is noticed promptly.
const maxPollInterval = 250 * time.Millisecond

// CourtesyGateImpl implements repository.CourtesyGate with expiring Redis keys,
// so every instance sharing the Redis server honors the same per-host delay.
type CourtesyGateImpl struct {
	client *redis.Client
}

// NewCourtesyGate creates a new instance of CourtesyGateImpl.
func NewCourtesyGate(client *redis.Client) *CourtesyGateImpl {
	return &CourtesyGateImpl{client: client}
}

// generateKey hashes the host so arbitrary host strings make safe keys.
func (g *CourtesyGateImpl) generateKey(host string) string {
	return fmt.Sprintf("%s%s", courtesyKeyPrefix, utils.HashURL(host))
}

// Hold blocks new scrapes of host for d. An existing longer hold is kept.
func (g *CourtesyGateImpl) Hold(ctx context.Context, host string, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	key := g.generateKey(host)

	ttl, err := g.client.PTTL(ctx, key).Result()
	if err != nil {
		return err
	}
	if ttl >= d {
		return nil
	}
	return g.client.Set(ctx, key, "1", d).Err()
}

// Wait returns once no hold is active for host, or when ctx is done.
func (g *CourtesyGateImpl) Wait(ctx context.Context, host string) error {
	key := g.generateKey(host)

	for {
		// PTTL reports -2 for a missing key and -1 for one without expiry.
		ttl, err := g.client.PTTL(ctx, key).Result()
		if err != nil {
			return err
		}
		if ttl <= 0 {
			return nil
		}

		sleep := min(ttl, maxPollInterval)
		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
