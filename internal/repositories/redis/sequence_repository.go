// Package redis holds repositories backed by Redis.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/retail_management_app/internal/apperrors"
	portsrepo "github.com/SscSPs/retail_management_app/internal/core/ports/repositories"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "docseq:"

// SequenceRepository hands out document sequence numbers with INCR, which is
// atomic across every instance sharing the Redis server.
type SequenceRepository struct {
	client    redis.Cmdable
	keyPrefix string
}

var (
	_ portsrepo.DocumentSequencer = (*SequenceRepository)(nil)
	_ portsrepo.SequenceInspector = (*SequenceRepository)(nil)
)

// NewSequenceRepository creates a sequencer storing counters under docseq:<prefix>.
func NewSequenceRepository(client redis.Cmdable) *SequenceRepository {
	return &SequenceRepository{client: client, keyPrefix: defaultKeyPrefix}
}

// NewClient builds a go-redis client from connection settings.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// Key returns the Redis key holding the counter of prefix.
func (r *SequenceRepository) Key(prefix string) string {
	return r.keyPrefix + prefix
}

func (r *SequenceRepository) NextSequence(ctx context.Context, prefix string) (int64, error) {
	if prefix == "" {
		return 0, fmt.Errorf("%w: sequence prefix is required", apperrors.ErrValidation)
	}
	n, err := r.client.Incr(ctx, r.Key(prefix)).Result()
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to increment document sequence "+prefix, err)
	}
	return n, nil
}

// seedSource sets KEYS[1] to max(current, ARGV[1]) in one step, so a
// concurrent INCR is never overwritten. It returns the resulting counter.
const seedSource = `
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
local floor = tonumber(ARGV[1])
if current < floor then
	redis.call("SET", KEYS[1], floor)
	return floor
end
return current
`

var seedScript = redis.NewScript(seedSource)

// Seed raises the counter of prefix to at least floor, e.g. when moving
// numbering over from postgres. It never lowers an existing counter.
func (r *SequenceRepository) Seed(ctx context.Context, prefix string, floor int64) error {
	if prefix == "" {
		return fmt.Errorf("%w: sequence prefix is required", apperrors.ErrValidation)
	}
	if err := seedScript.Run(ctx, r.client, []string{r.Key(prefix)}, floor).Err(); err != nil {
		return apperrors.NewAppError(500, "failed to seed document sequence "+prefix, err)
	}
	return nil
}

// SeedFrom raises the counters of prefixes to the last numbers source handed
// out, so switching an existing store over to Redis does not reissue them.
func (r *SequenceRepository) SeedFrom(ctx context.Context, source portsrepo.SequenceInspector, prefixes ...string) error {
	for _, prefix := range prefixes {
		last, err := source.LastSequence(ctx, prefix)
		if err != nil {
			return fmt.Errorf("read last %s sequence: %w", prefix, err)
		}
		if last <= 0 {
			continue
		}
		if err := r.Seed(ctx, prefix, last); err != nil {
			return err
		}
	}
	return nil
}

// LastSequence returns the current counter of prefix, 0 when it was never incremented.
func (r *SequenceRepository) LastSequence(ctx context.Context, prefix string) (int64, error) {
	n, err := r.client.Get(ctx, r.Key(prefix)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to read document sequence "+prefix, err)
	}
	return n, nil
}

// Ping checks connectivity.
func (r *SequenceRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
