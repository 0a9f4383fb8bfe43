package epoch

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"payout/pkg/domain"
)

// advanceScript sets KEYS[1] to ARGV[1] unless that would decrease it.
// Returns -1 on regression.
var advanceScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local proposed = tonumber(ARGV[1])
if proposed < current then
  return -1
end
redis.call('SET', KEYS[1], ARGV[1])
return 1
`)

// RedisOracle keeps the externally reported period in a redis key shared by
// every replica.
type RedisOracle struct {
	client redis.Cmdable
	key    string
}

func NewRedisOracle(client redis.Cmdable, key string) *RedisOracle {
	return &RedisOracle{client: client, key: key}
}

func (o *RedisOracle) CurrentPeriod(ctx context.Context) (domain.Period, error) {
	raw, err := o.client.Get(ctx, o.key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read current period: %w", err)
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse current period %q: %w", raw, err)
	}
	return domain.Period(v), nil
}

func (o *RedisOracle) Advance(ctx context.Context, to domain.Period) error {
	res, err := advanceScript.Run(ctx, o.client, []string{o.key}, to.String()).Int64()
	if err != nil {
		return fmt.Errorf("advance period: %w", err)
	}
	if res < 0 {
		return ErrPeriodRegressed
	}
	return nil
}
