// internal/service/booking/infrastructure/adapter/seat_redis_adapter.go
package adapter

import (
	"context"
	"fmt"

	"manabi/internal/pkg/logger"
	redisclient "manabi/internal/pkg/redis"
	"manabi/internal/service/booking/domain"
	"manabi/internal/service/booking/domain/port"
)

const (
	scriptSeatHold = "seat_hold"

	// KEYS[1] = 剩余座位 key。key 不存在返回 -1（由调用方回源），
	// 剩余 <= 0 返回 0，成功扣减返回 1。
	seatHoldScript = `
local remaining = redis.call('GET', KEYS[1])
if remaining == false then
    return -1
end
if tonumber(remaining) <= 0 then
    return 0
end
redis.call('DECR', KEYS[1])
return 1
`
)

// seatCache 收拢适配器用到的几个缓存操作，把 Redis 连接隔在这层之下。
type seatCache interface {
	RunScript(ctx context.Context, name string, keys []string, args ...interface{}) (interface{}, error)
	Incr(ctx context.Context, key string) error
	Set(ctx context.Context, key string, value interface{}) error
}

type redisSeatCache struct {
	client *redisclient.Client
}

func (c redisSeatCache) RunScript(ctx context.Context, name string, keys []string, args ...interface{}) (interface{}, error) {
	return c.client.RunScript(ctx, name, keys, args...)
}

func (c redisSeatCache) Incr(ctx context.Context, key string) error {
	return c.client.GetClient().Incr(ctx, key).Err()
}

func (c redisSeatCache) Set(ctx context.Context, key string, value interface{}) error {
	return c.client.GetClient().Set(ctx, key, value, 0).Err()
}

// RedisSeatAdapter 在数据库 CAS 之前加一层 Redis 余位预检，
// 高峰期让绝大多数注定失败的请求在内存里快速失败，不打到数据库。
// 数据库仍然是座位计数的权威：Redis 扣减成功后继续走 authority，
// authority 报满员时把 Redis 的计数补回去。
type RedisSeatAdapter struct {
	cache     seatCache
	authority port.SeatReserver
}

func NewRedisSeatAdapter(client *redisclient.Client, authority port.SeatReserver) (*RedisSeatAdapter, error) {
	if err := client.LoadScriptFromContent(scriptSeatHold, seatHoldScript); err != nil {
		return nil, err
	}
	return &RedisSeatAdapter{cache: redisSeatCache{client: client}, authority: authority}, nil
}

func seatKey(sessionID int64) string {
	return fmt.Sprintf("manabi:seat:session:%d", sessionID)
}

// Prime 把某个会话的剩余座位数写入缓存，由管理操作（建课、调容量）调用。
func (a *RedisSeatAdapter) Prime(ctx context.Context, sessionID int64, remaining int) error {
	return a.cache.Set(ctx, seatKey(sessionID), remaining)
}

func (a *RedisSeatAdapter) TryReserve(ctx context.Context, sessionID int64) (domain.ReserveResult, error) {
	key := seatKey(sessionID)
	res, err := a.cache.RunScript(ctx, scriptSeatHold, []string{key})
	if err != nil {
		// Redis 不可用时退化为直连权威，不能因为缓存挂了拒绝报名
		logger.Ctx(ctx).Warn().Err(err).
			Int64("session_id", sessionID).
			Msg("redis seat precheck unavailable, falling back to database")
		return a.authority.TryReserve(ctx, sessionID)
	}

	verdict, _ := res.(int64)
	switch verdict {
	case -1:
		// 缓存未预热，直接回源
		return a.authority.TryReserve(ctx, sessionID)
	case 0:
		return domain.ReserveResultFull, nil
	}

	result, err := a.authority.TryReserve(ctx, sessionID)
	if err != nil || result == domain.ReserveResultFull {
		// 权威侧没占到座位，把预扣的余位还回去
		if incrErr := a.cache.Incr(ctx, key); incrErr != nil {
			logger.Ctx(ctx).Error().Err(incrErr).
				Int64("session_id", sessionID).
				Msg("failed to refund redis seat count")
		}
	}
	return result, err
}

func (a *RedisSeatAdapter) Release(ctx context.Context, sessionID int64) (bool, error) {
	released, err := a.authority.Release(ctx, sessionID)
	if err != nil {
		return false, err
	}
	// 权威侧钳制了下溢时不回补缓存，否则预检余位会高于真实余位
	if !released {
		return false, nil
	}
	if err := a.cache.Incr(ctx, seatKey(sessionID)); err != nil {
		logger.Ctx(ctx).Warn().Err(err).
			Int64("session_id", sessionID).
			Msg("failed to increment redis seat count on release")
	}
	return true, nil
}
