// internal/service/booking/infrastructure/adapter/seat_redis_adapter_test.go
package adapter

import (
	"context"
	"errors"
	"testing"

	"manabi/internal/service/booking/domain"
)

// fakeSeatCache 用内存计数模拟 Redis 侧的余位缓存。
type fakeSeatCache struct {
	counts    map[string]int64
	scriptErr error
	incrs     int
}

func newFakeSeatCache() *fakeSeatCache {
	return &fakeSeatCache{counts: make(map[string]int64)}
}

func (c *fakeSeatCache) RunScript(ctx context.Context, name string, keys []string, args ...interface{}) (interface{}, error) {
	if c.scriptErr != nil {
		return nil, c.scriptErr
	}
	remaining, ok := c.counts[keys[0]]
	if !ok {
		return int64(-1), nil
	}
	if remaining <= 0 {
		return int64(0), nil
	}
	c.counts[keys[0]] = remaining - 1
	return int64(1), nil
}

func (c *fakeSeatCache) Incr(ctx context.Context, key string) error {
	c.counts[key]++
	c.incrs++
	return nil
}

func (c *fakeSeatCache) Set(ctx context.Context, key string, value interface{}) error {
	c.counts[key] = int64(value.(int))
	return nil
}

// fakeAuthority 模拟权威侧座位计数的返回。
type fakeAuthority struct {
	reserveResult domain.ReserveResult
	reserveErr    error
	released      bool
	releaseErr    error
	reserveCalls  int
	releaseCalls  int
}

func (a *fakeAuthority) TryReserve(ctx context.Context, sessionID int64) (domain.ReserveResult, error) {
	a.reserveCalls++
	return a.reserveResult, a.reserveErr
}

func (a *fakeAuthority) Release(ctx context.Context, sessionID int64) (bool, error) {
	a.releaseCalls++
	return a.released, a.releaseErr
}

func TestRedisSeatAdapter_TryReserve(t *testing.T) {
	ctx := context.Background()

	t.Run("缓存有余位且权威占座成功", func(t *testing.T) {
		cache := newFakeSeatCache()
		cache.counts[seatKey(1)] = 3
		authority := &fakeAuthority{reserveResult: domain.ReserveResultReserved}
		a := &RedisSeatAdapter{cache: cache, authority: authority}

		result, err := a.TryReserve(ctx, 1)
		if err != nil || result != domain.ReserveResultReserved {
			t.Fatalf("期望占座成功, 实际 result=%v err=%v", result, err)
		}
		if cache.counts[seatKey(1)] != 2 {
			t.Errorf("缓存余位应扣到 2, 实际 %d", cache.counts[seatKey(1)])
		}
	})

	t.Run("缓存余位为零时快速失败", func(t *testing.T) {
		cache := newFakeSeatCache()
		cache.counts[seatKey(1)] = 0
		authority := &fakeAuthority{reserveResult: domain.ReserveResultReserved}
		a := &RedisSeatAdapter{cache: cache, authority: authority}

		result, err := a.TryReserve(ctx, 1)
		if err != nil || result != domain.ReserveResultFull {
			t.Fatalf("期望满员, 实际 result=%v err=%v", result, err)
		}
		if authority.reserveCalls != 0 {
			t.Error("缓存判满时不应打到权威")
		}
	})

	t.Run("权威报满员时回补预扣余位", func(t *testing.T) {
		cache := newFakeSeatCache()
		cache.counts[seatKey(1)] = 1
		authority := &fakeAuthority{reserveResult: domain.ReserveResultFull}
		a := &RedisSeatAdapter{cache: cache, authority: authority}

		result, err := a.TryReserve(ctx, 1)
		if err != nil || result != domain.ReserveResultFull {
			t.Fatalf("期望满员, 实际 result=%v err=%v", result, err)
		}
		if cache.counts[seatKey(1)] != 1 {
			t.Errorf("预扣的余位应回补到 1, 实际 %d", cache.counts[seatKey(1)])
		}
	})

	t.Run("缓存未预热时直接回源", func(t *testing.T) {
		cache := newFakeSeatCache()
		authority := &fakeAuthority{reserveResult: domain.ReserveResultReserved}
		a := &RedisSeatAdapter{cache: cache, authority: authority}

		result, err := a.TryReserve(ctx, 1)
		if err != nil || result != domain.ReserveResultReserved {
			t.Fatalf("期望占座成功, 实际 result=%v err=%v", result, err)
		}
		if authority.reserveCalls != 1 {
			t.Errorf("应回源到权威一次, 实际 %d 次", authority.reserveCalls)
		}
	})

	t.Run("脚本执行失败时退化为直连权威", func(t *testing.T) {
		cache := newFakeSeatCache()
		cache.scriptErr = errors.New("connection refused")
		authority := &fakeAuthority{reserveResult: domain.ReserveResultReserved}
		a := &RedisSeatAdapter{cache: cache, authority: authority}

		result, err := a.TryReserve(ctx, 1)
		if err != nil || result != domain.ReserveResultReserved {
			t.Fatalf("期望占座成功, 实际 result=%v err=%v", result, err)
		}
	})
}

func TestRedisSeatAdapter_Release(t *testing.T) {
	ctx := context.Background()

	t.Run("权威释放成功则缓存余位加一", func(t *testing.T) {
		cache := newFakeSeatCache()
		cache.counts[seatKey(1)] = 2
		authority := &fakeAuthority{released: true}
		a := &RedisSeatAdapter{cache: cache, authority: authority}

		released, err := a.Release(ctx, 1)
		if err != nil || !released {
			t.Fatalf("期望释放成功, 实际 released=%v err=%v", released, err)
		}
		if cache.counts[seatKey(1)] != 3 {
			t.Errorf("缓存余位应加到 3, 实际 %d", cache.counts[seatKey(1)])
		}
	})

	t.Run("权威钳制下溢时不回补缓存", func(t *testing.T) {
		// 多余的释放被权威钳制在 0，缓存若照常加一会让预检余位虚高
		cache := newFakeSeatCache()
		cache.counts[seatKey(1)] = 5
		authority := &fakeAuthority{released: false}
		a := &RedisSeatAdapter{cache: cache, authority: authority}

		released, err := a.Release(ctx, 1)
		if err != nil {
			t.Fatalf("钳制生效不应报错: %v", err)
		}
		if released {
			t.Error("钳制生效时应返回 false")
		}
		if cache.incrs != 0 || cache.counts[seatKey(1)] != 5 {
			t.Errorf("缓存余位不应被回补: incrs=%d remaining=%d", cache.incrs, cache.counts[seatKey(1)])
		}
	})

	t.Run("权威释放失败时不动缓存", func(t *testing.T) {
		cache := newFakeSeatCache()
		cache.counts[seatKey(1)] = 5
		authority := &fakeAuthority{releaseErr: errors.New("db unavailable")}
		a := &RedisSeatAdapter{cache: cache, authority: authority}

		if _, err := a.Release(ctx, 1); err == nil {
			t.Fatal("权威失败应向上传播")
		}
		if cache.incrs != 0 {
			t.Errorf("权威失败时缓存不应被回补: incrs=%d", cache.incrs)
		}
	})
}
