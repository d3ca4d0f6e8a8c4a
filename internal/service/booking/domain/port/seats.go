// internal/service/booking/domain/port/seats.go
package port

import (
	"context"

	"manabi/internal/service/booking/domain"
)

// SeatReserver 是座位计数的出站端口。
// 实现方必须保证 TryReserve 的"检查 + 自增"是单个原子单元：
// 数据库实现用条件更新（CAS），Redis 实现用 Lua 脚本。
// 读后写的实现会让并发的两个请求同时抢到最后一个座位，是不可接受的。
type SeatReserver interface {
	// TryReserve 尝试占一个座位；满员返回 ReserveResultFull 且状态不变。
	TryReserve(ctx context.Context, sessionID int64) (domain.ReserveResult, error)
	// Release 释放一个座位，下限钳制在 0；多余的释放由实现记告警。
	// 返回值指明是否真的释放了座位，钳制生效时为 false，
	// 叠加在权威之上的缓存层据此决定要不要回补余位。
	Release(ctx context.Context, sessionID int64) (bool, error)
}
