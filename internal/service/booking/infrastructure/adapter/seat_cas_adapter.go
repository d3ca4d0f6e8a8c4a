// internal/service/booking/infrastructure/adapter/seat_cas_adapter.go
package adapter

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"manabi/internal/pkg/logger"
	"manabi/internal/service/booking/domain"
	"manabi/internal/service/booking/infrastructure"
)

// CASSeatAdapter 用数据库条件更新实现原子占座。
// "检查 + 自增"压缩成一条 UPDATE，满员与成功用 RowsAffected 区分，
// 并发下不存在读后写窗口。
type CASSeatAdapter struct {
	db *gorm.DB
}

func NewCASSeatAdapter(db *gorm.DB) *CASSeatAdapter {
	return &CASSeatAdapter{db: db}
}

func (a *CASSeatAdapter) TryReserve(ctx context.Context, sessionID int64) (domain.ReserveResult, error) {
	result := a.db.WithContext(ctx).Model(&infrastructure.ClassSessionModel{}).
		Where("id = ? AND enrolled < capacity", sessionID).
		UpdateColumn("enrolled", gorm.Expr("enrolled + 1"))
	if result.Error != nil {
		infrastructure.SeatReservationTotal.WithLabelValues("error").Inc()
		return domain.ReserveResultFull, errors.Wrap(result.Error, "reserve seat")
	}
	if result.RowsAffected == 0 {
		// 没有行被更新：要么满员，要么会话不存在，需要再查一次区分
		var count int64
		if err := a.db.WithContext(ctx).Model(&infrastructure.ClassSessionModel{}).
			Where("id = ?", sessionID).Count(&count).Error; err != nil {
			infrastructure.SeatReservationTotal.WithLabelValues("error").Inc()
			return domain.ReserveResultFull, errors.Wrap(err, "reserve seat")
		}
		if count == 0 {
			infrastructure.SeatReservationTotal.WithLabelValues("error").Inc()
			return domain.ReserveResultFull, domain.ErrSessionNotFound
		}
		infrastructure.SeatReservationTotal.WithLabelValues("full").Inc()
		return domain.ReserveResultFull, nil
	}
	infrastructure.SeatReservationTotal.WithLabelValues("reserved").Inc()
	return domain.ReserveResultReserved, nil
}

func (a *CASSeatAdapter) Release(ctx context.Context, sessionID int64) (bool, error) {
	result := a.db.WithContext(ctx).Model(&infrastructure.ClassSessionModel{}).
		Where("id = ? AND enrolled > 0", sessionID).
		UpdateColumn("enrolled", gorm.Expr("enrolled - 1"))
	if result.Error != nil {
		infrastructure.SeatReleaseTotal.WithLabelValues("error").Inc()
		return false, errors.Wrap(result.Error, "release seat")
	}
	if result.RowsAffected == 0 {
		// 多余的释放：计数已经是 0，钳制生效。只告警，不向调用方报错。
		infrastructure.SeatReleaseTotal.WithLabelValues("underflow").Inc()
		logger.Ctx(ctx).Warn().
			Int64("session_id", sessionID).
			Msg("seat release with no seats held, count clamped at zero")
		return false, nil
	}
	infrastructure.SeatReleaseTotal.WithLabelValues("released").Inc()
	return true, nil
}
