// internal/service/booking/application/saga/seat.go
package saga

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"manabi/internal/pkg/logger"
	"manabi/internal/service/booking/domain"
)

// SeatHoldHandler 负责座位预占步骤。
// 这是整条链里唯一有并发正确性风险的一步：检查与自增必须原子完成，
// 原子性下沉在 SeatReserver 的实现里。
type SeatHoldHandler struct {
	NextHandler
}

func (h *SeatHoldHandler) Handle(enrollCtx *EnrollmentContext) error {
	ctx, span := enrollCtx.Tracer.Start(enrollCtx.Ctx, "saga.SeatHold")
	defer span.End()

	sessionID := enrollCtx.Enrollment.SessionID
	span.SetAttributes(attribute.Int64("session.id", sessionID))

	result, err := enrollCtx.Seats.TryReserve(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "seat reservation failed")
		return err
	}
	if result == domain.ReserveResultFull {
		// 满员是常规结果：不触发补偿（没有占到任何东西），
		// 直接终止链路，上层据此告知用户"满席"
		span.AddEvent("session is full, enrollment rejected")
		return domain.ErrSessionFull
	}

	// 占座成功后注册补偿：后续任何一步失败都要把座位还回去
	enrollCtx.AddCompensation(func(compCtx context.Context) {
		compCtx, compSpan := enrollCtx.Tracer.Start(compCtx, "saga.compensation.ReleaseSeat")
		defer compSpan.End()
		compSpan.SetAttributes(attribute.Int64("session.id", sessionID))

		if _, err := enrollCtx.Seats.Release(compCtx, sessionID); err != nil {
			// 补偿失败需要人工介入，座位计数可能偏小（偏安全的方向）
			compSpan.RecordError(err)
			logger.Ctx(compCtx).Error().Err(err).
				Int64("session_id", sessionID).
				Msg("CRITICAL: failed to release seat during compensation")
			return
		}
		h.publishSeatChange(compCtx, enrollCtx)
	})

	span.AddEvent("seat reserved")
	h.publishSeatChange(ctx, enrollCtx)

	return h.executeNext(enrollCtx)
}

// publishSeatChange 尽力而为地广播座位变化；失败只记日志，不影响主流程。
func (h *SeatHoldHandler) publishSeatChange(ctx context.Context, enrollCtx *EnrollmentContext) {
	if enrollCtx.SeatEvents == nil {
		return
	}
	event := &domain.SeatChanged{
		SessionID: enrollCtx.Enrollment.SessionID,
		At:        time.Now(),
	}
	if err := enrollCtx.SeatEvents.SeatChanged(ctx, event); err != nil {
		logger.Ctx(ctx).Warn().Err(err).
			Int64("session_id", event.SessionID).
			Msg("failed to publish seat change event")
	}
}
