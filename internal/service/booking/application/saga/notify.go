// internal/service/booking/application/saga/notify.go
package saga

import (
	"time"

	"manabi/internal/pkg/logger"
	"manabi/internal/service/booking/domain"
)

// NotifyHandler 发布报名成功事件。
// 通知是尽力而为：报名已经落库，这里失败只记日志，绝不触发补偿。
type NotifyHandler struct {
	NextHandler
}

func (h *NotifyHandler) Handle(enrollCtx *EnrollmentContext) error {
	ctx, span := enrollCtx.Tracer.Start(enrollCtx.Ctx, "saga.Notify")
	defer span.End()

	if enrollCtx.Notifier != nil {
		enrollment := enrollCtx.Enrollment
		event := &domain.EnrollmentPlaced{
			EnrollmentID: enrollment.ID,
			UserID:       enrollment.UserID,
			SessionID:    enrollment.SessionID,
			SeriesID:     enrollment.SeriesID,
			PriceTier:    enrollment.PriceTier,
			PriceIncl:    enrollment.PriceIncl,
			PlacedAt:     time.Now(),
		}
		if err := enrollCtx.Notifier.EnrollmentPlaced(ctx, event); err != nil {
			span.RecordError(err)
			logger.Ctx(ctx).Warn().Err(err).
				Str("enrollment_id", enrollment.ID).
				Msg("failed to publish enrollment placed event")
		}
	}

	return h.executeNext(enrollCtx)
}
