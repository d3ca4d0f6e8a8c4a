// internal/service/booking/application/saga/persist.go
package saga

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"manabi/internal/pkg/logger"
	"manabi/internal/service/booking/domain"
)

// PersistEnrollmentHandler 把报名单落库并调度支付超时检查。
type PersistEnrollmentHandler struct {
	NextHandler

	Repo domain.EnrollmentRepository
}

func (h *PersistEnrollmentHandler) Handle(enrollCtx *EnrollmentContext) error {
	ctx, span := enrollCtx.Tracer.Start(enrollCtx.Ctx, "saga.PersistEnrollment")
	defer span.End()

	enrollment := enrollCtx.Enrollment
	if err := enrollment.MarkAsPendingPayment(); err != nil {
		span.RecordError(err)
		return err
	}
	if err := h.Repo.Save(ctx, enrollment); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist enrollment")
		return err
	}
	span.SetAttributes(attribute.String("enrollment.id", enrollment.ID))

	// 支付超时检查是保障性的异步任务，调度失败不回滚报名
	if enrollCtx.Scheduler != nil {
		err := enrollCtx.Scheduler.SchedulePaymentTimeout(ctx, enrollment.ID, enrollment.SessionID, enrollment.UserID, enrollment.CreatedAt)
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).
				Str("enrollment_id", enrollment.ID).
				Msg("failed to schedule payment timeout check")
		}
	}

	return h.executeNext(enrollCtx)
}
