// internal/service/booking/domain/port/notification.go
package port

import (
	"context"
	"time"

	"manabi/internal/service/booking/domain"
)

// NotificationProducer 发布报名结果事件，供下游通知系统消费。
type NotificationProducer interface {
	EnrollmentPlaced(ctx context.Context, event *domain.EnrollmentPlaced) error
}

// SeatEventProducer 发布座位变化事件，供 push-gateway 推送给店面。
type SeatEventProducer interface {
	SeatChanged(ctx context.Context, event *domain.SeatChanged) error
}

// DelayScheduler 调度支付超时检查任务。
type DelayScheduler interface {
	SchedulePaymentTimeout(ctx context.Context, enrollmentID string, sessionID int64, userID string, placedAt time.Time) error
}
