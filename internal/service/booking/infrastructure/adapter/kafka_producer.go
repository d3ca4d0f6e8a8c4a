// internal/service/booking/infrastructure/adapter/kafka_producer.go
package adapter

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"manabi/internal/pkg/logger"
	"manabi/internal/pkg/mq"
	"manabi/internal/service/booking/domain"
)

// 待支付报名的保留时长，超时未支付自动取消
const paymentTimeout = 15 * time.Minute

// EnrollmentProducerAdapter 把报名请求事件写入 Kafka。
// 以 sessionID 为 key，同一会话的请求落同一分区，消费侧天然按会话串行。
type EnrollmentProducerAdapter struct {
	writer *kafka.Writer
}

func NewEnrollmentProducerAdapter(writer *kafka.Writer) *EnrollmentProducerAdapter {
	return &EnrollmentProducerAdapter{writer: writer}
}

func (a *EnrollmentProducerAdapter) Produce(ctx context.Context, event *domain.EnrollmentRequested) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal enrollment requested event")
	}
	key := []byte(strconv.FormatInt(event.SessionID, 10))
	if err := mq.ProduceMessage(ctx, a.writer, key, payload); err != nil {
		return errors.Wrap(err, "produce enrollment requested event")
	}
	logger.Ctx(ctx).Info().
		Str("event_id", event.EventID).
		Int64("session_id", event.SessionID).
		Msg("enrollment request enqueued")
	return nil
}

// NotificationKafkaAdapter 发布报名结果事件到通知 topic。
type NotificationKafkaAdapter struct {
	writer *kafka.Writer
}

func NewNotificationKafkaAdapter(writer *kafka.Writer) *NotificationKafkaAdapter {
	return &NotificationKafkaAdapter{writer: writer}
}

func (a *NotificationKafkaAdapter) EnrollmentPlaced(ctx context.Context, event *domain.EnrollmentPlaced) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal enrollment placed event")
	}
	return mq.ProduceMessage(ctx, a.writer, []byte(event.EnrollmentID), payload)
}

// SeatEventKafkaAdapter 发布座位变化事件。
// 事件在发布前用数据库里的当前计数补齐 Remaining/Full，
// 推送给店面的永远是权威侧的最新值。
type SeatEventKafkaAdapter struct {
	writer      *kafka.Writer
	sessionRepo domain.SessionRepository
}

func NewSeatEventKafkaAdapter(writer *kafka.Writer, sessionRepo domain.SessionRepository) *SeatEventKafkaAdapter {
	return &SeatEventKafkaAdapter{writer: writer, sessionRepo: sessionRepo}
}

func (a *SeatEventKafkaAdapter) SeatChanged(ctx context.Context, event *domain.SeatChanged) error {
	if a.sessionRepo != nil {
		if session, err := a.sessionRepo.FindByID(ctx, event.SessionID); err == nil {
			event.Remaining = session.Remaining()
			event.Full = session.IsFull()
		}
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal seat changed event")
	}
	key := []byte(strconv.FormatInt(event.SessionID, 10))
	return mq.ProduceMessage(ctx, a.writer, key, payload)
}

// PaymentTimeoutSchedulerAdapter 把支付超时检查任务写入延迟 topic。
// 消息携带 DueAt，消费侧在到期前等待。
type PaymentTimeoutSchedulerAdapter struct {
	writer *kafka.Writer
}

func NewPaymentTimeoutSchedulerAdapter(writer *kafka.Writer) *PaymentTimeoutSchedulerAdapter {
	return &PaymentTimeoutSchedulerAdapter{writer: writer}
}

func (a *PaymentTimeoutSchedulerAdapter) SchedulePaymentTimeout(ctx context.Context, enrollmentID string, sessionID int64, userID string, placedAt time.Time) error {
	event := &domain.PaymentTimeoutCheckEvent{
		EnrollmentID: enrollmentID,
		SessionID:    sessionID,
		UserID:       userID,
		DueAt:        placedAt.Add(paymentTimeout),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal payment timeout event")
	}
	return mq.ProduceMessage(ctx, a.writer, []byte(enrollmentID), payload)
}
