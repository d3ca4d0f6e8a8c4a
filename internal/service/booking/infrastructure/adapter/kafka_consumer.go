// internal/service/booking/infrastructure/adapter/kafka_consumer.go
package adapter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"manabi/internal/pkg/logger"
	"manabi/internal/pkg/mq"
	"manabi/internal/service/booking/application"
	"manabi/internal/service/booking/domain"
	"manabi/internal/service/booking/infrastructure"
)

// EnrollmentConsumer 消费报名请求队列，驱动应用层的处理链。
type EnrollmentConsumer struct {
	reader  *kafka.Reader
	service *application.BookingService
	tracer  trace.Tracer
}

func NewEnrollmentConsumer(reader *kafka.Reader, service *application.BookingService, tracer trace.Tracer) *EnrollmentConsumer {
	return &EnrollmentConsumer{reader: reader, service: service, tracer: tracer}
}

// Start 阻塞消费，直到 ctx 取消。
func (c *EnrollmentConsumer) Start(ctx context.Context) error {
	logger.Logger().Info().Str("topic", c.reader.Config().Topic).Msg("enrollment consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Logger().Error().Err(err).Msg("failed to fetch enrollment message")
			continue
		}

		c.handle(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			logger.Logger().Error().Err(err).Msg("failed to commit enrollment message")
		}
	}
}

func (c *EnrollmentConsumer) handle(ctx context.Context, msg kafka.Message) {
	// 从消息头还原上游的追踪上下文，让整条报名链路在一个 trace 里
	carrier := mq.KafkaHeaderCarrier(msg.Headers)
	msgCtx := otel.GetTextMapPropagator().Extract(ctx, &carrier)
	msgCtx, span := c.tracer.Start(msgCtx, "EnrollmentConsumer.handle")
	defer span.End()

	var event domain.EnrollmentRequested
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		// 坏消息没有重试价值，记日志后丢弃
		logger.Ctx(msgCtx).Error().Err(err).Msg("failed to unmarshal enrollment event, dropping")
		return
	}

	if err := c.service.HandleEnrollmentRequest(msgCtx, &event); err != nil {
		infrastructure.EnrollmentProcessedTotal.WithLabelValues("failed").Inc()
		logger.Ctx(msgCtx).Error().Err(err).
			Str("event_id", event.EventID).
			Msg("enrollment request failed")
		return
	}
	infrastructure.EnrollmentProcessedTotal.WithLabelValues("placed").Inc()
}

// Close 关闭底层 reader。
func (c *EnrollmentConsumer) Close() error {
	return c.reader.Close()
}

// PaymentTimeoutConsumer 消费支付超时检查队列。
// 同一分区内消息按 DueAt 单调递增（生产侧固定延迟），
// 所以等待队首消息到期不会阻塞已到期的后续消息。
type PaymentTimeoutConsumer struct {
	reader  *kafka.Reader
	service *application.BookingService
	tracer  trace.Tracer
}

func NewPaymentTimeoutConsumer(reader *kafka.Reader, service *application.BookingService, tracer trace.Tracer) *PaymentTimeoutConsumer {
	return &PaymentTimeoutConsumer{reader: reader, service: service, tracer: tracer}
}

func (c *PaymentTimeoutConsumer) Start(ctx context.Context) error {
	logger.Logger().Info().Str("topic", c.reader.Config().Topic).Msg("payment timeout consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Logger().Error().Err(err).Msg("failed to fetch timeout message")
			continue
		}

		var event domain.PaymentTimeoutCheckEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Logger().Error().Err(err).Msg("failed to unmarshal timeout event, dropping")
			c.commit(ctx, msg)
			continue
		}

		// 未到期则等待；ctx 取消时不提交，消息留给下一个实例
		if wait := time.Until(event.DueAt); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		carrier := mq.KafkaHeaderCarrier(msg.Headers)
		msgCtx := otel.GetTextMapPropagator().Extract(ctx, &carrier)
		msgCtx, span := c.tracer.Start(msgCtx, "PaymentTimeoutConsumer.handle")
		if err := c.service.ProcessPaymentTimeout(msgCtx, &event); err != nil {
			logger.Ctx(msgCtx).Error().Err(err).
				Str("enrollment_id", event.EnrollmentID).
				Msg("payment timeout check failed")
		}
		span.End()

		c.commit(ctx, msg)
	}
}

func (c *PaymentTimeoutConsumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		logger.Logger().Error().Err(err).Msg("failed to commit timeout message")
	}
}

// Close 关闭底层 reader。
func (c *PaymentTimeoutConsumer) Close() error {
	return c.reader.Close()
}
