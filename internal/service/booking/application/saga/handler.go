// internal/service/booking/application/saga/handler.go
package saga

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"manabi/internal/pkg/logger"
	"manabi/internal/service/booking/domain"
	"manabi/internal/service/booking/domain/port"
)

// EnrollmentContext 在报名处理链中传递上下文数据。
// 所有外部依赖都是抽象端口，链上的每一步只面向接口。
type EnrollmentContext struct {
	Ctx        context.Context
	Enrollment *domain.Enrollment
	Tracer     trace.Tracer

	Seats      port.SeatReserver
	Quoter     port.PriceQuoter
	Notifier   port.NotificationProducer
	SeatEvents port.SeatEventProducer
	Scheduler  port.DelayScheduler

	// 补偿栈：后注册的先执行
	compensations []func(ctx context.Context)
	compLock      sync.Mutex
}

// AddCompensation 注册一个补偿操作。
func (c *EnrollmentContext) AddCompensation(comp func(ctx context.Context)) {
	c.compLock.Lock()
	defer c.compLock.Unlock()
	c.compensations = append([]func(context.Context){comp}, c.compensations...)
}

// TriggerCompensation 在链路失败后按后进先出的顺序执行全部补偿。
func (c *EnrollmentContext) TriggerCompensation(ctx context.Context) {
	c.compLock.Lock()
	defer c.compLock.Unlock()
	logger.Ctx(ctx).Info().
		Str("enrollment_id", c.Enrollment.ID).
		Int("compensations", len(c.compensations)).
		Msg("executing compensation functions")
	for _, comp := range c.compensations {
		comp(ctx)
	}
	c.compensations = nil
}

// Handler 是责任链节点的接口。
type Handler interface {
	SetNext(handler Handler) Handler
	Handle(enrollCtx *EnrollmentContext) error
}

type NextHandler struct {
	next Handler
}

func (h *NextHandler) SetNext(handler Handler) Handler {
	h.next = handler
	return handler
}

func (h *NextHandler) executeNext(enrollCtx *EnrollmentContext) error {
	if h.next != nil {
		return h.next.Handle(enrollCtx)
	}
	return nil
}
