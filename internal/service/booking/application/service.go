// internal/service/booking/application/service.go
package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"manabi/internal/pkg/logger"
	"manabi/internal/service/booking/application/saga"
	"manabi/internal/service/booking/domain"
	"manabi/internal/service/booking/domain/port"
)

// BookingService 是报名服务的应用层门面。
// 写路径（报名）走消息队列削峰，消费侧用责任链 + 补偿保证座位簿记一致。
type BookingService struct {
	enrollmentRepo domain.EnrollmentRepository
	sessionRepo    domain.SessionRepository
	producer       domain.EnrollmentProducer

	seats      port.SeatReserver
	quoter     port.PriceQuoter
	notifier   port.NotificationProducer
	seatEvents port.SeatEventProducer
	scheduler  port.DelayScheduler
	locker     port.SessionLocker

	tracer trace.Tracer
}

func NewBookingService(
	enrollmentRepo domain.EnrollmentRepository,
	sessionRepo domain.SessionRepository,
	producer domain.EnrollmentProducer,
	seats port.SeatReserver,
	quoter port.PriceQuoter,
	notifier port.NotificationProducer,
	seatEvents port.SeatEventProducer,
	scheduler port.DelayScheduler,
	locker port.SessionLocker,
	tracer trace.Tracer,
) *BookingService {
	return &BookingService{
		enrollmentRepo: enrollmentRepo,
		sessionRepo:    sessionRepo,
		producer:       producer,
		seats:          seats,
		quoter:         quoter,
		notifier:       notifier,
		seatEvents:     seatEvents,
		scheduler:      scheduler,
		locker:         locker,
		tracer:         tracer,
	}
}

// RequestEnrollment 接收报名请求并送入队列，立即返回受理标识。
// 真正的占座与报价在消费侧完成。
func (s *BookingService) RequestEnrollment(ctx context.Context, req *EnrollRequest) (*EnrollResponse, error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.RequestEnrollment")
	defer span.End()

	if req.UserID == "" || req.SessionID == 0 {
		return nil, domain.ErrInvalidEnrollment
	}
	if req.Kind == domain.KindCourse && req.SeriesID == 0 {
		return nil, domain.ErrInvalidEnrollment
	}

	// 入队前确认会话存在，给调用方一个早期失败
	if _, err := s.sessionRepo.FindByID(ctx, req.SessionID); err != nil {
		return nil, err
	}

	event := &domain.EnrollmentRequested{
		EventID:   uuid.New().String(),
		TraceID:   span.SpanContext().TraceID().String(),
		UserID:    req.UserID,
		SessionID: req.SessionID,
		SeriesID:  req.SeriesID,
		TermID:    req.TermID,
		Kind:      req.Kind,
		Member:    req.Member,
	}
	if err := s.producer.Produce(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to enqueue enrollment request")
		return nil, errors.Wrap(err, "enqueue enrollment request")
	}

	span.SetAttributes(attribute.String("enrollment.id", event.EventID))
	return &EnrollResponse{EnrollmentID: event.EventID, Status: "ACCEPTED"}, nil
}

// HandleEnrollmentRequest 是队列消费侧的入口：
// 1. 从事件还原报名实体
// 2. 组装责任链：占座 -> 报价 -> 落库 -> 通知
// 3. 任何一步失败都触发补偿并把报名标记为失败
func (s *BookingService) HandleEnrollmentRequest(ctx context.Context, event *domain.EnrollmentRequested) error {
	ctx, span := s.tracer.Start(ctx, "BookingService.HandleEnrollmentRequest")
	defer span.End()
	span.SetAttributes(
		attribute.String("enrollment.id", event.EventID),
		attribute.Int64("session.id", event.SessionID),
	)

	enrollment, err := domain.NewEnrollment(event)
	if err != nil {
		span.RecordError(err)
		return err
	}

	enrollCtx := &saga.EnrollmentContext{
		Ctx:        ctx,
		Enrollment: enrollment,
		Tracer:     s.tracer,
		Seats:      s.seats,
		Quoter:     s.quoter,
		Notifier:   s.notifier,
		SeatEvents: s.seatEvents,
		Scheduler:  s.scheduler,
	}

	seatHold := &saga.SeatHoldHandler{}
	priceQuote := &saga.PriceQuoteHandler{}
	persist := &saga.PersistEnrollmentHandler{Repo: s.enrollmentRepo}
	notify := &saga.NotifyHandler{}
	seatHold.SetNext(priceQuote).SetNext(persist).SetNext(notify)

	if err := seatHold.Handle(enrollCtx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "enrollment chain failed")
		enrollCtx.TriggerCompensation(ctx)

		enrollment.MarkAsFailed()
		if saveErr := s.enrollmentRepo.Save(ctx, enrollment); saveErr != nil {
			logger.Ctx(ctx).Error().Err(saveErr).
				Str("enrollment_id", enrollment.ID).
				Msg("failed to persist failed enrollment")
		}
		return err
	}
	return nil
}

// ConfirmPayment 把待支付的报名转为已支付。
func (s *BookingService) ConfirmPayment(ctx context.Context, enrollmentID string) (*EnrollmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.ConfirmPayment")
	defer span.End()

	enrollment, err := s.enrollmentRepo.FindByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if err := enrollment.Pay(); err != nil {
		return nil, err
	}
	if err := s.enrollmentRepo.UpdateState(ctx, enrollment.ID, enrollment.State); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return NewEnrollmentResponse(enrollment), nil
}

// CancelEnrollment 取消待支付的报名并释放座位。
func (s *BookingService) CancelEnrollment(ctx context.Context, enrollmentID string) (*EnrollmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.CancelEnrollment")
	defer span.End()

	enrollment, err := s.enrollmentRepo.FindByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if err := enrollment.Cancel(); err != nil {
		return nil, err
	}
	if err := s.enrollmentRepo.UpdateState(ctx, enrollment.ID, enrollment.State); err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.releaseSeat(ctx, enrollment.SessionID)
	return NewEnrollmentResponse(enrollment), nil
}

// GetEnrollment 查询报名单。
func (s *BookingService) GetEnrollment(ctx context.Context, enrollmentID string) (*EnrollmentResponse, error) {
	enrollment, err := s.enrollmentRepo.FindByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	return NewEnrollmentResponse(enrollment), nil
}

// ProcessPaymentTimeout 处理延迟队列到期的支付超时检查：
// 仍在待支付状态的报名被自动取消，座位归还。
func (s *BookingService) ProcessPaymentTimeout(ctx context.Context, event *domain.PaymentTimeoutCheckEvent) error {
	ctx, span := s.tracer.Start(ctx, "BookingService.ProcessPaymentTimeout")
	defer span.End()
	span.SetAttributes(attribute.String("enrollment.id", event.EnrollmentID))

	enrollment, err := s.enrollmentRepo.FindByID(ctx, event.EnrollmentID)
	if err != nil {
		if errors.Is(err, domain.ErrEnrollmentNotFound) {
			// 报名从未落库（链路早期失败），无事可做
			return nil
		}
		return err
	}
	if enrollment.State != domain.StatePendingPayment {
		span.AddEvent("enrollment already settled, timeout check is a no-op")
		return nil
	}

	if err := enrollment.Cancel(); err != nil {
		return err
	}
	if err := s.enrollmentRepo.UpdateState(ctx, enrollment.ID, enrollment.State); err != nil {
		span.RecordError(err)
		return err
	}
	logger.Ctx(ctx).Info().
		Str("enrollment_id", enrollment.ID).
		Int64("session_id", enrollment.SessionID).
		Msg("enrollment cancelled due to payment timeout")
	s.releaseSeat(ctx, enrollment.SessionID)
	return nil
}

// CreateSession 创建或更新课堂会话。
func (s *BookingService) CreateSession(ctx context.Context, req *SaveSessionRequest) (*AvailabilityResponse, error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.CreateSession")
	defer span.End()

	session := &domain.ClassSession{
		ID:       req.ID,
		SeriesID: req.SeriesID,
		Name:     req.Name,
		StartsAt: req.StartsAt,
		Capacity: req.Capacity,
	}
	if req.ID != 0 {
		existing, err := s.sessionRepo.FindByID(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		session.Enrolled = existing.Enrolled
		session.CreatedAt = existing.CreatedAt
	}
	if err := session.ValidateCapacity(); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return NewAvailabilityResponse(session), nil
}

// GetAvailability 查询余位。
func (s *BookingService) GetAvailability(ctx context.Context, sessionID int64) (*AvailabilityResponse, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return NewAvailabilityResponse(session), nil
}

// ResizeCapacity 调整会话容量。
// 缩容不允许低于当前已报名人数；多实例部署下按会话加分布式锁，
// 避免缩容校验与并发的管理操作交错。
func (s *BookingService) ResizeCapacity(ctx context.Context, req *ResizeCapacityRequest) (*AvailabilityResponse, error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.ResizeCapacity")
	defer span.End()

	if req.Capacity < 1 {
		return nil, domain.ErrInvalidCapacity
	}

	if s.locker != nil {
		release, err := s.locker.Acquire(req.SessionID)
		if err != nil {
			span.RecordError(err)
			return nil, errors.Wrap(err, "acquire capacity lock")
		}
		defer release()
	}

	session, err := s.sessionRepo.FindByID(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if req.Capacity < session.Enrolled {
		return nil, domain.ErrCapacityBelowEnrolled
	}
	if err := s.sessionRepo.UpdateCapacity(ctx, req.SessionID, req.Capacity); err != nil {
		span.RecordError(err)
		return nil, err
	}
	session.Capacity = req.Capacity
	s.publishSeatChange(ctx, session)
	return NewAvailabilityResponse(session), nil
}

// releaseSeat 归还一个座位并广播变化；释放失败记错误日志但不向上传播，
// 座位计数只会偏小（不会超卖），由对账任务兜底。
func (s *BookingService) releaseSeat(ctx context.Context, sessionID int64) {
	if _, err := s.seats.Release(ctx, sessionID); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Int64("session_id", sessionID).
			Msg("failed to release seat")
		return
	}
	if session, err := s.sessionRepo.FindByID(ctx, sessionID); err == nil {
		s.publishSeatChange(ctx, session)
	}
}

func (s *BookingService) publishSeatChange(ctx context.Context, session *domain.ClassSession) {
	if s.seatEvents == nil {
		return
	}
	event := &domain.SeatChanged{
		SessionID: session.ID,
		Remaining: session.Remaining(),
		Full:      session.IsFull(),
		At:        time.Now(),
	}
	if err := s.seatEvents.SeatChanged(ctx, event); err != nil {
		logger.Ctx(ctx).Warn().Err(err).
			Int64("session_id", session.ID).
			Msg("failed to publish seat change event")
	}
}
