// internal/service/booking/application/service_test.go
package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace/noop"

	"manabi/internal/service/booking/domain"
	"manabi/internal/service/booking/domain/port"
)

// ---- 内存实现，占座路径保证与生产实现相同的原子语义 ----

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[int64]*domain.ClassSession
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[int64]*domain.ClassSession)}
}

func (r *memSessionRepo) Save(ctx context.Context, s *domain.ClassSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == 0 {
		s.ID = int64(len(r.sessions) + 1)
	}
	copied := *s
	r.sessions[s.ID] = &copied
	return nil
}

func (r *memSessionRepo) FindByID(ctx context.Context, id int64) (*domain.ClassSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *memSessionRepo) UpdateCapacity(ctx context.Context, id int64, capacity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.Capacity = capacity
	return nil
}

// memSeats 是 SeatReserver 的内存实现："检查 + 自增"在锁内完成，
// 与数据库条件更新的原子语义一致。
type memSeats struct {
	repo *memSessionRepo
}

func (m *memSeats) TryReserve(ctx context.Context, sessionID int64) (domain.ReserveResult, error) {
	m.repo.mu.Lock()
	defer m.repo.mu.Unlock()
	s, ok := m.repo.sessions[sessionID]
	if !ok {
		return domain.ReserveResultFull, domain.ErrSessionNotFound
	}
	return s.Reserve(), nil
}

func (m *memSeats) Release(ctx context.Context, sessionID int64) (bool, error) {
	m.repo.mu.Lock()
	defer m.repo.mu.Unlock()
	s, ok := m.repo.sessions[sessionID]
	if !ok {
		return false, domain.ErrSessionNotFound
	}
	return s.Release(), nil
}

type memEnrollmentRepo struct {
	mu          sync.Mutex
	enrollments map[string]*domain.Enrollment
}

func newMemEnrollmentRepo() *memEnrollmentRepo {
	return &memEnrollmentRepo{enrollments: make(map[string]*domain.Enrollment)}
}

func (r *memEnrollmentRepo) Save(ctx context.Context, e *domain.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *e
	r.enrollments[e.ID] = &copied
	return nil
}

func (r *memEnrollmentRepo) FindByID(ctx context.Context, id string) (*domain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.enrollments[id]
	if !ok {
		return nil, domain.ErrEnrollmentNotFound
	}
	copied := *e
	return &copied, nil
}

func (r *memEnrollmentRepo) UpdateState(ctx context.Context, id string, state domain.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.enrollments[id]
	if !ok {
		return domain.ErrEnrollmentNotFound
	}
	e.State = state
	return nil
}

type capturingProducer struct {
	mu     sync.Mutex
	events []*domain.EnrollmentRequested
}

func (p *capturingProducer) Produce(ctx context.Context, event *domain.EnrollmentRequested) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

type stubQuoter struct {
	quote     *port.Quote
	quoteErr  error
	single    int64
	singleErr error
}

func (q *stubQuoter) Quote(ctx context.Context, seriesID, termID int64, member bool) (*port.Quote, error) {
	if q.quoteErr != nil {
		return nil, q.quoteErr
	}
	return q.quote, nil
}

func (q *stubQuoter) SinglePrice(ctx context.Context, seriesID int64) (int64, error) {
	return q.single, q.singleErr
}

type capturingNotifier struct {
	mu     sync.Mutex
	placed []*domain.EnrollmentPlaced
}

func (n *capturingNotifier) EnrollmentPlaced(ctx context.Context, event *domain.EnrollmentPlaced) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.placed = append(n.placed, event)
	return nil
}

type capturingSeatEvents struct {
	mu     sync.Mutex
	events []*domain.SeatChanged
}

func (s *capturingSeatEvents) SeatChanged(ctx context.Context, event *domain.SeatChanged) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

type capturingScheduler struct {
	mu        sync.Mutex
	scheduled []string
}

func (s *capturingScheduler) SchedulePaymentTimeout(ctx context.Context, enrollmentID string, sessionID int64, userID string, placedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled = append(s.scheduled, enrollmentID)
	return nil
}

// ---- 脚手架 ----

type bookingFixture struct {
	service        *BookingService
	enrollmentRepo *memEnrollmentRepo
	sessionRepo    *memSessionRepo
	producer       *capturingProducer
	quoter         *stubQuoter
	notifier       *capturingNotifier
	seatEvents     *capturingSeatEvents
	scheduler      *capturingScheduler
}

func newBookingFixture() *bookingFixture {
	f := &bookingFixture{
		enrollmentRepo: newMemEnrollmentRepo(),
		sessionRepo:    newMemSessionRepo(),
		producer:       &capturingProducer{},
		quoter: &stubQuoter{
			quote:  &port.Quote{TermID: 1, Tier: "EARLY", PriceIncl: 43824, SingleIncl: 8800},
			single: 8800,
		},
		notifier:   &capturingNotifier{},
		seatEvents: &capturingSeatEvents{},
		scheduler:  &capturingScheduler{},
	}
	tracer := noop.NewTracerProvider().Tracer("test")
	f.service = NewBookingService(
		f.enrollmentRepo,
		f.sessionRepo,
		f.producer,
		&memSeats{repo: f.sessionRepo},
		f.quoter,
		f.notifier,
		f.seatEvents,
		f.scheduler,
		nil,
		tracer,
	)
	return f
}

func (f *bookingFixture) seedSession(t *testing.T, capacity int) *domain.ClassSession {
	t.Helper()
	s := &domain.ClassSession{Name: "写作基础 第1回", Capacity: capacity}
	if err := f.sessionRepo.Save(context.Background(), s); err != nil {
		t.Fatalf("创建会话失败: %v", err)
	}
	return s
}

func enrollmentEvent(id string, sessionID int64) *domain.EnrollmentRequested {
	return &domain.EnrollmentRequested{
		EventID:   id,
		UserID:    "user-" + id,
		SessionID: sessionID,
		SeriesID:  7,
		Kind:      domain.KindCourse,
		Member:    true,
	}
}

// ---- 用例 ----

func TestRequestEnrollment_Enqueues(t *testing.T) {
	f := newBookingFixture()
	session := f.seedSession(t, 10)

	resp, err := f.service.RequestEnrollment(context.Background(), &EnrollRequest{
		UserID:    "user-1",
		SessionID: session.ID,
		SeriesID:  7,
		Kind:      domain.KindCourse,
	})
	if err != nil {
		t.Fatalf("受理失败: %v", err)
	}
	if resp.Status != "ACCEPTED" || resp.EnrollmentID == "" {
		t.Errorf("响应不完整: %+v", resp)
	}
	if len(f.producer.events) != 1 {
		t.Fatalf("应入队 1 条事件, 实际 %d", len(f.producer.events))
	}
	if f.producer.events[0].SessionID != session.ID {
		t.Errorf("事件会话 ID 不匹配: %+v", f.producer.events[0])
	}
}

func TestRequestEnrollment_Validation(t *testing.T) {
	f := newBookingFixture()
	session := f.seedSession(t, 10)

	t.Run("缺少用户", func(t *testing.T) {
		_, err := f.service.RequestEnrollment(context.Background(), &EnrollRequest{SessionID: session.ID})
		if !errors.Is(err, domain.ErrInvalidEnrollment) {
			t.Errorf("期望 ErrInvalidEnrollment, 实际 %v", err)
		}
	})
	t.Run("整期报名缺少系列", func(t *testing.T) {
		_, err := f.service.RequestEnrollment(context.Background(), &EnrollRequest{
			UserID: "u", SessionID: session.ID, Kind: domain.KindCourse,
		})
		if !errors.Is(err, domain.ErrInvalidEnrollment) {
			t.Errorf("期望 ErrInvalidEnrollment, 实际 %v", err)
		}
	})
	t.Run("会话不存在", func(t *testing.T) {
		_, err := f.service.RequestEnrollment(context.Background(), &EnrollRequest{
			UserID: "u", SessionID: 999, Kind: domain.KindSingle,
		})
		if !errors.Is(err, domain.ErrSessionNotFound) {
			t.Errorf("期望 ErrSessionNotFound, 实际 %v", err)
		}
	})
}

func TestHandleEnrollmentRequest_Success(t *testing.T) {
	f := newBookingFixture()
	session := f.seedSession(t, 5)

	if err := f.service.HandleEnrollmentRequest(context.Background(), enrollmentEvent("evt-1", session.ID)); err != nil {
		t.Fatalf("处理报名失败: %v", err)
	}

	stored, err := f.enrollmentRepo.FindByID(context.Background(), "evt-1")
	if err != nil {
		t.Fatalf("报名未落库: %v", err)
	}
	if stored.State != domain.StatePendingPayment {
		t.Errorf("状态应为 PENDING_PAYMENT, 实际 %s", stored.State)
	}
	if stored.PriceTier != "EARLY" || stored.PriceIncl != 43824 {
		t.Errorf("报价结果未写回: tier=%s price=%d", stored.PriceTier, stored.PriceIncl)
	}

	updated, _ := f.sessionRepo.FindByID(context.Background(), session.ID)
	if updated.Enrolled != 1 {
		t.Errorf("座位应被占用 1 个, 实际 %d", updated.Enrolled)
	}
	if len(f.notifier.placed) != 1 {
		t.Errorf("应发布 1 条报名成功事件, 实际 %d", len(f.notifier.placed))
	}
	if len(f.scheduler.scheduled) != 1 {
		t.Errorf("应调度 1 个支付超时检查, 实际 %d", len(f.scheduler.scheduled))
	}
	if len(f.seatEvents.events) == 0 {
		t.Error("占座成功后应广播座位变化")
	}
}

func TestHandleEnrollmentRequest_SingleKind(t *testing.T) {
	f := newBookingFixture()
	session := f.seedSession(t, 5)

	event := enrollmentEvent("evt-s", session.ID)
	event.Kind = domain.KindSingle
	if err := f.service.HandleEnrollmentRequest(context.Background(), event); err != nil {
		t.Fatalf("处理报名失败: %v", err)
	}
	stored, _ := f.enrollmentRepo.FindByID(context.Background(), "evt-s")
	if stored.PriceTier != "SINGLE" || stored.PriceIncl != 8800 {
		t.Errorf("单次报名应按单次价: tier=%s price=%d", stored.PriceTier, stored.PriceIncl)
	}
}

func TestHandleEnrollmentRequest_SessionFull(t *testing.T) {
	f := newBookingFixture()
	session := f.seedSession(t, 1)

	if err := f.service.HandleEnrollmentRequest(context.Background(), enrollmentEvent("evt-1", session.ID)); err != nil {
		t.Fatalf("第一单应成功: %v", err)
	}
	err := f.service.HandleEnrollmentRequest(context.Background(), enrollmentEvent("evt-2", session.ID))
	if !errors.Is(err, domain.ErrSessionFull) {
		t.Fatalf("期望 ErrSessionFull, 实际 %v", err)
	}

	updated, _ := f.sessionRepo.FindByID(context.Background(), session.ID)
	if updated.Enrolled != 1 {
		t.Errorf("满员的失败尝试不应改变计数: 期望 1, 实际 %d", updated.Enrolled)
	}
	stored, err := f.enrollmentRepo.FindByID(context.Background(), "evt-2")
	if err != nil {
		t.Fatalf("失败的报名也应落库: %v", err)
	}
	if stored.State != domain.StateFailed {
		t.Errorf("满员的报名状态应为 FAILED, 实际 %s", stored.State)
	}
}

func TestHandleEnrollmentRequest_QuoteFailureCompensatesSeat(t *testing.T) {
	f := newBookingFixture()
	session := f.seedSession(t, 5)
	f.quoter.quoteErr = fmt.Errorf("catalog unavailable")

	err := f.service.HandleEnrollmentRequest(context.Background(), enrollmentEvent("evt-1", session.ID))
	if err == nil {
		t.Fatal("报价失败时处理应失败")
	}

	// 补偿必须把占住的座位还回去
	updated, _ := f.sessionRepo.FindByID(context.Background(), session.ID)
	if updated.Enrolled != 0 {
		t.Errorf("补偿后座位应归还: 期望 0, 实际 %d", updated.Enrolled)
	}
	stored, _ := f.enrollmentRepo.FindByID(context.Background(), "evt-1")
	if stored.State != domain.StateFailed {
		t.Errorf("状态应为 FAILED, 实际 %s", stored.State)
	}
	if len(f.notifier.placed) != 0 {
		t.Error("失败的报名不应发布成功事件")
	}
}

func TestHandleEnrollmentRequest_ConcurrentNeverOversells(t *testing.T) {
	f := newBookingFixture()
	const capacity = 3
	const attempts = 20
	session := f.seedSession(t, capacity)

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results <- f.service.HandleEnrollmentRequest(context.Background(),
				enrollmentEvent(fmt.Sprintf("evt-%d", i), session.ID))
		}(i)
	}
	wg.Wait()
	close(results)

	var placed, full int
	for err := range results {
		switch {
		case err == nil:
			placed++
		case errors.Is(err, domain.ErrSessionFull):
			full++
		default:
			t.Fatalf("意外错误: %v", err)
		}
	}
	if placed != capacity {
		t.Errorf("成功数应等于容量 %d, 实际 %d", capacity, placed)
	}
	if full != attempts-capacity {
		t.Errorf("满员数应为 %d, 实际 %d", attempts-capacity, full)
	}
	updated, _ := f.sessionRepo.FindByID(context.Background(), session.ID)
	if updated.Enrolled != capacity {
		t.Errorf("最终计数应为 %d, 实际 %d", capacity, updated.Enrolled)
	}
}

func TestProcessPaymentTimeout(t *testing.T) {
	t.Run("待支付的报名被取消并释放座位", func(t *testing.T) {
		f := newBookingFixture()
		session := f.seedSession(t, 5)
		f.service.HandleEnrollmentRequest(context.Background(), enrollmentEvent("evt-1", session.ID))

		err := f.service.ProcessPaymentTimeout(context.Background(), &domain.PaymentTimeoutCheckEvent{
			EnrollmentID: "evt-1", SessionID: session.ID,
		})
		if err != nil {
			t.Fatalf("超时处理失败: %v", err)
		}
		stored, _ := f.enrollmentRepo.FindByID(context.Background(), "evt-1")
		if stored.State != domain.StateCancelled {
			t.Errorf("状态应为 CANCELLED, 实际 %s", stored.State)
		}
		updated, _ := f.sessionRepo.FindByID(context.Background(), session.ID)
		if updated.Enrolled != 0 {
			t.Errorf("座位应被释放: 实际 %d", updated.Enrolled)
		}
	})

	t.Run("已支付的报名不受影响", func(t *testing.T) {
		f := newBookingFixture()
		session := f.seedSession(t, 5)
		f.service.HandleEnrollmentRequest(context.Background(), enrollmentEvent("evt-1", session.ID))
		if _, err := f.service.ConfirmPayment(context.Background(), "evt-1"); err != nil {
			t.Fatalf("确认支付失败: %v", err)
		}

		err := f.service.ProcessPaymentTimeout(context.Background(), &domain.PaymentTimeoutCheckEvent{
			EnrollmentID: "evt-1", SessionID: session.ID,
		})
		if err != nil {
			t.Fatalf("超时检查应为无操作: %v", err)
		}
		stored, _ := f.enrollmentRepo.FindByID(context.Background(), "evt-1")
		if stored.State != domain.StatePaid {
			t.Errorf("状态应保持 PAID, 实际 %s", stored.State)
		}
		updated, _ := f.sessionRepo.FindByID(context.Background(), session.ID)
		if updated.Enrolled != 1 {
			t.Errorf("座位不应被释放: 实际 %d", updated.Enrolled)
		}
	})

	t.Run("从未落库的报名静默跳过", func(t *testing.T) {
		f := newBookingFixture()
		err := f.service.ProcessPaymentTimeout(context.Background(), &domain.PaymentTimeoutCheckEvent{
			EnrollmentID: "ghost",
		})
		if err != nil {
			t.Errorf("不存在的报名应为无操作: %v", err)
		}
	})
}

func TestCancelEnrollment_ReleasesSeat(t *testing.T) {
	f := newBookingFixture()
	session := f.seedSession(t, 5)
	f.service.HandleEnrollmentRequest(context.Background(), enrollmentEvent("evt-1", session.ID))

	resp, err := f.service.CancelEnrollment(context.Background(), "evt-1")
	if err != nil {
		t.Fatalf("取消失败: %v", err)
	}
	if resp.State != string(domain.StateCancelled) {
		t.Errorf("状态应为 CANCELLED, 实际 %s", resp.State)
	}
	updated, _ := f.sessionRepo.FindByID(context.Background(), session.ID)
	if updated.Enrolled != 0 {
		t.Errorf("座位应被释放: 实际 %d", updated.Enrolled)
	}
}

func TestResizeCapacity(t *testing.T) {
	f := newBookingFixture()
	session := f.seedSession(t, 5)
	f.service.HandleEnrollmentRequest(context.Background(), enrollmentEvent("evt-1", session.ID))
	f.service.HandleEnrollmentRequest(context.Background(), enrollmentEvent("evt-2", session.ID))

	t.Run("缩容到已报名人数以下被拒绝", func(t *testing.T) {
		_, err := f.service.ResizeCapacity(context.Background(), &ResizeCapacityRequest{
			SessionID: session.ID, Capacity: 1,
		})
		if !errors.Is(err, domain.ErrCapacityBelowEnrolled) {
			t.Errorf("期望 ErrCapacityBelowEnrolled, 实际 %v", err)
		}
	})

	t.Run("缩容到已报名人数被允许", func(t *testing.T) {
		resp, err := f.service.ResizeCapacity(context.Background(), &ResizeCapacityRequest{
			SessionID: session.ID, Capacity: 2,
		})
		if err != nil {
			t.Fatalf("缩容失败: %v", err)
		}
		if resp.Capacity != 2 || !resp.Full {
			t.Errorf("缩容后应恰好满员: %+v", resp)
		}
	})

	t.Run("容量为 0 被拒绝", func(t *testing.T) {
		_, err := f.service.ResizeCapacity(context.Background(), &ResizeCapacityRequest{
			SessionID: session.ID, Capacity: 0,
		})
		if !errors.Is(err, domain.ErrInvalidCapacity) {
			t.Errorf("期望 ErrInvalidCapacity, 实际 %v", err)
		}
	})
}
