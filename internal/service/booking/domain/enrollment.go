// internal/service/booking/domain/enrollment.go
package domain

import (
	"fmt"
	"time"
)

// EnrollmentKind 区分单次报名与整期报名。
type EnrollmentKind string

const (
	KindSingle EnrollmentKind = "SINGLE" // 单次参加，永远按单次价
	KindCourse EnrollmentKind = "COURSE" // 整期报名，价格档位由报价决定
)

// Enrollment 是报名聚合的根实体。
type Enrollment struct {
	ID        string
	UserID    string
	SessionID int64
	SeriesID  int64
	TermID    int64
	Kind      EnrollmentKind
	Member    bool

	// 报价结果：档位与含税金额，在预占座位之后、等待支付之前确定
	PriceTier string
	PriceIncl int64

	State     State
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewEnrollment 用于从报名请求事件创建一个新的报名实例
func NewEnrollment(event *EnrollmentRequested) (*Enrollment, error) {
	if event.EventID == "" || event.UserID == "" || event.SessionID == 0 {
		return nil, ErrInvalidEnrollment
	}
	kind := event.Kind
	if kind == "" {
		kind = KindSingle
	}

	return &Enrollment{
		ID:        event.EventID,
		UserID:    event.UserID,
		SessionID: event.SessionID,
		SeriesID:  event.SeriesID,
		TermID:    event.TermID,
		Kind:      kind,
		Member:    event.Member,
		State:     StateCreated,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

// MarkAsPendingPayment 将报名状态更新为等待支付。
// 只负责状态流转，不触碰座位计数。
func (e *Enrollment) MarkAsPendingPayment() error {
	if e.State != StateCreated {
		return fmt.Errorf("%w: cannot mark %s enrollment as pending payment", ErrInvalidStateTransition, e.State)
	}
	e.State = StatePendingPayment
	e.UpdatedAt = time.Now()
	return nil
}

// MarkAsFailed 将报名标记为失败
func (e *Enrollment) MarkAsFailed() {
	e.State = StateFailed
	e.UpdatedAt = time.Now()
}

// Cancel 取消报名。只有待支付的报名可以被取消。
func (e *Enrollment) Cancel() error {
	if e.State != StatePendingPayment {
		return fmt.Errorf("%w: cannot cancel %s enrollment", ErrInvalidStateTransition, e.State)
	}
	e.State = StateCancelled
	e.UpdatedAt = time.Now()
	return nil
}

// Pay 确认支付完成
func (e *Enrollment) Pay() error {
	if e.State != StatePendingPayment {
		return fmt.Errorf("%w: cannot pay %s enrollment", ErrInvalidStateTransition, e.State)
	}
	e.State = StatePaid
	e.UpdatedAt = time.Now()
	return nil
}
