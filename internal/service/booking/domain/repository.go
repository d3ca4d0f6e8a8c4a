// internal/service/booking/domain/repository.go
package domain

import "context"

// EnrollmentRepository 定义了报名聚合的持久化接口。
// 位于领域层，由基础设施层实现。
type EnrollmentRepository interface {
	Save(ctx context.Context, enrollment *Enrollment) error
	FindByID(ctx context.Context, id string) (*Enrollment, error)
	UpdateState(ctx context.Context, id string, state State) error
}

// SessionRepository 定义了课堂会话的持久化接口。
// 注意：这里只有 CRUD；占座/退座的原子计数走 port.SeatReserver。
type SessionRepository interface {
	Save(ctx context.Context, session *ClassSession) error
	FindByID(ctx context.Context, id int64) (*ClassSession, error)
	// UpdateCapacity 只改容量列，调用方负责先校验 enrolled ≤ capacity
	UpdateCapacity(ctx context.Context, id int64, capacity int) error
}

// EnrollmentProducer 把报名请求事件送入队列，由接口层调用。
type EnrollmentProducer interface {
	Produce(ctx context.Context, event *EnrollmentRequested) error
}
