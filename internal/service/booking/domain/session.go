// internal/service/booking/domain/session.go
package domain

import "time"

// ReserveResult 是一次座位预占尝试的结果。
// 满员是常规业务结果而不是异常，所以建模为枚举值。
type ReserveResult int

const (
	ReserveResultFull     ReserveResult = 0 // 已满员，状态未变
	ReserveResultReserved ReserveResult = 1 // 成功占到一个座位
)

// ClassSession 是一次可预约的课堂会话，持有座位簿记。
// 不变式：0 ≤ Enrolled ≤ Capacity 在任何时刻成立；
// Reserve 是唯一允许使 Enrolled 增加的路径。
type ClassSession struct {
	ID       int64
	SeriesID *int64 // 可为空：系列删除后会话保留，只解除关联
	Name     string
	StartsAt time.Time

	Capacity int
	Enrolled int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Remaining 返回剩余座位数。
func (s *ClassSession) Remaining() int {
	return s.Capacity - s.Enrolled
}

// IsFull 判断会话是否已满员。
func (s *ClassSession) IsFull() bool {
	return s.Enrolled >= s.Capacity
}

// Reserve 在实体上执行"检查并占座"。
// 并发场景下真正的原子性由持久层适配器保证（CAS 更新或 Lua 脚本），
// 这里的方法承载业务规则本身，也直接服务于单元测试。
func (s *ClassSession) Reserve() ReserveResult {
	if s.Enrolled >= s.Capacity {
		return ReserveResultFull
	}
	s.Enrolled++
	return ReserveResultReserved
}

// Release 释放一个座位，下限钳制在 0。
// 返回 false 表示出现了多余的释放（上游重复退座），
// 调用方应记一条告警日志，但不应把它作为失败向用户传播。
func (s *ClassSession) Release() bool {
	if s.Enrolled <= 0 {
		s.Enrolled = 0
		return false
	}
	s.Enrolled--
	return true
}

// ValidateCapacity 校验容量设置。
func (s *ClassSession) ValidateCapacity() error {
	if s.Capacity < 1 {
		return ErrInvalidCapacity
	}
	if s.Enrolled > s.Capacity {
		return ErrCapacityBelowEnrolled
	}
	return nil
}
