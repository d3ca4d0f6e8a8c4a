// internal/service/booking/domain/session_test.go
package domain

import "testing"

func TestClassSession_Reserve(t *testing.T) {
	s := &ClassSession{Capacity: 2}

	if got := s.Reserve(); got != ReserveResultReserved {
		t.Fatalf("第一次占座应成功, 实际 %v", got)
	}
	if got := s.Reserve(); got != ReserveResultReserved {
		t.Fatalf("第二次占座应成功, 实际 %v", got)
	}
	if got := s.Reserve(); got != ReserveResultFull {
		t.Fatalf("满员后占座应返回 Full, 实际 %v", got)
	}
	if s.Enrolled != 2 {
		t.Errorf("满员后的失败尝试不应改变计数: 期望 2, 实际 %d", s.Enrolled)
	}
}

func TestClassSession_Release(t *testing.T) {
	s := &ClassSession{Capacity: 3, Enrolled: 1}

	if !s.Release() {
		t.Error("有座可释放时应返回 true")
	}
	if s.Enrolled != 0 {
		t.Errorf("释放后计数应为 0, 实际 %d", s.Enrolled)
	}

	// 多余的释放：钳制在 0，返回 false 供调用方记告警
	if s.Release() {
		t.Error("无座可释放时应返回 false")
	}
	if s.Enrolled != 0 {
		t.Errorf("多余的释放不应让计数变负: 实际 %d", s.Enrolled)
	}
}

func TestClassSession_InvariantAcrossSequence(t *testing.T) {
	// 任意操作序列之后 0 ≤ Enrolled ≤ Capacity 都必须成立
	s := &ClassSession{Capacity: 3}
	ops := []string{"r", "r", "l", "r", "r", "r", "l", "l", "l", "l", "r"}
	for i, op := range ops {
		if op == "r" {
			s.Reserve()
		} else {
			s.Release()
		}
		if s.Enrolled < 0 || s.Enrolled > s.Capacity {
			t.Fatalf("第 %d 步后不变式被破坏: enrolled=%d capacity=%d", i, s.Enrolled, s.Capacity)
		}
	}
}

func TestClassSession_RemainingAndFull(t *testing.T) {
	s := &ClassSession{Capacity: 5, Enrolled: 3}
	if s.Remaining() != 2 {
		t.Errorf("余位: 期望 2, 实际 %d", s.Remaining())
	}
	if s.IsFull() {
		t.Error("未满员时 IsFull 应为 false")
	}
	s.Enrolled = 5
	if !s.IsFull() {
		t.Error("满员时 IsFull 应为 true")
	}
}

func TestClassSession_ValidateCapacity(t *testing.T) {
	if err := (&ClassSession{Capacity: 0}).ValidateCapacity(); err != ErrInvalidCapacity {
		t.Errorf("容量 0 应返回 ErrInvalidCapacity, 实际 %v", err)
	}
	if err := (&ClassSession{Capacity: 2, Enrolled: 3}).ValidateCapacity(); err != ErrCapacityBelowEnrolled {
		t.Errorf("容量低于已报名人数应返回 ErrCapacityBelowEnrolled, 实际 %v", err)
	}
	if err := (&ClassSession{Capacity: 3, Enrolled: 3}).ValidateCapacity(); err != nil {
		t.Errorf("容量等于已报名人数应合法: %v", err)
	}
}
