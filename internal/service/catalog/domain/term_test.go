// internal/service/catalog/domain/term_test.go
package domain

import (
	"testing"
	"time"
)

func TestCourseTerm_Validate(t *testing.T) {
	start := date(2025, 3, 1)
	end := date(2025, 5, 31)

	t.Run("合法的期", func(t *testing.T) {
		term := &CourseTerm{StartDate: start, EndDate: end, EarlyBirdDeadline: timePtr(date(2025, 2, 15))}
		if err := term.Validate(); err != nil {
			t.Errorf("不应报错: %v", err)
		}
	})

	t.Run("开始晚于结束", func(t *testing.T) {
		term := &CourseTerm{StartDate: end, EndDate: start}
		if err := term.Validate(); err != ErrInvalidTermDates {
			t.Errorf("期望 ErrInvalidTermDates, 实际 %v", err)
		}
	})

	t.Run("截止日等于开课日", func(t *testing.T) {
		term := &CourseTerm{StartDate: start, EndDate: end, EarlyBirdDeadline: timePtr(start)}
		if err := term.Validate(); err != ErrDeadlineNotBeforeStart {
			t.Errorf("期望 ErrDeadlineNotBeforeStart, 实际 %v", err)
		}
	})

	t.Run("截止日在开课日之后", func(t *testing.T) {
		term := &CourseTerm{StartDate: start, EndDate: end, EarlyBirdDeadline: timePtr(date(2025, 3, 10))}
		if err := term.Validate(); err != ErrDeadlineNotBeforeStart {
			t.Errorf("期望 ErrDeadlineNotBeforeStart, 实际 %v", err)
		}
	})

	t.Run("开始与结束同一天", func(t *testing.T) {
		term := &CourseTerm{StartDate: start, EndDate: start}
		if err := term.Validate(); err != nil {
			t.Errorf("单日的期应合法: %v", err)
		}
	})
}

func TestCourseTerm_IsOpen(t *testing.T) {
	term := &CourseTerm{
		StartDate: date(2025, 3, 1),
		EndDate:   date(2025, 5, 31),
		Status:    TermStatusActive,
	}

	if !term.IsOpen(date(2025, 4, 1)) {
		t.Error("窗口内应为开放")
	}
	if !term.IsOpen(time.Date(2025, 5, 31, 23, 0, 0, 0, time.UTC)) {
		t.Error("结束日当天应为开放")
	}
	if term.IsOpen(date(2025, 6, 1)) {
		t.Error("结束日次日应为关闭")
	}

	closed := &CourseTerm{StartDate: date(2025, 3, 1), EndDate: date(2025, 5, 31), Status: TermStatusClosed}
	if closed.IsOpen(date(2025, 4, 1)) {
		t.Error("已关闭的期不应开放")
	}
}
