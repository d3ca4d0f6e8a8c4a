// internal/service/catalog/domain/term.go
package domain

import "time"

// TermStatus 定义了招生期的状态。
type TermStatus string

const (
	TermStatusActive TermStatus = "active"
	TermStatusClosed TermStatus = "closed"
)

// CourseTerm 是某个课程系列的一期带日期的招生窗口。
// 没有任何招生期的系列无法受理整期报名，只能按单次售卖。
type CourseTerm struct {
	ID       int64
	SeriesID int64
	Name     string

	StartDate time.Time
	EndDate   time.Time
	// EarlyBirdDeadline 是本期专属的早鸟截止日，可选；
	// 设置后优先级最高，原样生效。
	EarlyBirdDeadline *time.Time

	Status TermStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate 在写入期校验日期约束。
// 截止日在开课日当天或之后的配置直接拒绝，而不是留到报价时再容错——
// 那样会让"是否早鸟"的判定依赖一条非法数据。
func (t *CourseTerm) Validate() error {
	if t.StartDate.After(t.EndDate) {
		return ErrInvalidTermDates
	}
	if t.EarlyBirdDeadline != nil {
		if !dateOf(*t.EarlyBirdDeadline).Before(dateOf(t.StartDate)) {
			return ErrDeadlineNotBeforeStart
		}
	}
	return nil
}

// IsOpen 判断该期在给定时点是否还在招生窗口内。
func (t *CourseTerm) IsOpen(now time.Time) bool {
	if t.Status != TermStatusActive {
		return false
	}
	return !dateOf(now).After(dateOf(t.EndDate))
}

// dateOf 把时刻截断到日粒度。早鸟判定、截止日比较都以"日"为单位。
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
