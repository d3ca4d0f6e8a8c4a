// internal/service/catalog/domain/series.go
package domain

import "time"

// CourseSeries 是一个可售卖的多回课程商品。
// 原始输入（单次价、回数、引用的价格模板）由运营编辑，
// Derived 字段是 Compute 的缓存结果，随每次写入同步重算并落库——
// 绝不允许懒计算，读到的缓存值永远等于对当前输入现算的结果。
type CourseSeries struct {
	ID          int64
	Title       string
	Description string

	TotalSessions   int
	DurationMinutes int
	// BasePricePerSession 为税抜单次价，日元整数
	BasePricePerSession int64
	PricingPatternID    int64

	// EarlyBirdDeadline 是系列级别的显式早鸟截止日，可选。
	// 优先级低于招生期上的截止日，高于模板推导的默认值。
	EarlyBirdDeadline *time.Time

	Derived DerivedPrices

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate 校验运营输入。回数下限是 2：单回商品不构成"系列"。
func (s *CourseSeries) Validate() error {
	if s.TotalSessions < 2 {
		return ErrSeriesTooFewSessions
	}
	if s.BasePricePerSession < 0 {
		return ErrInvalidBasePrice
	}
	if s.PricingPatternID == 0 {
		return ErrNilPattern
	}
	return nil
}

// Recalculate 用当前输入和给定模板重算全部派生价格。
// 系列或模板的任何一次写入之后都必须调用，再把结果持久化。
func (s *CourseSeries) Recalculate(pattern *PricingPattern) error {
	derived, err := Compute(s.BasePricePerSession, s.TotalSessions, pattern)
	if err != nil {
		return err
	}
	s.Derived = derived
	return nil
}
