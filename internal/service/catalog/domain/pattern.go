// internal/service/catalog/domain/pattern.go
package domain

import "time"

// PricingPattern 是价格规则的核心定义，它是一个可复用的命名模板。
// 一个模板会被多个课程系列引用，模板本身只存"比率"，
// 金额永远由 PriceCalculator 根据引用它的系列现算。
type PricingPattern struct {
	ID          int64
	Name        string
	Description string

	// CourseDiscountRate 是整期购买相对单次价合计的折扣率，取值 [0, 0.5]
	CourseDiscountRate float64
	// EarlyBirdDiscountRate 是早鸟期内购买的折扣率，取值 [0, 0.5]
	EarlyBirdDiscountRate float64
	// EarlyBirdDays 是没有任何显式截止日时，距开课日的默认提前天数
	EarlyBirdDays int
	// HasMonthlyOption 标识该模板下的系列是否提供月额分期价
	HasMonthlyOption bool
	// TaxRate 为消费税率，取值 [0, 0.2]
	TaxRate float64

	// EligibilityRule 是一个可选的 CEL 表达式，在报价时基于报价事实
	// （member, sessions）求值；为 false 时不提供整期/早鸟档位。
	// 空串表示无条件适用。
	EligibilityRule string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate 校验模板的所有比率与天数约束。
// "早鸟折扣不得低于整期折扣"在源业务里只是口头约定，
// 这里收紧为写入期校验，避免运营配出"越早报名越贵"的模板。
func (p *PricingPattern) Validate() error {
	if p.CourseDiscountRate < 0 || p.CourseDiscountRate > 0.5 {
		return ErrRateOutOfRange
	}
	if p.EarlyBirdDiscountRate < 0 || p.EarlyBirdDiscountRate > 0.5 {
		return ErrRateOutOfRange
	}
	if p.TaxRate < 0 || p.TaxRate > 0.2 {
		return ErrRateOutOfRange
	}
	if p.EarlyBirdDays < 1 {
		return ErrEarlyBirdDaysInvalid
	}
	if p.EarlyBirdDiscountRate < p.CourseDiscountRate {
		return ErrEarlyBirdBelowCourse
	}
	return nil
}
