// internal/service/catalog/domain/earlybird.go
package domain

import "time"

// PriceTier 是报价结果落在的档位。
type PriceTier string

const (
	TierSingle PriceTier = "SINGLE" // 单次价；永远不享受早鸟折扣
	TierCourse PriceTier = "COURSE" // 整期一括价
	TierEarly  PriceTier = "EARLY"  // 早鸟价
)

// EffectiveDeadline 解析对某一期实际生效的早鸟截止日。
// 优先级自上而下，先命中者生效：
//  1. 招生期上的显式截止日
//  2. 所属系列上的显式截止日
//  3. 开课日倒推模板的 EarlyBirdDays 个自然日
func EffectiveDeadline(term *CourseTerm, series *CourseSeries, pattern *PricingPattern) time.Time {
	if term.EarlyBirdDeadline != nil {
		return dateOf(*term.EarlyBirdDeadline)
	}
	if series.EarlyBirdDeadline != nil {
		return dateOf(*series.EarlyBirdDeadline)
	}
	return dateOf(term.StartDate).AddDate(0, 0, -pattern.EarlyBirdDays)
}

// IsEarlyBird 判断 now 这个时点是否还在早鸟期内。
// 比较以日为粒度：截止日当天仍算早鸟，次日起失效。
// 跨越截止日午夜的两次判定会给出不同结果，这是预期行为。
func IsEarlyBird(now time.Time, deadline time.Time) bool {
	return !dateOf(now).After(dateOf(deadline))
}

// ResolveTier 决定某一期在 now 时点的整期报名适用档位与含税价格。
// 单次购买不经过这里——它固定走 TierSingle，与早鸟无关。
func ResolveTier(series *CourseSeries, term *CourseTerm, pattern *PricingPattern, now time.Time) (PriceTier, int64) {
	deadline := EffectiveDeadline(term, series, pattern)
	if IsEarlyBird(now, deadline) {
		return TierEarly, series.Derived.EarlyIncl
	}
	return TierCourse, series.Derived.CourseIncl
}
