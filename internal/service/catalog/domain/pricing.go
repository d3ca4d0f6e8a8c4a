// internal/service/catalog/domain/pricing.go
package domain

import "math"

// DerivedPrices 是 PriceCalculator 的输出：四档售价与两个差额。
// 除注明外全部为含税日元整数。
type DerivedPrices struct {
	SingleIncl      int64 // 单次价（含税）
	SingleTotalIncl int64 // 单次价 × 回数 的合计（含税）
	CourseIncl      int64 // 整期一括价（含税）
	EarlyIncl       int64 // 早鸟价（含税）
	MonthlyIncl     int64 // 月额分期价（含税）；模板未开启分期时为 0
	SavingsCourse   int64 // 整期价相对单次合计省下的金额（按含税口径）
	SavingsEarly    int64 // 早鸟价相对单次合计省下的金额（按含税口径）
}

// Compute 是唯一权威的价格推导实现：给定单次税抜价、回数和价格模板，
// 推导全部售价档位。纯函数，无副作用，由调用方把结果持久化到系列的
// calc_* 字段。前端的实时预览只是展示用途，保存时必须以这里的结果为准。
//
// 全程整数日元，每一步独立四舍五入（商业习惯的円位丸め）：
//  1. singleTotal = base × n（税抜）
//  2. coursePrice = round(singleTotal × (1 − 整期折扣率))
//  3. earlyPrice  = round(singleTotal × (1 − 早鸟折扣率))
//  4. monthly     = round(coursePrice ÷ n)，基于折后价而非原价
//  5. 每个税抜金额独立换算含税：round(x × (1 + 税率))
//  6. 差额按含税口径计算，因为那才是用户页面上看到的对比
//
// monthly × n 与整期含税价可能相差几円：第 4 步的舍入发生在计税之前，
// 属于已被业务接受的偏差，这里不做对账。
func Compute(basePricePerSession int64, totalSessions int, pattern *PricingPattern) (DerivedPrices, error) {
	if pattern == nil {
		return DerivedPrices{}, ErrNilPattern
	}
	if totalSessions < 1 {
		return DerivedPrices{}, ErrInvalidSessionCount
	}
	if basePricePerSession < 0 {
		return DerivedPrices{}, ErrInvalidBasePrice
	}

	singleTotal := basePricePerSession * int64(totalSessions)
	coursePrice := roundHalfUp(float64(singleTotal) * (1 - pattern.CourseDiscountRate))
	earlyPrice := roundHalfUp(float64(singleTotal) * (1 - pattern.EarlyBirdDiscountRate))

	var monthlyPrice int64
	if pattern.HasMonthlyOption {
		monthlyPrice = roundHalfUp(float64(coursePrice) / float64(totalSessions))
	}

	taxIncl := func(x int64) int64 {
		return roundHalfUp(float64(x) * (1 + pattern.TaxRate))
	}

	derived := DerivedPrices{
		SingleIncl:      taxIncl(basePricePerSession),
		SingleTotalIncl: taxIncl(singleTotal),
		CourseIncl:      taxIncl(coursePrice),
		EarlyIncl:       taxIncl(earlyPrice),
	}
	if pattern.HasMonthlyOption {
		derived.MonthlyIncl = taxIncl(monthlyPrice)
	}
	derived.SavingsCourse = derived.SingleTotalIncl - derived.CourseIncl
	derived.SavingsEarly = derived.SingleTotalIncl - derived.EarlyIncl

	return derived, nil
}

// roundHalfUp 对非负金额做四舍五入取整。
func roundHalfUp(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}
