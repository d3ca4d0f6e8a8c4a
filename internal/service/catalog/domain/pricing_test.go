// internal/service/catalog/domain/pricing_test.go
package domain

import "testing"

func standardPattern() *PricingPattern {
	return &PricingPattern{
		ID:                    1,
		Name:                  "标准整期模板",
		CourseDiscountRate:    0.10,
		EarlyBirdDiscountRate: 0.17,
		EarlyBirdDays:         14,
		HasMonthlyOption:      true,
		TaxRate:               0.10,
	}
}

func TestCompute_StandardScenario(t *testing.T) {
	// 单次 8000 円 × 6 回、整期 -10%、早鸟 -17%、税率 10%
	derived, err := Compute(8000, 6, standardPattern())
	if err != nil {
		t.Fatalf("计算失败: %v", err)
	}

	cases := []struct {
		name string
		got  int64
		want int64
	}{
		{"单次含税价", derived.SingleIncl, 8800},
		{"单次合计含税价", derived.SingleTotalIncl, 52800},
		{"整期含税价", derived.CourseIncl, 47520},
		{"早鸟含税价", derived.EarlyIncl, 43824},
		{"月额含税价", derived.MonthlyIncl, 7920},
		{"整期节省额", derived.SavingsCourse, 5280},
		{"早鸟节省额", derived.SavingsEarly, 8976},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("%s: 期望 %d, 实际 %d", c.name, c.want, c.got)
		}
	}
}

func TestCompute_Deterministic(t *testing.T) {
	pattern := standardPattern()
	first, err := Compute(8000, 6, pattern)
	if err != nil {
		t.Fatalf("计算失败: %v", err)
	}
	second, err := Compute(8000, 6, pattern)
	if err != nil {
		t.Fatalf("计算失败: %v", err)
	}
	if first != second {
		t.Errorf("相同输入两次计算结果不一致: %+v != %+v", first, second)
	}
}

func TestCompute_RoundHalfUp(t *testing.T) {
	// 3333 × 3 = 9999；整期 -10% -> 8999.1 -> 8999；含税 ×1.1 -> 9898.9 -> 9899
	pattern := &PricingPattern{
		CourseDiscountRate:    0.10,
		EarlyBirdDiscountRate: 0.10,
		EarlyBirdDays:         7,
		TaxRate:               0.10,
	}
	derived, err := Compute(3333, 3, pattern)
	if err != nil {
		t.Fatalf("计算失败: %v", err)
	}
	if derived.CourseIncl != 9899 {
		t.Errorf("整期含税价舍入错误: 期望 9899, 实际 %d", derived.CourseIncl)
	}
}

func TestCompute_NoMonthlyOption(t *testing.T) {
	pattern := standardPattern()
	pattern.HasMonthlyOption = false
	derived, err := Compute(8000, 6, pattern)
	if err != nil {
		t.Fatalf("计算失败: %v", err)
	}
	if derived.MonthlyIncl != 0 {
		t.Errorf("未开启分期的模板月额价应为 0, 实际 %d", derived.MonthlyIncl)
	}
}

func TestCompute_ZeroRates(t *testing.T) {
	// 零折扣零税率：所有档位都等于原价
	pattern := &PricingPattern{EarlyBirdDays: 7}
	derived, err := Compute(5000, 4, pattern)
	if err != nil {
		t.Fatalf("计算失败: %v", err)
	}
	if derived.CourseIncl != 20000 || derived.EarlyIncl != 20000 || derived.SingleTotalIncl != 20000 {
		t.Errorf("零折扣零税率下各档位应等于原价: %+v", derived)
	}
	if derived.SavingsCourse != 0 || derived.SavingsEarly != 0 {
		t.Errorf("零折扣下节省额应为 0: %+v", derived)
	}
}

func TestCompute_TierOrdering(t *testing.T) {
	// 早鸟折扣率 ≥ 整期折扣率的前提下，早鸟价 ≤ 整期价 ≤ 单次合计
	derived, err := Compute(8000, 6, standardPattern())
	if err != nil {
		t.Fatalf("计算失败: %v", err)
	}
	if derived.EarlyIncl > derived.CourseIncl {
		t.Errorf("早鸟价 %d 不应高于整期价 %d", derived.EarlyIncl, derived.CourseIncl)
	}
	if derived.CourseIncl > derived.SingleTotalIncl {
		t.Errorf("整期价 %d 不应高于单次合计 %d", derived.CourseIncl, derived.SingleTotalIncl)
	}
}

func TestCompute_MonotonicInBasePrice(t *testing.T) {
	// 单价上调后任何档位都不应变便宜
	pattern := standardPattern()
	basePrices := []int64{0, 1, 99, 100, 3333, 7999, 8000, 8001, 12000, 100000}

	var prev DerivedPrices
	for i, base := range basePrices {
		derived, err := Compute(base, 6, pattern)
		if err != nil {
			t.Fatalf("单价 %d 计算失败: %v", base, err)
		}
		if i > 0 {
			fields := []struct {
				name string
				prev int64
				cur  int64
			}{
				{"单次含税价", prev.SingleIncl, derived.SingleIncl},
				{"单次合计含税价", prev.SingleTotalIncl, derived.SingleTotalIncl},
				{"整期含税价", prev.CourseIncl, derived.CourseIncl},
				{"早鸟含税价", prev.EarlyIncl, derived.EarlyIncl},
				{"月额含税价", prev.MonthlyIncl, derived.MonthlyIncl},
				{"整期节省额", prev.SavingsCourse, derived.SavingsCourse},
				{"早鸟节省额", prev.SavingsEarly, derived.SavingsEarly},
			}
			for _, f := range fields {
				if f.cur < f.prev {
					t.Errorf("单价从 %d 涨到 %d 后 %s 反而下降: %d -> %d",
						basePrices[i-1], base, f.name, f.prev, f.cur)
				}
			}
		}
		prev = derived
	}
}

func TestCompute_TaxInvariant(t *testing.T) {
	// 每个含税档位都必须等于对应税抜金额独立换算的结果，且不低于税抜金额
	pattern := standardPattern()
	basePrices := []int64{0, 1, 777, 3333, 8000, 99999}

	for _, base := range basePrices {
		derived, err := Compute(base, 6, pattern)
		if err != nil {
			t.Fatalf("单价 %d 计算失败: %v", base, err)
		}

		// 按文档化的推导步骤还原各档位的税抜金额
		singleTotal := base * 6
		coursePrice := roundHalfUp(float64(singleTotal) * (1 - pattern.CourseDiscountRate))
		earlyPrice := roundHalfUp(float64(singleTotal) * (1 - pattern.EarlyBirdDiscountRate))
		monthlyPrice := roundHalfUp(float64(coursePrice) / 6)

		cases := []struct {
			name string
			excl int64
			incl int64
		}{
			{"单次含税价", base, derived.SingleIncl},
			{"单次合计含税价", singleTotal, derived.SingleTotalIncl},
			{"整期含税价", coursePrice, derived.CourseIncl},
			{"早鸟含税价", earlyPrice, derived.EarlyIncl},
			{"月额含税价", monthlyPrice, derived.MonthlyIncl},
		}
		for _, c := range cases {
			want := roundHalfUp(float64(c.excl) * (1 + pattern.TaxRate))
			if c.incl != want {
				t.Errorf("单价 %d: %s 应为 round(%d × 1.1) = %d, 实际 %d",
					base, c.name, c.excl, want, c.incl)
			}
			if c.incl < c.excl {
				t.Errorf("单价 %d: %s %d 低于税抜金额 %d", base, c.name, c.incl, c.excl)
			}
		}
	}
}

func TestCompute_InvalidInputs(t *testing.T) {
	pattern := standardPattern()

	if _, err := Compute(8000, 6, nil); err != ErrNilPattern {
		t.Errorf("空模板应返回 ErrNilPattern, 实际 %v", err)
	}
	if _, err := Compute(8000, 0, pattern); err != ErrInvalidSessionCount {
		t.Errorf("回数为 0 应返回 ErrInvalidSessionCount, 实际 %v", err)
	}
	if _, err := Compute(-1, 6, pattern); err != ErrInvalidBasePrice {
		t.Errorf("负单价应返回 ErrInvalidBasePrice, 实际 %v", err)
	}
}

func TestCompute_FreeCourse(t *testing.T) {
	derived, err := Compute(0, 6, standardPattern())
	if err != nil {
		t.Fatalf("单价为 0 应可计算: %v", err)
	}
	if derived.SingleTotalIncl != 0 || derived.CourseIncl != 0 {
		t.Errorf("免费课程所有档位应为 0: %+v", derived)
	}
}

func TestPricingPattern_Validate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(p *PricingPattern)
		wantErr error
	}{
		{"合法模板", func(p *PricingPattern) {}, nil},
		{"整期折扣超上限", func(p *PricingPattern) { p.CourseDiscountRate = 0.51; p.EarlyBirdDiscountRate = 0.51 }, ErrRateOutOfRange},
		{"整期折扣为负", func(p *PricingPattern) { p.CourseDiscountRate = -0.01 }, ErrRateOutOfRange},
		{"税率超上限", func(p *PricingPattern) { p.TaxRate = 0.21 }, ErrRateOutOfRange},
		{"早鸟天数为 0", func(p *PricingPattern) { p.EarlyBirdDays = 0 }, ErrEarlyBirdDaysInvalid},
		{"早鸟折扣低于整期折扣", func(p *PricingPattern) { p.EarlyBirdDiscountRate = 0.05 }, ErrEarlyBirdBelowCourse},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := standardPattern()
			c.mutate(p)
			if err := p.Validate(); err != c.wantErr {
				t.Errorf("期望 %v, 实际 %v", c.wantErr, err)
			}
		})
	}
}
