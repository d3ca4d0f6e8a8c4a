// internal/service/catalog/application/dto.go
package application

import (
	"time"

	"manabi/internal/service/catalog/domain"
)

// SavePatternRequest 是创建/更新价格模板的请求体。
type SavePatternRequest struct {
	ID                    int64   `json:"id,omitempty"`
	Name                  string  `json:"name"`
	Description           string  `json:"description"`
	CourseDiscountRate    float64 `json:"course_discount_rate"`
	EarlyBirdDiscountRate float64 `json:"early_bird_discount_rate"`
	EarlyBirdDays         int     `json:"early_bird_days"`
	HasMonthlyOption      bool    `json:"has_monthly_option"`
	TaxRate               float64 `json:"tax_rate"`
	EligibilityRule       string  `json:"eligibility_rule,omitempty"`
}

// SaveSeriesRequest 是创建/更新课程系列的请求体。
// 注意这里只有原始输入，calc_* 派生字段不接受外部写入。
type SaveSeriesRequest struct {
	ID                  int64      `json:"id,omitempty"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	TotalSessions       int        `json:"total_sessions"`
	DurationMinutes     int        `json:"duration_minutes"`
	BasePricePerSession int64      `json:"base_price_per_session"`
	PricingPatternID    int64      `json:"pricing_pattern_id"`
	EarlyBirdDeadline   *time.Time `json:"early_bird_deadline,omitempty"`
}

// SaveTermRequest 是创建/更新招生期的请求体。
type SaveTermRequest struct {
	ID                int64      `json:"id,omitempty"`
	SeriesID          int64      `json:"series_id"`
	Name              string     `json:"name"`
	StartDate         time.Time  `json:"start_date"`
	EndDate           time.Time  `json:"end_date"`
	EarlyBirdDeadline *time.Time `json:"early_bird_deadline,omitempty"`
	Status            string     `json:"status"`
}

// SeriesResponse 把系列连同最新派生价格返回给管理后台。
type SeriesResponse struct {
	ID                  int64      `json:"id"`
	Title               string     `json:"title"`
	TotalSessions       int        `json:"total_sessions"`
	BasePricePerSession int64      `json:"base_price_per_session"`
	PricingPatternID    int64      `json:"pricing_pattern_id"`
	EarlyBirdDeadline   *time.Time `json:"early_bird_deadline,omitempty"`

	CalcSinglePriceIncl  int64 `json:"calc_single_price_incl"`
	CalcSingleTotalIncl  int64 `json:"calc_single_total_incl"`
	CalcCoursePriceIncl  int64 `json:"calc_course_price_incl"`
	CalcEarlyPriceIncl   int64 `json:"calc_early_price_incl"`
	CalcMonthlyPriceIncl int64 `json:"calc_monthly_price_incl"`
	CalcSavingsCourse    int64 `json:"calc_savings_course"`
	CalcSavingsEarly     int64 `json:"calc_savings_early"`
}

// NewSeriesResponse 从领域对象组装响应。
func NewSeriesResponse(s *domain.CourseSeries) *SeriesResponse {
	return &SeriesResponse{
		ID:                   s.ID,
		Title:                s.Title,
		TotalSessions:        s.TotalSessions,
		BasePricePerSession:  s.BasePricePerSession,
		PricingPatternID:     s.PricingPatternID,
		EarlyBirdDeadline:    s.EarlyBirdDeadline,
		CalcSinglePriceIncl:  s.Derived.SingleIncl,
		CalcSingleTotalIncl:  s.Derived.SingleTotalIncl,
		CalcCoursePriceIncl:  s.Derived.CourseIncl,
		CalcEarlyPriceIncl:   s.Derived.EarlyIncl,
		CalcMonthlyPriceIncl: s.Derived.MonthlyIncl,
		CalcSavingsCourse:    s.Derived.SavingsCourse,
		CalcSavingsEarly:     s.Derived.SavingsEarly,
	}
}

// QuoteRequest 是报价请求：针对某系列（可指定某一期）在某时点取适用档位。
type QuoteRequest struct {
	SeriesID int64     `json:"series_id"`
	TermID   int64     `json:"term_id,omitempty"` // 0 表示由服务端挑选当前在售的期
	Member   bool      `json:"member"`
	Now      time.Time `json:"-"` // 评估时点；零值表示当前时间
}

// QuoteResponse 是报价结果。
// Tier 为 SINGLE 时表示整期报名路径不可用（无招生期或规则不适用），
// 调用方应回退到按单次售卖。
type QuoteResponse struct {
	SeriesID    int64            `json:"series_id"`
	TermID      int64            `json:"term_id,omitempty"`
	Tier        domain.PriceTier `json:"tier"`
	PriceIncl   int64            `json:"price_incl"`
	SingleIncl  int64            `json:"single_incl"`
	MonthlyIncl int64            `json:"monthly_incl,omitempty"`
	SavingsIncl int64            `json:"savings_incl"`
	Deadline    *time.Time       `json:"early_bird_deadline,omitempty"`
	Reason      string           `json:"reason,omitempty"`
}
