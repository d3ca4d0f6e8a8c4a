// internal/service/catalog/infrastructure/mapper.go
package infrastructure

import (
	"manabi/internal/service/catalog/domain"
)

// toDomainPattern 将数据库模型转换为领域模型。
func toDomainPattern(model *PricingPatternModel) *domain.PricingPattern {
	if model == nil {
		return nil
	}
	return &domain.PricingPattern{
		ID:                    model.ID,
		Name:                  model.Name,
		Description:           model.Description,
		CourseDiscountRate:    model.CourseDiscountRate,
		EarlyBirdDiscountRate: model.EarlyBirdDiscountRate,
		EarlyBirdDays:         model.EarlyBirdDays,
		HasMonthlyOption:      model.HasMonthlyOption,
		TaxRate:               model.TaxRate,
		EligibilityRule:       model.EligibilityRule,
		CreatedAt:             model.CreatedAt,
		UpdatedAt:             model.UpdatedAt,
	}
}

func fromDomainPattern(p *domain.PricingPattern) *PricingPatternModel {
	return &PricingPatternModel{
		ID:                    p.ID,
		Name:                  p.Name,
		Description:           p.Description,
		CourseDiscountRate:    p.CourseDiscountRate,
		EarlyBirdDiscountRate: p.EarlyBirdDiscountRate,
		EarlyBirdDays:         p.EarlyBirdDays,
		HasMonthlyOption:      p.HasMonthlyOption,
		TaxRate:               p.TaxRate,
		EligibilityRule:       p.EligibilityRule,
	}
}

func toDomainSeries(model *CourseSeriesModel) *domain.CourseSeries {
	if model == nil {
		return nil
	}
	return &domain.CourseSeries{
		ID:                  model.ID,
		Title:               model.Title,
		Description:         model.Description,
		TotalSessions:       model.TotalSessions,
		DurationMinutes:     model.DurationMinutes,
		BasePricePerSession: model.BasePricePerSession,
		PricingPatternID:    model.PricingPatternID,
		EarlyBirdDeadline:   model.EarlyBirdDeadline,
		Derived: domain.DerivedPrices{
			SingleIncl:      model.CalcSinglePriceIncl,
			SingleTotalIncl: model.CalcSingleTotalIncl,
			CourseIncl:      model.CalcCoursePriceIncl,
			EarlyIncl:       model.CalcEarlyPriceIncl,
			MonthlyIncl:     model.CalcMonthlyPriceIncl,
			SavingsCourse:   model.CalcSavingsCourse,
			SavingsEarly:    model.CalcSavingsEarly,
		},
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func fromDomainSeries(s *domain.CourseSeries) *CourseSeriesModel {
	return &CourseSeriesModel{
		ID:                   s.ID,
		Title:                s.Title,
		Description:          s.Description,
		TotalSessions:        s.TotalSessions,
		DurationMinutes:      s.DurationMinutes,
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

func toDomainTerm(model *CourseTermModel) *domain.CourseTerm {
	if model == nil {
		return nil
	}
	return &domain.CourseTerm{
		ID:                model.ID,
		SeriesID:          model.SeriesID,
		Name:              model.Name,
		StartDate:         model.StartDate,
		EndDate:           model.EndDate,
		EarlyBirdDeadline: model.EarlyBirdDeadline,
		Status:            domain.TermStatus(model.Status),
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}

func fromDomainTerm(t *domain.CourseTerm) *CourseTermModel {
	return &CourseTermModel{
		ID:                t.ID,
		SeriesID:          t.SeriesID,
		Name:              t.Name,
		StartDate:         t.StartDate,
		EndDate:           t.EndDate,
		EarlyBirdDeadline: t.EarlyBirdDeadline,
		Status:            string(t.Status),
	}
}
