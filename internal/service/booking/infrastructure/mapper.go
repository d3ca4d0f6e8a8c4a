// internal/service/booking/infrastructure/mapper.go
package infrastructure

import (
	"manabi/internal/service/booking/domain"
)

func toDomainSession(m *ClassSessionModel) *domain.ClassSession {
	return &domain.ClassSession{
		ID:        m.ID,
		SeriesID:  m.SeriesID,
		Name:      m.Name,
		StartsAt:  m.StartsAt,
		Capacity:  m.Capacity,
		Enrolled:  m.Enrolled,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromDomainSession(s *domain.ClassSession) *ClassSessionModel {
	return &ClassSessionModel{
		ID:        s.ID,
		SeriesID:  s.SeriesID,
		Name:      s.Name,
		StartsAt:  s.StartsAt,
		Capacity:  s.Capacity,
		Enrolled:  s.Enrolled,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toDomainEnrollment(m *EnrollmentModel) *domain.Enrollment {
	return &domain.Enrollment{
		ID:        m.ID,
		UserID:    m.UserID,
		SessionID: m.SessionID,
		SeriesID:  m.SeriesID,
		TermID:    m.TermID,
		Kind:      domain.EnrollmentKind(m.Kind),
		Member:    m.Member,
		PriceTier: m.PriceTier,
		PriceIncl: m.PriceIncl,
		State:     domain.State(m.State),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromDomainEnrollment(e *domain.Enrollment) *EnrollmentModel {
	return &EnrollmentModel{
		ID:        e.ID,
		UserID:    e.UserID,
		SessionID: e.SessionID,
		SeriesID:  e.SeriesID,
		TermID:    e.TermID,
		Kind:      string(e.Kind),
		Member:    e.Member,
		PriceTier: e.PriceTier,
		PriceIncl: e.PriceIncl,
		State:     string(e.State),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
