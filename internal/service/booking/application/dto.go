// internal/service/booking/application/dto.go
package application

import (
	"time"

	"manabi/internal/service/booking/domain"
)

// EnrollRequest 是报名接口的入参。
type EnrollRequest struct {
	UserID    string                `json:"user_id"`
	SessionID int64                 `json:"session_id"`
	SeriesID  int64                 `json:"series_id,omitempty"`
	TermID    int64                 `json:"term_id,omitempty"`
	Kind      domain.EnrollmentKind `json:"kind"`
	Member    bool                  `json:"member"`
}

// EnrollResponse 返回已入队的报名请求标识，结果异步可查。
type EnrollResponse struct {
	EnrollmentID string `json:"enrollment_id"`
	Status       string `json:"status"`
}

// EnrollmentResponse 是报名单的查询视图。
type EnrollmentResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	SessionID int64     `json:"session_id"`
	SeriesID  int64     `json:"series_id,omitempty"`
	TermID    int64     `json:"term_id,omitempty"`
	Kind      string    `json:"kind"`
	PriceTier string    `json:"price_tier,omitempty"`
	PriceIncl int64     `json:"price_incl,omitempty"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveSessionRequest 创建/更新课堂会话。
type SaveSessionRequest struct {
	ID       int64     `json:"id,omitempty"`
	SeriesID *int64    `json:"series_id,omitempty"`
	Name     string    `json:"name"`
	StartsAt time.Time `json:"starts_at"`
	Capacity int       `json:"capacity"`
}

// ResizeCapacityRequest 调整某个会话的容量。
type ResizeCapacityRequest struct {
	SessionID int64 `json:"session_id"`
	Capacity  int   `json:"capacity"`
}

// AvailabilityResponse 是会话余位的查询视图。
type AvailabilityResponse struct {
	SessionID int64 `json:"session_id"`
	Capacity  int   `json:"capacity"`
	Enrolled  int   `json:"enrolled"`
	Remaining int   `json:"remaining"`
	Full      bool  `json:"full"`
}

func NewEnrollmentResponse(e *domain.Enrollment) *EnrollmentResponse {
	return &EnrollmentResponse{
		ID:        e.ID,
		UserID:    e.UserID,
		SessionID: e.SessionID,
		SeriesID:  e.SeriesID,
		TermID:    e.TermID,
		Kind:      string(e.Kind),
		PriceTier: e.PriceTier,
		PriceIncl: e.PriceIncl,
		State:     string(e.State),
		CreatedAt: e.CreatedAt,
	}
}

func NewAvailabilityResponse(s *domain.ClassSession) *AvailabilityResponse {
	return &AvailabilityResponse{
		SessionID: s.ID,
		Capacity:  s.Capacity,
		Enrolled:  s.Enrolled,
		Remaining: s.Remaining(),
		Full:      s.IsFull(),
	}
}
