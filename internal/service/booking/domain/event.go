// internal/service/booking/domain/event.go
package domain

import "time"

// EnrollmentRequested 是用户请求报名时进入队列的事件。
type EnrollmentRequested struct {
	EventID   string         `json:"eventId"`
	TraceID   string         `json:"traceId"`
	UserID    string         `json:"userId"`
	SessionID int64          `json:"sessionId"`
	SeriesID  int64          `json:"seriesId,omitempty"`
	TermID    int64          `json:"termId,omitempty"`
	Kind      EnrollmentKind `json:"kind"`
	Member    bool           `json:"member"`
}

// EnrollmentPlaced 是座位占住、等待支付时发布的通知事件。
// 邮件等触达方式由下游的通知系统消费实现，不在本服务范围内。
type EnrollmentPlaced struct {
	EnrollmentID string    `json:"enrollmentId"`
	UserID       string    `json:"userId"`
	SessionID    int64     `json:"sessionId"`
	SeriesID     int64     `json:"seriesId,omitempty"`
	PriceTier    string    `json:"priceTier"`
	PriceIncl    int64     `json:"priceIncl"`
	PlacedAt     time.Time `json:"placedAt"`
}

// SeatChanged 在每次成功的占座/释放之后发布，
// push-gateway 消费后向店面页面实时推送"剩余 N 席 / 满席"。
type SeatChanged struct {
	SessionID int64     `json:"sessionId"`
	Remaining int       `json:"remaining"`
	Full      bool      `json:"full"`
	At        time.Time `json:"at"`
}

// PaymentTimeoutCheckEvent 是延迟队列到期后投递回来的支付超时检查任务。
// DueAt 之前消费方不应处理该任务。
type PaymentTimeoutCheckEvent struct {
	EnrollmentID string    `json:"enrollmentId"`
	SessionID    int64     `json:"sessionId"`
	UserID       string    `json:"userId"`
	DueAt        time.Time `json:"dueAt"`
}
