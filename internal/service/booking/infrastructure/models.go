// internal/service/booking/infrastructure/models.go
package infrastructure

import (
	"time"

	"gorm.io/gorm"
)

// ClassSessionModel 是课堂会话的数据库模型。
type ClassSessionModel struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	SeriesID *int64 `gorm:"index"`
	Name     string `gorm:"size:255;not null"`
	StartsAt time.Time

	Capacity int `gorm:"not null"`
	Enrolled int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (ClassSessionModel) TableName() string {
	return "class_sessions"
}

// EnrollmentModel 是报名单的数据库模型。
type EnrollmentModel struct {
	ID        string `gorm:"primaryKey;size:64"`
	UserID    string `gorm:"size:64;index;not null"`
	SessionID int64  `gorm:"index;not null"`
	SeriesID  int64
	TermID    int64
	Kind      string `gorm:"size:16;not null"`
	Member    bool

	PriceTier string `gorm:"size:16"`
	PriceIncl int64

	State     string `gorm:"size:32;index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (EnrollmentModel) TableName() string {
	return "enrollments"
}
