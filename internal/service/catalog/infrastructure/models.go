// internal/service/catalog/infrastructure/models.go
package infrastructure

import (
	"time"

	"gorm.io/gorm"
)

// PricingPatternModel 对应数据库中的 pricing_patterns 表。
type PricingPatternModel struct {
	ID                    int64 `gorm:"primaryKey"`
	Name                  string
	Description           string
	CourseDiscountRate    float64 `gorm:"type:decimal(4,3)"`
	EarlyBirdDiscountRate float64 `gorm:"type:decimal(4,3)"`
	EarlyBirdDays         int
	HasMonthlyOption      bool
	TaxRate               float64 `gorm:"type:decimal(4,3)"`
	EligibilityRule       string  `gorm:"type:text"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (PricingPatternModel) TableName() string {
	return "pricing_patterns"
}

// CourseSeriesModel 对应 course_series 表。
// calc_* 列是服务端计算结果的缓存，只由目录服务写入。
type CourseSeriesModel struct {
	ID                  int64 `gorm:"primaryKey"`
	Title               string
	Description         string `gorm:"type:text"`
	TotalSessions       int
	DurationMinutes     int
	BasePricePerSession int64
	PricingPatternID    int64 `gorm:"index"`
	EarlyBirdDeadline   *time.Time

	CalcSinglePriceIncl  int64
	CalcSingleTotalIncl  int64
	CalcCoursePriceIncl  int64
	CalcEarlyPriceIncl   int64
	CalcMonthlyPriceIncl int64
	CalcSavingsCourse    int64
	CalcSavingsEarly     int64

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (CourseSeriesModel) TableName() string {
	return "course_series"
}

// CourseTermModel 对应 course_terms 表。
type CourseTermModel struct {
	ID                int64 `gorm:"primaryKey"`
	SeriesID          int64 `gorm:"index"`
	Name              string
	StartDate         time.Time  `gorm:"type:date"`
	EndDate           time.Time  `gorm:"type:date"`
	EarlyBirdDeadline *time.Time `gorm:"type:date"`
	Status            string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (CourseTermModel) TableName() string {
	return "course_terms"
}
