// internal/service/catalog/domain/repository.go
package domain

import "context"

// PatternRepository 定义了价格模板的持久化接口。
// 位于领域层，由基础设施层实现。
type PatternRepository interface {
	Save(ctx context.Context, pattern *PricingPattern) error
	FindByID(ctx context.Context, id int64) (*PricingPattern, error)
	FindAll(ctx context.Context) ([]*PricingPattern, error)
	Delete(ctx context.Context, id int64) error
}

// SeriesRepository 定义了课程系列的持久化接口。
type SeriesRepository interface {
	Save(ctx context.Context, series *CourseSeries) error
	FindByID(ctx context.Context, id int64) (*CourseSeries, error)
	FindByPatternID(ctx context.Context, patternID int64) ([]*CourseSeries, error)
	// CountByPatternID 用于模板删除前的引用检查
	CountByPatternID(ctx context.Context, patternID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
	// UnlinkSessions 把挂在系列下的课堂会话解除关联（不删除会话本身）
	UnlinkSessions(ctx context.Context, seriesID int64) error
}

// TermRepository 定义了招生期的持久化接口。
type TermRepository interface {
	Save(ctx context.Context, term *CourseTerm) error
	FindByID(ctx context.Context, id int64) (*CourseTerm, error)
	FindBySeriesID(ctx context.Context, seriesID int64) ([]*CourseTerm, error)
	Delete(ctx context.Context, id int64) error
	DeleteBySeriesID(ctx context.Context, seriesID int64) error
}
