// internal/service/catalog/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"manabi/internal/service/catalog/domain"
)

// GormPatternRepository 是 PatternRepository 的 GORM 实现。
type GormPatternRepository struct {
	db *gorm.DB
}

func NewGormPatternRepository(db *gorm.DB) *GormPatternRepository {
	return &GormPatternRepository{db: db}
}

func (r *GormPatternRepository) Save(ctx context.Context, pattern *domain.PricingPattern) error {
	model := fromDomainPattern(pattern)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return err
	}
	pattern.ID = model.ID
	return nil
}

func (r *GormPatternRepository) FindByID(ctx context.Context, id int64) (*domain.PricingPattern, error) {
	var model PricingPatternModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPatternNotFound
		}
		return nil, err
	}
	return toDomainPattern(&model), nil
}

func (r *GormPatternRepository) FindAll(ctx context.Context) ([]*domain.PricingPattern, error) {
	var models []*PricingPatternModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	patterns := make([]*domain.PricingPattern, len(models))
	for i, m := range models {
		patterns[i] = toDomainPattern(m)
	}
	return patterns, nil
}

func (r *GormPatternRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&PricingPatternModel{}, id).Error
}

// GormSeriesRepository 是 SeriesRepository 的 GORM 实现。
type GormSeriesRepository struct {
	db *gorm.DB
}

func NewGormSeriesRepository(db *gorm.DB) *GormSeriesRepository {
	return &GormSeriesRepository{db: db}
}

func (r *GormSeriesRepository) Save(ctx context.Context, series *domain.CourseSeries) error {
	model := fromDomainSeries(series)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return err
	}
	series.ID = model.ID
	return nil
}

func (r *GormSeriesRepository) FindByID(ctx context.Context, id int64) (*domain.CourseSeries, error) {
	var model CourseSeriesModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSeriesNotFound
		}
		return nil, err
	}
	return toDomainSeries(&model), nil
}

func (r *GormSeriesRepository) FindByPatternID(ctx context.Context, patternID int64) ([]*domain.CourseSeries, error) {
	var models []*CourseSeriesModel
	if err := r.db.WithContext(ctx).Where("pricing_pattern_id = ?", patternID).Find(&models).Error; err != nil {
		return nil, err
	}
	series := make([]*domain.CourseSeries, len(models))
	for i, m := range models {
		series[i] = toDomainSeries(m)
	}
	return series, nil
}

func (r *GormSeriesRepository) CountByPatternID(ctx context.Context, patternID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&CourseSeriesModel{}).
		Where("pricing_pattern_id = ?", patternID).Count(&count).Error
	return count, err
}

func (r *GormSeriesRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&CourseSeriesModel{}, id).Error
}

// UnlinkSessions 把课堂会话与系列解除关联。会话表归 booking 服务写入，
// 这里只做一次置空更新，不删除任何会话记录。
func (r *GormSeriesRepository) UnlinkSessions(ctx context.Context, seriesID int64) error {
	return r.db.WithContext(ctx).
		Exec("UPDATE class_sessions SET series_id = NULL WHERE series_id = ?", seriesID).Error
}

// GormTermRepository 是 TermRepository 的 GORM 实现。
type GormTermRepository struct {
	db *gorm.DB
}

func NewGormTermRepository(db *gorm.DB) *GormTermRepository {
	return &GormTermRepository{db: db}
}

func (r *GormTermRepository) Save(ctx context.Context, term *domain.CourseTerm) error {
	model := fromDomainTerm(term)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return err
	}
	term.ID = model.ID
	return nil
}

func (r *GormTermRepository) FindByID(ctx context.Context, id int64) (*domain.CourseTerm, error) {
	var model CourseTermModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTermNotFound
		}
		return nil, err
	}
	return toDomainTerm(&model), nil
}

func (r *GormTermRepository) FindBySeriesID(ctx context.Context, seriesID int64) ([]*domain.CourseTerm, error) {
	var models []*CourseTermModel
	if err := r.db.WithContext(ctx).Where("series_id = ?", seriesID).Order("start_date").Find(&models).Error; err != nil {
		return nil, err
	}
	terms := make([]*domain.CourseTerm, len(models))
	for i, m := range models {
		terms[i] = toDomainTerm(m)
	}
	return terms, nil
}

func (r *GormTermRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&CourseTermModel{}, id).Error
}

func (r *GormTermRepository) DeleteBySeriesID(ctx context.Context, seriesID int64) error {
	return r.db.WithContext(ctx).Where("series_id = ?", seriesID).Delete(&CourseTermModel{}).Error
}
