// internal/service/booking/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"manabi/internal/service/booking/domain"
)

// GormEnrollmentRepository 是 EnrollmentRepository 的 GORM 实现。
type GormEnrollmentRepository struct {
	db *gorm.DB
}

func NewGormEnrollmentRepository(db *gorm.DB) *GormEnrollmentRepository {
	return &GormEnrollmentRepository{db: db}
}

func (r *GormEnrollmentRepository) Save(ctx context.Context, enrollment *domain.Enrollment) error {
	model := fromDomainEnrollment(enrollment)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return errors.Wrap(err, "save enrollment")
	}
	return nil
}

func (r *GormEnrollmentRepository) FindByID(ctx context.Context, id string) (*domain.Enrollment, error) {
	var model EnrollmentModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEnrollmentNotFound
		}
		return nil, errors.Wrap(err, "find enrollment")
	}
	return toDomainEnrollment(&model), nil
}

func (r *GormEnrollmentRepository) UpdateState(ctx context.Context, id string, state domain.State) error {
	result := r.db.WithContext(ctx).Model(&EnrollmentModel{}).
		Where("id = ?", id).
		Update("state", string(state))
	if result.Error != nil {
		return errors.Wrap(result.Error, "update enrollment state")
	}
	if result.RowsAffected == 0 {
		return domain.ErrEnrollmentNotFound
	}
	return nil
}

// GormSessionRepository 是 SessionRepository 的 GORM 实现。
type GormSessionRepository struct {
	db *gorm.DB
}

func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

func (r *GormSessionRepository) Save(ctx context.Context, session *domain.ClassSession) error {
	model := fromDomainSession(session)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return errors.Wrap(err, "save class session")
	}
	session.ID = model.ID
	return nil
}

func (r *GormSessionRepository) FindByID(ctx context.Context, id int64) (*domain.ClassSession, error) {
	var model ClassSessionModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, errors.Wrap(err, "find class session")
	}
	return toDomainSession(&model), nil
}

func (r *GormSessionRepository) UpdateCapacity(ctx context.Context, id int64, capacity int) error {
	result := r.db.WithContext(ctx).Model(&ClassSessionModel{}).
		Where("id = ?", id).
		Update("capacity", capacity)
	if result.Error != nil {
		return errors.Wrap(result.Error, "update session capacity")
	}
	if result.RowsAffected == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}
