package repository

import (
	"context"

	"gorm.io/gorm"

	"edumark/backend/internal/model"
)

// SyllabusRepository 教学大纲数据访问接口
type SyllabusRepository interface {
	Create(ctx context.Context, syllabus *model.Syllabus) error
	GetByID(ctx context.Context, id string) (*model.Syllabus, error)
	Update(ctx context.Context, syllabus *model.Syllabus) error
	Delete(ctx context.Context, id string, deletedBy string) error
	List(ctx context.Context, subjectID, academicYear string, offset, limit int) ([]model.Syllabus, int64, error)
}

type syllabusRepo struct {
	db *gorm.DB
}

// NewSyllabusRepo 创建 SyllabusRepository 实例
func NewSyllabusRepo(db *gorm.DB) SyllabusRepository {
	return &syllabusRepo{db: db}
}

func (r *syllabusRepo) Create(ctx context.Context, syllabus *model.Syllabus) error {
	return r.db.WithContext(ctx).Create(syllabus).Error
}

func (r *syllabusRepo) GetByID(ctx context.Context, id string) (*model.Syllabus, error) {
	var syllabus model.Syllabus
	err := r.db.WithContext(ctx).
		Where("syllabus_id = ?", id).
		First(&syllabus).Error
	if err != nil {
		return nil, err
	}
	return &syllabus, nil
}

func (r *syllabusRepo) Update(ctx context.Context, syllabus *model.Syllabus) error {
	return r.db.WithContext(ctx).Save(syllabus).Error
}

func (r *syllabusRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Syllabus{}).
		Where("syllabus_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *syllabusRepo) List(ctx context.Context, subjectID, academicYear string, offset, limit int) ([]model.Syllabus, int64, error) {
	var syllabi []model.Syllabus
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Syllabus{})
	if subjectID != "" {
		db = db.Where("subject_id = ?", subjectID)
	}
	if academicYear != "" {
		db = db.Where("academic_year = ?", academicYear)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&syllabi).Error; err != nil {
		return nil, 0, err
	}

	return syllabi, total, nil
}
