package repository

import (
	"context"

	"gorm.io/gorm"

	"edumark/backend/internal/model"
)

// ClassRepository 班级数据访问接口
type ClassRepository interface {
	Create(ctx context.Context, class *model.Class) error
	GetByID(ctx context.Context, id string) (*model.Class, error)
	GetByNameAndYear(ctx context.Context, name, academicYear string) (*model.Class, error)
	Update(ctx context.Context, class *model.Class) error
	Delete(ctx context.Context, id string, deletedBy string) error
	List(ctx context.Context, academicYear string, gradeLevel int, keyword string, offset, limit int) ([]model.Class, int64, error)
}

type classRepo struct {
	db *gorm.DB
}

// NewClassRepo 创建 ClassRepository 实例
func NewClassRepo(db *gorm.DB) ClassRepository {
	return &classRepo{db: db}
}

func (r *classRepo) Create(ctx context.Context, class *model.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepo) GetByID(ctx context.Context, id string) (*model.Class, error) {
	var class model.Class
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Where("class_id = ?", id).
		First(&class).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *classRepo) GetByNameAndYear(ctx context.Context, name, academicYear string) (*model.Class, error) {
	var class model.Class
	err := r.db.WithContext(ctx).
		Where("name = ? AND academic_year = ?", name, academicYear).
		First(&class).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *classRepo) Update(ctx context.Context, class *model.Class) error {
	return r.db.WithContext(ctx).Save(class).Error
}

func (r *classRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Class{}).
		Where("class_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *classRepo) List(ctx context.Context, academicYear string, gradeLevel int, keyword string, offset, limit int) ([]model.Class, int64, error) {
	var classes []model.Class
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Class{})
	if academicYear != "" {
		db = db.Where("academic_year = ?", academicYear)
	}
	if gradeLevel > 0 {
		db = db.Where("grade_level = ?", gradeLevel)
	}
	if keyword != "" {
		db = db.Where("name ILIKE ?", "%"+keyword+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Teacher").
		Offset(offset).Limit(limit).
		Order("grade_level ASC, name ASC").
		Find(&classes).Error; err != nil {
		return nil, 0, err
	}

	return classes, total, nil
}
