package repository

import (
	"context"

	"gorm.io/gorm"

	"edumark/backend/internal/model"
)

// StudentRepository 学生档案数据访问接口
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id string) (*model.Student, error)
	GetByClassAndRoll(ctx context.Context, classID, rollNumber string) (*model.Student, error)
	Update(ctx context.Context, student *model.Student) error
	Delete(ctx context.Context, id string, deletedBy string) error
	List(ctx context.Context, classID, keyword string, offset, limit int) ([]model.Student, int64, error)
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Preload("Class").
		Where("student_id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByClassAndRoll(ctx context.Context, classID, rollNumber string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("class_id = ? AND roll_number = ?", classID, rollNumber).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) Update(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

func (r *studentRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("student_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *studentRepo) List(ctx context.Context, classID, keyword string, offset, limit int) ([]model.Student, int64, error) {
	var students []model.Student
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Student{})
	if classID != "" {
		db = db.Where("class_id = ?", classID)
	}
	if keyword != "" {
		db = db.Where("name ILIKE ? OR roll_number ILIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Class").
		Offset(offset).Limit(limit).
		Order("roll_number ASC").
		Find(&students).Error; err != nil {
		return nil, 0, err
	}

	return students, total, nil
}
