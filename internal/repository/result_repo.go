package repository

import (
	"context"

	"gorm.io/gorm"

	"edumark/backend/internal/model"
)

// ResultRepository 成绩数据访问接口
type ResultRepository interface {
	Create(ctx context.Context, result *model.Result) error
	GetByID(ctx context.Context, id string) (*model.Result, error)
	GetByExamAndStudent(ctx context.Context, examID, studentID string) (*model.Result, error)
	Update(ctx context.Context, result *model.Result) error
	Delete(ctx context.Context, id string, deletedBy string) error
	DeleteByExam(ctx context.Context, examID string, deletedBy string) error
	List(ctx context.Context, examID, studentID string, published *bool, offset, limit int) ([]model.Result, int64, error)
	ListByExam(ctx context.Context, examID string) ([]model.Result, error)
	PublishByExam(ctx context.Context, examID string, published bool, updatedBy string) (int64, error)
}

type resultRepo struct {
	db *gorm.DB
}

// NewResultRepo 创建 ResultRepository 实例
func NewResultRepo(db *gorm.DB) ResultRepository {
	return &resultRepo{db: db}
}

func (r *resultRepo) Create(ctx context.Context, result *model.Result) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *resultRepo) GetByID(ctx context.Context, id string) (*model.Result, error) {
	var result model.Result
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("result_id = ?", id).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *resultRepo) GetByExamAndStudent(ctx context.Context, examID, studentID string) (*model.Result, error) {
	var result model.Result
	err := r.db.WithContext(ctx).
		Where("exam_id = ? AND student_id = ?", examID, studentID).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *resultRepo) Update(ctx context.Context, result *model.Result) error {
	return r.db.WithContext(ctx).Save(result).Error
}

func (r *resultRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Result{}).
		Where("result_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// DeleteByExam 考试级联删除用：软删除该考试全部成绩
func (r *resultRepo) DeleteByExam(ctx context.Context, examID string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Result{}).
		Where("exam_id = ?", examID).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *resultRepo) List(ctx context.Context, examID, studentID string, published *bool, offset, limit int) ([]model.Result, int64, error) {
	var results []model.Result
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Result{})
	if examID != "" {
		db = db.Where("exam_id = ?", examID)
	}
	if studentID != "" {
		db = db.Where("student_id = ?", studentID)
	}
	if published != nil {
		db = db.Where("is_published = ?", *published)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Student").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

// PublishByExam 发布/撤回该考试全部成绩，只改动状态不同的行，返回受影响行数
func (r *resultRepo) PublishByExam(ctx context.Context, examID string, published bool, updatedBy string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Result{}).
		Where("exam_id = ? AND is_published <> ?", examID, published).
		Updates(map[string]interface{}{
			"is_published": published,
			"updated_by":   updatedBy,
		})
	return res.RowsAffected, res.Error
}

// ListByExam 导出用：取该考试全部成绩，按学号排序
func (r *resultRepo) ListByExam(ctx context.Context, examID string) ([]model.Result, error) {
	var results []model.Result
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("exam_id = ?", examID).
		Joins("LEFT JOIN students ON students.student_id = results.student_id").
		Order("students.roll_number ASC").
		Find(&results).Error
	return results, err
}
