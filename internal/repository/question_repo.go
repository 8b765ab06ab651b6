package repository

import (
	"context"

	"gorm.io/gorm"

	"edumark/backend/internal/model"
)

// QuestionRepository 试题数据访问接口
type QuestionRepository interface {
	Create(ctx context.Context, question *model.Question) error
	GetByID(ctx context.Context, id string) (*model.Question, error)
	ListByExam(ctx context.Context, examID string) ([]model.Question, error)
	Update(ctx context.Context, question *model.Question) error
	Delete(ctx context.Context, id string, deletedBy string) error
	DeleteByExam(ctx context.Context, examID string, deletedBy string) error
}

type questionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo 创建 QuestionRepository 实例
func NewQuestionRepo(db *gorm.DB) QuestionRepository {
	return &questionRepo{db: db}
}

func (r *questionRepo) Create(ctx context.Context, question *model.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *questionRepo) GetByID(ctx context.Context, id string) (*model.Question, error) {
	var question model.Question
	err := r.db.WithContext(ctx).
		Where("question_id = ?", id).
		First(&question).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepo) ListByExam(ctx context.Context, examID string) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Order("number ASC").
		Find(&questions).Error
	return questions, err
}

func (r *questionRepo) Update(ctx context.Context, question *model.Question) error {
	return r.db.WithContext(ctx).Save(question).Error
}

func (r *questionRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Question{}).
		Where("question_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// DeleteByExam 考试级联删除用：软删除该考试全部试题
func (r *questionRepo) DeleteByExam(ctx context.Context, examID string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Question{}).
		Where("exam_id = ?", examID).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
