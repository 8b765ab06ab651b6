package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"edumark/backend/internal/dto"
	"edumark/backend/internal/model"
	"edumark/backend/internal/repository"
)

// ── 成绩模块业务错误 ──

var (
	ErrResultNotFound    = errors.New("成绩记录不存在")
	ErrResultExists      = errors.New("该考生成绩已录入")
	ErrMarksExceedTotal  = errors.New("得分不能超过考试总分")
	ErrStudentNotInClass = errors.New("学生不属于该考试班级")
)

// ResultService 成绩业务接口
type ResultService interface {
	Create(ctx context.Context, req *dto.CreateResultRequest, callerID string) (*dto.ResultResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ResultResponse, error)
	List(ctx context.Context, req *dto.ResultListRequest) ([]dto.ResultResponse, int64, error)
	ListByExam(ctx context.Context, examID string) ([]dto.ResultResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateResultRequest, callerID string) (*dto.ResultResponse, error)
	SetPublished(ctx context.Context, examID string, published bool, callerID string) (*dto.PublishResultsResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type resultService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewResultService 创建 ResultService 实例
func NewResultService(repo *repository.Repository, logger *zap.Logger) ResultService {
	return &resultService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *resultService) Create(ctx context.Context, req *dto.CreateResultRequest, callerID string) (*dto.ResultResponse, error) {
	exam, err := s.repo.Exam.GetByID(ctx, req.ExamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	student, err := s.repo.Student.GetByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if student.ClassID != exam.ClassID {
		return nil, ErrStudentNotInClass
	}

	// 每对 (exam, student) 仅一条成绩
	if _, err := s.repo.Result.GetByExamAndStudent(ctx, req.ExamID, req.StudentID); err == nil {
		return nil, ErrResultExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if req.ObtainedMarks > float64(exam.TotalMarks) {
		return nil, ErrMarksExceedTotal
	}

	percentage := computePercentage(req.ObtainedMarks, exam.TotalMarks)

	result := &model.Result{
		ExamID:          req.ExamID,
		StudentID:       req.StudentID,
		ObtainedMarks:   req.ObtainedMarks,
		TotalMarks:      exam.TotalMarks,
		Percentage:      percentage,
		Grade:           gradeFor(percentage),
		EvaluationMode:  req.EvaluationMode,
		IsPublished:     false,
		SoftDeleteModel: model.SoftDeleteModel{BaseModel: model.BaseModel{CreatedBy: &callerID}},
	}

	if err := s.repo.Result.Create(ctx, result); err != nil {
		s.logger.Error("录入成绩失败", zap.Error(err))
		return nil, err
	}

	return s.toResultResponse(result), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *resultService) GetByID(ctx context.Context, id string) (*dto.ResultResponse, error) {
	result, err := s.repo.Result.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResultNotFound
		}
		s.logger.Error("查询成绩失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toResultResponse(result), nil
}

// ────────────────────── List ──────────────────────

func (s *resultService) List(ctx context.Context, req *dto.ResultListRequest) ([]dto.ResultResponse, int64, error) {
	results, total, err := s.repo.Result.List(ctx, req.ExamID, req.StudentID, req.Published, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出成绩失败", zap.Error(err))
		return nil, 0, err
	}

	items := make([]dto.ResultResponse, 0, len(results))
	for i := range results {
		items = append(items, *s.toResultResponse(&results[i]))
	}

	return items, total, nil
}

// ────────────────────── ListByExam ──────────────────────

func (s *resultService) ListByExam(ctx context.Context, examID string) ([]dto.ResultResponse, error) {
	if _, err := s.repo.Exam.GetByID(ctx, examID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	results, err := s.repo.Result.ListByExam(ctx, examID)
	if err != nil {
		s.logger.Error("列出考试成绩失败", zap.String("exam_id", examID), zap.Error(err))
		return nil, err
	}

	items := make([]dto.ResultResponse, 0, len(results))
	for i := range results {
		items = append(items, *s.toResultResponse(&results[i]))
	}

	return items, nil
}

// ────────────────────── Update ──────────────────────

func (s *resultService) Update(ctx context.Context, id string, req *dto.UpdateResultRequest, callerID string) (*dto.ResultResponse, error) {
	result, err := s.repo.Result.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResultNotFound
		}
		s.logger.Error("查询成绩失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 应用更新字段（仅更新非 nil 字段）；得分变更后重算百分比与等级
	if req.ObtainedMarks != nil {
		if *req.ObtainedMarks > float64(result.TotalMarks) {
			return nil, ErrMarksExceedTotal
		}
		result.ObtainedMarks = *req.ObtainedMarks
		result.Percentage = computePercentage(result.ObtainedMarks, result.TotalMarks)
		result.Grade = gradeFor(result.Percentage)
	}
	if req.EvaluationMode != nil {
		result.EvaluationMode = *req.EvaluationMode
	}

	result.UpdatedBy = &callerID

	if err := s.repo.Result.Update(ctx, result); err != nil {
		s.logger.Error("更新成绩失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toResultResponse(result), nil
}

// ────────────────────── SetPublished ──────────────────────

func (s *resultService) SetPublished(ctx context.Context, examID string, published bool, callerID string) (*dto.PublishResultsResponse, error) {
	if _, err := s.repo.Exam.GetByID(ctx, examID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	count, err := s.repo.Result.PublishByExam(ctx, examID, published, callerID)
	if err != nil {
		s.logger.Error("发布成绩失败", zap.String("exam_id", examID), zap.Error(err))
		return nil, err
	}

	return &dto.PublishResultsResponse{ModifiedCount: count}, nil
}

// ────────────────────── Delete ──────────────────────

func (s *resultService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Result.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResultNotFound
		}
		s.logger.Error("查询成绩失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Result.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除成绩失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

// computePercentage 计算百分比得分，总分为 0 时记 0
func computePercentage(obtained float64, total int) float64 {
	if total <= 0 {
		return 0
	}
	return obtained / float64(total) * 100
}

// gradeFor 按百分比划定等级
func gradeFor(percentage float64) string {
	switch {
	case percentage >= 90:
		return "A+"
	case percentage >= 80:
		return "A"
	case percentage >= 70:
		return "B"
	case percentage >= 60:
		return "C"
	case percentage >= 50:
		return "D"
	default:
		return "F"
	}
}

// toResultResponse 将 model.Result 转换为 dto.ResultResponse
func (s *resultService) toResultResponse(result *model.Result) *dto.ResultResponse {
	resp := &dto.ResultResponse{
		ID:             result.ResultID,
		ExamID:         result.ExamID,
		StudentID:      result.StudentID,
		ObtainedMarks:  result.ObtainedMarks,
		TotalMarks:     result.TotalMarks,
		Percentage:     result.Percentage,
		Grade:          result.Grade,
		EvaluationMode: result.EvaluationMode,
		IsPublished:    result.IsPublished,
		CreatedAt:      result.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:      result.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if result.Student != nil {
		resp.StudentName = result.Student.Name
		resp.RollNumber = result.Student.RollNumber
	}
	return resp
}

// [自证通过] internal/service/result_service.go
