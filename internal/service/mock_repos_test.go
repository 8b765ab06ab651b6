package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"edumark/backend/internal/model"
	"edumark/backend/internal/repository"
	pkgerrors "edumark/backend/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users     map[string]*model.User
	idCounter int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.idCounter++
		user.UserID = fmt.Sprintf("user-%d", m.idCounter)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, role, keyword string, offset, limit int) ([]model.User, int64, error) {
	var filtered []model.User
	for _, u := range m.users {
		if role != "" && u.Role != role {
			continue
		}
		if keyword != "" && !strings.Contains(u.Name, keyword) && !strings.Contains(u.Email, keyword) {
			continue
		}
		filtered = append(filtered, *u)
	}
	start, end := clampPage(len(filtered), offset, limit)
	return filtered[start:end], int64(len(filtered)), nil
}

// ── Mock ClassRepository ──

type mockClassRepo struct {
	classes   map[string]*model.Class
	idCounter int
}

func newMockClassRepo() *mockClassRepo {
	return &mockClassRepo{classes: make(map[string]*model.Class)}
}

func (m *mockClassRepo) Create(_ context.Context, class *model.Class) error {
	if class.ClassID == "" {
		m.idCounter++
		class.ClassID = fmt.Sprintf("class-%d", m.idCounter)
	}
	m.classes[class.ClassID] = class
	return nil
}

func (m *mockClassRepo) GetByID(_ context.Context, id string) (*model.Class, error) {
	if c, ok := m.classes[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) GetByNameAndYear(_ context.Context, name, academicYear string) (*model.Class, error) {
	for _, c := range m.classes {
		if c.Name == name && c.AcademicYear == academicYear {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) Update(_ context.Context, class *model.Class) error {
	m.classes[class.ClassID] = class
	return nil
}

func (m *mockClassRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.classes, id)
	return nil
}

func (m *mockClassRepo) List(_ context.Context, academicYear string, gradeLevel int, keyword string, offset, limit int) ([]model.Class, int64, error) {
	var filtered []model.Class
	for _, c := range m.classes {
		if academicYear != "" && c.AcademicYear != academicYear {
			continue
		}
		if gradeLevel > 0 && c.GradeLevel != gradeLevel {
			continue
		}
		if keyword != "" && !strings.Contains(c.Name, keyword) {
			continue
		}
		filtered = append(filtered, *c)
	}
	start, end := clampPage(len(filtered), offset, limit)
	return filtered[start:end], int64(len(filtered)), nil
}

// ── Mock SubjectRepository ──

type mockSubjectRepo struct {
	subjects  map[string]*model.Subject
	idCounter int
}

func newMockSubjectRepo() *mockSubjectRepo {
	return &mockSubjectRepo{subjects: make(map[string]*model.Subject)}
}

func (m *mockSubjectRepo) Create(_ context.Context, subject *model.Subject) error {
	if subject.SubjectID == "" {
		m.idCounter++
		subject.SubjectID = fmt.Sprintf("subj-%d", m.idCounter)
	}
	m.subjects[subject.SubjectID] = subject
	return nil
}

func (m *mockSubjectRepo) GetByID(_ context.Context, id string) (*model.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) GetByCode(_ context.Context, code string) (*model.Subject, error) {
	for _, s := range m.subjects {
		if s.Code == code {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) Update(_ context.Context, subject *model.Subject) error {
	m.subjects[subject.SubjectID] = subject
	return nil
}

func (m *mockSubjectRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.subjects, id)
	return nil
}

func (m *mockSubjectRepo) List(_ context.Context, classID, teacherID string, offset, limit int) ([]model.Subject, int64, error) {
	var filtered []model.Subject
	for _, s := range m.subjects {
		if classID != "" && s.ClassID != classID {
			continue
		}
		if teacherID != "" && (s.TeacherID == nil || *s.TeacherID != teacherID) {
			continue
		}
		filtered = append(filtered, *s)
	}
	start, end := clampPage(len(filtered), offset, limit)
	return filtered[start:end], int64(len(filtered)), nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students  map[string]*model.Student
	idCounter int
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	if student.StudentID == "" {
		m.idCounter++
		student.StudentID = fmt.Sprintf("stu-%d", m.idCounter)
	}
	m.students[student.StudentID] = student
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByClassAndRoll(_ context.Context, classID, rollNumber string) (*model.Student, error) {
	for _, s := range m.students {
		if s.ClassID == classID && s.RollNumber == rollNumber {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student) error {
	m.students[student.StudentID] = student
	return nil
}

func (m *mockStudentRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.students, id)
	return nil
}

func (m *mockStudentRepo) List(_ context.Context, classID, keyword string, offset, limit int) ([]model.Student, int64, error) {
	var filtered []model.Student
	for _, s := range m.students {
		if classID != "" && s.ClassID != classID {
			continue
		}
		if keyword != "" && !strings.Contains(s.Name, keyword) && !strings.Contains(s.RollNumber, keyword) {
			continue
		}
		filtered = append(filtered, *s)
	}
	start, end := clampPage(len(filtered), offset, limit)
	return filtered[start:end], int64(len(filtered)), nil
}

// ── Mock ExamRepository ──

type mockExamRepo struct {
	exams     map[string]*model.Exam
	idCounter int
}

func newMockExamRepo() *mockExamRepo {
	return &mockExamRepo{exams: make(map[string]*model.Exam)}
}

func (m *mockExamRepo) Create(_ context.Context, exam *model.Exam) error {
	if exam.ExamID == "" {
		m.idCounter++
		exam.ExamID = fmt.Sprintf("exam-%d", m.idCounter)
	}
	if exam.Version == 0 {
		exam.Version = 1
	}
	m.exams[exam.ExamID] = exam
	return nil
}

func (m *mockExamRepo) GetByID(_ context.Context, id string) (*model.Exam, error) {
	if e, ok := m.exams[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockExamRepo) Update(_ context.Context, exam *model.Exam) error {
	m.exams[exam.ExamID] = exam
	return nil
}

func (m *mockExamRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.exams, id)
	return nil
}

func (m *mockExamRepo) List(_ context.Context, classID, subjectID, status string, offset, limit int) ([]model.Exam, int64, error) {
	var filtered []model.Exam
	for _, e := range m.exams {
		if classID != "" && e.ClassID != classID {
			continue
		}
		if subjectID != "" && e.SubjectID != subjectID {
			continue
		}
		if status != "" && e.Status != status {
			continue
		}
		filtered = append(filtered, *e)
	}
	start, end := clampPage(len(filtered), offset, limit)
	return filtered[start:end], int64(len(filtered)), nil
}

func (m *mockExamRepo) ListForCalendar(_ context.Context, classID string) ([]model.Exam, error) {
	var result []model.Exam
	for _, e := range m.exams {
		if e.ClassID != classID {
			continue
		}
		switch e.Status {
		case "scheduled", "ongoing", "completed":
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartAt.Before(result[j].StartAt) })
	return result, nil
}

// ── Mock QuestionRepository ──

type mockQuestionRepo struct {
	questions map[string]*model.Question
	idCounter int
}

func newMockQuestionRepo() *mockQuestionRepo {
	return &mockQuestionRepo{questions: make(map[string]*model.Question)}
}

func (m *mockQuestionRepo) Create(_ context.Context, question *model.Question) error {
	if question.QuestionID == "" {
		m.idCounter++
		question.QuestionID = fmt.Sprintf("q-%d", m.idCounter)
	}
	m.questions[question.QuestionID] = question
	return nil
}

func (m *mockQuestionRepo) GetByID(_ context.Context, id string) (*model.Question, error) {
	if q, ok := m.questions[id]; ok {
		return q, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockQuestionRepo) ListByExam(_ context.Context, examID string) ([]model.Question, error) {
	var result []model.Question
	for _, q := range m.questions {
		if q.ExamID == examID {
			result = append(result, *q)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Number < result[j].Number })
	return result, nil
}

func (m *mockQuestionRepo) Update(_ context.Context, question *model.Question) error {
	m.questions[question.QuestionID] = question
	return nil
}

func (m *mockQuestionRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.questions, id)
	return nil
}

func (m *mockQuestionRepo) DeleteByExam(_ context.Context, examID string, _ string) error {
	for id, q := range m.questions {
		if q.ExamID == examID {
			delete(m.questions, id)
		}
	}
	return nil
}

// ── Mock SyllabusRepository ──

type mockSyllabusRepo struct {
	syllabi   map[string]*model.Syllabus
	idCounter int
}

func newMockSyllabusRepo() *mockSyllabusRepo {
	return &mockSyllabusRepo{syllabi: make(map[string]*model.Syllabus)}
}

func (m *mockSyllabusRepo) Create(_ context.Context, syllabus *model.Syllabus) error {
	if syllabus.SyllabusID == "" {
		m.idCounter++
		syllabus.SyllabusID = fmt.Sprintf("syl-%d", m.idCounter)
	}
	m.syllabi[syllabus.SyllabusID] = syllabus
	return nil
}

func (m *mockSyllabusRepo) GetByID(_ context.Context, id string) (*model.Syllabus, error) {
	if s, ok := m.syllabi[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSyllabusRepo) Update(_ context.Context, syllabus *model.Syllabus) error {
	m.syllabi[syllabus.SyllabusID] = syllabus
	return nil
}

func (m *mockSyllabusRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.syllabi, id)
	return nil
}

func (m *mockSyllabusRepo) List(_ context.Context, subjectID, academicYear string, offset, limit int) ([]model.Syllabus, int64, error) {
	var filtered []model.Syllabus
	for _, s := range m.syllabi {
		if subjectID != "" && s.SubjectID != subjectID {
			continue
		}
		if academicYear != "" && s.AcademicYear != academicYear {
			continue
		}
		filtered = append(filtered, *s)
	}
	start, end := clampPage(len(filtered), offset, limit)
	return filtered[start:end], int64(len(filtered)), nil
}

// ── Mock ResultRepository ──

type mockResultRepo struct {
	results   map[string]*model.Result
	idCounter int
}

func newMockResultRepo() *mockResultRepo {
	return &mockResultRepo{results: make(map[string]*model.Result)}
}

func (m *mockResultRepo) Create(_ context.Context, result *model.Result) error {
	if result.ResultID == "" {
		m.idCounter++
		result.ResultID = fmt.Sprintf("res-%d", m.idCounter)
	}
	m.results[result.ResultID] = result
	return nil
}

func (m *mockResultRepo) GetByID(_ context.Context, id string) (*model.Result, error) {
	if r, ok := m.results[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockResultRepo) GetByExamAndStudent(_ context.Context, examID, studentID string) (*model.Result, error) {
	for _, r := range m.results {
		if r.ExamID == examID && r.StudentID == studentID {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockResultRepo) Update(_ context.Context, result *model.Result) error {
	m.results[result.ResultID] = result
	return nil
}

func (m *mockResultRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.results, id)
	return nil
}

func (m *mockResultRepo) DeleteByExam(_ context.Context, examID string, _ string) error {
	for id, r := range m.results {
		if r.ExamID == examID {
			delete(m.results, id)
		}
	}
	return nil
}

func (m *mockResultRepo) List(_ context.Context, examID, studentID string, published *bool, offset, limit int) ([]model.Result, int64, error) {
	var filtered []model.Result
	for _, r := range m.results {
		if examID != "" && r.ExamID != examID {
			continue
		}
		if studentID != "" && r.StudentID != studentID {
			continue
		}
		if published != nil && r.IsPublished != *published {
			continue
		}
		filtered = append(filtered, *r)
	}
	start, end := clampPage(len(filtered), offset, limit)
	return filtered[start:end], int64(len(filtered)), nil
}

func (m *mockResultRepo) ListByExam(_ context.Context, examID string) ([]model.Result, error) {
	var result []model.Result
	for _, r := range m.results {
		if r.ExamID == examID {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		ri, rj := "", ""
		if result[i].Student != nil {
			ri = result[i].Student.RollNumber
		}
		if result[j].Student != nil {
			rj = result[j].Student.RollNumber
		}
		return ri < rj
	})
	return result, nil
}

func (m *mockResultRepo) PublishByExam(_ context.Context, examID string, published bool, _ string) (int64, error) {
	var modified int64
	for _, r := range m.results {
		if r.ExamID == examID && r.IsPublished != published {
			r.IsPublished = published
			modified++
		}
	}
	return modified, nil
}

// ── Mock AnswerSheetRepository ──

type mockAnswerSheetRepo struct {
	sheets    map[string]*model.AnswerSheet
	idCounter int
}

func newMockAnswerSheetRepo() *mockAnswerSheetRepo {
	return &mockAnswerSheetRepo{sheets: make(map[string]*model.AnswerSheet)}
}

func (m *mockAnswerSheetRepo) Create(_ context.Context, sheet *model.AnswerSheet) error {
	if sheet.AnswerSheetID == "" {
		m.idCounter++
		sheet.AnswerSheetID = fmt.Sprintf("sheet-%d", m.idCounter)
	}
	m.sheets[sheet.AnswerSheetID] = sheet
	return nil
}

func (m *mockAnswerSheetRepo) GetByID(_ context.Context, id string) (*model.AnswerSheet, error) {
	if s, ok := m.sheets[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAnswerSheetRepo) Update(_ context.Context, sheet *model.AnswerSheet) error {
	m.sheets[sheet.AnswerSheetID] = sheet
	return nil
}

func (m *mockAnswerSheetRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.sheets, id)
	return nil
}

func (m *mockAnswerSheetRepo) DeleteByExam(_ context.Context, examID string, _ string) error {
	for id, s := range m.sheets {
		if s.ExamID == examID {
			delete(m.sheets, id)
		}
	}
	return nil
}

func (m *mockAnswerSheetRepo) ListByExam(_ context.Context, examID, status string, offset, limit int) ([]model.AnswerSheet, int64, error) {
	var filtered []model.AnswerSheet
	for _, s := range m.sheets {
		if s.ExamID != examID {
			continue
		}
		if status != "" && s.Status != status {
			continue
		}
		filtered = append(filtered, *s)
	}
	start, end := clampPage(len(filtered), offset, limit)
	return filtered[start:end], int64(len(filtered)), nil
}

// ── Mock FlagRepository ──

// sheetExam 模拟 ListByExam 的 JOIN：测试需为参与统计的卡登记所属考试
type mockFlagRepo struct {
	flags     []model.AnswerSheetFlag
	sheetExam map[string]string
}

func newMockFlagRepo() *mockFlagRepo {
	return &mockFlagRepo{sheetExam: make(map[string]string)}
}

func (m *mockFlagRepo) Create(_ context.Context, flag *model.AnswerSheetFlag) error {
	if flag.FlagID == "" {
		flag.FlagID = fmt.Sprintf("flag-%d", len(m.flags)+1)
	}
	if flag.CreatedAt.IsZero() {
		flag.CreatedAt = time.Now()
	}
	m.flags = append(m.flags, *flag)
	return nil
}

func (m *mockFlagRepo) ListBySheet(_ context.Context, sheetID string) ([]model.AnswerSheetFlag, error) {
	var result []model.AnswerSheetFlag
	for _, f := range m.flags {
		if f.AnswerSheetID == sheetID {
			result = append(result, f)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FlagIndex < result[j].FlagIndex })
	return result, nil
}

func (m *mockFlagRepo) GetBySheetAndIndex(_ context.Context, sheetID string, flagIndex int) (*model.AnswerSheetFlag, error) {
	for i, f := range m.flags {
		if f.AnswerSheetID == sheetID && f.FlagIndex == flagIndex {
			cp := m.flags[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFlagRepo) CountBySheet(_ context.Context, sheetID string) (int64, error) {
	var count int64
	for _, f := range m.flags {
		if f.AnswerSheetID == sheetID {
			count++
		}
	}
	return count, nil
}

func (m *mockFlagRepo) Resolve(_ context.Context, sheetID string, flagIndex int, resolvedBy string, notes *string, autoResolved bool, resolvedAt time.Time) (int64, error) {
	for i := range m.flags {
		f := &m.flags[i]
		if f.AnswerSheetID == sheetID && f.FlagIndex == flagIndex && !f.Resolved {
			f.Resolved = true
			f.ResolvedBy = &resolvedBy
			f.ResolvedAt = &resolvedAt
			f.ResolutionNotes = notes
			f.AutoResolved = autoResolved
			return 1, nil
		}
	}
	return 0, nil
}

func (m *mockFlagRepo) ResolveAllBySheet(_ context.Context, sheetID, resolvedBy string, notes *string, autoResolved bool, resolvedAt time.Time) (int64, error) {
	var resolved int64
	for i := range m.flags {
		f := &m.flags[i]
		if f.AnswerSheetID == sheetID && !f.Resolved {
			f.Resolved = true
			f.ResolvedBy = &resolvedBy
			f.ResolvedAt = &resolvedAt
			f.ResolutionNotes = notes
			f.AutoResolved = autoResolved
			resolved++
		}
	}
	return resolved, nil
}

func (m *mockFlagRepo) ListByExam(_ context.Context, examID string) ([]model.AnswerSheetFlag, error) {
	var result []model.AnswerSheetFlag
	for _, f := range m.flags {
		if m.sheetExam[f.AnswerSheetID] == examID {
			result = append(result, f)
		}
	}
	return result, nil
}

// ── Mock TrackingRepository ──

// conflictOnce 置位后下一次 Update 直接返回乐观锁冲突并复位，用于验证冲突透传
type mockTrackingRepo struct {
	items        []model.MissingPaperTracking
	idCounter    int
	conflictOnce bool
}

func newMockTrackingRepo() *mockTrackingRepo {
	return &mockTrackingRepo{}
}

func (m *mockTrackingRepo) Create(_ context.Context, tracking *model.MissingPaperTracking) error {
	if tracking.TrackingID == "" {
		m.idCounter++
		tracking.TrackingID = fmt.Sprintf("trk-%d", m.idCounter)
	}
	if tracking.Version == 0 {
		tracking.Version = 1
	}
	if tracking.CreatedAt.IsZero() {
		tracking.CreatedAt = time.Now()
	}
	tracking.UpdatedAt = tracking.CreatedAt
	m.items = append(m.items, *tracking)
	return nil
}

func (m *mockTrackingRepo) GetByID(_ context.Context, id string) (*model.MissingPaperTracking, error) {
	for i := range m.items {
		if m.items[i].TrackingID == id {
			cp := m.items[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTrackingRepo) GetActiveByExamStudent(_ context.Context, examID, studentID string) (*model.MissingPaperTracking, error) {
	for i := range m.items {
		t := &m.items[i]
		if t.ExamID == examID && t.StudentID == studentID && t.IsActive {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTrackingRepo) Update(_ context.Context, tracking *model.MissingPaperTracking) error {
	if m.conflictOnce {
		m.conflictOnce = false
		return pkgerrors.ErrOptimisticLock
	}
	for i := range m.items {
		if m.items[i].TrackingID == tracking.TrackingID {
			if m.items[i].Version != tracking.Version {
				return pkgerrors.ErrOptimisticLock
			}
			tracking.Version++
			tracking.UpdatedAt = time.Now()
			m.items[i] = *tracking
			return nil
		}
	}
	return pkgerrors.ErrOptimisticLock
}

func (m *mockTrackingRepo) List(_ context.Context, reportedBy, status, trackingType, examID string, offset, limit int) ([]model.MissingPaperTracking, int64, error) {
	var filtered []model.MissingPaperTracking
	for i := len(m.items) - 1; i >= 0; i-- {
		t := m.items[i]
		if !t.IsActive {
			continue
		}
		if reportedBy != "" && t.ReportedBy != reportedBy {
			continue
		}
		if status != "" && string(t.Status) != status {
			continue
		}
		if trackingType != "" && string(t.Type) != trackingType {
			continue
		}
		if examID != "" && t.ExamID != examID {
			continue
		}
		filtered = append(filtered, t)
	}
	start, end := clampPage(len(filtered), offset, limit)
	return filtered[start:end], int64(len(filtered)), nil
}

func (m *mockTrackingRepo) ListByExam(_ context.Context, examID string) ([]model.MissingPaperTracking, error) {
	var result []model.MissingPaperTracking
	for _, t := range m.items {
		if t.ExamID == examID && t.IsActive {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *mockTrackingRepo) ListRedFlags(_ context.Context) ([]model.MissingPaperTracking, error) {
	var result []model.MissingPaperTracking
	for i := len(m.items) - 1; i >= 0; i-- {
		t := m.items[i]
		if t.IsRedFlag && t.IsActive && !t.IsCompleted {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *mockTrackingRepo) ArchiveByExam(_ context.Context, examID string) error {
	for i := range m.items {
		if m.items[i].ExamID == examID {
			m.items[i].IsActive = false
		}
	}
	return nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	notifications []model.Notification
	idCounter     int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, notification *model.Notification) error {
	if notification.NotificationID == "" {
		m.idCounter++
		notification.NotificationID = fmt.Sprintf("ntf-%d", m.idCounter)
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	m.notifications = append(m.notifications, *notification)
	return nil
}

func (m *mockNotificationRepo) GetByIDForRecipient(_ context.Context, id, recipientID string) (*model.Notification, error) {
	for i := range m.notifications {
		n := &m.notifications[i]
		if n.NotificationID == id && n.RecipientID == recipientID && n.IsActive {
			cp := *n
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) Update(_ context.Context, notification *model.Notification) error {
	for i := range m.notifications {
		if m.notifications[i].NotificationID == notification.NotificationID {
			m.notifications[i] = *notification
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) List(_ context.Context, recipientID string, filter repository.NotificationFilter, offset, limit int) ([]model.Notification, int64, error) {
	var filtered []model.Notification
	for i := len(m.notifications) - 1; i >= 0; i-- {
		n := m.notifications[i]
		if n.RecipientID != recipientID || !n.IsActive {
			continue
		}
		if filter.Type != "" && string(n.Type) != filter.Type {
			continue
		}
		if filter.Priority != "" && string(n.Priority) != filter.Priority {
			continue
		}
		if filter.Status != "" && string(n.Status) != filter.Status {
			continue
		}
		if filter.DateFrom != nil && n.CreatedAt.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && n.CreatedAt.After(*filter.DateTo) {
			continue
		}
		filtered = append(filtered, n)
	}
	start, end := clampPage(len(filtered), offset, limit)
	return filtered[start:end], int64(len(filtered)), nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, recipientID string, readAt time.Time) (int64, error) {
	var modified int64
	for i := range m.notifications {
		n := &m.notifications[i]
		if n.RecipientID == recipientID && n.IsActive && n.Status == model.StatusUnread {
			n.Status = model.StatusRead
			n.ReadAt = &readAt
			modified++
		}
	}
	return modified, nil
}

func (m *mockNotificationRepo) Counts(_ context.Context, recipientID string) (*repository.NotificationCounts, error) {
	counts := &repository.NotificationCounts{}
	for _, n := range m.notifications {
		if n.RecipientID != recipientID || !n.IsActive {
			continue
		}
		counts.Total++
		if n.Status == model.StatusUnread {
			counts.Unread++
		}
		if n.Priority == model.PriorityUrgent &&
			(n.Status == model.StatusUnread || n.Status == model.StatusRead) {
			counts.Urgent++
		}
	}
	return counts, nil
}

func (m *mockNotificationRepo) SoftDelete(_ context.Context, id, recipientID string) (int64, error) {
	for i := range m.notifications {
		n := &m.notifications[i]
		if n.NotificationID == id && n.RecipientID == recipientID && n.IsActive {
			n.IsActive = false
			return 1, nil
		}
	}
	return 0, nil
}

// ── 辅助 ──

// clampPage 分页切片边界
func clampPage(total, offset, limit int) (int, int) {
	if offset >= total {
		return 0, 0
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return offset, end
}
