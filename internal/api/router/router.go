package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"edumark/backend/config"
	"edumark/backend/internal/api/handler"
	"edumark/backend/internal/api/middleware"
	"edumark/backend/pkg/jwt"
	"edumark/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	r.Use(middleware.RateLimit(rdb, cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Window))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块（管理员）
			users := authorized.Group("/users", middleware.RoleAuth("admin"))
			{
				users.POST("", h.User.CreateUser)
				users.GET("", h.User.ListUsers)
				users.GET("/:id", h.User.GetUser)
				users.PUT("/:id", h.User.UpdateUser)
				users.DELETE("/:id", h.User.DeleteUser)
			}

			// 班级模块
			classes := authorized.Group("/classes")
			{
				classes.GET("", h.Class.ListClasses)
				classes.GET("/:id", h.Class.GetClass)
				classes.POST("", middleware.RoleAuth("admin"), h.Class.CreateClass)
				classes.PUT("/:id", middleware.RoleAuth("admin"), h.Class.UpdateClass)
				classes.DELETE("/:id", middleware.RoleAuth("admin"), h.Class.DeleteClass)
			}

			// 科目模块
			subjects := authorized.Group("/subjects")
			{
				subjects.GET("", h.Subject.ListSubjects)
				subjects.GET("/:id", h.Subject.GetSubject)
				subjects.POST("", middleware.RoleAuth("admin"), h.Subject.CreateSubject)
				subjects.PUT("/:id", middleware.RoleAuth("admin"), h.Subject.UpdateSubject)
				subjects.DELETE("/:id", middleware.RoleAuth("admin"), h.Subject.DeleteSubject)
			}

			// 学生模块
			students := authorized.Group("/students")
			{
				students.GET("", h.Student.ListStudents)
				students.GET("/:id", h.Student.GetStudent)
				students.POST("", middleware.RoleAuth("admin", "teacher"), h.Student.CreateStudent)
				students.PUT("/:id", middleware.RoleAuth("admin", "teacher"), h.Student.UpdateStudent)
				students.DELETE("/:id", middleware.RoleAuth("admin"), h.Student.DeleteStudent)
			}

			// 考试模块（含嵌套的试题/成绩/答题卡/统计路由）
			exams := authorized.Group("/exams")
			{
				exams.GET("", h.Exam.ListExams)
				exams.GET("/:id", h.Exam.GetExam)
				exams.POST("", middleware.RoleAuth("admin", "teacher"), h.Exam.CreateExam)
				exams.PUT("/:id", middleware.RoleAuth("admin", "teacher"), h.Exam.UpdateExam)
				exams.DELETE("/:id", middleware.RoleAuth("admin"), h.Exam.DeleteExam)

				exams.GET("/:id/questions", h.Question.ListQuestions)
				exams.POST("/:id/questions", middleware.RoleAuth("admin", "teacher"), h.Question.CreateQuestion)

				exams.GET("/:id/results", middleware.RoleAuth("admin", "teacher"), h.Result.ListExamResults)
				exams.PUT("/:id/results/publish", middleware.RoleAuth("admin", "teacher"), h.Result.PublishResults)

				exams.GET("/:id/answer-sheets", middleware.RoleAuth("admin", "teacher"), h.AnswerSheet.ListExamAnswerSheets)
				exams.GET("/:id/flags", middleware.RoleAuth("admin", "teacher"), h.Flag.ListExamFlags)
				exams.GET("/:id/flag-statistics", middleware.RoleAuth("admin", "teacher"), h.Flag.GetFlagStatistics)
				exams.GET("/:id/completion-status", middleware.RoleAuth("admin", "teacher"), h.MissingPaper.GetExamCompletionStatus)
			}

			// 试题模块
			questions := authorized.Group("/questions", middleware.RoleAuth("admin", "teacher"))
			{
				questions.PUT("/:id", h.Question.UpdateQuestion)
				questions.DELETE("/:id", h.Question.DeleteQuestion)
			}

			// 教学大纲模块
			syllabi := authorized.Group("/syllabi")
			{
				syllabi.GET("", h.Syllabus.ListSyllabi)
				syllabi.GET("/:id", h.Syllabus.GetSyllabus)
				syllabi.POST("", middleware.RoleAuth("admin", "teacher"), h.Syllabus.CreateSyllabus)
				syllabi.PUT("/:id", middleware.RoleAuth("admin", "teacher"), h.Syllabus.UpdateSyllabus)
				syllabi.DELETE("/:id", middleware.RoleAuth("admin"), h.Syllabus.DeleteSyllabus)
			}

			// 成绩模块（未发布成绩不对学生开放）
			results := authorized.Group("/results", middleware.RoleAuth("admin", "teacher"))
			{
				results.POST("", h.Result.CreateResult)
				results.GET("", h.Result.ListResults)
				results.GET("/:id", h.Result.GetResult)
				results.PUT("/:id", h.Result.UpdateResult)
				results.DELETE("/:id", h.Result.DeleteResult)
			}

			// 答题卡模块（含标记子路由）
			sheets := authorized.Group("/answer-sheets", middleware.RoleAuth("admin", "teacher"))
			{
				sheets.POST("", h.AnswerSheet.CreateAnswerSheet)
				sheets.GET("/:id", h.AnswerSheet.GetAnswerSheet)
				sheets.PUT("/:id/status", h.AnswerSheet.UpdateStatus)
				sheets.PUT("/:id/ai-outcome", h.AnswerSheet.RecordAIOutcome)
				sheets.DELETE("/:id", middleware.RoleAuth("admin"), h.AnswerSheet.DeleteAnswerSheet)

				sheets.POST("/:id/flags", h.Flag.AddFlag)
				sheets.GET("/:id/flags", h.Flag.ListFlags)
				sheets.POST("/:id/auto-detect", h.Flag.AutoDetect)
				sheets.PUT("/:id/flags/resolve-all", h.Flag.ResolveAllFlags)
				sheets.PUT("/:id/flags/:index/resolve", h.Flag.ResolveFlag)
			}

			// 标记批量操作
			flags := authorized.Group("/flags", middleware.RoleAuth("admin", "teacher"))
			{
				flags.POST("/bulk-resolve", h.Flag.BulkResolveFlags)
			}

			// 缺卷追踪模块
			missingPapers := authorized.Group("/missing-papers", middleware.RoleAuth("admin", "teacher"))
			{
				missingPapers.POST("", h.MissingPaper.Report)
				missingPapers.GET("", h.MissingPaper.ListTrackings)
				missingPapers.GET("/red-flags", middleware.RoleAuth("admin"), h.MissingPaper.GetRedFlagSummary)
				missingPapers.GET("/:id", h.MissingPaper.GetTracking)
				missingPapers.PUT("/:id/acknowledge", middleware.RoleAuth("admin"), h.MissingPaper.Acknowledge)
				missingPapers.PUT("/:id/resolve", middleware.RoleAuth("admin"), h.MissingPaper.Resolve)
				missingPapers.PUT("/:id/escalate", h.MissingPaper.Escalate)
			}

			// 通知模块（收件人本人可见）
			notifications := authorized.Group("/notifications")
			{
				notifications.POST("", middleware.RoleAuth("admin"), h.Notification.CreateNotification)
				notifications.GET("", h.Notification.ListNotifications)
				notifications.GET("/counts", h.Notification.GetCounts)
				notifications.PUT("/read-all", h.Notification.MarkAllRead)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
				notifications.PUT("/:id/acknowledge", h.Notification.Acknowledge)
				notifications.PUT("/:id/dismiss", h.Notification.Dismiss)
				notifications.DELETE("/:id", h.Notification.DeleteNotification)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/results", middleware.RoleAuth("admin", "teacher"), h.Export.ExportExamResults)
				export.GET("/calendar", h.Export.ExportClassCalendar)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
