package app

import (
	"exam_portal_backend/docs"
	"exam_portal_backend/internal/config"
	"exam_portal_backend/internal/middleware"
	"exam_portal_backend/internal/model"
	"exam_portal_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.PUT("/profile", c.auth.UpdateProfile)

		// Exams. Listing and detail are role-aware inside the controller.
		exams := authGroup.Group("/exams")
		{
			exams.GET("", c.exam.ListExams)
			exams.GET("/upcoming", c.exam.UpcomingExams)
			exams.GET("/:id", c.exam.GetExam)

			manage := exams.Group("")
			manage.Use(middleware.RoleMiddleware(model.Faculty))
			{
				manage.POST("", c.exam.CreateExam)
				manage.PUT("/:id", c.exam.UpdateExam)
				manage.DELETE("/:id", c.exam.DeleteExam)
				manage.PUT("/:id/publish", c.exam.TogglePublish)
			}
		}

		// Question bank, faculty and admin only.
		questions := authGroup.Group("/questions")
		questions.Use(middleware.RoleMiddleware(model.Faculty))
		{
			questions.GET("", c.question.ListQuestions)
			questions.POST("", c.question.CreateQuestion)
			questions.POST("/bulk", c.question.BulkCreateQuestions)
			questions.GET("/subjects", c.question.ListSubjects)
			questions.GET("/topics", c.question.ListTopics)
			questions.GET("/:id", c.question.GetQuestion)
			questions.PUT("/:id", c.question.UpdateQuestion)
			questions.DELETE("/:id", c.question.DeleteQuestion)
		}

		// Attempt lifecycle.
		attempts := authGroup.Group("/exam-attempts")
		{
			attempts.POST("/start/:examId", middleware.RoleMiddleware(model.Student), c.attempt.StartAttempt)
			attempts.PUT("/:attemptId/answer", middleware.RoleMiddleware(model.Student), c.attempt.SaveAnswer)
			attempts.POST("/:attemptId/submit", middleware.RoleMiddleware(model.Student), c.attempt.SubmitAttempt)
			attempts.GET("/my-attempts", c.attempt.MyAttempts)
			attempts.GET("/my/:examId", c.attempt.GetMyAttempt)
			attempts.GET("/exam/:examId", middleware.RoleMiddleware(model.Faculty), c.attempt.AttemptsByExam)
			attempts.PUT("/:attemptId/evaluate", middleware.RoleMiddleware(model.Faculty), c.attempt.EvaluateAttempt)
			attempts.GET("/:attemptId", c.attempt.GetAttempt)
		}

		// Notifications.
		notifications := authGroup.Group("/notifications")
		{
			notifications.GET("", c.notification.ListNotifications)
			notifications.PUT("/read-all", c.notification.MarkAllRead)
			notifications.PUT("/:id/read", c.notification.MarkRead)
		}

		authGroup.GET("/analytics/dashboard", c.analytics.Dashboard)

		// User administration.
		users := authGroup.Group("/users")
		users.Use(middleware.RoleMiddleware(model.Admin))
		{
			users.GET("", c.user.ListUsers)
			users.PUT("/:id/active", c.user.SetActive)
		}
	}
}
