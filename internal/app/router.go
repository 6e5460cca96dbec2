package app

import (
	"course_market_backend/docs"
	"course_market_backend/internal/config"
	"course_market_backend/internal/middleware"
	"course_market_backend/pkg/monitoring"

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

		// The provider signs the raw body; no auth middleware applies here.
		public.POST("/payments/webhook", c.webhook.HandleEvent)

		// Catalog browsing is open; the access predicate varies by identity
		// but must answer anonymous callers too.
		public.GET("/courses", c.course.ListCourses)
		public.GET("/courses/:courseId", c.course.GetCourse)
		public.GET("/courses/:courseId/access", middleware.TryAuthMiddleware(cfg), c.course.GetAccess)
	}

	authorized := router.Group("/api")
	authorized.Use(middleware.AuthMiddleware(cfg))
	{
		authorized.POST("/auth/sync", c.student.Sync)
		authorized.GET("/profile", c.student.GetProfile)
		authorized.GET("/enrollments", c.enrollment.ListMine)
		authorized.GET("/courses/:courseId/progress", c.progress.GetCourseProgress)
		authorized.GET("/courses/:courseId/lessons/:lessonId", c.course.GetLesson)
		authorized.POST("/courses/:courseId/lessons/:lessonId/complete", c.progress.CompleteLesson)
	}
}
