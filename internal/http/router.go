package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"employee-review/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas /api. Si jwtSvc es
// nil las rutas que escriben quedan abiertas.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	healthH *HealthHandler,
	feedbackH *FeedbackHandler,
	aspectH *AspectHandler,
	summaryH *SummaryHandler,
	employeeH *EmployeeHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", healthH.Health)

	protect := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if jwtSvc == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{JWTAuthMiddleware(jwtSvc), h}
	}

	api := r.Group("/api")

	api.POST("/feedback", protect(feedbackH.CreateFeedback)...)
	api.GET("/feedback", feedbackH.ListFeedback)
	api.GET("/feedback/:employee_id", feedbackH.ListByEmployee)
	api.POST("/feedback/generate-summary/:employee_id", protect(summaryH.GenerateSummary)...)

	api.GET("/aspects", aspectH.List)
	api.POST("/aspects", protect(aspectH.Create)...)
	api.GET("/aspects/:id", aspectH.Get)
	api.PUT("/aspects/:id", protect(aspectH.Update)...)
	api.PATCH("/aspects/:id", protect(aspectH.Update)...)
	api.DELETE("/aspects/:id", protect(aspectH.Delete)...)

	api.GET("/aspect-summaries/:employee_id", summaryH.AspectSummaries)
	api.GET("/general-summaries/:employee_id", summaryH.GeneralSummaries)

	api.GET("/employee/:employee_id/psychotype", employeeH.GetPsychotype)
	api.PUT("/employee/:employee_id/psychotype", protect(employeeH.UpdatePsychotype)...)
	api.GET("/employees/feedback-count", employeeH.FeedbackCount)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
