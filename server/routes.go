package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter assembles the gin engine with the task-protocol routes,
// middleware, and operational endpoints.
func NewRouter(h *Handler, m *Metrics, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log), m.Middleware())

	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	v1 := router.Group("/v1")
	{
		v1.POST("/tasks", h.CreateTask)
		v1.GET("/tasks", h.ListTasks)
		v1.GET("/tasks/:id", h.GetTask)
		v1.POST("/tasks/:id/cancel", h.CancelTask)
	}
	return router
}
