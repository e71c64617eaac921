package http

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	middleware "todo-manager.com/todo-manager/internal/http/middlewares"
)

func Register(e *echo.Echo, h *Handler, rateLimitPerMinute int, logger *log.Logger) {
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.Recover())
	e.Use(middleware.RateLimiter(rateLimitPerMinute, time.Minute))

	e.GET("/tasks", h.ListTasks)
	e.POST("/tasks", h.CreateTask)
	e.GET("/tasks/:id", h.GetTask)
	e.PUT("/tasks/:id", h.UpdateTask)
	e.PATCH("/tasks/:id/completed", h.ToggleCompleted)
	e.DELETE("/tasks/:id", h.DeleteTask)
}
