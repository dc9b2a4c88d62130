package api

import (
	"github.com/gin-gonic/gin"
	"github.com/lasttodo/lasttodo/auth"
	"github.com/lasttodo/lasttodo/todo"
)

// Handlers carries the services the API dispatches into
type Handlers struct {
	auth    *auth.Service
	manager *todo.Manager
}

// NewHandlers creates the API handler set
func NewHandlers(authService *auth.Service, manager *todo.Manager) *Handlers {
	return &Handlers{
		auth:    authService,
		manager: manager,
	}
}

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, h *Handlers) {
	// API group
	api := r.Group("/api")

	// Auth routes
	api.POST("/auth/signup", h.SignUp)
	api.POST("/auth/signin", h.SignIn)
	api.POST("/auth/signout", h.SignOut)

	// Todo routes (authenticated)
	todos := api.Group("/todos")
	todos.Use(h.RequireSession())
	todos.GET("", h.ListTodos)
	todos.POST("", h.CreateTodo)
	todos.GET("/stream", h.StreamTodos)
	todos.GET("/ws", h.StreamTodosWS)
	todos.PUT("/:id", h.UpdateTodoTask)
	todos.PUT("/:id/complete", h.CompleteTodo)
	todos.PUT("/:id/reminder", h.SetTodoReminder)
	todos.DELETE("/:id", h.DeleteTodo)
}
