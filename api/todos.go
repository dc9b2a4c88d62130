package api

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lasttodo/lasttodo/log"
	"github.com/lasttodo/lasttodo/todo"
)

// coordinator resolves the request's session to its lifecycle coordinator.
// Responds and returns nil when the session is not authenticated.
func (h *Handlers) coordinator(c *gin.Context) *todo.Coordinator {
	token := c.GetString(contextKeyToken)

	coord, err := h.manager.Coordinator(token)
	if err != nil {
		RespondUnauthorized(c, "not authenticated")
		return nil
	}
	return coord
}

// respondTodoError maps coordinator errors onto the response envelope
func respondTodoError(c *gin.Context, err error) {
	switch {
	case todo.IsValidation(err):
		RespondValidationError(c, err.Error())
	case errors.Is(err, todo.ErrItemNotFound):
		RespondNotFound(c, "todo not found")
	case errors.Is(err, todo.ErrNotAuthenticated):
		RespondUnauthorized(c, "not authenticated")
	default:
		log.Error().Err(err).Msg("todo operation failed")
		RespondInternalError(c, "operation failed")
	}
}

// ListTodos handles GET /api/todos
func (h *Handlers) ListTodos(c *gin.Context) {
	coord := h.coordinator(c)
	if coord == nil {
		return
	}

	RespondList(c, coord.Items())
}

// CreateTodo handles POST /api/todos
func (h *Handlers) CreateTodo(c *gin.Context) {
	var body struct {
		Task string `json:"task"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}

	coord := h.coordinator(c)
	if coord == nil {
		return
	}

	id, err := coord.AddItem(body.Task)
	if err != nil {
		respondTodoError(c, err)
		return
	}

	RespondCreated(c, gin.H{"id": id})
}

// UpdateTodoTask handles PUT /api/todos/:id
func (h *Handlers) UpdateTodoTask(c *gin.Context) {
	var body struct {
		Task string `json:"task"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}

	coord := h.coordinator(c)
	if coord == nil {
		return
	}

	if err := coord.EditTask(c.Param("id"), body.Task); err != nil {
		respondTodoError(c, err)
		return
	}

	RespondNoContent(c)
}

// CompleteTodo handles PUT /api/todos/:id/complete
func (h *Handlers) CompleteTodo(c *gin.Context) {
	var body struct {
		Completed bool `json:"completed"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}

	coord := h.coordinator(c)
	if coord == nil {
		return
	}

	if err := coord.ToggleComplete(c.Param("id"), body.Completed); err != nil {
		respondTodoError(c, err)
		return
	}

	RespondNoContent(c)
}

// SetTodoReminder handles PUT /api/todos/:id/reminder
func (h *Handlers) SetTodoReminder(c *gin.Context) {
	var body struct {
		ReminderTime int64 `json:"reminderTime"` // epoch milliseconds
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}

	coord := h.coordinator(c)
	if coord == nil {
		return
	}

	if err := coord.SetReminder(c.Param("id"), time.UnixMilli(body.ReminderTime)); err != nil {
		respondTodoError(c, err)
		return
	}

	RespondNoContent(c)
}

// DeleteTodo handles DELETE /api/todos/:id
func (h *Handlers) DeleteTodo(c *gin.Context) {
	coord := h.coordinator(c)
	if coord == nil {
		return
	}

	if err := coord.DeleteItem(c.Param("id")); err != nil {
		respondTodoError(c, err)
		return
	}

	RespondNoContent(c)
}
