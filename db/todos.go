package db

import (
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a todo does not exist in the user's collection
var ErrNotFound = errors.New("todo not found")

// CreateTodo inserts a new todo for a user and returns its assigned id
func CreateTodo(userID string, t Todo) (string, error) {
	id := uuid.New().String()
	now := NowMs()

	_, err := GetDB().Exec(`
		INSERT INTO todos (id, user_id, task, is_completed, reminder_time, request_code, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, userID, t.Task, boolToInt(t.IsCompleted), NullInt(t.ReminderTime), NullInt(t.RequestCode), now, now)
	if err != nil {
		return "", err
	}

	return id, nil
}

// UpsertTodo rewrites the full todo record (never a partial patch)
func UpsertTodo(userID, id string, t Todo) error {
	result, err := GetDB().Exec(`
		UPDATE todos
		SET task = ?, is_completed = ?, reminder_time = ?, request_code = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, t.Task, boolToInt(t.IsCompleted), NullInt(t.ReminderTime), NullInt(t.RequestCode), NowMs(), id, userID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteTodo removes a todo from a user's collection
func DeleteTodo(userID, id string) error {
	result, err := GetDB().Exec(`DELETE FROM todos WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// ListTodos retrieves a user's full collection, oldest first
func ListTodos(userID string) ([]Todo, error) {
	rows, err := GetDB().Query(`
		SELECT id, user_id, task, is_completed, reminder_time, request_code, created_at, updated_at
		FROM todos
		WHERE user_id = ?
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var todos []Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}

	return todos, rows.Err()
}
