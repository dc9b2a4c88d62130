package db

import (
	"database/sql"
	"time"
)

// User represents a registered account
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	CreatedAt    int64  `json:"createdAt"`
}

// Session represents an authentication session record
type Session struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	CreatedAt  int64  `json:"createdAt"`
	ExpiresAt  int64  `json:"expiresAt"`
	LastUsedAt int64  `json:"lastUsedAt"`
}

// Todo represents a to-do item in a user's collection
//
// ReminderTime and RequestCode are nil until a reminder is set. RequestCode is
// the integer handle the alarm scheduler uses to identify this item's alarm.
type Todo struct {
	ID           string `json:"id"`
	UserID       string `json:"-"`
	Task         string `json:"task"`
	IsCompleted  bool   `json:"isCompleted"`
	ReminderTime *int64 `json:"reminderTime,omitempty"`
	RequestCode  *int64 `json:"requestCode,omitempty"`
	CreatedAt    int64  `json:"createdAt"`
	UpdatedAt    int64  `json:"updatedAt"`
}

// scanTodo scans a row into a Todo
func scanTodo(row interface{ Scan(...any) error }) (Todo, error) {
	var t Todo
	var isCompleted int
	var reminderTime, requestCode sql.NullInt64
	err := row.Scan(
		&t.ID, &t.UserID, &t.Task, &isCompleted,
		&reminderTime, &requestCode, &t.CreatedAt, &t.UpdatedAt,
	)
	t.IsCompleted = isCompleted == 1
	t.ReminderTime = IntPtr(reminderTime)
	t.RequestCode = IntPtr(requestCode)
	return t, err
}

// NowMs returns the current time as Unix milliseconds (int64)
func NowMs() int64 {
	return time.Now().UnixMilli()
}

// NullInt converts *int64 to sql.NullInt64
func NullInt(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

// IntPtr converts sql.NullInt64 to *int64
func IntPtr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	return &ni.Int64
}

// boolToInt converts a bool to the 0/1 form sqlite stores
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
