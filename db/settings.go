package db

import (
	"database/sql"
	"strconv"
)

// GetSetting retrieves a setting by key, "" if not set
func GetSetting(key string) (string, error) {
	var value string
	err := GetDB().QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetSetting updates or creates a setting
func SetSetting(key, value string) error {
	_, err := GetDB().Exec(`
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, NowMs())
	return err
}

// requestCodeKey holds the next alarm request code to hand out.
// Installation-scoped, not per user.
const requestCodeKey = "next_request_code"

// RequestCodeStore persists the alarm request-code counter in the settings
// table. It satisfies the coordinator's CodeStore contract.
type RequestCodeStore struct{}

// LoadNextRequestCode returns the persisted counter, 0 if never saved
func (RequestCodeStore) LoadNextRequestCode() (int64, error) {
	value, err := GetSetting(requestCodeKey)
	if err != nil || value == "" {
		return 0, err
	}
	return strconv.ParseInt(value, 10, 64)
}

// SaveNextRequestCode persists the counter
func (RequestCodeStore) SaveNextRequestCode(code int64) error {
	return SetSetting(requestCodeKey, strconv.FormatInt(code, 10))
}
