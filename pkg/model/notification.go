package model

import "time"

// Level is the severity of a user-visible notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a transient, non-blocking message shown to the user
// (a toast in the web panel, a status line in the CLI).
type Notification struct {
	Level     Level     `json:"level"`
	Field     string    `json:"field,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
