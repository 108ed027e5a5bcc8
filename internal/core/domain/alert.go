package domain

import (
	"time"

	"github.com/google/uuid"
)

type AlertKind string

const (
	AlertKindError   AlertKind = "error"
	AlertKindWarning AlertKind = "warning"
	AlertKindSuccess AlertKind = "success"
	AlertKindInfo    AlertKind = "info"
)

// Alert is a notification of a system event. The read flag only ever
// moves from false to true.
type Alert struct {
	ID           string    `db:"id"`
	Kind         AlertKind `db:"kind"`
	Title        string    `db:"title"`
	Message      string    `db:"message"`
	DatabaseName *string   `db:"database_name"`
	Read         bool      `db:"read"`
	CreatedAt    time.Time `db:"created_at"`
}

func NewAlert(kind AlertKind, title, message string) *Alert {
	return &Alert{
		ID:        uuid.New().String(),
		Kind:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
}

func (a *Alert) WithDatabase(name string) *Alert {
	a.DatabaseName = &name
	return a
}
