package dto

import (
	"time"

	"github.com/safebase/safebase/internal/core/domain"
)

// AlertResponse represents a notification
type AlertResponse struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	DatabaseName *string   `json:"databaseName,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Read         bool      `json:"read"`
}

// UnreadCountResponse carries the live unread alert count
type UnreadCountResponse struct {
	Count int `json:"count"`
}

func ToAlertResponse(alert *domain.Alert) AlertResponse {
	return AlertResponse{
		ID:           alert.ID,
		Type:         string(alert.Kind),
		Title:        alert.Title,
		Message:      alert.Message,
		DatabaseName: alert.DatabaseName,
		Timestamp:    alert.CreatedAt,
		Read:         alert.Read,
	}
}

func ToAlertResponses(alerts []*domain.Alert) []AlertResponse {
	out := make([]AlertResponse, len(alerts))
	for i, alert := range alerts {
		out[i] = ToAlertResponse(alert)
	}
	return out
}
