package dto

import (
	"time"

	"smart-waste-service/internal/domain"
)

type AlertResponse struct {
	ID           int64      `json:"id"`
	Type         string     `json:"type"`
	Severity     string     `json:"severity"`
	ContainerUID string     `json:"container_uid"`
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	Read         bool       `json:"read"`
	Resolved     bool       `json:"resolved"`
	CreatedAt    time.Time  `json:"created_at"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}

type ListAlertsResponse struct {
	Alerts []AlertResponse `json:"alerts"`
}

func NewAlertResponse(a domain.Alert) AlertResponse {
	return AlertResponse{
		ID:           a.ID,
		Type:         string(a.Type),
		Severity:     string(a.Severity),
		ContainerUID: a.ContainerUID,
		Title:        a.Title,
		Message:      a.Message,
		Read:         a.Read,
		Resolved:     a.Resolved,
		CreatedAt:    a.CreatedAt,
		ResolvedAt:   a.ResolvedAt,
	}
}
