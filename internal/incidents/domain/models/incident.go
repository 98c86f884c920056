package models

import "time"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityModerate, SeverityHigh:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusClosed:
		return true
	default:
		return false
	}
}

type Incident struct {
	ID          int64     `json:"incident_id"` //nolint:tagliatelle
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ProjectID   int64     `json:"project_id"` //nolint:tagliatelle
	Severity    Severity  `json:"severity"`
	Status      Status    `json:"status"`
	ReportedBy  int64     `json:"reported_by"` //nolint:tagliatelle
	ReportedOn  time.Time `json:"reported_on"` //nolint:tagliatelle
}

type Attachment struct {
	ID         int64  `json:"attachment_id"` //nolint:tagliatelle
	IncidentID int64  `json:"incident_id"`   //nolint:tagliatelle
	FileURL    string `json:"file_url"`      //nolint:tagliatelle
	Comments   string `json:"comments"`
}
