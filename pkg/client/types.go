package client

import "time"

type User struct {
	ID    int64  `json:"user_id"` //nolint:tagliatelle
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type AuthResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"` //nolint:tagliatelle
	User         User   `json:"user"`
}

type Project struct {
	ID        int64     `json:"project_id"`   //nolint:tagliatelle
	Name      string    `json:"project_name"` //nolint:tagliatelle
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"` //nolint:tagliatelle
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"` //nolint:tagliatelle
}

type ProjectList struct {
	Projects   []Project  `json:"projects"`
	Pagination Pagination `json:"pagination"`
}

type Incident struct {
	ID          int64     `json:"incident_id"` //nolint:tagliatelle
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ProjectID   int64     `json:"project_id"` //nolint:tagliatelle
	Severity    string    `json:"severity"`
	Status      string    `json:"status"`
	ReportedBy  int64     `json:"reported_by"` //nolint:tagliatelle
	ReportedOn  time.Time `json:"reported_on"` //nolint:tagliatelle
}

type Attachment struct {
	ID         int64  `json:"attachment_id"` //nolint:tagliatelle
	IncidentID int64  `json:"incident_id"`   //nolint:tagliatelle
	FileURL    string `json:"file_url"`      //nolint:tagliatelle
	Comments   string `json:"comments"`
}

type IncidentDetails struct {
	Incident
	Attachments []Attachment `json:"attachments"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
}

type CreateIncidentRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ProjectID   int64  `json:"project_id"` //nolint:tagliatelle
	Severity    string `json:"severity,omitempty"`
	Status      string `json:"status,omitempty"`
}

type UpdateIncidentRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	ProjectID   *int64  `json:"project_id,omitempty"` //nolint:tagliatelle
	Severity    *string `json:"severity,omitempty"`
	Status      *string `json:"status,omitempty"`
}

type IncidentFilter struct {
	ProjectID int64
	Severity  string
	Status    string
}
