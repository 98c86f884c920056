package models

import "time"

type Project struct {
	ID        int64     `json:"project_id"`   //nolint:tagliatelle
	Name      string    `json:"project_name"` //nolint:tagliatelle
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"` //nolint:tagliatelle
}
