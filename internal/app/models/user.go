package models

import "time"

// Organization a user belongs to
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type,omitempty"`
	Country   string    `json:"country,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// User as returned embedded in upstream payloads
type User struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email,omitempty"`
	Phone        string        `json:"phone,omitempty"`
	Role         string        `json:"role,omitempty"`
	Organization *Organization `json:"organization,omitempty"`
	CreatedAt    time.Time     `json:"createdAt,omitempty"`
}
