package model

import "time"

// Student represents a roster entry. Account issuance and authentication are
// owned by the external identity service; this core only reads the roster.
type Student struct {
	ID           int       `json:"id"`
	NIS          string    `json:"nis"`
	NISN         string    `json:"nisn"`
	Name         string    `json:"name"`
	ClassName    string    `json:"class_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
