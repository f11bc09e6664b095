package domain

import "time"

// User is the domain model for authenticated helpers who claim solicitudes.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
