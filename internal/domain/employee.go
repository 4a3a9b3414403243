// Package domain contains core domain types for the HR assistant.
package domain

import (
	"time"
)

// Employee represents an employee profile record.
type Employee struct {
	UserID    string    `json:"user_id"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	Level     string    `json:"level"`
	Region    string    `json:"region"`
	Address   Address   `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Address is a postal address as stored on the employee profile.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// UserContext carries optional per-request hints about the user.
type UserContext struct {
	Region string
}
