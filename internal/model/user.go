package model

import "time"

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	DateJoined   time.Time `json:"date_joined"`
}

// UserWithCounts is the admin listing row: a user plus task totals.
type UserWithCounts struct {
	ID                 int       `json:"id"`
	Username           string    `json:"username"`
	Email              string    `json:"email"`
	IsAdmin            bool      `json:"is_admin"`
	DateJoined         time.Time `json:"date_joined"`
	TaskCount          int       `json:"task_count"`
	CompletedTaskCount int       `json:"completed_task_count"`
}
