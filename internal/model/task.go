package model

import "time"

const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

type Task struct {
	ID          int              `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Notes       *string          `json:"notes"`
	Completed   bool             `json:"completed"`
	CompletedAt *time.Time       `json:"completed_at"`
	Priority    string           `json:"priority"`
	DueDate     *time.Time       `json:"due_date"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	UserID      int              `json:"user_id"`
	CategoryID  *int             `json:"category_id"`
	Category    *CategorySummary `json:"category"`
	CreatedBy   *UserSummary     `json:"created_by,omitempty"`
}

// UserSummary is the owner reference embedded in a task detail.
type UserSummary struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}
