package model

// DefaultCategoryColor is applied when a category is created without one.
const DefaultCategoryColor = "#007bff"

type Category struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	UserID    int    `json:"user_id"`
	TaskCount int    `json:"task_count"`
}

// CategorySummary is the category reference embedded in task responses.
type CategorySummary struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}
