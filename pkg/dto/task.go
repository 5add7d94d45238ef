package dto

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	TeamID      int64   `json:"team_id" validate:"required"`
	AssignedTo  *int64  `json:"assigned_to,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	Status      string  `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	AssignedTo  *int64  `json:"assigned_to,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed"`
}

// ParseDueDate accepts a calendar date or an RFC 3339 timestamp. Nil and
// empty input yield a nil time.
func ParseDueDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateLayout, *s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, fmt.Errorf("due_date must be YYYY-MM-DD or RFC 3339")
	}
	return &t, nil
}
