package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	UserID      uuid.UUID `json:"user_id" binding:"required"`
	Title       string    `json:"title" binding:"required,min=3,max=200"`
	Description string    `json:"description"`
	Subject     string    `json:"subject" binding:"max=50"`
	Answer      string    `json:"answer"`
	DueDate     time.Time `json:"due_date" binding:"required"`
	TaskPoints  int       `json:"task_points" binding:"required"`
}

// UserID is only needed when Assign is set; a bare generation returns the
// draft for review.
type GenerateTaskRequest struct {
	UserID  uuid.UUID `json:"user_id"`
	Subject string    `json:"subject" binding:"required,max=50"`
	AgeHint int       `json:"age_hint" binding:"omitempty,min=3,max=99"`
	Assign  bool      `json:"assign"`
}

type TaskFilter struct {
	Status string `form:"status" binding:"omitempty,oneof=pending completed missed"`
}

type TaskResponse struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Subject        string    `json:"subject"`
	DueDate        time.Time `json:"due_date"`
	TaskPoints     int       `json:"task_points"`
	Completed      bool      `json:"completed"`
	Attempts       int       `json:"attempts"`
	Status         string    `json:"status"`
	PenaltyApplied bool      `json:"penalty_applied"`
	CreatedAt      time.Time `json:"created_at"`
}

type SearchTaskFilter struct {
	Query string `form:"q" binding:"required"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}
