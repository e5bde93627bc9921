package dto

import (
	"time"

	"github.com/google/uuid"
)

type SubmitAnswerRequest struct {
	Answer string `json:"answer" binding:"required,min=1"`
}

type SubmissionResponse struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	Answer    string    `json:"answer"`
	Correct   bool      `json:"correct"`
	Feedback  string    `json:"feedback"`
	CreatedAt time.Time `json:"created_at"`
}
