package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateInteractionRequest struct {
	ReceiverID uuid.UUID `json:"receiver_id" binding:"required"`
	Kind       string    `json:"kind" binding:"required,oneof=like dislike"`
}

type InteractionResponse struct {
	ID             uuid.UUID `json:"id"`
	GiverID        uuid.UUID `json:"giver_id"`
	ReceiverID     uuid.UUID `json:"receiver_id"`
	Kind           string    `json:"kind"`
	ReceiverPoints int       `json:"receiver_points"`
	CreatedAt      time.Time `json:"created_at"`
}
