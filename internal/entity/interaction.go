package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	InteractionLike    = "like"
	InteractionDislike = "dislike"

	// Point delta applied to the receiver per accepted interaction.
	InteractionPoints = 2
)

// Interaction is a directed giver -> receiver feedback edge. Creation is
// rate limited to one per ordered pair per rolling 24h window.
type Interaction struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GiverID    uuid.UUID `gorm:"type:uuid;not null;index:idx_interactions_pair,priority:1" json:"giver_id"`
	Giver      User      `gorm:"foreignKey:GiverID;constraint:OnDelete:CASCADE" json:"-"`
	ReceiverID uuid.UUID `gorm:"type:uuid;not null;index:idx_interactions_pair,priority:2;index" json:"receiver_id"`
	Receiver   User      `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"-"`
	Kind       string    `gorm:"size:10;not null" json:"kind"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (i *Interaction) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID, err = uuid.NewV7()
	}
	return
}

// PointsDelta returns the signed point change the receiver gets.
func (i *Interaction) PointsDelta() int {
	if i.Kind == InteractionDislike {
		return -InteractionPoints
	}
	return InteractionPoints
}
