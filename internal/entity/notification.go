package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationTaskAssigned    = "task_assigned"
	NotificationTaskGraded      = "task_graded"
	NotificationTaskMissed      = "task_missed"
	NotificationInteraction     = "interaction"
	NotificationStreakMilestone = "streak_milestone"
)

type Notification struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"` // receiver
	ActorID  uuid.UUID `gorm:"type:uuid;not null" json:"actor_id"`      // who triggered it
	EntityID uuid.UUID `gorm:"type:uuid" json:"entity_id"`              // task / interaction reference
	// EntityType is 'task', 'interaction' or 'streak'
	EntityType string    `gorm:"size:50;not null" json:"entity_type"`
	Type       string    `gorm:"size:50;not null" json:"type"`
	Message    string    `gorm:"type:text" json:"message"`
	IsRead     bool      `gorm:"default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}
