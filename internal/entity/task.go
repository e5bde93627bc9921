package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"
	TaskStatusMissed    = "missed"
)

type Task struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_tasks_user_status,priority:1" json:"user_id"`
	User        User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedByID uuid.UUID `gorm:"type:uuid" json:"created_by_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Subject     string    `gorm:"size:50" json:"subject"`
	// Answer holds the expected answer used as grading reference. Never
	// serialized to assignees.
	Answer     string    `gorm:"type:text" json:"-"`
	DueDate    time.Time `gorm:"not null;index" json:"due_date"`
	TaskPoints int       `gorm:"not null" json:"task_points"`
	Completed  bool      `gorm:"not null;default:false" json:"completed"`
	Attempts   int       `gorm:"not null;default:0" json:"attempts"`
	// Status moves pending -> completed or pending -> missed; both terminal.
	Status         string    `gorm:"size:20;not null;default:pending;index:idx_tasks_user_status,priority:2" json:"status"`
	PenaltyApplied bool      `gorm:"not null;default:false" json:"penalty_applied"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID, err = uuid.NewV7()
	}
	return
}

// Submission is an append-only record of one answer attempt. Rows are never
// updated after creation.
type Submission struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TaskID    uuid.UUID `gorm:"type:uuid;not null;index" json:"task_id"`
	Task      Task      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Answer    string    `gorm:"type:text;not null" json:"answer"`
	Correct   bool      `gorm:"not null" json:"correct"`
	Feedback  string    `gorm:"type:text" json:"feedback"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (s *Submission) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	return
}

// DailyCompletion marks that a user completed at least one task on a
// calendar day. At most one row per (user, day); it gates streak updates
// only, never point accrual.
type DailyCompletion struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_daily_user_day,priority:1" json:"user_id"`
	User   User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	// Day is the calendar day in YYYY-MM-DD form.
	Day       string    `gorm:"size:10;not null;uniqueIndex:idx_daily_user_day,priority:2" json:"day"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
