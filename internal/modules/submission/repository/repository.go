package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/nandaraf/famtask/internal/entity"
	"gorm.io/gorm"
)

// SubmissionRepository covers read access to the append-only submission
// log. Writes happen inside the scoring transaction.
type SubmissionRepository interface {
	FindByTask(ctx context.Context, taskID uuid.UUID) ([]entity.Submission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) FindByTask(ctx context.Context, taskID uuid.UUID) ([]entity.Submission, error) {
	var submissions []entity.Submission
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at asc").
		Find(&submissions).Error
	return submissions, err
}
