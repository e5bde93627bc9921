package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nandaraf/famtask/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScoreRepository groups the persistence operations behind the accounting
// core. Multi-step logical events run inside Transaction so a partial
// failure never commits partial state.
type ScoreRepository interface {
	Transaction(ctx context.Context, fn func(tx ScoreRepository) error) error

	GetUserForUpdate(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	AddPoints(ctx context.Context, userID uuid.UUID, delta int) error
	SetStreak(ctx context.Context, userID uuid.UUID, streak int, lastStreak time.Time) error

	HasCompletion(ctx context.Context, userID uuid.UUID, day string) (bool, error)
	RecordCompletion(ctx context.Context, userID uuid.UUID, day string) error

	GetTaskByID(ctx context.Context, taskID uuid.UUID) (*entity.Task, error)
	IncrementAttempts(ctx context.Context, taskID uuid.UUID) error
	MarkTaskCompleted(ctx context.Context, taskID uuid.UUID) error
	MarkTaskMissed(ctx context.Context, taskID uuid.UUID) (bool, error)
	FindOverdueTasks(ctx context.Context, userID uuid.UUID, before time.Time) ([]entity.Task, error)

	CreateSubmission(ctx context.Context, submission *entity.Submission) error
}

type scoreRepository struct {
	db *gorm.DB
}

func NewScoreRepository(db *gorm.DB) ScoreRepository {
	return &scoreRepository{db: db}
}

func (r *scoreRepository) Transaction(ctx context.Context, fn func(tx ScoreRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&scoreRepository{db: tx})
	})
}

// GetUserForUpdate loads the user row, taking a row lock on dialects that
// support it so concurrent submissions for the same user serialize.
func (r *scoreRepository) GetUserForUpdate(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	q := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var user entity.User
	if err := q.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// AddPoints applies an atomic increment so concurrent deltas never lose
// updates.
func (r *scoreRepository) AddPoints(ctx context.Context, userID uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ?", userID).
		UpdateColumn("points", gorm.Expr("points + ?", delta)).Error
}

func (r *scoreRepository) SetStreak(ctx context.Context, userID uuid.UUID, streak int, lastStreak time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ?", userID).
		UpdateColumns(map[string]interface{}{
			"streak":      streak,
			"last_streak": lastStreak,
		}).Error
}

func (r *scoreRepository) HasCompletion(ctx context.Context, userID uuid.UUID, day string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.DailyCompletion{}).
		Where("user_id = ? AND day = ?", userID, day).
		Count(&count).Error
	return count > 0, err
}

// RecordCompletion inserts the (user, day) marker. A duplicate insert is a
// no-op thanks to the unique index and the conflict clause.
func (r *scoreRepository) RecordCompletion(ctx context.Context, userID uuid.UUID, day string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.DailyCompletion{UserID: userID, Day: day}).Error
}

func (r *scoreRepository) GetTaskByID(ctx context.Context, taskID uuid.UUID) (*entity.Task, error) {
	var task entity.Task
	if err := r.db.WithContext(ctx).Where("id = ?", taskID).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *scoreRepository) IncrementAttempts(ctx context.Context, taskID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&entity.Task{}).
		Where("id = ?", taskID).
		UpdateColumn("attempts", gorm.Expr("attempts + ?", 1)).Error
}

func (r *scoreRepository) MarkTaskCompleted(ctx context.Context, taskID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&entity.Task{}).
		Where("id = ? AND status = ?", taskID, entity.TaskStatusPending).
		UpdateColumns(map[string]interface{}{
			"completed": true,
			"status":    entity.TaskStatusCompleted,
		}).Error
}

// MarkTaskMissed flips a pending task to missed and arms the one-shot
// penalty guard. Returns false when another sweep got there first.
func (r *scoreRepository) MarkTaskMissed(ctx context.Context, taskID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entity.Task{}).
		Where("id = ? AND status = ? AND penalty_applied = ?", taskID, entity.TaskStatusPending, false).
		UpdateColumns(map[string]interface{}{
			"status":          entity.TaskStatusMissed,
			"penalty_applied": true,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *scoreRepository) FindOverdueTasks(ctx context.Context, userID uuid.UUID, before time.Time) ([]entity.Task, error) {
	var tasks []entity.Task
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND completed = ? AND penalty_applied = ? AND status = ? AND due_date < ?",
			userID, false, false, entity.TaskStatusPending, before).
		Order("due_date asc").
		Find(&tasks).Error
	return tasks, err
}

func (r *scoreRepository) CreateSubmission(ctx context.Context, submission *entity.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}
