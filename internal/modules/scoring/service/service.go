package scoring

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nandaraf/famtask/internal/entity"
	scoringRepo "github.com/nandaraf/famtask/internal/modules/scoring/repository"
	"github.com/nandaraf/famtask/pkg/apperror"
	"gorm.io/gorm"
)

// SubmissionOutcome reports the accounting state after one graded attempt.
type SubmissionOutcome struct {
	Correct        bool   `json:"correct"`
	Feedback       string `json:"feedback"`
	PointsAwarded  int    `json:"points_awarded"`
	Points         int    `json:"points"`
	Streak         int    `json:"streak"`
	StreakExtended bool   `json:"streak_extended"`
	TaskStatus     string `json:"task_status"`
	Attempts       int    `json:"attempts"`
}

// SweepOutcome reports the result of one overdue penalty sweep.
type SweepOutcome struct {
	MissedTaskIDs []uuid.UUID `json:"missed_task_ids"`
	TotalPenalty  int         `json:"total_penalty"`
	Points        int         `json:"points"`
}

type Service interface {
	// ApplySubmission records one graded attempt against a task and, when
	// the verdict is correct, applies the point and streak accounting. All
	// writes commit together or not at all.
	ApplySubmission(ctx context.Context, submission *entity.Submission, today time.Time) (*SubmissionOutcome, error)

	// CheckOverdueTasks converts the user's overdue pending tasks to missed
	// and deducts half the task points once per task. The whole batch is
	// committed atomically and re-running the sweep is a no-op.
	CheckOverdueTasks(ctx context.Context, userID uuid.UUID, today time.Time) (*SweepOutcome, error)

	// AddPoints applies a raw point delta to a user. Used by the
	// interaction module's like/dislike accounting.
	AddPoints(ctx context.Context, userID uuid.UUID, delta int) (int, error)
}

type service struct {
	repo scoringRepo.ScoreRepository
}

func NewService(repo scoringRepo.ScoreRepository) Service {
	return &service{repo: repo}
}

func (s *service) ApplySubmission(ctx context.Context, submission *entity.Submission, today time.Time) (*SubmissionOutcome, error) {
	var outcome SubmissionOutcome

	err := s.repo.Transaction(ctx, func(tx scoringRepo.ScoreRepository) error {
		task, err := tx.GetTaskByID(ctx, submission.TaskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrNotFound
			}
			return err
		}

		if task.UserID != submission.UserID {
			return apperror.ErrForbidden
		}
		if task.Status != entity.TaskStatusPending || task.Completed {
			return apperror.ErrTaskClosed
		}

		user, err := tx.GetUserForUpdate(ctx, submission.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrNotFound
			}
			return err
		}

		if err := tx.IncrementAttempts(ctx, task.ID); err != nil {
			return err
		}
		if err := tx.CreateSubmission(ctx, submission); err != nil {
			return err
		}

		outcome.Correct = submission.Correct
		outcome.Feedback = submission.Feedback
		outcome.Points = user.Points
		outcome.Streak = user.Streak
		outcome.TaskStatus = task.Status
		outcome.Attempts = task.Attempts + 1

		if !submission.Correct {
			return nil
		}

		// Points accrue on every correct submission, independent of the
		// daily completion marker.
		if err := tx.AddPoints(ctx, user.ID, task.TaskPoints); err != nil {
			return err
		}
		if err := tx.MarkTaskCompleted(ctx, task.ID); err != nil {
			return err
		}
		outcome.PointsAwarded = task.TaskPoints
		outcome.Points = user.Points + task.TaskPoints
		outcome.TaskStatus = entity.TaskStatusCompleted

		// The streak path runs only for the first completion of the day.
		day := DayKey(today)
		done, err := tx.HasCompletion(ctx, user.ID, day)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		if err := tx.RecordCompletion(ctx, user.ID, day); err != nil {
			return err
		}

		newStreak := NextStreak(user.Streak, user.LastStreak, today)
		if err := tx.SetStreak(ctx, user.ID, newStreak, truncateToDay(today)); err != nil {
			return err
		}
		outcome.Streak = newStreak
		outcome.StreakExtended = true

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &outcome, nil
}

func (s *service) CheckOverdueTasks(ctx context.Context, userID uuid.UUID, today time.Time) (*SweepOutcome, error) {
	outcome := SweepOutcome{MissedTaskIDs: []uuid.UUID{}}

	err := s.repo.Transaction(ctx, func(tx scoringRepo.ScoreRepository) error {
		user, err := tx.GetUserForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrNotFound
			}
			return err
		}

		tasks, err := tx.FindOverdueTasks(ctx, userID, truncateToDay(today))
		if err != nil {
			return err
		}

		total := 0
		for _, task := range tasks {
			missed, err := tx.MarkTaskMissed(ctx, task.ID)
			if err != nil {
				return err
			}
			if !missed {
				continue
			}

			penalty := task.TaskPoints / 2
			if err := tx.AddPoints(ctx, userID, -penalty); err != nil {
				return err
			}

			total += penalty
			outcome.MissedTaskIDs = append(outcome.MissedTaskIDs, task.ID)
		}

		outcome.TotalPenalty = total
		outcome.Points = user.Points - total
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &outcome, nil
}

func (s *service) AddPoints(ctx context.Context, userID uuid.UUID, delta int) (int, error) {
	var points int

	err := s.repo.Transaction(ctx, func(tx scoringRepo.ScoreRepository) error {
		user, err := tx.GetUserForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrNotFound
			}
			return err
		}

		if err := tx.AddPoints(ctx, userID, delta); err != nil {
			return err
		}

		points = user.Points + delta
		return nil
	})
	if err != nil {
		return 0, err
	}

	return points, nil
}
