package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nandaraf/famtask/internal/ai"
	"github.com/nandaraf/famtask/internal/entity"
	notifService "github.com/nandaraf/famtask/internal/modules/notification/service"
	scoring "github.com/nandaraf/famtask/internal/modules/scoring/service"
	searchService "github.com/nandaraf/famtask/internal/modules/search/service"
	subRepo "github.com/nandaraf/famtask/internal/modules/submission/repository"
	taskRepo "github.com/nandaraf/famtask/internal/modules/task/repository"
	"github.com/nandaraf/famtask/pkg/apperror"
	"github.com/nandaraf/famtask/pkg/logger"
	"gorm.io/gorm"
)

// streakMilestoneEvery is how many consecutive days earn a milestone
// notification on top of the regular graded one.
const streakMilestoneEvery = 7

type SubmissionService interface {
	// Submit grades the answer, records the attempt and applies the point
	// and streak accounting for a correct verdict.
	Submit(ctx context.Context, userID, taskID uuid.UUID, answer string) (*scoring.SubmissionOutcome, error)
	ListByTask(ctx context.Context, userID, taskID uuid.UUID) ([]entity.Submission, error)
}

type submissionService struct {
	repo     subRepo.SubmissionRepository
	taskRepo taskRepo.TaskRepository
	scoring  scoring.Service
	grader   ai.Grader
	notifier notifService.NotificationService
	search   searchService.SearchService
	now      func() time.Time
}

func NewSubmissionService(
	repo subRepo.SubmissionRepository,
	taskRepo taskRepo.TaskRepository,
	scoringService scoring.Service,
	grader ai.Grader,
	notifier notifService.NotificationService,
	search searchService.SearchService,
) SubmissionService {
	return &submissionService{
		repo:     repo,
		taskRepo: taskRepo,
		scoring:  scoringService,
		grader:   grader,
		notifier: notifier,
		search:   search,
		now:      time.Now,
	}
}

func (s *submissionService) Submit(ctx context.Context, userID, taskID uuid.UUID, answer string) (*scoring.SubmissionOutcome, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if task.UserID != userID {
		return nil, apperror.ErrForbidden
	}
	if task.Status != entity.TaskStatusPending || task.Completed {
		return nil, apperror.ErrTaskClosed
	}

	verdict, err := s.grader.Grade(ctx, task, answer)
	if err != nil {
		// Nothing is recorded when grading fails; the client retries.
		return nil, fmt.Errorf("%w: %v", apperror.ErrGradingFailed, err)
	}

	submission := &entity.Submission{
		TaskID:   task.ID,
		UserID:   userID,
		Answer:   answer,
		Correct:  verdict.Correct,
		Feedback: verdict.Feedback,
	}

	outcome, err := s.scoring.ApplySubmission(ctx, submission, s.now())
	if err != nil {
		return nil, err
	}

	if outcome.Correct {
		s.afterCompletion(task, outcome)
	}

	return outcome, nil
}

func (s *submissionService) ListByTask(ctx context.Context, userID, taskID uuid.UUID) ([]entity.Submission, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if task.UserID != userID {
		return nil, apperror.ErrForbidden
	}

	return s.repo.FindByTask(ctx, taskID)
}

// afterCompletion handles non-transactional side effects: the search index
// and the graded notification.
func (s *submissionService) afterCompletion(task *entity.Task, outcome *scoring.SubmissionOutcome) {
	if s.search != nil {
		task.Status = entity.TaskStatusCompleted
		if err := s.search.IndexTask(task); err != nil {
			logger.Sugar().Warnw("failed to reindex completed task", "task_id", task.ID, "err", err)
		}
	}

	if s.notifier != nil {
		msg := fmt.Sprintf("Nice work! You earned %d points for %q.", outcome.PointsAwarded, task.Title)
		if outcome.StreakExtended {
			msg = fmt.Sprintf("%s Your streak is now %d.", msg, outcome.Streak)
		}

		notif := &entity.Notification{
			UserID:     task.UserID,
			ActorID:    task.UserID,
			EntityID:   task.ID,
			EntityType: "task",
			Type:       entity.NotificationTaskGraded,
			Message:    msg,
		}
		if err := s.notifier.CreateNotification(context.Background(), notif); err != nil {
			logger.Sugar().Warnw("failed to send graded notification", "user_id", task.UserID, "err", err)
		}

		// A full week of activity earns its own cheer.
		if outcome.StreakExtended && outcome.Streak > 0 && outcome.Streak%streakMilestoneEvery == 0 {
			milestone := &entity.Notification{
				UserID:     task.UserID,
				ActorID:    task.UserID,
				EntityID:   task.ID,
				EntityType: "streak",
				Type:       entity.NotificationStreakMilestone,
				Message:    fmt.Sprintf("You're on a roll! %d days in a row.", outcome.Streak),
			}
			if err := s.notifier.CreateNotification(context.Background(), milestone); err != nil {
				logger.Sugar().Warnw("failed to send streak milestone notification", "user_id", task.UserID, "err", err)
			}
		}
	}
}
