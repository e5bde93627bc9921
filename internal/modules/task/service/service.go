package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nandaraf/famtask/internal/ai"
	"github.com/nandaraf/famtask/internal/entity"
	notifService "github.com/nandaraf/famtask/internal/modules/notification/service"
	searchService "github.com/nandaraf/famtask/internal/modules/search/service"
	"github.com/nandaraf/famtask/internal/modules/task/dto"
	taskRepo "github.com/nandaraf/famtask/internal/modules/task/repository"
	userRepo "github.com/nandaraf/famtask/internal/modules/user/repository"
	"github.com/nandaraf/famtask/pkg/apperror"
	"github.com/nandaraf/famtask/pkg/logger"
	"gorm.io/gorm"
)

type TaskService interface {
	Create(ctx context.Context, creatorID uuid.UUID, req dto.CreateTaskRequest) (*entity.Task, error)
	Generate(ctx context.Context, creatorID uuid.UUID, req dto.GenerateTaskRequest) (*ai.TaskDraft, *entity.Task, error)
	ListMine(ctx context.Context, userID uuid.UUID, status string) ([]entity.Task, error)
	GetByID(ctx context.Context, userID uuid.UUID, taskID uuid.UUID, isAdmin bool) (*entity.Task, error)
	// Delete removes the task and drops it from the search index.
	Delete(ctx context.Context, taskID uuid.UUID) error
	Search(ctx context.Context, userID uuid.UUID, query string, limit int) ([]searchService.TaskDocument, error)
}

type taskService struct {
	repo      taskRepo.TaskRepository
	userRepo  userRepo.UserRepository
	generator ai.Generator
	notifier  notifService.NotificationService
	search    searchService.SearchService
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

func NewTaskService(
	repo taskRepo.TaskRepository,
	userRepo userRepo.UserRepository,
	generator ai.Generator,
	notifier notifService.NotificationService,
	search searchService.SearchService,
) TaskService {
	return &taskService{
		repo:      repo,
		userRepo:  userRepo,
		generator: generator,
		notifier:  notifier,
		search:    search,
		sanitizer: bluemonday.UGCPolicy(),
		now:       time.Now,
	}
}

func (s *taskService) Create(ctx context.Context, creatorID uuid.UUID, req dto.CreateTaskRequest) (*entity.Task, error) {
	assignee, err := s.userRepo.FindByID(ctx, req.UserID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	task := &entity.Task{
		UserID:      assignee.ID,
		CreatedByID: creatorID,
		Title:       req.Title,
		Description: s.sanitizer.Sanitize(req.Description),
		Subject:     req.Subject,
		Answer:      req.Answer,
		DueDate:     req.DueDate,
		TaskPoints:  req.TaskPoints,
		Status:      entity.TaskStatusPending,
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}

	if s.search != nil {
		if err := s.search.IndexTask(task); err != nil {
			logger.Sugar().Warnw("failed to index task", "task_id", task.ID, "err", err)
		}
	}

	if s.notifier != nil {
		notif := &entity.Notification{
			UserID:     assignee.ID,
			ActorID:    creatorID,
			EntityID:   task.ID,
			EntityType: "task",
			Type:       entity.NotificationTaskAssigned,
			Message:    fmt.Sprintf("New task for you: %s (%d points, due %s)", task.Title, task.TaskPoints, task.DueDate.Format("Jan 2")),
		}
		if err := s.notifier.CreateNotification(ctx, notif); err != nil {
			logger.Sugar().Warnw("failed to send assignment notification", "user_id", assignee.ID, "err", err)
		}
	}

	return task, nil
}

func (s *taskService) Generate(ctx context.Context, creatorID uuid.UUID, req dto.GenerateTaskRequest) (*ai.TaskDraft, *entity.Task, error) {
	if s.generator == nil {
		return nil, nil, apperror.ErrGenerationFailed
	}

	ageHint := req.AgeHint
	if ageHint == 0 {
		ageHint = 10
	}

	draft, err := s.generator.Generate(ctx, req.Subject, ageHint)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperror.ErrGenerationFailed, err)
	}

	if !req.Assign {
		return draft, nil, nil
	}
	if req.UserID == uuid.Nil {
		return draft, nil, apperror.ErrInvalidInput
	}

	task, err := s.Create(ctx, creatorID, dto.CreateTaskRequest{
		UserID:      req.UserID,
		Title:       draft.Title,
		Description: draft.Description,
		Subject:     req.Subject,
		Answer:      draft.Answer,
		DueDate:     s.now().AddDate(0, 0, draft.DueInDays),
		TaskPoints:  draft.TaskPoints,
	})
	if err != nil {
		return draft, nil, err
	}

	return draft, task, nil
}

func (s *taskService) ListMine(ctx context.Context, userID uuid.UUID, status string) ([]entity.Task, error) {
	return s.repo.FindByUser(ctx, userID, status)
}

func (s *taskService) GetByID(ctx context.Context, userID uuid.UUID, taskID uuid.UUID, isAdmin bool) (*entity.Task, error) {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if task.UserID != userID && !isAdmin {
		return nil, apperror.ErrForbidden
	}

	return task, nil
}

func (s *taskService) Delete(ctx context.Context, taskID uuid.UUID) error {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}

	if err := s.repo.Delete(ctx, task.ID); err != nil {
		return err
	}

	if s.search != nil {
		if err := s.search.DeleteTask(task.ID.String()); err != nil {
			logger.Sugar().Warnw("failed to deindex deleted task", "task_id", task.ID, "err", err)
		}
	}

	return nil
}

func (s *taskService) Search(ctx context.Context, userID uuid.UUID, query string, limit int) ([]searchService.TaskDocument, error) {
	if s.search == nil {
		return []searchService.TaskDocument{}, nil
	}
	return s.search.SearchTasks(userID, query, limit)
}
