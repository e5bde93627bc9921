package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nandaraf/famtask/internal/entity"
	"github.com/nandaraf/famtask/internal/modules/interaction/dto"
	interactionRepo "github.com/nandaraf/famtask/internal/modules/interaction/repository"
	notifService "github.com/nandaraf/famtask/internal/modules/notification/service"
	"github.com/nandaraf/famtask/pkg/apperror"
	"github.com/nandaraf/famtask/pkg/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type InteractionService interface {
	Create(ctx context.Context, giverID uuid.UUID, req dto.CreateInteractionRequest) (*dto.InteractionResponse, error)
	ListReceived(ctx context.Context, receiverID uuid.UUID, limit int) ([]entity.Interaction, error)
}

// RateLimiter holds the one-interaction-per-ordered-pair window. Acquire
// reports whether the pair is currently allowed and claims the slot; Release
// gives the slot back when the interaction was not committed.
type RateLimiter interface {
	Acquire(ctx context.Context, giverID, receiverID uuid.UUID) (bool, error)
	Release(ctx context.Context, giverID, receiverID uuid.UUID)
}

type interactionService struct {
	repo     interactionRepo.InteractionRepository
	limiter  RateLimiter
	notifier notifService.NotificationService
}

// NewInteractionService wires the service; a nil limiter disables rate
// limiting (dev mode without Redis).
func NewInteractionService(repo interactionRepo.InteractionRepository, limiter RateLimiter, notifier notifService.NotificationService) InteractionService {
	return &interactionService{
		repo:     repo,
		limiter:  limiter,
		notifier: notifier,
	}
}

func (s *interactionService) Create(ctx context.Context, giverID uuid.UUID, req dto.CreateInteractionRequest) (*dto.InteractionResponse, error) {
	if giverID == req.ReceiverID {
		return nil, apperror.ErrBadRequest
	}

	// One interaction per ordered (giver, receiver) pair per rolling window
	if s.limiter != nil {
		allowed, err := s.limiter.Acquire(ctx, giverID, req.ReceiverID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, apperror.ErrRateLimitExceeded
		}
	}

	interaction := &entity.Interaction{
		GiverID:    giverID,
		ReceiverID: req.ReceiverID,
		Kind:       req.Kind,
	}

	points, err := s.repo.CreateWithPoints(ctx, interaction)
	if err != nil {
		// Let the next attempt through if nothing was committed
		if s.limiter != nil {
			s.limiter.Release(ctx, giverID, req.ReceiverID)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if s.notifier != nil {
		verb := "liked"
		if interaction.Kind == entity.InteractionDislike {
			verb = "disliked"
		}
		notif := &entity.Notification{
			UserID:     req.ReceiverID,
			ActorID:    giverID,
			EntityID:   interaction.ID,
			EntityType: "interaction",
			Type:       entity.NotificationInteraction,
			Message:    fmt.Sprintf("Someone %s your work (%+d points)", verb, interaction.PointsDelta()),
		}
		if err := s.notifier.CreateNotification(ctx, notif); err != nil {
			logger.Sugar().Warnw("failed to send interaction notification", "receiver_id", req.ReceiverID, "err", err)
		}
	}

	return &dto.InteractionResponse{
		ID:             interaction.ID,
		GiverID:        interaction.GiverID,
		ReceiverID:     interaction.ReceiverID,
		Kind:           interaction.Kind,
		ReceiverPoints: points,
		CreatedAt:      interaction.CreatedAt,
	}, nil
}

func (s *interactionService) ListReceived(ctx context.Context, receiverID uuid.UUID, limit int) ([]entity.Interaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.FindReceived(ctx, receiverID, limit)
}

type redisRateLimiter struct {
	client *redis.Client
	window time.Duration
}

// NewRedisRateLimiter backs the pair window with a Redis SetNX key whose TTL
// is the window. Returns nil when the client is nil so the caller can wire
// it straight through.
func NewRedisRateLimiter(client *redis.Client, window time.Duration) RateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &redisRateLimiter{client: client, window: window}
}

func (l *redisRateLimiter) Acquire(ctx context.Context, giverID, receiverID uuid.UUID) (bool, error) {
	key := rateLimitKey(giverID, receiverID)
	wasSet, err := l.client.SetNX(ctx, key, "locked", l.window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	return wasSet, nil
}

func (l *redisRateLimiter) Release(ctx context.Context, giverID, receiverID uuid.UUID) {
	l.client.Del(ctx, rateLimitKey(giverID, receiverID))
}

func rateLimitKey(giverID, receiverID uuid.UUID) string {
	return fmt.Sprintf("rate_limit:interaction:%s:%s", giverID.String(), receiverID.String())
}
