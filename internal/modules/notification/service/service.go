package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nandaraf/famtask/internal/entity"
	notifRepo "github.com/nandaraf/famtask/internal/modules/notification/repository"
	"github.com/nandaraf/famtask/pkg/apperror"
	"github.com/nandaraf/famtask/pkg/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var knownKinds = map[string]struct{}{
	entity.NotificationTaskAssigned:    {},
	entity.NotificationTaskGraded:      {},
	entity.NotificationTaskMissed:      {},
	entity.NotificationInteraction:     {},
	entity.NotificationStreakMilestone: {},
}

type NotificationService interface {
	CreateNotification(ctx context.Context, notification *entity.Notification) error
	GetNotifications(userID uuid.UUID, filter notifRepo.ListFilter) ([]entity.Notification, error)
	MarkAsRead(id, userID uuid.UUID) error
	MarkAllAsRead(userID uuid.UUID) error
	UnreadCount(userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
	}
}

// ChannelFor is the Redis pub/sub channel carrying a user's live
// notifications. The websocket relay subscribes to the same name.
func ChannelFor(userID string) string {
	return fmt.Sprintf("user_notifications:%s", userID)
}

func (s *notificationService) CreateNotification(ctx context.Context, notification *entity.Notification) error {
	if _, ok := knownKinds[notification.Type]; !ok {
		return fmt.Errorf("%w: unknown notification type %q", apperror.ErrInvalidInput, notification.Type)
	}

	if err := s.repo.Create(notification); err != nil {
		return err
	}

	// Fan out over Redis so connected websocket clients get it live. The
	// notification is already persisted at this point, so a publish failure
	// only costs the live push.
	if s.redisClient != nil {
		payload, err := json.Marshal(notification)
		if err != nil {
			logger.Sugar().Warnw("failed to encode notification for fan-out", "notification_id", notification.ID, "err", err)
			return nil
		}
		channel := ChannelFor(notification.UserID.String())
		if err := s.redisClient.Publish(ctx, channel, payload).Err(); err != nil {
			logger.Sugar().Warnw("failed to publish notification", "channel", channel, "err", err)
		}
	}

	return nil
}

func (s *notificationService) GetNotifications(userID uuid.UUID, filter notifRepo.ListFilter) ([]entity.Notification, error) {
	if filter.Type != "" {
		if _, ok := knownKinds[filter.Type]; !ok {
			return nil, fmt.Errorf("%w: unknown notification type %q", apperror.ErrInvalidInput, filter.Type)
		}
	}
	return s.repo.ListByUser(userID, filter)
}

func (s *notificationService) MarkAsRead(id, userID uuid.UUID) error {
	if err := s.repo.MarkAsRead(id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(userID)
}

func (s *notificationService) UnreadCount(userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(userID)
}
