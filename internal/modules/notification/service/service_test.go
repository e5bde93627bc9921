package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/nandaraf/famtask/internal/entity"
	notifRepo "github.com/nandaraf/famtask/internal/modules/notification/repository"
	"github.com/nandaraf/famtask/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (NotificationService, *gorm.DB) {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&entity.User{}, &entity.Notification{}))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return NewNotificationService(notifRepo.NewNotificationRepository(db), nil), db
}

func notify(t *testing.T, svc NotificationService, userID uuid.UUID, kind string) *entity.Notification {
	t.Helper()

	n := &entity.Notification{
		UserID:     userID,
		ActorID:    userID,
		EntityID:   uuid.New(),
		EntityType: "task",
		Type:       kind,
		Message:    "hello",
	}
	require.NoError(t, svc.CreateNotification(context.Background(), n))
	return n
}

func TestCreateNotification_RejectsUnknownKind(t *testing.T) {
	svc, db := newTestService(t)

	err := svc.CreateNotification(context.Background(), &entity.Notification{
		UserID:  uuid.New(),
		ActorID: uuid.New(),
		Type:    "spam",
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	var count int64
	require.NoError(t, db.Model(&entity.Notification{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestGetNotifications_FiltersByKindAndUnread(t *testing.T) {
	svc, _ := newTestService(t)
	userID := uuid.New()

	notify(t, svc, userID, entity.NotificationTaskAssigned)
	graded := notify(t, svc, userID, entity.NotificationTaskGraded)
	notify(t, svc, userID, entity.NotificationTaskGraded)
	notify(t, svc, uuid.New(), entity.NotificationTaskGraded)

	got, err := svc.GetNotifications(userID, notifRepo.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = svc.GetNotifications(userID, notifRepo.ListFilter{Type: entity.NotificationTaskGraded})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	require.NoError(t, svc.MarkAsRead(graded.ID, userID))
	got, err = svc.GetNotifications(userID, notifRepo.ListFilter{UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = svc.GetNotifications(userID, notifRepo.ListFilter{Type: "bogus"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestMarkAsRead_ScopedToReceiver(t *testing.T) {
	svc, db := newTestService(t)
	userID := uuid.New()

	n := notify(t, svc, userID, entity.NotificationInteraction)

	// Someone else cannot mark it.
	err := svc.MarkAsRead(n.ID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	var stored entity.Notification
	require.NoError(t, db.First(&stored, "id = ?", n.ID).Error)
	assert.False(t, stored.IsRead)

	require.NoError(t, svc.MarkAsRead(n.ID, userID))
	require.NoError(t, db.First(&stored, "id = ?", n.ID).Error)
	assert.True(t, stored.IsRead)
}

func TestUnreadCountAndMarkAll(t *testing.T) {
	svc, _ := newTestService(t)
	userID := uuid.New()

	notify(t, svc, userID, entity.NotificationTaskAssigned)
	notify(t, svc, userID, entity.NotificationStreakMilestone)

	count, err := svc.UnreadCount(userID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	require.NoError(t, svc.MarkAllAsRead(userID))

	count, err = svc.UnreadCount(userID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}
