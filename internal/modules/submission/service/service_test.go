package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nandaraf/famtask/internal/ai"
	"github.com/nandaraf/famtask/internal/entity"
	notifRepo "github.com/nandaraf/famtask/internal/modules/notification/repository"
	scoringRepo "github.com/nandaraf/famtask/internal/modules/scoring/repository"
	scoring "github.com/nandaraf/famtask/internal/modules/scoring/service"
	subRepo "github.com/nandaraf/famtask/internal/modules/submission/repository"
	taskRepo "github.com/nandaraf/famtask/internal/modules/task/repository"
	"github.com/nandaraf/famtask/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeGrader struct {
	verdict *ai.Verdict
	err     error
	calls   int
}

func (f *fakeGrader) Grade(ctx context.Context, task *entity.Task, answer string) (*ai.Verdict, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.verdict, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&entity.User{},
		&entity.Task{},
		&entity.Submission{},
		&entity.DailyCompletion{},
	))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func newService(t *testing.T, db *gorm.DB, grader ai.Grader) SubmissionService {
	t.Helper()

	svc := NewSubmissionService(
		subRepo.NewSubmissionRepository(db),
		taskRepo.NewTaskRepository(db),
		scoring.NewService(scoringRepo.NewScoreRepository(db)),
		grader,
		nil,
		nil,
	)
	return svc
}

func seedUserAndTask(t *testing.T, db *gorm.DB) (*entity.User, *entity.Task) {
	t.Helper()

	user := &entity.User{
		ID:           uuid.New(),
		Username:     "u-" + uuid.NewString()[:8],
		Email:        uuid.NewString()[:8] + "@test.local",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(user).Error)

	task := &entity.Task{
		UserID:     user.ID,
		Title:      "Capital of France",
		Answer:     "Paris",
		DueDate:    time.Now().Add(48 * time.Hour),
		TaskPoints: 15,
		Status:     entity.TaskStatusPending,
	}
	require.NoError(t, db.Create(task).Error)

	return user, task
}

func TestSubmit_CorrectAnswer(t *testing.T) {
	db := newTestDB(t)
	grader := &fakeGrader{verdict: &ai.Verdict{Correct: true, Feedback: "Well done!"}}
	svc := newService(t, db, grader)

	user, task := seedUserAndTask(t, db)

	outcome, err := svc.Submit(context.Background(), user.ID, task.ID, "Paris")
	require.NoError(t, err)

	assert.True(t, outcome.Correct)
	assert.Equal(t, "Well done!", outcome.Feedback)
	assert.Equal(t, 15, outcome.PointsAwarded)
	assert.Equal(t, 1, grader.calls)

	subs, err := svc.ListByTask(context.Background(), user.ID, task.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "Paris", subs[0].Answer)
	assert.True(t, subs[0].Correct)
}

func TestSubmit_WrongAnswerAllowsRetry(t *testing.T) {
	db := newTestDB(t)
	grader := &fakeGrader{verdict: &ai.Verdict{Correct: false, Feedback: "Not quite."}}
	svc := newService(t, db, grader)

	user, task := seedUserAndTask(t, db)

	outcome, err := svc.Submit(context.Background(), user.ID, task.ID, "London")
	require.NoError(t, err)
	assert.False(t, outcome.Correct)
	assert.Equal(t, 1, outcome.Attempts)

	// The task stays open, a second try goes through.
	grader.verdict = &ai.Verdict{Correct: true, Feedback: "There you go."}
	outcome, err = svc.Submit(context.Background(), user.ID, task.ID, "Paris")
	require.NoError(t, err)
	assert.True(t, outcome.Correct)
	assert.Equal(t, 2, outcome.Attempts)

	subs, err := svc.ListByTask(context.Background(), user.ID, task.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 2)
}

func TestSubmit_GradingFailureRecordsNothing(t *testing.T) {
	db := newTestDB(t)
	grader := &fakeGrader{err: errors.New("model timeout")}
	svc := newService(t, db, grader)

	user, task := seedUserAndTask(t, db)

	_, err := svc.Submit(context.Background(), user.ID, task.ID, "Paris")
	assert.ErrorIs(t, err, apperror.ErrGradingFailed)

	var attempts entity.Task
	require.NoError(t, db.First(&attempts, "id = ?", task.ID).Error)
	assert.Equal(t, 0, attempts.Attempts)

	var count int64
	require.NoError(t, db.Model(&entity.Submission{}).Where("task_id = ?", task.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestSubmit_CompletedTaskRejectedBeforeGrading(t *testing.T) {
	db := newTestDB(t)
	grader := &fakeGrader{verdict: &ai.Verdict{Correct: true}}
	svc := newService(t, db, grader)

	user, task := seedUserAndTask(t, db)

	_, err := svc.Submit(context.Background(), user.ID, task.ID, "Paris")
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), user.ID, task.ID, "Paris")
	assert.ErrorIs(t, err, apperror.ErrTaskClosed)
	assert.Equal(t, 1, grader.calls)
}

type fakeNotifier struct {
	sent []string
}

func (f *fakeNotifier) CreateNotification(ctx context.Context, n *entity.Notification) error {
	f.sent = append(f.sent, n.Type)
	return nil
}

func (f *fakeNotifier) GetNotifications(userID uuid.UUID, filter notifRepo.ListFilter) ([]entity.Notification, error) {
	return nil, nil
}

func (f *fakeNotifier) MarkAsRead(id, userID uuid.UUID) error { return nil }

func (f *fakeNotifier) MarkAllAsRead(userID uuid.UUID) error { return nil }

func (f *fakeNotifier) UnreadCount(userID uuid.UUID) (int64, error) { return 0, nil }

func TestSubmit_SeventhDayEarnsMilestone(t *testing.T) {
	db := newTestDB(t)
	grader := &fakeGrader{verdict: &ai.Verdict{Correct: true, Feedback: "Well done!"}}
	notifier := &fakeNotifier{}

	svc := NewSubmissionService(
		subRepo.NewSubmissionRepository(db),
		taskRepo.NewTaskRepository(db),
		scoring.NewService(scoringRepo.NewScoreRepository(db)),
		grader,
		notifier,
		nil,
	)

	user, task := seedUserAndTask(t, db)

	yesterday := time.Now().AddDate(0, 0, -1)
	require.NoError(t, db.Model(&entity.User{}).Where("id = ?", user.ID).
		Updates(map[string]interface{}{"streak": 6, "last_streak": yesterday}).Error)

	outcome, err := svc.Submit(context.Background(), user.ID, task.ID, "Paris")
	require.NoError(t, err)
	require.True(t, outcome.StreakExtended)
	assert.Equal(t, 7, outcome.Streak)

	assert.Equal(t, []string{entity.NotificationTaskGraded, entity.NotificationStreakMilestone}, notifier.sent)
}

func TestSubmit_RegularDayNoMilestone(t *testing.T) {
	db := newTestDB(t)
	grader := &fakeGrader{verdict: &ai.Verdict{Correct: true}}
	notifier := &fakeNotifier{}

	svc := NewSubmissionService(
		subRepo.NewSubmissionRepository(db),
		taskRepo.NewTaskRepository(db),
		scoring.NewService(scoringRepo.NewScoreRepository(db)),
		grader,
		notifier,
		nil,
	)

	user, task := seedUserAndTask(t, db)

	_, err := svc.Submit(context.Background(), user.ID, task.ID, "Paris")
	require.NoError(t, err)

	assert.Equal(t, []string{entity.NotificationTaskGraded}, notifier.sent)
}

func TestSubmit_ForeignTaskRejected(t *testing.T) {
	db := newTestDB(t)
	grader := &fakeGrader{verdict: &ai.Verdict{Correct: true}}
	svc := newService(t, db, grader)

	_, task := seedUserAndTask(t, db)

	intruder := &entity.User{
		ID:           uuid.New(),
		Username:     "intruder",
		Email:        "intruder@test.local",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(intruder).Error)

	_, err := svc.Submit(context.Background(), intruder.ID, task.ID, "Paris")
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.Equal(t, 0, grader.calls)
}
