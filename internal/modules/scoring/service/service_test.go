package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nandaraf/famtask/internal/entity"
	scoringRepo "github.com/nandaraf/famtask/internal/modules/scoring/repository"
	"github.com/nandaraf/famtask/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared in-memory database so gorm's pooled connections all
	// see the same data, isolated per test by name.
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&entity.Role{},
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

func createUser(t *testing.T, db *gorm.DB, points, streak int, lastStreak *time.Time) *entity.User {
	t.Helper()

	user := &entity.User{
		ID:           uuid.New(),
		Username:     "u-" + uuid.NewString()[:8],
		Email:        uuid.NewString()[:8] + "@test.local",
		PasswordHash: "x",
		Points:       points,
		Streak:       streak,
		LastStreak:   lastStreak,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTask(t *testing.T, db *gorm.DB, userID uuid.UUID, points int, due time.Time) *entity.Task {
	t.Helper()

	task := &entity.Task{
		UserID:     userID,
		Title:      "7 x 8",
		Answer:     "56",
		DueDate:    due,
		TaskPoints: points,
		Status:     entity.TaskStatusPending,
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

func TestApplySubmission_CorrectAnswerAwardsPointsAndStreak(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(scoringRepo.NewScoreRepository(db))

	today := day("2024-01-11")
	user := createUser(t, db, 100, 5, dayPtr("2024-01-10"))
	task := createTask(t, db, user.ID, 10, day("2024-01-12"))

	outcome, err := svc.ApplySubmission(context.Background(), &entity.Submission{
		TaskID:  task.ID,
		UserID:  user.ID,
		Answer:  "56",
		Correct: true,
	}, today)
	require.NoError(t, err)

	assert.True(t, outcome.Correct)
	assert.Equal(t, 10, outcome.PointsAwarded)
	assert.Equal(t, 110, outcome.Points)
	assert.Equal(t, 6, outcome.Streak)
	assert.True(t, outcome.StreakExtended)
	assert.Equal(t, entity.TaskStatusCompleted, outcome.TaskStatus)
	assert.Equal(t, 1, outcome.Attempts)

	var stored entity.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.Equal(t, 110, stored.Points)
	assert.Equal(t, 6, stored.Streak)

	var storedTask entity.Task
	require.NoError(t, db.First(&storedTask, "id = ?", task.ID).Error)
	assert.True(t, storedTask.Completed)
	assert.Equal(t, entity.TaskStatusCompleted, storedTask.Status)
	assert.Equal(t, 1, storedTask.Attempts)

	var submissions int64
	require.NoError(t, db.Model(&entity.Submission{}).Where("task_id = ?", task.ID).Count(&submissions).Error)
	assert.EqualValues(t, 1, submissions)
}

func TestApplySubmission_GapResetsStreak(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(scoringRepo.NewScoreRepository(db))

	user := createUser(t, db, 0, 5, dayPtr("2024-01-10"))
	task := createTask(t, db, user.ID, 10, day("2024-01-14"))

	outcome, err := svc.ApplySubmission(context.Background(), &entity.Submission{
		TaskID:  task.ID,
		UserID:  user.ID,
		Correct: true,
		Answer:  "56",
	}, day("2024-01-13"))
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.Streak)
}

func TestApplySubmission_SecondCompletionSameDayKeepsStreak(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(scoringRepo.NewScoreRepository(db))

	today := day("2024-01-11")
	user := createUser(t, db, 0, 2, dayPtr("2024-01-10"))
	first := createTask(t, db, user.ID, 10, day("2024-01-12"))
	second := createTask(t, db, user.ID, 20, day("2024-01-12"))

	_, err := svc.ApplySubmission(context.Background(), &entity.Submission{
		TaskID: first.ID, UserID: user.ID, Correct: true, Answer: "a",
	}, today)
	require.NoError(t, err)

	outcome, err := svc.ApplySubmission(context.Background(), &entity.Submission{
		TaskID: second.ID, UserID: user.ID, Correct: true, Answer: "b",
	}, today)
	require.NoError(t, err)

	// Points still accrue, the streak only moved once.
	assert.Equal(t, 30, outcome.Points)
	assert.Equal(t, 3, outcome.Streak)
	assert.False(t, outcome.StreakExtended)

	var markers int64
	require.NoError(t, db.Model(&entity.DailyCompletion{}).Where("user_id = ?", user.ID).Count(&markers).Error)
	assert.EqualValues(t, 1, markers)
}

func TestApplySubmission_WrongAnswerRecordsAttemptOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(scoringRepo.NewScoreRepository(db))

	user := createUser(t, db, 50, 3, dayPtr("2024-01-10"))
	task := createTask(t, db, user.ID, 10, day("2024-01-12"))

	outcome, err := svc.ApplySubmission(context.Background(), &entity.Submission{
		TaskID:   task.ID,
		UserID:   user.ID,
		Answer:   "54",
		Correct:  false,
		Feedback: "Close, try again!",
	}, day("2024-01-11"))
	require.NoError(t, err)

	assert.False(t, outcome.Correct)
	assert.Equal(t, 0, outcome.PointsAwarded)
	assert.Equal(t, 50, outcome.Points)
	assert.Equal(t, 3, outcome.Streak)
	assert.Equal(t, entity.TaskStatusPending, outcome.TaskStatus)

	var storedTask entity.Task
	require.NoError(t, db.First(&storedTask, "id = ?", task.ID).Error)
	assert.False(t, storedTask.Completed)
	assert.Equal(t, 1, storedTask.Attempts)
}

func TestApplySubmission_ClosedTaskRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(scoringRepo.NewScoreRepository(db))

	user := createUser(t, db, 0, 0, nil)
	task := createTask(t, db, user.ID, 10, day("2024-01-12"))
	require.NoError(t, db.Model(&entity.Task{}).Where("id = ?", task.ID).
		Updates(map[string]interface{}{"completed": true, "status": entity.TaskStatusCompleted}).Error)

	_, err := svc.ApplySubmission(context.Background(), &entity.Submission{
		TaskID: task.ID, UserID: user.ID, Correct: true, Answer: "56",
	}, day("2024-01-11"))
	assert.ErrorIs(t, err, apperror.ErrTaskClosed)
}

func TestApplySubmission_ForeignTaskRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(scoringRepo.NewScoreRepository(db))

	owner := createUser(t, db, 0, 0, nil)
	intruder := createUser(t, db, 0, 0, nil)
	task := createTask(t, db, owner.ID, 10, day("2024-01-12"))

	_, err := svc.ApplySubmission(context.Background(), &entity.Submission{
		TaskID: task.ID, UserID: intruder.ID, Correct: true, Answer: "56",
	}, day("2024-01-11"))
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestCheckOverdueTasks_PenalizesHalfPointsOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(scoringRepo.NewScoreRepository(db))

	today := day("2024-01-11")
	user := createUser(t, db, 100, 0, nil)
	overdue := createTask(t, db, user.ID, 10, day("2024-01-05"))
	alsoOverdue := createTask(t, db, user.ID, 25, day("2024-01-08"))
	createTask(t, db, user.ID, 10, day("2024-01-20")) // not due yet

	outcome, err := svc.CheckOverdueTasks(context.Background(), user.ID, today)
	require.NoError(t, err)

	// 10/2 + 25/2 with integer division.
	assert.Equal(t, 17, outcome.TotalPenalty)
	assert.Equal(t, 83, outcome.Points)
	assert.ElementsMatch(t, []uuid.UUID{overdue.ID, alsoOverdue.ID}, outcome.MissedTaskIDs)

	var stored entity.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.Equal(t, 83, stored.Points)

	var storedTask entity.Task
	require.NoError(t, db.First(&storedTask, "id = ?", overdue.ID).Error)
	assert.Equal(t, entity.TaskStatusMissed, storedTask.Status)
	assert.True(t, storedTask.PenaltyApplied)

	// Re-running the sweep must not deduct again.
	again, err := svc.CheckOverdueTasks(context.Background(), user.ID, today)
	require.NoError(t, err)
	assert.Empty(t, again.MissedTaskIDs)
	assert.Equal(t, 0, again.TotalPenalty)
	assert.Equal(t, 83, again.Points)
}

func TestCheckOverdueTasks_CompletedTasksAreNotPenalized(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(scoringRepo.NewScoreRepository(db))

	user := createUser(t, db, 100, 0, nil)
	task := createTask(t, db, user.ID, 10, day("2024-01-05"))
	require.NoError(t, db.Model(&entity.Task{}).Where("id = ?", task.ID).
		Updates(map[string]interface{}{"completed": true, "status": entity.TaskStatusCompleted}).Error)

	outcome, err := svc.CheckOverdueTasks(context.Background(), user.ID, day("2024-01-11"))
	require.NoError(t, err)

	assert.Empty(t, outcome.MissedTaskIDs)
	assert.Equal(t, 100, outcome.Points)
}

func TestCheckOverdueTasks_PointsMayGoNegative(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(scoringRepo.NewScoreRepository(db))

	user := createUser(t, db, 3, 0, nil)
	createTask(t, db, user.ID, 20, day("2024-01-05"))

	outcome, err := svc.CheckOverdueTasks(context.Background(), user.ID, day("2024-01-11"))
	require.NoError(t, err)

	assert.Equal(t, 10, outcome.TotalPenalty)
	assert.Equal(t, -7, outcome.Points)

	var stored entity.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.Equal(t, -7, stored.Points)
}

func TestCheckOverdueTasks_UnknownUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(scoringRepo.NewScoreRepository(db))

	_, err := svc.CheckOverdueTasks(context.Background(), uuid.New(), day("2024-01-11"))
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestAddPoints(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(scoringRepo.NewScoreRepository(db))

	user := createUser(t, db, 10, 0, nil)

	points, err := svc.AddPoints(context.Background(), user.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 12, points)

	points, err = svc.AddPoints(context.Background(), user.ID, -2)
	require.NoError(t, err)
	assert.Equal(t, 10, points)
}
