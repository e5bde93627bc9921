package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nandaraf/famtask/internal/ai"
	"github.com/nandaraf/famtask/internal/entity"
	searchService "github.com/nandaraf/famtask/internal/modules/search/service"
	"github.com/nandaraf/famtask/internal/modules/task/dto"
	taskRepo "github.com/nandaraf/famtask/internal/modules/task/repository"
	userRepo "github.com/nandaraf/famtask/internal/modules/user/repository"
	"github.com/nandaraf/famtask/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeGenerator struct {
	draft *ai.TaskDraft
	err   error
}

func (f *fakeGenerator) Generate(ctx context.Context, subject string, ageHint int) (*ai.TaskDraft, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.draft, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&entity.Role{}, &entity.User{}, &entity.Profile{}, &entity.Task{}))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func newService(t *testing.T, db *gorm.DB, generator ai.Generator) TaskService {
	t.Helper()
	return NewTaskService(taskRepo.NewTaskRepository(db), userRepo.NewUserRepository(db), generator, nil, nil)
}

func createUser(t *testing.T, db *gorm.DB) *entity.User {
	t.Helper()

	user := &entity.User{
		ID:           uuid.New(),
		Username:     "u-" + uuid.NewString()[:8],
		Email:        uuid.NewString()[:8] + "@test.local",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestCreate_SanitizesDescription(t *testing.T) {
	db := newTestDB(t)
	svc := newService(t, db, nil)

	admin := createUser(t, db)
	kid := createUser(t, db)

	task, err := svc.Create(context.Background(), admin.ID, dto.CreateTaskRequest{
		UserID:      kid.ID,
		Title:       "Read a chapter",
		Description: `Read chapter 3 <script>alert("x")</script> and summarize it.`,
		Subject:     "reading",
		DueDate:     time.Now().Add(48 * time.Hour),
		TaskPoints:  10,
	})
	require.NoError(t, err)

	assert.NotContains(t, task.Description, "<script>")
	assert.Contains(t, task.Description, "Read chapter 3")
	assert.Equal(t, kid.ID, task.UserID)
	assert.Equal(t, admin.ID, task.CreatedByID)
	assert.Equal(t, entity.TaskStatusPending, task.Status)
}

func TestCreate_UnknownAssignee(t *testing.T) {
	db := newTestDB(t)
	svc := newService(t, db, nil)

	admin := createUser(t, db)

	_, err := svc.Create(context.Background(), admin.ID, dto.CreateTaskRequest{
		UserID:     uuid.New(),
		Title:      "Ghost task",
		DueDate:    time.Now().Add(time.Hour),
		TaskPoints: 5,
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGenerate_DraftOnly(t *testing.T) {
	db := newTestDB(t)
	gen := &fakeGenerator{draft: &ai.TaskDraft{
		Title:       "Count to 100 by fives",
		Description: "Write the numbers you say.",
		Answer:      "5, 10, 15, ... 100",
		TaskPoints:  10,
		DueInDays:   2,
	}}
	svc := newService(t, db, gen)

	admin := createUser(t, db)

	draft, task, err := svc.Generate(context.Background(), admin.ID, dto.GenerateTaskRequest{
		Subject: "math",
		AgeHint: 7,
	})
	require.NoError(t, err)

	assert.Equal(t, "Count to 100 by fives", draft.Title)
	assert.Nil(t, task)

	var count int64
	require.NoError(t, db.Model(&entity.Task{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestGenerate_AssignsImmediately(t *testing.T) {
	db := newTestDB(t)
	gen := &fakeGenerator{draft: &ai.TaskDraft{
		Title:      "Spell 'necessary'",
		Answer:     "necessary",
		TaskPoints: 8,
		DueInDays:  3,
	}}
	svc := newService(t, db, gen)

	admin := createUser(t, db)
	kid := createUser(t, db)

	_, task, err := svc.Generate(context.Background(), admin.ID, dto.GenerateTaskRequest{
		UserID:  kid.ID,
		Subject: "spelling",
		AgeHint: 9,
		Assign:  true,
	})
	require.NoError(t, err)
	require.NotNil(t, task)

	assert.Equal(t, kid.ID, task.UserID)
	assert.Equal(t, 8, task.TaskPoints)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 3), task.DueDate, time.Minute)
}

func TestGenerate_NoGenerator(t *testing.T) {
	db := newTestDB(t)
	svc := newService(t, db, nil)

	admin := createUser(t, db)

	_, _, err := svc.Generate(context.Background(), admin.ID, dto.GenerateTaskRequest{Subject: "math"})
	assert.ErrorIs(t, err, apperror.ErrGenerationFailed)
}

func TestGetByID_OwnerAndAdminAccess(t *testing.T) {
	db := newTestDB(t)
	svc := newService(t, db, nil)

	admin := createUser(t, db)
	kid := createUser(t, db)
	other := createUser(t, db)

	task, err := svc.Create(context.Background(), admin.ID, dto.CreateTaskRequest{
		UserID:     kid.ID,
		Title:      "Tidy your room",
		DueDate:    time.Now().Add(time.Hour),
		TaskPoints: 5,
	})
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), kid.ID, task.ID, false)
	assert.NoError(t, err)

	_, err = svc.GetByID(context.Background(), admin.ID, task.ID, true)
	assert.NoError(t, err)

	_, err = svc.GetByID(context.Background(), other.ID, task.ID, false)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

type fakeIndex struct {
	indexed []string
	removed []string
}

func (f *fakeIndex) IndexTask(task *entity.Task) error {
	f.indexed = append(f.indexed, task.ID.String())
	return nil
}

func (f *fakeIndex) DeleteTask(id string) error {
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeIndex) SearchTasks(userID uuid.UUID, query string, limit int) ([]searchService.TaskDocument, error) {
	return nil, nil
}

func TestDelete_RemovesTaskAndDeindexes(t *testing.T) {
	db := newTestDB(t)
	index := &fakeIndex{}
	svc := NewTaskService(taskRepo.NewTaskRepository(db), userRepo.NewUserRepository(db), nil, nil, index)

	admin := createUser(t, db)
	kid := createUser(t, db)

	task, err := svc.Create(context.Background(), admin.ID, dto.CreateTaskRequest{
		UserID:     kid.ID,
		Title:      "Water the plants",
		DueDate:    time.Now().Add(time.Hour),
		TaskPoints: 5,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), task.ID))

	var count int64
	require.NoError(t, db.Model(&entity.Task{}).Where("id = ?", task.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
	assert.Equal(t, []string{task.ID.String()}, index.removed)
}

func TestDelete_UnknownTask(t *testing.T) {
	db := newTestDB(t)
	svc := newService(t, db, nil)

	err := svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestListMine_FiltersByStatus(t *testing.T) {
	db := newTestDB(t)
	svc := newService(t, db, nil)

	admin := createUser(t, db)
	kid := createUser(t, db)

	for i := 0; i < 2; i++ {
		_, err := svc.Create(context.Background(), admin.ID, dto.CreateTaskRequest{
			UserID:     kid.ID,
			Title:      "Task",
			DueDate:    time.Now().Add(time.Duration(i+1) * time.Hour),
			TaskPoints: 5,
		})
		require.NoError(t, err)
	}
	var first entity.Task
	require.NoError(t, db.Where("user_id = ?", kid.ID).Order("due_date asc").First(&first).Error)
	require.NoError(t, db.Model(&entity.Task{}).
		Where("id = ?", first.ID).
		Updates(map[string]interface{}{"status": entity.TaskStatusCompleted, "completed": true}).Error)

	pending, err := svc.ListMine(context.Background(), kid.ID, entity.TaskStatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	all, err := svc.ListMine(context.Background(), kid.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
