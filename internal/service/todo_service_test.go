package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Omarhersan/todoApp/internal/domain"
	"github.com/Omarhersan/todoApp/internal/enhancer"
)

type fakeTodoRepo struct {
	nextID uint
	todos  map[uint]*domain.Todo

	applyMatched int64
	applyCalls   int
}

func newFakeTodoRepo() *fakeTodoRepo {
	return &fakeTodoRepo{todos: map[uint]*domain.Todo{}, applyMatched: 1}
}

func (f *fakeTodoRepo) Create(_ context.Context, todo *domain.Todo) error {
	f.nextID++
	todo.ID = f.nextID
	clone := *todo
	f.todos[todo.ID] = &clone
	return nil
}

func (f *fakeTodoRepo) FindByID(_ context.Context, userID, id uint) (*domain.Todo, error) {
	todo, ok := f.todos[id]
	if !ok || todo.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *todo
	return &clone, nil
}

func (f *fakeTodoRepo) ListByUser(_ context.Context, userID uint) ([]domain.Todo, error) {
	var out []domain.Todo
	for _, todo := range f.todos {
		if todo.UserID == userID {
			out = append(out, *todo)
		}
	}
	return out, nil
}

func (f *fakeTodoRepo) Update(_ context.Context, todo *domain.Todo) error {
	clone := *todo
	f.todos[todo.ID] = &clone
	return nil
}

func (f *fakeTodoRepo) Delete(_ context.Context, userID, id uint) error {
	if todo, ok := f.todos[id]; ok && todo.UserID == userID {
		delete(f.todos, id)
	}
	return nil
}

func (f *fakeTodoRepo) ListPending(_ context.Context) ([]domain.Todo, error) {
	var out []domain.Todo
	for _, todo := range f.todos {
		if todo.EnhancementStatus == domain.EnhancementPending {
			out = append(out, *todo)
		}
	}
	return out, nil
}

func (f *fakeTodoRepo) SaveEnhancement(_ context.Context, id uint, enhancedTitle string, steps []string) (int64, error) {
	todo, ok := f.todos[id]
	if !ok || todo.EnhancementStatus != domain.EnhancementPending {
		return 0, nil
	}
	todo.EnhancedTitle = &enhancedTitle
	todo.Steps = steps
	todo.EnhancementStatus = domain.EnhancementDone
	return 1, nil
}

func (f *fakeTodoRepo) MarkEnhancementFailed(_ context.Context, id uint) (int64, error) {
	todo, ok := f.todos[id]
	if !ok || todo.EnhancementStatus != domain.EnhancementPending {
		return 0, nil
	}
	todo.EnhancementStatus = domain.EnhancementFailed
	return 1, nil
}

func (f *fakeTodoRepo) ApplyEnhancement(_ context.Context, id uint, enhancedTitle string, steps []string) (int64, error) {
	f.applyCalls++
	if todo, ok := f.todos[id]; ok {
		todo.EnhancedTitle = &enhancedTitle
		todo.Steps = steps
		todo.EnhancementStatus = domain.EnhancementDone
		return 1, nil
	}
	return f.applyMatched, nil
}

type fakeDispatcher struct {
	calls []uint
}

func (f *fakeDispatcher) Dispatch(todoID uint, _ string) {
	f.calls = append(f.calls, todoID)
}

type fakeEnhancer struct {
	calls int
}

func (f *fakeEnhancer) Enhance(_ context.Context, title string) enhancer.Enhancement {
	f.calls++
	return enhancer.Enhancement{
		EnhancedTitle: enhancer.EnhanceTitleFallback(title),
		Steps:         enhancer.GenerateStepsFallback(title),
	}
}

func newTestTodoService() (TodoService, *fakeTodoRepo, *fakeDispatcher, *fakeEnhancer) {
	repo := newFakeTodoRepo()
	dispatcher := &fakeDispatcher{}
	enh := &fakeEnhancer{}
	return NewTodoService(repo, dispatcher, enh, nil), repo, dispatcher, enh
}

func TestCreateTodoStartsPending(t *testing.T) {
	svc, _, dispatcher, _ := newTestTodoService()

	todo, err := svc.Create(context.Background(), 1, CreateTodoRequest{Title: "buy milk"}, "")
	require.NoError(t, err)
	assert.Equal(t, domain.EnhancementPending, todo.EnhancementStatus)
	assert.Nil(t, todo.CompletedAt)
	assert.False(t, todo.IsCompleted)
	assert.Equal(t, domain.SourceApp, todo.Source)
	assert.Equal(t, []uint{todo.ID}, dispatcher.calls, "create must dispatch exactly one enhancement")
}

func TestCreateTodoRejectsEmptyTitle(t *testing.T) {
	svc, _, dispatcher, _ := newTestTodoService()

	_, err := svc.Create(context.Background(), 1, CreateTodoRequest{Title: "   "}, "")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, dispatcher.calls)
}

func TestCreateTodoExternalSource(t *testing.T) {
	svc, _, _, _ := newTestTodoService()

	todo, err := svc.Create(context.Background(), 1, CreateTodoRequest{Title: "buy milk"}, domain.SourceExternalAPI)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceExternalAPI, todo.Source)
}

func TestCompletedAtDerivation(t *testing.T) {
	svc, _, _, _ := newTestTodoService()
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateTodoRequest{Title: "buy milk"}, "")
	require.NoError(t, err)
	require.Nil(t, created.CompletedAt)

	completed := true
	updated, err := svc.Update(ctx, 1, created.ID, UpdateTodoRequest{IsCompleted: &completed})
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted)
	require.NotNil(t, updated.CompletedAt)

	uncompleted := false
	updated, err = svc.Update(ctx, 1, created.ID, UpdateTodoRequest{IsCompleted: &uncompleted})
	require.NoError(t, err)
	assert.False(t, updated.IsCompleted)
	assert.Nil(t, updated.CompletedAt, "round trip must return to a null completed_at")
}

func TestUserIsolation(t *testing.T) {
	svc, _, _, _ := newTestTodoService()
	ctx := context.Background()

	mine, err := svc.Create(ctx, 1, CreateTodoRequest{Title: "buy milk"}, "")
	require.NoError(t, err)

	_, err = svc.Get(ctx, 2, mine.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	completed := true
	_, err = svc.Update(ctx, 2, mine.ID, UpdateTodoRequest{IsCompleted: &completed})
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Delete(ctx, 2, mine.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Still intact for the owner.
	got, err := svc.Get(ctx, 1, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "buy milk", got.Title)
}

func TestManualEnhancementEdit(t *testing.T) {
	svc, _, _, _ := newTestTodoService()
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateTodoRequest{Title: "buy milk"}, "")
	require.NoError(t, err)

	title := "My own title"
	steps := []string{"one", "two"}
	updated, err := svc.Update(ctx, 1, created.ID, UpdateTodoRequest{EnhancedTitle: &title, Steps: &steps})
	require.NoError(t, err)
	require.NotNil(t, updated.EnhancedTitle)
	assert.Equal(t, "My own title", *updated.EnhancedTitle)
	assert.Equal(t, steps, updated.Steps)
}

func TestStatusEndpointShape(t *testing.T) {
	svc, repo, _, _ := newTestTodoService()
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateTodoRequest{Title: "buy milk"}, "")
	require.NoError(t, err)

	status, err := svc.Status(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EnhancementPending, status.EnhancementStatus)

	_, err = repo.SaveEnhancement(ctx, created.ID, "Buy milk ✨", []string{"a", "b", "c"})
	require.NoError(t, err)

	status, err = svc.Status(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EnhancementDone, status.EnhancementStatus)
	require.NotNil(t, status.EnhancedTitle)
	assert.Equal(t, "Buy milk ✨", *status.EnhancedTitle)

	_, err = svc.Status(ctx, 2, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplyEnhancementValidation(t *testing.T) {
	svc, _, _, enh := newTestTodoService()
	ctx := context.Background()

	err := svc.ApplyEnhancement(ctx, EnhanceRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	err = svc.ApplyEnhancement(ctx, EnhanceRequest{TaskID: 1})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, enh.calls)
}

func TestApplyEnhancementDirectWrite(t *testing.T) {
	svc, repo, _, enh := newTestTodoService()
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateTodoRequest{Title: "buy milk"}, "")
	require.NoError(t, err)

	err = svc.ApplyEnhancement(ctx, EnhanceRequest{
		TaskID:        created.ID,
		EnhancedTitle: "From automation",
		Steps:         []string{"a"},
	})
	require.NoError(t, err)
	assert.Zero(t, enh.calls, "supplied enhancement must not re-invoke the enhancer")
	assert.Equal(t, 1, repo.applyCalls)

	got, err := svc.Get(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "From automation", *got.EnhancedTitle)
	assert.Equal(t, domain.EnhancementDone, got.EnhancementStatus)
}

func TestApplyEnhancementComputesFromTitle(t *testing.T) {
	svc, _, _, enh := newTestTodoService()
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateTodoRequest{Title: "buy milk"}, "")
	require.NoError(t, err)

	err = svc.ApplyEnhancement(ctx, EnhanceRequest{TaskID: created.ID, Title: "buy milk"})
	require.NoError(t, err)
	assert.Equal(t, 1, enh.calls)

	got, err := svc.Get(ctx, 1, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.EnhancedTitle)
	assert.Equal(t, "Buy milk ✨", *got.EnhancedTitle)
}

func TestApplyEnhancementUnknownTodo(t *testing.T) {
	svc, repo, _, _ := newTestTodoService()
	repo.applyMatched = 0

	err := svc.ApplyEnhancement(context.Background(), EnhanceRequest{TaskID: 99, EnhancedTitle: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}
