package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Omarhersan/todoApp/internal/domain"
)

// TodoRepository defines todo data operations. Every read or mutation of an
// existing row is scoped by the owning user id.
type TodoRepository interface {
	Create(ctx context.Context, todo *domain.Todo) error
	FindByID(ctx context.Context, userID, id uint) (*domain.Todo, error)
	ListByUser(ctx context.Context, userID uint) ([]domain.Todo, error)
	Update(ctx context.Context, todo *domain.Todo) error
	Delete(ctx context.Context, userID, id uint) error

	// ListPending returns all todos still awaiting enhancement, across users.
	// Used by automation callers that drain the enhancement backlog.
	ListPending(ctx context.Context) ([]domain.Todo, error)

	// SaveEnhancement records a successful enhancement. The write is guarded
	// by enhancement_status = pending so a terminal row is never rewritten;
	// the returned count is 0 when the guard did not match.
	SaveEnhancement(ctx context.Context, id uint, enhancedTitle string, steps []string) (int64, error)

	// MarkEnhancementFailed moves a pending todo to the failed status.
	MarkEnhancementFailed(ctx context.Context, id uint) (int64, error)

	// ApplyEnhancement writes an enhancement unconditionally, for the manual
	// and external trigger paths. Returns the number of rows matched.
	ApplyEnhancement(ctx context.Context, id uint, enhancedTitle string, steps []string) (int64, error)
}

type gormTodoRepository struct {
	db *gorm.DB
}

// NewGormTodoRepository creates a new GORM todo repository.
func NewGormTodoRepository(db *gorm.DB) TodoRepository {
	return &gormTodoRepository{db: db}
}

func (r *gormTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	return r.db.WithContext(ctx).Create(todo).Error
}

func (r *gormTodoRepository) FindByID(ctx context.Context, userID, id uint) (*domain.Todo, error) {
	var todo domain.Todo
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&todo, id)
	if result.Error != nil {
		return nil, result.Error
	}
	return &todo, nil
}

func (r *gormTodoRepository) ListByUser(ctx context.Context, userID uint) ([]domain.Todo, error) {
	var todos []domain.Todo
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&todos)
	if result.Error != nil {
		return nil, result.Error
	}
	return todos, nil
}

func (r *gormTodoRepository) Update(ctx context.Context, todo *domain.Todo) error {
	return r.db.WithContext(ctx).Save(todo).Error
}

func (r *gormTodoRepository) Delete(ctx context.Context, userID, id uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.Todo{}, id).Error
}

func (r *gormTodoRepository) ListPending(ctx context.Context) ([]domain.Todo, error) {
	var todos []domain.Todo
	result := r.db.WithContext(ctx).
		Where("enhancement_status = ?", domain.EnhancementPending).
		Order("id").
		Find(&todos)
	if result.Error != nil {
		return nil, result.Error
	}
	return todos, nil
}

func (r *gormTodoRepository) SaveEnhancement(ctx context.Context, id uint, enhancedTitle string, steps []string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Todo{}).
		Where("id = ? AND enhancement_status = ?", id, domain.EnhancementPending).
		Updates(map[string]any{
			"enhanced_title":     enhancedTitle,
			"steps":              domain.StringList(steps),
			"enhancement_status": domain.EnhancementDone,
		})
	return result.RowsAffected, result.Error
}

func (r *gormTodoRepository) MarkEnhancementFailed(ctx context.Context, id uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Todo{}).
		Where("id = ? AND enhancement_status = ?", id, domain.EnhancementPending).
		Update("enhancement_status", domain.EnhancementFailed)
	return result.RowsAffected, result.Error
}

func (r *gormTodoRepository) ApplyEnhancement(ctx context.Context, id uint, enhancedTitle string, steps []string) (int64, error) {
	if steps == nil {
		steps = []string{}
	}
	result := r.db.WithContext(ctx).
		Model(&domain.Todo{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"enhanced_title":     enhancedTitle,
			"steps":              domain.StringList(steps),
			"enhancement_status": domain.EnhancementDone,
		})
	return result.RowsAffected, result.Error
}
