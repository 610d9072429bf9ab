package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Omarhersan/todoApp/internal/domain"
	"github.com/Omarhersan/todoApp/internal/enhancer"
	"github.com/Omarhersan/todoApp/internal/repository"
)

// EnhancementDispatcher queues a background enhancement for a new todo.
// Dispatch must not block; the create response is sent before it runs.
type EnhancementDispatcher interface {
	Dispatch(todoID uint, title string)
}

// Enhancer computes an enhancement synchronously, for the manual trigger path.
type Enhancer interface {
	Enhance(ctx context.Context, title string) enhancer.Enhancement
}

// CreateTodoRequest holds the data needed to create a new todo.
type CreateTodoRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// UpdateTodoRequest holds a partial update. Pointers distinguish omitted
// fields from zero values. completed_at is derived from is_completed and
// never accepted from the client.
type UpdateTodoRequest struct {
	Title         *string   `json:"title"`
	Description   *string   `json:"description"`
	IsCompleted   *bool     `json:"is_completed"`
	EnhancedTitle *string   `json:"enhanced_title"`
	Steps         *[]string `json:"steps"`
}

// EnhanceRequest triggers an enhancement write from an automation caller.
// Either a ready enhancement is supplied, or just the title and the
// enhancement is computed here before writing.
type EnhanceRequest struct {
	TaskID        uint     `json:"taskId"`
	EnhancedTitle string   `json:"enhancedTitle"`
	Steps         []string `json:"steps"`
	Title         string   `json:"title"`
}

// TodoResponse is the standard representation of a todo returned to clients.
type TodoResponse struct {
	ID                uint       `json:"id"`
	UserID            uint       `json:"user_id"`
	Title             string     `json:"title"`
	Description       *string    `json:"description"`
	IsCompleted       bool       `json:"is_completed"`
	CreatedAt         time.Time  `json:"created_at"`
	CompletedAt       *time.Time `json:"completed_at"`
	EnhancedTitle     *string    `json:"enhanced_title"`
	Steps             []string   `json:"steps"`
	EnhancementStatus string     `json:"enhancement_status"`
	Source            string     `json:"source"`
}

// StatusResponse is the slim shape polled by clients awaiting enhancement.
type StatusResponse struct {
	ID                uint     `json:"id"`
	Title             string   `json:"title"`
	EnhancedTitle     *string  `json:"enhanced_title"`
	Steps             []string `json:"steps"`
	EnhancementStatus string   `json:"enhancement_status"`
}

// PendingTodoResponse lists a todo still awaiting enhancement.
type PendingTodoResponse struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	UserID      uint    `json:"user_id"`
	Description *string `json:"description"`
}

// TodoService implements the per-user todo operations. Every operation is
// scoped by the resolved user id; a row owned by someone else behaves exactly
// like a missing row.
type TodoService interface {
	Create(ctx context.Context, userID uint, req CreateTodoRequest, source string) (*TodoResponse, error)
	List(ctx context.Context, userID uint) ([]TodoResponse, error)
	Get(ctx context.Context, userID, id uint) (*TodoResponse, error)
	Update(ctx context.Context, userID, id uint, req UpdateTodoRequest) (*TodoResponse, error)
	Delete(ctx context.Context, userID, id uint) error
	Status(ctx context.Context, userID, id uint) (*StatusResponse, error)
	ListPending(ctx context.Context) ([]PendingTodoResponse, error)
	ApplyEnhancement(ctx context.Context, req EnhanceRequest) error
}

type todoService struct {
	repo       repository.TodoRepository
	dispatcher EnhancementDispatcher
	enhancer   Enhancer
	logger     *slog.Logger
}

// NewTodoService creates a TodoService. dispatcher queues the fire-and-forget
// enhancement after create; enh serves the synchronous manual trigger.
func NewTodoService(repo repository.TodoRepository, dispatcher EnhancementDispatcher, enh Enhancer, logger *slog.Logger) TodoService {
	if logger == nil {
		logger = slog.Default()
	}
	return &todoService{repo: repo, dispatcher: dispatcher, enhancer: enh, logger: logger}
}

func (s *todoService) Create(ctx context.Context, userID uint, req CreateTodoRequest, source string) (*TodoResponse, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if source == "" {
		source = domain.SourceApp
	}

	todo := &domain.Todo{
		UserID:            userID,
		Title:             req.Title,
		Description:       req.Description,
		IsCompleted:       false,
		CreatedAt:         time.Now().UTC(),
		EnhancementStatus: domain.EnhancementPending,
		Source:            source,
	}
	if err := s.repo.Create(ctx, todo); err != nil {
		s.logger.Error("creating todo", "user_id", userID, "error", err)
		return nil, errors.New("failed to create todo item")
	}

	// Fire and forget: the client sees the todo pending and polls for the
	// terminal status.
	s.dispatcher.Dispatch(todo.ID, todo.Title)

	return toResponse(todo), nil
}

func (s *todoService) List(ctx context.Context, userID uint) ([]TodoResponse, error) {
	todos, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("listing todos", "user_id", userID, "error", err)
		return nil, errors.New("failed to retrieve todo items")
	}
	responses := make([]TodoResponse, 0, len(todos))
	for i := range todos {
		responses = append(responses, *toResponse(&todos[i]))
	}
	return responses, nil
}

func (s *todoService) Get(ctx context.Context, userID, id uint) (*TodoResponse, error) {
	todo, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return toResponse(todo), nil
}

func (s *todoService) Update(ctx context.Context, userID, id uint, req UpdateTodoRequest) (*TodoResponse, error) {
	todo, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		todo.Title = *req.Title
	}
	if req.Description != nil {
		todo.Description = req.Description
	}
	if req.EnhancedTitle != nil {
		todo.EnhancedTitle = req.EnhancedTitle
	}
	if req.Steps != nil {
		todo.Steps = domain.StringList(*req.Steps)
	}
	if req.IsCompleted != nil {
		todo.IsCompleted = *req.IsCompleted
		if *req.IsCompleted {
			now := time.Now().UTC()
			todo.CompletedAt = &now
		} else {
			todo.CompletedAt = nil
		}
	}

	if err := s.repo.Update(ctx, todo); err != nil {
		s.logger.Error("updating todo", "todo_id", id, "error", err)
		return nil, errors.New("failed to update todo item")
	}
	return toResponse(todo), nil
}

func (s *todoService) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.findOwned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		s.logger.Error("deleting todo", "todo_id", id, "error", err)
		return errors.New("failed to delete todo item")
	}
	return nil
}

func (s *todoService) Status(ctx context.Context, userID, id uint) (*StatusResponse, error) {
	todo, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return &StatusResponse{
		ID:                todo.ID,
		Title:             todo.Title,
		EnhancedTitle:     todo.EnhancedTitle,
		Steps:             todo.Steps,
		EnhancementStatus: todo.EnhancementStatus,
	}, nil
}

func (s *todoService) ListPending(ctx context.Context) ([]PendingTodoResponse, error) {
	todos, err := s.repo.ListPending(ctx)
	if err != nil {
		s.logger.Error("listing pending todos", "error", err)
		return nil, errors.New("failed to retrieve pending todos")
	}
	responses := make([]PendingTodoResponse, 0, len(todos))
	for _, todo := range todos {
		responses = append(responses, PendingTodoResponse{
			ID:          todo.ID,
			Title:       todo.Title,
			UserID:      todo.UserID,
			Description: todo.Description,
		})
	}
	return responses, nil
}

func (s *todoService) ApplyEnhancement(ctx context.Context, req EnhanceRequest) error {
	if req.TaskID == 0 {
		return fmt.Errorf("%w: taskId is required", ErrValidation)
	}

	enhancedTitle := req.EnhancedTitle
	steps := req.Steps
	if enhancedTitle == "" {
		if strings.TrimSpace(req.Title) == "" {
			return fmt.Errorf("%w: enhancedTitle or title is required", ErrValidation)
		}
		enh := s.enhancer.Enhance(ctx, req.Title)
		enhancedTitle = enh.EnhancedTitle
		steps = enh.Steps
	}

	matched, err := s.repo.ApplyEnhancement(ctx, req.TaskID, enhancedTitle, steps)
	if err != nil {
		s.logger.Error("applying enhancement", "todo_id", req.TaskID, "error", err)
		return errors.New("failed to apply enhancement")
	}
	if matched == 0 {
		return fmt.Errorf("%w: todo not found", ErrNotFound)
	}
	return nil
}

func (s *todoService) findOwned(ctx context.Context, userID, id uint) (*domain.Todo, error) {
	todo, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: todo not found", ErrNotFound)
		}
		s.logger.Error("fetching todo", "todo_id", id, "error", err)
		return nil, errors.New("failed to retrieve todo item")
	}
	return todo, nil
}

func toResponse(todo *domain.Todo) *TodoResponse {
	return &TodoResponse{
		ID:                todo.ID,
		UserID:            todo.UserID,
		Title:             todo.Title,
		Description:       todo.Description,
		IsCompleted:       todo.IsCompleted,
		CreatedAt:         todo.CreatedAt,
		CompletedAt:       todo.CompletedAt,
		EnhancedTitle:     todo.EnhancedTitle,
		Steps:             todo.Steps,
		EnhancementStatus: todo.EnhancementStatus,
		Source:            todo.Source,
	}
}
