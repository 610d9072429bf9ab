package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/Omarhersan/todoApp/internal/domain"
	"github.com/Omarhersan/todoApp/internal/repository"
)

var phonePattern = regexp.MustCompile(`^\d+$`)

// UserResponse is the representation of a user returned to clients.
type UserResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// RegisterRequest holds the data needed to create an account.
type RegisterRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// LoginRequest identifies an existing account by phone number.
type LoginRequest struct {
	Phone string `json:"phone"`
}

// UserService manages accounts. Registration and login both resolve to a user
// the handlers then bind to a session cookie.
type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (*UserResponse, error)
	GetByID(ctx context.Context, id uint) (*UserResponse, error)
}

type userService struct {
	repo   repository.UserRepository
	logger *slog.Logger
}

// NewUserService creates a UserService backed by repo.
func NewUserService(repo repository.UserRepository, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{repo: repo, logger: logger}
}

func (s *userService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	if name == "" || phone == "" {
		return nil, fmt.Errorf("%w: name and phone are required", ErrValidation)
	}
	if !phonePattern.MatchString(phone) {
		return nil, fmt.Errorf("%w: phone must contain only numbers", ErrValidation)
	}

	if _, err := s.repo.FindByPhone(ctx, phone); err == nil {
		return nil, fmt.Errorf("%w: user with this phone number already exists", ErrValidation)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("checking existing phone", "error", err)
		return nil, errors.New("failed to create user")
	}

	user := &domain.User{Name: name, Phone: phone}
	if err := s.repo.Create(ctx, user); err != nil {
		s.logger.Error("creating user", "error", err)
		return nil, errors.New("failed to create user")
	}

	return &UserResponse{ID: user.ID, Name: user.Name, Phone: user.Phone}, nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*UserResponse, error) {
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return nil, fmt.Errorf("%w: phone number is required", ErrValidation)
	}
	if !phonePattern.MatchString(phone) {
		return nil, fmt.Errorf("%w: phone must contain only numbers", ErrValidation)
	}

	user, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user not found with this phone number", ErrNotFound)
		}
		s.logger.Error("looking up user by phone", "error", err)
		return nil, errors.New("failed to log in")
	}

	return &UserResponse{ID: user.ID, Name: user.Name, Phone: user.Phone}, nil
}

func (s *userService) GetByID(ctx context.Context, id uint) (*UserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		s.logger.Error("looking up user", "id", id, "error", err)
		return nil, errors.New("failed to retrieve user")
	}
	return &UserResponse{ID: user.ID, Name: user.Name, Phone: user.Phone}, nil
}
