package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taskhub/taskhub/internal/model"
	"github.com/taskhub/taskhub/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username or email already exists")
	ErrUserNotFound       = errors.New("user not found")
)

// UserStore is the persistence the user service needs.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByUsernameOrEmail(ctx context.Context, value string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	UpdateLastLogin(ctx context.Context, id int64, at string) error
	List(ctx context.Context) ([]model.User, error)
}

// PasswordHasher derives and checks stored password hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// UserService handles account business logic.
type UserService struct {
	repo   UserStore
	hasher PasswordHasher
	now    func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(repo UserStore, hasher PasswordHasher) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		now:    time.Now,
	}
}

// Register validates and stores a new account.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	reg, err := ValidateRegistration(req)
	if err != nil {
		return model.AuthResponse{}, err
	}

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: hash,
		CreatedAt:    model.FormatTime(s.now()),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return model.AuthResponse{}, ErrUserExists
		}
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		Message: "User registered successfully",
		User:    user.Summary(),
	}, nil
}

// Login checks credentials and records the login time.
func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	identifier, password, err := ValidateLogin(req)
	if err != nil {
		return model.AuthResponse{}, err
	}

	user, err := s.repo.FindByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	match, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("verify password for user %d: %w", user.ID, err)
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID, model.FormatTime(s.now())); err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		Message: "Login successful",
		User:    user.Summary(),
	}, nil
}

// GetProfile retrieves a user by ID.
func (s *UserService) GetProfile(ctx context.Context, id int64) (model.UserProfile, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserProfile{}, ErrUserNotFound
		}
		return model.UserProfile{}, err
	}

	return user.Profile(), nil
}

// ListUsers returns every user, newest first.
func (s *UserService) ListUsers(ctx context.Context) ([]model.UserProfile, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	profiles := make([]model.UserProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}
	return profiles, nil
}
