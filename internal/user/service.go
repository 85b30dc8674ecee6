package user

import (
	"context"
	defError "errors"

	"cmsmall/internal/domain"
	"cmsmall/internal/errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service defines the interface for user business logic
type Service interface {
	Register(ctx context.Context, user *domain.User) error
	Login(ctx context.Context, username, password string) (*domain.User, error)
	GetUserByID(ctx context.Context, id uint64) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.SafeUser, error)
	IncreaseTokenVersion(ctx context.Context, id uint64) error
}

type DefaultService struct {
	repository UserRepository
}

func NewService(repository UserRepository) Service {
	return &DefaultService{repository: repository}
}

// Register stores a new user with a hashed password. Used to seed accounts.
func (s *DefaultService) Register(ctx context.Context, user *domain.User) error {
	_, err := s.repository.FindByUsername(ctx, user.Username)
	if err != nil && !defError.Is(err, gorm.ErrRecordNotFound) {
		return errors.StorageFault("Cannot look up user", err)
	}
	if err == nil {
		return errors.Conflict("User already registered", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return errors.UnprocessableEntity("Cannot hash password", err)
	}
	user.PasswordHash = string(hashedPassword)
	if user.Role == "" {
		user.Role = domain.RoleAuthor
	}

	if err := s.repository.Create(ctx, user); err != nil {
		return errors.StorageFault("Cannot create user", err)
	}
	return nil
}

func (s *DefaultService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.repository.FindByUsername(ctx, username)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Unauthorized("Incorrect username or password", err)
		}
		return nil, errors.StorageFault("Cannot look up user", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, errors.Unauthorized("Incorrect username or password", err)
	}

	return user, nil
}

func (s *DefaultService) GetUserByID(ctx context.Context, id uint64) (*domain.User, error) {
	user, err := s.repository.FindByID(ctx, id)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("User not found", err)
		}
		return nil, errors.StorageFault("Cannot look up user", err)
	}
	return user, nil
}

func (s *DefaultService) ListUsers(ctx context.Context) ([]domain.SafeUser, error) {
	users, err := s.repository.List(ctx)
	if err != nil {
		return nil, errors.StorageFault("Cannot list users", err)
	}

	result := make([]domain.SafeUser, 0, len(users))
	for i := range users {
		result = append(result, users[i].ToSafeUser())
	}
	return result, nil
}

func (s *DefaultService) IncreaseTokenVersion(ctx context.Context, id uint64) error {
	if err := s.repository.IncreaseTokenVersion(ctx, id); err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("User not found", err)
		}
		return errors.StorageFault("Cannot end session", err)
	}
	return nil
}
