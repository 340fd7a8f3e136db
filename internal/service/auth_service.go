package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskdesk/internal/model"
	"taskdesk/internal/repository"
	"taskdesk/pkg/metrics"
	"taskdesk/pkg/util"
)

// UserStore is the persistence surface the auth service needs.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id int) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateProfile(ctx context.Context, id int, username, email string) error
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
}

// UserTaskCounter supplies the task totals shown on the profile page.
type UserTaskCounter interface {
	CountForUser(ctx context.Context, userID int) (int, int, error)
}

type AuthService struct {
	users     UserStore
	tasks     UserTaskCounter
	jwtSecret string
	logger    *zap.Logger
}

func NewAuthService(users UserStore, tasks UserTaskCounter, jwtSecret string, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		tasks:     tasks,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// Register creates a new user. The store makes the first user an admin.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, u); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, conflict("Username or email already exists")
		}
		return nil, err
	}

	return u, nil
}

// Login checks user credentials and returns the user with a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			metrics.IncrementAuthAttempt("failed")
			return nil, "", unauthorized("Invalid email or password")
		}
		return nil, "", err
	}

	if !util.CheckPassword(password, u.PasswordHash) {
		metrics.IncrementAuthAttempt("failed")
		return nil, "", unauthorized("Invalid email or password")
	}

	token, err := util.GenerateJWT(u.ID, s.jwtSecret)
	if err != nil {
		return nil, "", err
	}

	metrics.IncrementAuthAttempt("success")
	s.logger.Info("User logged in", zap.Int("user_id", u.ID))
	return u, token, nil
}

// Profile is the identity summary plus task totals.
type Profile struct {
	User               *model.User
	TaskCount          int
	CompletedTaskCount int
}

func (s *AuthService) Profile(ctx context.Context, userID int) (*Profile, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("User not found")
		}
		return nil, err
	}

	total, completed, err := s.tasks.CountForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: u, TaskCount: total, CompletedTaskCount: completed}, nil
}

// UpdateProfile changes username and/or email. Each supplied field that
// differs from the current value must not collide with another user.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int, username, email *string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("User not found")
		}
		return nil, err
	}

	if username != nil && *username != u.Username {
		if _, err := s.users.FindByUsername(ctx, *username); err == nil {
			return nil, &FieldError{Field: "username", Message: "Username already exists"}
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		u.Username = *username
	}

	if email != nil && *email != u.Email {
		if _, err := s.users.FindByEmail(ctx, *email); err == nil {
			return nil, &FieldError{Field: "email", Message: "Email already exists"}
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		u.Email = *email
	}

	if err := s.users.UpdateProfile(ctx, u.ID, u.Username, u.Email); err != nil {
		// The unique index is the authority when two requests race the check.
		if repository.IsUniqueViolation(err) {
			return nil, conflict("Username or email already exists")
		}
		return nil, err
	}

	return u, nil
}

// ChangePassword replaces the stored hash after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID int, currentPassword, newPassword string) error {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound("User not found")
		}
		return err
	}

	if !util.CheckPassword(currentPassword, u.PasswordHash) {
		return &FieldError{Field: "current_password", Message: "Current password is incorrect"}
	}

	hash, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}

	s.logger.Info("Password changed", zap.Int("user_id", userID))
	return nil
}
