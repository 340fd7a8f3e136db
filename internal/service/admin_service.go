package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskdesk/internal/model"
)

// AdminUserStore is the persistence surface the admin service needs for
// user moderation.
type AdminUserStore interface {
	FindByID(ctx context.Context, id int) (*model.User, error)
	ListWithTaskCounts(ctx context.Context) ([]model.UserWithCounts, error)
	SetAdmin(ctx context.Context, id int, isAdmin bool) error
	DeleteCascade(ctx context.Context, id int) error
	CountJoinedBetween(ctx context.Context, from, to time.Time) (int, error)
}

// AdminTaskStore supplies the global task status counts.
type AdminTaskStore interface {
	CountByStatus(ctx context.Context) (int, int, error)
}

type AdminService struct {
	users  AdminUserStore
	tasks  AdminTaskStore
	logger *zap.Logger
	now    func() time.Time
}

func NewAdminService(users AdminUserStore, tasks AdminTaskStore, logger *zap.Logger) *AdminService {
	return &AdminService{
		users:  users,
		tasks:  tasks,
		logger: logger,
		now:    time.Now,
	}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]model.UserWithCounts, error) {
	return s.users.ListWithTaskCounts(ctx)
}

// SetAdminFlag changes another user's admin flag. Admins cannot change
// their own status; a nil flag leaves the target unchanged so a patch
// without the field is not a demotion.
func (s *AdminService) SetAdminFlag(ctx context.Context, targetID int, actor Actor, isAdmin *bool) (*model.User, error) {
	if targetID == actor.ID {
		return nil, invalid("You cannot change your own admin status")
	}

	u, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("User not found")
		}
		return nil, err
	}

	if isAdmin == nil {
		return u, nil
	}

	if err := s.users.SetAdmin(ctx, targetID, *isAdmin); err != nil {
		return nil, err
	}
	u.IsAdmin = *isAdmin

	s.logger.Info("Admin flag changed",
		zap.Int("target_id", targetID),
		zap.Int("actor_id", actor.ID),
		zap.Bool("is_admin", *isAdmin),
	)
	return u, nil
}

// DeleteUser removes another user and everything they own. Admins cannot
// delete themselves.
func (s *AdminService) DeleteUser(ctx context.Context, targetID int, actor Actor) error {
	if targetID == actor.ID {
		return invalid("You cannot delete your own account")
	}

	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound("User not found")
		}
		return err
	}

	if err := s.users.DeleteCascade(ctx, targetID); err != nil {
		return err
	}

	s.logger.Info("User deleted by admin",
		zap.Int("target_id", targetID),
		zap.Int("actor_id", actor.ID),
	)
	return nil
}

type StatusCount struct {
	Status int    `json:"status"`
	Label  string `json:"label"`
	Count  int    `json:"count"`
}

type GrowthBucket struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type Stats struct {
	StatusDistribution []StatusCount  `json:"status_distribution"`
	UserGrowth         []GrowthBucket `json:"user_growth"`
}

const growthBucketDays = 30

// Stats reports the global task status split and new-user counts over six
// consecutive 30-day windows starting 180 days ago. The windows are fixed
// day-offset arithmetic, not calendar months; each is labelled with the
// month abbreviation of its starting day.
func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	active, completed, err := s.tasks.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	start := s.now().UTC().AddDate(0, 0, -6*growthBucketDays)
	growth := make([]GrowthBucket, 0, 6)
	for i := 0; i < 6; i++ {
		from := start.AddDate(0, 0, i*growthBucketDays)
		to := from.AddDate(0, 0, growthBucketDays)

		count, err := s.users.CountJoinedBetween(ctx, from, to)
		if err != nil {
			return nil, err
		}
		growth = append(growth, GrowthBucket{
			Month: from.Format("Jan"),
			Count: count,
		})
	}

	return &Stats{
		StatusDistribution: []StatusCount{
			{Status: 0, Label: "Active", Count: active},
			{Status: 2, Label: "Completed", Count: completed},
		},
		UserGrowth: growth,
	}, nil
}
