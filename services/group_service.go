package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/contest-system/models"
	"github.com/Dosada05/contest-system/repositories"
)

const maxGroupNameLength = 32

type CreateGroupInput struct {
	ContestID int    `json:"-"`
	Name      string `json:"name"`
}

type GroupService interface {
	Create(ctx context.Context, currentAccount string, input CreateGroupInput) (*models.Group, error)
	ListByContest(ctx context.Context, contestID int) ([]*models.Group, error)
}

type groupService struct {
	contestRepo repositories.ContestRepository
	groupRepo   repositories.GroupRepository
	logger      *slog.Logger
}

func NewGroupService(contestRepo repositories.ContestRepository, groupRepo repositories.GroupRepository, logger *slog.Logger) GroupService {
	if logger == nil {
		logger = slog.Default()
	}
	return &groupService{contestRepo: contestRepo, groupRepo: groupRepo, logger: logger}
}

// Create регистрирует команду в конкурсе; капитаном становится текущий аккаунт.
func (s *groupService) Create(ctx context.Context, currentAccount string, input CreateGroupInput) (*models.Group, error) {
	var v validator
	v.requireText("name", input.Name, maxGroupNameLength)
	if err := v.err(); err != nil {
		return nil, err
	}

	contest, err := s.contestRepo.GetByID(ctx, nil, input.ContestID)
	if err != nil {
		return nil, translateContestError(err)
	}
	if contest.Status == models.ContestStatusDelete {
		return nil, ErrContestDeleted
	}

	contestID := contest.ID
	group := &models.Group{
		ContestID:      &contestID,
		Name:           input.Name,
		CaptainAccount: currentAccount,
	}
	if err := s.groupRepo.Create(ctx, nil, group); err != nil {
		switch {
		case errors.Is(err, repositories.ErrGroupNameConflict):
			return nil, ErrGroupNameConflict
		case errors.Is(err, repositories.ErrGroupContestInvalid):
			return nil, ErrContestNotFound
		}
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	s.logger.InfoContext(ctx, "group created",
		slog.Int("contest_id", contestID), slog.Int("group_id", group.ID), slog.String("account", currentAccount))
	return group, nil
}

func (s *groupService) ListByContest(ctx context.Context, contestID int) ([]*models.Group, error) {
	if _, err := s.contestRepo.GetByID(ctx, nil, contestID); err != nil {
		return nil, translateContestError(err)
	}
	groups, err := s.groupRepo.ListByContest(ctx, nil, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}
