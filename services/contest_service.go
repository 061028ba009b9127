package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/contest-system/models"
	"github.com/Dosada05/contest-system/repositories"
	"github.com/Dosada05/contest-system/storage"
)

const (
	maxContestNameLength        = 64
	maxContestDescriptionLength = 512
)

type CreateContestInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

func (in CreateContestInput) validate() error {
	var v validator
	v.requireText("name", in.Name, maxContestNameLength)
	v.maxLength("description", derefString(in.Description), maxContestDescriptionLength)
	return v.err()
}

type ContestService interface {
	Create(ctx context.Context, currentAccount string, input CreateContestInput) (*models.Contest, error)
	GetByID(ctx context.Context, contestID int) (*models.Contest, error)
	UpdateStatus(ctx context.Context, currentAccount string, contestID int, status models.ContestStatus) (*models.Contest, error)
	Delete(ctx context.Context, currentAccount string, contestID int) error
}

type contestService struct {
	tx          repositories.Transactor
	contestRepo repositories.ContestRepository
	processRepo repositories.ProcessRepository
	groupRepo   repositories.GroupRepository
	uploader    storage.FileUploader
	logger      *slog.Logger
}

func NewContestService(
	tx repositories.Transactor,
	contestRepo repositories.ContestRepository,
	processRepo repositories.ProcessRepository,
	groupRepo repositories.GroupRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) ContestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &contestService{
		tx:          tx,
		contestRepo: contestRepo,
		processRepo: processRepo,
		groupRepo:   groupRepo,
		uploader:    uploader,
		logger:      logger,
	}
}

func (s *contestService) Create(ctx context.Context, currentAccount string, input CreateContestInput) (*models.Contest, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	contest := &models.Contest{
		Name:           input.Name,
		Description:    input.Description,
		CreatorAccount: currentAccount,
		Status:         models.ContestStatusCreating,
	}
	if err := s.contestRepo.Create(ctx, nil, contest); err != nil {
		return nil, fmt.Errorf("failed to create contest: %w", err)
	}
	s.logger.InfoContext(ctx, "contest created", slog.Int("contest_id", contest.ID), slog.String("account", currentAccount))
	return contest, nil
}

// GetByID загружает конкурс вместе с этапами и командами. Удаленные конкурсы не видны.
func (s *contestService) GetByID(ctx context.Context, contestID int) (*models.Contest, error) {
	contest, err := s.contestRepo.GetByID(ctx, nil, contestID)
	if err != nil {
		return nil, translateContestError(err)
	}
	if contest.Status == models.ContestStatusDelete {
		return nil, ErrContestNotFound
	}

	var processes []*models.Process
	var groups []*models.Group
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		list, err := s.processRepo.ListByContest(gCtx, nil, contestID)
		if err != nil {
			return fmt.Errorf("failed to list processes of contest %d: %w", contestID, err)
		}
		processes = list
		return nil
	})

	g.Go(func() error {
		list, err := s.groupRepo.ListByContest(gCtx, nil, contestID)
		if err != nil {
			return fmt.Errorf("failed to list groups of contest %d: %w", contestID, err)
		}
		groups = list
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortProcesses(processes)
	for _, p := range processes {
		populateProcessAttachmentURLFunc(p, s.uploader)
	}
	contest.Processes = processesToValues(processes)
	contest.Groups = groupsToValues(groups)
	return contest, nil
}

func (s *contestService) UpdateStatus(ctx context.Context, currentAccount string, contestID int, status models.ContestStatus) (*models.Contest, error) {
	if !status.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"status": fmt.Sprintf("unknown contest status %q", status)}}
	}
	if status == models.ContestStatusDelete {
		return nil, ErrContestStatusTransition
	}

	var updated *models.Contest
	err := s.tx.WithinTransaction(ctx, func(tx repositories.SQLExecutor) error {
		contest, err := s.lockOwnedContest(ctx, tx, contestID, currentAccount)
		if err != nil {
			return err
		}
		if err := s.contestRepo.UpdateStatus(ctx, tx, contest.ID, status); err != nil {
			return fmt.Errorf("failed to update contest status: %w", err)
		}
		contest.Status = status
		updated = contest
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "contest status updated",
		slog.Int("contest_id", updated.ID), slog.String("status", string(updated.Status)))
	return updated, nil
}

func (s *contestService) Delete(ctx context.Context, currentAccount string, contestID int) error {
	err := s.tx.WithinTransaction(ctx, func(tx repositories.SQLExecutor) error {
		contest, err := s.lockOwnedContest(ctx, tx, contestID, currentAccount)
		if err != nil {
			return err
		}
		if err := s.contestRepo.UpdateStatus(ctx, tx, contest.ID, models.ContestStatusDelete); err != nil {
			return fmt.Errorf("failed to delete contest: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "contest deleted", slog.Int("contest_id", contestID), slog.String("account", currentAccount))
	return nil
}

func (s *contestService) lockOwnedContest(ctx context.Context, tx repositories.SQLExecutor, contestID int, account string) (*models.Contest, error) {
	contest, err := s.contestRepo.GetByIDForUpdate(ctx, tx, contestID)
	if err != nil {
		return nil, translateContestError(err)
	}
	if contest.CreatorAccount != account {
		return nil, ErrNotContestCreator
	}
	if contest.Status == models.ContestStatusDelete {
		return nil, ErrContestDeleted
	}
	return contest, nil
}
