package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Dosada05/contest-system/models"
	"github.com/Dosada05/contest-system/realtime"
	"github.com/Dosada05/contest-system/repositories"
	"github.com/Dosada05/contest-system/storage"
)

const (
	maxProcessNameLength        = 32
	maxProcessDescriptionLength = 512
	maxSubmitListLength         = 512
)

type CreateProcessInput struct {
	ContestID     int       `json:"-"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	SubmitList    *string   `json:"submit_list,omitempty"`
	EndSubmitTime time.Time `json:"end_submit_time"`
}

func (in CreateProcessInput) validate() error {
	var v validator
	v.requireText("name", in.Name, maxProcessNameLength)
	v.requireText("description", in.Description, maxProcessDescriptionLength)
	v.maxLength("submit_list", derefString(in.SubmitList), maxSubmitListLength)
	if in.EndSubmitTime.IsZero() {
		v.add("end_submit_time", "is required")
	}
	return v.err()
}

// EditProcessInput carries the fields to change; nil fields are left as they are.
type EditProcessInput struct {
	ProcessID     int                   `json:"-"`
	ContestID     int                   `json:"-"`
	Name          *string               `json:"name,omitempty"`
	Description   *string               `json:"description,omitempty"`
	SubmitList    *string               `json:"submit_list,omitempty"`
	Status        *models.ProcessStatus `json:"status,omitempty"`
	StartTime     *time.Time            `json:"start_time,omitempty"`
	EndSubmitTime *time.Time            `json:"end_submit_time,omitempty"`
	FinishTime    *time.Time            `json:"finish_time,omitempty"`
}

func (in EditProcessInput) validate() error {
	var v validator
	if in.Name != nil {
		v.requireText("name", *in.Name, maxProcessNameLength)
	}
	if in.Description != nil {
		v.requireText("description", *in.Description, maxProcessDescriptionLength)
	}
	if in.SubmitList != nil {
		v.maxLength("submit_list", *in.SubmitList, maxSubmitListLength)
	}
	if in.Status != nil && !in.Status.Valid() {
		v.add("status", fmt.Sprintf("unknown process status %q", *in.Status))
	}
	if in.EndSubmitTime != nil && in.EndSubmitTime.IsZero() {
		v.add("end_submit_time", "must not be empty")
	}
	return v.err()
}

func (in EditProcessInput) apply(p *models.Process) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.SubmitList != nil {
		p.SubmitList = in.SubmitList
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.StartTime != nil {
		p.StartTime = in.StartTime
	}
	if in.EndSubmitTime != nil {
		p.EndSubmitTime = *in.EndSubmitTime
	}
	if in.FinishTime != nil {
		p.FinishTime = in.FinishTime
	}
}

// ProcessService управляет этапами конкурса и переводом команд между ними.
// Every mutating call runs in one transaction and takes the row locks it needs first.
type ProcessService interface {
	GetInfo(ctx context.Context, processID int) (*models.Process, error)
	ListAll(ctx context.Context, contestID int) ([]*models.Process, error)
	Create(ctx context.Context, currentAccount string, input CreateProcessInput) (*models.Process, error)
	Edit(ctx context.Context, currentAccount string, input EditProcessInput) (*models.Process, error)
	Delete(ctx context.Context, currentAccount string, contestID, processID int) error
	UploadAttachment(ctx context.Context, currentAccount string, contestID, processID int, contentType string, body io.Reader) (*models.Process, error)

	ListPromotableGroups(ctx context.Context, currentAccount string, processID int) ([]*models.Group, error)
	ListMembers(ctx context.Context, processID int) ([]*models.Group, error)
	PromoteGroups(ctx context.Context, currentAccount string, processID int, groupIDs []int) ([]int, error)
	DemoteGroups(ctx context.Context, currentAccount string, processID int, groupIDs []int) error
}

type processService struct {
	tx          repositories.Transactor
	contestRepo repositories.ContestRepository
	processRepo repositories.ProcessRepository
	groupRepo   repositories.GroupRepository
	uploader    storage.FileUploader
	events      EventPublisher
	logger      *slog.Logger
}

// NewProcessService wires the orchestrator. uploader and events may be nil.
func NewProcessService(
	tx repositories.Transactor,
	contestRepo repositories.ContestRepository,
	processRepo repositories.ProcessRepository,
	groupRepo repositories.GroupRepository,
	uploader storage.FileUploader,
	events EventPublisher,
	logger *slog.Logger,
) ProcessService {
	if logger == nil {
		logger = slog.Default()
	}
	return &processService{
		tx:          tx,
		contestRepo: contestRepo,
		processRepo: processRepo,
		groupRepo:   groupRepo,
		uploader:    uploader,
		events:      events,
		logger:      logger,
	}
}

func (s *processService) GetInfo(ctx context.Context, processID int) (*models.Process, error) {
	process, err := s.processRepo.GetByID(ctx, nil, processID)
	if err != nil {
		return nil, translateProcessError(err)
	}
	contest, err := s.contestRepo.GetByID(ctx, nil, process.ContestID)
	if err != nil {
		return nil, translateContestError(err)
	}
	process.Contest = contest
	populateProcessAttachmentURLFunc(process, s.uploader)
	return process, nil
}

func (s *processService) ListAll(ctx context.Context, contestID int) ([]*models.Process, error) {
	if _, err := s.contestRepo.GetByID(ctx, nil, contestID); err != nil {
		return nil, translateContestError(err)
	}
	processes, err := s.processRepo.ListByContest(ctx, nil, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}
	sortProcesses(processes)
	for _, p := range processes {
		populateProcessAttachmentURLFunc(p, s.uploader)
	}
	return processes, nil
}

func (s *processService) Create(ctx context.Context, currentAccount string, input CreateProcessInput) (*models.Process, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var created *models.Process
	err := s.tx.WithinTransaction(ctx, func(tx repositories.SQLExecutor) error {
		// The contest lock serializes stage creation within one contest.
		contest, err := s.lockContestAsCreator(ctx, tx, input.ContestID, currentAccount)
		if err != nil {
			return err
		}
		if contest.Status != models.ContestStatusFinish {
			return ErrContestNotEligible
		}

		processes, err := s.processRepo.ListByContest(ctx, tx, contest.ID)
		if err != nil {
			return fmt.Errorf("failed to list processes: %w", err)
		}
		previousStatus, previousSort := models.ProcessStatusFinish, 0
		if last := lastProcess(processes); last != nil {
			previousStatus, previousSort = last.Status, last.Sort
		}
		if previousStatus != models.ProcessStatusFinish {
			return ErrProcessStillOpen
		}

		process := &models.Process{
			ContestID:     contest.ID,
			Name:          input.Name,
			Description:   input.Description,
			SubmitList:    input.SubmitList,
			EndSubmitTime: input.EndSubmitTime,
			Sort:          previousSort + 1,
			Status:        models.ProcessStatusCreating,
		}
		if err := s.processRepo.Create(ctx, tx, process); err != nil {
			return fmt.Errorf("failed to create process: %w", err)
		}
		created = process
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "process created",
		slog.Int("contest_id", created.ContestID),
		slog.Int("process_id", created.ID),
		slog.Int("sort", created.Sort),
		slog.String("account", currentAccount))
	s.publish(created.ContestID, realtime.EventProcessCreated, created)
	return created, nil
}

func (s *processService) Edit(ctx context.Context, currentAccount string, input EditProcessInput) (*models.Process, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var updated *models.Process
	err := s.tx.WithinTransaction(ctx, func(tx repositories.SQLExecutor) error {
		process, err := s.lockLastProcess(ctx, tx, input.ContestID, input.ProcessID, currentAccount)
		if err != nil {
			return err
		}
		input.apply(process)
		if err := s.processRepo.Update(ctx, tx, process); err != nil {
			return fmt.Errorf("failed to update process: %w", err)
		}
		updated = process
		return nil
	})
	if err != nil {
		return nil, err
	}

	populateProcessAttachmentURLFunc(updated, s.uploader)
	s.logger.InfoContext(ctx, "process updated",
		slog.Int("contest_id", updated.ContestID),
		slog.Int("process_id", updated.ID),
		slog.String("status", string(updated.Status)))
	s.publish(updated.ContestID, realtime.EventProcessUpdated, updated)
	return updated, nil
}

func (s *processService) Delete(ctx context.Context, currentAccount string, contestID, processID int) error {
	var deleted *models.Process
	err := s.tx.WithinTransaction(ctx, func(tx repositories.SQLExecutor) error {
		process, err := s.lockLastProcess(ctx, tx, contestID, processID, currentAccount)
		if err != nil {
			return err
		}
		// Membership rows go with the stage (ON DELETE CASCADE); groups stay.
		if err := s.processRepo.Delete(ctx, tx, process.ID); err != nil {
			return fmt.Errorf("failed to delete process: %w", err)
		}
		deleted = process
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "process deleted",
		slog.Int("contest_id", deleted.ContestID),
		slog.Int("process_id", deleted.ID),
		slog.Int("sort", deleted.Sort))
	if deleted.AttachmentKey != nil {
		s.deleteObject(ctx, *deleted.AttachmentKey)
	}
	s.publish(deleted.ContestID, realtime.EventProcessDeleted, map[string]int{"process_id": deleted.ID, "sort": deleted.Sort})
	return nil
}

func (s *processService) UploadAttachment(ctx context.Context, currentAccount string, contestID, processID int, contentType string, body io.Reader) (*models.Process, error) {
	if s.uploader == nil {
		return nil, ErrAttachmentsDisabled
	}
	ext, err := storage.ExtensionForContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedMediaType, err)
	}

	// Permissions are checked before the upload so a rejected caller never writes to storage.
	err = s.tx.WithinTransaction(ctx, func(tx repositories.SQLExecutor) error {
		_, err := s.lockLastProcess(ctx, tx, contestID, processID, currentAccount)
		return err
	})
	if err != nil {
		return nil, err
	}

	key := storage.ProcessAttachmentKey(processID, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, body); err != nil {
		return nil, fmt.Errorf("failed to upload attachment: %w", err)
	}

	var updated *models.Process
	var previousKey *string
	err = s.tx.WithinTransaction(ctx, func(tx repositories.SQLExecutor) error {
		process, err := s.lockLastProcess(ctx, tx, contestID, processID, currentAccount)
		if err != nil {
			return err
		}
		if err := s.processRepo.UpdateAttachmentKey(ctx, tx, process.ID, &key); err != nil {
			return fmt.Errorf("failed to save attachment key: %w", err)
		}
		previousKey = process.AttachmentKey
		process.AttachmentKey = &key
		updated = process
		return nil
	})
	if err != nil {
		s.deleteObject(ctx, key)
		return nil, err
	}

	if previousKey != nil && *previousKey != key {
		s.deleteObject(ctx, *previousKey)
	}
	populateProcessAttachmentURLFunc(updated, s.uploader)
	s.publish(updated.ContestID, realtime.EventProcessUpdated, updated)
	return updated, nil
}

func (s *processService) ListPromotableGroups(ctx context.Context, currentAccount string, processID int) ([]*models.Group, error) {
	process, err := s.processRepo.GetByID(ctx, nil, processID)
	if err != nil {
		return nil, translateProcessError(err)
	}
	s.logger.DebugContext(ctx, "listing promotable groups",
		slog.Int("process_id", process.ID), slog.String("account", currentAccount))

	// Groups already in the target stage are not filtered out here.
	if process.Sort == 1 {
		groups, err := s.groupRepo.ListByContest(ctx, nil, process.ContestID)
		if err != nil {
			return nil, fmt.Errorf("failed to list contest groups: %w", err)
		}
		return groups, nil
	}

	previous, err := s.previousProcess(ctx, nil, process)
	if err != nil {
		return nil, err
	}
	if previous.Status != models.ProcessStatusFinish {
		return nil, ErrPreviousProcessNotFinished
	}
	groups, err := s.groupRepo.ListByProcess(ctx, nil, previous.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups of previous process: %w", err)
	}
	return groups, nil
}

func (s *processService) ListMembers(ctx context.Context, processID int) ([]*models.Group, error) {
	if _, err := s.processRepo.GetByID(ctx, nil, processID); err != nil {
		return nil, translateProcessError(err)
	}
	groups, err := s.groupRepo.ListByProcess(ctx, nil, processID)
	if err != nil {
		return nil, fmt.Errorf("failed to list process groups: %w", err)
	}
	return groups, nil
}

// PromoteGroups adds the requested groups that belong to the source of processID and
// returns the ids actually inserted. Groups already present are skipped.
func (s *processService) PromoteGroups(ctx context.Context, currentAccount string, processID int, groupIDs []int) ([]int, error) {
	requested := uniquePositiveIDs(groupIDs)

	var process *models.Process
	var added []int
	err := s.tx.WithinTransaction(ctx, func(tx repositories.SQLExecutor) error {
		var err error
		process, err = s.lockCreatingProcess(ctx, tx, processID, currentAccount)
		if err != nil {
			return err
		}

		// Unlike listing, promotion does not require the previous stage to be FINISH.
		var candidates []*models.Group
		if process.Sort == 1 {
			candidates, err = s.groupRepo.ListByContestAndIDs(ctx, tx, process.ContestID, requested)
			if err != nil {
				return fmt.Errorf("failed to load contest groups: %w", err)
			}
		} else {
			previous, err := s.previousProcess(ctx, tx, process)
			if err != nil {
				return err
			}
			candidates, err = s.groupRepo.ListByProcessAndIDsForUpdate(ctx, tx, previous.ID, requested)
			if err != nil {
				return fmt.Errorf("failed to lock groups of previous process: %w", err)
			}
		}

		members, err := s.groupRepo.ListByProcess(ctx, tx, process.ID)
		if err != nil {
			return fmt.Errorf("failed to list process groups: %w", err)
		}
		present := make(map[int]struct{}, len(members))
		for _, g := range members {
			present[g.ID] = struct{}{}
		}

		toAdd := make([]int, 0, len(candidates))
		for _, g := range candidates {
			if _, ok := present[g.ID]; !ok {
				toAdd = append(toAdd, g.ID)
			}
		}
		if err := s.groupRepo.AddToProcess(ctx, tx, process.ID, toAdd); err != nil {
			if errors.Is(err, repositories.ErrMembershipConflict) {
				return ErrMembershipConflict
			}
			return fmt.Errorf("failed to add groups to process: %w", err)
		}
		added = toAdd
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "groups promoted",
		slog.Int("process_id", process.ID),
		slog.Int("requested", len(requested)),
		slog.Int("added", len(added)))
	if len(added) > 0 {
		s.publish(process.ContestID, realtime.EventGroupsPromoted, map[string]interface{}{
			"process_id": process.ID,
			"group_ids":  added,
		})
	}
	return added, nil
}

func (s *processService) DemoteGroups(ctx context.Context, currentAccount string, processID int, groupIDs []int) error {
	requested := uniquePositiveIDs(groupIDs)

	var process *models.Process
	err := s.tx.WithinTransaction(ctx, func(tx repositories.SQLExecutor) error {
		var err error
		process, err = s.lockCreatingProcess(ctx, tx, processID, currentAccount)
		if err != nil {
			return err
		}
		if err := s.groupRepo.RemoveFromProcess(ctx, tx, process.ID, requested); err != nil {
			return fmt.Errorf("failed to remove groups from process: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "groups demoted",
		slog.Int("process_id", process.ID),
		slog.Int("requested", len(requested)))
	if len(requested) > 0 {
		s.publish(process.ContestID, realtime.EventGroupsDemoted, map[string]interface{}{
			"process_id": process.ID,
			"group_ids":  requested,
		})
	}
	return nil
}

func (s *processService) lockContestAsCreator(ctx context.Context, tx repositories.SQLExecutor, contestID int, account string) (*models.Contest, error) {
	contest, err := s.contestRepo.GetByIDForUpdate(ctx, tx, contestID)
	if err != nil {
		return nil, translateContestError(err)
	}
	if contest.CreatorAccount != account {
		return nil, ErrNotContestCreator
	}
	return contest, nil
}

// lockLastProcess locks the contest and the process and checks that the process is
// the contest's last stage.
func (s *processService) lockLastProcess(ctx context.Context, tx repositories.SQLExecutor, contestID, processID int, account string) (*models.Process, error) {
	contest, err := s.lockContestAsCreator(ctx, tx, contestID, account)
	if err != nil {
		return nil, err
	}
	process, err := s.processRepo.GetByIDForUpdate(ctx, tx, processID)
	if err != nil {
		return nil, translateProcessError(err)
	}
	if process.ContestID != contest.ID {
		return nil, ErrProcessNotFound
	}

	processes, err := s.processRepo.ListByContest(ctx, tx, contest.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}
	if last := lastProcess(processes); last == nil || last.ID != process.ID {
		return nil, ErrProcessNotLast
	}
	return process, nil
}

// lockCreatingProcess locks the target process, checks the creator and requires CREATING.
func (s *processService) lockCreatingProcess(ctx context.Context, tx repositories.SQLExecutor, processID int, account string) (*models.Process, error) {
	process, err := s.processRepo.GetByIDForUpdate(ctx, tx, processID)
	if err != nil {
		return nil, translateProcessError(err)
	}
	contest, err := s.contestRepo.GetByID(ctx, tx, process.ContestID)
	if err != nil {
		return nil, translateContestError(err)
	}
	if contest.CreatorAccount != account {
		return nil, ErrNotContestCreator
	}
	if process.Status != models.ProcessStatusCreating {
		return nil, ErrProcessNotCreating
	}
	return process, nil
}

func (s *processService) previousProcess(ctx context.Context, exec repositories.SQLExecutor, process *models.Process) (*models.Process, error) {
	previous, err := s.processRepo.GetByContestAndSort(ctx, exec, process.ContestID, process.Sort-1)
	if err != nil {
		if errors.Is(err, repositories.ErrProcessNotFound) {
			return nil, ErrProcessSortBroken
		}
		return nil, fmt.Errorf("failed to load previous process: %w", err)
	}
	return previous, nil
}

func (s *processService) publish(contestID int, eventType string, payload interface{}) {
	if s.events == nil {
		return
	}
	s.events.Publish(contestID, eventType, payload)
}

func (s *processService) deleteObject(ctx context.Context, key string) {
	if s.uploader == nil {
		return
	}
	if err := s.uploader.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "failed to delete attachment object", slog.String("key", key), slog.Any("error", err))
	}
}
