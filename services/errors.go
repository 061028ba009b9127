package services

import (
	"errors"
	"fmt"
)

// Виды бизнес-ошибок. Каждая конкретная ошибка ниже оборачивает ровно один вид,
// поэтому errors.Is работает и для конкретной ошибки, и для её вида.
var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")
	ErrInvalidState       = errors.New("operation not allowed in the current state")

	ErrValidationFailed     = errors.New("validation failed")
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// Ошибки, специфичные для сущностей
var (
	ErrContestNotFound = fmt.Errorf("%w: contest not found", ErrNotFound)
	ErrProcessNotFound = fmt.Errorf("%w: process not found", ErrNotFound)
	// ErrProcessSortBroken means no stage occupies sort-1 of the target stage.
	ErrProcessSortBroken = fmt.Errorf("%w: previous process in the sort sequence does not exist", ErrNotFound)
)

// Ошибки авторизации
var (
	ErrNotContestCreator = fmt.Errorf("%w: only the contest creator can perform this action", ErrForbiddenOperation)
)

// Ошибки бизнес-правил этапов
var (
	ErrContestNotEligible         = fmt.Errorf("%w: contest status does not allow adding a process", ErrInvalidState)
	ErrProcessStillOpen           = fmt.Errorf("%w: the last process of the contest is not finished", ErrInvalidState)
	ErrProcessNotLast             = fmt.Errorf("%w: only the last process of the contest can be changed", ErrInvalidState)
	ErrProcessNotCreating         = fmt.Errorf("%w: groups can only be changed while the process is CREATING", ErrInvalidState)
	ErrPreviousProcessNotFinished = fmt.Errorf("%w: previous process is not finished yet", ErrInvalidState)
	ErrContestDeleted             = fmt.Errorf("%w: contest is deleted", ErrInvalidState)
	ErrContestStatusTransition    = fmt.Errorf("%w: contest status cannot be set directly", ErrInvalidState)
)

// Конфликты и прочее
var (
	// ErrMembershipConflict surfaces a concurrent insert of the same (process, group) pair.
	ErrMembershipConflict   = errors.New("group membership was changed concurrently, retry the request")
	ErrGroupNameConflict    = errors.New("group name is already in use in this contest")
	ErrAttachmentsDisabled  = errors.New("attachment storage is not configured")
	ErrUnsupportedMediaType = errors.New("unsupported attachment type")
)
