package models

import "time"

// ContestStatus представляет статусы конкурса.
type ContestStatus string

// FINISH for a contest means its setup is closed and stages may be added one by one.
// It is not a terminal state.
const (
	ContestStatusCreating ContestStatus = "CREATING"
	ContestStatusOngoing  ContestStatus = "ONGOING"
	ContestStatusFinish   ContestStatus = "FINISH"
	ContestStatusDelete   ContestStatus = "DELETE"
)

func (s ContestStatus) Valid() bool {
	switch s {
	case ContestStatusCreating, ContestStatusOngoing, ContestStatusFinish, ContestStatusDelete:
		return true
	}
	return false
}

// Contest представляет конкурс, разбитый на последовательные этапы.
type Contest struct {
	ID             int           `json:"id" db:"id"`
	Name           string        `json:"name" db:"name"`
	Description    *string       `json:"description,omitempty" db:"description"`
	CreatorAccount string        `json:"creator_account" db:"creator_account"`
	Status         ContestStatus `json:"status" db:"status"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Processes []Process `json:"processes,omitempty" db:"-"`
	Groups    []Group   `json:"groups,omitempty" db:"-"`
}
