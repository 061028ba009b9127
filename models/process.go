package models

import "time"

type ProcessStatus string

const (
	ProcessStatusCreating ProcessStatus = "CREATING"
	ProcessStatusOngoing  ProcessStatus = "ONGOING"
	ProcessStatusFinish   ProcessStatus = "FINISH"
)

func (s ProcessStatus) Valid() bool {
	switch s {
	case ProcessStatusCreating, ProcessStatusOngoing, ProcessStatusFinish:
		return true
	}
	return false
}

// Process is a stage of a contest. Sort is 1-based and contiguous within a contest.
type Process struct {
	ID            int           `json:"id" db:"id"`
	ContestID     int           `json:"contest_id" db:"contest_id"`
	Name          string        `json:"name" db:"name"`
	Description   string        `json:"description" db:"description"`
	SubmitList    *string       `json:"submit_list,omitempty" db:"submit_list"` // JSON array of required submission items
	Sort          int           `json:"sort" db:"sort"`
	Status        ProcessStatus `json:"status" db:"status"`
	StartTime     *time.Time    `json:"start_time,omitempty" db:"start_time"`
	EndSubmitTime time.Time     `json:"end_submit_time" db:"end_submit_time"`
	FinishTime    *time.Time    `json:"finish_time,omitempty" db:"finish_time"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`

	AttachmentKey *string `json:"-" db:"attachment_key"`
	AttachmentURL *string `json:"attachment_url,omitempty" db:"-"`

	Contest *Contest `json:"contest,omitempty" db:"-"`
}
