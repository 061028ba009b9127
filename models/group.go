package models

import "time"

// Group описывает команду. Участие в этапах хранится отдельно, в process_groups.
type Group struct {
	ID             int       `json:"id" db:"id"`
	ContestID      *int      `json:"contest_id,omitempty" db:"contest_id"`
	Name           string    `json:"name" db:"name"`
	CaptainAccount string    `json:"captain_account" db:"captain_account"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
