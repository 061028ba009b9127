package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/contest-system/models"
)

var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrGroupNameConflict   = errors.New("group name already used in this contest")
	ErrGroupContestInvalid = errors.New("invalid contest reference")
	// ErrMembershipConflict is returned when a (process, group) pair is inserted twice.
	ErrMembershipConflict = errors.New("group is already a member of the process")
)

const (
	groupColumns = `g.id, g.contest_id, g.name, g.captain_account, g.created_at`

	insertGroupQuery = `
		INSERT INTO groups (contest_id, name, captain_account)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	listGroupsByContestQuery = `SELECT ` + groupColumns + `
		FROM groups g
		WHERE g.contest_id = $1
		ORDER BY g.id ASC`

	listGroupsByContestAndIDsQuery = `SELECT ` + groupColumns + `
		FROM groups g
		WHERE g.contest_id = $1 AND g.id = ANY($2)
		ORDER BY g.id ASC`

	listGroupsByProcessQuery = `SELECT ` + groupColumns + `
		FROM process_groups pg
		JOIN groups g ON g.id = pg.group_id
		WHERE pg.process_id = $1
		ORDER BY g.id ASC`

	// Only the membership rows are locked; group rows stay free for unrelated edits.
	// Ordering by group_id keeps the lock acquisition order stable across transactions.
	listGroupsByProcessAndIDsForUpdateQuery = `SELECT ` + groupColumns + `
		FROM process_groups pg
		JOIN groups g ON g.id = pg.group_id
		WHERE pg.process_id = $1 AND pg.group_id = ANY($2)
		ORDER BY pg.group_id ASC
		FOR UPDATE OF pg`

	insertMembershipsQuery = `
		INSERT INTO process_groups (process_id, group_id)
		SELECT $1, unnest($2::int[])`

	deleteMembershipsQuery = `DELETE FROM process_groups WHERE process_id = $1 AND group_id = ANY($2)`
)

type GroupRepository interface {
	Create(ctx context.Context, exec SQLExecutor, group *models.Group) error
	ListByContest(ctx context.Context, exec SQLExecutor, contestID int) ([]*models.Group, error)
	ListByContestAndIDs(ctx context.Context, exec SQLExecutor, contestID int, ids []int) ([]*models.Group, error)
	ListByProcess(ctx context.Context, exec SQLExecutor, processID int) ([]*models.Group, error)
	// ListByProcessAndIDsForUpdate returns the members of processID among ids and locks
	// their membership rows until tx ends.
	ListByProcessAndIDsForUpdate(ctx context.Context, tx SQLExecutor, processID int, ids []int) ([]*models.Group, error)
	AddToProcess(ctx context.Context, exec SQLExecutor, processID int, groupIDs []int) error
	RemoveFromProcess(ctx context.Context, exec SQLExecutor, processID int, groupIDs []int) error
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGroupRepository) Create(ctx context.Context, exec SQLExecutor, g *models.Group) error {
	err := r.getExecutor(exec).QueryRowContext(ctx, insertGroupQuery,
		g.ContestID, g.Name, g.CaptainAccount,
	).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		if pqErr, ok := asPQError(err); ok {
			switch pqErr.Code {
			case pqUniqueViolation:
				if pqErr.Constraint == "groups_contest_id_name_key" {
					return ErrGroupNameConflict
				}
			case pqForeignKeyViolation:
				if pqErr.Constraint == "groups_contest_id_fkey" {
					return ErrGroupContestInvalid
				}
			}
		}
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

func (r *postgresGroupRepository) ListByContest(ctx context.Context, exec SQLExecutor, contestID int) ([]*models.Group, error) {
	return r.list(ctx, r.getExecutor(exec), listGroupsByContestQuery, contestID)
}

func (r *postgresGroupRepository) ListByContestAndIDs(ctx context.Context, exec SQLExecutor, contestID int, ids []int) ([]*models.Group, error) {
	if len(ids) == 0 {
		return []*models.Group{}, nil
	}
	return r.list(ctx, r.getExecutor(exec), listGroupsByContestAndIDsQuery, contestID, int64Array(ids))
}

func (r *postgresGroupRepository) ListByProcess(ctx context.Context, exec SQLExecutor, processID int) ([]*models.Group, error) {
	return r.list(ctx, r.getExecutor(exec), listGroupsByProcessQuery, processID)
}

func (r *postgresGroupRepository) ListByProcessAndIDsForUpdate(ctx context.Context, tx SQLExecutor, processID int, ids []int) ([]*models.Group, error) {
	executor, err := lockingExecutor(tx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*models.Group{}, nil
	}
	return r.list(ctx, executor, listGroupsByProcessAndIDsForUpdateQuery, processID, int64Array(ids))
}

func (r *postgresGroupRepository) AddToProcess(ctx context.Context, exec SQLExecutor, processID int, groupIDs []int) error {
	if len(groupIDs) == 0 {
		return nil
	}
	_, err := r.getExecutor(exec).ExecContext(ctx, insertMembershipsQuery, processID, int64Array(groupIDs))
	if err != nil {
		if pqErr, ok := asPQError(err); ok && pqErr.Code == pqUniqueViolation && pqErr.Constraint == "process_groups_pkey" {
			return ErrMembershipConflict
		}
		return fmt.Errorf("failed to add %d groups to process %d: %w", len(groupIDs), processID, err)
	}
	return nil
}

func (r *postgresGroupRepository) RemoveFromProcess(ctx context.Context, exec SQLExecutor, processID int, groupIDs []int) error {
	if len(groupIDs) == 0 {
		return nil
	}
	// Pairs that do not exist are simply not matched.
	_, err := r.getExecutor(exec).ExecContext(ctx, deleteMembershipsQuery, processID, int64Array(groupIDs))
	if err != nil {
		return fmt.Errorf("failed to remove groups from process %d: %w", processID, err)
	}
	return nil
}

func (r *postgresGroupRepository) list(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]*models.Group, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	for rows.Next() {
		g := &models.Group{}
		if err := rows.Scan(&g.ID, &g.ContestID, &g.Name, &g.CaptainAccount, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group rows: %w", err)
	}
	return groups, nil
}
