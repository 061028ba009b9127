package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/contest-system/models"
)

var (
	ErrProcessNotFound       = errors.New("process not found")
	ErrProcessSortConflict   = errors.New("process sort already taken in this contest")
	ErrProcessContestInvalid = errors.New("invalid contest reference")
)

const (
	processColumns = `id, contest_id, name, description, submit_list, sort, status,
		start_time, end_submit_time, finish_time, attachment_key, created_at`

	insertProcessQuery = `
		INSERT INTO processes (
			contest_id, name, description, submit_list, sort, status,
			start_time, end_submit_time, finish_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	selectProcessQuery = `SELECT ` + processColumns + ` FROM processes WHERE id = $1`

	selectProcessForUpdateQuery = selectProcessQuery + ` FOR UPDATE`

	selectProcessByContestAndSortQuery = `SELECT ` + processColumns + `
		FROM processes
		WHERE contest_id = $1 AND sort = $2`

	listProcessesByContestQuery = `SELECT ` + processColumns + `
		FROM processes
		WHERE contest_id = $1
		ORDER BY sort ASC`

	updateProcessQuery = `
		UPDATE processes SET
			name = $1,
			description = $2,
			submit_list = $3,
			status = $4,
			start_time = $5,
			end_submit_time = $6,
			finish_time = $7
			-- sort and contest_id are never rewritten
		WHERE id = $8`

	updateProcessAttachmentQuery = `UPDATE processes SET attachment_key = $1 WHERE id = $2`

	deleteProcessQuery = `DELETE FROM processes WHERE id = $1`
)

type ProcessRepository interface {
	Create(ctx context.Context, exec SQLExecutor, process *models.Process) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Process, error)
	// GetByIDForUpdate reads the process and holds its row lock until tx ends.
	GetByIDForUpdate(ctx context.Context, tx SQLExecutor, id int) (*models.Process, error)
	GetByContestAndSort(ctx context.Context, exec SQLExecutor, contestID, sort int) (*models.Process, error)
	ListByContest(ctx context.Context, exec SQLExecutor, contestID int) ([]*models.Process, error)
	Update(ctx context.Context, exec SQLExecutor, process *models.Process) error
	UpdateAttachmentKey(ctx context.Context, exec SQLExecutor, id int, key *string) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresProcessRepository struct {
	db *sql.DB
}

func NewPostgresProcessRepository(db *sql.DB) ProcessRepository {
	return &postgresProcessRepository{db: db}
}

func (r *postgresProcessRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresProcessRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Process) error {
	err := r.getExecutor(exec).QueryRowContext(ctx, insertProcessQuery,
		p.ContestID, p.Name, p.Description, p.SubmitList, p.Sort, p.Status,
		p.StartTime, p.EndSubmitTime, p.FinishTime,
	).Scan(&p.ID, &p.CreatedAt)
	return r.handleProcessError(err)
}

func (r *postgresProcessRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Process, error) {
	return r.findOne(ctx, r.getExecutor(exec), selectProcessQuery, id)
}

func (r *postgresProcessRepository) GetByIDForUpdate(ctx context.Context, tx SQLExecutor, id int) (*models.Process, error) {
	executor, err := lockingExecutor(tx)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, executor, selectProcessForUpdateQuery, id)
}

func (r *postgresProcessRepository) GetByContestAndSort(ctx context.Context, exec SQLExecutor, contestID, sort int) (*models.Process, error) {
	return r.findOne(ctx, r.getExecutor(exec), selectProcessByContestAndSortQuery, contestID, sort)
}

func (r *postgresProcessRepository) ListByContest(ctx context.Context, exec SQLExecutor, contestID int) ([]*models.Process, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, listProcessesByContestQuery, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes of contest %d: %w", contestID, err)
	}
	defer rows.Close()

	processes := make([]*models.Process, 0)
	for rows.Next() {
		p := &models.Process{}
		if err := scanProcess(rows, p); err != nil {
			return nil, fmt.Errorf("failed to scan process row: %w", err)
		}
		processes = append(processes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating process rows: %w", err)
	}
	return processes, nil
}

func (r *postgresProcessRepository) Update(ctx context.Context, exec SQLExecutor, p *models.Process) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, updateProcessQuery,
		p.Name, p.Description, p.SubmitList, p.Status,
		p.StartTime, p.EndSubmitTime, p.FinishTime,
		p.ID,
	)
	if err != nil {
		return r.handleProcessError(err)
	}
	return checkAffectedRows(result, ErrProcessNotFound)
}

func (r *postgresProcessRepository) UpdateAttachmentKey(ctx context.Context, exec SQLExecutor, id int, key *string) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, updateProcessAttachmentQuery, key, id)
	if err != nil {
		return fmt.Errorf("failed to update process attachment key: %w", err)
	}
	return checkAffectedRows(result, ErrProcessNotFound)
}

func (r *postgresProcessRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, deleteProcessQuery, id)
	if err != nil {
		return r.handleProcessError(err)
	}
	return checkAffectedRows(result, ErrProcessNotFound)
}

func (r *postgresProcessRepository) findOne(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) (*models.Process, error) {
	p := &models.Process{}
	if err := scanProcess(executor.QueryRowContext(ctx, query, args...), p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProcessNotFound
		}
		return nil, fmt.Errorf("failed to find process: %w", err)
	}
	return p, nil
}

func scanProcess(row rowScanner, p *models.Process) error {
	return row.Scan(
		&p.ID, &p.ContestID, &p.Name, &p.Description, &p.SubmitList, &p.Sort, &p.Status,
		&p.StartTime, &p.EndSubmitTime, &p.FinishTime, &p.AttachmentKey, &p.CreatedAt,
	)
}

func (r *postgresProcessRepository) handleProcessError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case pqUniqueViolation:
			if pqErr.Constraint == "processes_contest_id_sort_key" {
				return ErrProcessSortConflict
			}
		case pqForeignKeyViolation:
			if pqErr.Constraint == "processes_contest_id_fkey" {
				return ErrProcessContestInvalid
			}
		}
	}
	return fmt.Errorf("process query failed: %w", err)
}
