package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/contest-system/models"
)

var (
	ErrContestNotFound = errors.New("contest not found")
)

const (
	contestColumns = `id, name, description, creator_account, status, created_at`

	insertContestQuery = `
		INSERT INTO contests (name, description, creator_account, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	selectContestQuery = `SELECT ` + contestColumns + ` FROM contests WHERE id = $1`

	selectContestForUpdateQuery = selectContestQuery + ` FOR UPDATE`

	updateContestStatusQuery = `UPDATE contests SET status = $1 WHERE id = $2`
)

type ContestRepository interface {
	Create(ctx context.Context, exec SQLExecutor, contest *models.Contest) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Contest, error)
	// GetByIDForUpdate reads the contest and holds its row lock until tx ends.
	GetByIDForUpdate(ctx context.Context, tx SQLExecutor, id int) (*models.Contest, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.ContestStatus) error
}

type postgresContestRepository struct {
	db *sql.DB
}

func NewPostgresContestRepository(db *sql.DB) ContestRepository {
	return &postgresContestRepository{db: db}
}

func (r *postgresContestRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresContestRepository) Create(ctx context.Context, exec SQLExecutor, c *models.Contest) error {
	err := r.getExecutor(exec).QueryRowContext(ctx, insertContestQuery,
		c.Name, c.Description, c.CreatorAccount, c.Status,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contest: %w", err)
	}
	return nil
}

func (r *postgresContestRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Contest, error) {
	return r.findOne(ctx, r.getExecutor(exec), selectContestQuery, id)
}

func (r *postgresContestRepository) GetByIDForUpdate(ctx context.Context, tx SQLExecutor, id int) (*models.Contest, error) {
	executor, err := lockingExecutor(tx)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, executor, selectContestForUpdateQuery, id)
}

func (r *postgresContestRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.ContestStatus) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, updateContestStatusQuery, status, id)
	if err != nil {
		return fmt.Errorf("failed to update contest %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrContestNotFound)
}

func (r *postgresContestRepository) findOne(ctx context.Context, executor SQLExecutor, query string, id int) (*models.Contest, error) {
	c := &models.Contest{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Description, &c.CreatorAccount, &c.Status, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrContestNotFound
		}
		return nil, fmt.Errorf("failed to get contest %d: %w", id, err)
	}
	return c, nil
}
