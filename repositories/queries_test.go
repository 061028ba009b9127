package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
)

func TestLockingQueriesUseForUpdate(t *testing.T) {
	if !strings.HasSuffix(selectContestForUpdateQuery, "FOR UPDATE") {
		t.Fatalf("expected contest lock query to end with FOR UPDATE")
	}
	if !strings.HasSuffix(selectProcessForUpdateQuery, "FOR UPDATE") {
		t.Fatalf("expected process lock query to end with FOR UPDATE")
	}
	if !strings.Contains(listGroupsByProcessAndIDsForUpdateQuery, "FOR UPDATE OF pg") {
		t.Fatalf("expected membership lock to be scoped to process_groups rows")
	}
	if strings.Contains(selectContestQuery, "FOR UPDATE") || strings.Contains(selectProcessQuery, "FOR UPDATE") {
		t.Fatalf("plain reads must not lock")
	}
}

func TestProcessQueriesOrderBySort(t *testing.T) {
	if !strings.Contains(listProcessesByContestQuery, "ORDER BY sort ASC") {
		t.Fatalf("expected processes listed in ascending sort order")
	}
	if !strings.Contains(selectProcessByContestAndSortQuery, "contest_id = $1 AND sort = $2") {
		t.Fatalf("expected lookup by (contest, sort)")
	}
	if strings.Contains(updateProcessQuery, "sort =") {
		t.Fatalf("update must not rewrite sort")
	}
}

func TestMembershipQueries(t *testing.T) {
	if !strings.Contains(insertMembershipsQuery, "unnest($2::int[])") {
		t.Fatalf("expected bulk insert from array")
	}
	if strings.Contains(insertMembershipsQuery, "ON CONFLICT") {
		t.Fatalf("duplicate pairs must fail on the primary key, not be swallowed")
	}
	if !strings.Contains(deleteMembershipsQuery, "process_id = $1 AND group_id = ANY($2)") {
		t.Fatalf("expected delete scoped to the given pairs")
	}
	if !strings.Contains(listGroupsByProcessAndIDsForUpdateQuery, "ORDER BY pg.group_id") {
		t.Fatalf("expected stable lock order")
	}
}

func TestLockingReadsRequireTransaction(t *testing.T) {
	ctx := context.Background()

	contests := NewPostgresContestRepository(nil)
	if _, err := contests.GetByIDForUpdate(ctx, nil, 1); !errors.Is(err, ErrTransactionRequired) {
		t.Fatalf("expected ErrTransactionRequired, got %v", err)
	}

	processes := NewPostgresProcessRepository(nil)
	if _, err := processes.GetByIDForUpdate(ctx, &sql.DB{}, 1); !errors.Is(err, ErrTransactionRequired) {
		t.Fatalf("expected ErrTransactionRequired for *sql.DB, got %v", err)
	}

	groups := NewPostgresGroupRepository(nil)
	if _, err := groups.ListByProcessAndIDsForUpdate(ctx, nil, 1, []int{1}); !errors.Is(err, ErrTransactionRequired) {
		t.Fatalf("expected ErrTransactionRequired, got %v", err)
	}
}

func TestEmptyIDListsShortCircuit(t *testing.T) {
	ctx := context.Background()
	groups := NewPostgresGroupRepository(nil)

	if err := groups.AddToProcess(ctx, nil, 1, nil); err != nil {
		t.Fatalf("expected no-op add, got %v", err)
	}
	if err := groups.RemoveFromProcess(ctx, nil, 1, nil); err != nil {
		t.Fatalf("expected no-op remove, got %v", err)
	}
	list, err := groups.ListByContestAndIDs(ctx, nil, 1, nil)
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty list, got %v, %v", list, err)
	}
}
