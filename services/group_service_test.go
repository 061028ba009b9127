package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/contest-system/models"
)

func TestGroupCreate(t *testing.T) {
	store := newMemStore()
	svc := NewGroupService(fakeContestRepo{store}, fakeGroupRepo{store}, nil)
	ctx := context.Background()
	contest := store.addContest(creator, models.ContestStatusCreating)

	group, err := svc.Create(ctx, "student-1", CreateGroupInput{ContestID: contest.ID, Name: "Owls"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if group.CaptainAccount != "student-1" || group.ContestID == nil || *group.ContestID != contest.ID {
		t.Fatalf("unexpected group %+v", group)
	}

	if _, err := svc.Create(ctx, "student-2", CreateGroupInput{ContestID: contest.ID, Name: "Owls"}); !errors.Is(err, ErrGroupNameConflict) {
		t.Fatalf("expected name conflict, got %v", err)
	}
	if _, err := svc.Create(ctx, "student-2", CreateGroupInput{ContestID: contest.ID, Name: ""}); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Create(ctx, "student-2", CreateGroupInput{ContestID: 424242, Name: "Hawks"}); !errors.Is(err, ErrContestNotFound) {
		t.Fatalf("expected contest not found, got %v", err)
	}

	list, err := svc.ListByContest(ctx, contest.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one group, got %d", len(list))
	}
}

func TestGroupCreateRejectsDeletedContest(t *testing.T) {
	store := newMemStore()
	svc := NewGroupService(fakeContestRepo{store}, fakeGroupRepo{store}, nil)
	contest := store.addContest(creator, models.ContestStatusDelete)

	if _, err := svc.Create(context.Background(), "student-1", CreateGroupInput{ContestID: contest.ID, Name: "Owls"}); !errors.Is(err, ErrContestDeleted) {
		t.Fatalf("expected contest deleted, got %v", err)
	}
}
