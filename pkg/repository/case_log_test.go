package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/modsec-lab/aegis/pkg/domain/interfaces"
	"github.com/modsec-lab/aegis/pkg/domain/model"
	"github.com/modsec-lab/aegis/pkg/domain/types"
)

func newTestCaseLog(createdAt time.Time) *model.CaseLog {
	id := uuid.NewString()
	return &model.CaseLog{
		ID:           id,
		ReportID:     types.ReportID(id),
		ReporterID:   testUserID(),
		TargetUserID: testUserID(),
		ChannelID:    types.ChannelID("C0000000001"),
		Text:         "offending message",
		Category:     types.CategoryHarassment,
		Actions:      []types.Action{types.ActionRecord, types.ActionFlag},
		Outcome:      "The post was flagged.",
		Priority:     4,
		Score:        61.5,
		CreatedAt:    createdAt,
	}
}

// pick returns only the entries this test created, in the order listed.
// Shared backends may hold logs from earlier runs.
func pick(logs []*model.CaseLog, want ...*model.CaseLog) []*model.CaseLog {
	ids := make(map[string]bool, len(want))
	for _, w := range want {
		ids[w.ID] = true
	}
	var out []*model.CaseLog
	for _, l := range logs {
		if ids[l.ID] {
			out = append(out, l)
		}
	}
	return out
}

func runCaseLogRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Run("Put and List", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		base := time.Now().Add(-time.Hour).Truncate(time.Millisecond)
		older := newTestCaseLog(base)
		newer := newTestCaseLog(base.Add(time.Minute))

		if err := repo.CaseLog().Put(ctx, older); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := repo.CaseLog().Put(ctx, newer); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		logs, err := repo.CaseLog().List(ctx, 0)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}

		got := pick(logs, older, newer)
		if len(got) != 2 {
			t.Fatalf("Expected 2 entries, got %d", len(got))
		}
		if got[0].ID != newer.ID || got[1].ID != older.ID {
			t.Errorf("Expected newest-first order, got [%s, %s]", got[0].ID, got[1].ID)
		}

		if got[0].Category != types.CategoryHarassment {
			t.Errorf("Category mismatch: got %v", got[0].Category)
		}
		if len(got[0].Actions) != 2 || got[0].Actions[0] != types.ActionRecord || got[0].Actions[1] != types.ActionFlag {
			t.Errorf("Actions mismatch: got %v", got[0].Actions)
		}
		if got[0].Outcome != "The post was flagged." {
			t.Errorf("Outcome mismatch: got %q", got[0].Outcome)
		}
	})

	t.Run("List with limit", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		base := time.Now().Add(-time.Hour).Truncate(time.Millisecond)
		for i := 0; i < 3; i++ {
			if err := repo.CaseLog().Put(ctx, newTestCaseLog(base.Add(time.Duration(i)*time.Second))); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
		}

		logs, err := repo.CaseLog().List(ctx, 2)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(logs) != 2 {
			t.Errorf("Expected limit of 2 entries, got %d", len(logs))
		}
	})

	t.Run("Put overwrites", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		log := newTestCaseLog(time.Now().Truncate(time.Millisecond))
		if err := repo.CaseLog().Put(ctx, log); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		log.Outcome = "The post was removed."
		if err := repo.CaseLog().Put(ctx, log); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		logs, err := repo.CaseLog().List(ctx, 0)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		got := pick(logs, log)
		if len(got) != 1 {
			t.Fatalf("Expected 1 entry after overwrite, got %d", len(got))
		}
		if got[0].Outcome != "The post was removed." {
			t.Errorf("Expected overwritten outcome, got %q", got[0].Outcome)
		}
	})
}
