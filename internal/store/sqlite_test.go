package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ashford-hq/hr-assistant/internal/domain"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return repo
}

func TestEmployeeRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t)

	got, err := repo.GetEmployee(ctx, "u1")
	if err != nil {
		t.Fatalf("GetEmployee: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for missing employee, got %+v", got)
	}

	e := &domain.Employee{
		UserID:   "u1",
		FullName: "Dana Whitfield",
		Role:     "engineer",
		Level:    "L2",
		Region:   "US",
		Address: domain.Address{
			Line1:      "123 Old St",
			City:       "Oldtown",
			State:      "CA",
			PostalCode: "90001",
			Country:    "US",
		},
	}
	if err := repo.UpsertEmployee(ctx, e); err != nil {
		t.Fatalf("UpsertEmployee: %v", err)
	}

	got, err = repo.GetEmployee(ctx, "u1")
	if err != nil {
		t.Fatalf("GetEmployee: %v", err)
	}
	if got == nil {
		t.Fatal("Expected employee, got nil")
	}
	if got.FullName != "Dana Whitfield" || got.Level != "L2" || got.Address.City != "Oldtown" {
		t.Errorf("Unexpected employee: %+v", got)
	}
}

func TestUpdateAddress(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t)

	// No profile: zero rows modified.
	updated, err := repo.UpdateAddress(ctx, "missing", domain.Address{Line1: "1 A St"})
	if err != nil {
		t.Fatalf("UpdateAddress: %v", err)
	}
	if updated {
		t.Error("Expected updated=false for missing profile")
	}

	if err := repo.UpsertEmployee(ctx, &domain.Employee{UserID: "u1", FullName: "Dana Whitfield"}); err != nil {
		t.Fatalf("UpsertEmployee: %v", err)
	}

	addr := domain.Address{
		Line1:      "12 Main St",
		City:       "Boston",
		State:      "MA",
		PostalCode: "02110",
		Country:    "US",
	}
	updated, err = repo.UpdateAddress(ctx, "u1", addr)
	if err != nil {
		t.Fatalf("UpdateAddress: %v", err)
	}
	if !updated {
		t.Error("Expected updated=true")
	}

	got, err := repo.GetEmployee(ctx, "u1")
	if err != nil {
		t.Fatalf("GetEmployee: %v", err)
	}
	if got.Address != addr {
		t.Errorf("Address = %+v, want %+v", got.Address, addr)
	}
}

func TestPromotionRuleRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t)

	got, err := repo.GetPromotionRule(ctx, "engineer", "L3")
	if err != nil {
		t.Fatalf("GetPromotionRule: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for missing rule, got %+v", got)
	}

	rule := &domain.PromotionRule{
		Role:                      "engineer",
		TargetLevel:               "L3",
		MinMonthsInLevel:          12,
		RequiredPerformanceRating: "Meets",
		RequiredProjects:          3,
		RequiredCompetencyScore:   70,
	}
	if err := repo.UpsertPromotionRule(ctx, rule); err != nil {
		t.Fatalf("UpsertPromotionRule: %v", err)
	}

	got, err = repo.GetPromotionRule(ctx, "engineer", "L3")
	if err != nil {
		t.Fatalf("GetPromotionRule: %v", err)
	}
	if got == nil || *got != *rule {
		t.Errorf("Rule = %+v, want %+v", got, rule)
	}

	// Upsert overwrites.
	rule.MinMonthsInLevel = 18
	if err := repo.UpsertPromotionRule(ctx, rule); err != nil {
		t.Fatalf("UpsertPromotionRule: %v", err)
	}
	got, _ = repo.GetPromotionRule(ctx, "engineer", "L3")
	if got.MinMonthsInLevel != 18 {
		t.Errorf("MinMonthsInLevel = %d, want 18", got.MinMonthsInLevel)
	}
}

func TestPromotionProgressRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t)

	progress := &domain.PromotionProgress{
		UserID:          "u1",
		TargetLevel:     "L3",
		MonthsInLevel:   6,
		LastRating:      "Meets",
		ProjectsDone:    3,
		CompetencyScore: 80,
	}
	if err := repo.UpsertPromotionProgress(ctx, progress); err != nil {
		t.Fatalf("UpsertPromotionProgress: %v", err)
	}

	got, err := repo.GetPromotionProgress(ctx, "u1", "L3")
	if err != nil {
		t.Fatalf("GetPromotionProgress: %v", err)
	}
	if got == nil || *got != *progress {
		t.Errorf("Progress = %+v, want %+v", got, progress)
	}

	got, err = repo.GetPromotionProgress(ctx, "u1", "L4")
	if err != nil {
		t.Fatalf("GetPromotionProgress: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for other target level, got %+v", got)
	}
}
