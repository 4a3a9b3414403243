// Seed loads demo employees, promotion rules, and progress records so
// all three assistant flows are exercisable locally.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/ashford-hq/hr-assistant/internal/config"
	"github.com/ashford-hq/hr-assistant/internal/domain"
	"github.com/ashford-hq/hr-assistant/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	ctx := context.Background()

	employees := []*domain.Employee{
		{
			UserID:   "emp-1001",
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
		},
		{
			UserID:   "emp-1002",
			FullName: "Farid Rahman",
			Role:     "analyst",
			Level:    "L3",
			Region:   "MY",
			Address: domain.Address{
				Line1:      "8 Jalan Ampang",
				City:       "Kuala Lumpur",
				State:      "WP",
				PostalCode: "50450",
				Country:    "MY",
			},
		},
	}

	rules := []*domain.PromotionRule{
		{
			Role:                      "engineer",
			TargetLevel:               "L3",
			MinMonthsInLevel:          12,
			RequiredPerformanceRating: "Meets",
			RequiredProjects:          3,
			RequiredCompetencyScore:   70,
		},
		{
			Role:                      "analyst",
			TargetLevel:               "L4",
			MinMonthsInLevel:          18,
			RequiredPerformanceRating: "Exceeds",
			RequiredProjects:          4,
			RequiredCompetencyScore:   80,
		},
	}

	progress := []*domain.PromotionProgress{
		{
			UserID:          "emp-1001",
			TargetLevel:     "L3",
			MonthsInLevel:   6,
			LastRating:      "Meets",
			ProjectsDone:    3,
			CompetencyScore: 80,
		},
		{
			UserID:          "emp-1002",
			TargetLevel:     "L4",
			MonthsInLevel:   20,
			LastRating:      "Exceeds",
			ProjectsDone:    5,
			CompetencyScore: 88,
		},
	}

	for _, e := range employees {
		if err := repo.UpsertEmployee(ctx, e); err != nil {
			slog.Error("Failed to seed employee", "user_id", e.UserID, "error", err)
			os.Exit(1)
		}
	}
	for _, r := range rules {
		if err := repo.UpsertPromotionRule(ctx, r); err != nil {
			slog.Error("Failed to seed promotion rule", "role", r.Role, "target_level", r.TargetLevel, "error", err)
			os.Exit(1)
		}
	}
	for _, p := range progress {
		if err := repo.UpsertPromotionProgress(ctx, p); err != nil {
			slog.Error("Failed to seed promotion progress", "user_id", p.UserID, "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Seed complete",
		"employees", len(employees),
		"rules", len(rules),
		"progress_records", len(progress),
		"db", cfg.DBPath,
	)
}
