package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ashford-hq/hr-assistant/internal/domain"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS employees (
		user_id TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT '',
		level TEXT NOT NULL DEFAULT '',
		region TEXT NOT NULL DEFAULT '',
		addr_line1 TEXT NOT NULL DEFAULT '',
		addr_line2 TEXT NOT NULL DEFAULT '',
		addr_city TEXT NOT NULL DEFAULT '',
		addr_state TEXT NOT NULL DEFAULT '',
		addr_postal_code TEXT NOT NULL DEFAULT '',
		addr_country TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS promotion_rules (
		role TEXT NOT NULL,
		target_level TEXT NOT NULL,
		min_months_in_level INTEGER NOT NULL DEFAULT 0,
		required_performance_rating TEXT NOT NULL DEFAULT 'Meets',
		required_projects INTEGER NOT NULL DEFAULT 0,
		required_competency_score INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (role, target_level)
	);

	CREATE TABLE IF NOT EXISTS promotion_progress (
		user_id TEXT NOT NULL,
		target_level TEXT NOT NULL,
		months_in_level INTEGER NOT NULL DEFAULT 0,
		last_rating TEXT NOT NULL DEFAULT '',
		projects_completed INTEGER NOT NULL DEFAULT 0,
		competency_score INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, target_level)
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetEmployee retrieves an employee profile by user ID.
func (s *SQLiteStore) GetEmployee(ctx context.Context, userID string) (*domain.Employee, error) {
	query := `
		SELECT user_id, full_name, role, level, region,
		       addr_line1, addr_line2, addr_city, addr_state, addr_postal_code, addr_country,
		       created_at, updated_at
		FROM employees WHERE user_id = ?`

	row := s.db.QueryRowContext(ctx, query, userID)

	var e domain.Employee
	var createdAt, updatedAt int64

	err := row.Scan(
		&e.UserID, &e.FullName, &e.Role, &e.Level, &e.Region,
		&e.Address.Line1, &e.Address.Line2, &e.Address.City,
		&e.Address.State, &e.Address.PostalCode, &e.Address.Country,
		&createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan employee row: %w", err)
	}

	e.CreatedAt = time.Unix(createdAt, 0)
	e.UpdatedAt = time.Unix(updatedAt, 0)

	return &e, nil
}

// UpsertEmployee creates or updates an employee profile.
func (s *SQLiteStore) UpsertEmployee(ctx context.Context, e *domain.Employee) error {
	query := `
	INSERT INTO employees (user_id, full_name, role, level, region,
		addr_line1, addr_line2, addr_city, addr_state, addr_postal_code, addr_country,
		created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		full_name = excluded.full_name,
		role = excluded.role,
		level = excluded.level,
		region = excluded.region,
		addr_line1 = excluded.addr_line1,
		addr_line2 = excluded.addr_line2,
		addr_city = excluded.addr_city,
		addr_state = excluded.addr_state,
		addr_postal_code = excluded.addr_postal_code,
		addr_country = excluded.addr_country,
		updated_at = excluded.updated_at`

	now := time.Now()
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	_, err := s.db.ExecContext(ctx, query,
		e.UserID, e.FullName, e.Role, e.Level, e.Region,
		e.Address.Line1, e.Address.Line2, e.Address.City,
		e.Address.State, e.Address.PostalCode, e.Address.Country,
		createdAt.Unix(), now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert employee: %w", err)
	}
	return nil
}

// UpdateAddress replaces the address on an employee profile. Returns
// false if no profile exists for the user.
func (s *SQLiteStore) UpdateAddress(ctx context.Context, userID string, addr domain.Address) (bool, error) {
	query := `
	UPDATE employees SET
		addr_line1 = ?, addr_line2 = ?, addr_city = ?,
		addr_state = ?, addr_postal_code = ?, addr_country = ?,
		updated_at = ?
	WHERE user_id = ?`

	res, err := s.db.ExecContext(ctx, query,
		addr.Line1, addr.Line2, addr.City,
		addr.State, addr.PostalCode, addr.Country,
		time.Now().Unix(), userID,
	)
	if err != nil {
		return false, fmt.Errorf("update address: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// GetPromotionRule retrieves the promotion rule for a role and target level.
func (s *SQLiteStore) GetPromotionRule(ctx context.Context, role, targetLevel string) (*domain.PromotionRule, error) {
	query := `
		SELECT role, target_level, min_months_in_level,
		       required_performance_rating, required_projects, required_competency_score
		FROM promotion_rules WHERE role = ? AND target_level = ?`

	row := s.db.QueryRowContext(ctx, query, role, targetLevel)

	var r domain.PromotionRule
	err := row.Scan(
		&r.Role, &r.TargetLevel, &r.MinMonthsInLevel,
		&r.RequiredPerformanceRating, &r.RequiredProjects, &r.RequiredCompetencyScore,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan promotion rule row: %w", err)
	}

	return &r, nil
}

// UpsertPromotionRule creates or updates a promotion rule.
func (s *SQLiteStore) UpsertPromotionRule(ctx context.Context, r *domain.PromotionRule) error {
	query := `
	INSERT INTO promotion_rules (role, target_level, min_months_in_level,
		required_performance_rating, required_projects, required_competency_score)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(role, target_level) DO UPDATE SET
		min_months_in_level = excluded.min_months_in_level,
		required_performance_rating = excluded.required_performance_rating,
		required_projects = excluded.required_projects,
		required_competency_score = excluded.required_competency_score`

	_, err := s.db.ExecContext(ctx, query,
		r.Role, r.TargetLevel, r.MinMonthsInLevel,
		r.RequiredPerformanceRating, r.RequiredProjects, r.RequiredCompetencyScore,
	)
	if err != nil {
		return fmt.Errorf("upsert promotion rule: %w", err)
	}
	return nil
}

// GetPromotionProgress retrieves a user's progress toward a target level.
func (s *SQLiteStore) GetPromotionProgress(ctx context.Context, userID, targetLevel string) (*domain.PromotionProgress, error) {
	query := `
		SELECT user_id, target_level, months_in_level, last_rating,
		       projects_completed, competency_score
		FROM promotion_progress WHERE user_id = ? AND target_level = ?`

	row := s.db.QueryRowContext(ctx, query, userID, targetLevel)

	var p domain.PromotionProgress
	err := row.Scan(
		&p.UserID, &p.TargetLevel, &p.MonthsInLevel, &p.LastRating,
		&p.ProjectsDone, &p.CompetencyScore,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan promotion progress row: %w", err)
	}

	return &p, nil
}

// UpsertPromotionProgress creates or updates a progress record.
func (s *SQLiteStore) UpsertPromotionProgress(ctx context.Context, p *domain.PromotionProgress) error {
	query := `
	INSERT INTO promotion_progress (user_id, target_level, months_in_level,
		last_rating, projects_completed, competency_score)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(user_id, target_level) DO UPDATE SET
		months_in_level = excluded.months_in_level,
		last_rating = excluded.last_rating,
		projects_completed = excluded.projects_completed,
		competency_score = excluded.competency_score`

	_, err := s.db.ExecContext(ctx, query,
		p.UserID, p.TargetLevel, p.MonthsInLevel,
		p.LastRating, p.ProjectsDone, p.CompetencyScore,
	)
	if err != nil {
		return fmt.Errorf("upsert promotion progress: %w", err)
	}
	return nil
}
