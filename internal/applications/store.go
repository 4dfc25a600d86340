// Package applications tracks which opportunities the signed-in student has
// applied to and links each successful apply to a ranking feedback event.
package applications

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/karthik/placementhub/internal/types"
)

// Store persists applications in a local SQLite database. The UNIQUE
// constraint on (student_id, opportunity_id) is the idempotence backstop
// behind the pipeline's duplicate check.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and migrates) the application store at path. Use
// ":memory:" for an ephemeral store.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open application store: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS applications (
	id TEXT PRIMARY KEY,
	opportunity_id TEXT NOT NULL,
	student_id TEXT NOT NULL,
	applied_date TIMESTAMP NOT NULL,
	status TEXT NOT NULL,
	UNIQUE(student_id, opportunity_id)
);`)
	if err != nil {
		return fmt.Errorf("failed to migrate application store: %w", err)
	}
	return nil
}

// Get returns the application for (studentID, opportunityID), or nil when
// none exists.
func (s *Store) Get(ctx context.Context, studentID, opportunityID string) (*types.Application, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, opportunity_id, student_id, applied_date, status
		 FROM applications WHERE student_id = ? AND opportunity_id = ?`,
		studentID, opportunityID,
	)
	app, err := scanApplication(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read application: %w", err)
	}
	return app, nil
}

// Insert stores a new application. A duplicate (student, opportunity) pair
// fails the UNIQUE constraint and surfaces as an error.
func (s *Store) Insert(ctx context.Context, app *types.Application) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO applications (id, opportunity_id, student_id, applied_date, status)
		 VALUES (?, ?, ?, ?, ?)`,
		app.ID.String(), app.OpportunityID, app.StudentID, app.AppliedDate, string(app.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to insert application: %w", err)
	}
	return nil
}

// ListByStudent returns the student's applications in insertion order, which
// is the display order downstream.
func (s *Store) ListByStudent(ctx context.Context, studentID string) ([]types.Application, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, opportunity_id, student_id, applied_date, status
		 FROM applications WHERE student_id = ? ORDER BY rowid`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var apps []types.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applications: %w", err)
	}
	return apps, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanApplication.
type scanner interface {
	Scan(dest ...any) error
}

func scanApplication(sc scanner) (*types.Application, error) {
	var (
		rawID   string
		app     types.Application
		applied time.Time
		status  string
	)
	if err := sc.Scan(&rawID, &app.OpportunityID, &app.StudentID, &applied, &status); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("malformed application id %q: %w", rawID, err)
	}
	app.ID = id
	app.AppliedDate = applied
	app.Status = types.ApplicationStatus(status)
	return &app, nil
}
