package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mross/choreboard/internal/model"
	"github.com/mross/choreboard/internal/recurrence"
)

// ChoreMutation is the write unit for complete/undo: the new due instant and
// the completion record that replaces the current one (nil clears it). Both
// fields are written in a single statement so no reader ever observes one
// without the other.
type ChoreMutation struct {
	DueAt          time.Time
	LastCompletion *model.CompletionRecord
}

type ChoreStore struct {
	db *sql.DB
}

func NewChoreStore(db *sql.DB) *ChoreStore {
	return &ChoreStore{db: db}
}

const choreCols = `id, household_id, name, description, interval_type, interval_value,
	due_at, assigned_to, completed_at, completed_by, previous_due_at, version, created_at, updated_at`

func scanChore(scanner interface{ Scan(...any) error }) (*model.Chore, error) {
	var c model.Chore
	var intervalType string
	var assignedTo, completedBy sql.NullString
	var completedAt, previousDueAt sql.NullTime

	err := scanner.Scan(
		&c.ID, &c.HouseholdID, &c.Name, &c.Description, &intervalType, &c.IntervalValue,
		&c.DueAt, &assignedTo, &completedAt, &completedBy, &previousDueAt,
		&c.Version, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	iv, err := recurrence.Parse(intervalType)
	if err != nil {
		return nil, fmt.Errorf("chore %s: %w", c.ID, err)
	}
	c.IntervalType = iv

	if assignedTo.Valid {
		c.AssignedTo = &assignedTo.String
	}
	if completedAt.Valid {
		c.LastCompletion = &model.CompletionRecord{
			CompletedAt:   completedAt.Time,
			CompletedBy:   completedBy.String,
			PreviousDueAt: previousDueAt.Time,
		}
	}
	return &c, nil
}

// GetChore returns the chore or ErrNotFound.
func (s *ChoreStore) GetChore(ctx context.Context, id string) (*model.Chore, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+choreCols+` FROM chores WHERE id = ?`, id)
	c, err := scanChore(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("chore %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}
	return c, nil
}

// ListByHousehold returns a self-consistent snapshot of the household's
// chores, ordered by id. Display ordering is the caller's concern.
func (s *ChoreStore) ListByHousehold(ctx context.Context, householdID string) ([]model.Chore, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+choreCols+` FROM chores WHERE household_id = ? ORDER BY id ASC`, householdID)
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	defer rows.Close()

	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	return chores, rows.Err()
}

// Create inserts a chore built by the creation flow. The chore arrives with
// its id, initial due instant, and version already set.
func (s *ChoreStore) Create(ctx context.Context, c *model.Chore) error {
	var assignedTo any
	if c.AssignedTo != nil {
		assignedTo = *c.AssignedTo
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chores (id, household_id, name, description, interval_type, interval_value,
		 due_at, assigned_to, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.HouseholdID, c.Name, c.Description, c.IntervalType.String(), c.IntervalValue,
		c.DueAt, assignedTo, c.Version, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert chore: %w", err)
	}
	return nil
}

// WriteChore applies a complete/undo mutation iff the stored version still
// equals expectedVersion, incrementing the version in the same statement.
// Returns the new version on success, ErrConflict when the version has
// advanced, ErrNotFound when the chore is gone.
func (s *ChoreStore) WriteChore(ctx context.Context, id string, mut ChoreMutation, expectedVersion int64) (int64, error) {
	var completedAt, completedBy, previousDueAt any
	if rec := mut.LastCompletion; rec != nil {
		completedAt = rec.CompletedAt
		completedBy = rec.CompletedBy
		previousDueAt = rec.PreviousDueAt
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE chores
		 SET due_at = ?, completed_at = ?, completed_by = ?, previous_due_at = ?,
		     version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		mut.DueAt, completedAt, completedBy, previousDueAt,
		time.Now().UTC(), id, expectedVersion,
	)
	if err != nil {
		return 0, fmt.Errorf("write chore: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("write chore: rows affected: %w", err)
	}
	if n == 0 {
		return 0, s.guardFailure(ctx, id)
	}
	return expectedVersion + 1, nil
}

// UpdateDetails edits a chore's descriptive fields. Edits are orthogonal to
// completion: the due instant and any pending completion record are left
// untouched, so an undo that was possible before the edit is still possible
// after it. Version-guarded like every mutation.
func (s *ChoreStore) UpdateDetails(ctx context.Context, id, name, description string,
	intervalType recurrence.Interval, intervalValue int, assignedTo *string, expectedVersion int64) (*model.Chore, error) {

	var assigned any
	if assignedTo != nil {
		assigned = *assignedTo
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE chores
		 SET name = ?, description = ?, interval_type = ?, interval_value = ?, assigned_to = ?,
		     version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		name, description, intervalType.String(), intervalValue, assigned,
		time.Now().UTC(), id, expectedVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("update chore: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update chore: rows affected: %w", err)
	}
	if n == 0 {
		return nil, s.guardFailure(ctx, id)
	}
	return s.GetChore(ctx, id)
}

func (s *ChoreStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM chores WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete chore: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete chore: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("chore %s: %w", id, ErrNotFound)
	}
	return nil
}

// guardFailure distinguishes why a version-guarded statement matched no row.
// Only runs on the failure path.
func (s *ChoreStore) guardFailure(ctx context.Context, id string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM chores WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("chore %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check chore: %w", err)
	}
	return fmt.Errorf("chore %s: %w", id, ErrConflict)
}
