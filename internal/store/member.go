package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mross/choreboard/internal/model"
)

type MemberStore struct {
	db *sql.DB
}

func NewMemberStore(db *sql.DB) *MemberStore {
	return &MemberStore{db: db}
}

const memberCols = `id, household_id, user_id, name, role, color, avatar_emoji, created_at, updated_at`

func scanMember(scanner interface{ Scan(...any) error }) (*model.Member, error) {
	var m model.Member
	err := scanner.Scan(
		&m.ID, &m.HouseholdID, &m.UserID, &m.Name, &m.Role,
		&m.Color, &m.AvatarEmoji, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MemberStore) Create(householdID, userID, name, role, color, avatarEmoji string) (*model.Member, error) {
	now := time.Now().UTC()
	m := &model.Member{
		ID:          uuid.NewString(),
		HouseholdID: householdID,
		UserID:      userID,
		Name:        name,
		Role:        role,
		Color:       color,
		AvatarEmoji: avatarEmoji,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := s.db.Exec(
		`INSERT INTO members (id, household_id, user_id, name, role, color, avatar_emoji, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.HouseholdID, m.UserID, m.Name, m.Role, m.Color, m.AvatarEmoji, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert member: %w", err)
	}
	return m, nil
}

func (s *MemberStore) GetByID(id string) (*model.Member, error) {
	row := s.db.QueryRow(`SELECT `+memberCols+` FROM members WHERE id = ?`, id)
	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("member %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

// ListByHousehold returns the household's members, read-only from the chore
// core's perspective, ordered by name for stable display.
func (s *MemberStore) ListByHousehold(householdID string) ([]model.Member, error) {
	rows, err := s.db.Query(
		`SELECT `+memberCols+` FROM members WHERE household_id = ? ORDER BY name ASC`, householdID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}
