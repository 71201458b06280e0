package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mross/choreboard/internal/model"
)

type HouseholdStore struct {
	db *sql.DB
}

func NewHouseholdStore(db *sql.DB) *HouseholdStore {
	return &HouseholdStore{db: db}
}

func (s *HouseholdStore) Create(name string) (*model.Household, error) {
	now := time.Now().UTC()
	h := &model.Household{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.Exec(
		`INSERT INTO households (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		h.ID, h.Name, h.CreatedAt, h.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert household: %w", err)
	}
	return h, nil
}

func (s *HouseholdStore) GetByID(id string) (*model.Household, error) {
	var h model.Household
	err := s.db.QueryRow(
		`SELECT id, name, created_at, updated_at FROM households WHERE id = ?`, id,
	).Scan(&h.ID, &h.Name, &h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("household %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}
	return &h, nil
}

func (s *HouseholdStore) List() ([]model.Household, error) {
	rows, err := s.db.Query(`SELECT id, name, created_at, updated_at FROM households ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list households: %w", err)
	}
	defer rows.Close()

	var households []model.Household
	for rows.Next() {
		var h model.Household
		if err := rows.Scan(&h.ID, &h.Name, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan household: %w", err)
		}
		households = append(households, h)
	}
	return households, rows.Err()
}
