package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mross/choreboard/internal/model"
)

type BackupStore struct {
	db *sql.DB
}

func NewBackupStore(db *sql.DB) *BackupStore {
	return &BackupStore{db: db}
}

func (s *BackupStore) Create(filename, s3Key string) (*model.Backup, error) {
	now := time.Now().UTC()
	b := &model.Backup{
		ID:        uuid.NewString(),
		Filename:  filename,
		S3Key:     s3Key,
		Status:    model.BackupStatusPending,
		StartedAt: &now,
		CreatedAt: now,
	}
	_, err := s.db.Exec(
		`INSERT INTO backups (id, filename, s3_key, status, started_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.Filename, b.S3Key, b.Status, b.StartedAt, b.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create backup: %w", err)
	}
	return b, nil
}

func (s *BackupStore) MarkUploading(id string) error {
	return s.setStatus(id, model.BackupStatusUploading, "", 0)
}

func (s *BackupStore) MarkCompleted(id string, sizeBytes int64) error {
	return s.setStatus(id, model.BackupStatusCompleted, "", sizeBytes)
}

func (s *BackupStore) MarkFailed(id, errMsg string) error {
	return s.setStatus(id, model.BackupStatusFailed, errMsg, 0)
}

func (s *BackupStore) setStatus(id string, status model.BackupStatus, errMsg string, sizeBytes int64) error {
	var completedAt any
	if status == model.BackupStatusCompleted || status == model.BackupStatusFailed {
		completedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`UPDATE backups SET status = ?, error_message = ?, size_bytes = ?, completed_at = ? WHERE id = ?`,
		status, errMsg, sizeBytes, completedAt, id,
	)
	if err != nil {
		return fmt.Errorf("set backup status: %w", err)
	}
	return nil
}

func (s *BackupStore) List(limit int) ([]model.Backup, error) {
	rows, err := s.db.Query(
		`SELECT id, filename, s3_key, size_bytes, status, error_message, started_at, completed_at, created_at
		 FROM backups ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	var backups []model.Backup
	for rows.Next() {
		var b model.Backup
		var errMsg sql.NullString
		var startedAt, completedAt sql.NullTime
		err := rows.Scan(&b.ID, &b.Filename, &b.S3Key, &b.SizeBytes, &b.Status, &errMsg, &startedAt, &completedAt, &b.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan backup: %w", err)
		}
		b.ErrorMessage = errMsg.String
		if startedAt.Valid {
			b.StartedAt = &startedAt.Time
		}
		if completedAt.Valid {
			b.CompletedAt = &completedAt.Time
		}
		backups = append(backups, b)
	}
	return backups, rows.Err()
}
