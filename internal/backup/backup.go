package backup

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sethvargo/go-retry"

	"github.com/mross/choreboard/internal/store"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Config holds backup manager configuration.
type Config struct {
	S3         S3Config
	DBPath     string
	Passphrase string
	Interval   time.Duration
	Retain     int
}

// Manager produces encrypted database snapshots and uploads them to
// S3-compatible storage on a fixed interval. With no S3 credentials or no
// passphrase configured the manager is disabled and Start is a no-op.
type Manager struct {
	mu      sync.RWMutex
	cfg     Config
	db      *sql.DB
	backups *store.BackupStore
	client  s3Client
	logger  *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewManager(cfg Config, db *sql.DB, backups *store.BackupStore, logger *slog.Logger) *Manager {
	m := &Manager{
		cfg:     cfg,
		db:      db,
		backups: backups,
		logger:  logger,
	}
	if cfg.S3.Bucket != "" && cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" && cfg.Passphrase != "" {
		m.client = newS3Client(cfg.S3)
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether the manager has everything it needs to run.
func (m *Manager) Enabled() bool {
	return m.client != nil
}

// Start begins the scheduled backup loop.
func (m *Manager) Start(ctx context.Context) {
	if !m.Enabled() {
		return
	}

	interval := m.cfg.Interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	m.mu.Lock()
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := m.RunNow(ctx); err != nil {
					m.logger.Error("scheduled backup failed", "error", err)
				}
			}
		}
	}()
}

// Stop cancels the loop and waits for it to finish.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// RunNow takes one backup: snapshot the database, encrypt, upload, record.
func (m *Manager) RunNow(ctx context.Context) (string, error) {
	if !m.Enabled() {
		return "", fmt.Errorf("backup not configured")
	}

	timestamp := time.Now().UTC().Format("2006-01-02T150405Z")
	filename := fmt.Sprintf("choreboard-%s.db.enc", timestamp)
	s3Key := "backups/" + filename

	record, err := m.backups.Create(filename, s3Key)
	if err != nil {
		return "", fmt.Errorf("create backup record: %w", err)
	}

	snapshotPath := filepath.Join(os.TempDir(), fmt.Sprintf("choreboard-snapshot-%s.db", record.ID))
	defer os.Remove(snapshotPath)

	// VACUUM INTO writes a consistent point-in-time copy without blocking
	// concurrent readers.
	if _, err := m.db.ExecContext(ctx, `VACUUM INTO ?`, snapshotPath); err != nil {
		m.backups.MarkFailed(record.ID, err.Error())
		return "", fmt.Errorf("snapshot database: %w", err)
	}

	plaintext, err := os.ReadFile(snapshotPath)
	if err != nil {
		m.backups.MarkFailed(record.ID, err.Error())
		return "", fmt.Errorf("read snapshot: %w", err)
	}

	salt, err := GenerateSalt()
	if err != nil {
		m.backups.MarkFailed(record.ID, err.Error())
		return "", err
	}
	encrypted, err := Encrypt(plaintext, m.cfg.Passphrase, salt)
	if err != nil {
		m.backups.MarkFailed(record.ID, err.Error())
		return "", fmt.Errorf("encrypt snapshot: %w", err)
	}

	if err := m.backups.MarkUploading(record.ID); err != nil {
		m.logger.Warn("mark backup uploading", "error", err)
	}

	if err := m.upload(ctx, s3Key, encrypted); err != nil {
		m.backups.MarkFailed(record.ID, err.Error())
		return "", fmt.Errorf("upload backup: %w", err)
	}

	if err := m.backups.MarkCompleted(record.ID, int64(len(encrypted))); err != nil {
		m.logger.Warn("mark backup completed", "error", err)
	}

	m.logger.Info("backup uploaded", "key", s3Key, "size_bytes", len(encrypted))

	if err := m.prune(ctx); err != nil {
		m.logger.Warn("prune old backups", "error", err)
	}
	return record.ID, nil
}

// prune deletes the oldest backup objects beyond the retention count. Object
// keys embed the snapshot timestamp in a lexicographically sortable format, so
// key order is age order.
func (m *Manager) prune(ctx context.Context) error {
	retain := m.cfg.Retain
	if retain <= 0 {
		retain = 14
	}

	out, err := m.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(m.cfg.S3.Bucket),
		Prefix: aws.String("backups/"),
	})
	if err != nil {
		return fmt.Errorf("list backups: %w", err)
	}

	keys := make([]string, 0, len(out.Contents))
	for _, obj := range out.Contents {
		if obj.Key != nil {
			keys = append(keys, *obj.Key)
		}
	}
	if len(keys) <= retain {
		return nil
	}
	sort.Strings(keys)

	for _, key := range keys[:len(keys)-retain] {
		_, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(m.cfg.S3.Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
		m.logger.Info("pruned old backup", "key", key)
	}
	return nil
}

// upload puts the object with bounded exponential backoff. Object storage
// hiccups are the common failure here and a retried PutObject is idempotent.
func (m *Manager) upload(ctx context.Context, key string, data []byte) error {
	backoff := retry.WithMaxRetries(4, retry.NewExponential(2*time.Second))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(m.cfg.S3.Bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(data),
			ContentLength: aws.Int64(int64(len(data))),
		})
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// Fetch downloads and decrypts a backup object. Restoring the database file
// from the returned bytes is an operator action, outside this manager.
func (m *Manager) Fetch(ctx context.Context, s3Key string) ([]byte, error) {
	if !m.Enabled() {
		return nil, fmt.Errorf("backup not configured")
	}

	out, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.cfg.S3.Bucket),
		Key:    aws.String(s3Key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer out.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(out.Body); err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}

	return Decrypt(buf.Bytes(), m.cfg.Passphrase)
}
