package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"nxharness/pkg/logging"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const subsystem = "history"

// runModel is the GORM model for the runs table.
type runModel struct {
	Command    string    `gorm:"not null;default:''"`
	Coordinate string    `gorm:"not null;default:''"`
	CreatedAt  time.Time
	Duration   int64     `gorm:"not null;default:0"` // nanoseconds
	Error      string    `gorm:"not null;default:''"`
	ExitCode   int       `gorm:"not null;default:0"`
	ID         string    `gorm:"primaryKey"`
	ServerURL  string    `gorm:"not null;default:''"`
	StartedAt  time.Time `gorm:"not null;index:idx_started_at"`
	UpdatedAt  time.Time
	Verdict    string    `gorm:"not null;default:''"`
}

func (runModel) TableName() string { return "runs" }

func toModel(rec RunRecord) runModel {
	return runModel{
		ID:         rec.ID,
		StartedAt:  rec.StartedAt.UTC(),
		Duration:   int64(rec.Duration),
		Coordinate: rec.Coordinate,
		ServerURL:  rec.ServerURL,
		Command:    rec.Command,
		ExitCode:   rec.ExitCode,
		Verdict:    rec.Verdict,
		Error:      rec.Error,
	}
}

func toRecord(m runModel) RunRecord {
	return RunRecord{
		ID:         m.ID,
		StartedAt:  m.StartedAt,
		Duration:   time.Duration(m.Duration),
		Coordinate: m.Coordinate,
		ServerURL:  m.ServerURL,
		Command:    m.Command,
		ExitCode:   m.ExitCode,
		Verdict:    m.Verdict,
		Error:      m.Error,
	}
}

// gormLogger routes GORM's logger interface onto the harness logger.
type gormLogger struct {
	level logger.LogLevel
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &gormLogger{level: level}
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Info {
		logging.Info(subsystem, msg, data...)
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Warn {
		logging.Warn(subsystem, msg, data...)
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Error {
		logging.Error(subsystem, nil, msg, data...)
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level < logger.Info {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		logging.Error(subsystem, err, "Query failed after %s: %s (%d rows)", elapsed, sql, rows)
	case elapsed > 200*time.Millisecond:
		logging.Warn(subsystem, "Slow query (%s): %s (%d rows)", elapsed, sql, rows)
	default:
		logging.Debug(subsystem, "Query (%s): %s (%d rows)", elapsed, sql, rows)
	}
}

// Store records and lists harness runs.
type Store struct {
	db *gorm.DB
}

// NewStore opens (creating if needed) the run-history database at path.
func NewStore(path string) (*Store, error) {
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[1:])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  (&gormLogger{}).LogMode(logger.Info),
	})
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	// Concurrent harness invocations may share the database.
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	db.Exec("PRAGMA synchronous=NORMAL")

	if err := db.AutoMigrate(&runModel{}); err != nil {
		return nil, fmt.Errorf("migrating runs schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Record inserts one run. A missing ID is assigned.
func (s *Store) Record(ctx context.Context, rec RunRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	model := toModel(rec)
	return withRetry(func() error {
		return s.db.WithContext(ctx).Create(&model).Error
	}, 3)
}

// Recent returns the most recent runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]RunRecord, error) {
	var models []runModel
	err := withRetry(func() error {
		return s.db.WithContext(ctx).
			Order("started_at DESC").
			Limit(limit).
			Find(&models).Error
	}, 3)
	if err != nil {
		return nil, err
	}

	records := make([]RunRecord, len(models))
	for i, m := range models {
		records[i] = toRecord(m)
	}
	return records, nil
}

// withRetry retries on SQLITE_BUSY with linear backoff.
func withRetry(fn func() error, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && (sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked) {
			time.Sleep(time.Millisecond * time.Duration(50*(i+1)))
			continue
		}

		return err
	}
	return fmt.Errorf("operation failed after %d retries", maxRetries)
}
