package kvstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is one row of the sqlite key-value table.
type Entry struct {
	Key       string `gorm:"primaryKey;size:200"`
	Value     []byte
	UpdatedAt time.Time
}

func (Entry) TableName() string {
	return "kv_entries"
}

// SQLiteStore keeps entries in their own sqlite file. The summed size of
// all values is capped at maxBytes.
type SQLiteStore struct {
	db       *gorm.DB
	maxBytes int64

	mu     sync.Mutex
	closed bool
}

func NewSQLite(path string, maxBytes int64) (*SQLiteStore, error) {
	dsn := "file::memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, unavailable(err)
		}
		dsn = fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		return nil, unavailable(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, unavailable(err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, unavailable(err)
	}
	return &SQLiteStore{db: db, maxBytes: maxBytes}, nil
}

func (s *SQLiteStore) conn(ctx context.Context) (*gorm.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrUnavailable
	}
	return s.db.WithContext(ctx), nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var entry Entry
	err = db.First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return entry.Value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if s.maxBytes > 0 {
			var used int64
			err := tx.Model(&Entry{}).
				Where("key <> ?", key).
				Select("COALESCE(SUM(LENGTH(value)), 0)").
				Scan(&used).Error
			if err != nil {
				return unavailable(err)
			}
			if used+int64(len(value)) > s.maxBytes {
				return fmt.Errorf("%w: %d of %d bytes used, %q needs %d", ErrQuotaExceeded, used, s.maxBytes, key, len(value))
			}
		}
		entry := Entry{Key: key, Value: value, UpdatedAt: time.Now()}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&entry).Error
		if err != nil {
			return unavailable(err)
		}
		return nil
	})
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if err := db.Delete(&Entry{}, "key = ?", key).Error; err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
