// Package snapshot is the persistence collaborator: three named records,
// each an opaque serialized collection, loaded once at startup and
// overwritten wholesale after every mutation.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Record names used by the domain store.
const (
	Companies      = "companies"
	Methods        = "communication_methods"
	Communications = "communications"
)

// Repository reads and replaces named snapshot records. A missing record is
// not an error; Load reports it as a nil payload.
type Repository interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Replace(ctx context.Context, name string, data []byte) error
	Close() error
}

type record struct {
	Name      string `gorm:"primaryKey"`
	Data      []byte
	UpdatedAt time.Time
}

func (record) TableName() string { return "snapshots" }

// DB persists records in a single-table SQLite database.
type DB struct {
	db *gorm.DB
}

// Open opens (creating if needed) the snapshot database at path.
// ":memory:" is accepted for tests.
func Open(path string) (*DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate snapshot database: %w", err)
	}
	return &DB{db: db}, nil
}

func (s *DB) Load(ctx context.Context, name string) ([]byte, error) {
	var rec record
	result := s.db.WithContext(ctx).First(&rec, "name = ?", name)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return rec.Data, nil
}

func (s *DB) Replace(ctx context.Context, name string, data []byte) error {
	result := s.db.WithContext(ctx).Save(&record{Name: name, Data: data, UpdatedAt: time.Now()})
	return result.Error
}

func (s *DB) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

// Memory keeps records in a map. Used by tests and as the collaborator for
// callers that do not want durability.
type Memory struct {
	mu      sync.Mutex
	records map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[name], nil
}

func (m *Memory) Replace(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.records[name] = cp
	return nil
}

func (m *Memory) Close() error { return nil }
