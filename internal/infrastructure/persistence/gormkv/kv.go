// Package gormkv provides a SQLite-backed KVStore using a single kv
// table. The embedded-database backend keeps everything in one file
// while preserving the rewrite-wholesale contract of the port.
package gormkv

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/daidai-0318/nanimeshi-web/internal/ports/outbound"
)

// entry is the kv table row. No schema version column exists on
// purpose; the stored values carry none either.
type entry struct {
	Key   string `gorm:"primaryKey;column:key"`
	Value []byte `gorm:"column:value"`
}

func (entry) TableName() string {
	return "kv"
}

// KVStore implements outbound.KVStore on a SQLite database.
type KVStore struct {
	db *gorm.DB
}

// NewKVStore opens (or creates) the database file and ensures the kv
// table exists.
func NewKVStore(path string) (*KVStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("failed to initialize kv table: %w", err)
	}

	return &KVStore{db: db}, nil
}

var _ outbound.KVStore = (*KVStore)(nil)

// Get retrieves a stored value.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var row entry
	err := s.db.WithContext(ctx).First(&row, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return row.Value, true, nil
}

// Set upserts the value for key.
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	row := entry{Key: key, Value: value}
	err := s.db.WithContext(ctx).Save(&row).Error
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Delete(&entry{}, "key = ?", key).Error
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
