// Package offline implements the local store that lets the app keep
// accepting writes and serving reads without connectivity: a FIFO queue of
// pending mutations, an expiring cache, and per-entity mirror partitions.
package offline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Errors returned by store operations.
var (
	ErrNotFound          = errors.New("offline: not found")
	ErrPartitionNotFound = errors.New("offline: partition not found")
	ErrSerialization     = errors.New("offline: value not serializable")
)

// Partitions usable with StoreEntity/GetEntity/ListEntities. The set is
// fixed at schema-definition time; any other name is ErrPartitionNotFound.
var partitions = map[string]bool{
	"events":     true,
	"tasks":      true,
	"issues":     true,
	"protocols":  true,
	"expenses":   true,
	"vendors":    true,
	"committees": true,
	"contacts":   true,
	"quotes":     true,
}

// PendingMutation is a queued, not-yet-confirmed write awaiting replay.
type PendingMutation struct {
	ID         int64             `json:"id" gorm:"primaryKey;autoIncrement"`
	URL        string            `json:"url" gorm:"index"`
	Method     string            `json:"method"`
	Headers    map[string]string `json:"headers" gorm:"serializer:json"`
	Data       []byte            `json:"data"`
	Timestamp  int64             `json:"timestamp" gorm:"index"` // unix millis
	RetryCount int               `json:"retry_count"`
}

// CacheEntry is a locally persisted, possibly time-limited copy of remote data.
type CacheEntry struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte
	Timestamp int64 `gorm:"index"`
	ExpiresAt int64 `gorm:"index"` // unix millis, 0 means never
}

// EntityRecord mirrors one remote entity inside a named partition.
type EntityRecord struct {
	Partition string `gorm:"primaryKey"`
	EntityID  string `gorm:"primaryKey"`
	Data      []byte
	UpdatedAt int64
}

// Store is the offline store. Construct it with Open; each operation runs
// in its own short-lived transaction.
type Store struct {
	db  *gorm.DB
	log *slog.Logger
}

// Open opens (creating if needed) the offline store at path.
func Open(ctx context.Context, path string, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("offline: create dir: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000&_journal_mode=WAL"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("offline: open %s: %w", path, err)
	}

	if err := db.WithContext(ctx).AutoMigrate(
		&PendingMutation{},
		&CacheEntry{},
		&EntityRecord{},
	); err != nil {
		return nil, fmt.Errorf("offline: migrate: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// EnqueueMutation appends a pending mutation with a fresh timestamp and a
// zero retry count, and returns its id. No network call is made.
func (s *Store) EnqueueMutation(ctx context.Context, url, method string, headers map[string]string, payload any) (int64, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	item := &PendingMutation{
		URL:       url,
		Method:    method,
		Headers:   headers,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return 0, err
	}
	return item.ID, nil
}

// ListPendingMutations returns all queued mutations oldest first.
// Equal timestamps fall back to insertion order.
func (s *Store) ListPendingMutations(ctx context.Context) ([]*PendingMutation, error) {
	var items []*PendingMutation
	err := s.db.WithContext(ctx).Order("timestamp ASC, id ASC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// RemovePendingMutation deletes a queued mutation after successful replay.
// Removing an absent id returns ErrNotFound; callers treating removal as
// idempotent may ignore it.
func (s *Store) RemovePendingMutation(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&PendingMutation{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementRetry bumps the retry counter of a queued mutation. Returns
// ErrNotFound if the item was concurrently removed.
func (s *Store) IncrementRetry(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item PendingMutation
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		item.RetryCount++
		return tx.Save(&item).Error
	})
}

// PutCache upserts a cache entry. A zero ttl means the entry never expires.
func (s *Store) PutCache(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	now := time.Now()
	entry := &CacheEntry{
		Key:       key,
		Value:     data,
		Timestamp: now.UnixMilli(),
	}
	if ttl > 0 {
		entry.ExpiresAt = now.Add(ttl).UnixMilli()
	}

	return s.db.WithContext(ctx).Save(entry).Error
}

// GetCache returns the raw cached value for key, or ErrNotFound when the
// key is absent or expired. An expired entry is deleted before returning.
func (s *Store) GetCache(ctx context.Context, key string) (json.RawMessage, error) {
	var entry CacheEntry
	if err := s.db.WithContext(ctx).First(&entry, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if entry.ExpiresAt > 0 && entry.ExpiresAt <= time.Now().UnixMilli() {
		if err := s.db.WithContext(ctx).Delete(&CacheEntry{}, "key = ?", key).Error; err != nil {
			s.log.Warn("failed to delete expired cache entry", "key", key, "error", err)
		}
		return nil, ErrNotFound
	}

	return json.RawMessage(entry.Value), nil
}

// DeleteCache removes a cache entry unconditionally.
func (s *Store) DeleteCache(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Delete(&CacheEntry{}, "key = ?", key).Error
}

// SweepExpiredCache deletes every expired cache entry and returns the count
// removed. GetCache self-heals on read; this is periodic maintenance.
func (s *Store) SweepExpiredCache(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at > 0 AND expires_at <= ?", time.Now().UnixMilli()).
		Delete(&CacheEntry{})
	return result.RowsAffected, result.Error
}

// StoreEntity mirrors one entity into a named partition.
func (s *Store) StoreEntity(ctx context.Context, partition, id string, entity any) error {
	if !partitions[partition] {
		return fmt.Errorf("%w: %s", ErrPartitionNotFound, partition)
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	record := &EntityRecord{
		Partition: partition,
		EntityID:  id,
		Data:      data,
		UpdatedAt: time.Now().UnixMilli(),
	}
	return s.db.WithContext(ctx).Save(record).Error
}

// GetEntity returns the mirrored entity, or ErrNotFound.
func (s *Store) GetEntity(ctx context.Context, partition, id string) (json.RawMessage, error) {
	if !partitions[partition] {
		return nil, fmt.Errorf("%w: %s", ErrPartitionNotFound, partition)
	}

	var record EntityRecord
	err := s.db.WithContext(ctx).
		First(&record, "partition = ? AND entity_id = ?", partition, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return json.RawMessage(record.Data), nil
}

// ListEntities returns all mirrored entities in a partition.
func (s *Store) ListEntities(ctx context.Context, partition string) ([]json.RawMessage, error) {
	if !partitions[partition] {
		return nil, fmt.Errorf("%w: %s", ErrPartitionNotFound, partition)
	}

	var records []EntityRecord
	err := s.db.WithContext(ctx).
		Where("partition = ?", partition).
		Order("entity_id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	out := make([]json.RawMessage, 0, len(records))
	for _, r := range records {
		out = append(out, json.RawMessage(r.Data))
	}
	return out, nil
}

// DeleteEntity removes one mirrored entity. Deleting an absent entity is
// not an error.
func (s *Store) DeleteEntity(ctx context.Context, partition, id string) error {
	if !partitions[partition] {
		return fmt.Errorf("%w: %s", ErrPartitionNotFound, partition)
	}
	return s.db.WithContext(ctx).
		Delete(&EntityRecord{}, "partition = ? AND entity_id = ?", partition, id).Error
}

// ClearAll wipes every partition in one transaction. Used on logout/reset.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&PendingMutation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&CacheEntry{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&EntityRecord{}).Error
	})
}
