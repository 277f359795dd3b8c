package cache

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finbooks/finbooks/internal/models"
)

var errStoreNotReady = errors.New("cache: database store not initialised")

// DatabaseStore keeps cache entries in the primary SQL database so that
// invalidation state and rate-limit windows survive a process restart.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore wraps db in a Store; a nil handle yields a nil store.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	if db == nil {
		return nil
	}
	return &DatabaseStore{db: db}
}

func (s *DatabaseStore) session(ctx context.Context) (*gorm.DB, error) {
	if s == nil {
		return nil, errStoreNotReady
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return s.db.WithContext(ctx), nil
}

// Get returns the stored value, lazily dropping an entry whose TTL lapsed.
func (s *DatabaseStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	db, err := s.session(ctx)
	if err != nil {
		return nil, false, err
	}

	var entry models.CacheEntry
	switch err := db.Take(&entry, "key = ?", key).Error; {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}

	if entry.Expired(time.Now()) {
		_ = s.Delete(ctx, key)
		return nil, false, nil
	}
	return entry.Value, true, nil
}

// Set upserts value under key. A zero ttl pins the entry; a negative one
// writes it already expired.
func (s *DatabaseStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	db, err := s.session(ctx)
	if err != nil {
		return err
	}

	var expiry time.Time
	if ttl != 0 {
		expiry = time.Now().Add(ttl)
	}

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&models.CacheEntry{Key: key, Value: value, ExpiresAt: expiry}).Error
}

// Delete removes the named keys; missing keys are not an error.
func (s *DatabaseStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	db, err := s.session(ctx)
	if err != nil {
		return err
	}
	return db.Where("key IN ?", keys).Delete(&models.CacheEntry{}).Error
}

// DeletePrefix removes every key under prefix and reports the removed count.
func (s *DatabaseStore) DeletePrefix(ctx context.Context, prefix string) (int64, error) {
	db, err := s.session(ctx)
	if err != nil {
		return 0, err
	}

	// sqlite has no default LIKE escape character, so name one explicitly.
	result := db.Where(`key LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%").
		Delete(&models.CacheEntry{})
	return result.RowsAffected, result.Error
}

// IncrementWithTTL bumps the counter at key inside a locking transaction,
// resetting it when the previous window has expired.
func (s *DatabaseStore) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	db, err := s.session(ctx)
	if err != nil {
		return 0, 0, err
	}
	if window <= 0 {
		window = time.Minute
	}

	now := time.Now()
	expiry := now.Add(window)

	var count int64
	err = db.Transaction(func(tx *gorm.DB) error {
		var entry models.CacheEntry
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Take(&entry, "key = ?", key).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			count = 1
			return tx.Create(&models.CacheEntry{
				Key:       key,
				Value:     counterValue(count),
				ExpiresAt: expiry,
			}).Error
		}
		if err != nil {
			return err
		}

		count = 1
		if !entry.Expired(now) {
			previous, _ := strconv.ParseInt(string(entry.Value), 10, 64)
			count = previous + 1
		}

		entry.Value = counterValue(count)
		entry.ExpiresAt = expiry
		return tx.Save(&entry).Error
	})
	if err != nil {
		return 0, 0, err
	}

	return count, expiry.Sub(now), nil
}

func counterValue(n int64) []byte {
	return []byte(strconv.FormatInt(n, 10))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
