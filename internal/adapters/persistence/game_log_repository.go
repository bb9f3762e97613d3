package persistence

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

// GameLogRepository manages persisted game log lines
type GameLogRepository interface {
	// Log writes a log entry with deduplication
	Log(ctx context.Context, source, scenarioID, message, level string, metadata map[string]interface{}) error

	// GetLogs retrieves the newest logs of a source with optional filtering
	GetLogs(ctx context.Context, source string, limit, offset int, level *string, since *time.Time) ([]GameLogEntry, error)
}

// GameLogEntry represents a log entry
type GameLogEntry struct {
	ID         int
	Source     string
	ScenarioID string
	Timestamp  time.Time
	Level      string
	Message    string
	Metadata   map[string]interface{}
}

// GormGameLogRepository is a GORM-based implementation
type GormGameLogRepository struct {
	db    *gorm.DB
	clock shared.Clock

	// identical lines from the same source within dedupWindow are dropped
	dedupCache   map[string]time.Time
	dedupMu      sync.Mutex
	dedupWindow  time.Duration
	dedupMaxSize int
}

// NewGormGameLogRepository creates a new game log repository
// If clock is nil, uses RealClock
func NewGormGameLogRepository(db *gorm.DB, clock shared.Clock) *GormGameLogRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormGameLogRepository{
		db:           db,
		clock:        clock,
		dedupCache:   make(map[string]time.Time),
		dedupWindow:  60 * time.Second,
		dedupMaxSize: 10000,
	}
}

// Log writes a log entry with time-windowed deduplication
func (r *GormGameLogRepository) Log(ctx context.Context, source, scenarioID, message, level string, metadata map[string]interface{}) error {
	now := r.clock.Now()
	cacheKey := source + "|" + message

	r.dedupMu.Lock()
	if lastLogged, exists := r.dedupCache[cacheKey]; exists && now.Sub(lastLogged) < r.dedupWindow {
		r.dedupMu.Unlock()
		return nil
	}
	if len(r.dedupCache) >= r.dedupMaxSize {
		r.cleanupDedupCache(now)
	}
	r.dedupCache[cacheKey] = now
	r.dedupMu.Unlock()

	var metadataJSON string
	if len(metadata) > 0 {
		// metadata is optional; an unencodable map is dropped
		if b, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(b)
		}
	}

	return r.db.WithContext(ctx).Create(&GameLogModel{
		Source:     source,
		ScenarioID: scenarioID,
		Timestamp:  now,
		Level:      level,
		Message:    message,
		Metadata:   metadataJSON,
	}).Error
}

// cleanupDedupCache removes entries older than the window
// Must be called while holding dedupMu
func (r *GormGameLogRepository) cleanupDedupCache(now time.Time) {
	cutoff := now.Add(-r.dedupWindow)
	for key, ts := range r.dedupCache {
		if ts.Before(cutoff) {
			delete(r.dedupCache, key)
		}
	}
}

// GetLogs retrieves the newest logs of a source
func (r *GormGameLogRepository) GetLogs(ctx context.Context, source string, limit, offset int, level *string, since *time.Time) ([]GameLogEntry, error) {
	var models []GameLogModel

	query := r.db.WithContext(ctx).Where("source = ?", source)
	if level != nil {
		query = query.Where("level = ?", *level)
	}
	if since != nil {
		query = query.Where("timestamp > ?", *since)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Order("timestamp DESC").Order("id DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	entries := make([]GameLogEntry, len(models))
	for i, model := range models {
		var metadata map[string]interface{}
		if model.Metadata != "" {
			if err := json.Unmarshal([]byte(model.Metadata), &metadata); err != nil {
				metadata = nil
			}
		}
		entries[i] = GameLogEntry{
			ID:         model.ID,
			Source:     model.Source,
			ScenarioID: model.ScenarioID,
			Timestamp:  model.Timestamp,
			Level:      model.Level,
			Message:    model.Message,
			Metadata:   metadata,
		}
	}
	return entries, nil
}
