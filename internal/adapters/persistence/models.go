package persistence

import (
	"time"
)

// SaveModel represents the saves table. The snapshot lives in save_snapshots so listing
// never loads it.
type SaveModel struct {
	ID             string    `gorm:"column:id;primaryKey;not null"`
	Name           string    `gorm:"column:name;not null;index"`
	Status         string    `gorm:"column:status;not null;default:'in_progress'"`
	ScenarioID     string    `gorm:"column:scenario_id;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;not null;index"`
	Month          int       `gorm:"column:month;not null"` // month index, see shared.Month
	ProgressMonths int       `gorm:"column:progress_months;not null;default:0"`
	Fingerprint    string    `gorm:"column:fingerprint"`
}

func (SaveModel) TableName() string {
	return "saves"
}

// SaveSnapshotModel represents the save_snapshots table
type SaveSnapshotModel struct {
	SaveID string     `gorm:"column:save_id;primaryKey;not null"`
	Save   *SaveModel `gorm:"foreignKey:SaveID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Data   []byte     `gorm:"column:data;not null"`
}

func (SaveSnapshotModel) TableName() string {
	return "save_snapshots"
}

// GameLogModel represents the game_logs table
type GameLogModel struct {
	ID         int       `gorm:"column:id;primaryKey;autoIncrement"`
	Source     string    `gorm:"column:source;not null;index"`
	ScenarioID string    `gorm:"column:scenario_id"`
	Timestamp  time.Time `gorm:"column:timestamp;not null"`
	Level      string    `gorm:"column:level;not null;default:'INFO'"`
	Message    string    `gorm:"column:message;type:text;not null"`
	Metadata   string    `gorm:"column:metadata;type:text"` // JSON as text
}

func (GameLogModel) TableName() string {
	return "game_logs"
}

// AllModels lists every model managed by AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&SaveModel{},
		&SaveSnapshotModel{},
		&GameLogModel{},
	}
}
