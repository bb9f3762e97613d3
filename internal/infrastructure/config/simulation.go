package config

// SimulationConfig selects the game started by the daemon and how it is saved
type SimulationConfig struct {
	// Scenario started when no save is loaded
	DefaultScenario string `mapstructure:"default_scenario" validate:"required"`

	// Difficulty preset; empty uses the scenario's own
	DefaultDifficulty string `mapstructure:"default_difficulty" validate:"omitempty,oneof=easy normal hard"`

	// Number of autosaves kept in the rotation
	AutosaveSlots int `mapstructure:"autosave_slots" validate:"min=1"`

	// Load the newest save on daemon start instead of a fresh campaign
	ResumeLatest bool `mapstructure:"resume_latest"`
}

// ScheduleConfig holds the cron expressions of the daemon scheduler.
// Empty expressions disable the job.
type ScheduleConfig struct {
	// Auto-play: advance the live game on this schedule
	AutoPlay string `mapstructure:"auto_play" validate:"omitempty,cron"`

	// Months advanced per auto-play run
	AutoPlayMonths int `mapstructure:"auto_play_months" validate:"min=1,max=1200"`

	// Periodic manual-style save of the live game
	Autosave string `mapstructure:"autosave" validate:"omitempty,cron"`
}

// StreamConfig holds the websocket state-push configuration
type StreamConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address" validate:"required_if=Enabled true"`
	Path    string `mapstructure:"path"`
}
