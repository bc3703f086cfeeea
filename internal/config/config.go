// Package config provides configuration management for questline with
// layered precedence.
//
// Configuration sources are loaded in the following order (highest
// precedence first):
//  1. CLI flags (applied by the CLI layer)
//  2. Environment variables (QUESTLINE_* prefix)
//  3. Project config (.questline.yaml in the working directory)
//  4. Global config (~/.questline/config.yaml)
//  5. Built-in defaults
//
// Each higher level overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and
// internal/errors, but MUST NOT import internal/domain or other
// internal packages.
package config

import "time"

// Config is the root configuration structure for questline.
type Config struct {
	// Backend selects the capability backend providing perception and
	// actuation. "sim" is the scripted backend used by tests and dry
	// runs.
	Backend string `yaml:"backend" mapstructure:"backend"`

	// Quest contains step and chain execution defaults.
	Quest QuestConfig `yaml:"quest" mapstructure:"quest"`

	// Schedule contains multi-chain scheduling settings.
	Schedule ScheduleConfig `yaml:"schedule" mapstructure:"schedule"`

	// Vitals contains vital-sign reading and recovery settings.
	Vitals VitalsConfig `yaml:"vitals" mapstructure:"vitals"`

	// Logging contains log output settings.
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// QuestConfig contains step and chain execution defaults. Per-step and
// per-chain values from quest files override these.
type QuestConfig struct {
	// MaxRetry is the default retry budget for steps that do not set
	// one. The first attempt is not a retry.
	MaxRetry int `yaml:"max_retry" mapstructure:"max_retry"`

	// StepTimeout is the default execution budget per step attempt.
	StepTimeout time.Duration `yaml:"step_timeout" mapstructure:"step_timeout"`

	// LocateTimeout is the default budget for waiting until a
	// perception target appears.
	LocateTimeout time.Duration `yaml:"locate_timeout" mapstructure:"locate_timeout"`

	// PollInterval is how often polling executors re-sample perception.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`

	// SettleDelay is the pause after an action primitive before the
	// world is re-observed.
	SettleDelay time.Duration `yaml:"settle_delay" mapstructure:"settle_delay"`

	// LoopDelay is the default pause between passes of a looping chain.
	LoopDelay time.Duration `yaml:"loop_delay" mapstructure:"loop_delay"`

	// HistoryCapacity bounds the in-memory ring of run records.
	HistoryCapacity int `yaml:"history_capacity" mapstructure:"history_capacity"`
}

// ScheduleConfig contains multi-chain scheduling settings.
type ScheduleConfig struct {
	// Policy orders chains: "sequential", "priority", or "rounds".
	Policy string `yaml:"policy" mapstructure:"policy"`

	// RoundDelay is the pause between rounds under the rounds policy.
	RoundDelay time.Duration `yaml:"round_delay" mapstructure:"round_delay"`

	// MaxRounds bounds the rounds policy.
	MaxRounds int `yaml:"max_rounds" mapstructure:"max_rounds"`

	// VitalsGate enables the vitals guard before each chain.
	VitalsGate bool `yaml:"vitals_gate" mapstructure:"vitals_gate"`

	// GatePolicy selects the reaction to a fatal gate condition:
	// "stop_all" aborts the schedule, "skip_chain" skips one chain.
	GatePolicy string `yaml:"gate_policy" mapstructure:"gate_policy"`
}

// RegionConfig is a rectangular screen area in pixels.
type RegionConfig struct {
	Left   int `yaml:"left" mapstructure:"left"`
	Top    int `yaml:"top" mapstructure:"top"`
	Right  int `yaml:"right" mapstructure:"right"`
	Bottom int `yaml:"bottom" mapstructure:"bottom"`
}

// Zero reports whether the region is unset.
func (r RegionConfig) Zero() bool {
	return r == RegionConfig{}
}

// VitalsConfig contains vital-sign reading and recovery settings.
// Zero-valued fields fall back to the vitals package defaults.
type VitalsConfig struct {
	// HPRegion and MPRegion are the screen areas holding the
	// "current/max" bar text.
	HPRegion RegionConfig `yaml:"hp_region" mapstructure:"hp_region"`
	MPRegion RegionConfig `yaml:"mp_region" mapstructure:"mp_region"`

	// ReviveMarker is the template visible only while dead.
	ReviveMarker string `yaml:"revive_marker" mapstructure:"revive_marker"`

	// CombatMarker is the template visible only during combat.
	CombatMarker string `yaml:"combat_marker" mapstructure:"combat_marker"`

	// HPPotionKey and MPPotionKey are the recovery keys pressed when
	// the matching vital drops below its threshold.
	HPPotionKey string `yaml:"hp_potion_key" mapstructure:"hp_potion_key"`
	MPPotionKey string `yaml:"mp_potion_key" mapstructure:"mp_potion_key"`

	// HPThreshold and MPThreshold are ratios in (0,1].
	HPThreshold float64 `yaml:"hp_threshold" mapstructure:"hp_threshold"`
	MPThreshold float64 `yaml:"mp_threshold" mapstructure:"mp_threshold"`

	// PotionSettle is the pause after a recovery press.
	PotionSettle time.Duration `yaml:"potion_settle" mapstructure:"potion_settle"`
}

// LoggingConfig contains log output settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `yaml:"level" mapstructure:"level"`

	// Format selects "console" or "json" output. Empty auto-detects:
	// console on a TTY, json otherwise.
	Format string `yaml:"format" mapstructure:"format"`

	// File enables the rotating log file under ~/.questline/logs.
	File bool `yaml:"file" mapstructure:"file"`

	// MaxSizeMB is the rotation size threshold per log file.
	MaxSizeMB int `yaml:"max_size_mb" mapstructure:"max_size_mb"`

	// MaxBackups is the number of rotated files to keep.
	MaxBackups int `yaml:"max_backups" mapstructure:"max_backups"`

	// MaxAgeDays is the retention period for rotated files.
	MaxAgeDays int `yaml:"max_age_days" mapstructure:"max_age_days"`
}
