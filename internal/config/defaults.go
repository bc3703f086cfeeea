package config

import (
	"github.com/spf13/viper"

	"github.com/averlon/questline/internal/constants"
)

// DefaultConfig returns a new Config with built-in default values.
// These form the base layer overridden by config files, environment
// variables, and CLI flags.
func DefaultConfig() *Config {
	return &Config{
		// Backend: "sim" keeps a fresh install runnable without a game
		// client attached.
		Backend: "sim",
		Quest: QuestConfig{
			MaxRetry:        constants.DefaultMaxRetry,
			StepTimeout:     constants.DefaultStepTimeout,
			LocateTimeout:   constants.DefaultLocateTimeout,
			PollInterval:    constants.DefaultPollInterval,
			SettleDelay:     constants.DefaultSettleDelay,
			LoopDelay:       constants.DefaultLoopDelay,
			HistoryCapacity: constants.HistoryCapacity,
		},
		Schedule: ScheduleConfig{
			Policy:     "sequential",
			RoundDelay: constants.DefaultRoundDelay,
			MaxRounds:  constants.DefaultMaxRounds,
			VitalsGate: true,
			GatePolicy: "stop_all",
		},
		// Vitals: zero values defer to the vitals package defaults so
		// the screen layout lives in one place.
		Vitals: VitalsConfig{},
		Logging: LoggingConfig{
			Level:      "info",
			File:       true,
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// setDefaults configures all default values on the Viper instance.
// Keys must match the YAML tag names exactly.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("backend", def.Backend)

	v.SetDefault("quest.max_retry", def.Quest.MaxRetry)
	v.SetDefault("quest.step_timeout", def.Quest.StepTimeout)
	v.SetDefault("quest.locate_timeout", def.Quest.LocateTimeout)
	v.SetDefault("quest.poll_interval", def.Quest.PollInterval)
	v.SetDefault("quest.settle_delay", def.Quest.SettleDelay)
	v.SetDefault("quest.loop_delay", def.Quest.LoopDelay)
	v.SetDefault("quest.history_capacity", def.Quest.HistoryCapacity)

	v.SetDefault("schedule.policy", def.Schedule.Policy)
	v.SetDefault("schedule.round_delay", def.Schedule.RoundDelay)
	v.SetDefault("schedule.max_rounds", def.Schedule.MaxRounds)
	v.SetDefault("schedule.vitals_gate", def.Schedule.VitalsGate)
	v.SetDefault("schedule.gate_policy", def.Schedule.GatePolicy)

	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.file", def.Logging.File)
	v.SetDefault("logging.max_size_mb", def.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", def.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", def.Logging.MaxAgeDays)
}
