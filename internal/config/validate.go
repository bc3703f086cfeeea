package config

import (
	"github.com/averlon/questline/internal/errors"
)

// knownBackends is the closed set of capability backends.
var knownBackends = map[string]struct{}{
	"sim": {},
}

// knownPolicies and knownGatePolicies mirror the schedule package's
// closed sets; validation happens here so a bad config fails before any
// wiring starts.
var knownPolicies = map[string]struct{}{
	"sequential": {},
	"priority":   {},
	"rounds":     {},
}

var knownGatePolicies = map[string]struct{}{
	"stop_all":   {},
	"skip_chain": {},
}

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if _, ok := knownBackends[cfg.Backend]; !ok {
		return errors.Wrapf(errors.ErrUnknownBackend, "%q", cfg.Backend)
	}

	if err := validateQuestConfig(&cfg.Quest); err != nil {
		return err
	}
	if err := validateScheduleConfig(&cfg.Schedule); err != nil {
		return err
	}
	if err := validateVitalsConfig(&cfg.Vitals); err != nil {
		return err
	}
	return validateLoggingConfig(&cfg.Logging)
}

// validateQuestConfig checks step and chain execution defaults.
func validateQuestConfig(cfg *QuestConfig) error {
	if cfg.MaxRetry < 0 {
		return errors.Wrapf(errors.ErrValueOutOfRange,
			"quest.max_retry cannot be negative, got %d", cfg.MaxRetry)
	}
	if cfg.StepTimeout <= 0 {
		return errors.Wrapf(errors.ErrValueOutOfRange,
			"quest.step_timeout must be positive, got %s", cfg.StepTimeout)
	}
	if cfg.LocateTimeout <= 0 {
		return errors.Wrapf(errors.ErrValueOutOfRange,
			"quest.locate_timeout must be positive, got %s", cfg.LocateTimeout)
	}
	if cfg.PollInterval <= 0 {
		return errors.Wrapf(errors.ErrValueOutOfRange,
			"quest.poll_interval must be positive, got %s", cfg.PollInterval)
	}
	if cfg.SettleDelay < 0 {
		return errors.Wrapf(errors.ErrValueOutOfRange,
			"quest.settle_delay cannot be negative, got %s", cfg.SettleDelay)
	}
	if cfg.LoopDelay < 0 {
		return errors.Wrapf(errors.ErrValueOutOfRange,
			"quest.loop_delay cannot be negative, got %s", cfg.LoopDelay)
	}
	if cfg.HistoryCapacity < 1 {
		return errors.Wrapf(errors.ErrValueOutOfRange,
			"quest.history_capacity must be at least 1, got %d", cfg.HistoryCapacity)
	}
	return nil
}

// validateScheduleConfig checks scheduling settings.
func validateScheduleConfig(cfg *ScheduleConfig) error {
	if _, ok := knownPolicies[cfg.Policy]; !ok {
		return errors.Wrapf(errors.ErrUnknownPolicy, "%q", cfg.Policy)
	}
	if _, ok := knownGatePolicies[cfg.GatePolicy]; !ok {
		return errors.Wrapf(errors.ErrValueOutOfRange,
			"schedule.gate_policy must be stop_all or skip_chain, got %q", cfg.GatePolicy)
	}
	if cfg.MaxRounds < 1 {
		return errors.Wrapf(errors.ErrValueOutOfRange,
			"schedule.max_rounds must be at least 1, got %d", cfg.MaxRounds)
	}
	if cfg.RoundDelay < 0 {
		return errors.Wrapf(errors.ErrValueOutOfRange,
			"schedule.round_delay cannot be negative, got %s", cfg.RoundDelay)
	}
	return nil
}

// validateVitalsConfig checks vital-sign settings. Zero values are
// allowed everywhere since they defer to the vitals defaults.
func validateVitalsConfig(cfg *VitalsConfig) error {
	if cfg.HPThreshold < 0 || cfg.HPThreshold > 1 {
		return errors.Wrapf(errors.ErrValueOutOfRange,
			"vitals.hp_threshold must be in [0,1], got %v", cfg.HPThreshold)
	}
	if cfg.MPThreshold < 0 || cfg.MPThreshold > 1 {
		return errors.Wrapf(errors.ErrValueOutOfRange,
			"vitals.mp_threshold must be in [0,1], got %v", cfg.MPThreshold)
	}
	if cfg.PotionSettle < 0 {
		return errors.Wrapf(errors.ErrValueOutOfRange,
			"vitals.potion_settle cannot be negative, got %s", cfg.PotionSettle)
	}
	return nil
}

// validLogLevels is the closed set of accepted logging levels.
var validLogLevels = map[string]struct{}{
	"trace": {},
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// validateLoggingConfig checks log output settings.
func validateLoggingConfig(cfg *LoggingConfig) error {
	if _, ok := validLogLevels[cfg.Level]; !ok {
		return errors.Wrapf(errors.ErrValueOutOfRange,
			"logging.level must be one of trace, debug, info, warn, error, got %q", cfg.Level)
	}
	switch cfg.Format {
	case "", "console", "json":
	default:
		return errors.Wrapf(errors.ErrInvalidOutputFormat,
			"logging.format must be console or json, got %q", cfg.Format)
	}
	if cfg.MaxSizeMB < 0 || cfg.MaxBackups < 0 || cfg.MaxAgeDays < 0 {
		return errors.Wrap(errors.ErrValueOutOfRange,
			"logging rotation values cannot be negative")
	}
	return nil
}
