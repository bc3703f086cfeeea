// Package constants provides centralized constant values used throughout questline.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory names and paths used by questline for organizing data.
const (
	// QuestlineHome is the hidden directory name where questline stores
	// its configuration and logs. This directory is created in the
	// user's home directory.
	QuestlineHome = ".questline"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// ConfigFileName is the name of the YAML configuration file.
	ConfigFileName = "config.yaml"
)

// Timeout and polling defaults for step execution.
const (
	// DefaultStepTimeout is the fallback execution budget for a step
	// whose definition carries no explicit timeout.
	DefaultStepTimeout = 60 * time.Second

	// DefaultLocateTimeout is the default budget for waiting until a
	// perception target appears on screen.
	DefaultLocateTimeout = 10 * time.Second

	// DefaultPollInterval is the interval at which polling executors
	// re-sample perception between attempts.
	DefaultPollInterval = 500 * time.Millisecond

	// DefaultSettleDelay is the pause after an action primitive, giving
	// the environment time to reflect the action on screen.
	DefaultSettleDelay = 1 * time.Second
)

// Retry and looping defaults for chains and schedules.
const (
	// DefaultMaxRetry is the retry budget for a step whose definition
	// does not set one. The first attempt is not a retry.
	DefaultMaxRetry = 2

	// DefaultLoopDelay is the pause between passes of a looping chain.
	DefaultLoopDelay = 5 * time.Second

	// DefaultRoundDelay is the pause between rounds of the round-looping
	// schedule policy.
	DefaultRoundDelay = 10 * time.Second

	// DefaultMaxRounds bounds the round-looping schedule policy so a
	// chain that always requests looping cannot run forever.
	DefaultMaxRounds = 100
)

// HistoryCapacity bounds the in-memory ring of chain run records.
// Oldest records are evicted first once the ring is full.
const HistoryCapacity = 100
