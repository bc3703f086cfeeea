package constants

// Log file names.
const (
	// CLILogFileName is the name of the rotating CLI log file.
	// This file is located in ~/.questline/logs/questline.log
	CLILogFileName = "questline.log"
)

// Configuration file names.
const (
	// GlobalConfigName is the name of the global questline configuration file.
	// This file is located in the questline home directory.
	GlobalConfigName = "config.yaml"

	// ProjectConfigName is the name of the project-specific questline
	// configuration file. This file is located in the working directory.
	ProjectConfigName = ".questline.yaml"
)

// Lock file names.
const (
	// RunLockFileName is the single-instance lock file held while a
	// schedule runs. Located in the questline home directory.
	RunLockFileName = "questline.lock"
)
