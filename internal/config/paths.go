package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/averlon/questline/internal/constants"
	"github.com/averlon/questline/internal/errors"
)

// GlobalConfigDir returns the path to the global questline
// configuration directory, typically ~/.questline.
//
// Returns an error if the home directory cannot be determined.
func GlobalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.QuestlineHome), nil
}

// GlobalConfigPath returns the full path to the global configuration
// file, typically ~/.questline/config.yaml.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", fmt.Errorf("get global config path: %w", err)
	}
	return filepath.Join(dir, constants.GlobalConfigName), nil
}

// ProjectConfigPath returns the relative path to the project
// configuration file, .questline.yaml in the working directory.
func ProjectConfigPath() string {
	return constants.ProjectConfigName
}

// LogsDir returns the path to the rotating log directory, typically
// ~/.questline/logs.
func LogsDir() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.LogsDir), nil
}
