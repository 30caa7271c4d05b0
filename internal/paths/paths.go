// Package paths resolves the configuration directory and the data file.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "satreq"

// DefaultDataFileName is the data file used when nothing else names one,
// relative to the working directory.
const DefaultDataFileName = "satreq.json"

// Environment variable names for location overrides.
const (
	EnvConfigDir = "SATREQ_CONFIG_DIR"
	EnvDataFile  = "SATREQ_DATA_FILE"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/satreq (fallback ~/.config/satreq)
// macOS:   ~/Library/Application Support/satreq
// Windows: %APPDATA%/satreq
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", appName), nil
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > SATREQ_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataFile returns the data file following the precedence chain:
// flag > config.yaml data_file > SATREQ_DATA_FILE env > recent (the file
// opened last) > $(CWD)/satreq.json.
//
// A recent path is used only while the file still exists.
func ResolveDataFile(flag, configYAMLValue, recent string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDataFile); env != "" {
		return filepath.Abs(env)
	}
	if recent != "" {
		if info, err := os.Stat(recent); err == nil && !info.IsDir() {
			return filepath.Abs(recent)
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataFileName), nil
}
