package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	appName = "tuitables"

	// EnvConfigPath and EnvDBPath point tuitables at a specific config file or
	// history database, e.g. a separate profile per learner on a shared machine.
	EnvConfigPath = "TUITABLES_CONFIG"
	EnvDBPath     = "TUITABLES_DB"
)

// DefaultConfigPath returns $TUITABLES_CONFIG or $XDG_CONFIG_HOME/tuitables/config.toml.
func DefaultConfigPath() string {
	if p := envPath(EnvConfigPath); p != "" {
		return p
	}
	return filepath.Join(baseDir("XDG_CONFIG_HOME", ".config"), appName, "config.toml")
}

// DefaultDBPath returns $TUITABLES_DB or $XDG_DATA_HOME/tuitables/tuitables.db.
func DefaultDBPath() string {
	if p := envPath(EnvDBPath); p != "" {
		return p
	}
	return filepath.Join(baseDir("XDG_DATA_HOME", filepath.Join(".local", "share")), appName, appName+".db")
}

func envPath(name string) string {
	p := strings.TrimSpace(os.Getenv(name))
	if p == "" {
		return ""
	}
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			return filepath.Join(home, rest)
		}
	}
	return p
}

// baseDir resolves an XDG base directory, falling back to a path under $HOME.
func baseDir(env, fallback string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, fallback)
}
