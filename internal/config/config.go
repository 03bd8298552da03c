// Package config holds the settings shared by every command. Values come
// from flags or their TRACKER_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/tracker/internal/logger"
)

// Config is embedded into the kong CLI struct
type Config struct {
	DBPath   string `name:"db" help:"Database file path." env:"TRACKER_DB" default:"~/.config/tracker/tracker.db"`
	Debug    bool   `help:"Log at debug level and mirror logs to stderr." env:"TRACKER_DEBUG"`
	Timezone string `name:"tz" help:"IANA time zone deciding which calendar day is today." env:"TRACKER_TZ" default:"Local"`
}

// DatabasePath returns DBPath with a leading ~ expanded
func (c Config) DatabasePath() (string, error) {
	return ExpandPath(c.DBPath)
}

// Dir is the directory holding the database, its logs and backups
func (c Config) Dir() (string, error) {
	path, err := c.DatabasePath()
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

// Location loads the configured time zone. Empty means Local.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Logger returns the logger settings derived from c
func (c Config) Logger() (logger.Config, error) {
	dir, err := c.Dir()
	if err != nil {
		return logger.Config{}, err
	}
	return logger.Config{Debug: c.Debug, ConfigDir: dir}, nil
}

// ExpandPath replaces a leading "~" with the user's home directory
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
