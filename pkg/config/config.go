// Package config loads lifelog settings from .lifelog.yaml and LIFELOG_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"tableflip.dev/lifelog/pkg/store"
)

// Config holds all lifelog configuration.
type Config struct {
	Backend string
	Path    string
	Keys    Keys
	Sync    SyncConfig
	Board   BoardConfig
	Server  ServerConfig
	Alerts  AlertsConfig
}

// Keys are the store keys of the three aggregates.
type Keys struct {
	Logs     string
	Archives string
	Alerts   string
}

type SyncConfig struct {
	// Logs turns on live propagation of the active logs between contexts.
	Logs bool
	Poll time.Duration
}

type BoardConfig struct {
	Tick time.Duration
}

type ServerConfig struct {
	Addr string
	// Summary is the HH:MM at which serve logs a daily summary. Empty
	// turns it off.
	Summary string
}

type AlertsConfig struct {
	// Soon is the window used by "due soon" listings.
	Soon time.Duration
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Backend: store.BackendDiskv,
		Path:    "~/.lifelog",
		Keys: Keys{
			Logs:     "monitoring_my_life_logs",
			Archives: "monitoring_my_life_logs_archives",
			Alerts:   "monitoring_my_life_alerts",
		},
		Sync: SyncConfig{
			Poll: store.DefaultPoll,
		},
		Board: BoardConfig{
			Tick: 30 * time.Second,
		},
		Server: ServerConfig{
			Addr:    "127.0.0.1:37778",
			Summary: "08:00",
		},
		Alerts: AlertsConfig{
			Soon: 48 * time.Hour,
		},
	}
}

// StoreOptions returns the store.Options described by c.
func (c Config) StoreOptions() store.Options {
	return store.Options{
		Backend: c.Backend,
		Path:    c.Path,
		Poll:    c.Sync.Poll,
	}
}

// Load reads .lifelog.yaml from $LIFELOG_CONFIG_PATH or the working
// directory, then applies LIFELOG_* overrides. A missing file is fine.
func Load() (Config, error) {
	return load(viper.New(), os.Getenv("LIFELOG_CONFIG_PATH"))
}

func load(v *viper.Viper, override string) (Config, error) {
	d := Default()
	v.SetDefault("backend", d.Backend)
	v.SetDefault("path", d.Path)
	v.SetDefault("keys.logs", d.Keys.Logs)
	v.SetDefault("keys.archives", d.Keys.Archives)
	v.SetDefault("keys.alerts", d.Keys.Alerts)
	v.SetDefault("sync.logs", d.Sync.Logs)
	v.SetDefault("sync.poll", d.Sync.Poll)
	v.SetDefault("board.tick", d.Board.Tick)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.summary", d.Server.Summary)
	v.SetDefault("alerts.soon", d.Alerts.Soon)

	v.SetConfigName(".lifelog") // .yaml is implicit
	v.SetConfigType("yaml")
	v.SetEnvPrefix("LIFELOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	path, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return Config{}, fmt.Errorf("config: expand path: %w", err)
	}

	c := Config{
		Backend: strings.ToLower(v.GetString("backend")),
		Path:    path,
		Keys: Keys{
			Logs:     v.GetString("keys.logs"),
			Archives: v.GetString("keys.archives"),
			Alerts:   v.GetString("keys.alerts"),
		},
		Sync: SyncConfig{
			Logs: v.GetBool("sync.logs"),
			Poll: v.GetDuration("sync.poll"),
		},
		Board: BoardConfig{Tick: v.GetDuration("board.tick")},
		Server: ServerConfig{
			Addr:    v.GetString("server.addr"),
			Summary: strings.TrimSpace(v.GetString("server.summary")),
		},
		Alerts: AlertsConfig{Soon: v.GetDuration("alerts.soon")},
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	switch c.Backend {
	case store.BackendDiskv, store.BackendSQLite, store.BackendMemory:
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	if c.Backend != store.BackendMemory && c.Path == "" {
		return errors.New("config: path is required")
	}
	if c.Keys.Logs == "" || c.Keys.Archives == "" || c.Keys.Alerts == "" {
		return errors.New("config: store keys must not be empty")
	}
	if c.Keys.Logs == c.Keys.Archives || c.Keys.Logs == c.Keys.Alerts || c.Keys.Archives == c.Keys.Alerts {
		return errors.New("config: store keys must be distinct")
	}
	return nil
}
