// Package config resolves runtime settings from defaults, an optional config
// file, CIVICSIM_* environment variables, and command-line flags.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"net/netip"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/talgya/civicsim/internal/persistence"
	"github.com/talgya/civicsim/internal/scenario"
)

// Keys shared with flag bindings.
const (
	KeyLogLevel     = "log.level"
	KeyContentDB    = "content.db"
	KeyContentFile  = "content.file"
	KeyAPIPort      = "api.port"
	KeyCORSOrigins  = "api.cors_origins"
	KeyReplayRate   = "api.replay_rate"
	KeyReplayWindow = "api.replay_window"
	KeyTrustedProxy = "api.trusted_proxies"
)

// EnvPrefix is prepended to every environment variable, e.g. CIVICSIM_API_PORT.
const EnvPrefix = "CIVICSIM"

// Config holds resolved settings.
type Config struct {
	LogLevel     slog.Level
	ContentDB    string // SQLite content store; empty = not used
	ContentFile  string // YAML catalog; empty = embedded catalog
	APIPort      int
	CORSOrigins  []string
	ReplayRate   int           // max replay requests per window per client
	ReplayWindow time.Duration
	// Proxies whose X-Forwarded-For header is believed; empty = none.
	TrustedProxies []netip.Prefix
}

// New returns a viper instance with defaults and environment binding applied.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyContentDB, "")
	v.SetDefault(KeyContentFile, "")
	v.SetDefault(KeyAPIPort, 8080)
	v.SetDefault(KeyCORSOrigins, []string{})
	v.SetDefault(KeyReplayRate, 60)
	v.SetDefault(KeyReplayWindow, time.Hour)
	v.SetDefault(KeyTrustedProxy, []string{})

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile merges a YAML config file into v. An empty path is a no-op.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// Load validates the settings held by v.
func Load(v *viper.Viper) (Config, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString(KeyLogLevel))); err != nil {
		return Config{}, fmt.Errorf("%s: %w", KeyLogLevel, err)
	}

	cfg := Config{
		LogLevel:     level,
		ContentDB:    strings.TrimSpace(v.GetString(KeyContentDB)),
		ContentFile:  strings.TrimSpace(v.GetString(KeyContentFile)),
		APIPort:      v.GetInt(KeyAPIPort),
		CORSOrigins:  splitList(v.GetStringSlice(KeyCORSOrigins)),
		ReplayRate:   v.GetInt(KeyReplayRate),
		ReplayWindow: v.GetDuration(KeyReplayWindow),
	}

	if cfg.APIPort <= 0 || cfg.APIPort > 65535 {
		return Config{}, fmt.Errorf("%s: port %d out of range", KeyAPIPort, cfg.APIPort)
	}
	if cfg.ReplayRate <= 0 {
		return Config{}, fmt.Errorf("%s: must be positive, got %d", KeyReplayRate, cfg.ReplayRate)
	}
	if cfg.ReplayWindow <= 0 {
		return Config{}, fmt.Errorf("%s: must be positive, got %s", KeyReplayWindow, cfg.ReplayWindow)
	}
	proxies, err := parsePrefixes(splitList(v.GetStringSlice(KeyTrustedProxy)))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", KeyTrustedProxy, err)
	}
	cfg.TrustedProxies = proxies
	return cfg, nil
}

// Catalog resolves the scenario content source: the SQLite store when
// configured, then the YAML file, then the embedded catalog.
func (c Config) Catalog(ctx context.Context) (*scenario.Catalog, error) {
	if c.ContentDB != "" {
		db, err := persistence.Open(c.ContentDB)
		if err != nil {
			return nil, err
		}
		defer db.Close()

		cat, err := db.LoadCatalog(ctx)
		if err != nil {
			return nil, fmt.Errorf("content db %s: %w", c.ContentDB, err)
		}
		slog.Debug("catalog loaded", "source", "db", "path", c.ContentDB, "scenarios", cat.Len())
		return cat, nil
	}
	if c.ContentFile != "" {
		cat, err := scenario.LoadFile(c.ContentFile)
		if err != nil {
			return nil, err
		}
		slog.Debug("catalog loaded", "source", "file", "path", c.ContentFile, "scenarios", cat.Len())
		return cat, nil
	}
	return scenario.Default(), nil
}

// parsePrefixes accepts CIDR ranges and bare addresses, which become
// single-host prefixes.
func parsePrefixes(items []string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, item := range items {
		if strings.Contains(item, "/") {
			p, err := netip.ParsePrefix(item)
			if err != nil {
				return nil, err
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, err
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

// splitList accepts both list values and a single comma-separated string,
// which is how lists arrive from environment variables.
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
