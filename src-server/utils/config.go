package utils

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	port   string
	dbPath string

	location *time.Location
	logLevel slog.Level

	metricCollectionInterval time.Duration
	agendaInterval           time.Duration
	expansionCacheSize       int

	staticWebClientDir string
}

func NewConfig() *Config {
	return &Config{
		port: func() string {
			port := os.Getenv("PORT")
			if port == "" {
				port = "8080"
			}
			slog.Debug("env", "PORT", port)
			return port
		}(),
		dbPath: func() string {
			dbPath := os.Getenv("DB_PATH")
			if dbPath == "" {
				dbPath = "./sqlite.db"
			}
			slog.Debug("env", "DB_PATH", dbPath)
			return dbPath
		}(),

		location: func() *time.Location {
			timezoneStr := os.Getenv("TIMEZONE")
			var loc *time.Location
			var err error
			switch timezoneStr {
			case "":
				slog.Warn("TIMEZONE is not set, using local timezone", "timezone", time.Local)
				loc = time.Local
			case "UTC":
				loc = time.UTC
			default:
				loc, err = time.LoadLocation(timezoneStr)
				if err != nil {
					slog.Error("invalid timezone", "timezone", timezoneStr, "error", err)
					os.Exit(1)
				}
			}
			slog.Debug("env", "TIMEZONE", timezoneStr)
			return loc
		}(),
		logLevel: func() slog.Level {
			levelStr := os.Getenv("LOG_LEVEL")
			if levelStr == "" {
				return slog.LevelDebug
			}
			var level slog.Level
			if err := level.UnmarshalText([]byte(strings.ToUpper(levelStr))); err != nil {
				slog.Error("invalid LOG_LEVEL", "level", levelStr, "error", err)
				os.Exit(1)
			}
			return level
		}(),

		metricCollectionInterval: parseDurationEnv("METRIC_COLLECTION_INTERVAL", 15*time.Second),
		agendaInterval:           parseDurationEnv("AGENDA_INTERVAL", time.Hour),
		expansionCacheSize: func() int {
			sizeStr := os.Getenv("EXPANSION_CACHE_SIZE")
			if sizeStr == "" {
				return 64
			}
			size, err := strconv.Atoi(sizeStr)
			if err != nil || size <= 0 {
				slog.Error("invalid EXPANSION_CACHE_SIZE", "value", sizeStr, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "EXPANSION_CACHE_SIZE", size)
			return size
		}(),

		// optional, the API works without a bundled web client
		staticWebClientDir: func() string {
			staticWebClientDir := os.Getenv("STATIC_WEB_CLIENT_DIR")
			if staticWebClientDir == "" {
				slog.Warn("STATIC_WEB_CLIENT_DIR is not set, not serving a web client")
				return ""
			}
			info, err := os.Stat(staticWebClientDir)
			if err != nil {
				slog.Error("can't get info of STATIC_WEB_CLIENT_DIR", "error", err)
				os.Exit(1)
			}
			if !info.IsDir() {
				slog.Error("STATIC_WEB_CLIENT_DIR is not a directory", "path", staticWebClientDir)
				os.Exit(1)
			}

			slog.Debug("env", "STATIC_WEB_CLIENT_DIR", staticWebClientDir)
			return filepath.Clean(staticWebClientDir)
		}(),
	}
}

func parseDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	duration, err := time.ParseDuration(raw)
	if err != nil || duration <= 0 {
		slog.Error("invalid "+key, "value", raw, "error", err)
		os.Exit(1)
	}
	slog.Debug("env", key, raw, "duration", duration)
	return duration
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get DB_PATH env, default to ./sqlite.db
func (c *Config) GetDBPath() string {
	return c.dbPath
}

// Get TIMEZONE env
func (c *Config) GetLocation() *time.Location {
	return c.location
}

// Get LOG_LEVEL env
func (c *Config) GetLogLevel() slog.Level {
	return c.logLevel
}

// Get METRIC_COLLECTION_INTERVAL env
func (c *Config) GetMetricCollectionInterval() time.Duration {
	return c.metricCollectionInterval
}

// Get AGENDA_INTERVAL env
func (c *Config) GetAgendaInterval() time.Duration {
	return c.agendaInterval
}

// Get EXPANSION_CACHE_SIZE env
func (c *Config) GetExpansionCacheSize() int {
	return c.expansionCacheSize
}

// Get STATIC_WEB_CLIENT_DIR env
func (c *Config) GetStaticWebClientDir() string {
	return c.staticWebClientDir
}
