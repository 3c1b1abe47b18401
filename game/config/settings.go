package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/wricardo/fogmaze/game/session"
)

const (
	DefaultHost         = "localhost"
	DefaultPort         = 4434
	MinPort             = 1024
	MaxPort             = 65535
	DefaultConfigDir    = "configs"
	DefaultPreset       = "classic"
	DefaultViewportSize = 5

	envPrefix = "FOGMAZE_"
)

// Settings are the process-level knobs read from the environment. CLI flags
// take these as their defaults.
type Settings struct {
	Host         string
	Port         int
	MaxSessions  int
	PollInterval time.Duration
	Preset       string
	ConfigDir    string
	ViewportSize int
	// IdleTimeout of zero disables idle reaping.
	IdleTimeout time.Duration
}

// LoadDotEnv loads .env from the working directory when present.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).Warn("error loading .env file")
		}
		return
	}
	log.Debug("loaded environment variables from .env file")
}

// FromEnv reads FOGMAZE_* variables. Malformed values fall back to defaults.
func FromEnv() Settings {
	return Settings{
		Host:         stringEnv("HOST", DefaultHost),
		Port:         CheckPort(os.Getenv(envPrefix + "PORT")),
		MaxSessions:  CheckMaxSessions(os.Getenv(envPrefix + "MAX_SESSIONS")),
		PollInterval: durationEnv("POLL_INTERVAL", session.DefaultPollInterval),
		Preset:       stringEnv("PRESET", DefaultPreset),
		ConfigDir:    stringEnv("CONFIG_DIR", DefaultConfigDir),
		ViewportSize: viewportEnv(),
		IdleTimeout:  durationEnv("IDLE_TIMEOUT", 0),
	}
}

// CheckPort parses a port number. Anything unparsable or outside
// [MinPort, MaxPort] yields DefaultPort.
func CheckPort(text string) int {
	return ClampPort(cast.ToInt(strings.TrimSpace(text)))
}

// ClampPort returns port, or DefaultPort when it is outside [MinPort, MaxPort].
func ClampPort(port int) int {
	if port < MinPort || port > MaxPort {
		return DefaultPort
	}
	return port
}

// CheckMaxSessions parses a roster size, clamped to [1, session.MaxSessionsLimit].
// An empty value yields session.DefaultMaxSessions.
func CheckMaxSessions(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return session.DefaultMaxSessions
	}
	return ClampMaxSessions(cast.ToInt(text))
}

// ClampMaxSessions clamps n to [1, session.MaxSessionsLimit].
func ClampMaxSessions(n int) int {
	if n < 1 {
		return 1
	}
	if n > session.MaxSessionsLimit {
		return session.MaxSessionsLimit
	}
	return n
}

func stringEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(envPrefix + key)); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(envPrefix + key))
	if v == "" {
		return fallback
	}
	d, err := cast.ToDurationE(v)
	if err != nil || d < 0 {
		log.WithField("key", envPrefix+key).Warn("invalid duration, using default")
		return fallback
	}
	return d
}

func viewportEnv() int {
	n := cast.ToInt(os.Getenv(envPrefix + "VIEWPORT"))
	if n < 1 {
		return DefaultViewportSize
	}
	return n
}
