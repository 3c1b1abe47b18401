package config

import (
	"testing"
	"time"

	"github.com/wricardo/fogmaze/game/session"
)

func TestCheckPort(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"8080", 8080},
		{" 9000 ", 9000},
		{"1024", 1024},
		{"65535", 65535},
		{"1023", DefaultPort},
		{"65536", DefaultPort},
		{"", DefaultPort},
		{"abc", DefaultPort},
		{"-1", DefaultPort},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := CheckPort(tt.in); got != tt.want {
				t.Errorf("CheckPort(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestCheckMaxSessions(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", session.DefaultMaxSessions},
		{"2", 2},
		{"0", 1},
		{"-4", 1},
		{"nope", 1},
		{"6", 6},
		{"50", session.MaxSessionsLimit},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := CheckMaxSessions(tt.in); got != tt.want {
				t.Errorf("CheckMaxSessions(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, key := range []string{"HOST", "PORT", "MAX_SESSIONS", "POLL_INTERVAL", "PRESET", "CONFIG_DIR", "VIEWPORT", "IDLE_TIMEOUT"} {
			t.Setenv(envPrefix+key, "")
		}
		s := FromEnv()
		want := Settings{
			Host:         DefaultHost,
			Port:         DefaultPort,
			MaxSessions:  session.DefaultMaxSessions,
			PollInterval: session.DefaultPollInterval,
			Preset:       DefaultPreset,
			ConfigDir:    DefaultConfigDir,
			ViewportSize: DefaultViewportSize,
		}
		if s != want {
			t.Errorf("FromEnv() = %+v, want %+v", s, want)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("FOGMAZE_HOST", "0.0.0.0")
		t.Setenv("FOGMAZE_PORT", "5000")
		t.Setenv("FOGMAZE_MAX_SESSIONS", "5")
		t.Setenv("FOGMAZE_POLL_INTERVAL", "250ms")
		t.Setenv("FOGMAZE_PRESET", "hard")
		t.Setenv("FOGMAZE_CONFIG_DIR", "/etc/fogmaze")
		t.Setenv("FOGMAZE_VIEWPORT", "9")
		t.Setenv("FOGMAZE_IDLE_TIMEOUT", "10m")

		s := FromEnv()
		want := Settings{
			Host:         "0.0.0.0",
			Port:         5000,
			MaxSessions:  5,
			PollInterval: 250 * time.Millisecond,
			Preset:       "hard",
			ConfigDir:    "/etc/fogmaze",
			ViewportSize: 9,
			IdleTimeout:  10 * time.Minute,
		}
		if s != want {
			t.Errorf("FromEnv() = %+v, want %+v", s, want)
		}
	})

	t.Run("bad duration falls back", func(t *testing.T) {
		t.Setenv("FOGMAZE_POLL_INTERVAL", "soon")
		if got := FromEnv().PollInterval; got != session.DefaultPollInterval {
			t.Errorf("Expected default poll interval, got %v", got)
		}
	})
}

func TestClamp(t *testing.T) {
	ports := map[int]int{0: DefaultPort, 80: DefaultPort, 1024: 1024, 8080: 8080, 65535: 65535, 70000: DefaultPort}
	for in, want := range ports {
		if got := ClampPort(in); got != want {
			t.Errorf("ClampPort(%d) = %d, want %d", in, got, want)
		}
	}
	sessions := map[int]int{-3: 1, 0: 1, 1: 1, 4: 4, 6: 6, 9: 6}
	for in, want := range sessions {
		if got := ClampMaxSessions(in); got != want {
			t.Errorf("ClampMaxSessions(%d) = %d, want %d", in, got, want)
		}
	}
}
