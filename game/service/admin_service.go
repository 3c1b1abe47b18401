package service

import (
	"context"
	"time"

	"github.com/wricardo/fogmaze/game/engine"
)

// AdminService defines the operations exposed to operators
type AdminService interface {
	// Sessions
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	GetSession(ctx context.Context, name string) (*SessionInfo, error)
	DisconnectSession(ctx context.Context, name string) error
	DisconnectAll(ctx context.Context) error
	DisconnectIdle(ctx context.Context, maxIdle time.Duration) (int, error)
	GetMoveHistory(ctx context.Context, name string, opts HistoryOptions) (*HistoryResponse, error)

	// Server
	ServerInfo(ctx context.Context) (*ServerInfo, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, name string) (*engine.GameConfig, error)
}

// SessionDirectory is the roster of connected sessions
type SessionDirectory interface {
	List() []*SessionInfo
	Get(name string) (*SessionInfo, error)
	History(name string) ([]engine.MoveHistoryEntry, error)
	Disconnect(name string) error
	DisconnectAll() error
	DisconnectIdle(maxIdle time.Duration) int
	Info() ServerInfo
}

// ConfigManager handles maze preset loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}
