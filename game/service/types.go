package service

import (
	"time"

	"github.com/wricardo/fogmaze/game/engine"
)

// SessionInfo provides information about one connected player
type SessionInfo struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Label        string        `json:"label,omitempty"`
	Status       string        `json:"status"`
	Alive        bool          `json:"alive"`
	RemoteAddr   string        `json:"remote_addr,omitempty"`
	ConnectedAt  time.Time     `json:"connected_at"`
	LastActiveAt time.Time     `json:"last_active_at"`
	Stats        *engine.Stats `json:"stats,omitempty"`
}

// ServerInfo describes the listening server
type ServerInfo struct {
	Port           int       `json:"port"`
	MaxSessions    int       `json:"max_sessions"`
	ActiveSessions int       `json:"active_sessions"`
	StartedAt      time.Time `json:"started_at"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a maze preset
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	RandomSize  bool   `json:"random_size"`
}
