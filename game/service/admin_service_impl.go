package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wricardo/fogmaze/game/engine"
)

var ErrNoConfigs = errors.New("no config manager")

// adminServiceImpl implements the AdminService interface
type adminServiceImpl struct {
	sessions SessionDirectory
	configs  ConfigManager
}

// NewAdminService creates a new admin service. configs may be nil when no
// preset directory is in use.
func NewAdminService(sessions SessionDirectory, configs ConfigManager) AdminService {
	return &adminServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

func (s *adminServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	list := s.sessions.List()
	if list == nil {
		list = []*SessionInfo{}
	}
	return list, nil
}

func (s *adminServiceImpl) GetSession(ctx context.Context, name string) (*SessionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := s.sessions.Get(name)
	if err != nil {
		return nil, fmt.Errorf("session %q: %w", name, err)
	}
	return info, nil
}

func (s *adminServiceImpl) DisconnectSession(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.sessions.Disconnect(name); err != nil {
		return fmt.Errorf("disconnect %q: %w", name, err)
	}
	return nil
}

func (s *adminServiceImpl) DisconnectAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.sessions.DisconnectAll()
}

func (s *adminServiceImpl) DisconnectIdle(ctx context.Context, maxIdle time.Duration) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if maxIdle <= 0 {
		return 0, fmt.Errorf("max idle must be positive, got %s", maxIdle)
	}
	return s.sessions.DisconnectIdle(maxIdle), nil
}

// GetMoveHistory returns paginated move history
func (s *adminServiceImpl) GetMoveHistory(ctx context.Context, name string, opts HistoryOptions) (*HistoryResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	history, err := s.sessions.History(name)
	if err != nil {
		return nil, fmt.Errorf("session %q: %w", name, err)
	}
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []engine.MoveHistoryEntry{}
	if opts.Order == "desc" {
		// most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

func (s *adminServiceImpl) ServerInfo(ctx context.Context) (*ServerInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info := s.sessions.Info()
	return &info, nil
}

// ListConfigs returns available maze presets
func (s *adminServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	if s.configs == nil {
		return []*ConfigInfo{}, nil
	}
	return s.configs.ListConfigs()
}

func (s *adminServiceImpl) LoadConfig(ctx context.Context, name string) (*engine.GameConfig, error) {
	if s.configs == nil {
		return nil, ErrNoConfigs
	}
	return s.configs.LoadConfig(name)
}
