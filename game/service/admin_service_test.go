package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wricardo/fogmaze/game/engine"
	"github.com/wricardo/fogmaze/game/service"
)

var errNotFound = errors.New("session not found")

// MockDirectory implements service.SessionDirectory for testing
type MockDirectory struct {
	sessions     map[string]*service.SessionInfo
	history      map[string][]engine.MoveHistoryEntry
	disconnected []string
	idleReaped   int
}

func NewMockDirectory() *MockDirectory {
	return &MockDirectory{
		sessions: map[string]*service.SessionInfo{
			"#1 alice": {Name: "#1 alice", Status: engine.StatusStarted, Alive: true},
		},
		history: map[string][]engine.MoveHistoryEntry{},
	}
}

func (m *MockDirectory) List() []*service.SessionInfo {
	var out []*service.SessionInfo
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

func (m *MockDirectory) Get(name string) (*service.SessionInfo, error) {
	s, ok := m.sessions[name]
	if !ok {
		return nil, errNotFound
	}
	return s, nil
}

func (m *MockDirectory) History(name string) ([]engine.MoveHistoryEntry, error) {
	if _, ok := m.sessions[name]; !ok {
		return nil, errNotFound
	}
	return m.history[name], nil
}

func (m *MockDirectory) Disconnect(name string) error {
	if _, ok := m.sessions[name]; !ok {
		return errNotFound
	}
	delete(m.sessions, name)
	m.disconnected = append(m.disconnected, name)
	return nil
}

func (m *MockDirectory) DisconnectAll() error {
	for name := range m.sessions {
		m.Disconnect(name)
	}
	return nil
}

func (m *MockDirectory) DisconnectIdle(maxIdle time.Duration) int {
	m.idleReaped++
	return 1
}

func (m *MockDirectory) Info() service.ServerInfo {
	return service.ServerInfo{Port: 4434, MaxSessions: 3, ActiveSessions: len(m.sessions)}
}

func TestAdminService_Sessions(t *testing.T) {
	dir := NewMockDirectory()
	svc := service.NewAdminService(dir, nil)
	ctx := context.Background()

	list, err := svc.ListSessions(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListSessions() = %v, %v", list, err)
	}

	info, err := svc.GetSession(ctx, "#1 alice")
	if err != nil || info.Status != engine.StatusStarted {
		t.Fatalf("GetSession() = %+v, %v", info, err)
	}

	if _, err := svc.GetSession(ctx, "#9"); !errors.Is(err, errNotFound) {
		t.Errorf("Expected wrapped not found error, got %v", err)
	}

	if err := svc.DisconnectSession(ctx, "#1 alice"); err != nil {
		t.Fatalf("DisconnectSession() error: %v", err)
	}
	if len(dir.disconnected) != 1 {
		t.Errorf("Expected one disconnect, got %v", dir.disconnected)
	}

	list, err = svc.ListSessions(ctx)
	if err != nil || list == nil || len(list) != 0 {
		t.Errorf("Expected empty non-nil list, got %v, %v", list, err)
	}

	info2, err := svc.ServerInfo(ctx)
	if err != nil || info2.Port != 4434 || info2.ActiveSessions != 0 {
		t.Errorf("ServerInfo() = %+v, %v", info2, err)
	}
}

func TestAdminService_DisconnectIdle(t *testing.T) {
	dir := NewMockDirectory()
	svc := service.NewAdminService(dir, nil)

	if _, err := svc.DisconnectIdle(context.Background(), 0); err == nil {
		t.Error("Expected error for zero max idle")
	}
	n, err := svc.DisconnectIdle(context.Background(), time.Minute)
	if err != nil || n != 1 || dir.idleReaped != 1 {
		t.Errorf("DisconnectIdle() = %d, %v", n, err)
	}
}

func TestAdminService_CancelledContext(t *testing.T) {
	svc := service.NewAdminService(NewMockDirectory(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.ListSessions(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if err := svc.DisconnectAll(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestAdminService_GetMoveHistory(t *testing.T) {
	dir := NewMockDirectory()
	for i := 1; i <= 25; i++ {
		dir.history["#1 alice"] = append(dir.history["#1 alice"], engine.MoveHistoryEntry{MoveNumber: i})
	}
	svc := service.NewAdminService(dir, nil)
	ctx := context.Background()

	tests := []struct {
		name      string
		opts      service.HistoryOptions
		wantLen   int
		wantFirst int
		wantNext  bool
	}{
		{"defaults are newest first", service.HistoryOptions{}, 20, 25, true},
		{"second page desc", service.HistoryOptions{Page: 2}, 5, 5, false},
		{"asc", service.HistoryOptions{Order: "asc", Limit: 10}, 10, 1, true},
		{"asc last page", service.HistoryOptions{Order: "asc", Limit: 10, Page: 3}, 5, 21, false},
		{"past the end", service.HistoryOptions{Order: "asc", Page: 9}, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.GetMoveHistory(ctx, "#1 alice", tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if len(resp.Moves) != tt.wantLen {
				t.Fatalf("Expected %d moves, got %d", tt.wantLen, len(resp.Moves))
			}
			if tt.wantLen > 0 && resp.Moves[0].MoveNumber != tt.wantFirst {
				t.Errorf("Expected first move %d, got %d", tt.wantFirst, resp.Moves[0].MoveNumber)
			}
			if resp.HasNext != tt.wantNext {
				t.Errorf("Expected HasNext %v, got %v", tt.wantNext, resp.HasNext)
			}
			if resp.TotalMoves != 25 {
				t.Errorf("Expected 25 total moves, got %d", resp.TotalMoves)
			}
		})
	}

	if _, err := svc.GetMoveHistory(ctx, "nobody", service.HistoryOptions{}); !errors.Is(err, errNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestAdminService_NoConfigManager(t *testing.T) {
	svc := service.NewAdminService(NewMockDirectory(), nil)

	configs, err := svc.ListConfigs(context.Background())
	if err != nil || len(configs) != 0 {
		t.Errorf("ListConfigs() = %v, %v", configs, err)
	}
	if _, err := svc.LoadConfig(context.Background(), "classic"); !errors.Is(err, service.ErrNoConfigs) {
		t.Errorf("Expected ErrNoConfigs, got %v", err)
	}
}
