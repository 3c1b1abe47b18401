package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/fogmaze/game/client"
	"github.com/wricardo/fogmaze/game/config"
	"github.com/wricardo/fogmaze/game/engine"
	"github.com/wricardo/fogmaze/game/maze"
	"github.com/wricardo/fogmaze/game/service"
	"github.com/wricardo/fogmaze/game/session"
	"github.com/wricardo/fogmaze/transport/websocket"
)

// MockAdminService implements service.AdminService for testing
type MockAdminService struct {
	ListSessionsFunc      func(ctx context.Context) ([]*service.SessionInfo, error)
	GetSessionFunc        func(ctx context.Context, name string) (*service.SessionInfo, error)
	DisconnectSessionFunc func(ctx context.Context, name string) error
	DisconnectAllFunc     func(ctx context.Context) error
	DisconnectIdleFunc    func(ctx context.Context, maxIdle time.Duration) (int, error)
	GetMoveHistoryFunc    func(ctx context.Context, name string, opts service.HistoryOptions) (*service.HistoryResponse, error)
	ServerInfoFunc        func(ctx context.Context) (*service.ServerInfo, error)
	ListConfigsFunc       func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc        func(ctx context.Context, name string) (*engine.GameConfig, error)
}

func (m *MockAdminService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockAdminService) GetSession(ctx context.Context, name string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, name)
	}
	return &service.SessionInfo{Name: name, Status: engine.StatusStarted}, nil
}

func (m *MockAdminService) DisconnectSession(ctx context.Context, name string) error {
	if m.DisconnectSessionFunc != nil {
		return m.DisconnectSessionFunc(ctx, name)
	}
	return nil
}

func (m *MockAdminService) DisconnectAll(ctx context.Context) error {
	if m.DisconnectAllFunc != nil {
		return m.DisconnectAllFunc(ctx)
	}
	return nil
}

func (m *MockAdminService) DisconnectIdle(ctx context.Context, maxIdle time.Duration) (int, error) {
	if m.DisconnectIdleFunc != nil {
		return m.DisconnectIdleFunc(ctx, maxIdle)
	}
	return 0, nil
}

func (m *MockAdminService) GetMoveHistory(ctx context.Context, name string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetMoveHistoryFunc != nil {
		return m.GetMoveHistoryFunc(ctx, name, opts)
	}
	return &service.HistoryResponse{Moves: []engine.MoveHistoryEntry{}, Page: opts.Page, PageSize: opts.Limit, TotalPages: 1}, nil
}

func (m *MockAdminService) ServerInfo(ctx context.Context) (*service.ServerInfo, error) {
	if m.ServerInfoFunc != nil {
		return m.ServerInfoFunc(ctx)
	}
	return &service.ServerInfo{Port: 4434, MaxSessions: 3}, nil
}

func (m *MockAdminService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockAdminService) LoadConfig(ctx context.Context, name string) (*engine.GameConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, name)
	}
	return engine.DefaultConfig(), nil
}

func setupTestServer(mockService *MockAdminService) *Server {
	return NewServer(mockService, nil)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func sessionPath(name string) string {
	return "/api/sessions/" + url.PathEscape(name)
}

func TestListSessions(t *testing.T) {
	roster := []*service.SessionInfo{
		{Name: "#1 alice", Status: engine.StatusStarted},
		{Name: "#2", Status: engine.StatusNotStarted},
		{Name: "#3 bob", Status: engine.StatusExitFound},
	}

	tests := []struct {
		name           string
		path           string
		setupMock      func(*MockAdminService)
		expectedStatus int
		expectedCount  int
	}{
		{
			name: "all sessions",
			path: "/api/sessions",
			setupMock: func(m *MockAdminService) {
				m.ListSessionsFunc = func(ctx context.Context) ([]*service.SessionInfo, error) { return roster, nil }
			},
			expectedStatus: http.StatusOK,
			expectedCount:  3,
		},
		{
			name: "filtered by status",
			path: "/api/sessions?status=" + url.QueryEscape(engine.StatusExitFound),
			setupMock: func(m *MockAdminService) {
				m.ListSessionsFunc = func(ctx context.Context) ([]*service.SessionInfo, error) { return roster, nil }
			},
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:           "empty roster",
			path:           "/api/sessions",
			expectedStatus: http.StatusOK,
			expectedCount:  0,
		},
		{
			name: "service error",
			path: "/api/sessions",
			setupMock: func(m *MockAdminService) {
				m.ListSessionsFunc = func(ctx context.Context) ([]*service.SessionInfo, error) {
					return nil, fmt.Errorf("roster unavailable")
				}
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockAdminService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			w := httptest.NewRecorder()
			setupTestServer(mockService).ServeHTTP(w, makeRequest("GET", tt.path, nil))

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if w.Code != http.StatusOK {
				return
			}
			var resp struct {
				Count    int                    `json:"count"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)
			if resp.Count != tt.expectedCount || len(resp.Sessions) != tt.expectedCount {
				t.Errorf("Expected %d sessions, got count=%d len=%d", tt.expectedCount, resp.Count, len(resp.Sessions))
			}
		})
	}
}

func TestGetSession(t *testing.T) {
	tests := []struct {
		name           string
		session        string
		err            error
		expectedStatus int
	}{
		{"existing session by name", "#1 alice", nil, http.StatusOK},
		{"not found", "#9", session.ErrSessionNotFound, http.StatusNotFound},
		{"other failure", "#1", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotName string
			mockService := &MockAdminService{
				GetSessionFunc: func(ctx context.Context, name string) (*service.SessionInfo, error) {
					gotName = name
					if tt.err != nil {
						return nil, fmt.Errorf("session %q: %w", name, tt.err)
					}
					return &service.SessionInfo{Name: name, Status: engine.StatusStarted}, nil
				},
			}

			w := httptest.NewRecorder()
			setupTestServer(mockService).ServeHTTP(w, makeRequest("GET", sessionPath(tt.session), nil))

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if gotName != tt.session {
				t.Errorf("Expected the handler to receive %q, got %q", tt.session, gotName)
			}
			if tt.err == nil {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.Name != tt.session {
					t.Errorf("Expected name %q, got %q", tt.session, resp.Name)
				}
			}
		})
	}
}

func TestDisconnectSession(t *testing.T) {
	t.Run("disconnects by name", func(t *testing.T) {
		var got string
		mockService := &MockAdminService{
			DisconnectSessionFunc: func(ctx context.Context, name string) error {
				got = name
				return nil
			},
		}
		w := httptest.NewRecorder()
		setupTestServer(mockService).ServeHTTP(w, makeRequest("DELETE", sessionPath("#2 bob"), nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		if got != "#2 bob" {
			t.Errorf("Expected #2 bob, got %q", got)
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		mockService := &MockAdminService{
			DisconnectSessionFunc: func(ctx context.Context, name string) error {
				return fmt.Errorf("disconnect %q: %w", name, session.ErrSessionNotFound)
			},
		}
		w := httptest.NewRecorder()
		setupTestServer(mockService).ServeHTTP(w, makeRequest("DELETE", sessionPath("#7"), nil))

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}

func TestDisconnectAll(t *testing.T) {
	called := false
	mockService := &MockAdminService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{{Name: "#1"}, {Name: "#2"}}, nil
		},
		DisconnectAllFunc: func(ctx context.Context) error {
			called = true
			return fmt.Errorf("send END to #2: broken pipe")
		},
	}

	w := httptest.NewRecorder()
	setupTestServer(mockService).ServeHTTP(w, makeRequest("DELETE", "/api/sessions", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !called {
		t.Error("Expected DisconnectAll to be called")
	}
	var resp map[string]interface{}
	parseResponse(t, w, &resp)
	if resp["disconnected"].(float64) != 2 {
		t.Errorf("Expected 2 disconnected, got %v", resp["disconnected"])
	}
	if !strings.Contains(resp["error"].(string), "broken pipe") {
		t.Errorf("Expected the send failure to be reported, got %v", resp["error"])
	}
}

func TestDisconnectIdle(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedIdle   time.Duration
	}{
		{"valid duration", "?max_idle=90s", http.StatusOK, 90 * time.Second},
		{"missing parameter", "", http.StatusBadRequest, 0},
		{"bad duration", "?max_idle=later", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got time.Duration
			mockService := &MockAdminService{
				DisconnectIdleFunc: func(ctx context.Context, maxIdle time.Duration) (int, error) {
					got = maxIdle
					return 2, nil
				},
			}
			w := httptest.NewRecorder()
			setupTestServer(mockService).ServeHTTP(w, makeRequest("POST", "/api/sessions/idle"+tt.query, nil))

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if got != tt.expectedIdle {
				t.Errorf("Expected max idle %v, got %v", tt.expectedIdle, got)
			}
		})
	}
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected service.HistoryOptions
	}{
		{"defaults", "", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
		{"explicit", "?page=3&limit=5&order=asc", service.HistoryOptions{Page: 3, Limit: 5, Order: "asc"}},
		{"invalid values ignored", "?page=-1&limit=abc&order=sideways", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got service.HistoryOptions
			mockService := &MockAdminService{
				GetMoveHistoryFunc: func(ctx context.Context, name string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					got = opts
					return &service.HistoryResponse{Moves: []engine.MoveHistoryEntry{}}, nil
				},
			}
			w := httptest.NewRecorder()
			setupTestServer(mockService).ServeHTTP(w, makeRequest("GET", sessionPath("#1")+"/history"+tt.query, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			if got != tt.expected {
				t.Errorf("Expected options %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestServerInfoAndHealth(t *testing.T) {
	server := setupTestServer(&MockAdminService{})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/server", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var info service.ServerInfo
	parseResponse(t, w, &info)
	if info.Port != 4434 || info.MaxSessions != 3 {
		t.Errorf("Unexpected server info %+v", info)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "healthy") {
		t.Errorf("Unexpected health response %d %s", w.Code, w.Body.String())
	}
}

func TestConfigs(t *testing.T) {
	mockService := &MockAdminService{
		ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
			return []*service.ConfigInfo{{ConfigID: "classic", Rows: 10, Cols: 10}}, nil
		},
		LoadConfigFunc: func(ctx context.Context, name string) (*engine.GameConfig, error) {
			switch name {
			case "classic":
				return engine.DefaultConfig(), nil
			case "broken":
				return nil, fmt.Errorf("%w: rows out of range", config.ErrInvalidConfig)
			}
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, name)
		},
	}
	server := setupTestServer(mockService)

	t.Run("list", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/configs", nil))
		var resp []service.ConfigInfo
		parseResponse(t, w, &resp)
		if len(resp) != 1 || resp[0].ConfigID != "classic" {
			t.Errorf("Unexpected list %+v", resp)
		}
	})

	tests := []struct {
		path           string
		expectedStatus int
	}{
		{"/api/configs/classic", http.StatusOK},
		{"/api/configs/classic.json", http.StatusOK},
		{"/api/configs/missing", http.StatusNotFound},
		{"/api/configs/broken", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", tt.path, nil))
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

// TestServer_EndToEnd runs a real manager behind the router and plays over /ws.
func TestServer_EndToEnd(t *testing.T) {
	logger := log.New()
	logger.SetOutput(io.Discard)

	seed := int64(4)
	cfg := &engine.GameConfig{Name: "e2e", Rows: 5, Cols: 5, Seed: &seed}
	manager, err := session.NewManager(session.Config{
		MaxSessions:  2,
		PollInterval: 10 * time.Millisecond,
		Logger:       logger,
		Factory:      func() (engine.Engine, error) { return engine.NewEngine(cfg) },
		Port:         4434,
	})
	if err != nil {
		t.Fatal(err)
	}

	listener := websocket.NewListener("test", logger)
	httpServer := httptest.NewServer(NewServer(service.NewAdminService(manager, nil), listener))
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Serve(ctx, listener)
	defer func() {
		cancel()
		listener.Close()
		manager.DisconnectAll()
		manager.Wait()
		httpServer.Close()
	}()

	dialCtx, dialCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer dialCancel()
	conn, err := websocket.Dial(dialCtx, "ws"+strings.TrimPrefix(httpServer.URL, "http")+"/ws")
	if err != nil {
		t.Fatal(err)
	}
	c := client.New(conn, client.WithLogger(logger))
	if err := c.Connect(dialCtx, "carol"); err != nil {
		t.Fatal(err)
	}
	for _, d := range []maze.Direction{maze.Up, maze.Left, maze.Down} {
		if _, err := c.Move(dialCtx, d); err != nil {
			t.Fatal(err)
		}
	}

	get := func(path string, target interface{}) int {
		resp, err := http.Get(httpServer.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if target != nil {
			if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
				t.Fatal(err)
			}
		}
		return resp.StatusCode
	}

	var info service.ServerInfo
	get("/api/server", &info)
	if info.Port != 4434 || info.MaxSessions != 2 || info.ActiveSessions != 1 {
		t.Errorf("Unexpected server info %+v", info)
	}

	var history service.HistoryResponse
	if code := get(sessionPath("#1 carol")+"/history?order=asc", &history); code != http.StatusOK {
		t.Fatalf("history returned %d", code)
	}
	if history.TotalMoves != 3 || history.Moves[0].Action != "up" {
		t.Errorf("Unexpected history %+v", history)
	}

	req, _ := http.NewRequest(http.MethodDelete, httpServer.URL+sessionPath("#1 carol"), nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete returned %d", resp.StatusCode)
	}
	if _, err := c.Move(dialCtx, maze.Right); err == nil {
		t.Error("Expected the client to see the server end the session")
	}
	if code := get(sessionPath("#1 carol"), nil); code != http.StatusNotFound {
		t.Errorf("Expected 404 after disconnect, got %d", code)
	}
}
