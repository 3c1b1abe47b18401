package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/fogmaze/game/service"
)

// Client is a thin MCP client that proxies to the admin REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API at baseURL
func NewClient(baseURL, version string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer(version)
	return c
}

func (c *Client) initMCPServer(version string) {
	c.mcpServer = server.NewMCPServer(
		"fogmaze admin",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`fogmaze - operator interface

Players explore hidden mazes over websocket sessions. This server lets you
watch and manage those sessions; it cannot play for them.

AVAILABLE TOOLS:
- server_info: port, roster capacity and active sessions
- list_sessions: connected sessions with their status
- get_session: one session by name ("#2 alice") or id
- session_history: a session's moves, newest first
- disconnect_session: end one session and free its slot
- disconnect_all: end every session
- disconnect_idle: end sessions idle longer than a duration such as "5m"
- list_configs: maze presets available to new sessions

A session's status is one of "Connected, not started", "Game started",
"Exit found" or "Disconnected".`),
	)

	c.registerTools()
}

func nameArg(description string) map[string]interface{} {
	return map[string]interface{}{
		"name": map[string]interface{}{
			"type":        "string",
			"description": description,
		},
	}
}

func (c *Client) registerTools() {
	noArgs := mcp.ToolInputSchema{Type: "object", Properties: map[string]interface{}{}}

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "server_info",
		Description: "Show the listening port, max sessions and active session count",
		InputSchema: noArgs,
	}, c.handleServerInfo)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List connected sessions",
		InputSchema: noArgs,
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of one session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: nameArg("Session name such as \"#1 alice\", or its id"),
			Required:   []string{"name"},
		},
	}, c.handleGetSession)

	historyProps := nameArg("Session name or id")
	historyProps["page"] = map[string]interface{}{
		"type":        "number",
		"description": "Page number (default 1)",
	}
	historyProps["limit"] = map[string]interface{}{
		"type":        "number",
		"description": "Moves per page (default 20, max 100)",
	}
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "session_history",
		Description: "Show a session's moves, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: historyProps,
			Required:   []string{"name"},
		},
	}, c.handleSessionHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "disconnect_session",
		Description: "Send END to one session and release its slot",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: nameArg("Session name or id"),
			Required:   []string{"name"},
		},
	}, c.handleDisconnectSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "disconnect_all",
		Description: "Disconnect every session",
		InputSchema: noArgs,
	}, c.handleDisconnectAll)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "disconnect_idle",
		Description: "Disconnect sessions with no activity for longer than max_idle",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"max_idle": map[string]interface{}{
					"type":        "string",
					"description": "Go duration such as \"90s\" or \"10m\"",
				},
			},
			Required: []string{"max_idle"},
		},
	}, c.handleDisconnectIdle)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List maze presets",
		InputSchema: noArgs,
	}, c.handleListConfigs)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(name string) string {
	return "/api/sessions/" + url.PathEscape(name)
}

// Tool handlers

func (c *Client) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var info service.ServerInfo
	if err := c.apiCall(ctx, "GET", "/api/server", nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatServerInfo(&info)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&b, "- %s: %s (connected %s)\n", s.Name, s.Status, s.ConnectedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := arguments(request)["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(name), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleSessionHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	name, _ := args["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	query := url.Values{}
	if page, ok := args["page"].(float64); ok {
		query.Set("page", fmt.Sprint(int(page)))
	}
	if limit, ok := args["limit"].(float64); ok {
		query.Set("limit", fmt.Sprint(int(limit)))
	}
	path := sessionPath(name) + "/history"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleDisconnectSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := arguments(request)["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	if err := c.apiCall(ctx, "DELETE", sessionPath(name), nil, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Disconnected %s", name)), nil
}

func (c *Client) handleDisconnectAll(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Disconnected int    `json:"disconnected"`
		Error        string `json:"error"`
	}
	if err := c.apiCall(ctx, "DELETE", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Disconnected %d session(s)", response.Disconnected)
	if response.Error != "" {
		result += "\nSome END messages could not be delivered: " + response.Error
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleDisconnectIdle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	maxIdle, _ := arguments(request)["max_idle"].(string)
	if _, err := time.ParseDuration(maxIdle); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid max_idle %q: %v", maxIdle, err)), nil
	}

	var response struct {
		Disconnected int `json:"disconnected"`
	}
	path := "/api/sessions/idle?max_idle=" + url.QueryEscape(maxIdle)
	if err := c.apiCall(ctx, "POST", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Disconnected %d idle session(s)", response.Disconnected)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Presets:\n\n")
	for _, cfg := range configs {
		size := fmt.Sprintf("%dx%d", cfg.Rows, cfg.Cols)
		if cfg.RandomSize {
			size = fmt.Sprintf("up to %dx%d", cfg.Rows, cfg.Cols)
		}
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Maze: %s\n\n", cfg.Name, cfg.ConfigID, cfg.Description, size)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// Formatting helpers

func formatServerInfo(info *service.ServerInfo) string {
	return fmt.Sprintf("Port: %d\nSessions: %d/%d\nStarted: %s\n",
		info.Port, info.ActiveSessions, info.MaxSessions,
		info.StartedAt.Format("2006-01-02 15:04:05"))
}

func formatSessionInfo(s *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nID: %s\nStatus: %s\n", s.Name, s.ID, s.Status)
	if s.RemoteAddr != "" {
		fmt.Fprintf(&b, "Remote: %s\n", s.RemoteAddr)
	}
	fmt.Fprintf(&b, "Connected: %s\nLast active: %s\n",
		s.ConnectedAt.Format("2006-01-02 15:04:05"),
		s.LastActiveAt.Format("2006-01-02 15:04:05"))
	if s.Stats != nil {
		fmt.Fprintf(&b, "Maze: %dx%d\nPosition: %s\nMoves: %d\n",
			s.Stats.Rows, s.Stats.Cols, s.Stats.Position, s.Stats.Moves)
	}
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d), %d moves total\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		fmt.Fprintf(&b, "%d. %s %s -> %s [%s]\n",
			move.MoveNumber, move.Action, move.FromPosition, move.ToPosition, move.Outcome)
	}
	return b.String()
}
