package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/htoopyaelinn56/rock-paper-scissors-server/game/registry"
	"github.com/htoopyaelinn56/rock-paper-scissors-server/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Rock Paper Scissors Server",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Rock Paper Scissors Server - MCP Interface

This is a thin client that proxies all requests to the REST API server.

The server hosts multiplayer rock-paper-scissors rooms over WebSockets.
Players join a room, any member starts a game, everyone submits a move,
and the round resolver picks winners. MCP tools are read-only: playing
a game requires a WebSocket connection.

AVAILABLE TOOLS:
- list_rooms: List all open rooms and their member counts
- room_info: Inspect a single room (phase, members)
- server_stats: Server-wide room and connection counts
- game_rules: The rules used to resolve a round`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rooms",
		Description: "List all open rooms with their current member counts",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRooms)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "room_info",
		Description: "Get details of a specific room: phase (idle or active) and member ids",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "string",
					"description": "Room ID to inspect",
				},
			},
			Required: []string{"room_id"},
		},
	}, c.handleRoomInfo)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "server_stats",
		Description: "Get server-wide statistics: room count, connection count, uptime",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleServerStats)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_rules",
		Description: "Get the rules used to resolve a round of rock paper scissors",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameRules)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(path string, result interface{}) error {
	url := c.baseURL + path

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
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

// Tool handlers

func (c *Client) handleListRooms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response service.RoomListEvent
	err := c.apiCall("/api/rooms", &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(response.Rooms) == 0 {
		return mcp.NewToolResultText("No open rooms."), nil
	}

	result := fmt.Sprintf("Open Rooms (%d):\n\n", len(response.Rooms))
	for _, r := range response.Rooms {
		result += fmt.Sprintf("- %s (%d connected)\n", r.RoomID, r.ClientCount)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleRoomInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	roomID, _ := args["room_id"].(string)
	if roomID == "" {
		return mcp.NewToolResultError("room_id is required"), nil
	}

	var detail registry.RoomDetail
	err := c.apiCall(fmt.Sprintf("/api/rooms/%s", roomID), &detail)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatRoomDetail(&detail)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleServerStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var stats struct {
		UptimeSeconds float64 `json:"uptime_seconds"`
		Rooms         int     `json:"rooms"`
		Connections   int     `json:"connections"`
		Version       string  `json:"version"`
	}

	err := c.apiCall("/api/stats", &stats)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Server Stats:\n\nVersion: %s\nUptime: %s\nRooms: %d\nConnections: %d\n",
		stats.Version,
		(time.Duration(stats.UptimeSeconds) * time.Second).String(),
		stats.Rooms, stats.Connections)

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rules := `Rock Paper Scissors - Round Resolution Rules

CHOICES:
- rock beats scissors
- scissors beats paper
- paper beats rock

ANY NUMBER OF PLAYERS:
A round resolves once every active player has submitted a move. The
set of DISTINCT choices decides the outcome:

- 1 distinct choice (everyone picked the same): tie, round replays
  with all players.
- 3 distinct choices (all of rock/paper/scissors present): tie, round
  replays with all players.
- 2 distinct choices: the players holding the beating choice win.

WINNERS:
- Exactly one winner: the game ends and the room returns to idle.
- Multiple winners: a rematch starts among the winners only; the rest
  are eliminated.

OTHER RULES:
- Each player may submit one move per round; duplicates are rejected.
- If an active player disconnects mid-game, the game is aborted and
  the room returns to idle.`

	return mcp.NewToolResultText(rules), nil
}

// Formatting helpers

func formatRoomDetail(detail *registry.RoomDetail) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Room: %s\nPhase: %s\nConnected: %d\n",
		detail.RoomID, detail.Phase, detail.ClientCount))

	if len(detail.Members) > 0 {
		b.WriteString("\nMembers:\n")
		for _, m := range detail.Members {
			b.WriteString(fmt.Sprintf("- %s\n", m))
		}
	}

	return b.String()
}
