package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/duelrooms/game/config"
	"github.com/wricardo/duelrooms/game/engine"
	"github.com/wricardo/duelrooms/game/room"
	"github.com/wricardo/duelrooms/game/service"
)

// ServerName and ServerVersion identify the MCP server to clients
const (
	ServerName    = "duelrooms"
	ServerVersion = "1.0.0"
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
		baseURL: strings.TrimSuffix(baseURL, "/"),
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
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions(`duelrooms - MCP Interface

Read-only view of a two-player room server. Players create and join rooms
and play over the WebSocket at /ws; these tools inspect what is going on.

AVAILABLE TOOLS:
- list_rooms: List rooms, optionally filtered by state or strategy
- get_room: Get one room with its players and contest status
- server_stats: Counters for rooms, connections and finished games
- list_configs: List the game presets rooms can be created with
- get_config: Get one preset with its grid and fleet
- protocol_reference: The WebSocket message reference, to guide a client`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rooms",
		Description: "List live rooms, newest first by default",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"state": map[string]interface{}{
					"type":        "string",
					"enum":        []string{string(room.StateWaiting), string(room.StateActive)},
					"description": "Only rooms in this state",
				},
				"strategy": map[string]interface{}{
					"type":        "string",
					"enum":        []string{string(engine.StrategyRelay), string(engine.StrategyFleet), string(engine.StrategyChoice)},
					"description": "Only rooms playing this strategy",
				},
				"sort": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"created", "active"},
					"description": "Sort by creation or last activity",
				},
				"order": map[string]interface{}{
					"type": "string",
					"enum": []string{"asc", "desc"},
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of rooms",
				},
			},
		},
	}, c.handleListRooms)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_room",
		Description: "Get details of a specific room",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "string",
					"description": "Room ID (8 characters, case-insensitive)",
				},
			},
			Required: []string{"room_id"},
		},
	}, c.handleGetRoom)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "server_stats",
		Description: "Get room, connection and game counters",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleServerStats)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_config",
		Description: "Get a game preset",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Preset ID as used in create messages",
				},
			},
			Required: []string{"config_id"},
		},
	}, c.handleGetConfig)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "protocol_reference",
		Description: "Get the WebSocket message reference for playing",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleProtocolReference)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeStdio serves MCP over stdin/stdout until the input closes
func (c *Client) ServeStdio() error {
	return server.ServeStdio(c.mcpServer)
}

// HTTPHandler serves single JSON-RPC messages posted to it
func (c *Client) HTTPHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := c.mcpServer.HandleMessage(r.Context(), body)
		if response == nil {
			// Notifications have no response
			w.WriteHeader(http.StatusAccepted)
			return
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	})
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
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

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// Tool handlers

func (c *Client) handleListRooms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	query := url.Values{}
	for _, key := range []string{"state", "strategy", "sort", "order"} {
		if v, _ := args[key].(string); v != "" {
			query.Set(key, v)
		}
	}
	if limit, ok := args["limit"].(float64); ok && limit > 0 {
		query.Set("limit", strconv.Itoa(int(limit)))
	}

	path := "/api/rooms"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var response struct {
		Count int         `json:"count"`
		Rooms []room.Info `json:"rooms"`
	}
	if err := c.apiCall(ctx, path, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if response.Count == 0 {
		return mcp.NewToolResultText("No rooms match."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Rooms (%d):\n\n", response.Count)
	for _, info := range response.Rooms {
		fmt.Fprintf(&b, "- %s  %s (%s)  %s  players=%d  created=%s\n",
			info.ID, info.Game, info.Strategy, info.State, len(info.Players), info.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	roomID, _ := arguments(request)["room_id"].(string)
	if roomID == "" {
		return mcp.NewToolResultError("room_id is required"), nil
	}

	var info room.Info
	if err := c.apiCall(ctx, "/api/rooms/"+url.PathEscape(roomID), &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRoom(&info)), nil
}

func (c *Client) handleServerStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var stats service.Stats
	if err := c.apiCall(ctx, "/api/stats", &stats); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatStats(&stats)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []config.Info
	if err := c.apiCall(ctx, "/api/configs", &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Presets:\n\n")
	for _, cfg := range configs {
		fmt.Fprintf(&b, "• %s (%s)\n", cfg.ConfigID, cfg.Strategy)
		if cfg.Description != "" {
			fmt.Fprintf(&b, "  %s\n", cfg.Description)
		}
		if cfg.Strategy.Spatial() {
			fmt.Fprintf(&b, "  Grid: %dx%d, Fleet cells: %d\n", cfg.GridSize, cfg.GridSize, cfg.FleetCells)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetConfig(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	configID, _ := arguments(request)["config_id"].(string)
	if configID == "" {
		return mcp.NewToolResultError("config_id is required"), nil
	}

	var cfg engine.GameConfig
	if err := c.apiCall(ctx, "/api/configs/"+url.PathEscape(configID), &cfg); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Preset %s: %s\n", configID, cfg.Name)
	if cfg.Description != "" {
		fmt.Fprintf(&b, "%s\n", cfg.Description)
	}
	fmt.Fprintf(&b, "Strategy: %s\n", cfg.Strategy)
	if cfg.Strategy.Spatial() {
		fmt.Fprintf(&b, "Grid: %dx%d (columns A-%c, rows 1-%d)\n",
			cfg.GridSize, cfg.GridSize, 'A'+rune(cfg.GridSize-1), cfg.GridSize)
		fmt.Fprintf(&b, "Fleet: %v (%d cells)\n", cfg.Fleet, cfg.FleetCells())
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleProtocolReference(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(protocolReference), nil
}

const protocolReference = `duelrooms WebSocket protocol

Connect to /ws. Every frame is one JSON object with a "type" field.

SEND:
• {"type":"create","game":"<preset>"}   open a room (game optional)
• {"type":"join","room":"<id>"}         take the free seat of a room
• {"type":"leave"}                      leave the current room
• {"type":"ping"}                       answered with pong

Relay games (players keep their own boards):
• {"type":"attack","coord":"B7"}        forwarded to the opponent
• {"type":"report","coord":"B7","hit":true}
                                        answer an attack relayed to you
Fleet games (the server keeps the boards):
• {"type":"place","vessels":[{"coord":"A1","orientation":"horizontal","length":4}, ...]}
• {"type":"attack","coord":"B7"}        only on your turn
Choice games (rock/paper/scissors):
• {"type":"move","choice":"rock"}       hidden until both have chosen

RECEIVE:
connected, room_created, room_joined, player_joined, game_start,
player_left, left_room, attack_relayed, attack_confirmed, attack_result,
vessels_placed, turn, move_received, round_result, round_reset, game_won,
pong, error{code, message}

RULES:
• Rooms hold two players: player1 (creator) and player2
• Coordinates are a column letter and a row number, e.g. A1 or J10
• A connection sits in at most one room; leave before creating or joining
• Errors go only to the sender and never change room state`

func formatRoom(info *room.Info) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Room %s\n", info.ID)
	fmt.Fprintf(&b, "Game: %s (%s)\n", info.Game, info.Strategy)
	if info.GridSize > 0 {
		fmt.Fprintf(&b, "Grid: %dx%d\n", info.GridSize, info.GridSize)
	}
	fmt.Fprintf(&b, "State: %s\n", info.State)

	b.WriteString("Players:")
	if len(info.Players) == 0 {
		b.WriteString(" none")
	}
	for _, p := range info.Players {
		fmt.Fprintf(&b, " %s (since %s)", p.Label, p.JoinedAt.Format("15:04:05"))
	}
	b.WriteString("\n")

	st := info.Status
	if st.Round > 0 {
		fmt.Fprintf(&b, "Round: %d\n", st.Round)
	}
	if st.Turn != "" {
		fmt.Fprintf(&b, "Turn: %s\n", st.Turn)
	}
	if len(st.Ready) > 0 {
		fmt.Fprintf(&b, "Ready: %s\n", strings.Join(st.Ready, ", "))
	}
	if len(st.Hits) > 0 {
		labels := make([]string, 0, len(st.Hits))
		for label := range st.Hits {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		b.WriteString("Hits:")
		for _, label := range labels {
			fmt.Fprintf(&b, " %s=%d", label, st.Hits[label])
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Last active: %s\n", info.LastActive.Format(time.RFC3339))
	return b.String()
}

func formatStats(stats *service.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rooms: %d (waiting %d, active %d)\n", stats.Rooms, stats.Waiting, stats.Active)

	strategies := make([]string, 0, len(stats.ByStrategy))
	for s := range stats.ByStrategy {
		strategies = append(strategies, string(s))
	}
	sort.Strings(strategies)
	for _, s := range strategies {
		fmt.Fprintf(&b, "  %s: %d\n", s, stats.ByStrategy[engine.Strategy(s)])
	}

	fmt.Fprintf(&b, "Connections: %d (seated %d)\n", stats.Connections, stats.Seated)
	fmt.Fprintf(&b, "Rooms created: %d\n", stats.RoomsCreated)
	fmt.Fprintf(&b, "Games won: %d\n", stats.GamesWon)
	if !stats.StartedAt.IsZero() {
		fmt.Fprintf(&b, "Up since: %s\n", stats.StartedAt.Format(time.RFC3339))
	}
	return b.String()
}
