package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/wricardo/duelrooms/game/config"
	"github.com/wricardo/duelrooms/game/engine"
	"github.com/wricardo/duelrooms/game/protocol"
	"github.com/wricardo/duelrooms/game/room"
	"github.com/wricardo/duelrooms/game/service"
)

// MockRoomService implements service.RoomService for testing
type MockRoomService struct {
	ListRoomsFunc   func(ctx context.Context, filter service.RoomFilter) ([]room.Info, error)
	GetRoomFunc     func(ctx context.Context, roomID string) (*room.Info, error)
	StatsFunc       func(ctx context.Context) (*service.Stats, error)
	ListConfigsFunc func(ctx context.Context) ([]*config.Info, error)
	LoadConfigFunc  func(ctx context.Context, configName string) (*engine.GameConfig, error)
}

func (m *MockRoomService) ListRooms(ctx context.Context, filter service.RoomFilter) ([]room.Info, error) {
	if m.ListRoomsFunc != nil {
		return m.ListRoomsFunc(ctx, filter)
	}
	return []room.Info{}, nil
}

func (m *MockRoomService) GetRoom(ctx context.Context, roomID string) (*room.Info, error) {
	if m.GetRoomFunc != nil {
		return m.GetRoomFunc(ctx, roomID)
	}
	return &room.Info{
		ID:        roomID,
		Game:      "classic",
		Strategy:  engine.StrategyRelay,
		State:     room.StateWaiting,
		CreatedAt: time.Now(),
	}, nil
}

func (m *MockRoomService) Stats(ctx context.Context) (*service.Stats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return &service.Stats{ByStrategy: map[engine.Strategy]int{}}, nil
}

func (m *MockRoomService) ListConfigs(ctx context.Context) ([]*config.Info, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*config.Info{}, nil
}

func (m *MockRoomService) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	return &engine.GameConfig{
		ID:          configName,
		Name:        configName,
		Description: "Test config",
		Strategy:    engine.StrategyRelay,
		GridSize:    10,
		Fleet:       engine.DefaultFleet,
	}, nil
}

// Test helpers
func setupTestServer(mockService *MockRoomService, opts ...Option) *Server {
	return NewServer(mockService, nil, opts...)
}

func doRequest(server *Server, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func notFound(ctx context.Context, roomID string) (*room.Info, error) {
	return nil, fmt.Errorf("room %s: %w", roomID, room.ErrRoomNotFound)
}

func TestStatus(t *testing.T) {
	server := setupTestServer(&MockRoomService{})
	w := doRequest(server, "GET", "/status")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp map[string]string
	parseResponse(t, w, &resp)
	if resp["status"] != "ok" {
		t.Errorf("Expected status ok, got %s", resp["status"])
	}
}

func TestListRooms(t *testing.T) {
	now := time.Now()
	rooms := []room.Info{
		{ID: "aaaa1111", Strategy: engine.StrategyRelay, State: room.StateWaiting, CreatedAt: now},
		{ID: "bbbb2222", Strategy: engine.StrategyChoice, State: room.StateActive, CreatedAt: now.Add(-time.Minute),
			Players: []room.Slot{{Label: protocol.PlayerOne, Conn: "secret-conn-id"}}},
	}

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedFilter service.RoomFilter
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:           "Default listing",
			path:           "/api/rooms",
			expectedStatus: http.StatusOK,
			expectedFilter: service.RoomFilter{SortBy: "created", Order: "desc"},
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp struct {
					Count int         `json:"count"`
					Rooms []room.Info `json:"rooms"`
					Sort  string      `json:"sort"`
					Order string      `json:"order"`
				}
				parseResponse(t, w, &resp)
				if resp.Count != 2 || len(resp.Rooms) != 2 {
					t.Errorf("Expected 2 rooms, got count=%d len=%d", resp.Count, len(resp.Rooms))
				}
				if resp.Sort != "created" || resp.Order != "desc" {
					t.Errorf("Expected created/desc, got %s/%s", resp.Sort, resp.Order)
				}
				if bytes.Contains(w.Body.Bytes(), []byte("secret-conn-id")) {
					t.Error("Connection ids must not be exposed")
				}
			},
		},
		{
			name:           "Filters and ordering",
			path:           "/api/rooms?state=active&strategy=choice&sort=active&order=asc&limit=5",
			expectedStatus: http.StatusOK,
			expectedFilter: service.RoomFilter{
				State:    room.StateActive,
				Strategy: engine.StrategyChoice,
				SortBy:   "active",
				Order:    "asc",
				Limit:    5,
			},
		},
		{
			name:           "Unknown sort and bad limit fall back to defaults",
			path:           "/api/rooms?sort=name&order=sideways&limit=-3",
			expectedStatus: http.StatusOK,
			expectedFilter: service.RoomFilter{SortBy: "created", Order: "desc"},
		},
		{
			name:           "Invalid state",
			path:           "/api/rooms?state=closed",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid strategy",
			path:           "/api/rooms?strategy=chess",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got service.RoomFilter
			mockService := &MockRoomService{
				ListRoomsFunc: func(ctx context.Context, filter service.RoomFilter) ([]room.Info, error) {
					got = filter
					return rooms, nil
				},
			}

			w := doRequest(setupTestServer(mockService), "GET", tt.path)

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedStatus == http.StatusOK && got != tt.expectedFilter {
				t.Errorf("Expected filter %+v, got %+v", tt.expectedFilter, got)
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListRoomsServiceError(t *testing.T) {
	mockService := &MockRoomService{
		ListRoomsFunc: func(ctx context.Context, filter service.RoomFilter) ([]room.Info, error) {
			return nil, fmt.Errorf("service error")
		},
	}

	w := doRequest(setupTestServer(mockService), "GET", "/api/rooms")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}
	var resp map[string]string
	parseResponse(t, w, &resp)
	if resp["error"] != "service error" {
		t.Errorf("Expected error message 'service error', got %s", resp["error"])
	}
}

func TestGetRoom(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		setupMock      func(*MockRoomService)
		expectedStatus int
	}{
		{
			name:           "Existing room",
			path:           "/api/rooms/abcd1234",
			expectedStatus: http.StatusOK,
		},
		{
			name: "Missing room",
			path: "/api/rooms/nothere0",
			setupMock: func(m *MockRoomService) {
				m.GetRoomFunc = notFound
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "Service failure",
			path: "/api/rooms/abcd1234",
			setupMock: func(m *MockRoomService) {
				m.GetRoomFunc = func(ctx context.Context, roomID string) (*room.Info, error) {
					return nil, fmt.Errorf("boom")
				}
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockRoomService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			w := doRequest(setupTestServer(mockService), "GET", tt.path)

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedStatus == http.StatusOK {
				var info room.Info
				parseResponse(t, w, &info)
				if info.ID != "abcd1234" {
					t.Errorf("Expected room abcd1234, got %s", info.ID)
				}
			}
		})
	}
}

func TestRoomQR(t *testing.T) {
	t.Run("Encodes the share link as PNG", func(t *testing.T) {
		server := setupTestServer(&MockRoomService{}, WithPublicURL("https://duel.example.com/"))
		w := doRequest(server, "GET", "/api/rooms/abcd1234/qr?size=128")

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		if ct := w.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("Expected image/png, got %s", ct)
		}
		if link := w.Header().Get("X-Share-URL"); link != "https://duel.example.com/room/abcd1234" {
			t.Errorf("Unexpected share URL %s", link)
		}

		img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
		if err != nil {
			t.Fatalf("Body is not a PNG: %v", err)
		}
		if img.Bounds().Dx() != 128 {
			t.Errorf("Expected a 128px image, got %d", img.Bounds().Dx())
		}
	})

	t.Run("Falls back to the request host", func(t *testing.T) {
		server := setupTestServer(&MockRoomService{})
		req := httptest.NewRequest("GET", "/api/rooms/abcd1234/qr", nil)
		req.Host = "localhost:8080"
		w := httptest.NewRecorder()
		server.ServeHTTP(w, req)

		if link := w.Header().Get("X-Share-URL"); link != "http://localhost:8080/room/abcd1234" {
			t.Errorf("Unexpected share URL %s", link)
		}
	})

	t.Run("Rejects bad sizes", func(t *testing.T) {
		for _, size := range []string{"abc", "10", "5000"} {
			w := doRequest(setupTestServer(&MockRoomService{}), "GET", "/api/rooms/abcd1234/qr?size="+size)
			if w.Code != http.StatusBadRequest {
				t.Errorf("size=%s: expected status 400, got %d", size, w.Code)
			}
		}
	})

	t.Run("Missing room", func(t *testing.T) {
		w := doRequest(setupTestServer(&MockRoomService{GetRoomFunc: notFound}), "GET", "/api/rooms/nothere0/qr")
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}

func TestShareLink(t *testing.T) {
	server := setupTestServer(&MockRoomService{}, WithPublicURL("https://duel.example.com"))
	w := doRequest(server, "GET", "/room/abcd1234")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp struct {
		Room  string            `json:"room"`
		WSURL string            `json:"ws_url"`
		Join  protocol.Envelope `json:"join"`
	}
	parseResponse(t, w, &resp)
	if resp.WSURL != "wss://duel.example.com/ws" {
		t.Errorf("Unexpected ws_url %s", resp.WSURL)
	}
	if resp.Join.Type != protocol.TypeJoin || resp.Join.Room != "abcd1234" {
		t.Errorf("Unexpected join hint %+v", resp.Join)
	}
}

func TestStats(t *testing.T) {
	mockService := &MockRoomService{
		StatsFunc: func(ctx context.Context) (*service.Stats, error) {
			return &service.Stats{
				Rooms:      3,
				Waiting:    1,
				Active:     2,
				ByStrategy: map[engine.Strategy]int{engine.StrategyRelay: 3},
				GamesWon:   7,
			}, nil
		},
	}

	w := doRequest(setupTestServer(mockService), "GET", "/api/stats")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var stats service.Stats
	parseResponse(t, w, &stats)
	if stats.Rooms != 3 || stats.GamesWon != 7 || stats.ByStrategy[engine.StrategyRelay] != 3 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestListConfigs(t *testing.T) {
	mockService := &MockRoomService{
		ListConfigsFunc: func(ctx context.Context) ([]*config.Info, error) {
			return []*config.Info{
				{ConfigID: "classic", Name: "Classic", Strategy: engine.StrategyRelay, GridSize: 10, FleetCells: 20},
				{ConfigID: "rps", Name: "Rock Paper Scissors", Strategy: engine.StrategyChoice},
			}, nil
		},
	}

	w := doRequest(setupTestServer(mockService), "GET", "/api/configs")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var configs []config.Info
	parseResponse(t, w, &configs)
	if len(configs) != 2 || configs[1].ConfigID != "rps" {
		t.Errorf("Unexpected configs %+v", configs)
	}
}

func TestGetConfig(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		loadErr        error
		expectedName   string
		expectedStatus int
	}{
		{
			name:           "By id",
			path:           "/api/configs/classic",
			expectedName:   "classic",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Extension is stripped",
			path:           "/api/configs/fleet.yaml",
			expectedName:   "fleet",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Missing preset",
			path:           "/api/configs/nothere",
			loadErr:        config.ErrConfigNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Broken preset",
			path:           "/api/configs/broken",
			loadErr:        fmt.Errorf("%w: grid size 3", config.ErrInvalidConfig),
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "Unreadable preset",
			path:           "/api/configs/locked",
			loadErr:        fmt.Errorf("failed to read config file: %w", os.ErrPermission),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requested string
			mockService := &MockRoomService{
				LoadConfigFunc: func(ctx context.Context, configName string) (*engine.GameConfig, error) {
					requested = configName
					if tt.loadErr != nil {
						return nil, tt.loadErr
					}
					return &engine.GameConfig{ID: configName, Name: configName, Strategy: engine.StrategyRelay}, nil
				},
			}

			w := doRequest(setupTestServer(mockService), "GET", tt.path)

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedName != "" && requested != tt.expectedName {
				t.Errorf("Expected lookup of %s, got %s", tt.expectedName, requested)
			}
		})
	}
}

func TestWebSocketWithoutHub(t *testing.T) {
	w := doRequest(setupTestServer(&MockRoomService{}), "GET", "/ws")

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
}

func TestHandleMountsExtraRoutes(t *testing.T) {
	server := setupTestServer(&MockRoomService{})
	server.Handle("/mcp", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := doRequest(server, "POST", "/mcp")
	if w.Code != http.StatusTeapot {
		t.Errorf("Expected mounted handler to answer, got %d", w.Code)
	}
}
