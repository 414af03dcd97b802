// Command duelrooms runs the two-player room server.
//
// It supports two modes:
//  1. default: runs the HTTP server exposing the WebSocket game endpoint, the
//     read-only REST API, and an /mcp HTTP endpoint
//  2. "stdio-mcp": runs an MCP stdio server and spins up an internal HTTP API
//     if none is available
//
// Flags (mirrored by environment variables) control the listen address,
// preset directory, seat policy, logging, the NATS event feed, and optional
// ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/duelrooms/api"
	"github.com/wricardo/duelrooms/game/config"
	"github.com/wricardo/duelrooms/game/service"
	"github.com/wricardo/duelrooms/transport/eventbus"
	"github.com/wricardo/duelrooms/transport/mcp"
	"github.com/wricardo/duelrooms/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "duelrooms"
)

func main() {
	// Load .env file if it exists so flag env sources can see it
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: error loading .env file: %v\n", err)
	}

	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		os.Exit(1)
	}
}

// newCommand builds the CLI with its flags and modes
func newCommand() *cli.Command {
	return &cli.Command{
		Name:    AppName,
		Usage:   "two-player room server over WebSocket",
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing game presets (.json, .yaml)",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "default-game",
				Usage:   "preset used when create names no game",
				Sources: cli.EnvVars("DEFAULT_GAME"),
			},
			&cli.BoolFlag{
				Name:    "implicit-leave",
				Usage:   "let create and join leave the current room instead of failing with already_in_room",
				Sources: cli.EnvVars("IMPLICIT_LEAVE"),
			},
			&cli.StringFlag{
				Name:    "public-url",
				Usage:   "base URL for room share links (defaults to the ngrok URL or the request host)",
				Sources: cli.EnvVars("PUBLIC_URL"),
			},
			&cli.StringFlag{
				Name:    "nats-url",
				Usage:   "NATS server for room lifecycle events (disabled when empty)",
				Sources: cli.EnvVars("NATS_URL"),
			},
			&cli.StringFlag{
				Name:    "nats-prefix",
				Value:   eventbus.DefaultPrefix,
				Usage:   "subject prefix for room lifecycle events",
				Sources: cli.EnvVars("NATS_PREFIX"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "debug, info, warn or error",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "text",
				Usage:   "text or json",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: runHTTPServer,
		Commands: []*cli.Command{
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "run an MCP stdio server backed by the HTTP API",
				Action:  runStdioMCP,
			},
		},
	}
}

// setupLogger builds the process logger. Logs go to stderr so stdout stays
// free for the MCP stdio transport.
func setupLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

// app holds the wired components of one server process
type app struct {
	logger      *slog.Logger
	configs     *config.Manager
	publisher   eventbus.Publisher
	hub         *websocket.Hub
	coordinator *service.Coordinator
	server      *api.Server
}

// initializeServices wires presets, the event feed, the hub and the
// coordinator behind the HTTP API
func initializeServices(cmd *cli.Command, logger *slog.Logger, publicURL string) (*app, error) {
	configs, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	if name := cmd.String("default-game"); name != "" {
		if err := configs.SetDefault(name); err != nil {
			return nil, fmt.Errorf("failed to set default game %q: %w", name, err)
		}
	}

	var publisher eventbus.Publisher = eventbus.Nop{}
	if natsURL := cmd.String("nats-url"); natsURL != "" {
		natsPublisher, err := eventbus.NewNATSPublisher(natsURL, cmd.String("nats-prefix"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		logger.Info("publishing room events", "nats", natsURL, "subject", natsPublisher.Subject(eventbus.KindCreated))
		publisher = natsPublisher
	}

	hub := websocket.NewHub(logger.With("component", "hub"))
	coordinator := service.NewCoordinator(hub, configs,
		service.WithLogger(logger.With("component", "coordinator")),
		service.WithPublisher(publisher),
		service.WithImplicitLeave(cmd.Bool("implicit-leave")),
	)
	hub.SetHandler(coordinator)

	server := api.NewServer(coordinator, hub,
		api.WithPublicURL(publicURL),
		api.WithLogger(logger.With("component", "api")),
	)

	return &app{
		logger:      logger,
		configs:     configs,
		publisher:   publisher,
		hub:         hub,
		coordinator: coordinator,
		server:      server,
	}, nil
}

// close stops the hub and flushes the event feed
func (a *app) close() {
	a.hub.Stop()
	if err := a.publisher.Close(); err != nil {
		a.logger.Warn("failed to close event publisher", "error", err)
	}
}

// runHTTPServer starts the HTTP server with the WebSocket hub, REST API and
// an /mcp endpoint. If ngrok is enabled it also serves through a public tunnel.
func runHTTPServer(ctx context.Context, cmd *cli.Command) error {
	logger, err := setupLogger(cmd.String("log-level"), cmd.String("log-format"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), int(cmd.Int("port")))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	tunnel, err := startTunnel(ctx, cmd, logger)
	if err != nil {
		listener.Close()
		return err
	}

	publicURL := cmd.String("public-url")
	if publicURL == "" && tunnel != nil {
		publicURL = tunnel.URL()
	}

	a, err := initializeServices(cmd, logger, publicURL)
	if err != nil {
		listener.Close()
		if tunnel != nil {
			tunnel.Close()
		}
		return err
	}
	defer a.close()

	mcpClient := mcp.NewClient("http://" + addr)
	a.server.Handle("/mcp", mcpClient.HTTPHandler())

	httpServer := &http.Server{
		Handler:     a.server,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	var wg sync.WaitGroup
	serve := func(l net.Listener, name string) {
		defer wg.Done()
		if err := httpServer.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "listener", name, "error", err)
			stop()
		}
	}

	wg.Add(1)
	go serve(listener, "local")
	logger.Info("HTTP server listening",
		"version", Version,
		"addr", addr,
		"websocket", fmt.Sprintf("ws://%s/ws", addr),
		"api", fmt.Sprintf("http://%s/api", addr),
		"mcp", fmt.Sprintf("http://%s/mcp", addr),
	)

	if tunnel != nil {
		wg.Add(1)
		go serve(tunnel, "ngrok")
		logger.Info("ngrok tunnel established",
			"url", tunnel.URL(),
			"websocket", strings.Replace(tunnel.URL(), "https://", "wss://", 1)+"/ws",
		)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	// Shutdown does not wait for hijacked WebSocket connections; the hub
	// closes those
	a.hub.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", "error", err)
	}

	wg.Wait()
	logger.Info("server stopped")
	return nil
}

// startTunnel opens an ngrok tunnel when enabled; it returns nil otherwise
func startTunnel(ctx context.Context, cmd *cli.Command, logger *slog.Logger) (ngrok.Tunnel, error) {
	if !cmd.Bool("ngrok") {
		return nil, nil
	}

	authToken := cmd.String("ngrok-auth")
	if authToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return nil, nil
	}

	var endpoint ngrokConfig.Tunnel
	if domain := cmd.String("ngrok-domain"); domain != "" {
		endpoint = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		logger.Info("using custom ngrok domain", "domain", domain)
	} else {
		endpoint = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, endpoint, ngrok.WithAuthtoken(authToken))
	if err != nil {
		return nil, fmt.Errorf("failed to start ngrok tunnel: %w", err)
	}
	return tun, nil
}

// runStdioMCP runs an MCP stdio server. It reuses an API already running on
// the configured port; otherwise it starts an internal HTTP API bound to a
// random loopback port.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	logger, err := setupLogger(cmd.String("log-level"), cmd.String("log-format"))
	if err != nil {
		return err
	}

	externalURL := fmt.Sprintf("http://localhost:%d", int(cmd.Int("port")))
	baseURL := externalURL

	if !apiAvailable(externalURL) {
		logger.Info("no external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		a, err := initializeServices(cmd, logger, cmd.String("public-url"))
		if err != nil {
			listener.Close()
			return err
		}
		defer a.close()

		httpServer := &http.Server{Handler: a.server}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("internal HTTP server error", "error", err)
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
	}

	logger.Info("MCP stdio server ready", "api", baseURL)
	if err := mcp.NewClient(baseURL).ServeStdio(); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// apiAvailable reports whether a duelrooms API answers at baseURL
func apiAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/status")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
