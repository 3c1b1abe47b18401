package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/fogmaze/api"
	"github.com/wricardo/fogmaze/game/config"
	"github.com/wricardo/fogmaze/game/service"
	"github.com/wricardo/fogmaze/game/session"
	"github.com/wricardo/fogmaze/transport/mcp"
	"github.com/wricardo/fogmaze/transport/websocket"
)

const shutdownTimeout = 10 * time.Second

func serveCommand(settings config.Settings) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the game server with the admin API, /ws and /mcp",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: settings.Host, Usage: "listen host"},
			&cli.IntFlag{Name: "port", Value: settings.Port, Usage: "listen port (1024-65535, otherwise 4434)"},
			&cli.IntFlag{Name: "max-sessions", Value: settings.MaxSessions, Usage: "concurrent sessions (1-6)"},
			&cli.DurationFlag{Name: "poll-interval", Value: settings.PollInterval, Usage: "how often a full server checks for a free slot"},
			&cli.DurationFlag{Name: "idle-timeout", Value: settings.IdleTimeout, Usage: "disconnect sessions idle this long (0 disables)"},
			&cli.StringFlag{Name: "config-dir", Value: settings.ConfigDir, Usage: "directory of maze presets"},
			&cli.StringFlag{Name: "preset", Value: settings.Preset, Usage: "preset for new sessions"},
			&cli.BoolFlag{Name: "ngrok", Usage: "expose the server through an ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Action: runServe,
	}
}

// loadPresets opens the preset directory. A missing directory is not fatal:
// the server then runs with the built-in preset and no preset listing.
func loadPresets(dir string) *config.Manager {
	presets, err := config.NewManager(dir)
	if err != nil {
		log.WithError(err).Warn("no preset directory, using the built-in maze")
		return nil
	}
	return presets
}

func sessionFactory(presets *config.Manager, preset string) (session.EngineFactory, error) {
	if presets == nil {
		return nil, nil
	}
	if preset != "" {
		if _, err := presets.LoadConfig(preset); err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				log.WithField("preset", preset).Warn("preset not found, using the default preset")
				return presets.EngineFactory(""), nil
			}
			return nil, fmt.Errorf("preset %s: %w", preset, err)
		}
	}
	return presets.EngineFactory(preset), nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	port := config.ClampPort(cmd.Int("port"))
	addr := listenAddr(cmd.String("host"), port)

	presets := loadPresets(cmd.String("config-dir"))
	factory, err := sessionFactory(presets, cmd.String("preset"))
	if err != nil {
		return err
	}

	manager, err := session.NewManager(session.Config{
		MaxSessions:  config.ClampMaxSessions(cmd.Int("max-sessions")),
		PollInterval: cmd.Duration("poll-interval"),
		Factory:      factory,
		Logger:       log.WithField("component", "session"),
		Port:         port,
	})
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}

	var configs service.ConfigManager
	if presets != nil {
		configs = presets
	}
	listener := websocket.NewListener(addr, log.WithField("component", "websocket"))
	apiServer := api.NewServer(service.NewAdminService(manager, configs), listener)
	mcpClient := mcp.NewClient("http://"+addr, Version)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithFields(log.Fields{
			"addr":         addr,
			"max_sessions": manager.MaxSessions(),
		}).Infof("%s v%s listening", AppName, Version)
		log.Infof("WebSocket: ws://%s/ws", addr)
		log.Infof("REST API: http://%s/api", addr)
		log.Infof("MCP endpoint: http://%s/mcp", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return manager.Serve(gctx, listener)
	})

	if idle := cmd.Duration("idle-timeout"); idle > 0 {
		g.Go(func() error {
			reapIdle(gctx, manager, idle)
			return nil
		})
	}

	if cmd.Bool("ngrok") {
		g.Go(func() error {
			runNgrok(gctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), mainRouter)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		listener.Close()
		if err := manager.DisconnectAll(); err != nil {
			log.WithError(err).Warn("some sessions did not receive END")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("HTTP server shutdown error")
		}
		return nil
	})

	err = g.Wait()
	manager.Wait()
	log.Info("server stopped")
	return err
}

// reapIdle disconnects idle sessions until ctx is done.
func reapIdle(ctx context.Context, manager *session.Manager, maxIdle time.Duration) {
	interval := maxIdle / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := manager.DisconnectIdle(maxIdle); n > 0 {
				log.WithField("count", n).Info("disconnected idle sessions")
			}
		}
	}
}

// mcpHandler answers JSON-RPC messages POSTed to /mcp.
func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

func runNgrok(ctx context.Context, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		log.Warn("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.WithError(err).Error("failed to start ngrok tunnel")
		return
	}

	url := tun.URL()
	log.WithField("url", url).Info("ngrok tunnel established")
	log.Infof("  WebSocket (ngrok): %s/ws", wsURL(url))
	log.Infof("  REST API (ngrok): %s/api", url)

	srv := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	if err := srv.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Warn("ngrok server error")
	}
	log.Info("ngrok tunnel closed")
}

// wsURL turns an http(s) URL into its ws(s) form.
func wsURL(httpURL string) string {
	switch {
	case strings.HasPrefix(httpURL, "https://"):
		return "wss://" + strings.TrimPrefix(httpURL, "https://")
	case strings.HasPrefix(httpURL, "http://"):
		return "ws://" + strings.TrimPrefix(httpURL, "http://")
	}
	return httpURL
}
