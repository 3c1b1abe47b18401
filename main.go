// Command fogmaze runs the maze exploration server and its clients.
//
// Commands:
//  1. "serve" (default) – websocket game server with the admin REST API and an /mcp endpoint
//  2. "play" – connect to a server (or an in-process one) and explore by hand or automatically
//  3. "maze" – print a generated maze
//  4. "mcp" – serve the admin tools over MCP stdio against a running server
//  5. "presets" – list maze presets or validate them
//
// Flags default to FOGMAZE_* environment variables, which may come from a .env
// file in the working directory.
package main

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/fogmaze/game/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "fogmaze"
)

func main() {
	config.LoadDotEnv()

	if err := newApp(config.FromEnv()).Run(context.Background(), os.Args); err != nil {
		log.WithError(err).Fatal("fogmaze failed")
	}
}

// newApp builds the command tree with defaults taken from settings.
func newApp(settings config.Settings) *cli.Command {
	serve := serveCommand(settings)
	return &cli.Command{
		Name:    AppName,
		Usage:   "explore hidden mazes one step at a time",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("FOGMAZE_DEBUG"),
			},
			&cli.BoolFlag{
				Name:    "log-json",
				Usage:   "log as JSON",
				Sources: cli.EnvVars("FOGMAZE_LOG_JSON"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			setupLogging(cmd.Bool("debug"), cmd.Bool("log-json"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			serve,
			playCommand(settings),
			mazeCommand(),
			mcpCommand(settings),
			presetsCommand(settings),
		},
		DefaultCommand: serve.Name,
	}
}

func setupLogging(debug, json bool) {
	log.SetOutput(os.Stderr)
	if debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
	if json {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func listenAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
