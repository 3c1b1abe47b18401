package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/fogmaze/game/client"
	"github.com/wricardo/fogmaze/game/config"
	"github.com/wricardo/fogmaze/game/maze"
	"github.com/wricardo/fogmaze/game/protocol"
	"github.com/wricardo/fogmaze/game/session"
	"github.com/wricardo/fogmaze/transport/mcp"
	"github.com/wricardo/fogmaze/transport/websocket"
)

func playCommand(settings config.Settings) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "explore a maze on a server, or on an in-process one with --local",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: fmt.Sprintf("ws://%s/ws", listenAddr(settings.Host, settings.Port)), Usage: "server websocket URL"},
			&cli.BoolFlag{Name: "local", Usage: "start a private in-process server instead of dialing --url"},
			&cli.StringFlag{Name: "name", Usage: "display name sent with START"},
			&cli.BoolFlag{Name: "auto", Usage: "let the depth-first explorer find the exit"},
			&cli.IntFlag{Name: "max-moves", Usage: "move budget for --auto (0 is unlimited)"},
			&cli.IntFlag{Name: "viewport", Value: settings.ViewportSize, Usage: "side of the visible window in cells"},
			&cli.DurationFlag{Name: "delay", Usage: "pause between --auto moves"},
			&cli.StringFlag{Name: "config-dir", Value: settings.ConfigDir, Usage: "preset directory for --local"},
			&cli.StringFlag{Name: "preset", Value: settings.Preset, Usage: "preset for --local"},
		},
		Action: runPlay,
	}
}

// openConn dials the server, or starts a one-session manager on a pipe for
// --local. The returned func releases whatever was started.
func openConn(ctx context.Context, cmd *cli.Command) (protocol.Conn, func(), error) {
	if !cmd.Bool("local") {
		conn, err := websocket.Dial(ctx, cmd.String("url"))
		if err != nil {
			return nil, nil, err
		}
		return conn, func() {}, nil
	}

	factory, err := sessionFactory(loadPresets(cmd.String("config-dir")), cmd.String("preset"))
	if err != nil {
		return nil, nil, err
	}
	manager, err := session.NewManager(session.Config{
		MaxSessions: 1,
		Factory:     factory,
		Logger:      log.WithField("component", "local-server"),
	})
	if err != nil {
		return nil, nil, err
	}

	serveCtx, cancel := context.WithCancel(ctx)
	pipe := session.NewPipeListener()
	go manager.Serve(serveCtx, pipe)

	cleanup := func() {
		cancel()
		pipe.Close()
		manager.DisconnectAll()
		manager.Wait()
	}
	conn, err := pipe.Dial(ctx)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return conn, cleanup, nil
}

func runPlay(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, cleanup, err := openConn(ctx, cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	out := os.Stdout
	c := client.New(conn,
		client.WithLogger(log.WithField("component", "client")),
		client.WithViewportSize(cmd.Int("viewport")),
		client.WithInformHandler(func(text string) { fmt.Fprintf(out, "server: %s\n", text) }),
	)
	if err := c.Connect(ctx, cmd.String("name")); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer c.Close()

	renderer := client.NewTextRenderer(out)
	renderer.Render(c.Model().Snapshot())

	if cmd.Bool("auto") {
		return autoPlay(ctx, c, renderer, cmd.Int("max-moves"), cmd.Duration("delay"))
	}
	return interactivePlay(ctx, c, renderer, os.Stdin, out)
}

func autoPlay(ctx context.Context, c *client.Client, r client.Renderer, maxMoves int, delay time.Duration) error {
	explorer := client.NewExplorer(c,
		client.WithMaxMoves(maxMoves),
		client.WithStepHandler(func(client.Event) {
			r.Render(c.Model().Snapshot())
			if delay > 0 {
				time.Sleep(delay)
			}
		}),
	)
	moves, err := explorer.Run(ctx)
	if err != nil {
		return fmt.Errorf("explorer stopped after %d moves: %w", moves, err)
	}
	log.WithField("moves", moves).Info("exit found")
	return nil
}

// interactivePlay reads one direction per line until the exit is found, the
// input ends or the player types q.
func interactivePlay(ctx context.Context, c *client.Client, r client.Renderer, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	fmt.Fprintln(out, "move with up/down/left/right (or u/d/l/r), q quits")
	for {
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(l)
		}

		switch line {
		case "":
			continue
		case "q", "quit", "exit":
			return nil
		}

		d, err := maze.ParseDirection(line)
		if err != nil {
			fmt.Fprintf(out, "unknown direction %q\n", line)
			continue
		}
		ev, err := c.Move(ctx, d)
		if err != nil {
			if errors.Is(err, client.ErrServerClosed) {
				fmt.Fprintln(out, "the server ended the session")
				return nil
			}
			return err
		}
		r.Render(c.Model().Snapshot())
		if ev.Code == protocol.CodeNo {
			fmt.Fprintf(out, "wall %s\n", d)
		}
		if ev.Code == protocol.CodeExit {
			fmt.Fprintf(out, "you got out in %d moves\n", c.Model().Moves())
			return nil
		}
	}
}

func mazeCommand() *cli.Command {
	return &cli.Command{
		Name:  "maze",
		Usage: "print a generated maze",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "rows", Value: 10, Usage: "rows (3-100)"},
			&cli.IntFlag{Name: "cols", Value: 10, Usage: "cols (3-100)"},
			&cli.Int64Flag{Name: "seed", Usage: "seed for a reproducible maze"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var opts []maze.Option
			if cmd.IsSet("seed") {
				opts = append(opts, maze.WithSeed(cmd.Int64("seed")))
			}
			m, err := maze.New(cmd.Int("rows"), cmd.Int("cols"), opts...)
			if err != nil {
				return err
			}
			return printMaze(os.Stdout, m)
		},
	}
}

func printMaze(w io.Writer, m *maze.Maze) error {
	exit := m.Exit()
	_, err := fmt.Fprintf(w, "%s\nsize %dx%d  start %s  exit %s side of %s (segment %d)\nopen boundaries %d  removed interior walls %d\n",
		m, m.Rows(), m.Cols(), m.Start(), exit.Side, exit.Cell, exit.Index,
		m.OpenBoundaries(), m.RemovedInteriorWalls())
	return err
}

func mcpCommand(settings config.Settings) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "serve the admin tools over MCP stdio",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "api-url",
				Value: "http://" + listenAddr(settings.Host, settings.Port),
				Usage: "base URL of a running fogmaze server",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			baseURL := cmd.String("api-url")
			probe := &http.Client{Timeout: 2 * time.Second}
			if resp, err := probe.Get(baseURL + "/api/health"); err != nil {
				log.WithError(err).Warnf("no fogmaze server at %s yet; tools will fail until it is up", baseURL)
			} else {
				resp.Body.Close()
			}

			log.WithField("api", baseURL).Info("MCP stdio server ready")
			return server.ServeStdio(mcp.NewClient(baseURL, Version).GetMCPServer())
		},
	}
}
