// Command multigamews-client is a terminal client for the multigamews
// server: one WebSocket connection carrying lobby control, per-room game
// snapshots, and chat.
//
// It supports three modes:
//  1. "play" (default): interactive terminal client
//  2. "mcp": MCP stdio server driving the session as agent tools
//  3. "api": local HTTP debug API over the session state
//
// Flags control the server endpoint, debug logging, the debug API address,
// and optional ngrok tunneling of the debug API for easy external access
// during development.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/AlexGrek/multigamews-client/api"
	"github.com/AlexGrek/multigamews-client/game"
	"github.com/AlexGrek/multigamews-client/game/dixit"
	"github.com/AlexGrek/multigamews-client/game/poker"
	"github.com/AlexGrek/multigamews-client/protocol"
	"github.com/AlexGrek/multigamews-client/session"
	"github.com/AlexGrek/multigamews-client/transport/mcp"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Multigame WS Client"
)

const dialAttempts = 10

// deriveEndpoint resolves the WebSocket endpoint: an explicit --server URL
// wins, otherwise it is derived from host and port the way the web client
// derives it from the page host.
func deriveEndpoint(server, host string, port int) string {
	if server != "" {
		return server
	}
	return fmt.Sprintf("ws://%s:%d", host, port)
}

// newSession builds a session with all known game modules registered.
func newSession(endpoint string) *session.Session {
	s := session.New(endpoint)
	s.RegisterGame(protocol.GameChat, func() game.Module { return game.NewChatModule() })
	s.RegisterGame(protocol.GamePoker, func() game.Module { return poker.New() })
	s.RegisterGame(protocol.GameDixit, func() game.Module { return dixit.New() })
	return s
}

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	cmd := &cli.Command{
		Name:    "multigamews-client",
		Usage:   "terminal client for the multigamews server",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Usage:   "full ws:// endpoint (overrides host/port)",
				Sources: cli.EnvVars("MULTIGAMEWS_SERVER"),
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "server host",
				Sources: cli.EnvVars("MULTIGAMEWS_HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8765,
				Usage:   "server port",
				Sources: cli.EnvVars("MULTIGAMEWS_PORT"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetFlags(log.LstdFlags)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:   "play",
				Usage:  "interactive terminal client (default)",
				Action: runPlay,
			},
			{
				Name:   "mcp",
				Usage:  "MCP stdio server exposing the session as agent tools",
				Action: runMCP,
			},
			{
				Name:  "api",
				Usage: "local HTTP debug API over the session state",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Value: "localhost:8080",
						Usage: "debug API listen address",
					},
					&cli.BoolFlag{
						Name:  "ngrok",
						Usage: "tunnel the debug API through ngrok",
					},
					&cli.StringFlag{
						Name:    "ngrok-auth",
						Usage:   "ngrok auth token",
						Sources: cli.EnvVars("NGROK_AUTHTOKEN"),
					},
					&cli.StringFlag{
						Name:    "ngrok-domain",
						Usage:   "custom ngrok domain (optional)",
						Sources: cli.EnvVars("NGROK_DOMAIN"),
					},
				},
				Action: runAPI,
			},
		},
		Action: runPlay,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func dialSession(ctx context.Context, cmd *cli.Command) (*session.Session, error) {
	endpoint := deriveEndpoint(cmd.String("server"), cmd.String("host"), int(cmd.Int("port")))
	log.Printf("Starting %s v%s, server %s", AppName, Version, endpoint)

	s := newSession(endpoint)
	if err := s.DialWithRetry(ctx, dialAttempts); err != nil {
		return nil, err
	}
	return s, nil
}

// runPlay drives the interactive terminal client: lines starting with "/"
// are commands, everything else is chat for the current room.
func runPlay(ctx context.Context, cmd *cli.Command) error {
	s, err := dialSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Println("Connected. /help lists commands; anything else is chat.")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" {
			break
		}
		if err := runPlayCommand(s, line); err != nil {
			fmt.Printf("! %v\n", err)
		}
	}
	return scanner.Err()
}

func runPlayCommand(s *session.Session, line string) error {
	if !strings.HasPrefix(line, "/") {
		return s.SendChat(line)
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/help":
		fmt.Println(`/status          show connection, profile, and room
/rooms           list open rooms
/create <n> <g>  create room <n> of game kind <g> (chat, poker, dixit)
/join <n>        enter room <n>
/leave           leave the current room
/seat <i>        take seat <i>
/start           start the game
/name <n>        rename yourself
/avatars         request the avatar list
/chatlog         print the room chat log
/game            print the current game snapshot
/quit            exit`)
		return nil
	case "/status":
		printStatus(s)
		return nil
	case "/rooms":
		for _, room := range s.Rooms() {
			fmt.Printf("  %s [%d:%s]\n", room.Name, room.UserCount, room.Game)
		}
		return s.RefreshRooms()
	case "/create":
		if len(fields) != 3 {
			return fmt.Errorf("usage: /create <name> <game>")
		}
		return s.CreateRoom(fields[1], fields[2])
	case "/join":
		if len(fields) != 2 {
			return fmt.Errorf("usage: /join <name>")
		}
		return s.EnterRoom(fields[1])
	case "/leave":
		return s.LeaveRoom()
	case "/seat":
		if len(fields) != 2 {
			return fmt.Errorf("usage: /seat <index>")
		}
		seat, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("bad seat index %q", fields[1])
		}
		return s.TakeSeat(seat)
	case "/start":
		return s.StartGame()
	case "/name":
		if len(fields) < 2 {
			return fmt.Errorf("usage: /name <new name>")
		}
		profile := s.Profile()
		profile.Name = strings.Join(fields[1:], " ")
		return s.ChangeProfile(profile)
	case "/avatars":
		return s.RequestResource("avatar_list", func(data json.RawMessage) {
			var avatars []string
			if err := json.Unmarshal(data, &avatars); err != nil {
				fmt.Printf("! bad avatar list: %v\n", err)
				return
			}
			fmt.Printf("Avatars: %s\n", strings.Join(avatars, ", "))
		})
	case "/chatlog":
		module := s.Module()
		if module == nil {
			return fmt.Errorf("not in a room")
		}
		for _, entry := range module.Chat().Entries() {
			name := "?"
			if entry.Sender != nil {
				name = entry.Sender.Name
			}
			fmt.Printf("  [%s] %s: %s\n", entry.At.Format("15:04:05"), name, entry.Text)
		}
		return nil
	case "/game":
		module := s.Module()
		if module == nil {
			return fmt.Errorf("not in a room")
		}
		snapshot, ok := module.RawSnapshot()
		if !ok {
			return fmt.Errorf("no snapshot received yet")
		}
		fmt.Println(string(snapshot))
		return nil
	default:
		return fmt.Errorf("unknown command %s (try /help)", fields[0])
	}
}

func printStatus(s *session.Session) {
	profile := s.Profile()
	fmt.Printf("  connection: %s\n  profile: %s\n", s.Status(), profile.Name)
	if room := s.Room(); room != nil {
		fmt.Printf("  room: %s (%s)\n", *room, s.RoomGame())
		for _, user := range s.RoomUsers() {
			fmt.Printf("    • %s\n", user.Name)
		}
	} else {
		fmt.Println("  room: none (lobby)")
	}
}

// runMCP serves the session over MCP stdio (blocking).
func runMCP(ctx context.Context, cmd *cli.Command) error {
	s, err := dialSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	bridge := mcp.NewBridge(s)
	log.Println("MCP stdio server ready")
	return mcpserver.ServeStdio(bridge.GetMCPServer())
}

// runAPI serves the local debug API, optionally tunneled through ngrok,
// until interrupted.
func runAPI(ctx context.Context, cmd *cli.Command) error {
	s, err := dialSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	addr := cmd.String("addr")
	apiServer := api.NewServer(s)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      apiServer,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		log.Printf("Debug API listening on http://%s/api", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Debug API server failed: %v", err)
		}
	}()

	if cmd.Bool("ngrok") {
		authToken := cmd.String("ngrok-auth")
		if authToken == "" {
			log.Println("WARNING: ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		} else {
			go func() {
				tunnel := ngrokConfig.HTTPEndpoint()
				if domain := cmd.String("ngrok-domain"); domain != "" {
					tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
					log.Printf("Using custom ngrok domain: %s", domain)
				}

				tun, err := ngrok.Listen(serveCtx, tunnel, ngrok.WithAuthtoken(authToken))
				if err != nil {
					log.Printf("Failed to start ngrok tunnel: %v", err)
					return
				}
				defer tun.Close()

				log.Printf("Ngrok tunnel established: %s/api", tun.URL())
				if err := http.Serve(tun, apiServer); err != nil && err != http.ErrServerClosed {
					log.Printf("Ngrok server error: %v", err)
				}
			}()
		}
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}
