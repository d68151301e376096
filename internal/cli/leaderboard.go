package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newLeaderboardCmd() *cobra.Command {
	var limit int
	var watch bool

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top players",
		Long: `Show the top players by score.

With --watch the command stays connected and prints a fresh leaderboard
every time a player finishes their daily chain. Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				return watchLeaderboard(cmd.Context())
			}

			path := "/api/v1/leaderboard"
			if limit > 0 {
				path = fmt.Sprintf("%s?limit=%d", path, limit)
			}

			var result Leaderboard
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Number of rows (server default when 0)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Stream live leaderboard updates")

	return cmd
}

// liveURL maps the server URL onto the websocket leaderboard stream
func liveURL(serverURL string) string {
	base := strings.TrimSuffix(serverURL, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/api/v1/leaderboard/live"
}

func watchLeaderboard(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	header := http.Header{}
	if cfg.Token != "" {
		header.Set("Authorization", "Bearer "+cfg.Token)
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, liveURL(cfg.ServerURL), header)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	// Unblock the read loop on interrupt
	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				if cfg.Output != "json" {
					out.PrintMessage("Disconnected")
				}
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}

		var board Leaderboard
		if err := json.Unmarshal(msg, &board); err != nil {
			return errors.New("malformed leaderboard message")
		}

		if cfg.Output != "json" {
			out.printf("[%s]\n", time.Now().Format("2006-01-02 15:04:05"))
		}
		out.Print(board)
	}
}
