// Package feed streams playthrough snapshots to presentation layers over
// websockets. Every phase an accepted command passes through produces a
// snapshot message; a slow viewer only ever receives the latest one.
package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
	"github.com/KirkDiggler/deadgrid/internal/errors"
	"github.com/KirkDiggler/deadgrid/internal/orchestrators/playthrough"
)

// Route is the pattern the feed is mounted on
const Route = "GET /playthroughs/{id}/feed"

// MessageSnapshot is the only message type sent to viewers
const MessageSnapshot = "snapshot"

const (
	writeTimeout = 5 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 25 * time.Second
)

// Message is one frame on the wire
type Message struct {
	Type          string             `json:"type"`
	PlaythroughID string             `json:"playthrough_id"`
	Snapshot      *survival.Snapshot `json:"snapshot"`
}

// Config holds dependencies for the feed server
type Config struct {
	PlaythroughService playthrough.Service

	// AllowOrigin decides cross-origin upgrades; nil allows every origin
	AllowOrigin func(r *http.Request) bool
}

// Validate ensures all required dependencies are present
func (c *Config) Validate() error {
	if c.PlaythroughService == nil {
		return errors.InvalidArgument("playthrough service is required")
	}
	return nil
}

// Server upgrades viewers and pushes snapshots to them
type Server struct {
	playthroughService playthrough.Service
	upgrader           websocket.Upgrader
}

// NewServer creates a feed server
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	allow := cfg.AllowOrigin
	if allow == nil {
		allow = func(*http.Request) bool { return true }
	}
	return &Server{
		playthroughService: cfg.PlaythroughService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:    4 * 1024,
			WriteBufferSize:   64 * 1024,
			EnableCompression: true,
			CheckOrigin:       allow,
		},
	}, nil
}

// Mux returns a ServeMux with the feed mounted on Route
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc(Route, s.ServeFeed)
	return mux
}

// ServeFeed sends the current snapshot and then every change until the
// viewer disconnects
func (s *Server) ServeFeed(rw http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(rw, "playthrough id is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// latest holds at most one pending snapshot; newer ones replace it
	latest := make(chan *survival.Snapshot, 1)

	// Subscribe before reading the snapshot so no change falls between
	// them, and before upgrading so unknown ids get a plain HTTP error
	sub, err := s.playthroughService.Subscribe(ctx, &playthrough.SubscribeInput{
		PlaythroughID: id,
		Handler: func(_ context.Context, snap *survival.Snapshot) {
			for {
				select {
				case latest <- snap:
					return
				default:
				}
				select {
				case <-latest:
				default:
				}
			}
		},
	})
	if err != nil {
		http.Error(rw, errors.GetMessage(err), errors.GetCode(err).HTTPStatus())
		return
	}
	defer sub.Unsubscribe()

	current, err := s.playthroughService.GetSnapshot(r.Context(), &playthrough.GetSnapshotInput{PlaythroughID: id})
	if err != nil {
		http.Error(rw, errors.GetMessage(err), errors.GetCode(err).HTTPStatus())
		return
	}
	// Keep a change delivered while reading; the rest of its command follows
	select {
	case latest <- current.Snapshot:
	default:
	}

	conn, err := s.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		slog.Debug("feed upgrade failed", "playthrough_id", id, "error", err)
		return
	}
	defer conn.Close()

	slog.Info("feed viewer connected", "playthrough_id", id, "remote", r.RemoteAddr)

	writeErr := make(chan error, 1)
	go func() {
		writeErr <- s.writeLoop(ctx, conn, id, latest)
	}()

	// Reader loop only services pongs and notices the close
	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	cancel()
	select {
	case err := <-writeErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Debug("feed writer stopped", "playthrough_id", id, "error", err)
		}
	case <-time.After(500 * time.Millisecond):
	}
	slog.Info("feed viewer disconnected", "playthrough_id", id)
}

func (s *Server) writeLoop(ctx context.Context, conn *websocket.Conn, id string, latest <-chan *survival.Snapshot) error {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return err
			}
		case snap := <-latest:
			payload, err := json.Marshal(&Message{Type: MessageSnapshot, PlaythroughID: id, Snapshot: snap})
			if err != nil {
				return errors.Wrap(err, "failed to encode snapshot")
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return err
			}
		}
	}
}
