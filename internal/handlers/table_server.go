// internal/handlers/table_server.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"sync"
	"time"

	"github.com/jason-s-yu/d20potz/internal/bot"
	"github.com/jason-s-yu/d20potz/internal/cards"
	"github.com/jason-s-yu/d20potz/internal/middleware"
	"github.com/jason-s-yu/d20potz/internal/models"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

// event is one JSON message sent to table clients.
type event struct {
	Type    string          `json:"type"`
	Text    string          `json:"text,omitempty"`
	Images  []imageEvent    `json:"images,omitempty"`
	Choices []models.Choice `json:"choices,omitempty"`
}

type imageEvent struct {
	Player string `json:"player"`
	Card   string `json:"card"`
	URL    string `json:"url"`
}

// TableServer runs the bot for browser clients sitting at a shared table.
// Each chat ID is a room; every reply is broadcast to the whole room.
type TableServer struct {
	bot     *bot.Bot
	catalog *cards.Catalog
	logger  *logrus.Logger

	// handleMu serializes command handling across all rooms.
	handleMu sync.Mutex

	roomsMu sync.Mutex
	rooms   map[int64]map[*tableConn]struct{}
}

func NewTableServer(b *bot.Bot, catalog *cards.Catalog, logger *logrus.Logger) *TableServer {
	return &TableServer{
		bot:     b,
		catalog: catalog,
		logger:  logger,
		rooms:   make(map[int64]map[*tableConn]struct{}),
	}
}

// Handler routes the table endpoints through the request logger.
func (s *TableServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /chat/ws/{chatID}", http.HandlerFunc(s.TableWSHandler))
	mux.Handle("GET /cards/{player}/{file}", http.HandlerFunc(s.CardImageHandler))
	return middleware.LogMiddleware(s.logger)(mux)
}

// Run serves on addr until ctx is cancelled. Open sockets see ctx as their
// request context, so they close on shutdown too.
func (s *TableServer) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Table server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("table server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// CardImageHandler serves one card image. Only files listed in the catalog
// are reachable.
func (s *TableServer) CardImageHandler(w http.ResponseWriter, r *http.Request) {
	path, ok := s.catalog.File(r.PathValue("player"), r.PathValue("file"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}

func (s *TableServer) join(chatID int64, conn *tableConn) {
	s.roomsMu.Lock()
	defer s.roomsMu.Unlock()
	room, ok := s.rooms[chatID]
	if !ok {
		room = make(map[*tableConn]struct{})
		s.rooms[chatID] = room
	}
	room[conn] = struct{}{}
}

func (s *TableServer) leave(chatID int64, conn *tableConn) {
	s.roomsMu.Lock()
	defer s.roomsMu.Unlock()
	room := s.rooms[chatID]
	delete(room, conn)
	if len(room) == 0 {
		delete(s.rooms, chatID)
	}
}

func (s *TableServer) roomSize(chatID int64) int {
	s.roomsMu.Lock()
	defer s.roomsMu.Unlock()
	return len(s.rooms[chatID])
}

// broadcast queues ev for every connection in the room. A client whose queue
// is full misses the event rather than stalling the table.
func (s *TableServer) broadcast(chatID int64, ev event) {
	s.roomsMu.Lock()
	defer s.roomsMu.Unlock()
	for conn := range s.rooms[chatID] {
		if !conn.send(ev) {
			s.logger.WithFields(logrus.Fields{
				"chat":   chatID,
				"remote": conn.remoteAddr,
			}).Warn("Dropping event for slow table client")
		}
	}
}

func (s *TableServer) SendText(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.broadcast(chatID, event{Type: "text", Text: text})
	return nil
}

func (s *TableServer) SendImages(ctx context.Context, chatID int64, images []models.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out := make([]imageEvent, len(images))
	for i, img := range images {
		out[i] = imageEvent{Player: img.Player, Card: img.Card, URL: imageURL(img)}
	}
	s.broadcast(chatID, event{Type: "images", Images: out})
	return nil
}

func (s *TableServer) SendChoices(ctx context.Context, chatID int64, text string, choices []models.Choice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.broadcast(chatID, event{Type: "choices", Text: text, Choices: choices})
	return nil
}

func imageURL(img models.Image) string {
	return "/cards/" + url.PathEscape(img.Player) + "/" + url.PathEscape(filepath.Base(img.Path))
}
