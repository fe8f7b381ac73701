// internal/handlers/table_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/d20potz/internal/middleware"
	"github.com/jason-s-yu/d20potz/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	chatSubprotocol = "chat"
	outQueueSize    = 16
	pingInterval    = 30 * time.Second
	writeTimeout    = 5 * time.Second
)

// clientMessage is one JSON message from a table client.
type clientMessage struct {
	Type string `json:"type"` // command, text or callback
	Text string `json:"text"`
	User string `json:"user"`
	Data string `json:"data"`
}

type tableConn struct {
	remoteAddr string
	out        chan event
}

func (c *tableConn) send(ev event) bool {
	select {
	case c.out <- ev:
		return true
	default:
		return false
	}
}

// TableWSHandler upgrades GET /chat/ws/{chatID} and joins the connection to
// the chat's room.
func (s *TableServer) TableWSHandler(w http.ResponseWriter, r *http.Request) {
	remoteAddr := r.RemoteAddr

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{chatSubprotocol},
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.logger.Warnf("websocket accept error: %v", err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler finished")

	if c.Subprotocol() != chatSubprotocol {
		c.Close(BadSubprotocolError, "client must speak the chat subprotocol")
		return
	}

	chatID, err := strconv.ParseInt(r.PathValue("chatID"), 10, 64)
	if err != nil {
		c.Close(InvalidChatIDError, "chat id must be an integer")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn := &tableConn{remoteAddr: remoteAddr, out: make(chan event, outQueueSize)}
	s.join(chatID, conn)
	middleware.LogWebSocketConnect(s.logger, remoteAddr, chatID)

	go s.writePump(ctx, c, conn, chatID)
	readErr := s.readPump(ctx, c, conn, chatID)

	s.leave(chatID, conn)
	middleware.LogWebSocketDisconnect(s.logger, remoteAddr, chatID, readErr)
	c.Close(websocket.StatusNormalClosure, "")
}

// readPump handles client messages until the socket closes. It returns nil
// on a clean close.
func (s *TableServer) readPump(ctx context.Context, c *websocket.Conn, conn *tableConn, chatID int64) error {
	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			s.logger.Warnf("Chat %d: ignoring non-text message type %d from %s", chatID, typ, conn.remoteAddr)
			continue
		}

		var packet clientMessage
		if err := json.Unmarshal(msg, &packet); err != nil {
			s.logger.Warnf("Chat %d: invalid json from %s: %v", chatID, conn.remoteAddr, err)
			conn.send(event{Type: "error", Text: "Invalid JSON format"})
			continue
		}
		s.handleMessage(ctx, chatID, conn, packet)
	}
}

func (s *TableServer) handleMessage(ctx context.Context, chatID int64, conn *tableConn, packet clientMessage) {
	s.handleMu.Lock()
	defer s.handleMu.Unlock()

	logger := s.logger.WithFields(logrus.Fields{"chat": chatID, "remote": conn.remoteAddr})
	switch packet.Type {
	case "command":
		cmd, ok := models.ParseCommand(chatID, packet.User, packet.Text)
		if !ok {
			conn.send(event{Type: "error", Text: "Commands start with /"})
			return
		}
		// failures are logged by the command middleware
		_ = s.bot.Handle(ctx, cmd, s)
	case "text":
		if err := s.bot.HandleText(ctx, chatID, s); err != nil {
			logger.WithError(err).Error("Failed to answer text")
		}
	case "callback":
		text, err := s.bot.HandleCallback(ctx, chatID, packet.Data)
		if err != nil {
			logger.WithError(err).Error("Failed to handle callback")
			return
		}
		s.broadcast(chatID, event{Type: "text", Text: text})
	default:
		conn.send(event{Type: "error", Text: "Unknown message type: " + packet.Type})
	}
}

// writePump drains the connection's queue to the socket and keeps it alive
// with pings.
func (s *TableServer) writePump(ctx context.Context, c *websocket.Conn, conn *tableConn, chatID int64) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-conn.out:
			data, err := json.Marshal(ev)
			if err != nil {
				s.logger.Warnf("Chat %d: failed to marshal event: %v", chatID, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				s.logger.Warnf("Chat %d: failed to write to %s: %v", chatID, conn.remoteAddr, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
