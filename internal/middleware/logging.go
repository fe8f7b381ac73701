// internal/middleware/logging.go

package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/d20potz/internal/models"
	"github.com/sirupsen/logrus"
)

// LogCommands wraps a command handler so every command is logged with its
// chat, arguments, duration and a request id.
func LogCommands(logger *logrus.Logger) func(next models.CommandHandler) models.CommandHandler {
	return func(next models.CommandHandler) models.CommandHandler {
		return func(ctx context.Context, cmd models.Command, r models.Responder) error {
			start := time.Now()
			err := next(ctx, cmd, r)

			fields := logrus.Fields{
				"request_id": uuid.NewString(),
				"chat":       cmd.ChatID,
				"user":       cmd.User,
				"command":    cmd.Name,
				"args":       strings.Join(cmd.Args, " "),
				"duration":   time.Since(start),
			}
			if err != nil {
				fields["error"] = err
				logger.WithFields(fields).Error("Command failed")
				return err
			}
			logger.WithFields(fields).Info("Command")
			return nil
		}
	}
}

// LogMiddleware is an HTTP middleware that logs incoming requests using Logrus.
// Logs the method, path, and duration of each request.
func LogMiddleware(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := r.URL.Path
			method := r.Method

			next.ServeHTTP(w, r)

			duration := time.Since(start)
			logger.WithFields(logrus.Fields{
				"method":   method,
				"path":     path,
				"duration": duration,
				"remote":   r.RemoteAddr,
			}).Info("HTTP Request")
		})
	}
}

// LogWebSocketConnect logs a message when a WebSocket client joins a chat room.
func LogWebSocketConnect(logger *logrus.Logger, remoteAddr string, chatID int64) {
	logger.WithFields(logrus.Fields{
		"remote": remoteAddr,
		"chat":   chatID,
	}).Info("WebSocket connected")
}

// LogWebSocketDisconnect logs a message when a WebSocket client disconnects.
func LogWebSocketDisconnect(logger *logrus.Logger, remoteAddr string, chatID int64, err error) {
	fields := logrus.Fields{
		"remote": remoteAddr,
		"chat":   chatID,
	}
	if err != nil {
		fields["error"] = err
	}
	logger.WithFields(fields).Info("WebSocket disconnected")
}
