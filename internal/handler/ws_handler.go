/*
Package handler provides the HTTP handlers and routing setup for the chat
coordinator.

This file contains the HandleWebSocket function, responsible for rate
limiting, upgrading the HTTP connection to WebSocket, and starting the
client lifecycle.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"hubble/internal/app/chat"
	"hubble/internal/pkg/errs"
	"hubble/internal/pkg/limiter"
	"hubble/internal/pkg/logx"
	"hubble/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket
// connection requests. A fresh connection attaches anonymously; the client
// identifies over the socket afterwards.
func HandleWebSocket(deps *AppDeps, upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.Allow(ip) {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.New(errs.ErrRateLimited))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error response.
			logx.Error(err, "WebSocket upgrade failed")
			return
		}

		client := chat.NewClient(deps.Hub, conn)

		go client.WritePump()
		go client.ReadPump()
	}
}
