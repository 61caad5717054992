package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/projectdesk-app/hub"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NotificationStreamHandler -> endpoint WebSocket untuk push
// notifikasi in-app ke user yang sedang login
func NotificationStreamHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	hub.RegisterClient(ws, userID)

	for {
		_, _, err := ws.ReadMessage()
		if err != nil {
			break
		}
	}

	hub.UnregisterClient(ws)
}
