package hub

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/projectdesk-app/models"
)

// Event types
const (
	EventNotificationCreated = "notification_created"
	EventNotificationRead    = "notification_read"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// NotificationHub menampung semua koneksi in-app client per user dan
// channel untuk push notifikasi
type NotificationHub struct {
	clients map[*websocket.Conn]uint // conn -> user id
	mutex   sync.Mutex
}

var notificationHub = NotificationHub{
	clients: make(map[*websocket.Conn]uint),
}

// RegisterClient -> menambahkan connection ke set untuk satu user
func RegisterClient(conn *websocket.Conn, userID uint) {
	notificationHub.mutex.Lock()
	defer notificationHub.mutex.Unlock()
	notificationHub.clients[conn] = userID
}

// UnregisterClient -> melepaskan connection
func UnregisterClient(conn *websocket.Conn) {
	notificationHub.mutex.Lock()
	defer notificationHub.mutex.Unlock()
	delete(notificationHub.clients, conn)
	conn.Close()
}

// BroadcastNotificationCreated -> push notifikasi baru ke semua
// koneksi milik recipient-nya (fast path channel in-app)
func BroadcastNotificationCreated(notif models.Notification) {
	sendToUser(notif.RecipientID, Message{
		Event: EventNotificationCreated,
		Data:  notif,
	})
}

// BroadcastNotificationRead -> sinkronkan status read antar tab
func BroadcastNotificationRead(userID, notifID uint) {
	sendToUser(userID, Message{
		Event: EventNotificationRead,
		Data:  map[string]uint{"notification_id": notifID},
	})
}

func sendToUser(userID uint, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshalling hub message: %v", err)
		return
	}

	notificationHub.mutex.Lock()
	defer notificationHub.mutex.Unlock()

	for conn, id := range notificationHub.clients {
		if id != userID {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error writing to websocket client: %v", err)
			conn.Close()
			delete(notificationHub.clients, conn)
		}
	}
}
