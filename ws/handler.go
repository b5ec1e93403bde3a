package ws

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	log "github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// UserRoom is the room name notifications for a user are addressed to.
func UserRoom(userID string) string {
	return "user-" + userID
}

// NotificationSocket upgrades the connection and joins the caller's own
// room. The join itself is not authenticated at the protocol level; the
// payloads carry no secrets beyond what the REST surface already exposes
// to the same user.
func NotificationSocket(hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		userID := ps.ByName("userid")
		if userID == "" {
			http.Error(w, "missing user id", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("ws upgrade:", err)
			return
		}

		client := &Client{
			Conn:   conn,
			Send:   make(chan []byte, 256),
			Room:   UserRoom(userID),
			UserID: userID,
		}

		hub.Register(client)
		go writePump(client)
		go readPump(client, hub)
	}
}

func writePump(c *Client) {
	defer c.Conn.Close()
	for msg := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

// readPump only drains the connection; clients never send anything the
// server acts on. A read error means the client went away.
func readPump(c *Client, hub *Hub) {
	defer func() {
		hub.Unregister(c)
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			break
		}
	}
}
