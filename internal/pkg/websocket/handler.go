package websocket

import (
	"encoding/json"
	"net/http"
)

// Serve upgrades the request and subscribes the connection to the seat feed
// of sectionID. initial, when set, is sent before any broadcast.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, sectionID, userID int64, initial any) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		userID:    userID,
		sectionID: sectionID,
	}
	if initial != nil {
		if data, err := json.Marshal(initial); err == nil {
			client.send <- data
		}
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return ErrHubStopped
	}

	go client.writePump()
	go client.readPump()
	return nil
}
