package gateway

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/textmux/pkg/message"
)

// handleSocket upgrades the connection and dispatches every text frame,
// writing the outcome back as JSON. The router is picked by the
// "router" query parameter, falling back to the gateway default.
func (g *Gateway) handleSocket(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("router")
	if id == "" {
		id = g.defaultRouter
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Error("websocket upgrade error", "error", err)
		return
	}

	g.readLoop(conn, id, r)
}

// readLoop blocks until the connection is closed or a read fails.
func (g *Gateway) readLoop(conn *websocket.Conn, routerID string, r *http.Request) {
	defer conn.Close()

	for {
		kind, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				g.logger.Error("websocket read error", "error", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		result, err := g.dispatcher.InvokeContext(r.Context(), message.Text(string(frame)), routerID)
		_, resp := dispatchResult(result, err)

		if err := conn.WriteJSON(resp); err != nil {
			g.logger.Error("websocket write error", "error", err)
			return
		}
	}
}
