package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

// VisitorFunc reports which visitor a request belongs to.
type VisitorFunc func(r *http.Request) (string, bool)

// Handle upgrades the request and keeps the connection registered under the
// caller's visitor until it closes. Only same-origin pages may connect.
func Handle(hub *Hub, visitorOf VisitorFunc, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visitorID, ok := visitorOf(r)
		if !ok {
			http.Error(w, "no visitor", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, nil)
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn, visitorID)
		client.Run(r.Context())
	}
}
