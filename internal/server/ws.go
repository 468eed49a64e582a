package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Cross-origin policy is enforced by the CORS middleware config; the
	// upgrader accepts what the router already let through.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Dashboard upgrades to a websocket and streams staged snapshots for one
// ticker. Each message is a snapshot JSON strictly superseding the previous
// one; the final message carries state "complete" and the socket closes.
// Closing the socket cancels the in-flight orchestration.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	ticker, period, err := h.params(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.L().Warn("server: websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	log := zap.L().With(zap.String("ticker", ticker))

	// The request context does not notice a hijacked connection closing; the
	// read pump does, and cancels the orchestration.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	snapshots := h.dashboards.Start(ctx, ticker, period)

	go func() {
		for {
			if _, _, readErr := conn.NextReader(); readErr != nil {
				cancel()
				return
			}
		}
	}()

	for snap := range snapshots {
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(snap); err != nil {
			log.Debug("server: websocket write, client gone", zap.Error(err))
			return
		}
	}

	_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
