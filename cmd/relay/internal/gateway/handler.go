package gateway

import (
	"net/http"

	"github.com/gobwas/ws"
	"go.uber.org/zap"

	"github.com/shubham-shewale/options-relay/cmd/relay/internal/hub"
)

// Handler upgrades each request to a websocket and opens one session for it.
func Handler(h *hub.Hub, logger *zap.Logger, sendBuffer int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			logger.Debug("Websocket upgrade failed", zap.Error(err))
			return
		}

		client := NewClient(conn, h, logger, sendBuffer)
		client.Start()
	})
}
