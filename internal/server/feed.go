package server

import (
	"context"
	"net/http"
	"path"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"somadev/internal/events"
)

const feedWriteTimeout = 5 * time.Second

// registerFeed streams bus events over a websocket, one JSON message per
// event. The optional topic query parameter is a prefix filter.
func registerFeed(r chi.Router, basePath string, bus *events.Bus, allowOrigins []string, log *zap.Logger) {
	r.Get(path.Join(basePath, "events"), func(w http.ResponseWriter, req *http.Request) {
		conn, err := websocket.Accept(w, req, &websocket.AcceptOptions{
			OriginPatterns: allowOrigins,
		})
		if err != nil {
			log.Warn("feed: accept failed", zap.Error(err))
			return
		}
		defer conn.CloseNow()

		sub := bus.Subscribe(req.URL.Query().Get("topic"))
		defer bus.Unsubscribe(sub)
		log.Debug("feed: client connected", zap.String("remote", req.RemoteAddr))

		// Clients never send anything; reading only watches for the close.
		ctx := conn.CloseRead(req.Context())
		for {
			select {
			case <-ctx.Done():
				log.Debug("feed: client gone", zap.Error(ctx.Err()))
				return
			case evt, ok := <-sub.Ch():
				if !ok {
					return
				}
				if err := writeEvent(ctx, conn, evt); err != nil {
					log.Debug("feed: write failed", zap.Error(err))
					return
				}
			}
		}
	})
}

func writeEvent(ctx context.Context, conn *websocket.Conn, evt events.Event) error {
	ctx, cancel := context.WithTimeout(ctx, feedWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, evt)
}
