package httpapi

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const wsWriteTimeout = 10 * time.Second

// handleWatch streams snapshots over a websocket: one frame on connect, then
// one per state change, closing normally once the game is over. The socket is
// read-side discarded; moves still go through the JSON endpoint.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	sess, err := s.dir.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  s.opts.AllowedOrigins,
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		s.logger.Warn("ws_accept_failed", zap.String("session_id", sess.ID), zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream aborted")

	ctx := conn.CloseRead(r.Context())
	s.logger.Info("ws_watch_start", zap.String("session_id", sess.ID))

	for {
		ch := sess.Changed()
		snap := sess.Snapshot()

		if err := writeSnapshot(ctx, conn, toSnapshotDTO(snap)); err != nil {
			s.logger.Debug("ws_write_failed", zap.String("session_id", sess.ID), zap.Error(err))
			return
		}
		if snap.Over {
			conn.Close(websocket.StatusNormalClosure, "game over")
			return
		}

		select {
		case <-ch:
		case <-ctx.Done():
			return
		}
	}
}

func writeSnapshot(ctx context.Context, conn *websocket.Conn, body any) error {
	wctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(wctx, conn, body)
}
