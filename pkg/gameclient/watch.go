package gameclient

import (
	"context"
	"strings"
	"sync"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/ojpark/agentchess/pkg/gamedto"
)

// SnapshotCallback receives each game snapshot pushed by the server.
type SnapshotCallback func(*gamedto.Snapshot)

// Watcher follows one game over the snapshot websocket, reconnecting with
// backoff on transport failures. A normal close means the game is over and
// the watcher stops for good.
type Watcher struct {
	wsURL string
	cb    SnapshotCallback

	maxReconnectAttempts int

	conn  *websocket.Conn
	connM sync.Mutex

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewWatcher builds a watcher for the given game. baseURL is the same HTTP
// base the Client uses; the scheme is rewritten for the websocket dial.
func NewWatcher(baseURL, gameID string, cb SnapshotCallback) *Watcher {
	wsURL := strings.TrimRight(baseURL, "/") + "/api/games/" + gameID + "/ws"
	wsURL = strings.Replace(wsURL, "http://", "ws://", 1)
	wsURL = strings.Replace(wsURL, "https://", "wss://", 1)
	return &Watcher{
		wsURL:                wsURL,
		cb:                   cb,
		maxReconnectAttempts: 5,
		stopCh:               make(chan struct{}),
	}
}

// Start dials the stream and begins delivering snapshots. The callback runs
// on the watcher's goroutine; keep it quick.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.dial(ctx); err != nil {
		return err
	}
	w.wg.Add(1)
	go w.listen()
	return nil
}

// Close stops the watcher and waits for the listen goroutine to exit.
func (w *Watcher) Close() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.connM.Lock()
	if w.conn != nil {
		_ = w.conn.Close(websocket.StatusNormalClosure, "watcher closed")
	}
	w.connM.Unlock()
	w.wg.Wait()
}

func (w *Watcher) dial(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, w.wsURL, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		return err
	}
	w.connM.Lock()
	w.conn = conn
	w.connM.Unlock()
	return nil
}

func (w *Watcher) listen() {
	defer w.wg.Done()
	for {
		select {
		case <-w.stopCh:
			return
		default:
		}

		w.connM.Lock()
		conn := w.conn
		w.connM.Unlock()
		if conn == nil {
			return
		}

		var snap gamedto.Snapshot
		if err := wsjson.Read(context.Background(), conn, &snap); err != nil {
			if w.isStopping() {
				return
			}
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				// Game over; the server ended the stream.
				return
			}
			if !w.reconnect() {
				return
			}
			continue
		}

		if w.cb != nil {
			w.cb(&snap)
		}
	}
}

func (w *Watcher) reconnect() bool {
	for attempt := 1; attempt <= w.maxReconnectAttempts; attempt++ {
		select {
		case <-w.stopCh:
			return false
		case <-time.After(backoffDuration(attempt)):
		}
		if err := w.dial(context.Background()); err == nil {
			return true
		}
	}
	return false
}

func (w *Watcher) isStopping() bool {
	select {
	case <-w.stopCh:
		return true
	default:
		return false
	}
}
