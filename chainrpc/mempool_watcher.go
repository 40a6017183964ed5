package chainrpc

import (
	stdsync "sync"
	"time"

	"github.com/gorilla/websocket"
)

// MempoolWatcher holds a long-lived websocket connection to the daemon's
// mempool notification feed and signals on Notifications whenever the
// daemon reports a change, so a sync pass can rescan the mempool
// immediately instead of waiting for its next poll.
type MempoolWatcher struct {
	url     string
	notify  chan struct{}
	done    chan struct{}
	backoff Backoff

	mtx  stdsync.Mutex
	conn *websocket.Conn
}

// NewMempoolWatcher returns a watcher against wsURL (e.g.
// "ws://127.0.0.1:19091/mempool") that has not yet connected.
func NewMempoolWatcher(wsURL string) *MempoolWatcher {
	return &MempoolWatcher{
		url:     wsURL,
		notify:  make(chan struct{}, 1),
		done:    make(chan struct{}),
		backoff: DefaultBackoff(),
	}
}

// Notifications returns the channel that receives one signal per mempool
// change notification. Delivery is best-effort and coalesced: a send never
// blocks, so a burst of notifications while the reader is busy collapses to
// one pending signal.
func (w *MempoolWatcher) Notifications() <-chan struct{} {
	return w.notify
}

// Run connects and reads notification frames until Stop is called. After a
// read error it redials at once; after a failed dial it waits the backoff's
// BaseDelay before the next dial, and that delay does not grow.
func (w *MempoolWatcher) Run() {
	for {
		select {
		case <-w.done:
			return
		default:
		}

		conn, _, err := websocket.DefaultDialer.Dial(w.url, nil)
		if err != nil {
			rpcLog.Warnf("mempool watcher dial failed: %v", err)
			w.sleepBackoff()
			continue
		}

		w.mtx.Lock()
		w.conn = conn
		w.mtx.Unlock()

		w.readLoop(conn)

		conn.Close()
		select {
		case <-w.done:
			return
		default:
		}
	}
}

func (w *MempoolWatcher) readLoop(conn *websocket.Conn) {
	for {
		select {
		case <-w.done:
			return
		default:
		}

		if _, _, err := conn.ReadMessage(); err != nil {
			rpcLog.Debugf("mempool watcher read error, reconnecting: %v", err)
			return
		}

		select {
		case w.notify <- struct{}{}:
		default:
		}
	}
}

func (w *MempoolWatcher) sleepBackoff() {
	delay := w.backoff.BaseDelay
	select {
	case <-w.done:
	case <-time.After(delay):
	}
}

// Stop closes the current connection, if any, and causes Run to return.
func (w *MempoolWatcher) Stop() {
	close(w.done)
	w.mtx.Lock()
	defer w.mtx.Unlock()
	if w.conn != nil {
		w.conn.Close()
	}
}
