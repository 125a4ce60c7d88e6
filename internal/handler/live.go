package handler

import (
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/tablebill/internal/session"
)

// Broadcaster delivers payloads to the subscribers of a session.
// Satisfied by *live.Hub.
type Broadcaster interface {
	Broadcast(room string, payload []byte) bool
}

// LiveNotifier forwards session snapshots to live subscribers.
func LiveNotifier(b Broadcaster) session.Notifier {
	return session.NotifierFunc(func(snap session.Snapshot) {
		b.Broadcast(snap.SessionID, SnapshotEvent(snap))
	})
}

// Live upgrades to a websocket that receives a snapshot event after every
// change to the session, starting with the current state.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())
	if err := h.live.Serve(w, r, s.ID(), SnapshotEvent(s.Snapshot())); err != nil {
		// The upgrader has already replied to the client.
		zctx.From(r.Context()).Warn("Live subscription failed", zap.Error(err))
	}
}
