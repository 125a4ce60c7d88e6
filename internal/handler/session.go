package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// GetMenu lists the catalog grouped by category.
func (h *Handler) GetMenu(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeMenu(e, h.catalog) })
}

// CreateSession starts a session and returns its id and token.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create(r.Context())
	token, err := h.tokens.Issue(s.ID())
	if err != nil {
		h.sessions.Delete(r.Context(), s.ID())
		h.fail(w, r, errors.Wrap(err, "issue token"))
		return
	}
	zctx.From(r.Context()).Info("Session created", zap.String("session_id", s.ID()))

	snap := s.Snapshot()
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("sessionId", func(e *jx.Encoder) { e.Str(s.ID()) })
			e.Field("token", func(e *jx.Encoder) { e.Str(token) })
			e.Field("session", func(e *jx.Encoder) { encodeSnapshot(e, snap) })
		})
	})
}

// GetSession returns the current snapshot.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	snap := sessionFrom(r.Context()).Snapshot()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeSnapshot(e, snap) })
}

// EndSession discards the session.
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	h.sessions.Delete(r.Context(), sessionFrom(r.Context()).ID())
	w.WriteHeader(http.StatusNoContent)
}

// ResetSession clears all orders and the customer counter.
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	snap := sessionFrom(r.Context()).Reset(r.Context())
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeSnapshot(e, snap) })
}

// UpdateSettings changes the tax and tip rates. Omitted fields keep their
// current value.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())
	settings := s.Snapshot().Settings

	err := decodeBody(w, r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "taxRatePercent":
			settings.TaxRatePercent, err = d.Int()
		case "tipRatePercent":
			settings.TipRatePercent, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	snap, err := s.UpdateSettings(r.Context(), settings)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeSnapshot(e, snap) })
}
