package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/tablebill/internal/domain/order"
	"github.com/xenking/tablebill/internal/session"
)

type submitRequest struct {
	Name    string
	Items   map[string]int
	Choices []string
}

// selections merges explicit quantities with multi-select choices. An
// explicit quantity wins over a choice of the same item.
func (req *submitRequest) selections() map[string]int {
	sel := order.FromChoices(req.Choices)
	for item, qty := range req.Items {
		sel[item] = qty
	}
	return sel
}

func decodeSubmit(w http.ResponseWriter, r *http.Request) (*submitRequest, error) {
	req := &submitRequest{Items: make(map[string]int)}
	err := decodeBody(w, r, func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			v, err := d.Str()
			req.Name = v
			return err
		case "items":
			return d.ObjBytes(func(d *jx.Decoder, item []byte) error {
				qty, err := d.Int()
				if err != nil {
					return errors.Wrapf(err, "quantity of %s", item)
				}
				req.Items[string(item)] = qty
				return nil
			})
		case "choices":
			return d.Arr(func(d *jx.Decoder) error {
				v, err := d.Str()
				if err != nil {
					return err
				}
				req.Choices = append(req.Choices, v)
				return nil
			})
		default:
			return d.Skip()
		}
	})
	return req, err
}

// SubmitOrder builds an order from the request and appends it to the session.
//
// The body is {"name": "...", "items": {"Pizza": 2}} or, for multi-select
// forms, {"name": "...", "choices": ["Pizza", "Coke"]}.
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	req, err := decodeSubmit(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	o, snap, err := sessionFrom(r.Context()).Submit(r.Context(), req.Name, req.selections())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	zctx.From(r.Context()).Info("Order added",
		zap.String("session_id", snap.SessionID),
		zap.String("order_id", o.ID),
		zap.String("subtotal", o.Subtotal.String()),
	)

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("message", func(e *jx.Encoder) { e.Str("Added " + o.Name + "'s order!") })
			e.Field("order", func(e *jx.Encoder) { encodeOrder(e, o) })
			e.Field("session", func(e *jx.Encoder) { encodeSnapshot(e, snap) })
		})
	})
}

// RemoveOrder removes an order by id.
func (h *Handler) RemoveOrder(w http.ResponseWriter, r *http.Request) {
	removed, snap, err := sessionFrom(r.Context()).Remove(r.Context(), chi.URLParam(r, "orderID"))
	h.writeRemoval(w, r, removed, snap, err)
}

// RemoveOrderAt removes the order at a ledger position.
func (h *Handler) RemoveOrderAt(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.fail(w, r, badRequest(errors.Wrap(err, "parse index")))
		return
	}
	removed, snap, err := sessionFrom(r.Context()).RemoveAt(r.Context(), index)
	h.writeRemoval(w, r, removed, snap, err)
}

func (h *Handler) writeRemoval(w http.ResponseWriter, r *http.Request, removed order.Order, snap session.Snapshot, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("removed", func(e *jx.Encoder) { encodeOrder(e, removed) })
			e.Field("session", func(e *jx.Encoder) { encodeSnapshot(e, snap) })
		})
	})
}

// RemoveOrders removes every order listed in {"ids": [...]}.
func (h *Handler) RemoveOrders(w http.ResponseWriter, r *http.Request) {
	var ids []string
	err := decodeBody(w, r, func(d *jx.Decoder, key string) error {
		if key != "ids" {
			return d.Skip()
		}
		return d.Arr(func(d *jx.Decoder) error {
			id, err := d.Str()
			ids = append(ids, id)
			return err
		})
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	n, snap := sessionFrom(r.Context()).RemoveMany(r.Context(), ids)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("removed", func(e *jx.Encoder) { e.Int(n) })
			e.Field("session", func(e *jx.Encoder) { encodeSnapshot(e, snap) })
		})
	})
}
