package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/tablebill/internal/domain/bill"
	"github.com/xenking/tablebill/internal/domain/menu"
	"github.com/xenking/tablebill/internal/domain/order"
	"github.com/xenking/tablebill/internal/session"
)

const maxBodyBytes = 64 << 10

func writeJSON(w http.ResponseWriter, code int, fn func(e *jx.Encoder)) {
	var e jx.Encoder
	fn(&e)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(e.Bytes())
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Int(code) })
			e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
		})
	})
}

// decodeBody decodes a JSON object from the request body, calling fn for
// every key.
func decodeBody(w http.ResponseWriter, r *http.Request, fn func(d *jx.Decoder, key string) error) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		return badRequest(errors.Wrap(err, "read body"))
	}
	d := jx.DecodeBytes(data)
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		return fn(d, string(key))
	}); err != nil {
		return badRequest(errors.Wrap(err, "decode body"))
	}
	return nil
}

func encodeMoney(e *jx.Encoder, d decimal.Decimal) {
	e.Num(jx.Num(d.String()))
}

func encodeMenu(e *jx.Encoder, c *menu.Catalog) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("categories", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, cat := range menu.Categories {
					e.Obj(func(e *jx.Encoder) {
						e.Field("name", func(e *jx.Encoder) { e.Str(string(cat)) })
						e.Field("items", func(e *jx.Encoder) {
							e.Arr(func(e *jx.Encoder) {
								for _, it := range c.InCategory(cat) {
									e.Obj(func(e *jx.Encoder) {
										e.Field("name", func(e *jx.Encoder) { e.Str(it.Name) })
										e.Field("price", func(e *jx.Encoder) { encodeMoney(e, it.Price) })
									})
								}
							})
						})
					})
				}
			})
		})
	})
}

func encodeOrder(e *jx.Encoder, o order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(o.Name) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, li := range o.Items {
					e.Obj(func(e *jx.Encoder) {
						e.Field("item", func(e *jx.Encoder) { e.Str(li.Item) })
						e.Field("category", func(e *jx.Encoder) { e.Str(string(li.Category)) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(li.Quantity) })
						e.Field("unitPrice", func(e *jx.Encoder) { encodeMoney(e, li.UnitPrice) })
						e.Field("lineTotal", func(e *jx.Encoder) { encodeMoney(e, li.LineTotal) })
					})
				}
			})
		})
		e.Field("foodTotal", func(e *jx.Encoder) { encodeMoney(e, o.FoodTotal) })
		e.Field("drinkTotal", func(e *jx.Encoder) { encodeMoney(e, o.DrinkTotal) })
		e.Field("subtotal", func(e *jx.Encoder) { encodeMoney(e, o.Subtotal) })
	})
}

func encodeSummary(e *jx.Encoder, s bill.Summary) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("subtotal", func(e *jx.Encoder) { encodeMoney(e, s.Subtotal) })
		e.Field("taxAmount", func(e *jx.Encoder) { encodeMoney(e, s.TaxAmount) })
		e.Field("tipAmount", func(e *jx.Encoder) { encodeMoney(e, s.TipAmount) })
		e.Field("grandTotal", func(e *jx.Encoder) { encodeMoney(e, s.GrandTotal) })
	})
}

func encodeSettings(e *jx.Encoder, s bill.Settings) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("taxRatePercent", func(e *jx.Encoder) { e.Int(s.TaxRatePercent) })
		e.Field("tipRatePercent", func(e *jx.Encoder) { e.Int(s.TipRatePercent) })
	})
}

func encodeSnapshot(e *jx.Encoder, snap session.Snapshot) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("sessionId", func(e *jx.Encoder) { e.Str(snap.SessionID) })
		e.Field("orders", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, o := range snap.Orders {
					encodeOrder(e, o)
				}
			})
		})
		e.Field("summary", func(e *jx.Encoder) { encodeSummary(e, snap.Summary) })
		e.Field("settings", func(e *jx.Encoder) { encodeSettings(e, snap.Settings) })
		e.Field("nextDefaultName", func(e *jx.Encoder) { e.Str(snap.NextDefaultName) })
		e.Field("customerCount", func(e *jx.Encoder) { e.Int(snap.CustomerCount) })
	})
}

// SnapshotEvent encodes the message pushed to live subscribers.
func SnapshotEvent(snap session.Snapshot) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("type", func(e *jx.Encoder) { e.Str("snapshot") })
		e.Field("session", func(e *jx.Encoder) { encodeSnapshot(e, snap) })
	})
	return e.Bytes()
}
