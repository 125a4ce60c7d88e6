// Package handler exposes sessions over a JSON HTTP API.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/tablebill/internal/domain/menu"
	"github.com/xenking/tablebill/internal/receipt"
	"github.com/xenking/tablebill/internal/session"
)

// SessionStore creates and resolves sessions. Satisfied by *session.Store.
type SessionStore interface {
	Create(ctx context.Context) *session.Session
	Get(id string) (*session.Session, error)
	Delete(ctx context.Context, id string)
}

// TokenCodec issues and verifies session tokens. Satisfied by *session.Tokens.
type TokenCodec interface {
	Issue(sessionID string) (string, error)
	Parse(raw string) (string, error)
}

// Subscriber upgrades a request into a live feed for a session.
// Satisfied by *live.Hub.
type Subscriber interface {
	Serve(w http.ResponseWriter, r *http.Request, room string, initial []byte) error
}

var (
	_ SessionStore = (*session.Store)(nil)
	_ TokenCodec   = (*session.Tokens)(nil)
)

// Handler serves the bill API.
type Handler struct {
	catalog   *menu.Catalog
	sessions  SessionStore
	tokens    TokenCodec
	formatter *receipt.Formatter
	live      Subscriber
}

// NewHandler constructs a Handler. live may be nil, which disables the
// websocket endpoint.
func NewHandler(
	catalog *menu.Catalog,
	sessions SessionStore,
	tokens TokenCodec,
	formatter *receipt.Formatter,
	live Subscriber,
) *Handler {
	return &Handler{
		catalog:   catalog,
		sessions:  sessions,
		tokens:    tokens,
		formatter: formatter,
		live:      live,
	}
}

// RegisterRoutes mounts the API on r. Expected to be mounted at /api.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.GetMenu)
	r.Post("/sessions", h.CreateSession)

	r.Route("/session", func(r chi.Router) {
		r.Use(h.requireSession)

		r.Get("/", h.GetSession)
		r.Delete("/", h.EndSession)
		r.Post("/reset", h.ResetSession)
		r.Put("/settings", h.UpdateSettings)

		r.Post("/orders", h.SubmitOrder)
		r.Post("/orders/remove", h.RemoveOrders)
		r.Delete("/orders/{orderID}", h.RemoveOrder)
		r.Delete("/orders/at/{index}", h.RemoveOrderAt)
		r.Get("/orders/{orderID}/receipt", h.OrderReceipt)

		r.Get("/receipt", h.FinalReceipt)
		if h.live != nil {
			r.Get("/live", h.Live)
		}
	})
}
