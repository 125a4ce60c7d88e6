package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/tablebill/internal/domain/bill"
	"github.com/xenking/tablebill/internal/domain/ledger"
	"github.com/xenking/tablebill/internal/domain/order"
	"github.com/xenking/tablebill/internal/session"
)

// emptyOrderMessage is shown when a submission selects nothing.
const emptyOrderMessage = "Please select at least one item!"

var errBadRequest = errors.New("bad request")

// badRequest marks a malformed request body.
func badRequest(err error) error {
	return errors.Wrap(errBadRequest, err.Error())
}

// mapError converts an error to an HTTP status and client-facing message.
func mapError(err error) (int, string) {
	var (
		quantityErr *order.InvalidQuantityError
		unknownErr  *order.UnknownItemError
		rangeErr    *ledger.IndexOutOfRangeError
		rateErr     *bill.RateOutOfRangeError
	)
	switch {
	case errors.Is(err, order.ErrEmptyOrder):
		return http.StatusUnprocessableEntity, emptyOrderMessage
	case errors.Is(err, order.ErrNameRequired):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.As(err, &quantityErr):
		return http.StatusUnprocessableEntity, quantityErr.Error()
	case errors.As(err, &unknownErr):
		return http.StatusUnprocessableEntity, unknownErr.Error()
	case errors.As(err, &rateErr):
		return http.StatusUnprocessableEntity, rateErr.Error()
	case errors.As(err, &rangeErr):
		return http.StatusNotFound, rangeErr.Error()
	case errors.Is(err, ledger.ErrOrderNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, session.ErrInvalidToken), errors.Is(err, session.ErrNotFound):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// fail logs err at a level matching its status and writes the error body.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := mapError(err)

	lg := zctx.From(r.Context())
	var rangeErr *ledger.IndexOutOfRangeError
	switch {
	case code >= http.StatusInternalServerError:
		lg.Error("Request failed", zap.Error(err))
	case errors.As(err, &rangeErr):
		lg.Warn("Order index out of range", zap.Int("index", rangeErr.Index), zap.Int("len", rangeErr.Len))
	}

	writeError(w, code, msg)
}
