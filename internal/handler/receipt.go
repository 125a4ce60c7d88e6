package handler

import (
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/sdk/zctx"
	"github.com/klauspost/pgzip"
	"go.uber.org/zap"
)

// OrderReceipt downloads the receipt of one order.
func (h *Handler) OrderReceipt(w http.ResponseWriter, r *http.Request) {
	name, body, err := sessionFrom(r.Context()).OrderReceipt(r.Context(), chi.URLParam(r, "orderID"), h.formatter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeAttachment(w, r, name, body)
}

// FinalReceipt downloads the final bill.
func (h *Handler) FinalReceipt(w http.ResponseWriter, r *http.Request) {
	name, body := sessionFrom(r.Context()).FinalReceipt(r.Context(), h.formatter)
	writeAttachment(w, r, name, body)
}

// writeAttachment sends body as a text/plain download, gzip-compressed when
// the client accepts it.
func writeAttachment(w http.ResponseWriter, r *http.Request, filename, body string) {
	header := w.Header()
	header.Set("Content-Type", "text/plain; charset=utf-8")
	header.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	header.Add("Vary", "Accept-Encoding")

	if !acceptsGzip(r) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, body)
		return
	}

	header.Set("Content-Encoding", "gzip")
	w.WriteHeader(http.StatusOK)
	zw := pgzip.NewWriter(w)
	if _, err := io.WriteString(zw, body); err != nil {
		zctx.From(r.Context()).Warn("Write receipt", zap.Error(err))
	}
	if err := zw.Close(); err != nil {
		zctx.From(r.Context()).Warn("Flush receipt", zap.Error(err))
	}
}

func acceptsGzip(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		coding, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(coding), "gzip") {
			continue
		}
		return strings.ReplaceAll(strings.TrimSpace(params), " ", "") != "q=0"
	}
	return false
}
