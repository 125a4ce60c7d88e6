package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/xenking/tablebill/internal/session"
)

type sessionKey struct{}

func sessionFrom(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey{}).(*session.Session)
	return s
}

// requireSession resolves the session named by the request's token. The
// token comes from "Authorization: Bearer" or, for websocket clients that
// cannot set headers, the "token" query parameter.
func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "missing session token")
			return
		}
		id, err := h.tokens.Parse(raw)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		s, err := h.sessions.Get(id)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	if v := r.Header.Get("Authorization"); v != "" {
		scheme, token, ok := strings.Cut(v, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}
