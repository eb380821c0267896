package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"eventgate/internal/apperr"
	"eventgate/internal/model"
)

type contextKey string

const actorKey contextKey = "actor"

// actorFrom extracts the authenticated user from the request context; nil
// for anonymous requests.
func actorFrom(r *http.Request) *model.User {
	actor, _ := r.Context().Value(actorKey).(*model.User)
	return actor
}

// Authenticate resolves a Bearer token into a user and stores it in the
// request context. Requests without a token pass through anonymously; the
// services decide per-operation whether an actor is required.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeError(w, apperr.Unauthenticated("malformed authorization header"))
			return
		}

		claims, err := h.sessions.Verify(raw)
		if err != nil {
			writeError(w, err)
			return
		}

		user, err := h.users.GetByID(r.Context(), claims.Subject)
		if err != nil || !user.IsActive {
			writeError(w, apperr.Unauthenticated("user not valid or inactive"))
			return
		}

		ctx := context.WithValue(r.Context(), actorKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects anonymous requests before they reach the handler.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actorFrom(r) == nil {
			writeError(w, apperr.Unauthenticated("authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Logger is a minimal structured access log.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// CORS is a permissive CORS policy for browser clients.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
