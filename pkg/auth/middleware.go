package auth

import (
	"net/http"
	"slices"

	"github.com/gorilla/sessions"

	"github.com/ghuser/stockledger/pkg/httpx"
	"github.com/ghuser/stockledger/pkg/logger"
)

const sessionName = "stockledger_session"
const sessionRoleKey = "role"

// RequireRole is a chi middleware that enforces authentication via session cookies.
// It reads the session cookie, extracts the role, and injects it into the request context.
// Returns 401 when the session is missing or invalid. When allowed is non-empty,
// a valid role outside allowed gets 403.
//
// After this middleware, handlers can safely call auth.RoleFromCtx(r.Context()).
func RequireRole(store sessions.Store, log logger.Logger, allowed ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := store.Get(r, sessionName)
			if err != nil {
				log.WarnContext(r.Context(), "invalid session cookie", "error", err)
				httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			raw, ok := session.Values[sessionRoleKey].(string)
			if !ok || raw == "" {
				log.DebugContext(r.Context(), "session missing role")
				httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			role := Role(raw)
			if !role.Valid() {
				log.WarnContext(r.Context(), "invalid role in session", "role", raw)
				httpx.JSONError(w, http.StatusUnauthorized, "invalid session data")
				return
			}

			if len(allowed) > 0 && !slices.Contains(allowed, role) {
				httpx.JSONError(w, http.StatusForbidden, "not authorized")
				return
			}

			logger.Annotate(r.Context(), "role", string(role))
			next.ServeHTTP(w, r.WithContext(WithRole(r.Context(), role)))
		})
	}
}

// Login stores role in the caller's session and writes the session cookie.
func Login(w http.ResponseWriter, r *http.Request, store sessions.Store, role Role) error {
	// A stale or tampered cookie still yields a usable fresh session.
	session, err := store.Get(r, sessionName)
	if session == nil {
		return err
	}
	session.Values[sessionRoleKey] = string(role)
	return session.Save(r, w)
}

// Logout expires the caller's session.
func Logout(w http.ResponseWriter, r *http.Request, store sessions.Store) error {
	session, _ := store.Get(r, sessionName)
	if session == nil || session.IsNew {
		return nil
	}
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
