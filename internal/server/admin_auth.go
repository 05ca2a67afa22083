package server

import (
	"net/http"

	"github.com/playperu/eventmap/internal/store"
)

const adminCookieName = "admin_session"

// adminFromRequest reads the admin_session cookie and looks up the session.
func adminFromRequest(r *http.Request, st Store) (store.AdminSession, error) {
	cookie, err := r.Cookie(adminCookieName)
	if err != nil || cookie.Value == "" {
		return store.AdminSession{}, store.ErrNoAdminSession
	}
	return st.AdminSession(r.Context(), cookie.Value)
}
