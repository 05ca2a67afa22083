package server

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// AdminLoginRequest is the request body for POST /api/admin/login.
type AdminLoginRequest struct {
	Secret string `json:"secret" validate:"required"`
}

// AdminMeResponse is the response for GET /api/admin/me.
type AdminMeResponse struct {
	SessionID string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// handleAdminLogin checks the shared admin secret against its bcrypt hash.
// An empty hash disables the admin surface.
func handleAdminLogin(logger *slog.Logger, st Store, secretHash string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if secretHash == "" {
			writeError(w, http.StatusServiceUnavailable, "admin login is not configured")
			return
		}

		var req AdminLoginRequest
		if !readValid(w, r, &req) {
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(secretHash), []byte(req.Secret)); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		sess, err := st.CreateAdminSession(r.Context())
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     adminCookieName,
			Value:    sess.ID,
			Path:     "/",
			Expires:  sess.ExpiresAt,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		writeJSON(w, http.StatusOK, AdminMeResponse{SessionID: sess.ID, ExpiresAt: sess.ExpiresAt})
	}
}

func handleAdminMe(st Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := adminFromRequest(r, st)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		writeJSON(w, http.StatusOK, AdminMeResponse{SessionID: sess.ID, ExpiresAt: sess.ExpiresAt})
	}
}
