package auth

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	authmw "github.com/mind-engage/corector/internal/auth/middleware"
	"github.com/mind-engage/corector/internal/rbac"
)

const guestCookie = "corector_guest_id"

// GuestLoginHandler issues a guest token, reusing the browser's guest id
// from its cookie so a returning guest sees the same sessions.
func GuestLoginHandler(a *authmw.AuthService, enabled bool) http.HandlerFunc {
	type out struct {
		AccessToken string `json:"access_token"`
		Username    string `json:"username"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if !enabled {
			http.Error(w, "guest auth disabled", http.StatusForbidden)
			return
		}

		userID := ""
		if c, err := r.Cookie(guestCookie); err == nil && strings.HasPrefix(c.Value, "guest|") {
			userID = c.Value
		}
		if userID == "" {
			userID = "guest|" + strconv.FormatInt(time.Now().UnixNano(), 36)
		}
		sfx := strings.TrimPrefix(userID, "guest|")
		if len(sfx) > 6 {
			sfx = sfx[len(sfx)-6:]
		}

		tok, err := a.IssueJWT(userID, rbac.RoleGuest, true)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     guestCookie,
			Value:    userID,
			Path:     "/",
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteNoneMode,
			Expires:  time.Now().Add(30 * 24 * time.Hour),
		})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out{AccessToken: tok, Username: "guest-" + sfx})
	}
}
