package auth

import (
	"net/http"
	"strings"

	authmw "github.com/mind-engage/corector/internal/auth/middleware"
	"github.com/mind-engage/corector/internal/rbac"
)

// GoogleTokenHeader carries the teacher's Google OAuth access token, used
// only for Drive uploads.
const GoogleTokenHeader = "X-Google-Access-Token"

// Context is who a correction runs for. It is captured once when a workflow
// starts and handed to it explicitly.
type Context struct {
	TeacherID         string `json:"teacher_id"`
	Role              string `json:"role"`
	Guest             bool   `json:"guest"`
	GoogleAccessToken string `json:"-"`
}

// OwnerID is the key sessions and rubrics are stored under.
func (c Context) OwnerID() string { return c.TeacherID }

// GuestContext is used when no one is signed in.
func GuestContext(id string) Context {
	if id == "" {
		id = "guest"
	}
	return Context{TeacherID: id, Role: rbac.RoleGuest, Guest: true}
}

// FromRequest builds the context from what JWTMiddleware stored.
func FromRequest(r *http.Request) Context {
	ctx := r.Context()
	return Context{
		TeacherID:         authmw.SubjectFromContext(ctx),
		Role:              rbac.RoleFromContext(ctx),
		Guest:             authmw.GuestFromContext(ctx),
		GoogleAccessToken: strings.TrimSpace(r.Header.Get(GoogleTokenHeader)),
	}
}
