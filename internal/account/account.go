// Package account is the HTTP surface of the session: login, logout, the
// current profile, and the AdminOnly middleware that gates the article
// CRUD and the dashboard.
package account

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/mamadkami/weblog/internal/errresponse"
	"github.com/mamadkami/weblog/internal/model"
	"github.com/mamadkami/weblog/internal/session"
)

type Resource struct {
	Session *session.Manager
	Log     *zap.SugaredLogger
}

// LoginRequest binds the credential payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (l *LoginRequest) Bind(r *http.Request) error {
	if l.Username == "" || l.Password == "" {
		return errors.New("username and password are required")
	}

	return nil
}

// IdentityResponse renders the cached identity.
type IdentityResponse struct {
	model.Identity
	IsAdmin bool `json:"isAdmin"`
}

func (rd *IdentityResponse) Render(w http.ResponseWriter, r *http.Request) error {
	rd.IsAdmin = rd.Role == "admin"

	return nil
}

// Login authenticates against the remote endpoint and caches the identity.
// A rejection is surfaced with the server-provided message and leaves no
// identity cached.
func (rs *Resource) Login(w http.ResponseWriter, r *http.Request) {
	data := &LoginRequest{}
	if err := render.Bind(r, data); err != nil {
		rs.renderErr(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	identity, err := rs.Session.Login(r.Context(), data.Username, data.Password)
	if err != nil {
		rs.Log.Infow("login rejected", "username", data.Username, "error", err)
		rs.renderErr(w, r, errresponse.ErrUnauthorized(err))

		return
	}

	if err := render.Render(w, r, &IdentityResponse{Identity: identity}); err != nil {
		rs.renderErr(w, r, errresponse.ErrRender(err))
	}
}

// Logout clears the cached identity and its storage mirror.
func (rs *Resource) Logout(w http.ResponseWriter, r *http.Request) {
	if err := rs.Session.Logout(r.Context()); err != nil {
		rs.Log.Errorw("clearing session mirror", "error", err)
		rs.renderErr(w, r, errresponse.ErrStorage(err))

		return
	}

	render.Status(r, http.StatusNoContent)
	render.NoContent(w, r)
}

// Me returns the current identity, or 401 when nobody is logged in.
func (rs *Resource) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := rs.Session.Current()
	if !ok {
		rs.renderErr(w, r, errresponse.ErrUnauthorized(errNotLoggedIn))

		return
	}

	if err := render.Render(w, r, &IdentityResponse{Identity: identity}); err != nil {
		rs.renderErr(w, r, errresponse.ErrRender(err))
	}
}

// AdminOnly restricts a subtree to sessions whose identity has the admin
// role. This is presentational gating; the upstream API trusts the client.
func (rs *Resource) AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rs.Session.IsAdmin() {
			rs.renderErr(w, r, errresponse.ErrForbidden)

			return
		}
		next.ServeHTTP(w, r)
	})
}

var errNotLoggedIn = errors.New("not logged in")

func (rs *Resource) renderErr(w http.ResponseWriter, r *http.Request, e render.Renderer) {
	if err := render.Render(w, r, e); err != nil {
		rs.Log.Errorw(err.Error())
	}
}
