// Package admin serves the dashboard numbers behind the AdminOnly gate.
package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/mamadkami/weblog/internal/comments"
	"github.com/mamadkami/weblog/internal/errresponse"
	"github.com/mamadkami/weblog/internal/newsletter"
	"github.com/mamadkami/weblog/internal/store"
)

type Resource struct {
	Store    *store.Store
	Comments *comments.Service
	News     *newsletter.Service
	Log      *zap.SugaredLogger
}

// Routes mounts the dashboard behind the admin gate.
func (rs *Resource) Routes(adminOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(adminOnly)
	r.Get("/dashboard", rs.Dashboard)

	return r
}

// DashboardResponse mirrors the stat cards of the admin dashboard.
type DashboardResponse struct {
	TotalArticles    int `json:"totalArticles"`
	TotalComments    int `json:"totalComments"`
	TotalSubscribers int `json:"totalSubscribers"`
	TotalCategories  int `json:"totalCategories"`
}

func (rd *DashboardResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// Dashboard sums top-level comment counts across every cached article and
// pairs them with the collection and subscriber totals.
func (rs *Resource) Dashboard(w http.ResponseWriter, r *http.Request) {
	totalComments := 0
	for _, a := range rs.Store.All() {
		n, err := rs.Comments.Count(r.Context(), a.ID)
		if err != nil {
			rs.Log.Errorw("counting comments", "article", a.ID, "error", err)
			rs.renderErr(w, r, errresponse.ErrStorage(err))

			return
		}
		totalComments += n
	}

	subscribers, err := rs.News.Count(r.Context())
	if err != nil {
		rs.Log.Errorw("counting subscribers", "error", err)
		rs.renderErr(w, r, errresponse.ErrStorage(err))

		return
	}

	resp := &DashboardResponse{
		TotalArticles:    rs.Store.Len(),
		TotalComments:    totalComments,
		TotalSubscribers: subscribers,
		TotalCategories:  len(rs.Store.Categories()),
	}

	if err := render.Render(w, r, resp); err != nil {
		rs.renderErr(w, r, errresponse.ErrRender(err))
	}
}

func (rs *Resource) renderErr(w http.ResponseWriter, r *http.Request, e render.Renderer) {
	if err := render.Render(w, r, e); err != nil {
		rs.Log.Errorw(err.Error())
	}
}
