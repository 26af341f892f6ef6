package article

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mamadkami/weblog/internal/errresponse"
	"github.com/mamadkami/weblog/internal/model"
)

type ctxKey int

const articleCtxKey ctxKey = iota

// Context middleware loads the article addressed by the articleID URL
// parameter onto the request context, or stops with a 404. Only the cache
// is consulted; a miss never triggers a remote fetch.
func (rs *Resource) Context(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "articleID"))
		if err != nil {
			if err := render.Render(w, r, errresponse.ErrNotFound); err != nil {
				rs.Log.Errorw(err.Error())
			}

			return
		}

		a, err := rs.Store.GetByID(id)
		if err != nil {
			if err := render.Render(w, r, errresponse.ErrNotFound); err != nil {
				rs.Log.Errorw(err.Error())
			}

			return
		}

		ctx := context.WithValue(r.Context(), articleCtxKey, a)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext returns the article loaded by the Context middleware.
func FromContext(ctx context.Context) model.Article {
	a, _ := ctx.Value(articleCtxKey).(model.Article)

	return a
}
