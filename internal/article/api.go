// Package article is the HTTP surface of the article collection: listing
// with filters and pagination, free-text search, related and trending
// picks, and the admin-gated CRUD operations.
package article

import (
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/mamadkami/weblog/internal/articlerequest"
	"github.com/mamadkami/weblog/internal/articleresponse"
	"github.com/mamadkami/weblog/internal/errresponse"
	"github.com/mamadkami/weblog/internal/model"
	"github.com/mamadkami/weblog/internal/query"
	"github.com/mamadkami/weblog/internal/store"
)

type Resource struct {
	Store *store.Store
	Log   *zap.SugaredLogger

	// Rand feeds the trending shuffle. Injected so tests can seed it;
	// guarded because rand.Rand is not safe for concurrent use.
	Rand   *rand.Rand
	randMu sync.Mutex
}

// Routes mounts the article surface. Mutating routes go through adminOnly;
// extra wraps the {articleID} subtree so sibling features (comments) can
// attach their routes under a loaded article.
func (rs *Resource) Routes(adminOnly func(http.Handler) http.Handler, extra func(r chi.Router)) chi.Router {
	r := chi.NewRouter()

	r.Get("/", rs.List)
	r.Get("/search", rs.Search)
	r.Get("/trending", rs.Trending)
	r.Get("/categories", rs.Categories)
	r.With(adminOnly).Post("/", rs.Create)

	r.Route("/{articleID}", func(r chi.Router) {
		r.Use(rs.Context)
		r.Get("/", rs.Get)
		r.Get("/related", rs.Related)
		r.With(adminOnly).Put("/", rs.Update)
		r.With(adminOnly).Delete("/", rs.Delete)
		if extra != nil {
			extra(r)
		}
	})

	return r
}

// List applies the advanced filter from the query string and returns one
// fixed-size page. All filter fields are optional and conjunctive.
func (rs *Resource) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := model.SearchFilter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Author:   q.Get("author"),
		DateFrom: q.Get("from"),
		DateTo:   q.Get("to"),
	}
	if raw := q.Get("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if t := strings.TrimSpace(tag); t != "" {
				filter.Tags = append(filter.Tags, t)
			}
		}
	}

	page := 1
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			rs.renderErr(w, r, errresponse.ErrInvalidRequest(errInvalidPage))

			return
		}
		page = n
	}

	filtered := query.Apply(rs.Store.All(), filter)
	pageItems := query.Paginate(filtered, page, query.PerPage)
	resp := articleresponse.NewPageResponse(pageItems, page, query.PerPage,
		query.TotalPages(len(filtered), query.PerPage), len(filtered))

	if err := render.Render(w, r, resp); err != nil {
		rs.renderErr(w, r, errresponse.ErrRender(err))
	}
}

// Search runs the free-text search over the cached collection. A blank
// query returns no results, matching the search page.
func (rs *Resource) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	var results []model.Article
	if q != "" {
		results = rs.Store.SearchByText(q)
	}

	if err := render.RenderList(w, r, articleresponse.NewArticleListResponse(results)); err != nil {
		rs.renderErr(w, r, errresponse.ErrRender(err))
	}
}

// Trending returns three picks from a fresh random permutation. A new
// permutation on every request is intended.
func (rs *Resource) Trending(w http.ResponseWriter, r *http.Request) {
	rs.randMu.Lock()
	picks := query.Trending(rs.Store.All(), rs.Rand, 3)
	rs.randMu.Unlock()

	if err := render.RenderList(w, r, articleresponse.NewArticleListResponse(picks)); err != nil {
		rs.renderErr(w, r, errresponse.ErrRender(err))
	}
}

// Categories lists every category present in the collection with its
// article count.
func (rs *Resource) Categories(w http.ResponseWriter, r *http.Request) {
	if err := render.RenderList(w, r, articleresponse.NewCategoryListResponse(rs.Store.Categories())); err != nil {
		rs.renderErr(w, r, errresponse.ErrRender(err))
	}
}

// Get returns the article loaded by the Context middleware.
func (rs *Resource) Get(w http.ResponseWriter, r *http.Request) {
	a := FromContext(r.Context())

	if err := render.Render(w, r, articleresponse.NewArticleResponse(a)); err != nil {
		rs.renderErr(w, r, errresponse.ErrRender(err))
	}
}

// Related ranks the rest of the collection against the loaded article by
// category and tag overlap and returns the top three.
func (rs *Resource) Related(w http.ResponseWriter, r *http.Request) {
	a := FromContext(r.Context())
	related := query.Related(rs.Store.All(), a, 3)

	if err := render.RenderList(w, r, articleresponse.NewArticleListResponse(related)); err != nil {
		rs.renderErr(w, r, errresponse.ErrRender(err))
	}
}

// Create validates the draft and round-trips it through the upstream API.
// Nothing is sent upstream when validation fails, and an upstream failure
// leaves the cache unchanged and is reported to the caller.
func (rs *Resource) Create(w http.ResponseWriter, r *http.Request) {
	data := &articlerequest.ArticleRequest{}
	if err := render.Bind(r, data); err != nil {
		rs.renderErr(w, r, errresponse.ErrInvalidRequest(err))

		return
	}
	if fields := data.Validate(); fields != nil {
		rs.renderErr(w, r, errresponse.ErrValidation(fields))

		return
	}

	draft := data.Draft
	if draft.PublishDate == "" {
		draft.PublishDate = today()
	}

	created, err := rs.Store.Create(r.Context(), draft)
	if err != nil {
		rs.Log.Errorw("creating article", "error", err)
		rs.renderErr(w, r, errresponse.ErrUpstream(err))

		return
	}

	render.Status(r, http.StatusCreated)
	if err := render.Render(w, r, articleresponse.NewArticleResponse(created)); err != nil {
		rs.renderErr(w, r, errresponse.ErrRender(err))
	}
}

// Update replaces every field of the loaded article except the id. The
// original publish date is kept when the draft leaves it empty.
func (rs *Resource) Update(w http.ResponseWriter, r *http.Request) {
	a := FromContext(r.Context())

	data := &articlerequest.ArticleRequest{}
	if err := render.Bind(r, data); err != nil {
		rs.renderErr(w, r, errresponse.ErrInvalidRequest(err))

		return
	}
	if fields := data.Validate(); fields != nil {
		rs.renderErr(w, r, errresponse.ErrValidation(fields))

		return
	}

	draft := data.Draft
	if draft.PublishDate == "" {
		draft.PublishDate = a.PublishDate
	}

	updated, err := rs.Store.Update(r.Context(), a.ID, draft)
	if err != nil {
		rs.Log.Errorw("updating article", "id", a.ID, "error", err)
		rs.renderErr(w, r, errresponse.ErrUpstream(err))

		return
	}

	if err := render.Render(w, r, articleresponse.NewArticleResponse(updated)); err != nil {
		rs.renderErr(w, r, errresponse.ErrRender(err))
	}
}

// Delete removes the loaded article remotely and from the cache, and
// returns the removed record.
func (rs *Resource) Delete(w http.ResponseWriter, r *http.Request) {
	a := FromContext(r.Context())

	removed, err := rs.Store.Delete(r.Context(), a.ID)
	if err != nil {
		rs.Log.Errorw("deleting article", "id", a.ID, "error", err)
		rs.renderErr(w, r, errresponse.ErrUpstream(err))

		return
	}

	if err := render.Render(w, r, articleresponse.NewArticleResponse(removed)); err != nil {
		rs.renderErr(w, r, errresponse.ErrRender(err))
	}
}

func (rs *Resource) renderErr(w http.ResponseWriter, r *http.Request, e render.Renderer) {
	if err := render.Render(w, r, e); err != nil {
		rs.Log.Errorw(err.Error())
	}
}

var errInvalidPage = errors.New("page must be a positive integer")

func today() string {
	return time.Now().Format("2006-01-02")
}
