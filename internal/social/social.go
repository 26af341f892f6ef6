// Package social is the HTTP surface of the locally persisted reader
// features: comment threads, bookmarks and the newsletter list. Each
// feature owns its own storage key and none of them feeds back into the
// article collection.
package social

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/mamadkami/weblog/internal/article"
	"github.com/mamadkami/weblog/internal/bookmarks"
	"github.com/mamadkami/weblog/internal/comments"
	"github.com/mamadkami/weblog/internal/errresponse"
	"github.com/mamadkami/weblog/internal/model"
	"github.com/mamadkami/weblog/internal/newsletter"
	"github.com/mamadkami/weblog/internal/session"
	"github.com/mamadkami/weblog/internal/store"
)

type Resource struct {
	Comments  *comments.Service
	Bookmarks *bookmarks.Service
	News      *newsletter.Service
	Store     *store.Store
	Session   *session.Manager
	Log       *zap.SugaredLogger
}

// CommentRoutes attaches the comment thread under a loaded article route.
func (rs *Resource) CommentRoutes(r chi.Router) {
	r.Route("/comments", func(r chi.Router) {
		r.Get("/", rs.ListComments)
		r.Post("/", rs.PostComment)
		r.Post("/{commentID}/replies", rs.PostReply)
		r.Post("/{commentID}/like", rs.LikeComment)
	})
}

// BookmarkRoutes serves the global bookmark set.
func (rs *Resource) BookmarkRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", rs.ListBookmarks)
	r.Post("/{articleID}", rs.AddBookmark)

	return r
}

// CommentRequest binds a comment or reply body. The author comes from the
// session, never from the payload.
type CommentRequest struct {
	Content string `json:"content"`
}

func (c *CommentRequest) Bind(r *http.Request) error {
	c.Content = strings.TrimSpace(c.Content)
	if c.Content == "" {
		return errors.New("content is required")
	}

	return nil
}

type CommentResponse struct {
	model.Comment
}

func (rd *CommentResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func newCommentListResponse(thread []model.Comment) []render.Renderer {
	list := []render.Renderer{}
	for _, c := range thread {
		list = append(list, &CommentResponse{Comment: c})
	}

	return list
}

func (rs *Resource) ListComments(w http.ResponseWriter, r *http.Request) {
	a := article.FromContext(r.Context())

	thread, err := rs.Comments.List(r.Context(), a.ID)
	if err != nil {
		rs.Log.Errorw("loading comments", "article", a.ID, "error", err)
		rs.renderErr(w, r, errresponse.ErrStorage(err))

		return
	}

	if err := render.RenderList(w, r, newCommentListResponse(thread)); err != nil {
		rs.renderErr(w, r, errresponse.ErrRender(err))
	}
}

// PostComment prepends a top-level comment authored by the current
// session identity. Posting requires a login.
func (rs *Resource) PostComment(w http.ResponseWriter, r *http.Request) {
	identity, ok := rs.Session.Current()
	if !ok {
		rs.renderErr(w, r, errresponse.ErrUnauthorized(errLoginToComment))

		return
	}

	a := article.FromContext(r.Context())

	data := &CommentRequest{}
	if err := render.Bind(r, data); err != nil {
		rs.renderErr(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	comment, err := rs.Comments.Post(r.Context(), a.ID, identity.DisplayName(), data.Content)
	if err != nil {
		rs.Log.Errorw("posting comment", "article", a.ID, "error", err)
		rs.renderErr(w, r, errresponse.ErrStorage(err))

		return
	}

	render.Status(r, http.StatusCreated)
	if err := render.Render(w, r, &CommentResponse{Comment: comment}); err != nil {
		rs.renderErr(w, r, errresponse.ErrRender(err))
	}
}

// PostReply appends a reply to a top-level comment. Replies never nest
// further.
func (rs *Resource) PostReply(w http.ResponseWriter, r *http.Request) {
	identity, ok := rs.Session.Current()
	if !ok {
		rs.renderErr(w, r, errresponse.ErrUnauthorized(errLoginToComment))

		return
	}

	a := article.FromContext(r.Context())
	parentID := chi.URLParam(r, "commentID")

	data := &CommentRequest{}
	if err := render.Bind(r, data); err != nil {
		rs.renderErr(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	reply, err := rs.Comments.Reply(r.Context(), a.ID, parentID, identity.DisplayName(), data.Content)
	if errors.Is(err, comments.ErrNotFound) {
		rs.renderErr(w, r, errresponse.ErrNotFound)

		return
	}
	if err != nil {
		rs.Log.Errorw("posting reply", "article", a.ID, "parent", parentID, "error", err)
		rs.renderErr(w, r, errresponse.ErrStorage(err))

		return
	}

	render.Status(r, http.StatusCreated)
	if err := render.Render(w, r, &CommentResponse{Comment: reply}); err != nil {
		rs.renderErr(w, r, errresponse.ErrRender(err))
	}
}

// LikeComment bumps the like counter of a comment or reply. Likes are not
// deduplicated per viewer.
func (rs *Resource) LikeComment(w http.ResponseWriter, r *http.Request) {
	a := article.FromContext(r.Context())
	commentID := chi.URLParam(r, "commentID")

	liked, err := rs.Comments.Like(r.Context(), a.ID, commentID)
	if errors.Is(err, comments.ErrNotFound) {
		rs.renderErr(w, r, errresponse.ErrNotFound)

		return
	}
	if err != nil {
		rs.Log.Errorw("liking comment", "article", a.ID, "comment", commentID, "error", err)
		rs.renderErr(w, r, errresponse.ErrStorage(err))

		return
	}

	if err := render.Render(w, r, &CommentResponse{Comment: liked}); err != nil {
		rs.renderErr(w, r, errresponse.ErrRender(err))
	}
}

// BookmarkListResponse is the stored id set.
type BookmarkListResponse struct {
	ArticleIDs []int `json:"articleIds"`
}

func (rd *BookmarkListResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (rs *Resource) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	ids, err := rs.Bookmarks.List(r.Context())
	if err != nil {
		rs.Log.Errorw("loading bookmarks", "error", err)
		rs.renderErr(w, r, errresponse.ErrStorage(err))

		return
	}

	if ids == nil {
		ids = []int{}
	}
	if err := render.Render(w, r, &BookmarkListResponse{ArticleIDs: ids}); err != nil {
		rs.renderErr(w, r, errresponse.ErrRender(err))
	}
}

// AddBookmark records an article id. Bookmarking an unknown article is a
// 404; bookmarking twice is a conflict.
func (rs *Resource) AddBookmark(w http.ResponseWriter, r *http.Request) {
	id, err := articleID(r)
	if err != nil {
		rs.renderErr(w, r, errresponse.ErrNotFound)

		return
	}
	if _, err := rs.Store.GetByID(id); err != nil {
		rs.renderErr(w, r, errresponse.ErrNotFound)

		return
	}

	err = rs.Bookmarks.Add(r.Context(), id)
	if errors.Is(err, bookmarks.ErrBookmarked) {
		rs.renderErr(w, r, errresponse.ErrConflict(err))

		return
	}
	if err != nil {
		rs.Log.Errorw("adding bookmark", "article", id, "error", err)
		rs.renderErr(w, r, errresponse.ErrStorage(err))

		return
	}

	render.Status(r, http.StatusCreated)
	if err := render.Render(w, r, &MessageResponse{Status: "ok", Message: "Article bookmarked!"}); err != nil {
		rs.renderErr(w, r, errresponse.ErrRender(err))
	}
}

// SubscribeRequest binds a newsletter signup.
type SubscribeRequest struct {
	Email string `json:"email"`
}

func (s *SubscribeRequest) Bind(r *http.Request) error {
	return nil
}

// MessageResponse is a small status payload for the social endpoints.
type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (rd *MessageResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// Subscribe validates the address and appends it to the subscriber list.
// Duplicates are reported without changing the stored list.
func (rs *Resource) Subscribe(w http.ResponseWriter, r *http.Request) {
	data := &SubscribeRequest{}
	if err := render.Bind(r, data); err != nil {
		rs.renderErr(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	err := rs.News.Subscribe(r.Context(), data.Email)
	switch {
	case errors.Is(err, newsletter.ErrEmptyEmail):
		rs.renderErr(w, r, errresponse.ErrInvalidRequest(errors.New("Please enter your email address")))
	case errors.Is(err, newsletter.ErrInvalidEmail):
		rs.renderErr(w, r, errresponse.ErrInvalidRequest(errors.New("Please enter a valid email address")))
	case errors.Is(err, newsletter.ErrSubscribed):
		rs.renderErr(w, r, errresponse.ErrConflict(errors.New("You are already subscribed!")))
	case err != nil:
		rs.Log.Errorw("subscribing", "error", err)
		rs.renderErr(w, r, errresponse.ErrStorage(err))
	default:
		render.Status(r, http.StatusCreated)
		if err := render.Render(w, r, &MessageResponse{Status: "ok", Message: "Thank you for subscribing!"}); err != nil {
			rs.renderErr(w, r, errresponse.ErrRender(err))
		}
	}
}

var errLoginToComment = errors.New("login to comment")

func articleID(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "articleID"))
}

func (rs *Resource) renderErr(w http.ResponseWriter, r *http.Request, e render.Renderer) {
	if err := render.Render(w, r, e); err != nil {
		rs.Log.Errorw(err.Error())
	}
}
