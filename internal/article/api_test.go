package article_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mamadkami/weblog/internal/account"
	"github.com/mamadkami/weblog/internal/admin"
	"github.com/mamadkami/weblog/internal/article"
	"github.com/mamadkami/weblog/internal/bookmarks"
	"github.com/mamadkami/weblog/internal/comments"
	"github.com/mamadkami/weblog/internal/kvstore"
	"github.com/mamadkami/weblog/internal/model"
	"github.com/mamadkami/weblog/internal/newsletter"
	"github.com/mamadkami/weblog/internal/session"
	"github.com/mamadkami/weblog/internal/social"
	"github.com/mamadkami/weblog/internal/store"
)

type fakeRemote struct {
	articles []model.Article
	nextID   int
	fail     bool
}

func (f *fakeRemote) FetchArticles(ctx context.Context) ([]model.Article, error) {
	if f.fail {
		return nil, errors.New("upstream down")
	}

	return f.articles, nil
}

func (f *fakeRemote) CreateArticle(ctx context.Context, draft model.Draft) (model.Article, error) {
	if f.fail {
		return model.Article{}, errors.New("upstream down")
	}
	f.nextID++

	return model.Article{
		ID:          f.nextID,
		Title:       draft.Title,
		Content:     draft.Content,
		Author:      draft.Author,
		PublishDate: draft.PublishDate,
		Category:    draft.Category,
		Tags:        draft.Tags,
		Image:       draft.Image,
	}, nil
}

func (f *fakeRemote) UpdateArticle(ctx context.Context, id int, draft model.Draft) (model.Article, error) {
	if f.fail {
		return model.Article{}, errors.New("upstream down")
	}

	return model.Article{
		ID:          id,
		Title:       draft.Title,
		Content:     draft.Content,
		Author:      draft.Author,
		PublishDate: draft.PublishDate,
		Category:    draft.Category,
		Tags:        draft.Tags,
		Image:       draft.Image,
	}, nil
}

func (f *fakeRemote) DeleteArticle(ctx context.Context, id int) error {
	if f.fail {
		return errors.New("upstream down")
	}

	return nil
}

type fakeAuth struct{}

func (fakeAuth) Login(ctx context.Context, username, password string) (model.Identity, error) {
	if username == "admin" && password == "admin123" {
		return model.Identity{Username: "admin", Name: "John Doe", Email: "john@example.com", Role: "admin"}, nil
	}

	return model.Identity{}, errors.New("Invalid username or password")
}

func collection() []model.Article {
	articles := []model.Article{
		{ID: 1, Title: "Getting Started with Go", Content: "Go makes services simple.", Author: "John Doe", PublishDate: "2024-01-15", Category: "Technology", Tags: []string{"Go", "API"}},
		{ID: 2, Title: "Building Web Servers", Content: "Routers and handlers.", Author: "Jane Smith", PublishDate: "2024-01-20", Category: "Technology", Tags: []string{"Go", "Web"}},
		{ID: 3, Title: "API Design Patterns", Content: "Designing clean endpoints.", Author: "John Doe", PublishDate: "2024-02-01", Category: "Design", Tags: []string{"API"}},
	}
	for i := 4; i <= 8; i++ {
		articles = append(articles, model.Article{
			ID:          i,
			Title:       fmt.Sprintf("Filler Post %d", i),
			Content:     "More words about software.",
			Author:      "Jane Smith",
			PublishDate: fmt.Sprintf("2024-03-%02d", i),
			Category:    "Backend",
			Tags:        []string{"Databases"},
		})
	}

	return articles
}

// newApp wires the full router the way the binary does, backed by an
// in-memory key-value store and a canned upstream.
func newApp(t *testing.T) (*httptest.Server, *fakeRemote) {
	t.Helper()

	remote := &fakeRemote{articles: collection(), nextID: 8}
	st := store.New(remote)
	require.NoError(t, st.LoadAll(context.Background()))

	kv := kvstore.NewMemStore()
	log := zap.NewNop().Sugar()
	sess := session.New(fakeAuth{}, kv)

	commentsSvc := comments.New(kv)
	bookmarksSvc := bookmarks.New(kv)
	newsSvc := newsletter.New(kv)

	articleRes := &article.Resource{Store: st, Log: log, Rand: rand.New(rand.NewSource(1))}
	accountRes := &account.Resource{Session: sess, Log: log}
	socialRes := &social.Resource{
		Comments:  commentsSvc,
		Bookmarks: bookmarksSvc,
		News:      newsSvc,
		Store:     st,
		Session:   sess,
		Log:       log,
	}
	adminRes := &admin.Resource{Store: st, Comments: commentsSvc, News: newsSvc, Log: log}

	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Mount("/articles", articleRes.Routes(accountRes.AdminOnly, socialRes.CommentRoutes))
	r.Mount("/bookmarks", socialRes.BookmarkRoutes())
	r.Post("/newsletter", socialRes.Subscribe)
	r.Post("/login", accountRes.Login)
	r.Post("/logout", accountRes.Logout)
	r.Get("/me", accountRes.Me)
	r.Mount("/admin", adminRes.Routes(accountRes.AdminOnly))

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	return ts, remote
}

func do(t *testing.T, ts *httptest.Server, method, path, body string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, raw
}

func loginAdmin(t *testing.T, ts *httptest.Server) {
	t.Helper()

	code, _ := do(t, ts, http.MethodPost, "/login", `{"username":"admin","password":"admin123"}`)
	require.Equal(t, http.StatusOK, code)
}

type page struct {
	Articles   []model.Article `json:"articles"`
	Page       int             `json:"page"`
	PerPage    int             `json:"perPage"`
	TotalPages int             `json:"totalPages"`
	TotalItems int             `json:"totalItems"`
}

func TestListPaginates(t *testing.T) {
	ts, _ := newApp(t)

	code, raw := do(t, ts, http.MethodGet, "/articles", "")
	require.Equal(t, http.StatusOK, code)

	var p page
	require.NoError(t, json.Unmarshal(raw, &p))
	assert.Len(t, p.Articles, 6)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 6, p.PerPage)
	assert.Equal(t, 2, p.TotalPages)
	assert.Equal(t, 8, p.TotalItems)
	assert.Equal(t, 1, p.Articles[0].ID, "collection order preserved")

	code, raw = do(t, ts, http.MethodGet, "/articles?page=2", "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(raw, &p))
	assert.Len(t, p.Articles, 2)

	// Past the last page: an empty page, not an error.
	code, raw = do(t, ts, http.MethodGet, "/articles?page=5", "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(raw, &p))
	assert.Empty(t, p.Articles)
	assert.Equal(t, 8, p.TotalItems)
}

func TestListRejectsBadPage(t *testing.T) {
	ts, _ := newApp(t)

	code, _ := do(t, ts, http.MethodGet, "/articles?page=abc", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, ts, http.MethodGet, "/articles?page=0", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestListFilters(t *testing.T) {
	ts, _ := newApp(t)

	code, raw := do(t, ts, http.MethodGet, "/articles?category=Technology&author=John+Doe", "")
	require.Equal(t, http.StatusOK, code)

	var p page
	require.NoError(t, json.Unmarshal(raw, &p))
	require.Len(t, p.Articles, 1)
	assert.Equal(t, 1, p.Articles[0].ID)

	code, raw = do(t, ts, http.MethodGet, "/articles?tags=Web,API", "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(raw, &p))
	assert.Equal(t, 3, p.TotalItems, "any tag overlap matches")
}

func TestSearch(t *testing.T) {
	ts, _ := newApp(t)

	code, raw := do(t, ts, http.MethodGet, "/articles/search?q=design", "")
	require.Equal(t, http.StatusOK, code)

	var results []model.Article
	require.NoError(t, json.Unmarshal(raw, &results))
	require.Len(t, results, 1)
	assert.Equal(t, 3, results[0].ID)

	// Blank query returns nothing rather than everything.
	code, raw = do(t, ts, http.MethodGet, "/articles/search?q=", "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(raw, &results))
	assert.Empty(t, results)
}

func TestGetArticle(t *testing.T) {
	ts, _ := newApp(t)

	code, raw := do(t, ts, http.MethodGet, "/articles/1", "")
	require.Equal(t, http.StatusOK, code)

	var a model.Article
	require.NoError(t, json.Unmarshal(raw, &a))
	assert.Equal(t, "Getting Started with Go", a.Title)

	code, _ = do(t, ts, http.MethodGet, "/articles/999", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, ts, http.MethodGet, "/articles/not-a-number", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRelatedRanking(t *testing.T) {
	ts, _ := newApp(t)

	code, raw := do(t, ts, http.MethodGet, "/articles/1/related", "")
	require.Equal(t, http.StatusOK, code)

	var results []model.Article
	require.NoError(t, json.Unmarshal(raw, &results))
	require.GreaterOrEqual(t, len(results), 2)
	assert.Equal(t, 2, results[0].ID, "same category plus shared tag outranks")
	assert.Equal(t, 3, results[1].ID, "shared tag only")
	assert.LessOrEqual(t, len(results), 3)
}

func TestTrending(t *testing.T) {
	ts, _ := newApp(t)

	code, raw := do(t, ts, http.MethodGet, "/articles/trending", "")
	require.Equal(t, http.StatusOK, code)

	var results []model.Article
	require.NoError(t, json.Unmarshal(raw, &results))
	assert.Len(t, results, 3)

	seen := map[int]bool{}
	for _, a := range results {
		assert.True(t, a.ID >= 1 && a.ID <= 8, "picks come from the collection")
		assert.False(t, seen[a.ID], "no duplicate picks")
		seen[a.ID] = true
	}
}

func TestCategories(t *testing.T) {
	ts, _ := newApp(t)

	code, raw := do(t, ts, http.MethodGet, "/articles/categories", "")
	require.Equal(t, http.StatusOK, code)

	var cats []struct {
		Name        string `json:"name"`
		Count       int    `json:"count"`
		Description string `json:"description"`
	}
	require.NoError(t, json.Unmarshal(raw, &cats))
	require.Len(t, cats, 3)
	assert.Equal(t, "Technology", cats[0].Name)
	assert.Equal(t, 2, cats[0].Count)
	assert.Equal(t, "Latest trends and innovations in technology", cats[0].Description)
}

const longContent = "This body has to clear the editor's minimum length check, so it keeps going on about handlers, routers, caches and the rest until it comfortably does."

func TestCreateRequiresAdmin(t *testing.T) {
	ts, _ := newApp(t)

	body := fmt.Sprintf(`{"title":"New Post","content":"%s","author":"John Doe","image":"https://example.com/new.jpg"}`, longContent)

	code, _ := do(t, ts, http.MethodPost, "/articles", body)
	assert.Equal(t, http.StatusForbidden, code)

	loginAdmin(t, ts)

	code, raw := do(t, ts, http.MethodPost, "/articles", body)
	require.Equal(t, http.StatusCreated, code)

	var created model.Article
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.Equal(t, 9, created.ID)
	assert.Equal(t, "Technology", created.Category, "category defaults")
	assert.NotEmpty(t, created.PublishDate, "publish date filled in")

	// New articles land at the front of the listing.
	code, raw = do(t, ts, http.MethodGet, "/articles", "")
	require.Equal(t, http.StatusOK, code)
	var p page
	require.NoError(t, json.Unmarshal(raw, &p))
	assert.Equal(t, 9, p.Articles[0].ID)
}

func TestCreateValidation(t *testing.T) {
	ts, _ := newApp(t)
	loginAdmin(t, ts)

	code, raw := do(t, ts, http.MethodPost, "/articles", `{"title":"","content":"too short","author":"John Doe"}`)
	require.Equal(t, http.StatusBadRequest, code)

	var errResp struct {
		Status string            `json:"status"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(raw, &errResp))
	assert.Equal(t, "Validation failed.", errResp.Status)
	assert.Equal(t, "Title is required", errResp.Fields["title"])
	assert.Equal(t, "Content must be at least 100 characters long", errResp.Fields["content"])
}

func TestCreateUpstreamFailure(t *testing.T) {
	ts, remote := newApp(t)
	loginAdmin(t, ts)
	remote.fail = true

	body := fmt.Sprintf(`{"title":"New Post","content":"%s","author":"John Doe","image":"https://example.com/new.jpg"}`, longContent)

	code, _ := do(t, ts, http.MethodPost, "/articles", body)
	assert.Equal(t, http.StatusBadGateway, code)

	remote.fail = false
	code, raw := do(t, ts, http.MethodGet, "/articles", "")
	require.Equal(t, http.StatusOK, code)
	var p page
	require.NoError(t, json.Unmarshal(raw, &p))
	assert.Equal(t, 8, p.TotalItems, "failed create leaves the cache alone")
}

func TestUpdateKeepsPublishDate(t *testing.T) {
	ts, _ := newApp(t)
	loginAdmin(t, ts)

	body := fmt.Sprintf(`{"title":"Getting Started with Go, 2nd ed.","content":"%s","author":"John Doe","image":"https://example.com/go2.jpg"}`, longContent)

	code, raw := do(t, ts, http.MethodPut, "/articles/1", body)
	require.Equal(t, http.StatusOK, code)

	var updated model.Article
	require.NoError(t, json.Unmarshal(raw, &updated))
	assert.Equal(t, 1, updated.ID)
	assert.Equal(t, "Getting Started with Go, 2nd ed.", updated.Title)
	assert.Equal(t, "2024-01-15", updated.PublishDate, "empty draft date keeps the original")
}

func TestDeleteArticle(t *testing.T) {
	ts, _ := newApp(t)
	loginAdmin(t, ts)

	code, raw := do(t, ts, http.MethodDelete, "/articles/3", "")
	require.Equal(t, http.StatusOK, code)

	var removed model.Article
	require.NoError(t, json.Unmarshal(raw, &removed))
	assert.Equal(t, "API Design Patterns", removed.Title)

	code, _ = do(t, ts, http.MethodGet, "/articles/3", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSessionLifecycle(t *testing.T) {
	ts, _ := newApp(t)

	code, _ := do(t, ts, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, raw := do(t, ts, http.MethodPost, "/login", `{"username":"admin","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, code)

	var errResp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &errResp))
	assert.Equal(t, "Invalid username or password", errResp.Error)

	loginAdmin(t, ts)

	code, raw = do(t, ts, http.MethodGet, "/me", "")
	require.Equal(t, http.StatusOK, code)

	var me struct {
		Username string `json:"username"`
		IsAdmin  bool   `json:"isAdmin"`
	}
	require.NoError(t, json.Unmarshal(raw, &me))
	assert.Equal(t, "admin", me.Username)
	assert.True(t, me.IsAdmin)

	code, _ = do(t, ts, http.MethodPost, "/logout", "")
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = do(t, ts, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestCommentFlow(t *testing.T) {
	ts, _ := newApp(t)

	code, _ := do(t, ts, http.MethodPost, "/articles/1/comments", `{"content":"Great article!"}`)
	assert.Equal(t, http.StatusUnauthorized, code, "posting needs a login")

	loginAdmin(t, ts)

	code, raw := do(t, ts, http.MethodPost, "/articles/1/comments", `{"content":"Great article!"}`)
	require.Equal(t, http.StatusCreated, code)

	var posted model.Comment
	require.NoError(t, json.Unmarshal(raw, &posted))
	assert.Equal(t, "John Doe", posted.Author, "author comes from the session")

	code, raw = do(t, ts, http.MethodPost, "/articles/1/comments/"+posted.ID+"/replies", `{"content":"Thanks!"}`)
	require.Equal(t, http.StatusCreated, code)

	code, raw = do(t, ts, http.MethodPost, "/articles/1/comments/"+posted.ID+"/like", "")
	require.Equal(t, http.StatusOK, code)

	var liked model.Comment
	require.NoError(t, json.Unmarshal(raw, &liked))
	assert.Equal(t, 1, liked.Likes)
	assert.True(t, liked.Liked)

	code, raw = do(t, ts, http.MethodGet, "/articles/1/comments", "")
	require.Equal(t, http.StatusOK, code)

	var thread []model.Comment
	require.NoError(t, json.Unmarshal(raw, &thread))
	require.Len(t, thread, 1)
	assert.Len(t, thread[0].Replies, 1)
	assert.Equal(t, 1, thread[0].Likes)

	code, _ = do(t, ts, http.MethodPost, "/articles/1/comments/nope/like", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCommentsEmptyBody(t *testing.T) {
	ts, _ := newApp(t)
	loginAdmin(t, ts)

	code, _ := do(t, ts, http.MethodPost, "/articles/1/comments", `{"content":"   "}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestBookmarks(t *testing.T) {
	ts, _ := newApp(t)

	code, _ := do(t, ts, http.MethodPost, "/bookmarks/1", "x")
	require.Equal(t, http.StatusCreated, code)

	code, _ = do(t, ts, http.MethodPost, "/bookmarks/1", "x")
	assert.Equal(t, http.StatusConflict, code)

	code, _ = do(t, ts, http.MethodPost, "/bookmarks/999", "x")
	assert.Equal(t, http.StatusNotFound, code)

	code, raw := do(t, ts, http.MethodGet, "/bookmarks", "")
	require.Equal(t, http.StatusOK, code)

	var list struct {
		ArticleIDs []int `json:"articleIds"`
	}
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Equal(t, []int{1}, list.ArticleIDs)
}

func TestNewsletterEndpoint(t *testing.T) {
	ts, _ := newApp(t)

	code, raw := do(t, ts, http.MethodPost, "/newsletter", `{"email":"reader@example.com"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.True(t, strings.Contains(string(raw), "Thank you for subscribing!"))

	code, raw = do(t, ts, http.MethodPost, "/newsletter", `{"email":"reader@example.com"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.True(t, strings.Contains(string(raw), "You are already subscribed!"))

	code, raw = do(t, ts, http.MethodPost, "/newsletter", `{"email":"nonsense"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.True(t, strings.Contains(string(raw), "Please enter a valid email address"))

	code, raw = do(t, ts, http.MethodPost, "/newsletter", `{"email":""}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.True(t, strings.Contains(string(raw), "Please enter your email address"))
}

func TestDashboard(t *testing.T) {
	ts, _ := newApp(t)

	code, _ := do(t, ts, http.MethodGet, "/admin/dashboard", "")
	assert.Equal(t, http.StatusForbidden, code)

	loginAdmin(t, ts)

	_, _ = do(t, ts, http.MethodPost, "/articles/1/comments", `{"content":"Great article!"}`)
	_, _ = do(t, ts, http.MethodPost, "/newsletter", `{"email":"reader@example.com"}`)

	code, raw := do(t, ts, http.MethodGet, "/admin/dashboard", "")
	require.Equal(t, http.StatusOK, code)

	var dash struct {
		TotalArticles    int `json:"totalArticles"`
		TotalComments    int `json:"totalComments"`
		TotalSubscribers int `json:"totalSubscribers"`
		TotalCategories  int `json:"totalCategories"`
	}
	require.NoError(t, json.Unmarshal(raw, &dash))
	assert.Equal(t, 8, dash.TotalArticles)
	assert.Equal(t, 1, dash.TotalComments)
	assert.Equal(t, 1, dash.TotalSubscribers)
	assert.Equal(t, 3, dash.TotalCategories)
}
