// Package articleresponse holds the response payloads for the article
// surface.
package articleresponse

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/mamadkami/weblog/internal/model"
	"github.com/mamadkami/weblog/internal/store"
)

type ArticleResponse struct {
	model.Article
}

func NewArticleResponse(article model.Article) *ArticleResponse {
	return &ArticleResponse{Article: article}
}

func (rd *ArticleResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func NewArticleListResponse(articles []model.Article) []render.Renderer {
	list := []render.Renderer{}
	for _, article := range articles {
		list = append(list, NewArticleResponse(article))
	}

	return list
}

// PageResponse is one fixed-size page of a filtered listing.
type PageResponse struct {
	Articles   []model.Article `json:"articles"`
	Page       int             `json:"page"`
	PerPage    int             `json:"perPage"`
	TotalPages int             `json:"totalPages"`
	TotalItems int             `json:"totalItems"`
}

func NewPageResponse(pageItems []model.Article, page, perPage, totalPages, totalItems int) *PageResponse {
	if pageItems == nil {
		pageItems = []model.Article{}
	}

	return &PageResponse{
		Articles:   pageItems,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		TotalItems: totalItems,
	}
}

func (rd *PageResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// CategoryResponse is one category with its article count and blurb.
type CategoryResponse struct {
	store.CategoryCount
	Description string `json:"description"`
}

func (rd *CategoryResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

var categoryDescriptions = map[string]string{
	"Technology": "Latest trends and innovations in technology",
	"Design":     "UI/UX design principles and best practices",
	"Backend":    "Server-side development and architecture",
	"Mobile":     "Mobile app development and frameworks",
	"Security":   "Cybersecurity and best practices",
	"AI":         "Artificial Intelligence and machine learning",
}

func NewCategoryListResponse(counts []store.CategoryCount) []render.Renderer {
	list := []render.Renderer{}
	for _, c := range counts {
		desc, ok := categoryDescriptions[c.Name]
		if !ok {
			desc = "Explore articles in this category"
		}
		list = append(list, &CategoryResponse{CategoryCount: c, Description: desc})
	}

	return list
}
