// Package articlerequest is the request payload for the article CRUD
// surface.
package articlerequest

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/mamadkami/weblog/internal/model"
)

// MinContentLength matches the editor's "minimum 100 required" rule.
const MinContentLength = 100

// ArticleRequest carries an article draft. The id is never taken from the
// payload; the server (create) or the URL (update) decides it.
type ArticleRequest struct {
	model.Draft

	ProtectedID int `json:"id"` // override 'id' json so clients can't set it
}

// Bind runs after unmarshalling and normalizes the draft.
func (a *ArticleRequest) Bind(r *http.Request) error {
	if a.Title == "" && a.Content == "" && a.Author == "" {
		return errors.New("missing required article fields")
	}

	a.ProtectedID = 0
	a.Title = strings.TrimSpace(a.Title)
	a.Content = strings.TrimSpace(a.Content)
	a.Author = strings.TrimSpace(a.Author)
	a.Image = strings.TrimSpace(a.Image)
	if a.Category == "" {
		a.Category = "Technology"
	}

	tags := a.Tags[:0]
	for _, tag := range a.Tags {
		if t := strings.TrimSpace(tag); t != "" {
			tags = append(tags, t)
		}
	}
	a.Tags = tags

	return nil
}

// Validate checks the draft field by field. An empty map means the draft
// may be sent upstream; no remote call is attempted otherwise.
func (a *ArticleRequest) Validate() map[string]string {
	fields := make(map[string]string)

	if a.Title == "" {
		fields["title"] = "Title is required"
	}
	switch {
	case a.Content == "":
		fields["content"] = "Content is required"
	case len(a.Content) < MinContentLength:
		fields["content"] = "Content must be at least 100 characters long"
	}
	if a.Author == "" {
		fields["author"] = "Author is required"
	}
	switch {
	case a.Image == "":
		fields["image"] = "Image URL is required"
	case !validURL(a.Image):
		fields["image"] = "Please enter a valid image URL"
	}

	if len(fields) == 0 {
		return nil
	}

	return fields
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)

	return err == nil && u.Scheme != "" && u.Host != ""
}
