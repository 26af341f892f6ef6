// Package store owns the in-memory article collection. The collection is
// fetched wholesale from the upstream API once at startup; afterwards all
// reads are synchronous scans over the cache and every mutation
// round-trips through the upstream before touching the cache.
package store

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/mamadkami/weblog/internal/model"
)

// ErrNotFound is returned when no cached article matches the given id.
var ErrNotFound = errors.New("article not found")

// Remote is the upstream side of the store, implemented by client.Client.
type Remote interface {
	FetchArticles(ctx context.Context) ([]model.Article, error)
	CreateArticle(ctx context.Context, draft model.Draft) (model.Article, error)
	UpdateArticle(ctx context.Context, id int, draft model.Draft) (model.Article, error)
	DeleteArticle(ctx context.Context, id int) error
}

type Store struct {
	remote Remote

	mu       sync.RWMutex
	articles []model.Article
}

func New(remote Remote) *Store {
	return &Store{remote: remote}
}

// LoadAll replaces the cache with the upstream collection. On error the
// cache is left untouched. There is no retry and no partial result.
func (s *Store) LoadAll(ctx context.Context) error {
	articles, err := s.remote.FetchArticles(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.articles = articles
	s.mu.Unlock()

	return nil
}

// Create sends the draft upstream and, on success, prepends the returned
// article to the cache.
func (s *Store) Create(ctx context.Context, draft model.Draft) (model.Article, error) {
	article, err := s.remote.CreateArticle(ctx, draft)
	if err != nil {
		return model.Article{}, err
	}

	s.mu.Lock()
	s.articles = append([]model.Article{article}, s.articles...)
	s.mu.Unlock()

	return article, nil
}

// Update sends a full replacement upstream and, on success, replaces the
// matching cache entry. Entries with other ids are untouched. Two updates
// in flight race: the later upstream response wins.
func (s *Store) Update(ctx context.Context, id int, draft model.Draft) (model.Article, error) {
	article, err := s.remote.UpdateArticle(ctx, id, draft)
	if err != nil {
		return model.Article{}, err
	}

	s.mu.Lock()
	for i := range s.articles {
		if s.articles[i].ID == id {
			s.articles[i] = article

			break
		}
	}
	s.mu.Unlock()

	return article, nil
}

// Delete requests remote deletion and, on success, removes the matching
// cache entry. The removed article is returned; a cache miss after a
// successful remote delete yields ErrNotFound.
func (s *Store) Delete(ctx context.Context, id int) (model.Article, error) {
	if err := s.remote.DeleteArticle(ctx, id); err != nil {
		return model.Article{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.articles {
		if a.ID == id {
			s.articles = append(s.articles[:i], s.articles[i+1:]...)

			return a, nil
		}
	}

	return model.Article{}, ErrNotFound
}

// GetByID returns the first cached article with the given id. There is no
// remote fallback fetch.
func (s *Store) GetByID(id int) (model.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.articles {
		if a.ID == id {
			return a, nil
		}
	}

	return model.Article{}, ErrNotFound
}

// SearchByText returns cached articles where query is a case-insensitive
// substring of the title, content, category or any tag. Collection order
// is preserved.
func (s *Store) SearchByText(query string) []model.Article {
	q := strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Article
	for _, a := range s.articles {
		if matchesText(a, q) {
			out = append(out, a)
		}
	}

	return out
}

func matchesText(a model.Article, q string) bool {
	if strings.Contains(strings.ToLower(a.Title), q) ||
		strings.Contains(strings.ToLower(a.Content), q) ||
		strings.Contains(strings.ToLower(a.Category), q) {
		return true
	}
	for _, tag := range a.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}

	return false
}

// ByCategory returns cached articles with an exact category match.
func (s *Store) ByCategory(category string) []model.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Article
	for _, a := range s.articles {
		if a.Category == category {
			out = append(out, a)
		}
	}

	return out
}

// All returns a snapshot copy of the cached collection.
func (s *Store) All() []model.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Article, len(s.articles))
	copy(out, s.articles)

	return out
}

// Len reports the cached collection size.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.articles)
}

// CategoryCount is one category with its article count.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Categories returns per-category article counts, ordered by first
// appearance in the collection.
func (s *Store) Categories() []CategoryCount {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	var order []string
	for _, a := range s.articles {
		if _, seen := counts[a.Category]; !seen {
			order = append(order, a.Category)
		}
		counts[a.Category]++
	}

	out := make([]CategoryCount, 0, len(order))
	for _, name := range order {
		out = append(out, CategoryCount{Name: name, Count: counts[name]})
	}

	return out
}
