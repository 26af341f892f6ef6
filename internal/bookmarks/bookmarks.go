// Package bookmarks keeps the reader's bookmarked article ids as one JSON
// array under bookmarked_articles.
package bookmarks

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mamadkami/weblog/internal/kvstore"
)

const storageKey = "bookmarked_articles"

// ErrBookmarked is returned when the article is already in the set.
var ErrBookmarked = errors.New("article already bookmarked")

type Service struct {
	kv kvstore.Store
}

func New(kv kvstore.Store) *Service {
	return &Service{kv: kv}
}

// List returns the bookmarked ids in insertion order.
func (s *Service) List(ctx context.Context) ([]int, error) {
	raw, err := s.kv.Get(ctx, storageKey)
	if errors.Is(err, kvstore.ErrNoKey) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ids []int
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, err
	}

	return ids, nil
}

// Add appends an article id unless it is already present.
func (s *Service) Add(ctx context.Context, articleID int) error {
	ids, err := s.List(ctx)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if id == articleID {
			return ErrBookmarked
		}
	}

	raw, err := json.Marshal(append(ids, articleID))
	if err != nil {
		return err
	}

	return s.kv.Set(ctx, storageKey, raw)
}

// Contains reports whether an article id is bookmarked.
func (s *Service) Contains(ctx context.Context, articleID int) (bool, error) {
	ids, err := s.List(ctx)
	if err != nil {
		return false, err
	}

	for _, id := range ids {
		if id == articleID {
			return true, nil
		}
	}

	return false, nil
}
