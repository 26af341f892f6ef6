// Package comments stores one JSON thread blob per article under
// comments_{articleID}. Threads are two levels deep: top-level comments
// carry replies, replies never do.
package comments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mamadkami/weblog/internal/kvstore"
	"github.com/mamadkami/weblog/internal/model"
)

// ErrNotFound is returned when no comment in the thread has the given id.
var ErrNotFound = errors.New("comment not found")

type Service struct {
	kv kvstore.Store

	// now is swapped out in tests.
	now func() time.Time
}

func New(kv kvstore.Store) *Service {
	return &Service{kv: kv, now: time.Now}
}

func key(articleID int) string {
	return fmt.Sprintf("comments_%d", articleID)
}

// List returns the stored thread for an article, newest top-level comment
// first. An article that was never commented on has an empty thread.
func (s *Service) List(ctx context.Context, articleID int) ([]model.Comment, error) {
	raw, err := s.kv.Get(ctx, key(articleID))
	if errors.Is(err, kvstore.ErrNoKey) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var thread []model.Comment
	if err := json.Unmarshal(raw, &thread); err != nil {
		return nil, err
	}

	return thread, nil
}

// Post prepends a new top-level comment and returns it.
func (s *Service) Post(ctx context.Context, articleID int, author, content string) (model.Comment, error) {
	thread, err := s.List(ctx, articleID)
	if err != nil {
		return model.Comment{}, err
	}

	comment := model.Comment{
		ID:        uuid.NewString(),
		Author:    author,
		Content:   content,
		Timestamp: s.now().UTC(),
		Replies:   []model.Comment{},
	}

	thread = append([]model.Comment{comment}, thread...)
	if err := s.save(ctx, articleID, thread); err != nil {
		return model.Comment{}, err
	}

	return comment, nil
}

// Reply appends a reply to the top-level comment with the given id. The
// reply itself never accepts replies.
func (s *Service) Reply(ctx context.Context, articleID int, parentID, author, content string) (model.Comment, error) {
	thread, err := s.List(ctx, articleID)
	if err != nil {
		return model.Comment{}, err
	}

	reply := model.Comment{
		ID:        uuid.NewString(),
		Author:    author,
		Content:   content,
		Timestamp: s.now().UTC(),
		Replies:   []model.Comment{},
	}

	for i := range thread {
		if thread[i].ID == parentID {
			thread[i].Replies = append(thread[i].Replies, reply)

			if err := s.save(ctx, articleID, thread); err != nil {
				return model.Comment{}, err
			}

			return reply, nil
		}
	}

	return model.Comment{}, ErrNotFound
}

// Like increments the like counter of a comment or reply and marks it
// liked. Repeated likes keep incrementing; nothing tracks who liked what.
func (s *Service) Like(ctx context.Context, articleID int, commentID string) (model.Comment, error) {
	thread, err := s.List(ctx, articleID)
	if err != nil {
		return model.Comment{}, err
	}

	for i := range thread {
		if thread[i].ID == commentID {
			thread[i].Likes++
			thread[i].Liked = true

			if err := s.save(ctx, articleID, thread); err != nil {
				return model.Comment{}, err
			}

			return thread[i], nil
		}

		for j := range thread[i].Replies {
			if thread[i].Replies[j].ID == commentID {
				thread[i].Replies[j].Likes++
				thread[i].Replies[j].Liked = true

				if err := s.save(ctx, articleID, thread); err != nil {
					return model.Comment{}, err
				}

				return thread[i].Replies[j], nil
			}
		}
	}

	return model.Comment{}, ErrNotFound
}

// Count reports the number of top-level comments on an article.
func (s *Service) Count(ctx context.Context, articleID int) (int, error) {
	thread, err := s.List(ctx, articleID)
	if err != nil {
		return 0, err
	}

	return len(thread), nil
}

func (s *Service) save(ctx context.Context, articleID int, thread []model.Comment) error {
	raw, err := json.Marshal(thread)
	if err != nil {
		return err
	}

	return s.kv.Set(ctx, key(articleID), raw)
}
