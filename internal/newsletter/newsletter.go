// Package newsletter keeps the subscriber list as one JSON array under
// newsletter_subscribers.
package newsletter

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/mamadkami/weblog/internal/kvstore"
)

const storageKey = "newsletter_subscribers"

var (
	// ErrEmptyEmail is returned for a blank submission.
	ErrEmptyEmail = errors.New("email address is required")
	// ErrInvalidEmail is returned when the address fails the shape check.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrSubscribed is returned when the address is already on the list.
	ErrSubscribed = errors.New("already subscribed")
)

var emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Service struct {
	kv kvstore.Store
}

func New(kv kvstore.Store) *Service {
	return &Service{kv: kv}
}

// Subscribe validates the address, rejects duplicates and otherwise
// appends it to the stored list.
func (s *Service) Subscribe(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmptyEmail
	}
	if !emailRE.MatchString(email) {
		return ErrInvalidEmail
	}

	subscribers, err := s.List(ctx)
	if err != nil {
		return err
	}

	for _, existing := range subscribers {
		if existing == email {
			return ErrSubscribed
		}
	}

	raw, err := json.Marshal(append(subscribers, email))
	if err != nil {
		return err
	}

	return s.kv.Set(ctx, storageKey, raw)
}

// List returns the stored subscriber addresses.
func (s *Service) List(ctx context.Context) ([]string, error) {
	raw, err := s.kv.Get(ctx, storageKey)
	if errors.Is(err, kvstore.ErrNoKey) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var subscribers []string
	if err := json.Unmarshal(raw, &subscribers); err != nil {
		return nil, err
	}

	return subscribers, nil
}

// Count reports the subscriber list length.
func (s *Service) Count(ctx context.Context) (int, error) {
	subscribers, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	return len(subscribers), nil
}
