// Package client talks to the upstream weblog API that owns the article
// collection and the login endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/mamadkami/weblog/internal/model"
)

// DefaultLoginError is returned when the login endpoint fails without a
// usable message in its response body.
const DefaultLoginError = "Login failed. Please try again."

type Client struct {
	http.Client
	Addr string
}

// apiError is the upstream error body shape, e.g. {"message":"bad credentials"}.
type apiError struct {
	Message string `json:"message"`
}

// AuthError carries the server-provided message for a rejected login.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// FetchArticles returns the full article collection.
func (c *Client) FetchArticles(ctx context.Context) ([]model.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Addr+"/api/articles", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch articles: unexpected status %d", resp.StatusCode)
	}

	var articles []model.Article
	if err := json.NewDecoder(resp.Body).Decode(&articles); err != nil {
		return nil, err
	}

	return articles, nil
}

// CreateArticle posts a draft and returns the created article with its
// server-assigned id.
func (c *Client) CreateArticle(ctx context.Context, draft model.Draft) (model.Article, error) {
	return c.sendDraft(ctx, http.MethodPost, c.Addr+"/api/articles", draft)
}

// UpdateArticle sends a full replacement for the article with the given id.
func (c *Client) UpdateArticle(ctx context.Context, id int, draft model.Draft) (model.Article, error) {
	return c.sendDraft(ctx, http.MethodPut, fmt.Sprintf("%s/api/articles/%d", c.Addr, id), draft)
}

// DeleteArticle requests remote deletion. Any non-error HTTP response below
// 400 counts as success; no response body is required.
func (c *Client) DeleteArticle(ctx context.Context, id int) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/api/articles/%d", c.Addr, id), nil)
	if err != nil {
		return err
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("delete article %d: unexpected status %d", id, resp.StatusCode)
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

// Login exchanges credentials for an identity. On rejection the returned
// error is an *AuthError carrying the server-supplied message.
func (c *Client) Login(ctx context.Context, username, password string) (model.Identity, error) {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return model.Identity{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Addr+"/api/login", bytes.NewReader(body))
	if err != nil {
		return model.Identity{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return model.Identity{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		msg := DefaultLoginError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			msg = apiErr.Message
		}

		return model.Identity{}, &AuthError{Message: msg}
	}

	var identity model.Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return model.Identity{}, err
	}

	return identity, nil
}

func (c *Client) sendDraft(ctx context.Context, method, url string, draft model.Draft) (model.Article, error) {
	body, err := json.Marshal(draft)
	if err != nil {
		return model.Article{}, err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return model.Article{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return model.Article{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return model.Article{}, fmt.Errorf("%s %s: unexpected status %d", method, url, resp.StatusCode)
	}

	var article model.Article
	if err := json.NewDecoder(resp.Body).Decode(&article); err != nil {
		return model.Article{}, err
	}

	return article, nil
}
