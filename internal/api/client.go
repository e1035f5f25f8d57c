// Package api is the client for the REST collaborators: the room directory,
// the conversation history service and user registration.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"boltalka/internal/models"

	"github.com/c-pro/geche"
)

type Client struct {
	baseURL string
	http    *http.Client

	// Per-room history cache so rapid room switches do not refetch.
	history geche.Geche[string, []models.Message]
}

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HistoryTTL time.Duration
}

func NewClient(ctx context.Context, cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.HistoryTTL == 0 {
		cfg.HistoryTTL = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		history: geche.NewMapTTLCache[string, []models.Message](ctx, cfg.HistoryTTL, time.Minute),
	}
}

// Rooms fetches the room directory. It is polled once at startup; a failure
// is returned for the caller to log, not retried here.
func (c *Client) Rooms(ctx context.Context) ([]models.RoomEntry, error) {
	var rooms []models.RoomEntry
	if err := c.get(ctx, "/rooms", &rooms); err != nil {
		return nil, fmt.Errorf("failed to fetch rooms: %w", err)
	}
	return rooms, nil
}

// Conversations fetches the message history for a room, consulting the TTL
// cache first.
func (c *Client) Conversations(ctx context.Context, roomID string) ([]models.Message, error) {
	if cached, err := c.history.Get(roomID); err == nil {
		return cached, nil
	}

	var messages []models.Message
	if err := c.get(ctx, "/conversations/"+roomID, &messages); err != nil {
		return nil, fmt.Errorf("failed to fetch conversations for room %s: %w", roomID, err)
	}

	c.history.Set(roomID, messages)
	return messages, nil
}

// CreateUser registers a new user with the directory service and returns the
// created identity.
func (c *Client) CreateUser(ctx context.Context, username, phone string) (models.User, error) {
	payload, err := json.Marshal(map[string]string{
		"username": username,
		"phone":    phone,
	})
	if err != nil {
		return models.User{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users/create", bytes.NewReader(payload))
	if err != nil {
		return models.User{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return models.User{}, fmt.Errorf("failed to create user: unexpected status %s", resp.Status)
	}

	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return models.User{}, fmt.Errorf("failed to decode user: %w", err)
	}
	return user, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
