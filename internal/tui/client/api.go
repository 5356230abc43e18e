// ABOUTME: HTTP client for the gateway REST API (models, chats, messages, user)
// ABOUTME: Non-2xx responses become *APIError carrying the server's error text
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ramborogers/cyberai-tui/internal/protocol"
)

// APIError is a non-2xx response from the gateway.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP error %d", e.Status)
	}
	return fmt.Sprintf("HTTP error %d: %s", e.Status, e.Message)
}

// HTTPStatus returns the response status code.
func (e *APIError) HTTPStatus() int {
	return e.Status
}

// IsNotFound reports whether err is a 404 from the gateway.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type APIClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewAPIClient(baseURL, token string, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *APIClient) BaseURL() string {
	return c.baseURL
}

func (c *APIClient) ListModels(ctx context.Context) ([]protocol.Model, error) {
	var models []protocol.Model
	if err := c.do(ctx, http.MethodGet, "/api/models", nil, &models); err != nil {
		return nil, fmt.Errorf("failed to fetch models: %w", err)
	}
	return models, nil
}

func (c *APIClient) ListChats(ctx context.Context) ([]protocol.Chat, error) {
	var chats []protocol.Chat
	if err := c.do(ctx, http.MethodGet, "/api/chats", nil, &chats); err != nil {
		return nil, fmt.Errorf("failed to fetch chats: %w", err)
	}
	return chats, nil
}

// GetChat returns a chat with its messages.
func (c *APIClient) GetChat(ctx context.Context, id int64) (*protocol.Chat, error) {
	var chat protocol.Chat
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/chats/%d", id), nil, &chat); err != nil {
		return nil, fmt.Errorf("failed to load chat %d: %w", id, err)
	}
	return &chat, nil
}

type firstMessage struct {
	Content string `json:"content"`
	ModelID int64  `json:"model_id"`
}

// CreateChat creates a chat whose first message is content. The server
// titles the chat from the message and starts streaming the answer.
func (c *APIClient) CreateChat(ctx context.Context, content string, modelID int64) (*protocol.Chat, error) {
	body := struct {
		FirstMessage firstMessage `json:"first_message"`
	}{firstMessage{Content: content, ModelID: modelID}}

	var chat protocol.Chat
	if err := c.do(ctx, http.MethodPost, "/api/chats", body, &chat); err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}
	if chat.ID == 0 {
		return nil, errors.New("failed to create chat: response has no id")
	}
	return &chat, nil
}

// SendMessage posts a user message to an existing chat and returns the
// stored message. The answer arrives over the websocket.
func (c *APIClient) SendMessage(ctx context.Context, chatID int64, content string, modelID int64) (*protocol.Message, error) {
	body := firstMessage{Content: content, ModelID: modelID}

	var msg protocol.Message
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/chats/%d/messages", chatID), body, &msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	if msg.ID == 0 {
		return nil, errors.New("failed to send message: response has no id")
	}
	return &msg, nil
}

// Regenerate asks the server to replace the last answer. The server sends
// remove_message for the old answer, then streams a new one.
func (c *APIClient) Regenerate(ctx context.Context, chatID, modelID int64) error {
	body := struct {
		ModelID int64 `json:"model_id"`
	}{modelID}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/chats/%d/messages/regenerate", chatID), body, nil); err != nil {
		return fmt.Errorf("failed to regenerate: %w", err)
	}
	return nil
}

func (c *APIClient) RenameChat(ctx context.Context, chatID int64, title string) error {
	body := struct {
		Title string `json:"title"`
	}{title}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/chats/%d", chatID), body, nil); err != nil {
		return fmt.Errorf("failed to rename chat %d: %w", chatID, err)
	}
	return nil
}

func (c *APIClient) DeleteChat(ctx context.Context, chatID int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/chats/%d", chatID), nil, nil); err != nil {
		return fmt.Errorf("failed to delete chat %d: %w", chatID, err)
	}
	return nil
}

func (c *APIClient) CurrentUser(ctx context.Context) (*protocol.User, error) {
	var user protocol.User
	if err := c.do(ctx, http.MethodGet, "/api/user/me", nil, &user); err != nil {
		return nil, fmt.Errorf("failed to fetch current user: %w", err)
	}
	return &user, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeAPIError reads the optional {"error"|"message"|"detail": "..."} body.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if json.Unmarshal(data, &body) == nil {
		for _, m := range []string{body.Error, body.Message, body.Detail} {
			if m != "" {
				apiErr.Message = m
				break
			}
		}
	}
	return apiErr
}
