// ABOUTME: Wire types for the gateway websocket: tagged event envelope and payloads
// ABOUTME: Also holds the REST entity shapes shared by the API client and list snapshots

package protocol

import (
	"strconv"
	"time"
)

// Event types carried in the envelope's "type" field.
const (
	TypeSystem           = "system"
	TypeStatus           = "status"
	TypeError            = "error"
	TypeUserMessage      = "user_message"
	TypeAssistantMessage = "assistant_message"
	TypeAssistantChunk   = "assistant_chunk"
	TypeModelList        = "model_list"
	TypeChatList         = "chat_list"
	TypeRemoveMessage    = "remove_message"
)

// Inline markers that delimit a reasoning span inside chunk content.
const (
	ReasoningStart = "<think>"
	ReasoningEnd   = "</think>"
)

// Envelope is one websocket frame. Exactly one payload is set, chosen by Type.
type Envelope struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	ContentPayload   *ContentPayload `json:"content_payload,omitempty"`
	StatusPayload    *StatusPayload  `json:"status_payload,omitempty"`
	ErrorPayload     *ErrorPayload   `json:"error_payload,omitempty"`
	MessagePayload   *Message        `json:"message_payload,omitempty"`
	ChunkPayload     *ChunkPayload   `json:"chunk_payload,omitempty"`
	RemovePayload    *RemovePayload  `json:"remove_payload,omitempty"`
	ModelListPayload []Model         `json:"model_list_payload,omitempty"`
	ChatListPayload  []Chat          `json:"chat_list_payload,omitempty"`
}

type ContentPayload struct {
	Content string `json:"content"`
}

type StatusPayload struct {
	ChatID  *int64 `json:"chat_id,omitempty"`
	Message string `json:"message"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
	ChatID  *int64 `json:"chat_id,omitempty"`
}

// ChunkPayload is one incremental delivery of assistant text.
type ChunkPayload struct {
	ChatID    int64  `json:"chat_id"`
	MessageID *int64 `json:"message_id,omitempty"`
	ModelID   *int64 `json:"model_id,omitempty"`
	Content   string `json:"content"`
	IsFinal   bool   `json:"is_final,omitempty"`
}

type RemovePayload struct {
	ChatID    *int64 `json:"chat_id,omitempty"`
	MessageID int64  `json:"message_id"`
}

// Message is a persisted chat message, used by both user_message /
// assistant_message events and the chat REST endpoints.
type Message struct {
	ID         int64     `json:"id"`
	ChatID     int64     `json:"chat_id"`
	UserID     int64     `json:"user_id,omitempty"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	ModelID    *int64    `json:"model_id,omitempty"`
	TokensUsed int       `json:"tokens_used,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Model is the user-facing model entry from /api/models or a model_list event.
type Model struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	ModelID      string  `json:"model_id,omitempty"`
	ProviderType string  `json:"provider_type,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
}

// Chat is a conversation entry. Messages is only populated by GET /api/chats/{id}.
type Chat struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	UserID    int64     `json:"user_id,omitempty"`
	IsActive  bool      `json:"is_active,omitempty"`
	Messages  []Message `json:"messages,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User is the response of GET /api/user/me.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// FormatID renders a server id as the string key used by render state.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Int64 returns the pointed-to value or 0.
func Int64(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
