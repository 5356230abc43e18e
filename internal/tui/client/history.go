// ABOUTME: SQLite history cache of the chat list and finalized messages
// ABOUTME: Lets a restart show the last chat before the gateway answers
package client

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ramborogers/cyberai-tui/internal/protocol"
	"github.com/ramborogers/cyberai-tui/internal/xdg"
)

//go:embed history_schema.sql
var historySchema string

const metaLastChat = "last_chat_id"

type HistoryCache struct {
	path string
	db   *sql.DB
}

// OpenHistory opens or creates the cache. If path is empty, uses
// $XDG_DATA_HOME/cyberai-tui/history.sqlite.
func OpenHistory(path string) (*HistoryCache, error) {
	if path == "" {
		path = filepath.Join(xdg.DataHome(), "history.sqlite")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	// one connection keeps :memory: databases coherent
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to history: %w", err)
	}
	if _, err := db.Exec(historySchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &HistoryCache{path: path, db: db}, nil
}

func (h *HistoryCache) Path() string {
	return h.path
}

// SaveChats replaces the cached chat list with a snapshot.
func (h *HistoryCache) SaveChats(chats []protocol.Chat) error {
	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM chats`); err != nil {
		return fmt.Errorf("clear chats: %w", err)
	}
	for _, c := range chats {
		_, err := tx.Exec(
			`INSERT INTO chats (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			c.ID, c.Title, c.CreatedAt, c.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert chat %d: %w", c.ID, err)
		}
	}
	if _, err := tx.Exec(`DELETE FROM messages WHERE chat_id NOT IN (SELECT id FROM chats)`); err != nil {
		return fmt.Errorf("prune messages: %w", err)
	}
	return tx.Commit()
}

// Chats returns the cached chat list, most recently updated first.
func (h *HistoryCache) Chats() ([]protocol.Chat, error) {
	rows, err := h.db.Query(`SELECT id, title, created_at, updated_at FROM chats ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var chats []protocol.Chat
	for rows.Next() {
		var c protocol.Chat
		var created, updated sql.NullTime
		if err := rows.Scan(&c.ID, &c.Title, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		c.CreatedAt = created.Time
		c.UpdatedAt = updated.Time
		chats = append(chats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chats: %w", err)
	}
	return chats, nil
}

// SaveMessage inserts or replaces one finalized message.
func (h *HistoryCache) SaveMessage(m protocol.Message) error {
	var modelID sql.NullInt64
	if m.ModelID != nil {
		modelID = sql.NullInt64{Int64: *m.ModelID, Valid: true}
	}
	created := m.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err := h.db.Exec(
		`INSERT OR REPLACE INTO messages (id, chat_id, role, content, model_id, tokens_used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ChatID, m.Role, m.Content, modelID, m.TokensUsed, created,
	)
	if err != nil {
		return fmt.Errorf("failed to save message %d: %w", m.ID, err)
	}
	return nil
}

// ReplaceChatMessages swaps a chat's cached messages for a fresh load.
func (h *HistoryCache) ReplaceChatMessages(chatID int64, msgs []protocol.Message) error {
	if _, err := h.db.Exec(`DELETE FROM messages WHERE chat_id = ?`, chatID); err != nil {
		return fmt.Errorf("failed to clear chat %d: %w", chatID, err)
	}
	for _, m := range msgs {
		m.ChatID = chatID
		if err := h.SaveMessage(m); err != nil {
			return err
		}
	}
	return nil
}

// Messages returns a chat's cached messages in id order.
func (h *HistoryCache) Messages(chatID int64) ([]protocol.Message, error) {
	rows, err := h.db.Query(
		`SELECT id, chat_id, role, content, model_id, tokens_used, created_at
		 FROM messages WHERE chat_id = ? ORDER BY id ASC`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var msgs []protocol.Message
	for rows.Next() {
		var m protocol.Message
		var modelID sql.NullInt64
		var created sql.NullTime
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Role, &m.Content, &modelID, &m.TokensUsed, &created); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if modelID.Valid {
			id := modelID.Int64
			m.ModelID = &id
		}
		m.CreatedAt = created.Time
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return msgs, nil
}

func (h *HistoryCache) DeleteMessage(id int64) error {
	if _, err := h.db.Exec(`DELETE FROM messages WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete message %d: %w", id, err)
	}
	return nil
}

func (h *HistoryCache) DeleteChat(chatID int64) error {
	if _, err := h.db.Exec(`DELETE FROM messages WHERE chat_id = ?`, chatID); err != nil {
		return fmt.Errorf("failed to delete chat %d messages: %w", chatID, err)
	}
	if _, err := h.db.Exec(`DELETE FROM chats WHERE id = ?`, chatID); err != nil {
		return fmt.Errorf("failed to delete chat %d: %w", chatID, err)
	}
	return nil
}

// SetLastChat remembers the chat that was open, 0 for none.
func (h *HistoryCache) SetLastChat(chatID int64) error {
	_, err := h.db.Exec(
		`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`,
		metaLastChat, strconv.FormatInt(chatID, 10),
	)
	if err != nil {
		return fmt.Errorf("failed to save last chat: %w", err)
	}
	return nil
}

// LastChat returns the remembered chat id or 0.
func (h *HistoryCache) LastChat() (int64, error) {
	var v string
	err := h.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, metaLastChat).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read last chat: %w", err)
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt last chat value %q: %w", v, err)
	}
	return id, nil
}

func (h *HistoryCache) Close() error {
	if h.db != nil {
		return h.db.Close()
	}
	return nil
}
