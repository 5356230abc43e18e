// ABOUTME: Chat session state behind the router: active chat, assembler, node store, lists, history
// ABOUTME: Implements router.Handlers and router.Indicator for the Bubble Tea update loop
package tui

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ramborogers/cyberai-tui/internal/logger"
	"github.com/ramborogers/cyberai-tui/internal/protocol"
	"github.com/ramborogers/cyberai-tui/internal/render"
	"github.com/ramborogers/cyberai-tui/internal/stream"
	"github.com/ramborogers/cyberai-tui/internal/tui/client"
)

// maxHeldChunks bounds the chunks kept while a new chat is being created.
const maxHeldChunks = 4096

// Notice is a toast the view should show.
type Notice struct {
	Text     string
	Severity string
}

type pendingMessage struct {
	id      string
	content string
}

// Session owns the per-chat state that wire events mutate. All methods run
// on the update loop.
type Session struct {
	store     *render.Store
	assembler *stream.Assembler
	active    *stream.ActiveChat
	models    *client.ModelList
	chats     *client.ChatList
	history   *client.HistoryCache
	log       logger.Scoped

	thinking    bool
	thinkingGen uint64
	status      string

	pending  []pendingMessage
	creating bool
	held     []protocol.ChunkPayload

	notices []Notice
	reload  bool
}

// NewSession wires the assembler to store, filter and model names. history
// may be nil.
func NewSession(store *render.Store, models *client.ModelList, chats *client.ChatList, history *client.HistoryCache) *Session {
	active := stream.NewActiveChat(0)
	return &Session{
		store:     store,
		assembler: stream.NewAssembler(store, active, models),
		active:    active,
		models:    models,
		chats:     chats,
		history:   history,
		log:       logger.Scope("session"),
	}
}

// ActiveChat returns the chat the view shows, 0 for the new-chat state.
func (s *Session) ActiveChat() int64 {
	return s.active.Current()
}

// SwitchChat makes id the active chat and drops all state of the old one.
func (s *Session) SwitchChat(id int64) bool {
	if !s.active.Set(id) {
		return false
	}
	s.store.Clear()
	s.assembler.Reset()
	s.pending = nil
	s.status = ""
	s.log.Info("active chat is now %d", id)

	if id != 0 && s.history != nil {
		if err := s.history.SetLastChat(id); err != nil {
			s.log.Warn("remember last chat: %v", err)
		}
	}
	return true
}

// LoadChat renders a chat fetched from the server. Messages already on
// screen are kept; the view is rebuilt only when nothing is in flight.
func (s *Session) LoadChat(chat protocol.Chat) error {
	if !s.active.IsRelevant(chat.ID) {
		s.log.Debug("dropping load of chat %d, active is %d", chat.ID, s.active.Current())
		return nil
	}

	if s.assembler.OpenCount() == 0 && len(s.pending) == 0 {
		s.store.Clear()
		s.assembler.Reset()
	}

	if err := s.replay(chat.Messages); err != nil {
		return err
	}

	if s.history != nil {
		if err := s.history.ReplaceChatMessages(chat.ID, chat.Messages); err != nil {
			s.log.Warn("cache chat %d: %v", chat.ID, err)
		}
	}
	return nil
}

// LoadCached renders the cached messages of chatID, if any.
func (s *Session) LoadCached(chatID int64) (int, error) {
	if s.history == nil || !s.active.IsRelevant(chatID) {
		return 0, nil
	}
	msgs, err := s.history.Messages(chatID)
	if err != nil {
		return 0, fmt.Errorf("load cached chat %d: %w", chatID, err)
	}
	return len(msgs), s.replay(msgs)
}

func (s *Session) replay(msgs []protocol.Message) error {
	for _, m := range msgs {
		id := protocol.FormatID(m.ID)
		if s.store.Get(id) != nil {
			continue
		}
		if err := s.assembler.Replay(m); err != nil {
			return err
		}
		if m.Role == protocol.RoleAssistant {
			if err := s.store.Confirm(id, m.Content, m.TokensUsed); err != nil {
				return err
			}
		}
	}
	return nil
}

// AddPending shows an optimistic user message and returns its placeholder id.
func (s *Session) AddPending(content string) string {
	id := "pending-" + uuid.NewString()
	s.store.GetOrCreate(id, s.active.Current(), protocol.RoleUser, 0)
	if err := s.store.Finalize(id, render.Document{Visible: content}); err != nil {
		s.log.Warn("render pending message: %v", err)
	}
	s.pending = append(s.pending, pendingMessage{id: id, content: content})
	return id
}

// ConfirmSent resolves a placeholder with the message the server stored.
// It is a no-op when a user_message event already did so.
func (s *Session) ConfirmSent(placeholder string, msg *protocol.Message) error {
	if !s.takePending(placeholder) {
		return nil
	}
	s.save(*msg)
	return s.rename(placeholder, protocol.FormatID(msg.ID))
}

// DropPending removes a placeholder whose send failed.
func (s *Session) DropPending(placeholder string) {
	s.takePending(placeholder)
	s.store.Remove(placeholder)
}

func (s *Session) takePending(id string) bool {
	for i, p := range s.pending {
		if p.id == id {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return true
		}
	}
	return false
}

// matchPending pops the placeholder for content, oldest first.
func (s *Session) matchPending(content string) (string, bool) {
	for i, p := range s.pending {
		if p.content == content {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return p.id, true
		}
	}
	return "", false
}

func (s *Session) rename(placeholder, id string) error {
	err := s.store.Rename(placeholder, id)
	if errors.Is(err, render.ErrIDInUse) {
		s.store.Remove(placeholder)
		return nil
	}
	return err
}

// BeginCreate holds chunks of unknown chats until the created chat is adopted.
func (s *Session) BeginCreate() {
	s.creating = true
	s.held = nil
}

// AdoptCreated switches to a chat the server just created and replays chunks
// that arrived before its id was known.
func (s *Session) AdoptCreated(chat protocol.Chat) error {
	s.creating = false
	held := s.held
	s.held = nil

	s.chats.Adopt(chat)
	s.SwitchChat(chat.ID)
	if err := s.LoadChat(chat); err != nil {
		return err
	}

	for i := range held {
		if held[i].ChatID != chat.ID {
			continue
		}
		if _, err := s.assembler.Apply(&held[i]); err != nil {
			s.log.Warn("replay held chunk: %v", err)
		}
	}
	return nil
}

// FailCreate leaves the creating state after a failed create.
func (s *Session) FailCreate() {
	s.creating = false
	s.held = nil
}

// TakeNotices returns and clears queued toasts.
func (s *Session) TakeNotices() []Notice {
	n := s.notices
	s.notices = nil
	return n
}

// TakeReload reports whether a chat_list changed the selected chat.
func (s *Session) TakeReload() bool {
	r := s.reload
	s.reload = false
	return r
}

func (s *Session) notify(text, severity string) {
	s.notices = append(s.notices, Notice{Text: text, Severity: severity})
}

// SetThinking implements router.Indicator.
func (s *Session) SetThinking(on bool) {
	if on && !s.thinking {
		s.thinkingGen++
	}
	s.thinking = on
	if !on {
		s.status = ""
	}
}

func (s *Session) Thinking() bool {
	return s.thinking
}

// ThinkingGen changes each time the indicator turns on.
func (s *Session) ThinkingGen() uint64 {
	return s.thinkingGen
}

// ExpireThinking clears the indicator if it is still the activation gen.
// Open messages are left alone; only the confirmation finalizes them.
func (s *Session) ExpireThinking(gen uint64) bool {
	if !s.thinking || gen != s.thinkingGen {
		return false
	}
	s.log.Info("no reply activity, clearing thinking indicator")
	s.SetThinking(false)
	return true
}

func (s *Session) Status() string {
	return s.status
}

// ToggleLastReasoning folds or unfolds the newest reasoning block.
func (s *Session) ToggleLastReasoning() bool {
	nodes := s.store.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		if nodes[i].HasReasoning() {
			return s.store.ToggleReasoning(nodes[i].ID)
		}
	}
	return false
}

// LastCopyable returns the raw markdown of the newest confirmed answer.
func (s *Session) LastCopyable() (string, bool) {
	nodes := s.store.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if n.Footer.Copyable && n.Finalized && n.Raw != "" {
			return n.Raw, true
		}
	}
	return "", false
}

// ForgetChat drops cached data of a deleted chat.
func (s *Session) ForgetChat(id int64) {
	if s.history == nil {
		return
	}
	if err := s.history.DeleteChat(id); err != nil {
		s.log.Warn("forget chat %d: %v", id, err)
	}
}

func (s *Session) save(m protocol.Message) {
	if s.history == nil || m.ID == 0 {
		return
	}
	if err := s.history.SaveMessage(m); err != nil {
		s.log.Warn("cache message %d: %v", m.ID, err)
	}
}

func (s *Session) relevant(chatID *int64) bool {
	return chatID == nil || s.active.IsRelevant(*chatID)
}

// Router handlers

func (s *Session) OnSystem(p *protocol.ContentPayload) error {
	s.store.Append(render.KindNotice, p.Content)
	return nil
}

func (s *Session) OnStatus(p *protocol.StatusPayload) error {
	if s.relevant(p.ChatID) {
		s.status = p.Message
	}
	return nil
}

func (s *Session) OnError(p *protocol.ErrorPayload) error {
	s.notify(p.Message, "error")
	if s.relevant(p.ChatID) {
		s.store.Append(render.KindError, p.Message)
	}
	return nil
}

func (s *Session) OnUserMessage(m *protocol.Message) error {
	s.save(*m)
	if !s.active.IsRelevant(m.ChatID) {
		return nil
	}

	id := protocol.FormatID(m.ID)
	if s.store.Get(id) != nil {
		return nil
	}
	if placeholder, ok := s.matchPending(m.Content); ok {
		return s.rename(placeholder, id)
	}
	replay := *m
	replay.Role = protocol.RoleUser
	return s.assembler.Replay(replay)
}

func (s *Session) OnAssistantMessage(m *protocol.Message) error {
	s.save(*m)

	outcome, err := s.assembler.Complete(m)
	if err != nil {
		return err
	}
	if outcome == stream.OutcomeIgnoredChat || outcome == stream.OutcomeRemoved {
		return nil
	}
	return s.store.Confirm(protocol.FormatID(m.ID), m.Content, m.TokensUsed)
}

func (s *Session) OnChunk(c *protocol.ChunkPayload) error {
	if s.creating && !s.active.IsRelevant(c.ChatID) {
		if len(s.held) < maxHeldChunks {
			s.held = append(s.held, *c)
		}
		return nil
	}

	outcome, err := s.assembler.Apply(c)
	if err != nil {
		return err
	}
	if outcome == stream.OutcomeLateChunk {
		s.log.Debug("late chunk for chat %d", c.ChatID)
	}
	return nil
}

func (s *Session) OnModelList(models []protocol.Model) error {
	if s.models.Apply(models) {
		s.log.Debug("active model is now %d", s.models.SelectedID())
	}
	return nil
}

func (s *Session) OnChatList(chats []protocol.Chat) error {
	if s.chats.Apply(chats) {
		s.reload = true
	}
	if s.history != nil {
		if err := s.history.SaveChats(chats); err != nil {
			s.log.Warn("cache chat list: %v", err)
		}
	}
	return nil
}

func (s *Session) OnRemove(p *protocol.RemovePayload) error {
	if !s.relevant(p.ChatID) {
		return nil
	}

	id := protocol.FormatID(p.MessageID)
	if !s.store.Remove(id) {
		s.log.Debug("remove: message %s not shown", id)
	}
	s.assembler.Remove(id, protocol.Int64(p.ChatID))

	if s.history != nil {
		if err := s.history.DeleteMessage(p.MessageID); err != nil {
			s.log.Warn("uncache message %s: %v", id, err)
		}
	}
	return nil
}
