// ABOUTME: Update logic for the TUI (handles all messages and state transitions)
// ABOUTME: Socket frames go through the router; REST results are checked against the sequencer
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/ramborogers/cyberai-tui/internal/errors"
	"github.com/ramborogers/cyberai-tui/internal/protocol"
	"github.com/ramborogers/cyberai-tui/internal/render"
	"github.com/ramborogers/cyberai-tui/internal/tui/client"
	"github.com/ramborogers/cyberai-tui/internal/tui/components"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateComponentSizes()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case connEventMsg:
		return m.handleConnEvent(client.ConnEvent(msg))

	case connDoneMsg:
		m.log.Debug("Update: connection manager stopped")
		return m, nil

	case modelsLoadedMsg:
		return m.onModelsLoaded(msg)

	case chatsLoadedMsg:
		return m.onChatsLoaded(msg)

	case chatLoadedMsg:
		return m.onChatLoaded(msg)

	case messageSentMsg:
		return m.onMessageSent(msg)

	case chatCreatedMsg:
		return m.onChatCreated(msg)

	case regeneratedMsg:
		if msg.err != nil {
			m.session.SetThinking(false)
			cmd := m.notifyErr("Regenerate failed", msg.err)
			return m, tea.Batch(cmd, m.syncThinking(m.session.ThinkingGen()))
		}
		return m, nil

	case chatDeletedMsg:
		return m.onChatDeleted(msg)

	case thinkingTimeoutMsg:
		if m.session.ExpireThinking(msg.gen) {
			m.refresh()
			return m, m.syncThinking(m.session.ThinkingGen())
		}
		return m, nil

	case components.DismissNotificationMsg:
		return m, m.notifications.Update(msg)

	case spinner.TickMsg:
		return m, m.statusBar.Update(msg)
	}

	// Everything else (blink, mouse) goes to the focused component
	var cmd tea.Cmd
	switch m.focusedArea {
	case FocusChatView:
		_, cmd = m.chatView.Update(msg)
	case FocusInputArea:
		_, cmd = m.inputArea.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Help overlay gets priority
	if m.helpOverlay.IsVisible() {
		if key.Matches(msg, m.keys.Help) || msg.String() == "esc" {
			m.helpOverlay.Toggle()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.helpOverlay.Toggle()
		return m, nil

	case key.Matches(msg, m.keys.ToggleSidebar):
		m.sidebarVisible = !m.sidebarVisible
		if !m.sidebarVisible && m.focusedArea == FocusSidebar {
			m.focusedArea = FocusChatView
		}
		m.updateComponentSizes()
		return m, nil

	case key.Matches(msg, m.keys.Focus):
		return m, m.cycleFocus()

	case key.Matches(msg, m.keys.NewChat):
		m.prepareNewChat()
		return m, nil

	case key.Matches(msg, m.keys.Regenerate):
		return m.regenerateLast()

	case key.Matches(msg, m.keys.CopyMessage):
		return m, m.copyLast()

	case key.Matches(msg, m.keys.ToggleReasoning):
		if m.session.ToggleLastReasoning() {
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.NextModel):
		return m, m.nextModel()

	case key.Matches(msg, m.keys.Send) && m.focusedArea == FocusInputArea:
		return m.sendMessage()
	}

	return m.handleFocusedInput(msg)
}

// handleFocusedInput routes key messages to the currently focused component
func (m Model) handleFocusedInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.focusedArea {
	case FocusSidebar:
		switch {
		case key.Matches(msg, m.keys.Up):
			m.sidebar.CursorUp()
		case key.Matches(msg, m.keys.Down):
			m.sidebar.CursorDown()
		case key.Matches(msg, m.keys.Open):
			if chat, ok := m.sidebar.SelectedChat(); ok {
				cmd = m.openChat(chat.ID)
			}
		case key.Matches(msg, m.keys.DeleteChat):
			if chat, ok := m.sidebar.SelectedChat(); ok {
				cmd = deleteChat(m.ctx, m.api, chat.ID)
			}
		}

	case FocusChatView:
		// ChatView handles its own scrolling via viewport
		_, cmd = m.chatView.Update(msg)

	case FocusInputArea:
		_, cmd = m.inputArea.Update(msg)
	}

	return m, cmd
}

func (m Model) handleConnEvent(ev client.ConnEvent) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{waitForConnEvent(m.conn)}

	switch ev.Kind {
	case client.ConnOpened:
		if !m.conn.IsCurrent(ev.Generation) {
			m.log.Debug("handleConnEvent: stale open for generation %d", ev.Generation)
			break
		}
		if m.reconnecting {
			cmds = append(cmds, m.notify("Reconnected", components.SeveritySuccess))
		}
		m.connected = true
		m.reconnecting = false
		m.dialFailures = 0
		m.statusBar.SetConnectionStatus(components.StatusConnected)
		cmds = append(cmds, m.resync())

	case client.ConnFrame:
		if !m.conn.IsCurrent(ev.Generation) {
			m.log.Debug("handleConnEvent: dropping frame from stale generation %d", ev.Generation)
			break
		}
		cmds = append(cmds, m.dispatch(ev.Frame))

	case client.ConnClosed:
		m.connected = false
		if ev.Retry > 0 {
			m.reconnecting = true
			m.statusBar.SetConnectionStatus(components.StatusConnecting)
			text := fmt.Sprintf("Connection lost (code %d), reconnecting in %s", ev.Code, ev.Retry)
			cmds = append(cmds, m.notify(text, components.SeverityWarning))
		} else {
			m.statusBar.SetConnectionStatus(components.StatusDisconnected)
		}

	case client.ConnError:
		m.connected = false
		m.reconnecting = true
		m.dialFailures++
		m.statusBar.SetConnectionStatus(components.StatusConnecting)
		if m.dialFailures == 1 {
			text := fmt.Sprintf("%s, retrying every %s", apperrors.Summary(ev.Err), ev.Retry)
			cmds = append(cmds, m.notify(text, components.SeverityError))
		}
		m.log.Debug("handleConnEvent: %v", ev.Err)
	}

	return m, tea.Batch(cmds...)
}

// dispatch routes one frame and applies the session's side effects.
func (m Model) dispatch(frame []byte) tea.Cmd {
	prevGen := m.session.ThinkingGen()

	if err := m.router.Dispatch(frame); err != nil {
		m.log.Warn("%v", err)
	}

	var cmds []tea.Cmd
	for _, n := range m.session.TakeNotices() {
		cmds = append(cmds, m.notify(n.Text, n.Severity))
	}
	if m.session.TakeReload() && !m.chats.PreparingNew() {
		if id := m.chats.SelectedID(); id != m.session.ActiveChat() {
			cmds = append(cmds, m.openSelected())
		}
	}
	cmds = append(cmds, m.syncThinking(prevGen))

	m.refresh()
	return tea.Batch(cmds...)
}

// syncThinking mirrors the indicator into the status bar and arms the
// timeout when it was switched on since prevGen.
func (m Model) syncThinking(prevGen uint64) tea.Cmd {
	var cmds []tea.Cmd
	if m.session.Thinking() && m.session.ThinkingGen() != prevGen {
		cmds = append(cmds, thinkingTimeout(m.config.UI.ThinkingTimeout, m.session.ThinkingGen()))
	}
	cmds = append(cmds, m.statusBar.SetThinking(m.session.Thinking()))
	return tea.Batch(cmds...)
}

// resync refetches models, then chats, then the active chat.
func (m Model) resync() tea.Cmd {
	return fetchModels(m.ctx, m.api, m.seq.Next(client.OpModels))
}

func (m Model) onModelsLoaded(msg modelsLoadedMsg) (tea.Model, tea.Cmd) {
	if !m.seq.IsCurrent(client.OpModels, msg.seq) {
		m.log.Debug("onModelsLoaded: stale response %d", msg.seq)
		return m, nil
	}

	var cmds []tea.Cmd
	if msg.err != nil {
		cmds = append(cmds, m.notifyErr("Loading models failed", msg.err))
	} else {
		m.models.Apply(msg.models)
	}
	cmds = append(cmds, fetchChats(m.ctx, m.api, m.seq.Next(client.OpChats)))

	m.refresh()
	return m, tea.Batch(cmds...)
}

func (m Model) onChatsLoaded(msg chatsLoadedMsg) (tea.Model, tea.Cmd) {
	if !m.seq.IsCurrent(client.OpChats, msg.seq) {
		m.log.Debug("onChatsLoaded: stale response %d", msg.seq)
		return m, nil
	}
	if msg.err != nil {
		return m, m.notifyErr("Loading chats failed", msg.err)
	}

	_ = m.session.OnChatList(msg.chats)
	m.session.TakeReload()
	cmd := m.openSelected()

	m.refresh()
	return m, cmd
}

func (m Model) onChatLoaded(msg chatLoadedMsg) (tea.Model, tea.Cmd) {
	if !m.seq.IsCurrent(client.OpLoad, msg.seq) {
		m.log.Debug("onChatLoaded: stale response for chat %d", msg.chatID)
		return m, nil
	}

	if msg.err != nil {
		cmd := m.notifyErr("Loading chat failed", msg.err)
		if client.IsNotFound(msg.err) {
			m.prepareNewChat()
		}
		return m, cmd
	}

	if err := m.session.LoadChat(*msg.chat); err != nil {
		m.log.Error("load chat %d: %v", msg.chatID, err)
	}
	m.refresh()
	m.chatView.ScrollToBottom()
	return m, nil
}

// openSelected opens the chat list's selection, or the new-chat state.
func (m Model) openSelected() tea.Cmd {
	id := m.chats.SelectedID()
	if m.chats.PreparingNew() || id == 0 {
		m.prepareNewChat()
		return nil
	}
	return m.openChat(id)
}

// openChat makes id the active chat, shows its cached copy, and loads it.
func (m Model) openChat(id int64) tea.Cmd {
	if err := m.chats.Select(id); err != nil {
		m.log.Warn("%v", err)
		return nil
	}
	if m.session.SwitchChat(id) {
		if _, err := m.session.LoadCached(id); err != nil {
			m.log.Warn("%v", err)
		}
	}
	m.refresh()
	return fetchChat(m.ctx, m.api, m.seq.Next(client.OpLoad), id)
}

// prepareNewChat enters the new-chat state; the chat is created on first send.
func (m Model) prepareNewChat() {
	m.seq.Invalidate(client.OpLoad)
	m.chats.PrepareNew()
	m.session.SwitchChat(0)
	m.refresh()
}

func (m Model) sendMessage() (tea.Model, tea.Cmd) {
	content := m.inputArea.Message()
	if content == "" {
		return m, nil
	}

	modelID := m.models.SelectedID()
	if modelID == 0 {
		return m, m.notify("No model available", components.SeverityWarning)
	}

	var cmds []tea.Cmd
	if !m.connected {
		cmds = append(cmds, m.notify("Not connected: the reply will show after reconnecting", components.SeverityWarning))
	}

	m.inputArea.Clear()
	prevGen := m.session.ThinkingGen()
	placeholder := m.session.AddPending(content)
	m.session.SetThinking(true)

	chatID := m.session.ActiveChat()
	if chatID == 0 {
		m.log.Debug("sendMessage: creating chat with first message (%d bytes)", len(content))
		m.session.BeginCreate()
		cmds = append(cmds, createChat(m.ctx, m.api, placeholder, content, modelID))
	} else {
		m.log.Debug("sendMessage: sending to chat %d (%d bytes)", chatID, len(content))
		cmds = append(cmds, sendMessage(m.ctx, m.api, placeholder, chatID, content, modelID))
	}
	cmds = append(cmds, m.syncThinking(prevGen))

	m.refresh()
	m.chatView.ScrollToBottom()
	return m, tea.Batch(cmds...)
}

func (m Model) onMessageSent(msg messageSentMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.session.DropPending(msg.placeholder)
		m.session.SetThinking(false)
		m.store.Append(render.KindError, "Failed to send: "+msg.err.Error())
		m.refresh()
		return m, tea.Batch(
			m.notifyErr("Send failed", msg.err),
			m.syncThinking(m.session.ThinkingGen()),
		)
	}

	if err := m.session.ConfirmSent(msg.placeholder, msg.msg); err != nil {
		m.log.Warn("confirm sent message: %v", err)
	}
	m.refresh()
	return m, nil
}

func (m Model) onChatCreated(msg chatCreatedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.session.FailCreate()
		m.session.DropPending(msg.placeholder)
		m.session.SetThinking(false)
		m.store.Append(render.KindError, "Failed to create chat: "+msg.err.Error())
		m.refresh()
		return m, tea.Batch(
			m.notifyErr("Creating chat failed", msg.err),
			m.syncThinking(m.session.ThinkingGen()),
		)
	}

	if err := m.session.AdoptCreated(*msg.chat); err != nil {
		m.log.Warn("adopt chat %d: %v", msg.chat.ID, err)
	}
	m.refresh()
	m.chatView.ScrollToBottom()
	return m, nil
}

func (m Model) regenerateLast() (tea.Model, tea.Cmd) {
	chatID := m.session.ActiveChat()
	if chatID == 0 {
		return m, m.notify("Nothing to regenerate", components.SeverityInfo)
	}
	modelID := m.models.SelectedID()
	if modelID == 0 {
		return m, m.notify("No model available", components.SeverityWarning)
	}

	prevGen := m.session.ThinkingGen()
	m.session.SetThinking(true)
	return m, tea.Batch(
		regenerate(m.ctx, m.api, chatID, modelID),
		m.syncThinking(prevGen),
	)
}

func (m Model) onChatDeleted(msg chatDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.notifyErr("Delete failed", msg.err)
	}

	m.session.ForgetChat(msg.chatID)
	var remaining []protocol.Chat
	for _, c := range m.chats.Items() {
		if c.ID != msg.chatID {
			remaining = append(remaining, c)
		}
	}
	m.chats.Apply(remaining)

	var cmd tea.Cmd
	if msg.chatID == m.session.ActiveChat() {
		cmd = m.openSelected()
	}
	m.refresh()
	return m, tea.Batch(cmd, m.notify("Chat deleted", components.SeveritySuccess))
}

func (m Model) copyLast() tea.Cmd {
	raw, ok := m.session.LastCopyable()
	if !ok {
		return m.notify("No answer to copy", components.SeverityInfo)
	}
	if err := m.clipboard(raw); err != nil {
		return m.notify("Copy failed: "+err.Error(), components.SeverityError)
	}
	return m.notify(fmt.Sprintf("Copied %d characters", len(raw)), components.SeveritySuccess)
}

// nextModel selects the model after the current one, wrapping around.
func (m Model) nextModel() tea.Cmd {
	items := m.models.Items()
	if len(items) == 0 {
		return m.notify("No model available", components.SeverityWarning)
	}
	next := items[0].ID
	for i, it := range items {
		if it.ID == m.models.SelectedID() {
			next = items[(i+1)%len(items)].ID
			break
		}
	}
	if err := m.models.Select(next); err != nil {
		m.log.Warn("%v", err)
	}
	m.refresh()
	return nil
}

func (m Model) notify(text, severity string) tea.Cmd {
	return m.notifications.Show(text, severity)
}

// notifyErr shows a failure toast and logs the raw error.
func (m Model) notifyErr(what string, err error) tea.Cmd {
	m.log.Warn("%s: %v", what, err)
	return m.notify(what+": "+apperrors.Summary(err), components.SeverityError)
}

// refresh pushes list, node and status state into the components.
func (m Model) refresh() {
	active := m.session.ActiveChat()

	m.sidebar.SetChats(m.chats.Items(), active)
	m.sidebar.SetModels(m.models.Items(), m.models.SelectedID())

	if active == 0 {
		m.chatView.SetEmptyText("New chat: type a message to start")
	} else {
		m.chatView.SetEmptyText("No messages yet")
	}
	m.chatView.SetNodes(m.store.Nodes(), m.store.Revision())

	m.statusBar.SetChat(m.chats.Title(active))
	if model, ok := m.models.Selected(); ok {
		m.statusBar.SetModel(model.Name)
	} else {
		m.statusBar.SetModel("")
	}
	m.statusBar.SetStatus(m.session.Status())
}

// updateComponentSizes recalculates and applies sizes to all components based on window dimensions
func (m *Model) updateComponentSizes() {
	if m.width == 0 || m.height == 0 {
		return
	}

	// Reserve space for status bar (1 line)
	statusBarHeight := 1
	availableHeight := m.height - statusBarHeight

	sidebarWidth := 0
	if m.sidebarVisible {
		sidebarWidth = m.config.UI.SidebarWidth
		if sidebarWidth > m.width/2 {
			sidebarWidth = m.width / 2
		}
	}

	mainWidth := m.width - sidebarWidth
	inputAreaHeight := 5
	if inputAreaHeight > availableHeight/3 {
		inputAreaHeight = availableHeight / 3
	}
	chatViewHeight := availableHeight - inputAreaHeight

	if m.sidebarVisible {
		m.sidebar.SetSize(sidebarWidth, availableHeight)
	}
	m.chatView.SetSize(mainWidth, chatViewHeight)
	m.inputArea.SetSize(mainWidth, inputAreaHeight)
	m.statusBar.SetSize(m.width)
	m.helpOverlay.SetSize(m.width, m.height)
	m.notifications.SetWidth(mainWidth)
}

// cycleFocus moves focus to the next component
func (m *Model) cycleFocus() tea.Cmd {
	if m.focusedArea == FocusInputArea {
		m.inputArea.Blur()
	}

	m.focusedArea = (m.focusedArea + 1) % 3

	// Skip sidebar if not visible
	if m.focusedArea == FocusSidebar && !m.sidebarVisible {
		m.focusedArea = FocusChatView
	}

	if m.focusedArea == FocusInputArea {
		return m.inputArea.Focus()
	}
	return nil
}
