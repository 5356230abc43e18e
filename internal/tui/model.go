// ABOUTME: Core Bubbletea model and state management for the TUI
// ABOUTME: Holds components, the gateway clients, and the chat session behind the router
package tui

import (
	"context"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ramborogers/cyberai-tui/internal/config"
	"github.com/ramborogers/cyberai-tui/internal/logger"
	"github.com/ramborogers/cyberai-tui/internal/render"
	"github.com/ramborogers/cyberai-tui/internal/router"
	"github.com/ramborogers/cyberai-tui/internal/tui/client"
	"github.com/ramborogers/cyberai-tui/internal/tui/components"
	"github.com/ramborogers/cyberai-tui/internal/tui/theme"
)

// FocusArea represents which component currently has focus
type FocusArea int

const (
	FocusSidebar FocusArea = iota
	FocusChatView
	FocusInputArea
)

// Deps are the gateway clients the model talks to. History may be nil.
type Deps struct {
	Conn    *client.ConnectionManager
	API     *client.APIClient
	History *client.HistoryCache
	// Renderer defaults to a glamour renderer for the configured theme.
	Renderer render.Renderer
	// Clipboard defaults to the system clipboard.
	Clipboard func(string) error
}

type Model struct {
	config *config.Config
	theme  theme.Theme
	keys   KeyMap
	width  int
	height int

	// Components
	sidebar       *components.Sidebar
	chatView      *components.ChatView
	inputArea     *components.InputArea
	statusBar     *components.StatusBar
	helpOverlay   *components.HelpOverlay
	notifications *components.NotificationComponent

	// Gateway and chat state
	ctx       context.Context
	cancel    context.CancelFunc
	conn      *client.ConnectionManager
	api       *client.APIClient
	history   *client.HistoryCache
	seq       *client.Sequencer
	store     *render.Store
	models    *client.ModelList
	chats     *client.ChatList
	session   *Session
	router    *router.Router
	clipboard func(string) error
	log       logger.Scoped

	// UI state
	focusedArea    FocusArea
	sidebarVisible bool
	connected      bool
	reconnecting   bool
	dialFailures   int
}

func NewModel(cfg *config.Config, deps Deps) Model {
	th := theme.GetTheme(cfg.UI.Theme)
	keys := NewKeyMap(cfg.Keybindings)

	renderer := deps.Renderer
	if renderer == nil {
		renderer = render.NewTermRenderer(cfg.UI.WordWrap, th.GlamourStyle())
	}
	copyFn := deps.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	store := render.NewStore(renderer)
	store.SetReasoningCollapsed(cfg.UI.CollapseReasoning)
	models := client.NewModelList()
	chats := client.NewChatList()
	session := NewSession(store, models, chats, deps.History)

	// Initialize components with default dimensions (resized on first WindowSizeMsg)
	chatView := components.NewChatView(80, 20, th)
	chatView.SetToggleKey(cfg.Keybindings.ToggleReasoning)
	inputArea := components.NewInputArea(80, 4, th)
	inputArea.SetSendKey(cfg.Keybindings.SendMessage)
	statusBar := components.NewStatusBar(80, th)
	statusBar.SetHint("Tab: Navigate, " + cfg.Keybindings.Help + ": Help")

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		config:         cfg,
		theme:          th,
		keys:           keys,
		sidebar:        components.NewSidebar(cfg.UI.SidebarWidth, 24, th),
		chatView:       chatView,
		inputArea:      inputArea,
		statusBar:      statusBar,
		helpOverlay:    components.NewHelpOverlay(80, 24, th, keys.Shortcuts()),
		notifications:  components.NewNotificationComponent(80, th),
		ctx:            ctx,
		cancel:         cancel,
		conn:           deps.Conn,
		api:            deps.API,
		history:        deps.History,
		seq:            client.NewSequencer(),
		store:          store,
		models:         models,
		chats:          chats,
		session:        session,
		router:         router.New(session, session),
		clipboard:      copyFn,
		log:            logger.Scope("tui"),
		focusedArea:    FocusInputArea,
		sidebarVisible: cfg.UI.SidebarDefaultVisible,
	}
}

// Init restores the cached chat list and last chat, then connects.
func (m Model) Init() tea.Cmd {
	m.restoreFromCache()
	m.refresh()

	m.statusBar.SetConnectionStatus(components.StatusConnecting)
	return tea.Batch(
		m.inputArea.Focus(),
		m.inputArea.Init(),
		connect(m.ctx, m.conn),
		waitForConnEvent(m.conn),
	)
}

// restoreFromCache shows what the history cache has so the window is not
// empty while the gateway answers.
func (m Model) restoreFromCache() {
	if m.history == nil {
		return
	}

	chats, err := m.history.Chats()
	if err != nil {
		m.log.Warn("read cached chats: %v", err)
		return
	}
	m.chats.Apply(chats)

	last, err := m.history.LastChat()
	if err != nil || last == 0 {
		return
	}
	if err := m.chats.Select(last); err != nil {
		return
	}
	m.session.SwitchChat(last)
	if n, err := m.session.LoadCached(last); err != nil {
		m.log.Warn("%v", err)
	} else {
		m.log.Debug("restored %d cached messages of chat %d", n, last)
	}
}

// Close stops the connection manager and in-flight requests.
func (m Model) Close() {
	m.cancel()
	if m.conn != nil {
		_ = m.conn.Close()
	}
}
