// ABOUTME: Bubble Tea messages and commands for socket events and REST calls
// ABOUTME: REST results carry a sequence number so stale responses can be discarded
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ramborogers/cyberai-tui/internal/logger"
	"github.com/ramborogers/cyberai-tui/internal/protocol"
	"github.com/ramborogers/cyberai-tui/internal/tui/client"
)

type connEventMsg client.ConnEvent

type connDoneMsg struct{}

type modelsLoadedMsg struct {
	seq    uint64
	models []protocol.Model
	err    error
}

type chatsLoadedMsg struct {
	seq   uint64
	chats []protocol.Chat
	err   error
}

type chatLoadedMsg struct {
	seq    uint64
	chatID int64
	chat   *protocol.Chat
	err    error
}

type messageSentMsg struct {
	placeholder string
	msg         *protocol.Message
	err         error
}

type chatCreatedMsg struct {
	placeholder string
	chat        *protocol.Chat
	err         error
}

type regeneratedMsg struct {
	err error
}

type chatDeletedMsg struct {
	chatID int64
	err    error
}

type thinkingTimeoutMsg struct {
	gen uint64
}

// waitForConnEvent blocks for the next socket event. The update loop issues
// it again after every event, so events are handled one at a time in order.
func waitForConnEvent(conn *client.ConnectionManager) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-conn.Events():
			return connEventMsg(ev)
		case <-conn.Done():
			return connDoneMsg{}
		}
	}
}

func connect(ctx context.Context, conn *client.ConnectionManager) tea.Cmd {
	return func() tea.Msg {
		if err := conn.Connect(ctx); err != nil {
			logger.Scope("tui").Debug("connect: %v", err)
		}
		return nil
	}
}

func fetchModels(ctx context.Context, api *client.APIClient, seq uint64) tea.Cmd {
	return func() tea.Msg {
		models, err := api.ListModels(ctx)
		return modelsLoadedMsg{seq: seq, models: models, err: err}
	}
}

func fetchChats(ctx context.Context, api *client.APIClient, seq uint64) tea.Cmd {
	return func() tea.Msg {
		chats, err := api.ListChats(ctx)
		return chatsLoadedMsg{seq: seq, chats: chats, err: err}
	}
}

func fetchChat(ctx context.Context, api *client.APIClient, seq uint64, chatID int64) tea.Cmd {
	return func() tea.Msg {
		chat, err := api.GetChat(ctx, chatID)
		return chatLoadedMsg{seq: seq, chatID: chatID, chat: chat, err: err}
	}
}

func sendMessage(ctx context.Context, api *client.APIClient, placeholder string, chatID int64, content string, modelID int64) tea.Cmd {
	return func() tea.Msg {
		msg, err := api.SendMessage(ctx, chatID, content, modelID)
		return messageSentMsg{placeholder: placeholder, msg: msg, err: err}
	}
}

func createChat(ctx context.Context, api *client.APIClient, placeholder, content string, modelID int64) tea.Cmd {
	return func() tea.Msg {
		chat, err := api.CreateChat(ctx, content, modelID)
		return chatCreatedMsg{placeholder: placeholder, chat: chat, err: err}
	}
}

func regenerate(ctx context.Context, api *client.APIClient, chatID, modelID int64) tea.Cmd {
	return func() tea.Msg {
		return regeneratedMsg{err: api.Regenerate(ctx, chatID, modelID)}
	}
}

func deleteChat(ctx context.Context, api *client.APIClient, chatID int64) tea.Cmd {
	return func() tea.Msg {
		return chatDeletedMsg{chatID: chatID, err: api.DeleteChat(ctx, chatID)}
	}
}

func thinkingTimeout(d time.Duration, gen uint64) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return thinkingTimeoutMsg{gen: gen}
	})
}
