// ABOUTME: Tests for config loading, env overrides, default file creation, and clamping
// ABOUTME: Uses temp XDG dirs so no test touches the real user config

package config

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	return dir
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	content := `
relay:
  url: wss://chat.example.com/ws
  token: secret
  reconnect_delay: 1s
ui:
  theme: light
  sidebar_width: 30
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "wss://chat.example.com/ws", cfg.Relay.URL)
	assert.Equal(t, "https://chat.example.com", cfg.Relay.APIURL)
	assert.Equal(t, "secret", cfg.Relay.Token)
	assert.Equal(t, time.Second, cfg.Relay.ReconnectDelay)
	assert.Equal(t, 5*time.Second, cfg.Relay.DialRetryDelay, "unset keys keep defaults")
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.Equal(t, 30, cfg.UI.SidebarWidth)
	assert.Equal(t, "ctrl+b", cfg.Keybindings.ToggleSidebar)
}

func TestLoad_CreatesDefaultFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/ws", cfg.Relay.URL)
	assert.Equal(t, "http://localhost:8080", cfg.Relay.APIURL)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "reconnect_delay: 3s")
	assert.Contains(t, string(data), "thinking_timeout: 30s")

	// the written file loads back to the same values
	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Relay, again.Relay)
	assert.Equal(t, cfg.UI, again.UI)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("relay:\n  url: ws://file:1/ws\n"), 0o600))

	t.Setenv("CYBERAI_RELAY_URL", "ws://env:2/ws")
	t.Setenv("CYBERAI_RELAY_TOKEN", "from-env")
	t.Setenv("CYBERAI_UI_THINKING_TIMEOUT", "45s")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "ws://env:2/ws", cfg.Relay.URL)
	assert.Equal(t, "from-env", cfg.Relay.Token)
	assert.Equal(t, 45*time.Second, cfg.UI.ThinkingTimeout)
}

func TestLoad_InvalidURL(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("relay:\n  url: http://nope\n"), 0o600))

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid relay.url")
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("relay: [unclosed"), 0o600))

	_, err := Load(path)

	assert.Error(t, err)
}

func TestValidate_Clamps(t *testing.T) {
	isolate(t)
	cfg := DefaultConfig()
	cfg.UI.SidebarWidth = 5
	cfg.UI.WordWrap = 1000
	cfg.UI.ThinkingTimeout = 0
	cfg.Relay.ReconnectDelay = time.Millisecond
	cfg.Relay.RequestTimeout = time.Hour
	cfg.UI.Theme = "neon"

	require.NoError(t, cfg.Validate())

	assert.Equal(t, 20, cfg.UI.SidebarWidth)
	assert.Equal(t, 200, cfg.UI.WordWrap)
	assert.Equal(t, time.Second, cfg.UI.ThinkingTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Relay.ReconnectDelay)
	assert.Equal(t, 5*time.Minute, cfg.Relay.RequestTimeout)
	assert.Equal(t, "dark", cfg.UI.Theme)
}

func TestValidate_Keybindings(t *testing.T) {
	isolate(t)
	cfg := DefaultConfig()
	cfg.Keybindings.Quit = ""
	cfg.Keybindings.Regenerate = "  "
	cfg.Keybindings.NewChat = "ctrl+x"

	require.NoError(t, cfg.Validate())

	assert.Equal(t, "ctrl+c", cfg.Keybindings.Quit)
	assert.Equal(t, "ctrl+r", cfg.Keybindings.Regenerate)
	assert.Equal(t, "ctrl+x", cfg.Keybindings.NewChat)
}

func TestValidate_LogLevel(t *testing.T) {
	isolate(t)
	tests := []struct {
		in, want string
	}{
		{"DEBUG", "debug"},
		{"warn", "warn"},
		{"verbose", "info"},
		{"", "info"},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Logging.Level = tt.in
		require.NoError(t, cfg.Validate())
		assert.Equal(t, tt.want, cfg.Logging.Level, "level %q", tt.in)
	}
}

func TestValidate_ExpandsPaths(t *testing.T) {
	dir := isolate(t)
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())

	assert.Equal(t, filepath.Join(dir, "data", "cyberai-tui", "history.sqlite"), cfg.History.Path)
	assert.Equal(t, filepath.Join(dir, "state", "cyberai-tui", "tui.log"), cfg.Logging.File)
}

func TestValidate_KeepsExplicitAPIURL(t *testing.T) {
	isolate(t)
	cfg := DefaultConfig()
	cfg.Relay.APIURL = "http://api.internal:9000"

	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://api.internal:9000", cfg.Relay.APIURL)
}

func TestDeriveAPIURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ws://localhost:8080/ws", "http://localhost:8080"},
		{"wss://chat.example.com/ws", "https://chat.example.com"},
		{"ws://host", "http://host"},
	}
	for _, tt := range tests {
		u, err := url.Parse(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, DeriveAPIURL(u))
	}
}

func TestDefaultPath(t *testing.T) {
	dir := isolate(t)

	assert.Equal(t, filepath.Join(dir, "config", "cyberai-tui", "config.yaml"), DefaultPath())
}
