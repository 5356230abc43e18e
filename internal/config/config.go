// ABOUTME: Configuration for cyberai-tui: YAML file under XDG config, CYBERAI_* env overrides
// ABOUTME: Creates the file with defaults on first run and clamps values in Validate
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ramborogers/cyberai-tui/internal/xdg"
)

// EnvPrefix prefixes environment overrides, e.g. CYBERAI_RELAY_URL.
const EnvPrefix = "CYBERAI"

type Config struct {
	Relay       RelayConfig       `mapstructure:"relay" yaml:"relay"`
	UI          UIConfig          `mapstructure:"ui" yaml:"ui"`
	Keybindings KeybindingsConfig `mapstructure:"keybindings" yaml:"keybindings"`
	History     HistoryConfig     `mapstructure:"history" yaml:"history"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
}

type RelayConfig struct {
	// URL is the gateway websocket endpoint.
	URL string `mapstructure:"url" yaml:"url"`
	// APIURL is the REST base; derived from URL when empty.
	APIURL         string        `mapstructure:"api_url" yaml:"api_url"`
	Token          string        `mapstructure:"token" yaml:"token"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay" yaml:"reconnect_delay"`
	DialRetryDelay time.Duration `mapstructure:"dial_retry_delay" yaml:"dial_retry_delay"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

type UIConfig struct {
	Theme                 string        `mapstructure:"theme" yaml:"theme"`
	SidebarWidth          int           `mapstructure:"sidebar_width" yaml:"sidebar_width"`
	SidebarDefaultVisible bool          `mapstructure:"sidebar_default_visible" yaml:"sidebar_default_visible"`
	WordWrap              int           `mapstructure:"word_wrap" yaml:"word_wrap"`
	ThinkingTimeout       time.Duration `mapstructure:"thinking_timeout" yaml:"thinking_timeout"`
	CollapseReasoning     bool          `mapstructure:"collapse_reasoning" yaml:"collapse_reasoning"`
}

type KeybindingsConfig struct {
	ToggleSidebar   string `mapstructure:"toggle_sidebar" yaml:"toggle_sidebar"`
	NewChat         string `mapstructure:"new_chat" yaml:"new_chat"`
	DeleteChat      string `mapstructure:"delete_chat" yaml:"delete_chat"`
	Regenerate      string `mapstructure:"regenerate" yaml:"regenerate"`
	CopyMessage     string `mapstructure:"copy_message" yaml:"copy_message"`
	ToggleReasoning string `mapstructure:"toggle_reasoning" yaml:"toggle_reasoning"`
	NextModel       string `mapstructure:"next_model" yaml:"next_model"`
	SendMessage     string `mapstructure:"send_message" yaml:"send_message"`
	Quit            string `mapstructure:"quit" yaml:"quit"`
	Help            string `mapstructure:"help" yaml:"help"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

type LoggingConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Level   string `mapstructure:"level" yaml:"level"`
	File    string `mapstructure:"file" yaml:"file"`
}

func DefaultConfig() *Config {
	return &Config{
		Relay: RelayConfig{
			URL:            "ws://localhost:8080/ws",
			ReconnectDelay: 3 * time.Second,
			DialRetryDelay: 5 * time.Second,
			RequestTimeout: 10 * time.Second,
		},
		UI: UIConfig{
			Theme:                 "dark",
			SidebarWidth:          28,
			SidebarDefaultVisible: true,
			WordWrap:              100,
			ThinkingTimeout:       30 * time.Second,
			CollapseReasoning:     true,
		},
		Keybindings: defaultKeybindings(),
		History: HistoryConfig{
			Enabled: true,
			Path:    "$XDG_DATA_HOME/" + xdg.AppName + "/history.sqlite",
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
			File:    "$XDG_STATE_HOME/" + xdg.AppName + "/tui.log",
		},
	}
}

func defaultKeybindings() KeybindingsConfig {
	return KeybindingsConfig{
		ToggleSidebar:   "ctrl+b",
		NewChat:         "ctrl+n",
		DeleteChat:      "ctrl+d",
		Regenerate:      "ctrl+r",
		CopyMessage:     "ctrl+y",
		ToggleReasoning: "ctrl+t",
		NextModel:       "ctrl+o",
		SendMessage:     "ctrl+s",
		Quit:            "ctrl+c",
		Help:            "f1",
	}
}

// DefaultPath is $XDG_CONFIG_HOME/cyberai-tui/config.yaml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome(), "config.yaml")
}

// Load reads the config file (creating it with defaults if missing), applies
// CYBERAI_* environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	defaults := DefaultConfig()

	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	setDefaults(v, defaults)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		// a read-only config dir is not fatal, run on defaults
		_ = saveDefault(defaults, path)
	} else {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("relay.url", d.Relay.URL)
	v.SetDefault("relay.api_url", d.Relay.APIURL)
	v.SetDefault("relay.token", d.Relay.Token)
	v.SetDefault("relay.reconnect_delay", d.Relay.ReconnectDelay)
	v.SetDefault("relay.dial_retry_delay", d.Relay.DialRetryDelay)
	v.SetDefault("relay.request_timeout", d.Relay.RequestTimeout)

	v.SetDefault("ui.theme", d.UI.Theme)
	v.SetDefault("ui.sidebar_width", d.UI.SidebarWidth)
	v.SetDefault("ui.sidebar_default_visible", d.UI.SidebarDefaultVisible)
	v.SetDefault("ui.word_wrap", d.UI.WordWrap)
	v.SetDefault("ui.thinking_timeout", d.UI.ThinkingTimeout)
	v.SetDefault("ui.collapse_reasoning", d.UI.CollapseReasoning)

	k := d.Keybindings
	v.SetDefault("keybindings.toggle_sidebar", k.ToggleSidebar)
	v.SetDefault("keybindings.new_chat", k.NewChat)
	v.SetDefault("keybindings.delete_chat", k.DeleteChat)
	v.SetDefault("keybindings.regenerate", k.Regenerate)
	v.SetDefault("keybindings.copy_message", k.CopyMessage)
	v.SetDefault("keybindings.toggle_reasoning", k.ToggleReasoning)
	v.SetDefault("keybindings.next_model", k.NextModel)
	v.SetDefault("keybindings.send_message", k.SendMessage)
	v.SetDefault("keybindings.quit", k.Quit)
	v.SetDefault("keybindings.help", k.Help)

	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.path", d.History.Path)

	v.SetDefault("logging.enabled", d.Logging.Enabled)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
}

// Validate clamps numeric settings, fills empty keybindings, expands paths,
// and derives the REST base URL. Only an unusable relay URL is an error.
func (c *Config) Validate() error {
	if c.UI.SidebarWidth < 20 {
		c.UI.SidebarWidth = 20
	}
	if c.UI.SidebarWidth > 40 {
		c.UI.SidebarWidth = 40
	}
	if c.UI.WordWrap < 40 {
		c.UI.WordWrap = 40
	}
	if c.UI.WordWrap > 200 {
		c.UI.WordWrap = 200
	}
	if c.UI.ThinkingTimeout < time.Second {
		c.UI.ThinkingTimeout = time.Second
	}

	c.Relay.ReconnectDelay = clampDuration(c.Relay.ReconnectDelay, 100*time.Millisecond, 5*time.Minute)
	c.Relay.DialRetryDelay = clampDuration(c.Relay.DialRetryDelay, 100*time.Millisecond, 5*time.Minute)
	c.Relay.RequestTimeout = clampDuration(c.Relay.RequestTimeout, time.Second, 5*time.Minute)

	switch c.UI.Theme {
	case "dark", "light", "notty":
	default:
		c.UI.Theme = "dark"
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
		c.Logging.Level = strings.ToLower(c.Logging.Level)
	default:
		c.Logging.Level = "info"
	}

	c.fillKeybindings()

	c.History.Path = xdg.ExpandPath(c.History.Path)
	c.Logging.File = xdg.ExpandPath(c.Logging.File)

	u, err := url.Parse(c.Relay.URL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return fmt.Errorf("invalid relay.url: %q (must be ws:// or wss://)", c.Relay.URL)
	}
	if c.Relay.APIURL == "" {
		c.Relay.APIURL = DeriveAPIURL(u)
	}
	return nil
}

func (c *Config) fillKeybindings() {
	d := defaultKeybindings()
	fill := func(v *string, def string) {
		if strings.TrimSpace(*v) == "" {
			*v = def
		}
	}
	k := &c.Keybindings
	fill(&k.ToggleSidebar, d.ToggleSidebar)
	fill(&k.NewChat, d.NewChat)
	fill(&k.DeleteChat, d.DeleteChat)
	fill(&k.Regenerate, d.Regenerate)
	fill(&k.CopyMessage, d.CopyMessage)
	fill(&k.ToggleReasoning, d.ToggleReasoning)
	fill(&k.NextModel, d.NextModel)
	fill(&k.SendMessage, d.SendMessage)
	fill(&k.Quit, d.Quit)
	fill(&k.Help, d.Help)
}

// DeriveAPIURL maps ws://host/ws to http://host (wss to https).
func DeriveAPIURL(u *url.URL) string {
	scheme := "http"
	if u.Scheme == "wss" {
		scheme = "https"
	}
	return scheme + "://" + u.Host
}

func clampDuration(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}

// fileRelay and fileUI mirror the config sections with durations written as
// strings ("3s") so the generated file stays readable.
type fileRelay struct {
	URL            string `yaml:"url"`
	APIURL         string `yaml:"api_url"`
	Token          string `yaml:"token"`
	ReconnectDelay string `yaml:"reconnect_delay"`
	DialRetryDelay string `yaml:"dial_retry_delay"`
	RequestTimeout string `yaml:"request_timeout"`
}

func (r RelayConfig) MarshalYAML() (interface{}, error) {
	return fileRelay{
		URL:            r.URL,
		APIURL:         r.APIURL,
		Token:          r.Token,
		ReconnectDelay: r.ReconnectDelay.String(),
		DialRetryDelay: r.DialRetryDelay.String(),
		RequestTimeout: r.RequestTimeout.String(),
	}, nil
}

type fileUI struct {
	Theme                 string `yaml:"theme"`
	SidebarWidth          int    `yaml:"sidebar_width"`
	SidebarDefaultVisible bool   `yaml:"sidebar_default_visible"`
	WordWrap              int    `yaml:"word_wrap"`
	ThinkingTimeout       string `yaml:"thinking_timeout"`
	CollapseReasoning     bool   `yaml:"collapse_reasoning"`
}

func (u UIConfig) MarshalYAML() (interface{}, error) {
	return fileUI{
		Theme:                 u.Theme,
		SidebarWidth:          u.SidebarWidth,
		SidebarDefaultVisible: u.SidebarDefaultVisible,
		WordWrap:              u.WordWrap,
		ThinkingTimeout:       u.ThinkingTimeout.String(),
		CollapseReasoning:     u.CollapseReasoning,
	}, nil
}

func saveDefault(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}
