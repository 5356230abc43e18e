// ABOUTME: Entry point for the CyberAI terminal chat client
// ABOUTME: Loads configuration, sets up logging and the gateway clients, then starts the Bubbletea application
package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ramborogers/cyberai-tui/internal/config"
	apperrors "github.com/ramborogers/cyberai-tui/internal/errors"
	"github.com/ramborogers/cyberai-tui/internal/logger"
	"github.com/ramborogers/cyberai-tui/internal/tui"
	"github.com/ramborogers/cyberai-tui/internal/tui/client"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configPath string
	debug      bool
	relayURL   string
)

var rootCmd = &cobra.Command{
	Use:           "cyberai-tui",
	Short:         "Terminal chat client for the CyberAI gateway",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cyberai-tui %s (built %s)\n", version, buildTime)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "config file path (default is $XDG_CONFIG_HOME/cyberai-tui/config.yaml)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "log at debug level, including UI traces")
	rootCmd.Flags().StringVar(&relayURL, "url", "", "gateway websocket URL, overrides relay.url")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s", apperrors.Explain(err).Format())
		os.Exit(1)
	}
}

func run() error {
	// .env is optional
	_ = godotenv.Load(".env")

	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return apperrors.NewConfigError(path, err)
	}
	if relayURL != "" {
		if err := overrideRelayURL(cfg, relayURL); err != nil {
			return err
		}
	}

	logFile, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer func() { _ = logFile.Close() }()
	}

	header := http.Header{}
	if cfg.Relay.Token != "" {
		header.Set("Authorization", "Bearer "+cfg.Relay.Token)
	}
	conn := client.NewConnectionManager(cfg.Relay.URL, client.ConnectionOptions{
		ReconnectDelay: cfg.Relay.ReconnectDelay,
		DialRetryDelay: cfg.Relay.DialRetryDelay,
		Header:         header,
	})
	api := client.NewAPIClient(cfg.Relay.APIURL, cfg.Relay.Token, cfg.Relay.RequestTimeout)

	deps := tui.Deps{Conn: conn, API: api}
	if cfg.History.Enabled {
		history, err := client.OpenHistory(cfg.History.Path)
		if err != nil {
			// run without the cache rather than refuse to start
			logger.Warn("history cache disabled: %s", apperrors.Summary(err))
		} else {
			defer func() { _ = history.Close() }()
			deps.History = history
		}
	}

	logger.Info("starting cyberai-tui %s against %s", version, cfg.Relay.URL)

	m := tui.NewModel(cfg, deps)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// overrideRelayURL applies --url and re-derives the REST base from it.
func overrideRelayURL(cfg *config.Config, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		return fmt.Errorf("invalid --url %q: want ws:// or wss://", raw)
	}
	cfg.Relay.URL = raw
	cfg.Relay.APIURL = config.DeriveAPIURL(u)
	return nil
}

// setupLogging sends log output to the configured file. The terminal belongs
// to the UI, so disabled logging discards instead of writing to stderr.
func setupLogging(cfg *config.Config) (*os.File, error) {
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))

	if !cfg.Logging.Enabled && !debug {
		logger.SetOutput(io.Discard)
		return nil, nil
	}

	dir := filepath.Dir(cfg.Logging.File)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, apperrors.NewXDGPathError("XDG_STATE_HOME", dir, err)
	}
	f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)

	if debug {
		logger.SetVerbose(true)
	}
	return f, nil
}
