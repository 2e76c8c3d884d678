// Command o1chat is a terminal chat client that polls a set of mirror servers.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/and161185/o1chat/internal/chat"
	"github.com/and161185/o1chat/internal/config"
	"github.com/and161185/o1chat/internal/errs"
	"github.com/and161185/o1chat/internal/failover"
	"github.com/and161185/o1chat/internal/transport"
)

func main() {
	servers := flag.String("servers", strings.Join(config.DefaultServers, ","), "comma separated server URLs in failover order")
	timeout := flag.Duration("timeout", transport.DefaultTimeout, "per-attempt request timeout")
	usersEvery := flag.Duration("users-every", chat.DefaultUsersEvery, "user list poll interval")
	messagesEvery := flag.Duration("messages-every", chat.DefaultMessagesEvery, "conversation poll interval")
	logPath := flag.String("log", filepath.Join(config.Dir(), "o1chat.log"), "log file")
	cfgPath := flag.String("config", config.Path(), "config file")
	flag.Parse()

	set := config.ParseServers(*servers)
	if len(set) == 0 {
		fail(errs.ErrNoServers)
	}

	logger, err := newLogger(*logPath)
	if err != nil {
		fail(err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting", zap.Strings("servers", set), zap.Duration("timeout", *timeout))

	store := config.NewStore(*cfgPath)
	cfg, err := store.Load()
	if err != nil {
		logger.Warn("load config", zap.Error(err))
		cfg = config.File{Lang: config.DefaultLang}
	}

	ev := newEvents()
	core := chat.New(chat.Options{
		Servers:       failover.ServerSet(set),
		Transport:     transport.NewHTTP(&http.Client{}, *timeout, logger),
		Store:         store,
		Listener:      ev,
		UsersEvery:    *usersEvery,
		MessagesEvery: *messagesEvery,
		Log:           logger,
	})

	// a stored identity skips registration
	if cfg.Username != "" {
		if err := core.Resume(cfg.Username); err != nil {
			logger.Warn("resume", zap.String("identity", cfg.Username), zap.Error(err))
		}
	}

	prog := tea.NewProgram(newUI(core, store, ev, cfg.Lang, logger), tea.WithAltScreen())
	_, runErr := prog.Run()
	ev.close()
	core.Close()
	if runErr != nil {
		fail(runErr)
	}
}

// newLogger writes JSON logs to path so the terminal stays with the UI.
func newLogger(path string) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
