package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/and161185/o1chat/internal/locale"
	"github.com/and161185/o1chat/internal/model"
)

// chatCore is the part of chat.Core the UI drives.
type chatCore interface {
	Login(username string)
	SelectPeer(peer string)
	ComposeAndSend(text string)
	Logout()
}

// prefStore persists UI-owned preferences.
type prefStore interface {
	SaveLang(lang string) error
	SaveIdentity(username string) error
}

type screen int

const (
	screenLogin screen = iota
	screenChat
)

type focus int

const (
	focusPeers focus = iota
	focusCompose
)

const peerColumnWidth = 22

// ui is the bubbletea model. All fields are touched only from the tea loop.
type ui struct {
	core  chatCore
	store prefStore
	ev    *events
	log   *zap.Logger

	lang   string
	screen screen
	focus  focus
	width  int
	height int

	username textinput.Model
	compose  textinput.Model
	history  viewport.Model

	identity   string
	peers      []string
	cursor     int
	selected   string
	transcript model.Transcript
	status     model.Status
	pending    bool
	leaving    bool
	popup      string
	popupTitle locale.Key
}

func newUI(core chatCore, store prefStore, ev *events, lang string, log *zap.Logger) *ui {
	if log == nil {
		log = zap.NewNop()
	}
	u := &ui{
		core:     core,
		store:    store,
		ev:       ev,
		log:      log,
		lang:     lang,
		username: textinput.New(),
		compose:  textinput.New(),
		history:  viewport.New(0, 0),
	}
	u.username.CharLimit = 64
	u.username.Focus()
	u.compose.CharLimit = 1000
	u.relabel()
	u.popup = locale.T(lang, locale.SubscriptionEnded)
	return u
}

func (u *ui) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, u.ev.wait())
}

func (u *ui) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		u.resize(msg.Width, msg.Height)
		return u, nil
	case tea.KeyMsg:
		return u, u.onKey(msg)

	case loggedInMsg:
		u.identity = msg.identity
		u.screen = screenChat
		u.pending = false
		u.setFocus(focusPeers)
		return u, u.ev.wait()
	case loggedOutMsg:
		u.leaving = false
		return u, nil
	case loginFailedMsg:
		u.pending = false
		u.popup = locale.T(u.lang, locale.ForError(msg.err))
		u.popupTitle = locale.Error
		return u, u.ev.wait()
	case peersMsg:
		if u.screen == screenLogin {
			return u, u.ev.wait()
		}
		u.peers = msg.peers
		if u.cursor >= len(u.peers) {
			u.cursor = max(len(u.peers)-1, 0)
		}
		return u, u.ev.wait()
	case transcriptMsg:
		if u.screen == screenLogin {
			return u, u.ev.wait()
		}
		u.transcript = msg.transcript
		u.refreshHistory()
		return u, u.ev.wait()
	case sentMsg:
		// cleared on submit success even if the follow-up poll fails
		u.compose.Reset()
		return u, u.ev.wait()
	case statusMsg:
		u.status = msg.status
		return u, u.ev.wait()
	}
	return u, nil
}

func (u *ui) onKey(msg tea.KeyMsg) tea.Cmd {
	if u.popup != "" {
		if msg.String() == "ctrl+c" {
			return tea.Quit
		}
		u.popup, u.popupTitle = "", ""
		return nil
	}
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "ctrl+l":
		u.lang = locale.Toggle(u.lang)
		u.relabel()
		if err := u.store.SaveLang(u.lang); err != nil {
			u.log.Warn("persist language", zap.Error(err))
		}
		return nil
	}

	if u.screen == screenLogin {
		return u.onLoginKey(msg)
	}
	return u.onChatKey(msg)
}

func (u *ui) onLoginKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "enter" {
		name := strings.TrimSpace(u.username.Value())
		if name == "" || u.pending || u.leaving {
			return nil
		}
		u.pending = true
		u.core.Login(name)
		return nil
	}
	var cmd tea.Cmd
	u.username, cmd = u.username.Update(msg)
	return cmd
}

func (u *ui) onChatKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab":
		if u.focus == focusPeers {
			u.setFocus(focusCompose)
		} else {
			u.setFocus(focusPeers)
		}
		return nil
	case "ctrl+o":
		return u.logout()
	case "pgup", "pgdown":
		var cmd tea.Cmd
		u.history, cmd = u.history.Update(msg)
		return cmd
	}

	if u.focus == focusPeers {
		switch msg.String() {
		case "up", "k":
			if u.cursor > 0 {
				u.cursor--
			}
		case "down", "j":
			if u.cursor < len(u.peers)-1 {
				u.cursor++
			}
		case "enter":
			if u.cursor < len(u.peers) {
				u.selected = u.peers[u.cursor]
				u.core.SelectPeer(u.selected)
				u.setFocus(focusCompose)
			}
		}
		return nil
	}

	if msg.String() == "enter" {
		u.core.ComposeAndSend(u.compose.Value())
		return nil
	}
	var cmd tea.Cmd
	u.compose, cmd = u.compose.Update(msg)
	return cmd
}

// logout forgets the stored identity and stops the session off the UI loop,
// which keeps draining events while the pollers wind down.
func (u *ui) logout() tea.Cmd {
	if err := u.store.SaveIdentity(""); err != nil {
		u.log.Warn("clear identity", zap.Error(err))
	}
	u.screen = screenLogin
	u.identity = ""
	u.peers = nil
	u.cursor = 0
	u.selected = ""
	u.transcript = model.Transcript{}
	u.status = model.StatusUnknown
	u.compose.Reset()
	u.username.Reset()
	u.refreshHistory()
	u.setFocus(focusPeers)

	u.leaving = true
	core := u.core
	return func() tea.Msg {
		core.Logout()
		return loggedOutMsg{}
	}
}

func (u *ui) setFocus(f focus) {
	u.focus = f
	if u.screen == screenLogin {
		u.compose.Blur()
		u.username.Focus()
		return
	}
	u.username.Blur()
	if f == focusCompose {
		u.compose.Focus()
	} else {
		u.compose.Blur()
	}
}

func (u *ui) relabel() {
	u.username.Placeholder = locale.T(u.lang, locale.EnterUsername)
	u.compose.Placeholder = locale.T(u.lang, locale.TypeMessage)
}

func (u *ui) resize(w, h int) {
	u.width, u.height = w, h
	u.history.Width = max(w-peerColumnWidth-3, 10)
	u.history.Height = max(h-6, 3)
	u.compose.Width = max(u.history.Width-4, 10)
	u.refreshHistory()
}

func (u *ui) refreshHistory() {
	u.history.SetContent(renderEntries(u.transcript.Entries, u.history.Width))
	u.history.GotoBottom()
}
