package main

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/o1chat/internal/errs"
	"github.com/and161185/o1chat/internal/locale"
	"github.com/and161185/o1chat/internal/model"
)

type fakeCore struct {
	logins  []string
	selects []string
	sends   []string
	logouts int
}

var _ chatCore = (*fakeCore)(nil)

func (f *fakeCore) Login(username string)      { f.logins = append(f.logins, username) }
func (f *fakeCore) SelectPeer(peer string)     { f.selects = append(f.selects, peer) }
func (f *fakeCore) ComposeAndSend(text string) { f.sends = append(f.sends, text) }
func (f *fakeCore) Logout()                    { f.logouts++ }

type fakePrefs struct {
	langs      []string
	identities []string
}

var _ prefStore = (*fakePrefs)(nil)

func (f *fakePrefs) SaveLang(lang string) error {
	f.langs = append(f.langs, lang)
	return nil
}

func (f *fakePrefs) SaveIdentity(username string) error {
	f.identities = append(f.identities, username)
	return nil
}

func newTestUI(t *testing.T) (*ui, *fakeCore, *fakePrefs) {
	t.Helper()
	c, p := &fakeCore{}, &fakePrefs{}
	ev := newEvents()
	t.Cleanup(ev.close)
	u := newUI(c, p, ev, "en", zaptest.NewLogger(t))
	u.Update(tea.KeyMsg{Type: tea.KeyEsc}) // startup notice
	return u, c, p
}

func send(u *ui, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, m := range msgs {
		_, cmd = u.Update(m)
	}
	return cmd
}

func typeText(s string) tea.Msg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	down  = tea.KeyMsg{Type: tea.KeyDown}
)

func Test_startupNotice_ShownAndDismissed(t *testing.T) {
	ev := newEvents()
	defer ev.close()
	c := &fakeCore{}
	u := newUI(c, &fakePrefs{}, ev, "ru", zaptest.NewLogger(t))

	want := locale.T("ru", locale.SubscriptionEnded)
	view := u.View()
	if u.popup != want || !strings.Contains(view, want) {
		t.Fatalf("popup=%q, want %q", u.popup, want)
	}
	if strings.Contains(view, locale.T("ru", locale.Error)) {
		t.Fatalf("notice must not carry the error title")
	}

	send(u, typeText("a"))
	if u.popup != "" || u.username.Value() != "" {
		t.Fatalf("popup=%q username=%q after dismissing key", u.popup, u.username.Value())
	}
	send(u, typeText("alice"), enter)
	if len(c.logins) != 1 {
		t.Fatalf("login blocked after dismissal: %v", c.logins)
	}
}

func Test_startupNotice_CtrlCStillQuits(t *testing.T) {
	ev := newEvents()
	defer ev.close()
	u := newUI(&fakeCore{}, &fakePrefs{}, ev, "en", zaptest.NewLogger(t))

	cmd := send(u, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("ctrl+c must quit while the notice is shown")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit")
	}
}

func Test_login_SubmitsTrimmedName(t *testing.T) {
	u, c, _ := newTestUI(t)

	send(u, enter)
	if len(c.logins) != 0 {
		t.Fatalf("blank login must not reach the core: %v", c.logins)
	}

	send(u, typeText("  alice "), enter, enter)
	if len(c.logins) != 1 || c.logins[0] != "alice" {
		t.Fatalf("logins=%v, want [alice] once while pending", c.logins)
	}
	if !u.pending {
		t.Fatalf("expected pending login")
	}

	send(u, loggedInMsg{identity: "alice"})
	if u.screen != screenChat || u.identity != "alice" || u.pending {
		t.Fatalf("unexpected state after login: screen=%v id=%q pending=%v", u.screen, u.identity, u.pending)
	}
}

func Test_login_FailureShowsPopupOnce(t *testing.T) {
	u, _, _ := newTestUI(t)

	send(u, typeText("alice"), enter)
	send(u, loginFailedMsg{err: errors.Join(errs.ErrRegistrationFailed, errs.ErrAllServersFailed)})
	if u.screen != screenLogin || u.pending {
		t.Fatalf("must stay on login screen: %v", u.screen)
	}
	want := locale.T("en", locale.FailedConnect)
	if u.popup != want || !strings.Contains(u.View(), want) {
		t.Fatalf("popup=%q, want %q", u.popup, want)
	}

	// any key dismisses
	send(u, typeText("x"))
	if u.popup != "" {
		t.Fatalf("popup not dismissed")
	}
	if u.username.Value() != "alice" {
		t.Fatalf("dismissing key must not be typed, got %q", u.username.Value())
	}
}

func Test_chat_SelectAndSend(t *testing.T) {
	u, c, _ := newTestUI(t)
	send(u, loggedInMsg{identity: "alice"}, peersMsg{peers: []string{"bob", "carol"}})

	send(u, down, enter)
	if len(c.selects) != 1 || c.selects[0] != "carol" || u.selected != "carol" {
		t.Fatalf("selects=%v selected=%q", c.selects, u.selected)
	}
	if u.focus != focusCompose {
		t.Fatalf("selecting a peer should focus compose")
	}

	send(u, typeText("hello"), enter)
	if len(c.sends) != 1 || c.sends[0] != "hello" {
		t.Fatalf("sends=%v", c.sends)
	}
	if u.compose.Value() != "hello" {
		t.Fatalf("compose must be kept until the send succeeds")
	}

	send(u, sentMsg{content: "hello"})
	if u.compose.Value() != "" {
		t.Fatalf("compose not cleared after send: %q", u.compose.Value())
	}
}

func Test_chat_TranscriptRendering(t *testing.T) {
	u, _, _ := newTestUI(t)
	send(u, tea.WindowSizeMsg{Width: 100, Height: 30}, loggedInMsg{identity: "alice"})

	send(u, transcriptMsg{transcript: model.Transcript{Peer: "bob", Entries: []model.Entry{
		{Sender: "alice", Tag: model.TagSelf, Content: "hi"},
		{Sender: "bob", Tag: model.TagOther, Content: "yo"},
	}}})

	v := u.View()
	for _, s := range []string{"alice > bob", "alice: hi", "bob: yo"} {
		if !strings.Contains(v, s) {
			t.Fatalf("view missing %q:\n%s", s, v)
		}
	}
	if strings.Index(v, "alice: hi") > strings.Index(v, "bob: yo") {
		t.Fatalf("server order not kept:\n%s", v)
	}
}

func Test_chat_PeersShrinkClampsCursor(t *testing.T) {
	u, _, _ := newTestUI(t)
	send(u, loggedInMsg{identity: "alice"}, peersMsg{peers: []string{"bob", "carol", "dave"}}, down, down)
	if u.cursor != 2 {
		t.Fatalf("cursor=%d", u.cursor)
	}
	send(u, peersMsg{peers: []string{"bob"}})
	if u.cursor != 0 {
		t.Fatalf("cursor=%d after shrink", u.cursor)
	}
	send(u, peersMsg{peers: []string{}})
	if u.cursor != 0 {
		t.Fatalf("cursor=%d after empty", u.cursor)
	}
	send(u, enter)
}

func Test_chat_StatusLine(t *testing.T) {
	u, _, _ := newTestUI(t)
	send(u, loggedInMsg{identity: "alice"}, statusMsg{status: model.StatusDegraded})
	if !strings.Contains(u.View(), locale.T("en", locale.Degraded)) {
		t.Fatalf("degraded status not shown")
	}
	send(u, statusMsg{status: model.StatusOnline})
	if !strings.Contains(u.View(), locale.T("en", locale.Online)) {
		t.Fatalf("online status not shown")
	}
}

func Test_languageToggle_Persisted(t *testing.T) {
	u, _, p := newTestUI(t)

	send(u, tea.KeyMsg{Type: tea.KeyCtrlL})
	if u.lang != "ru" || len(p.langs) != 1 || p.langs[0] != "ru" {
		t.Fatalf("lang=%q saved=%v", u.lang, p.langs)
	}
	if !strings.Contains(u.View(), locale.T("ru", locale.Login)) {
		t.Fatalf("view not relabeled")
	}
	if u.username.Placeholder != locale.T("ru", locale.EnterUsername) {
		t.Fatalf("placeholder=%q", u.username.Placeholder)
	}

	send(u, tea.KeyMsg{Type: tea.KeyCtrlL})
	if u.lang != "en" {
		t.Fatalf("lang=%q", u.lang)
	}
}

func Test_logout_ResetsAndForgetsIdentity(t *testing.T) {
	u, c, p := newTestUI(t)
	send(u, loggedInMsg{identity: "alice"}, peersMsg{peers: []string{"bob"}}, enter)

	cmd := send(u, tea.KeyMsg{Type: tea.KeyCtrlO})
	if cmd == nil {
		t.Fatalf("expected logout command")
	}
	if c.logouts != 0 {
		t.Fatalf("logout must not run on the UI loop")
	}
	send(u, typeText("bob"), enter)
	if len(c.logins) != 0 {
		t.Fatalf("login accepted before the old session stopped")
	}
	send(u, cmd())
	if c.logouts != 1 {
		t.Fatalf("logouts=%d", c.logouts)
	}
	send(u, enter)
	if len(c.logins) != 1 || c.logins[0] != "bob" {
		t.Fatalf("logins=%v", c.logins)
	}
	if len(p.identities) != 1 || p.identities[0] != "" {
		t.Fatalf("identity not cleared: %v", p.identities)
	}
	if u.screen != screenLogin || u.identity != "" || u.selected != "" || len(u.peers) != 0 {
		t.Fatalf("state not reset")
	}

	// late events of the old session are ignored
	send(u, peersMsg{peers: []string{"bob"}})
	if len(u.peers) != 0 {
		t.Fatalf("stale peers applied after logout: %v", u.peers)
	}
}

func Test_ctrlC_Quits(t *testing.T) {
	u, _, _ := newTestUI(t)
	cmd := send(u, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}
