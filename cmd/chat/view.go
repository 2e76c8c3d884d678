package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/and161185/o1chat/internal/locale"
	"github.com/and161185/o1chat/internal/model"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	selfStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	cursorStyle = lipgloss.NewStyle().Reverse(true)
	hintStyle   = lipgloss.NewStyle().Faint(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	paneStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
	popupStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2)
)

func (u *ui) View() string {
	var body string
	if u.screen == screenLogin {
		body = u.loginView()
	} else {
		body = u.chatView()
	}
	if u.popup == "" {
		return body
	}
	parts := []string{u.popup, hintStyle.Render("[" + locale.T(u.lang, locale.Close) + "]")}
	if u.popupTitle != "" {
		parts = append([]string{titleStyle.Render(locale.T(u.lang, u.popupTitle))}, parts...)
	}
	box := popupStyle.Render(strings.Join(parts, "\n\n"))
	if u.width == 0 || u.height == 0 {
		return box
	}
	return lipgloss.Place(u.width, u.height, lipgloss.Center, lipgloss.Center, box)
}

func (u *ui) loginView() string {
	lines := []string{
		titleStyle.Render(locale.T(u.lang, locale.Login)),
		"",
		u.username.View(),
	}
	if u.pending {
		lines = append(lines, hintStyle.Render("..."))
	}
	lines = append(lines, "", u.footer(false))
	return strings.Join(lines, "\n")
}

func (u *ui) chatView() string {
	left := paneStyle.Width(peerColumnWidth).Render(u.peerList())

	header := locale.T(u.lang, locale.SelectUser)
	if u.transcript.Peer != "" {
		header = u.identity + " > " + u.transcript.Peer
	}
	right := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(header),
		u.history.View(),
		u.compose.View(),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right),
		u.statusLine(),
		u.footer(true),
	)
}

func (u *ui) peerList() string {
	lines := []string{titleStyle.Render(locale.T(u.lang, locale.Users))}
	for i, p := range u.peers {
		label := "  " + p
		if p == u.selected {
			label = "> " + p
		}
		if i == u.cursor && u.focus == focusPeers {
			label = cursorStyle.Render(label)
		}
		lines = append(lines, label)
	}
	return strings.Join(lines, "\n")
}

func (u *ui) statusLine() string {
	switch u.status {
	case model.StatusOnline:
		return hintStyle.Render(locale.T(u.lang, locale.Online))
	case model.StatusDegraded:
		return warnStyle.Render(locale.T(u.lang, locale.Degraded))
	default:
		return ""
	}
}

func (u *ui) footer(chat bool) string {
	parts := []string{"ctrl+l " + locale.T(u.lang, locale.Language) + ": " + u.lang}
	if chat {
		parts = append(parts,
			"tab "+locale.T(u.lang, locale.Users)+"/"+locale.T(u.lang, locale.Send),
			"ctrl+o "+locale.T(u.lang, locale.Logout),
		)
	}
	parts = append(parts, "ctrl+c "+locale.T(u.lang, locale.Close))
	return hintStyle.Render(strings.Join(parts, " | "))
}

// renderEntries formats a transcript, highlighting the local user's lines.
func renderEntries(entries []model.Entry, width int) string {
	wrap := lipgloss.NewStyle()
	if width > 0 {
		wrap = wrap.Width(width)
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		line := e.Sender + ": " + e.Content
		if e.Tag == model.TagSelf {
			line = selfStyle.Render(line)
		}
		lines = append(lines, wrap.Render(line))
	}
	return strings.Join(lines, "\n")
}
