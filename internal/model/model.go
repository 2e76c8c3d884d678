// Package model defines domain entities shared by the client core and the mirror server.
package model

// Message is a single chat message. The client never assigns an id;
// ordering is whatever the server returns.
type Message struct {
	Sender    string
	Recipient string // empty when the server omits it on fetch
	Content   string
}

// Tag marks who wrote a transcript entry relative to the local identity.
type Tag string

const (
	TagSelf  Tag = "self"
	TagOther Tag = "other"
)

// Entry is a render-ready transcript line.
type Entry struct {
	Sender  string
	Tag     Tag
	Content string
}

// Transcript is the server-ordered history of one conversation pair.
type Transcript struct {
	Peer    string
	Entries []Entry
}

// Status is the coarse connectivity state shown to the user.
type Status int

const (
	StatusUnknown Status = iota
	StatusOnline
	StatusDegraded
)

func (s Status) String() string {
	switch s {
	case StatusOnline:
		return "online"
	case StatusDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// Tagged converts server messages to entries as seen by local.
// Order is preserved and nothing is deduplicated.
func Tagged(local string, msgs []Message) []Entry {
	out := make([]Entry, 0, len(msgs))
	for _, m := range msgs {
		tag := TagOther
		if m.Sender == local {
			tag = TagSelf
		}
		out = append(out, Entry{Sender: m.Sender, Tag: tag, Content: m.Content})
	}
	return out
}
