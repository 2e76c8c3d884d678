package model

import "testing"

func TestTagged(t *testing.T) {
	t.Parallel()

	got := Tagged("alice", []Message{
		{Sender: "alice", Content: "hi"},
		{Sender: "bob", Content: "yo"},
		{Sender: "alice", Content: "hi"},
	})
	want := []Entry{
		{Sender: "alice", Tag: TagSelf, Content: "hi"},
		{Sender: "bob", Tag: TagOther, Content: "yo"},
		{Sender: "alice", Tag: TagSelf, Content: "hi"},
	}
	if len(got) != len(want) {
		t.Fatalf("len=%d want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry[%d]=%+v want %+v", i, got[i], want[i])
		}
	}
}

func TestStatusString(t *testing.T) {
	t.Parallel()

	if StatusOnline.String() != "online" || StatusDegraded.String() != "degraded" || StatusUnknown.String() != "unknown" {
		t.Fatalf("unexpected status strings")
	}
}
