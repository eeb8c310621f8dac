package message

import (
	"strings"
	"testing"
	"time"
)

func TestNewRejectsBodyOverCap(t *testing.T) {
	now := time.Now()
	body := strings.Repeat("a", MaxBodyLength+1)
	if _, err := New("m1", "acct1", ScopeNone, "", []string{"acct2"}, "subj", body, PriorityNormal, now); err == nil {
		t.Fatal("expected body one byte over cap to be rejected")
	}
}

func TestNewAcceptsBodyAtCap(t *testing.T) {
	now := time.Now()
	body := strings.Repeat("a", MaxBodyLength)
	if _, err := New("m1", "acct1", ScopeNone, "", []string{"acct2"}, "subj", body, PriorityNormal, now); err != nil {
		t.Fatalf("expected body at exactly the cap to be accepted: %v", err)
	}
}

func TestNewRequiresRecipientsForDirectMessage(t *testing.T) {
	now := time.Now()
	if _, err := New("m1", "acct1", ScopeNone, "", nil, "subj", "hi", PriorityNormal, now); err == nil {
		t.Fatal("expected direct message without recipients to be rejected")
	}
}

func TestReplyThreadsToParent(t *testing.T) {
	now := time.Now()
	m, _ := New("m1", "acct1", ScopeNone, "", []string{"acct2"}, "subj", "hi", PriorityNormal, now)
	reply, err := m.Reply("m2", "acct2", "hello back", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.ParentMessageID != m.ID {
		t.Errorf("expected reply to reference parent %s, got %s", m.ID, reply.ParentMessageID)
	}
}

func TestMarkReadAndConfirm(t *testing.T) {
	now := time.Now()
	m, _ := New("m1", "acct1", ScopeNone, "", []string{"acct2"}, "subj", "hi", PriorityNormal, now)
	m.MarkRead("acct2", now)
	if _, ok := m.ReadBy["acct2"]; !ok {
		t.Error("expected read timestamp recorded")
	}
	if err := m.Confirm("acct2", now); err == nil {
		t.Fatal("expected confirm on a non-confirmation-required message to fail")
	}
	m.ConfirmationRequired = true
	if err := m.Confirm("acct2", now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSanitizeStripsControlCharacters(t *testing.T) {
	now := time.Now()
	m, err := New("m1", "acct1", ScopeNone, "", []string{"acct2"}, "subj", "hi\x00there", PriorityNormal, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(m.Body, "\x00") {
		t.Error("expected control characters to be stripped")
	}
}
