package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fitness-chatter/internal/history"
)

func pair(exchange, user, q, a string, ts time.Time) []history.Turn {
	return []history.Turn{
		{ID: exchange + ":0", UserID: user, Role: history.RoleUser, Message: q, Timestamp: ts},
		{ID: exchange + ":1", UserID: user, Role: history.RoleAssistant, Message: a, Timestamp: ts},
	}
}

func TestFileStore_AppendAndHistory(t *testing.T) {
	ctx := context.Background()
	p := filepath.Join(t.TempDir(), "nested", "history.jsonl")
	s, err := NewFileStore(p)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}

	if err := s.Append(ctx, pair("e1", "u1", "hi", "hello", time.Unix(1, 0).UTC())...); err != nil {
		t.Fatalf("append1: %v", err)
	}
	if err := s.Append(ctx, pair("e2", "u2", "foo", "bar", time.Unix(2, 0).UTC())...); err != nil {
		t.Fatalf("append2: %v", err)
	}
	if err := s.Append(ctx, pair("e3", "u1", "again", "sure", time.Unix(3, 0).UTC())...); err != nil {
		t.Fatalf("append3: %v", err)
	}

	got, err := s.History(ctx, "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	want := []string{"hi", "hello", "again", "sure"}
	if len(got) != len(want) {
		t.Fatalf("want %d turns, got %d: %+v", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i].Message != w || got[i].UserID != "u1" {
			t.Fatalf("turn %d: want %q for u1, got %+v", i, w, got[i])
		}
	}

	st, err := os.Stat(p)
	if err != nil || st.Size() == 0 {
		t.Fatalf("file not written")
	}
}

func TestFileStore_EmptyHistory(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "h.jsonl"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	got, err := s.History(context.Background(), "nobody")
	if err != nil || len(got) != 0 {
		t.Fatalf("want empty history, got %+v, %v", got, err)
	}
}

func TestFileStore_RetryDoesNotDuplicate(t *testing.T) {
	ctx := context.Background()
	s, _ := NewFileStore(filepath.Join(t.TempDir(), "h.jsonl"))
	turns := pair("e1", "u1", "q", "a", time.Unix(1, 0).UTC())

	// First attempt only got the user turn in.
	if err := s.Append(ctx, turns[0]); err != nil {
		t.Fatalf("partial append: %v", err)
	}
	if err := s.Append(ctx, turns...); err != nil {
		t.Fatalf("retry append: %v", err)
	}
	got, _ := s.History(ctx, "u1")
	if len(got) != 2 || got[0].Role != history.RoleUser || got[1].Role != history.RoleAssistant {
		t.Fatalf("unexpected history after retry: %+v", got)
	}
}

func TestFileStore_AppendAfterTornLine(t *testing.T) {
	ctx := context.Background()
	p := filepath.Join(t.TempDir(), "h.jsonl")
	s, _ := NewFileStore(p)
	if err := s.Append(ctx, pair("e0", "u1", "q0", "a0", time.Unix(1, 0).UTC())...); err != nil {
		t.Fatalf("append e0: %v", err)
	}

	// An interrupted write left half a line at the end of the log.
	f, err := os.OpenFile(p, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.WriteString(`{"id":"e1:0","user_id":"u1","ro`); err != nil {
		t.Fatalf("write fragment: %v", err)
	}
	_ = f.Close()

	if err := s.Append(ctx, pair("e1", "u1", "q1", "a1", time.Unix(2, 0).UTC())...); err != nil {
		t.Fatalf("append e1: %v", err)
	}
	got, err := s.History(ctx, "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	want := []string{"q0", "a0", "q1", "a1"}
	if len(got) != len(want) {
		t.Fatalf("want %d turns, got %d: %+v", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i].Message != w {
			t.Fatalf("turn %d: want %q, got %+v", i, w, got[i])
		}
	}
}

func TestFileStore_MissingFileIsUnavailable(t *testing.T) {
	p := filepath.Join(t.TempDir(), "h.jsonl")
	s, _ := NewFileStore(p)
	if err := os.Remove(p); err != nil {
		t.Fatalf("remove: %v", err)
	}
	_, err := s.History(context.Background(), "u1")
	if !errors.Is(err, history.ErrStoreUnavailable) {
		t.Fatalf("want ErrStoreUnavailable, got %v", err)
	}
}
