package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func turn(id, user string, role Role, msg string, ts int64) Turn {
	return Turn{ID: id, UserID: user, Role: role, Message: msg, Timestamp: time.Unix(ts, 0).UTC()}
}

func TestMemoryStoreAppendHistoryIsolation(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryStore()

	if err := h.Append(ctx, turn("a:0", "u1", RoleUser, "hello", 1), turn("a:1", "u1", RoleAssistant, "hi", 1)); err != nil {
		t.Fatalf("append u1: %v", err)
	}
	if err := h.Append(ctx, turn("b:0", "u2", RoleUser, "foo", 2), turn("b:1", "u2", RoleAssistant, "bar", 2)); err != nil {
		t.Fatalf("append u2: %v", err)
	}

	msgsA, err := h.History(ctx, "u1")
	if err != nil {
		t.Fatalf("history u1: %v", err)
	}
	msgsB, _ := h.History(ctx, "u2")
	if len(msgsA) != 2 || len(msgsB) != 2 {
		t.Fatalf("unexpected lengths: A=%d B=%d", len(msgsA), len(msgsB))
	}
	if msgsA[0].Role != RoleUser || msgsA[0].Message != "hello" {
		t.Fatalf("unexpected A[0]: %+v", msgsA[0])
	}
	if msgsA[1].Role != RoleAssistant || msgsA[1].Message != "hi" {
		t.Fatalf("unexpected A[1]: %+v", msgsA[1])
	}
	for _, m := range msgsB {
		if m.UserID != "u2" {
			t.Fatalf("cross-user leakage: %+v", m)
		}
	}

	// Returned slices are copies.
	msgsA[0].Message = "mutated"
	again, _ := h.History(ctx, "u1")
	if again[0].Message != "hello" {
		t.Fatalf("internal state mutated via returned slice")
	}
}

func TestMemoryStoreUnknownUserIsEmpty(t *testing.T) {
	got, err := NewMemoryStore().History(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("want empty, got %+v", got)
	}
}

func TestMemoryStoreOrdersByTimestampThenInsertion(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryStore()
	_ = h.Append(ctx, turn("c", "u", RoleUser, "third", 5))
	_ = h.Append(ctx, turn("a", "u", RoleUser, "first", 1))
	_ = h.Append(ctx, turn("b", "u", RoleAssistant, "second", 1))

	got, _ := h.History(ctx, "u")
	want := []string{"first", "second", "third"}
	for i, w := range want {
		if got[i].Message != w {
			t.Fatalf("position %d: want %q, got %q", i, w, got[i].Message)
		}
	}
}

func TestMemoryStoreAppendIsIdempotent(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryStore()
	pair := []Turn{turn("x:0", "u", RoleUser, "q", 1), turn("x:1", "u", RoleAssistant, "r", 1)}
	_ = h.Append(ctx, pair[0])
	if err := h.Append(ctx, pair...); err != nil {
		t.Fatalf("retry append: %v", err)
	}
	if h.Len() != 2 {
		t.Fatalf("want 2 turns after retry, got %d", h.Len())
	}
}

func TestValidateRejectsUnknownRole(t *testing.T) {
	err := NewMemoryStore().Append(context.Background(), turn("x", "u", Role("system"), "nope", 1))
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("want ErrInvalidRole, got %v", err)
	}
	if err := Validate([]Turn{{Role: RoleUser}}); !errors.Is(err, ErrMissingID) {
		t.Fatalf("want ErrMissingID, got %v", err)
	}
}

func TestUnavailableMatchesSentinel(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("load: %w", Unavailable("find turns", cause))
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("errors.Is should match ErrStoreUnavailable: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause should stay reachable: %v", err)
	}
	if Unavailable("noop", nil) != nil {
		t.Fatal("nil cause must stay nil")
	}
}
