package transcript

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Jrygg01/FrameForge/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_AppendAndList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)

	if err := store.Append(ctx, "s1", core.NewTurn(core.RoleUser, "make it blue"), core.NewTurn(core.RoleAssistant, "done")); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if err := store.Append(ctx, "s1", core.NewTurn(core.RoleUser, "now red")); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if err := store.Append(ctx, "s2", core.NewTurn(core.RoleUser, "other session")); err != nil {
		t.Fatalf("Append error: %v", err)
	}

	turns, err := store.List(ctx, "s1", 0)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	got := make([]string, 0, len(turns))
	for _, turn := range turns {
		got = append(got, turn.Content)
	}
	want := []string{"make it blue", "done", "now red"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("turns = %v, want %v", got, want)
	}
	if turns[1].Role != core.RoleAssistant || turns[0].Timestamp.IsZero() {
		t.Fatalf("turn metadata lost: %#v", turns[1])
	}

	recent, err := store.List(ctx, "s1", 2)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(recent) != 2 || recent[0].Content != "done" {
		t.Fatalf("limited list = %#v", recent)
	}
}

func TestStore_OrderingPastTenTurns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)
	for i := 0; i < 12; i++ {
		if err := store.Append(ctx, "s", core.NewTurn(core.RoleUser, fmt.Sprint(i))); err != nil {
			t.Fatalf("Append error: %v", err)
		}
	}
	turns, err := store.List(ctx, "s", 0)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	for i, turn := range turns {
		if turn.Content != fmt.Sprint(i) {
			t.Fatalf("turn %d = %q", i, turn.Content)
		}
	}
}

func TestStore_ConcurrentAppends(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- store.Append(ctx, "busy", core.NewTurn(core.RoleUser, fmt.Sprint(i)))
		}(i)
	}
	wg.Wait()
	close(errs)
	failed := 0
	for err := range errs {
		if err != nil {
			failed++
		}
	}
	turns, err := store.List(ctx, "busy", 0)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(turns)+failed != 8 {
		t.Fatalf("stored %d turns with %d failures, want 8 total", len(turns), failed)
	}
	seen := map[string]bool{}
	for _, turn := range turns {
		if seen[turn.Content] {
			t.Fatalf("turn %q stored twice", turn.Content)
		}
		seen[turn.Content] = true
	}
}

func TestStore_InvalidInput(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)

	if err := store.Append(ctx, "", core.NewTurn(core.RoleUser, "x")); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
	if _, err := store.List(ctx, "a/b", 0); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
	if err := store.Append(ctx, "s", core.ChatTurn{Role: "tool", Content: "x"}); err == nil {
		t.Fatalf("expected error for unknown role")
	}
	turns, err := store.List(ctx, "unknown", 0)
	if err != nil || len(turns) != 0 {
		t.Fatalf("unknown session: turns=%v err=%v", turns, err)
	}
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := Open("")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Append(ctx, "gone", core.NewTurn(core.RoleUser, "x")); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if err := store.Delete("gone"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	turns, err := store.List(ctx, "gone", 0)
	if err != nil || len(turns) != 0 {
		t.Fatalf("after delete: turns=%v err=%v", turns, err)
	}
}
