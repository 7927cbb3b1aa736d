package session

import (
	"fmt"
	"sync"
	"testing"

	"shopmate/internal/model"
)

func TestGetOrCreate_SameIDSameSession(t *testing.T) {
	store := NewStore()

	a := store.GetOrCreate("s1")
	b := store.GetOrCreate("s1")
	if a != b {
		t.Error("Same id must return the same session")
	}

	c := store.GetOrCreate("s2")
	if a == c {
		t.Error("Different ids must return different sessions")
	}
	if store.Len() != 2 {
		t.Errorf("Expected 2 sessions, got %d", store.Len())
	}
}

func TestGetOrCreate_NewSessionDefaults(t *testing.T) {
	sess := NewStore().GetOrCreate("s1")

	if sess.ID != "s1" {
		t.Errorf("ID = %q", sess.ID)
	}
	if sess.State() != model.StateInitial {
		t.Errorf("New sessions must start initial, got %s", sess.State())
	}
	if len(sess.History()) != 0 {
		t.Error("New sessions must start with empty history")
	}
}

func TestAppend_PreservesOrder(t *testing.T) {
	sess := NewStore().GetOrCreate("s1")

	sess.Append(model.RoleUser, "hello")
	sess.Append(model.RoleAssistant, "hi, what are you looking for?")
	sess.Append(model.RoleUser, "running shoes")

	history := sess.History()
	if len(history) != 3 {
		t.Fatalf("Expected 3 turns, got %d", len(history))
	}
	if history[0].Content != "hello" || history[2].Content != "running shoes" {
		t.Errorf("Order not preserved: %+v", history)
	}
}

func TestHistory_ReturnsCopy(t *testing.T) {
	sess := NewStore().GetOrCreate("s1")
	sess.Append(model.RoleUser, "hello")

	history := sess.History()
	history[0].Content = "tampered"

	if sess.History()[0].Content != "hello" {
		t.Error("History must return a copy")
	}
}

func TestClear_KeepsEntryAndState(t *testing.T) {
	store := NewStore()
	sess := store.GetOrCreate("s1")
	sess.Append(model.RoleUser, "hello")
	sess.SetState(model.StateCollectingInfo)

	store.Clear("s1")

	if len(sess.History()) != 0 {
		t.Error("Clear must empty the history")
	}
	if store.GetOrCreate("s1") != sess {
		t.Error("Clear must not delete the session entry")
	}
	if sess.State() != model.StateCollectingInfo {
		t.Error("Clear must not touch the state")
	}

	// clearing an unknown id is a no-op
	store.Clear("missing")
}

func TestGetOrCreate_ConcurrentSameID(t *testing.T) {
	store := NewStore()

	const workers = 32
	sessions := make([]*Session, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sessions[i] = store.GetOrCreate("shared")
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if sessions[i] != sessions[0] {
			t.Fatal("Concurrent GetOrCreate must converge on one session")
		}
	}
	if store.Len() != 1 {
		t.Errorf("Expected 1 session, got %d", store.Len())
	}
}

func TestStore_ConcurrentDistinctIDs(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess := store.GetOrCreate(fmt.Sprintf("s%d", i))
			sess.Append(model.RoleUser, "hello")
			sess.SetState(model.StateCollectingInfo)
			_ = sess.History()
		}(i)
	}
	wg.Wait()

	if store.Len() != 16 {
		t.Errorf("Expected 16 sessions, got %d", store.Len())
	}
}
