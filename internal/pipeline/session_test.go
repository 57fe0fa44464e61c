package pipeline

import (
	"fmt"
	"sync"
	"testing"

	"promptd/pkg/types"
)

func TestSessionStoreAppendAndLen(t *testing.T) {
	s := NewSessionStore()
	if s.Len() != 0 {
		t.Fatalf("Len = %d, want 0", s.Len())
	}
	s.Append(types.Turn{User: "a", Assistant: "1"})
	s.Append(types.Turn{User: "b", Assistant: "2"})
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
}

func TestSessionStoreRecentWindow(t *testing.T) {
	s := NewSessionStore()
	for i := 0; i < 5; i++ {
		s.Append(types.Turn{User: fmt.Sprintf("u%d", i), Assistant: fmt.Sprintf("a%d", i)})
	}

	win := s.RecentWindow(2)
	if len(win) != 2 {
		t.Fatalf("window size = %d, want 2", len(win))
	}
	if win[0].User != "u3" || win[1].User != "u4" {
		t.Fatalf("window = %+v, want the two most recent in order", win)
	}

	// Window larger than the log returns everything.
	if all := s.RecentWindow(100); len(all) != 5 {
		t.Fatalf("oversized window = %d turns, want 5", len(all))
	}
	if s.RecentWindow(0) != nil {
		t.Fatal("zero window must be nil")
	}
	if s.RecentWindow(-1) != nil {
		t.Fatal("negative window must be nil")
	}
}

func TestSessionStoreCopies(t *testing.T) {
	s := NewSessionStore()
	s.Append(types.Turn{User: "orig", Assistant: "a"})

	win := s.RecentWindow(1)
	win[0].User = "mutated"
	if s.Turns()[0].User != "orig" {
		t.Fatal("RecentWindow must return a copy")
	}

	all := s.Turns()
	all[0].User = "mutated"
	if s.Turns()[0].User != "orig" {
		t.Fatal("Turns must return a copy")
	}
}

func TestSessionStoreConcurrentAppend(t *testing.T) {
	s := NewSessionStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Append(types.Turn{User: "u", Assistant: "a"})
			_ = s.RecentWindow(5)
			_ = s.Len()
		}()
	}
	wg.Wait()
	if s.Len() != 20 {
		t.Fatalf("Len = %d, want 20", s.Len())
	}
}
