package service

import (
	"context"
	"errors"
	"testing"

	"network/internal/model"
	"network/internal/repository"
)

func TestToggleEngine_LikeRoundTrip(t *testing.T) {
	store := newFakeEdgeStore()
	ledger := newFakeLedger()
	engine := NewToggleEngine(testTx(), ledger)
	edge := LikeEdge(store)

	liked, err := engine.Toggle(context.Background(), edge, 7, 100)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !liked {
		t.Error("first toggle should report liked=true")
	}
	if got := ledger.counter(repository.EntityPost, 100, repository.FieldLikeCount); got != 1 {
		t.Errorf("like_count after like = %d, want 1", got)
	}

	liked, err = engine.Toggle(context.Background(), edge, 7, 100)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if liked {
		t.Error("second toggle should report liked=false")
	}
	if got := ledger.counter(repository.EntityPost, 100, repository.FieldLikeCount); got != 0 {
		t.Errorf("like_count after unlike = %d, want 0", got)
	}

	// Each toggle applies exactly the edge's declared adjustments
	if len(ledger.adjustments) != 2 {
		t.Fatalf("adjustments = %d, want 2", len(ledger.adjustments))
	}
	if ledger.adjustments[0].Delta != 1 || ledger.adjustments[1].Delta != -1 {
		t.Errorf("deltas = %+v, want +1 then -1", ledger.adjustments)
	}
}

func TestToggleEngine_ParityAfterRepeatedToggles(t *testing.T) {
	store := newFakeEdgeStore()
	ledger := newFakeLedger()
	engine := NewToggleEngine(testTx(), ledger)
	edge := LikeEdge(store)

	var last bool
	for i := 0; i < 5; i++ {
		var err error
		last, err = engine.Toggle(context.Background(), edge, 1, 2)
		if err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		want := i%2 == 0
		if last != want {
			t.Errorf("toggle %d: present = %t, want %t", i, last, want)
		}
	}

	// Odd number of toggles ends present with the counter at exactly 1
	if !last {
		t.Error("expected edge present after odd toggle count")
	}
	if got := ledger.counter(repository.EntityPost, 2, repository.FieldLikeCount); got != 1 {
		t.Errorf("like_count = %d, want 1", got)
	}
}

func TestToggleEngine_FollowAdjustsBothSides(t *testing.T) {
	store := &fakeFollowStore{fakeEdgeStore: newFakeEdgeStore()}
	ledger := newFakeLedger()
	engine := NewToggleEngine(testTx(), ledger)
	edge := FollowEdge(store)

	following, err := engine.Toggle(context.Background(), edge, 3, 9)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !following {
		t.Error("expected follow to be present")
	}

	if got := ledger.counter(repository.EntityUser, 9, repository.FieldFollowersCount); got != 1 {
		t.Errorf("followee followers_count = %d, want 1", got)
	}
	if got := ledger.counter(repository.EntityUser, 3, repository.FieldFollowingCount); got != 1 {
		t.Errorf("follower following_count = %d, want 1", got)
	}
	if len(ledger.adjustments) != 2 {
		t.Errorf("adjustments = %d, want 2", len(ledger.adjustments))
	}
}

func TestToggleEngine_InsertRaceReturnsConflict(t *testing.T) {
	store := newFakeEdgeStore()
	store.insertConflict = true
	ledger := newFakeLedger()
	engine := NewToggleEngine(testTx(), ledger)

	_, err := engine.Toggle(context.Background(), LikeEdge(store), 7, 100)
	if !errors.Is(err, model.ErrToggleConflict) {
		t.Fatalf("expected ErrToggleConflict, got: %v", err)
	}

	// The losing transaction must not have touched any counter
	if len(ledger.adjustments) != 0 {
		t.Errorf("adjustments = %d, want 0", len(ledger.adjustments))
	}
}

func TestToggleEngine_LedgerErrorAborts(t *testing.T) {
	store := newFakeEdgeStore()
	ledger := newFakeLedger()
	ledger.adjustErr = errors.New("boom")
	engine := NewToggleEngine(testTx(), ledger)

	_, err := engine.Toggle(context.Background(), LikeEdge(store), 7, 100)
	if err == nil {
		t.Fatal("expected error when counter adjustment fails")
	}
}
