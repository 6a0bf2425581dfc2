package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"trickplay/internal/domain"
)

func TestItemStateTransitions(t *testing.T) {
	item := testItem(t)
	repo := newFakeRepo()
	if err := repo.Create(context.Background(), item); err != nil {
		t.Fatal(err)
	}

	ex := &fakeExtractor{frames: 5, height: 180, block: make(chan struct{})}
	tiles := newTiles(t, ex)
	uc := GetItemState{Repo: repo, Tiles: tiles, Layout: tiles.Layout, Widths: []int{320}}

	state, err := uc.Execute(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if state.Tiers[320] != TierMissing {
		t.Fatalf("before generation: got %q, want %q", state.Tiers[320], TierMissing)
	}

	if !tiles.Trigger(item) {
		t.Fatal("Trigger refused")
	}
	deadline := time.Now().Add(2 * time.Second)
	for !tiles.InFlight(item.ID) {
		if time.Now().After(deadline) {
			t.Fatal("generation never became in-flight")
		}
		time.Sleep(5 * time.Millisecond)
	}
	state, err = uc.Execute(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if state.Tiers[320] != TierGenerating {
		t.Fatalf("while in-flight: got %q, want %q", state.Tiers[320], TierGenerating)
	}

	close(ex.block)
	deadline = time.Now().Add(5 * time.Second)
	for {
		state, err = uc.Execute(context.Background(), item.ID)
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if state.Tiers[320] == TierReady {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("after generation: got %q, want %q", state.Tiers[320], TierReady)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestGetItemStateUnknown(t *testing.T) {
	uc := GetItemState{Repo: newFakeRepo(), Widths: []int{320}}
	if _, err := uc.Execute(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestListItemStates(t *testing.T) {
	item := testItem(t)
	repo := newFakeRepo()
	if err := repo.Create(context.Background(), item); err != nil {
		t.Fatal(err)
	}

	ex := &fakeExtractor{frames: 5, height: 180}
	tiles := newTiles(t, ex)
	if err := tiles.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	uc := ListItemStates{Repo: repo, Tiles: tiles, Layout: tiles.Layout, Widths: []int{320, 640}}
	states, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(states) != 1 {
		t.Fatalf("got %d states, want 1", len(states))
	}
	if states[0].Tiers[320] != TierReady {
		t.Errorf("320: got %q, want %q", states[0].Tiers[320], TierReady)
	}
	if states[0].Tiers[640] != TierMissing {
		t.Errorf("640: got %q, want %q", states[0].Tiers[640], TierMissing)
	}
}
