package usecase

import (
	"context"
	"errors"

	"trickplay/internal/domain"
	"trickplay/internal/domain/ports"
	"trickplay/internal/trickplay"
)

// TierState is the readiness of one resolution tier, derived from filesystem
// presence plus the in-flight job table.
type TierState string

const (
	TierMissing    TierState = "missing"
	TierGenerating TierState = "generating"
	TierReady      TierState = "ready"
)

// ItemState is a library item together with the readiness of each configured
// resolution tier.
type ItemState struct {
	Item  domain.LibraryItem
	Tiers map[int]TierState
}

type GetItemState struct {
	Repo   ports.ItemRepository
	Tiles  *GenerateTiles
	Layout trickplay.Layout
	Widths []int
}

func (uc GetItemState) Execute(ctx context.Context, id domain.ItemID) (ItemState, error) {
	item, err := uc.Repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ItemState{}, err
		}
		return ItemState{}, wrapRepo(err)
	}
	return uc.state(item), nil
}

func (uc GetItemState) state(item domain.LibraryItem) ItemState {
	widths := uc.Widths
	if len(widths) == 0 {
		widths = []int{defaultWidth}
	}
	tiers := make(map[int]TierState, len(widths))
	for _, w := range widths {
		if _, ok := uc.Layout.ExistingPlaylistPath(item, w); ok {
			tiers[w] = TierReady
			continue
		}
		if uc.Tiles != nil && uc.Tiles.InFlight(item.ID) {
			tiers[w] = TierGenerating
			continue
		}
		tiers[w] = TierMissing
	}
	return ItemState{Item: item, Tiers: tiers}
}

type ListItemStates struct {
	Repo   ports.ItemRepository
	Tiles  *GenerateTiles
	Layout trickplay.Layout
	Widths []int
}

func (uc ListItemStates) Execute(ctx context.Context) ([]ItemState, error) {
	items, err := uc.Repo.List(ctx)
	if err != nil {
		return nil, wrapRepo(err)
	}
	get := GetItemState{Repo: uc.Repo, Tiles: uc.Tiles, Layout: uc.Layout, Widths: uc.Widths}
	states := make([]ItemState, 0, len(items))
	for _, item := range items {
		states = append(states, get.state(item))
	}
	return states, nil
}
