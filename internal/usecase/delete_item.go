package usecase

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"trickplay/internal/domain"
	"trickplay/internal/domain/ports"
	"trickplay/internal/trickplay"
)

// DeleteItem removes a library item together with its tile artifacts.
type DeleteItem struct {
	Repo   ports.ItemRepository
	Layout trickplay.Layout
	Widths []int
	Logger *slog.Logger
}

func (uc DeleteItem) Execute(ctx context.Context, id domain.ItemID) error {
	item, err := uc.Repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return wrapRepo(err)
	}

	if err := uc.Repo.Delete(ctx, id); err != nil {
		return wrapRepo(err)
	}

	uc.removeArtifacts(item)

	if uc.Logger != nil {
		uc.Logger.Info("item deleted", slog.String("id", string(id)))
	}
	return nil
}

// removeArtifacts cleans up on a best-effort basis; the item record is
// already gone and the artifacts are unreachable either way.
func (uc DeleteItem) removeArtifacts(item domain.LibraryItem) {
	if !uc.Layout.LocalMediaFolderSaving {
		// Internal mode owns the whole trickplay directory under the
		// item's metadata dir.
		os.RemoveAll(filepath.Dir(uc.Layout.ManifestPath(item)))
		return
	}

	// Local mode shares the trickplay folder with sibling items; remove
	// only this item's files.
	widths := uc.Widths
	if len(widths) == 0 {
		widths = []int{defaultWidth}
	}
	os.Remove(uc.Layout.ManifestPath(item))
	for _, w := range widths {
		os.RemoveAll(uc.Layout.TilesDir(item, w))
	}
}
