package trickplay

import (
	"os"
	"path/filepath"
	"strconv"

	"trickplay/internal/domain"
)

const trickplayDirName = "trickplay"

// Layout maps a library item and resolution tier to on-disk artifact
// locations. Two root strategies exist: artifacts next to the media
// (LocalMediaFolderSaving) or under the item's internal metadata directory.
// Exactly one strategy is active; flipping the flag does not migrate
// artifacts generated under the other root.
type Layout struct {
	LocalMediaFolderSaving bool
}

// ManifestPath is where the item's manifest lives (or would live).
func (l Layout) ManifestPath(item domain.LibraryItem) string {
	if l.LocalMediaFolderSaving {
		return filepath.Join(item.ContainingFolder(), trickplayDirName, item.Stem()+"-"+ManifestName)
	}
	return filepath.Join(item.MetadataDir, trickplayDirName, ManifestName)
}

// TilesDir is the directory holding sheets and playlist for one width.
func (l Layout) TilesDir(item domain.LibraryItem, width int) string {
	if l.LocalMediaFolderSaving {
		return filepath.Join(item.ContainingFolder(), trickplayDirName, item.Stem()+"-"+strconv.Itoa(width))
	}
	return filepath.Join(item.MetadataDir, trickplayDirName, strconv.Itoa(width))
}

// PlaylistPath is the playlist location for one width.
func (l Layout) PlaylistPath(item domain.LibraryItem, width int) string {
	return filepath.Join(l.TilesDir(item, width), PlaylistName)
}

// TilePath is the sheet image location for one (width, sheet number).
func (l Layout) TilePath(item domain.LibraryItem, width, tileID int) string {
	return filepath.Join(l.TilesDir(item, width), strconv.Itoa(tileID)+SheetExt)
}

// ExistingManifestPath returns the manifest path only when the file exists.
func (l Layout) ExistingManifestPath(item domain.LibraryItem) (string, bool) {
	return existingFile(l.ManifestPath(item))
}

// ExistingTilesDir returns the tiles directory only when it exists. Its
// presence is what marks a (item, width) tier as ready.
func (l Layout) ExistingTilesDir(item domain.LibraryItem, width int) (string, bool) {
	path := l.TilesDir(item, width)
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return path, true
}

// ExistingPlaylistPath returns the playlist path only when the file exists.
func (l Layout) ExistingPlaylistPath(item domain.LibraryItem, width int) (string, bool) {
	return existingFile(l.PlaylistPath(item, width))
}

// ExistingTilePath returns the sheet path only when the file exists.
func (l Layout) ExistingTilePath(item domain.LibraryItem, width, tileID int) (string, bool) {
	return existingFile(l.TilePath(item, width, tileID))
}

func existingFile(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}
