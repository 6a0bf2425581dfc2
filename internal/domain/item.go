package domain

import (
	"errors"
	"path/filepath"
	"strings"
	"time"
)

type ItemID string

// VideoStream describes the primary video stream of a media source, as
// reported by the media prober.
type VideoStream struct {
	Index  int    `json:"index"`
	Codec  string `json:"codec"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// MediaSource is one playable file belonging to a library item. An item and
// its media source usually share an ID; sources with a different ID are
// sub-items hosted under the same head item and are skipped during
// generation so their artifacts do not land in the head item's metadata.
type MediaSource struct {
	ID          string      `json:"id"`
	Path        string      `json:"path"`
	Container   string      `json:"container"`
	VideoStream VideoStream `json:"videoStream"`
}

// LibraryItem is a video known to the library registry.
type LibraryItem struct {
	ID           ItemID        `json:"id"`
	Name         string        `json:"name"`
	Path         string        `json:"path"`
	MetadataDir  string        `json:"metadataDir"`
	MediaSources []MediaSource `json:"mediaSources"`
	RuntimeTicks int64         `json:"runtimeTicks"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// ContainingFolder is the directory holding the item's primary file.
func (i LibraryItem) ContainingFolder() string {
	return filepath.Dir(i.Path)
}

// Stem is the primary file name without its extension, used to prefix
// artifacts stored next to the media.
func (i LibraryItem) Stem() string {
	base := filepath.Base(i.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Validate checks domain invariants for LibraryItem.
func (i LibraryItem) Validate() error {
	if i.ID == "" {
		return errors.New("item id is required")
	}
	if strings.TrimSpace(i.Path) == "" {
		return errors.New("item path is required")
	}
	if i.RuntimeTicks < 0 {
		return errors.New("runtimeTicks must not be negative")
	}
	for _, src := range i.MediaSources {
		if strings.TrimSpace(src.Path) == "" {
			return errors.New("media source path is required")
		}
	}
	return nil
}
