package trickplay

import (
	"sort"

	"trickplay/internal/domain"
)

// tierScreenFraction caps a tile's width at this fraction of the screen
// width when picking a resolution tier.
const tierScreenFraction = 0.2

// TileLocation addresses a single preview frame inside the generated sheets
// together with the crop geometry to render it.
type TileLocation struct {
	// SheetIndex is 0-based; the sheet file is named SheetIndex+1.
	SheetIndex int `json:"sheetIndex"`
	Row        int `json:"row"`
	Col        int `json:"col"`
	TierWidth  int `json:"tierWidth"`
	TierHeight int `json:"tierHeight"`
	CropX      int `json:"cropX"`
	CropY      int `json:"cropY"`
}

// SelectTier picks the resolution tier for a playback session: the largest
// tier whose width is at most 20% of the screen width in device pixels,
// falling back to the smallest tier when none qualifies. Re-evaluated only
// when the media source changes.
func SelectTier(m domain.Manifest, screenWidthPx float64) (domain.TileManifest, bool) {
	if len(m.WidthResolutions) == 0 {
		return domain.TileManifest{}, false
	}

	widths := make([]int, 0, len(m.WidthResolutions))
	for width := range m.WidthResolutions {
		widths = append(widths, width)
	}
	sort.Ints(widths)

	chosen := m.WidthResolutions[widths[0]]
	for _, width := range widths[1:] {
		if float64(width) <= screenWidthPx*tierScreenFraction {
			chosen = m.WidthResolutions[width]
		}
	}
	return chosen, true
}

// Locate maps a playback position to the sheet and sub-tile holding its
// preview frame. Pure and deterministic: the same inputs always produce the
// same location. The frame index is clamped to the last packed frame so a
// position past the final sheet never addresses data that was not generated.
func Locate(positionFraction float64, durationTicks int64, tier domain.TileManifest) TileLocation {
	if positionFraction < 0 {
		positionFraction = 0
	}
	if positionFraction > 1 {
		positionFraction = 1
	}

	frameIndex := 0
	if tier.Interval > 0 && durationTicks > 0 {
		currentTimeMs := positionFraction * float64(durationTicks) / float64(domain.TicksPerMs)
		frameIndex = int(currentTimeMs) / tier.Interval
	}
	if tier.TileCount != nil && *tier.TileCount > 0 && frameIndex >= *tier.TileCount {
		frameIndex = *tier.TileCount - 1
	}

	gridSize := tier.GridSize()
	if gridSize <= 0 {
		gridSize = 1
	}
	localOffset := frameIndex % gridSize
	sheetIndex := frameIndex / gridSize

	tileWidth := tier.TileWidth
	if tileWidth <= 0 {
		tileWidth = 1
	}
	col := localOffset % tileWidth
	row := localOffset / tileWidth

	height := 0
	if tier.Height != nil {
		height = *tier.Height
	}

	return TileLocation{
		SheetIndex: sheetIndex,
		Row:        row,
		Col:        col,
		TierWidth:  tier.Width,
		TierHeight: height,
		CropX:      col * tier.Width,
		CropY:      row * height,
	}
}
