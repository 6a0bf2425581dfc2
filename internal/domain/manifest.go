package domain

// TileManifest describes one generated resolution tier. Height and TileCount
// are derived during packing and stay nil until a generation run completes.
// The wire names are fixed; clients address tiles from these fields alone.
type TileManifest struct {
	// Width of an individual tile in pixels. Every extracted frame must
	// match this width exactly.
	Width int `json:"Width"`
	// Height of an individual tile, fixed from the first packed frame.
	Height *int `json:"Height,omitempty"`
	// TileWidth is the number of tiles per sheet in the X direction.
	TileWidth int `json:"TileWidth"`
	// TileHeight is the number of tiles per sheet in the Y direction.
	TileHeight int `json:"TileHeight"`
	// TileCount is the total number of frames packed across all sheets.
	TileCount *int `json:"TileCount,omitempty"`
	// Interval between frames in milliseconds.
	Interval int `json:"Interval"`
}

// Manifest aggregates every generated resolution tier for one item.
// WidthResolutions is keyed by tile width; JSON encodes the keys as decimal
// strings.
type Manifest struct {
	Version          string               `json:"Version"`
	WidthResolutions map[int]TileManifest `json:"WidthResolutions"`
}

// GridSize is the maximum number of frames per sheet.
func (t TileManifest) GridSize() int {
	return t.TileWidth * t.TileHeight
}
