package trickplay

import (
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "image/png"

	"trickplay/internal/domain"
)

const (
	// PlaylistName is the fixed file name of the sheet playlist inside a
	// tiles directory.
	PlaylistName = "tiles.m3u8"
	// SheetExt is the encoded sprite sheet image extension.
	SheetExt = ".jpg"

	defaultJPEGQuality = 90
)

// PackOptions configure one packing run for a single resolution tier.
type PackOptions struct {
	// Frames are paths to the extracted frame images, already in natural
	// time order.
	Frames []string
	// Dir receives the sheet files and the playlist. Created if missing.
	Dir string
	// Tier carries Width, TileWidth, TileHeight and Interval. Height and
	// TileCount are derived here.
	Tier domain.TileManifest
	// Quality is the JPEG quality for encoded sheets (1-100).
	Quality int
}

// PackResult reports the outcome of a packing run.
type PackResult struct {
	Tier       domain.TileManifest
	SheetCount int
}

// Pack composes the ordered frame sequence into row-major sprite sheets and
// writes them, together with the tiles playlist, into opts.Dir.
//
// The tile height is fixed from the first frame; every frame must match the
// configured width and that height exactly. Dimensions are validated for the
// whole sequence before any sheet is written, so a heterogeneous extraction
// leaves no partial output behind.
func Pack(opts PackOptions) (PackResult, error) {
	if len(opts.Frames) == 0 {
		return PackResult{}, domain.ErrEmptyInput
	}
	tier := opts.Tier
	if tier.Width <= 0 || tier.TileWidth <= 0 || tier.TileHeight <= 0 {
		return PackResult{}, fmt.Errorf("invalid tier configuration: %dx(%dx%d)", tier.Width, tier.TileWidth, tier.TileHeight)
	}
	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = defaultJPEGQuality
	}

	height, err := validateFrameDimensions(opts.Frames, tier.Width)
	if err != nil {
		return PackResult{}, err
	}
	tier.Height = &height

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return PackResult{}, fmt.Errorf("create tiles dir: %w", err)
	}

	gridSize := tier.GridSize()
	sheetCount := (len(opts.Frames) + gridSize - 1) / gridSize

	var playlist strings.Builder
	writePlaylistHeader(&playlist, sheetCount)

	frameIdx := 0
	for sheetNo := 1; sheetNo <= sheetCount; sheetNo++ {
		canvas := image.NewRGBA(image.Rect(0, 0, tier.Width*tier.TileWidth, height*tier.TileHeight))

		framesInSheet := 0
		for local := 0; local < gridSize && frameIdx < len(opts.Frames); local++ {
			frame, err := decodeFrame(opts.Frames[frameIdx])
			if err != nil {
				return PackResult{}, err
			}
			col := local % tier.TileWidth
			row := local / tier.TileWidth
			origin := image.Pt(col*tier.Width, row*height)
			draw.Draw(canvas, image.Rectangle{Min: origin, Max: origin.Add(image.Pt(tier.Width, height))}, frame, frame.Bounds().Min, draw.Src)
			framesInSheet++
			frameIdx++
		}

		if err := encodeSheet(filepath.Join(opts.Dir, strconv.Itoa(sheetNo)+SheetExt), canvas, quality); err != nil {
			return PackResult{}, err
		}

		writePlaylistEntry(&playlist, sheetNo, framesInSheet, tier, height)
	}

	playlist.WriteString("\n#EXT-X-ENDLIST\n")
	if err := os.WriteFile(filepath.Join(opts.Dir, PlaylistName), []byte(playlist.String()), 0o644); err != nil {
		return PackResult{}, fmt.Errorf("write playlist: %w", err)
	}

	total := len(opts.Frames)
	tier.TileCount = &total
	return PackResult{Tier: tier, SheetCount: sheetCount}, nil
}

// validateFrameDimensions reads every frame header and returns the tile
// height fixed from the first frame.
func validateFrameDimensions(frames []string, width int) (int, error) {
	var height int
	for i, path := range frames {
		cfg, err := decodeFrameConfig(path)
		if err != nil {
			return 0, err
		}
		if i == 0 {
			height = cfg.Height
		}
		if cfg.Width != width || cfg.Height != height {
			return 0, fmt.Errorf("%w: frame %s is %dx%d, want %dx%d",
				domain.ErrDimensionMismatch, filepath.Base(path), cfg.Width, cfg.Height, width, height)
		}
	}
	return height, nil
}

func decodeFrameConfig(path string) (image.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, fmt.Errorf("open frame: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, fmt.Errorf("decode frame %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

func decodeFrame(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode frame %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

func encodeSheet(path string, canvas *image.RGBA, quality int) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := jpeg.Encode(out, canvas, &jpeg.Options{Quality: quality}); err != nil {
		out.Close()
		return fmt.Errorf("encode sheet %s: %w", filepath.Base(path), err)
	}
	return out.Close()
}

func writePlaylistHeader(b *strings.Builder, sheetCount int) {
	fmt.Fprintf(b, "#EXTM3U\n#EXT-X-TARGETDURATION:%d\n#EXT-X-VERSION:7\n#EXT-X-MEDIA-SEQUENCE:1\n#EXT-X-PLAYLIST-TYPE:VOD\n#EXT-X-IMAGES-ONLY\n\n", sheetCount)
}

func writePlaylistEntry(b *strings.Builder, sheetNo, framesInSheet int, tier domain.TileManifest, height int) {
	sheetDuration := ceilDiv(tier.Interval*framesInSheet, 1000)
	tileDuration := ceilDiv(tier.Interval, 1000)
	fmt.Fprintf(b, "#EXTINF:%d,\n#EXT-X-TILES:RESOLUTION=%dx%d,LAYOUT=%dx%d,DURATION=%d\n%d%s\n",
		sheetDuration, tier.Width, height, tier.TileWidth, tier.TileHeight, tileDuration, sheetNo, SheetExt)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
