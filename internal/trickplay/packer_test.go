package trickplay

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"trickplay/internal/domain"
)

func writeFrame(t *testing.T, dir, name string, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create frame: %v", err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("encode frame: %v", err)
	}
	return path
}

func testTier(width, tileWidth, tileHeight, interval int) domain.TileManifest {
	return domain.TileManifest{Width: width, TileWidth: tileWidth, TileHeight: tileHeight, Interval: interval}
}

func TestPackSheetCountAndTileCount(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "tiles")

	frames := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		frames = append(frames, writeFrame(t, src, fmt.Sprintf("img_%08d.jpg", i+1), 64, 36, color.Gray{Y: uint8(30 * i)}))
	}

	result, err := Pack(PackOptions{Frames: frames, Dir: out, Tier: testTier(64, 2, 2, 10000), Quality: 90})
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	if result.SheetCount != 2 {
		t.Errorf("SheetCount: got %d, want 2", result.SheetCount)
	}
	if result.Tier.TileCount == nil || *result.Tier.TileCount != 7 {
		t.Errorf("TileCount: got %v, want 7", result.Tier.TileCount)
	}
	if result.Tier.Height == nil || *result.Tier.Height != 36 {
		t.Errorf("Height: got %v, want 36", result.Tier.Height)
	}

	for _, name := range []string{"1.jpg", "2.jpg", PlaylistName} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "3.jpg")); !os.IsNotExist(err) {
		t.Errorf("unexpected third sheet")
	}
}

func TestPackSheetGeometry(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "tiles")

	// Three frames into a 2x2 grid: one partially filled sheet.
	frames := []string{
		writeFrame(t, src, "a.jpg", 40, 30, color.RGBA{R: 200, A: 255}),
		writeFrame(t, src, "b.jpg", 40, 30, color.RGBA{G: 200, A: 255}),
		writeFrame(t, src, "c.jpg", 40, 30, color.RGBA{B: 200, A: 255}),
	}

	if _, err := Pack(PackOptions{Frames: frames, Dir: out, Tier: testTier(40, 2, 2, 5000)}); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	f, err := os.Open(filepath.Join(out, "1.jpg"))
	if err != nil {
		t.Fatalf("open sheet: %v", err)
	}
	defer f.Close()
	sheet, err := jpeg.Decode(f)
	if err != nil {
		t.Fatalf("decode sheet: %v", err)
	}

	bounds := sheet.Bounds()
	if bounds.Dx() != 80 || bounds.Dy() != 60 {
		t.Fatalf("sheet size: got %dx%d, want 80x60", bounds.Dx(), bounds.Dy())
	}

	// Row-major placement: frame 0 top-left (red), frame 1 top-right
	// (green), frame 2 bottom-left (blue).
	checks := []struct {
		name    string
		x, y    int
		r, g, b bool
	}{
		{"frame0", 20, 15, true, false, false},
		{"frame1", 60, 15, false, true, false},
		{"frame2", 20, 45, false, false, true},
	}
	for _, check := range checks {
		r, g, b, _ := sheet.At(check.x, check.y).RGBA()
		dominantR := r > g && r > b
		dominantG := g > r && g > b
		dominantB := b > r && b > g
		if dominantR != check.r || dominantG != check.g || dominantB != check.b {
			t.Errorf("%s at (%d,%d): got rgb(%d,%d,%d)", check.name, check.x, check.y, r>>8, g>>8, b>>8)
		}
	}
}

func TestPackEmptyInput(t *testing.T) {
	_, err := Pack(PackOptions{Frames: nil, Dir: t.TempDir(), Tier: testTier(64, 2, 2, 10000)})
	if !errors.Is(err, domain.ErrEmptyInput) {
		t.Fatalf("got %v, want ErrEmptyInput", err)
	}
}

func TestPackDimensionMismatch(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "tiles")

	frames := []string{
		writeFrame(t, src, "a.jpg", 64, 36, color.Gray{Y: 10}),
		writeFrame(t, src, "b.jpg", 48, 36, color.Gray{Y: 20}),
	}

	_, err := Pack(PackOptions{Frames: frames, Dir: out, Tier: testTier(64, 2, 2, 10000)})
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("got %v, want ErrDimensionMismatch", err)
	}

	// Validation runs before anything is written: no partial output.
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		entries, _ := os.ReadDir(out)
		if len(entries) != 0 {
			t.Errorf("expected no sheet files, found %d entries", len(entries))
		}
	}
}

func TestPackHeightMismatch(t *testing.T) {
	src := t.TempDir()

	frames := []string{
		writeFrame(t, src, "a.jpg", 64, 36, color.Gray{Y: 10}),
		writeFrame(t, src, "b.jpg", 64, 48, color.Gray{Y: 20}),
	}

	_, err := Pack(PackOptions{Frames: frames, Dir: filepath.Join(t.TempDir(), "tiles"), Tier: testTier(64, 2, 2, 10000)})
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("got %v, want ErrDimensionMismatch", err)
	}
}

func TestPackPlaylistFormat(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "tiles")

	frames := []string{
		writeFrame(t, src, "a.jpg", 32, 18, color.Gray{Y: 10}),
		writeFrame(t, src, "b.jpg", 32, 18, color.Gray{Y: 20}),
		writeFrame(t, src, "c.jpg", 32, 18, color.Gray{Y: 30}),
	}

	// Grid of 2x1: two full-ish sheets, second holds a single frame.
	if _, err := Pack(PackOptions{Frames: frames, Dir: out, Tier: testTier(32, 2, 1, 10000)}); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(out, PlaylistName))
	if err != nil {
		t.Fatalf("read playlist: %v", err)
	}
	playlist := string(data)

	wantFragments := []string{
		"#EXTM3U\n#EXT-X-TARGETDURATION:2\n#EXT-X-VERSION:7\n#EXT-X-MEDIA-SEQUENCE:1\n#EXT-X-PLAYLIST-TYPE:VOD\n#EXT-X-IMAGES-ONLY\n",
		"#EXTINF:20,\n#EXT-X-TILES:RESOLUTION=32x18,LAYOUT=2x1,DURATION=10\n1.jpg\n",
		"#EXTINF:10,\n#EXT-X-TILES:RESOLUTION=32x18,LAYOUT=2x1,DURATION=10\n2.jpg\n",
		"#EXT-X-ENDLIST\n",
	}
	for _, fragment := range wantFragments {
		if !strings.Contains(playlist, fragment) {
			t.Errorf("playlist missing fragment %q\nplaylist:\n%s", fragment, playlist)
		}
	}
}
