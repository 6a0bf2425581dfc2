package trickplay

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"trickplay/internal/domain"
)

func intPtr(v int) *int { return &v }

func TestMergeManifestFresh(t *testing.T) {
	tier := domain.TileManifest{Width: 320, Height: intPtr(180), TileWidth: 10, TileHeight: 10, TileCount: intPtr(42), Interval: 10000}

	m := MergeManifest(nil, "1.0.0", tier)

	if m.Version != "1.0.0" {
		t.Errorf("Version: got %q", m.Version)
	}
	if len(m.WidthResolutions) != 1 {
		t.Fatalf("resolutions: got %d, want 1", len(m.WidthResolutions))
	}
	if !reflect.DeepEqual(m.WidthResolutions[320], tier) {
		t.Errorf("tier mismatch: %+v", m.WidthResolutions[320])
	}
}

func TestMergeManifestUnion(t *testing.T) {
	existingTier := domain.TileManifest{Width: 320, Height: intPtr(180), TileWidth: 10, TileHeight: 10, TileCount: intPtr(100), Interval: 10000}
	existing, err := json.Marshal(domain.Manifest{
		Version:          "0.9.0",
		WidthResolutions: map[int]domain.TileManifest{320: existingTier},
	})
	if err != nil {
		t.Fatal(err)
	}

	newTier := domain.TileManifest{Width: 640, Height: intPtr(360), TileWidth: 10, TileHeight: 10, TileCount: intPtr(100), Interval: 10000}
	m := MergeManifest(existing, "1.0.0", newTier)

	if len(m.WidthResolutions) != 2 {
		t.Fatalf("resolutions: got %d, want 2", len(m.WidthResolutions))
	}
	if !reflect.DeepEqual(m.WidthResolutions[320], existingTier) {
		t.Errorf("existing 320 tier modified: %+v", m.WidthResolutions[320])
	}
	if !reflect.DeepEqual(m.WidthResolutions[640], newTier) {
		t.Errorf("new 640 tier mismatch: %+v", m.WidthResolutions[640])
	}
}

func TestMergeManifestReplacesSameWidth(t *testing.T) {
	existing, _ := json.Marshal(domain.Manifest{
		Version:          "0.9.0",
		WidthResolutions: map[int]domain.TileManifest{320: {Width: 320, TileCount: intPtr(5), Interval: 10000}},
	})

	regenerated := domain.TileManifest{Width: 320, Height: intPtr(180), TileWidth: 10, TileHeight: 10, TileCount: intPtr(90), Interval: 5000}
	m := MergeManifest(existing, "1.0.0", regenerated)

	if len(m.WidthResolutions) != 1 {
		t.Fatalf("resolutions: got %d, want 1", len(m.WidthResolutions))
	}
	if !reflect.DeepEqual(m.WidthResolutions[320], regenerated) {
		t.Errorf("320 tier not replaced: %+v", m.WidthResolutions[320])
	}
}

func TestMergeManifestCorruptExisting(t *testing.T) {
	tests := []struct {
		name     string
		existing []byte
	}{
		{"garbage", []byte("{not json")},
		{"null", []byte("null")},
		{"missing resolutions", []byte(`{"Version":"0.1.0"}`)},
	}

	tier := domain.TileManifest{Width: 320, Interval: 10000, TileWidth: 10, TileHeight: 10}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := MergeManifest(tc.existing, "1.0.0", tier)
			if len(m.WidthResolutions) != 1 {
				t.Errorf("resolutions: got %d, want 1", len(m.WidthResolutions))
			}
			if _, ok := m.WidthResolutions[320]; !ok {
				t.Errorf("missing 320 tier")
			}
		})
	}
}

func TestWriteReadManifestRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trickplay", ManifestName)
	m := domain.Manifest{
		Version: "1.0.0",
		WidthResolutions: map[int]domain.TileManifest{
			320: {Width: 320, Height: intPtr(180), TileWidth: 10, TileHeight: 10, TileCount: intPtr(12), Interval: 10000},
		},
	}

	if err := WriteManifest(path, m); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}

	// Width keys go over the wire as decimal strings.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"320"`) {
		t.Errorf("manifest missing decimal width key: %s", raw)
	}

	got, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if !reflect.DeepEqual(got, m) {
		t.Errorf("roundtrip mismatch:\ngot  %+v\nwant %+v", got, m)
	}
}

func TestReadManifestMissing(t *testing.T) {
	_, err := ReadManifest(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestReadManifestCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestName)
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := ReadManifest(path)
	if !errors.Is(err, domain.ErrCorruptManifest) {
		t.Fatalf("got %v, want ErrCorruptManifest", err)
	}
}
