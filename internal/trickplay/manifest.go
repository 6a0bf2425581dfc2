package trickplay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"trickplay/internal/domain"
)

// ManifestName is the fixed manifest file name in internal-metadata mode.
const ManifestName = "manifest.json"

// MergeManifest folds a freshly generated tier into an existing manifest
// document. A nil, empty or unparseable existing document is treated as
// absent, so a corrupt manifest degrades into a fresh one instead of failing
// the generation run. Entries for other widths survive unmodified; the entry
// for tier.Width is fully replaced.
func MergeManifest(existing []byte, version string, tier domain.TileManifest) domain.Manifest {
	merged := domain.Manifest{
		Version:          version,
		WidthResolutions: map[int]domain.TileManifest{tier.Width: tier},
	}

	if len(existing) == 0 {
		return merged
	}

	var old domain.Manifest
	if err := json.Unmarshal(existing, &old); err != nil || old.WidthResolutions == nil {
		return merged
	}

	for width, res := range old.WidthResolutions {
		if width == tier.Width {
			continue
		}
		merged.WidthResolutions[width] = res
	}
	return merged
}

// ReadManifest loads and parses a manifest file.
func ReadManifest(path string) (domain.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Manifest{}, domain.ErrNotFound
		}
		return domain.Manifest{}, err
	}
	var m domain.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return domain.Manifest{}, fmt.Errorf("%w: %v", domain.ErrCorruptManifest, err)
	}
	return m, nil
}

// WriteManifest persists the manifest by staging to a temp file in the same
// directory and renaming over the destination, so readers never observe a
// partial document.
func WriteManifest(path string, m domain.Manifest) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ManifestName+".*")
	if err != nil {
		return fmt.Errorf("stage manifest: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	if err := enc.Encode(m); err != nil {
		tmp.Close()
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
