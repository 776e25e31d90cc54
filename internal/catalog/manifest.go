package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ManifestFile is the optional metadata file at the root of a catalog
const ManifestFile = "catalog.toml"

// Manifest describes a catalog directory
type Manifest struct {
	Catalog ManifestSection `toml:"catalog"`
}

type ManifestSection struct {
	ID          string `toml:"id"`
	Name        string `toml:"name"`
	Version     string `toml:"version"`
	Author      string `toml:"author"`
	License     string `toml:"license"`
	Description string `toml:"description"`
	// CardBack names the image used for the draw pile and hidden cards.
	CardBack string `toml:"card_back"`
}

// ReadManifest decodes dir/catalog.toml. A catalog without one yields
// nil and no error.
func ReadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", ManifestFile, err)
	}
	return &m, nil
}

// DisplayName returns the manifest name, falling back to the directory name
func DisplayName(dir string) string {
	if m, err := ReadManifest(dir); err == nil && m != nil && m.Catalog.Name != "" {
		return m.Catalog.Name
	}
	return filepath.Base(dir)
}
