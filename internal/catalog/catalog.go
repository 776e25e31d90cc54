package catalog

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nfnt/resize"

	"github.com/arcanaland/cardsight/internal/config"
	"github.com/arcanaland/cardsight/internal/vision"
)

var (
	ErrEmptyCatalog  = errors.New("catalog has no card images")
	ErrZeroDimension = errors.New("card image has zero width or height")
	ErrDuplicateName = errors.New("duplicate card name")
)

// Extensions are the image file types a catalog directory may hold
var Extensions = []string{".png", ".jpg", ".jpeg", ".gif"}

// Entry is one reference image keyed by its card name
type Entry struct {
	Name  string
	Image *image.NRGBA
}

// Catalog is the immutable set of reference images, ordered by name
type Catalog struct {
	Path    string
	entries []Entry
	index   map[string]int
}

// New builds a catalog from in-memory entries. Names must be unique and
// every image must have non-zero dimensions.
func New(entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		entries: append([]Entry(nil), entries...),
		index:   make(map[string]int, len(entries)),
	}
	sort.SliceStable(c.entries, func(i, j int) bool {
		return c.entries[i].Name < c.entries[j].Name
	})
	for i, e := range c.entries {
		if _, ok := c.index[e.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, e.Name)
		}
		if e.Image == nil || e.Image.Bounds().Empty() {
			return nil, fmt.Errorf("%w: %s", ErrZeroDimension, e.Name)
		}
		c.index[e.Name] = i
	}
	return c, nil
}

// Load reads every image in dir into a catalog keyed by base filename.
// Names listed in exclude (such as the card back) are skipped.
func Load(dir string, exclude ...string) (*Catalog, error) {
	files, err := ImageFiles(dir)
	if err != nil {
		return nil, err
	}

	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}

	var entries []Entry
	for _, path := range files {
		name := NameOf(path)
		if skip[name] {
			continue
		}
		img, err := LoadImage(path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: name, Image: img})
	}

	c, err := New(entries)
	if err != nil {
		return nil, fmt.Errorf("error loading catalog %s: %w", dir, err)
	}
	c.Path = dir
	return c, nil
}

// Entries returns the catalog entries in lexicographic name order
func (c *Catalog) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Names returns the catalog keys in lexicographic order
func (c *Catalog) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}

// Len returns the number of entries
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Get returns the reference image for name
func (c *Catalog) Get(name string) (*image.NRGBA, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return c.entries[i].Image, true
}

// Size returns the dimensions of the first entry, the canonical size
// every rectification in a pass shares.
func (c *Catalog) Size() config.Size {
	b := c.entries[0].Image.Bounds()
	return config.Size{W: b.Dx(), H: b.Dy()}
}

// NameOf returns the card name for an image path: the base filename
// without its extension.
func NameOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ImageFiles lists the image files directly inside dir, sorted by name
func ImageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading catalog directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, e := range Extensions {
			if ext == e {
				files = append(files, filepath.Join(dir, entry.Name()))
				break
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// LoadImage decodes an image file into an opaque NRGBA buffer
func LoadImage(path string) (*image.NRGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return vision.ToNRGBA(img), nil
}

// FindImage looks for name with any supported extension in dir
func FindImage(dir, name string) (string, error) {
	for _, ext := range Extensions {
		path := filepath.Join(dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no image named %q in %s", name, dir)
}

// Resize scales img to size
func Resize(img image.Image, size config.Size) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == size.W && b.Dy() == size.H {
		return vision.ToNRGBA(img)
	}
	return vision.ToNRGBA(resize.Resize(uint(size.W), uint(size.H), img, resize.Bilinear))
}

// LoadDeck reads every card image in dir resized to the table card size.
// Each returned image is a distinct buffer, one per card in the deck.
func LoadDeck(dir string, size config.Size, exclude ...string) ([]*image.NRGBA, error) {
	c, err := Load(dir, exclude...)
	if err != nil {
		return nil, err
	}
	deck := make([]*image.NRGBA, 0, c.Len())
	for _, e := range c.entries {
		deck = append(deck, Resize(e.Image, size))
	}
	return deck, nil
}
