// Package testutils generates synthetic card images and catalogs so tests
// need no binary fixtures.
package testutils

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arcanaland/cardsight/internal/card"
	"github.com/arcanaland/cardsight/internal/catalog"
	"github.com/arcanaland/cardsight/internal/config"
)

const (
	gridCols = 4
	gridRows = 6
)

var (
	paper     = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	redInk    = color.NRGBA{R: 200, G: 30, B: 40, A: 255}
	blackInk  = color.NRGBA{R: 20, G: 20, B: 20, A: 255}
	backBlue  = color.NRGBA{R: 20, G: 30, B: 90, A: 255}
	backLight = color.NRGBA{R: 200, G: 210, B: 240, A: 255}
)

// CardSize is the size synthetic cards are drawn at by default
var CardSize = config.DefaultCardSize

// CardImage draws a white card with a block pattern unique to seed.
// The low six cells encode seed+1, so seeds 0..62 never collide. A white
// margin of a tenth of the width surrounds the pattern.
func CardImage(seed int, size config.Size) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size.W, size.H))
	draw.Draw(img, img.Bounds(), image.NewUniform(paper), image.Point{}, draw.Src)

	ink := blackInk
	if seed%4 == 1 || seed%4 == 2 {
		ink = redInk
	}

	x0, x1 := size.W/10, size.W-size.W/10
	y0, y1 := size.H*8/100, size.H-size.H*8/100
	mix := uint64(seed+1) * 0x9E3779B97F4A7C15
	for k := 0; k < gridCols*gridRows; k++ {
		var on bool
		if k < 6 {
			on = (seed+1)>>k&1 == 1
		} else {
			on = mix>>(k+17)&1 == 1
		}
		if !on {
			continue
		}
		col, row := k%gridCols, k/gridCols
		r := image.Rect(
			x0+(x1-x0)*col/gridCols,
			y0+(y1-y0)*row/gridRows,
			x0+(x1-x0)*(col+1)/gridCols,
			y0+(y1-y0)*(row+1)/gridRows,
		)
		draw.Draw(img, r, image.NewUniform(ink), image.Point{}, draw.Src)
	}
	return img
}

// Back draws a card back: a white rim around a fine blue checker. The
// checker averages out over pattern cells, so backs never match a card.
func Back(size config.Size) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size.W, size.H))
	draw.Draw(img, img.Bounds(), image.NewUniform(paper), image.Point{}, draw.Src)
	inner := img.Bounds().Inset(size.W / 12)
	for y := inner.Min.Y; y < inner.Max.Y; y++ {
		for x := inner.Min.X; x < inner.Max.X; x++ {
			c := backBlue
			if (x/2+y/2)%2 == 0 {
				c = backLight
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// Seed returns the pattern seed for a standard card name: its position in
// card.StandardNames, or 60 for names outside the standard deck.
func Seed(name string) int {
	for i, n := range card.StandardNames() {
		if n == name {
			return i
		}
	}
	return 60
}

// Entries builds catalog entries for names at the given size
func Entries(size config.Size, names ...string) []catalog.Entry {
	entries := make([]catalog.Entry, len(names))
	for i, name := range names {
		entries[i] = catalog.Entry{Name: name, Image: CardImage(Seed(name), size)}
	}
	return entries
}

// Catalog builds an in-memory catalog of synthetic cards
func Catalog(t testing.TB, names ...string) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(Entries(CardSize, names...))
	require.NoError(t, err)
	return c
}

// StandardCatalog builds a catalog holding all 52 standard cards
func StandardCatalog(t testing.TB) *catalog.Catalog {
	t.Helper()
	return Catalog(t, card.StandardNames()...)
}

// WritePNG encodes img to path
func WritePNG(t testing.TB, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

// WriteCatalog writes one PNG per name into dir
func WriteCatalog(t testing.TB, dir string, size config.Size, names ...string) {
	t.Helper()
	for _, e := range Entries(size, names...) {
		WritePNG(t, filepath.Join(dir, e.Name+".png"), e.Image)
	}
}
