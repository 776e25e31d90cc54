package rectify

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/cardsight/internal/config"
)

func TestOrderCorners(t *testing.T) {
	pts := []image.Point{{359, 524}, {260, 524}, {359, 380}, {260, 380}}
	got := OrderCorners(pts)
	assert.Equal(t, [4]Point{{260, 380}, {359, 380}, {359, 524}, {260, 524}}, got)

	// slightly tilted card
	pts = []image.Point{{105, 12}, {10, 20}, {18, 160}, {112, 150}}
	got = OrderCorners(pts)
	assert.Equal(t, [4]Point{{10, 20}, {105, 12}, {112, 150}, {18, 160}}, got)
}

func TestPerspectiveTransformMapsCorners(t *testing.T) {
	src := [4]Point{{10, 20}, {105, 12}, {112, 150}, {18, 160}}
	dst := [4]Point{{0, 0}, {99, 0}, {99, 144}, {0, 144}}
	h, err := PerspectiveTransform(src, dst)
	require.NoError(t, err)
	for i := range src {
		x, y := h.Apply(src[i].X, src[i].Y)
		assert.InDelta(t, dst[i].X, x, 1e-4)
		assert.InDelta(t, dst[i].Y, y, 1e-4)
	}
}

func TestPerspectiveTransformSingular(t *testing.T) {
	line := [4]Point{{0, 0}, {1, 1}, {2, 2}, {3, 3}}
	_, err := PerspectiveTransform(line, [4]Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
	assert.ErrorIs(t, err, ErrSingular)
}

func patterned(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 5), B: uint8((x + y) * 3), A: 255})
		}
	}
	return img
}

func TestRectifyAxisAlignedIsCrop(t *testing.T) {
	src := patterned(200, 220)
	r := New(config.Size{W: 40, H: 60})
	corners := []image.Point{{90, 30}, {51, 30}, {51, 89}, {90, 89}}

	out, err := r.Rectify(src, corners)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 40, 60), out.Bounds())
	for y := 0; y < 60; y++ {
		for x := 0; x < 40; x++ {
			want, got := src.NRGBAAt(51+x, 30+y), out.NRGBAAt(x, y)
			require.InDelta(t, want.R, got.R, 1, "pixel %d,%d", x, y)
			require.InDelta(t, want.G, got.G, 1, "pixel %d,%d", x, y)
			require.InDelta(t, want.B, got.B, 1, "pixel %d,%d", x, y)
		}
	}
}

func TestRectifyScales(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 50, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 5), A: 255})
		}
	}
	r := New(config.Size{W: 11, H: 5})
	out, err := r.Rectify(src, []image.Point{{0, 0}, {20, 0}, {20, 8}, {0, 8}})
	require.NoError(t, err)
	// output column u samples source column 2u
	for u := 0; u < 11; u++ {
		assert.InDelta(t, u*10, int(out.NRGBAAt(u, 2).R), 1)
	}
}

func TestRectifyRejectsWrongPointCount(t *testing.T) {
	_, err := New(config.Size{W: 10, H: 10}).Rectify(patterned(20, 20), []image.Point{{0, 0}, {5, 5}, {0, 5}})
	assert.ErrorIs(t, err, ErrSingular)
}

func TestRectifyRejectsCollinearCorners(t *testing.T) {
	_, err := New(config.Size{W: 10, H: 10}).Rectify(patterned(20, 20), []image.Point{{0, 0}, {5, 5}, {10, 10}, {15, 15}})
	assert.ErrorIs(t, err, ErrSingular)
}
