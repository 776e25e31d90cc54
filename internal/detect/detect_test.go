package detect

import (
	"image"
	"image/color"
	"image/draw"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/cardsight/internal/config"
)

func table(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{R: 11, G: 102, B: 35, A: 255}), image.Point{}, draw.Src)
	return img
}

func place(img *image.NRGBA, r image.Rectangle) {
	draw.Draw(img, r, image.NewUniform(color.White), image.Point{}, draw.Src)
}

// assertNear checks every edge of got lies within tol pixels of want
func assertNear(t *testing.T, want, got image.Rectangle, tol int) {
	t.Helper()
	assert.InDelta(t, want.Min.X, got.Min.X, float64(tol), "min x of %v", got)
	assert.InDelta(t, want.Min.Y, got.Min.Y, float64(tol), "min y of %v", got)
	assert.InDelta(t, want.Max.X, got.Max.X, float64(tol), "max x of %v", got)
	assert.InDelta(t, want.Max.Y, got.Max.Y, float64(tol), "max y of %v", got)
}

func TestDetectBlankTable(t *testing.T) {
	quads, err := New(config.DefaultMinContourArea).Detect(table(800, 600))
	require.NoError(t, err)
	assert.Empty(t, quads)
}

func TestDetectCards(t *testing.T) {
	img := table(800, 600)
	player := image.Rect(260, 380, 360, 525)
	dealer := image.Rect(260, 80, 360, 225)
	place(img, dealer)
	place(img, player)

	quads, err := New(config.DefaultMinContourArea).Detect(img)
	require.NoError(t, err)
	require.Len(t, quads, 2)
	sort.Slice(quads, func(i, j int) bool { return quads[i].Box.Min.Y < quads[j].Box.Min.Y })

	assertNear(t, dealer, quads[0].Box, 2)
	assertNear(t, player, quads[1].Box, 2)
	for _, q := range quads {
		assert.Len(t, q.Corners, 4)
		assert.InEpsilon(t, 100*145, q.Area, 0.05)
		assert.NotEmpty(t, q.Contour)
	}
}

func TestDetectRejectsSmallAndNonQuad(t *testing.T) {
	img := table(400, 300)
	// too small for the default threshold
	place(img, image.Rect(20, 20, 60, 80))
	// L-shaped region: six vertices
	place(img, image.Rect(150, 40, 350, 100))
	place(img, image.Rect(150, 100, 210, 260))

	quads, err := New(config.DefaultMinContourArea).Detect(img)
	require.NoError(t, err)
	assert.Empty(t, quads)
}

func TestDetectRejectsEmptyImage(t *testing.T) {
	_, err := New(config.DefaultMinContourArea).Detect(image.NewNRGBA(image.Rectangle{}))
	assert.Error(t, err)
}

func TestScaleMinArea(t *testing.T) {
	ref := config.Size{W: 100, H: 145}
	assert.Equal(t, 2500.0, ScaleMinArea(5000, ref, config.Size{W: 50, H: 145}))
	assert.Equal(t, 20000.0, ScaleMinArea(5000, ref, config.Size{W: 200, H: 290}))
	assert.Equal(t, 5000.0, ScaleMinArea(5000, ref, ref))
	assert.Equal(t, 5000.0, ScaleMinArea(5000, ref, config.Size{}))
}
