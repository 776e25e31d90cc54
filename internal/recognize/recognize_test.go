package recognize_test

import (
	"image"
	"image/color"
	"image/draw"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/cardsight/internal/catalog"
	"github.com/arcanaland/cardsight/internal/config"
	"github.com/arcanaland/cardsight/internal/recognize"
	"github.com/arcanaland/cardsight/internal/testutils"
)

var felt = color.NRGBA{R: 0x0b, G: 0x66, B: 0x23, A: 0xff}

func table(cards map[image.Point]string) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 800, 600))
	draw.Draw(img, img.Bounds(), image.NewUniform(felt), image.Point{}, draw.Src)
	for at, name := range cards {
		c := testutils.CardImage(testutils.Seed(name), testutils.CardSize)
		draw.Draw(img, c.Bounds().Add(at), c, image.Point{}, draw.Src)
	}
	return img
}

func newOrchestrator(t *testing.T, c *catalog.Catalog, s config.Settings, opts ...recognize.Option) *recognize.Orchestrator {
	t.Helper()
	o := recognize.New(c, s, opts...)
	t.Cleanup(func() { o.Close() })
	return o
}

func scan(t *testing.T, o *recognize.Orchestrator, img image.Image) []recognize.Detection {
	t.Helper()
	dets, err := o.Scan(img)
	require.NoError(t, err)
	return dets
}

// assertNear checks every edge of got lies within two pixels of want
func assertNear(t *testing.T, want, got image.Rectangle) {
	t.Helper()
	assert.InDelta(t, want.Min.X, got.Min.X, 2, "min x of %v", got)
	assert.InDelta(t, want.Min.Y, got.Min.Y, 2, "min y of %v", got)
	assert.InDelta(t, want.Max.X, got.Max.X, 2, "max x of %v", got)
	assert.InDelta(t, want.Max.Y, got.Max.Y, 2, "max y of %v", got)
}

func TestScanBlankTable(t *testing.T) {
	o := newOrchestrator(t, testutils.StandardCatalog(t), config.DefaultSettings())
	assert.Empty(t, scan(t, o, table(nil)))
}

func TestScanRejectsEmptyImage(t *testing.T) {
	o := newOrchestrator(t, testutils.StandardCatalog(t), config.DefaultSettings())
	_, err := o.Scan(image.NewNRGBA(image.Rectangle{}))
	assert.Error(t, err)
}

func TestScanSingleCard(t *testing.T) {
	o := newOrchestrator(t, testutils.StandardCatalog(t), config.DefaultSettings())
	assert.Equal(t, testutils.CardSize, o.CanonicalSize())

	dets := scan(t, o, table(map[image.Point]string{{300, 200}: "king_of_hearts"}))
	require.Len(t, dets, 1)

	d := dets[0]
	assert.True(t, d.Matched)
	assert.Equal(t, "king_of_hearts", d.Name)
	assert.Greater(t, d.Confidence, 0.8)
	assertNear(t, image.Rect(300, 200, 400, 345), d.Box)
	assert.Len(t, d.Corners, 4)
}

func TestScanIsRepeatable(t *testing.T) {
	o := newOrchestrator(t, testutils.StandardCatalog(t), config.DefaultSettings(), recognize.WithWorkers(3))
	img := table(map[image.Point]string{
		{260, 80}:  "queen_of_spades",
		{380, 80}:  "4_of_diamonds",
		{260, 380}: "ace_of_clubs",
	})

	names := func() map[string]image.Rectangle {
		out := map[string]image.Rectangle{}
		for _, d := range scan(t, o, img) {
			out[d.Name] = d.Box
		}
		return out
	}
	first := names()
	want := map[string]image.Rectangle{
		"queen_of_spades": image.Rect(260, 80, 360, 225),
		"4_of_diamonds":   image.Rect(380, 80, 480, 225),
		"ace_of_clubs":    image.Rect(260, 380, 360, 525),
	}
	require.Len(t, first, len(want))
	for name, box := range want {
		require.Contains(t, first, name)
		assertNear(t, box, first[name])
	}
	assert.Equal(t, first, names())
}

func TestTotalsSplitByMidline(t *testing.T) {
	o := newOrchestrator(t, testutils.StandardCatalog(t), config.DefaultSettings())
	img := table(map[image.Point]string{
		{260, 80}:  "king_of_hearts",
		{380, 80}:  "9_of_clubs",
		{260, 380}: "ace_of_spades",
		{380, 380}: "ace_of_diamonds",
		{500, 380}: "9_of_hearts",
	})

	dets := scan(t, o, img)
	require.Len(t, dets, 5)
	for _, d := range dets {
		want := recognize.Player
		if d.Box.Min.Y < 300 {
			want = recognize.Dealer
		}
		assert.Equal(t, want, recognize.SideOf(d, 600), d.Name)
	}

	dealer, player := recognize.Totals(dets, 600)
	assert.Equal(t, 19, dealer)
	assert.Equal(t, 21, player)
}

func TestUnmatchedCardCountsZero(t *testing.T) {
	s := config.DefaultSettings()
	s.MatchThreshold = 0.8
	o := newOrchestrator(t, testutils.Catalog(t, "ace_of_spades", "king_of_hearts"), s)

	img := table(map[image.Point]string{
		{260, 380}: "king_of_hearts",
		{380, 380}: "5_of_clubs",
	})
	dets := scan(t, o, img)
	require.Len(t, dets, 2)
	sort.Slice(dets, func(i, j int) bool { return dets[i].Box.Min.X < dets[j].Box.Min.X })

	assert.True(t, dets[0].Matched)
	assert.Equal(t, "king_of_hearts", dets[0].Name)
	assert.False(t, dets[1].Matched)
	assert.Empty(t, dets[1].Name)
	assert.Zero(t, dets[1].Confidence)

	_, player := recognize.Totals(dets, 600)
	assert.Equal(t, 10, player)
}

func TestSideOfUsesCentroid(t *testing.T) {
	top := recognize.Detection{Contour: []image.Point{{10, 10}, {10, 280}, {60, 280}, {60, 10}}}
	bottom := recognize.Detection{Contour: []image.Point{{10, 300}, {10, 400}, {60, 400}, {60, 300}}}
	assert.Equal(t, recognize.Dealer, recognize.SideOf(top, 600))
	assert.Equal(t, recognize.Player, recognize.SideOf(bottom, 600))
	assert.Equal(t, "dealer", recognize.Dealer.String())
	assert.Equal(t, "player", recognize.Player.String())
}

func TestMatchDelegatesToMatcher(t *testing.T) {
	c := testutils.Catalog(t, "7_of_hearts", "8_of_hearts")
	o := newOrchestrator(t, c, config.Settings{CanonicalCardSize: config.Size{W: 50, H: 70}})
	assert.Equal(t, config.Size{W: 50, H: 70}, o.CanonicalSize())

	img, _ := c.Get("8_of_hearts")
	res, ok := o.Match(img)
	require.True(t, ok)
	assert.Equal(t, "8_of_hearts", res.Name)
}
