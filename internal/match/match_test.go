package match_test

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/cardsight/internal/catalog"
	"github.com/arcanaland/cardsight/internal/config"
	"github.com/arcanaland/cardsight/internal/match"
	"github.com/arcanaland/cardsight/internal/testutils"
	"github.com/arcanaland/cardsight/internal/vision"
)

func TestMatchExactTemplate(t *testing.T) {
	c := testutils.StandardCatalog(t)
	m := match.New(c)
	defer m.Close()

	for _, name := range []string{"ace_of_spades", "king_of_hearts", "10_of_diamonds"} {
		img, _ := c.Get(name)
		res, ok := m.Match(img)
		require.True(t, ok, name)
		assert.Equal(t, name, res.Name)
		assert.InDelta(t, 1.0, res.Score, 1e-4)
	}
}

func TestScoresAreBounded(t *testing.T) {
	c := testutils.StandardCatalog(t)
	m := match.New(c)
	defer m.Close()
	img, _ := c.Get("7_of_clubs")

	scores := m.Scores(img)
	require.Len(t, scores, c.Len())
	for _, s := range scores {
		assert.GreaterOrEqual(t, s, -1.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestMatchBelowThreshold(t *testing.T) {
	logger, handler := testutils.NewLogger()
	m := match.New(testutils.Catalog(t, "ace_of_spades", "2_of_hearts"),
		match.WithThreshold(0.99),
		match.WithLogger(logger))
	defer m.Close()

	// an unrelated pattern correlates weakly with both templates
	res, ok := m.Match(testutils.CardImage(40, testutils.CardSize))
	assert.False(t, ok)
	assert.Equal(t, match.Result{}, res)
	assert.Contains(t, handler.Messages(), "unrecognized card")
}

func TestFlatImageScoresZero(t *testing.T) {
	m := match.New(testutils.Catalog(t, "ace_of_spades"))
	defer m.Close()
	flat := image.NewNRGBA(image.Rect(0, 0, 100, 145))
	draw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	assert.Equal(t, []float64{0}, m.Scores(flat))
	_, ok := m.Match(flat)
	assert.False(t, ok)
}

func TestTiesGoToFirstName(t *testing.T) {
	img := testutils.CardImage(5, testutils.CardSize)
	c, err := catalog.New([]catalog.Entry{
		{Name: "b_copy", Image: img},
		{Name: "a_copy", Image: img},
	})
	require.NoError(t, err)

	m := match.New(c)
	defer m.Close()
	res, ok := m.Match(img)
	require.True(t, ok)
	assert.Equal(t, "a_copy", res.Name)
}

func TestWorkersMatchSequential(t *testing.T) {
	c := testutils.StandardCatalog(t)
	seq := match.New(c)
	defer seq.Close()
	par := match.New(c, match.WithWorkers(4))
	defer par.Close()

	for _, seed := range []int{0, 13, 51, 60} {
		img := testutils.CardImage(seed, testutils.CardSize)
		assert.InDeltaSlice(t, seq.Scores(img), par.Scores(img), 1e-9)
	}
}

func TestMatchResizesInput(t *testing.T) {
	c := testutils.Catalog(t, "ace_of_spades", "queen_of_hearts")
	m := match.New(c)
	defer m.Close()

	big := testutils.CardImage(testutils.Seed("queen_of_hearts"), config.Size{W: 200, H: 290})
	res, ok := m.Match(big)
	require.True(t, ok)
	assert.Equal(t, "queen_of_hearts", res.Name)
	assert.Greater(t, res.Score, 0.9)
}

func TestMatchWithoutThresholdOption(t *testing.T) {
	m := match.New(testutils.Catalog(t, "ace_of_spades"))
	defer m.Close()
	assert.Equal(t, match.DefaultThreshold, m.Threshold)
}

func TestMatchMatAcceptsColour(t *testing.T) {
	c := testutils.Catalog(t, "ace_of_spades", "jack_of_hearts")
	m := match.New(c)
	defer m.Close()

	img, _ := c.Get("jack_of_hearts")
	bgr, err := vision.ToMat(img)
	require.NoError(t, err)
	defer bgr.Close()

	res, ok := m.MatchMat(bgr)
	require.True(t, ok)
	assert.Equal(t, "jack_of_hearts", res.Name)
	assert.InDelta(t, 1.0, res.Score, 1e-4)
}

func TestCloseReleasesTemplates(t *testing.T) {
	m := match.New(testutils.Catalog(t, "ace_of_spades"))
	require.NoError(t, m.Close())
	assert.Empty(t, m.Scores(testutils.CardImage(0, testutils.CardSize)))
	_, ok := m.Match(testutils.CardImage(0, testutils.CardSize))
	assert.False(t, ok)
}
