package table

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/lucasb-eyer/go-colorful"
	"gocv.io/x/gocv"

	"github.com/arcanaland/cardsight/internal/config"
	"github.com/arcanaland/cardsight/internal/recognize"
	"github.com/arcanaland/cardsight/internal/vision"
)

// NoiseStd is the standard deviation of the noise Degrade adds, in
// intensity units.
const NoiseStd = 5

// ErrNotEnoughCards is returned when a random table needs more cards than given
var ErrNotEnoughCards = errors.New("not enough card images for table")

// Random table geometry
var (
	RandomCanvas = config.Size{W: 600, H: 300}
	randomMargin = 20
	randomLeft   = 40
	randomGap    = 20
	randomFelt   = colorful.Color{R: 30.0 / 255, G: 30.0 / 255, B: 30.0 / 255}
)

// Overlay colours for each side of the table
var (
	DealerColor = color.NRGBA{R: 0xff, A: 0xff}
	PlayerColor = color.NRGBA{B: 0xff, A: 0xff}
)

// Degrade blurs img with the 5x5 Gaussian and adds independent Gaussian
// noise drawn from rng to every colour channel. It is meant for synthetic
// test data.
func Degrade(img image.Image, rng *rand.Rand) (*image.NRGBA, error) {
	out, err := vision.Blur(img)
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(out.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := float64(out.Pix[i+c]) + rng.NormFloat64()*NoiseStd
			out.Pix[i+c] = uint8(math.Max(0, math.Min(255, math.Round(v))))
		}
	}
	return out, nil
}

// RandomTable shuffles cards and lays numDealer of them in the top row and
// numPlayer in the bottom row of a dark canvas. The canvas is at
// least RandomCanvas and grows to fit both rows.
func RandomTable(rng *rand.Rand, cards []image.Image, numPlayer, numDealer int) (*image.NRGBA, []image.Image, []image.Image, error) {
	n := numPlayer + numDealer
	if n > len(cards) || numPlayer < 0 || numDealer < 0 {
		return nil, nil, nil, ErrNotEnoughCards
	}

	deck := append([]image.Image(nil), cards...)
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	player, dealer := deck[:numPlayer], deck[numPlayer:n]

	var cw, ch int
	for _, c := range deck[:n] {
		b := c.Bounds()
		cw, ch = max(cw, b.Dx()), max(ch, b.Dy())
	}
	size := config.Size{
		W: max(RandomCanvas.W, randomLeft+max(numPlayer, numDealer)*(cw+randomGap)),
		H: max(RandomCanvas.H, 2*ch+3*randomMargin),
	}

	out := Fill(size, randomFelt)
	row := func(cards []image.Image, y int) {
		x := randomLeft
		for _, c := range cards {
			Place(out, c, image.Pt(x, y))
			x += c.Bounds().Dx() + randomGap
		}
	}
	row(dealer, randomMargin)
	row(player, 2*randomMargin+ch)
	return out, player, dealer, nil
}

// Overlay draws each detection's contour onto a copy of img, red for the
// dealer half of the table and blue for the player half, and labels
// recognized cards with their name and confidence above the card.
func Overlay(img image.Image, detections []recognize.Detection, thickness int) (*image.NRGBA, error) {
	out, err := vision.ToMat(img)
	if err != nil {
		return nil, err
	}
	defer out.Close()

	h := out.Rows()
	for _, d := range detections {
		if len(d.Contour) == 0 {
			continue
		}
		c := rgba(PlayerColor)
		if recognize.SideOf(d, h) == recognize.Dealer {
			c = rgba(DealerColor)
		}

		contours := gocv.NewPointsVectorFromPoints([][]image.Point{d.Contour})
		gocv.DrawContours(&out, contours, -1, c, thickness)
		contours.Close()

		if d.Matched {
			at := image.Pt(d.Box.Min.X, max(d.Box.Min.Y-labelGap, labelHeight))
			gocv.PutText(&out, Label(d), at, gocv.FontHersheySimplex, labelScale, c, 1)
		}
	}
	return vision.FromMat(out)
}

// Overlay label placement
const (
	labelGap    = 6
	labelHeight = 12
	labelScale  = 0.4
)

// Label is the text drawn next to a recognized card
func Label(d recognize.Detection) string {
	if !d.Matched {
		return "?"
	}
	return fmt.Sprintf("%s (%.2f)", d.Name, d.Confidence)
}

func rgba(c color.NRGBA) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}
