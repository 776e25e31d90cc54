// Package table composes card images into table scenes for recognition.
package table

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/arcanaland/cardsight/internal/catalog"
	"github.com/arcanaland/cardsight/internal/config"
	"github.com/arcanaland/cardsight/internal/vision"
)

// Layout positions cards on the game table
type Layout struct {
	Canvas  config.Size
	DealerY int
	PlayerY int
	// StartX is the left edge of the first card in each row, Step the
	// distance between consecutive cards.
	StartX int
	Step   int
	Pile   image.Point
}

// DefaultLayout is the 800x600 game table
func DefaultLayout() Layout {
	return Layout{
		Canvas:  config.Size{W: 800, H: 600},
		DealerY: 80,
		PlayerY: 380,
		StartX:  260,
		Step:    120,
		Pile:    image.Pt(20, 200),
	}
}

// Dealer returns the top-left corner of the i-th dealer card
func (l Layout) Dealer(i int) image.Point {
	return image.Pt(l.StartX+i*l.Step, l.DealerY)
}

// Player returns the top-left corner of the i-th player card
func (l Layout) Player(i int) image.Point {
	return image.Pt(l.StartX+i*l.Step, l.PlayerY)
}

// Scene is the table state to render
type Scene struct {
	Dealer []image.Image
	Player []image.Image
	// HideDealer draws the card back over the dealer's first card.
	HideDealer bool
	// ShowPile draws the card back at the draw pile position.
	ShowPile bool
}

// Synthesizer renders scenes over a fixed background
type Synthesizer struct {
	layout     Layout
	background *image.NRGBA
	back       image.Image
	logger     *slog.Logger
}

// Option configures a Synthesizer
type Option func(*Synthesizer)

// WithLayout overrides the card positions and canvas size
func WithLayout(l Layout) Option {
	return func(s *Synthesizer) {
		s.layout = l
	}
}

// WithBack sets the image drawn for the draw pile and hidden cards
func WithBack(img image.Image) Option {
	return func(s *Synthesizer) {
		s.back = img
	}
}

// WithLogger sets the logger used for diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(s *Synthesizer) {
		s.logger = l
	}
}

// New creates a synthesizer. The background is s.Background resized to
// the canvas when set, otherwise a solid s.BackgroundColor.
func New(s config.Settings, opts ...Option) (*Synthesizer, error) {
	syn := &Synthesizer{layout: DefaultLayout(), logger: slog.Default()}
	for _, opt := range opts {
		opt(syn)
	}

	if s.Background != "" {
		img, err := catalog.LoadImage(s.Background)
		if err != nil {
			return nil, fmt.Errorf("error loading table background: %w", err)
		}
		syn.background = catalog.Resize(img, syn.layout.Canvas)
		return syn, nil
	}

	hex := s.BackgroundColor
	if hex == "" {
		hex = config.DefaultBackgroundColor
	}
	felt, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid background colour %q: %w", hex, err)
	}
	syn.background = Fill(syn.layout.Canvas, felt)
	return syn, nil
}

// Layout returns the card positions in use
func (s *Synthesizer) Layout() Layout {
	return s.layout
}

// Compose draws the scene onto a fresh copy of the background
func (s *Synthesizer) Compose(scene Scene) *image.NRGBA {
	out := image.NewNRGBA(s.background.Rect)
	copy(out.Pix, s.background.Pix)

	if scene.ShowPile && s.back != nil {
		Place(out, s.back, s.layout.Pile)
	}
	for i, img := range scene.Dealer {
		if i == 0 && scene.HideDealer && s.back != nil {
			img = s.back
		}
		Place(out, img, s.layout.Dealer(i))
	}
	for i, img := range scene.Player {
		Place(out, img, s.layout.Player(i))
	}

	s.logger.Debug("table composed",
		"dealer", len(scene.Dealer),
		"player", len(scene.Player),
		"hidden", scene.HideDealer)
	return out
}

// Place copies img onto dst with its top-left corner at at
func Place(dst draw.Image, img image.Image, at image.Point) {
	b := img.Bounds()
	draw.Draw(dst, b.Sub(b.Min).Add(at), img, b.Min, draw.Src)
}

// Fill returns a canvas of the given size painted with c
func Fill(size config.Size, c colorful.Color) *image.NRGBA {
	r, g, b := c.RGB255()
	img := image.NewNRGBA(image.Rect(0, 0, size.W, size.H))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{R: r, G: g, B: b, A: 0xff}), image.Point{}, draw.Src)
	return img
}

// Copy returns an opaque NRGBA copy of img
func Copy(img image.Image) *image.NRGBA {
	src := vision.ToNRGBA(img)
	out := image.NewNRGBA(src.Rect)
	copy(out.Pix, src.Pix)
	return out
}
