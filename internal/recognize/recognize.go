// Package recognize runs detection, rectification and template matching
// over a whole table image.
package recognize

import (
	"image"
	"log/slog"

	"gocv.io/x/gocv"

	"github.com/arcanaland/cardsight/internal/card"
	"github.com/arcanaland/cardsight/internal/catalog"
	"github.com/arcanaland/cardsight/internal/config"
	"github.com/arcanaland/cardsight/internal/detect"
	"github.com/arcanaland/cardsight/internal/match"
	"github.com/arcanaland/cardsight/internal/rectify"
	"github.com/arcanaland/cardsight/internal/vision"
)

// Detection is one card found on the table
type Detection struct {
	// Name is the matched catalog key, empty when Matched is false.
	Name       string
	Confidence float64
	Matched    bool
	Box        image.Rectangle
	// Corners are the four fitted vertices, Contour the traced boundary.
	Corners vision.Contour
	Contour vision.Contour
}

// Side is the half of the table a card lies in
type Side int

const (
	Dealer Side = iota
	Player
)

func (s Side) String() string {
	if s == Dealer {
		return "dealer"
	}
	return "player"
}

// Orchestrator wires a detector, a rectifier and a matcher together.
// All rectifications share one canonical size. Close releases the
// matcher's templates.
type Orchestrator struct {
	detector  *detect.Detector
	rectifier *rectify.Rectifier
	matcher   *match.Matcher
	logger    *slog.Logger
	workers   int
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithLogger sets the logger handed to every stage
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithWorkers lets the matcher scan templates with n goroutines
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		o.workers = n
	}
}

// New builds an orchestrator for catalog c. The canonical size comes from
// s.CanonicalCardSize, or the first catalog entry when that is unset.
func New(c *catalog.Catalog, s config.Settings, opts ...Option) *Orchestrator {
	o := &Orchestrator{logger: slog.Default(), workers: 1}
	for _, opt := range opts {
		opt(o)
	}

	size := s.CanonicalCardSize
	if size.IsZero() {
		size = c.Size()
	}
	threshold := s.MatchThreshold
	if threshold == 0 {
		threshold = match.DefaultThreshold
	}

	o.detector = detect.FromSettings(s, detect.WithLogger(o.logger))
	o.rectifier = rectify.New(size)
	o.matcher = match.New(c,
		match.WithThreshold(threshold),
		match.WithWorkers(o.workers),
		match.WithLogger(o.logger))
	return o
}

// CanonicalSize is the size every detected card is rectified to
func (o *Orchestrator) CanonicalSize() config.Size {
	return o.rectifier.Size
}

// Close releases the matcher's templates
func (o *Orchestrator) Close() error {
	return o.matcher.Close()
}

// Match identifies a single card image
func (o *Orchestrator) Match(img image.Image) (match.Result, bool) {
	return o.matcher.Match(img)
}

// Scan returns one detection per accepted quadrilateral, in contour
// discovery order. A table with no cards yields an empty slice. Running
// Scan twice on the same image finds the same regions. An error means img
// could not be converted for processing.
func (o *Orchestrator) Scan(img image.Image) ([]Detection, error) {
	src, err := vision.ToMat(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	quads := o.detector.DetectMat(gray)

	detections := make([]Detection, 0, len(quads))
	for _, q := range quads {
		rectified, err := o.rectifier.RectifyMat(src, q.Corners)
		if err != nil {
			o.logger.Warn("skipping card region", "box", q.Box, "error", err)
			continue
		}
		d := Detection{
			Box:     q.Box,
			Corners: q.Corners,
			Contour: q.Contour,
		}
		if res, ok := o.matcher.MatchMat(rectified); ok {
			d.Name = res.Name
			d.Confidence = res.Score
			d.Matched = true
		}
		rectified.Close()
		detections = append(detections, d)
	}

	o.logger.Debug("table scanned", "cards", len(detections))
	return detections, nil
}

// SideOf places a detection by its contour centroid relative to the
// horizontal midline of a table of the given height.
func SideOf(d Detection, height int) Side {
	c := vision.Centroid(d.Contour)
	if c.Y*2 < height {
		return Dealer
	}
	return Player
}

// Totals scores the detections on each side of the table. Unmatched
// cards count as zero.
func Totals(detections []Detection, height int) (dealer, player int) {
	var dv, pv []int
	for _, d := range detections {
		v := 0
		if d.Matched {
			v = card.Value(d.Name)
		}
		if SideOf(d, height) == Dealer {
			dv = append(dv, v)
		} else {
			pv = append(pv, v)
		}
	}
	return card.Total(dv), card.Total(pv)
}
