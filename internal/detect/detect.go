// Package detect finds card-shaped quadrilaterals in a table image.
package detect

import (
	"image"
	"log/slog"
	"math"

	"gocv.io/x/gocv"

	"github.com/arcanaland/cardsight/internal/config"
	"github.com/arcanaland/cardsight/internal/vision"
)

// Canny hysteresis thresholds and polygon tolerance
const (
	CannyLow  = 60
	CannyHigh = 120
	// ApproxTolerance is the polygon approximation epsilon as a fraction
	// of the contour's perimeter.
	ApproxTolerance = 0.02
)

// Quad is an accepted four-sided contour.
type Quad struct {
	// Corners are the polygon vertices in contour order.
	Corners vision.Contour
	// Contour is the external boundary the corners were fitted to.
	Contour vision.Contour
	Box     image.Rectangle
	Area    float64
}

// Detector finds quadrilaterals whose enclosed area exceeds MinArea.
type Detector struct {
	MinArea float64
	logger  *slog.Logger
}

// Option configures a Detector
type Option func(*Detector)

// WithLogger sets the logger used for diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = l
	}
}

// New creates a detector with the given area threshold in px².
func New(minArea float64, opts ...Option) *Detector {
	d := &Detector{MinArea: minArea, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FromSettings creates a detector using the configured area threshold
func FromSettings(s config.Settings, opts ...Option) *Detector {
	return New(s.MinContourArea, opts...)
}

// ScaleMinArea rescales an area threshold calibrated for the reference
// card size to cards rendered at size.
func ScaleMinArea(base float64, reference, size config.Size) float64 {
	if reference.IsZero() || size.IsZero() {
		return base
	}
	ratio := float64(size.W*size.H) / float64(reference.W*reference.H)
	return math.Round(base * ratio)
}

// Detect converts img to grayscale and runs DetectMat on it.
func (d *Detector) Detect(img image.Image) ([]Quad, error) {
	gray, err := vision.ToGrayMat(img)
	if err != nil {
		return nil, err
	}
	defer gray.Close()
	return d.DetectMat(gray), nil
}

// DetectMat smooths an 8-bit grayscale matrix, runs Canny and extracts the
// external contours, keeping those that approximate to exactly four
// vertices with an area above the threshold. An image with no such
// contour yields an empty result.
func (d *Detector) DetectMat(gray gocv.Mat) []Quad {
	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, vision.BlurSize, 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, CannyLow, CannyHigh)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var quads []Quad
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		approx := gocv.ApproxPolyDP(c, ApproxTolerance*gocv.ArcLength(c, true), true)
		corners := approx.ToPoints()
		approx.Close()
		if len(corners) != 4 {
			continue
		}
		area := gocv.ContourArea(c)
		if area <= d.MinArea {
			continue
		}
		quads = append(quads, Quad{
			Corners: corners,
			Contour: c.ToPoints(),
			Box:     gocv.BoundingRect(c),
			Area:    area,
		})
	}

	d.logger.Debug("quadrilateral detection",
		"contours", contours.Size(),
		"accepted", len(quads),
		"min_area", d.MinArea)
	return quads
}
