// Package rectify warps a detected card quadrilateral into an upright
// image of the catalog's canonical size.
package rectify

import (
	"errors"
	"image"
	"math"

	"gocv.io/x/gocv"

	"github.com/arcanaland/cardsight/internal/config"
	"github.com/arcanaland/cardsight/internal/vision"
)

// ErrSingular is returned when the four points do not define a homography
var ErrSingular = errors.New("rectify: degenerate quadrilateral")

// Point is a sub-pixel image coordinate
type Point struct {
	X, Y float64
}

// Homography is a row-major 3x3 projective transform
type Homography [9]float64

// Apply maps (x, y) through h
func (h Homography) Apply(x, y float64) (float64, float64) {
	w := h[6]*x + h[7]*y + h[8]
	return (h[0]*x + h[1]*y + h[2]) / w, (h[3]*x + h[4]*y + h[5]) / w
}

func (h Homography) det() float64 {
	return h[0]*(h[4]*h[8]-h[5]*h[7]) -
		h[1]*(h[3]*h[8]-h[5]*h[6]) +
		h[2]*(h[3]*h[7]-h[4]*h[6])
}

// OrderCorners returns the four points as top-left, top-right,
// bottom-right, bottom-left. Top-left has the smallest x+y, bottom-right
// the largest; top-right has the smallest y-x, bottom-left the largest.
// Quadrilaterals rotated by more than 45 degrees get mislabelled corners.
func OrderCorners(pts []image.Point) [4]Point {
	var tl, tr, br, bl image.Point
	for i, p := range pts {
		if i == 0 {
			tl, tr, br, bl = p, p, p, p
			continue
		}
		if p.X+p.Y < tl.X+tl.Y {
			tl = p
		}
		if p.X+p.Y > br.X+br.Y {
			br = p
		}
		if p.Y-p.X < tr.Y-tr.X {
			tr = p
		}
		if p.Y-p.X > bl.Y-bl.X {
			bl = p
		}
	}
	conv := func(p image.Point) Point { return Point{X: float64(p.X), Y: float64(p.Y)} }
	return [4]Point{conv(tl), conv(tr), conv(br), conv(bl)}
}

// PerspectiveTransform solves for the homography taking each src point to
// the matching dst point.
func PerspectiveTransform(src, dst [4]Point) (Homography, error) {
	m, h, err := perspective(src, dst)
	if err != nil {
		return Homography{}, err
	}
	m.Close()
	return h, nil
}

// perspective returns the transform both as an OpenCV matrix, which the
// caller must Close, and as a Homography.
func perspective(src, dst [4]Point) (gocv.Mat, Homography, error) {
	sv := gocv.NewPoint2fVectorFromPoints(point2f(src))
	defer sv.Close()
	dv := gocv.NewPoint2fVectorFromPoints(point2f(dst))
	defer dv.Close()

	m := gocv.GetPerspectiveTransform2f(sv, dv)
	if m.Empty() {
		m.Close()
		return gocv.Mat{}, Homography{}, ErrSingular
	}

	var h Homography
	for i := range h {
		h[i] = m.GetDoubleAt(i/3, i%3)
	}
	// a failed solve leaves a zero matrix
	if math.Abs(h.det()) < 1e-12 {
		m.Close()
		return gocv.Mat{}, Homography{}, ErrSingular
	}
	return m, h, nil
}

func point2f(pts [4]Point) []gocv.Point2f {
	out := make([]gocv.Point2f, len(pts))
	for i, p := range pts {
		out[i] = gocv.Point2f{X: float32(p.X), Y: float32(p.Y)}
	}
	return out
}

// Rectifier resamples quadrilaterals to a fixed output size
type Rectifier struct {
	Size config.Size
}

// New creates a rectifier producing images of the given size
func New(size config.Size) *Rectifier {
	return &Rectifier{Size: size}
}

// Rectify converts src to a matrix and runs RectifyMat on it.
func (r *Rectifier) Rectify(src image.Image, corners []image.Point) (*image.NRGBA, error) {
	mat, err := vision.ToMat(src)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	out, err := r.RectifyMat(mat, corners)
	if err != nil {
		return nil, err
	}
	defer out.Close()
	return vision.FromMat(out)
}

// RectifyMat maps the quadrilateral corners onto the corners of the output
// rectangle and warps src through that mapping with bilinear
// interpolation. The returned matrix must be closed by the caller.
func (r *Rectifier) RectifyMat(src gocv.Mat, corners []image.Point) (gocv.Mat, error) {
	if len(corners) != 4 {
		return gocv.Mat{}, ErrSingular
	}
	w, h := r.Size.W, r.Size.H
	rect := [4]Point{
		{0, 0},
		{float64(w - 1), 0},
		{float64(w - 1), float64(h - 1)},
		{0, float64(h - 1)},
	}
	m, _, err := perspective(OrderCorners(corners), rect)
	if err != nil {
		return gocv.Mat{}, err
	}
	defer m.Close()

	out := gocv.NewMat()
	gocv.WarpPerspective(src, &out, m, image.Pt(w, h))
	return out, nil
}
