// Package vision moves images between Go's image package and OpenCV
// matrices and measures contours that are already plain point slices.
package vision

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"gocv.io/x/gocv"
)

// BlurSize is the Gaussian kernel used to smooth images before edge
// detection and when degrading synthetic cards.
var BlurSize = image.Pt(5, 5)

// Contour is a closed boundary in image coordinates
type Contour []image.Point

// ToNRGBA returns img as an *image.NRGBA with bounds at the origin,
// flattening any transparency over white. Images already in that form are
// returned as-is.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) && opaque(n) {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Over)
	return out
}

func opaque(n *image.NRGBA) bool {
	for i := 3; i < len(n.Pix); i += 4 {
		if n.Pix[i] != 0xff {
			return false
		}
	}
	return true
}

// ToMat converts img to an 8-bit BGR matrix. The caller must Close it.
func ToMat(img image.Image) (gocv.Mat, error) {
	src := ToNRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w == 0 || h == 0 {
		return gocv.Mat{}, fmt.Errorf("vision: empty image %v", src.Rect)
	}

	pix := src.Pix
	if src.Stride != w*4 {
		pix = make([]byte, 0, w*h*4)
		for y := 0; y < h; y++ {
			pix = append(pix, src.Pix[y*src.Stride:y*src.Stride+w*4]...)
		}
	}

	rgba, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC4, pix)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("vision: %w", err)
	}
	defer rgba.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(rgba, &bgr, gocv.ColorRGBAToBGR)
	return bgr, nil
}

// ToGrayMat converts img to an 8-bit single-channel luma matrix. The
// caller must Close it.
func ToGrayMat(img image.Image) (gocv.Mat, error) {
	bgr, err := ToMat(img)
	if err != nil {
		return gocv.Mat{}, err
	}
	defer bgr.Close()

	gray := gocv.NewMat()
	gocv.CvtColor(bgr, &gray, gocv.ColorBGRToGray)
	return gray, nil
}

// FromMat copies an 8-bit BGR or single-channel matrix into a new image
func FromMat(m gocv.Mat) (*image.NRGBA, error) {
	rgba := gocv.NewMat()
	defer rgba.Close()

	switch m.Channels() {
	case 1:
		gocv.CvtColor(m, &rgba, gocv.ColorGrayToBGRA)
	case 3:
		gocv.CvtColor(m, &rgba, gocv.ColorBGRToRGBA)
	default:
		return nil, fmt.Errorf("vision: unsupported matrix with %d channels", m.Channels())
	}

	out := image.NewNRGBA(image.Rect(0, 0, rgba.Cols(), rgba.Rows()))
	copy(out.Pix, rgba.ToBytes())
	return out, nil
}

// Blur smooths img with the BlurSize Gaussian, sigma derived from the
// kernel size.
func Blur(img image.Image) (*image.NRGBA, error) {
	src, err := ToMat(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(src, &blurred, BlurSize, 0, 0, gocv.BorderDefault)
	return FromMat(blurred)
}

// Centroid returns the centre of mass of the polygon c, rounded to the
// nearest pixel. Degenerate polygons fall back to the mean vertex.
func Centroid(c Contour) image.Point {
	if len(c) == 0 {
		return image.Point{}
	}

	var a, cx, cy float64
	for i, p := range c {
		q := c[(i+1)%len(c)]
		cross := float64(p.X*q.Y - q.X*p.Y)
		a += cross
		cx += float64(p.X+q.X) * cross
		cy += float64(p.Y+q.Y) * cross
	}
	if a == 0 {
		var sx, sy int
		for _, p := range c {
			sx += p.X
			sy += p.Y
		}
		return image.Pt(sx/len(c), sy/len(c))
	}
	a *= 3
	return image.Pt(int(cx/a+0.5), int(cy/a+0.5))
}
