// Package match scores rectified card images against a reference catalog
// with normalized cross-correlation.
package match

import (
	"context"
	"image"
	"log/slog"
	"math"
	"sort"
	"sync"

	"gocv.io/x/gocv"

	"github.com/arcanaland/cardsight/internal/catalog"
	"github.com/arcanaland/cardsight/internal/vision"
)

// DefaultThreshold is the minimum confidence for a recognized card
const DefaultThreshold = 0.6

// flatStdDev is the luma deviation below which an image has no pattern to
// correlate.
const flatStdDev = 1e-3

// Result is the best catalog entry for an image
type Result struct {
	Name  string
	Score float64
}

// reference is a catalog entry prepared for correlation
type reference struct {
	name string
	size image.Point
	gray gocv.Mat
	flat bool
}

// Matcher compares card images against every catalog entry
type Matcher struct {
	Threshold float64
	refs      []reference
	workers   int
	logger    *slog.Logger
}

// Option configures a Matcher
type Option func(*Matcher)

// WithThreshold overrides the minimum confidence
func WithThreshold(t float64) Option {
	return func(m *Matcher) {
		m.Threshold = t
	}
}

// WithWorkers scans the catalog with n goroutines. Results are identical
// to a sequential scan.
func WithWorkers(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.workers = n
		}
	}
}

// WithLogger sets the logger used for score diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(m *Matcher) {
		m.logger = l
	}
}

// New converts every catalog entry to grayscale once. Entries are scanned
// in the catalog's order, which is lexicographic by name. Close releases
// the converted templates.
func New(c *catalog.Catalog, opts ...Option) *Matcher {
	m := &Matcher{
		Threshold: DefaultThreshold,
		workers:   1,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	for _, e := range c.Entries() {
		gray, err := vision.ToGrayMat(e.Image)
		if err != nil {
			m.logger.Warn("skipping template", "name", e.Name, "error", err)
			continue
		}
		m.refs = append(m.refs, reference{
			name: e.Name,
			size: image.Pt(gray.Cols(), gray.Rows()),
			gray: gray,
			flat: stdDev(gray) < flatStdDev,
		})
	}
	return m
}

// Close releases the templates
func (m *Matcher) Close() error {
	for i := range m.refs {
		m.refs[i].gray.Close()
	}
	m.refs = nil
	return nil
}

// Match converts img to grayscale and runs MatchMat on it.
func (m *Matcher) Match(img image.Image) (Result, bool) {
	gray, err := vision.ToGrayMat(img)
	if err != nil {
		m.logger.Warn("cannot match image", "error", err)
		return Result{}, false
	}
	defer gray.Close()
	return m.MatchMat(gray)
}

// MatchMat returns the catalog entry with the highest correlation to an
// 8-bit BGR or grayscale matrix. ok is false when the best score is below
// the threshold or the catalog is empty. Ties go to the entry that comes
// first in catalog order.
func (m *Matcher) MatchMat(img gocv.Mat) (Result, bool) {
	scores := m.ScoresMat(img)
	if len(scores) == 0 {
		return Result{}, false
	}

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	res := Result{Name: m.refs[best].name, Score: scores[best]}

	if m.logger.Enabled(context.Background(), slog.LevelDebug) {
		m.logger.Debug("template scores", "top", m.top(scores, 3))
	}
	if res.Score < m.Threshold {
		m.logger.Debug("unrecognized card",
			"best", res.Name,
			"score", res.Score,
			"threshold", m.Threshold)
		return Result{}, false
	}
	return res, true
}

// Scores correlates img with every catalog entry, in catalog order.
func (m *Matcher) Scores(img image.Image) []float64 {
	gray, err := vision.ToGrayMat(img)
	if err != nil {
		m.logger.Warn("cannot score image", "error", err)
		return nil
	}
	defer gray.Close()
	return m.ScoresMat(gray)
}

// ScoresMat is Scores for an 8-bit BGR or grayscale matrix.
func (m *Matcher) ScoresMat(img gocv.Mat) []float64 {
	gray := img
	if img.Channels() != 1 {
		gray = gocv.NewMat()
		defer gray.Close()
		gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	}

	sized := make(map[image.Point]*sample)
	for _, ref := range m.refs {
		if _, ok := sized[ref.size]; !ok {
			sized[ref.size] = prepare(gray, ref.size)
		}
	}
	defer func() {
		for _, p := range sized {
			p.close()
		}
	}()

	scores := make([]float64, len(m.refs))
	scoreAt := func(i int) {
		ref := &m.refs[i]
		scores[i] = correlate(sized[ref.size], ref)
	}

	if m.workers <= 1 {
		for i := range m.refs {
			scoreAt(i)
		}
		return scores
	}

	var wg sync.WaitGroup
	jobs := make(chan int)
	for w := 0; w < m.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				scoreAt(i)
			}
		}()
	}
	for i := range m.refs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return scores
}

// sample is the card image at one reference size
type sample struct {
	gray  gocv.Mat
	owned bool
	flat  bool
}

func (p *sample) close() {
	if p.owned {
		p.gray.Close()
	}
}

// prepare resizes gray to a reference's native size
func prepare(gray gocv.Mat, size image.Point) *sample {
	p := &sample{gray: gray}
	if gray.Cols() != size.X || gray.Rows() != size.Y {
		p.gray = gocv.NewMat()
		p.owned = true
		gocv.Resize(gray, &p.gray, size, 0, 0, gocv.InterpolationLinear)
	}
	p.flat = stdDev(p.gray) < flatStdDev
	return p
}

// correlate returns the normalized correlation coefficient in [-1, 1].
// A flat image has no correlation with anything and scores 0.
func correlate(p *sample, ref *reference) float64 {
	if p.flat || ref.flat {
		return 0
	}
	result := gocv.NewMat()
	defer result.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	gocv.MatchTemplate(p.gray, ref.gray, &result, gocv.TmCcoeffNormed, mask)
	if result.Empty() {
		return 0
	}
	score := float64(result.GetFloatAt(0, 0))
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(-1, math.Min(1, score))
}

func stdDev(m gocv.Mat) float64 {
	mean := gocv.NewMat()
	defer mean.Close()
	dev := gocv.NewMat()
	defer dev.Close()

	gocv.MeanStdDev(m, &mean, &dev)
	return dev.GetDoubleAt(0, 0)
}

type scored struct {
	Name  string
	Score float64
}

func (m *Matcher) top(scores []float64, n int) []scored {
	all := make([]scored, len(scores))
	for i, s := range scores {
		all[i] = scored{Name: m.refs[i].name, Score: s}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })
	if len(all) > n {
		all = all[:n]
	}
	return all
}
