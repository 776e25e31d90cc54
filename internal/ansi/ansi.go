// Package ansi renders images as half-block terminal art.
package ansi

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
	"golang.org/x/term"
)

// DefaultWidth is used when the terminal size is unknown
const DefaultWidth = 80

// Render converts img into width character cells per line. Each cell
// covers a 2x2 pixel block: the top pair sets the foreground of '▀', the
// bottom pair its background. Without trueColor only the glyphs are
// written.
func Render(img image.Image, width int, trueColor bool) string {
	b := img.Bounds()
	if width <= 0 || b.Empty() {
		return ""
	}
	// terminal cells are about twice as tall as wide
	height := max(1, (width*b.Dy()+b.Dx())/(2*b.Dx()))
	resized := resize.Resize(uint(width*2), uint(height*2), img, resize.Lanczos3)

	var buffer strings.Builder
	for y := 0; y < height*2; y += 2 {
		for x := 0; x < width*2; x += 2 {
			upper := averageColor(colorAt(resized, x, y), colorAt(resized, x+1, y))
			lower := averageColor(colorAt(resized, x, y+1), colorAt(resized, x+1, y+1))
			buffer.WriteString(cell('▀', upper, lower, trueColor))
		}
		buffer.WriteString("\n")
	}
	return buffer.String()
}

func colorAt(img image.Image, x, y int) colorful.Color {
	b := img.Bounds()
	p := image.Pt(b.Min.X+x, b.Min.Y+y)
	if !p.In(b) {
		return colorful.Color{}
	}
	c, _ := colorful.MakeColor(img.At(p.X, p.Y))
	return c
}

// averageColor calculates the average of multiple colors
func averageColor(colors ...colorful.Color) colorful.Color {
	var r, g, b float64
	for _, c := range colors {
		r += c.R
		g += c.G
		b += c.B
	}
	count := float64(len(colors))
	return colorful.Color{R: r / count, G: g / count, B: b / count}
}

// toRGBA converts a colorful.Color to an opaque color.RGBA
func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func cell(char rune, fg, bg colorful.Color, trueColor bool) string {
	if !trueColor {
		return string(char)
	}
	f, k := toRGBA(fg), toRGBA(bg)
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm%c\x1b[0m",
		f.R, f.G, f.B, k.R, k.G, k.B, char)
}

// TerminalWidth returns the width of stdout, or DefaultWidth when stdout
// is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultWidth
	}
	return width
}

// Strip removes ANSI escape sequences from a string
func Strip(s string) string {
	var result strings.Builder
	inEscape := false
	for _, c := range s {
		if inEscape {
			if c == 'm' {
				inEscape = false
			}
		} else if c == '\033' {
			inEscape = true
		} else {
			result.WriteRune(c)
		}
	}
	return result.String()
}

// VisibleWidth counts the runes of s that occupy a terminal cell
func VisibleWidth(s string) int {
	return utf8.RuneCountInString(Strip(s))
}

// SideBySide lays art on the left and info lines on the right, separated
// by spacing columns.
func SideBySide(art string, info []string, spacing int) string {
	artLines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	artWidth := 0
	for _, line := range artLines {
		artWidth = max(artWidth, VisibleWidth(line))
	}
	col := artWidth + spacing

	var out strings.Builder
	for i := 0; i < max(len(artLines), len(info)); i++ {
		out.WriteString("  ")
		if i < len(artLines) {
			out.WriteString(artLines[i])
			out.WriteString(strings.Repeat(" ", col-VisibleWidth(artLines[i])))
		} else {
			out.WriteString(strings.Repeat(" ", col))
		}
		if i < len(info) {
			out.WriteString(info[i])
		}
		out.WriteString("\n")
	}
	return out.String()
}
