package chart

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"BrickWatch/internal/model"
	"BrickWatch/internal/renko"
)

const (
	chartWidth  = 1260
	chartHeight = 780
	marginX     = 60
	marginY     = 40
)

// Render draws the tracker's brick sequence as an SVG chart: one rectangle
// per brick, green for UP and red for DOWN, with a thin wick line covering
// the intrabar extremes. Returns the written file path.
func Render(t *renko.Tracker, dir string) (string, error) {
	bricks := t.Bricks()
	if len(bricks) == 0 {
		return "", fmt.Errorf("%s: no bricks to chart", t.Symbol())
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create charts dir: %w", err)
	}

	state := t.State()
	size, _ := t.BrickSize().Float64()
	minY, _ := state.AbsLow.Float64()
	maxY, _ := state.AbsHigh.Float64()
	minY -= size
	maxY += size

	plotW := float64(chartWidth - 2*marginX)
	plotH := float64(chartHeight - 2*marginY)
	sx := plotW / float64(len(bricks))
	sy := plotH / (maxY - minY + 1e-9)

	// y grows downward in SVG
	toY := func(price float64) float64 { return float64(marginY) + (maxY-price)*sy }

	var b bytes.Buffer
	fmt.Fprintf(&b, "<svg xmlns='http://www.w3.org/2000/svg' width='%d' height='%d' viewBox='0 0 %d %d'>",
		chartWidth, chartHeight, chartWidth, chartHeight)
	b.WriteString("<rect width='100%' height='100%' fill='#ffffff'/>")

	title := fmt.Sprintf("%s renko, brick size %.2f $, trend %s", t.Symbol(), size, t.Trend())
	fmt.Fprintf(&b, "<text x='%d' y='24' font-family='sans-serif' font-size='16' fill='#333'>%s</text>",
		marginX, title)

	for i, brick := range bricks {
		x := float64(marginX) + float64(i)*sx
		cx := x + sx/2

		high, _ := brick.High.Float64()
		low, _ := brick.Low.Float64()
		fmt.Fprintf(&b, "<line x1='%.1f' y1='%.1f' x2='%.1f' y2='%.1f' stroke='#4169e1' stroke-opacity='0.34' stroke-width='1'/>",
			cx, toY(high), cx, toY(low))

		open, _ := brick.Open.Float64()
		close, _ := brick.Close.Float64()
		color := "#228b22"
		top := close
		if brick.Direction == model.TrendDown {
			color = "#ff6347"
			top = open
		}
		fmt.Fprintf(&b, "<rect x='%.1f' y='%.1f' width='%.1f' height='%.1f' fill='%s' fill-opacity='0.7' stroke='%s'/>",
			x, toY(top), sx, size*sy, color, color)
	}

	// time labels along the bottom, roughly ten of them
	divider := len(bricks) / 10
	if divider == 0 {
		divider = 1
	}
	for i, brick := range bricks {
		if i%divider != 0 {
			continue
		}
		label := time.Unix(brick.Timestamp, 0).UTC().Format("Jan 02, 15:04")
		fmt.Fprintf(&b, "<text x='%.1f' y='%d' font-family='sans-serif' font-size='10' fill='#666'>%s</text>",
			float64(marginX)+float64(i)*sx, chartHeight-12, label)
	}

	b.WriteString("</svg>")

	filename := fmt.Sprintf("%s-%s-%dp-renko.svg", t.Symbol(), t.Interval(), t.Capacity())
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write chart: %w", err)
	}
	return path, nil
}
