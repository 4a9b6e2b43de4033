// Package chart renders launcher accuracy as a PNG: the cone width over
// the penalty range next to a scatter of sampled shot directions.
package chart

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"math/rand"

	"github.com/fogleman/gg"

	"manhack-sim/internal/vecmath"
	"manhack-sim/internal/weapon"
)

// Config controls the image layout.
type Config struct {
	Width   int
	Height  int
	Samples int   // scatter points
	Seed    int64 // sample RNG seed
}

// DefaultConfig returns a 640x320 chart with 500 samples.
func DefaultConfig() Config {
	return Config{Width: 640, Height: 320, Samples: 500, Seed: 1}
}

// Input is the accuracy state to draw.
type Input struct {
	Penalty        float64
	MaxPenalty     float64
	UseNewAccuracy bool
	Cone           vecmath.Vector // current dispersion cone
}

// Point is an angular offset from the aim direction in degrees.
type Point struct {
	X, Y float64
}

// CurvePoint is the full cone angle at one penalty value.
type CurvePoint struct {
	Penalty float64
	Degrees float64
}

// Sample disperses n shots around a fixed aim and returns their offsets.
func Sample(cone vecmath.Vector, n int, seed int64) []Point {
	rng := rand.New(rand.NewSource(seed))
	aim := vecmath.Vec(1, 0, 0)

	out := make([]Point, n)
	for i := range out {
		d := weapon.Disperse(aim, cone, rng)
		out[i] = Point{
			X: math.Atan2(d.Y, d.X) * 180 / math.Pi,
			Y: math.Atan2(d.Z, d.X) * 180 / math.Pi,
		}
	}
	return out
}

// ConeCurve samples the cone angle at steps+1 evenly spaced penalties.
func ConeCurve(maxPenalty float64, useNewAccuracy bool, steps int) []CurvePoint {
	if steps < 1 {
		steps = 1
	}
	out := make([]CurvePoint, steps+1)
	for i := range out {
		p := maxPenalty * float64(i) / float64(steps)
		cone := weapon.Cone4Degrees
		if useNewAccuracy {
			cone = weapon.SpreadForPenalty(p, maxPenalty)
		}
		out[i] = CurvePoint{Penalty: p, Degrees: weapon.ConeDegrees(cone)}
	}
	return out
}

var (
	background = color.RGBA{12, 12, 28, 255}
	gridColor  = color.RGBA{60, 60, 80, 255}
	curveColor = color.RGBA{80, 200, 255, 255}
	markColor  = color.RGBA{255, 90, 60, 255}
	dotColor   = color.RGBA{255, 220, 120, 160}
	textColor  = color.RGBA{220, 220, 230, 255}
)

// maxConeDegrees bounds both panels so charts are comparable.
const maxConeDegrees = 7.0

// Render draws the chart.
func Render(in Input, cfg Config) *gg.Context {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg = DefaultConfig()
	}
	dc := gg.NewContext(cfg.Width, cfg.Height)

	dc.SetColor(background)
	dc.DrawRectangle(0, 0, float64(cfg.Width), float64(cfg.Height))
	dc.Fill()

	half := float64(cfg.Width) / 2
	h := float64(cfg.Height)
	drawCurve(dc, in, 0, 0, half, h)
	drawScatter(dc, in, cfg, half, 0, half, h)
	return dc
}

func drawCurve(dc *gg.Context, in Input, x, y, w, h float64) {
	const pad = 30
	left, right := x+pad, x+w-pad/2
	top, bottom := y+pad, y+h-pad

	dc.SetColor(gridColor)
	dc.SetLineWidth(1)
	for deg := 0.0; deg <= maxConeDegrees; deg++ {
		gy := bottom - (bottom-top)*deg/maxConeDegrees
		dc.DrawLine(left, gy, right, gy)
	}
	dc.Stroke()

	maxP := in.MaxPenalty
	if maxP <= 0 {
		maxP = 1
	}
	px := func(p float64) float64 { return left + (right-left)*p/maxP }
	py := func(d float64) float64 { return bottom - (bottom-top)*d/maxConeDegrees }

	dc.SetColor(curveColor)
	dc.SetLineWidth(2)
	for i, cp := range ConeCurve(maxP, in.UseNewAccuracy, 48) {
		if i == 0 {
			dc.MoveTo(px(cp.Penalty), py(cp.Degrees))
		} else {
			dc.LineTo(px(cp.Penalty), py(cp.Degrees))
		}
	}
	dc.Stroke()

	cur := weapon.ConeDegrees(in.Cone)
	dc.SetColor(markColor)
	dc.DrawCircle(px(vecmath.Clamp(in.Penalty, 0, maxP)), py(cur), 4)
	dc.Fill()

	dc.SetColor(textColor)
	dc.DrawString("cone vs penalty", left, top-10)
	dc.DrawString(fmt.Sprintf("penalty %.2f / %.2f  cone %.2f deg", in.Penalty, maxP, cur), left, bottom+20)
}

func drawScatter(dc *gg.Context, in Input, cfg Config, x, y, w, h float64) {
	cx, cy := x+w/2, y+h/2
	radius := math.Min(w, h)/2 - 20
	scale := radius / (maxConeDegrees / 2)

	// current cone boundary
	dc.SetColor(gridColor)
	dc.SetLineWidth(1)
	dc.DrawLine(cx-radius, cy, cx+radius, cy)
	dc.DrawLine(cx, cy-radius, cx, cy+radius)
	dc.Stroke()

	halfAngle := weapon.ConeDegrees(in.Cone) / 2
	dc.SetColor(markColor)
	dc.DrawCircle(cx, cy, halfAngle*scale)
	dc.Stroke()

	dc.SetColor(dotColor)
	for _, p := range Sample(in.Cone, cfg.Samples, cfg.Seed) {
		dc.DrawCircle(cx+p.X*scale, cy-p.Y*scale, 1.5)
		dc.Fill()
	}

	dc.SetColor(textColor)
	dc.DrawString(fmt.Sprintf("%d shots", cfg.Samples), x+10, y+20)
}

// Image renders the chart as an image.
func Image(in Input, cfg Config) image.Image {
	return Render(in, cfg).Image()
}

// WritePNG renders the chart and encodes it to w.
func WritePNG(w io.Writer, in Input, cfg Config) error {
	return Render(in, cfg).EncodePNG(w)
}
