package scope

import (
	"image/color"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/itohio/goemg/pkg/meter"
	"github.com/itohio/goemg/pkg/sample"
)

var (
	gridColor     = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor    = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	traceColor    = color.RGBA{R: 255, G: 165, B: 0, A: 255}   // Orange
	envelopeColor = color.RGBA{R: 100, G: 200, B: 255, A: 255} // Light blue
	burstColor    = color.RGBA{R: 0, G: 100, B: 200, A: 255}   // Dark blue
)

// scopeRenderer renders the scope widget.
type scopeRenderer struct {
	scope *ScopeWidget

	grid    *canvas.Rectangle
	objects []fyne.CanvasObject

	lastSize fyne.Size
}

// plotArea maps data coordinates to widget coordinates.
type plotArea struct {
	x, y, width, height float32
	yMin, yMax          float64
	xMin, xMax          time.Duration
}

func (p plotArea) pos(t time.Duration, v float64) fyne.Position {
	span := p.xMax - p.xMin
	if span <= 0 {
		span = time.Second
	}
	yr := p.yMax - p.yMin
	if yr == 0 {
		yr = 1
	}
	x := p.x + float32(float64(t-p.xMin)/float64(span))*p.width
	y := p.y + p.height - float32((v-p.yMin)/yr)*p.height
	return fyne.NewPos(x, y)
}

// MinSize returns the minimum size of the widget.
func (r *scopeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// Layout arranges the widget components.
func (r *scopeRenderer) Layout(size fyne.Size) {
	r.grid.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		r.scope.BaseWidget.Refresh()
	}
}

// Refresh rebuilds the canvas objects from the current data.
func (r *scopeRenderer) Refresh() {
	r.scope.mu.RLock()
	samples := r.scope.displaySamples
	envelope := r.scope.displayEnvelope
	bursts := r.scope.bursts
	full := r.scope.samples
	area := plotArea{
		yMin: r.scope.yMin,
		yMax: r.scope.yMax,
		xMin: r.scope.xMin,
		xMax: r.scope.xMax,
	}
	r.scope.mu.RUnlock()

	size := r.scope.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = []fyne.CanvasObject{r.grid}

	const (
		marginLeft   = float32(60)
		marginRight  = float32(20)
		marginTop    = float32(20)
		marginBottom = float32(40)
	)
	area.x = marginLeft
	area.y = marginTop
	area.width = size.Width - marginLeft - marginRight
	area.height = size.Height - marginTop - marginBottom

	r.drawGrid(area)
	r.drawTrace(area, samples, traceColor, 1.5)
	r.drawTrace(area, envelope, envelopeColor, 2.5)
	r.drawBursts(area, bursts, full)
}

// drawGrid draws the oscilloscope-style grid.
func (r *scopeRenderer) drawGrid(p plotArea) {
	numHLines := 10 // 0.5 V per division over the ADC range
	for i := 0; i < numHLines+1; i++ {
		y := p.y + float32(i)*p.height/float32(numHLines)
		r.addLine(fyne.NewPos(p.x, y), fyne.NewPos(p.x+p.width, y), gridColor, 1)

		value := p.yMax - float64(i)*(p.yMax-p.yMin)/float64(numHLines)
		text := canvas.NewText(formatVoltage(value), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(p.x-5, y-6))
		r.objects = append(r.objects, text)
	}

	numVLines := 10
	for i := 0; i < numVLines+1; i++ {
		x := p.x + float32(i)*p.width/float32(numVLines)
		r.addLine(fyne.NewPos(x, p.y), fyne.NewPos(x, p.y+p.height), gridColor, 1)

		t := p.xMin + time.Duration(i)*(p.xMax-p.xMin)/time.Duration(numVLines)
		text := canvas.NewText(formatTime(t), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x-20, p.y+p.height+5))
		r.objects = append(r.objects, text)
	}
}

// drawTrace draws connected line segments through the samples.
func (r *scopeRenderer) drawTrace(p plotArea, samples []sample.Sample, c color.Color, width float32) {
	for i := 1; i < len(samples); i++ {
		r.addLine(
			p.pos(samples[i-1].Elapsed, samples[i-1].Voltage),
			p.pos(samples[i].Elapsed, samples[i].Voltage),
			c, width,
		)
	}
}

// drawBursts marks each burst with start/end lines and a label showing its
// duration and peak envelope.
func (r *scopeRenderer) drawBursts(p plotArea, bursts []meter.Burst, samples []sample.Sample) {
	for _, b := range bursts {
		if b.StartIndex < 0 || b.EndIndex >= len(samples) || b.StartIndex > b.EndIndex {
			continue
		}

		top := p.pos(b.Start, p.yMax)
		bottom := p.pos(b.Start, p.yMin)
		r.addLine(top, bottom, burstColor, 1)

		top = p.pos(b.End, p.yMax)
		bottom = p.pos(b.End, p.yMin)
		r.addLine(top, bottom, burstColor, 1)

		center := p.pos(b.Start+b.Duration()/2, p.yMax)
		text := canvas.NewText(formatBurst(b), traceColor)
		text.TextSize = 12
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(center.X-30, center.Y+5))
		r.objects = append(r.objects, text)
	}
}

func (r *scopeRenderer) addLine(from, to fyne.Position, c color.Color, width float32) {
	line := canvas.NewLine(c)
	line.Position1 = from
	line.Position2 = to
	line.StrokeWidth = width
	r.objects = append(r.objects, line)
}

// Objects returns all canvas objects for rendering.
func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *scopeRenderer) Destroy() {}

func formatVoltage(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "V"
}

func formatTime(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 1, 64) + "s"
}

func formatBurst(b meter.Burst) string {
	return strconv.FormatInt(b.Duration().Milliseconds(), 10) + "ms " +
		strconv.FormatFloat(b.Peak*1000, 'f', 0, 64) + "mV"
}
