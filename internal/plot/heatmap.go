// Package plot renders sweep matrices as image artifacts: a row of
// per-condition heatmap panels and optional threshold-error profile
// charts.
package plot

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/gramsim/gram/internal/model"
	"github.com/gramsim/gram/internal/sweep"
)

// Panel pairs a condition label with its error matrix.
type Panel struct {
	Label  string
	Matrix sweep.Matrix
}

// PanelsFor builds panels from matrices in the given label order,
// skipping labels without a matrix.
func PanelsFor(matrices map[string]sweep.Matrix, order []string) []Panel {
	panels := make([]Panel, 0, len(order))
	for _, label := range order {
		m, ok := matrices[label]
		if !ok {
			continue
		}
		panels = append(panels, Panel{Label: label, Matrix: m})
	}
	return panels
}

const (
	cellSize = 60
	panelGap = 12
	titleBar = 22
)

// HeatmapRow renders one labeled panel per condition, arranged
// horizontally. Each panel displays the transpose of its matrix on a
// fixed [0, 1] scale mapping low values to light and high values to
// dark. Titles are the uppercased condition labels; no axis ticks are
// drawn. Rendering is deterministic: identical panels yield identical
// pixels.
func HeatmapRow(panels []Panel) (*image.RGBA, error) {
	if len(panels) == 0 {
		return nil, fmt.Errorf("no panels to render")
	}

	n := model.NumMechanisms
	panelW := n * cellSize
	panelH := titleBar + n*cellSize
	width := len(panels)*panelW + (len(panels)-1)*panelGap

	img := image.NewRGBA(image.Rect(0, 0, width, panelH))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	for p, panel := range panels {
		x0 := p * (panelW + panelGap)

		// Transposed display: the permanent-mechanism axis runs
		// horizontally, the removed-mechanism axis vertically.
		t := panel.Matrix.Transposed()
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				shade := shadeFor(t[r][c])
				cell := image.Rect(
					x0+c*cellSize,
					titleBar+r*cellSize,
					x0+(c+1)*cellSize,
					titleBar+(r+1)*cellSize,
				)
				draw.Draw(img, cell, &image.Uniform{shade}, image.Point{}, draw.Src)
			}
		}

		drawTitle(img, x0, panelW, strings.ToUpper(panel.Label))
	}
	return img, nil
}

// shadeFor maps a threshold error in [0, 1] to a grayscale shade,
// light for low values and dark for high ones. Out-of-range values are
// clamped for display only.
func shadeFor(v float64) color.RGBA {
	v = math.Min(math.Max(v, 0), 1)
	g := uint8(math.Round(255 * (1 - v)))
	return color.RGBA{R: g, G: g, B: g, A: 255}
}

// drawTitle centers a label in a panel's title bar.
func drawTitle(img *image.RGBA, x0, panelW int, label string) {
	face := basicfont.Face7x13
	textWidth := len(label) * 7
	x := x0 + (panelW-textWidth)/2
	if x < x0 {
		x = x0
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{A: 255}),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(titleBar - 7)},
	}
	d.DrawString(label)
}

// RenderHeatmapRow renders panels and encodes the image as PNG.
func RenderHeatmapRow(w io.Writer, panels []Panel) error {
	img, err := HeatmapRow(panels)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encoding heatmap PNG: %w", err)
	}
	return nil
}
