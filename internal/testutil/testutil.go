// Package testutil builds ruling-line fixtures shared by the package tests.
package testutil

import (
	"github.com/pdf2tree/go/internal/geometry"
	"github.com/pdf2tree/go/internal/models"
)

func HLine(x, y, w, stroke float64) models.Fill { return models.Fill{X: x, Y: y, W: w, H: stroke} }
func VLine(x, y, h, stroke float64) models.Fill { return models.Fill{X: x, Y: y, W: stroke, H: h} }

// Grid draws a full grid: one horizontal per ys entry spanning xs, one vertical per
// xs entry spanning ys.
func Grid(xs, ys []float64, stroke float64) []models.Fill {
	x0, x1 := xs[0], xs[len(xs)-1]
	y0, y1 := ys[0], ys[len(ys)-1]
	fills := make([]models.Fill, 0, len(xs)+len(ys))
	for _, y := range ys {
		fills = append(fills, HLine(x0, y, x1-x0, stroke))
	}
	for _, x := range xs {
		fills = append(fills, VLine(x, y0, y1-y0, stroke))
	}
	return fills
}

// Square is the unit table used by most scenarios.
func Square(x, y, size, stroke float64) []models.Fill {
	return Grid([]float64{x, x + size}, []float64{y, y + size}, stroke)
}

func Rects(fills []models.Fill) []geometry.Rect {
	out := make([]geometry.Rect, len(fills))
	for i, f := range fills {
		out[i] = f.Rect()
	}
	return out
}

func Text(x, y float64, s string) models.Text { return models.Text{X: x, Y: y, S: s} }

func Page(fills []models.Fill, texts ...models.Text) models.Page {
	return models.Page{Number: 1, Width: 612, Height: 792, Fills: fills, Texts: texts}
}
