package table

import (
	"fmt"

	"github.com/pdf2tree/go/internal/geometry"
	"github.com/pdf2tree/go/internal/models"
	"github.com/pdf2tree/go/internal/rectilinear"
)

// Derive computes every box of h from its separator lines. It can be re-run on a
// finished hierarchy; boxes come out identical and cell data starts empty.
func (h *Hierarchy) Derive() error {
	g := h.graph
	xe := g.Last(h.From).X

	h.Node.traverseUp(func(n *Node) error {
		n.Box = geometry.Box{XE: xe}
		n.Cells, n.Secondary = nil, nil
		return nil
	})
	h.Node.traverseUp(func(n *Node) error {
		rowBox(g, n)
		return nil
	})

	rows := func(fn func(*Node) error) error {
		return h.Node.traverseUp(func(n *Node) error {
			if n == h.Node {
				return nil
			}
			return fn(n)
		})
	}

	rows(func(n *Node) error {
		columnBoxes(g, n)
		return nil
	})
	gap := &pendingSecondary{}
	if err := rows(func(n *Node) error { return columnAfterSplit(g, n, gap) }); err != nil {
		return err
	}
	return rows(func(n *Node) error {
		columnBoxes2(g, n)
		return nil
	})
}

// rowBox spans the two separator lines. A row with children only claims the part
// left of its first child; the children cover the rest up to XE.
func rowBox(g *rectilinear.Graph, n *Node) {
	l0, l1 := g.Line(n.From), g.Line(n.To)
	b := &n.Box
	b.YE = max(l0.Bottom(), l1.Bottom())
	b.X = max(l0.X, l1.X)
	b.Y = min(l0.Y, l1.Y)

	right := b.XE
	if !n.Leaf() {
		right = n.Nodes[0].Box.X
	}
	b.W = right - b.X
	b.H = b.YE - b.Y
}

// boundaries returns the x of every vertical crossing both from and to inside
// (box.X, box.X+box.W], left to right.
func boundaries(g *rectilinear.Graph, from, to rectilinear.LineID, box geometry.Box) []float64 {
	var xs []float64
	for _, iid := range g.Line(from).Intersections {
		in := g.Intersection(iid)
		if !g.Crosses(in.V, to) {
			continue
		}
		if box.X < in.X && in.X <= box.X+box.W {
			xs = append(xs, in.X)
		}
	}
	return xs
}

func split(box geometry.Box, xs []float64) []*Cell {
	cells := make([]*Cell, 0, len(xs))
	prev := box.X
	for _, x := range xs {
		cell := box
		cell.X, cell.W = prev, x-prev
		cells = append(cells, &Cell{Box: cell, Data: models.NewData()})
		prev = x
	}
	return cells
}

func columnBoxes(g *rectilinear.Graph, n *Node) {
	xs := boundaries(g, n.From, n.To, n.Box)
	n.Box.XU = n.Box.XE
	if len(xs) > 0 {
		n.Box.XU = xs[len(xs)-1]
	}
	n.Cells = split(n.Box, xs)
}

// pendingSecondary carries the secondary box opened by one leaf row to the leaf
// rows after it, until a row whose bottom line reaches the right edge closes it.
type pendingSecondary struct {
	open *Secondary
}

// columnAfterSplit attaches a secondary box to leaf rows whose own columns stop
// short of the right edge (XU < XE).
func columnAfterSplit(g *rectilinear.Graph, n *Node, gap *pendingSecondary) error {
	n.Secondary = nil
	if !n.Leaf() || !(n.Box.XU < n.Box.XE) {
		return nil
	}

	top, bottom := g.Last(n.From), g.Last(n.To)
	if top.X == n.Box.XE {
		gap.open = &Secondary{
			From: n.From,
			Box:  geometry.Box{X: n.Box.XU, Y: top.Y, W: top.X - n.Box.XU},
		}
	}
	if gap.open == nil {
		return fmt.Errorf("%w: row at y=%.2f stops at x=%.2f", ErrInconsistentGeometry, n.Box.Y, n.Box.XU)
	}

	s := gap.open
	n.Secondary = s
	if bottom.X == n.Box.XE {
		s.To, s.Closed = n.To, true
		s.Box.H = bottom.Y - s.Box.Y
		s.Box.XE, s.Box.YE = s.Box.X+s.Box.W, s.Box.Y+s.Box.H
		gap.open = nil
	}
	return nil
}

// columnBoxes2 splits a closed secondary box into cells once; rows sharing it see
// the same cells.
func columnBoxes2(g *rectilinear.Graph, n *Node) {
	s := n.Secondary
	if s == nil || !s.Closed || s.derived {
		return
	}
	s.Cells = split(s.Box, boundaries(g, s.From, s.To, s.Box))
	s.derived = true
}
