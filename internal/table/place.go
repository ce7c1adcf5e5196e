package table

import (
	"github.com/pdf2tree/go/internal/geometry"
	"github.com/pdf2tree/go/internal/models"
)

// Place routes every fragment into the most specific cell of the top-level
// hierarchies and returns the fragments no cell claims.
func Place(top []*Hierarchy, texts []models.Text) *models.Data {
	outside := models.NewData()
	for _, t := range texts {
		placed := false
		for _, h := range top {
			if h.place(t) {
				placed = true
				break
			}
		}
		if !placed {
			outside.Texts = append(outside.Texts, t)
		}
	}
	return outside
}

func (h *Hierarchy) place(t models.Text) bool {
	if !h.Box.Contains(t.Anchor()) {
		return false
	}
	for _, nested := range h.Nested {
		if nested.place(t) {
			return true
		}
	}
	for _, n := range h.Nodes {
		if n.place(t) {
			return true
		}
	}
	return false
}

func (n *Node) place(t models.Text) bool {
	a := t.Anchor()
	if !n.Box.Contains(a) {
		return false
	}
	for _, child := range n.Nodes {
		if child.place(t) {
			return true
		}
	}
	if n.Secondary != nil && claim(n.Secondary.Cells, t) {
		return true
	}
	return claim(n.Cells, t)
}

func claim(cells []*Cell, t models.Text) bool {
	for _, c := range cells {
		if c.Responsible(t.Anchor()) {
			c.Data.Texts = append(c.Data.Texts, t)
			return true
		}
	}
	return false
}

// deepest returns the lowest row of h whose box contains a, or nil when no
// top-level row does.
func (h *Hierarchy) deepest(a geometry.Anchor) *Node {
	var found *Node
	for rows := h.Nodes; ; {
		var next *Node
		for _, n := range rows {
			if n.Box.Contains(a) {
				next = n
				break
			}
		}
		if next == nil {
			return found
		}
		found, rows = next, next.Nodes
	}
}
