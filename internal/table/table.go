package table

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pdf2tree/go/internal/geometry"
	"github.com/pdf2tree/go/internal/hierarchy"
	"github.com/pdf2tree/go/internal/logger"
	"github.com/pdf2tree/go/internal/models"
	"github.com/pdf2tree/go/internal/rectilinear"
)

var Logger = logger.GetLogger("table")

var (
	// ErrInconsistentGeometry is returned when a row needs a merged right-hand cell
	// but no line above it reaches the table's right edge.
	ErrInconsistentGeometry = errors.New("table: merged cell has no opening line")

	// ErrUnclosedHierarchy wraps hierarchy.ErrUnclosed for groups whose separators
	// never close a row.
	ErrUnclosedHierarchy = errors.New("table: rows never close")
)

type Cell struct {
	geometry.Box
	Data *models.Data `json:"-"`
}

// Secondary is a merged cell continuing right of where a row's own verticals stop.
// Every leaf row across the same gap references one Secondary, so they share its
// cells and the data placed in them.
type Secondary struct {
	From   rectilinear.LineID `json:"from"`
	To     rectilinear.LineID `json:"to"`
	Closed bool               `json:"closed"`
	Box    geometry.Box       `json:"box"`
	Cells  []*Cell            `json:"cells,omitempty"`

	derived bool
}

// Node is one row span of a table, bounded by two separator lines.
type Node struct {
	From      rectilinear.LineID `json:"from"`
	To        rectilinear.LineID `json:"to"`
	Box       geometry.Box       `json:"box"`
	Cells     []*Cell            `json:"cells,omitempty"`
	Secondary *Secondary         `json:"secondary,omitempty"`
	Nodes     []*Node            `json:"nodes,omitempty"`

	// tables drawn inside this row, attached by Fold
	Embedded []*Hierarchy `json:"-"`
}

func (n *Node) Leaf() bool { return len(n.Nodes) == 0 }

func (n *Node) traverseUp(fn func(*Node) error) error {
	for _, child := range n.Nodes {
		if err := child.traverseUp(fn); err != nil {
			return err
		}
	}
	return fn(n)
}

// Hierarchy is the row tree of one group. The embedded Node is the root container
// whose children are the top-level rows.
type Hierarchy struct {
	Group rectilinear.GroupID `json:"group"`
	*Node

	Parents []*Hierarchy `json:"-"`
	Nested  []*Hierarchy `json:"-"`

	graph *rectilinear.Graph
}

// Build reconstructs the rows of one group and derives their boxes.
func Build(g *rectilinear.Graph, gid rectilinear.GroupID) (*Hierarchy, error) {
	// separators starting further right are narrower in scope
	ordinate := func(a, b rectilinear.LineID) float64 { return g.First(a).X - g.First(b).X }

	b := hierarchy.NewBuilder[rectilinear.LineID](ordinate)
	b.AddSeparators(g.Horizontals(gid))
	root, err := b.Root()
	if err != nil {
		return nil, fmt.Errorf("%w: group %d: %w", ErrUnclosedHierarchy, gid, err)
	}

	h := &Hierarchy{Group: gid, Node: convert(root), graph: g}
	if err := h.Derive(); err != nil {
		return nil, fmt.Errorf("group %d: %w", gid, err)
	}
	if Logger.Enabled(context.Background(), slog.LevelDebug) {
		Logger.Debug("rows", "group", gid, "tree", "\n"+root.Dump(func(id rectilinear.LineID) string {
			l := g.Line(id)
			return fmt.Sprintf("(%.2f,%.2f w=%.2f)", l.X, l.Y, l.W)
		}))
	}
	return h, nil
}

func convert(n *hierarchy.Node[rectilinear.LineID]) *Node {
	out := &Node{From: n.From, To: n.To}
	for _, child := range n.Nodes {
		out.Nodes = append(out.Nodes, convert(child))
	}
	return out
}

// Detect builds a hierarchy for every group of the page. A single failing group
// fails the page.
func Detect(g *rectilinear.Graph) ([]*Hierarchy, error) {
	hs := make([]*Hierarchy, 0, len(g.Groups))
	for _, grp := range g.Groups {
		h, err := Build(g, grp.ID)
		if err != nil {
			return nil, err
		}
		hs = append(hs, h)
	}
	return hs, nil
}

// Table serializes the rows of h together with their placed data.
func (h *Hierarchy) Table() models.Table {
	rows := make(models.Table, 0, len(h.Nodes))
	for _, n := range h.Nodes {
		rows = append(rows, n.row())
	}
	return rows
}

func (n *Node) row() models.Row {
	var r models.Row
	for _, c := range n.Cells {
		r.Cells = append(r.Cells, c.Data)
	}
	for _, child := range n.Nodes {
		r.Children = append(r.Children, child.row())
	}
	if n.Secondary != nil {
		for _, c := range n.Secondary.Cells {
			r.Secondary = append(r.Secondary, c.Data)
		}
	}
	for _, e := range n.Embedded {
		r.Nested = append(r.Nested, e.Table())
	}
	return r
}

// Leaves returns the leaf rows in reading order.
func (h *Hierarchy) Leaves() []*Node {
	var out []*Node
	h.Node.traverseUp(func(n *Node) error {
		if n.Leaf() && n != h.Node {
			out = append(out, n)
		}
		return nil
	})
	return out
}
