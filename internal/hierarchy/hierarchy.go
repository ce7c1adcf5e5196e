// Package hierarchy rebuilds a nested tree from an ordered run of separators.
//
// Every separator opens a span that some later separator of the same or a higher
// level closes. Separators of a deeper level seen in between become children of the
// span. A higher-level aggregate is the sum of everything below it.
package hierarchy

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnclosed is returned when no top-level span was ever closed.
var ErrUnclosed = errors.New("hierarchy: no separator closes the first span")

// Ordinate compares the levels of two separators: < 0 when a is higher than b,
// 0 when they are on the same level, > 0 when a is deeper.
type Ordinate[S any] func(a, b S) float64

// Outcome of offering a separator to a node. Escalated means the separator closed
// the node and must be handled by an ancestor.
type Outcome uint8

const (
	Accepted Outcome = iota
	Escalated
)

type Node[S any] struct {
	From, To S
	Nodes    []*Node[S]

	// pending child still collecting separators; nil until the first one arrives
	target *Node[S]
}

func (n *Node[S]) Leaf() bool { return len(n.Nodes) == 0 }

func (n *Node[S]) push(s S, ord Ordinate[S]) Outcome {
	if n.target != nil {
		if n.target.push(s, ord) == Accepted {
			return Accepted
		}
		// the target closed itself on s
		n.Nodes = append(n.Nodes, n.target)
	}

	if ord(s, n.From) <= 0 {
		n.To = s
		return Escalated
	}

	if n.target != nil && ord(s, n.target.From) < 0 {
		// s is wider than everything collected since From: fold it underneath
		n.Nodes = []*Node[S]{{From: n.From, To: s, Nodes: n.Nodes}}
	}

	if n.target == nil {
		// closed directly so the first span cannot be offered s again
		n.Nodes = append(n.Nodes, &Node[S]{From: n.From, To: s})
	}

	n.target = &Node[S]{From: s}
	return Accepted
}

// TraverseUp calls fn for every node below n and then for n itself.
func (n *Node[S]) TraverseUp(fn func(*Node[S]) error) error {
	for _, child := range n.Nodes {
		if err := child.TraverseUp(fn); err != nil {
			return err
		}
	}
	return fn(n)
}

// Dump renders the tree one span per line, indented by depth.
func (n *Node[S]) Dump(format func(S) string) string {
	var b strings.Builder
	n.dump(&b, "", format)
	return b.String()
}

func (n *Node[S]) dump(b *strings.Builder, pad string, format func(S) string) {
	fmt.Fprintf(b, "%s%s -> %s\n", pad, format(n.From), format(n.To))
	for _, child := range n.Nodes {
		child.dump(b, pad+"  ", format)
	}
}

// Builder consumes separators one at a time.
type Builder[S any] struct {
	nodes    []*Node[S]
	target   *Node[S]
	ordinate Ordinate[S]
}

func NewBuilder[S any](ordinate Ordinate[S]) *Builder[S] {
	return &Builder[S]{ordinate: ordinate}
}

func (b *Builder[S]) Push(s S) Outcome {
	if b.target != nil {
		if b.target.push(s, b.ordinate) == Accepted {
			return Accepted
		}
		b.nodes = append(b.nodes, b.target)
	}
	b.target = &Node[S]{From: s}
	return Escalated
}

func (b *Builder[S]) AddSeparators(separators []S) {
	for _, s := range separators {
		b.Push(s)
	}
}

// Root returns the container of all closed top-level spans. The span opened by the
// last separator never closes and is dropped.
func (b *Builder[S]) Root() (*Node[S], error) {
	if len(b.nodes) == 0 {
		return nil, ErrUnclosed
	}
	return &Node[S]{
		From:  b.nodes[0].From,
		To:    b.nodes[len(b.nodes)-1].To,
		Nodes: b.nodes,
	}, nil
}
