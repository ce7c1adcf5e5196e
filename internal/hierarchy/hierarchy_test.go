package hierarchy

import (
	"errors"
	"fmt"
	"testing"
)

// sep is a separator at row y that starts at column x; a larger x is deeper.
type sep struct{ y, x float64 }

func byX(a, b sep) float64 { return a.x - b.x }

func build(t *testing.T, xs ...float64) *Node[sep] {
	t.Helper()
	b := NewBuilder[sep](byX)
	seps := make([]sep, len(xs))
	for i, x := range xs {
		seps[i] = sep{y: float64(i), x: x}
	}
	b.AddSeparators(seps)
	root, err := b.Root()
	if err != nil {
		t.Fatalf("Root() error: %v", err)
	}
	return root
}

// shape renders spans as "from-to" by row index with children in brackets.
func shape(n *Node[sep]) string {
	s := fmt.Sprintf("%v-%v", n.From.y, n.To.y)
	if n.Leaf() {
		return s
	}
	s += "["
	for i, c := range n.Nodes {
		if i > 0 {
			s += " "
		}
		s += shape(c)
	}
	return s + "]"
}

func TestBuilderShapes(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		want string
	}{
		{"single row", []float64{0, 0}, "0-1[0-1]"},
		{"equal rows", []float64{0, 0, 0}, "0-2[0-1 1-2]"},
		{"merged left cell", []float64{0, 5, 0}, "0-2[0-2[0-1 1-2]]"},
		{"two levels", []float64{0, 5, 8, 5, 0}, "0-4[0-4[0-1 1-3[1-2 2-3] 3-4]]"},
		{"wider separator folds finer ones", []float64{0, 8, 5, 0}, "0-3[0-3[0-2[0-1 1-2] 2-3]]"},
		{"trailing open span dropped", []float64{0, 0, 5}, "0-1[0-1]"},
	}

	for _, tc := range tests {
		root := build(t, tc.xs...)
		if got := shape(root); got != tc.want {
			t.Errorf("%s: shape = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestChildrenCoverParentSpan(t *testing.T) {
	root := build(t, 0, 5, 8, 5, 3, 5, 0, 0)
	err := root.TraverseUp(func(n *Node[sep]) error {
		if n.Leaf() {
			return nil
		}
		if n.Nodes[0].From != n.From || n.Nodes[len(n.Nodes)-1].To != n.To {
			return fmt.Errorf("children of %v-%v do not start/end at the parent", n.From.y, n.To.y)
		}
		for i := 1; i < len(n.Nodes); i++ {
			if n.Nodes[i-1].To != n.Nodes[i].From {
				return fmt.Errorf("children %d and %d of %v-%v are not contiguous", i-1, i, n.From.y, n.To.y)
			}
		}
		return nil
	})
	if err != nil {
		t.Error(err)
	}
}

func TestTraverseUpVisitsChildrenFirst(t *testing.T) {
	root := build(t, 0, 5, 0)
	var order []string
	root.TraverseUp(func(n *Node[sep]) error {
		order = append(order, fmt.Sprintf("%v-%v", n.From.y, n.To.y))
		return nil
	})
	want := []string{"0-1", "1-2", "0-2", "0-2"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Errorf("visit order = %v, want %v", order, want)
	}
}

func TestTraverseUpStopsOnError(t *testing.T) {
	root := build(t, 0, 0, 0)
	stop := errors.New("stop")
	calls := 0
	err := root.TraverseUp(func(*Node[sep]) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Errorf("TraverseUp returned %v after %d calls, want stop after 1", err, calls)
	}
}

func TestRootUnclosed(t *testing.T) {
	tests := [][]float64{
		nil,
		{0},
		{0, 5},
		{0, 5, 8},
	}
	for _, xs := range tests {
		b := NewBuilder[sep](byX)
		for i, x := range xs {
			b.Push(sep{y: float64(i), x: x})
		}
		if _, err := b.Root(); !errors.Is(err, ErrUnclosed) {
			t.Errorf("Root() for %v = %v, want ErrUnclosed", xs, err)
		}
	}
}

func TestDump(t *testing.T) {
	root := build(t, 0, 5, 0)
	got := root.Dump(func(s sep) string { return fmt.Sprint(s.y) })
	want := "0 -> 2\n  0 -> 2\n    0 -> 1\n    1 -> 2\n"
	if got != want {
		t.Errorf("Dump() = %q, want %q", got, want)
	}
}

func TestPushOutcome(t *testing.T) {
	b := NewBuilder[sep](byX)
	steps := []struct {
		s    sep
		want Outcome
	}{
		{sep{0, 0}, Escalated},
		{sep{1, 5}, Accepted},
		{sep{2, 0}, Escalated},
	}
	for _, st := range steps {
		if got := b.Push(st.s); got != st.want {
			t.Errorf("Push(%v) = %v, want %v", st.s, got, st.want)
		}
	}
	root, err := b.Root()
	if err != nil {
		t.Fatalf("Root() error: %v", err)
	}
	if got := shape(root); got != "0-2[0-2[0-1 1-2]]" {
		t.Errorf("shape = %s", got)
	}
}
