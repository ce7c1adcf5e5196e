// Package rectilinear turns thin filled rectangles into horizontal and vertical
// lines, links them through their intersections and splits them into groups of
// lines that close at least one loop. Each group is a candidate table.
package rectilinear

import (
	"sort"

	"github.com/pdf2tree/go/internal/geometry"
	"github.com/pdf2tree/go/internal/logger"
	"github.com/tidwall/rtree"
)

var Logger = logger.GetLogger("rectilinear")

type Orientation uint8

const (
	Horizontal Orientation = iota + 1
	Vertical
)

func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	}
	return "none"
}

type (
	LineID         int
	IntersectionID int
	GroupID        int
)

const NoGroup GroupID = -1

type Line struct {
	geometry.Rect
	Orientation   Orientation
	Intersections []IntersectionID
	Group         GroupID
	Pruned        bool
}

// Intersection joins exactly one vertical (V) and one horizontal (H) line.
type Intersection struct {
	X, Y    float64
	V, H    LineID
	Group   GroupID
	Removed bool
}

type Group struct {
	ID            GroupID
	Lines         []LineID
	Intersections []IntersectionID
}

// Graph owns every line, intersection and group of one page. Records are never
// removed; pruning only sets tombstone flags.
type Graph struct {
	Lines         []Line
	Intersections []Intersection
	Groups        []Group
	Merged        int
}

// Classify labels r by thickness. Rectangles thin in both directions or in neither
// are not lines.
func Classify(r geometry.Rect, maxStrokeWidth float64) (Orientation, bool) {
	h, v := r.H < maxStrokeWidth, r.W < maxStrokeWidth
	switch {
	case h && !v:
		return Horizontal, true
	case v && !h:
		return Vertical, true
	}
	return 0, false
}

// Intersects is the shared merge and crossing test.
func Intersects(a, b geometry.Rect, maxGapWidth float64) bool {
	return a.Intersects(b, maxGapWidth)
}

func ascYX(a, b geometry.Rect) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

func ascXY(a, b geometry.Rect) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

// primary returns the start and end of r along the axis the lines are sorted by.
func primary(r geometry.Rect, o Orientation) (float64, float64) {
	if o == Horizontal {
		return r.Y, r.Bottom()
	}
	return r.X, r.Right()
}

// mergeCollinear merges intersecting lines of one orientation, sorted along their
// primary axis, into enclosing lines. Passes repeat until nothing merges because a
// grown line can reach lines that were already scanned.
func mergeCollinear(lines []geometry.Rect, o Orientation, maxGapWidth float64) ([]geometry.Rect, int) {
	total := 0
	for {
		merged := 0
		for i := 0; i < len(lines)-1; i++ {
			for j := i + 1; j < len(lines); j++ {
				start, _ := primary(lines[j], o)
				if _, end := primary(lines[i], o); end+maxGapWidth < start {
					break
				}
				if !Intersects(lines[i], lines[j], maxGapWidth) {
					continue
				}
				lines[i] = lines[i].Enclose(lines[j])
				lines = append(lines[:j], lines[j+1:]...)
				merged++
				j = i
			}
		}
		total += merged
		if merged == 0 {
			return lines, total
		}
	}
}

// Build runs classification, merging, intersection, pruning and grouping.
func Build(fills []geometry.Rect, maxStrokeWidth, maxGapWidth float64) *Graph {
	var hrects, vrects []geometry.Rect
	for _, r := range fills {
		switch o, ok := Classify(r, maxStrokeWidth); {
		case !ok:
		case o == Horizontal:
			hrects = append(hrects, r)
		default:
			vrects = append(vrects, r)
		}
	}

	sort.SliceStable(hrects, func(i, j int) bool { return ascYX(hrects[i], hrects[j]) })
	sort.SliceStable(vrects, func(i, j int) bool { return ascXY(vrects[i], vrects[j]) })

	g := &Graph{}
	var hn, vn int
	hrects, hn = mergeCollinear(hrects, Horizontal, maxGapWidth)
	vrects, vn = mergeCollinear(vrects, Vertical, maxGapWidth)
	if g.Merged = hn + vn; g.Merged != 0 {
		Logger.Warn("combined lines", "count", g.Merged)
	}
	for _, r := range hrects {
		if r.H >= maxStrokeWidth {
			Logger.Debug("merged line exceeds stroke width", "orientation", Horizontal, "h", r.H)
		}
	}
	for _, r := range vrects {
		if r.W >= maxStrokeWidth {
			Logger.Debug("merged line exceeds stroke width", "orientation", Vertical, "w", r.W)
		}
	}

	hids := g.addLines(hrects, Horizontal)
	vids := g.addLines(vrects, Vertical)
	g.findIntersections(hids, vids, maxGapWidth)
	g.pruneDangling()
	g.group(vids)

	Logger.Debug("grouped lines", "horizontal", len(hids), "vertical", len(vids),
		"intersections", g.liveIntersections(), "groups", len(g.Groups))
	return g
}

func (g *Graph) addLines(rects []geometry.Rect, o Orientation) []LineID {
	ids := make([]LineID, len(rects))
	for i, r := range rects {
		ids[i] = LineID(len(g.Lines))
		g.Lines = append(g.Lines, Line{Rect: r, Orientation: o, Group: NoGroup})
	}
	return ids
}

// findIntersections links every crossing horizontal/vertical pair. Candidates come
// from an R-tree over the gap-expanded verticals and are visited in sorted order, so
// a horizontal lists its intersections left to right and a vertical top to bottom.
// Overlapping lines were merged before, so no crossing is recorded twice.
func (g *Graph) findIntersections(hids, vids []LineID, maxGapWidth float64) {
	var tr rtree.RTreeG[LineID]
	for _, id := range vids {
		r := g.Lines[id].Rect
		tr.Insert(
			[2]float64{r.X - maxGapWidth, r.Y - maxGapWidth},
			[2]float64{r.Right() + maxGapWidth, r.Bottom() + maxGapWidth},
			id,
		)
	}

	var candidates []LineID
	for _, h := range hids {
		hr := g.Lines[h].Rect
		candidates = candidates[:0]
		tr.Search(
			[2]float64{hr.X - maxGapWidth, hr.Y - maxGapWidth},
			[2]float64{hr.Right() + maxGapWidth, hr.Bottom() + maxGapWidth},
			func(_, _ [2]float64, id LineID) bool {
				candidates = append(candidates, id)
				return true
			},
		)
		sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })
		for _, v := range candidates {
			if Intersects(g.Lines[v].Rect, hr, maxGapWidth) {
				g.link(v, h)
			}
		}
	}
}

func (g *Graph) link(v, h LineID) {
	id := IntersectionID(len(g.Intersections))
	g.Intersections = append(g.Intersections, Intersection{
		X:     g.Lines[v].X,
		Y:     g.Lines[h].Y,
		V:     v,
		H:     h,
		Group: NoGroup,
	})
	g.Lines[v].Intersections = append(g.Lines[v].Intersections, id)
	g.Lines[h].Intersections = append(g.Lines[h].Intersections, id)
}

func (g *Graph) unlink(id IntersectionID) {
	in := &g.Intersections[id]
	in.Removed = true
	for _, lid := range [2]LineID{in.V, in.H} {
		l := &g.Lines[lid]
		kept := l.Intersections[:0]
		for _, other := range l.Intersections {
			if other != id {
				kept = append(kept, other)
			}
		}
		l.Intersections = kept
	}
}

// pruneDangling removes lines touching the structure at a single point. Removing
// such a line can leave its neighbour dangling, so the neighbours are revisited
// until nothing changes.
func (g *Graph) pruneDangling() {
	work := make([]LineID, 0, len(g.Lines))
	for i := len(g.Lines) - 1; i >= 0; i-- {
		work = append(work, LineID(i))
	}
	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]
		if len(g.Lines[id].Intersections) != 1 {
			continue
		}
		in := g.Intersections[g.Lines[id].Intersections[0]]
		g.unlink(g.Lines[id].Intersections[0])
		work = append(work, in.V, in.H)
	}
	for i := range g.Lines {
		if len(g.Lines[i].Intersections) == 0 {
			g.Lines[i].Pruned = true
		}
	}
}

// group flood-fills connectivity starting from each unassigned seed.
func (g *Graph) group(seeds []LineID) {
	for _, seed := range seeds {
		if l := g.Lines[seed]; l.Pruned || l.Group != NoGroup {
			continue
		}
		grp := Group{ID: GroupID(len(g.Groups))}
		stack := []LineID{seed}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			l := &g.Lines[id]
			if l.Group != NoGroup {
				continue
			}
			l.Group = grp.ID
			grp.Lines = append(grp.Lines, id)
			for _, iid := range l.Intersections {
				in := &g.Intersections[iid]
				if in.Group != NoGroup {
					continue
				}
				in.Group = grp.ID
				grp.Intersections = append(grp.Intersections, iid)
				stack = append(stack, in.V, in.H)
			}
		}
		g.Groups = append(g.Groups, grp)
	}
}

func (g *Graph) liveIntersections() int {
	n := 0
	for _, in := range g.Intersections {
		if !in.Removed {
			n++
		}
	}
	return n
}

func (g *Graph) Line(id LineID) *Line { return &g.Lines[id] }

func (g *Graph) Intersection(id IntersectionID) *Intersection { return &g.Intersections[id] }

// First and Last return the leftmost/rightmost surviving intersection of a
// horizontal line (topmost/bottommost for a vertical one).
func (g *Graph) First(id LineID) Intersection {
	return g.Intersections[g.Lines[id].Intersections[0]]
}

func (g *Graph) Last(id LineID) Intersection {
	l := g.Lines[id].Intersections
	return g.Intersections[l[len(l)-1]]
}

// Crosses reports whether the two lines share a surviving intersection.
func (g *Graph) Crosses(a, b LineID) bool {
	for _, iid := range g.Lines[a].Intersections {
		if in := g.Intersections[iid]; in.V == b || in.H == b {
			return true
		}
	}
	return false
}

// Horizontals returns the horizontal lines of a group ordered by (y, x).
func (g *Graph) Horizontals(gid GroupID) []LineID {
	var out []LineID
	for _, id := range g.Groups[gid].Lines {
		if g.Lines[id].Orientation == Horizontal {
			out = append(out, id)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return ascYX(g.Lines[out[i]].Rect, g.Lines[out[j]].Rect) })
	return out
}
