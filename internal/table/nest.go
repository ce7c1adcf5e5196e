package table

// Nest links every pair of hierarchies where one sits inside the other and reduces
// the links to direct parents and children. It returns the hierarchies that are not
// nested in any other, in input order.
func Nest(hs []*Hierarchy) []*Hierarchy {
	for _, h := range hs {
		h.Parents, h.Nested = nil, nil
	}

	for i, outer := range hs {
		for j, inner := range hs {
			if i == j || !outer.Box.Contains(inner.Box.Anchor()) {
				continue
			}
			// identical anchors contain each other; the earlier group is the parent
			if j < i && inner.Box.Contains(outer.Box.Anchor()) {
				continue
			}
			outer.Nested = append(outer.Nested, inner)
			inner.Parents = append(inner.Parents, outer)
		}
	}

	parents := make([][]*Hierarchy, len(hs))
	nested := make([][]*Hierarchy, len(hs))
	for i, h := range hs {
		parents[i] = reduce(h.Parents, func(o *Hierarchy) []*Hierarchy { return o.Parents })
		nested[i] = reduce(h.Nested, func(o *Hierarchy) []*Hierarchy { return o.Nested })
	}

	var top []*Hierarchy
	for i, h := range hs {
		h.Parents, h.Nested = parents[i], nested[i]
		if len(h.Parents) == 0 {
			top = append(top, h)
		}
	}
	return top
}

// reduce drops every entry of list that is reachable in one step from another
// entry of list.
func reduce(list []*Hierarchy, next func(*Hierarchy) []*Hierarchy) []*Hierarchy {
	var out []*Hierarchy
	for _, h := range list {
		implied := false
		for _, other := range list {
			if other != h && contains(next(other), h) {
				implied = true
				break
			}
		}
		if !implied {
			out = append(out, h)
		}
	}
	return out
}

func contains(list []*Hierarchy, h *Hierarchy) bool {
	for _, x := range list {
		if x == h {
			return true
		}
	}
	return false
}

// Fold attaches each nested hierarchy to the deepest row of its direct parent that
// contains it, so the nested table is serialized inside that row.
func Fold(hs []*Hierarchy) {
	for _, h := range hs {
		for _, n := range h.Node.traverseAll() {
			n.Embedded = nil
		}
	}
	for _, h := range hs {
		if len(h.Parents) == 0 {
			continue
		}
		if len(h.Parents) > 1 {
			Logger.Debug("nested table has several parents", "group", h.Group, "parents", len(h.Parents))
		}
		parent := h.Parents[0]
		n := parent.deepest(h.Box.Anchor())
		if n == nil {
			Logger.Debug("nested table outside every row", "group", h.Group, "parent", parent.Group)
			continue
		}
		n.Embedded = append(n.Embedded, h)
	}
}

func (n *Node) traverseAll() []*Node {
	var out []*Node
	n.traverseUp(func(x *Node) error {
		out = append(out, x)
		return nil
	})
	return out
}
