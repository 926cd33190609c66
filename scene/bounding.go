package scene

// Recompute the cached bounding boxes of n and its whole subtree and return
// the box of n. Primitives are bound tightly by their vertices. Objects fold
// the boxes of their children, each inflated by BoundingBias, so the slack
// grows with depth. Frozen nodes keep the box captured when they were frozen.
//
// An object without children is a structural error: it is reported once per
// object, keeps its previous box and yields EmptyBounds so the fold of its
// parent is unaffected.
func UpdateBoundings(n Node) Bounds {
	switch c := n.(type) {
	case *Primitive:
		c.bounding = c.AABB().Bounds()
		return c.bounding
	case *Object:
		return c.updateBoundings()
	case *Frozen:
		return c.bounding
	}
	return EmptyBounds()
}

func (o *Object) updateBoundings() Bounds {
	if len(o.children) == 0 {
		if !o.structureReported {
			graphLogger.Errorf("problematic object structure: object has no children (consumed: %t)", o.consumed)
			o.structureReported = true
		}
		return EmptyBounds()
	}

	b := EmptyBounds()
	for _, child := range o.children {
		if child == nil {
			continue
		}
		b = b.Fold(UpdateBoundings(child), BoundingBias)
	}
	o.bounding = b
	return b
}
