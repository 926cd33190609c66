package scene

import (
	"math"
	"time"

	"github.com/arbobendik/FlexLight-sub000/log"
)

type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis
)

func (a Axis) String() string {
	return [...]string{"x", "y", "z"}[a]
}

// BVHOptions tunes the BVH builder.
type BVHOptions struct {
	// Nodes with at most this many members become leafs.
	MaxLeavesPerNode int

	// An axis is only split if both halves are wider than this.
	MinBoundingWidth float32

	// Recursion stops once depth exceeds log2(len(objects)) + DepthSlack.
	DepthSlack int
}

// Get the builder defaults: 4 leaves per node, 1/256 minimum half width and a
// depth slack of 8.
func DefaultBVHOptions() BVHOptions {
	return BVHOptions{
		MaxLeavesPerNode: 4,
		MinBoundingWidth: 1.0 / 256,
		DepthSlack:       8,
	}
}

// A subtree the builder could not split because no axis was wide enough.
type SplitFailure struct {
	Depth  int
	Items  int
	OnEdge [3]int
}

// BuildStats summarizes a BVH build.
type BuildStats struct {
	MaxDepth int

	// Bounding nodes in the returned tree, leafs included.
	Nodes            int
	Leafs            int
	PartitionedItems int
	Triangles        int
	Failures         []SplitFailure
	DegenerateSplits int
	Duration         time.Duration
}

type builder struct {
	logger log.Logger

	opts     BVHOptions
	maxDepth float64

	stats BuildStats
}

// Build a bounding volume hierarchy over objects. The builder splits the
// center of each node's box along the axis that leaves the fewest objects
// straddling both halves. Objects are never cut: every node receives up to
// three children (lower half, upper half and straddlers), each wrapped in a
// new bounding node whose box is tightened before recursing.
//
// The input slice and the objects it holds are not reordered; the returned
// tree references the same nodes. Bounding boxes of the objects are
// refreshed.
func GenerateBVH(objects []Node, opts BVHOptions) (*Object, *BuildStats) {
	if opts.MaxLeavesPerNode < 1 {
		opts.MaxLeavesPerNode = 1
	}

	b := &builder{
		logger: log.New("bvh builder"),
		opts:   opts,
	}

	start := time.Now()
	top := NewBounding(objects...)
	UpdateBoundings(top)

	if len(objects) > 0 {
		b.maxDepth = math.Log2(float64(len(objects))) + float64(opts.DepthSlack)
	}
	root := b.divide(top, 0)

	b.stats.Duration = time.Since(start)
	b.logger.Debugf(
		"BVH tree build time: %d ms, maxDepth: %d, nodes: %d, leafs: %d, items: %d, triangles: %d, failures: %d, degenerate: %d",
		b.stats.Duration.Nanoseconds()/1e6,
		b.stats.MaxDepth, b.stats.Nodes, b.stats.Leafs, b.stats.PartitionedItems,
		b.stats.Triangles, len(b.stats.Failures), b.stats.DegenerateSplits,
	)
	return root, &b.stats
}

// Partition the children of objs and return the node that replaces it.
func (b *builder) divide(objs *Object, depth int) *Object {
	if depth > b.stats.MaxDepth {
		b.stats.MaxDepth = depth
	}

	if len(objs.children) <= b.opts.MaxLeavesPerNode || float64(depth) > b.maxDepth {
		return b.createLeaf(objs)
	}

	axis, onEdge, ok := chooseSplit(objs.children, objs.bounding, b.opts.MinBoundingWidth)
	if !ok {
		b.stats.Failures = append(b.stats.Failures, SplitFailure{Depth: depth, Items: len(objs.children), OnEdge: onEdge})
		b.logger.Errorf("optimization failed for subtree with %d items at depth %d (on edge: %v)", len(objs.children), depth, onEdge)
		return b.createLeaf(objs)
	}

	lower, upper := halves(objs.bounding, axis)
	buckets := partition(objs.children, lower, upper)

	// A split that leaves everything in one bucket would only add a level.
	filled := 0
	for _, bucket := range buckets {
		if len(bucket) != 0 {
			filled++
		}
	}
	if filled < 2 {
		b.stats.DegenerateSplits++
		return b.createLeaf(objs)
	}

	children := make([]Node, 0, filled)
	for _, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		node := NewBounding(bucket...)
		UpdateBoundings(node)
		children = append(children, b.divide(node, depth+1))
	}

	common := NewBounding(children...)
	common.bounding = objs.bounding
	b.stats.Nodes++
	return common
}

func (b *builder) createLeaf(objs *Object) *Object {
	b.stats.Nodes++
	b.stats.Leafs++
	b.stats.PartitionedItems += len(objs.children)
	for _, child := range objs.children {
		b.stats.Triangles += triangleCount(child)
	}
	return objs
}

// Get the lower and upper half of box along axis.
func halves(box Bounds, axis Axis) (lower, upper Bounds) {
	center := box.Center()[axis]
	lower, upper = box, box
	lower[axis*2+1] = center
	upper[axis*2] = center
	return lower, upper
}

// Pick the axis whose center split leaves the fewest objects on the edge.
// Later axes win ties. Axes whose halves are not wider than minWidth are
// skipped; ok is false when no axis qualifies.
func chooseSplit(objs []Node, box Bounds, minWidth float32) (axis Axis, onEdge [3]int, ok bool) {
	least := math.MaxInt
	for a := XAxis; a <= ZAxis; a++ {
		lower, upper := halves(box, a)
		center := lower[a*2+1]
		minDiff := center - box[a*2]
		if d := box[a*2+1] - center; d < minDiff {
			minDiff = d
		}

		for _, obj := range objs {
			if !FitsInBound(lower, obj) && !FitsInBound(upper, obj) {
				onEdge[a]++
			}
		}

		if least >= onEdge[a] && minDiff > minWidth {
			axis = a
			least = onEdge[a]
			ok = true
		}
	}
	return axis, onEdge, ok
}

// Sort objs into the lower half, the upper half and the straddlers. Objects
// that fit both halves go to the lower one.
func partition(objs []Node, lower, upper Bounds) (buckets [3][]Node) {
	for _, obj := range objs {
		switch {
		case FitsInBound(lower, obj):
			buckets[0] = append(buckets[0], obj)
		case FitsInBound(upper, obj):
			buckets[1] = append(buckets[1], obj)
		default:
			buckets[2] = append(buckets[2], obj)
		}
	}
	return buckets
}

func triangleCount(n Node) int {
	switch c := n.(type) {
	case *Primitive:
		return c.length
	case *Object:
		if c.static != nil {
			return c.static.BufferLength
		}
		total := 0
		for _, child := range c.children {
			total += triangleCount(child)
		}
		return total
	case *Frozen:
		return c.cache.BufferLength
	}
	return 0
}
