package scene

import (
	"math/rand"
	"testing"

	"github.com/arbobendik/FlexLight-sub000/types"
)

func randomPoint(rng *rand.Rand) types.Vec3 {
	return types.XYZ(rng.Float32()*100-50, rng.Float32()*100-50, rng.Float32()*100-50)
}

// Get a random triangle, or a random parallelogram about a quarter of the time.
func randomPrimitive(rng *rand.Rand) *Primitive {
	a := randomPoint(rng)
	if rng.Intn(4) == 0 {
		b, d := randomPoint(rng), randomPoint(rng)
		return NewPlane(a, b, b.Add(d.Sub(a)), d)
	}
	return NewTriangle(a, randomPoint(rng), randomPoint(rng))
}

func randomPrimitives(rng *rand.Rand, n int) []Node {
	out := make([]Node, n)
	for i := range out {
		out[i] = randomPrimitive(rng)
	}
	return out
}

// Build a tree of at most depth levels of objects with 1 to 4 children each.
func randomTree(rng *rand.Rand, depth int) *Object {
	children := make([]Node, 1+rng.Intn(4))
	for i := range children {
		if depth > 1 && rng.Intn(2) == 0 {
			children[i] = randomTree(rng, depth-1)
		} else {
			children[i] = randomPrimitive(rng)
		}
	}
	return NewBounding(children...)
}

func tightAABB(n Node) AABB {
	switch c := n.(type) {
	case *Primitive:
		return c.AABB()
	case *Object:
		box := emptyAABB()
		for _, child := range c.children {
			box = box.Union(tightAABB(child))
		}
		return box
	}
	return emptyAABB()
}

func slotCount(n Node) int {
	switch c := n.(type) {
	case *Primitive:
		return c.length
	case *Object:
		total := 1
		for _, child := range c.children {
			total += slotCount(child)
		}
		return total
	}
	return 0
}

// Check that every child box, inflated by the bias, lies inside its parent
// box and that every parent plane is reached by some child.
func checkInflatedBounds(t *testing.T, o *Object) {
	t.Helper()
	parent := o.Bounding()
	var touched [6]bool
	for _, child := range o.children {
		b := child.Bounding()
		for axis := 0; axis < 3; axis++ {
			lo, hi := b[axis*2]-BoundingBias, b[axis*2+1]+BoundingBias
			if parent[axis*2] > lo || parent[axis*2+1] < hi {
				t.Fatalf("expected child box %v + bias inside parent box %v", b, parent)
			}
			touched[axis*2] = touched[axis*2] || parent[axis*2] == lo
			touched[axis*2+1] = touched[axis*2+1] || parent[axis*2+1] == hi
		}
		if p, ok := child.(*Primitive); ok {
			if b != p.AABB().Bounds() {
				t.Fatalf("expected tight primitive box %v; got %v", p.AABB().Bounds(), b)
			}
		}
		if c, ok := child.(*Object); ok {
			checkInflatedBounds(t, c)
		}
	}
	for plane, ok := range touched {
		if !ok {
			t.Fatalf("expected plane %d of parent box %v to be reached by a child", plane, parent)
		}
	}
}

// Check that every child box lies inside its parent box.
func checkContainment(t *testing.T, o *Object) {
	t.Helper()
	for _, child := range o.children {
		if !FitsInBound(o.Bounding(), child) {
			t.Fatalf("expected child box %v inside parent box %v", child.Bounding(), o.Bounding())
		}
		if c, ok := child.(*Object); ok {
			checkContainment(t, c)
		}
	}
}

func collectPrimitives(n Node, seen map[*Primitive]int) {
	switch c := n.(type) {
	case *Primitive:
		seen[c]++
	case *Object:
		for _, child := range c.children {
			collectPrimitives(child, seen)
		}
	}
}

// Walk the tree alongside the buffers and return the slot and triangle
// cursors after n.
func replay(t *testing.T, bufs *Buffers, n Node, slot, tri int) (int, int) {
	t.Helper()
	geo := bufs.GeometryBuffer[slot*GeometryRowWidth : (slot+1)*GeometryRowWidth]

	switch c := n.(type) {
	case *Primitive:
		for i := 0; i < c.length; i++ {
			if int(bufs.IDBuffer[tri]) != slot {
				t.Fatalf("expected triangle %d to map to slot %d; got %d", tri, slot, bufs.IDBuffer[tri])
			}
			geo = bufs.GeometryBuffer[slot*GeometryRowWidth : (slot+1)*GeometryRowWidth]
			scn := bufs.SceneBuffer[slot*SceneRowWidth : (slot+1)*SceneRowWidth]
			if !floatsEqual(geo, c.GeometryRow()[i*GeometryRowWidth:(i+1)*GeometryRowWidth]) {
				t.Fatalf("expected geometry row %d to match triangle %d of its primitive", slot, i)
			}
			if !floatsEqual(scn, c.SceneRow()[i*SceneRowWidth:(i+1)*SceneRowWidth]) {
				t.Fatalf("expected scene row %d to match triangle %d of its primitive", slot, i)
			}
			slot++
			tri++
		}
		return slot, tri
	case *Object:
		if geo[TagOffset] != TagBounding {
			t.Fatalf("expected bounding tag at slot %d; got %f", slot, geo[TagOffset])
		}
		if skip := int(geo[SkipOffset]); skip != slotCount(c)-1 {
			t.Fatalf("expected skip count %d at slot %d; got %d", slotCount(c)-1, slot, skip)
		}
		box := tightAABB(c)
		if !floatsEqual(geo[:6], box[:]) {
			t.Fatalf("expected bounding row %v at slot %d; got %v", box, slot, geo[:6])
		}

		end := slot + int(geo[SkipOffset]) + 1
		slot++
		for _, child := range c.children {
			slot, tri = replay(t, bufs, child, slot, tri)
		}
		if slot != end {
			t.Fatalf("expected subtree to end at slot %d; got %d", end, slot)
		}
		return slot, tri
	}
	t.Fatalf("unexpected node %T", n)
	return slot, tri
}

func TestRandomTreesHaveInflatedBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for iter := 0; iter < 100; iter++ {
		root := randomTree(rng, 1+rng.Intn(5))
		first := UpdateBoundings(root)
		checkInflatedBounds(t, root)

		if again := UpdateBoundings(root); again != first {
			t.Fatalf("[iter %d] expected idempotent bounds %v; got %v", iter, first, again)
		}
	}
}

func TestRandomSplitsPartitionEveryObject(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	opts := DefaultBVHOptions()
	splits := 0

	for iter := 0; iter < 200; iter++ {
		objs := randomPrimitives(rng, opts.MaxLeavesPerNode+1+rng.Intn(60))
		box := UpdateBoundings(NewBounding(objs...))

		axis, _, ok := chooseSplit(objs, box, opts.MinBoundingWidth)
		if !ok {
			continue
		}
		splits++
		lower, upper := halves(box, axis)
		buckets := partition(objs, lower, upper)

		want := emptyAABB()
		for _, obj := range objs {
			want = want.Union(obj.Bounding().AABB())
		}

		placed := make(map[Node]int, len(objs))
		inflated, tight := EmptyBounds(), emptyAABB()
		for i, bucket := range buckets {
			for _, obj := range bucket {
				placed[obj]++
				inflated = inflated.Fold(obj.Bounding(), BoundingBias)
				tight = tight.Union(obj.Bounding().AABB())

				inLower, inUpper := FitsInBound(lower, obj), FitsInBound(upper, obj)
				switch {
				case i == 0 && !inLower,
					i == 1 && (inLower || !inUpper),
					i == 2 && (inLower || inUpper):
					t.Fatalf("[iter %d] object %v placed in the wrong bucket %d", iter, obj.Bounding(), i)
				}
			}
		}

		if len(placed) != len(objs) {
			t.Fatalf("[iter %d] expected %d objects in buckets; got %d", iter, len(objs), len(placed))
		}
		for _, obj := range objs {
			if placed[obj] != 1 {
				t.Fatalf("[iter %d] expected object in exactly one bucket; got %d", iter, placed[obj])
			}
		}
		if inflated != box {
			t.Fatalf("[iter %d] expected buckets to cover %v; got %v", iter, box, inflated)
		}
		if tight != want {
			t.Fatalf("[iter %d] expected bucket union %v to match the input box", iter, tight)
		}
	}

	if splits == 0 {
		t.Fatal("expected at least one successful split")
	}
}

func TestRandomBVHRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for iter := 0; iter < 100; iter++ {
		objs := randomPrimitives(rng, 1+rng.Intn(300))
		root, stats := GenerateBVH(objs, DefaultBVHOptions())
		checkContainment(t, root)

		seen := make(map[*Primitive]int, len(objs))
		collectPrimitives(root, seen)
		triangles := 0
		for _, obj := range objs {
			p := obj.(*Primitive)
			if seen[p] != 1 {
				t.Fatalf("[iter %d] expected primitive once in the tree; got %d", iter, seen[p])
			}
			triangles += p.length
		}
		if stats.Triangles != triangles || stats.PartitionedItems != len(objs) {
			t.Fatalf("[iter %d] expected %d triangles in %d items; got %d in %d", iter, triangles, len(objs), stats.Triangles, stats.PartitionedItems)
		}

		UpdateBoundings(root)
		checkInflatedBounds(t, root)

		bufs, err := GenerateArrays(root)
		if err != nil {
			t.Fatalf("[iter %d] unexpected error: %v", iter, err)
		}
		if bufs.BufferLength != triangles || len(bufs.IDBuffer) != triangles {
			t.Fatalf("[iter %d] expected %d ids; got %d", iter, triangles, len(bufs.IDBuffer))
		}
		last := int32(-1)
		for i, id := range bufs.IDBuffer {
			if id <= last || int(id) >= bufs.TextureLength {
				t.Fatalf("[iter %d] expected increasing ids below %d; got %d at %d", iter, bufs.TextureLength, id, i)
			}
			if tag := bufs.GeometryBuffer[int(id)*GeometryRowWidth+TagOffset]; tag != TagTriangle {
				t.Fatalf("[iter %d] expected id %d to reference a triangle row; got tag %f", iter, id, tag)
			}
			last = id
		}
		slot, tri := replay(t, bufs, root, 0, 0)
		if slot != bufs.TextureLength || tri != bufs.BufferLength {
			t.Fatalf("[iter %d] expected replay to end at %d/%d; got %d/%d", iter, bufs.TextureLength, bufs.BufferLength, slot, tri)
		}
		if bufs.MinMax != tightAABB(root) {
			t.Fatalf("[iter %d] expected min/max %v; got %v", iter, tightAABB(root), bufs.MinMax)
		}
		for _, v := range bufs.GeometryBuffer[bufs.TextureLength*GeometryRowWidth:] {
			if v != 0 {
				t.Fatalf("[iter %d] expected zero padding after the last slot", iter)
			}
		}
	}
}
