package scene

import (
	"math"

	"github.com/arbobendik/FlexLight-sub000/types"
)

// BoundingBias is the outward inflation (2^-16 scaled) applied whenever child
// bounds are folded into a parent box. Boundary triangles stay inside the
// parent box despite float rounding.
const BoundingBias float32 = 0.00152587890625

// Bounds is an axis aligned box stored as xmin, xmax, ymin, ymax, zmin, zmax.
type Bounds [6]float32

// AABB is an axis aligned box stored as min xyz followed by max xyz. This is
// the layout written into bounding rows of the geometry buffer.
type AABB [6]float32

// Create an inverted box that leaves any box it is folded with unchanged.
func EmptyBounds() Bounds {
	return Bounds{math.MaxFloat32, -math.MaxFloat32, math.MaxFloat32, -math.MaxFloat32, math.MaxFloat32, -math.MaxFloat32}
}

// Get the min corner.
func (b Bounds) Min() types.Vec3 {
	return types.Vec3{b[0], b[2], b[4]}
}

// Get the max corner.
func (b Bounds) Max() types.Vec3 {
	return types.Vec3{b[1], b[3], b[5]}
}

// Get box center.
func (b Bounds) Center() types.Vec3 {
	return types.Vec3{(b[0] + b[1]) / 2, (b[2] + b[3]) / 2, (b[4] + b[5]) / 2}
}

// Check whether the box has been populated.
func (b Bounds) IsEmpty() bool {
	return b[0] > b[1] || b[2] > b[3] || b[4] > b[5]
}

// Fold another box into this one, inflating the other box by bias.
func (b Bounds) Fold(other Bounds, bias float32) Bounds {
	for axis := 0; axis < 3; axis++ {
		if v := other[axis*2] - bias; v < b[axis*2] {
			b[axis*2] = v
		}
		if v := other[axis*2+1] + bias; v > b[axis*2+1] {
			b[axis*2+1] = v
		}
	}
	return b
}

// Convert to the min xyz / max xyz layout.
func (b Bounds) AABB() AABB {
	return AABB{b[0], b[2], b[4], b[1], b[3], b[5]}
}

// Check whether other lies inside b on all six planes (closed intervals).
func (b Bounds) Contains(other Bounds) bool {
	return b[0] <= other[0] && b[2] <= other[2] && b[4] <= other[4] &&
		b[1] >= other[1] && b[3] >= other[3] && b[5] >= other[5]
}

// Check whether the object's cached bounding box fits inside bound.
func FitsInBound(bound Bounds, n Node) bool {
	return bound.Contains(n.Bounding())
}

// Create an inverted box for min xyz / max xyz folding.
func emptyAABB() AABB {
	return AABB{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
}

// Fold another box into this one without inflation.
func (a AABB) Union(other AABB) AABB {
	lo := types.MinVec3(a.Min(), other.Min())
	hi := types.MaxVec3(a.Max(), other.Max())
	return AABB{lo[0], lo[1], lo[2], hi[0], hi[1], hi[2]}
}

func (a AABB) Min() types.Vec3 {
	return types.Vec3{a[0], a[1], a[2]}
}

func (a AABB) Max() types.Vec3 {
	return types.Vec3{a[3], a[4], a[5]}
}

// Convert to the xmin, xmax, ... layout.
func (a AABB) Bounds() Bounds {
	return Bounds{a[0], a[3], a[1], a[4], a[2], a[5]}
}
