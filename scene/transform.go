package scene

import (
	"fmt"
	"math"

	"github.com/arbobendik/FlexLight-sub000/log"
	"github.com/arbobendik/FlexLight-sub000/types"
)

// Number of floats used by each transform in the buffer generated by
// Registry.Buffer.
const TransformStride = 32

// A Handle identifies a transform slot together with the generation of the
// slot at the time the handle was taken. Handles of destroyed transforms
// never resolve, even after their slot is reused.
type Handle struct {
	Number     uint32
	Generation uint32
}

// Transform is an affine transform (rotation * scale + translation) occupying
// a numbered registry slot. Nodes reference transforms; they never own them.
type Transform struct {
	registry   *Registry
	number     int
	generation uint32

	rotation types.Mat3
	scale    float32
	position types.Vec3

	// Nodes that had this transform assigned to them directly.
	nodes map[Node]struct{}

	// Static caches whose rows carry this transform's number.
	caches map[*StaticCache]struct{}
}

// Get the slot number of this transform; -1 if the transform was destroyed.
func (t *Transform) Number() int {
	return t.number
}

// Get a generation checked handle for this transform. Destroyed transforms
// have no handle.
func (t *Transform) Handle() (Handle, error) {
	if t.Released() {
		return Handle{}, ErrTransformReleased
	}
	return Handle{Number: uint32(t.number), Generation: t.generation}, nil
}

// Check whether the transform has been destroyed.
func (t *Transform) Released() bool {
	return t.number < 0
}

// Get the scaled rotation matrix.
func (t *Transform) Matrix() types.Mat3 {
	return t.rotation.Scale(t.scale)
}

// Get the unscaled rotation matrix.
func (t *Transform) Rotation() types.Mat3 {
	return t.rotation
}

// Get the translation.
func (t *Transform) Position() types.Vec3 {
	return t.position
}

// Get the uniform scale factor.
func (t *Transform) ScaleFactor() float32 {
	return t.scale
}

// Get the number of nodes that reference this transform directly.
// Descendants that inherit it from an ancestor are not counted.
func (t *Transform) NodeCount() int {
	return len(t.nodes)
}

// Get the number of static caches whose rows use this transform.
func (t *Transform) CacheCount() int {
	return len(t.caches)
}

// Set the translation.
func (t *Transform) Move(x, y, z float32) {
	t.position = types.Vec3{x, y, z}
}

// Set the uniform scale factor.
func (t *Transform) Scale(s float32) {
	t.scale = s
}

// Replace the rotation with a rotation of theta radians around axis.
func (t *Transform) RotateAxis(axis types.Vec3, theta float32) {
	t.rotation = types.QuatFromAxisAngle(axis, theta).Mat3()
}

// Replace the rotation with a rotation given in spherical angles; theta
// rotates around the y axis and psi tilts around the x axis.
func (t *Transform) RotateSpherical(theta, psi float32) {
	sT, cT := sincos(theta)
	sP, cP := sincos(psi)

	t.rotation = types.Mat3{
		cT, 0, sT,
		-sT * sP, cP, cT * sP,
		-sT * cP, -sP, cT * cP,
	}
}

// Apply the transform to a point.
func (t *Transform) Apply(p types.Vec3) types.Vec3 {
	return t.Matrix().MulVec(p).Add(t.position)
}

func (t *Transform) addNode(n Node) {
	t.nodes[n] = struct{}{}
}

func (t *Transform) removeNode(n Node) {
	delete(t.nodes, n)
}

func sincos(a float32) (float32, float32) {
	s, c := math.Sincos(float64(a))
	return float32(s), float32(c)
}

// Get the reference number stored in buffers for t; nil maps to the
// identity slot.
func transformNum(t *Transform) int {
	if t == nil || t.number < 0 {
		return 0
	}
	return t.number
}

// Assign t to node n, moving the back reference from the previous transform.
// A nil t detaches the node.
func bindTransform(n Node, prev, t *Transform) error {
	if t != nil && t.Released() {
		return ErrTransformReleased
	}
	if prev != nil {
		prev.removeNode(n)
	}
	if t != nil {
		t.addNode(n)
	}
	n.applyTransform(t)
	return nil
}

// Registry is an arena of transforms. Reference numbers are reused through a
// free-index stack. Slot 0 always holds the identity transform.
type Registry struct {
	logger log.Logger

	slots       []*Transform
	generations []uint32
	free        []int
}

// Create a registry whose slot 0 holds the identity transform.
func NewRegistry() *Registry {
	r := &Registry{
		logger: log.New("transforms"),
	}
	r.New()
	return r
}

// Allocate a new identity transform in the most recently freed slot, or in a
// new slot if none is free.
func (r *Registry) New() *Transform {
	var number int
	if n := len(r.free); n > 0 {
		number = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		number = len(r.slots)
		r.slots = append(r.slots, nil)
		r.generations = append(r.generations, 0)
	}

	t := &Transform{
		registry:   r,
		number:     number,
		generation: r.generations[number],
		rotation:   types.Ident3(),
		scale:      1,
		nodes:      make(map[Node]struct{}),
		caches:     make(map[*StaticCache]struct{}),
	}
	r.slots[number] = t
	return t
}

// Get the identity transform at slot 0.
func (r *Registry) Identity() *Transform {
	return r.slots[0]
}

// Release the slot held by t. Transforms that are still referenced by nodes
// or static caches cannot be destroyed; detach them first with
// SetTransform(nil) and SetStatic(false).
func (r *Registry) Destroy(t *Transform) error {
	switch {
	case t == nil:
		return ErrNilTransform
	case t.registry != r:
		return ErrForeignTransform
	case t.Released():
		return ErrTransformReleased
	case t.number == 0:
		return ErrIdentityTransform
	case len(t.nodes) != 0 || len(t.caches) != 0:
		return fmt.Errorf("%w: transform %d has %d nodes and %d static caches", ErrTransformInUse, t.number, len(t.nodes), len(t.caches))
	}

	number := t.number
	r.slots[number] = nil
	r.generations[number]++
	r.free = append(r.free, number)
	t.number = -1

	r.logger.Debugf("released transform slot %d", number)
	return nil
}

// Resolve a handle to its live transform.
func (r *Registry) Lookup(h Handle) (*Transform, error) {
	n := int(h.Number)
	if n >= len(r.slots) || r.slots[n] == nil || r.generations[n] != h.Generation {
		return nil, fmt.Errorf("%w: slot %d generation %d", ErrStaleTransform, h.Number, h.Generation)
	}
	return r.slots[n], nil
}

// Get the number of slots, used or free. Buffers are sized by this value.
func (r *Registry) Count() int {
	return len(r.slots)
}

// Get the number of live transforms.
func (r *Registry) Live() int {
	return len(r.slots) - len(r.free)
}

// Pack all slots into a float buffer, TransformStride floats per slot:
// matrix rows (3 x vec4), position (vec4), inverse matrix rows (3 x vec4) and
// negated position (vec4). Free slots stay zeroed.
func (r *Registry) Buffer() []float32 {
	out := make([]float32, TransformStride*len(r.slots))

	for number, t := range r.slots {
		if t == nil {
			continue
		}

		m := t.Matrix()
		inv, err := m.PseudoInverse()
		if err != nil {
			r.logger.Warningf("transform %d: no inverse (%v); writing zero inverse", number, err)
		}

		slot := out[number*TransformStride : (number+1)*TransformStride]
		for row := 0; row < 3; row++ {
			putVec4(slot[row*4:], m.Row(row).Vec4(0))
			putVec4(slot[16+row*4:], inv.Row(row).Vec4(0))
		}
		putVec4(slot[12:], t.position.Vec4(0))
		putVec4(slot[28:], t.position.Mul(-1).Vec4(0))
	}

	return out
}

func putVec4(dst []float32, v types.Vec4) {
	copy(dst, v[:])
}
