package scene

import (
	"fmt"

	"github.com/arbobendik/FlexLight-sub000/log"
	"github.com/arbobendik/FlexLight-sub000/types"
)

var graphLogger = log.New("scene graph")

// Object is a composite node owning an ordered list of children.
type Object struct {
	children []Node

	// Anchor for Scale.
	relativePosition types.Vec3

	bounding  Bounds
	transform *Transform

	// Non-nil while the object is static.
	static *StaticCache

	// Set once Freeze has moved the subtree into a Frozen node.
	consumed bool

	// Latches the empty-object warning so it is reported once per node.
	structureReported bool
}

// Create a bounding node over the given children.
func NewBounding(children ...Node) *Object {
	return &Object{
		children: append([]Node(nil), children...),
		bounding: EmptyBounds(),
	}
}

// Create an axis aligned cuboid made of 6 planes. The faces are pulled
// inwards by BoundingBias so the cuboid's own bounding box, once inflated by
// UpdateBoundings, matches the requested extents.
func NewCuboid(x, x2, y, y2, z, z2 float32) *Object {
	b := BoundingBias
	x, y, z = x+b, y+b, z+b
	x2, y2, z2 = x2-b, y2-b, z2-b

	v := types.XYZ
	top := NewPlane(v(x, y2, z), v(x2, y2, z), v(x2, y2, z2), v(x, y2, z2))
	right := NewPlane(v(x2, y2, z), v(x2, y, z), v(x2, y, z2), v(x2, y2, z2))
	front := NewPlane(v(x2, y2, z2), v(x2, y, z2), v(x, y, z2), v(x, y2, z2))
	bottom := NewPlane(v(x, y, z2), v(x2, y, z2), v(x2, y, z), v(x, y, z))
	left := NewPlane(v(x, y2, z2), v(x, y, z2), v(x, y, z), v(x, y2, z))
	back := NewPlane(v(x, y2, z), v(x, y, z), v(x2, y, z), v(x2, y2, z))

	o := NewBounding(top, right, front, bottom, left, back)
	o.bounding = Bounds{x, x2, y, y2, z, z2}
	return o
}

func (o *Object) Kind() NodeKind {
	return KindObject
}

// Get the bounding box computed by the last UpdateBoundings call.
func (o *Object) Bounding() Bounds {
	return o.bounding
}

func (o *Object) TransformNum() int {
	return transformNum(o.transform)
}

func (o *Object) applyTransform(t *Transform) {
	o.transform = t
	for _, child := range o.children {
		if child == nil {
			continue
		}
		// Descendants follow the ancestor; drop any direct registration.
		switch c := child.(type) {
		case *Primitive:
			if c.transform != nil {
				c.transform.removeNode(c)
			}
		case *Object:
			if c.transform != nil {
				c.transform.removeNode(c)
			}
		}
		child.applyTransform(t)
	}
}

// Get the transform assigned to this object.
func (o *Object) Transform() *Transform {
	return o.transform
}

// Assign a transform to the object and its whole subtree. A nil transform
// detaches it.
func (o *Object) SetTransform(t *Transform) error {
	if o.consumed {
		return ErrConsumed
	}
	return bindTransform(o, o.transform, t)
}

// Get the number of children.
func (o *Object) Len() int {
	return len(o.children)
}

// Get child i.
func (o *Object) Child(i int) Node {
	return o.children[i]
}

// Get a copy of the child list.
func (o *Object) Children() []Node {
	return append([]Node(nil), o.children...)
}

// Append children.
func (o *Object) Append(children ...Node) error {
	if o.consumed {
		return ErrConsumed
	}
	for _, child := range children {
		if child == nil {
			return ErrNilNode
		}
	}
	o.children = append(o.children, children...)
	return nil
}

// Replace child i.
func (o *Object) SetChild(i int, child Node) error {
	if o.consumed {
		return ErrConsumed
	}
	if child == nil {
		return ErrNilNode
	}
	if i < 0 || i >= len(o.children) {
		return fmt.Errorf("%w: %d (len %d)", ErrChildIndex, i, len(o.children))
	}
	if prev := o.children[i]; prev != child {
		o.detach(prev)
	}
	o.children[i] = child
	return nil
}

// Remove child i, preserving the order of the remaining children.
func (o *Object) RemoveChild(i int) (Node, error) {
	if o.consumed {
		return nil, ErrConsumed
	}
	if i < 0 || i >= len(o.children) {
		return nil, fmt.Errorf("%w: %d (len %d)", ErrChildIndex, i, len(o.children))
	}
	removed := o.children[i]
	o.children = append(o.children[:i], o.children[i+1:]...)
	o.detach(removed)
	return removed, nil
}

// Clear the transform a leaving child inherited from o so its rows stop
// carrying a slot number nothing keeps alive. Transforms assigned directly
// inside the child's subtree stay in place.
func (o *Object) detach(child Node) {
	if o.transform != nil {
		clearInherited(child, o.transform)
	}
}

func clearInherited(n Node, t *Transform) {
	if _, direct := t.nodes[n]; direct {
		return
	}
	switch c := n.(type) {
	case *Primitive:
		if c.transform == t {
			c.applyTransform(nil)
		}
	case *Object:
		if c.transform != t {
			return
		}
		c.transform = nil
		for _, child := range c.children {
			if child != nil {
				clearInherited(child, t)
			}
		}
	}
}
