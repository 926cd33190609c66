package scene

// NodeKind discriminates the node variants of a scene graph.
type NodeKind uint8

const (
	// A triangle bearing leaf.
	KindPrimitive NodeKind = iota + 1

	// A composite node with live children.
	KindObject

	// A composite node that has been replaced by its serialized cache.
	KindFrozen
)

func (k NodeKind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindObject:
		return "object"
	case KindFrozen:
		return "frozen"
	}
	return "unknown"
}

// Node is implemented by *Primitive, *Object and *Frozen. The interface is
// sealed; graph algorithms dispatch on the concrete type.
type Node interface {
	// The node variant.
	Kind() NodeKind

	// The bounding box computed by the last UpdateBoundings call.
	Bounding() Bounds

	// The reference number of the transform applied to this node (0 = identity).
	TransformNum() int

	// Apply t to the node and its subtree without registering back references.
	applyTransform(t *Transform)
}
