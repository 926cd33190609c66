package scene

import "errors"

var (
	ErrNilNode            = errors.New("scene: nil node")
	ErrEmptyObject        = errors.New("scene: object has no children")
	ErrConsumed           = errors.New("scene: object was consumed by Freeze")
	ErrAttributeLength    = errors.New("scene: attribute array length does not match vertex count")
	ErrNilTransform       = errors.New("scene: nil transform")
	ErrTransformInUse     = errors.New("scene: transform is still referenced by nodes")
	ErrTransformReleased  = errors.New("scene: transform has been destroyed")
	ErrStaleTransform     = errors.New("scene: stale transform handle")
	ErrIdentityTransform  = errors.New("scene: the identity transform cannot be destroyed")
	ErrForeignTransform   = errors.New("scene: transform belongs to a different registry")
	ErrChildIndex         = errors.New("scene: child index out of range")
	ErrSizingMismatch     = errors.New("scene: emission pass diverged from sizing pass")
	ErrInvalidSlotsPerRow = errors.New("scene: slots per line must not be negative")
)
