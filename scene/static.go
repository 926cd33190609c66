package scene

// StaticCache holds the serialized form of a subtree. Rows are stored without
// line padding; IDBuffer entries are relative to the first row of the cache.
type StaticCache struct {
	GeometryBuffer []float32
	SceneBuffer    []float32
	IDBuffer       []int32

	TextureLength int
	BufferLength  int
	MinMax        AABB

	// Transforms whose numbers are baked into the rows. They cannot be
	// destroyed while the cache is held.
	refs map[*Transform]struct{}
}

func newStaticCache(root Node) (*StaticCache, error) {
	bufs, err := Layout{}.Generate(root)
	if err != nil {
		return nil, err
	}

	c := &StaticCache{
		GeometryBuffer: bufs.GeometryBuffer,
		SceneBuffer:    bufs.SceneBuffer,
		IDBuffer:       bufs.IDBuffer,
		TextureLength:  bufs.TextureLength,
		BufferLength:   bufs.BufferLength,
		MinMax:         bufs.MinMax,
		refs:           make(map[*Transform]struct{}),
	}
	collectTransforms(root, c.refs)
	for t := range c.refs {
		t.caches[c] = struct{}{}
	}
	return c, nil
}

// Drop the transform references of the cache.
func (c *StaticCache) release() {
	for t := range c.refs {
		delete(t.caches, c)
	}
	c.refs = nil
}

// Gather the live transforms whose numbers serializing n would emit.
func collectTransforms(n Node, out map[*Transform]struct{}) {
	add := func(t *Transform) {
		if t != nil && !t.Released() {
			out[t] = struct{}{}
		}
	}

	switch c := n.(type) {
	case *Primitive:
		add(c.transform)
	case *Object:
		add(c.transform)
		if c.static != nil {
			for t := range c.static.refs {
				add(t)
			}
			return
		}
		for _, child := range c.children {
			collectTransforms(child, out)
		}
	case *Frozen:
		for t := range c.refs {
			add(t)
		}
	}
}

// Check whether the object serializes from its cache.
func (o *Object) IsStatic() bool {
	return o.static != nil
}

// Get the static cache; nil unless the object is static.
func (o *Object) StaticCache() *StaticCache {
	return o.static
}

// Toggle static mode. Enabling it serializes the subtree once and caches the
// result; later serializations copy the cache instead of visiting children.
// Disabling it drops the cache. Enabling it on a static object refreshes the
// cache.
func (o *Object) SetStatic(static bool) error {
	if o.consumed {
		return ErrConsumed
	}

	// Always rebuild from the live children.
	if o.static != nil {
		o.static.release()
		o.static = nil
	}
	if !static {
		return nil
	}

	cache, err := newStaticCache(o)
	if err != nil {
		return err
	}
	o.static = cache
	return nil
}

// Frozen is the cached-only replacement of an Object produced by Freeze. It
// has no children and cannot be turned back into a live object.
type Frozen struct {
	cache        StaticCache
	bounding     Bounds
	transformNum int

	// Transforms referenced by rows of the cache.
	refs map[*Transform]struct{}
}

func (f *Frozen) Kind() NodeKind {
	return KindFrozen
}

// Get the bounding box of the subtree at the time it was frozen.
func (f *Frozen) Bounding() Bounds {
	return f.bounding
}

func (f *Frozen) TransformNum() int {
	return f.transformNum
}

// Transform numbers are baked into the cached rows.
func (f *Frozen) applyTransform(_ *Transform) {
	graphLogger.Warningf("ignoring transform change on frozen subtree (%d triangles)", f.cache.BufferLength)
}

// Get the cached serialization. The returned value must not be modified.
func (f *Frozen) Cache() *StaticCache {
	return &f.cache
}

// Serialize the object (reusing its static cache if present), release its
// children and return the Frozen node that replaces it. The object is
// consumed: every later mutation on it fails with ErrConsumed. Transforms
// used inside the subtree stay referenced by the Frozen node, so they cannot
// be destroyed while it exists.
func (o *Object) Freeze() (*Frozen, error) {
	if o.consumed {
		return nil, ErrConsumed
	}

	cache := o.static
	if cache == nil {
		var err error
		if cache, err = newStaticCache(o); err != nil {
			return nil, err
		}
	}

	f := &Frozen{
		cache:        *cache,
		bounding:     UpdateBoundings(o),
		transformNum: o.TransformNum(),
		refs:         make(map[*Transform]struct{}),
	}
	f.cache.refs = nil
	if o.static == nil {
		// rebindTransforms holds the same transforms for f.
		cache.release()
	}
	rebindTransforms(o, f)

	o.children = nil
	o.static = nil
	o.consumed = true
	return f, nil
}

// Freeze child i in place.
func (o *Object) FreezeChild(i int) (*Frozen, error) {
	if o.consumed {
		return nil, ErrConsumed
	}
	if i < 0 || i >= len(o.children) {
		return nil, ErrChildIndex
	}

	child, ok := o.children[i].(*Object)
	if !ok {
		return nil, ErrChildIndex
	}

	f, err := child.Freeze()
	if err != nil {
		return nil, err
	}
	o.children[i] = f
	return f, nil
}

// Move every transform back reference held by nodes and static caches of
// the subtree to f.
func rebindTransforms(n Node, f *Frozen) {
	switch c := n.(type) {
	case *Primitive:
		f.adopt(c, c.transform)
	case *Object:
		f.adopt(c, c.transform)
		if c.static != nil {
			for t := range c.static.refs {
				f.hold(t)
			}
			c.static.release()
		}
		for _, child := range c.children {
			rebindTransforms(child, f)
		}
	case *Frozen:
		for t := range c.refs {
			f.adopt(c, t)
		}
	}
}

func (f *Frozen) adopt(n Node, t *Transform) {
	if t == nil {
		return
	}
	t.removeNode(n)
	f.hold(t)
}

func (f *Frozen) hold(t *Transform) {
	if t.Released() {
		return
	}
	t.addNode(f)
	f.refs[t] = struct{}{}
}
