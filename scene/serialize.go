package scene

import (
	"fmt"
	"time"

	"github.com/arbobendik/FlexLight-sub000/log"
)

// Buffers holds a flattened scene graph. Both row buffers are indexed by the
// same slot: one slot per bounding node and one per triangle, in depth first
// order. IDBuffer maps every triangle, in order, to its slot.
type Buffers struct {
	GeometryBuffer []float32
	SceneBuffer    []float32
	IDBuffer       []int32

	// Tight min xyz / max xyz box of all triangles.
	MinMax AABB

	// Number of used slots.
	TextureLength int

	// Number of triangles.
	BufferLength int

	// Number of lines of each buffer.
	GeometryBufferHeight int
	SceneBufferHeight    int
}

// Layout controls how the row buffers are padded.
type Layout struct {
	// Buffers are padded to a whole number of lines of this many slots. Zero
	// disables padding.
	SlotsPerLine int
}

// Get the default layout of 256 slots per line.
func DefaultLayout() Layout {
	return Layout{SlotsPerLine: 256}
}

// Flatten the graph rooted at root using the default layout.
func GenerateArrays(root Node) (*Buffers, error) {
	return DefaultLayout().Generate(root)
}

// Flatten the graph rooted at root. A sizing pass counts slots and triangles
// and validates the structure; nothing is written if it fails. The emission
// pass then fills the preallocated buffers visiting nodes in the same order.
//
// Bounding rows hold the box of their subtree in [0..5], the number of slots
// to skip to leave the subtree in [SkipOffset], the transform number in
// [TransformOffset] and TagBounding in [TagOffset]. Static objects and frozen
// nodes are copied from their cache.
func (l Layout) Generate(root Node) (*Buffers, error) {
	if l.SlotsPerLine < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSlotsPerRow, l.SlotsPerLine)
	}
	s := &serializer{
		logger: log.New("serializer"),
		layout: l,
	}
	return s.generate(root)
}

type serializer struct {
	logger log.Logger
	layout Layout

	// Invoked for every visited node with the pass number (1 or 2).
	visit func(pass int, n Node)

	textureLength int
	bufferLength  int

	geometry []float32
	scene    []float32
	ids      []int32

	texturePos int
	bufferPos  int
}

func (s *serializer) generate(root Node) (*Buffers, error) {
	start := time.Now()

	if err := s.walk(root); err != nil {
		return nil, err
	}

	geometryLen, height := s.padded(GeometryRowWidth)
	sceneLen, sceneHeight := s.padded(SceneRowWidth)
	s.geometry = make([]float32, geometryLen)
	s.scene = make([]float32, sceneLen)
	s.ids = make([]int32, s.bufferLength)

	minMax := s.fill(root)
	if s.texturePos != s.textureLength || s.bufferPos != s.bufferLength {
		return nil, fmt.Errorf(
			"%w: wrote %d slots and %d triangles, expected %d and %d",
			ErrSizingMismatch, s.texturePos, s.bufferPos, s.textureLength, s.bufferLength,
		)
	}

	s.logger.Debugf(
		"flattened %d slots (%d triangles) in %d ms",
		s.textureLength, s.bufferLength, time.Since(start).Nanoseconds()/1e6,
	)

	return &Buffers{
		GeometryBuffer:       s.geometry,
		SceneBuffer:          s.scene,
		IDBuffer:             s.ids,
		MinMax:               minMax,
		TextureLength:        s.textureLength,
		BufferLength:         s.bufferLength,
		GeometryBufferHeight: height,
		SceneBufferHeight:    sceneHeight,
	}, nil
}

// Get the padded buffer length and line count for rows of the given width.
func (s *serializer) padded(rowWidth int) (length, lines int) {
	length = s.textureLength * rowWidth
	if s.layout.SlotsPerLine == 0 {
		return length, 1
	}

	lineWidth := rowWidth * s.layout.SlotsPerLine
	lines = (length + lineWidth - 1) / lineWidth
	return lines * lineWidth, lines
}

// Sizing pass.
func (s *serializer) walk(n Node) error {
	if n == nil {
		return ErrNilNode
	}
	if s.visit != nil {
		s.visit(1, n)
	}

	switch c := n.(type) {
	case *Primitive:
		if c == nil {
			return ErrNilNode
		}
		s.textureLength += c.length
		s.bufferLength += c.length
	case *Object:
		switch {
		case c == nil:
			return ErrNilNode
		case c.consumed:
			return ErrConsumed
		case c.static != nil:
			s.textureLength += c.static.TextureLength
			s.bufferLength += c.static.BufferLength
			return nil
		case len(c.children) == 0:
			return ErrEmptyObject
		}

		s.textureLength++
		for i, child := range c.children {
			if err := s.walk(child); err != nil {
				if child == nil {
					return fmt.Errorf("child %d: %w", i, err)
				}
				return err
			}
		}
	case *Frozen:
		if c == nil {
			return ErrNilNode
		}
		s.textureLength += c.cache.TextureLength
		s.bufferLength += c.cache.BufferLength
	}
	return nil
}

// Emission pass; returns the tight box of the subtree.
func (s *serializer) fill(n Node) AABB {
	if s.visit != nil {
		s.visit(2, n)
	}

	switch c := n.(type) {
	case *Primitive:
		copy(s.geometry[s.texturePos*GeometryRowWidth:], c.GeometryRow())
		copy(s.scene[s.texturePos*SceneRowWidth:], c.SceneRow())
		for i := 0; i < c.length; i++ {
			s.ids[s.bufferPos] = int32(s.texturePos)
			s.bufferPos++
			s.texturePos++
		}
		return c.AABB()
	case *Object:
		if c.static != nil {
			return s.copyCache(c.static)
		}

		oldPos := s.texturePos
		s.texturePos++

		box := emptyAABB()
		for _, child := range c.children {
			box = box.Union(s.fill(child))
		}

		row := s.geometry[oldPos*GeometryRowWidth : (oldPos+1)*GeometryRowWidth]
		copy(row, box[:])
		row[SkipOffset] = float32(s.texturePos - oldPos - 1)
		row[TransformOffset] = float32(c.TransformNum())
		row[TagOffset] = TagBounding
		return box
	case *Frozen:
		return s.copyCache(&c.cache)
	}
	return emptyAABB()
}

func (s *serializer) copyCache(cache *StaticCache) AABB {
	copy(s.geometry[s.texturePos*GeometryRowWidth:], cache.GeometryBuffer[:cache.TextureLength*GeometryRowWidth])
	copy(s.scene[s.texturePos*SceneRowWidth:], cache.SceneBuffer[:cache.TextureLength*SceneRowWidth])
	for _, id := range cache.IDBuffer {
		s.ids[s.bufferPos] = id + int32(s.texturePos)
		s.bufferPos++
	}
	s.texturePos += cache.TextureLength
	return cache.MinMax
}
