package scene

import (
	"time"

	"github.com/arbobendik/FlexLight-sub000/log"
	"github.com/arbobendik/FlexLight-sub000/types"
)

// Scene owns the top level node queue, the lights and the transform registry
// of a renderable scene.
type Scene struct {
	logger log.Logger

	// Top level nodes in serialization order.
	Queue []Node

	Lights                []LightSource
	DefaultLightIntensity float32
	DefaultLightVariation float32
	AmbientLight          types.Vec3

	// Texture sources by atlas index.
	Textures             []string
	PBRTextures          []string
	TranslucencyTextures []string

	Transforms *Registry

	BVH    BVHOptions
	Layout Layout
}

// Create an empty scene with default light settings.
func New() *Scene {
	return &Scene{
		logger:                log.New("scene"),
		Queue:                 make([]Node, 0),
		Lights:                make([]LightSource, 0),
		DefaultLightIntensity: 200,
		DefaultLightVariation: 0.4,
		AmbientLight:          types.XYZ(0.025, 0.025, 0.025),
		Transforms:            NewRegistry(),
		BVH:                   DefaultBVHOptions(),
		Layout:                DefaultLayout(),
	}
}

// Append nodes to the queue.
func (s *Scene) Add(nodes ...Node) error {
	for _, n := range nodes {
		if n == nil {
			return ErrNilNode
		}
	}
	s.Queue = append(s.Queue, nodes...)
	return nil
}

// Build a BVH over the queue. The queue is left untouched; callers decide
// whether to replace it with the returned tree.
func (s *Scene) GenerateBVH() (*Object, *BuildStats) {
	return GenerateBVH(s.Queue, s.BVH)
}

// Replace the queue with a BVH built over it.
func (s *Scene) Optimize() *BuildStats {
	root, stats := s.GenerateBVH()
	s.Queue = []Node{root}
	return stats
}

// Refresh the bounding boxes of every queued node and return the box of the
// whole queue.
func (s *Scene) UpdateBoundings() Bounds {
	b := EmptyBounds()
	for _, n := range s.Queue {
		b = b.Fold(UpdateBoundings(n), BoundingBias)
	}
	return b
}

// Flatten the queue. The queue is serialized as the children of a root
// bounding node.
func (s *Scene) GenerateArrays() (*Buffers, error) {
	start := time.Now()
	bufs, err := s.Layout.Generate(NewBounding(s.Queue...))
	if err != nil {
		return nil, err
	}

	s.logger.Infof(
		"generated buffers for %d slots, %d triangles in %d ms",
		bufs.TextureLength, bufs.BufferLength, time.Since(start).Nanoseconds()/1e6,
	)
	return bufs, nil
}
