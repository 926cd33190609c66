package description

import (
	"fmt"
	"sort"
	"time"

	"github.com/arbobendik/FlexLight-sub000/asset"
	"github.com/arbobendik/FlexLight-sub000/log"
	"github.com/arbobendik/FlexLight-sub000/scene"
)

// Includes may nest this deep.
const maxIncludeDepth = 8

// Options tune the scenes built from descriptions.
type Options struct {
	BVH    scene.BVHOptions
	Layout scene.Layout
}

// Get the default builder and layout options.
func DefaultOptions() Options {
	return Options{
		BVH:    scene.DefaultBVHOptions(),
		Layout: scene.DefaultLayout(),
	}
}

type sceneReader struct {
	logger log.Logger
	opts   Options

	sc         *scene.Scene
	transforms map[string]*scene.Transform
}

// Read a description from a local path or URL and build its scene.
func ReadFile(filename string, opts Options) (*scene.Scene, error) {
	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	return Read(res, opts)
}

// Read a description and build its scene. Includes are resolved relative to
// res. The resource is closed.
func Read(res *asset.Resource, opts Options) (*scene.Scene, error) {
	r := &sceneReader{
		logger:     log.New("description reader"),
		opts:       opts,
		sc:         scene.New(),
		transforms: make(map[string]*scene.Transform),
	}
	return r.read(res)
}

// Build the scene of an already parsed description. Includes are resolved
// relative to the working directory.
func Build(d *Description, opts Options) (*scene.Scene, error) {
	r := &sceneReader{
		logger:     log.New("description reader"),
		opts:       opts,
		sc:         scene.New(),
		transforms: make(map[string]*scene.Transform),
	}
	if err := r.build(d, nil); err != nil {
		return nil, err
	}
	return r.sc, nil
}

func (r *sceneReader) read(res *asset.Resource) (*scene.Scene, error) {
	r.logger.Noticef(`parsing scene description from "%s"`, res.Path())
	start := time.Now()

	data, err := res.ReadAll()
	if err != nil {
		return nil, err
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", res.Path(), err)
	}
	if err = r.build(d, res); err != nil {
		return nil, fmt.Errorf("%s: %w", res.Path(), err)
	}

	r.logger.Noticef(
		"built scene with %d top level nodes, %d transforms and %d lights in %d ms",
		len(r.sc.Queue), r.sc.Transforms.Live(), len(r.sc.Lights), time.Since(start).Nanoseconds()/1e6,
	)
	return r.sc, nil
}

func (r *sceneReader) build(d *Description, res *asset.Resource) error {
	sc := r.sc
	sc.BVH = r.opts.BVH
	sc.Layout = r.opts.Layout

	if d.Ambient != nil {
		sc.AmbientLight = *d.Ambient
	}
	if d.Light.Intensity != nil {
		sc.DefaultLightIntensity = *d.Light.Intensity
	}
	if d.Light.Variation != nil {
		sc.DefaultLightVariation = *d.Light.Variation
	}
	for _, l := range d.Lights {
		sc.Lights = append(sc.Lights, scene.LightSource{
			Position:  l.Position,
			Intensity: l.Intensity,
			Variation: l.Variation,
		})
	}

	sc.Textures = append(sc.Textures, d.Textures.Albedo...)
	sc.PBRTextures = append(sc.PBRTextures, d.Textures.PBR...)
	sc.TranslucencyTextures = append(sc.TranslucencyTextures, d.Textures.Translucency...)

	if err := r.defineTransforms(d.Transforms); err != nil {
		return err
	}

	for i := range d.Objects {
		n, err := r.node(&d.Objects[i], res, fmt.Sprintf("objects[%d]", i), 0)
		if err != nil {
			return err
		}
		if err = sc.Add(n); err != nil {
			return err
		}
	}

	if d.BVH {
		stats := sc.Optimize()
		r.logger.Infof(
			"built BVH over %d triangles: depth %d, %d nodes, %d leafs, %d failed splits",
			stats.Triangles, stats.MaxDepth, stats.Nodes, stats.Leafs, len(stats.Failures),
		)
	}
	return nil
}

// Allocate registry slots in name order so slot numbers are reproducible.
func (r *sceneReader) defineTransforms(defs map[string]Transform) error {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, exists := r.transforms[name]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateTransform, name)
		}
		def := defs[name]
		if def.Axis != nil && def.Spherical != nil {
			return fmt.Errorf("%w: %q", ErrRotation, name)
		}

		t := r.sc.Transforms.New()
		t.Move(def.Position[0], def.Position[1], def.Position[2])
		if def.Scale != nil {
			t.Scale(*def.Scale)
		}
		if def.Axis != nil {
			t.RotateAxis(*def.Axis, def.Angle)
		}
		if def.Spherical != nil {
			t.RotateSpherical(def.Spherical[0], def.Spherical[1])
		}
		r.transforms[name] = t
	}
	return nil
}
