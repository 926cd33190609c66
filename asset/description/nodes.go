package description

import (
	"fmt"

	"github.com/arbobendik/FlexLight-sub000/asset"
	"github.com/arbobendik/FlexLight-sub000/scene"
	"github.com/arbobendik/FlexLight-sub000/types"
)

// Implemented by *scene.Primitive and *scene.Object.
type materialTarget interface {
	SetColor(rgb types.Vec3)
	SetTextureNums(albedo, pbr, translucency int)
	SetRoughness(r float32)
	SetMetallicity(m float32)
	SetEmissiveness(e float32)
	SetTranslucency(t float32)
	SetDensity(d float32)
	SetIOR(ior float32)
	SetTransform(t *scene.Transform) error
}

// Build the scene node for o. path locates o in error messages.
func (r *sceneReader) node(o *Object, res *asset.Resource, path string, depth int) (scene.Node, error) {
	var (
		n      materialTarget
		object *scene.Object
		err    error
	)

	switch o.Type {
	case "triangle":
		if len(o.Vertices) != 3 {
			return nil, fmt.Errorf("%s: %w: triangle needs 3; got %d", path, ErrVertexCount, len(o.Vertices))
		}
		n = scene.NewTriangle(o.Vertices[0], o.Vertices[1], o.Vertices[2])
	case "plane":
		if len(o.Vertices) != 4 {
			return nil, fmt.Errorf("%s: %w: plane needs 4; got %d", path, ErrVertexCount, len(o.Vertices))
		}
		n = scene.NewPlane(o.Vertices[0], o.Vertices[1], o.Vertices[2], o.Vertices[3])
	case "cuboid":
		object = scene.NewCuboid(o.Min[0], o.Max[0], o.Min[1], o.Max[1], o.Min[2], o.Max[2])
	case "group":
		if object, err = r.group(o.Children, res, path, depth); err != nil {
			return nil, err
		}
	case "include":
		if object, err = r.include(o.Path, res, path, depth); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%s: %w %q", path, ErrUnknownType, o.Type)
	}
	if object != nil {
		n = object
	}

	if o.Material != nil {
		applyMaterial(n, o.Material)
	}

	if o.Move != nil || o.Scale != nil || o.Static || o.Freeze {
		if object == nil {
			return nil, fmt.Errorf("%s: %w: move, scale, static and freeze are not supported on a %s", path, ErrNotAnObject, o.Type)
		}
		if o.Move != nil {
			object.Move(o.Move[0], o.Move[1], o.Move[2])
		}
		if o.Scale != nil {
			object.Scale(*o.Scale)
		}
	}

	if o.Transform != "" {
		t, ok := r.transforms[o.Transform]
		if !ok {
			return nil, fmt.Errorf("%s: %w %q", path, ErrUnknownTransform, o.Transform)
		}
		if err = n.SetTransform(t); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	switch {
	case o.Freeze:
		frozen, err := object.Freeze()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return frozen, nil
	case o.Static:
		if err = object.SetStatic(true); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	return n.(scene.Node), nil
}

func (r *sceneReader) group(children []Object, res *asset.Resource, path string, depth int) (*scene.Object, error) {
	if len(children) == 0 {
		return nil, fmt.Errorf("%s: %w", path, scene.ErrEmptyObject)
	}

	nodes := make([]scene.Node, 0, len(children))
	for i := range children {
		child, err := r.node(&children[i], res, fmt.Sprintf("%s.children[%d]", path, i), depth)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, child)
	}
	return scene.NewBounding(nodes...), nil
}

// Group the objects of another description. Its transforms join the shared
// namespace; its lights and textures are ignored.
func (r *sceneReader) include(target string, res *asset.Resource, path string, depth int) (*scene.Object, error) {
	if depth >= maxIncludeDepth {
		return nil, fmt.Errorf("%s: %w (%d levels)", path, ErrIncludeDepth, depth)
	}

	inc, err := asset.NewResource(target, res)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.logger.Infof(`including "%s"`, inc.Path())

	data, err := inc.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", path, inc.Path(), err)
	}
	if len(d.Lights) != 0 || d.BVH {
		r.logger.Warningf(`ignoring lights and bvh flag of included description "%s"`, inc.Path())
	}

	if err = r.defineTransforms(d.Transforms); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", path, inc.Path(), err)
	}

	nodes := make([]scene.Node, 0, len(d.Objects))
	for i := range d.Objects {
		child, err := r.node(&d.Objects[i], inc, fmt.Sprintf("%s(%s).objects[%d]", path, inc.Name(), i), depth+1)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, child)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%s: %w", path, scene.ErrEmptyObject)
	}
	return scene.NewBounding(nodes...), nil
}

func applyMaterial(n materialTarget, m *Material) {
	if m.Color != nil {
		n.SetColor(*m.Color)
	}
	if m.Textures != nil {
		n.SetTextureNums(m.Textures[0], m.Textures[1], m.Textures[2])
	}
	if m.Roughness != nil {
		n.SetRoughness(*m.Roughness)
	}
	if m.Metallicity != nil {
		n.SetMetallicity(*m.Metallicity)
	}
	if m.Emissiveness != nil {
		n.SetEmissiveness(*m.Emissiveness)
	}
	if m.Translucency != nil {
		n.SetTranslucency(*m.Translucency)
	}
	if m.Density != nil {
		n.SetDensity(*m.Density)
	}
	if m.IOR != nil {
		n.SetIOR(*m.IOR)
	}
}
