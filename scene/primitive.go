package scene

import (
	"fmt"

	"github.com/arbobendik/FlexLight-sub000/types"
)

// Row widths (in floats) of the buffers consumed by the traversal kernel.
const (
	GeometryRowWidth = 12
	SceneRowWidth    = 28
)

// Geometry row field offsets and tags.
const (
	SkipOffset      = 6
	TransformOffset = 9
	TagOffset       = 10

	TagEnd      float32 = 0
	TagBounding float32 = 1
	TagTriangle float32 = 2
)

// Scene row field offsets.
const (
	normalsOffset     = 0
	uvsOffset         = 9
	textureNumsOffset = 15
	albedoOffset      = 18
	rmeOffset         = 21
	tpoOffset         = 24
)

// NoTexture marks a material channel that uses its constant value.
const NoTexture = -1

// Primitive is a triangle bearing leaf. It owns its vertex attributes and a
// pre-built geometry and scene row per triangle. Attribute setters only mark
// the rows dirty; rows are rebuilt on the next read.
type Primitive struct {
	length int

	vertices []float32
	normals  []float32
	normal   types.Vec3
	uvs      []float32

	transform *Transform

	textureNums [3]float32
	albedo      types.Vec3
	rme         types.Vec3
	tpo         types.Vec3

	geometry []float32
	scene    []float32
	dirty    bool

	bounding Bounds
}

// Create a primitive with length triangles. Vertices hold 9 floats per
// triangle, uvs 6 floats per triangle. Every vertex gets the same normal.
func NewPrimitive(length int, vertices []float32, normal types.Vec3, uvs []float32) (*Primitive, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: %d triangles", ErrAttributeLength, length)
	}

	p := &Primitive{
		length:      length,
		textureNums: [3]float32{NoTexture, NoTexture, NoTexture},
		albedo:      types.Vec3{1, 1, 1},
		rme:         types.Vec3{1, 0, 0},
		tpo:         types.Vec3{0, 0, 1},
		geometry:    make([]float32, length*GeometryRowWidth),
		scene:       make([]float32, length*SceneRowWidth),
		dirty:       true,
		bounding:    EmptyBounds(),
	}

	if err := p.SetVertices(vertices); err != nil {
		return nil, err
	}
	if err := p.SetUVs(uvs); err != nil {
		return nil, err
	}
	p.SetNormal(normal)

	return p, nil
}

// Create a single triangle.
func NewTriangle(a, b, c types.Vec3) *Primitive {
	normal := a.Sub(c).Cross(a.Sub(b)).Normalize()
	vertices := []float32{a[0], a[1], a[2], b[0], b[1], b[2], c[0], c[1], c[2]}

	// Lengths are fixed so construction cannot fail.
	p, _ := NewPrimitive(1, vertices, normal, []float32{0, 0, 0, 1, 1, 1})
	return p
}

// Create a quad made of the triangles (c0, c1, c2) and (c2, c3, c0).
func NewPlane(c0, c1, c2, c3 types.Vec3) *Primitive {
	normal := c0.Sub(c2).Cross(c0.Sub(c1)).Normalize()
	vertices := make([]float32, 0, 18)
	for _, v := range []types.Vec3{c0, c1, c2, c2, c3, c0} {
		vertices = append(vertices, v[0], v[1], v[2])
	}

	p, _ := NewPrimitive(2, vertices, normal, []float32{0, 0, 0, 1, 1, 1, 1, 1, 1, 0, 0, 0})
	return p
}

func (p *Primitive) Kind() NodeKind {
	return KindPrimitive
}

// Get the bounding box computed by the last UpdateBoundings call.
func (p *Primitive) Bounding() Bounds {
	return p.bounding
}

func (p *Primitive) TransformNum() int {
	return transformNum(p.transform)
}

func (p *Primitive) applyTransform(t *Transform) {
	p.transform = t
	p.dirty = true
}

// Get the number of triangles.
func (p *Primitive) Len() int {
	return p.length
}

// Get a copy of the vertex positions (9 floats per triangle).
func (p *Primitive) Vertices() []float32 {
	return append([]float32(nil), p.vertices...)
}

// Get a copy of the per vertex normals (9 floats per triangle).
func (p *Primitive) Normals() []float32 {
	return append([]float32(nil), p.normals...)
}

// Get the normal of the first vertex.
func (p *Primitive) Normal() types.Vec3 {
	return p.normal
}

// Get a copy of the per vertex uvs (6 floats per triangle).
func (p *Primitive) UVs() []float32 {
	return append([]float32(nil), p.uvs...)
}

// Get the albedo, pbr and translucency texture indices.
func (p *Primitive) TextureNums() [3]int {
	return [3]int{int(p.textureNums[0]), int(p.textureNums[1]), int(p.textureNums[2])}
}

func (p *Primitive) Albedo() types.Vec3 { return p.albedo }
func (p *Primitive) Roughness() float32 { return p.rme[0] }
func (p *Primitive) Metallicity() float32 { return p.rme[1] }
func (p *Primitive) Emissiveness() float32 { return p.rme[2] }
func (p *Primitive) Translucency() float32 { return p.tpo[0] }
func (p *Primitive) Density() float32 { return p.tpo[1] }
func (p *Primitive) IOR() float32 { return p.tpo[2] }
func (p *Primitive) Transform() *Transform { return p.transform }

// Replace vertex positions.
func (p *Primitive) SetVertices(v []float32) error {
	if len(v) != p.length*9 {
		return fmt.Errorf("%w: %d vertex floats for %d triangles", ErrAttributeLength, len(v), p.length)
	}
	p.vertices = append(p.vertices[:0], v...)
	p.dirty = true
	return nil
}

// Replace per vertex normals.
func (p *Primitive) SetNormals(n []float32) error {
	if len(n) != p.length*9 {
		return fmt.Errorf("%w: %d normal floats for %d triangles", ErrAttributeLength, len(n), p.length)
	}
	p.normals = append(p.normals[:0], n...)
	p.normal = types.Vec3{n[0], n[1], n[2]}
	p.dirty = true
	return nil
}

// Use the same normal for every vertex.
func (p *Primitive) SetNormal(n types.Vec3) {
	p.normals = p.normals[:0]
	for i := 0; i < p.length*3; i++ {
		p.normals = append(p.normals, n[0], n[1], n[2])
	}
	p.normal = n
	p.dirty = true
}

// Replace per vertex uvs.
func (p *Primitive) SetUVs(uv []float32) error {
	if len(uv) != p.length*6 {
		return fmt.Errorf("%w: %d uv floats for %d triangles", ErrAttributeLength, len(uv), p.length)
	}
	p.uvs = append(p.uvs[:0], uv...)
	p.dirty = true
	return nil
}

// Set albedo, pbr and translucency atlas indices; NoTexture selects the
// constant channel value.
func (p *Primitive) SetTextureNums(albedo, pbr, translucency int) {
	p.textureNums = [3]float32{float32(albedo), float32(pbr), float32(translucency)}
	p.dirty = true
}

// Set the albedo from 0-255 rgb values.
func (p *Primitive) SetColor(rgb types.Vec3) {
	p.albedo = types.XYZ(rgb[0]/255, rgb[1]/255, rgb[2]/255)
	p.dirty = true
}

func (p *Primitive) SetRoughness(r float32) { p.rme[0] = r; p.dirty = true }
func (p *Primitive) SetMetallicity(m float32) { p.rme[1] = m; p.dirty = true }
func (p *Primitive) SetEmissiveness(e float32) { p.rme[2] = e; p.dirty = true }
func (p *Primitive) SetTranslucency(t float32) { p.tpo[0] = t; p.dirty = true }
func (p *Primitive) SetDensity(d float32) { p.tpo[1] = d; p.dirty = true }
func (p *Primitive) SetIOR(o float32) { p.tpo[2] = o; p.dirty = true }

// Assign a transform to this primitive. A nil transform detaches it.
func (p *Primitive) SetTransform(t *Transform) error {
	return bindTransform(p, p.transform, t)
}

// Get the tight min xyz / max xyz box of the vertices.
func (p *Primitive) AABB() AABB {
	out := emptyAABB()
	for i := 0; i < len(p.vertices); i += 3 {
		for axis := 0; axis < 3; axis++ {
			v := p.vertices[i+axis]
			if v < out[axis] {
				out[axis] = v
			}
			if v > out[axis+3] {
				out[axis+3] = v
			}
		}
	}
	return out
}

// Get the geometry rows, GeometryRowWidth floats per triangle. The returned
// slice must not be modified.
func (p *Primitive) GeometryRow() []float32 {
	p.Rebuild()
	return p.geometry
}

// Get the scene rows, SceneRowWidth floats per triangle. The returned slice
// must not be modified.
func (p *Primitive) SceneRow() []float32 {
	p.Rebuild()
	return p.scene
}

// Rebuild the rows if any attribute changed since the last build.
func (p *Primitive) Rebuild() {
	if !p.dirty {
		return
	}

	tn := float32(p.TransformNum())
	for i := 0; i < p.length; i++ {
		g := p.geometry[i*GeometryRowWidth : (i+1)*GeometryRowWidth]
		copy(g, p.vertices[i*9:i*9+9])
		g[TransformOffset] = tn
		g[TagOffset] = TagTriangle

		s := p.scene[i*SceneRowWidth : (i+1)*SceneRowWidth]
		copy(s[normalsOffset:], p.normals[i*9:i*9+9])
		copy(s[uvsOffset:], p.uvs[i*6:i*6+6])
		copy(s[textureNumsOffset:], p.textureNums[:])
		copy(s[albedoOffset:], p.albedo[:])
		copy(s[rmeOffset:], p.rme[:])
		copy(s[tpoOffset:], p.tpo[:])
	}

	p.dirty = false
}

// Offset all vertices by d.
func (p *Primitive) translate(d types.Vec3) {
	for i := range p.vertices {
		p.vertices[i] += d[i%3]
	}
	p.dirty = true
}

// Scale all vertices by s around anchor.
func (p *Primitive) scaleAround(anchor types.Vec3, s float32) {
	for i := range p.vertices {
		p.vertices[i] = (p.vertices[i]-anchor[i%3])*s + anchor[i%3]
	}
	p.dirty = true
}
