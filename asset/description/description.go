// Package description reads YAML scene descriptions.
//
// A description lists named transforms, lights, texture sources and a tree of
// objects:
//
//	version: 1.0.0
//	bvh: true
//	transforms:
//	  spin: {position: [0, 1, 0], axis: [0, 1, 0], angle: 0.5}
//	lights:
//	  - position: [0, 10, 0]
//	    intensity: 500
//	objects:
//	  - type: cuboid
//	    min: [0, 0, 0]
//	    max: [1, 1, 1]
//	    transform: spin
//	    material: {color: [255, 0, 0], roughness: 0.2}
//	  - type: group
//	    freeze: true
//	    children:
//	      - type: plane
//	        vertices: [[0, 0, 0], [1, 0, 0], [1, 0, 1], [0, 0, 1]]
//	      - type: include
//	        path: parts/lamp.yaml
package description

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/arbobendik/FlexLight-sub000/types"
	"gopkg.in/yaml.v3"
)

// Descriptions whose version does not satisfy this constraint are rejected.
const SupportedVersions = ">= 1.0.0, < 2.0.0"

var (
	ErrVersion            = errors.New("description: unsupported format version")
	ErrUnknownType        = errors.New("description: unknown object type")
	ErrVertexCount        = errors.New("description: wrong number of vertices")
	ErrUnknownTransform   = errors.New("description: unknown transform")
	ErrRotation           = errors.New("description: transform defines both an axis and a spherical rotation")
	ErrNotAnObject        = errors.New("description: option needs a group, cuboid or include")
	ErrIncludeDepth       = errors.New("description: includes nested too deep")
	ErrDuplicateTransform = errors.New("description: transform defined twice")
)

// Description is the decoded form of a scene description file.
type Description struct {
	Version string `yaml:"version"`

	// Replace the top level objects with a BVH built over them.
	BVH bool `yaml:"bvh"`

	Ambient *types.Vec3   `yaml:"ambient"`
	Light   LightDefaults `yaml:"light"`
	Lights  []Light       `yaml:"lights"`

	Textures Textures `yaml:"textures"`

	Transforms map[string]Transform `yaml:"transforms"`
	Objects    []Object             `yaml:"objects"`
}

// LightDefaults overrides the scene wide light settings.
type LightDefaults struct {
	Intensity *float32 `yaml:"intensity"`
	Variation *float32 `yaml:"variation"`
}

type Light struct {
	Position  types.Vec3 `yaml:"position"`
	Intensity *float32   `yaml:"intensity"`
	Variation *float32   `yaml:"variation"`
}

// Textures lists texture sources by atlas index.
type Textures struct {
	Albedo       []string `yaml:"albedo"`
	PBR          []string `yaml:"pbr"`
	Translucency []string `yaml:"translucency"`
}

type Transform struct {
	Position  types.Vec3  `yaml:"position"`
	Scale     *float32    `yaml:"scale"`
	Axis      *types.Vec3 `yaml:"axis"`
	Angle     float32     `yaml:"angle"`     // Radians around Axis
	Spherical *[2]float32 `yaml:"spherical"` // Theta and psi in radians
}

// Object is a node of the description tree. Type selects which of the
// geometry fields are used:
//
//	triangle  vertices (3)
//	plane     vertices (4)
//	cuboid    min, max
//	group     children
//	include   path (objects of another description, relative to this one)
type Object struct {
	Type string `yaml:"type"`

	Vertices []types.Vec3 `yaml:"vertices"`
	Min      types.Vec3   `yaml:"min"`
	Max      types.Vec3   `yaml:"max"`
	Children []Object     `yaml:"children"`
	Path     string       `yaml:"path"`

	Material  *Material   `yaml:"material"`
	Transform string      `yaml:"transform"`
	Move      *types.Vec3 `yaml:"move"`
	Scale     *float32    `yaml:"scale"`

	// Cache the serialized subtree.
	Static bool `yaml:"static"`

	// Replace the subtree with its serialized form for good.
	Freeze bool `yaml:"freeze"`
}

// Material values left unset keep the primitive defaults.
type Material struct {
	Color        *types.Vec3 `yaml:"color"` // 0-255 rgb
	Textures     *[3]int     `yaml:"textures"`
	Roughness    *float32    `yaml:"roughness"`
	Metallicity  *float32    `yaml:"metallicity"`
	Emissiveness *float32    `yaml:"emissiveness"`
	Translucency *float32    `yaml:"translucency"`
	Density      *float32    `yaml:"density"`
	IOR          *float32    `yaml:"ior"`
}

// Parse and version check a description. Unknown keys are rejected.
func Parse(data []byte) (*Description, error) {
	d := &Description{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(d); err != nil {
		return nil, fmt.Errorf("description: %w", err)
	}

	if err := checkVersion(d.Version); err != nil {
		return nil, err
	}
	return d, nil
}

func checkVersion(version string) error {
	if version == "" {
		return fmt.Errorf("%w: missing version", ErrVersion)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrVersion, version, err)
	}
	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return err
	}
	if !c.Check(v) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrVersion, v, SupportedVersions)
	}
	return nil
}
