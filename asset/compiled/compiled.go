// Package compiled reads and writes flattened scenes as zip archives.
package compiled

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/arbobendik/FlexLight-sub000/scene"
	"github.com/arbobendik/FlexLight-sub000/types"
	"github.com/olekukonko/tablewriter"
)

// FormatVersion is written into every archive.
const FormatVersion = "1.0.0"

// Archives whose format version does not satisfy this constraint are rejected.
const supportedFormats = ">= 1.0.0, < 2.0.0"

var (
	ErrMissingData = errors.New("compiled: archive has no scene data")
	ErrVersion     = errors.New("compiled: unsupported archive format version")
)

// Scene is everything a traversal kernel needs to render a flattened scene.
type Scene struct {
	FormatVersion string

	Buffers scene.Buffers

	// Registry.Buffer output, scene.TransformStride floats per slot.
	Transforms []float32

	// Scene.LightBuffer output, scene.LightStride floats per light.
	Lights []float32

	Ambient types.Vec3

	Textures             []string
	PBRTextures          []string
	TranslucencyTextures []string
}

// Bundle the buffers of sc. bufs is the output of sc.GenerateArrays.
func FromScene(sc *scene.Scene, bufs *scene.Buffers) *Scene {
	return &Scene{
		FormatVersion:        FormatVersion,
		Buffers:              *bufs,
		Transforms:           sc.Transforms.Buffer(),
		Lights:               sc.LightBuffer(),
		Ambient:              sc.AmbientLight,
		Textures:             append([]string(nil), sc.Textures...),
		PBRTextures:          append([]string(nil), sc.PBRTextures...),
		TranslucencyTextures: append([]string(nil), sc.TranslucencyTextures...),
	}
}

// Get a table with the memory used by each buffer.
func (cs *Scene) Stats() string {
	b := &cs.Buffers

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Buffer", "Entries", "Size"})
	table.Append([]string{"Geometry", fmt.Sprintf("%d x %d", b.TextureLength, scene.GeometryRowWidth), fmtSize(b.GeometryBuffer)})
	table.Append([]string{"Scene", fmt.Sprintf("%d x %d", b.TextureLength, scene.SceneRowWidth), fmtSize(b.SceneBuffer)})
	table.Append([]string{"Triangle ids", fmt.Sprintf("%d", b.BufferLength), fmtSize(b.IDBuffer)})
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"Transforms", fmt.Sprintf("%d", len(cs.Transforms)/scene.TransformStride), fmtSize(cs.Transforms)})
	table.Append([]string{"Lights", fmt.Sprintf("%d", len(cs.Lights)/scene.LightStride), fmtSize(cs.Lights)})
	table.Append([]string{"Textures", fmt.Sprintf("%d", len(cs.Textures)+len(cs.PBRTextures)+len(cs.TranslucencyTextures)), "-"})
	table.SetFooter([]string{"Total", " ", strings.TrimLeft(fmtSize(b.GeometryBuffer, b.SceneBuffer, b.IDBuffer, cs.Transforms, cs.Lights), " ")})

	table.Render()
	return buf.String()
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32 = 0.0
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float32(int(t.Elem().Size()) * v.Len())
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}
