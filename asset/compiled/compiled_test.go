package compiled

import (
	"archive/zip"
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arbobendik/FlexLight-sub000/asset"
	"github.com/arbobendik/FlexLight-sub000/scene"
	"github.com/arbobendik/FlexLight-sub000/types"
)

func testScene(t *testing.T) *Scene {
	sc := scene.New()
	sc.Lights = append(sc.Lights, scene.NewLight(0, 5, 0))
	sc.Textures = append(sc.Textures, "albedo.png")
	tr := sc.Transforms.New()
	tr.Move(1, 2, 3)

	cube := scene.NewCuboid(0, 1, 0, 1, 0, 1)
	if err := cube.SetTransform(tr); err != nil {
		t.Fatal(err)
	}
	if err := sc.Add(cube, scene.NewTriangle(types.XYZ(2, 0, 0), types.XYZ(3, 0, 0), types.XYZ(2, 1, 0))); err != nil {
		t.Fatal(err)
	}

	bufs, err := sc.GenerateArrays()
	if err != nil {
		t.Fatal(err)
	}
	return FromScene(sc, bufs)
}

func TestArchiveRoundTrip(t *testing.T) {
	cs := testScene(t)

	var buf bytes.Buffer
	if err := Write(cs, &buf); err != nil {
		t.Fatal(err)
	}

	got, err := Read(asset.NewResourceFromStream("scene.zip", &buf))
	if err != nil {
		t.Fatal(err)
	}

	if got.FormatVersion != FormatVersion {
		t.Fatalf("expected format version %s; got %s", FormatVersion, got.FormatVersion)
	}
	if got.Buffers.TextureLength != cs.Buffers.TextureLength || got.Buffers.BufferLength != 13 {
		t.Fatalf("expected %d slots and 13 triangles; got %d and %d", cs.Buffers.TextureLength, got.Buffers.TextureLength, got.Buffers.BufferLength)
	}
	if len(got.Buffers.GeometryBuffer) != len(cs.Buffers.GeometryBuffer) {
		t.Fatalf("expected geometry buffer of %d floats; got %d", len(cs.Buffers.GeometryBuffer), len(got.Buffers.GeometryBuffer))
	}
	for i, v := range cs.Buffers.GeometryBuffer {
		if got.Buffers.GeometryBuffer[i] != v {
			t.Fatalf("expected geometry float %d to be %f; got %f", i, v, got.Buffers.GeometryBuffer[i])
		}
	}
	for i, id := range cs.Buffers.IDBuffer {
		if got.Buffers.IDBuffer[i] != id {
			t.Fatalf("expected id %d to be %d; got %d", i, id, got.Buffers.IDBuffer[i])
		}
	}
	if len(got.Transforms) != 2*scene.TransformStride || got.Transforms[scene.TransformStride+12] != 1 {
		t.Fatalf("expected 2 transforms with the moved one in slot 1; got %v", got.Transforms)
	}
	if len(got.Lights) != scene.LightStride || got.Lights[3] != 200 {
		t.Fatalf("expected one light with default intensity; got %v", got.Lights)
	}
	if len(got.Textures) != 1 || got.Textures[0] != "albedo.png" {
		t.Fatalf("expected texture list to survive; got %v", got.Textures)
	}
}

func TestWriteFile(t *testing.T) {
	cs := testScene(t)
	path := filepath.Join(t.TempDir(), "scene.zip")

	if err := WriteFile(cs, path); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Buffers.BufferLength != cs.Buffers.BufferLength {
		t.Fatalf("expected %d triangles; got %d", cs.Buffers.BufferLength, got.Buffers.BufferLength)
	}
}

func TestReadRejectsArchives(t *testing.T) {
	// Archive without scene data
	var empty bytes.Buffer
	zw := zip.NewWriter(&empty)
	w, _ := zw.Create("readme.txt")
	w.Write([]byte("nothing here"))
	zw.Close()

	if _, err := Read(asset.NewResourceFromStream("empty.zip", &empty)); !errors.Is(err, ErrMissingData) {
		t.Fatalf("expected ErrMissingData; got %v", err)
	}

	// Archive from an incompatible format version
	cs := testScene(t)
	cs.FormatVersion = "2.1.0"
	var future bytes.Buffer
	if err := Write(cs, &future); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(asset.NewResourceFromStream("future.zip", &future)); !errors.Is(err, ErrVersion) {
		t.Fatalf("expected ErrVersion; got %v", err)
	}

	// Not a zip file
	if _, err := Read(asset.NewResourceFromStream("bogus.zip", strings.NewReader("bogus"))); err == nil {
		t.Fatal("expected an error")
	}
}

func TestStats(t *testing.T) {
	stats := testScene(t).Stats()
	for _, exp := range []string{"Geometry", "Scene", "Triangle ids", "Transforms", "Lights", "Total"} {
		if !strings.Contains(strings.ToLower(stats), strings.ToLower(exp)) {
			t.Fatalf("expected stats table to mention %q; got\n%s", exp, stats)
		}
	}
}

func TestFmtSize(t *testing.T) {
	specs := []struct {
		items []interface{}
		exp   string
	}{
		{[]interface{}{make([]float32, 10)}, " 40 bytes"},
		{[]interface{}{make([]float32, 1000), make([]int32, 500)}, "6.0 kb"},
		{[]interface{}{make([]float32, 500000)}, "  2.0 mb"},
		{[]interface{}{[]float32{}}, "  0 bytes"},
	}

	for index, spec := range specs {
		if got := fmtSize(spec.items...); got != spec.exp {
			t.Fatalf("[spec %d] expected %q; got %q", index, spec.exp, got)
		}
	}
}
