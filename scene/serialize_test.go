package scene

import (
	"errors"
	"testing"

	"github.com/arbobendik/FlexLight-sub000/types"
)

func simpleTree() (*Object, *Primitive, *Primitive) {
	tri := testTriangle()
	plane := NewPlane(types.XYZ(0, 0, 1), types.XYZ(2, 0, 1), types.XYZ(2, 2, 1), types.XYZ(0, 2, 1))
	return NewBounding(tri, plane), tri, plane
}

func TestGenerateSimpleTree(t *testing.T) {
	root, tri, plane := simpleTree()

	bufs, err := Layout{}.Generate(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bufs.TextureLength != 4 || bufs.BufferLength != 3 {
		t.Fatalf("expected 4 slots and 3 triangles; got %d and %d", bufs.TextureLength, bufs.BufferLength)
	}
	if len(bufs.GeometryBuffer) != 4*GeometryRowWidth || len(bufs.SceneBuffer) != 4*SceneRowWidth {
		t.Fatalf("expected unpadded buffers; got %d and %d floats", len(bufs.GeometryBuffer), len(bufs.SceneBuffer))
	}
	if bufs.GeometryBufferHeight != 1 || bufs.SceneBufferHeight != 1 {
		t.Fatalf("expected single line buffers; got heights %d and %d", bufs.GeometryBufferHeight, bufs.SceneBufferHeight)
	}

	expRow := []float32{0, 0, 0, 2, 2, 1, 3, 0, 0, 0, TagBounding, 0}
	if !floatsEqual(bufs.GeometryBuffer[:GeometryRowWidth], expRow) {
		t.Fatalf("expected bounding row %v; got %v", expRow, bufs.GeometryBuffer[:GeometryRowWidth])
	}
	if exp := (AABB{0, 0, 0, 2, 2, 1}); bufs.MinMax != exp {
		t.Fatalf("expected min/max %v; got %v", exp, bufs.MinMax)
	}

	expIDs := []int32{1, 2, 3}
	for i, id := range bufs.IDBuffer {
		if id != expIDs[i] {
			t.Fatalf("expected ids %v; got %v", expIDs, bufs.IDBuffer)
		}
	}

	if !floatsEqual(bufs.GeometryBuffer[GeometryRowWidth:2*GeometryRowWidth], tri.GeometryRow()) {
		t.Fatal("expected triangle row in slot 1")
	}
	if !floatsEqual(bufs.GeometryBuffer[2*GeometryRowWidth:4*GeometryRowWidth], plane.GeometryRow()) {
		t.Fatal("expected plane rows in slots 2 and 3")
	}
	if !floatsEqual(bufs.SceneBuffer[SceneRowWidth:2*SceneRowWidth], tri.SceneRow()) {
		t.Fatal("expected triangle scene row in slot 1")
	}
}

func TestIDBufferRoundTrip(t *testing.T) {
	prims := []*Primitive{
		testTriangle(),
		NewPlane(types.XYZ(0, 0, 1), types.XYZ(2, 0, 1), types.XYZ(2, 2, 1), types.XYZ(0, 2, 1)),
		NewTriangle(types.XYZ(5, 5, 5), types.XYZ(6, 5, 5), types.XYZ(5, 6, 5)),
	}
	root := NewBounding(NewBounding(prims[0], NewBounding(prims[1])), NewCuboid(3, 4, 3, 4, 3, 4), prims[2])

	bufs, err := GenerateArrays(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Collect the vertices of every triangle in depth first order.
	var exp [][]float32
	var collect func(n Node)
	collect = func(n Node) {
		switch c := n.(type) {
		case *Primitive:
			v := c.Vertices()
			for i := 0; i < c.Len(); i++ {
				exp = append(exp, v[i*9:i*9+9])
			}
		case *Object:
			for _, child := range c.Children() {
				collect(child)
			}
		}
	}
	collect(root)

	if len(exp) != len(bufs.IDBuffer) {
		t.Fatalf("expected %d ids; got %d", len(exp), len(bufs.IDBuffer))
	}
	for i, id := range bufs.IDBuffer {
		row := bufs.GeometryBuffer[int(id)*GeometryRowWidth : (int(id)+1)*GeometryRowWidth]
		if row[TagOffset] != TagTriangle {
			t.Fatalf("expected id %d to reference a triangle row; got tag %f", i, row[TagOffset])
		}
		if !floatsEqual(row[:9], exp[i]) {
			t.Fatalf("expected triangle %d vertices %v; got %v", i, exp[i], row[:9])
		}
	}
}

func TestSkipCounts(t *testing.T) {
	r := NewRegistry()
	tr := r.New()

	inner := NewBounding(testTriangle(), testTriangle())
	if err := inner.SetTransform(tr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root := NewBounding(inner, testTriangle())

	bufs, err := Layout{}.Generate(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	row := func(slot int) []float32 {
		return bufs.GeometryBuffer[slot*GeometryRowWidth : (slot+1)*GeometryRowWidth]
	}

	if skip := row(0)[SkipOffset]; skip != 4 {
		t.Fatalf("expected root to skip 4 slots; got %f", skip)
	}
	if skip := row(1)[SkipOffset]; skip != 2 {
		t.Fatalf("expected inner object to skip 2 slots; got %f", skip)
	}
	if tag := row(1)[TagOffset]; tag != TagBounding {
		t.Fatalf("expected bounding tag in slot 1; got %f", tag)
	}
	if num := row(1)[TransformOffset]; num != float32(tr.Number()) {
		t.Fatalf("expected transform %d in slot 1; got %f", tr.Number(), num)
	}
	if num := row(2)[TransformOffset]; num != float32(tr.Number()) {
		t.Fatalf("expected inherited transform %d in slot 2; got %f", tr.Number(), num)
	}
	if num := row(4)[TransformOffset]; num != 0 {
		t.Fatalf("expected identity transform in slot 4; got %f", num)
	}
}

func TestPassesVisitNodesInSameOrder(t *testing.T) {
	static := NewBounding(testTriangle(), NewCuboid(0, 1, 0, 1, 0, 1))
	if err := static.SetStatic(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	frozenParent := NewBounding(NewBounding(testTriangle()))
	if _, err := frozenParent.FreezeChild(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root := NewBounding(static, NewCuboid(2, 3, 0, 1, 0, 1), frozenParent, testTriangle())

	var passes [3][]Node
	s := &serializer{
		logger: graphLogger,
		layout: DefaultLayout(),
		visit: func(pass int, n Node) {
			passes[pass] = append(passes[pass], n)
		},
	}
	if _, err := s.generate(root); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(passes[1]) == 0 || len(passes[1]) != len(passes[2]) {
		t.Fatalf("expected both passes to visit the same number of nodes; got %d and %d", len(passes[1]), len(passes[2]))
	}
	for i := range passes[1] {
		if passes[1][i] != passes[2][i] {
			t.Fatalf("expected node %d to match across passes", i)
		}
	}
}

func TestBufferPadding(t *testing.T) {
	root, _, _ := simpleTree()
	bufs, err := GenerateArrays(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bufs.GeometryBuffer) != GeometryRowWidth*256 || len(bufs.SceneBuffer) != SceneRowWidth*256 {
		t.Fatalf("expected one padded line; got %d and %d floats", len(bufs.GeometryBuffer), len(bufs.SceneBuffer))
	}
	if len(bufs.IDBuffer) != 3 {
		t.Fatalf("expected unpadded id buffer of 3; got %d", len(bufs.IDBuffer))
	}

	// 1 root + 150 planes = 301 slots
	planes := make([]Node, 150)
	for i := range planes {
		planes[i] = NewPlane(types.XYZ(0, 0, 0), types.XYZ(1, 0, 0), types.XYZ(1, 1, 0), types.XYZ(0, 1, 0))
	}
	bufs, err = Layout{SlotsPerLine: 256}.Generate(NewBounding(planes...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bufs.TextureLength != 301 {
		t.Fatalf("expected 301 slots; got %d", bufs.TextureLength)
	}
	if bufs.GeometryBufferHeight != 2 || bufs.SceneBufferHeight != 2 {
		t.Fatalf("expected 2 lines; got %d and %d", bufs.GeometryBufferHeight, bufs.SceneBufferHeight)
	}
	if len(bufs.GeometryBuffer) != 2*GeometryRowWidth*256 || len(bufs.SceneBuffer) != 2*SceneRowWidth*256 {
		t.Fatalf("expected two padded lines; got %d and %d floats", len(bufs.GeometryBuffer), len(bufs.SceneBuffer))
	}
	for _, v := range bufs.GeometryBuffer[301*GeometryRowWidth:] {
		if v != 0 {
			t.Fatal("expected padding to be zero filled")
		}
	}

	if _, err := (Layout{SlotsPerLine: -1}).Generate(root); !errors.Is(err, ErrInvalidSlotsPerRow) {
		t.Fatalf("expected ErrInvalidSlotsPerRow; got %v", err)
	}
}

func TestStructuralErrorsAbortBeforeEmission(t *testing.T) {
	specs := []struct {
		root Node
		err  error
	}{
		{NewBounding(testTriangle(), NewBounding()), ErrEmptyObject},
		{NewBounding(testTriangle(), nil), ErrNilNode},
		{nil, ErrNilNode},
	}

	for index, spec := range specs {
		var emitted int
		s := &serializer{
			logger: graphLogger,
			visit: func(pass int, _ Node) {
				if pass == 2 {
					emitted++
				}
			},
		}
		if _, err := s.generate(spec.root); !errors.Is(err, spec.err) {
			t.Fatalf("[spec %d] expected error %v; got %v", index, spec.err, err)
		}
		if emitted != 0 {
			t.Fatalf("[spec %d] expected no emission; got %d visits", index, emitted)
		}
	}
}
