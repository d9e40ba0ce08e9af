package models

import (
	"errors"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/introsent/Dual-Rasterizer/pkg/math3d"
)

func quadVertices() []Vertex {
	return []Vertex{
		{Position: math3d.V3(-1, -1, 0), UV: math3d.V2(0, 1)},
		{Position: math3d.V3(1, -1, 0), UV: math3d.V2(1, 1)},
		{Position: math3d.V3(-1, 1, 0), UV: math3d.V2(0, 0)},
		{Position: math3d.V3(1, 1, 0), UV: math3d.V2(1, 0)},
	}
}

func TestTriangleEnumeration(t *testing.T) {
	tests := []struct {
		name     string
		indices  []uint32
		topology Topology
		want     [][3]int
	}{
		{
			name:     "list",
			indices:  []uint32{0, 1, 2, 2, 1, 3},
			topology: TriangleList,
			want:     [][3]int{{0, 1, 2}, {2, 1, 3}},
		},
		{
			name:     "list ignores trailing indices",
			indices:  []uint32{0, 1, 2, 3},
			topology: TriangleList,
			want:     [][3]int{{0, 1, 2}},
		},
		{
			name:     "strip swaps odd triangles",
			indices:  []uint32{0, 1, 2, 3, 4},
			topology: TriangleStrip,
			want:     [][3]int{{0, 1, 2}, {2, 1, 3}, {2, 3, 4}},
		},
		{
			name:     "short strip",
			indices:  []uint32{0, 1},
			topology: TriangleStrip,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices, Topology: tt.topology}
			var got [][3]int
			for _, tri := range m.Triangles() {
				got = append(got, tri)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("triangles = %v, want %v", got, tt.want)
			}
			if m.TriangleCount() != len(tt.want) {
				t.Errorf("TriangleCount = %d, want %d", m.TriangleCount(), len(tt.want))
			}
		})
	}
}

func TestStripWindingConsistent(t *testing.T) {
	// A zig-zag strip across a plane: every triangle must face the same way.
	var verts []Vertex
	for i := range 8 {
		x := float64(i / 2)
		y := float64(i % 2)
		verts = append(verts, Vertex{Position: math3d.V3(x, y, 0)})
	}
	idx := []uint32{0, 1, 2, 3, 4, 5, 6, 7}
	m := NewMesh("strip", verts, idx, TriangleStrip)

	first := 0.0
	for k, tri := range m.Triangles() {
		a := m.Vertices[tri[0]].Position
		b := m.Vertices[tri[1]].Position
		c := m.Vertices[tri[2]].Position
		z := b.Sub(a).Cross(c.Sub(a)).Z
		if k == 0 {
			first = z
			continue
		}
		if math.Signbit(z) != math.Signbit(first) {
			t.Errorf("triangle %d winding %v differs from first %v", k, z, first)
		}
	}
}

func TestStripToList(t *testing.T) {
	got := StripToList([]uint32{0, 1, 2, 2, 3, 4})
	// (1,2,2) and (2,2,3) are degenerate and dropped.
	want := []uint32{0, 1, 2, 3, 2, 4}
	if !slices.Equal(got, want) {
		t.Errorf("StripToList = %v, want %v", got, want)
	}
}

func TestReverseWinding(t *testing.T) {
	list := ReverseWinding([]uint32{0, 1, 2, 3, 4, 5}, TriangleList)
	if !slices.Equal(list, []uint32{0, 2, 1, 3, 5, 4}) {
		t.Errorf("list = %v", list)
	}

	orig := &Mesh{Indices: []uint32{0, 1, 2, 3, 4}, Topology: TriangleStrip}
	flipped := &Mesh{Indices: ReverseWinding(orig.Indices, TriangleStrip), Topology: TriangleStrip}

	var want, got [][3]int
	for _, tri := range orig.Triangles() {
		want = append(want, [3]int{tri[0], tri[2], tri[1]})
	}
	for _, tri := range flipped.Triangles() {
		if !IsDegenerate(tri) {
			got = append(got, tri)
		}
	}
	if len(got) != len(want) {
		t.Fatalf("got %d triangles, want %d", len(got), len(want))
	}
	// Same triangles, opposite orientation: compare as cyclic rotations.
	for i := range want {
		if !sameCycle(got[i], want[i]) {
			t.Errorf("triangle %d = %v, want rotation of %v", i, got[i], want[i])
		}
	}
}

func sameCycle(a, b [3]int) bool {
	for r := range 3 {
		if a[0] == b[r] && a[1] == b[(r+1)%3] && a[2] == b[(r+2)%3] {
			return true
		}
	}
	return false
}

func TestIsDegenerate(t *testing.T) {
	if !IsDegenerate([3]int{1, 2, 1}) {
		t.Error("repeated index should be degenerate")
	}
	if IsDegenerate([3]int{0, 1, 2}) {
		t.Error("distinct indices should not be degenerate")
	}
}

func TestNewMeshOutMatchesVertices(t *testing.T) {
	m := NewMesh("quad", quadVertices(), []uint32{0, 1, 2, 2, 1, 3}, TriangleList)
	if len(m.Out) != len(m.Vertices) {
		t.Fatalf("len(Out) = %d, want %d", len(m.Out), len(m.Vertices))
	}
	m.Vertices = append(m.Vertices, Vertex{})
	m.ResetOut()
	if len(m.Out) != len(m.Vertices) {
		t.Errorf("after ResetOut len(Out) = %d, want %d", len(m.Out), len(m.Vertices))
	}
	if m.BoundsMin != math3d.V3(-1, -1, 0) || m.BoundsMax != math3d.V3(1, 1, 0) {
		t.Errorf("bounds = %v..%v", m.BoundsMin, m.BoundsMax)
	}
}

func TestValidate(t *testing.T) {
	m := NewMesh("bad", quadVertices(), []uint32{0, 1, 9}, TriangleList)
	if err := m.Validate(); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Validate = %v, want ErrIndexOutOfRange", err)
	}
	m = NewMesh("empty", nil, nil, TriangleList)
	if err := m.Validate(); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("Validate = %v, want ErrNoGeometry", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := NewMesh("quad", quadVertices(), []uint32{0, 1, 2}, TriangleList)
	clone := m.Clone()
	if clone.ID == m.ID {
		t.Error("clone should get a fresh ID")
	}
	clone.Vertices[0].Position = math3d.V3(9, 9, 9)
	clone.Indices[0] = 2
	if m.Vertices[0].Position == clone.Vertices[0].Position || m.Indices[0] == 2 {
		t.Error("clone shares storage with the original")
	}
}

func TestComputeTangentsFollowU(t *testing.T) {
	m := NewMesh("quad", quadVertices(), []uint32{0, 1, 2, 2, 1, 3}, TriangleList)
	m.CalculateSmoothNormals()
	ComputeTangents(m)
	for i, v := range m.Vertices {
		if v.Tangent.Sub(math3d.V3(1, 0, 0)).Len() > 1e-9 {
			t.Errorf("vertex %d tangent = %v, want +X", i, v.Tangent)
		}
		if math.Abs(v.Normal.Dot(v.Tangent)) > 1e-9 {
			t.Errorf("vertex %d tangent not orthogonal to normal", i)
		}
	}
}

func TestParseOBJ(t *testing.T) {
	const src = `# quad as one polygon
v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
f -4/1/1 -2/3/1 -1/4/1
`
	m, err := ParseOBJ(strings.NewReader(src), "quad")
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	// The second face reuses corners of the first.
	if m.VertexCount() != 4 {
		t.Errorf("VertexCount = %d, want 4", m.VertexCount())
	}
	if m.TriangleCount() != 3 {
		t.Errorf("TriangleCount = %d, want 3", m.TriangleCount())
	}
	if !slices.Equal(m.Indices[:6], []uint32{0, 2, 1, 0, 3, 2}) {
		t.Errorf("fan indices = %v", m.Indices[:6])
	}
	// V is flipped to a top-left origin.
	if uv := m.Vertices[0].UV; uv != math3d.V2(0, 1) {
		t.Errorf("uv = %v, want (0,1)", uv)
	}
	if n := m.Vertices[2].Normal; n != math3d.V3(0, 0, 1) {
		t.Errorf("normal = %v", n)
	}
}

func TestParseOBJObjects(t *testing.T) {
	const src = `v 0 0 0
v 1 0 0
v 0 1 0
v 0 0 1
f 1 2 3
o second
f 1 3 4
`
	m, err := ParseOBJ(strings.NewReader(src), "two")
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	if m.TriangleCount() != 2 {
		t.Errorf("TriangleCount = %d, want 2", m.TriangleCount())
	}
	// Corners shared across objects map to one vertex.
	if m.VertexCount() != 4 {
		t.Errorf("VertexCount = %d, want 4", m.VertexCount())
	}
	for i, v := range m.Vertices {
		if v.UV != (math3d.Vec2{}) {
			t.Errorf("vertex %d uv = %v, want zero without vt", i, v.UV)
		}
		if math.Abs(v.Normal.Len()-1) > 1e-9 {
			t.Errorf("vertex %d normal %v not generated", i, v.Normal)
		}
	}
}

func TestParseOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"no faces", "v 0 0 0\n", ErrNoGeometry},
		{"index out of range", "v 0 0 0\nv 1 0 0\nf 1 2 3\n", ErrIndexOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOBJ(strings.NewReader(tt.src), tt.name)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	_, err := ParseOBJ(strings.NewReader("v 0 zero 0\n"), "bad")
	if err == nil {
		t.Error("expected parse error for malformed vertex")
	}
}
