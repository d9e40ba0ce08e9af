// Package models provides mesh data and asset loading for the rasterizer.
package models

import (
	"fmt"
	"image"
	"iter"

	"github.com/google/uuid"

	"github.com/introsent/Dual-Rasterizer/pkg/math3d"
)

// Topology selects how the index list is split into triangles.
type Topology int

const (
	// TriangleList reads indices three at a time.
	TriangleList Topology = iota
	// TriangleStrip reads a sliding window of three indices.
	TriangleStrip
)

func (t Topology) String() string {
	switch t {
	case TriangleList:
		return "list"
	case TriangleStrip:
		return "strip"
	default:
		return fmt.Sprintf("Topology(%d)", int(t))
	}
}

// Vertex holds the immutable per-vertex attributes of a mesh.
type Vertex struct {
	Position math3d.Vec3
	UV       math3d.Vec2
	Normal   math3d.Vec3
	Tangent  math3d.Vec3
}

// VertexOut is a vertex after transformation into normalized screen space.
// Position.X/Y are in [0,1] with a top-left origin, Position.Z is the
// post-divide depth and Position.W the clip-space W before the divide.
type VertexOut struct {
	Position math3d.Vec4
	UV       math3d.Vec2
	Normal   math3d.Vec3
	Tangent  math3d.Vec3
	ViewDir  math3d.Vec3
}

// Material carries the decoded images a loader found for a mesh.
// Any of them may be nil.
type Material struct {
	Name     string
	Diffuse  image.Image
	Normal   image.Image
	Specular image.Image
	Gloss    image.Image
}

// HasTexture reports whether at least one map is present.
func (m Material) HasTexture() bool {
	return m.Diffuse != nil || m.Normal != nil || m.Specular != nil || m.Gloss != nil
}

// Mesh is an indexed triangle mesh plus its derived screen-space vertices.
// Front faces wind clockwise as seen from in front of them; loaders convert
// counter-clockwise formats on the way in.
type Mesh struct {
	ID       uuid.UUID
	Name     string
	Vertices []Vertex
	Indices  []uint32
	Topology Topology
	Material Material

	// Out is rewritten by the vertex transformer every frame and always
	// has the same length as Vertices.
	Out []VertexOut

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// NewMesh creates a mesh from vertices and indices and computes its bounds.
func NewMesh(name string, vertices []Vertex, indices []uint32, topology Topology) *Mesh {
	m := &Mesh{
		ID:       uuid.New(),
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
		Topology: topology,
	}
	m.ResetOut()
	m.CalculateBounds()
	return m
}

// ResetOut sizes Out to match Vertices, reusing the backing array.
func (m *Mesh) ResetOut() {
	if cap(m.Out) >= len(m.Vertices) {
		m.Out = m.Out[:len(m.Vertices)]
		return
	}
	m.Out = make([]VertexOut, len(m.Vertices))
}

// Validate checks that every index refers to an existing vertex.
func (m *Mesh) Validate() error {
	if len(m.Vertices) == 0 || m.TriangleCount() == 0 {
		return fmt.Errorf("mesh %q: %w", m.Name, ErrNoGeometry)
	}
	n := uint32(len(m.Vertices))
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("mesh %q: index %d = %d: %w", m.Name, i, idx, ErrIndexOutOfRange)
		}
	}
	return nil
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// GetBounds returns the axis-aligned bounding box.
func (m *Mesh) GetBounds() (min, max math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles the index list describes,
// degenerate ones included.
func (m *Mesh) TriangleCount() int {
	switch m.Topology {
	case TriangleStrip:
		return max(len(m.Indices)-2, 0)
	default:
		return len(m.Indices) / 3
	}
}

// TriangleAt returns the vertex indices of triangle k.
// Odd strip triangles swap their first two indices so that every triangle
// of a strip keeps the winding of the first one.
func (m *Mesh) TriangleAt(k int) [3]int {
	if m.Topology == TriangleStrip {
		i0, i1, i2 := int(m.Indices[k]), int(m.Indices[k+1]), int(m.Indices[k+2])
		if k%2 == 1 {
			i0, i1 = i1, i0
		}
		return [3]int{i0, i1, i2}
	}
	base := k * 3
	return [3]int{int(m.Indices[base]), int(m.Indices[base+1]), int(m.Indices[base+2])}
}

// Triangles iterates over all triangles in index order.
func (m *Mesh) Triangles() iter.Seq2[int, [3]int] {
	return func(yield func(int, [3]int) bool) {
		for k := range m.TriangleCount() {
			if !yield(k, m.TriangleAt(k)) {
				return
			}
		}
	}
}

// IsDegenerate reports whether a triangle repeats a vertex index.
func IsDegenerate(tri [3]int) bool {
	return tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2]
}

// CalculateSmoothNormals computes area-weighted averaged vertex normals.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Zero3()
	}

	for _, tri := range m.Triangles() {
		if IsDegenerate(tri) {
			continue
		}
		v0 := m.Vertices[tri[0]].Position
		v1 := m.Vertices[tri[1]].Position
		v2 := m.Vertices[tri[2]].Position

		// Clockwise front faces: (v2-v0) x (v1-v0) points outward
		normal := v2.Sub(v0).Cross(v1.Sub(v0)) // Don't normalize yet

		for _, idx := range tri {
			m.Vertices[idx].Normal = m.Vertices[idx].Normal.Add(normal)
		}
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// hasNormals reports whether any vertex carries a usable normal.
func (m *Mesh) hasNormals() bool {
	for _, v := range m.Vertices {
		if v.Normal.LenSq() > 1e-6 {
			return true
		}
	}
	return false
}

// Clone creates a deep copy of the mesh with a fresh ID.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		ID:        uuid.New(),
		Name:      m.Name,
		Vertices:  make([]Vertex, len(m.Vertices)),
		Indices:   make([]uint32, len(m.Indices)),
		Topology:  m.Topology,
		Material:  m.Material,
		Out:       make([]VertexOut, len(m.Out)),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	copy(clone.Vertices, m.Vertices)
	copy(clone.Indices, m.Indices)
	copy(clone.Out, m.Out)
	return clone
}

// ReverseWinding flips the winding of every triangle and returns the
// resulting index list. A list is swapped in place and returned. A strip
// comes back as a new slice with its first index repeated, which shifts the
// odd/even parity of all following triangles behind one degenerate triangle.
func ReverseWinding(indices []uint32, topology Topology) []uint32 {
	switch topology {
	case TriangleStrip:
		if len(indices) == 0 {
			return indices
		}
		return append([]uint32{indices[0]}, indices...)
	default:
		for i := 0; i+2 < len(indices); i += 3 {
			indices[i+1], indices[i+2] = indices[i+2], indices[i+1]
		}
		return indices
	}
}

// StripToList expands a strip index list into an equivalent list,
// dropping degenerate triangles and preserving strip winding.
func StripToList(strip []uint32) []uint32 {
	if len(strip) < 3 {
		return nil
	}
	m := Mesh{Indices: strip, Topology: TriangleStrip}
	out := make([]uint32, 0, m.TriangleCount()*3)
	for _, tri := range m.Triangles() {
		if IsDegenerate(tri) {
			continue
		}
		out = append(out, uint32(tri[0]), uint32(tri[1]), uint32(tri[2]))
	}
	return out
}
