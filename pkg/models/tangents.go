package models

import (
	"math"

	"github.com/introsent/Dual-Rasterizer/pkg/math3d"
)

// ComputeTangents generates per-vertex tangents from UV gradients for
// tangent-space normal mapping. Triangles with a degenerate UV area add
// nothing; vertices left without a tangent get an arbitrary one
// perpendicular to their normal.
func ComputeTangents(m *Mesh) {
	for i := range m.Vertices {
		m.Vertices[i].Tangent = math3d.Zero3()
	}

	for _, tri := range m.Triangles() {
		if IsDegenerate(tri) {
			continue
		}
		v0 := m.Vertices[tri[0]]
		v1 := m.Vertices[tri[1]]
		v2 := m.Vertices[tri[2]]

		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)

		du1 := v1.UV.X - v0.UV.X
		dv1 := v1.UV.Y - v0.UV.Y
		du2 := v2.UV.X - v0.UV.X
		dv2 := v2.UV.Y - v0.UV.Y

		denom := du1*dv2 - du2*dv1
		if denom == 0 {
			continue
		}
		r := 1.0 / denom
		t := e1.Scale(dv2 * r).Sub(e2.Scale(dv1 * r))

		for _, idx := range tri {
			m.Vertices[idx].Tangent = m.Vertices[idx].Tangent.Add(t)
		}
	}

	// Gram-Schmidt: T = normalize(T - N*(N·T))
	for i := range m.Vertices {
		n := m.Vertices[i].Normal
		t := m.Vertices[i].Tangent
		t = t.Sub(n.Scale(n.Dot(t)))
		if t.LenSq() < 1e-8 {
			if math.Abs(n.X) < 0.9 {
				t = math3d.V3(1, 0, 0).Sub(n.Scale(n.X))
			} else {
				t = math3d.V3(0, 1, 0).Sub(n.Scale(n.Y))
			}
		}
		m.Vertices[i].Tangent = t.Normalize()
	}
}
