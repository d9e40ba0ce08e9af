package render

import (
	"github.com/introsent/Dual-Rasterizer/pkg/math3d"
	"github.com/introsent/Dual-Rasterizer/pkg/models"
)

// TransformVertices fills mesh.Out with one screen-space vertex per input
// vertex. world must be a rigid transform: normals and tangents go through
// the same matrix as positions, without an inverse transpose.
func TransformVertices(mesh *models.Mesh, world math3d.Mat4, cam CameraState, pool *Pool) {
	mesh.ResetOut()
	wvp := cam.ViewProjection().Mul(world)

	pool.For(len(mesh.Vertices), func(i int) {
		v := &mesh.Vertices[i]
		out := &mesh.Out[i]

		out.Normal = world.MulVec3Dir(v.Normal).Normalize()
		out.Tangent = world.MulVec3Dir(v.Tangent).Normalize()
		out.ViewDir = world.MulVec3(v.Position).Sub(cam.Origin).Normalize()
		out.UV = v.UV

		// W is kept through the divide; W <= 0 is left undivided and the
		// rasterizer rejects the triangle on it.
		clip := wvp.MulVec4(math3d.V4FromV3(v.Position, 1))
		out.Position = toScreen(clip.PerspectiveDivide())
	})
}

// toScreen maps NDC x,y from [-1,1] to [0,1] with y pointing down.
func toScreen(ndc math3d.Vec4) math3d.Vec4 {
	return math3d.Vec4{
		X: ndc.X*0.5 + 0.5,
		Y: (1 - ndc.Y) * 0.5,
		Z: ndc.Z,
		W: ndc.W,
	}
}

// insideUnitCube reports whether a screen-space position lies in the
// [0,1] viewport and depth range.
func insideUnitCube(p math3d.Vec4) bool {
	return p.X >= 0 && p.X <= 1 &&
		p.Y >= 0 && p.Y <= 1 &&
		p.Z >= 0 && p.Z <= 1
}
