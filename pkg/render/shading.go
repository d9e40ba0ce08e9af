package render

import (
	"math"

	"github.com/introsent/Dual-Rasterizer/pkg/math3d"
)

// Scene light and material constants.
const (
	LightIntensity = 7.0
	Shininess      = 25.0
)

var (
	// LightDirection is the direction the light travels, in world space.
	LightDirection = math3d.V3(0.577, -0.577, -0.577)
	// Ambient is added to every lit pixel in ShadeCombined.
	Ambient = Gray(0.03)
)

// Fragment is an interpolated surface point handed to the shading stage.
// ViewDir points from the camera towards the surface.
type Fragment struct {
	UV      math3d.Vec2
	Normal  math3d.Vec3
	Tangent math3d.Vec3
	ViewDir math3d.Vec3
}

// Lambert returns the diffuse reflectance of a perfectly matte surface.
func Lambert(cd ColorRGB) ColorRGB {
	return cd.Div(math.Pi)
}

// Phong returns the specular reflectance ks * max(r·v, 0)^exp, where r is
// l reflected about n. l points towards the light and v away from the
// viewer.
func Phong(ks ColorRGB, exp float64, l, v, n math3d.Vec3) ColorRGB {
	r := l.Sub(n.Scale(2 * math.Max(n.Dot(l), 0)))
	cosA := math.Max(r.Dot(v), 0)
	return ks.Scale(math.Pow(cosA, exp))
}

// PerturbNormal replaces n with the normal map sample at uv, expressed in
// the tangent frame (t, n x t, n).
func PerturbNormal(n, t math3d.Vec3, sample ColorRGB) math3d.Vec3 {
	b := n.Cross(t)
	return t.Scale(2*sample.R - 1).
		Add(b.Scale(2*sample.G - 1)).
		Add(n.Scale(2*sample.B - 1)).
		Normalize()
}

// Shade computes the linear color of a fragment under the scene light.
// Surfaces facing away from the light are black.
func Shade(f Fragment, mat Material, mode ShadingMode, normalMap bool) ColorRGB {
	n := f.Normal
	if normalMap {
		n = PerturbNormal(n, f.Tangent, mat.Sample(MapNormal, f.UV))
	}

	toLight := LightDirection.Negate()
	cosTheta := n.Dot(toLight)
	if cosTheta < 0 {
		return ColorRGB{}
	}

	switch mode {
	case ShadeObservedArea:
		return Gray(cosTheta)
	case ShadeDiffuse:
		return Lambert(mat.Sample(MapDiffuse, f.UV)).Scale(cosTheta * LightIntensity)
	}

	exp := mat.Sample(MapGloss, f.UV).R * Shininess
	specular := Phong(mat.Sample(MapSpecular, f.UV), exp, toLight, f.ViewDir, n)
	if mode == ShadeSpecular {
		return specular
	}

	diffuse := Lambert(mat.Sample(MapDiffuse, f.UV)).Scale(cosTheta * LightIntensity)
	return Ambient.Add(specular).Add(diffuse)
}
