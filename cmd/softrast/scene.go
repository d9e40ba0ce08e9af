package main

import (
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"github.com/introsent/Dual-Rasterizer/pkg/config"
	"github.com/introsent/Dual-Rasterizer/pkg/math3d"
	"github.com/introsent/Dual-Rasterizer/pkg/models"
	"github.com/introsent/Dual-Rasterizer/pkg/render"
)

// cameraDistance is how far the camera starts from the model's center.
const cameraDistance = 5.0

// scene is a loaded model ready to draw.
type scene struct {
	mesh *models.Mesh
	mat  render.Material
	// fit centers the model on the origin and scales its largest
	// dimension to 2 units.
	fit math3d.Mat4
}

// loadScene loads a model and its material. Texture paths override maps
// embedded in the model; a model without any diffuse map gets a checker.
func loadScene(path string, tex config.Textures, logger *log.Logger) (*scene, error) {
	mesh, err := models.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if err := mesh.Validate(); err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	mat := render.MaterialFromModel(mesh.Material, render.FilterBilinear)
	overrides := []struct {
		kind render.MapKind
		path string
	}{
		{render.MapDiffuse, tex.Diffuse},
		{render.MapNormal, tex.Normal},
		{render.MapSpecular, tex.Specular},
		{render.MapGloss, tex.Gloss},
	}
	for _, o := range overrides {
		if o.path == "" {
			continue
		}
		t, err := render.LoadTexture(o.path)
		if err != nil {
			return nil, fmt.Errorf("%s map: %w", o.kind, err)
		}
		t.FilterMode = render.FilterBilinear
		mat.SetMap(o.kind, t)
	}
	if !mat.Has(render.MapDiffuse) {
		logger.Warn("no diffuse texture, using checker", "model", path)
		mat.SetMap(render.MapDiffuse, render.NewCheckerTexture(64, 64, 8, render.Gray(0.8), render.Gray(0.4)))
	}

	logger.Info("model loaded",
		"model", path,
		"id", mesh.ID,
		"vertices", mesh.VertexCount(),
		"triangles", mesh.TriangleCount(),
		"topology", mesh.Topology,
	)
	return &scene{mesh: mesh, mat: mat, fit: fitTransform(mesh)}, nil
}

// fitTransform returns the matrix that centers mesh and scales it to a
// 2-unit bounding cube.
func fitTransform(mesh *models.Mesh) math3d.Mat4 {
	size := mesh.Size()
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	if maxDim <= 0 {
		return math3d.Translate(mesh.Center().Negate())
	}
	return math3d.ScaleUniform(2 / maxDim).Mul(math3d.Translate(mesh.Center().Negate()))
}

// world returns the model's world matrix for the given rotation.
func (sc *scene) world(pitch, yaw, roll float64) math3d.Mat4 {
	return math3d.RotateX(pitch).
		Mul(math3d.RotateY(yaw)).
		Mul(math3d.RotateZ(roll)).
		Mul(sc.fit)
}

// bounds returns the model's world-space bounding box under world.
func (sc *scene) bounds(world math3d.Mat4) render.AABB {
	return render.NewAABB(sc.mesh.BoundsMin, sc.mesh.BoundsMax).Transform(world)
}

// newCamera places a camera on +Z looking at the origin.
func newCamera(fov float64, width, height int, distance float64) *render.Camera {
	cam := render.NewCamera()
	cam.SetFOV(fov)
	cam.SetAspectRatio(float64(width) / float64(height))
	cam.SetClipPlanes(0.1, 100)
	cam.SetPosition(cameraPosition(distance))
	cam.LookAt(math3d.Zero3())
	return cam
}

// cameraPosition is the point on +Z at distance from the origin.
func cameraPosition(distance float64) math3d.Vec3 {
	return math3d.V3(0, 0, distance)
}
