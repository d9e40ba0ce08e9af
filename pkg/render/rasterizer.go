package render

import (
	"math"
	"sync/atomic"

	"github.com/introsent/Dual-Rasterizer/pkg/math3d"
	"github.com/introsent/Dual-Rasterizer/pkg/models"
)

// areaEpsilon is the smallest edge-weight sum (twice the triangle's pixel
// area) the rasterizer divides by.
const areaEpsilon = 1e-9

// RasterStats counts what happened to triangles and pixels in one frame.
type RasterStats struct {
	Triangles  int64 // Triangles considered
	Degenerate int64 // Skipped for a repeated index
	Behind     int64 // Skipped for a vertex at or behind the eye (W <= 0)
	Outside    int64 // Skipped for a vertex outside the unit screen/depth cube
	Fragments  int64 // Covered pixels that passed the depth range test
	Written    int64 // Fragments that won the depth test when they arrived
}

type rasterCounters struct {
	triangles, degenerate, behind, outside, fragments, written atomic.Int64
}

func (c *rasterCounters) snapshot() RasterStats {
	return RasterStats{
		Triangles:  c.triangles.Load(),
		Degenerate: c.degenerate.Load(),
		Behind:     c.behind.Load(),
		Outside:    c.outside.Load(),
		Fragments:  c.fragments.Load(),
		Written:    c.written.Load(),
	}
}

func (c *rasterCounters) reset() {
	for _, v := range []*atomic.Int64{&c.triangles, &c.degenerate, &c.behind, &c.outside, &c.fragments, &c.written} {
		v.Store(0)
	}
}

// Rect is a half-open pixel rectangle [X0,X1) x [Y0,Y1).
type Rect struct {
	X0, Y0, X1, Y1 int
}

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool {
	return r.X0 >= r.X1 || r.Y0 >= r.Y1
}

// Rasterizer fills triangles into a DepthBuffer. Triangles are processed in
// parallel and each triangle's scanlines are processed in parallel again;
// the depth buffer's atomic compare-and-swap orders concurrent writes.
type Rasterizer struct {
	width  int
	height int
	depth  *DepthBuffer
	pool   *Pool

	counters rasterCounters
	boxes    []Rect // collected in DisplayBoundingBox mode
}

// NewRasterizer creates a rasterizer writing into depth.
func NewRasterizer(depth *DepthBuffer, pool *Pool) *Rasterizer {
	return &Rasterizer{
		width:  depth.Width,
		height: depth.Height,
		depth:  depth,
		pool:   pool,
	}
}

// Reset clears statistics and collected bounding boxes.
func (r *Rasterizer) Reset() {
	r.counters.reset()
	r.boxes = r.boxes[:0]
}

// Stats returns the counters accumulated since the last Reset.
func (r *Rasterizer) Stats() RasterStats {
	return r.counters.snapshot()
}

// Boxes returns the rectangles collected in DisplayBoundingBox mode, in
// triangle order.
func (r *Rasterizer) Boxes() []Rect {
	return r.boxes
}

// triangle is the per-triangle setup shared by all of its pixels.
type triangle struct {
	v        [3]*models.VertexOut
	p        [3]math3d.Vec2 // pixel-space positions
	bounds   Rect
	wProduct float64
}

// RasterizeMesh draws every triangle of a transformed mesh.
// mesh.Out must have been filled by TransformVertices.
func (r *Rasterizer) RasterizeMesh(mesh *models.Mesh, mat Material, s Settings) {
	n := mesh.TriangleCount()
	if s.Display == DisplayBoundingBox {
		boxes := make([]Rect, n)
		r.pool.For(n, func(k int) {
			if tri, ok := r.setup(mesh, k); ok {
				boxes[k] = tri.bounds
			}
		})
		for _, b := range boxes {
			if !b.Empty() {
				r.boxes = append(r.boxes, b)
			}
		}
		return
	}

	r.pool.For(n, func(k int) {
		tri, ok := r.setup(mesh, k)
		if !ok {
			return
		}
		b := tri.bounds
		r.pool.For(b.Y1-b.Y0, func(row int) {
			r.fillRow(&tri, b.Y0+row, mat, s)
		})
	})
}

// setup applies the whole-triangle rejection tests and computes the pixel
// bounding box.
func (r *Rasterizer) setup(mesh *models.Mesh, k int) (triangle, bool) {
	r.counters.triangles.Add(1)

	idx := mesh.TriangleAt(k)
	if models.IsDegenerate(idx) {
		r.counters.degenerate.Add(1)
		return triangle{}, false
	}

	var tri triangle
	for i, vi := range idx {
		tri.v[i] = &mesh.Out[vi]
	}
	for _, v := range tri.v {
		if v.Position.W <= 0 {
			r.counters.behind.Add(1)
			return triangle{}, false
		}
	}
	for _, v := range tri.v {
		if !insideUnitCube(v.Position) {
			r.counters.outside.Add(1)
			return triangle{}, false
		}
	}

	w, h := float64(r.width), float64(r.height)
	for i, v := range tri.v {
		tri.p[i] = math3d.V2(v.Position.X*w, v.Position.Y*h)
	}
	tri.wProduct = tri.v[0].Position.W * tri.v[1].Position.W * tri.v[2].Position.W

	tri.bounds = Rect{
		X0: max(int(math.Floor(min3(tri.p[0].X, tri.p[1].X, tri.p[2].X))), 0),
		Y0: max(int(math.Floor(min3(tri.p[0].Y, tri.p[1].Y, tri.p[2].Y))), 0),
		X1: min(int(math.Ceil(max3(tri.p[0].X, tri.p[1].X, tri.p[2].X))), r.width),
		Y1: min(int(math.Ceil(max3(tri.p[0].Y, tri.p[1].Y, tri.p[2].Y))), r.height),
	}
	return tri, !tri.bounds.Empty()
}

// edgeWeights returns the unnormalized barycentric weights of p: the 2D
// cross product of each directed edge with p, weight k belonging to the
// vertex opposite edge k.
func edgeWeights(p0, p1, p2, p math3d.Vec2) (w0, w1, w2 float64) {
	w0 = p2.Sub(p1).Cross(p.Sub(p1))
	w1 = p0.Sub(p2).Cross(p.Sub(p2))
	w2 = p1.Sub(p0).Cross(p.Sub(p0))
	return w0, w1, w2
}

// covers applies the culling mode's sign test to the edge weights.
func covers(mode CullMode, w0, w1, w2 float64) bool {
	pos := w0 >= 0 && w1 >= 0 && w2 >= 0
	switch mode {
	case CullBack:
		return pos
	case CullFront:
		return w0 < 0 && w1 < 0 && w2 < 0
	default:
		return pos || (w0 < 0 && w1 < 0 && w2 < 0)
	}
}

// fillRow tests and shades every pixel of one scanline of the bounding box.
func (r *Rasterizer) fillRow(tri *triangle, y int, mat Material, s Settings) {
	v0, v1, v2 := tri.v[0], tri.v[1], tri.v[2]
	z0, z1, z2 := v0.Position.Z, v1.Position.Z, v2.Position.Z
	py := float64(y) + 0.5
	rowBase := y * r.width

	var fragments, written int64
	for x := tri.bounds.X0; x < tri.bounds.X1; x++ {
		w0, w1, w2 := edgeWeights(tri.p[0], tri.p[1], tri.p[2], math3d.V2(float64(x)+0.5, py))
		if !covers(s.Culling, w0, w1, w2) {
			continue
		}
		area := w0 + w1 + w2
		if math.Abs(area) < areaEpsilon {
			continue
		}
		b0, b1, b2 := w0/area, w1/area, w2/area

		// Screen-space depth: interpolate 1/z linearly.
		z := 1 / (b0/z0 + b1/z1 + b2/z2)
		if !(z >= 0 && z <= 1) {
			continue
		}
		fragments++

		idx := rowBase + x
		if !r.depth.Nearer(idx, z) {
			continue
		}

		var c ColorRGB
		if s.Display == DisplayDepthBuffer {
			c = Gray(s.remapDepth(z))
		} else {
			f, ok := interpolate(tri, b0, b1, b2)
			if !ok {
				continue
			}
			c = Shade(f, mat, s.Shading, s.NormalMap)
		}

		if r.depth.TestAndSet(idx, z, c.Pack()) {
			written++
		}
	}

	r.counters.fragments.Add(fragments)
	r.counters.written.Add(written)
}

// interpolate blends the vertex attributes perspective-correctly.
func interpolate(tri *triangle, b0, b1, b2 float64) (Fragment, bool) {
	v0, v1, v2 := tri.v[0], tri.v[1], tri.v[2]
	w0, w1, w2 := v0.Position.W, v1.Position.W, v2.Position.W

	d := math3d.InterpolatedDepth(w0, w1, w2, b0, b1, b2)
	if !(d > 0) {
		return Fragment{}, false
	}
	wp := tri.wProduct

	return Fragment{
		UV:      math3d.InterpolateVec2(v0.UV, v1.UV, v2.UV, w0, w1, w2, b0, b1, b2, d, wp),
		Normal:  math3d.InterpolateVec3(v0.Normal, v1.Normal, v2.Normal, w0, w1, w2, b0, b1, b2, d, wp).Normalize(),
		Tangent: math3d.InterpolateVec3(v0.Tangent, v1.Tangent, v2.Tangent, w0, w1, w2, b0, b1, b2, d, wp).Normalize(),
		ViewDir: math3d.InterpolateVec3(v0.ViewDir, v1.ViewDir, v2.ViewDir, w0, w1, w2, b0, b1, b2, d, wp).Normalize(),
	}, true
}

// min3 returns the minimum of three values.
func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

// max3 returns the maximum of three values.
func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
