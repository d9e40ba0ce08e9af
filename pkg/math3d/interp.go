package math3d

// Perspective-correct attribute interpolation over a screen-space triangle.
//
// w0, w1, w2 are the clip-space W of the three vertices and b0, b1, b2 the
// normalized screen-space barycentric weights of the sample. wProduct is
// w0*w1*w2. InterpolatedDepth returns the view depth at the sample; the
// Interpolate functions blend an attribute given that depth.

// InterpolatedDepth returns w0*w1*w2 / (b0*w1*w2 + b1*w0*w2 + b2*w0*w1).
func InterpolatedDepth(w0, w1, w2, b0, b1, b2 float64) float64 {
	return w0 * w1 * w2 / (b0*w1*w2 + b1*w0*w2 + b2*w0*w1)
}

// InterpolateScalar blends three scalars perspective-correctly.
func InterpolateScalar(a0, a1, a2, w0, w1, w2, b0, b1, b2, depth, wProduct float64) float64 {
	return (a0*w1*w2*b0 + a1*w0*w2*b1 + a2*w0*w1*b2) * depth / wProduct
}

// InterpolateVec2 blends three Vec2 attributes perspective-correctly.
func InterpolateVec2(a0, a1, a2 Vec2, w0, w1, w2, b0, b1, b2, depth, wProduct float64) Vec2 {
	k0, k1, k2 := weights(w0, w1, w2, b0, b1, b2, depth, wProduct)
	return Vec2{
		a0.X*k0 + a1.X*k1 + a2.X*k2,
		a0.Y*k0 + a1.Y*k1 + a2.Y*k2,
	}
}

// InterpolateVec3 blends three Vec3 attributes perspective-correctly.
func InterpolateVec3(a0, a1, a2 Vec3, w0, w1, w2, b0, b1, b2, depth, wProduct float64) Vec3 {
	k0, k1, k2 := weights(w0, w1, w2, b0, b1, b2, depth, wProduct)
	return Vec3{
		a0.X*k0 + a1.X*k1 + a2.X*k2,
		a0.Y*k0 + a1.Y*k1 + a2.Y*k2,
		a0.Z*k0 + a1.Z*k1 + a2.Z*k2,
	}
}

// weights folds the per-vertex factors so each attribute component costs
// three multiplies.
func weights(w0, w1, w2, b0, b1, b2, depth, wProduct float64) (k0, k1, k2 float64) {
	s := depth / wProduct
	return w1 * w2 * b0 * s, w0 * w2 * b1 * s, w0 * w1 * b2 * s
}
