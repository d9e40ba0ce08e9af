package render

import (
	"math"
	"sync/atomic"
)

// Depth is stored as 32-bit fixed point: [0,1] maps onto [0, depthMax] with
// a uniform step of about 2.3e-10, and depthClear marks an unwritten cell.
const (
	depthMax   = 1<<32 - 2
	depthClear = 1<<32 - 1
	clearCell  = uint64(depthClear) << 32
)

// DepthBuffer stores per-pixel nearest depth together with the color of the
// fragment that produced it. Each cell packs fixed-point depth in the high
// half and a 0xAARRGGBB color in the low half, so one atomic compare-and-swap
// updates both. The packed value orders exactly like (depth, color), so
// keeping the minimum makes the result independent of the order in which
// fragments arrive. Depths closer than one fixed-point step tie and fall
// back to the color order.
type DepthBuffer struct {
	Width  int
	Height int
	cells  []atomic.Uint64
}

// NewDepthBuffer creates a cleared depth buffer.
func NewDepthBuffer(width, height int) *DepthBuffer {
	d := &DepthBuffer{
		Width:  width,
		Height: height,
		cells:  make([]atomic.Uint64, width*height),
	}
	d.Clear(nil)
	return d
}

// Clear resets every cell to +Inf. A nil pool clears serially.
func (d *DepthBuffer) Clear(pool *Pool) {
	clearRow := func(y int) {
		row := d.cells[y*d.Width : (y+1)*d.Width]
		for i := range row {
			row[i].Store(clearCell)
		}
	}
	if pool == nil {
		for y := range d.Height {
			clearRow(y)
		}
		return
	}
	pool.For(d.Height, clearRow)
}

// quantizeDepth rounds z in [0,1] to fixed point. Values outside the range
// are clamped; -0 maps to 0.
func quantizeDepth(z float64) uint64 {
	switch {
	case !(z > 0):
		return 0
	case z >= 1:
		return depthMax
	}
	return uint64(math.Round(z * depthMax))
}

func packDepth(z float64, color uint32) uint64 {
	return quantizeDepth(z)<<32 | uint64(color)
}

// TestAndSet stores (z, color) at idx if it is nearer than what the cell
// holds, breaking depth ties towards the smaller color. It reports whether
// the write happened. z must be in [0,1].
func (d *DepthBuffer) TestAndSet(idx int, z float64, color uint32) bool {
	cell := &d.cells[idx]
	nv := packDepth(z, color)
	for {
		old := cell.Load()
		if nv >= old {
			return false
		}
		if cell.CompareAndSwap(old, nv) {
			return true
		}
	}
}

// Nearer reports whether a fragment at depth z could still win cell idx.
// It is a cheap pre-check before shading; TestAndSet has the final word.
func (d *DepthBuffer) Nearer(idx int, z float64) bool {
	return packDepth(z, 0)>>32 <= d.cells[idx].Load()>>32
}

// Depth returns the stored depth at (x, y), +Inf where nothing was drawn.
func (d *DepthBuffer) Depth(x, y int) float64 {
	if x < 0 || x >= d.Width || y < 0 || y >= d.Height {
		return math.Inf(1)
	}
	q := d.cells[y*d.Width+x].Load() >> 32
	if q == depthClear {
		return math.Inf(1)
	}
	return float64(q) / depthMax
}

// Resolve copies the color of every written cell into fb, one row per
// pool iteration. fb must have the same size.
func (d *DepthBuffer) Resolve(fb *Framebuffer, pool *Pool) {
	pool.For(d.Height, func(y int) {
		base := y * d.Width
		for i := base; i < base+d.Width; i++ {
			v := d.cells[i].Load()
			if v>>32 != clearCell>>32 {
				fb.Pixels[i] = uint32(v)
			}
		}
	})
}
