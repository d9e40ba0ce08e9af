// Package render implements the software rasterization pipeline: vertex
// transformation, triangle setup and fill, depth testing and shading.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// Framebuffer is a 2D array of packed 0xAARRGGBB pixels.
// For terminal output the height is 2x the terminal rows, since each cell
// shows two pixels with a half-block character.
type Framebuffer struct {
	Width  int      // Width in pixels
	Height int      // Height in pixels
	Pixels []uint32 // Row-major pixel data
}

// NewFramebuffer creates a new framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]uint32, width*height),
	}
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c color.RGBA) {
	if len(fb.Pixels) == 0 {
		return
	}
	fb.Pixels[0] = PackRGBA(c)
	for i := 1; i < len(fb.Pixels); i *= 2 {
		copy(fb.Pixels[i:], fb.Pixels[:i])
	}
}

// Set sets a pixel at (x, y). Bounds checking is performed.
func (fb *Framebuffer) Set(x, y int, p uint32) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = p
}

// At returns the packed pixel at (x, y), or 0 if out of bounds.
func (fb *Framebuffer) At(x, y int) uint32 {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return 0
	}
	return fb.Pixels[y*fb.Width+x]
}

// RGBA returns the pixel at (x, y) as a color.RGBA.
func (fb *Framebuffer) RGBA(x, y int) color.RGBA {
	return UnpackRGBA(fb.At(x, y))
}

// FillRow fills pixels [x0, x1) of row y, clamped to the buffer.
func (fb *Framebuffer) FillRow(y, x0, x1 int, p uint32) {
	if y < 0 || y >= fb.Height {
		return
	}
	x0 = max(x0, 0)
	x1 = min(x1, fb.Width)
	row := fb.Pixels[y*fb.Width : (y+1)*fb.Width]
	for x := x0; x < x1; x++ {
		row[x] = p
	}
}

// FillRect fills the half-open rectangle [x0,x1) x [y0,y1).
func (fb *Framebuffer) FillRect(x0, y0, x1, y1 int, p uint32) {
	for y := max(y0, 0); y < min(y1, fb.Height); y++ {
		fb.FillRow(y, x0, x1, p)
	}
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for i, p := range fb.Pixels {
		c := UnpackRGBA(p)
		o := i * 4
		img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = c.R, c.G, c.B, c.A
	}
	return img
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, fb.ToImage()); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
