package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw converts the framebuffer to terminal cells and draws them on the
// screen. The framebuffer height should be 2x the terminal height.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	// Each terminal row represents 2 framebuffer rows
	// We use ▀ (upper half block) with fg=top color and bg=bottom color

	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1
		if topY >= fb.Height {
			break
		}

		for col := area.Min.X; col < area.Max.X && col-area.Min.X < fb.Width; col++ {
			x := col - area.Min.X
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: pixelColor(fb.At(x, topY)),
					Bg: pixelColor(fb.At(x, botY)),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// pixelColor converts a packed pixel for the terminal.
func pixelColor(p uint32) color.Color {
	c := UnpackRGBA(p)
	if c.A == 0 {
		return nil // Transparent = no color
	}
	return c
}
