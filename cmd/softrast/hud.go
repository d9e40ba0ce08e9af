package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/introsent/Dual-Rasterizer/pkg/render"
)

// HUD renders an overlay with model info, frame statistics and modes.
type HUD struct {
	filename  string
	polyCount int
	fps       float64
	fpsFrames int
	fpsTime   time.Time
	Visible   bool
}

// NewHUD creates a new HUD
func NewHUD(filename string, polyCount int) *HUD {
	return &HUD{
		filename:  filename,
		polyCount: polyCount,
		fpsTime:   time.Now(),
	}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// topLine is the first HUD row: FPS, file and triangle counts.
func (h *HUD) topLine(stats render.FrameStats) string {
	return fmt.Sprintf(" %.0f FPS | %s | %d tris | %d px | %s ",
		h.fps, h.filename, h.polyCount, stats.Written, stats.Duration.Round(time.Microsecond))
}

// bottomLine is the last HUD row: the active render modes.
func bottomLine(s render.Settings) string {
	check := func(on bool) string {
		if on {
			return "[x]"
		}
		return "[ ]"
	}
	return fmt.Sprintf(" cull:%s  shading:%s  display:%s  %s normal map ",
		s.Culling, s.Shading, s.Display, check(s.NormalMap))
}

// Render writes the HUD rows directly to the terminal, after the frame
// has been flushed. The frame underneath is repainted once the HUD is
// hidden and the screen erased.
func (h *HUD) Render(w io.Writer, width, height int, s render.Settings, stats render.FrameStats) {
	if !h.Visible {
		return
	}
	var b strings.Builder
	b.WriteString(ansi.CursorPosition(1, 1) + ansi.EraseEntireLine)
	b.WriteString(ansi.Truncate(h.topLine(stats), width, "…"))
	b.WriteString(ansi.CursorPosition(1, height) + ansi.EraseEntireLine)
	b.WriteString(ansi.Truncate(bottomLine(s), width, "…"))
	io.WriteString(w, b.String())
}
