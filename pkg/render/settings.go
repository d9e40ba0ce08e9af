package render

import (
	"fmt"
	"image/color"
	"strings"
)

// CullMode selects which triangle windings are rasterized.
type CullMode int

const (
	// CullBack draws triangles with non-negative edge weights: counter-
	// clockwise in y-down pixel coordinates, so clockwise as displayed.
	CullBack CullMode = iota
	// CullFront draws triangles with negative edge weights.
	CullFront
	// CullNone draws both.
	CullNone
)

var cullNames = [...]string{"back", "front", "none"}

func (m CullMode) String() string {
	if m < 0 || int(m) >= len(cullNames) {
		return fmt.Sprintf("CullMode(%d)", int(m))
	}
	return cullNames[m]
}

// Next returns the following mode, wrapping around.
func (m CullMode) Next() CullMode {
	return (m + 1) % CullMode(len(cullNames))
}

// ParseCullMode parses the String form of a CullMode.
func ParseCullMode(s string) (CullMode, error) {
	i, err := parseEnum(s, cullNames[:], "cull mode")
	return CullMode(i), err
}

// DisplayMode selects what the rasterizer writes per pixel.
type DisplayMode int

const (
	// DisplayFinalColor shades every covered pixel.
	DisplayFinalColor DisplayMode = iota
	// DisplayDepthBuffer writes remapped depth as grayscale.
	DisplayDepthBuffer
	// DisplayShading previews the current shading mode. It rasterizes the
	// same way as DisplayFinalColor.
	DisplayShading
	// DisplayBoundingBox fills each triangle's screen rectangle, ignoring depth.
	DisplayBoundingBox
)

var displayNames = [...]string{"final", "depth", "shading", "bbox"}

func (m DisplayMode) String() string {
	if m < 0 || int(m) >= len(displayNames) {
		return fmt.Sprintf("DisplayMode(%d)", int(m))
	}
	return displayNames[m]
}

// Next returns the following mode, wrapping around.
func (m DisplayMode) Next() DisplayMode {
	return (m + 1) % DisplayMode(len(displayNames))
}

// ParseDisplayMode parses the String form of a DisplayMode.
func ParseDisplayMode(s string) (DisplayMode, error) {
	i, err := parseEnum(s, displayNames[:], "display mode")
	return DisplayMode(i), err
}

// ShadingMode selects which lighting terms the shading stage returns.
type ShadingMode int

const (
	ShadeObservedArea ShadingMode = iota // cos(theta) only
	ShadeDiffuse                         // Lambert only
	ShadeSpecular                        // Phong only
	ShadeCombined                        // ambient + specular + diffuse
)

var shadingNames = [...]string{"observed", "diffuse", "specular", "combined"}

func (m ShadingMode) String() string {
	if m < 0 || int(m) >= len(shadingNames) {
		return fmt.Sprintf("ShadingMode(%d)", int(m))
	}
	return shadingNames[m]
}

// Next returns the following mode, wrapping around.
func (m ShadingMode) Next() ShadingMode {
	return (m + 1) % ShadingMode(len(shadingNames))
}

// ParseShadingMode parses the String form of a ShadingMode.
func ParseShadingMode(s string) (ShadingMode, error) {
	i, err := parseEnum(s, shadingNames[:], "shading mode")
	return ShadingMode(i), err
}

func parseEnum(s string, names []string, what string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q (want one of %s)", what, s, strings.Join(names, ", "))
}

// Settings is the immutable per-frame configuration of the rasterizer.
// It is passed by value into every frame and never mutated mid-frame.
type Settings struct {
	Culling   CullMode
	Display   DisplayMode
	Shading   ShadingMode
	NormalMap bool

	// Depth range remapped to [0,1] gray in DisplayDepthBuffer.
	DepthBandNear float64
	DepthBandFar  float64

	BoundingBoxColor color.RGBA
	ClearColor       color.RGBA
}

// DefaultSettings returns the settings the viewer starts with.
func DefaultSettings() Settings {
	return Settings{
		Culling:          CullBack,
		Display:          DisplayFinalColor,
		Shading:          ShadeCombined,
		NormalMap:        true,
		DepthBandNear:    0.8,
		DepthBandFar:     1.0,
		BoundingBoxColor: ColorWhite,
		ClearColor:       ColorGray,
	}
}

// Validate reports settings the rasterizer cannot honor.
func (s Settings) Validate() error {
	if s.Culling < CullBack || s.Culling > CullNone {
		return fmt.Errorf("invalid cull mode %d", int(s.Culling))
	}
	if s.Display < DisplayFinalColor || s.Display > DisplayBoundingBox {
		return fmt.Errorf("invalid display mode %d", int(s.Display))
	}
	if s.Shading < ShadeObservedArea || s.Shading > ShadeCombined {
		return fmt.Errorf("invalid shading mode %d", int(s.Shading))
	}
	if !(s.DepthBandNear < s.DepthBandFar) {
		return fmt.Errorf("depth band [%v, %v] is empty", s.DepthBandNear, s.DepthBandFar)
	}
	return nil
}

// remapDepth maps z from the depth band onto [0,1].
func (s Settings) remapDepth(z float64) float64 {
	return clamp01((z - s.DepthBandNear) / (s.DepthBandFar - s.DepthBandNear))
}
