package tetris

import "fmt"

// Color is the RGB value a cell is painted with.
// The zero value is Empty and marks a free cell on the stack.
type Color struct {
	R, G, B uint8
}

// Empty is the sentinel for a free cell.
var Empty = Color{}

// Colors is the palette a new piece picks from.
var Colors = []Color{
	{255, 0, 0},   // red
	{0, 255, 0},   // green
	{0, 0, 255},   // blue
	{255, 255, 0}, // yellow
	{255, 165, 0}, // orange
	{128, 0, 128}, // purple
	{0, 255, 255}, // cyan
}

func (c Color) IsEmpty() bool { return c == Empty }

// Uint32 packs the color as 0xRRGGBB.
func (c Color) Uint32() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// ColorFromUint32 unpacks a 0xRRGGBB value.
func ColorFromUint32(v uint32) Color {
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)} //nolint:gosec
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
