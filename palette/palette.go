// Package palette ships the curated wall paint catalog: twelve interior
// colors with stable names, digit-key presets for the first nine, and
// perceptual nearest-match lookup for arbitrary hex values.
package palette

import (
	"fmt"
	"strings"

	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/vision"
)

// Entry is one catalog color.
type Entry struct {
	// Name is the display name, unique within the catalog.
	Name string `json:"name"`

	// Hex is the canonical uppercase "#RRGGBB" value.
	Hex string `json:"hex"`
}

// Color converts the entry to a frame-native color.
func (e Entry) Color(format vision.PixelFormat) (vision.Color, error) {
	return vision.ParseHex(e.Hex, format)
}

// catalog order is stable: the first nine entries double as the digit
// presets 1 through 9.
var catalog = []Entry{
	{Name: "Pure White", Hex: "#FFFFFF"},
	{Name: "Soft Cream", Hex: "#FFF8DC"},
	{Name: "Light Gray", Hex: "#D3D3D3"},
	{Name: "Sky Blue", Hex: "#87CEEB"},
	{Name: "Mint Green", Hex: "#98FF98"},
	{Name: "Peach", Hex: "#FFDAB9"},
	{Name: "Lavender", Hex: "#E6E6FA"},
	{Name: "Coral", Hex: "#FF7F50"},
	{Name: "Sage Green", Hex: "#9DC183"},
	{Name: "Warm Beige", Hex: "#F5F5DC"},
	{Name: "Powder Blue", Hex: "#B0E0E6"},
	{Name: "Blush Pink", Hex: "#FFB6C1"},
}

// Default returns the full catalog in preset order. The slice is a copy;
// callers may reorder it freely.
func Default() []Entry {
	out := make([]Entry, len(catalog))
	copy(out, catalog)
	return out
}

// ByName looks up an entry by display name, ignoring case.
func ByName(name string) (Entry, bool) {
	for _, e := range catalog {
		if strings.EqualFold(e.Name, name) {
			return e, true
		}
	}
	return Entry{}, false
}

// ByKey maps the digit keys '1' through '9' to the first nine catalog
// entries.
func ByKey(key rune) (Entry, bool) {
	if key < '1' || key > '9' {
		return Entry{}, false
	}
	return catalog[key-'1'], true
}

// ByHex looks up an entry by exact color value. The input may carry an
// optional '#' and any case.
func ByHex(hex string) (Entry, bool) {
	want := "#" + strings.ToUpper(strings.TrimPrefix(hex, "#"))
	for _, e := range catalog {
		if e.Hex == want {
			return e, true
		}
	}
	return Entry{}, false
}

// String formats the entry for logs.
func (e Entry) String() string {
	return fmt.Sprintf("%s (%s)", e.Name, e.Hex)
}
