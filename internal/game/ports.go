// Package game defines the capability ports questline consumes to
// perceive and act on the game screen. The orchestration core depends
// on these interfaces only; concrete backends (OS-level input drivers,
// template matchers, OCR) are supplied by embedders. A scripted
// in-memory backend lives in game/sim for tests and dry runs.
//
// Perception misses are expected, not errors: a clean miss is reported
// as (zero, false, nil). A non-nil error means the backend itself
// faulted (transport failure), which polling callers treat as a miss
// and log at debug level.
package game

import "context"

// Position is a screen coordinate in pixels.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Region is a rectangular screen area in pixels, inclusive of Left/Top
// and exclusive of Right/Bottom.
type Region struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Contains reports whether p lies within the region.
func (r Region) Contains(p Position) bool {
	return p.X >= r.Left && p.X < r.Right && p.Y >= r.Top && p.Y < r.Bottom
}

// Overlaps reports whether two regions share any area.
func (r Region) Overlaps(o Region) bool {
	return r.Left < o.Right && o.Left < r.Right && r.Top < o.Bottom && o.Top < r.Bottom
}

// TextMatch is the result of a successful text recognition.
type TextMatch struct {
	// Text is the recognized text, narrowed to the requested pattern
	// when one was given.
	Text string `json:"text"`

	// Position anchors where the text was found on screen.
	Position Position `json:"position"`
}

// Button identifies a mouse button for press/release primitives.
type Button string

// Mouse button constants.
const (
	ButtonLeft  Button = "left"
	ButtonRight Button = "right"
)

// LocateOptions narrows a template search.
type LocateOptions struct {
	// Region restricts the search area. Nil searches the whole screen.
	Region *Region

	// Threshold is the minimum match confidence in [0,1]. Zero means
	// the backend default.
	Threshold float64
}

// TextOptions narrows a text recognition request.
type TextOptions struct {
	// Region restricts recognition. Nil reads the whole screen.
	Region *Region

	// Pattern is an optional regular expression; when set, the match
	// is the first pattern occurrence rather than the raw text.
	Pattern string
}

// Perception locates templates and recognizes text on screen.
type Perception interface {
	// Locate searches for the named target template. The boolean is
	// false on a clean miss.
	Locate(ctx context.Context, target string, opts LocateOptions) (Position, bool, error)

	// RecognizeText reads on-screen text. The boolean is false when
	// nothing (or nothing matching the pattern) was recognized.
	RecognizeText(ctx context.Context, opts TextOptions) (TextMatch, bool, error)
}

// Actuation issues input primitives to the game.
type Actuation interface {
	// Click performs a single left click at the position.
	Click(ctx context.Context, pos Position) error

	// PressKey taps a key (down then up).
	PressKey(ctx context.Context, key string) error

	// KeyDown holds a key until a matching KeyUp.
	KeyDown(ctx context.Context, key string) error

	// KeyUp releases a held key.
	KeyUp(ctx context.Context, key string) error

	// MouseDown holds a mouse button until a matching MouseUp.
	MouseDown(ctx context.Context, button Button) error

	// MouseUp releases a held mouse button.
	MouseUp(ctx context.Context, button Button) error
}

// Ports bundles perception and actuation, the full capability surface
// an executor works against.
type Ports interface {
	Perception
	Actuation
}
