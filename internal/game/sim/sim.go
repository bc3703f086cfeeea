// Package sim provides a scripted, deterministic implementation of the
// game capability ports. Tests and dry runs place targets and screen
// text in a World, run chains against it, and assert on the input
// journal afterwards. Combined with a fake clock the whole schedule
// runs instantly.
package sim

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/averlon/questline/internal/clock"
	"github.com/averlon/questline/internal/game"
)

// Event is one recorded actuation call.
type Event struct {
	// Kind is the primitive name: click, press_key, key_down, key_up,
	// mouse_down, mouse_up.
	Kind string

	// Key holds the key for key primitives.
	Key string

	// Button holds the button for mouse primitives.
	Button game.Button

	// Pos holds the position for click events.
	Pos game.Position

	// At is the world clock time of the event.
	At time.Time
}

// target is the scripted state of one locatable template.
type target struct {
	pos          game.Position
	appearAt     time.Time
	present      bool
	hits         int
	hitsLeft     int
	engaged      bool
	engageMarker string
	respawn      bool
	respawnDelay time.Duration
	respawnAt    time.Time
}

// textPatch is scripted screen text covering a region.
type textPatch struct {
	region game.Region
	text   string
}

// World is a scripted game screen implementing game.Ports.
// All methods are safe for concurrent use, though chains drive it from
// a single goroutine.
type World struct {
	mu      sync.Mutex
	clk     clock.Clock
	targets map[string]*target
	markers map[string]int
	texts   []textPatch
	journal []Event
	failing error
}

// NewWorld creates an empty scripted world on the given clock.
func NewWorld(clk clock.Clock) *World {
	return &World{
		clk:     clk,
		targets: make(map[string]*target),
		markers: make(map[string]int),
	}
}

// TargetOption customizes a placed target.
type TargetOption func(*target)

// At places the target at a fixed screen position.
func At(x, y int) TargetOption {
	return func(t *target) {
		t.pos = game.Position{X: x, Y: y}
	}
}

// AppearAfter delays the target's first appearance by d of world time.
func AppearAfter(d time.Duration) TargetOption {
	return func(t *target) {
		t.appearAt = t.appearAt.Add(d)
	}
}

// Hits makes the target destructible: once engaged by a click, each
// key press lands a hit; at zero hits the target disappears.
func Hits(n int) TargetOption {
	return func(t *target) {
		t.hits = n
		t.hitsLeft = n
	}
}

// EngageMarker names a marker target (e.g. a combat hp bar) that is
// present exactly while this target is engaged.
func EngageMarker(name string) TargetOption {
	return func(t *target) {
		t.engageMarker = name
	}
}

// Respawn makes a destructible target reappear d after it is destroyed,
// with its hits refilled.
func Respawn(d time.Duration) TargetOption {
	return func(t *target) {
		t.respawn = true
		t.respawnDelay = d
	}
}

// PlaceTarget scripts a locatable target into the world.
func (w *World) PlaceTarget(name string, opts ...TargetOption) {
	w.mu.Lock()
	defer w.mu.Unlock()
	t := &target{pos: game.Position{X: 400, Y: 300}, appearAt: w.clk.Now(), present: true}
	for _, opt := range opts {
		opt(t)
	}
	w.targets[name] = t
}

// RemoveTarget deletes a target from the world.
func (w *World) RemoveTarget(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.targets, name)
}

// SetText scripts screen text covering the given region.
func (w *World) SetText(region game.Region, text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.texts {
		if w.texts[i].region == region {
			w.texts[i].text = text
			return
		}
	}
	w.texts = append(w.texts, textPatch{region: region, text: text})
}

// ClearText removes all scripted screen text.
func (w *World) ClearText() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.texts = nil
}

// FailActuation makes every subsequent actuation call return err,
// simulating a broken input transport. Pass nil to restore.
func (w *World) FailActuation(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failing = err
}

// Journal returns a copy of all recorded actuation events in order.
func (w *World) Journal() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Event, len(w.journal))
	copy(out, w.journal)
	return out
}

// Presses returns the pressed keys in order, a common test assertion.
func (w *World) Presses() []string {
	var keys []string
	for _, ev := range w.Journal() {
		if ev.Kind == "press_key" {
			keys = append(keys, ev.Key)
		}
	}
	return keys
}

// visible reports whether a target is currently on screen, advancing
// respawn state as a side effect. Caller holds the lock.
func (w *World) visible(t *target) bool {
	now := w.clk.Now()
	if !t.present && t.respawn && !t.respawnAt.IsZero() && !now.Before(t.respawnAt) {
		t.present = true
		t.hitsLeft = t.hits
		t.respawnAt = time.Time{}
	}
	return t.present && !now.Before(t.appearAt)
}

// Locate implements game.Perception.
func (w *World) Locate(_ context.Context, name string, opts game.LocateOptions) (game.Position, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if n := w.markers[name]; n > 0 {
		return game.Position{}, true, nil
	}
	t, ok := w.targets[name]
	if !ok || !w.visible(t) {
		return game.Position{}, false, nil
	}
	if opts.Region != nil && !opts.Region.Contains(t.pos) {
		return game.Position{}, false, nil
	}
	return t.pos, true, nil
}

// RecognizeText implements game.Perception. Patches intersecting the
// requested region are joined with newlines; a pattern narrows the
// result to its first match.
func (w *World) RecognizeText(_ context.Context, opts game.TextOptions) (game.TextMatch, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var text string
	var anchor game.Position
	for _, patch := range w.texts {
		if opts.Region != nil && !opts.Region.Overlaps(patch.region) {
			continue
		}
		if text == "" {
			anchor = game.Position{X: patch.region.Left, Y: patch.region.Top}
			text = patch.text
		} else {
			text += "\n" + patch.text
		}
	}
	if text == "" {
		return game.TextMatch{}, false, nil
	}
	if opts.Pattern != "" {
		re, err := regexp.Compile(opts.Pattern)
		if err != nil {
			return game.TextMatch{}, false, err
		}
		match := re.FindString(text)
		if match == "" {
			return game.TextMatch{}, false, nil
		}
		text = match
	}
	return game.TextMatch{Text: text, Position: anchor}, true, nil
}

// record appends a journal event. Caller holds the lock.
func (w *World) record(kind, key string, button game.Button, pos game.Position) {
	w.journal = append(w.journal, Event{Kind: kind, Key: key, Button: button, Pos: pos, At: w.clk.Now()})
}

// Click implements game.Actuation. Clicking a destructible target
// engages it and raises its engage marker.
func (w *World) Click(_ context.Context, pos game.Position) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failing != nil {
		return w.failing
	}
	w.record("click", "", "", pos)
	for _, t := range w.targets {
		if t.pos == pos && w.visible(t) && t.hits > 0 && !t.engaged {
			t.engaged = true
			if t.engageMarker != "" {
				w.markers[t.engageMarker]++
			}
		}
	}
	return nil
}

// PressKey implements game.Actuation. Each press lands one hit on every
// engaged target; a target at zero hits disengages and disappears.
func (w *World) PressKey(_ context.Context, key string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failing != nil {
		return w.failing
	}
	w.record("press_key", key, "", game.Position{})
	for _, t := range w.targets {
		if !t.engaged {
			continue
		}
		t.hitsLeft--
		if t.hitsLeft > 0 {
			continue
		}
		t.engaged = false
		t.present = false
		if t.engageMarker != "" && w.markers[t.engageMarker] > 0 {
			w.markers[t.engageMarker]--
		}
		if t.respawn {
			t.respawnAt = w.clk.Now().Add(t.respawnDelay)
		}
	}
	return nil
}

// KeyDown implements game.Actuation.
func (w *World) KeyDown(_ context.Context, key string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failing != nil {
		return w.failing
	}
	w.record("key_down", key, "", game.Position{})
	return nil
}

// KeyUp implements game.Actuation.
func (w *World) KeyUp(_ context.Context, key string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failing != nil {
		return w.failing
	}
	w.record("key_up", key, "", game.Position{})
	return nil
}

// MouseDown implements game.Actuation.
func (w *World) MouseDown(_ context.Context, button game.Button) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failing != nil {
		return w.failing
	}
	w.record("mouse_down", "", button, game.Position{})
	return nil
}

// MouseUp implements game.Actuation.
func (w *World) MouseUp(_ context.Context, button game.Button) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failing != nil {
		return w.failing
	}
	w.record("mouse_up", "", button, game.Position{})
	return nil
}

// Ensure World implements the full port surface.
var _ game.Ports = (*World)(nil)
