package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Standard overlay IDs.
const (
	OverlayGroupColors OverlayID = "group_colors"
	OverlayWakes       OverlayID = "wakes"
	OverlayGrid        OverlayID = "grid"
	OverlayTarget      OverlayID = "target"
	OverlayHeadings    OverlayID = "headings"
	OverlayGroupRadius OverlayID = "group_radius"
	OverlayPerf        OverlayID = "perf"
	OverlayTuning      OverlayID = "tuning"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID
	Name        string
	Description string
	Key         int32  // Keyboard key to toggle (0 = no key)
	KeyLabel    string // Key label for display (e.g., "C")
	Category    string // Grouping (e.g., "visual", "debug")
	Default     bool   // Enabled at startup
	Exclusive   []OverlayID
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with default overlays.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

func (r *OverlayRegistry) registerDefaults() {
	// Visual
	r.Register(OverlayDescriptor{
		ID:          OverlayGroupColors,
		Name:        "School Colors",
		Description: "Tint each school its own color",
		Key:         rl.KeyC,
		KeyLabel:    "C",
		Category:    "visual",
		Default:     true,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayWakes,
		Name:        "Wakes",
		Description: "Fading trails behind every fish",
		Key:         rl.KeyW,
		KeyLabel:    "W",
		Category:    "visual",
		Default:     true,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayGrid,
		Name:        "Sea Floor Grid",
		Description: "Reference grid on the steering plane",
		Key:         rl.KeyG,
		KeyLabel:    "G",
		Category:    "visual",
		Default:     true,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayTarget,
		Name:        "Cursor Target",
		Description: "Marker where the pointer ray meets the plane",
		Key:         rl.KeyX,
		KeyLabel:    "X",
		Category:    "visual",
		Default:     true,
	})

	// Debug
	r.Register(OverlayDescriptor{
		ID:          OverlayHeadings,
		Name:        "Headings",
		Description: "Forward axis of each fish",
		Key:         rl.KeyH,
		KeyLabel:    "H",
		Category:    "debug",
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayGroupRadius,
		Name:        "Group Distance",
		Description: "Ring at the grouping distance around the player",
		Key:         rl.KeyR,
		KeyLabel:    "R",
		Category:    "debug",
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayPerf,
		Name:        "Perf Panel",
		Description: "Per-phase tick timing",
		Key:         rl.KeyF3,
		KeyLabel:    "F3",
		Category:    "debug",
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayTuning,
		Name:        "Tuning Panel",
		Description: "Sliders for the force constants",
		Key:         rl.KeyTab,
		KeyLabel:    "Tab",
		Category:    "debug",
	})
}

// Register adds an overlay to the registry.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = desc.Default
}

// Toggle switches an overlay on/off and handles exclusivity.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	newState := !r.enabled[id]
	r.SetEnabled(id, newState)
	return newState
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}
	r.enabled[id] = enabled
	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// All returns all registered overlays in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// ByCategory returns overlays filtered by category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns all unique categories in order.
func (r *OverlayRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, desc := range r.descriptors {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeyPress checks if a key corresponds to an overlay toggle.
// Returns the overlay ID, its new state, and whether a toggle occurred.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key != 0 && desc.Key == key {
			return desc.ID, r.Toggle(desc.ID), true
		}
	}
	return "", false, false
}
