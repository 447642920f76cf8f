package ui

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/shoal/systems"
)

func TestOverlayDefaults(t *testing.T) {
	reg := NewOverlayRegistry()

	tests := []struct {
		id   OverlayID
		want bool
	}{
		{OverlayGroupColors, true},
		{OverlayWakes, true},
		{OverlayGrid, true},
		{OverlayTarget, true},
		{OverlayHeadings, false},
		{OverlayGroupRadius, false},
		{OverlayPerf, false},
		{OverlayTuning, false},
	}
	for _, tt := range tests {
		if got := reg.IsEnabled(tt.id); got != tt.want {
			t.Errorf("IsEnabled(%s) = %v, want %v", tt.id, got, tt.want)
		}
	}

	if cats := reg.Categories(); len(cats) != 2 || cats[0] != "visual" || cats[1] != "debug" {
		t.Errorf("Categories = %v, want [visual debug]", cats)
	}
}

func TestOverlayKeyPress(t *testing.T) {
	reg := NewOverlayRegistry()

	id, state, ok := reg.HandleKeyPress(rl.KeyH)
	if !ok || id != OverlayHeadings || !state {
		t.Fatalf("HandleKeyPress(H) = %s %v %v, want headings on", id, state, ok)
	}
	if _, state, _ := reg.HandleKeyPress(rl.KeyH); state {
		t.Error("second press should turn headings off")
	}
	if _, _, ok := reg.HandleKeyPress(rl.KeyZ); ok {
		t.Error("unbound key should not toggle anything")
	}
}

func TestOverlayExclusive(t *testing.T) {
	reg := &OverlayRegistry{byID: map[OverlayID]OverlayDescriptor{}, enabled: map[OverlayID]bool{}}
	reg.Register(OverlayDescriptor{ID: "a", Exclusive: []OverlayID{"b"}})
	reg.Register(OverlayDescriptor{ID: "b", Exclusive: []OverlayID{"a"}})

	reg.SetEnabled("a", true)
	reg.Toggle("b")
	if reg.IsEnabled("a") || !reg.IsEnabled("b") {
		t.Errorf("a=%v b=%v, want only b", reg.IsEnabled("a"), reg.IsEnabled("b"))
	}
	if reg.Toggle("missing") {
		t.Error("unknown overlay should report false")
	}
}

func TestApplyTuning(t *testing.T) {
	sliders := DefaultTuningSliders()
	p := systems.ForceParams{
		Cohesion:           0.5,
		Alignment:          0.25,
		Wander:             15,
		SeparationStrength: 50,
		SeparationRadius:   2,
		Friction:           0.05,
		MaxSpeed:           20,
		GroupDistance:      10,
	}

	current := make([]float32, len(sliders))
	for i, s := range sliders {
		current[i] = float32(*s.Field(&p))
	}
	if _, changed := ApplyTuning(sliders, p, current); changed {
		t.Error("unchanged sliders should report no change")
	}

	edited := append([]float32(nil), current...)
	edited[0] = 1.5  // cohesion
	edited[2] = 1000 // wander, above the slider max
	next, changed := ApplyTuning(sliders, p, edited)
	if !changed {
		t.Fatal("edited sliders should report a change")
	}
	if next.Cohesion != 1.5 {
		t.Errorf("Cohesion = %v, want 1.5", next.Cohesion)
	}
	if next.Wander != float64(sliders[2].Max) {
		t.Errorf("Wander = %v, want clamped to %v", next.Wander, sliders[2].Max)
	}
	if p.Cohesion != 0.5 {
		t.Error("ApplyTuning must not modify its input")
	}
}

func TestBarFraction(t *testing.T) {
	tests := []struct {
		value float32
		rng   FieldRange
		want  float32
	}{
		{0.5, DefaultRange(), 0.5},
		{-1, DefaultRange(), 0},
		{3, DefaultRange(), 1},
		{15, FieldRange{Min: 10, Max: 20}, 0.5},
		{1, FieldRange{Min: 1, Max: 1}, 0},
	}
	for _, tt := range tests {
		if got := barFraction(tt.value, tt.rng); got != tt.want {
			t.Errorf("barFraction(%v, %+v) = %v, want %v", tt.value, tt.rng, got, tt.want)
		}
	}
}

func TestSchoolSection(t *testing.T) {
	data := HUDData{Fish: 40, PlayerGroupSize: 10, Groups: 3, Ungrouped: 12, Zoom: 1, CameraDistance: 60}

	if got := data.PlayerShare(); got != 0.25 {
		t.Errorf("PlayerShare = %v, want 0.25", got)
	}
	if got := (HUDData{}).PlayerShare(); got != 0 {
		t.Errorf("empty PlayerShare = %v, want 0", got)
	}

	r := NewRenderer()
	lh := r.Theme.LineHeight
	// header + 4 text rows + 1 bar + spacer + trailing gap
	want := lh + 4*lh + (lh + 2) + 6 + 4
	if got := r.SectionHeight(schoolSection, data); got != want {
		t.Errorf("SectionHeight = %d, want %d", got, want)
	}

	if got := fieldText(schoolSection.Fields[0], data); got != "10" {
		t.Errorf("members text = %q, want 10", got)
	}
	if got := fieldText(schoolSection.Fields[5], data); got != "60 (zoom 1.00)" {
		t.Errorf("camera text = %q", got)
	}
}
