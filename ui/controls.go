package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/shoal/systems"
)

// ControlsPanel renders the overlay toggle legend.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the controls panel and returns the Y below it.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry) int32 {
	if !c.visible {
		return c.y
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	categories := overlays.Categories()
	rows := 0
	for _, cat := range categories {
		rows += len(overlays.ByCategory(cat)) + 1
	}
	panelHeight := int32(rows)*lineHeight + int32(len(categories))*4 + padding*2 + lineHeight + 4

	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	y := c.y + padding
	rl.DrawText("Overlays", c.x+padding, y, 16, rl.White)
	y += lineHeight + 4

	for _, category := range categories {
		rl.DrawText(categoryLabel(category), c.x+padding, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight
		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(c.x+padding, y, desc, overlays.IsEnabled(desc.ID), c.width-padding*2)
			y += lineHeight
		}
		y += 4
	}
	return c.y + panelHeight
}

func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 70, G: 80, B: 90, A: 255}
	nameColor := r.Theme.LabelColor
	if enabled {
		statusColor = r.Theme.BarFill
		nameColor = rl.White
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Gray)
	}
}

func categoryLabel(cat string) string {
	switch cat {
	case "visual":
		return "Visual"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}

// TuningSlider binds one slider to a force constant.
type TuningSlider struct {
	Label    string
	Min, Max float32
	Field    func(p *systems.ForceParams) *float64
}

// DefaultTuningSliders returns the sliders shown in the tuning panel.
func DefaultTuningSliders() []TuningSlider {
	return []TuningSlider{
		{Label: "Cohesion", Min: 0, Max: 3, Field: func(p *systems.ForceParams) *float64 { return &p.Cohesion }},
		{Label: "Alignment", Min: 0, Max: 2, Field: func(p *systems.ForceParams) *float64 { return &p.Alignment }},
		{Label: "Wander", Min: 0, Max: 40, Field: func(p *systems.ForceParams) *float64 { return &p.Wander }},
		{Label: "Separation", Min: 0, Max: 200, Field: func(p *systems.ForceParams) *float64 { return &p.SeparationStrength }},
		{Label: "Sep. radius", Min: 0.5, Max: 10, Field: func(p *systems.ForceParams) *float64 { return &p.SeparationRadius }},
		{Label: "Friction", Min: 0, Max: 0.5, Field: func(p *systems.ForceParams) *float64 { return &p.Friction }},
		{Label: "Max speed", Min: 1, Max: 60, Field: func(p *systems.ForceParams) *float64 { return &p.MaxSpeed }},
		{Label: "Group dist.", Min: 1, Max: 40, Field: func(p *systems.ForceParams) *float64 { return &p.GroupDistance }},
	}
}

// TuningPanel lets the user adjust force constants while the school swims.
type TuningPanel struct {
	renderer *Renderer
	sliders  []TuningSlider
	x, y     int32
	width    int32
	defaults systems.ForceParams
}

// NewTuningPanel creates a tuning panel. defaults is what Reset restores.
func NewTuningPanel(x, y, width int32, defaults systems.ForceParams) *TuningPanel {
	return &TuningPanel{
		renderer: NewRenderer(),
		sliders:  DefaultTuningSliders(),
		x:        x,
		y:        y,
		width:    width,
		defaults: defaults,
	}
}

// SetPosition updates the panel position.
func (t *TuningPanel) SetPosition(x, y int32) {
	t.x = x
	t.y = y
}

// Height returns the panel height in pixels.
func (t *TuningPanel) Height() int32 {
	return int32(len(t.sliders))*34 + 90
}

// Draw renders the sliders for p and returns the edited parameters and
// whether anything changed.
func (t *TuningPanel) Draw(p systems.ForceParams) (systems.ForceParams, bool) {
	r := t.renderer
	padding := r.Theme.Padding

	r.DrawPanel(t.x, t.y, t.width, t.Height())

	y := t.y + padding
	rl.DrawText("Forces", t.x+padding, y, 16, rl.White)
	y += r.Theme.LineHeight + 6

	sliderW := float32(t.width - padding*2 - 60)
	values := make([]float32, len(t.sliders))
	for i, s := range t.sliders {
		rl.DrawText(s.Label, t.x+padding, y, r.Theme.FontSize, r.Theme.LabelColor)
		y += 14
		current := float32(*s.Field(&p))
		values[i] = gui.SliderBar(
			rl.Rectangle{X: float32(t.x + padding), Y: float32(y), Width: sliderW, Height: 14},
			"", "",
			current, s.Min, s.Max,
		)
		rl.DrawText(fmt.Sprintf("%.2f", values[i]), t.x+padding+int32(sliderW)+8, y, r.Theme.FontSize, r.Theme.ValueColor)
		y += 20
	}

	suppress := gui.CheckBox(
		rl.Rectangle{X: float32(t.x + padding), Y: float32(y + 4), Width: 14, Height: 14},
		"Grouped fish stop wandering",
		p.SuppressGroupedWander,
	)
	y += 28

	reset := gui.Button(rl.Rectangle{X: float32(t.x + padding), Y: float32(y), Width: 100, Height: 24}, "Reset")
	if reset {
		return t.defaults, p != t.defaults
	}

	next, changed := ApplyTuning(t.sliders, p, values)
	if suppress != p.SuppressGroupedWander {
		next.SuppressGroupedWander = suppress
		changed = true
	}
	return next, changed
}

// ApplyTuning writes slider values into a copy of p, clamped to each
// slider's range. It reports whether any value differs from p.
func ApplyTuning(sliders []TuningSlider, p systems.ForceParams, values []float32) (systems.ForceParams, bool) {
	next := p
	changed := false
	for i, s := range sliders {
		if i >= len(values) {
			break
		}
		v := min(max(values[i], s.Min), s.Max)
		field := s.Field(&next)
		if float32(*field) == v {
			continue
		}
		*field = float64(v)
		changed = true
	}
	return next, changed
}
