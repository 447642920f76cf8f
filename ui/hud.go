package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/shoal/systems"
	"github.com/pthm-cable/shoal/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title           string
	Fish            int
	PlayerGroupSize int
	Groups          int
	Ungrouped       int
	Tick            int32
	SimTime         float64
	Speed           int
	FPS             int32
	Paused          bool
	Zoom            float64
	CameraDistance  float64
	JoinFlash       float32 // 1 right after a join, fading to 0
}

// PlayerShare returns the fraction of all fish in the player's school.
func (d HUDData) PlayerShare() float32 {
	if d.Fish == 0 {
		return 0
	}
	return float32(d.PlayerGroupSize) / float32(d.Fish)
}

// schoolSection lays out the school summary panel.
var schoolSection = SectionDescriptor{
	ID:    "school",
	Title: "Your School",
	Fields: []FieldDescriptor{
		{ID: "size", Label: "Members", Widget: WidgetText, Format: "%.0f",
			Getter: func(d any) float32 { return float32(d.(HUDData).PlayerGroupSize) }},
		{ID: "share", Label: "Share", Widget: WidgetBar, Range: DefaultRange(),
			Getter: func(d any) float32 { return d.(HUDData).PlayerShare() }},
		{ID: "groups", Label: "Schools", Widget: WidgetText, Format: "%.0f",
			Getter: func(d any) float32 { return float32(d.(HUDData).Groups) }},
		{ID: "alone", Label: "Alone", Widget: WidgetText, Format: "%.0f",
			Getter: func(d any) float32 { return float32(d.(HUDData).Ungrouped) }},
		{ID: "spacer", Widget: WidgetSpacer},
		{ID: "camera", Label: "Camera", Widget: WidgetText,
			TextGetter: func(d any) string {
				h := d.(HUDData)
				return fmt.Sprintf("%.0f (zoom %.2f)", h.CameraDistance, h.Zoom)
			}},
	},
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Fish: %d | Tick: %d | Time: %.1fs | Speed: %dx | FPS: %d",
			data.Fish, data.Tick, data.SimTime, data.Speed, data.FPS),
		10, 35, 16, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 55, 16, rl.Yellow)

	r := h.renderer
	const x, y, width = int32(10), int32(80), int32(240)
	height := r.SectionHeight(schoolSection, data) + r.Theme.Padding*2
	r.DrawPanel(x, y, width, height)
	r.DrawSection(x+r.Theme.Padding, y+r.Theme.Padding, schoolSection, data, width-r.Theme.Padding*2)

	if data.JoinFlash > 0 {
		alpha := uint8(data.JoinFlash * 255)
		rl.DrawText("+ joined", x+width+10, y+r.Theme.Padding, 20, rl.Color{R: 255, G: 220, B: 90, A: alpha})
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase tick timing.
type PerfPanel struct {
	renderer *Renderer
	registry *systems.SystemRegistry
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32, registry *systems.SystemRegistry) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		registry: registry,
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x, y := p.x, p.y

	rl.DrawText("Tick Phases", x, y, 16, rl.White)
	y += 20
	rl.DrawText(fmt.Sprintf("Tick: %s (%.0f/s)", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond), x, y, 14, rl.Yellow)
	y += 16

	for _, phase := range telemetry.Phases {
		pct := stats.PhasePct[phase]
		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}

		name := phase
		if p.registry != nil {
			name = p.registry.GetName(phase)
		}
		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", name, stats.PhaseAvg[phase].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
