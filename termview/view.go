// Package termview draws the school top-down in a terminal and steers the
// player with the mouse.
package termview

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/game"
)

// cellAspect is the height/width ratio of a terminal cell.
const cellAspect = 2.0

// Zoom step applied by the +/- keys.
const zoomStep = 1.25

var (
	styleDefault = tcell.StyleDefault
	stylePlayer  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleSchool  = tcell.StyleDefault.Foreground(tcell.ColorLime)
	styleAlone   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTarget  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorTeal)
	styleJoined  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
)

// Other schools cycle through these colors by group id.
var groupColors = []tcell.Color{
	tcell.ColorAqua,
	tcell.ColorFuchsia,
	tcell.ColorOrange,
	tcell.ColorBlue,
	tcell.ColorPurple,
	tcell.ColorOlive,
}

// View renders frames onto a tcell screen and turns terminal input into
// game commands.
type View struct {
	screen tcell.Screen
	game   *game.Game

	width, height int
	mouseHeld     bool

	// OnFrame, if set, receives every frame after it is drawn
	OnFrame func(game.Frame)
}

// New creates a view over an initialized screen.
func New(screen tcell.Screen, g *game.Game) *View {
	w, h := screen.Size()
	return &View{screen: screen, game: g, width: w, height: h}
}

// scale returns how many terminal rows one world unit spans at the
// camera's current height.
func (v *View) scale(camZ float64) float64 {
	halfHeight := camZ * math.Tan(v.game.Camera().FovY*math.Pi/360)
	if halfHeight <= 0 || v.height <= 0 {
		return 1
	}
	return float64(v.height) / 2 / halfHeight
}

// Project maps a world point to the terminal cell under it.
// ok is false when the point falls off screen.
func (v *View) Project(p r3.Vec, cam r3.Vec) (x, y int, ok bool) {
	s := v.scale(cam.Z)
	fx := float64(v.width)/2 + (p.X-cam.X)*s*cellAspect
	fy := float64(v.height)/2 - (p.Y-cam.Y)*s
	x, y = int(math.Floor(fx)), int(math.Floor(fy))
	return x, y, x >= 0 && x < v.width && y >= 0 && y < v.height
}

// Unproject returns the steering-plane point at the center of a cell.
func (v *View) Unproject(x, y int, cam r3.Vec) r3.Vec {
	s := v.scale(cam.Z)
	return r3.Vec{
		X: cam.X + (float64(x)+0.5-float64(v.width)/2)/(s*cellAspect),
		Y: cam.Y - (float64(y)+0.5-float64(v.height)/2)/s,
		Z: v.game.Config().Steering.PlaneZ,
	}
}

// headingGlyph picks an arrow for the fish's facing in the ground plane.
func headingGlyph(forward r3.Vec) rune {
	if forward.X == 0 && forward.Y == 0 {
		return 'o'
	}
	angle := math.Atan2(forward.Y, forward.X)
	glyphs := []rune{'→', '↗', '↑', '↖', '←', '↙', '↓', '↘'}
	idx := int(math.Round(angle/(math.Pi/4))) & 7
	return glyphs[idx]
}

func agentStyle(a game.AgentView) tcell.Style {
	switch {
	case a.Player:
		return stylePlayer
	case !a.Grouped:
		return styleAlone
	case a.GroupID == 0:
		return styleSchool
	default:
		return styleDefault.Foreground(groupColors[int(a.GroupID)%len(groupColors)])
	}
}

// Draw paints one frame and the status line.
func (v *View) Draw(f game.Frame) {
	v.screen.Clear()

	if f.Target != nil {
		if x, y, ok := v.Project(*f.Target, f.CameraPosition); ok {
			v.screen.SetContent(x, y, 'x', nil, styleTarget)
		}
	}

	// Player last so it is never hidden under a schoolmate
	var player *game.AgentView
	for i := range f.Agents {
		a := &f.Agents[i]
		if a.Player {
			player = a
			continue
		}
		v.drawAgent(*a, f.CameraPosition)
	}
	if player != nil {
		v.drawAgent(*player, f.CameraPosition)
	}

	v.drawStatus(f)
	v.screen.Show()
}

func (v *View) drawAgent(a game.AgentView, cam r3.Vec) {
	x, y, ok := v.Project(a.Position, cam)
	if !ok {
		return
	}
	r := headingGlyph(a.Forward)
	if a.Player {
		r = '@'
	}
	v.screen.SetContent(x, y, r, nil, agentStyle(a))
}

func (v *View) drawStatus(f game.Frame) {
	if v.height == 0 {
		return
	}
	state := ""
	if v.game.Paused() {
		state = " PAUSED"
	}
	line := fmt.Sprintf(" t=%.1fs  school %d  alone %d  schools %d  zoom %.2f%s  [mouse] steer [space] pause [+/-] zoom [q] quit",
		f.SimTime, f.PlayerGroupSize, f.Ungrouped, f.Groups, v.game.Camera().Zoom, state)

	style := styleStatus
	if f.Joined {
		style = styleJoined
	}
	row := v.height - 1
	i := 0
	for _, r := range line {
		if i >= v.width {
			break
		}
		v.screen.SetContent(i, row, r, nil, style)
		i++
	}
	for ; i < v.width; i++ {
		v.screen.SetContent(i, row, ' ', nil, style)
	}
}

// HandleEvent applies one terminal event. It returns false when the user
// asked to quit.
func (v *View) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.width, v.height = ev.Size()
		v.screen.Sync()

	case *tcell.EventMouse:
		x, y := ev.Position()
		if ev.Buttons()&tcell.Button1 != 0 {
			v.mouseHeld = true
			t := v.Unproject(x, y, v.game.Camera().Position)
			v.game.SetTarget(&t)
		} else if v.mouseHeld {
			v.mouseHeld = false
			v.game.SetTarget(nil)
		}

	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				v.game.TogglePause()
			case '+', '=':
				v.game.Camera().ZoomBy(1 / zoomStep)
			case '-', '_':
				v.game.Camera().ZoomBy(zoomStep)
			case '0':
				v.game.Camera().Reset()
			case '.':
				v.game.SetStepsPerUpdate(v.game.StepsPerUpdate() + 1)
			case ',':
				v.game.SetStepsPerUpdate(v.game.StepsPerUpdate() - 1)
			}
		}
	}
	return true
}

// Run drives the game at the given frame interval until ctx is cancelled
// or the user quits. The screen is not finalized here.
func (v *View) Run(ctx context.Context, interval time.Duration) error {
	v.screen.EnableMouse()
	defer v.screen.DisableMouse()

	eventChan := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev := <-eventChan:
			if !v.HandleEvent(ev) {
				return nil
			}

		case now := <-ticker.C:
			v.game.Update(now.Sub(last).Seconds())
			last = now

			f := v.game.Frame()
			v.Draw(f)
			v.game.RecordFrame()
			if v.OnFrame != nil {
				v.OnFrame(f)
			}
		}
	}
}
