package renderer

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/game"
)

func frameAt(tick int32, agents ...game.AgentView) game.Frame {
	return game.Frame{Tick: tick, Agents: agents}
}

func TestWakeBuffer(t *testing.T) {
	b := NewWakeBuffer(3)

	for i := int32(1); i <= 5; i++ {
		b.Record(frameAt(i,
			game.AgentView{ID: 1, Position: r3.Vec{X: float64(i)}},
			game.AgentView{ID: 2, Position: r3.Vec{Y: float64(i)}},
		))
	}

	got := b.Points(1)
	want := []r3.Vec{{X: 5}, {X: 4}, {X: 3}}
	if len(got) != len(want) {
		t.Fatalf("Points(1) has %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Points(1)[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	// Fish 2 vanishes from the next frame
	b.Record(frameAt(6, game.AgentView{ID: 1, Position: r3.Vec{X: 6}}))
	if b.Len() != 1 {
		t.Errorf("Len = %d after fish 2 left, want 1", b.Len())
	}
	if b.Points(2) != nil {
		t.Error("fish 2 should have no wake")
	}

	// A paused frame repeats the position and adds nothing
	b.Record(frameAt(6, game.AgentView{ID: 1, Position: r3.Vec{X: 6}}))
	if got := b.Points(1); got[0] != (r3.Vec{X: 6}) || got[1] != (r3.Vec{X: 5}) {
		t.Errorf("paused frame changed the wake: %v", got)
	}

	b.Reset()
	if b.Len() != 0 {
		t.Errorf("Len after Reset = %d", b.Len())
	}
}

func TestWakeFade(t *testing.T) {
	n := 5
	prev := float32(2)
	for i := 0; i < n-1; i++ {
		f := wakeFade(i, n)
		if f < 0 || f > 1 {
			t.Errorf("wakeFade(%d,%d) = %v out of [0,1]", i, n, f)
		}
		if f >= prev {
			t.Errorf("wakeFade(%d,%d) = %v, not below previous %v", i, n, f, prev)
		}
		prev = f
	}
	if wakeFade(0, 1) != 0 {
		t.Error("single point wake should be invisible")
	}
}

func TestGroupColor(t *testing.T) {
	player := GroupColor(game.AgentView{Player: true, Grouped: true})
	school := GroupColor(game.AgentView{Grouped: true, GroupID: 0})
	alone := GroupColor(game.AgentView{})
	other := GroupColor(game.AgentView{Grouped: true, GroupID: 3})
	another := GroupColor(game.AgentView{Grouped: true, GroupID: 4})

	if player == school || school == alone || other == alone {
		t.Errorf("player %v, school %v, alone %v, other %v should differ", player, school, alone, other)
	}
	if other == another {
		t.Errorf("groups 3 and 4 share color %v", other)
	}
	if again := GroupColor(game.AgentView{Grouped: true, GroupID: 3}); again != other {
		t.Errorf("group color not stable: %v then %v", other, again)
	}
}

func TestCameraFor(t *testing.T) {
	f := game.Frame{
		CameraPosition: r3.Vec{X: 1, Y: 2, Z: 80},
		CameraTarget:   r3.Vec{X: 1, Y: 2},
	}
	cam := CameraFor(f, 45)
	if cam.Position.Z != 80 || cam.Target.Z != 0 || cam.Position.X != 1 || cam.Target.Y != 2 {
		t.Errorf("camera = %+v", cam)
	}
	if cam.Up.Y != 1 || cam.Fovy != 45 {
		t.Errorf("camera up %+v fovy %v, want +Y and 45", cam.Up, cam.Fovy)
	}
}

func TestGridSpacing(t *testing.T) {
	tests := []struct {
		dist float64
		want float64
	}{
		{20, 1},
		{50, 5},
		{100, 5},
		{150, 10},
		{1000, 50},
		{0, 1},
	}
	for _, tt := range tests {
		if got := gridSpacing(tt.dist); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("gridSpacing(%v) = %v, want %v", tt.dist, got, tt.want)
		}
	}
}

func TestDepthFactor(t *testing.T) {
	tests := []struct {
		dist, min float64
		want      float32
	}{
		{20, 50, 0},
		{50, 50, 0},
		{100, 50, 0.25},
		{50 * 16, 50, 1},
		{50 * 64, 50, 1},
	}
	for _, tt := range tests {
		if got := depthFactor(tt.dist, tt.min); math.Abs(float64(got-tt.want)) > 1e-6 {
			t.Errorf("depthFactor(%v, %v) = %v, want %v", tt.dist, tt.min, got, tt.want)
		}
	}
}

func TestTailOffset(t *testing.T) {
	if got := tailOffset(0, 3.7); got != 0 {
		t.Errorf("still fish tail offset = %v, want 0", got)
	}
	for _, ts := range []float64{0.01, 0.5, 1.3} {
		if off := tailOffset(1, ts); math.Abs(off) > tailSwing+1e-12 {
			t.Errorf("tailOffset(1, %v) = %v exceeds swing %v", ts, off, tailSwing)
		}
	}
}
