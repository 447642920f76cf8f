package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNew(t *testing.T) {
	cam := New(1280, 720, 20)

	if cam.Position != (r3.Vec{Z: 20}) {
		t.Errorf("expected camera at (0, 0, 20), got %v", cam.Position)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
	if cam.Lerp != 0.5 || cam.MinDistance != 50 {
		t.Errorf("unexpected defaults: lerp %v min distance %v", cam.Lerp, cam.MinDistance)
	}
}

func TestFrame(t *testing.T) {
	tests := []struct {
		name         string
		tracked      []r3.Vec
		zoomOnly     []r3.Vec
		wantOK       bool
		wantCentroid r3.Vec
		wantFurthest float64
	}{
		{
			name:   "nothing tracked",
			wantOK: false,
		},
		{
			name:         "single fish",
			tracked:      []r3.Vec{{X: 3, Y: 4}},
			wantOK:       true,
			wantCentroid: r3.Vec{X: 3, Y: 4},
		},
		{
			name:         "two tracked",
			tracked:      []r3.Vec{{X: -10}, {X: 10}},
			wantOK:       true,
			wantFurthest: 10,
		},
		{
			name:         "zoom-only widens but does not pan",
			tracked:      []r3.Vec{{}},
			zoomOnly:     []r3.Vec{{X: 30, Y: 40}},
			wantOK:       true,
			wantFurthest: 50,
		},
		{
			name:     "zoom-only alone is not enough",
			zoomOnly: []r3.Vec{{X: 1}},
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := Frame(tt.tracked, tt.zoomOnly)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if r3.Norm(r3.Sub(f.Centroid, tt.wantCentroid)) > 1e-9 {
				t.Errorf("centroid %v, want %v", f.Centroid, tt.wantCentroid)
			}
			if !near(f.Furthest, tt.wantFurthest) {
				t.Errorf("furthest %v, want %v", f.Furthest, tt.wantFurthest)
			}
		})
	}
}

func TestGoalMinimumDistance(t *testing.T) {
	cam := New(1280, 720, 20)

	// Single fish: spread is zero so the minimum distance applies
	goal := cam.Goal(Framing{Centroid: r3.Vec{X: 5, Y: 6}})
	if goal != (r3.Vec{X: 5, Y: 6, Z: 50}) {
		t.Errorf("expected goal (5, 6, 50), got %v", goal)
	}

	// Wide school: scale applies
	goal = cam.Goal(Framing{Furthest: 100})
	if !near(goal.Z, 244.948974278) {
		t.Errorf("expected goal height ~244.95, got %v", goal.Z)
	}

	cam.SetZoom(2)
	goal = cam.Goal(Framing{Furthest: 100})
	if !near(goal.Z, 489.897948556) {
		t.Errorf("expected zoomed goal height ~489.90, got %v", goal.Z)
	}
}

func TestUpdateLerpsHalfway(t *testing.T) {
	cam := New(1280, 720, 20)

	// Single fish at (10, 0): target (10, 0, 50), lerp 0.5 from (0, 0, 20)
	cam.Update(Framing{Centroid: r3.Vec{X: 10}})
	want := r3.Vec{X: 5, Z: 35}
	if r3.Norm(r3.Sub(cam.Position, want)) > 1e-9 {
		t.Errorf("expected %v after one update, got %v", want, cam.Position)
	}
	if cam.Target != (r3.Vec{X: 5}) {
		t.Errorf("expected target below camera, got %v", cam.Target)
	}

	// Converges on repeated updates
	for i := 0; i < 60; i++ {
		cam.Update(Framing{Centroid: r3.Vec{X: 10}})
	}
	if r3.Norm(r3.Sub(cam.Position, r3.Vec{X: 10, Z: 50})) > 1e-6 {
		t.Errorf("expected convergence to (10, 0, 50), got %v", cam.Position)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, 20)
	cam.Position = r3.Vec{X: 12, Y: -7, Z: 80}

	testCases := []struct{ sx, sy float64 }{
		{640, 360},  // center
		{100, 100},  // top-left
		{1200, 600}, // near bottom-right
	}

	for _, tc := range testCases {
		w := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(w)
		if !near(sx, tc.sx) || !near(sy, tc.sy) {
			t.Errorf("roundtrip failed: (%f,%f) -> %v -> (%f,%f)", tc.sx, tc.sy, w, sx, sy)
		}
	}

	center := cam.ScreenToWorld(640, 360)
	if !near(center.X, 12) || !near(center.Y, -7) {
		t.Errorf("viewport center should map below the camera, got %v", center)
	}
	up := cam.ScreenToWorld(640, 0)
	if up.Y <= -7 {
		t.Errorf("top of screen should be +Y, got %v", up)
	}
}

func TestRayHitsScreenToWorld(t *testing.T) {
	cam := New(1280, 720, 20)
	cam.Position = r3.Vec{X: 3, Y: 4, Z: 60}

	origin, dir := cam.Ray(1000, 200)
	tHit := -origin.Z / dir.Z
	hit := r3.Add(origin, r3.Scale(tHit, dir))
	want := cam.ScreenToWorld(1000, 200)
	if r3.Norm(r3.Sub(hit, want)) > 1e-9 {
		t.Errorf("ray hit %v, want %v", hit, want)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(1280, 720, 20)

	cam.SetZoom(100)
	if cam.Zoom != cam.MaxZoom {
		t.Errorf("expected zoom clamped to %v, got %v", cam.MaxZoom, cam.Zoom)
	}
	cam.ZoomBy(0.0001)
	if cam.Zoom != cam.MinZoom {
		t.Errorf("expected zoom clamped to %v, got %v", cam.MinZoom, cam.Zoom)
	}
	cam.Reset()
	if cam.Zoom != 1 {
		t.Errorf("expected zoom reset to 1, got %v", cam.Zoom)
	}
}
