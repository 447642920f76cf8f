package systems

import (
	"sort"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/components"
)

type contactPair struct {
	a, b ecs.Entity
}

func canonicalPair(a, b ecs.Entity) contactPair {
	if b.ID() < a.ID() {
		a, b = b, a
	}
	return contactPair{a: a, b: b}
}

// ContactDetector gives every groupable agent a sensor sphere and reports
// pairs whose spheres started overlapping since the previous Detect.
type ContactDetector struct {
	radius float64
	grid   *SpatialGrid
	filter ecs.Filter2[components.Position, components.Group]

	bodies []groupBody
	prev   map[contactPair]struct{}
	cur    map[contactPair]struct{}
	events []ContactStarted
}

// NewContactDetector creates a detector with the given sensor radius.
func NewContactDetector(w *ecs.World, sensorRadius float64) *ContactDetector {
	return &ContactDetector{
		radius: sensorRadius,
		grid:   NewSpatialGrid(2 * sensorRadius),
		filter: *ecs.NewFilter2[components.Position, components.Group](w),
		prev:   make(map[contactPair]struct{}),
		cur:    make(map[contactPair]struct{}),
	}
}

// SetSensorRadius changes the sensor radius; the overlap set is kept.
func (d *ContactDetector) SetSensorRadius(r float64) {
	d.radius = r
	d.grid = NewSpatialGrid(2 * r)
}

// Detect returns the pairs that overlap now but did not on the previous call.
// The returned slice is reused by the next call.
func (d *ContactDetector) Detect() []ContactStarted {
	d.bodies = d.bodies[:0]
	d.grid.Clear()
	query := d.filter.Query()
	for query.Next() {
		pos, _ := query.Get()
		d.grid.Insert(len(d.bodies), pos.Vec)
		d.bodies = append(d.bodies, groupBody{e: query.Entity(), pos: pos.Vec})
	}

	clear(d.cur)
	d.events = d.events[:0]
	reach := 2 * d.radius
	reachSq := reach * reach
	for i := range d.bodies {
		a := d.bodies[i]
		d.grid.Neighbors(a.pos, func(j int) {
			if j <= i {
				return
			}
			b := d.bodies[j]
			if r3.Norm2(r3.Sub(a.pos, b.pos)) > reachSq {
				return
			}
			p := canonicalPair(a.e, b.e)
			d.cur[p] = struct{}{}
			if _, ok := d.prev[p]; !ok {
				d.events = append(d.events, ContactStarted{A: p.a, B: p.b})
			}
		})
	}

	sort.Slice(d.events, func(i, j int) bool {
		if d.events[i].A.ID() != d.events[j].A.ID() {
			return d.events[i].A.ID() < d.events[j].A.ID()
		}
		return d.events[i].B.ID() < d.events[j].B.ID()
	})

	d.prev, d.cur = d.cur, d.prev
	return d.events
}

// Overlapping returns how many pairs overlapped at the last Detect.
func (d *ContactDetector) Overlapping() int {
	return len(d.prev)
}
