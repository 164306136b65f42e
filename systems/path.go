package systems

import (
	"github.com/automoto/springfollow/components"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// UpdatePaths advances scripted targets along their waypoints. Targets that
// also carry a Velocity get the velocity of this tick's displacement.
func UpdatePaths(e *ecs.ECS) {
	dt := Delta(e.World)
	components.Path.Each(e.World, func(entry *donburi.Entry) {
		path := components.Path.Get(entry)
		if len(path.Waypoints) == 0 {
			return
		}
		tr := components.Transform.Get(entry)
		prev := tr.Position
		tr.Position = advancePath(path, dt)

		if entry.HasComponent(components.Velocity) && dt > 0 {
			d := tr.Position.Sub(prev)
			components.Velocity.Get(entry).Linear = mgl32.Vec3{d[0] / dt, d[1] / dt, d[2] / dt}
		}
	})
}

func nextWaypoint(p *components.PathData, i int) (int, bool) {
	if i+1 < len(p.Waypoints) {
		return i + 1, true
	}
	if p.Loop && len(p.Waypoints) > 1 {
		return 0, true
	}
	return i, false
}

// advancePath moves p forward by dt. Time left over when a segment ends
// carries into the following segments so the speed stays even across
// waypoints.
func advancePath(p *components.PathData, dt float32) mgl32.Vec3 {
	if p.Finished {
		return p.Waypoints[p.Segment]
	}
	if p.SegmentDuration <= 0 {
		return snapPath(p, dt)
	}

	for {
		next, ok := nextWaypoint(p, p.Segment)
		if !ok {
			p.Finished = true
			return p.Waypoints[p.Segment]
		}
		if p.Tween == nil {
			fn := p.Ease
			if fn == nil {
				fn = ease.Linear
			}
			p.Tween = gween.New(0, 1, p.SegmentDuration, fn)
			p.Elapsed = 0
		}

		remaining := p.SegmentDuration - p.Elapsed
		progress, done := p.Tween.Update(dt)
		from, to := p.Waypoints[p.Segment], p.Waypoints[next]
		if !done {
			p.Elapsed += dt
			return from.Add(to.Sub(from).Mul(progress))
		}

		p.Segment = next
		p.Tween = nil
		p.Elapsed = 0
		if _, more := nextWaypoint(p, next); !more {
			p.Finished = true
			return to
		}
		dt -= remaining
		if dt <= 0 {
			return to
		}
	}
}

// snapPath jumps between waypoints every Hold seconds.
func snapPath(p *components.PathData, dt float32) mgl32.Vec3 {
	if p.Hold <= 0 {
		return p.Waypoints[p.Segment]
	}
	p.Held += dt
	for p.Held >= p.Hold {
		p.Held -= p.Hold
		next, ok := nextWaypoint(p, p.Segment)
		if !ok {
			p.Finished = true
			break
		}
		p.Segment = next
	}
	return p.Waypoints[p.Segment]
}
