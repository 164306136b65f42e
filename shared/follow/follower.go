package follow

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Status is the outcome of one tick for one follower.
type Status uint8

const (
	StatusIntegrated Status = iota
	StatusIdle
	StatusTargetMissing
)

func (s Status) String() string {
	switch s {
	case StatusIntegrated:
		return "integrated"
	case StatusIdle:
		return "idle"
	case StatusTargetMissing:
		return "target-missing"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Target is the observed state of the followed object for one tick.
// Velocity is only read when HasVelocity is set.
type Target struct {
	Position    mgl32.Vec3
	Velocity    mgl32.Vec3
	HasVelocity bool
}

// Follower is the per-relationship spring state. A Follower is owned by a
// single goroutine; distinct followers may be stepped concurrently.
type Follower struct {
	tuning Tuning
	k      Constants

	position mgl32.Vec3
	velocity mgl32.Vec3

	prevTarget    mgl32.Vec3
	seeded        bool
	lastTargetVel mgl32.Vec3
}

// New returns a follower at rest at start.
func New(t Tuning, start mgl32.Vec3) (*Follower, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Follower{
		tuning:   t,
		k:        Derive(t),
		position: start,
	}, nil
}

// SetTuning replaces the tuning. On error the previous tuning stays active.
func (f *Follower) SetTuning(t Tuning) error {
	if err := t.Validate(); err != nil {
		return err
	}
	f.tuning = t
	f.k = Derive(t)
	return nil
}

// SeedTarget sets the remembered target position used by the finite
// difference estimate. Call it whenever the followed object changes so the
// first estimate is not measured against the previous target.
func (f *Follower) SeedTarget(pos mgl32.Vec3) {
	f.prevTarget = pos
	f.seeded = true
}

// Place moves the follower without integrating.
func (f *Follower) Place(pos, vel mgl32.Vec3) {
	f.position = pos
	f.velocity = vel
}

func (f *Follower) Tuning() Tuning                 { return f.tuning }
func (f *Follower) Constants() Constants           { return f.k }
func (f *Follower) Position() mgl32.Vec3           { return f.position }
func (f *Follower) Velocity() mgl32.Vec3           { return f.velocity }
func (f *Follower) PreviousTarget() mgl32.Vec3     { return f.prevTarget }
func (f *Follower) LastTargetVelocity() mgl32.Vec3 { return f.lastTargetVel }

// targetVelocity prefers a measured velocity and otherwise differentiates
// the target position against the last observation. The remembered position
// is only touched on the finite difference path.
func (f *Follower) targetVelocity(dt float32, target Target) mgl32.Vec3 {
	if target.HasVelocity {
		return target.Velocity
	}
	if !f.seeded {
		f.SeedTarget(target.Position)
		return mgl32.Vec3{}
	}
	if dt == 0 {
		f.prevTarget = target.Position
		return mgl32.Vec3{}
	}
	d := target.Position.Sub(f.prevTarget)
	f.prevTarget = target.Position
	return mgl32.Vec3{d[0] / dt, d[1] / dt, d[2] / dt}
}

// Step advances the follower by dt toward target. Both updates read the
// position and velocity from before the step. A zero dt leaves the follower
// unchanged and reports StatusIdle.
func (f *Follower) Step(dt float32, target Target) (Status, error) {
	if dt < 0 {
		return StatusIdle, fmt.Errorf("%w: %g", ErrNegativeDelta, dt)
	}

	tv := f.targetVelocity(dt, target)
	f.lastTargetVel = tv
	if dt == 0 {
		return StatusIdle, nil
	}

	k2 := f.k.Stable(dt)
	y, yv := f.position, f.velocity

	force := target.Position.
		Add(tv.Mul(f.k.K3)).
		Sub(y).
		Sub(yv.Mul(f.k.K1))
	accel := mgl32.Vec3{force[0] / k2, force[1] / k2, force[2] / k2}

	f.velocity = yv.Add(accel.Mul(dt))
	f.position = y.Add(yv.Mul(dt))
	return StatusIntegrated, nil
}
