package systems

import (
	"errors"
	"fmt"

	"github.com/automoto/springfollow/components"
	"github.com/automoto/springfollow/shared/follow"
	"github.com/yohamta/donburi"
)

var ErrNoClock = errors.New("world has no clock entity")

// SetDelta records the delta time for the next ECS update and bumps the tick
// counter.
func SetDelta(w donburi.World, dt float32) error {
	if dt < 0 {
		return fmt.Errorf("%w: %g", follow.ErrNegativeDelta, dt)
	}
	entry, ok := components.Clock.First(w)
	if !ok {
		return ErrNoClock
	}
	clock := components.Clock.Get(entry)
	clock.Delta = dt
	clock.Tick++
	return nil
}

// Delta returns the current tick's delta time, or 0 without a clock.
func Delta(w donburi.World) float32 {
	entry, ok := components.Clock.First(w)
	if !ok {
		return 0
	}
	return components.Clock.Get(entry).Delta
}

// CurrentTick returns the clock's tick counter.
func CurrentTick(w donburi.World) uint64 {
	entry, ok := components.Clock.First(w)
	if !ok {
		return 0
	}
	return components.Clock.Get(entry).Tick
}
