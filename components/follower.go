package components

import (
	"github.com/automoto/springfollow/shared/follow"
	"github.com/yohamta/donburi"
)

// FollowerData binds a spring follower to the entity it chases. Target is a
// weak reference and may become invalid at any time.
type FollowerData struct {
	Target donburi.Entity
	Spring *follow.Follower

	Status       follow.Status // outcome of the last tick
	MissingTicks int           // consecutive ticks with an unresolvable target
}

var Follower = donburi.NewComponentType[FollowerData]()
