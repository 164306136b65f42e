package systems

import (
	"github.com/automoto/springfollow/components"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// ApplyFollowers copies each follower's spring state onto its Transform and
// Velocity so other systems, and followers chasing this one, can read it.
func ApplyFollowers(e *ecs.ECS) {
	components.Follower.Each(e.World, func(entry *donburi.Entry) {
		spring := components.Follower.Get(entry).Spring
		if entry.HasComponent(components.Transform) {
			components.Transform.Get(entry).Position = spring.Position()
		}
		if entry.HasComponent(components.Velocity) {
			components.Velocity.Get(entry).Linear = spring.Velocity()
		}
	})
}
