package archetypes

import (
	"github.com/automoto/springfollow/components"
	cfg "github.com/automoto/springfollow/config"
	"github.com/automoto/springfollow/tags"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

var (
	Target = newArchetype(
		tags.Target,
		components.Name,
		components.Transform,
	)
	MovingTarget = newArchetype(
		tags.Target,
		components.Name,
		components.Transform,
		components.Path,
	)
	Follower = newArchetype(
		tags.Follower,
		components.Name,
		components.Follower,
		components.Transform,
		components.Velocity,
	)
	Clock = newArchetype(
		components.Clock,
	)
	Stats = newArchetype(
		components.FollowStats,
	)
)

type archetype struct {
	components []donburi.IComponentType
}

func newArchetype(cs ...donburi.IComponentType) *archetype {
	return &archetype{
		components: cs,
	}
}

func (a *archetype) Spawn(ecs *ecs.ECS, cs ...donburi.IComponentType) *donburi.Entry {
	e := ecs.World.Entry(ecs.Create(
		cfg.Default,
		append(a.components, cs...)...,
	))
	return e
}
