package factory

import (
	"github.com/automoto/springfollow/archetypes"
	"github.com/automoto/springfollow/components"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

func CreateClock(ecs *ecs.ECS) *donburi.Entry {
	clock := archetypes.Clock.Spawn(ecs)
	components.Clock.Set(clock, &components.ClockData{})
	return clock
}

func CreateStats(ecs *ecs.ECS) *donburi.Entry {
	stats := archetypes.Stats.Spawn(ecs)
	components.FollowStats.Set(stats, &components.FollowStatsData{})
	return stats
}
