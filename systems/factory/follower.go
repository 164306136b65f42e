package factory

import (
	"fmt"

	"github.com/automoto/springfollow/archetypes"
	"github.com/automoto/springfollow/components"
	"github.com/automoto/springfollow/shared/follow"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// CreateFollower spawns a follower at start chasing target. The target's
// current position seeds the follower's velocity estimate.
func CreateFollower(ecs *ecs.ECS, name string, target *donburi.Entry, tuning follow.Tuning, start mgl32.Vec3) (*donburi.Entry, error) {
	spring, err := follow.New(tuning, start)
	if err != nil {
		return nil, fmt.Errorf("follower %s: %w", name, err)
	}
	if target == nil || !target.Valid() || !target.HasComponent(components.Transform) {
		return nil, fmt.Errorf("follower %s: target has no position", name)
	}
	spring.SeedTarget(components.Transform.Get(target).Position)

	follower := archetypes.Follower.Spawn(ecs)
	components.Name.SetValue(follower, components.NameData{Name: name})
	components.Transform.SetValue(follower, components.TransformData{Position: start})
	components.Follower.Set(follower, &components.FollowerData{
		Target: target.Entity(),
		Spring: spring,
	})
	return follower, nil
}
