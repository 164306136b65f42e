package factory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/automoto/springfollow/archetypes"
	"github.com/automoto/springfollow/components"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

var ErrEmptyPath = errors.New("path needs at least one waypoint")

// CreateTarget spawns a static target. With exposeVelocity the target carries
// a Velocity component and followers read it instead of differentiating.
func CreateTarget(ecs *ecs.ECS, name string, pos mgl32.Vec3, exposeVelocity bool) *donburi.Entry {
	var extra []donburi.IComponentType
	if exposeVelocity {
		extra = append(extra, components.Velocity)
	}
	target := archetypes.Target.Spawn(ecs, extra...)
	components.Name.SetValue(target, components.NameData{Name: name})
	components.Transform.SetValue(target, components.TransformData{Position: pos})
	return target
}

// PathSpec describes scripted target motion.
type PathSpec struct {
	Waypoints       []mgl32.Vec3
	SegmentDuration float32 // 0 snaps between waypoints every Hold seconds
	Hold            float32
	Ease            string
	Loop            bool
}

// CreateMovingTarget spawns a target that walks its waypoints with one tween
// per segment.
func CreateMovingTarget(ecs *ecs.ECS, name string, spec PathSpec, exposeVelocity bool) (*donburi.Entry, error) {
	if len(spec.Waypoints) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyPath)
	}
	fn, ok := EaseByName(spec.Ease)
	if !ok {
		return nil, fmt.Errorf("%s: unknown easing %q", name, spec.Ease)
	}

	var extra []donburi.IComponentType
	if exposeVelocity {
		extra = append(extra, components.Velocity)
	}
	target := archetypes.MovingTarget.Spawn(ecs, extra...)
	components.Name.SetValue(target, components.NameData{Name: name})
	components.Transform.SetValue(target, components.TransformData{Position: spec.Waypoints[0]})

	waypoints := make([]mgl32.Vec3, len(spec.Waypoints))
	copy(waypoints, spec.Waypoints)
	components.Path.Set(target, &components.PathData{
		Waypoints:       waypoints,
		SegmentDuration: spec.SegmentDuration,
		Hold:            spec.Hold,
		Ease:            fn,
		Loop:            spec.Loop,
	})
	return target, nil
}

var easings = map[string]ease.TweenFunc{
	"linear":    ease.Linear,
	"inquad":    ease.InQuad,
	"outquad":   ease.OutQuad,
	"inoutquad": ease.InOutQuad,
	"incubic":   ease.InCubic,
	"outcubic":  ease.OutCubic,
	"inoutsine": ease.InOutSine,
	"outbounce": ease.OutBounce,
}

// EaseByName resolves an easing name, case-insensitively. An empty name is
// linear.
func EaseByName(name string) (ease.TweenFunc, bool) {
	if name == "" {
		return ease.Linear, true
	}
	fn, ok := easings[strings.ToLower(name)]
	return fn, ok
}
