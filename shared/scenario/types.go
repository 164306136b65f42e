// Package scenario parses follower scenarios from Tiled TMX maps.
// It has no dependencies on donburi or necs; pure data only.
package scenario

import "github.com/go-gl/mathgl/mgl32"

// Object group names read from the map.
const (
	GroupTargets   = "Targets"
	GroupFollowers = "Followers"
)

// Scenario is everything needed to populate a follow world.
type Scenario struct {
	Name      string
	Targets   []TargetSpawn
	Followers []FollowerSpawn
}

// TargetSpawn is a static target (one waypoint) or a moving one. Nil path
// fields and an empty Ease fall back to the configured path defaults.
type TargetSpawn struct {
	Name            string
	Waypoints       []mgl32.Vec3
	SegmentDuration *float32 // seconds per segment; 0 with Hold > 0 teleports
	Hold            float32
	Ease            string
	Loop            *bool
	ExposeVelocity  bool
}

// Moving reports whether the target has more than one waypoint.
func (t TargetSpawn) Moving() bool {
	return len(t.Waypoints) > 1
}

// FollowerSpawn names its target and either a preset or explicit tuning.
// Nil tuning fields fall back to the preset, then to the configured default.
type FollowerSpawn struct {
	Name      string
	Target    string
	Start     mgl32.Vec3
	Preset    string
	Frequency *float32
	Damping   *float32
	Response  *float32
}
