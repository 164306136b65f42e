package systems

import (
	"github.com/automoto/springfollow/components"
	"github.com/automoto/springfollow/shared/netcomponents"
	"github.com/automoto/springfollow/tags"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
	"github.com/yohamta/donburi/filter"
)

var (
	netFollowerQuery = donburi.NewQuery(filter.Contains(netcomponents.NetFollower, components.Follower))
	netTargetQuery   = donburi.NewQuery(filter.Contains(netcomponents.NetTarget, tags.Target, components.Transform))
)

// SyncNetFollowers copies simulation state into the replicated components.
// Runs on the server after ApplyFollowers.
func SyncNetFollowers(e *ecs.ECS) {
	w := e.World

	netTargetQuery.Each(w, func(entry *donburi.Entry) {
		pos := components.Transform.Get(entry).Position
		netcomponents.NetTarget.SetValue(entry, netcomponents.NetTargetData{
			Name: entityName(entry),
			X:    float64(pos[0]),
			Y:    float64(pos[1]),
			Z:    float64(pos[2]),
		})
	})

	netFollowerQuery.Each(w, func(entry *donburi.Entry) {
		f := components.Follower.Get(entry)
		pos := f.Spring.Position()
		vel := f.Spring.Velocity()
		t := f.Spring.Tuning()

		target := ""
		if w.Valid(f.Target) {
			target = entityName(w.Entry(f.Target))
		}

		netcomponents.NetFollower.SetValue(entry, netcomponents.NetFollowerData{
			Name:      entityName(entry),
			Target:    target,
			X:         float64(pos[0]),
			Y:         float64(pos[1]),
			Z:         float64(pos[2]),
			VelX:      float64(vel[0]),
			VelY:      float64(vel[1]),
			VelZ:      float64(vel[2]),
			Frequency: float64(t.Frequency),
			Damping:   float64(t.Damping),
			Response:  float64(t.Response),
			Status:    uint8(f.Status),
		})
	})
}
