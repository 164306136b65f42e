package components

import "github.com/yohamta/donburi"

// FollowStatsData counts follower outcomes for the last tick.
type FollowStatsData struct {
	Tick       uint64
	Integrated int
	Idle       int
	Missing    int
	Detached   int

	// Missing and detached followers of the last tick
	MissingEntities []donburi.Entity

	TotalMissing uint64
}

var FollowStats = donburi.NewComponentType[FollowStatsData]()
