package protocol

import (
	"github.com/automoto/springfollow/shared/netcomponents"
	"github.com/leap-fish/necs/esync"
)

// Sync ID constants - ID 1 is reserved by necs for NetworkId
const (
	SyncIDNetTarget   uint = 10
	SyncIDNetFollower uint = 11
)

// Interpolation IDs (uint8 for WithInterpFn)
const (
	InterpIDNetTarget   uint8 = 10
	InterpIDNetFollower uint8 = 11
)

// RegisterComponents registers all network components with necs for serialization.
// This must be called by both server and client before any network operations.
func RegisterComponents() error {
	if err := esync.RegisterComponent(
		SyncIDNetTarget,
		netcomponents.NetTargetData{},
		netcomponents.NetTarget,
		esync.WithInterpFn(InterpIDNetTarget, netcomponents.LerpNetTarget),
	); err != nil {
		return err
	}

	return esync.RegisterComponent(
		SyncIDNetFollower,
		netcomponents.NetFollowerData{},
		netcomponents.NetFollower,
		esync.WithInterpFn(InterpIDNetFollower, netcomponents.LerpNetFollower),
	)
}
