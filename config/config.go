package config

import "github.com/yohamta/donburi/ecs"

// Default is the only ECS layer; there is nothing to draw.
const Default ecs.LayerID = 0

// Missing-target policies for FollowConfig.MissingTargetPolicy.
const (
	PolicyFreeze = "freeze" // keep the follower and skip it until the target returns
	PolicyDetach = "detach" // drop the Follower component from the entity
)

// FollowConfig contains spring follower configuration values
type FollowConfig struct {
	// Tuning used when a follower names neither a preset nor explicit values
	Frequency float32
	Damping   float32
	Response  float32

	MissingTargetPolicy string
	MissingLogInterval  int // ticks between repeated missing-target logs per follower

	// Workers > 1 fans the per-tick sweep out over a bounded goroutine group
	Workers        int
	ParallelCutoff int // minimum follower count before fanning out
}

// PathConfig contains scripted target motion defaults
type PathConfig struct {
	SegmentDuration float32 // seconds per waypoint segment
	Ease            string
	Loop            bool
}

// ServerConfig contains headless server configuration
type ServerConfig struct {
	Name       string
	Port       uint
	TickRate   int
	APIAddr    string
	CommandBuf int // queued commands before senders block
}

// PersistenceConfig contains gdata storage configuration
type PersistenceConfig struct {
	AppName string
}

// SimConfig contains offline runner defaults
type SimConfig struct {
	Ticks int
	Delta float32
}

// Global configuration instances
var Follow FollowConfig
var Path PathConfig
var Server ServerConfig
var Persistence PersistenceConfig
var Sim SimConfig

func init() {
	Follow = FollowConfig{
		Frequency: 1.0,
		Damping:   0.5,
		Response:  2.0,

		MissingTargetPolicy: PolicyFreeze,
		MissingLogInterval:  60,

		Workers:        1,
		ParallelCutoff: 256,
	}

	Path = PathConfig{
		SegmentDuration: 1.0,
		Ease:            "linear",
		Loop:            true,
	}

	Server = ServerConfig{
		Name:       "springfollow",
		Port:       7373,
		TickRate:   60,
		APIAddr:    ":8080",
		CommandBuf: 64,
	}

	Persistence = PersistenceConfig{
		AppName: "springfollow",
	}

	Sim = SimConfig{
		Ticks: 600,
		Delta: 1.0 / 60,
	}
}
