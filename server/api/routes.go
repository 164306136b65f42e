// Package api exposes the running simulation over HTTP for live tuning.
package api

import (
	"context"

	"github.com/automoto/springfollow/shared/follow"
	"github.com/automoto/springfollow/systems"
	"github.com/gin-gonic/gin"
)

// Controller is the part of the server the API drives. Reads come from the
// last published tick; mutations are applied by the loop.
type Controller interface {
	Tick() uint64
	Followers() []systems.FollowerView
	Follower(name string) (systems.FollowerView, bool)
	Tuning(ctx context.Context, follower string) (follow.Tuning, error)
	UpdateTuning(ctx context.Context, follower string, merge func(follow.Tuning) follow.Tuning) (follow.Tuning, error)
	Retarget(ctx context.Context, follower, target string) error
}

// PresetStore saves and loads named tunings.
type PresetStore interface {
	Save(name string, t follow.Tuning) error
	Load(name string) (follow.Tuning, bool, error)
}

// SetupRoutes registers every route on router.
func SetupRoutes(router *gin.Engine, ctl Controller, presets PresetStore) {
	router.GET("/healthz", HealthCheck(ctl))

	followers := router.Group("/followers")
	{
		followers.GET("", ListFollowers(ctl))
		followers.GET("/:name", GetFollower(ctl))
		followers.PUT("/:name/tuning", UpdateTuning(ctl, presets))
		followers.PUT("/:name/target", UpdateTarget(ctl))
	}

	router.POST("/presets/:name", SavePreset(ctl, presets))
	router.GET("/presets/:name", GetPreset(presets))
}
