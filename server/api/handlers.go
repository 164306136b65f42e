package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	cfg "github.com/automoto/springfollow/config"
	"github.com/automoto/springfollow/shared/follow"
	"github.com/automoto/springfollow/systems"
	"github.com/gin-gonic/gin"
)

const requestTimeout = 2 * time.Second

var startTime = time.Now()

// HealthCheck returns server health status
func HealthCheck(ctl Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"service":   cfg.Server.Name,
			"tick":      ctl.Tick(),
			"followers": len(ctl.Followers()),
			"uptime":    time.Since(startTime).String(),
		})
	}
}

func ListFollowers(ctl Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		followers := ctl.Followers()
		if followers == nil {
			followers = []systems.FollowerView{}
		}
		c.JSON(http.StatusOK, gin.H{"followers": followers})
	}
}

func GetFollower(ctl Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, ok := ctl.Follower(c.Param("name"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Follower not found"})
			return
		}
		c.JSON(http.StatusOK, f)
	}
}

// UpdateTuning applies a preset and/or explicit values on top of the
// follower's current tuning. Omitted fields keep their value.
func UpdateTuning(ctl Controller, presets PresetStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Preset    string   `json:"preset,omitempty"`
			Frequency *float32 `json:"frequency,omitempty"`
			Damping   *float32 `json:"damping,omitempty"`
			Response  *float32 `json:"response,omitempty"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		var preset *follow.Tuning
		if req.Preset != "" {
			p, ok, err := presets.Load(req.Preset)
			if err != nil {
				writeError(c, err)
				return
			}
			if !ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "Preset not found"})
				return
			}
			preset = &p
		}

		name := c.Param("name")
		t, err := ctl.UpdateTuning(ctx, name, func(t follow.Tuning) follow.Tuning {
			if preset != nil {
				t = *preset
			}
			if req.Frequency != nil {
				t.Frequency = *req.Frequency
			}
			if req.Damping != nil {
				t.Damping = *req.Damping
			}
			if req.Response != nil {
				t.Response = *req.Response
			}
			return t
		})
		if err != nil {
			writeError(c, err)
			return
		}
		log.Printf("[api] %s tuned to f=%g z=%g r=%g", name, t.Frequency, t.Damping, t.Response)
		c.JSON(http.StatusOK, gin.H{"name": name, "tuning": t})
	}
}

func UpdateTarget(ctl Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Target string `json:"target" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request. Target required."})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		name := c.Param("name")
		if err := ctl.Retarget(ctx, name, req.Target); err != nil {
			writeError(c, err)
			return
		}
		log.Printf("[api] %s now follows %s", name, req.Target)
		c.JSON(http.StatusOK, gin.H{"name": name, "target": req.Target})
	}
}

// SavePreset stores a follower's current tuning under the preset name.
func SavePreset(ctl Controller, presets PresetStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Follower string `json:"follower" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request. Follower required."})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		t, err := ctl.Tuning(ctx, req.Follower)
		if err != nil {
			writeError(c, err)
			return
		}

		name := c.Param("name")
		if err := presets.Save(name, t); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"name": name, "tuning": t})
	}
}

func GetPreset(presets PresetStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		t, ok, err := presets.Load(name)
		if err != nil {
			writeError(c, err)
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Preset not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"name": name, "tuning": t})
	}
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, follow.ErrInvalidTuning), errors.Is(err, systems.ErrInvalidPresetName):
		status = http.StatusBadRequest
	case errors.Is(err, systems.ErrUnknownEntity), errors.Is(err, systems.ErrNotFollower):
		status = http.StatusNotFound
	case errors.Is(err, systems.ErrTargetUnresolvable), errors.Is(err, systems.ErrSelfTarget):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, systems.ErrPersistenceDisabled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		log.Printf("[api] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
