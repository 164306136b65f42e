package systems

import (
	"fmt"
	"log"

	"github.com/automoto/springfollow/components"
	cfg "github.com/automoto/springfollow/config"
	"github.com/automoto/springfollow/shared/follow"
	"github.com/automoto/springfollow/tags"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
	"github.com/yohamta/donburi/filter"
	"golang.org/x/sync/errgroup"
)

// FollowOptions controls the follower sweep.
type FollowOptions struct {
	Policy         string // cfg.PolicyFreeze or cfg.PolicyDetach
	Workers        int
	ParallelCutoff int
	LogInterval    int
}

func FollowOptionsFromConfig() FollowOptions {
	return FollowOptions{
		Policy:         cfg.Follow.MissingTargetPolicy,
		Workers:        cfg.Follow.Workers,
		ParallelCutoff: cfg.Follow.ParallelCutoff,
		LogInterval:    cfg.Follow.MissingLogInterval,
	}
}

var followerQuery = donburi.NewQuery(filter.Contains(components.Follower))

type followJob struct {
	entry    *donburi.Entry
	follower *components.FollowerData
	target   follow.Target
	resolved bool
	status   follow.Status
	err      error
}

// UpdateFollowers steps every follower using the global configuration.
func UpdateFollowers(e *ecs.ECS) {
	updateFollowers(e.World, FollowOptionsFromConfig())
}

// NewFollowSystem returns an update system that steps every follower with
// the given options.
func NewFollowSystem(opts FollowOptions) func(*ecs.ECS) {
	return func(e *ecs.ECS) {
		updateFollowers(e.World, opts)
	}
}

func updateFollowers(w donburi.World, opts FollowOptions) {
	dt := Delta(w)

	// Every target is read before any follower moves, so followers that
	// chase other followers see the same state regardless of sweep order.
	var jobs []followJob
	followerQuery.Each(w, func(entry *donburi.Entry) {
		f := components.Follower.Get(entry)
		target, ok := resolveTarget(w, f.Target)
		jobs = append(jobs, followJob{
			entry:    entry,
			follower: f,
			target:   target,
			resolved: ok,
		})
	})

	stepJobs(dt, jobs, opts)
	report(w, jobs, opts)
}

func resolveTarget(w donburi.World, target donburi.Entity) (follow.Target, bool) {
	if !w.Valid(target) {
		return follow.Target{}, false
	}
	entry := w.Entry(target)
	if !entry.HasComponent(components.Transform) {
		return follow.Target{}, false
	}
	t := follow.Target{Position: components.Transform.Get(entry).Position}
	if entry.HasComponent(components.Velocity) {
		t.Velocity = components.Velocity.Get(entry).Linear
		t.HasVelocity = true
	}
	return t, true
}

func stepJobs(dt float32, jobs []followJob, opts FollowOptions) {
	step := func(j *followJob) {
		if !j.resolved {
			j.status = follow.StatusTargetMissing
			return
		}
		j.status, j.err = j.follower.Spring.Step(dt, j.target)
	}

	if opts.Workers <= 1 || len(jobs) < opts.ParallelCutoff {
		for i := range jobs {
			step(&jobs[i])
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for i := range jobs {
		j := &jobs[i]
		g.Go(func() error {
			step(j)
			return nil
		})
	}
	_ = g.Wait()
}

func report(w donburi.World, jobs []followJob, opts FollowOptions) {
	var stats components.FollowStatsData
	stats.Tick = CurrentTick(w)

	var detach []*donburi.Entry
	for i := range jobs {
		j := &jobs[i]
		f := j.follower
		f.Status = j.status

		if j.err != nil {
			log.Printf("[follow] %s: step failed: %v", entityName(j.entry), j.err)
		}

		switch j.status {
		case follow.StatusIntegrated:
			stats.Integrated++
			f.MissingTicks = 0
		case follow.StatusIdle:
			stats.Idle++
			if j.resolved {
				f.MissingTicks = 0
			}
		case follow.StatusTargetMissing:
			stats.Missing++
			stats.MissingEntities = append(stats.MissingEntities, j.entry.Entity())
			f.MissingTicks++
			if shouldLogMissing(f.MissingTicks, opts.LogInterval) {
				log.Printf("[follow] %s: target %v unresolvable for %d tick(s), skipping",
					entityName(j.entry), f.Target, f.MissingTicks)
			}
			if opts.Policy == cfg.PolicyDetach {
				detach = append(detach, j.entry)
			}
		}
	}

	// Structural changes happen after the sweep.
	for _, entry := range detach {
		log.Printf("[follow] %s: detaching follower from missing target", entityName(entry))
		entry.RemoveComponent(components.Follower)
		if entry.HasComponent(tags.Follower) {
			entry.RemoveComponent(tags.Follower)
		}
		stats.Detached++
	}

	if entry, ok := components.FollowStats.First(w); ok {
		prev := components.FollowStats.Get(entry)
		stats.TotalMissing = prev.TotalMissing + uint64(stats.Missing)
		components.FollowStats.Set(entry, &stats)
	}
}

func shouldLogMissing(ticks, interval int) bool {
	if ticks == 1 {
		return true
	}
	return interval > 0 && ticks%interval == 0
}

func entityName(entry *donburi.Entry) string {
	if entry.HasComponent(components.Name) {
		if n := components.Name.Get(entry).Name; n != "" {
			return n
		}
	}
	return fmt.Sprintf("entity %v", entry.Entity())
}
