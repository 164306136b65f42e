package scenes

import (
	"errors"
	"fmt"
	"log"

	"github.com/automoto/springfollow/components"
	cfg "github.com/automoto/springfollow/config"
	"github.com/automoto/springfollow/shared/follow"
	"github.com/automoto/springfollow/shared/scenario"
	"github.com/automoto/springfollow/systems"
	"github.com/automoto/springfollow/systems/factory"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

var ErrFollowCycle = errors.New("followers chase each other in a cycle")

// FollowScene owns an ECS world populated from a scenario. It is advanced
// with an explicit delta, so it runs the same under a server ticker, a
// test or the offline runner.
type FollowScene struct {
	ecs      *ecs.ECS
	scenario string
}

// SceneOptions configures a FollowScene. Extra systems run after the
// followers have been applied, in the order given.
type SceneOptions struct {
	Presets cfg.Presets
	Follow  systems.FollowOptions
	Extra   []ecs.System
}

// DefaultSceneOptions uses the global configuration.
func DefaultSceneOptions(presets cfg.Presets) SceneOptions {
	return SceneOptions{
		Presets: presets,
		Follow:  systems.FollowOptionsFromConfig(),
	}
}

func NewFollowScene(sc *scenario.Scenario, opts SceneOptions) (*FollowScene, error) {
	e := ecs.NewECS(donburi.NewWorld())
	factory.CreateClock(e)
	factory.CreateStats(e)

	fs := &FollowScene{ecs: e, scenario: sc.Name}
	if err := fs.spawn(sc, opts.Presets); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	e.AddSystem(systems.UpdatePaths)
	e.AddSystem(systems.NewFollowSystem(opts.Follow))
	e.AddSystem(systems.ApplyFollowers)
	for _, sys := range opts.Extra {
		e.AddSystem(sys)
	}

	log.Printf("[scene] %s: %d target(s), %d follower(s)", sc.Name, len(sc.Targets), len(sc.Followers))
	return fs, nil
}

func (fs *FollowScene) spawn(sc *scenario.Scenario, presets cfg.Presets) error {
	entries := make(map[string]*donburi.Entry, len(sc.Targets)+len(sc.Followers))

	for _, t := range sc.Targets {
		if len(t.Waypoints) == 0 {
			return fmt.Errorf("target %s: %w", t.Name, factory.ErrEmptyPath)
		}
		if !t.Moving() {
			entries[t.Name] = factory.CreateTarget(fs.ecs, t.Name, t.Waypoints[0], t.ExposeVelocity)
			continue
		}
		entry, err := factory.CreateMovingTarget(fs.ecs, t.Name, pathSpec(t), t.ExposeVelocity)
		if err != nil {
			return err
		}
		entries[t.Name] = entry
	}

	// Followers can chase followers, so spawn in dependency order.
	pending := sc.Followers
	for len(pending) > 0 {
		var next []scenario.FollowerSpawn
		for _, f := range pending {
			target, ok := entries[f.Target]
			if !ok {
				next = append(next, f)
				continue
			}
			tuning, err := resolveTuning(f, presets)
			if err != nil {
				return fmt.Errorf("follower %s: %w", f.Name, err)
			}
			entry, err := factory.CreateFollower(fs.ecs, f.Name, target, tuning, f.Start)
			if err != nil {
				return err
			}
			entries[f.Name] = entry
		}
		if len(next) == len(pending) {
			return fmt.Errorf("%w: %s", ErrFollowCycle, next[0].Name)
		}
		pending = next
	}
	return nil
}

// pathSpec fills unset path fields from the configured defaults.
func pathSpec(t scenario.TargetSpawn) factory.PathSpec {
	spec := factory.PathSpec{
		Waypoints:       t.Waypoints,
		SegmentDuration: cfg.Path.SegmentDuration,
		Hold:            t.Hold,
		Ease:            t.Ease,
		Loop:            cfg.Path.Loop,
	}
	if t.SegmentDuration != nil {
		spec.SegmentDuration = *t.SegmentDuration
	}
	if t.Loop != nil {
		spec.Loop = *t.Loop
	}
	if spec.Ease == "" {
		spec.Ease = cfg.Path.Ease
	}
	return spec
}

// resolveTuning starts from the named preset (or the default) and applies
// any explicit per-follower values on top.
func resolveTuning(f scenario.FollowerSpawn, presets cfg.Presets) (follow.Tuning, error) {
	t, err := presets.Lookup(f.Preset)
	if err != nil {
		return follow.Tuning{}, err
	}
	if f.Frequency != nil {
		t.Frequency = *f.Frequency
	}
	if f.Damping != nil {
		t.Damping = *f.Damping
	}
	if f.Response != nil {
		t.Response = *f.Response
	}
	return t, t.Validate()
}

// Update advances the world by dt seconds.
func (fs *FollowScene) Update(dt float32) error {
	if err := systems.SetDelta(fs.ecs.World, dt); err != nil {
		return err
	}
	fs.ecs.Update()
	return nil
}

func (fs *FollowScene) ECS() *ecs.ECS {
	return fs.ecs
}

func (fs *FollowScene) World() donburi.World {
	return fs.ecs.World
}

func (fs *FollowScene) Name() string {
	return fs.scenario
}

func (fs *FollowScene) Tick() uint64 {
	return systems.CurrentTick(fs.ecs.World)
}

// Stats returns the counts of the last sweep.
func (fs *FollowScene) Stats() components.FollowStatsData {
	if entry, ok := components.FollowStats.First(fs.ecs.World); ok {
		return *components.FollowStats.Get(entry)
	}
	return components.FollowStatsData{}
}

func (fs *FollowScene) Followers() []systems.FollowerView {
	return systems.SnapshotFollowers(fs.ecs.World)
}

func (fs *FollowScene) lookup(name string) (donburi.Entity, error) {
	e, ok := systems.FindByName(fs.ecs.World, name)
	if !ok {
		return donburi.Null, fmt.Errorf("%w: %q", systems.ErrUnknownEntity, name)
	}
	return e, nil
}

// Retarget points the named follower at the named target.
func (fs *FollowScene) Retarget(follower, target string) error {
	f, err := fs.lookup(follower)
	if err != nil {
		return err
	}
	t, ok := systems.FindByName(fs.ecs.World, target)
	if !ok {
		return fmt.Errorf("%w: %q", systems.ErrTargetUnresolvable, target)
	}
	return systems.Retarget(fs.ecs.World, f, t)
}

// Tune replaces the named follower's tuning.
func (fs *FollowScene) Tune(follower string, t follow.Tuning) error {
	f, err := fs.lookup(follower)
	if err != nil {
		return err
	}
	return systems.Tune(fs.ecs.World, f, t)
}

// Tuning returns the named follower's current tuning.
func (fs *FollowScene) Tuning(follower string) (follow.Tuning, error) {
	f, err := fs.lookup(follower)
	if err != nil {
		return follow.Tuning{}, err
	}
	entry := fs.ecs.World.Entry(f)
	if !entry.HasComponent(components.Follower) {
		return follow.Tuning{}, fmt.Errorf("%w: %q", systems.ErrNotFollower, follower)
	}
	return components.Follower.Get(entry).Spring.Tuning(), nil
}

// Remove deletes the named entity. Followers chasing it report a missing
// target from the next tick on.
func (fs *FollowScene) Remove(name string) error {
	e, err := fs.lookup(name)
	if err != nil {
		return err
	}
	fs.ecs.World.Remove(e)
	return nil
}
