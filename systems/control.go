package systems

import (
	"errors"
	"fmt"
	"sort"

	"github.com/automoto/springfollow/components"
	"github.com/automoto/springfollow/shared/follow"
	"github.com/yohamta/donburi"
)

var (
	ErrUnknownEntity      = errors.New("unknown entity")
	ErrNotFollower        = errors.New("entity is not a follower")
	ErrTargetUnresolvable = errors.New("target does not resolve to a positioned entity")
	ErrSelfTarget         = errors.New("a follower cannot follow itself")
)

func followerEntry(w donburi.World, e donburi.Entity) (*donburi.Entry, error) {
	if !w.Valid(e) {
		return nil, fmt.Errorf("%w: %v", ErrUnknownEntity, e)
	}
	entry := w.Entry(e)
	if !entry.HasComponent(components.Follower) {
		return nil, fmt.Errorf("%w: %s", ErrNotFollower, entityName(entry))
	}
	return entry, nil
}

// Retarget points a follower at a new target and re-seeds its target history
// with the target's current position, so the first velocity estimate after the
// switch is not measured against the old target.
func Retarget(w donburi.World, follower, target donburi.Entity) error {
	entry, err := followerEntry(w, follower)
	if err != nil {
		return err
	}
	if follower == target {
		return ErrSelfTarget
	}
	t, ok := resolveTarget(w, target)
	if !ok {
		return fmt.Errorf("%w: %v", ErrTargetUnresolvable, target)
	}

	f := components.Follower.Get(entry)
	f.Target = target
	f.Spring.SeedTarget(t.Position)
	f.MissingTicks = 0
	return nil
}

// Tune replaces a follower's tuning. Invalid tuning is rejected and the old
// tuning stays active.
func Tune(w donburi.World, follower donburi.Entity, t follow.Tuning) error {
	entry, err := followerEntry(w, follower)
	if err != nil {
		return err
	}
	return components.Follower.Get(entry).Spring.SetTuning(t)
}

// FindByName returns the first entity carrying the given name.
func FindByName(w donburi.World, name string) (donburi.Entity, bool) {
	found := donburi.Null
	components.Name.Each(w, func(entry *donburi.Entry) {
		if found == donburi.Null && components.Name.Get(entry).Name == name {
			found = entry.Entity()
		}
	})
	return found, found != donburi.Null
}

// FollowerView is a read-only copy of a follower's state.
type FollowerView struct {
	Name         string        `json:"name"`
	Target       string        `json:"target"`
	Position     [3]float32    `json:"position"`
	Velocity     [3]float32    `json:"velocity"`
	Tuning       follow.Tuning `json:"tuning"`
	Status       string        `json:"status"`
	MissingTicks int           `json:"missingTicks"`
}

// SnapshotFollowers copies every follower's state, sorted by name.
func SnapshotFollowers(w donburi.World) []FollowerView {
	var views []FollowerView
	components.Follower.Each(w, func(entry *donburi.Entry) {
		f := components.Follower.Get(entry)
		target := ""
		if w.Valid(f.Target) {
			target = entityName(w.Entry(f.Target))
		}
		views = append(views, FollowerView{
			Name:         entityName(entry),
			Target:       target,
			Position:     f.Spring.Position(),
			Velocity:     f.Spring.Velocity(),
			Tuning:       f.Spring.Tuning(),
			Status:       f.Status.String(),
			MissingTicks: f.MissingTicks,
		})
	})
	sort.Slice(views, func(i, j int) bool {
		return views[i].Name < views[j].Name
	})
	return views
}
