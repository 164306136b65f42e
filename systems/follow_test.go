package systems

import (
	"errors"
	"fmt"
	"testing"

	"github.com/automoto/springfollow/components"
	cfg "github.com/automoto/springfollow/config"
	"github.com/automoto/springfollow/shared/follow"
	"github.com/automoto/springfollow/systems/factory"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

const dt = float32(1.0 / 60)

func newTestECS(t *testing.T, opts FollowOptions) *ecs.ECS {
	t.Helper()
	e := ecs.NewECS(donburi.NewWorld())
	factory.CreateClock(e)
	factory.CreateStats(e)
	e.AddSystem(UpdatePaths)
	e.AddSystem(NewFollowSystem(opts))
	e.AddSystem(ApplyFollowers)
	return e
}

func freeze() FollowOptions {
	return FollowOptions{Policy: cfg.PolicyFreeze, Workers: 1, LogInterval: 60}
}

func tick(t *testing.T, e *ecs.ECS, delta float32) {
	t.Helper()
	if err := SetDelta(e.World, delta); err != nil {
		t.Fatalf("SetDelta: %v", err)
	}
	e.Update()
}

func mustFollower(t *testing.T, e *ecs.ECS, name string, target *donburi.Entry, start mgl32.Vec3) *donburi.Entry {
	t.Helper()
	entry, err := factory.CreateFollower(e, name, target, follow.DefaultTuning(), start)
	if err != nil {
		t.Fatalf("CreateFollower: %v", err)
	}
	return entry
}

func stats(e *ecs.ECS) components.FollowStatsData {
	entry, _ := components.FollowStats.First(e.World)
	return *components.FollowStats.Get(entry)
}

func TestSweepMovesFollowerTowardTarget(t *testing.T) {
	e := newTestECS(t, freeze())
	target := factory.CreateTarget(e, "beacon", mgl32.Vec3{10, 0, 0}, false)
	follower := mustFollower(t, e, "camera", target, mgl32.Vec3{})

	for i := 0; i < 600; i++ {
		tick(t, e, dt)
	}

	pos := components.Transform.Get(follower).Position
	if pos.Sub(mgl32.Vec3{10, 0, 0}).Len() > 1e-2 {
		t.Errorf("follower at %v, want near target", pos)
	}
	if f := components.Follower.Get(follower); f.Status != follow.StatusIntegrated {
		t.Errorf("status = %v", f.Status)
	}
	if s := stats(e); s.Integrated != 1 || s.Tick != 600 {
		t.Errorf("stats = %+v", s)
	}
}

func TestZeroDeltaReportsIdle(t *testing.T) {
	e := newTestECS(t, freeze())
	target := factory.CreateTarget(e, "beacon", mgl32.Vec3{1, 2, 3}, false)
	follower := mustFollower(t, e, "camera", target, mgl32.Vec3{})

	tick(t, e, 0)

	if f := components.Follower.Get(follower); f.Status != follow.StatusIdle {
		t.Errorf("status = %v, want idle", f.Status)
	}
	if pos := components.Transform.Get(follower).Position; pos != (mgl32.Vec3{}) {
		t.Errorf("zero delta moved follower to %v", pos)
	}
	if s := stats(e); s.Idle != 1 || s.Integrated != 0 {
		t.Errorf("stats = %+v", s)
	}
}

func TestMissingTargetIsReportedAndSkipped(t *testing.T) {
	e := newTestECS(t, freeze())
	kept := factory.CreateTarget(e, "kept", mgl32.Vec3{5, 0, 0}, false)
	doomed := factory.CreateTarget(e, "doomed", mgl32.Vec3{0, 5, 0}, false)
	ok := mustFollower(t, e, "ok", kept, mgl32.Vec3{})
	lost := mustFollower(t, e, "lost", doomed, mgl32.Vec3{})

	for i := 0; i < 10; i++ {
		tick(t, e, dt)
	}
	lostSpring := components.Follower.Get(lost).Spring
	beforePos, beforeVel := lostSpring.Position(), lostSpring.Velocity()
	okBefore := components.Follower.Get(ok).Spring.Position()

	e.World.Remove(doomed.Entity())
	tick(t, e, dt)
	tick(t, e, dt)

	f := components.Follower.Get(lost)
	if f.Status != follow.StatusTargetMissing || f.MissingTicks != 2 {
		t.Errorf("lost follower status = %v after %d ticks", f.Status, f.MissingTicks)
	}
	if f.Spring.Position() != beforePos || f.Spring.Velocity() != beforeVel {
		t.Error("missing target must leave follower state untouched")
	}
	if components.Follower.Get(ok).Spring.Position() == okBefore {
		t.Error("other followers must keep integrating")
	}

	s := stats(e)
	if s.Missing != 1 || s.Integrated != 1 || s.TotalMissing != 2 {
		t.Errorf("stats = %+v", s)
	}
	if len(s.MissingEntities) != 1 || s.MissingEntities[0] != lost.Entity() {
		t.Errorf("missing entities = %v", s.MissingEntities)
	}
}

func TestDetachPolicyRemovesFollower(t *testing.T) {
	opts := freeze()
	opts.Policy = cfg.PolicyDetach
	e := newTestECS(t, opts)
	target := factory.CreateTarget(e, "beacon", mgl32.Vec3{5, 0, 0}, false)
	lost := mustFollower(t, e, "lost", target, mgl32.Vec3{})

	e.World.Remove(target.Entity())
	tick(t, e, dt)

	if lost.HasComponent(components.Follower) {
		t.Fatal("follower component should be removed")
	}
	if s := stats(e); s.Detached != 1 || s.Missing != 1 {
		t.Errorf("stats = %+v", s)
	}

	tick(t, e, dt)
	if s := stats(e); s.Missing != 0 || s.Detached != 0 || s.TotalMissing != 1 {
		t.Errorf("stats after detach = %+v", s)
	}
}

func TestChainReadsSnapshot(t *testing.T) {
	e := newTestECS(t, freeze())
	target := factory.CreateTarget(e, "beacon", mgl32.Vec3{10, 0, 0}, false)
	lead := mustFollower(t, e, "lead", target, mgl32.Vec3{})
	tailStart := mgl32.Vec3{-5, 0, 0}
	tail := mustFollower(t, e, "tail", lead, tailStart)

	tick(t, e, dt)

	// The tail sees the lead where it was before this tick.
	ref, err := follow.New(follow.DefaultTuning(), tailStart)
	if err != nil {
		t.Fatal(err)
	}
	ref.SeedTarget(mgl32.Vec3{})
	if _, err := ref.Step(dt, follow.Target{HasVelocity: true}); err != nil {
		t.Fatal(err)
	}

	got := components.Follower.Get(tail).Spring
	if got.Position() != ref.Position() || got.Velocity() != ref.Velocity() {
		t.Errorf("tail = %v/%v, want %v/%v", got.Position(), got.Velocity(), ref.Position(), ref.Velocity())
	}
	if components.Velocity.Get(lead).Linear == (mgl32.Vec3{}) {
		t.Error("lead should have started moving")
	}
}

func buildCrowd(t *testing.T, opts FollowOptions) (*ecs.ECS, []*donburi.Entry) {
	e := newTestECS(t, opts)
	mover, err := factory.CreateMovingTarget(e, "mover", factory.PathSpec{
		Waypoints:       []mgl32.Vec3{{0, 0, 0}, {20, 0, 0}, {20, 5, 20}},
		SegmentDuration: 0.5,
		Ease:            "inoutquad",
		Loop:            true,
	}, true)
	if err != nil {
		t.Fatal(err)
	}

	var followers []*donburi.Entry
	prev := mover
	for i := 0; i < 32; i++ {
		target := mover
		if i%3 == 2 {
			target = prev
		}
		f := mustFollower(t, e, fmt.Sprintf("f%02d", i), target, mgl32.Vec3{float32(i), 0, 0})
		followers = append(followers, f)
		prev = f
	}
	return e, followers
}

func TestParallelSweepMatchesSequential(t *testing.T) {
	seqECS, seq := buildCrowd(t, freeze())
	parOpts := freeze()
	parOpts.Workers = 4
	parOpts.ParallelCutoff = 1
	parECS, par := buildCrowd(t, parOpts)

	for i := 0; i < 200; i++ {
		tick(t, seqECS, dt)
		tick(t, parECS, dt)
	}

	for i := range seq {
		a := components.Follower.Get(seq[i]).Spring
		b := components.Follower.Get(par[i]).Spring
		if a.Position() != b.Position() || a.Velocity() != b.Velocity() {
			t.Fatalf("follower %d diverged: %v vs %v", i, a.Position(), b.Position())
		}
	}
}

func TestRetargetAndTune(t *testing.T) {
	e := newTestECS(t, freeze())
	a := factory.CreateTarget(e, "a", mgl32.Vec3{1, 0, 0}, false)
	b := factory.CreateTarget(e, "b", mgl32.Vec3{0, 0, 7}, false)
	f := mustFollower(t, e, "camera", a, mgl32.Vec3{})

	if err := Retarget(e.World, f.Entity(), b.Entity()); err != nil {
		t.Fatalf("Retarget: %v", err)
	}
	fd := components.Follower.Get(f)
	if fd.Target != b.Entity() || fd.Spring.PreviousTarget() != (mgl32.Vec3{0, 0, 7}) {
		t.Errorf("retarget did not reseed: target %v, prev %v", fd.Target, fd.Spring.PreviousTarget())
	}

	if err := Retarget(e.World, f.Entity(), f.Entity()); !errors.Is(err, ErrSelfTarget) {
		t.Errorf("self retarget err = %v", err)
	}
	if err := Retarget(e.World, a.Entity(), b.Entity()); !errors.Is(err, ErrNotFollower) {
		t.Errorf("non-follower err = %v", err)
	}
	e.World.Remove(a.Entity())
	if err := Retarget(e.World, f.Entity(), a.Entity()); !errors.Is(err, ErrTargetUnresolvable) {
		t.Errorf("removed target err = %v", err)
	}
	if err := Tune(e.World, a.Entity(), follow.DefaultTuning()); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("removed entity err = %v", err)
	}

	want := follow.Tuning{Frequency: 2, Damping: 1, Response: 0}
	if err := Tune(e.World, f.Entity(), want); err != nil {
		t.Fatalf("Tune: %v", err)
	}
	if err := Tune(e.World, f.Entity(), follow.Tuning{Frequency: -1}); !errors.Is(err, follow.ErrInvalidTuning) {
		t.Errorf("invalid tune err = %v", err)
	}
	if got := components.Follower.Get(f).Spring.Tuning(); got != want {
		t.Errorf("tuning = %+v, want %+v", got, want)
	}
}

func TestFindByNameAndSnapshot(t *testing.T) {
	e := newTestECS(t, freeze())
	target := factory.CreateTarget(e, "beacon", mgl32.Vec3{1, 0, 0}, false)
	mustFollower(t, e, "zeta", target, mgl32.Vec3{})
	mustFollower(t, e, "alpha", target, mgl32.Vec3{})

	if got, ok := FindByName(e.World, "beacon"); !ok || got != target.Entity() {
		t.Errorf("FindByName(beacon) = %v, %v", got, ok)
	}
	if _, ok := FindByName(e.World, "nobody"); ok {
		t.Error("FindByName found a missing name")
	}

	tick(t, e, dt)
	views := SnapshotFollowers(e.World)
	if len(views) != 2 || views[0].Name != "alpha" || views[1].Name != "zeta" {
		t.Fatalf("views = %+v", views)
	}
	if views[0].Target != "beacon" || views[0].Status != "integrated" {
		t.Errorf("view = %+v", views[0])
	}
}

func TestShouldLogMissing(t *testing.T) {
	tests := []struct {
		ticks, interval int
		want            bool
	}{
		{1, 60, true},
		{2, 60, false},
		{60, 60, true},
		{120, 60, true},
		{5, 0, false},
	}
	for _, tt := range tests {
		if got := shouldLogMissing(tt.ticks, tt.interval); got != tt.want {
			t.Errorf("shouldLogMissing(%d, %d) = %v", tt.ticks, tt.interval, got)
		}
	}
}
