package core

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/automoto/springfollow/components"
	cfg "github.com/automoto/springfollow/config"
	"github.com/automoto/springfollow/scenes"
	"github.com/automoto/springfollow/shared/follow"
	"github.com/automoto/springfollow/shared/netcomponents"
	"github.com/automoto/springfollow/shared/scenario"
	"github.com/automoto/springfollow/systems"
	"github.com/automoto/springfollow/tags"
	"github.com/leap-fish/necs/esync/srvsync"
	"github.com/leap-fish/necs/transports"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
	"github.com/yohamta/donburi/filter"
)

var ErrServerStopped = errors.New("server stopped")

// View is an immutable copy of the simulation published once per tick.
type View struct {
	Scenario  string
	Tick      uint64
	Followers []systems.FollowerView
	Stats     components.FollowStatsData
}

// Server owns the follow scene and runs it on a fixed tick. All world access
// happens on the loop goroutine; other goroutines queue commands.
type Server struct {
	name      string
	scene     *scenes.FollowScene
	transport *transports.WsServerTransport
	commands  chan command
	tickRate  int
	delta     float32
	stop      chan struct{}
	view      atomic.Pointer[View]
	networked atomic.Bool
	stopOnce  sync.Once
}

// NewServer builds the scene for sc and the loop that drives it.
func NewServer(name string, sc *scenario.Scenario, presets cfg.Presets, tickRate int) (*Server, error) {
	opts := scenes.DefaultSceneOptions(presets)
	opts.Extra = append(opts.Extra, systems.SyncNetFollowers)

	scene, err := scenes.NewFollowScene(sc, opts)
	if err != nil {
		return nil, err
	}
	attachNetComponents(scene.ECS())

	buf := cfg.Server.CommandBuf
	if buf <= 0 {
		buf = 1
	}
	if tickRate <= 0 {
		tickRate = 1
	}
	s := &Server{
		name:     name,
		scene:    scene,
		commands: make(chan command, buf),
		tickRate: tickRate,
		delta:    1 / float32(tickRate),
		stop:     make(chan struct{}),
	}
	s.publish()
	return s, nil
}

// Start runs the loop and serves replication on the given port. It blocks
// until the transport stops.
func (s *Server) Start(port uint) error {
	world := s.scene.World()
	srvsync.UseEsync(world)
	if err := networkSync(world); err != nil {
		return err
	}
	s.setupRouterCallbacks()
	s.networked.Store(true)

	go s.Run()

	s.transport = transports.NewWsServerTransport(port, "", nil)
	return s.transport.Start()
}

// Run ticks the scene at the configured rate until Stop is called. Once
// Start has enabled replication each tick also pushes a sync.
func (s *Server) Run() {
	ticker := time.NewTicker(time.Second / time.Duration(s.tickRate))
	defer ticker.Stop()

	log.Printf("[server] loop started at %d ticks/second", s.tickRate)
	for {
		select {
		case <-s.stop:
			log.Println("[server] loop stopped")
			return
		case <-ticker.C:
			s.step(s.delta)
			if !s.networked.Load() {
				continue
			}
			if err := srvsync.DoSync(); err != nil {
				log.Printf("[server] sync error: %v", err)
			}
		}
	}
}

// Stop gracefully shuts down the loop.
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Server) Name() string {
	return s.name
}

// step runs one tick: queued commands, the simulation, then the view.
func (s *Server) step(dt float32) {
	s.ProcessCommands()
	if err := s.scene.Update(dt); err != nil {
		log.Printf("[server] tick failed: %v", err)
		return
	}
	s.publish()
}

func (s *Server) publish() {
	s.view.Store(&View{
		Scenario:  s.scene.Name(),
		Tick:      s.scene.Tick(),
		Followers: s.scene.Followers(),
		Stats:     s.scene.Stats(),
	})
}

// View returns the most recently published snapshot.
func (s *Server) View() *View {
	return s.view.Load()
}

// Followers returns the follower views of the last tick.
func (s *Server) Followers() []systems.FollowerView {
	return s.View().Followers
}

// Follower returns one follower's view from the last tick.
func (s *Server) Follower(name string) (systems.FollowerView, bool) {
	for _, f := range s.View().Followers {
		if f.Name == name {
			return f, true
		}
	}
	return systems.FollowerView{}, false
}

func (s *Server) Tick() uint64 {
	return s.View().Tick
}

// Tune queues a tuning change and waits for the loop to apply it.
func (s *Server) Tune(ctx context.Context, follower string, t follow.Tuning) error {
	return s.do(ctx, func(scene *scenes.FollowScene) error {
		return scene.Tune(follower, t)
	})
}

// UpdateTuning reads a follower's tuning, passes it through merge and applies
// the result, all inside one loop command so concurrent partial updates never
// overwrite each other. It returns the tuning that was applied.
func (s *Server) UpdateTuning(ctx context.Context, follower string, merge func(follow.Tuning) follow.Tuning) (follow.Tuning, error) {
	var applied follow.Tuning
	err := s.do(ctx, func(scene *scenes.FollowScene) error {
		cur, err := scene.Tuning(follower)
		if err != nil {
			return err
		}
		next := merge(cur)
		if err := scene.Tune(follower, next); err != nil {
			return err
		}
		applied = next
		return nil
	})
	return applied, err
}

// Retarget queues a target change and waits for the loop to apply it.
func (s *Server) Retarget(ctx context.Context, follower, target string) error {
	return s.do(ctx, func(scene *scenes.FollowScene) error {
		return scene.Retarget(follower, target)
	})
}

// Tuning reads a follower's current tuning on the loop goroutine.
func (s *Server) Tuning(ctx context.Context, follower string) (follow.Tuning, error) {
	var t follow.Tuning
	err := s.do(ctx, func(scene *scenes.FollowScene) error {
		var err error
		t, err = scene.Tuning(follower)
		return err
	})
	return t, err
}

var (
	netFollowerCandidates = donburi.NewQuery(filter.Contains(tags.Follower, components.Follower))
	netTargetCandidates   = donburi.NewQuery(filter.Contains(tags.Target, components.Transform))
)

// attachNetComponents adds the replicated components to every scenario
// entity so SyncNetFollowers fills them each tick.
func attachNetComponents(e *ecs.ECS) {
	w := e.World
	var followers, targets []*donburi.Entry
	netFollowerCandidates.Each(w, func(entry *donburi.Entry) {
		followers = append(followers, entry)
	})
	netTargetCandidates.Each(w, func(entry *donburi.Entry) {
		targets = append(targets, entry)
	})

	// Adding components changes archetypes, so not inside Each.
	for _, entry := range followers {
		entry.AddComponent(netcomponents.NetFollower)
	}
	for _, entry := range targets {
		entry.AddComponent(netcomponents.NetTarget)
	}
	systems.SyncNetFollowers(e)
}

// networkSync marks every replicated entity for esync.
func networkSync(w donburi.World) error {
	var followers, targets []donburi.Entity
	netcomponents.NetFollower.Each(w, func(entry *donburi.Entry) {
		followers = append(followers, entry.Entity())
	})
	netcomponents.NetTarget.Each(w, func(entry *donburi.Entry) {
		targets = append(targets, entry.Entity())
	})

	var errs []error
	for _, entity := range followers {
		errs = append(errs, srvsync.NetworkSync(w, &entity,
			srvsync.WithInterp(netcomponents.NetFollower),
		))
	}
	for _, entity := range targets {
		errs = append(errs, srvsync.NetworkSync(w, &entity,
			srvsync.WithInterp(netcomponents.NetTarget),
		))
	}
	return errors.Join(errs...)
}

const commandTimeout = time.Second
