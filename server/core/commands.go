package core

import (
	"context"
	"log"

	"github.com/automoto/springfollow/scenes"
	"github.com/automoto/springfollow/shared/follow"
	"github.com/automoto/springfollow/shared/messages"
	"github.com/leap-fish/necs/router"
)

type command struct {
	apply func(*scenes.FollowScene) error
	done  chan error
}

// do queues fn for the loop goroutine and waits for its result.
func (s *Server) do(ctx context.Context, fn func(*scenes.FollowScene) error) error {
	cmd := command{apply: fn, done: make(chan error, 1)}

	select {
	case s.commands <- cmd:
	case <-s.stop:
		return ErrServerStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-cmd.done:
		return err
	case <-s.stop:
		return ErrServerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ProcessCommands applies every queued command. Called at the start of each
// tick so mutations never interleave with a sweep.
func (s *Server) ProcessCommands() {
	for {
		select {
		case cmd := <-s.commands:
			cmd.done <- cmd.apply(s.scene)
		default:
			return
		}
	}
}

func (s *Server) setupRouterCallbacks() {
	router.OnConnect(func(client *router.NetworkClient) {
		log.Printf("[server] client connected: %s", client.Id())
	})

	router.OnDisconnect(func(client *router.NetworkClient, err error) {
		if err != nil {
			log.Printf("[server] client %s disconnected with error: %v", client.Id(), err)
			return
		}
		log.Printf("[server] client %s disconnected", client.Id())
	})

	router.On(func(client *router.NetworkClient, req messages.TuneRequest) {
		s.onTuneRequest(client, req)
	})

	router.On(func(client *router.NetworkClient, req messages.RetargetRequest) {
		s.onRetargetRequest(client, req)
	})

	router.OnError(func(client *router.NetworkClient, err error) {
		log.Printf("[server] client error: %v", err)
	})
}

func (s *Server) onTuneRequest(client *router.NetworkClient, req messages.TuneRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	t := follow.Tuning{
		Frequency: req.Frequency,
		Damping:   req.Damping,
		Response:  req.Response,
	}
	if err := s.Tune(ctx, req.Follower, t); err != nil {
		log.Printf("[server] tune %s from %s rejected: %v", req.Follower, client.Id(), err)
		return
	}
	log.Printf("[server] %s tuned %s to f=%g z=%g r=%g",
		client.Id(), req.Follower, t.Frequency, t.Damping, t.Response)
}

func (s *Server) onRetargetRequest(client *router.NetworkClient, req messages.RetargetRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := s.Retarget(ctx, req.Follower, req.Target); err != nil {
		log.Printf("[server] retarget %s from %s rejected: %v", req.Follower, client.Id(), err)
		return
	}
	log.Printf("[server] %s retargeted %s to %s", client.Id(), req.Follower, req.Target)
}
