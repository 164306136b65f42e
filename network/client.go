package network

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/automoto/springfollow/shared/messages"
	"github.com/automoto/springfollow/shared/netcomponents"
	"github.com/coder/websocket"
	"github.com/leap-fish/necs/esync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
)

type ClientState int

const (
	StateDisconnected ClientState = iota
	StateConnecting
	StateConnected
	StateError
)

// Replica is the decoded replicated state of one server snapshot.
type Replica struct {
	Followers []netcomponents.NetFollowerData
	Targets   []netcomponents.NetTargetData
}

// Client watches a follow server over WebSocket and can send tuning and
// retarget requests. All shared fields are protected by mu (router
// callbacks run on necs goroutines).
type Client struct {
	mu sync.RWMutex

	state     ClientState
	lastError error
	conn      *websocket.Conn

	snapshotCh chan esync.WorldSnapshot // size-1 buffered; latest wins
}

func NewClient() *Client {
	return &Client{
		state:      StateDisconnected,
		snapshotCh: make(chan esync.WorldSnapshot, 1),
	}
}

// Connect dials the server in a background goroutine.
func (c *Client) Connect(address string) {
	c.mu.Lock()
	c.state = StateConnecting
	c.lastError = nil
	c.mu.Unlock()

	router.OnConnect(func(_ *router.NetworkClient) {
		log.Println("[client] connected to server")
		c.mu.Lock()
		c.state = StateConnected
		c.mu.Unlock()
	})

	router.On(func(_ *router.NetworkClient, snapshot esync.WorldSnapshot) {
		select { // drain stale, push latest
		case <-c.snapshotCh:
		default:
		}
		c.snapshotCh <- snapshot
	})

	router.OnDisconnect(func(_ *router.NetworkClient, err error) {
		log.Printf("[client] disconnected: %v", err)
		c.mu.Lock()
		if c.state != StateError {
			c.state = StateDisconnected
		}
		c.conn = nil
		c.mu.Unlock()
	})

	router.OnError(func(_ *router.NetworkClient, err error) {
		log.Printf("[client] error: %v", err)
	})

	go func() {
		transport := transports.NewWsClientTransport("ws://" + address)
		err := transport.Start(func(conn *websocket.Conn) {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
		})
		if err != nil {
			c.setError(fmt.Errorf("connection failed: %w", err))
		}
	}()
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.state = StateDisconnected
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.CloseNow()
	}

	router.ResetRouter()
}

func (c *Client) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// LatestReplica decodes the most recent snapshot, or returns false when none
// arrived since the last call. Non-blocking.
func (c *Client) LatestReplica() (Replica, bool) {
	select {
	case snap := <-c.snapshotCh:
		return DecodeSnapshot(snap), true
	default:
		return Replica{}, false
	}
}

// Tune asks the server to change a follower's tuning.
func (c *Client) Tune(follower string, frequency, damping, response float32) error {
	return c.SendMessage(messages.TuneRequest{
		Follower:  follower,
		Frequency: frequency,
		Damping:   damping,
		Response:  response,
	})
}

// Retarget asks the server to point a follower at another entity.
func (c *Client) Retarget(follower, target string) error {
	return c.SendMessage(messages.RetargetRequest{Follower: follower, Target: target})
}

func (c *Client) SendMessage(msg any) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected")
	}

	payload, err := router.Serialize(msg)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	return conn.Write(context.Background(), websocket.MessageBinary, payload)
}

func (c *Client) setError(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastError = err
	c.mu.Unlock()
}

// DecodeSnapshot deserializes every replicated follower and target.
// Components that fail to decode are skipped.
func DecodeSnapshot(snapshot esync.WorldSnapshot) Replica {
	var comps []any
	for _, ent := range snapshot {
		for _, componentBytes := range ent.State {
			instance, err := esync.Mapper.Deserialize(componentBytes)
			if err != nil {
				continue
			}
			comps = append(comps, instance)
		}
	}
	return replicaFrom(comps)
}

func replicaFrom(comps []any) Replica {
	var r Replica
	for _, data := range comps {
		switch v := data.(type) {
		case netcomponents.NetFollowerData:
			r.Followers = append(r.Followers, v)
		case netcomponents.NetTargetData:
			r.Targets = append(r.Targets, v)
		}
	}
	sort.Slice(r.Followers, func(i, j int) bool {
		return r.Followers[i].Name < r.Followers[j].Name
	})
	sort.Slice(r.Targets, func(i, j int) bool {
		return r.Targets[i].Name < r.Targets[j].Name
	})
	return r
}
