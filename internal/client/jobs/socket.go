package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/medialift/medialift/internal/logging"
)

// subscriberBuffer bounds how many undelivered messages one subscriber can
// lag behind; beyond that, older messages are dropped (last wins anyway).
const subscriberBuffer = 16

// SocketClient maintains the single shared connection to the job status
// channel and multiplexes push messages to subscribers keyed by job id.
// It reconnects automatically with capped backoff and re-sends every live
// subscription on each (re)connection, since the server keeps no
// subscription state across connections.
type SocketClient struct {
	url     string
	tokenFn func() string
	dialer  *websocket.Dialer
	log     logging.Logger

	minDelay time.Duration
	maxDelay time.Duration

	mu      sync.Mutex
	conn    *websocket.Conn
	writeMu sync.Mutex
	subs    map[string][]chan StatusMessage
}

// NewSocketClient wires the client to a status endpoint. tokenFn is read
// every time a subscription frame is sent, so a re-login picks up the fresh
// token on the next frame instead of reusing the one from construction time.
func NewSocketClient(url string, tokenFn func() string, log logging.Logger, minDelay, maxDelay time.Duration) *SocketClient {
	if minDelay <= 0 {
		minDelay = time.Second
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	if tokenFn == nil {
		tokenFn = func() string { return "" }
	}
	return &SocketClient{
		url:      url,
		tokenFn:  tokenFn,
		dialer:   websocket.DefaultDialer,
		log:      log,
		minDelay: minDelay,
		maxDelay: maxDelay,
		subs:     make(map[string][]chan StatusMessage),
	}
}

// Subscribe registers interest in one job id and returns the delivery
// channel plus an unsubscribe function. Each job card subscribes itself
// independently; the subscription frame is sent immediately when a
// connection is up, and re-sent on every reconnection.
func (c *SocketClient) Subscribe(jobID string) (<-chan StatusMessage, func()) {
	ch := make(chan StatusMessage, subscriberBuffer)

	c.mu.Lock()
	c.subs[jobID] = append(c.subs[jobID], ch)
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		c.send(conn, subscribeFrame{Token: c.tokenFn(), JobID: jobID})
	}

	unsubscribe := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		chans := c.subs[jobID]
		for i, sub := range chans {
			if sub == ch {
				c.subs[jobID] = append(chans[:i], chans[i+1:]...)
				break
			}
		}
		if len(c.subs[jobID]) == 0 {
			delete(c.subs, jobID)
		}
	}
	return ch, unsubscribe
}

// Run connects and serves messages until ctx is cancelled. In-flight
// projections are not reset by a reconnect; subscribers keep their last
// known state and can seed from a REST snapshot if they suspect a gap.
func (c *SocketClient) Run(ctx context.Context) {
	delay := c.minDelay

	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			c.log.Warn(ctx, "job socket dial failed", "error", err, "retry_in", delay.String())
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			if delay *= 2; delay > c.maxDelay {
				delay = c.maxDelay
			}
			continue
		}
		delay = c.minDelay

		c.mu.Lock()
		c.conn = conn
		jobIDs := make([]string, 0, len(c.subs))
		for id := range c.subs {
			jobIDs = append(jobIDs, id)
		}
		c.mu.Unlock()

		// The auth token is re-sent with every subscription on every
		// connection; nothing is cached server-side across reconnects.
		for _, id := range jobIDs {
			c.send(conn, subscribeFrame{Token: c.tokenFn(), JobID: id})
		}

		stop := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				_ = conn.Close()
			case <-stop:
			}
		}()

		c.readLoop(ctx, conn)
		close(stop)

		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.mu.Unlock()
		_ = conn.Close()
	}
}

func (c *SocketClient) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var msg StatusMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() == nil {
				c.log.Warn(ctx, "job socket read failed, reconnecting", "error", err)
			}
			return
		}
		c.dispatch(msg)
	}
}

// dispatch delivers a message to the subscribers of its job id. Messages
// for untracked job ids are dropped; a full subscriber buffer drops the
// oldest pending message first, since last message wins for display.
func (c *SocketClient) dispatch(msg StatusMessage) {
	c.mu.Lock()
	chans := make([]chan StatusMessage, len(c.subs[msg.JobID]))
	copy(chans, c.subs[msg.JobID])
	c.mu.Unlock()

	for _, ch := range chans {
		select {
		case ch <- msg:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- msg:
			default:
			}
		}
	}
}

func (c *SocketClient) send(conn *websocket.Conn, v any) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteJSON(v); err != nil {
		c.log.Warn(context.Background(), "job socket write failed", "error", err)
	}
}
