package upload

import (
	"context"
	"errors"
	"net/http"
	"sync"
)

// ErrUploadInProgress is returned by Start while another session is live.
// The app accepts a single concurrent file; relaxing this needs an explicit
// queue or concurrency limiter.
var ErrUploadInProgress = errors.New("an upload is already in progress")

// Coordinator owns the sessions spawned by drop/select interactions and the
// "needs refresh" signal consumed by the listing view.
type Coordinator struct {
	backend   Backend
	transport *http.Client

	mu           sync.Mutex
	active       *Session
	needsRefresh bool
}

func NewCoordinator(backend Backend, transport *http.Client) *Coordinator {
	return &Coordinator{backend: backend, transport: transport}
}

// Start spawns a session for the file and runs it to a terminal state in the
// background. The observer, if any, receives transitions before the
// coordinator's own bookkeeping for that event.
func (c *Coordinator) Start(ctx context.Context, file FileInfo, policy Policy, opts ...Option) (*Session, error) {
	c.mu.Lock()
	if c.active != nil && !c.active.State().Terminal() {
		c.mu.Unlock()
		return nil, ErrUploadInProgress
	}

	session := NewSession(c.backend, c.transport, file, policy, opts...)
	c.active = session
	c.mu.Unlock()

	go func() {
		err := session.Run(ctx)

		c.mu.Lock()
		if err == nil {
			c.needsRefresh = true
		}
		if c.active == session {
			c.active = nil
		}
		c.mu.Unlock()
	}()

	return session, nil
}

// Active returns the live session, or nil.
func (c *Coordinator) Active() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// ConsumeRefresh reports whether any session completed since the last call,
// clearing the flag. The listing view consumes it exactly once per
// completion event and resets its pagination to page 1.
func (c *Coordinator) ConsumeRefresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.needsRefresh
	c.needsRefresh = false
	return v
}
