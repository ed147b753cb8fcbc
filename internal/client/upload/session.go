// Package upload implements the per-file upload state machine and the
// coordinator that owns the set of live sessions.
package upload

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/medialift/medialift/internal/client/api"
	"github.com/medialift/medialift/internal/client/hash"
	"github.com/medialift/medialift/internal/common"
)

// Backend is the slice of the REST client the session needs. *api.Client
// satisfies it.
type Backend interface {
	GeneratePresignedPost(ctx context.Context, req api.PresignRequest) (*api.PresignTarget, error)
	IndexFile(ctx context.Context, req api.IndexRequest) error
}

// FileInfo describes the local file to upload.
type FileInfo struct {
	Path     string
	Name     string
	MIMEType string
	Size     int64
}

// Policy bounds what a session accepts before any network call.
type Policy struct {
	MaxFileSize   int64
	AcceptedTypes []string
}

// Event is one observed transition. Progress is meaningful while Uploading;
// Message carries the user-facing text for the current state.
type Event struct {
	State    State
	Progress int
	Message  string
}

// Observer receives every transition of a session. Calls are strictly
// sequential; no two states are active at once for the same file.
type Observer func(Event)

// Session drives one file through hash, presign, transfer and indexing.
// A session runs at most once; a failed session is terminal and the user
// must re-select the file to retry.
type Session struct {
	backend   Backend
	transport *http.Client
	file      FileInfo
	policy    Policy

	// processType overrides the MIME-derived classification; it must agree
	// with the MIME top-level type or the session fails its guard.
	processType string

	observer Observer

	mu       sync.Mutex
	state    State
	progress int
	message  string

	cancelled  atomic.Bool
	cancelOnce sync.Once
	abortFn    atomic.Value // context.CancelFunc of the in-flight run

	done chan struct{}
}

// Option configures a Session.
type Option func(*Session)

// WithProcessType sets an explicit pipeline classification. It must match
// the file's MIME top-level type.
func WithProcessType(pt string) Option {
	return func(s *Session) { s.processType = pt }
}

// WithObserver registers the transition observer.
func WithObserver(o Observer) Option {
	return func(s *Session) { s.observer = o }
}

func NewSession(backend Backend, transport *http.Client, file FileInfo, policy Policy, opts ...Option) *Session {
	if transport == nil {
		transport = &http.Client{}
	}
	s := &Session{
		backend:   backend,
		transport: transport,
		file:      file,
		policy:    policy,
		state:     StateIdle,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Progress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Message returns the current user-facing message (error text when Failed).
func (s *Session) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

func (s *Session) transition(state State, progress int, message string) {
	s.mu.Lock()
	s.state = state
	if progress > s.progress {
		s.progress = progress
	}
	s.message = message
	ev := Event{State: s.state, Progress: s.progress, Message: s.message}
	obs := s.observer
	s.mu.Unlock()

	if obs != nil {
		obs(ev)
	}
}

func (s *Session) setProgress(percent int) {
	if s.cancelled.Load() {
		// Late transfer events after an abort are dropped; the state does
		// not revert out of Cancelled.
		return
	}
	s.mu.Lock()
	if s.state != StateUploading || percent <= s.progress {
		s.mu.Unlock()
		return
	}
	s.progress = percent
	ev := Event{State: s.state, Progress: s.progress, Message: s.message}
	obs := s.observer
	s.mu.Unlock()

	if obs != nil {
		obs(ev)
	}
}

func (s *Session) fail(err error) error {
	s.transition(StateFailed, s.Progress(), err.Error())
	return err
}

// Cancel aborts the in-flight transfer. It is idempotent: a second call on
// an already-cancelled session is a no-op, and at most one abort side effect
// is produced.
func (s *Session) Cancel() {
	s.cancelOnce.Do(func() {
		s.cancelled.Store(true)
		if fn, ok := s.abortFn.Load().(context.CancelFunc); ok && fn != nil {
			fn()
		}
	})
}

// DeriveProcessType classifies a file into a processing pipeline from its
// MIME type. The backend remains the source of truth for which pipeline an
// indexed file actually enters.
func DeriveProcessType(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "video/"):
		return "video"
	case strings.HasPrefix(mimeType, "audio/"):
		return "audio"
	default:
		return "image"
	}
}

// Done is closed once the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} { return s.done }

// Run drives the session to a terminal state. The returned error is nil only
// when the session Completed; a cancelled session returns context.Canceled.
func (s *Session) Run(ctx context.Context) error {
	if s.State() != StateIdle {
		return fmt.Errorf("session already started")
	}
	defer close(s.done)

	// Local guards: violating either short-circuits to Failed without any
	// network call.
	if s.file.Size > s.policy.MaxFileSize {
		return s.fail(common.ErrFileTooLarge)
	}
	if !slices.Contains(s.policy.AcceptedTypes, s.file.MIMEType) {
		return s.fail(common.ErrFileTypeInvalid)
	}
	processType := DeriveProcessType(s.file.MIMEType)
	if s.processType != "" && s.processType != processType {
		return s.fail(common.ErrProcessTypeMismatch)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.abortFn.Store(cancel)
	if s.cancelled.Load() {
		// Cancel raced ahead of Run; honor it before any work.
		s.transition(StateCancelled, s.Progress(), "Upload Cancelled")
		return context.Canceled
	}

	s.transition(StateHashing, 0, "Computing checksum")
	res := <-hash.SumFile(runCtx, s.file.Path)
	if res.Err != nil {
		if s.cancelled.Load() {
			s.transition(StateCancelled, s.Progress(), "Upload Cancelled")
			return context.Canceled
		}
		return s.fail(fmt.Errorf("checksum: %w", res.Err))
	}

	s.transition(StateRequestingTarget, 0, "Requesting upload target")
	target, err := s.backend.GeneratePresignedPost(runCtx, api.PresignRequest{
		Filename: s.file.Name,
		Filetype: s.file.MIMEType,
		MD5:      res.Digest,
		Filesize: s.file.Size,
	})
	if err != nil {
		if errors.Is(err, common.ErrStorageQuotaExceeded) {
			return s.fail(common.ErrStorageQuotaExceeded)
		}
		var se *api.StatusError
		if errors.As(err, &se) && se.Detail != "" {
			return s.fail(errors.New(se.Detail))
		}
		return s.fail(common.ErrNetwork)
	}

	s.transition(StateUploading, 0, "Uploading")
	if err := s.put(runCtx, target); err != nil {
		if s.cancelled.Load() {
			s.transition(StateCancelled, s.Progress(), "Upload Cancelled")
			return context.Canceled
		}
		return s.fail(common.ErrNetwork)
	}
	// The transfer only advances once every byte is acknowledged.
	s.setProgress(100)

	s.transition(StateIndexing, 100, "Please wait while we index your file")
	// Pin the index request to the row the presign created, so identical
	// files uploaded concurrently cannot claim each other's rows through
	// the server's MD5 fallback.
	err = s.backend.IndexFile(runCtx, api.IndexRequest{
		Config: api.IndexConfig{
			Filename:      s.file.Name,
			IndexFilename: target.Filename,
		},
		ProcessType: processType,
		MD5:         res.Digest,
		IDRelated:   &target.ContentID,
	})
	if err != nil {
		if errors.Is(err, common.ErrIndexingRejected) {
			return s.fail(common.ErrIndexingRejected)
		}
		return s.fail(common.ErrNetwork)
	}

	s.transition(StateCompleted, 100, "Upload Complete")
	return nil
}

// put streams the file to the signed target with progress reporting. The
// Content-Type and Content-MD5 headers must match what the signature was
// issued for.
func (s *Session) put(ctx context.Context, target *api.PresignTarget) error {
	f, err := os.Open(s.file.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	body := &progressReader{r: f, total: s.file.Size, report: s.setProgress}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target.SignedURL, body)
	if err != nil {
		return err
	}
	req.ContentLength = s.file.Size
	req.Header.Set("Content-Type", s.file.MIMEType)
	req.Header.Set("Content-MD5", target.MD5)

	resp, err := s.transport.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upload failed: %s", resp.Status)
	}
	return nil
}
