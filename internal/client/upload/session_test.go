package upload

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medialift/medialift/internal/client/api"
	"github.com/medialift/medialift/internal/common"
)

// fakeBackend counts calls and lets tests script the presign response.
type fakeBackend struct {
	mu           sync.Mutex
	presignCalls int
	indexCalls   int

	presignErr error
	target     *api.PresignTarget
	indexErr   error

	lastPresign api.PresignRequest
	lastIndex   api.IndexRequest
}

func (f *fakeBackend) GeneratePresignedPost(_ context.Context, req api.PresignRequest) (*api.PresignTarget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presignCalls++
	f.lastPresign = req
	if f.presignErr != nil {
		return nil, f.presignErr
	}
	return f.target, nil
}

func (f *fakeBackend) IndexFile(_ context.Context, req api.IndexRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexCalls++
	f.lastIndex = req
	return f.indexErr
}

func (f *fakeBackend) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.presignCalls, f.indexCalls
}

func writeTempFile(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func videoPolicy() Policy {
	return Policy{MaxFileSize: 1 << 20, AcceptedTypes: []string{"video/mp4"}}
}

// recorder collects observed events in order.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) observe(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) states() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.State)
	}
	return out
}

func TestSession_HappyPath(t *testing.T) {
	t.Parallel()

	content := []byte("fake video bytes")
	path := writeTempFile(t, content)
	sum := md5.Sum(content)
	wantHex := hex.EncodeToString(sum[:])
	wantB64 := base64.StdEncoding.EncodeToString(sum[:])

	var gotMD5Header, gotCTHeader string
	var gotBody []byte
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		gotMD5Header = r.Header.Get("Content-MD5")
		gotCTHeader = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer store.Close()

	backend := &fakeBackend{target: &api.PresignTarget{
		SignedURL: store.URL + "/bucket/key",
		Filename:  "clip_abc123.mp4",
		MD5:       wantB64,
		ContentID: 7,
	}}

	rec := &recorder{}
	s := NewSession(backend, nil, FileInfo{
		Path: path, Name: "clip.mp4", MIMEType: "video/mp4", Size: int64(len(content)),
	}, videoPolicy(), WithObserver(rec.observe))

	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, StateCompleted, s.State())
	assert.Equal(t, 100, s.Progress())
	assert.Equal(t, "Upload Complete", s.Message())

	assert.Equal(t, wantB64, gotMD5Header)
	assert.Equal(t, "video/mp4", gotCTHeader)
	assert.Equal(t, content, gotBody)

	assert.Equal(t, wantHex, backend.lastPresign.MD5)
	assert.Equal(t, "clip_abc123.mp4", backend.lastIndex.Config.IndexFilename)
	assert.Equal(t, "video", backend.lastIndex.ProcessType)
	assert.Equal(t, wantHex, backend.lastIndex.MD5)
	// The index request must target the exact row the presign created, so
	// the server never falls back to matching by MD5.
	require.NotNil(t, backend.lastIndex.IDRelated)
	assert.Equal(t, int64(7), *backend.lastIndex.IDRelated)

	states := rec.states()
	assert.Equal(t, StateHashing, states[0])
	assert.Equal(t, StateCompleted, states[len(states)-1])
	assert.Contains(t, states, StateRequestingTarget)
	assert.Contains(t, states, StateUploading)
	assert.Contains(t, states, StateIndexing)
}

func TestSession_OversizedFile_NoNetworkCalls(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, []byte("0123456789"))
	backend := &fakeBackend{}

	s := NewSession(backend, nil, FileInfo{
		Path: path, Name: "clip.mp4", MIMEType: "video/mp4", Size: 10,
	}, Policy{MaxFileSize: 5, AcceptedTypes: []string{"video/mp4"}})

	err := s.Run(context.Background())
	require.ErrorIs(t, err, common.ErrFileTooLarge)

	assert.Equal(t, StateFailed, s.State())
	assert.Equal(t, "File size too large", s.Message())

	presign, index := backend.calls()
	assert.Zero(t, presign)
	assert.Zero(t, index)
}

func TestSession_RejectedMIMEType_NoNetworkCalls(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, []byte("x"))
	backend := &fakeBackend{}

	s := NewSession(backend, nil, FileInfo{
		Path: path, Name: "notes.txt", MIMEType: "text/plain", Size: 1,
	}, videoPolicy())

	err := s.Run(context.Background())
	require.ErrorIs(t, err, common.ErrFileTypeInvalid)

	assert.Equal(t, "File type not valid", s.Message())
	presign, _ := backend.calls()
	assert.Zero(t, presign)
}

func TestSession_ProcessTypeMismatch(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, []byte("x"))
	s := NewSession(&fakeBackend{}, nil, FileInfo{
		Path: path, Name: "clip.mp4", MIMEType: "video/mp4", Size: 1,
	}, videoPolicy(), WithProcessType("audio"))

	err := s.Run(context.Background())
	require.ErrorIs(t, err, common.ErrProcessTypeMismatch)
}

func TestSession_QuotaExceeded(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, []byte("x"))
	backend := &fakeBackend{presignErr: common.ErrStorageQuotaExceeded}

	s := NewSession(backend, nil, FileInfo{
		Path: path, Name: "clip.mp4", MIMEType: "video/mp4", Size: 1,
	}, videoPolicy())

	err := s.Run(context.Background())
	require.ErrorIs(t, err, common.ErrStorageQuotaExceeded)
	assert.Equal(t, "Storage limit exceeded", s.Message())
}

func TestSession_PresignDetailSurfaced(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, []byte("x"))
	backend := &fakeBackend{presignErr: &api.StatusError{StatusCode: 400, Detail: "Invalid upload request"}}

	s := NewSession(backend, nil, FileInfo{
		Path: path, Name: "clip.mp4", MIMEType: "video/mp4", Size: 1,
	}, videoPolicy())

	require.Error(t, s.Run(context.Background()))
	assert.Equal(t, "Invalid upload request", s.Message())
}

func TestSession_IndexingRejected(t *testing.T) {
	t.Parallel()

	content := []byte("bytes")
	path := writeTempFile(t, content)

	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer store.Close()

	backend := &fakeBackend{
		target:   &api.PresignTarget{SignedURL: store.URL, Filename: "f", MD5: "m"},
		indexErr: common.ErrIndexingRejected,
	}

	s := NewSession(backend, nil, FileInfo{
		Path: path, Name: "clip.mp4", MIMEType: "video/mp4", Size: int64(len(content)),
	}, videoPolicy())

	err := s.Run(context.Background())
	require.ErrorIs(t, err, common.ErrIndexingRejected)
	assert.Equal(t, StateFailed, s.State())
	// The object was transferred before indexing failed.
	assert.Equal(t, 100, s.Progress())
}

func TestSession_CancelDuringTransfer(t *testing.T) {
	t.Parallel()

	content := make([]byte, 8<<20)
	path := writeTempFile(t, content)

	started := make(chan struct{})
	release := make(chan struct{})
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		// Stall without reading the body so the transfer cannot finish.
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer store.Close()
	defer close(release)

	backend := &fakeBackend{target: &api.PresignTarget{SignedURL: store.URL, Filename: "f", MD5: "m"}}
	s := NewSession(backend, nil, FileInfo{
		Path: path, Name: "clip.mp4", MIMEType: "video/mp4", Size: int64(len(content)),
	}, Policy{MaxFileSize: 16 << 20, AcceptedTypes: []string{"video/mp4"}})

	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(context.Background()) }()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("transfer never started")
	}
	s.Cancel()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not terminate after cancel")
	}

	assert.Equal(t, StateCancelled, s.State())
	assert.Equal(t, "Upload Cancelled", s.Message())

	// A second cancel is a no-op.
	s.Cancel()
	assert.Equal(t, StateCancelled, s.State())
}

func TestSession_CancelBeforeRun(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, []byte("x"))
	backend := &fakeBackend{}
	s := NewSession(backend, nil, FileInfo{
		Path: path, Name: "clip.mp4", MIMEType: "video/mp4", Size: 1,
	}, videoPolicy())

	s.Cancel()
	err := s.Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateCancelled, s.State())

	presign, _ := backend.calls()
	assert.Zero(t, presign)
}

func TestSession_RunTwice(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, []byte("0123456789"))
	s := NewSession(&fakeBackend{}, nil, FileInfo{
		Path: path, Name: "clip.mp4", MIMEType: "video/mp4", Size: 10,
	}, Policy{MaxFileSize: 5, AcceptedTypes: []string{"video/mp4"}})

	_ = s.Run(context.Background())
	require.Error(t, s.Run(context.Background()))
}

func TestDeriveProcessType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "video", DeriveProcessType("video/mp4"))
	assert.Equal(t, "audio", DeriveProcessType("audio/mpeg"))
	assert.Equal(t, "image", DeriveProcessType("image/png"))
	assert.Equal(t, "image", DeriveProcessType("application/octet-stream"))
}
