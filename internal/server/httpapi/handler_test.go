package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medialift/medialift/internal/common"
	"github.com/medialift/medialift/internal/logging"
	"github.com/medialift/medialift/internal/server/auth"
	sc "github.com/medialift/medialift/internal/server/config"
	"github.com/medialift/medialift/internal/server/models"
	contentsrepo "github.com/medialift/medialift/internal/server/repositories/contents"
	jobsrepo "github.com/medialift/medialift/internal/server/repositories/jobs"
	usersrepo "github.com/medialift/medialift/internal/server/repositories/users"
)

// ---- fakes ----

type fakeUsers struct {
	users map[int64]*models.User
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsers) AddStorageUsed(_ context.Context, id int64, delta int64) error {
	if u, ok := f.users[id]; ok {
		u.StorageUsed += delta
	}
	return nil
}

type fakeContents struct {
	nextID int64
	rows   map[int64]*models.Content
}

func (f *fakeContents) Create(_ context.Context, c *models.Content) (*models.Content, error) {
	f.nextID++
	c.ID = f.nextID
	f.rows[c.ID] = c
	return c, nil
}

func (f *fakeContents) GetByID(_ context.Context, userID, id int64) (*models.Content, error) {
	c, ok := f.rows[id]
	if !ok || c.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

func (f *fakeContents) GetByMD5(_ context.Context, userID int64, md5 string) (*models.Content, error) {
	for _, c := range f.rows {
		if c.UserID == userID && c.MD5 == md5 && c.Status == models.ContentStatusProcessing {
			return c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeContents) MarkIndexed(_ context.Context, userID, id int64, contentType string, size int64) error {
	c, ok := f.rows[id]
	if !ok || c.UserID != userID {
		return common.ErrorNotFound
	}
	c.Status = models.ContentStatusCompleted
	c.ContentType = contentType
	c.Size = size
	return nil
}

func (f *fakeContents) List(_ context.Context, userID int64, contentType string, limit, offset int) ([]models.Content, int, error) {
	var all []models.Content
	for _, c := range f.rows {
		if c.UserID != userID {
			continue
		}
		if contentType != "" && c.ContentType != contentType {
			continue
		}
		all = append(all, *c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

type fakeJobs struct {
	rows map[string]*models.Job
}

func (f *fakeJobs) Create(_ context.Context, j *models.Job) error {
	f.rows[j.JobID] = j
	return nil
}

func (f *fakeJobs) Get(_ context.Context, userID int64, jobID string) (*models.Job, error) {
	j, ok := f.rows[jobID]
	if !ok || j.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return j, nil
}

func (f *fakeJobs) List(_ context.Context, userID int64, jobType string, limit, offset int) ([]models.Job, int, error) {
	var all []models.Job
	for _, j := range f.rows {
		if j.UserID != userID {
			continue
		}
		if jobType != "" && j.JobType != jobType {
			continue
		}
		all = append(all, *j)
	}
	return all, len(all), nil
}

func (f *fakeJobs) UpdateStatus(_ context.Context, jobID, status string, progress int, model string) error {
	j, ok := f.rows[jobID]
	if !ok {
		return common.ErrorNotFound
	}
	j.Status = status
	j.Progress = progress
	j.Model = model
	return nil
}

func (f *fakeJobs) Cancel(_ context.Context, userID int64, jobID string) error {
	j, ok := f.rows[jobID]
	if !ok || j.UserID != userID || models.TerminalJobStatus(j.Status) {
		return common.ErrorNotFound
	}
	j.Status = models.JobStatusCancelled
	return nil
}

type fakeRepoManager struct {
	users    *fakeUsers
	contents *fakeContents
	jobs     *fakeJobs
}

func (f *fakeRepoManager) Conn() *sql.DB { return nil }

func (f *fakeRepoManager) Users() usersrepo.Repository { return f.users }

func (f *fakeRepoManager) Contents() contentsrepo.Repository { return f.contents }

func (f *fakeRepoManager) Jobs() jobsrepo.Repository { return f.jobs }

func (f *fakeRepoManager) RunMigrations(_ context.Context) error { return nil }

func (f *fakeRepoManager) Close() error { return nil }

type fakePresigner struct {
	url string
	err error

	lastKey string
	lastCT  string
	lastMD5 string
}

func (f *fakePresigner) PresignPut(_ context.Context, key, contentType, contentMD5 string) (string, error) {
	f.lastKey, f.lastCT, f.lastMD5 = key, contentType, contentMD5
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

// ---- test fixture ----

type fixture struct {
	repos     *fakeRepoManager
	presigner *fakePresigner
	server    *httptest.Server
	token     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &sc.Config{}
	cfg.LoadDefaults()

	hash, err := auth.HashPassword("pw123")
	require.NoError(t, err)

	repos := &fakeRepoManager{
		users: &fakeUsers{users: map[int64]*models.User{
			1: {ID: 1, Email: "u@example.com", PasswordHash: hash, Tier: "free"},
		}},
		contents: &fakeContents{rows: map[int64]*models.Content{}},
		jobs:     &fakeJobs{rows: map[string]*models.Job{}},
	}
	presigner := &fakePresigner{url: "https://store.example/signed"}

	log := logging.NewSlogLogger(slog.New(slog.DiscardHandler))
	h := NewHandler(cfg, repos, presigner, log)
	srv := httptest.NewServer(h.Router(nil))
	t.Cleanup(srv.Close)

	token, err := auth.GenerateToken(1, []byte(cfg.SecretKey), time.Hour)
	require.NoError(t, err)

	return &fixture{repos: repos, presigner: presigner, server: srv, token: token}
}

func (f *fixture) do(t *testing.T, method, path string, body any, withToken bool) (*http.Response, envelopeBody) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, f.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if withToken {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var env envelopeBody
	_ = json.NewDecoder(resp.Body).Decode(&env)
	return resp, env
}

type envelopeBody struct {
	Detail string          `json:"detail"`
	Data   json.RawMessage `json:"data"`
	Total  *int            `json:"total"`
}

// ---- tests ----

func TestLogin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, env := f.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email": "u@example.com", "password": "pw123",
	}, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data.AccessToken)

	userID, err := auth.GetUserIDFromToken(data.AccessToken, []byte("secretKey"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), userID)
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, env := f.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email": "u@example.com", "password": "nope",
	}, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", env.Detail)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodGet, "/jobs/get_jobs", nil, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGetUserTier(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, env := f.do(t, http.MethodGet, "/options/user_tier", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data struct {
		Tier       string `json:"tier"`
		MaxFilters int    `json:"max_filters"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "free", data.Tier)
	assert.Equal(t, 2, data.MaxFilters)

	// An upgraded user gets the wider cap on the next fetch.
	f.repos.users.users[1].Tier = "pro"
	resp, env = f.do(t, http.MethodGet, "/options/user_tier", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "pro", data.Tier)
	assert.Equal(t, 6, data.MaxFilters)
}

func TestGeneratePresignedPost(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, env := f.do(t, http.MethodPost, "/upload/generate_presigned_post", map[string]any{
		"filename": "my clip.mp4",
		"filetype": "video/mp4",
		"md5":      "5eb63bbbe01eeed093cb22bb8f5acdc3",
		"filesize": 1024,
	}, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var data struct {
		SignedURL string `json:"signed_url"`
		Filename  string `json:"filename"`
		MD5       string `json:"md5"`
		ID        int64  `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "https://store.example/signed", data.SignedURL)
	assert.Equal(t, "XrY7u+Ae7tCTyyK7j1rNww==", data.MD5)
	assert.NotZero(t, data.ID)

	// The signature binds the declared MIME type and digest.
	assert.Equal(t, "video/mp4", f.presigner.lastCT)
	assert.Equal(t, "XrY7u+Ae7tCTyyK7j1rNww==", f.presigner.lastMD5)

	// A processing content row was recorded.
	row := f.repos.contents.rows[data.ID]
	require.NotNil(t, row)
	assert.Equal(t, models.ContentStatusProcessing, row.Status)
	assert.Equal(t, "video", row.ContentType)
}

func TestGeneratePresignedPost_QuotaExceeded(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.repos.users.users[1].StorageUsed = 10_000_000_000

	resp, env := f.do(t, http.MethodPost, "/upload/generate_presigned_post", map[string]any{
		"filename": "clip.mp4",
		"filetype": "video/mp4",
		"md5":      "5eb63bbbe01eeed093cb22bb8f5acdc3",
		"filesize": 1024,
	}, true)
	assert.Equal(t, http.StatusInsufficientStorage, resp.StatusCode)
	assert.Equal(t, "Storage limit exceeded", env.Detail)
}

func TestGeneratePresignedPost_BadDigest(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodPost, "/upload/generate_presigned_post", map[string]any{
		"filename": "clip.mp4",
		"filetype": "video/mp4",
		"md5":      "zz",
		"filesize": 1024,
	}, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestIndexFile(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	content, err := f.repos.contents.Create(context.Background(), &models.Content{
		UserID: 1, Title: "clip.mp4", MD5: "abc123", Status: models.ContentStatusProcessing,
		ContentType: "video", Size: 2048,
	})
	require.NoError(t, err)

	resp, _ := f.do(t, http.MethodPost, "/upload/indexfile", map[string]any{
		"config":      map[string]string{"filename": "clip.mp4", "indexfilename": "clip_x.mp4"},
		"processtype": "video",
		"md5":         "abc123",
	}, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	assert.Equal(t, models.ContentStatusCompleted, f.repos.contents.rows[content.ID].Status)
	assert.Equal(t, int64(2048), f.repos.users.users[1].StorageUsed)
}

func TestIndexFile_ProcessTypeMismatch(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.repos.contents.Create(context.Background(), &models.Content{
		UserID: 1, MD5: "abc123", Status: models.ContentStatusProcessing, ContentType: "video",
	})
	require.NoError(t, err)

	resp, _ := f.do(t, http.MethodPost, "/upload/indexfile", map[string]any{
		"config":      map[string]string{"filename": "a", "indexfilename": "b"},
		"processtype": "audio",
		"md5":         "abc123",
	}, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestIndexFile_NoPendingUpload(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodPost, "/upload/indexfile", map[string]any{
		"config":      map[string]string{"filename": "a", "indexfilename": "b"},
		"processtype": "video",
		"md5":         "missing",
	}, true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func registerJobBody(contentID int64, filters map[string]any) map[string]any {
	return map[string]any{
		"job_type": "video",
		"config_json": map[string]any{
			"job_data": map[string]any{
				"content_id":   contentID,
				"content_type": "video",
				"filters":      filters,
			},
		},
	}
}

func TestRegisterJob(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	content, err := f.repos.contents.Create(context.Background(), &models.Content{
		UserID: 1, Status: models.ContentStatusCompleted, ContentType: "video",
	})
	require.NoError(t, err)

	resp, env := f.do(t, http.MethodPost, "/jobs/register_job", registerJobBody(content.ID, map[string]any{
		"video_deblurring": map[string]any{"active": true},
		"video_denoising":  map[string]any{"active": false},
	}), true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var job struct {
		JobID  string `json:"job_id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &job))
	assert.NotEmpty(t, job.JobID)
	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.Contains(t, f.repos.jobs.rows, job.JobID)
}

func TestRegisterJob_ContentStillIndexing(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	content, err := f.repos.contents.Create(context.Background(), &models.Content{
		UserID: 1, Status: models.ContentStatusProcessing, ContentType: "video",
	})
	require.NoError(t, err)

	resp, _ := f.do(t, http.MethodPost, "/jobs/register_job", registerJobBody(content.ID, map[string]any{
		"video_deblurring": map[string]any{"active": true},
	}), true)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRegisterJob_FilterCapEnforced(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	content, err := f.repos.contents.Create(context.Background(), &models.Content{
		UserID: 1, Status: models.ContentStatusCompleted, ContentType: "video",
	})
	require.NoError(t, err)

	// The free tier allows 2 active filters; 3 must be rejected.
	resp, env := f.do(t, http.MethodPost, "/jobs/register_job", registerJobBody(content.ID, map[string]any{
		"video_deblurring": map[string]any{"active": true},
		"video_denoising":  map[string]any{"active": true},
		"face_restoration": map[string]any{"active": true},
	}), true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Filter count exceeds tier limit", env.Detail)
}

func TestRegisterJob_UnknownContent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodPost, "/jobs/register_job", registerJobBody(999, map[string]any{
		"video_deblurring": map[string]any{"active": true},
	}), true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCancelJob(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.repos.jobs.rows["j1"] = &models.Job{JobID: "j1", UserID: 1, Status: models.JobStatusRunning}

	resp, _ := f.do(t, http.MethodGet, "/jobs/cancel_job?job_id=j1", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.JobStatusCancelled, f.repos.jobs.rows["j1"].Status)
}

func TestCancelJob_AlreadyFinished(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.repos.jobs.rows["j1"] = &models.Job{JobID: "j1", UserID: 1, Status: models.JobStatusCompleted}

	resp, _ := f.do(t, http.MethodGet, "/jobs/cancel_job?job_id=j1", nil, true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, models.JobStatusCompleted, f.repos.jobs.rows["j1"].Status)
}

func TestGetJobs(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.repos.jobs.rows["j1"] = &models.Job{JobID: "j1", UserID: 1, JobType: "video", Status: models.JobStatusRunning, Progress: 40}
	f.repos.jobs.rows["j2"] = &models.Job{JobID: "j2", UserID: 2, JobType: "video", Status: models.JobStatusRunning}

	resp, env := f.do(t, http.MethodGet, "/jobs/get_jobs", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var jobs []struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &jobs))
	require.Len(t, jobs, 1)
	assert.Equal(t, "j1", jobs[0].JobID)
	require.NotNil(t, env.Total)
	assert.Equal(t, 1, *env.Total)
}

func TestGetContentList(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		_, err := f.repos.contents.Create(context.Background(), &models.Content{
			UserID: 1, Title: "clip.mp4", Status: models.ContentStatusCompleted, ContentType: "video",
		})
		require.NoError(t, err)
	}

	resp, env := f.do(t, http.MethodGet, "/content/get_content_list?limit=2&offset=0", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items []struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 2)
	require.NotNil(t, env.Total)
	assert.Equal(t, 3, *env.Total)
}
