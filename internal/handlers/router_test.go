package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

type stubClient struct {
	result *models.ScreeningResult
}

func (s *stubClient) Screen(ctx context.Context, req models.ScreeningRequest) (*models.ScreeningResult, error) {
	return s.result, nil
}

type stubRunRepository struct {
	runs  []models.ScreeningRun
	limit int
}

func (s *stubRunRepository) Create(run *models.ScreeningRun) error {
	s.runs = append(s.runs, *run)
	return nil
}

func (s *stubRunRepository) FindRecent(limit int) ([]models.ScreeningRun, error) {
	s.limit = limit
	return s.runs, nil
}

func newTestApp(t *testing.T, runRepo repositories.RunRepository) *fiber.App {
	t.Helper()

	svc := services.NewScreeningService(
		&stubClient{result: &models.ScreeningResult{Relevant: []string{"a.pdf"}, Irrelevant: []string{}}},
		services.NewStorageService(t.TempDir(), 1<<20, nil),
		runRepo,
		services.ScreeningServiceConfig{
			ResumeCapacity:    20,
			Timeout:           time.Second,
			SessionTTL:        time.Minute,
			CleanupInterval:   time.Minute,
			WorkerConcurrency: 1,
			WorkerQueueSize:   10,
		},
	)
	svc.Start(context.Background())
	t.Cleanup(svc.Stop)

	app, err := NewApp(svc, runRepo, RouterConfig{
		BodyLimit:  4 * 1024 * 1024,
		SessionTTL: time.Minute,
	})
	require.NoError(t, err)

	return app
}

func sessionCookieOf(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	t.Fatalf("response carries no %s cookie", sessionCookie)
	return nil
}

func uploadRequest(t *testing.T, target string, cookie *http.Cookie, source string, names ...string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, name := range names {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 " + name))
		require.NoError(t, err)
	}
	if source != "" {
		require.NoError(t, mw.WriteField("source", source))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func withCookie(req *http.Request, cookie *http.Cookie) *http.Request {
	req.AddCookie(cookie)
	return req
}

func getSnapshot(t *testing.T, app *fiber.App, cookie *http.Cookie) services.PageSnapshot {
	t.Helper()

	resp, err := app.Test(withCookie(httptest.NewRequest(http.MethodGet, "/api/v1/screening", nil), cookie))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var snap services.PageSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	return snap
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestRouter_HealthSkipsSession(t *testing.T) {
	app := newTestApp(t, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Cookies())
	assert.Contains(t, readBody(t, resp), `"status":"healthy"`)
}

func TestRouter_PageIssuesSession(t *testing.T) {
	app := newTestApp(t, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	cookie := sessionCookieOf(t, resp)
	assert.NotEmpty(t, cookie.Value)

	body := readBody(t, resp)
	assert.Contains(t, body, "Job Description")
	assert.Contains(t, body, "Resume Collection")
	assert.NotContains(t, body, "Ready to Process")
}

func TestRouter_UploadAndRemove(t *testing.T) {
	app := newTestApp(t, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	cookie := sessionCookieOf(t, resp)

	resp, err = app.Test(uploadRequest(t, "/slots/resumes/files", cookie, "drop", "a.pdf", "b.pdf"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	snap := getSnapshot(t, app, cookie)
	assert.Equal(t, models.StateAwaitingFiles, snap.State)
	require.Len(t, snap.Resumes, 2)
	assert.Equal(t, "a.pdf", snap.Resumes[0].Name)
	assert.False(t, snap.CanSubmit)
	assert.True(t, snap.ShowReset)

	resp, err = app.Test(withCookie(httptest.NewRequest(http.MethodPost, "/slots/resumes/files/0/delete", nil), cookie))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	snap = getSnapshot(t, app, cookie)
	require.Len(t, snap.Resumes, 1)
	assert.Equal(t, "b.pdf", snap.Resumes[0].Name)
}

func TestRouter_SessionsAreIsolated(t *testing.T) {
	app := newTestApp(t, nil)

	resp, err := app.Test(uploadRequest(t, "/slots/jd/files", nil, "", "jd.pdf"))
	require.NoError(t, err)
	first := sessionCookieOf(t, resp)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	second := sessionCookieOf(t, resp)

	assert.NotEqual(t, first.Value, second.Value)
	assert.Len(t, getSnapshot(t, app, first).JobDescription, 1)
	assert.Empty(t, getSnapshot(t, app, second).JobDescription)
}

func TestRouter_SubmitWithMissingFilesShowsNotice(t *testing.T) {
	app := newTestApp(t, nil)

	resp, err := app.Test(uploadRequest(t, "/slots/jd/files", nil, "", "jd.pdf"))
	require.NoError(t, err)
	cookie := sessionCookieOf(t, resp)

	resp, err = app.Test(withCookie(httptest.NewRequest(http.MethodPost, "/submit", nil), cookie))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	resp, err = app.Test(withCookie(httptest.NewRequest(http.MethodGet, "/", nil), cookie))
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Contains(t, body, "Missing Files")
	assert.Contains(t, body, "Please upload both a job description and at least one resume.")

	snap := getSnapshot(t, app, cookie)
	assert.Equal(t, models.StateAwaitingFiles, snap.State)
	assert.Empty(t, snap.Notices, "notices are shown once")
}

func TestRouter_SubmitAndReset(t *testing.T) {
	app := newTestApp(t, nil)

	resp, err := app.Test(uploadRequest(t, "/slots/jd/files", nil, "", "jd.pdf"))
	require.NoError(t, err)
	cookie := sessionCookieOf(t, resp)

	_, err = app.Test(uploadRequest(t, "/slots/resumes/files", cookie, "", "a.pdf"))
	require.NoError(t, err)

	resp, err = app.Test(withCookie(httptest.NewRequest(http.MethodPost, "/submit", nil), cookie))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	assert.Eventually(t, func() bool {
		resp, err := app.Test(withCookie(httptest.NewRequest(http.MethodGet, "/api/v1/screening", nil), cookie))
		if err != nil {
			return false
		}
		var snap services.PageSnapshot
		if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
			return false
		}
		return snap.State == models.StateSucceeded
	}, 2*time.Second, 20*time.Millisecond)

	resp, err = app.Test(withCookie(httptest.NewRequest(http.MethodPost, "/reset", nil), cookie))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	snap := getSnapshot(t, app, cookie)
	assert.Equal(t, models.StateIdle, snap.State)
	assert.Empty(t, snap.JobDescription)
	assert.Empty(t, snap.Resumes)
	assert.Equal(t, services.ResultsHidden, snap.Results.Kind)
}

func TestRouter_BadSlotRequests(t *testing.T) {
	app := newTestApp(t, nil)

	tests := []struct {
		name   string
		req    *http.Request
		status int
	}{
		{
			name:   "unknown slot upload",
			req:    uploadRequest(t, "/slots/cover-letters/files", nil, "", "a.pdf"),
			status: fiber.StatusNotFound,
		},
		{
			name:   "unknown slot remove",
			req:    httptest.NewRequest(http.MethodPost, "/slots/cover-letters/files/0/delete", nil),
			status: fiber.StatusNotFound,
		},
		{
			name:   "non numeric index",
			req:    httptest.NewRequest(http.MethodPost, "/slots/resumes/files/first/delete", nil),
			status: fiber.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(tt.req)
			require.NoError(t, err)

			assert.Equal(t, tt.status, resp.StatusCode)

			var body struct {
				Error string `json:"error"`
				Code  int    `json:"code"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.status, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestRouter_RunsOnlyWithHistory(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		app := newTestApp(t, nil)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("enabled", func(t *testing.T) {
		repo := &stubRunRepository{runs: []models.ScreeningRun{{SessionID: "s1", ResumeCount: 3, RelevantCount: 2}}}
		app := newTestApp(t, repo)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit=500", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Runs []models.ScreeningRun `json:"runs"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body.Runs, 1)
		assert.Equal(t, 3, body.Runs[0].ResumeCount)
		assert.Equal(t, 20, repo.limit, "out of range limits fall back to the default")
	})
}
