package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"alfredoptarigan/resume-reviewer/internal/models"
	"alfredoptarigan/resume-reviewer/internal/services"
)

type stubClient struct {
	calls atomic.Int32
	fn    func(ctx context.Context, req *models.UploadRequest) (*models.ReviewResult, error)
}

func (s *stubClient) Review(ctx context.Context, req *models.UploadRequest) (*models.ReviewResult, error) {
	s.calls.Add(1)
	return s.fn(ctx, req)
}

func newWebApp(t *testing.T, client services.ReviewClient) *fiber.App {
	t.Helper()

	log := zaptest.NewLogger(t)
	shell := services.NewShell(client, services.ShellOptions{
		RequestTimeout: 2 * time.Second,
		SessionTTL:     time.Hour,
		Concurrency:    2,
	}, log)
	shell.Start(context.Background())
	t.Cleanup(shell.Stop)

	h := NewWebHandler(shell, time.Second, log)
	app := fiber.New()
	app.Get("/", h.HandleIndex)
	app.Post("/review", h.HandleSubmit)
	app.Post("/review/cancel", h.HandleCancel)
	app.Post("/review/reset", h.HandleReset)
	app.Get("/api/session", h.HandleSessionState)
	return app
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	t.Fatalf("response did not set %s", SessionCookie)
	return nil
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request, cookie *http.Cookie) (*http.Response, string) {
	t.Helper()
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, string(body)
}

func sessionState(t *testing.T, app *fiber.App, cookie *http.Cookie) SessionResponse {
	t.Helper()
	_, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/session", nil), cookie)
	var state SessionResponse
	require.NoError(t, json.Unmarshal([]byte(body), &state))
	return state
}

func waitForSessionPhase(t *testing.T, app *fiber.App, cookie *http.Cookie, phase services.Phase) SessionResponse {
	t.Helper()
	var state SessionResponse
	require.Eventually(t, func() bool {
		state = sessionState(t, app, cookie)
		return state.Phase == string(phase)
	}, 3*time.Second, 10*time.Millisecond)
	return state
}

func TestWebHandler_IndexSetsSessionCookie(t *testing.T) {
	app := newWebApp(t, &stubClient{})

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	cookie := sessionCookie(t, resp)
	assert.True(t, cookie.HttpOnly)
	assert.Contains(t, body, `accept=".pdf,.docx"`)
	assert.NotContains(t, body, `data-state=`)
}

func TestWebHandler_SubmitWithoutFile(t *testing.T) {
	client := &stubClient{}
	app := newWebApp(t, client)

	resp, body := doRequest(t, app, multipartRequest(t, "/review", "", nil, "Backend engineer"), nil)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Please select a resume file to upload.")
	assert.NotContains(t, body, `data-state="loading"`)
	assert.Equal(t, int32(0), client.calls.Load())
}

func TestWebHandler_SubmitShowsReview(t *testing.T) {
	client := &stubClient{fn: func(ctx context.Context, req *models.UploadRequest) (*models.ReviewResult, error) {
		if req.FileName != "jane_doe.pdf" || req.JobDescription != "Backend engineer" {
			return nil, &services.RemoteError{StatusCode: 400, Message: "unexpected form"}
		}
		return reviewResult(82), nil
	}}
	app := newWebApp(t, client)

	resp, _ := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	cookie := sessionCookie(t, resp)

	resp, _ = doRequest(t, app, multipartRequest(t, "/review", "jane_doe.pdf", []byte("%PDF"), "Backend engineer"), cookie)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	state := waitForSessionPhase(t, app, cookie, services.PhaseSuccess)
	assert.False(t, state.Loading)
	assert.Nil(t, state.Error)
	require.NotNil(t, state.ATSScore)
	assert.Equal(t, 82, *state.ATSScore)

	_, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/", nil), cookie)
	assert.Contains(t, body, `data-state="result"`)
	assert.Contains(t, body, "82%")
	assert.Contains(t, body, `<span class="chip">Go</span>`)
	assert.Contains(t, body, `>Backend engineer</textarea>`)
	assert.Equal(t, int32(1), client.calls.Load())
}

func TestWebHandler_RemoteErrorShown(t *testing.T) {
	client := &stubClient{fn: func(ctx context.Context, req *models.UploadRequest) (*models.ReviewResult, error) {
		return nil, &services.RemoteError{StatusCode: 400, Message: "Unsupported file type. Please upload a .docx or .pdf file."}
	}}
	app := newWebApp(t, client)

	resp, _ := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	cookie := sessionCookie(t, resp)
	doRequest(t, app, multipartRequest(t, "/review", "resume.pdf", []byte("%PDF"), ""), cookie)

	state := waitForSessionPhase(t, app, cookie, services.PhaseFailure)
	require.NotNil(t, state.Error)
	assert.Equal(t, "Unsupported file type. Please upload a .docx or .pdf file.", *state.Error)
	assert.Nil(t, state.Result)

	_, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/", nil), cookie)
	assert.Contains(t, body, `data-state="error"`)
	assert.NotContains(t, body, `data-state="result"`)

	resp, _ = doRequest(t, app, httptest.NewRequest(http.MethodPost, "/review/reset", nil), cookie)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, string(services.PhaseIdle), sessionState(t, app, cookie).Phase)
}

func TestWebHandler_CancelInFlight(t *testing.T) {
	started := make(chan struct{})
	client := &stubClient{fn: func(ctx context.Context, req *models.UploadRequest) (*models.ReviewResult, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	app := newWebApp(t, client)

	resp, _ := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	cookie := sessionCookie(t, resp)
	doRequest(t, app, multipartRequest(t, "/review", "resume.pdf", []byte("%PDF"), ""), cookie)

	<-started
	_, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/", nil), cookie)
	assert.Contains(t, body, `data-state="loading"`)
	assert.Contains(t, body, `http-equiv="refresh"`)

	resp, body = doRequest(t, app, multipartRequest(t, "/review", "resume.pdf", []byte("%PDF"), ""), cookie)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "A review is already in progress.")

	doRequest(t, app, httptest.NewRequest(http.MethodPost, "/review/cancel", nil), cookie)

	state := waitForSessionPhase(t, app, cookie, services.PhaseFailure)
	require.NotNil(t, state.Error)
	assert.Equal(t, "Review was cancelled.", *state.Error)
	assert.Equal(t, int32(1), client.calls.Load())
}

func TestWebHandler_UnknownCookieGetsFreshSession(t *testing.T) {
	app := newWebApp(t, &stubClient{})

	resp, _ := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/", nil), &http.Cookie{Name: SessionCookie, Value: "not-a-uuid"})

	cookie := sessionCookie(t, resp)
	assert.NotEqual(t, "not-a-uuid", cookie.Value)
}

func TestWebHandler_SubmitEmptyFileIsSent(t *testing.T) {
	client := &stubClient{fn: func(ctx context.Context, req *models.UploadRequest) (*models.ReviewResult, error) {
		return nil, &services.RemoteError{StatusCode: 400, Message: "Could not extract text from the resume."}
	}}
	app := newWebApp(t, client)

	resp, _ := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	cookie := sessionCookie(t, resp)

	resp, _ = doRequest(t, app, multipartRequest(t, "/review", "empty.pdf", nil, ""), cookie)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	state := waitForSessionPhase(t, app, cookie, services.PhaseFailure)
	require.NotNil(t, state.Error)
	assert.Equal(t, "Could not extract text from the resume.", *state.Error)
	assert.Equal(t, int32(1), client.calls.Load())
}
