package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-reviewer/internal/models"
	"alfredoptarigan/resume-reviewer/internal/services"
	"alfredoptarigan/resume-reviewer/internal/views"
)

const SessionCookie = "resume_session"

const (
	noticeNoFile     = "Please select a resume file to upload."
	noticeInProgress = "A review is already in progress. Please wait for it to finish."
)

// WebHandler serves the upload page and drives the per-browser session.
type WebHandler struct {
	shell   *services.Shell
	refresh time.Duration
	log     *zap.Logger
}

func NewWebHandler(shell *services.Shell, refresh time.Duration, log *zap.Logger) *WebHandler {
	return &WebHandler{
		shell:   shell,
		refresh: refresh,
		log:     log,
	}
}

// HandleIndex handles GET /
func (h *WebHandler) HandleIndex(c *fiber.Ctx) error {
	return h.render(c, h.session(c), "", fiber.StatusOK)
}

// HandleSubmit handles POST /review
func (h *WebHandler) HandleSubmit(c *fiber.Ctx) error {
	sess := h.session(c)

	req := &models.UploadRequest{
		JobDescription: c.FormValue("job_description"),
	}

	if fh, err := c.FormFile("file"); err == nil {
		data, err := readUpload(fh)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("failed to read uploaded file: %v", err))
		}
		req.FileName = fh.Filename
		req.ContentType = fh.Header.Get("Content-Type")
		req.Data = data
	}

	switch err := h.shell.Submit(sess, req); {
	case errors.Is(err, services.ErrNoFile):
		return h.render(c, sess, noticeNoFile, fiber.StatusBadRequest)
	case errors.Is(err, services.ErrReviewInProgress):
		return h.render(c, sess, noticeInProgress, fiber.StatusConflict)
	case err != nil:
		return err
	}

	h.log.Info("resume submitted",
		zap.String("session", sess.ID),
		zap.String("file", req.FileName),
		zap.Int("bytes", len(req.Data)),
	)

	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleCancel handles POST /review/cancel
func (h *WebHandler) HandleCancel(c *fiber.Ctx) error {
	sess := h.session(c)
	if sess.Abort() {
		h.log.Info("review cancelled by user", zap.String("session", sess.ID))
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleReset handles POST /review/reset
func (h *WebHandler) HandleReset(c *fiber.Ctx) error {
	h.session(c).Reset()
	return c.Redirect("/", fiber.StatusSeeOther)
}

// SessionResponse is the JSON view of a session for pollers.
type SessionResponse struct {
	Phase    string               `json:"phase"`
	Loading  bool                 `json:"loading"`
	Error    *string              `json:"error,omitempty"`
	Result   *models.ReviewResult `json:"result,omitempty"`
	ATSScore *int                 `json:"ats_score,omitempty"`
}

// HandleSessionState handles GET /api/session
func (h *WebHandler) HandleSessionState(c *fiber.Ctx) error {
	state, _ := h.session(c).Snapshot()

	resp := SessionResponse{
		Phase:   string(state.Phase()),
		Loading: state.Loading(),
		Result:  state.Result(),
	}
	if msg := state.Error(); msg != "" {
		resp.Error = &msg
	}
	if score, ok := state.Result().ATSScore(); ok {
		resp.ATSScore = &score
	}

	return c.JSON(resp)
}

func (h *WebHandler) session(c *fiber.Ctx) *services.Session {
	id := c.Cookies(SessionCookie)
	sess := h.shell.Session(id)
	if sess.ID != id {
		c.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return sess
}

// render writes the page into a buffer first so a template fault turns into
// a clean 500 instead of half a page.
func (h *WebHandler) render(c *fiber.Ctx, sess *services.Session, notice string, status int) error {
	state, form := sess.Snapshot()

	data := views.NewPageData(string(state.Phase()), state.Error(), state.Result(), h.refresh)
	data.FileName = form.FileName
	data.JobDescription = form.JobDescription
	data.Notice = notice

	var buf bytes.Buffer
	if err := views.RenderPage(&buf, data); err != nil {
		h.log.Error("failed to render page", zap.String("session", sess.ID), zap.Error(err))
		return err
	}

	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
