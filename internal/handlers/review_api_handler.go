package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-reviewer/internal/metrics"
	"alfredoptarigan/resume-reviewer/internal/models"
	"alfredoptarigan/resume-reviewer/internal/repositories"
	"alfredoptarigan/resume-reviewer/internal/services"
)

const (
	detailUnsupportedType = "Unsupported file type. Please upload a .docx or .pdf file."
	detailNoText          = "Could not extract text from the resume. Please ensure it's a readable document."
	detailRetriesFailed   = "Failed to get review from AI after multiple retries. Please try again."
	detailMissingFile     = "A resume file is required in the 'file' field."
)

// ReviewAPIHandler serves POST /review-resume/.
type ReviewAPIHandler struct {
	extractor   services.TextExtractor
	reviewer    services.ReviewerService
	auditRepo   repositories.ReviewAuditRepository
	maxFileSize int64
	log         *zap.Logger
}

// NewReviewAPIHandler builds the handler. auditRepo may be nil when
// auditing is disabled.
func NewReviewAPIHandler(
	extractor services.TextExtractor,
	reviewer services.ReviewerService,
	auditRepo repositories.ReviewAuditRepository,
	maxFileSize int64,
	log *zap.Logger,
) *ReviewAPIHandler {
	return &ReviewAPIHandler{
		extractor:   extractor,
		reviewer:    reviewer,
		auditRepo:   auditRepo,
		maxFileSize: maxFileSize,
		log:         log,
	}
}

// HandleReviewResume handles POST /review-resume/
func (h *ReviewAPIHandler) HandleReviewResume(c *fiber.Ctx) error {
	start := time.Now()
	audit := &models.ReviewAudit{
		HasJobDescription: strings.TrimSpace(c.FormValue("job_description")) != "",
	}

	status, body := h.review(c, audit)

	audit.StatusCode = status
	audit.DurationMs = time.Since(start).Milliseconds()
	h.recordAudit(c.UserContext(), audit)
	metrics.APIRequests.WithLabelValues(strconv.Itoa(status)).Inc()

	return c.Status(status).JSON(body)
}

func (h *ReviewAPIHandler) review(c *fiber.Ctx, audit *models.ReviewAudit) (int, interface{}) {
	fh, err := c.FormFile("file")
	if err != nil {
		return h.fail(audit, fiber.StatusBadRequest, detailMissingFile)
	}

	audit.FileName = fh.Filename
	audit.FileType = services.FileType(fh.Filename)
	audit.FileSize = fh.Size

	if audit.FileType != "pdf" && audit.FileType != "docx" {
		return h.fail(audit, fiber.StatusBadRequest, detailUnsupportedType)
	}

	if h.maxFileSize > 0 && fh.Size > h.maxFileSize {
		return h.fail(audit, fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("Resume file too large. Max size: %d bytes", h.maxFileSize))
	}

	data, err := readUpload(fh)
	if err != nil {
		return h.fail(audit, fiber.StatusInternalServerError, fmt.Sprintf("An internal server error occurred: %v", err))
	}

	resumeText, err := h.extractor.ExtractText(fh.Filename, data)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedFileType) {
			return h.fail(audit, fiber.StatusBadRequest, detailUnsupportedType)
		}
		h.log.Warn("text extraction failed", zap.String("file", fh.Filename), zap.Error(err))
		return h.fail(audit, fiber.StatusBadRequest, detailNoText)
	}
	if strings.TrimSpace(resumeText) == "" {
		return h.fail(audit, fiber.StatusBadRequest, detailNoText)
	}

	result, err := h.reviewer.Review(c.UserContext(), resumeText, c.FormValue("job_description"))
	if err != nil {
		h.log.Error("resume review failed", zap.String("file", fh.Filename), zap.Error(err))
		switch {
		case errors.Is(err, services.ErrRetriesExhausted):
			return h.fail(audit, fiber.StatusInternalServerError, detailRetriesFailed)
		case errors.Is(err, services.ErrMalformedReview):
			return h.fail(audit, fiber.StatusInternalServerError, services.ErrMalformedReview.Error()+".")
		default:
			return h.fail(audit, fiber.StatusInternalServerError, fmt.Sprintf("An internal server error occurred: %v", err))
		}
	}

	return fiber.StatusOK, result
}

func (h *ReviewAPIHandler) fail(audit *models.ReviewAudit, status int, detail string) (int, interface{}) {
	audit.ErrorMessage = &detail
	return status, models.ErrorResponse{Detail: detail}
}

func (h *ReviewAPIHandler) recordAudit(ctx context.Context, audit *models.ReviewAudit) {
	if h.auditRepo == nil {
		return
	}
	if err := h.auditRepo.Create(ctx, audit); err != nil {
		h.log.Warn("failed to record review audit", zap.Error(err))
	}
}
