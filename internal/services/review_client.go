package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"alfredoptarigan/resume-reviewer/internal/models"
)

// FallbackErrorMessage is shown when the review API rejects a request
// without saying why.
const FallbackErrorMessage = "Failed to review resume."

// ReviewClient sends one resume to the review API.
type ReviewClient interface {
	Review(ctx context.Context, req *models.UploadRequest) (*models.ReviewResult, error)
}

// RemoteError is a non-2xx reply from the review API.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("review api returned %d: %s", e.StatusCode, e.Message)
}

// TransportError means the request could not be sent or no reply arrived.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type reviewClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewReviewClient posts to endpoint. The per-request deadline comes from the
// caller's context; timeout is a ceiling on the underlying http.Client.
func NewReviewClient(endpoint string, timeout time.Duration) ReviewClient {
	return &reviewClient{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Review implements ReviewClient.
func (c *reviewClient) Review(ctx context.Context, req *models.UploadRequest) (*models.ReviewResult, error) {
	body, contentType, err := encodeUpload(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode upload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{
			StatusCode: resp.StatusCode,
			Message:    detailMessage(resp.Body),
		}
	}

	var result models.ReviewResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode review response: %w", err)
	}

	return &result, nil
}

// encodeUpload writes the two form fields the review API expects: file and job_description.
func encodeUpload(req *models.UploadRequest) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(req.FileName)))
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(req.Data); err != nil {
		return nil, "", err
	}

	if err := w.WriteField("job_description", req.JobDescription); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}

func escapeQuotes(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		if r == '\\' || r == '"' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// detailMessage pulls the "detail" string out of an error body. Anything
// else (no body, not JSON, a non-string detail) yields the fallback.
func detailMessage(body io.Reader) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 1<<20)).Decode(&payload); err != nil {
		return FallbackErrorMessage
	}

	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err != nil || detail == "" {
		return FallbackErrorMessage
	}
	return detail
}

// DisplayMessage turns a dispatch error into the text shown in the error panel.
func DisplayMessage(err error, timeout time.Duration) string {
	if err == nil {
		return ""
	}

	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Message
	}

	switch {
	case errors.Is(err, context.Canceled):
		return "Review was cancelled."
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("Review timed out after %s.", timeout)
	}

	return err.Error()
}
