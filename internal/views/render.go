package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"
	"time"

	"alfredoptarigan/resume-reviewer/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// AcceptedExtensions is the file picker filter. It is advisory only.
const AcceptedExtensions = ".pdf,.docx"

var templates = template.Must(
	template.New("views").
		Funcs(template.FuncMap{
			"deref": func(p *int) int { return *p },
			"clamp": ClampScore,
			"gauge": NewGauge,
		}).
		ParseFS(templateFS, "templates/*.html"),
)

// PageData is everything the page template needs. At most one of Loading,
// Error and Result is set; build it with NewPageData.
type PageData struct {
	FileName       string
	JobDescription string
	Notice         string
	Accept         string
	RefreshSeconds int

	Loading bool
	Error   string
	Result  *models.ReviewResult
}

// NewPageData builds page data for one of the display states. The phase
// names mirror the session phases: idle, submitting, success, failure.
func NewPageData(phase string, errMessage string, result *models.ReviewResult, refresh time.Duration) PageData {
	data := PageData{
		Accept:         AcceptedExtensions,
		RefreshSeconds: int(math.Max(1, math.Ceil(refresh.Seconds()))),
	}
	switch phase {
	case "submitting":
		data.Loading = true
	case "failure":
		data.Error = errMessage
	case "success":
		data.Result = result
	}
	return data
}

// RenderPage writes the whole page.
func RenderPage(w io.Writer, data PageData) error {
	if err := templates.ExecuteTemplate(w, "page", data); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}

// RenderReview writes the five result sections for one review. A result
// missing a nested section is reported as an error, not rendered partially.
func RenderReview(w io.Writer, result *models.ReviewResult) error {
	if err := templates.ExecuteTemplate(w, "review", result); err != nil {
		return fmt.Errorf("failed to render review: %w", err)
	}
	return nil
}

// RenderGauge writes the standalone SVG gauge for score.
func RenderGauge(w io.Writer, score int) error {
	if err := templates.ExecuteTemplate(w, "gauge", NewGauge(score)); err != nil {
		return fmt.Errorf("failed to render gauge: %w", err)
	}
	return nil
}
