package pdf

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"jobtracker_backend/internal/logger"
	"jobtracker_backend/internal/models"
	"jobtracker_backend/internal/resumes"
	"jobtracker_backend/pkg/apperrors"
)

//go:embed templates/resume.html
var templateFS embed.FS

// Options controls the printed layout.
type Options struct {
	Theme    string
	PageSize string
}

// Renderer turns a resume into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, resume *models.Resume, opts Options) ([]byte, error)
	Close() error
}

// theme values are trusted constants written into the stylesheet.
type theme struct {
	Font     template.CSS
	FontSize template.CSS
	Accent   template.CSS
}

var themes = map[string]theme{
	"modern":  {Font: "Helvetica, Arial, sans-serif", FontSize: "11pt", Accent: "#2563eb"},
	"classic": {Font: "Georgia, 'Times New Roman', serif", FontSize: "11pt", Accent: "#111111"},
	"minimal": {Font: "Helvetica, Arial, sans-serif", FontSize: "10pt", Accent: "#444444"},
}

var defaultSections = models.DefaultResumeSettings().SectionOrder

var knownSection = func() map[string]bool {
	m := make(map[string]bool, len(defaultSections))
	for _, s := range defaultSections {
		m[s] = true
	}
	return m
}()

var pageSizes = map[string]bool{"A4": true, "Letter": true, "Legal": true}

var fontSizes = map[string]template.CSS{"small": "10pt", "medium": "11pt", "large": "12pt"}

var resumeTemplate = template.Must(
	template.New("resume.html").Funcs(template.FuncMap{"dateRange": dateRange}).ParseFS(templateFS, "templates/resume.html"),
)

// RenderHTML produces the printable HTML document for a resume.
func RenderHTML(resume *models.Resume, opts Options) ([]byte, error) {
	settings := resume.Settings.Data()

	name := opts.Theme
	if name == "" {
		name = settings.Theme
	}
	th, ok := themes[name]
	if !ok {
		th = themes["modern"]
	}
	if fs, ok := fontSizes[settings.FontSize]; ok {
		th.FontSize = fs
	}

	sorted, err := resumes.SortSections(*resume)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = resumeTemplate.Execute(&buf, map[string]interface{}{
		"Resume":   sorted,
		"Theme":    th,
		"Sections": sectionOrder(settings.SectionOrder),
	})
	if err != nil {
		return nil, fmt.Errorf("render resume html: %w", err)
	}
	return buf.Bytes(), nil
}

// playwrightRenderer starts headless Chromium on first use and reuses it.
type playwrightRenderer struct {
	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	timeout time.Duration
}

func NewPlaywrightRenderer(timeout time.Duration) Renderer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &playwrightRenderer{timeout: timeout}
}

func (r *playwrightRenderer) Render(ctx context.Context, resume *models.Resume, opts Options) ([]byte, error) {
	html, err := RenderHTML(resume, opts)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	pageSize := opts.PageSize
	if !pageSizes[pageSize] {
		pageSize = "A4"
	}

	browser, err := r.ensureBrowser()
	if err != nil {
		logger.CtxWithError(ctx, "Failed to start browser for PDF", err)
		return nil, apperrors.ErrExternalService(err, apperrors.ServicePDF)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := browser.NewPage()
	if err != nil {
		return nil, apperrors.ErrExternalService(err, apperrors.ServicePDF)
	}
	defer page.Close()

	timeoutMs := float64(r.timeout.Milliseconds())
	page.SetDefaultTimeout(timeoutMs)
	if err := page.SetContent(string(html), playwright.PageSetContentOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(timeoutMs),
	}); err != nil {
		return nil, apperrors.ErrExternalService(err, apperrors.ServicePDF)
	}

	margin := "0.5in"
	out, err := page.PDF(playwright.PagePdfOptions{
		Format:          playwright.String(pageSize),
		PrintBackground: playwright.Bool(true),
		Margin: &playwright.Margin{
			Top:    &margin,
			Right:  &margin,
			Bottom: &margin,
			Left:   &margin,
		},
	})
	if err != nil {
		logger.CtxWithError(ctx, "PDF rendering failed", err, "resumeId", resume.ID)
		return nil, apperrors.ErrExternalService(err, apperrors.ServicePDF)
	}
	return out, nil
}

func (r *playwrightRenderer) ensureBrowser() (playwright.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil && r.browser.IsConnected() {
		return r.browser, nil
	}
	if r.pw == nil {
		pw, err := playwright.Run()
		if err != nil {
			return nil, fmt.Errorf("start playwright: %w", err)
		}
		r.pw = pw
	}
	browser, err := r.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	r.browser = browser
	return browser, nil
}

func (r *playwrightRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		if err := r.browser.Close(); err != nil {
			logger.Warn("Failed to close browser", "error", err)
		}
		r.browser = nil
	}
	if r.pw != nil {
		err := r.pw.Stop()
		r.pw = nil
		return err
	}
	return nil
}

// sectionOrder keeps known sections in the configured order and appends the missing ones.
func sectionOrder(configured []string) []string {
	order := make([]string, 0, len(defaultSections))
	seen := make(map[string]bool, len(defaultSections))
	for _, s := range configured {
		if knownSection[s] && !seen[s] {
			seen[s] = true
			order = append(order, s)
		}
	}
	for _, s := range defaultSections {
		if !seen[s] {
			order = append(order, s)
		}
	}
	return order
}

func dateRange(start, end *time.Time, current bool) string {
	if start == nil && end == nil {
		return ""
	}
	from := ""
	if start != nil {
		from = start.Format("Jan 2006")
	}
	to := ""
	switch {
	case current:
		to = "Present"
	case end != nil:
		to = end.Format("Jan 2006")
	}
	if from == "" {
		return to
	}
	if to == "" {
		return from
	}
	return from + " - " + to
}
