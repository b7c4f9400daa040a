package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

//go:embed templates/*.html
var builtinTemplates embed.FS

const baseTemplate = "base"

// Builtin template names.
const (
	TemplateWelcome       = "welcome"
	TemplateVerifyEmail   = "verify_email"
	TemplatePasswordReset = "password_reset"
	TemplateReminder      = "reminder"
	TemplateStatusUpdate  = "status_update"
)

// TemplateManager holds one parsed set per template: the shared base layout plus its "content" block.
type TemplateManager struct {
	mu        sync.RWMutex
	base      string
	templates map[string]*template.Template
}

// NewTemplateManager loads the embedded templates.
func NewTemplateManager() (*TemplateManager, error) {
	base, err := builtinTemplates.ReadFile("templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("read base template: %w", err)
	}

	tm := &TemplateManager{
		base:      string(base),
		templates: make(map[string]*template.Template),
	}

	entries, err := fs.ReadDir(builtinTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".html")
		if name == baseTemplate {
			continue
		}
		content, err := builtinTemplates.ReadFile("templates/" + entry.Name())
		if err != nil {
			return nil, err
		}
		if err := tm.AddTemplate(name, string(content)); err != nil {
			return nil, err
		}
	}
	return tm, nil
}

// AddTemplate parses content against the base layout and registers it under name.
func (tm *TemplateManager) AddTemplate(name, content string) error {
	tmpl, err := template.New(baseTemplate).Parse(tm.base)
	if err != nil {
		return fmt.Errorf("parse base template: %w", err)
	}
	if _, err := tmpl.New(name).Parse(content); err != nil {
		return fmt.Errorf("parse template %s: %w", name, err)
	}

	tm.mu.Lock()
	tm.templates[name] = tmpl
	tm.mu.Unlock()
	return nil
}

// LoadTemplates registers every .html file under dir, overriding builtins with the same name.
func (tm *TemplateManager) LoadTemplates(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".html" {
			return nil
		}
		name := strings.TrimSuffix(filepath.Base(path), ".html")
		if name == baseTemplate {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}
		return tm.AddTemplate(name, string(content))
	})
}

func (tm *TemplateManager) Render(name string, data TemplateData) (string, error) {
	tm.mu.RLock()
	tmpl, ok := tm.templates[name]
	tm.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("template not found: %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, baseTemplate, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}

func (tm *TemplateManager) TemplateNames() []string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	names := make([]string, 0, len(tm.templates))
	for name := range tm.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
