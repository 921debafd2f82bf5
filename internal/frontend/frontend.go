// Package frontend serves the server-rendered question feed and its form posts.
package frontend

import (
	"embed"
	"html/template"
	"time"

	"github.com/itchan-dev/askanon/internal/frontend/text"
	"github.com/itchan-dev/askanon/internal/service"
	"github.com/itchan-dev/askanon/shared/config"
)

//go:embed templates/*.html
var templateFS embed.FS

type Handler struct {
	question  service.QuestionService
	processor *text.TextProcessor
	cfg       *config.Config
	templates map[string]*template.Template
	location  *time.Location
}

func New(question service.QuestionService, cfg *config.Config) *Handler {
	return &Handler{
		question:  question,
		processor: text.New(),
		cfg:       cfg,
		templates: mustLoadTemplates(),
		location:  time.Local,
	}
}

func mustLoadTemplates() map[string]*template.Template {
	return map[string]*template.Template{
		"index.html": template.Must(template.New("base").ParseFS(templateFS, "templates/base.html", "templates/index.html")),
	}
}
