package frontend

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/itchan-dev/askanon/shared/domain"
	"github.com/itchan-dev/askanon/shared/logger"
	mw "github.com/itchan-dev/askanon/shared/middleware"
)

const timeLayout = "Jan 2, 2006 15:04"

// CommonTemplateData is available to every page as .Common.
type CommonTemplateData struct {
	CSRFToken string
	Error     string
}

// TemplateData wraps page-specific data with common template data.
type TemplateData struct {
	Data   any
	Common CommonTemplateData
}

type ReplyView struct {
	Text   template.HTML
	Posted string
}

type QuestionView struct {
	Id         domain.QuestionId
	Text       template.HTML
	Posted     string
	ReplyCount string
	Replies    []ReplyView
}

type IndexPage struct {
	Mode           string
	QuestionMaxLen int
	ReplyMaxLen    int
	Questions      []QuestionView
}

func (h *Handler) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any, errMsg string) {
	tmpl, ok := h.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("Template %s not found", name), http.StatusInternalServerError)
		return
	}

	wrapped := TemplateData{
		Data: data,
		Common: CommonTemplateData{
			CSRFToken: mw.GetCSRFTokenFromContext(r),
			Error:     errMsg,
		},
	}

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", wrapped); err != nil {
		logger.Log.Error("error executing template", "template", name, "error", err)
		http.Error(w, "Internal Server Error rendering template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = buf.WriteTo(w)
}

// formatPosted renders a timestamp, or "Just now" when none is known yet.
func formatPosted(ms domain.Millis, loc *time.Location) string {
	t, ok := domain.Time(ms)
	if !ok {
		return "Just now"
	}
	return t.In(loc).Format(timeLayout)
}

func replyCount(n int) string {
	if n == 1 {
		return "1 reply"
	}
	return fmt.Sprintf("%d replies", n)
}

func (h *Handler) renderQuestions(snap domain.Snapshot) []QuestionView {
	sorted := domain.SortQuestions(snap)
	views := make([]QuestionView, 0, len(sorted))
	for _, q := range sorted {
		replies := q.SortedReplies()
		view := QuestionView{
			Id:         q.Id,
			Text:       h.processor.Render(q.Text),
			Posted:     formatPosted(q.Timestamp, h.location),
			ReplyCount: replyCount(len(replies)),
			Replies:    make([]ReplyView, 0, len(replies)),
		}
		for _, r := range replies {
			view.Replies = append(view.Replies, ReplyView{
				Text:   h.processor.Render(r.Text),
				Posted: formatPosted(r.Timestamp, h.location),
			})
		}
		views = append(views, view)
	}
	return views
}
