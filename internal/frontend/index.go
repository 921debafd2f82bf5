package frontend

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	internal_errors "github.com/itchan-dev/askanon/shared/errors"
	"github.com/itchan-dev/askanon/shared/logger"
)

const flashCookieError = "flash_error"

func (h *Handler) IndexGetHandler(w http.ResponseWriter, r *http.Request) {
	page := IndexPage{
		Mode:           h.question.Mode().String(),
		QuestionMaxLen: h.cfg.Public.Limits.QuestionMaxLen,
		ReplyMaxLen:    h.cfg.Public.Limits.ReplyMaxLen,
	}
	errMsg := h.popFlash(w, r)

	snap, err := h.question.Questions(r.Context())
	if err != nil {
		logger.Log.Error("loading questions", "error", err)
		errMsg = userMessage(err)
	}
	page.Questions = h.renderQuestions(snap)

	h.renderTemplate(w, r, "index.html", page, errMsg)
}

func (h *Handler) QuestionPostHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := h.question.CreateQuestion(r.Context(), r.PostFormValue("text")); err != nil {
		h.redirectWithFlash(w, r, "/", userMessage(err))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) ReplyPostHandler(w http.ResponseWriter, r *http.Request) {
	questionId := chi.URLParam(r, "questionId")
	target := "/#" + questionId

	if _, err := h.question.CreateReply(r.Context(), questionId, r.PostFormValue("text")); err != nil {
		h.redirectWithFlash(w, r, target, userMessage(err))
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// userMessage hides internal errors behind the generic messages the UI shows.
func userMessage(err error) string {
	var e *internal_errors.ErrorWithStatusCode
	if errors.As(err, &e) {
		return e.Message
	}
	return "Something went wrong. Please try again."
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, target, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieError,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(msg)),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   60,
	})
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) popFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(flashCookieError)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookieError, Value: "", Path: "/", MaxAge: -1})
	msg, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return ""
	}
	return string(msg)
}
