package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/itchan-dev/askanon/shared/api"
	"github.com/itchan-dev/askanon/shared/utils"
)

func (h *Handler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	snap, err := h.question.Questions(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.NewQuestionsResponse(snap))
}

func (h *Handler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var body api.CreateQuestionRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	ref, err := h.question.CreateQuestion(r.Context(), body.Text)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, api.CreateResponse{Id: ref.Key})
}

func (h *Handler) CreateReply(w http.ResponseWriter, r *http.Request) {
	questionId := chi.URLParam(r, "questionId")

	var body api.CreateReplyRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	ref, err := h.question.CreateReply(r.Context(), questionId, body.Text)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, api.CreateResponse{Id: ref.Key})
}

func (h *Handler) GetPublicConfig(w http.ResponseWriter, r *http.Request) {
	pub := h.cfg.Public
	utils.WriteJSON(w, http.StatusOK, api.PublicConfigResponse{
		Mode:           h.question.Mode().String(),
		PollIntervalMs: pub.Local.PollInterval.Milliseconds(),
		QuestionMaxLen: pub.Limits.QuestionMaxLen,
		ReplyMaxLen:    pub.Limits.ReplyMaxLen,
	})
}
