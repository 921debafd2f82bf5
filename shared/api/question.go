package api

import (
	"github.com/itchan-dev/askanon/shared/domain"
)

// Request DTOs

// Text is not tagged required: a missing or blank text reaches the service,
// which answers with the user-facing message.
type CreateQuestionRequest struct {
	Text string `json:"text"`
}

type CreateReplyRequest struct {
	Text string `json:"text"`
}

// Response DTOs

// CreateResponse returns the key of the created record. Id is empty when the
// reply target did not exist and nothing was written.
type CreateResponse struct {
	Id string `json:"id,omitempty"`
}

// QuestionResponse is a question with its replies flattened into display order.
type QuestionResponse struct {
	Id        domain.QuestionId `json:"id"`
	Text      domain.Text       `json:"text"`
	Timestamp domain.Millis     `json:"timestamp"`
	Replies   []domain.Reply    `json:"replies"`
}

// QuestionsResponse is the whole feed, newest question first.
type QuestionsResponse struct {
	Questions []QuestionResponse `json:"questions"`
}

type PublicConfigResponse struct {
	Mode           string `json:"mode"`
	PollIntervalMs int64  `json:"poll_interval_ms"`
	QuestionMaxLen int    `json:"question_max_len"`
	ReplyMaxLen    int    `json:"reply_max_len"`
}

// NewQuestionsResponse orders snap for display.
func NewQuestionsResponse(snap domain.Snapshot) QuestionsResponse {
	sorted := domain.SortQuestions(snap)
	resp := QuestionsResponse{Questions: make([]QuestionResponse, 0, len(sorted))}
	for _, q := range sorted {
		resp.Questions = append(resp.Questions, QuestionResponse{
			Id:        q.Id,
			Text:      q.Text,
			Timestamp: q.Timestamp,
			Replies:   q.SortedReplies(),
		})
	}
	return resp
}
